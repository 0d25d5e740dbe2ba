package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/bajrangpainters/backend/internal/models"
	"github.com/bajrangpainters/backend/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Inquiries is the admin view of stored contact enquiries.
type Inquiries interface {
	List(ctx context.Context, page, limit int, filter services.InquiryFilter) ([]models.ContactInquiry, int64, error)
	Stats(ctx context.Context) (services.InquiryStats, error)
}

// Authenticator signs administrators in.
type Authenticator interface {
	Login(username, password string) (string, time.Time, error)
}

type AdminHandler struct {
	auth      Authenticator
	inquiries Inquiries
	log       logrus.FieldLogger
}

func NewAdminHandler(auth Authenticator, inquiries Inquiries, log logrus.FieldLogger) *AdminHandler {
	return &AdminHandler{auth: auth, inquiries: inquiries, log: log.WithField("handler", "admin")}
}

func (h *AdminHandler) Login(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username and password are required"})
		return
	}

	token, expiresAt, err := h.auth.Login(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			h.log.WithField("ip", c.ClientIP()).Warn("Rejected admin login")
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}
		h.log.WithError(err).Error("Admin login failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Login failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token": token,
		"token_type":   "Bearer",
		"expires_at":   expiresAt,
	})
}

// ListInquiries supports ?page, ?limit, ?search and ?failed=true.
func (h *AdminHandler) ListInquiries(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	page, limit = services.Paginate(page, limit)
	filter := services.InquiryFilter{
		Search: c.Query("search"),
		Failed: c.Query("failed") == "true",
	}

	inquiries, total, err := h.inquiries.List(c.Request.Context(), page, limit, filter)
	if err != nil {
		h.log.WithError(err).Error("Failed to list inquiries")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve inquiries"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"inquiries": inquiries,
		"pagination": gin.H{
			"page":  page,
			"limit": limit,
			"total": total,
		},
	})
}

func (h *AdminHandler) InquiryStats(c *gin.Context) {
	stats, err := h.inquiries.Stats(c.Request.Context())
	if err != nil {
		h.log.WithError(err).Error("Failed to compute inquiry stats")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve statistics"})
		return
	}
	c.JSON(http.StatusOK, stats)
}
