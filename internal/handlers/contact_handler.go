package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/bajrangpainters/backend/internal/services"
	"github.com/bajrangpainters/backend/pkg/validation"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ContactSubmitter processes contact form submissions.
type ContactSubmitter interface {
	Submit(ctx context.Context, form services.ContactForm, ipAddress string) (services.SubmissionResult, error)
}

type ContactHandler struct {
	mailer  services.Mailer
	contact ContactSubmitter
	log     logrus.FieldLogger
}

func NewContactHandler(mailer services.Mailer, contact ContactSubmitter, log logrus.FieldLogger) *ContactHandler {
	return &ContactHandler{
		mailer:  mailer,
		contact: contact,
		log:     log.WithField("handler", "contact"),
	}
}

// SendEmail relays one HTML message.
func (h *ContactHandler) SendEmail(c *gin.Context) {
	var req struct {
		To      string `json:"to"`
		Subject string `json:"subject"`
		Message string `json:"message"`
	}
	if err := c.ShouldBindJSON(&req); err != nil ||
		strings.TrimSpace(req.To) == "" || strings.TrimSpace(req.Subject) == "" || strings.TrimSpace(req.Message) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing fields"})
		return
	}
	if !validation.ValidateEmail(req.To) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid email format"})
		return
	}

	err := h.mailer.Send(c.Request.Context(), services.Message{
		To:      strings.TrimSpace(req.To),
		Subject: validation.SanitizeHeader(req.Subject),
		HTML:    req.Message,
	})
	if err != nil {
		h.log.WithError(err).Error("Failed to send email")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send email"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Email sent successfully!"})
}

// Submit handles the contact form. The response always carries the form to
// show next and a notice.
func (h *ContactHandler) Submit(c *gin.Context) {
	var form services.ContactForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	result, err := h.contact.Submit(c.Request.Context(), form, c.ClientIP())
	if err != nil {
		var verr *services.ValidationError
		switch {
		case errors.As(err, &verr):
			c.JSON(http.StatusBadRequest, gin.H{
				"error":  "Missing fields",
				"fields": verr.Fields,
				"notice": result.Notice,
				"form":   result.Form,
			})
		case errors.Is(err, services.ErrDeliveryFailed):
			c.JSON(http.StatusBadGateway, gin.H{
				"error":  "Failed to send email",
				"notice": result.Notice,
				"form":   result.Form,
			})
		default:
			h.log.WithError(err).Error("Contact submission failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}
	c.JSON(http.StatusOK, result)
}
