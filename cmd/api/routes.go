package main

import (
	"net/http"
	"time"

	"github.com/bajrangpainters/backend/internal/config"
	"github.com/bajrangpainters/backend/internal/handlers"
	"github.com/bajrangpainters/backend/internal/logger"
	"github.com/bajrangpainters/backend/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

type routes struct {
	gallery *handlers.GalleryHandler
	contact *handlers.ContactHandler
	prompt  *handlers.PromptHandler
	public  *handlers.PublicHandler
	// admin is nil when the database is unavailable.
	admin *handlers.AdminHandler
	auth  middleware.TokenAuthenticator
	redis *redis.Client
}

func setupRouter(cfg *config.Config, log logrus.FieldLogger, r routes) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(logger.RequestLogger(log))
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg))
	router.Use(middleware.RateLimiter(r.redis, cfg, log))

	router.GET("/health", r.public.Health)

	// Paths used by the website as-is.
	router.GET("/api/getImages", r.gallery.GetImages)
	router.POST("/api/send-email", middleware.AllowedOrigin(cfg, log), middleware.ContactRateLimiter(r.redis, cfg, log), r.contact.SendEmail)

	api := router.Group("/api/v1")
	{
		api.GET("/health", r.public.Health)
		api.OPTIONS("/*path", func(c *gin.Context) {
			c.Status(http.StatusNoContent)
		})

		api.GET("/services", r.public.ListServices)

		gallery := api.Group("/gallery")
		{
			gallery.GET("", r.gallery.ListGallery)
			gallery.GET("/categories", r.gallery.ListCategories)
			gallery.POST("/refresh", r.gallery.Refresh)
		}

		sessions := api.Group("/prompt/sessions")
		{
			sessions.POST("", r.prompt.CreateSession)
			sessions.GET("/:id", r.prompt.GetSession)
			sessions.POST("/:id/open", r.prompt.Open)
			sessions.POST("/:id/close", r.prompt.Close)
		}

		api.POST("/contact", middleware.ContactRateLimiter(r.redis, cfg, log), r.contact.Submit)

		if r.admin != nil {
			admin := api.Group("/admin")
			admin.POST("/login", middleware.LoginGuard(r.redis, 5, 15*time.Minute, time.Hour, log), r.admin.Login)

			protected := admin.Group("")
			protected.Use(middleware.Auth(r.auth))
			{
				protected.GET("/inquiries", r.admin.ListInquiries)
				protected.GET("/inquiries/stats", r.admin.InquiryStats)
			}
		}
	}

	return router
}
