package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/bajrangpainters/backend/internal/config"
	"github.com/bajrangpainters/backend/internal/content"
	"github.com/bajrangpainters/backend/internal/handlers"
	"github.com/bajrangpainters/backend/internal/logger"
	"github.com/bajrangpainters/backend/internal/models"
	"github.com/bajrangpainters/backend/internal/prompt"
	"github.com/bajrangpainters/backend/internal/services"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

func newServeCmd() *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Example: `  # Start on PORT from the environment (default 8080)
  api serve

  # Start on a custom port
  api serve --port 9000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}
			if port != "" {
				cfg.Port = port
			}
			return serve(cmd.Context(), cfg, log)
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "", "Port to listen on (overrides PORT)")
	return cmd
}

func serve(ctx context.Context, cfg *config.Config, log *logrus.Logger) error {
	site, err := content.Load()
	if err != nil {
		return err
	}
	host, err := services.NewMediaHost(cfg)
	if err != nil {
		return fmt.Errorf("failed to init media host: %w", err)
	}
	log.WithFields(logrus.Fields{
		"media_host": cfg.MediaHost,
		"frontend":   logger.SanitizeURL(cfg.FrontendURL),
	}).Info("Starting Bajrang Painters API")

	redisClient := models.InitRedis(cfg, log)
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.WithError(err).Warn("Redis not reachable, rate limiting and catalog snapshots are degraded")
	}

	// The site keeps serving the gallery without a database.
	db, err := models.InitDB(cfg, log)
	if err != nil {
		log.WithError(err).Error("Database unavailable, enquiries will not be stored")
	} else if err := models.Migrate(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	catalog := services.NewCatalogService(host, site, cfg, services.NewRedisCatalogCache(redisClient, cfg.CatalogCacheTTL), log)
	registry := prompt.NewRegistry(cfg.PromptDelay, prompt.SystemClock())
	mailer := services.NewSMTPMailer(cfg)

	var recorder services.InquiryRecorder
	var inquiries *services.InquiryService
	if db != nil {
		inquiries = services.NewInquiryService(db)
		recorder = inquiries
	}
	contact, err := services.NewContactService(cfg, mailer, recorder, log)
	if err != nil {
		return err
	}
	auth, err := services.NewAuthService(cfg)
	if err != nil {
		return err
	}

	r := routes{
		gallery: handlers.NewGalleryHandler(catalog, host, site, cfg.CatalogPageSize, log),
		contact: handlers.NewContactHandler(mailer, contact, log),
		prompt:  handlers.NewPromptHandler(registry),
		public:  handlers.NewPublicHandler(site, healthChecks(redisClient, db), log),
		auth:    auth,
		redis:   redisClient,
	}
	if inquiries != nil {
		r.admin = handlers.NewAdminHandler(auth, inquiries, log)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      setupRouter(cfg, log, r),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.WithField("port", cfg.Port).Info("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		log.Info("Server exited")
		return nil
	})
	g.Go(func() error {
		warmCatalog(ctx, cfg, catalog, log)
		return nil
	})
	if cfg.CatalogRefreshCron != "" {
		scheduler := services.NewRefreshScheduler(cfg.CatalogRefreshCron, services.RefresherFunc(func(ctx context.Context) error {
			_, err := catalog.Refresh(ctx)
			return err
		}), log)
		g.Go(func() error {
			scheduler.Run(ctx)
			return nil
		})
	}
	g.Go(func() error {
		sweepPromptSessions(ctx, registry, cfg.PromptSessionTTL, log)
		return nil
	})

	return g.Wait()
}

// warmCatalog restores the last snapshot, then refreshes from the media host.
func warmCatalog(ctx context.Context, cfg *config.Config, catalog *services.CatalogService, log logrus.FieldLogger) {
	if err := catalog.Warm(ctx); err != nil {
		log.WithError(err).Warn("Catalog snapshot not restored")
	}
	if !cfg.CatalogRefreshOnStart {
		return
	}
	if _, err := catalog.Refresh(ctx); err != nil {
		log.WithError(err).Warn("Initial catalog refresh failed")
	}
}

func sweepPromptSessions(ctx context.Context, registry *prompt.Registry, ttl time.Duration, log logrus.FieldLogger) {
	interval := ttl / 4
	if interval < time.Minute {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := registry.Sweep(ttl); removed > 0 {
				log.WithFields(logrus.Fields{"removed": removed, "active": registry.Len()}).Debug("Swept idle prompt sessions")
			}
		}
	}
}

func healthChecks(redisClient *redis.Client, db *gorm.DB) map[string]handlers.Pinger {
	checks := map[string]handlers.Pinger{
		"redis": func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
	}
	if db != nil {
		checks["database"] = func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		}
	}
	return checks
}
