package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/adhocore/gronx"
	"github.com/caarlos0/env/v11"
)

const (
	MediaHostCloudinary = "cloudinary"
	MediaHostS3         = "s3"
)

type Config struct {
	// Server
	Port        string `env:"PORT" envDefault:"8080"`
	Env         string `env:"ENV" envDefault:"development"`
	APIUrl      string `env:"API_URL" envDefault:"http://localhost:8080"`
	FrontendURL string `env:"FRONTEND_URL" envDefault:"http://localhost:3000"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"` // text|json

	// Database
	DBHost     string `env:"DB_HOST" envDefault:"localhost"`
	DBPort     string `env:"DB_PORT" envDefault:"5432"`
	DBUser     string `env:"DB_USER" envDefault:"bajrang"`
	DBPassword string `env:"DB_PASSWORD" envDefault:"password"`
	DBName     string `env:"DB_NAME" envDefault:"bajrang_site"`
	DBSSLMode  string `env:"DB_SSL_MODE" envDefault:"disable"`
	DBTimeZone string `env:"DB_TIMEZONE" envDefault:"Asia/Kolkata"`

	// Redis
	RedisHost     string `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort     string `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	// JWT
	JWTSecret              string        `env:"JWT_SECRET" envDefault:"your-secret-key"`
	JWTAccessTokenDuration time.Duration `env:"JWT_ACCESS_TOKEN_DURATION" envDefault:"1h"`

	// Admin
	AdminUsername string `env:"ADMIN_USERNAME" envDefault:"admin"`
	AdminPassword string `env:"ADMIN_PASSWORD" envDefault:"admin123"`

	// SMTP relay (Brevo)
	SMTPHost          string `env:"SMTP_HOST" envDefault:"smtp-relay.brevo.com"`
	SMTPPort          int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUsername      string `env:"SMTP_USERNAME"`
	SMTPPassword      string `env:"SMTP_PASSWORD"`
	SMTPFrom          string `env:"SMTP_FROM" envDefault:"bajarangpainters@gmail.com"`
	SMTPFromName      string `env:"SMTP_FROM_NAME" envDefault:"Bajrang Painters"`
	ContactAdminEmail string `env:"CONTACT_ADMIN_EMAIL" envDefault:"bajarangpainters@gmail.com"`

	// Media host
	MediaHost string `env:"MEDIA_HOST" envDefault:"cloudinary"` // cloudinary|s3

	// Cloudinary
	CloudinaryCloudName string        `env:"CLOUDINARY_CLOUD_NAME"`
	CloudinaryAPIKey    string        `env:"CLOUDINARY_API_KEY"`
	CloudinaryAPISecret string        `env:"CLOUDINARY_API_SECRET"`
	CloudinaryBaseURL   string        `env:"CLOUDINARY_BASE_URL" envDefault:"https://api.cloudinary.com"`
	CloudinaryTimeout   time.Duration `env:"CLOUDINARY_TIMEOUT" envDefault:"15s"`

	// Media S3 - alternative host for gallery images
	MediaS3Endpoint        string `env:"MEDIA_S3_ENDPOINT"`
	MediaS3Region          string `env:"MEDIA_S3_REGION" envDefault:"us-east-1"`
	MediaS3AccessKeyID     string `env:"MEDIA_S3_ACCESS_KEY_ID"`
	MediaS3SecretAccessKey string `env:"MEDIA_S3_SECRET_ACCESS_KEY"`
	MediaS3UsePathStyle    bool   `env:"MEDIA_S3_USE_PATH_STYLE" envDefault:"true"`
	MediaImagesBucket      string `env:"MEDIA_IMAGES_BUCKET" envDefault:"bajrang-images"`

	// Catalog
	CatalogBaseFolder     string        `env:"CATALOG_BASE_FOLDER" envDefault:"Bajrang Painters"`
	CatalogPageSize       int           `env:"CATALOG_PAGE_SIZE" envDefault:"500"`
	CatalogRefreshCron    string        `env:"CATALOG_REFRESH_CRON" envDefault:"*/30 * * * *"`
	CatalogRefreshOnStart bool          `env:"CATALOG_REFRESH_ON_START" envDefault:"true"`
	CatalogCacheTTL       time.Duration `env:"CATALOG_CACHE_TTL" envDefault:"24h"`

	// Contact prompt
	PromptDelay      time.Duration `env:"PROMPT_DELAY" envDefault:"30s"`
	PromptSessionTTL time.Duration `env:"PROMPT_SESSION_TTL" envDefault:"2h"`

	// Security
	BcryptCost               int           `env:"BCRYPT_COST" envDefault:"12"`
	RateLimitRequests        int           `env:"RATE_LIMIT_REQUESTS" envDefault:"100"`
	RateLimitDuration        time.Duration `env:"RATE_LIMIT_DURATION" envDefault:"1m"`
	ContactRateLimitRequests int           `env:"CONTACT_RATE_LIMIT_REQUESTS" envDefault:"5"`
	ContactRateLimitDuration time.Duration `env:"CONTACT_RATE_LIMIT_DURATION" envDefault:"10m"`

	// CORS
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000,https://bajrangpainters.com"`
	AllowedMethods []string `env:"ALLOWED_METHODS" envSeparator:"," envDefault:"GET,POST,OPTIONS"`
	AllowedHeaders []string `env:"ALLOWED_HEADERS" envSeparator:"," envDefault:"Content-Type,Authorization"`
}

// New reads the configuration from the environment and validates it.
func New() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch strings.ToLower(c.MediaHost) {
	case MediaHostCloudinary, MediaHostS3:
	default:
		return fmt.Errorf("invalid MEDIA_HOST %q: must be %q or %q", c.MediaHost, MediaHostCloudinary, MediaHostS3)
	}
	if c.CatalogPageSize <= 0 {
		return fmt.Errorf("CATALOG_PAGE_SIZE must be positive, got %d", c.CatalogPageSize)
	}
	if c.PromptDelay <= 0 {
		return fmt.Errorf("PROMPT_DELAY must be positive, got %s", c.PromptDelay)
	}
	if c.CatalogRefreshCron != "" && !gronx.New().IsValid(c.CatalogRefreshCron) {
		return fmt.Errorf("invalid CATALOG_REFRESH_CRON %q", c.CatalogRefreshCron)
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
