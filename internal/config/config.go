package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	// Environment
	Env string // "development", "production", etc.

	// Server
	ServerAddr string
	BaseURL    string

	// Database
	DatabaseURL string

	// Redis (optional, used for rate limiter storage when set)
	RedisURL string

	// Auth
	JWTSecret string
	JWTTTL    time.Duration

	// OIDC (optional; login via an external identity provider)
	OIDCIssuer       string
	OIDCClientID     string
	OIDCClientSecret string
	OIDCRedirectURL  string

	// SMTP
	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	SMTPFrom     string
	SMTPFromName string
	SMTPTLS      string // "tls", "starttls", or "none"

	// Geolocation
	GeoPrimaryURL   string // primary provider base URL
	GeoSecondaryURL string // secondary provider base URL
	GeoTimeout      time.Duration
	IPEchoTimeout   time.Duration
	ScanWorkers     int
	InvitationTTL   time.Duration
	InvitationSweep time.Duration

	// Site branding (emails, error pages)
	SiteTitle string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		Env:         getEnv("ENV", "development"),
		ServerAddr:  getEnv("SERVER_ADDR", ":3000"),
		BaseURL:     getEnv("BASE_URL", "http://localhost:3000"),
		DatabaseURL: getEnv("DATABASE_URL", "postgres://localhost:5432/qrlinks?sslmode=disable"),
		RedisURL:    getEnv("REDIS_URL", ""),

		JWTSecret: getEnv("JWT_SECRET", "change-me-in-production-min-32-chars"),
		JWTTTL:    getDuration("JWT_TTL", 24*time.Hour),

		OIDCIssuer:       getEnv("OIDC_ISSUER", ""),
		OIDCClientID:     getEnv("OIDC_CLIENT_ID", ""),
		OIDCClientSecret: getEnv("OIDC_CLIENT_SECRET", ""),
		OIDCRedirectURL:  getEnv("OIDC_REDIRECT_URL", "http://localhost:3000/auth/oidc/callback"),

		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getInt("SMTP_PORT", 587),
		SMTPUser:     getEnv("SMTP_USER", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		SMTPFrom:     getEnv("SMTP_FROM", ""),
		SMTPFromName: getEnv("SMTP_FROM_NAME", ""),
		SMTPTLS:      getEnv("SMTP_TLS", "starttls"),

		GeoPrimaryURL:   getEnv("GEO_PRIMARY_URL", "http://ip-api.com/json"),
		GeoSecondaryURL: getEnv("GEO_SECONDARY_URL", "https://ipwho.is"),
		GeoTimeout:      getDuration("GEO_TIMEOUT", 4*time.Second),
		IPEchoTimeout:   getDuration("IP_ECHO_TIMEOUT", 2*time.Second),
		ScanWorkers:     getInt("SCAN_WORKERS", 3),
		InvitationTTL:   getDuration("INVITATION_TTL", 7*24*time.Hour),
		InvitationSweep: getDuration("INVITATION_SWEEP_INTERVAL", time.Hour),

		SiteTitle: getEnv("SITE_TITLE", "QRLinks"),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

// IsDev returns true if the environment is set to development.
func (c *Config) IsDev() bool {
	return c.Env == "development" || c.Env == "dev"
}

// IsEmailEnabled returns true if SMTP is configured.
func (c *Config) IsEmailEnabled() bool {
	return c.SMTPHost != "" && c.SMTPFrom != ""
}

// IsOIDCEnabled returns true if an external identity provider is configured.
func (c *Config) IsOIDCEnabled() bool {
	return c.OIDCIssuer != "" && c.OIDCClientID != ""
}
