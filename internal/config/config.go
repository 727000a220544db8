package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Backend modes
const (
	BackendREST     = "rest"
	BackendPostgres = "postgres"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	Port        string
	Debug       bool
	RequireAuth bool
	JWTSecret   string // HS256 key for caller tokens; required for postgres mode with auth

	// Backend configuration
	BackendMode   string // "rest" or "postgres"
	BackendURL    string
	BackendAPIKey string
	DatabaseURL   string

	// Dashboard defaults
	DefaultTimeRange    string // "7d", "30d" or "90d"
	RecentMentionsLimit int

	// Competitor chat configuration
	OpenAIAPIKey  string
	OpenAIModel   string
	OpenAIBaseURL string

	// Schedule configuration
	ReportSchedule string // "daily" or "weekly"
	ReportBrandID   string
	ReportRetention int // report snapshots to keep; 0 keeps all
	TimeZone        string

	// Azure Storage configuration
	StorageAccount   string
	StorageContainer string
	SnapshotDir      string // local fallback when no storage account is set

	// Notification configuration
	TeamsWebhookURL   string
	NotificationEmail string
	SMTPHost          string
	SMTPPort          int
	SMTPUsername      string
	SMTPPassword      string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		Debug:       getBoolEnv("DEBUG", false),
		RequireAuth: getBoolEnv("REQUIRE_AUTH", true),
		JWTSecret:   getEnv("JWT_SECRET", ""),

		BackendMode:   strings.ToLower(getEnv("BACKEND_MODE", BackendREST)),
		BackendURL:    strings.TrimRight(getEnv("BACKEND_URL", ""), "/"),
		BackendAPIKey: getEnv("BACKEND_API_KEY", ""),
		DatabaseURL:   getEnv("DATABASE_URL", ""),

		DefaultTimeRange:    getEnv("DEFAULT_TIME_RANGE", "30d"),
		RecentMentionsLimit: getIntEnv("RECENT_MENTIONS_LIMIT", 50),

		OpenAIAPIKey:  getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:   getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIBaseURL: getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),

		ReportSchedule:  getEnv("REPORT_SCHEDULE", "weekly"),
		ReportBrandID:   getEnv("REPORT_BRAND_ID", ""),
		ReportRetention: getIntEnv("REPORT_RETENTION", 0),
		TimeZone:        getEnv("TIMEZONE", "UTC"),

		StorageAccount:   getEnv("AZURE_STORAGE_ACCOUNT", ""),
		StorageContainer: getEnv("AZURE_STORAGE_CONTAINER", "visibility"),
		SnapshotDir:      getEnv("SNAPSHOT_DIR", ""),

		TeamsWebhookURL:   getEnv("TEAMS_WEBHOOK_URL", ""),
		NotificationEmail: getEnv("NOTIFICATION_EMAIL", ""),
		SMTPHost:          getEnv("SMTP_HOST", ""),
		SMTPPort:          getIntEnv("SMTP_PORT", 587),
		SMTPUsername:      getEnv("SMTP_USERNAME", ""),
		SMTPPassword:      getEnv("SMTP_PASSWORD", ""),
	}

	// Validate required configuration
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.BackendMode {
	case BackendREST:
		if c.BackendURL == "" {
			return fmt.Errorf("BACKEND_URL is required when BACKEND_MODE is 'rest'")
		}
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when BACKEND_MODE is 'postgres'")
		}
		// the database connection carries no caller identity, so tokens are verified here
		if c.RequireAuth && c.JWTSecret == "" {
			return fmt.Errorf("JWT_SECRET is required when BACKEND_MODE is 'postgres' and REQUIRE_AUTH is enabled")
		}
	default:
		return fmt.Errorf("BACKEND_MODE must be 'rest' or 'postgres'")
	}

	switch c.DefaultTimeRange {
	case "7d", "30d", "90d":
	default:
		return fmt.Errorf("DEFAULT_TIME_RANGE must be '7d', '30d' or '90d'")
	}

	if c.ReportSchedule != "daily" && c.ReportSchedule != "weekly" {
		return fmt.Errorf("REPORT_SCHEDULE must be 'daily' or 'weekly'")
	}

	if c.ReportRetention < 0 {
		return fmt.Errorf("REPORT_RETENTION must not be negative")
	}

	if c.RecentMentionsLimit <= 0 {
		return fmt.Errorf("RECENT_MENTIONS_LIMIT must be positive")
	}

	if c.NotificationEmail != "" {
		if c.SMTPHost == "" || c.SMTPUsername == "" || c.SMTPPassword == "" {
			return fmt.Errorf("SMTP configuration is required when NOTIFICATION_EMAIL is set")
		}
	}

	return nil
}

// NotificationsEnabled reports whether any report channel is configured
func (c *Config) NotificationsEnabled() bool {
	return c.TeamsWebhookURL != "" || c.NotificationEmail != ""
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
