package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	Port  string
	Debug bool

	// Database configuration
	DatabasePath string

	// Object storage configuration
	StorageBucket string

	// Queue configuration
	ReportQueueURL string
	AuditQueueURL  string

	// IMS (identity) configuration
	IMSBaseURL      string
	IMSClientID     string
	IMSClientSecret string

	// Pull-request handler webhook
	PRWebhookURL string

	// Notification configuration
	SlackWebhookURL   string
	NotificationEmail string
	SMTPHost          string
	SMTPPort          int
	SMTPUsername      string
	SMTPPassword      string

	// Sandbox audit rate limiting
	SandboxAuditWindowHours int
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Port:  getEnv("PORT", "8080"),
		Debug: getBoolEnv("DEBUG", false),

		DatabasePath: getEnv("DATABASE_PATH", "audit-api.db"),

		StorageBucket: getEnv("STORAGE_BUCKET", ""),

		ReportQueueURL: getEnv("REPORT_QUEUE_URL", ""),
		AuditQueueURL:  getEnv("AUDIT_QUEUE_URL", ""),

		IMSBaseURL:      getEnv("IMS_BASE_URL", "https://ims-na1.adobelogin.com"),
		IMSClientID:     getEnv("IMS_CLIENT_ID", ""),
		IMSClientSecret: getEnv("IMS_CLIENT_SECRET", ""),

		PRWebhookURL: getEnv("PR_WEBHOOK_URL", ""),

		SlackWebhookURL:   getEnv("SLACK_WEBHOOK_URL", ""),
		NotificationEmail: getEnv("NOTIFICATION_EMAIL", ""),
		SMTPHost:          getEnv("SMTP_HOST", ""),
		SMTPPort:          getIntEnv("SMTP_PORT", 587),
		SMTPUsername:      getEnv("SMTP_USERNAME", ""),
		SMTPPassword:      getEnv("SMTP_PASSWORD", ""),

		SandboxAuditWindowHours: getIntEnv("SANDBOX_AUDIT_WINDOW_HOURS", 24),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.StorageBucket == "" {
		return fmt.Errorf("STORAGE_BUCKET is required")
	}

	if c.SandboxAuditWindowHours <= 0 {
		return fmt.Errorf("SANDBOX_AUDIT_WINDOW_HOURS must be positive")
	}

	if c.NotificationEmail != "" {
		if c.SMTPHost == "" || c.SMTPUsername == "" || c.SMTPPassword == "" {
			return fmt.Errorf("SMTP configuration is required when NOTIFICATION_EMAIL is set")
		}
	}

	return nil
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
