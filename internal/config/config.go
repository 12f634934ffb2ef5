package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds application configuration
type Config struct {
	APIBase      string
	DBDriver     string
	DBConn       string
	LogLevel     string
	HTTPTimeout  time.Duration
	Schedule     string // cron expression; empty means a single run
	AdminPort    string
	JWTSecret    string
	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	SenderEmail  string
	ReportEmail  string
}

// NewConfig loads configuration from environment variables
func NewConfig() (*Config, error) {
	timeoutSec, err := strconv.Atoi(getEnv("HTTP_TIMEOUT", "8"))
	if err != nil || timeoutSec <= 0 {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT: %s", getEnv("HTTP_TIMEOUT", "8"))
	}

	cfg := &Config{
		APIBase:      getEnv("API_BASE", "https://jsonplaceholder.typicode.com"),
		DBDriver:     getEnv("DB_DRIVER", "sqlite3"),
		LogLevel:     getEnv("LOG_LEVEL", "INFO"),
		HTTPTimeout:  time.Duration(timeoutSec) * time.Second,
		Schedule:     getEnv("ETL_SCHEDULE", ""),
		AdminPort:    getEnv("ADMIN_PORT", "8080"),
		JWTSecret:    getEnv("JWT_SECRET", "secret"),
		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getEnv("SMTP_PORT", "587"),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		SenderEmail:  getEnv("SENDER_EMAIL", "etl@example.com"),
		ReportEmail:  getEnv("REPORT_EMAIL", ""),
	}

	switch cfg.DBDriver {
	case "sqlite3":
		cfg.DBConn = getEnv("DB_PATH", "pipeline.db")
	case "postgres":
		cfg.DBConn = getEnv("DB_CONN", "")
		if cfg.DBConn == "" {
			return nil, fmt.Errorf("DB_CONN is required when DB_DRIVER=postgres")
		}
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER: %s", cfg.DBDriver)
	}

	if cfg.APIBase == "" {
		return nil, fmt.Errorf("API_BASE is required")
	}

	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}
