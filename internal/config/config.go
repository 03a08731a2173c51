package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	App struct {
		ENV      string
		SiteName string
		BaseURL  string
	}

	Log struct {
		Level     string
		Format    string
		Component string
		Source    bool
	}

	DB struct {
		DSN      string
		Host     string
		Port     string
		User     string
		Password string
		Name     string
	}

	Redis struct {
		Addr     string
		Password string
		DB       int
	}

	HTTP struct {
		Host string
		Port string
	}

	SMTP struct {
		Host     string
		Port     string
		From     string
		Password string
	}

	Compliments struct {
		PageSize             int
		ActivityEnabled      bool
		NotificationsEnabled bool
		EmailEnabled         bool
	}
}

func New() *Config {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := &Config{}

	// App
	cfg.App.ENV = getEnvDefault("APP_ENV", "development")
	cfg.App.SiteName = getEnvDefault("SITE_NAME", "Member Circle")
	cfg.App.BaseURL = getEnvDefault("BASE_URL", "http://localhost:8080")

	// Logger
	cfg.Log.Level = getEnvDefault("LOG_LEVEL", "info")
	cfg.Log.Format = getEnvDefault("LOG_FORMAT", "text")
	cfg.Log.Component = getEnvDefault("LOG_COMPONENT", "compliments_server")
	cfg.Log.Source = isTruthy(os.Getenv("LOG_SOURCE"))

	// Database
	cfg.DB.DSN = os.Getenv("MYSQL_DSN")
	if cfg.DB.DSN == "" {
		cfg.DB.Host = getEnvDefault("DB_HOST", "localhost")
		cfg.DB.Port = getEnvDefault("DB_PORT", "3306")
		cfg.DB.User = getEnvDefault("DB_USER", "root")
		cfg.DB.Password = getEnvDefault("DB_PASSWORD", "root")
		cfg.DB.Name = getEnvDefault("DB_NAME", "compliments")

		cfg.DB.DSN = fmt.Sprintf(
			"%s:%s@tcp(%s:%s)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
			cfg.DB.User, cfg.DB.Password, cfg.DB.Host, cfg.DB.Port, cfg.DB.Name,
		)
	}

	// Redis
	cfg.Redis.Addr = getEnvDefault("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnvDefault("REDIS_PASSWORD", "")
	if dbStr := getEnvDefault("REDIS_DB", "0"); dbStr != "" {
		if dbInt, err := strconv.Atoi(dbStr); err == nil {
			cfg.Redis.DB = dbInt
		}
	}

	// HTTP
	cfg.HTTP.Host = getEnvDefault("HTTP_HOST", "0.0.0.0")
	cfg.HTTP.Port = getEnvDefault("HTTP_PORT", "8080")

	// SMTP (email notifications are skipped when Host is empty)
	cfg.SMTP.Host = getEnvDefault("SMTP_HOST", "")
	cfg.SMTP.Port = getEnvDefault("SMTP_PORT", "587")
	cfg.SMTP.From = getEnvDefault("SMTP_FROM", "")
	cfg.SMTP.Password = getEnvDefault("SMTP_PASSWORD", "")

	// Compliments feature toggles. Consumers short-circuit to no-ops
	// when their subsystem is disabled.
	cfg.Compliments.PageSize = 5
	if sizeStr := strings.TrimSpace(os.Getenv("COMPLIMENTS_PAGE_SIZE")); sizeStr != "" {
		if size, err := strconv.Atoi(sizeStr); err == nil && size > 0 {
			cfg.Compliments.PageSize = size
		}
	}
	cfg.Compliments.ActivityEnabled = !isFalsy(os.Getenv("COMPLIMENTS_ACTIVITY_ENABLED"))
	cfg.Compliments.NotificationsEnabled = !isFalsy(os.Getenv("COMPLIMENTS_NOTIFICATIONS_ENABLED"))
	cfg.Compliments.EmailEnabled = !isFalsy(os.Getenv("COMPLIMENTS_EMAIL_ENABLED"))

	return cfg
}

func getEnvDefault(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func isTruthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "y", "on":
		return true
	}
	return false
}

func isFalsy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "0", "false", "no", "n", "off":
		return true
	}
	return false
}
