package config

import (
	"fmt"
	"log"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Port            string `mapstructure:"PORT"`
	DBUrl           string `mapstructure:"DB_URL"`
	DBMaxConns      int32  `mapstructure:"DB_MAX_CONNS"`
	DBMinConns      int32  `mapstructure:"DB_MIN_CONNS"`
	JWTSecret       string `mapstructure:"JWT_SECRET"`
	AppEnv          string `mapstructure:"APP_ENV"`
	EnableDocs      bool   `mapstructure:"ENABLE_API_DOCS"`
	LogLevel        string `mapstructure:"LOG_LEVEL"`
	CORSOrigins     string `mapstructure:"CORS_ORIGINS"`
	SMTPHost        string `mapstructure:"SMTP_HOST"`
	SMTPPort        int    `mapstructure:"SMTP_PORT"`
	SMTPUser        string `mapstructure:"SMTP_USER"`
	SMTPPass        string `mapstructure:"SMTP_PASS"`
	EmailFrom       string `mapstructure:"EMAIL_FROM"`
	ClinicName      string `mapstructure:"CLINIC_NAME"`
	FrontendURL     string `mapstructure:"FRONTEND_URL"`
	NotifyWorkers   int    `mapstructure:"NOTIFY_WORKERS"`
	NotifyQueueSize int    `mapstructure:"NOTIFY_QUEUE_SIZE"`
}

var configKeys = []string{
	"PORT", "DB_URL", "DB_MAX_CONNS", "DB_MIN_CONNS", "JWT_SECRET", "APP_ENV",
	"ENABLE_API_DOCS", "LOG_LEVEL", "CORS_ORIGINS", "SMTP_HOST", "SMTP_PORT", "SMTP_USER",
	"SMTP_PASS", "EMAIL_FROM", "CLINIC_NAME", "FRONTEND_URL", "NOTIFY_WORKERS",
	"NOTIFY_QUEUE_SIZE",
}

func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
	return loadFromEnv()
}

func loadFromEnv() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", "8080")
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("DB_MIN_CONNS", 2)
	v.SetDefault("APP_ENV", "production")
	v.SetDefault("ENABLE_API_DOCS", false)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("CORS_ORIGINS", "*")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("EMAIL_FROM", "turnos@centro.com")
	v.SetDefault("CLINIC_NAME", "Centro de Rehabilitacion")
	v.SetDefault("FRONTEND_URL", "http://localhost:5173")
	v.SetDefault("NOTIFY_WORKERS", 2)
	v.SetDefault("NOTIFY_QUEUE_SIZE", 256)

	for _, key := range configKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind %s: %w", key, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if strings.TrimSpace(cfg.JWTSecret) == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	cfg.AppEnv = normalizeEnv(cfg.AppEnv)
	if cfg.NotifyWorkers <= 0 {
		cfg.NotifyWorkers = 1
	}
	if cfg.DBMinConns > cfg.DBMaxConns {
		cfg.DBMinConns = cfg.DBMaxConns
	}

	return cfg, nil
}

func normalizeEnv(value string) string {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "dev", "develop", "development", "local":
		return "development"
	case "prod", "production":
		return "production"
	case "stage", "staging":
		return "staging"
	case "test", "testing":
		return "test"
	default:
		return strings.ToLower(strings.TrimSpace(value))
	}
}

func (c *Config) DocsEnabled() bool {
	return c != nil && c.EnableDocs && c.AppEnv == "development"
}

// EmailConfigured reports whether every SMTP setting needed to send mail is present.
func (c *Config) EmailConfigured() bool {
	return c != nil && c.SMTPHost != "" && c.SMTPPort > 0 && c.SMTPUser != "" && c.SMTPPass != ""
}

func (c *Config) AllowedOrigins() string {
	if c == nil || strings.TrimSpace(c.CORSOrigins) == "" {
		return "*"
	}
	return c.CORSOrigins
}
