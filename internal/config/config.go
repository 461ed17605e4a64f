package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DevelopmentSecret signs tokens when no JWT_SECRET is configured in
// development. It is rejected in every other environment.
const DevelopmentSecret = "pustaka-development-secret"

// Config holds all runtime settings.
type Config struct {
	AppEnv   string
	Port     string
	LogLevel string

	RequestLogging bool

	Database DatabaseConfig
	Auth     AuthConfig
	Upload   UploadConfig
	Admin    AdminConfig

	RabbitMQURL string
}

type DatabaseConfig struct {
	Driver string // "sqlite" or "postgres"
	DSN    string
}

type AuthConfig struct {
	JWTSecret         string
	TokenExpiry       time.Duration
	CookieName        string
	CookieSecure      bool
	AllowRegistration bool
}

type UploadConfig struct {
	Dir       string
	URLPrefix string
	MaxBytes  int
}

// AdminConfig describes an administrator created at startup when Email is set.
type AdminConfig struct {
	Name     string
	Email    string
	Password string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("REQUEST_LOGGING", true)
	v.SetDefault("DB_DRIVER", "sqlite")
	v.SetDefault("DATABASE_DSN", "file:pustaka.db?_foreign_keys=1")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_EXPIRY", "24h")
	v.SetDefault("SESSION_COOKIE", "session_token")
	v.SetDefault("COOKIE_SECURE", false)
	v.SetDefault("ALLOW_REGISTRATION", true)
	v.SetDefault("UPLOAD_DIR", "public/uploads")
	v.SetDefault("UPLOAD_URL_PREFIX", "/uploads")
	v.SetDefault("UPLOAD_MAX_BYTES", 50<<20)
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("ADMIN_NAME", "Administrator")
	v.SetDefault("ADMIN_EMAIL", "")
	v.SetDefault("ADMIN_PASSWORD", "")
}

// Load reads an optional .env file and then the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	return FromViper(v)
}

// FromViper builds a Config from an already populated viper instance.
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		AppEnv:         v.GetString("APP_ENV"),
		Port:           v.GetString("APP_PORT"),
		LogLevel:       v.GetString("LOG_LEVEL"),
		RequestLogging: v.GetBool("REQUEST_LOGGING"),
		Database: DatabaseConfig{
			Driver: strings.ToLower(v.GetString("DB_DRIVER")),
			DSN:    v.GetString("DATABASE_DSN"),
		},
		Auth: AuthConfig{
			JWTSecret:         v.GetString("JWT_SECRET"),
			TokenExpiry:       v.GetDuration("JWT_EXPIRY"),
			CookieName:        v.GetString("SESSION_COOKIE"),
			CookieSecure:      v.GetBool("COOKIE_SECURE"),
			AllowRegistration: v.GetBool("ALLOW_REGISTRATION"),
		},
		Upload: UploadConfig{
			Dir:       v.GetString("UPLOAD_DIR"),
			URLPrefix: v.GetString("UPLOAD_URL_PREFIX"),
			MaxBytes:  v.GetInt("UPLOAD_MAX_BYTES"),
		},
		Admin: AdminConfig{
			Name:     v.GetString("ADMIN_NAME"),
			Email:    v.GetString("ADMIN_EMAIL"),
			Password: v.GetString("ADMIN_PASSWORD"),
		},
		RabbitMQURL: v.GetString("RABBITMQ_URL"),
	}

	if cfg.Auth.JWTSecret == "" && cfg.IsDevelopment() {
		cfg.Auth.JWTSecret = DevelopmentSecret
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// IsDevelopment reports whether the app runs in the development environment.
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.AppEnv, "development")
}

// Validate checks settings that would otherwise fail late or insecurely.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return errors.New("DATABASE_DSN is required")
	}
	if c.Auth.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if !c.IsDevelopment() && c.Auth.JWTSecret == DevelopmentSecret {
		return errors.New("JWT_SECRET must be set outside development")
	}
	if c.Auth.TokenExpiry <= 0 {
		return errors.New("JWT_EXPIRY must be positive")
	}
	if c.Upload.MaxBytes <= 0 {
		return errors.New("UPLOAD_MAX_BYTES must be positive")
	}
	return nil
}
