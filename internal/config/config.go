// Package config loads application configuration. Values come from
// environment variables, optionally layered over a reverie.yaml file, with
// defaults suitable for local development. No other package reads the
// environment directly.
package config

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/spf13/viper"
)

// Supported database drivers.
const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

// Supported sketch providers.
const (
	SketchHuggingFace = "huggingface"
	SketchImagen      = "imagen"
	SketchNone        = "none"
)

// Config holds all application configuration. Populated once at startup and
// passed to other packages through the app wiring.
type Config struct {
	// Env is the runtime environment: "development" or "production".
	Env string

	// Port is the HTTP listen port (default: 8080).
	Port int

	// BaseURL is the public-facing URL used for links and redirects.
	BaseURL string

	// LogLevel controls log verbosity: "debug", "info", "warn", "error".
	LogLevel string

	// Timezone decides what "today" means for the journal (default: UTC).
	Timezone string

	Database DatabaseConfig
	Redis    RedisConfig
	Auth     AuthConfig
	Upload   UploadConfig
	Sketch   SketchConfig
}

// DatabaseConfig holds connection parameters for MariaDB or SQLite.
// If DATABASE_URL is set it takes precedence over the individual MariaDB
// fields.
type DatabaseConfig struct {
	// Driver is "mysql" (MariaDB, default) or "sqlite" (single-user local mode).
	Driver string

	// Host is the MariaDB address in host:port form. A missing port gets 3306.
	Host     string
	User     string
	Password string
	Name     string

	// SQLitePath is the database file used when Driver is "sqlite".
	SQLitePath string

	// MigrationsPath is the root of db/migrations; the driver name is appended.
	MigrationsPath string

	dsnOverride string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// DSN returns the connection string for the configured driver.
//
// For MariaDB the DSN is built with the driver's FormatDSN so passwords with
// special characters survive. ClientFoundRows is enabled so UPDATE reports
// matched rows rather than changed rows; the repositories rely on that for
// their update-or-insert writes.
func (d DatabaseConfig) DSN() string {
	if d.Driver == DriverSQLite {
		return "file:" + d.SQLitePath + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	}
	if d.dsnOverride != "" {
		return d.dsnOverride
	}
	cfg := mysql.NewConfig()
	cfg.User = d.User
	cfg.Passwd = d.Password
	cfg.Net = "tcp"
	cfg.Addr = ensurePort(d.Host, "3306")
	cfg.DBName = d.Name
	cfg.ParseTime = true
	cfg.ClientFoundRows = true
	return cfg.FormatDSN()
}

// Migrations returns the migrations directory for the configured driver.
func (d DatabaseConfig) Migrations() string {
	return strings.TrimRight(d.MigrationsPath, "/") + "/" + d.Driver
}

// ensurePort appends the default port when host has none.
func ensurePort(host, defaultPort string) string {
	if _, _, err := net.SplitHostPort(host); err != nil {
		return net.JoinHostPort(host, defaultPort)
	}
	return host
}

// RedisConfig holds Redis connection parameters.
type RedisConfig struct {
	// URL is the Redis connection URL (e.g., "redis://localhost:6379").
	URL string
}

// AuthConfig holds authentication settings.
type AuthConfig struct {
	// SecretKey seeds cookie-bound secrets; 32+ characters in production.
	SecretKey string

	// SessionTTL is how long sessions last before expiring.
	SessionTTL time.Duration
}

// UploadConfig holds media storage settings.
type UploadConfig struct {
	// MaxSize is the maximum accepted image size in bytes.
	MaxSize int64

	// MediaPath is the root directory for stored sketches.
	MediaPath string
}

// SketchConfig configures the image-generation collaborator.
type SketchConfig struct {
	// Provider is "huggingface", "imagen", or "none".
	Provider string

	// APIURL overrides the provider's default endpoint.
	APIURL string

	// APIKey is the bearer token (Hugging Face) or API key (Imagen).
	APIKey string

	// Timeout bounds a single generation call.
	Timeout time.Duration

	// Workers is the number of concurrent generation workers.
	Workers int

	// QueueSize bounds pending generation jobs.
	QueueSize int

	// BackfillSchedule is a cron spec for retrying failed or missing sketches.
	// Empty disables the backfill.
	BackfillSchedule string
}

// Load reads configuration from the environment (and reverie.yaml in the
// working directory, if present).
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("reverie")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	return fromViper(v)
}

// setDefaults registers every key with its development default. Keys are the
// environment variable names so AutomaticEnv binds them one to one.
func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", "development")
	v.SetDefault("PORT", 8080)
	v.SetDefault("BASE_URL", "http://localhost:8080")
	v.SetDefault("LOG_LEVEL", "debug")
	v.SetDefault("TIMEZONE", "UTC")

	v.SetDefault("DB_DRIVER", DriverMySQL)
	v.SetDefault("DB_HOST", "localhost:3306")
	v.SetDefault("DB_USER", "reverie")
	v.SetDefault("DB_PASSWORD", "reverie")
	v.SetDefault("DB_NAME", "reverie")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("SQLITE_PATH", "./data/reverie.db")
	v.SetDefault("MIGRATIONS_PATH", "./db/migrations")
	v.SetDefault("DB_MAX_OPEN_CONNS", 25)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_CONN_MAX_LIFETIME", 5*time.Minute)

	v.SetDefault("REDIS_URL", "redis://localhost:6379")

	v.SetDefault("SECRET_KEY", "")
	v.SetDefault("SESSION_TTL", 720*time.Hour)

	v.SetDefault("MAX_UPLOAD_SIZE", 10*1024*1024)
	v.SetDefault("MEDIA_PATH", "./media")

	v.SetDefault("SKETCH_PROVIDER", SketchHuggingFace)
	v.SetDefault("SKETCH_API_URL", "")
	v.SetDefault("SKETCH_API_KEY", "")
	v.SetDefault("SKETCH_TIMEOUT", 90*time.Second)
	v.SetDefault("SKETCH_WORKERS", 2)
	v.SetDefault("SKETCH_QUEUE_SIZE", 64)
	v.SetDefault("SKETCH_BACKFILL_SCHEDULE", "0 */6 * * *")
}

// fromViper builds and validates a Config from a populated viper instance.
func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Env:      v.GetString("ENV"),
		Port:     v.GetInt("PORT"),
		BaseURL:  v.GetString("BASE_URL"),
		LogLevel: v.GetString("LOG_LEVEL"),
		Timezone: v.GetString("TIMEZONE"),

		Database: DatabaseConfig{
			Driver:          strings.ToLower(v.GetString("DB_DRIVER")),
			Host:            v.GetString("DB_HOST"),
			User:            v.GetString("DB_USER"),
			Password:        v.GetString("DB_PASSWORD"),
			Name:            v.GetString("DB_NAME"),
			SQLitePath:      v.GetString("SQLITE_PATH"),
			MigrationsPath:  v.GetString("MIGRATIONS_PATH"),
			dsnOverride:     v.GetString("DATABASE_URL"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: v.GetDuration("DB_CONN_MAX_LIFETIME"),
		},

		Redis: RedisConfig{
			URL: v.GetString("REDIS_URL"),
		},

		Auth: AuthConfig{
			SecretKey:  v.GetString("SECRET_KEY"),
			SessionTTL: v.GetDuration("SESSION_TTL"),
		},

		Upload: UploadConfig{
			MaxSize:   v.GetInt64("MAX_UPLOAD_SIZE"),
			MediaPath: v.GetString("MEDIA_PATH"),
		},

		Sketch: SketchConfig{
			Provider:         strings.ToLower(v.GetString("SKETCH_PROVIDER")),
			APIURL:           v.GetString("SKETCH_API_URL"),
			APIKey:           v.GetString("SKETCH_API_KEY"),
			Timeout:          v.GetDuration("SKETCH_TIMEOUT"),
			Workers:          v.GetInt("SKETCH_WORKERS"),
			QueueSize:        v.GetInt("SKETCH_QUEUE_SIZE"),
			BackfillSchedule: v.GetString("SKETCH_BACKFILL_SCHEDULE"),
		},
	}

	switch cfg.Database.Driver {
	case DriverMySQL, DriverSQLite:
	default:
		return nil, fmt.Errorf("DB_DRIVER must be %q or %q, got %q", DriverMySQL, DriverSQLite, cfg.Database.Driver)
	}

	switch cfg.Sketch.Provider {
	case SketchHuggingFace, SketchImagen, SketchNone:
	default:
		return nil, fmt.Errorf("SKETCH_PROVIDER must be huggingface, imagen or none, got %q", cfg.Sketch.Provider)
	}
	if cfg.Sketch.Workers < 1 {
		cfg.Sketch.Workers = 1
	}
	if cfg.Sketch.QueueSize < 1 {
		cfg.Sketch.QueueSize = 1
	}

	if _, err := time.LoadLocation(cfg.Timezone); err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", cfg.Timezone, err)
	}

	if cfg.IsProduction() {
		if cfg.Auth.SecretKey == "" {
			return nil, fmt.Errorf("SECRET_KEY is required in production")
		}
		if len(cfg.Auth.SecretKey) < 32 {
			return nil, fmt.Errorf("SECRET_KEY must be at least 32 characters in production")
		}
	}

	// Dev-only default so local runs work without any environment.
	if cfg.Auth.SecretKey == "" {
		cfg.Auth.SecretKey = "dev-secret-key-do-not-use-in-production!!"
	}

	return cfg, nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	env := strings.ToLower(c.Env)
	return env == "development" || env == "dev"
}

// IsProduction returns true for "production" or "prod" in any case.
func (c *Config) IsProduction() bool {
	env := strings.ToLower(c.Env)
	return env == "production" || env == "prod"
}

// Location returns the configured timezone. Load has already validated it.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
