package config

import (
	"os"
	"strconv"
	"time"
)

// DatabaseConfig holds PostgreSQL database connection settings.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
}

// SQLiteConfig holds settings for the single-file SQLite backend.
type SQLiteConfig struct {
	Path string
}

// RedisConfig holds settings for the Redis backend.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// MinIOConfig holds object storage settings for MinIO.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// StoreConfig selects the key-value backend that holds the journal blob and preferences.
type StoreConfig struct {
	// Backend is one of: postgres, sqlite, redis, minio, memory.
	Backend string
	// Prefix namespaces every key written by this service.
	Prefix string
}

// GeocoderConfig configures the reverse geocoding client.
type GeocoderConfig struct {
	URL             string
	UserAgent       string
	Timeout         time.Duration
	LocationTimeout time.Duration
}

// NotificationConfig configures post-save notifications.
type NotificationConfig struct {
	Enabled    bool
	WebhookURL string
	Timeout    time.Duration
}

// PhotoConfig controls where captured photos are written in object storage.
type PhotoConfig struct {
	Prefix string
	// LinkTTL is the lifetime of presigned photo links. Zero streams photos through the API.
	LinkTTL time.Duration
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost      string
	Port         string
	Timezone     string
	Database     DatabaseConfig
	SQLite       SQLiteConfig
	Redis        RedisConfig
	MinIO        MinIOConfig
	Store        StoreConfig
	Geocoder     GeocoderConfig
	Notification NotificationConfig
	Photo        PhotoConfig
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	return &AppConfig{
		AppHost:  getEnv("APP_HOST", "localhost:8080"),
		Port:     getEnv("PORT", "8080"),
		Timezone: getEnv("APP_TIMEZONE", "UTC"),
		Database: DatabaseConfig{
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
		},
		SQLite: SQLiteConfig{
			Path: getEnv("SQLITE_PATH", "journal.db"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", ""),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
		Store: StoreConfig{
			Backend: getEnv("KV_BACKEND", "postgres"),
			Prefix:  getEnv("KV_PREFIX", ""),
		},
		Geocoder: GeocoderConfig{
			URL:             getEnv("GEOCODER_URL", "https://nominatim.openstreetmap.org"),
			UserAgent:       getEnv("GEOCODER_USER_AGENT", "photojournal/1.0"),
			Timeout:         getEnvDuration("GEOCODER_TIMEOUT_SEC", 5*time.Second),
			LocationTimeout: getEnvDuration("LOCATION_TIMEOUT_SEC", 10*time.Second),
		},
		Notification: NotificationConfig{
			Enabled:    getEnvBool("NOTIFY_ENABLED", true),
			WebhookURL: getEnv("NOTIFY_WEBHOOK_URL", ""),
			Timeout:    getEnvDuration("NOTIFY_TIMEOUT_SEC", 5*time.Second),
		},
		Photo: PhotoConfig{
			Prefix:  getEnv("PHOTO_PREFIX", "photos"),
			LinkTTL: getEnvDuration("PHOTO_LINK_TTL_SEC", 0),
		},
	}
}

// Location resolves the configured timezone, falling back to UTC.
func (c *AppConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil || loc == nil {
		return time.UTC
	}
	return loc
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}

// getEnvDuration reads a whole number of seconds.
func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil && i > 0 {
			return time.Duration(i) * time.Second
		}
	}
	return def
}
