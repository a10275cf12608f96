// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the table-ordering front end
type Config struct {
	App      AppConfig
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Storage  StorageConfig
	CafeAPI  CafeAPIConfig
	Push     PushConfig
	Session  SessionConfig
	Tracking TrackingConfig
	Security SecurityConfig
	Report   ReportConfig
	Logging  LoggingConfig
}

// AppConfig contains application-level configuration
type AppConfig struct {
	Name        string
	Version     string
	Environment string
	Debug       bool
	// PublicURL is where customers reach the menu; table QR codes point here.
	PublicURL string
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port           string
	ReadTimeout    time.Duration
	IdleTimeout    time.Duration
	RequestTimeout time.Duration
}

// DatabaseConfig contains Postgres connection configuration.
// Only used when Storage.Driver is "postgres".
type DatabaseConfig struct {
	Host         string
	Port         string
	Name         string
	User         string
	Password     string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
}

// RedisConfig contains Redis configuration
type RedisConfig struct {
	Host         string
	Port         string
	Password     string
	DB           int
	PoolSize     int
	MinIdleConns int
}

// StorageConfig selects where durable snapshots live
type StorageConfig struct {
	Driver      string // redis, postgres or memory
	SnapshotTTL time.Duration
	// CartIdleTTL drops in-memory carts unused for this long
	CartIdleTTL time.Duration
}

// CafeAPIConfig describes the external café REST API
type CafeAPIConfig struct {
	BaseURL    string
	Timeout    time.Duration
	AuthHeader string
}

// PushConfig describes the push channel transport
type PushConfig struct {
	Transport         string // websocket, amqp or none
	URL               string
	ReconnectAttempts int
	ReconnectBackoff  time.Duration
	Exchange          string
}

// SessionConfig contains browser session cookie configuration
type SessionConfig struct {
	Name   string
	Secret string
	MaxAge int
	Secure bool
}

// TrackingConfig contains live view configuration
type TrackingConfig struct {
	TickInterval time.Duration
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	RateLimitPerMinute int
	CORSAllowedOrigins []string
	CORSAllowedMethods []string
	CORSAllowedHeaders []string
	TrustedProxies     []string
	MaxRequestBytes    int64
}

// ReportConfig contains income report configuration
type ReportConfig struct {
	CafeName string
	Currency string
	Timezone string
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string
	Format string
	File   string
}

// Load loads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found, using environment variables")
	}

	config := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "Cafe Table Ordering"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
			Environment: getEnv("APP_ENV", "development"),
			Debug:       getEnvAsBool("APP_DEBUG", true),
			PublicURL:   strings.TrimRight(getEnv("APP_PUBLIC_URL", "http://localhost:3000"), "/"),
		},
		Server: ServerConfig{
			Port:           getEnv("APP_PORT", "8080"),
			ReadTimeout:    getEnvAsDuration("SERVER_READ_TIMEOUT", 30*time.Second),
			IdleTimeout:    getEnvAsDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
			RequestTimeout: getEnvAsDuration("SERVER_REQUEST_TIMEOUT", 30*time.Second),
		},
		Database: DatabaseConfig{
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnv("DB_PORT", "5432"),
			Name:         getEnv("DB_NAME", "cafe_frontend"),
			User:         getEnv("DB_USER", "cafe"),
			Password:     getEnv("DB_PASSWORD", "cafe"),
			SSLMode:      getEnv("DB_SSL_MODE", "disable"),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			MaxLifetime:  getEnvAsDuration("DB_MAX_LIFETIME", 300*time.Second),
		},
		Redis: RedisConfig{
			Host:         getEnv("REDIS_HOST", "localhost"),
			Port:         getEnv("REDIS_PORT", "6379"),
			Password:     getEnv("REDIS_PASSWORD", ""),
			DB:           getEnvAsInt("REDIS_DB", 0),
			PoolSize:     getEnvAsInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: getEnvAsInt("REDIS_MIN_IDLE_CONNS", 2),
		},
		Storage: StorageConfig{
			Driver:      strings.ToLower(getEnv("STORAGE_DRIVER", "redis")),
			SnapshotTTL: getEnvAsDuration("SNAPSHOT_TTL", 24*time.Hour),
			CartIdleTTL: getEnvAsDuration("CART_IDLE_TTL", 30*time.Minute),
		},
		CafeAPI: CafeAPIConfig{
			BaseURL:    strings.TrimRight(getEnv("CAFE_API_URL", "http://localhost:5000/api"), "/"),
			Timeout:    getEnvAsDuration("CAFE_API_TIMEOUT", 10*time.Second),
			AuthHeader: getEnv("CAFE_API_AUTH_HEADER", "x-auth-token"),
		},
		Push: PushConfig{
			Transport:         strings.ToLower(getEnv("PUSH_TRANSPORT", "websocket")),
			URL:               getEnv("PUSH_URL", "ws://localhost:5000/events"),
			ReconnectAttempts: getEnvAsInt("PUSH_RECONNECT_ATTEMPTS", 5),
			ReconnectBackoff:  getEnvAsDuration("PUSH_RECONNECT_BACKOFF", 2*time.Second),
			Exchange:          getEnv("PUSH_EXCHANGE", "cafe_events"),
		},
		Session: SessionConfig{
			Name:   getEnv("SESSION_NAME", "cafe_session"),
			Secret: getEnv("SESSION_SECRET", "change-this-session-secret-in-production"),
			MaxAge: getEnvAsInt("SESSION_MAX_AGE", 86400),
			Secure: getEnvAsBool("SESSION_SECURE", false),
		},
		Tracking: TrackingConfig{
			TickInterval: getEnvAsDuration("TRACKING_TICK_INTERVAL", time.Second),
		},
		Security: SecurityConfig{
			RateLimitPerMinute: getEnvAsInt("RATE_LIMIT_PER_MINUTE", 300),
			CORSAllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
			CORSAllowedMethods: getEnvAsSlice("CORS_ALLOWED_METHODS", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
			CORSAllowedHeaders: getEnvAsSlice("CORS_ALLOWED_HEADERS", []string{"Origin", "Content-Type", "Accept", "X-Request-ID"}),
			TrustedProxies:     getEnvAsSlice("TRUSTED_PROXIES", []string{}),
			MaxRequestBytes:    getEnvAsInt64("MAX_REQUEST_BYTES", 10<<20),
		},
		Report: ReportConfig{
			CafeName: getEnv("REPORT_CAFE_NAME", "Cafe"),
			Currency: getEnv("REPORT_CURRENCY", "₹"),
			Timezone: getEnv("REPORT_TIMEZONE", "Local"),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
			File:   getEnv("LOG_FILE", ""),
		},
	}

	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.CafeAPI.BaseURL == "" {
		return fmt.Errorf("CAFE_API_URL is required")
	}

	if len(c.Session.Secret) < 32 {
		return fmt.Errorf("SESSION_SECRET must be at least 32 characters long")
	}

	switch c.Storage.Driver {
	case "redis":
		if c.Redis.Host == "" {
			return fmt.Errorf("REDIS_HOST is required")
		}
	case "postgres":
		if c.Database.Host == "" {
			return fmt.Errorf("DB_HOST is required")
		}
		if c.Database.Name == "" {
			return fmt.Errorf("DB_NAME is required")
		}
	case "memory":
	default:
		return fmt.Errorf("unsupported STORAGE_DRIVER %q", c.Storage.Driver)
	}

	switch c.Push.Transport {
	case "websocket", "amqp":
		if c.Push.URL == "" {
			return fmt.Errorf("PUSH_URL is required for %s transport", c.Push.Transport)
		}
	case "none":
	default:
		return fmt.Errorf("unsupported PUSH_TRANSPORT %q", c.Push.Transport)
	}

	if c.Tracking.TickInterval <= 0 {
		return fmt.Errorf("TRACKING_TICK_INTERVAL must be positive")
	}

	if c.Server.Port == "" {
		return fmt.Errorf("APP_PORT is required")
	}

	return nil
}

// IsDevelopment returns true if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsProduction returns true if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetDatabaseDSN returns the database connection string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// GetRedisAddr returns the Redis address
func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Redis.Host, c.Redis.Port)
}

// ReportLocation resolves the timezone income reports are bucketed in
func (c *Config) ReportLocation() *time.Location {
	loc, err := time.LoadLocation(c.Report.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// Helper functions for environment variable parsing

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	return defaultValue
}
