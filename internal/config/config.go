package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration
type Config struct {
	Server     ServerConfig
	Storage    StorageConfig
	Mail       MailConfig
	Properties PropertiesConfig
	JWT        JWTConfig
	Cleanup    CleanupConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string
	Port string
}

// StorageConfig holds S3/MinIO connection configuration for the
// attachment bucket
type StorageConfig struct {
	Endpoint        string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	UseSSL          bool
	// PublicBaseURL is the externally reachable base URL for objects
	// shared with "anyone with the link" access. Empty means the
	// endpoint/bucket path is used.
	PublicBaseURL string
	// AuthURL is the remediation URL surfaced when storage access is
	// not granted (console page where the operator re-authorizes).
	AuthURL string
}

// MailConfig holds outgoing (SES) and sent-mailbox (IMAP) configuration
type MailConfig struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Sender          string

	IMAPAddress  string
	IMAPUsername string
	IMAPPassword string
	SentMailbox  string
}

// PropertiesConfig selects and configures the key-value properties store
type PropertiesConfig struct {
	// Backend is one of "redis", "postgres", "memory"
	Backend   string
	Namespace string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	PostgresDSN string
}

// JWTConfig holds access token validation configuration
type JWTConfig struct {
	AccessSecret      string
	AccessTokenExpiry time.Duration
	Issuer            string
}

// CleanupConfig holds the attachment retention job configuration
type CleanupConfig struct {
	Enabled  bool
	Interval time.Duration
	MaxAge   time.Duration
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnv("SERVER_PORT", "8080"),
		},
		Storage: StorageConfig{
			Endpoint:        getEnv("STORAGE_ENDPOINT", "localhost:9000"),
			Region:          getEnv("STORAGE_REGION", "us-east-1"),
			AccessKeyID:     getEnv("STORAGE_ACCESS_KEY", ""),
			SecretAccessKey: getEnv("STORAGE_SECRET_KEY", ""),
			Bucket:          getEnv("STORAGE_BUCKET", "mailroom-attachments"),
			UseSSL:          getBoolEnv("STORAGE_USE_SSL", false),
			PublicBaseURL:   getEnv("STORAGE_PUBLIC_BASE_URL", ""),
			AuthURL:         getEnv("STORAGE_AUTH_URL", ""),
		},
		Mail: MailConfig{
			Region:          getEnv("SES_REGION", "us-east-1"),
			AccessKeyID:     getEnv("SES_ACCESS_KEY", ""),
			SecretAccessKey: getEnv("SES_SECRET_KEY", ""),
			Sender:          getEnv("MAIL_SENDER", ""),
			IMAPAddress:     getEnv("IMAP_ADDRESS", ""),
			IMAPUsername:    getEnv("IMAP_USERNAME", ""),
			IMAPPassword:    getEnv("IMAP_PASSWORD", ""),
			SentMailbox:     getEnv("IMAP_SENT_MAILBOX", "Sent"),
		},
		Properties: PropertiesConfig{
			Backend:       getEnv("PROPERTIES_BACKEND", "redis"),
			Namespace:     getEnv("PROPERTIES_NAMESPACE", "mailroom"),
			RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
			RedisPassword: getEnv("REDIS_PASSWORD", ""),
			RedisDB:       getIntEnv("REDIS_DB", 0),
			PostgresDSN:   getEnv("POSTGRES_DSN", ""),
		},
		JWT: JWTConfig{
			AccessSecret:      getEnv("JWT_ACCESS_SECRET", ""),
			AccessTokenExpiry: getDurationEnv("JWT_ACCESS_EXPIRY", 15*time.Minute),
			Issuer:            getEnv("JWT_ISSUER", "mailroom"),
		},
		Cleanup: CleanupConfig{
			Enabled:  getBoolEnv("CLEANUP_ENABLED", true),
			Interval: getDurationEnv("CLEANUP_INTERVAL", 60*time.Minute),
			MaxAge:   getDurationEnv("CLEANUP_MAX_AGE", 24*time.Hour),
		},
	}
}

// getEnv returns environment variable value or default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getIntEnv returns integer from environment variable or default
func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

// getBoolEnv returns boolean from environment variable or default
func getBoolEnv(key string, defaultValue bool) bool {
	switch os.Getenv(key) {
	case "true", "1", "yes":
		return true
	case "false", "0", "no":
		return false
	}
	return defaultValue
}

// getDurationEnv returns duration from environment variable or default.
// Values are parsed as Go durations ("30m", "24h"); bare integers are
// treated as minutes.
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		if minutes, err := strconv.Atoi(value); err == nil {
			return time.Duration(minutes) * time.Minute
		}
	}
	return defaultValue
}
