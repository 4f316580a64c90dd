package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// insecureDevSecret keeps local development working without a .env file.
// Validate refuses it outside the development environment.
const insecureDevSecret = "dev-secret-onehope-resources-min-32-chars-long!!"

const minSessionSecretLen = 32

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort string
	AppEnv  string

	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string

	DynamoTables DynamoTables
	S3Bucket     string

	// Delegated identity provider (GoTrue-compatible). Empty BaseURL
	// disables the exchange-token flow.
	AuthProviderURL    string
	AuthProviderAPIKey string
	AuthProviderTimeout time.Duration

	// Redis-backed one-time-code store for multi-instance deployments.
	// Empty means the in-process store is used.
	RedisURL string

	SessionSecret     string
	SessionCookieName string
	SessionTTL        time.Duration

	OTPTTL         time.Duration
	OTPMaxAttempts int

	SMTPHost     string
	SMTPPort     int
	SMTPFrom     string
	SMTPUsername string
	SMTPPassword string

	AdminEmails    []string // allow-list: first login from these addresses creates an admin
	AllowedOrigins []string // CORS allowed origins
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	Users          string
	DownloadLog    string
	SavedResources string
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort: getEnv("APP_PORT", "3000"),
		AppEnv:  getEnv("APP_ENV", "development"),

		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),

		DynamoTables: DynamoTables{
			Users:          getEnv("DYNAMO_TABLE_USERS", "users"),
			DownloadLog:    getEnv("DYNAMO_TABLE_DOWNLOAD_LOG", "download_log"),
			SavedResources: getEnv("DYNAMO_TABLE_SAVED_RESOURCES", "saved_resources"),
		},
		S3Bucket: getEnv("S3_BUCKET_RESOURCES", ""),

		AuthProviderURL:     getEnv("AUTH_PROVIDER_URL", ""),
		AuthProviderAPIKey:  getEnv("AUTH_PROVIDER_API_KEY", ""),
		AuthProviderTimeout: getEnvDuration("AUTH_PROVIDER_TIMEOUT", 10*time.Second),

		RedisURL: getEnv("REDIS_URL", ""),

		SessionSecret:     getEnv("SESSION_SECRET", insecureDevSecret),
		SessionCookieName: getEnv("SESSION_COOKIE_NAME", "onehope_resources_session"),
		SessionTTL:        getEnvDuration("SESSION_TTL", 7*24*time.Hour),

		OTPTTL:         getEnvDuration("OTP_TTL", 10*time.Minute),
		OTPMaxAttempts: getEnvInt("OTP_MAX_ATTEMPTS", 5),

		SMTPHost:     getEnv("SMTP_HOST", "localhost"),
		SMTPPort:     getEnvInt("SMTP_PORT", 1025),
		SMTPFrom:     getEnv("SMTP_FROM", "One Hope Resources <noreply@example.com>"),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),

		AdminEmails:    splitCSV(getEnv("ADMIN_EMAILS", "")),
		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
	}
}

// IsProduction reports whether the app runs outside local development.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// Validate rejects configurations that would silently weaken the trust
// boundary. Called once at startup; a failure is fatal.
func (c *Config) Validate() error {
	if len(c.SessionSecret) < minSessionSecretLen {
		return fmt.Errorf("SESSION_SECRET must be at least %d characters", minSessionSecretLen)
	}
	if c.IsProduction() && c.SessionSecret == insecureDevSecret {
		return fmt.Errorf("SESSION_SECRET is the insecure development default; set a real secret")
	}
	if c.OTPMaxAttempts < 1 {
		return fmt.Errorf("OTP_MAX_ATTEMPTS must be at least 1")
	}
	return nil
}

func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, strings.ToLower(p))
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
