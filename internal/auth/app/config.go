package app

import (
	"os"
	"strconv"
	"time"

	"github.com/aura-clinic/aura/pkg/jwtx"

	"github.com/joho/godotenv"
)

type Config struct {
	Issuer   string // issuer claim for access tokens
	Audience string // audience claim for access tokens

	DatabaseFile   string // path to the SQLite database file
	PepperFile     string // path to the password hashing pepper file
	SigningKeyFile string // path to the Ed25519 signing key (generated if absent)

	AccessTTL  time.Duration
	RefreshTTL time.Duration

	Env       string // dev, staging, prod
	LogLevel  string // debug, info, warn, error
	LogFormat string // json, text
	Port      int

	ShutdownGracePeriod  time.Duration
	HousekeepingInterval time.Duration

	SeedDemoUsers bool // create the demo patient/doctor/admin accounts on an empty DB

	// Google sign-in. Empty client ID disables audience checking but still
	// requires a verified token.
	GoogleClientID string

	// SMTP relay for password reset mail. An empty host falls back to
	// logging the reset link.
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	MailFrom     string

	// ResetBaseURL is the portal page the emailed reset link points at.
	ResetBaseURL string
}

// LoadConfig reads configuration from the environment, loading a local .env
// file first if one exists.
func LoadConfig() Config {
	_ = godotenv.Load()

	return Config{
		Issuer:   getEnvOrDefault("AURA_ISSUER", "aura-auth"),
		Audience: getEnvOrDefault("AURA_AUDIENCE", "aura-portal"),

		DatabaseFile:   getEnvOrDefault("AURA_DATABASE_FILE", "auth.db"),
		PepperFile:     getEnvOrDefault("AURA_PEPPER_FILE", "pepper"),
		SigningKeyFile: getEnvOrDefault("AURA_SIGNING_KEY_FILE", "signing.pem"),

		AccessTTL:  getEnvDurationOrDefault("AURA_ACCESS_TTL", jwtx.DefaultAccessTokenTTL),
		RefreshTTL: getEnvDurationOrDefault("AURA_REFRESH_TTL", jwtx.DefaultRefreshTokenTTL),

		Env:       getEnvOrDefault("ENV", "dev"),
		LogLevel:  getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat: getEnvOrDefault("LOG_FORMAT", "json"),
		Port:      getEnvIntOrDefault("PORT", 8080),

		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),

		SeedDemoUsers: getEnvBoolOrDefault("AURA_SEED_DEMO_USERS", false),

		GoogleClientID: os.Getenv("AURA_GOOGLE_CLIENT_ID"),

		SMTPHost:     os.Getenv("AURA_SMTP_HOST"),
		SMTPPort:     getEnvIntOrDefault("AURA_SMTP_PORT", 587),
		SMTPUsername: os.Getenv("AURA_SMTP_USERNAME"),
		SMTPPassword: os.Getenv("AURA_SMTP_PASSWORD"),
		MailFrom:     getEnvOrDefault("AURA_MAIL_FROM", "no-reply@aura.clinic"),

		ResetBaseURL: getEnvOrDefault("AURA_RESET_BASE_URL", "http://localhost:5173/reset-password"),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if boolValue, err := strconv.ParseBool(value); err == nil {
		return boolValue
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}
	return defaultValue
}
