package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port      string
	Env       string
	JWTKey    string
	SaltRound int

	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string

	StripeSecretKey   string
	StripeApiURL      string
	StripeSuccessURL  string
	StripeCancelURL   string
	StripeRedirectURL string

	GCSBucket    string
	GCSCredsFile string

	SendgridApiKey string
	SendgridHost   string
	EmailFrom      string
}

// LoadConfig reads configuration from environment variables or defaults.
// The returned struct is passed explicitly to every component that needs it;
// there is no package-level config singleton.
func LoadConfig() *Config {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found. Using system environment variables.")
	}

	cfg := &Config{
		Port:      getEnv("PORT", "8000"),
		Env:       getEnv("APP_ENV", "development"),
		JWTKey:    getEnv("JWT_SECRET_KEY", "defaultSecret"),
		SaltRound: getEnvInt("SALT_ROUND", 12),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "devcourses"),
		DBPort:     getEnv("DB_PORT", "5432"),

		StripeSecretKey:   getEnv("STRIPE_SECRET_KEY", ""),
		StripeApiURL:      getEnv("STRIPE_API_URL", "https://api.stripe.com"),
		StripeSuccessURL:  getEnv("STRIPE_SUCCESS_URL", "http://localhost:3000/stripe/success"),
		StripeCancelURL:   getEnv("STRIPE_CANCEL_URL", "http://localhost:3000/stripe/cancel"),
		StripeRedirectURL: getEnv("STRIPE_REDIRECT_URL", "http://localhost:3000/stripe/callback"),

		GCSBucket:    getEnv("GCS_BUCKET", "devcourses-media"),
		GCSCredsFile: getEnv("GCS_CREDENTIALS_FILE", ""),

		SendgridApiKey: getEnv("SENDGRID_API_KEY", ""),
		SendgridHost:   getEnv("SENDGRID_HOST", "https://api.sendgrid.com"),
		EmailFrom:      getEnv("EMAIL_FROM", "noreply@devcourses.com"),
	}

	// Validate critical configuration
	if cfg.JWTKey == "defaultSecret" {
		log.Println("Warning: Using default JWT_SECRET_KEY. Update it in your environment.")
	}
	if cfg.StripeSecretKey == "" {
		log.Println("Warning: STRIPE_SECRET_KEY is empty. Paid enrollment will fail.")
	}

	return cfg
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvInt retrieves an environment variable as an integer or returns the default integer value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Error converting environment variable %s to int: %v", key, err)
		return defaultValue
	}
	return intValue
}
