package config

import (
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	Twilio    TwilioConfig
	Email     EmailConfig
	Storage   StorageConfig
	SeedDemo  bool
}

type ServerConfig struct {
	Port string
}

type DatabaseConfig struct {
	URL string
}

type JWTConfig struct {
	Secret string
}

type TwilioConfig struct {
	AccountSID string
	AuthToken  string
	CallerID   string
}

type EmailConfig struct {
	ResendAPIKey string
}

type StorageConfig struct {
	Bucket string
	Region string
}

func Load() *Config {
	godotenv.Load()

	return &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "3000"),
		},
		Database: DatabaseConfig{
			URL: getEnv("DATABASE_URL", ""),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", "leadflow-dev-secret"),
		},
		Twilio: TwilioConfig{
			AccountSID: getEnv("TWILIO_ACCOUNT_SID", ""),
			AuthToken:  getEnv("TWILIO_AUTH_TOKEN", ""),
			CallerID:   getEnv("TWILIO_CALLER_ID", ""),
		},
		Email: EmailConfig{
			ResendAPIKey: getEnv("RESEND_API_KEY", ""),
		},
		Storage: StorageConfig{
			Bucket: getEnv("EXPORT_BUCKET", ""),
			Region: getEnv("EXPORT_BUCKET_REGION", "eu-central-1"),
		},
		SeedDemo: getEnv("SEED_DEMO_DATA", "") == "true",
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
