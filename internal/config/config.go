package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Port            string
	Environment     string
	Database        DatabaseConfig
	OpenAI          OpenAIConfig
	Twilio          TwilioConfig
	LogLevel        string
	AdminAPIKeyHash string // ADMIN_API_KEY_HASH: bcrypt hash verified on /v1/admin routes
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// OpenAIConfig is used to call the intent-classification model
type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string // override for testing; empty means https://api.openai.com
}

// TwilioConfig is used to send WhatsApp replies through the Twilio REST API
type TwilioConfig struct {
	AccountSID   string
	AuthToken    string
	WhatsAppFrom string // e.g. whatsapp:+14155238886
}

func Load() (*Config, error) {
	viper.SetConfigType("env")
	viper.SetConfigName(".env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.AddConfigPath("../..")

	// Set defaults
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("ENVIRONMENT", "development")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("OPENAI_MODEL", "gpt-4o-mini")

	// Read from environment variables
	viper.AutomaticEnv()

	// Try to read .env file (optional)
	if err := viper.ReadInConfig(); err != nil {
		// It's okay if .env doesn't exist, we'll use env vars
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := &Config{
		Port:        getEnvOrViper("PORT", "8080"),
		Environment: getEnvOrViper("ENVIRONMENT", "development"),
		Database: DatabaseConfig{
			Host:     getEnvOrViper("DB_HOST", "localhost"),
			Port:     getEnvOrViper("DB_PORT", "5432"),
			User:     getEnvOrViper("DB_USER", "postgres"),
			Password: getEnvOrViper("DB_PASSWORD", "postgres"),
			DBName:   getEnvOrViper("DB_NAME", "orderbot"),
			SSLMode:  getEnvOrViper("DB_SSLMODE", "disable"),
		},
		OpenAI: OpenAIConfig{
			APIKey:  strings.TrimSpace(getEnvOrViper("OPENAI_API_KEY", "")),
			Model:   getEnvOrViper("OPENAI_MODEL", "gpt-4o-mini"),
			BaseURL: strings.TrimSpace(getEnvOrViper("OPENAI_BASE_URL", "")),
		},
		Twilio: TwilioConfig{
			AccountSID:   strings.TrimSpace(getEnvOrViper("TWILIO_ACCOUNT_SID", "")),
			AuthToken:    strings.TrimSpace(getEnvOrViper("TWILIO_AUTH_TOKEN", "")),
			WhatsAppFrom: strings.TrimSpace(getEnvOrViper("TWILIO_WHATSAPP_FROM", "")),
		},
		LogLevel:        getEnvOrViper("LOG_LEVEL", "info"),
		AdminAPIKeyHash: strings.TrimSpace(getEnvOrViper("ADMIN_API_KEY_HASH", "")),
	}

	// Validate required fields
	if cfg.Twilio.AccountSID == "" {
		return nil, fmt.Errorf("TWILIO_ACCOUNT_SID is required")
	}
	if cfg.Twilio.AuthToken == "" {
		return nil, fmt.Errorf("TWILIO_AUTH_TOKEN is required")
	}
	if cfg.Twilio.WhatsAppFrom == "" {
		return nil, fmt.Errorf("TWILIO_WHATSAPP_FROM is required")
	}

	return cfg, nil
}

func getEnvOrViper(key, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	if viper.IsSet(key) {
		return viper.GetString(key)
	}
	return defaultValue
}
