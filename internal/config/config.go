// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Environment string
	Server      ServerConfig
	Database    DatabaseConfig
	JWT         JWTConfig
	Gemini      GeminiConfig
	Gamma       GammaConfig
	ECPay       ECPayConfig
	AWS         AWSConfig
	Admin       AdminConfig
	Frontend    FrontendConfig
	I18n        I18nConfig
}

type ServerConfig struct {
	Port         string
	Host         string
	ReadTimeout  int
	WriteTimeout int
	IdleTimeout  int
}

type DatabaseConfig struct {
	Host         string
	Port         string
	User         string
	Password     string
	Database     string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  int
	LogLevel     string
}

type JWTConfig struct {
	SecretKey      string
	AccessTokenTTL int // in hours
}

type GeminiConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

type GammaConfig struct {
	APIKey       string
	BaseURL      string
	PollInterval int // in seconds
	MaxAttempts  int
}

type ECPayConfig struct {
	MerchantID  string
	HashKey     string
	HashIV      string
	CallbackURL string
	ActionURL   string
}

type AWSConfig struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	S3Bucket        string
	CloudFrontURL   string
}

type AdminConfig struct {
	OwnerUID      string
	AnalysisLimit int // free-tier analyses per user, 0 disables the quota
}

type FrontendConfig struct {
	BaseURL string
}

type I18nConfig struct {
	DefaultLocale string
	LocalesPath   string
}

func Load() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	config := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			Host:         getEnv("SERVER_HOST", "localhost"),
			ReadTimeout:  getEnvAsInt("SERVER_READ_TIMEOUT", 15),
			WriteTimeout: getEnvAsInt("SERVER_WRITE_TIMEOUT", 120),
			IdleTimeout:  getEnvAsInt("SERVER_IDLE_TIMEOUT", 60),
		},
		Database: DatabaseConfig{
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnv("DB_PORT", "5432"),
			User:         getEnv("DB_USER", "postgres"),
			Password:     getEnv("DB_PASSWORD", ""),
			Database:     getEnv("DB_NAME", "flypig"),
			SSLMode:      getEnv("DB_SSL_MODE", "disable"),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 25),
			MaxLifetime:  getEnvAsInt("DB_MAX_LIFETIME", 300),
			LogLevel:     getEnv("DB_LOG_LEVEL", "silent"),
		},
		JWT: JWTConfig{
			SecretKey:      getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
			AccessTokenTTL: getEnvAsInt("JWT_ACCESS_TTL", 24), // 24 hours
		},
		Gemini: GeminiConfig{
			APIKey:  getEnv("GEMINI_API_KEY", ""),
			BaseURL: getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
			Model:   getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		},
		Gamma: GammaConfig{
			APIKey:       getEnv("GAMMA_API_KEY", ""),
			BaseURL:      getEnv("GAMMA_BASE_URL", "https://public-api.gamma.app/v0.2"),
			PollInterval: getEnvAsInt("GAMMA_POLL_INTERVAL", 5),
			MaxAttempts:  getEnvAsInt("GAMMA_MAX_ATTEMPTS", 24),
		},
		ECPay: ECPayConfig{
			MerchantID:  getEnv("ECPAY_MERCHANT_ID", ""),
			HashKey:     getEnv("ECPAY_HASH_KEY", ""),
			HashIV:      getEnv("ECPAY_HASH_IV", ""),
			CallbackURL: getEnv("ECPAY_CALLBACK_URL", ""),
			ActionURL:   getEnv("ECPAY_ACTION_URL", "https://payment-stage.ecpay.com.tw/Cashier/AioCheckOut/V5"),
		},
		AWS: AWSConfig{
			Region:          getEnv("AWS_REGION", "ap-northeast-1"),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			S3Bucket:        getEnv("AWS_S3_BUCKET", "flypig-assets"),
			CloudFrontURL:   getEnv("AWS_CLOUDFRONT_URL", ""),
		},
		Admin: AdminConfig{
			OwnerUID:      getEnv("ADMIN_OWNER_UID", ""),
			AnalysisLimit: getEnvAsInt("FREE_ANALYSIS_LIMIT", 3),
		},
		Frontend: FrontendConfig{
			BaseURL: getEnv("FRONTEND_BASE_URL", "https://flypigaige.web.app/"),
		},
		I18n: I18nConfig{
			DefaultLocale: getEnv("DEFAULT_LOCALE", "en"),
			LocalesPath:   getEnv("LOCALES_PATH", "./internal/i18n/locales"),
		},
	}

	return config, config.Validate()
}

func (c *Config) Validate() error {
	if c.JWT.SecretKey == "your-secret-key-change-in-production" && c.Environment == "production" {
		return fmt.Errorf("JWT secret key must be changed in production")
	}

	if c.Database.Password == "" && c.Environment == "production" {
		return fmt.Errorf("database password is required in production")
	}

	if c.Gemini.APIKey == "" && c.Environment == "production" {
		return fmt.Errorf("gemini API key is required in production")
	}

	return nil
}

// ECPayEnabled reports whether all gateway credentials are present. Order
// creation and callback verification are not offered without them.
func (c *Config) ECPayEnabled() bool {
	return c.ECPay.MerchantID != "" && c.ECPay.HashKey != "" &&
		c.ECPay.HashIV != "" && c.ECPay.CallbackURL != ""
}

// GammaEnabled reports whether the document-generation service is configured.
func (c *Config) GammaEnabled() bool {
	return c.Gamma.APIKey != ""
}

// Helper functions
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

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(strings.ToLower(value)); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
