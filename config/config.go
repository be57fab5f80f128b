package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	DatabaseURL       string `mapstructure:"DATABASE_URL"`
	DatabaseName      string `mapstructure:"DATABASE_NAME"`
	Env               string `mapstructure:"ENV"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// Auth. When AuthRequired is false the chat API is open and thread ids are global.
	AuthRequired bool   `mapstructure:"AUTH_REQUIRED"`
	JWTSecret    string `mapstructure:"JWT_SECRET"`

	// Redis configuration.
	RedisAddr         string `mapstructure:"REDIS_ADDR"`
	RedisPassword     string `mapstructure:"REDIS_PASSWORD"`
	RedisCheckpointDB int    `mapstructure:"REDIS_CHECKPOINT_DB"`
	RedisQueueDB      int    `mapstructure:"REDIS_QUEUE_DB"`

	// Conversation checkpoints.
	CheckpointBackend string        `mapstructure:"CHECKPOINT_BACKEND"`
	CheckpointTTL     time.Duration `mapstructure:"CHECKPOINT_TTL"`

	// LLM.
	GeminiAPIKey string  `mapstructure:"GEMINI_API_KEY"`
	GeminiModel  string  `mapstructure:"GEMINI_MODEL"`
	Temperature  float32 `mapstructure:"LLM_TEMPERATURE"`

	// Third-party providers.
	TavilyAPIKey    string        `mapstructure:"TAVILY_API_KEY"`
	TavilyURL       string        `mapstructure:"TAVILY_URL"`
	GeocodingURL    string        `mapstructure:"WEATHER_GEOCODING_URL"`
	ForecastURL     string        `mapstructure:"WEATHER_FORECAST_URL"`
	ProviderTimeout time.Duration `mapstructure:"PROVIDER_TIMEOUT"`
	DefaultCurrency string        `mapstructure:"DEFAULT_CURRENCY"`

	// Payments and booking rules.
	StripeKey           string        `mapstructure:"STRIPE_KEY"`
	StripeWebhookSecret string        `mapstructure:"STRIPE_WEBHOOK_SECRET"`
	LockTTL             time.Duration `mapstructure:"LOCK_TTL"`
	RuleReviewAmount    float64       `mapstructure:"RULE_REVIEW_AMOUNT"`
	BlockedDestinations []string      `mapstructure:"BLOCKED_DESTINATIONS"`
	WorkerConcurrency   int           `mapstructure:"WORKER_CONCURRENCY"`
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	// Set default values.
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	viper.SetDefault("AUTH_REQUIRED", false)
	viper.SetDefault("JWT_SECRET", "")
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("DATABASE_NAME", "wanderly")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_CHECKPOINT_DB", 0)
	viper.SetDefault("REDIS_QUEUE_DB", 1)
	viper.SetDefault("CHECKPOINT_BACKEND", "redis")
	viper.SetDefault("CHECKPOINT_TTL", "72h")
	viper.SetDefault("GEMINI_API_KEY", "")
	viper.SetDefault("GEMINI_MODEL", "models/gemini-1.5-pro")
	viper.SetDefault("LLM_TEMPERATURE", 1.0)
	viper.SetDefault("TAVILY_API_KEY", "")
	viper.SetDefault("TAVILY_URL", "https://api.tavily.com/search")
	viper.SetDefault("WEATHER_GEOCODING_URL", "https://geocoding-api.open-meteo.com/v1/search")
	viper.SetDefault("WEATHER_FORECAST_URL", "https://api.open-meteo.com/v1/forecast")
	viper.SetDefault("PROVIDER_TIMEOUT", "10s")
	viper.SetDefault("DEFAULT_CURRENCY", "USD")
	viper.SetDefault("STRIPE_KEY", "")
	viper.SetDefault("STRIPE_WEBHOOK_SECRET", "")
	viper.SetDefault("LOCK_TTL", "15m")
	viper.SetDefault("RULE_REVIEW_AMOUNT", 5000)
	viper.SetDefault("BLOCKED_DESTINATIONS", []string{})
	viper.SetDefault("WORKER_CONCURRENCY", 5)

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}
