package config

import (
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/xieumar/HNG-Framez/internal/logs"
)

// Config holds everything injected from the environment. The database URL and
// the identity provider's public key have no fallback values on purpose.
type Config struct {
	DBUrl         string `validate:"required"`
	AuthPublicKey string `validate:"required"` // PEM, RS256 public key of the identity provider
	Port          string
	LogLevel      string
	AWSRegion     string
	AWSBucket     string
	AWSAccessKey  string
	AWSSecretKey  string
	RedisURL      string // optional; enables cross-instance change fanout
	UploadTTLSecs int
	Debug         bool
}

var validate = validator.New()

// Load reads .env (if present) and the environment, and validates the result.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DBUrl:         os.Getenv("DATABASE_URL"),
		AuthPublicKey: os.Getenv("AUTH_PUBLIC_KEY"),
		Port:          getEnv("PORT", "8080"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		AWSRegion:     os.Getenv("AWS_REGION"),
		AWSBucket:     os.Getenv("AWS_BUCKET_NAME"),
		AWSAccessKey:  os.Getenv("AWS_ACCESS_KEY_ID"),
		AWSSecretKey:  os.Getenv("AWS_SECRET_ACCESS_KEY"),
		RedisURL:      os.Getenv("REDIS_URL"),
		UploadTTLSecs: getEnvAsInt("UPLOAD_TTL_SECONDS", 900),
		Debug:         getEnvAsBool("DEBUG", false),
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, err
	}

	logs.L().Info("config loaded", zap.String("port", cfg.Port), zap.Bool("redis", cfg.RedisURL != ""))
	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultVal int) int {
	if value, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return value
	}
	return defaultVal
}

func getEnvAsBool(key string, defaultVal bool) bool {
	if val, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return val
	}
	return defaultVal
}
