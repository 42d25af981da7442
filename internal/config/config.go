package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Storage drivers accepted in STORAGE_DRIVER.
const (
	StorageMemory = "memory"
	StorageRedis  = "redis"
	StorageMySQL  = "mysql"
)

// Config holds everything the storefront reads from the environment.
type Config struct {
	HTTPPort   string
	BackendURL string

	StorageDriver string
	RedisAddr     string
	RedisPassword string
	MySQLDSN      string

	SessionSecret string
	SessionTTL    time.Duration

	CurrencySuffix        string
	CheckoutRedirectDelay time.Duration

	UploadDir     string
	PublicBaseURL string

	CORSOrigin      string
	LogLevel        string
	ShutdownTimeout time.Duration
}

// Load reads .env (if present) and then the process environment.
// A missing .env is not an error; a malformed duration is.
func Load() (*Config, error) {
	// .env is optional; system environment variables still apply.
	_ = godotenv.Load()

	cfg := &Config{
		HTTPPort:       getEnv("HTTP_PORT", "8080"),
		BackendURL:     getEnv("BACKEND_URL", "http://localhost:8801"),
		StorageDriver:  getEnv("STORAGE_DRIVER", StorageMemory),
		RedisAddr:      getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:  getEnv("REDIS_PASSWORD", ""),
		MySQLDSN:       getEnv("DB_DSN_PRIMARY", ""),
		SessionSecret:  getEnv("SESSION_SECRET", ""),
		CurrencySuffix: getEnv("CURRENCY_SUFFIX", "₺"),
		UploadDir:      getEnv("UPLOAD_DIR", "./uploads"),
		PublicBaseURL:  getEnv("BASE_URL", "http://localhost:8080"),
		CORSOrigin:     getEnv("CORS_ORIGIN", "http://localhost:5173"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
	}

	var err error
	if cfg.SessionTTL, err = getDuration("SESSION_TTL", 30*24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.CheckoutRedirectDelay, err = getDuration("CHECKOUT_REDIRECT_DELAY", 2*time.Second); err != nil {
		return nil, err
	}
	if cfg.ShutdownTimeout, err = getDuration("SHUTDOWN_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.StorageDriver {
	case StorageMemory, StorageRedis:
	case StorageMySQL:
		if c.MySQLDSN == "" {
			return fmt.Errorf("config: DB_DSN_PRIMARY is required when STORAGE_DRIVER=%s", StorageMySQL)
		}
	default:
		return fmt.Errorf("config: unknown STORAGE_DRIVER %q", c.StorageDriver)
	}
	if c.SessionSecret == "" {
		return fmt.Errorf("config: SESSION_SECRET is required")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("config: invalid %s %q: %w", key, value, err)
	}
	return d, nil
}
