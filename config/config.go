package config

import (
	"errors"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

const defaultJWTSecret = "default_secret_CHANGE_ME"

type Config struct {
	Port               string
	Env                string
	LogLevel           string
	DBUrl              string
	DBAutoMigrate      bool
	JWTSecret          string
	AllowedOrigin      string
	FrontendURL        string // Public storefront URL, used for sitemap links
	AccessTokenExpiry  time.Duration
	RefreshTokenExpiry time.Duration
	// DB Config
	DBMaxConns        int32
	DBMinConns        int32
	DBMaxConnIdleTime time.Duration
	// S3-compatible storage
	S3Endpoint        string
	S3Region          string
	S3AccessKeyID     string
	S3AccessKeySecret string
	S3BucketName      string
	S3PublicURL       string
	// Messaging & shared state
	RabbitMQURL   string
	OrderQueue    string
	RedisURL      string
	NotifyWorkers int
	// Cache
	CacheTaxonomyTTL  time.Duration
	CacheItemTTL      time.Duration
	CacheSitemapTTL   time.Duration
	CacheDashboardTTL time.Duration
	// Upload Configuration
	MaxUploadSizeMB int64
	UploadTimeout   time.Duration
	// Rate limiting
	RateLimitRPS   float64
	RateLimitBurst int
	// Login lockout
	LoginMaxAttempts     int
	LoginLockoutWindow   time.Duration
	LoginLockoutDuration time.Duration
	// Business Rules
	MaxCartQuantity       int
	FreeShippingThreshold decimal.Decimal
	FlatShippingFee       decimal.Decimal
	TaxRatePercent        decimal.Decimal
	LowStockThreshold     int
	SearchTimeout         time.Duration
}

func LoadConfig() *Config {
	// 1. Check if a specific config file is requested via env var
	configFile := os.Getenv("CONFIG_FILE")
	if configFile != "" {
		if err := godotenv.Load(configFile); err != nil {
			log.Printf("Warning: Failed to load config file '%s': %v", configFile, err)
		} else {
			log.Printf("Loaded configuration from %s", configFile)
		}
	} else {
		// 2. Default fallback: .env for local dev, system env vars everywhere else
		if err := godotenv.Load(); err != nil {
			log.Println("No .env file found or error loading it, relying on system env vars")
		}
	}

	cfg := FromEnv()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("CRITICAL: %v", err)
	}
	if cfg.JWTSecret == defaultJWTSecret {
		log.Println("WARNING: Using default JWT secret. Set JWT_SECRET in production.")
	}
	return cfg
}

// FromEnv builds a Config from the current environment without loading dotenv files.
func FromEnv() *Config {
	return &Config{
		Port:               getEnv("PORT", "8080"),
		Env:                getEnv("ENV", "development"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		DBUrl:              getEnv("DB_DSN", ""),
		DBAutoMigrate:      getBoolEnv("DB_AUTO_MIGRATE", false),
		JWTSecret:          getEnv("JWT_SECRET", defaultJWTSecret),
		AllowedOrigin:      getEnv("ALLOWED_ORIGIN", "http://localhost:3000"),
		FrontendURL:        getEnv("FRONTEND_URL", "http://localhost:3000"),
		AccessTokenExpiry:  getDurationEnv("ACCESS_TOKEN_EXPIRY", 15*time.Minute),
		RefreshTokenExpiry: getDurationEnv("REFRESH_TOKEN_EXPIRY", time.Hour*24*7), // Default 7d

		DBMaxConns:        getInt32Env("DB_MAX_CONNS", 20),
		DBMinConns:        getInt32Env("DB_MIN_CONNS", 2),
		DBMaxConnIdleTime: getDurationEnv("DB_MAX_CONN_IDLE_TIME", time.Minute*15),

		S3Endpoint:        getEnv("S3_ENDPOINT", ""),
		S3Region:          getEnv("S3_REGION", "auto"),
		S3AccessKeyID:     getEnv("S3_ACCESS_KEY_ID", ""),
		S3AccessKeySecret: getEnv("S3_ACCESS_KEY_SECRET", ""),
		S3BucketName:      getEnv("S3_BUCKET_NAME", ""),
		S3PublicURL:       getEnv("S3_PUBLIC_URL", ""),

		RabbitMQURL:   getEnv("RABBITMQ_URL", ""),
		OrderQueue:    getEnv("ORDER_QUEUE", "orders"),
		RedisURL:      getEnv("REDIS_URL", ""),
		NotifyWorkers: getIntEnv("NOTIFY_WORKERS", 4),

		// Cache defaults: 30m taxonomy, 10m item detail, 6h sitemap, 1m dashboard
		CacheTaxonomyTTL:  getDurationEnv("CACHE_TAXONOMY_TTL", 30*time.Minute),
		CacheItemTTL:      getDurationEnv("CACHE_ITEM_TTL", 10*time.Minute),
		CacheSitemapTTL:   getDurationEnv("CACHE_SITEMAP_TTL", 6*time.Hour),
		CacheDashboardTTL: getDurationEnv("CACHE_DASHBOARD_TTL", time.Minute),

		// Upload defaults: 10MB max, 30s timeout
		MaxUploadSizeMB: getInt64Env("MAX_UPLOAD_SIZE_MB", 10),
		UploadTimeout:   getDurationEnv("UPLOAD_TIMEOUT", 30*time.Second),

		RateLimitRPS:   getFloatEnv("RATE_LIMIT_RPS", 10),
		RateLimitBurst: getIntEnv("RATE_LIMIT_BURST", 20),

		LoginMaxAttempts:     getIntEnv("LOGIN_MAX_ATTEMPTS", 5),
		LoginLockoutWindow:   getDurationEnv("LOGIN_LOCKOUT_WINDOW", 15*time.Minute),
		LoginLockoutDuration: getDurationEnv("LOGIN_LOCKOUT_DURATION", 15*time.Minute),

		MaxCartQuantity:       getIntEnv("MAX_CART_QUANTITY", 10),
		FreeShippingThreshold: getDecimalEnv("FREE_SHIPPING_THRESHOLD", decimal.NewFromInt(1000)),
		FlatShippingFee:       getDecimalEnv("FLAT_SHIPPING_FEE", decimal.NewFromInt(50)),
		TaxRatePercent:        getDecimalEnv("TAX_RATE_PERCENT", decimal.NewFromInt(8)),
		LowStockThreshold:     getIntEnv("LOW_STOCK_THRESHOLD", 3),
		SearchTimeout:         getDurationEnv("SEARCH_TIMEOUT", 5*time.Second),
	}
}

func (c *Config) Validate() error {
	if c.DBUrl == "" {
		return errors.New("DB_DSN environment variable is required")
	}
	if c.LoginMaxAttempts < 1 {
		return errors.New("LOGIN_MAX_ATTEMPTS must be at least 1")
	}
	if c.MaxCartQuantity < 1 {
		return errors.New("MAX_CART_QUANTITY must be at least 1")
	}
	if c.TaxRatePercent.IsNegative() || c.FlatShippingFee.IsNegative() || c.FreeShippingThreshold.IsNegative() {
		return errors.New("pricing settings must not be negative")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// StorageEnabled reports whether image uploads can be served.
func (c *Config) StorageEnabled() bool {
	return c.S3BucketName != "" && c.S3AccessKeyID != "" && c.S3AccessKeySecret != ""
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		log.Printf("Invalid duration for %s, using fallback", key)
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
		log.Printf("Invalid int for %s, using fallback", key)
	}
	return fallback
}

func getInt64Env(key string, fallback int64) int64 {
	if value, exists := os.LookupEnv(key); exists {
		if i, err := strconv.ParseInt(value, 10, 64); err == nil {
			return i
		}
		log.Printf("Invalid int64 for %s, using fallback", key)
	}
	return fallback
}
