package config

import (
	"errors"
	"os"
	"time"
)

type Config struct {
	HTTPPort                 string
	MongoURI                 string
	MongoDatabase            string
	AccessTokenSecret        string
	PaymentStatusTokenSecret string
	CartServiceURL           string
	ProductServiceURL        string
	UserServiceURL           string
	UpstreamTimeout          time.Duration
	RequestTimeout           time.Duration
	ShutdownTimeout          time.Duration
}

func Load() (*Config, error) {
	cfg := &Config{
		HTTPPort:                 getEnv("ORDER_SERVICE_PORT", "8003"),
		MongoURI:                 getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase:            getEnv("MONGO_DATABASE", "orders"),
		AccessTokenSecret:        os.Getenv("ACCESS_TOKEN_SECRET"),
		PaymentStatusTokenSecret: os.Getenv("PAYMENT_STATUS_TOKEN_SECRET"),
		CartServiceURL:           getEnv("CART_SERVICE_URL", "http://localhost:8002"),
		ProductServiceURL:        getEnv("PRODUCT_SERVICE_URL", "http://localhost:8001"),
		UserServiceURL:           getEnv("USER_SERVICE_URL", "http://localhost:8000"),
		UpstreamTimeout:          getDuration("UPSTREAM_TIMEOUT", 5*time.Second),
		RequestTimeout:           getDuration("REQUEST_TIMEOUT", 30*time.Second),
		ShutdownTimeout:          10 * time.Second,
	}
	return cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	if c.AccessTokenSecret == "" {
		return errors.New("ACCESS_TOKEN_SECRET is required")
	}
	if c.PaymentStatusTokenSecret == "" {
		return errors.New("PAYMENT_STATUS_TOKEN_SECRET is required")
	}
	if c.PaymentStatusTokenSecret == c.AccessTokenSecret {
		return errors.New("PAYMENT_STATUS_TOKEN_SECRET must differ from ACCESS_TOKEN_SECRET")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil && d > 0 {
		return d
	}
	return defaultValue
}
