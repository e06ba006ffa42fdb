package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"
)

type Config struct {
	HTTPPort          string
	CartServiceURL    *url.URL
	OrderServiceURL   *url.URL
	PaymentServiceURL *url.URL
	AccessTokenSecret string
	RequestTimeout    time.Duration
	ShutdownTimeout   time.Duration
}

func Load() (*Config, error) {
	cfg := &Config{
		HTTPPort:          getEnv("HTTP_PORT", "8080"),
		AccessTokenSecret: os.Getenv("ACCESS_TOKEN_SECRET"),
		RequestTimeout:    getDuration("REQUEST_TIMEOUT", 30*time.Second),
		ShutdownTimeout:   10 * time.Second,
	}

	var err error
	if cfg.CartServiceURL, err = parseURL("CART_SERVICE_URL", "http://localhost:8002"); err != nil {
		return nil, err
	}
	if cfg.OrderServiceURL, err = parseURL("ORDER_SERVICE_URL", "http://localhost:8003"); err != nil {
		return nil, err
	}
	if cfg.PaymentServiceURL, err = parseURL("PAYMENT_SERVICE_URL", "http://localhost:8004"); err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	if c.AccessTokenSecret == "" {
		return errors.New("ACCESS_TOKEN_SECRET is required")
	}
	return nil
}

func parseURL(key, defaultValue string) (*url.URL, error) {
	u, err := url.Parse(getEnv(key, defaultValue))
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", key, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid %s: absolute URL required", key)
	}
	return u, nil
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
