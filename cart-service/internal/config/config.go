package config

import (
	"errors"
	"os"
	"strings"
	"time"
)

type Config struct {
	HTTPPort          string
	RedisAddr         string
	RedisPassword     string
	CartTTL           time.Duration
	AccessTokenSecret string
	KafkaBrokers      []string
	RequestTimeout    time.Duration
	ShutdownTimeout   time.Duration
}

func Load() (*Config, error) {
	cfg := &Config{
		HTTPPort:          getEnv("CART_SERVICE_PORT", "8002"),
		RedisAddr:         getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:     getEnv("REDIS_PASSWORD", ""),
		CartTTL:           getDuration("CART_TTL", 30*24*time.Hour),
		AccessTokenSecret: os.Getenv("ACCESS_TOKEN_SECRET"),
		KafkaBrokers:      splitList(getEnv("KAFKA_BROKERS", "")),
		RequestTimeout:    getDuration("REQUEST_TIMEOUT", 30*time.Second),
		ShutdownTimeout:   10 * time.Second,
	}
	return cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	if c.AccessTokenSecret == "" {
		return errors.New("ACCESS_TOKEN_SECRET is required")
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

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
