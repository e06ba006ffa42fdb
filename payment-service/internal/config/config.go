package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/fjod/tradecart/payment-service/internal/gateway"
	"github.com/fjod/tradecart/payment-service/internal/repository"
)

type Config struct {
	HTTPPort                 string
	DB                       repository.Credentials
	PhonePe                  gateway.Config
	PhonePeBaseURL           string
	VerifyCallback           bool
	OrderServiceURL          string
	UserServiceURL           string
	UserServiceInternalKey   string
	AccessTokenSecret        string
	PaymentStatusTokenSecret string
	KafkaBrokers             []string
	UpstreamTimeout          time.Duration
	RequestTimeout           time.Duration
	ShutdownTimeout          time.Duration
}

func Load() (*Config, error) {
	port, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	cfg := &Config{
		HTTPPort: getEnv("PAYMENT_SERVICE_PORT", "8004"),
		DB: repository.Credentials{
			Host:              getEnv("DB_HOST", "localhost"),
			Port:              port,
			User:              getEnv("DB_USER", "postgres"),
			Password:          getEnv("DB_PASSWORD", "postgres"),
			DBName:            getEnv("DB_NAME", "payments"),
			MigrationsDirPath: getEnv("MIGRATIONS_PATH", "./internal/repository/migrations"),
		},
		PhonePe: gateway.Config{
			MerchantID:  getEnv("PHONEPE_MERCHANT_ID", "PGTESTPAYUAT86"),
			SaltKey:     getEnv("PHONEPE_SALT_KEY", "96434309-7796-489d-8924-ab56988a6076"),
			SaltIndex:   getEnv("PHONEPE_SALT_INDEX", "1"),
			RedirectURL: getEnv("PHONEPE_REDIRECT_URL", "http://localhost:5173/order-success"),
			CallbackURL: getEnv("PHONEPE_WEBHOOK_URL", "http://localhost:8004/webhook/phonepe"),
		},
		PhonePeBaseURL:           getEnv("PHONEPE_BASE_URL", "https://api-preprod.phonepe.com/apis/pg-sandbox"),
		VerifyCallback:           getBool("PHONEPE_VERIFY_CALLBACK", false),
		OrderServiceURL:          getEnv("ORDER_SERVICE_URL", "http://localhost:8003"),
		UserServiceURL:           getEnv("USER_SERVICE_URL", "http://localhost:8000"),
		UserServiceInternalKey:   os.Getenv("USER_SERVICE_INTERNAL_KEY"),
		AccessTokenSecret:        os.Getenv("ACCESS_TOKEN_SECRET"),
		PaymentStatusTokenSecret: os.Getenv("PAYMENT_STATUS_TOKEN_SECRET"),
		KafkaBrokers:             splitList(getEnv("KAFKA_BROKERS", "")),
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
	if c.UserServiceInternalKey == "" {
		return errors.New("USER_SERVICE_INTERNAL_KEY is required")
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

func getBool(key string, defaultValue bool) bool {
	if b, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return b
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
