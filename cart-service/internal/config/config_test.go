package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ACCESS_TOKEN_SECRET", "s")
	t.Setenv("KAFKA_BROKERS", "")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "8002", cfg.HTTPPort)
	assert.Equal(t, 30*24*time.Hour, cfg.CartTTL)
	assert.Empty(t, cfg.KafkaBrokers)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("ACCESS_TOKEN_SECRET", "s")
	t.Setenv("KAFKA_BROKERS", "a:9092, b:9092,")
	t.Setenv("CART_TTL", "2h")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 2*time.Hour, cfg.CartTTL)
}

func TestLoad_RequiresSecret(t *testing.T) {
	t.Setenv("ACCESS_TOKEN_SECRET", "")

	_, err := Load()

	assert.Error(t, err)
}
