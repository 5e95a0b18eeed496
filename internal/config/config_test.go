package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME",
		"POLZA_API_KEY", "POLZA_API_BASE", "POLZA_MODEL", "POLZA_TIMEOUT_SECONDS",
		"BLOCK_PRIORITY",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg := Load()

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 5432, cfg.DBPort)
	assert.False(t, cfg.HasDB())
	assert.Equal(t, "https://api.polza.ai/api/v1", cfg.PolzaBase)
	assert.Equal(t, "perplexity/sonar", cfg.PolzaModel)
	assert.Equal(t, 30*time.Second, cfg.PolzaTimeout)
	assert.Equal(t, []string{"morning", "day", "evening"}, cfg.BlockPriority)
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("DB_HOST", "localhost")
	t.Setenv("POLZA_TIMEOUT_SECONDS", "5")
	t.Setenv("BLOCK_PRIORITY", "Evening, Day, Morning")

	cfg := Load()
	assert.Equal(t, 9090, cfg.Port)
	assert.True(t, cfg.HasDB())
	assert.Equal(t, 5*time.Second, cfg.PolzaTimeout)
	assert.Equal(t, []string{"evening", "day", "morning"}, cfg.BlockPriority)
}

func TestLoadBadNumbersFallBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "not-a-number")
	t.Setenv("POLZA_TIMEOUT_SECONDS", "-3")

	cfg := Load()
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, 30*time.Second, cfg.PolzaTimeout)
}

func TestConnString(t *testing.T) {
	clearEnv(t)
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_PORT", "5433")
	t.Setenv("DB_USER", "planner")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("DB_NAME", "plans")

	cfg := Load()
	assert.Equal(t,
		"host=db port=5433 user=planner password=secret dbname=plans sslmode=disable",
		cfg.ConnString())
}
