package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requiredEnv() map[string]string {
	return map[string]string{
		"CRON_SECRET":    "s3cret",
		"DB_HOST":        "localhost",
		"DB_USER":        "oddswatch",
		"DB_PASSWORD":    "pw",
		"DB_NAME":        "oddswatch",
		"RESEND_API_KEY": "re_123",
	}
}

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom(context.Background(), envconfig.MapLookuper(requiredEnv()))
	require.NoError(t, err)

	assert.Equal(t, "s3cret", cfg.CronSecret)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, 5432, cfg.DBPort)
	assert.Equal(t, 30*time.Minute, cfg.DBConnMaxLifetime)
	assert.Equal(t, "Oddswatch <alerts@oddswatch.app>", cfg.EmailFrom)
	assert.Equal(t, "https://gamma-api.polymarket.com", cfg.PolymarketGammaBaseURL)
	assert.Equal(t, StateBackendMemory, cfg.AlertStateBackend)
	assert.False(t, cfg.IsolateFetchFailures)
	assert.Zero(t, cfg.CronInterval)
	assert.Equal(t, 3, cfg.FreeAlertLimit)
	assert.False(t, cfg.TelegramEnabled())
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadFrom_MissingRequired(t *testing.T) {
	for _, key := range []string{"CRON_SECRET", "DB_HOST", "RESEND_API_KEY"} {
		t.Run(key, func(t *testing.T) {
			env := requiredEnv()
			delete(env, key)
			_, err := LoadFrom(context.Background(), envconfig.MapLookuper(env))
			require.Error(t, err)
			assert.Contains(t, err.Error(), key)
		})
	}
}

func TestLoadFrom_Overrides(t *testing.T) {
	env := requiredEnv()
	env["ALERT_STATE_BACKEND"] = "redis"
	env["REDIS_ADDR"] = "redis:6379"
	env["ALERTS_ISOLATE_FETCH_FAILURES"] = "true"
	env["CRON_INTERVAL"] = "5m"
	env["TELEGRAM_BOT_TOKEN"] = "123:abc"
	env["TELEGRAM_CHAT_ID"] = "-10042"

	cfg, err := LoadFrom(context.Background(), envconfig.MapLookuper(env))
	require.NoError(t, err)
	assert.Equal(t, StateBackendRedis, cfg.AlertStateBackend)
	assert.True(t, cfg.IsolateFetchFailures)
	assert.Equal(t, 5*time.Minute, cfg.CronInterval)
	assert.True(t, cfg.TelegramEnabled())
	assert.Equal(t, int64(-10042), cfg.TelegramChatID)
}

func TestValidate(t *testing.T) {
	valid := Config{AlertStateBackend: StateBackendMemory}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"unknown backend", func(c *Config) { c.AlertStateBackend = "etcd" }, "ALERT_STATE_BACKEND"},
		{"redis without addr", func(c *Config) { c.AlertStateBackend = StateBackendRedis }, "REDIS_ADDR"},
		{"telegram token only", func(c *Config) { c.TelegramBotToken = "t" }, "TELEGRAM_CHAT_ID"},
		{"telegram chat only", func(c *Config) { c.TelegramChatID = 1 }, "TELEGRAM_BOT_TOKEN"},
		{"negative interval", func(c *Config) { c.CronInterval = -time.Second }, "CRON_INTERVAL"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
