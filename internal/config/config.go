package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

const (
	StateBackendMemory = "memory"
	StateBackendRedis  = "redis"
)

type Config struct {
	CronSecret string `env:"CRON_SECRET,required"`
	HTTPAddr   string `env:"HTTP_ADDR,default=:8080"`

	DBHost            string        `env:"DB_HOST,required"`
	DBPort            int           `env:"DB_PORT,default=5432"`
	DBUser            string        `env:"DB_USER,required"`
	DBPassword        string        `env:"DB_PASSWORD,required"`
	DBName            string        `env:"DB_NAME,required"`
	DBSSLMode         string        `env:"DB_SSLMODE,default=disable"`
	DBMaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS,default=10"`
	DBMaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS,default=25"`
	DBConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME,default=30m"`

	ResendAPIKey string `env:"RESEND_API_KEY,required"`
	EmailFrom    string `env:"EMAIL_FROM,default=Oddswatch <alerts@oddswatch.app>"`

	PolymarketGammaBaseURL string        `env:"POLYMARKET_GAMMA_BASE_URL,default=https://gamma-api.polymarket.com"`
	PolymarketGammaTimeout time.Duration `env:"POLYMARKET_GAMMA_TIMEOUT,default=10s"`
	PolymarketSiteURL      string        `env:"POLYMARKET_SITE_URL,default=https://polymarket.com"`

	AlertStateBackend    string        `env:"ALERT_STATE_BACKEND,default=memory"`
	AlertStateTTL        time.Duration `env:"ALERT_STATE_TTL,default=720h"`
	RedisAddr            string        `env:"REDIS_ADDR"`
	RedisPassword        string        `env:"REDIS_PASSWORD"`
	RedisDB              int           `env:"REDIS_DB,default=0"`
	IsolateFetchFailures bool          `env:"ALERTS_ISOLATE_FETCH_FAILURES,default=false"`
	CronInterval         time.Duration `env:"CRON_INTERVAL,default=0s"`
	FreeAlertLimit       int           `env:"FREE_ALERT_LIMIT,default=3"`

	TelegramBotToken string `env:"TELEGRAM_BOT_TOKEN"`
	TelegramChatID   int64  `env:"TELEGRAM_CHAT_ID,default=0"`

	LogLevel string `env:"LOG_LEVEL,default=info"`
}

func Load(ctx context.Context) (Config, error) {
	return LoadFrom(ctx, envconfig.OsLookuper())
}

func LoadFrom(ctx context.Context, lookuper envconfig.Lookuper) (Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: lookuper}); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error
	switch c.AlertStateBackend {
	case StateBackendMemory:
	case StateBackendRedis:
		if c.RedisAddr == "" {
			errs = append(errs, errors.New("REDIS_ADDR is required when ALERT_STATE_BACKEND=redis"))
		}
	default:
		errs = append(errs, fmt.Errorf("ALERT_STATE_BACKEND must be %q or %q, got %q", StateBackendMemory, StateBackendRedis, c.AlertStateBackend))
	}
	if (c.TelegramBotToken == "") != (c.TelegramChatID == 0) {
		errs = append(errs, errors.New("TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID must be set together"))
	}
	if c.CronInterval < 0 {
		errs = append(errs, errors.New("CRON_INTERVAL must not be negative"))
	}
	if c.FreeAlertLimit < 0 {
		errs = append(errs, errors.New("FREE_ALERT_LIMIT must not be negative"))
	}
	return errors.Join(errs...)
}

func (c Config) TelegramEnabled() bool {
	return c.TelegramBotToken != "" && c.TelegramChatID != 0
}
