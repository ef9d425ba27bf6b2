package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/joho/godotenv"

	apperrors "gemini-relay-bot/internal/common/errors"
)

const (
	ModePolling = "polling"
	ModeWebhook = "webhook"

	SessionBackendMemory = "memory"
	SessionBackendRedis  = "redis"
)

type Config struct {
	Debug bool   `env:"DEBUG" envDefault:"false"`
	Mode  string `env:"BOT_MODE" envDefault:"polling"`

	Server struct {
		Port        int      `env:"HTTP_PORT" envDefault:"8443"`
		WebhookURL  string   `env:"WEBHOOK_URL"`
		TLSCertFile string   `env:"TLS_CERT_FILE"`
		TLSKeyFile  string   `env:"TLS_KEY_FILE"`
		Origins     []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"*"`
	}

	Telegram struct {
		BotToken    string        `env:"BOT_TOKEN,required,notEmpty"`
		Debug       bool          `env:"TELEGRAM_DEBUG" envDefault:"false"`
		AdminIDs    []int64       `env:"ADMIN_IDS" envSeparator:","`
		InitDataTTL time.Duration `env:"INIT_DATA_TTL" envDefault:"24h"`
		PollTimeout int           `env:"POLL_TIMEOUT" envDefault:"60"`
	}

	Database struct {
		Path string `env:"DATABASE_PATH" envDefault:"bot_data.db"`
	}

	Gemini struct {
		APIKey       string        `env:"GEMINI_API_KEY"`
		Model        string        `env:"GEMINI_MODEL" envDefault:"gemini-1.5-flash"`
		BaseURL      string        `env:"GEMINI_BASE_URL" envDefault:"https://generativelanguage.googleapis.com/v1beta"`
		ImageTimeout time.Duration `env:"GEMINI_IMAGE_TIMEOUT" envDefault:"60s"`
		TextTimeout  time.Duration `env:"GEMINI_TEXT_TIMEOUT" envDefault:"30s"`
	}

	Google struct {
		FormID             string            `env:"GOOGLE_FORM_ID"`
		FormFields         map[string]string `env:"GOOGLE_FORM_FIELDS" envSeparator:"," envKeyValSeparator:"="`
		AppsScriptURL      string            `env:"APPS_SCRIPT_URL"`
		ServiceAccountFile string            `env:"GOOGLE_SERVICE_ACCOUNT_FILE"`
		Timeout            time.Duration     `env:"GOOGLE_TIMEOUT" envDefault:"30s"`
	}

	Session struct {
		Backend  string        `env:"SESSION_BACKEND" envDefault:"memory"`
		TTL      time.Duration `env:"SESSION_TTL" envDefault:"24h"`
		Capacity int           `env:"SESSION_CAPACITY" envDefault:"10000"`
	}

	Redis struct {
		Addr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
		Password string `env:"REDIS_PASSWORD" envDefault:""`
		DB       int    `env:"REDIS_DB" envDefault:"0"`
	}

	Workers struct {
		PoolSize int `env:"WORKER_POOL_SIZE" envDefault:"32"`
	}
}

// Load reads the optional .env file and then the process environment.
func Load() (*Config, error) {
	// .env is optional; in production the variables are set directly
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeConfig, "Failed to parse environment")
	}
	cfg.Mode = strings.ToLower(strings.TrimSpace(cfg.Mode))
	cfg.Session.Backend = strings.ToLower(strings.TrimSpace(cfg.Session.Backend))

	return cfg, nil
}

// Validate returns a CONFIG_ERROR naming the first invalid section.
func (cfg *Config) Validate() error {
	if err := cfg.validate(); err != nil {
		return apperrors.Wrapf(err, apperrors.ErrCodeConfig, "Invalid %s configuration", cfg.Mode)
	}
	return nil
}

func (cfg *Config) validate() error {
	err := validation.ValidateStruct(cfg,
		validation.Field(&cfg.Mode, validation.Required, validation.In(ModePolling, ModeWebhook)),
	)
	if err != nil {
		return err
	}

	err = validation.ValidateStruct(&cfg.Telegram,
		validation.Field(&cfg.Telegram.BotToken, validation.Required),
		validation.Field(&cfg.Telegram.PollTimeout, validation.Min(1)),
	)
	if err != nil {
		return fmt.Errorf("telegram: %w", err)
	}

	err = validation.ValidateStruct(&cfg.Session,
		validation.Field(&cfg.Session.Backend, validation.Required, validation.In(SessionBackendMemory, SessionBackendRedis)),
		validation.Field(&cfg.Session.TTL, validation.Required, validation.Min(time.Minute)),
		validation.Field(&cfg.Session.Capacity, validation.Required, validation.Min(1)),
	)
	if err != nil {
		return fmt.Errorf("session: %w", err)
	}

	err = validation.ValidateStruct(&cfg.Database,
		validation.Field(&cfg.Database.Path, validation.Required),
	)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}

	if cfg.Mode != ModeWebhook {
		return nil
	}

	err = validation.ValidateStruct(&cfg.Server,
		validation.Field(&cfg.Server.WebhookURL, validation.Required, validation.By(isAbsoluteURL)),
		validation.Field(&cfg.Server.TLSCertFile, validation.Required),
		validation.Field(&cfg.Server.TLSKeyFile, validation.Required),
		validation.Field(&cfg.Server.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
	if err != nil {
		return fmt.Errorf("webhook mode: %w", err)
	}

	return nil
}

// WebhookEndpoint is the full URL Telegram posts updates to.
func (cfg *Config) WebhookEndpoint() string {
	return strings.TrimRight(cfg.Server.WebhookURL, "/") + "/" + cfg.Telegram.BotToken
}

func (cfg *Config) IsAdmin(userID int64) bool {
	for _, id := range cfg.Telegram.AdminIDs {
		if id == userID {
			return true
		}
	}
	return false
}

func isAbsoluteURL(value interface{}) error {
	s, _ := value.(string)
	u, err := url.ParseRequestURI(s)
	if err != nil {
		return err
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	return nil
}
