package config

import (
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator"
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
)

type Config struct {
	Primary    Primary          `koanf:"primary"`
	Server     ServerConfig     `koanf:"server"`
	Database   DatabaseConfig   `koanf:"database"`
	Cambio     CambioConfig     `koanf:"cambio"`
	Frontend   FrontendConfig   `koanf:"frontend"`
	Paypal     PaypalConfig     `koanf:"paypal"`
	Stripe     StripeConfig     `koanf:"stripe"`
	Recurrente RecurrenteConfig `koanf:"recurrente"`
	Retry      RetryConfig      `koanf:"retry"`
	Logger     LoggerConfig     `koanf:"logger"`
	Worker     WorkerConfig     `koanf:"worker"`
}

type Primary struct {
	Env string `koanf:"env" validate:"required"`
}

type ServerConfig struct {
	Port         string        `koanf:"port" validate:"required"`
	ReadTimeout  time.Duration `koanf:"read_timeout" validate:"required"`
	WriteTimeout time.Duration `koanf:"write_timeout" validate:"required"`
	IdleTimeout  time.Duration `koanf:"idle_timeout" validate:"required"`
}

type DatabaseConfig struct {
	Host            string        `koanf:"host" validate:"required"`
	Port            int           `koanf:"port" validate:"required"`
	User            string        `koanf:"user" validate:"required"`
	Password        string        `koanf:"password" validate:"required"`
	Name            string        `koanf:"name" validate:"required"`
	SSLMode         string        `koanf:"ssl_mode" validate:"required"`
	MaxOpenConns    int           `koanf:"max_open_conns" validate:"required"`
	MaxIdleConns    int           `koanf:"max_idle_conns" validate:"required"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime" validate:"required"`
	ConnMaxIdleTime time.Duration `koanf:"conn_max_idle_time" validate:"required"`
}

// CambioConfig drives the GTQ→USD reconciliation. The default rate is a
// fallback; production deployments override it per quote.
type CambioConfig struct {
	TasaGTQUSD float64 `koanf:"tasa_gtq_usd" validate:"required,gt=0"`
	Tolerancia float64 `koanf:"tolerancia" validate:"gte=0"`
	MonedaBase string  `koanf:"moneda_base" validate:"required"`
}

type FrontendConfig struct {
	URL string `koanf:"url" validate:"required"`
}

// Credentials are deliberately not `required` here: each adapter checks
// its own at construction and fails fast with ConfiguracionInvalida, so a
// deployment can run with a subset of providers enabled.
type PaypalConfig struct {
	ClientID     string        `koanf:"client_id"`
	ClientSecret string        `koanf:"client_secret"`
	WebhookID    string        `koanf:"webhook_id"`
	Modo         string        `koanf:"modo" validate:"required,oneof=test live"`
	BaseURL      string        `koanf:"base_url"`
	Timeout      time.Duration `koanf:"timeout" validate:"required"`
}

type StripeConfig struct {
	SecretKey     string        `koanf:"secret_key"`
	WebhookSecret string        `koanf:"webhook_secret"`
	BaseURL       string        `koanf:"base_url" validate:"required"`
	Timeout       time.Duration `koanf:"timeout" validate:"required"`
}

type RecurrenteConfig struct {
	PublicKey     string        `koanf:"public_key"`
	SecretKey     string        `koanf:"secret_key"`
	WebhookSecret string        `koanf:"webhook_secret"`
	BaseURL       string        `koanf:"base_url" validate:"required"`
	Timeout       time.Duration `koanf:"timeout" validate:"required"`
}

type RetryConfig struct {
	BaseDelay  int32 `koanf:"base_delay"`
	MaxRetries int32 `koanf:"max_retries"`
}

type LoggerConfig struct {
	Level string `koanf:"level"`
}

type WorkerConfig struct {
	Interval  time.Duration `koanf:"interval" validate:"required"`
	BatchSize int           `koanf:"batch_size" validate:"required"`
	// Cutoff is how long a Pago may sit in PENDIENTE/PROCESANDO before the
	// reconciler asks the provider what happened.
	Cutoff time.Duration `koanf:"cutoff" validate:"required"`
}

// defaults seed values the deployment rarely overrides. Everything here
// can still be replaced through PAGOS_* env vars.
var defaults = map[string]interface{}{
	"cambio.tasa_gtq_usd":  7.80,
	"cambio.tolerancia":    0.02,
	"cambio.moneda_base":   "GTQ",
	"paypal.modo":          "test",
	"paypal.timeout":       "30s",
	"stripe.base_url":      "https://api.stripe.com",
	"stripe.timeout":       "30s",
	"recurrente.base_url":  "https://app.recurrente.com/api",
	"recurrente.timeout":   "30s",
	"retry.base_delay":     1,
	"retry.max_retries":    3,
	"worker.interval":      "60s",
	"worker.batch_size":    20,
	"worker.cutoff":        "15m",
	"server.read_timeout":  "15s",
	"server.write_timeout": "15s",
	"server.idle_timeout":  "60s",
	"logger.level":         "info",
}

func LoadConfig() (*Config, error) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults, "."), nil); err != nil {
		logger.Error("failed to load defaults", "error", err)
		return nil, err
	}

	err := k.Load(env.Provider("PAGOS_", ".", func(s string) string {
		return strings.ReplaceAll(
			strings.ToLower(strings.TrimPrefix(s, "PAGOS_")),
			"__",
			".",
		)
	}), nil)
	if err != nil {
		logger.Error("failed to load environment variables", "error", err)
		return nil, err
	}

	mainConfig := &Config{}

	err = k.Unmarshal("", mainConfig)
	if err != nil {
		logger.Error("could not unmarshal main config", "error", err)
		return nil, err
	}

	validate := validator.New()

	err = validate.Struct(mainConfig)
	if err != nil {
		logger.Error("config validation failed", "error", err)
		return nil, err
	}

	return mainConfig, nil
}

func (c *LoggerConfig) NewLogger() *slog.Logger {
	var level slog.Level
	switch strings.ToLower(c.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
}
