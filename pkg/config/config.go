package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = ""

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App      AppConfig
	API      APIConfig
	Intent   IntentConfig
	Speech   SpeechConfig
	Storage  StorageConfig
	Checkout CheckoutConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"TRENDBASKET_APP_ENV" default:"dev"`
	LogLevel     string `envconfig:"TRENDBASKET_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"TRENDBASKET_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// APIConfig points at the storefront REST backend.
type APIConfig struct {
	BaseURL string        `envconfig:"TRENDBASKET_API_BASE_URL" default:"http://localhost:5000/api/v1"`
	Timeout time.Duration `envconfig:"TRENDBASKET_API_TIMEOUT" default:"15s"`
}

// IntentConfig points at the intent-prediction service.
type IntentConfig struct {
	BaseURL        string        `envconfig:"TRENDBASKET_INTENT_BASE_URL" default:"http://localhost:5001"`
	Timeout        time.Duration `envconfig:"TRENDBASKET_INTENT_TIMEOUT" default:"30s"`
	RequestsPerSec float64       `envconfig:"TRENDBASKET_INTENT_RPS" default:"1"`
	Burst          int           `envconfig:"TRENDBASKET_INTENT_BURST" default:"2"`
}

// SpeechConfig tunes the voice assistant. ProcessingDelay is the pause the
// assistant holds between the "searching" announcement and applying the
// category filter; NavigationDelay is the pause before acting on a
// navigation command.
type SpeechConfig struct {
	Locale          string        `envconfig:"TRENDBASKET_SPEECH_LOCALE" default:"en-IN"`
	Rate            float64       `envconfig:"TRENDBASKET_SPEECH_RATE" default:"0.9"`
	ProcessingDelay time.Duration `envconfig:"TRENDBASKET_SPEECH_PROCESSING_DELAY" default:"3s"`
	NavigationDelay time.Duration `envconfig:"TRENDBASKET_SPEECH_NAVIGATION_DELAY" default:"5s"`
}

// StorageConfig locates the durable local key-value store.
type StorageConfig struct {
	Path string `envconfig:"TRENDBASKET_STORAGE_PATH" default:"trendbasket.db"`
}

// CheckoutConfig carries the fixed tax rate applied at checkout.
type CheckoutConfig struct {
	TaxRatePercent string `envconfig:"TRENDBASKET_CHECKOUT_TAX_RATE" default:"8"`
}
