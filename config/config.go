// Package config handles loading and managing application configuration.
package config

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Reepay   ReepayConfig   `mapstructure:"reepay"`
	Checkout CheckoutConfig `mapstructure:"checkout"`
	Core     CoreConfig     `mapstructure:"core"`
	Security SecurityConfig `mapstructure:"security"`
	Database DatabaseConfig `mapstructure:"database"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
	Callback CallbackConfig `mapstructure:"callback"`
	Logs     LogsConfig     `mapstructure:"logs"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port    string `mapstructure:"port"`
	GinMode string `mapstructure:"gin-mode"` // "debug", "release", or "test"
}

// ReepayConfig is the payment gateway configuration. All values are plain
// strings as entered in the gateway settings.
type ReepayConfig struct {
	PrivateKey          string `mapstructure:"private-key"`
	WebhookKey          string `mapstructure:"webhook-key"`
	CheckoutType        string `mapstructure:"checkout-type"`
	SessionType         string `mapstructure:"session-type"`
	ConfigurationHandle string `mapstructure:"configuration-handle"`
	Locale              string `mapstructure:"locale"`
	OrderHandlePrefix   string `mapstructure:"order-handle-prefix"`
	ButtonText          string `mapstructure:"button-text"`
	APIURL              string `mapstructure:"api-url"`
	CheckoutAPIURL      string `mapstructure:"checkout-api-url"`
	TimeoutMs           int    `mapstructure:"timeout-ms"`
	TestMode            bool   `mapstructure:"test-mode"`
}

// CheckoutConfig holds the storefront pages the return flow redirects to.
type CheckoutConfig struct {
	CompleteURL string `mapstructure:"complete-url"`
	FailureURL  string `mapstructure:"failure-url"`
	PublicURL   string `mapstructure:"public-url"`
}

// CoreConfig holds commerce core (order management) API configuration.
type CoreConfig struct {
	BaseURL   string `mapstructure:"base-url"`
	APIKey    string `mapstructure:"api-key"`
	TimeoutMs int    `mapstructure:"timeout-ms"`
}

// SecurityConfig holds security-related configuration.
type SecurityConfig struct {
	JWTSecret string `mapstructure:"jwt-secret"`
}

// DatabaseConfig selects and configures the payment store.
type DatabaseConfig struct {
	Driver        string `mapstructure:"driver"` // "postgres" or "bolt"
	DSN           string `mapstructure:"dsn"`
	BoltPath      string `mapstructure:"bolt-path"`
	MigrationsDir string `mapstructure:"migrations-dir"`
}

// KafkaTopic names the topics the service uses.
type KafkaTopic struct {
	PaymentEvents string `mapstructure:"payment-events"`
	Callbacks     string `mapstructure:"callbacks"`
}

// KafkaConfig is optional; with no brokers the service runs without events.
type KafkaConfig struct {
	Brokers string     `mapstructure:"brokers"`
	GroupID string     `mapstructure:"group-id"`
	Topic   KafkaTopic `mapstructure:"topic"`
}

// CallbackConfig configures the payment callback worker.
type CallbackConfig struct {
	DisableTransition bool `mapstructure:"disable-transition"`
}

// LogsConfig points at an optional Loki endpoint.
type LogsConfig struct {
	URL   string `mapstructure:"url"`
	Level string `mapstructure:"level"`
}

// MetricsConfig configures VictoriaMetrics push.
type MetricsConfig struct {
	URL          string `mapstructure:"url"`
	IntervalMs   int    `mapstructure:"interval-ms"`
	CommonLabels string `mapstructure:"common-labels"`
}

var defaults = map[string]any{
	"server.port":                 "8080",
	"server.gin-mode":             "debug",
	"reepay.private-key":          "",
	"reepay.webhook-key":          "",
	"reepay.checkout-type":        "redirect",
	"reepay.session-type":         "charge",
	"reepay.configuration-handle": "",
	"reepay.locale":               "",
	"reepay.order-handle-prefix":  "",
	"reepay.button-text":          "",
	"reepay.api-url":              "https://api.reepay.com/v1/",
	"reepay.checkout-api-url":     "https://checkout-api.reepay.com/v1/",
	"reepay.timeout-ms":           15000,
	"reepay.test-mode":            false,
	"checkout.complete-url":       "http://localhost:8000/checkout/complete",
	"checkout.failure-url":        "http://localhost:8000/checkout/review",
	"checkout.public-url":         "http://localhost:8080",
	"core.base-url":               "http://localhost:8000",
	"core.api-key":                "",
	"core.timeout-ms":             10000,
	"security.jwt-secret":         "",
	"database.driver":             "bolt",
	"database.dsn":                "",
	"database.bolt-path":          "payments.db",
	"database.migrations-dir":     "",
	"kafka.brokers":               "",
	"kafka.group-id":              "reepay-payments",
	"kafka.topic.payment-events":  "payment-events",
	"kafka.topic.callbacks":       "reepay-payment-callbacks",
	"callback.disable-transition": false,
	"logs.url":                    "",
	"logs.level":                  "info",
	"metrics.url":                 "",
	"metrics.interval-ms":         10000,
	"metrics.common-labels":       `service="reepay-payments"`,
}

// Load reads config.yaml from path (optional) and the environment.
// Every key can be overridden by an env var, e.g. reepay.private-key is
// REEPAY_PRIVATE_KEY. A .env file in the working directory is loaded first.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

// MustLoad is Load that exits on error.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

// Validate checks the gateway settings the service cannot run without.
func (c *Config) Validate() error {
	if c.Reepay.PrivateKey == "" {
		return errors.New("reepay.private-key is required")
	}
	switch c.Reepay.SessionType {
	case "charge", "recurring":
	default:
		return fmt.Errorf("reepay.session-type %q must be charge or recurring", c.Reepay.SessionType)
	}
	switch c.Reepay.CheckoutType {
	case "redirect":
	case "window", "overlay", "embedded":
		return fmt.Errorf("checkout type %q not implemented", c.Reepay.CheckoutType)
	default:
		return fmt.Errorf("unknown checkout type %q", c.Reepay.CheckoutType)
	}
	switch c.Database.Driver {
	case "bolt":
	case "postgres":
		if c.Database.DSN == "" {
			return errors.New("database.dsn is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unknown database driver %q", c.Database.Driver)
	}
	return nil
}

// KafkaBrokers splits the comma separated broker list.
func (c *Config) KafkaBrokers() []string {
	var brokers []string
	for _, b := range strings.Split(c.Kafka.Brokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}
