package service

import (
	"github.com/fitstack/reepay-payments/config"
	"github.com/fitstack/reepay-payments/internal/core/domain"
)

// Settings is the gateway configuration the core reads.
type Settings struct {
	WebhookKey          string
	SessionType         domain.SessionKind
	ConfigurationHandle string
	Locale              string
	OrderHandlePrefix   string
	ButtonText          string
	TestMode            bool
}

// SettingsFromConfig picks the gateway settings out of the service config.
func SettingsFromConfig(cfg config.ReepayConfig) Settings {
	return Settings{
		WebhookKey:          cfg.WebhookKey,
		SessionType:         domain.SessionKind(cfg.SessionType),
		ConfigurationHandle: cfg.ConfigurationHandle,
		Locale:              cfg.Locale,
		OrderHandlePrefix:   cfg.OrderHandlePrefix,
		ButtonText:          cfg.ButtonText,
		TestMode:            cfg.TestMode,
	}
}
