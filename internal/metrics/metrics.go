// Package metrics sets up VictoriaMetrics push and names the counters the
// payment service records.
package metrics

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/VictoriaMetrics/metrics"

	"github.com/fitstack/reepay-payments/config"
)

// Setup starts pushing metrics when a URL is configured.
func Setup(cfg config.MetricsConfig, logger *slog.Logger) {
	if cfg.URL == "" {
		return
	}

	interval := time.Duration(cfg.IntervalMs) * time.Millisecond
	if err := metrics.InitPush(cfg.URL, interval, cfg.CommonLabels, true); err != nil {
		logger.Error("Error initializing metrics push", "error", err)
	}
}

// Webhook counts webhook deliveries by outcome.
func Webhook(result string) *metrics.Counter {
	return metrics.GetOrCreateCounter(fmt.Sprintf(`reepay_webhook_total{result=%q}`, result))
}

// Reconcile counts payment transitions by transition and outcome.
func Reconcile(transition, result string) *metrics.Counter {
	return metrics.GetOrCreateCounter(fmt.Sprintf(`reepay_reconcile_total{transition=%q,result=%q}`, transition, result))
}

// CheckoutSession counts checkout session creation attempts.
func CheckoutSession(kind, result string) *metrics.Counter {
	return metrics.GetOrCreateCounter(fmt.Sprintf(`reepay_checkout_session_total{kind=%q,result=%q}`, kind, result))
}

// Return counts customer returns by outcome.
func Return(result string) *metrics.Counter {
	return metrics.GetOrCreateCounter(fmt.Sprintf(`reepay_return_total{result=%q}`, result))
}

// Callback counts callback queue items by outcome.
func Callback(result string) *metrics.Counter {
	return metrics.GetOrCreateCounter(fmt.Sprintf(`reepay_callback_total{result=%q}`, result))
}

// ProcessorRequest tracks Reepay API latency per endpoint.
func ProcessorRequest(endpoint string) *metrics.Histogram {
	return metrics.GetOrCreateHistogram(fmt.Sprintf(`reepay_api_request_duration_seconds{endpoint=%q}`, endpoint))
}
