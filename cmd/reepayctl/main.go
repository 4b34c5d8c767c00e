// reepayctl is an operator tool for the Reepay account behind the payment
// service. It reads the same configuration as the service.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/fitstack/reepay-payments/config"
	"github.com/fitstack/reepay-payments/internal/adapters/kafka"
	"github.com/fitstack/reepay-payments/internal/adapters/reepay"
	"github.com/fitstack/reepay-payments/internal/core/ports"
)

var Version = "dev"

// app holds what the subcommands share once the config is loaded.
type app struct {
	cfg       *config.Config
	api       *reepay.API
	openQueue func(cfg *config.Config) (ports.CallbackQueue, func(), error)
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	return (&app{openQueue: openKafkaQueue}).rootCmd()
}

func (a *app) rootCmd() *cobra.Command {
	var configDir string

	rootCmd := &cobra.Command{
		Use:           "reepayctl",
		Short:         "reepayctl - inspect and manage the Reepay account",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configDir)
			if err != nil {
				return err
			}
			if cfg.Reepay.PrivateKey == "" {
				return fmt.Errorf("reepay.private-key is not set")
			}
			a.cfg = cfg
			a.api = reepay.NewAPI(cfg.Reepay.APIURL, cfg.Reepay.PrivateKey,
				time.Duration(cfg.Reepay.TimeoutMs)*time.Millisecond)
			return nil
		},
	}
	rootCmd.PersistentFlags().StringVarP(&configDir, "config", "c", ".", "Directory containing config.yaml")

	// Add subcommands
	rootCmd.AddCommand(a.chargeCmd())
	rootCmd.AddCommand(a.customerCmd())
	rootCmd.AddCommand(a.planCmd())
	rootCmd.AddCommand(a.invoiceCmd())
	rootCmd.AddCommand(a.webhookCmd())
	rootCmd.AddCommand(a.callbackCmd())
	rootCmd.AddCommand(a.subscriptionCmd())
	rootCmd.AddCommand(a.addOnCmd())

	return rootCmd
}

// openKafkaQueue connects to the callback topic.
func openKafkaQueue(cfg *config.Config) (ports.CallbackQueue, func(), error) {
	brokers := cfg.KafkaBrokers()
	if len(brokers) == 0 {
		return nil, nil, fmt.Errorf("kafka.brokers is not set")
	}
	writer := kafka.NewWriter(brokers, cfg.Kafka.Topic.Callbacks)
	return kafka.NewCallbackQueue(writer), func() { _ = writer.Close() }, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
