package cmd

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/propvisor/propvisor-cli/internal/ai"
	cfgpkg "github.com/propvisor/propvisor-cli/internal/config"
	"github.com/propvisor/propvisor-cli/internal/server"
	"github.com/propvisor/propvisor-cli/pkg/logging"
	"github.com/propvisor/propvisor-cli/pkg/metrics"
)

var serveAddr string

// clientSummarizer adapts ai.Client to the server.Summarizer capability.
type clientSummarizer struct{ c *ai.Client }

func (s clientSummarizer) Summarize(ctx context.Context, csvData string) (string, error) {
	resp, err := s.c.Summarize(ctx, csvData)
	if err != nil {
		return "", err
	}
	return resp.Summary, nil
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the dashboard HTTP API",
	Long: `Serve exposes the analysis session over HTTP: CSV upload, filter
updates, the derived view, AI summaries, and Prometheus metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg == nil {
			c, err := cfgpkg.Load(cfgFile)
			if err != nil {
				return err
			}
			cfg = c
		}
		// Without an API key the summary endpoint reports the missing key
		// per request; the rest of the dashboard still works.
		client := ai.NewClientWithBaseURL(
			cfg.APIKey,
			time.Duration(cfg.HTTPTimeoutSec)*time.Second,
			cfg.RetryMaxAttempts,
			time.Duration(cfg.RetryBaseDelayMs)*time.Millisecond,
			time.Duration(cfg.RetryMaxDelayMs)*time.Millisecond,
			cfg.SummaryBaseURL,
		)
		level := logging.ParseLevel(cfg.LogLevel)
		if debug {
			level = logging.DebugLevel
		}
		logger := logging.New("propvisor-api", level)
		collector := metrics.NewCollector("propvisor", prometheus.DefaultRegisterer)

		addr := serveAddr
		if addr == "" {
			addr = cfg.ListenAddr
		}
		summaryTimeout := time.Duration(cfg.HTTPTimeoutSec) * time.Second

		srv := server.New(clientSummarizer{client}, logger, collector, summaryTimeout)
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return srv.Run(ctx, addr)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides config, default :8080)")
	rootCmd.AddCommand(serveCmd)
}
