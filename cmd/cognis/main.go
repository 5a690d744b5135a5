// Command cognis drives an investigation session over the demonstration case
// from the terminal.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/dan-solli/cognis/pkg/cognis"
	"github.com/dan-solli/cognis/pkg/config"
	"github.com/dan-solli/cognis/pkg/metrics"
)

var (
	// Global flags
	configPath  string
	verbose     bool
	showMetrics bool

	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "cognis",
	Short: "cognis - forensic investigation workbench",
	Long: `cognis loads a case into an evidentiary graph, answers investigator
questions with citations to the underlying artifacts, and keeps an
append-only audit trail of every action taken.

Configuration is read from --config (YAML), a .env file and COGNIS_*
environment variables, in that order.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := log.InfoLevel
		if verbose {
			level = log.DebugLevel
		}
		logger = slog.New(log.NewWithOptions(os.Stderr, log.Options{
			ReportTimestamp: true,
			Level:           level,
		}))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "cognis.yaml", "Path to YAML configuration")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&showMetrics, "metrics", false, "Print session metrics to stderr on exit")

	auditCmd.Flags().StringVar(&auditText, "text", "", "Case-insensitive text to match")
	auditCmd.Flags().StringVar(&auditAction, "action", "all", "Action or group name to match (auth, evidence, ai, network, report, admin), or all")
	resolveCmd.Flags().BoolVar(&resolveAsync, "async", false, "Resolve through a conversation thread")

	rootCmd.AddCommand(demoCmd)
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(auditCmd)
	rootCmd.AddCommand(hitTestCmd)
	rootCmd.AddCommand(reportCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// openSession loads configuration and opens a session with the sample case
// ingested.
func openSession(ctx context.Context) (*cognis.Session, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.Debug && !verbose {
		logger = slog.New(log.NewWithOptions(os.Stderr, log.Options{
			ReportTimestamp: true,
			Level:           log.DebugLevel,
		}))
	}

	if showMetrics {
		cfg.Metrics = true
	}

	s, err := cognis.Open(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	if err := s.IngestCase(ctx, cognis.SampleCase()); err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to ingest case: %w", err)
	}
	return s, nil
}

// closeSession closes s and, with --metrics, prints what the session's
// collector gathered.
func closeSession(cmd *cobra.Command, s *cognis.Session) {
	if err := s.Close(); err != nil {
		logger.Warn("session close failed", "error", err)
	}
	if !showMetrics {
		return
	}
	pc, ok := s.Metrics().(*metrics.PrometheusCollector)
	if !ok {
		return
	}
	if err := pc.WriteText(cmd.ErrOrStderr()); err != nil {
		logger.Warn("metrics dump failed", "error", err)
	}
}
