// Command dictation types what you say.
//
// Usage:
//
//	dictation [run] [flags]      run the dictation daemon
//	dictation devices            list capture devices
//	dictation config path|show|init
//	dictation version
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
	"go.aimuz.me/dictation/config"
	"go.aimuz.me/dictation/internal/app"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	// Global flags
	configPath string
	logLevel   string
	noColor    bool

	metricsAddr string
)

var rootCmd = &cobra.Command{
	Use:   "dictation",
	Short: "Hands-free dictation with Deepgram",
	Long: `dictation listens to the default microphone, detects when you speak,
streams each utterance to Deepgram and prints the final transcript.

The configuration lives in the OS config directory:
  macOS:   ~/Library/Application Support/dictation/config.json
  Linux:   ~/.config/dictation/config.json
  Windows: %AppData%/dictation/config.json

It is created on first run. Add your Deepgram API key there or set
DEEPGRAM_API_KEY.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	RunE:              runDictation,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the dictation daemon (default)",
	RunE:  runDictation,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "dictation %s (commit %s, built %s)\n", version, commit, date)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default is the OS config dir)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored log output")
	for _, c := range []*cobra.Command{rootCmd, runCmd} {
		c.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address, e.g. localhost:9464")
	}

	rootCmd.AddCommand(runCmd, versionCmd, devicesCmd, configCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// setup installs the logger and resolves the config path.
func setup(cmd *cobra.Command, args []string) error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(logLevel)); err != nil {
		return fmt.Errorf("invalid --log-level %q: %w", logLevel, err)
	}

	slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.TimeOnly,
		NoColor:    noColor,
	})))

	if configPath == "" {
		p, err := config.Path()
		if err != nil {
			return err
		}
		configPath = p
	}
	return nil
}

func runDictation(cmd *cobra.Command, args []string) error {
	slog.Info("starting dictation", "version", version, "commit", commit, "date", date)

	svc, err := app.New(app.Options{
		ConfigPath:  configPath,
		MetricsAddr: metricsAddr,
		Output:      cmd.OutOrStdout(),
		Status:      cmd.ErrOrStderr(),
		Version:     version,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := svc.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	slog.Info("bye")
	return nil
}
