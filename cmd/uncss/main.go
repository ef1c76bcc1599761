package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"uncss/internal/config"
	"uncss/internal/logging"
)

var (
	// Global flags
	verbose    bool
	configPath string
	endpoint   string
	timeout    time.Duration

	// Loaded in PersistentPreRunE
	cfg    *config.Config
	logger *zap.Logger

	// closeLog flushes the TUI log file
	closeLog = func() {}
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "uncss",
	Short: "uncss - remove unused CSS rules",
	Long: `uncss strips every rule of a stylesheet that matches nothing in a page.

Run without arguments to start the interactive page: paste HTML and CSS,
press ctrl+s, copy the reduced stylesheet with ctrl+y.

Without a configured endpoint the page starts its own reduction service on a
loopback port.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(cmd); err != nil {
			return err
		}

		// The interactive page owns the terminal; it logs to a file, if at all.
		if cmd.Parent() == nil {
			dir, err := os.Getwd()
			if err != nil {
				dir = "."
			}
			l, cleanup, err := logging.New(cfg.Logging, filepath.Join(dir, ".uncss"))
			if err != nil {
				return err
			}
			logger, closeLog = l, cleanup
			return nil
		}

		l, err := logging.NewStderr(cfg.Logging)
		if err != nil {
			return err
		}
		logger = l
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default behavior: launch the interactive page
		return runInteractive(cmd)
	},
}

// loadConfig reads .env, the config file and the flag overrides.
func loadConfig(cmd *cobra.Command) error {
	// .env is optional
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}

	path := configPath
	if path == "" {
		path = config.DefaultConfigFile
	}
	c, err := config.Load(path)
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("endpoint") {
		c.Service.Endpoint = endpoint
	}
	if cmd.Flags().Changed("timeout") {
		c.Service.Timeout = timeout.String()
	}
	if verbose {
		c.Logging.Level = "debug"
	}

	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	cfg = c
	return nil
}

// commandContext returns the command's context, or Background when the
// command was not started through Execute.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: ./uncss.yaml)")
	rootCmd.PersistentFlags().StringVar(&endpoint, "endpoint", "", "Reduction service URL (or set UNCSS_ENDPOINT; empty starts an embedded service)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "Per-request timeout")

	// serve flags
	serveCmd.Flags().StringVar(&listenAddr, "listen", "", "Listen address (default: server.listen_addr)")

	// reduce flags
	reduceCmd.Flags().StringVar(&reduceHTML, "html", "", "HTML file (required)")
	reduceCmd.Flags().StringVar(&reduceCSS, "css", "", "CSS file (required)")
	reduceCmd.Flags().BoolVar(&reduceLocal, "local", false, "Reduce in-process instead of calling the service")
	reduceCmd.Flags().StringVarP(&reduceOut, "out", "o", "", "Write the result to a file instead of stdout")
	reduceCmd.MarkFlagRequired("html")
	reduceCmd.MarkFlagRequired("css")

	// Add commands to root
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(reduceCmd)
	rootCmd.AddCommand(versionCmd)
}

// flushLogs syncs the logger and closes the log file. main calls it after
// Execute, whether or not the command failed.
func flushLogs() {
	if logger != nil {
		_ = logger.Sync()
	}
	closeLog()
	closeLog = func() {}
}

func main() {
	err := rootCmd.Execute()
	flushLogs()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		var ee *exitError
		if errors.As(err, &ee) {
			os.Exit(ee.code)
		}
		os.Exit(1)
	}
}
