package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/aderemi/folionav/internal/config"
	"github.com/aderemi/folionav/internal/content"
	"github.com/aderemi/folionav/pkg/logging"
)

var (
	cfgFile     string
	contentPath string
	verbose     bool
)

var rootCmd = &cobra.Command{
	Use:   "folionav",
	Short: "Portfolio page with a server-driven navigation bar",
	Long: `folionav serves a single-page portfolio. The navigation bar follows the
reader's scroll position, scrolls to sections on click and collapses into a
menu on narrow screens; its state lives on the server and reaches the browser
as live diffs over a WebSocket.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "folionav.yaml", "config file path")
	rootCmd.PersistentFlags().StringVar(&contentPath, "content", "", "site file (overrides content.path)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}

// loadConfig applies the global flags on top of the config file.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if contentPath != "" {
		cfg.Content.Path = contentPath
	}
	if verbose {
		cfg.Log.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func newLogger(cfg *config.Config, w io.Writer) (logging.Logger, error) {
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format, w)
	if err != nil {
		return nil, err
	}
	return logger, nil
}

// loadSite reads the site file, or the built-in sample when it is missing.
func loadSite(cfg *config.Config, logger logging.Logger) (*content.Site, bool, error) {
	site, fallback, err := content.LoadOrDefault(cfg.Content.Path)
	if err != nil {
		return nil, false, err
	}
	if fallback {
		logger.Info("site file not found, using the built-in sample",
			logging.String("path", cfg.Content.Path))
	}
	return site, fallback, nil
}
