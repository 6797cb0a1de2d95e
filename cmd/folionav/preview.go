package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aderemi/folionav/internal/content"
	"github.com/aderemi/folionav/internal/preview"
	"github.com/aderemi/folionav/pkg/logging"
)

var (
	previewWatch   bool
	previewStyle   string
	previewLogFile string
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Preview the site and its navigation in the terminal",
	Long: `Lays the site's sections out in the terminal and runs the same
navigation controller as the browser, measured in lines.

Keys: j/k scroll, tab/shift+tab focus, enter or 1-9 navigate, 0 home,
m menu, esc close menu, q quit.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		// The terminal belongs to the preview; logs go to a file or nowhere.
		var logger logging.Logger = logging.NopLogger{}
		if previewLogFile != "" {
			f, err := os.OpenFile(previewLogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
			if err != nil {
				return err
			}
			defer f.Close()
			if logger, err = newLogger(cfg, f); err != nil {
				return err
			}
		}

		site, fallback, err := loadSite(cfg, logger)
		if err != nil {
			return err
		}

		m, err := preview.New(site, preview.Options{
			Thresholds:               cfg.PreviewThresholds(),
			CloseMenuOnSectionChange: cfg.Nav.CloseMenuOnSectionChange,
			Style:                    previewStyle,
			Logger:                   logger,
		})
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		var reloads chan *content.Site
		if previewWatch && !fallback {
			reloads = make(chan *content.Site, 1)
			w, err := content.NewWatcher(cfg.Content.Path, content.NewStore(site),
				content.WithOnReload(func(s *content.Site) {
					select {
					case reloads <- s:
					default:
						logger.Debug("preview busy, reload dropped")
					}
				}),
				content.WithOnError(func(err error) {
					logger.Warn("site not reloaded", logging.Err(err))
				}),
			)
			if err != nil {
				return err
			}
			go func() {
				if err := w.Run(ctx); err != nil {
					logger.Warn("watcher stopped", logging.Err(err))
				}
			}()
		}

		return preview.Run(ctx, m, reloads)
	},
}

func init() {
	previewCmd.Flags().BoolVar(&previewWatch, "watch", false, "reload the site file when it changes")
	previewCmd.Flags().StringVar(&previewStyle, "style", "dark", "markdown style: dark, light, notty")
	previewCmd.Flags().StringVar(&previewLogFile, "log-file", "", "write logs to this file")
	rootCmd.AddCommand(previewCmd)
}
