package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/aderemi/folionav/internal/config"
	"github.com/aderemi/folionav/internal/content"
	"github.com/aderemi/folionav/internal/livenav"
	"github.com/aderemi/folionav/internal/site/page"
	"github.com/aderemi/folionav/pkg/health"
	"github.com/aderemi/folionav/pkg/logging"
	"github.com/aderemi/folionav/pkg/router"
	"github.com/aderemi/folionav/pkg/state"
)

var (
	serveAddr  string
	serveWatch bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the portfolio with the live navigation bar",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if serveAddr != "" {
			cfg.Server.Address = serveAddr
		}
		if cmd.Flags().Changed("watch") {
			cfg.Content.Watch = serveWatch
		}

		logger, err := newLogger(cfg, os.Stderr)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return serve(ctx, cfg, logger)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides server.address)")
	serveCmd.Flags().BoolVar(&serveWatch, "watch", false, "reload the site file when it changes")
	rootCmd.AddCommand(serveCmd)
}

// newServer wires the router: the live navigation bar on /, the section
// listing, the browser client and the readiness report.
func newServer(cfg *config.Config, store *content.Store, logger logging.Logger) (*router.Router, error) {
	r, err := router.New(
		router.WithConfig(cfg.Runtime()),
		router.WithLogger(logger),
		router.WithMaxSessions(cfg.Server.MaxSessions),
	)
	if err != nil {
		return nil, err
	}

	r.Live("/", livenav.New(livenav.Options{
		Store:                    store,
		Thresholds:               cfg.Thresholds(),
		Breakpoint:               cfg.Nav.Breakpoint,
		CloseMenuOnSectionChange: cfg.Nav.CloseMenuOnSectionChange,
		Snapshots:                state.NewSnapshotCodec(state.WithMaxAge(cfg.Server.SessionIdle)),
		Logger:                   logger,
	}), router.WithLayout(page.Layout(page.Options{
		Store:      store,
		Breakpoint: cfg.Nav.Breakpoint,
	})))
	r.Get("/sections", page.SectionsHandler(store))
	r.Handle(page.ClientPrefix+"*", page.ClientHandler())

	checks := health.NewChecker(Version)
	checks.AddCriticalCheck("content", health.ReadyCheck("site", func() bool { return store.Site() != nil }), time.Second)
	checks.AddCheck("sessions", health.CapacityCheck(r.Sessions().Count, cfg.Server.MaxSessions), time.Second)
	r.Handle("/readyz", checks.ReadinessHandler())

	return r, nil
}

func serve(ctx context.Context, cfg *config.Config, logger logging.Logger) error {
	site, fallback, err := loadSite(cfg, logger)
	if err != nil {
		return err
	}
	store := content.NewStore(site)

	r, err := newServer(cfg, store, logger)
	if err != nil {
		return err
	}

	var watcher *content.Watcher
	if cfg.Content.Watch {
		if fallback {
			logger.Warn("nothing to watch: serving the built-in sample")
		} else {
			watcher, err = content.NewWatcher(cfg.Content.Path, store,
				content.WithOnReload(func(s *content.Site) {
					n := r.Broadcast(livenav.Reload{Site: s})
					logger.Info("site reloaded",
						logging.Int("sections", s.Registry().Len()),
						logging.Int("sessions", n))
				}),
				content.WithOnError(func(err error) {
					logger.Warn("site not reloaded", logging.Err(err))
				}),
			)
			if err != nil {
				return err
			}
		}
	}

	// Read and write timeouts apply per WebSocket frame, inside the router.
	srv := &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           r,
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("listening",
			logging.String("addr", cfg.Server.Address),
			logging.Int("sections", site.Registry().Len()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		return r.Run(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	if watcher != nil {
		g.Go(func() error {
			return watcher.Run(gctx)
		})
	}

	return g.Wait()
}
