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
	"go.uber.org/zap"

	"live-dashboard/api"
	"live-dashboard/config"
	"live-dashboard/live"
	"live-dashboard/notes"
	"live-dashboard/prefs"
	"live-dashboard/settings"
	"live-dashboard/tasks"
	"live-dashboard/widget"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the dashboard HTTP server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return serve(ctx, cfg, logger)
	},
}

func serve(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	store, err := openStore(cfg.Store)
	if err != nil {
		return err
	}
	defer store.Close()

	reg := widget.NewRegistry(store, widget.WithLogger(log.Named("widgets")))
	svc := api.Services{
		Registry: reg,
		Prefs:    store,
		Settings: settings.New(store),
		Tasks:    tasks.NewList(store),
		Notes:    notes.NewBook(store),
		Source:   newSource(cfg.Source, log.Named("source")),
		Logger:   log.Named("http"),
	}
	svc.Board = live.New(live.Config{
		Registry: reg,
		Settings: svc.Settings,
		Tasks:    svc.Tasks,
		Notes:    svc.Notes,
		Source:   svc.Source,
		Intervals: live.Intervals{
			Stocks: cfg.Intervals.Stocks,
			News:   cfg.Intervals.News,
			Sports: cfg.Intervals.Sports,
		},
		Logger: log.Named("board"),
	})
	svc.Board.Start(ctx)
	defer svc.Board.Stop()

	if fileStore, ok := store.(*prefs.FileStore); ok && cfg.Store.Watch {
		go func() {
			if err := fileStore.Watch(ctx, log.Named("prefs"), svc.Board.PrefsChanged); err != nil {
				log.Warn("preference watch stopped", zap.Error(err))
			}
		}()
	}

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           api.RegisterRoutes(svc, staticFiles),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	log.Info("dashboard listening",
		zap.String("addr", srv.Addr),
		zap.String("store", cfg.Store.Backend),
		zap.String("source", cfg.Source.Mode),
		zap.Int("widgets", reg.Len()),
	)

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
