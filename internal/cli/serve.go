package cli

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"taskmanager/internal/server"
)

func newServeCommand(a *app) *cobra.Command {
	var (
		addr      string
		staticDir string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the task list over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("addr") {
				a.cfg.Addr = addr
			}
			if cmd.Flags().Changed("static") {
				a.cfg.StaticDir = staticDir
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, a)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "HTTP listen address")
	cmd.Flags().StringVar(&staticDir, "static", "web/dist", "Directory with built frontend")
	return cmd
}

// serve runs the HTTP server until ctx is cancelled.
func serve(ctx context.Context, a *app) error {
	logger := a.logger
	logger.Info("task manager starting", slog.String("backend", a.cfg.Backend))

	if err := a.ctrl.Refresh(ctx); err != nil {
		logger.Warn("initial task fetch failed", slog.String("error", err.Error()))
	}

	srv := server.New(a.ctrl, logger, a.cfg.StaticDir)
	httpServer := &http.Server{
		Addr:              a.cfg.Addr,
		Handler:           srv.Engine(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			logger.Error("server stopped unexpectedly", slog.String("error", err.Error()))
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown server", slog.String("error", err.Error()))
		return err
	}

	logger.Info("server stopped")
	return nil
}
