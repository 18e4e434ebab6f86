package command

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"practice-service/internal/handler"
	"practice-service/internal/middleware"
	"practice-service/pkg/database"
	"practice-service/pkg/logger"
	"practice-service/prometheus"
)

func newServeCommand() *cobra.Command {
	var autoMigrate bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serveCommand(cmd, autoMigrate)
		},
	}
	cmd.Flags().BoolVar(&autoMigrate, "auto-migrate", false, "Run database migrations before serving")
	return cmd
}

// newServer builds the echo instance with global middleware and routes.
func newServer(h *handler.Handler, a *app) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	e.Use(middleware.RequestIDMiddleware)
	e.Use(logger.Middleware(a.log))
	e.Use(prometheus.MetricsMiddleware())
	e.Use(echomiddleware.BodyLimit(fmt.Sprintf("%dB", a.cfg.Storage.MaxUploadBytes*2)))

	if a.cfg.Storage.BaseURL != "" && a.cfg.Storage.BaseURL[0] == '/' {
		e.Static(a.cfg.Storage.BaseURL, a.cfg.Storage.Root)
	}

	handler.RegisterRoutes(e, h, a.jwt)
	return e
}

func serveCommand(cmd *cobra.Command, autoMigrate bool) error {
	a, err := bootstrap()
	if err != nil {
		return err
	}
	defer a.close()

	if autoMigrate {
		if err := database.MigrateModels(a.db); err != nil {
			return err
		}
		a.log.Info("Database migrated")
	}

	e := newServer(handler.New(a.services()), a)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("Starting server", zap.String("port", a.cfg.Server.Port))
		if err := e.Start(":" + a.cfg.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
