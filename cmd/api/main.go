package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/CinePrep/cineprep/config"
	"github.com/CinePrep/cineprep/internal/app"
	"github.com/CinePrep/cineprep/pkg/logger"
)

// Overridable in tests.
var (
	osExit       = os.Exit
	signalNotify = signal.Notify
)

// NewAppFunc builds the application runServer drives.
type NewAppFunc func(cfg *config.Config, opts ...app.AppOption) app.AppInterface

var newApp NewAppFunc = app.NewApp

// cleanupGrace extends the configured shutdown timeout for closing the
// database pool and the rate limiter.
const (
	cleanupGrace = 5 * time.Second
	forcedGrace  = 2 * time.Second
)

var errForcedShutdown = errors.New("forced shutdown")

func stopSignals() chan os.Signal {
	ch := make(chan os.Signal, 1)
	signalNotify(ch, os.Interrupt, syscall.SIGTERM)
	return ch
}

// runServer serves the API until it fails or a stop signal arrives, then
// drains it.
func runServer(cfg *config.Config, appLogger logger.Logger) error {
	api := newApp(cfg, app.WithLogger(appLogger))

	if err := api.Initialize(); err != nil {
		appLogger.WithField("error", err.Error()).Error("CinePrep API failed to initialize")
		return err
	}

	stop := stopSignals()
	served := make(chan error, 1)
	go func() {
		appLogger.Info("CinePrep API listening")
		served <- api.Start()
	}()

	select {
	case err := <-served:
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		appLogger.WithField("error", err.Error()).Error("CinePrep API stopped unexpectedly")
		return err
	case sig := <-stop:
		appLogger.WithFields(map[string]interface{}{
			"signal":          sig.String(),
			"active_requests": api.GetActiveRequestCount(),
		}).Info("Draining CinePrep API, signal again to exit immediately")
		return drain(api, cfg.Server.ShutdownTimeout+cleanupGrace, appLogger)
	}
}

// drain shuts the app down within timeout. A second stop signal cancels the
// drain and gives the shutdown a short grace period before giving up.
func drain(api app.AppInterface, timeout time.Duration, appLogger logger.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	force := stopSignals()
	done := make(chan error, 1)
	go func() { done <- api.Shutdown(ctx) }()

	select {
	case err := <-done:
		if err != nil {
			appLogger.WithField("error", err.Error()).Error("CinePrep API did not drain cleanly")
			return err
		}
		appLogger.Info("CinePrep API stopped")
		return nil
	case sig := <-force:
		appLogger.WithField("signal", sig.String()).Warn("Forced exit requested")
		cancel()
		select {
		case <-done:
		case <-time.After(forcedGrace):
			appLogger.Warn("Shutdown still running after forced exit, abandoning it")
		}
		return errForcedShutdown
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("cineprep: loading configuration: %v", err)
	}

	appLogger := logger.NewLoggerWithLevel(cfg.LogLevel)
	appLogger.WithFields(map[string]interface{}{
		"host":        cfg.Server.Host,
		"port":        cfg.Server.Port,
		"environment": cfg.Environment,
		"version":     cfg.Version,
	}).Info("Starting CinePrep API")

	if err := runServer(cfg, appLogger); err != nil {
		osExit(1)
	}
}
