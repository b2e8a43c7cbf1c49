package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ewilliams-labs/playlist-catalog/internal/adapters/rest"
	"github.com/ewilliams-labs/playlist-catalog/internal/adapters/sqlstore"
	"github.com/ewilliams-labs/playlist-catalog/internal/config"
	"github.com/ewilliams-labs/playlist-catalog/internal/core/services"
	"github.com/ewilliams-labs/playlist-catalog/internal/logging"
)

func main() {
	if err := run(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	// 1. Configuration
	cfg, err := config.Load(viper.New(), os.Getenv("PLAYLIST_CONFIG"))
	if err != nil {
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		return err
	}
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Database
	store, err := sqlstore.New(storeConfig(cfg), logger)
	if err != nil {
		logger.Error("invalid database configuration", zap.Error(err))
		return err
	}
	if err := store.Connect(ctx); err != nil {
		logger.Error("failed to connect to database", zap.Error(err))
		return err
	}
	defer store.Close()

	// 3. Core and HTTP adapter
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	handler := rest.NewHandler(services.NewCatalog(store, logger), logger, registry)

	// 4. Serve until interrupted
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 15 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		err := srv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()
	logger.Info("query API listening", zap.String("addr", cfg.Addr()), zap.String("driver", store.Dialect().Name()))

	select {
	case err := <-serverErr:
		if err != nil {
			logger.Error("server failed", zap.Error(err))
			return err
		}
	case <-ctx.Done():
		logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("shutdown error", zap.Error(err))
		}
	}
	return nil
}

// storeConfig maps the database settings onto the store.
func storeConfig(cfg *config.Config) sqlstore.Config {
	d := cfg.Database
	return sqlstore.Config{
		Driver:       d.Driver,
		Path:         d.Path,
		DSN:          d.DSN,
		Host:         d.Host,
		Port:         d.Port,
		User:         d.User,
		Password:     d.Password,
		Name:         d.Name,
		SSLMode:      d.SSLMode,
		MaxOpenConns: d.MaxOpenConns,
	}
}
