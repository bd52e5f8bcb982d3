package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/germanamz/playground/pkg/engine"
	"github.com/germanamz/playground/pkg/web"
)

const shutdownTimeout = 10 * time.Second

type runOptions struct {
	configPath string
	addr       string
	logLevel   string
	dev        bool
}

// loadConfig reads the config file, fills keys from the environment and
// applies flag overrides.
func loadConfig(opts runOptions) (engine.Config, error) {
	cfg, err := engine.LoadConfig(opts.configPath)
	if err != nil {
		return engine.Config{}, err
	}

	if err := cfg.ApplyEnv(); err != nil {
		return engine.Config{}, err
	}

	if opts.addr != "" {
		cfg.Server.Addr = opts.addr
	}

	if err := cfg.Validate(); err != nil {
		return engine.Config{}, err
	}

	return cfg, nil
}

func run(ctx context.Context, opts runOptions) error {
	log, err := newLogger(opts.logLevel, opts.dev)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	eng, err := engine.New(cfg,
		engine.WithLogger(log.Named("engine")),
		engine.WithMetrics(engine.NewMetrics(reg)),
	)
	if err != nil {
		return err
	}

	if !opts.dev {
		gin.SetMode(gin.ReleaseMode)
	}

	router, err := web.New(eng, web.Options{
		Logger:         log.Named("http"),
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Gatherer:       reg,
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("playground listening", zap.String("addr", cfg.Server.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	return nil
}
