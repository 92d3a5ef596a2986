package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/casestudy/sitescore/internal/analyzer"
	"github.com/casestudy/sitescore/internal/platform/config"
	"github.com/casestudy/sitescore/internal/platform/logger"
	"github.com/casestudy/sitescore/internal/platform/middleware"
	"github.com/casestudy/sitescore/internal/sitescore"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(os.Stdout, cfg.LogLevel)

	engine := sitescore.NewDefaultEngine(sitescore.Options{
		UserAgent:       cfg.UserAgent,
		DocumentTimeout: cfg.DocumentFetchTimeout,
		AssetTimeout:    cfg.AssetFetchTimeout,
		AllowPrivate:    cfg.AllowPrivateTargets,
	}, log)
	svc := analyzer.NewService(engine, log, cfg.IncludeFeedback)
	transport := analyzer.NewTransport(svc, log, cfg.AnalyzeTimeout)

	mux := http.NewServeMux()
	transport.RegisterRoutes(mux)

	srv := &http.Server{
		Addr: ":" + cfg.Port,
		Handler: middleware.Chain(mux,
			middleware.RequestID,
			middleware.Logging(log),
			middleware.CORS(cfg.AllowedOrigin),
		),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.AnalyzeTimeout + 5*time.Second,
		IdleTimeout:       120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", srv.Addr, "allowed_origin", cfg.AllowedOrigin)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.Error("server failed", "error", err)
			os.Exit(1)
		}
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
}
