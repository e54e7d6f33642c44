package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/dgallion1/ncparse/internal/api"
	"github.com/dgallion1/ncparse/internal/config"
	"github.com/dgallion1/ncparse/internal/filing"
	"github.com/dgallion1/ncparse/internal/grammar"
	"github.com/dgallion1/ncparse/internal/pipeline"
)

func main() {
	// A missing .env is fine; the environment may already be set.
	_ = godotenv.Load()

	cfg := config.Load()
	log := cfg.Logger(os.Stdout)
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	opts, err := parseOptions(cfg)
	if err != nil {
		log.Error("load grammar", "file", cfg.GrammarFile, "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize pipeline.
	orch := pipeline.NewOrchestrator(cfg, opts, log)
	orch.Start(ctx)

	// Initialize HTTP server.
	srv := api.NewServer(orch, opts, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		orch.Stop()
	}()

	log.Info("starting ncparse", "port", cfg.Port, "workers", cfg.WorkerCount, "strict_dates", cfg.StrictDates)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}

func parseOptions(cfg config.Config) (filing.Options, error) {
	opts := filing.Options{StrictDates: cfg.StrictDates}
	if cfg.GrammarFile == "" {
		return opts, nil
	}
	override, err := grammar.LoadFile(cfg.GrammarFile)
	if err != nil {
		return opts, err
	}
	opts.Grammar = grammar.Default().With(override)
	return opts, nil
}
