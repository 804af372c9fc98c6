package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/speedread/internal/api"
	"github.com/dgallion1/speedread/internal/config"
	"github.com/dgallion1/speedread/internal/fetch"
	"github.com/dgallion1/speedread/internal/orp"
	"github.com/dgallion1/speedread/internal/pipeline"
)

func main() {
	cfg := config.Load()
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	calc := orp.NewCalculator(nil)
	if cfg.ExceptionWordsFile != "" {
		exc, err := orp.LoadExceptions(cfg.ExceptionWordsFile)
		if err != nil {
			log.Error("loading exception words", "path", cfg.ExceptionWordsFile, "error", err)
			os.Exit(1)
		}
		calc = orp.NewCalculator(exc)
		log.Info("exception words loaded", "path", cfg.ExceptionWordsFile, "count", exc.Len())
	}

	proc := pipeline.NewProcessor(pipeline.Options{
		LongWordThreshold: cfg.LongWordThreshold,
		PauseCount:        cfg.PauseCount,
		MinTextLength:     cfg.MinTextLength,
		MaxTextLength:     cfg.MaxTextLength,
		MaxWordLength:     cfg.MaxWordLength,
	}, orp.NewStore(calc), pipeline.NewCache(cfg.CacheSize, cfg.CacheTTL), log)
	fetcher := fetch.NewClient(cfg.FetchTimeout, cfg.FetchMaxBytes, log)
	fetcher.AllowPrivate = cfg.FetchAllowPrivate

	srv, err := api.NewServer(proc, fetcher, log, cfg)
	if err != nil {
		log.Error("building server", "error", err)
		os.Exit(1)
	}

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		IdleTimeout:       60 * time.Second,
		// no WriteTimeout: websocket streams outlive any fixed deadline
	}

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM)
		for sig := range sigCh {
			if sig == syscall.SIGHUP {
				if cfg.ExceptionWordsFile == "" {
					log.Warn("SIGHUP ignored, no exception words file configured")
					continue
				}
				n, err := proc.ReloadExceptions(cfg.ExceptionWordsFile)
				if err != nil {
					log.Error("reloading exception words", "error", err)
					continue
				}
				log.Info("exception words reloaded", "count", n)
				continue
			}

			log.Info("shutting down...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			httpServer.Shutdown(shutdownCtx)
			cancel()
			fetcher.Close()
			return
		}
	}()

	log.Info("starting speedread", "port", cfg.Port, "version", api.Version)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
