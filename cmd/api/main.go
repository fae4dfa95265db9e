package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/Dsharma2002/FitGenie-AI/internal/api"
	"github.com/Dsharma2002/FitGenie-AI/internal/config"
	"github.com/Dsharma2002/FitGenie-AI/internal/persistence/backend"
	"github.com/Dsharma2002/FitGenie-AI/internal/platform/logger"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := backend.Open(ctx, cfg, log)
	if err != nil {
		log.Fatal("failed to open recommendation store", "error", err)
	}
	defer closeStore()

	mux := http.NewServeMux()
	api.NewHandler(store, log).RegisterRoutes(mux)

	requestLog := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			log.Debug("request served", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
		})
	}

	server := api.NewServer(api.ServerConfig{
		Address:      cfg.HTTPAddress,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}, requestLog(mux))

	go func() {
		log.Info("recommendation api listening", "address", cfg.HTTPAddress)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server error", "error", err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
}
