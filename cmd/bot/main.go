package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"mcmetrics/bot/internal/allowlist"
	"mcmetrics/bot/internal/config"
	"mcmetrics/bot/internal/gateway"
	"mcmetrics/bot/internal/platform"
	"mcmetrics/bot/internal/review"
	"mcmetrics/bot/internal/search"
	"mcmetrics/bot/internal/store"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	cfg := config.Load()
	ctx := context.Background()

	db, err := store.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	defer db.Close()

	if err := store.ApplyMigrations(ctx, db); err != nil {
		log.Fatalf("migrations failed: %v", err)
	}
	dataStore := store.NewPostgresStore(db)

	allowStore, err := allowlist.NewRedisStore(cfg.RedisURL)
	if err != nil {
		log.Fatalf("redis connection failed: %v", err)
	}
	defer allowStore.Close()

	var searcher review.Searcher
	if strings.TrimSpace(cfg.MeiliURL) != "" {
		meiliClient := search.NewMeili(cfg.MeiliURL, cfg.MeiliMasterKey)
		defer meiliClient.Close()
		searcher = search.NewService(meiliClient)
	}

	platformClient := platform.NewRESTClient(cfg.PlatformURL, cfg.PlatformToken)
	service := review.New(platformClient, allowStore, dataStore, dataStore, searcher, cfg.PromptTimeout)

	httpServer := gateway.NewHTTPServer(service, dataStore, allowStore)
	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpServer.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("mcmetrics bot listening on %s", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
