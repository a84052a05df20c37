package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vishesh2305/SafeTour/internal/chain"
	"github.com/vishesh2305/SafeTour/internal/config"
	"github.com/vishesh2305/SafeTour/internal/db"
	internalhttp "github.com/vishesh2305/SafeTour/internal/http"
	"github.com/vishesh2305/SafeTour/internal/metrics"
	"github.com/vishesh2305/SafeTour/internal/repository"
)

func main() {
	cfg := config.Load()
	if cfg.JWTSecret == "" {
		log.Fatalf("missing required environment variable: JWT_SECRET")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connection failed: %v", err)
	}
	defer pool.Close()

	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer redisClient.Close()
	} else {
		log.Printf("REDIS_ADDR not set, alert fan-out disabled")
	}

	metrics.Register()

	store := repository.NewStore(pool)
	gateway := chain.NewGateway(cfg.ChainGatewayURL, cfg.ChainTimeout)
	server := internalhttp.NewServer(cfg, store, gateway, redisClient)

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           server.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Printf("safetour backend listening on %s", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http server error: %v", err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
