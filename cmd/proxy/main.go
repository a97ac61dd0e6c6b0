// Command proxy runs the scoring proxy on its own, for deployments where the
// interview server points SCORING_URL at it.
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
	"github.com/redis/go-redis/v9"

	"swipeinterview/internal/cache"
	"swipeinterview/internal/config"
	"swipeinterview/internal/proxy"
)

func main() {
	_ = godotenv.Load()
	ctx := context.Background()

	aiConfig := config.DefaultAIConfig()
	svc, err := proxy.NewServiceFromConfig(ctx, aiConfig)
	if err != nil {
		log.Fatal("Failed to create model client: ", err)
	}

	if addr := os.Getenv("REDIS_URI"); addr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: strings.TrimPrefix(addr, "redis://")})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Printf("Warning: score cache disabled: %v", err)
		} else {
			svc.SetCache(cache.NewScoreCache(rdb, 24*time.Hour))
			log.Println("Score cache enabled")
		}
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8081"
	}

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: proxy.NewHandler(svc),
	}

	go func() {
		log.Printf("Scoring proxy (%s, %s) listening on :%s", aiConfig.Provider, aiConfig.Model, port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("ListenAndServe:", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Println("Proxy forced to shutdown:", err)
	}
	log.Println("Proxy exited")
}
