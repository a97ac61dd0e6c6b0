package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"swipeinterview/internal/app"
	"swipeinterview/internal/cache"
	"swipeinterview/internal/config"
	"swipeinterview/internal/events"
	"swipeinterview/internal/interview"
	"swipeinterview/internal/proxy"
	"swipeinterview/internal/scoring"
	"swipeinterview/internal/service"
	"swipeinterview/internal/storage"
	"swipeinterview/internal/transport/rest"
	"swipeinterview/internal/transport/ws"
)

func main() {
	log.Println("started")
	ctx := context.Background()

	cfg := config.Load()

	// Load AI config and log model settings
	aiConfig := config.DefaultAIConfig()
	log.Printf("AI Config:")
	log.Printf("  Provider:  %s", aiConfig.Provider)
	log.Printf("  Model:     %s", aiConfig.Model)
	if aiConfig.IsEnabled() {
		log.Println("  API Key:   configured ✓")
	} else {
		log.Println("  API Key:   NOT SET (proxy answers 500, answers score as failed)")
	}

	deps, err := app.Open(ctx, cfg)
	if err != nil {
		log.Fatal("Failed to open stores:", err)
	}
	defer deps.Close(context.Background())

	catalog, err := deps.Catalog(ctx)
	if err != nil {
		log.Fatal("Failed to load question catalog:", err)
	}

	// Scoring proxy, mounted on this server and usable in-process
	proxySvc, err := proxy.NewServiceFromConfig(ctx, aiConfig)
	if err != nil {
		log.Fatal("Failed to create model client: ", err)
	}
	if deps.Redis != nil {
		proxySvc.SetCache(cache.NewScoreCache(deps.Redis, 24*time.Hour))
	}

	var scorer interview.Scorer = proxySvc
	if cfg.ScoringURL != "" {
		scorer = scoring.NewClient(cfg.ScoringURL, cfg.ScoringTimeout)
		log.Printf("Scoring via %s", cfg.ScoringURL)
	} else {
		log.Println("Scoring in-process")
	}

	// Initialize WebSocket hub
	wsHub := ws.NewHub()
	log.Println("WebSocket hub started")

	broadcaster := events.Fanout{wsHub}
	if cfg.RabbitMQURL != "" {
		publisher, err := events.Dial(cfg.RabbitMQURL)
		if err != nil {
			log.Printf("Warning: RabbitMQ unavailable: %v", err)
		} else {
			defer publisher.Close()
			broadcaster = append(broadcaster, publisher)
			log.Printf("Publishing session events to exchange %s", events.Exchange)
		}
	}

	interviewSvc := service.NewInterviewService(deps.Sessions, scorer, catalog, service.InterviewConfig{
		TickInterval: cfg.TickInterval,
		ScoreTimeout: cfg.ScoringTimeout,
	})
	interviewSvc.SetBroadcaster(broadcaster)
	if deps.Redis != nil {
		interviewSvc.SetLeaderboard(cache.NewLeaderboardCache(deps.Redis))
		interviewSvc.SetDraftCache(cache.NewDraftCache(deps.Redis))
	}
	if cfg.R2.Enabled() {
		archive, err := storage.NewR2Archive(ctx, cfg.R2)
		if err != nil {
			log.Printf("Warning: resume archive disabled: %v", err)
		} else {
			interviewSvc.SetResumeArchive(archive)
			log.Printf("Archiving resumes to bucket %s", cfg.R2.Bucket)
		}
	}

	if err := interviewSvc.Hydrate(ctx); err != nil {
		log.Fatal("Failed to load sessions:", err)
	}

	// Create router with container
	container := &rest.Container{
		InterviewService: interviewSvc,
		Proxy:            proxy.NewHandler(proxySvc),
		WSHub:            wsHub,
	}

	router := rest.NewRouter(container)

	// Start server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("Server starting on :%s", cfg.Port)
		log.Println("Endpoints:")
		log.Println("  POST/GET   /v1/sessions")
		log.Println("  GET/DELETE /v1/sessions/{id}")
		log.Println("  POST /v1/sessions/{id}/activate")
		log.Println("  PUT  /v1/sessions/{id}/draft")
		log.Println("  POST /v1/sessions/{id}/answers")
		log.Println("  POST /v1/sessions/{id}/close")
		log.Println("  GET  /v1/sessions/{id}/resume")
		log.Println("  GET  /v1/dashboard")
		log.Println("  GET  /v1/leaderboard")
		log.Println("  POST /api/score, /api/generate")
		log.Println("  WS   /v1/ws/sessions/{id}")
		log.Println("  WS   /v1/ws/dashboard")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("ListenAndServe:", err)
		}
	}()

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Println("Server forced to shutdown:", err)
	}
	interviewSvc.Shutdown(shutdownCtx)

	log.Println("Server exited")
}
