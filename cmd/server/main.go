package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/jss367/convora/internal/config"
	"github.com/jss367/convora/internal/db"
	"github.com/jss367/convora/internal/handler"
	"github.com/jss367/convora/internal/middleware"
	"github.com/jss367/convora/internal/repository"
	"github.com/jss367/convora/internal/router"
	"github.com/jss367/convora/internal/service"
)

func main() {
	cfg := config.Load()
	middleware.InitLogger(cfg.LogLevel, "convora")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer pool.Close()

	cache := service.NewCacheService(cfg.RedisURL)
	defer cache.Close()

	discussionRepo := repository.NewDiscussionRepo(pool)
	questionRepo := repository.NewQuestionRepo(pool)
	voteRepo := repository.NewVoteRepo(pool)

	snapshots := service.NewSnapshotService(questionRepo, cache)
	questions := service.NewQuestionService(questionRepo, cache)
	votes := service.NewVoteService(voteRepo, questionRepo, cache)
	hub := service.NewHub(snapshots)
	identity := service.NewRandomIdentity()

	notifyWorker := service.NewNotifyWorker(pool, hub)
	go notifyWorker.Start(ctx)

	statsWorker := service.NewStatsWorker(discussionRepo, 30*time.Second)
	go statsWorker.Start(ctx)
	defer statsWorker.Stop()

	handler.InitMetrics(pool)

	app := fiber.New(fiber.Config{
		AppName:      "Convora API",
		ServerHeader: "Convora",
	})

	router.Setup(app, &router.Handlers{
		Discussion: handler.NewDiscussionHandler(discussionRepo, snapshots),
		Stats:      handler.NewStatsHandler(discussionRepo, hub),
		Health:     handler.NewHealthHandler(pool, cache.Client()),
		WS:         handler.NewWSHandler(hub, questions, votes, identity),
	}, cfg.CORSOrigins)

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		log.Println("shutting down")
		cancel()
		if err := app.Shutdown(); err != nil {
			log.Printf("shutdown error: %v", err)
		}
	}()

	log.Printf("Convora Go backend starting on :%s (env=%s)", cfg.Port, cfg.Environment)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
