package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/habitverse/habitverse-backend/internal/config"
	"github.com/habitverse/habitverse-backend/internal/database"
	"github.com/habitverse/habitverse-backend/internal/handler"
	"github.com/habitverse/habitverse-backend/internal/middleware"
	"github.com/habitverse/habitverse-backend/internal/queue"
	"github.com/habitverse/habitverse-backend/internal/repository"
	"github.com/habitverse/habitverse-backend/internal/router"
)

func main() {
	_ = godotenv.Load() // .env is optional; real env vars win
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName,
		cfg.DBMaxConns, time.Duration(cfg.DBConnTTLMin)*time.Minute)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := database.EnsureSchema(ctx, db); err != nil {
		cancel()
		log.Fatalf("schema: %v", err)
	}
	cancel()

	// Nil client disables rate limiting and caching; the API still works.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable; rate limiting and caching disabled")
	}

	users := repository.NewUserRepo(db)
	habits := repository.NewHabitRepo(db)
	checks := repository.NewCheckRepo(db)
	friends := repository.NewFriendRepo(db)
	badges := repository.NewBadgeRepo(db)
	tokens := repository.NewTokenRepo(db)

	authH := handler.NewAuthHandler(cfg, users, tokens)
	habitH := handler.NewHabitHandler(habits, checks)
	socialH := handler.NewSocialHandler(users, friends, habits, badges)

	e := echo.New()
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	cacheMW := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	router.RegisterRoutes(e)
	router.RegisterAuth(e, authH)
	router.RegisterAPI(e, authH, habitH, socialH, cfg.JWTSecret, cacheMW)

	// Activity consumer mirrors habit.checked events into logs/activity.log.
	go func() {
		if err := queue.StartActivityConsumer(); err != nil {
			log.Printf("activity consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
