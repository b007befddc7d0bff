package main

import (
	"context"
	"log"

	"github.com/pagebound/bookchat/internal/bootstrap"
	"github.com/pagebound/bookchat/internal/config"
	"github.com/pagebound/bookchat/internal/model"
	"github.com/pagebound/bookchat/internal/server"
	"github.com/pagebound/bookchat/pkg/database"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db := database.Connect()
	if err := migrate(db); err != nil {
		log.Fatalf("migration failed: %v", err)
	}

	if cfg.AppEnv == "development" {
		if err := bootstrap.SeedDevData(db); err != nil {
			log.Fatalf("failed to seed dev data: %v", err)
		}
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatalf("invalid REDIS_URL: %v", err)
		}
		redisClient = redis.NewClient(opts)
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			log.Printf("redis unreachable, continuing without it: %v", err)
			redisClient = nil
		}
	}

	srv := server.NewServer(db, redisClient, cfg)

	if redisClient != nil {
		go srv.FanoutService.StartWorker(context.Background())
	}

	log.Printf("listening on :%s", cfg.Port)
	if err := srv.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}

func migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.UserBlock{},
		&model.Book{},
		&model.Room{},
		&model.Membership{},
		&model.Message{},
		&model.Mention{},
		&model.Reaction{},
		&model.Activity{},
		&model.NotificationPreferences{},
	)
}
