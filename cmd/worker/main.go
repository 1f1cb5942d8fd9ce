package main

import (
	"context"
	"os/signal"
	"syscall"

	"filesmanager/backend/internal/cache"
	"filesmanager/backend/internal/config"
	"filesmanager/backend/internal/database"
	"filesmanager/backend/internal/logger"
	"filesmanager/backend/internal/queue"
	"filesmanager/backend/internal/repositories"
	"filesmanager/backend/internal/storage"
	"filesmanager/backend/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load config", "error", err)
	}
	logger.Init(cfg.Server.Env)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mongoClient, err := database.Connect(ctx, cfg.Mongo.URI)
	if err != nil {
		logger.Fatal("failed to connect to MongoDB", "error", err)
	}
	defer database.Disconnect(mongoClient)

	rdb, err := cache.Connect(ctx, cache.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		logger.Fatal("failed to connect to Redis", "error", err)
	}
	defer rdb.Close()

	db := mongoClient.Database(cfg.Mongo.DBName)
	files := repositories.NewMongoFiles(db)
	users := repositories.NewMongoUsers(db)
	blobs := storage.NewLocal(cfg.Storage.FolderPath)

	pool := worker.NewPool(queue.NewRedisQueue(rdb, cfg.Worker.MaxAttempts), cfg.Worker.Concurrency)
	pool.Register(queue.Thumbnails, worker.NewThumbnailProcessor(files, blobs, cfg.Worker.ThumbnailTimeout).Handle)
	pool.Register(queue.Users, worker.NewUserProcessor(users).Handle)

	if err := pool.Run(ctx); err != nil {
		logger.Error("worker stopped", "error", err)
		return
	}
	logger.Info("worker stopped")
}
