package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"filesmanager/backend/internal/access"
	"filesmanager/backend/internal/app"
	"filesmanager/backend/internal/cache"
	"filesmanager/backend/internal/config"
	"filesmanager/backend/internal/database"
	"filesmanager/backend/internal/logger"
	"filesmanager/backend/internal/queue"
	"filesmanager/backend/internal/repositories"
	"filesmanager/backend/internal/services"
	"filesmanager/backend/internal/session"
	"filesmanager/backend/internal/storage"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load config", "error", err)
	}
	logger.Init(cfg.Server.Env)
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

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
	users := repositories.NewMongoUsers(db)
	files := repositories.NewMongoFiles(db)
	if err := users.EnsureIndexes(ctx); err != nil {
		logger.Fatal("failed to create user indexes", "error", err)
	}
	if err := files.EnsureIndexes(ctx); err != nil {
		logger.Fatal("failed to create file indexes", "error", err)
	}

	sessions := session.NewStore(rdb, cfg.Session.TTL)
	jobs := queue.NewRedisQueue(rdb, cfg.Worker.MaxAttempts)
	blobs := storage.NewLocal(cfg.Storage.FolderPath)

	router := app.SetupRouter(app.Deps{
		Gate:  access.NewGate(sessions),
		App:   services.NewAppService(cache.Pinger{Client: rdb}, database.Pinger{Client: mongoClient}, users, files),
		Users: services.NewUserService(users, sessions, jobs),
		Files: services.NewFileService(files, blobs, jobs),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server starting", "port", cfg.Server.Port, "storage", blobs.Root())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server stopped", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}
