package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"spur-go/internal/config"
	"spur-go/internal/handlers/apiserver"
	"spur-go/internal/middleware"
	appRedis "spur-go/internal/redis"
	"spur-go/internal/services"
	"spur-go/internal/storage"
)

func main() {
	// 1. Configuration
	cfg, err := config.LoadConfig(os.Getenv("SPUR_CONFIG"))
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	log.Printf("Starting %s %s", cfg.AppName, cfg.AppVersion)

	// 2. Database
	db, err := storage.InitDB(cfg.Database, cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	if err := storage.AutoMigrateTables(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// 3. Redis-backed token blacklist
	redisClient, err := appRedis.NewClient(context.Background(), cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()
	tokenBlacklist := appRedis.NewRedisTokenBlacklist(redisClient)

	// 4. Repositories and services
	uow := storage.NewGormUnitOfWork(db)
	userRepo := storage.NewGormUserRepository(db)
	friendshipRepo := storage.NewGormFriendshipRepository(db)
	postRepo := storage.NewGormPostRepository(db)

	authService := services.NewAuthService(userRepo, cfg.Auth)
	userService := services.NewUserService(userRepo)
	friendshipService := services.NewFriendshipService(uow, userRepo, friendshipRepo, postRepo)
	postService := services.NewPostService(uow, postRepo)

	// 5. HTTP routes
	router := apiserver.NewRouter(apiserver.Handlers{
		Auth:       apiserver.NewAuthHandler(authService, tokenBlacklist),
		User:       apiserver.NewUserHandler(userService),
		Friendship: apiserver.NewFriendshipHandler(friendshipService),
		Post:       apiserver.NewPostHandler(postService),
	}, middleware.AuthMiddleware(cfg.Auth.JWTSecretKey, tokenBlacklist))

	serverAddr := fmt.Sprintf("%s:%s", cfg.APIServer.Host, cfg.APIServer.Port)
	srv := &http.Server{
		Addr:           serverAddr,
		Handler:        apiserver.WithCORS(cfg.APIServer.CORS, router),
		ReadTimeout:    cfg.APIServer.ReadTimeout,
		WriteTimeout:   cfg.APIServer.WriteTimeout,
		IdleTimeout:    cfg.APIServer.IdleTimeout,
		MaxHeaderBytes: cfg.APIServer.MaxHeaderBytes,
	}

	go func() {
		log.Printf("API server listening on %s", serverAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("API server failed: %v", err)
		}
	}()

	// 6. Graceful shutdown. In-flight requests finish; their transactions
	// commit or roll back before the pool is closed.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down API server...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		log.Printf("API server forced to shut down: %v", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}

	log.Println("API server stopped")
}
