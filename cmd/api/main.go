package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pairchat/config"
	"pairchat/internal/database"
	"pairchat/internal/handler"
	"pairchat/internal/redis"
	"pairchat/internal/repository"
	"pairchat/internal/services"
	"pairchat/internal/storage"
	"pairchat/internal/websocket"
	"pairchat/pkg/logger"
)

func main() {
	cfg := config.LoadConfig()

	logMode := logger.DevelopmentMode
	if cfg.AppMode == "release" {
		logMode = logger.ProductionMode
	}
	log := logger.New(logMode)
	defer log.Sync()

	db, err := database.Connect(cfg)
	if err != nil {
		log.Errorf("connect database: %v", err)
		os.Exit(1)
	}
	defer db.Close()

	migrateCtx, migrateCancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.Migrate(migrateCtx, db); err != nil {
		migrateCancel()
		log.Errorf("migrate database: %v", err)
		os.Exit(1)
	}
	migrateCancel()

	redisClient := redis.NewClient(redis.Config{
		Host:     cfg.RedisHost,
		Port:     cfg.RedisPort,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer redisClient.Close()

	publisher := redis.NewPublisher(redisClient)
	subscriber := redis.NewSubscriber(redisClient)
	presenceStore := redis.NewPresenceStore(redisClient, cfg.PresenceTTL())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Image uploads are optional; without S3 config the endpoint is
	// simply not registered.
	var uploadService *services.UploadService
	if cfg.S3Bucket != "" {
		s3Client, err := storage.NewClient(ctx, storage.S3Config{
			Region:     cfg.S3Region,
			Bucket:     cfg.S3Bucket,
			AccessKey:  cfg.S3AccessKey,
			SecretKey:  cfg.S3SecretKey,
			Endpoint:   cfg.S3Endpoint,
			PublicBase: cfg.S3PublicBase,
			PresignTTL: cfg.PresignTTL(),
		})
		if err != nil {
			log.Errorf("init s3 client: %v", err)
			os.Exit(1)
		}
		uploadService = services.NewUploadService(s3Client)
	}

	userRepo := repository.NewUserRepository(db)
	messageRepo := repository.NewMessageRepository(db)

	authService := services.NewAuthService(cfg)
	userService := services.NewUserService(userRepo, messageRepo, log)
	messageService := services.NewMessageService(userRepo, messageRepo, publisher, log)
	presenceService := services.NewPresenceService(userRepo, presenceStore, publisher, log)

	hub := websocket.NewHub()
	go hub.Run(ctx)

	bridge := websocket.NewRedisBridge(subscriber, hub)
	go func() {
		for {
			if err := bridge.Run(ctx); err != nil {
				if ctx.Err() != nil {
					return
				}
				log.Errorf("redis bridge: %v", err)
				time.Sleep(time.Second)
			}
		}
	}()

	wsHandler := websocket.NewHandler(
		hub,
		websocket.NewChannelAuthorizer(),
		authService,
		userService,
		presenceService,
		log,
	)

	router := handler.NewRouter(cfg.AppMode, handler.RouterDeps{
		Auth:     authService,
		Users:    userService,
		Messages: messageService,
		Presence: presenceService,
		Uploads:  uploadService,
		WS:       wsHandler,
		Log:      log,
	})

	server := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Infof("listening on :%s", cfg.AppPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorf("http server: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Infof("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorf("shutdown: %v", err)
	}
}
