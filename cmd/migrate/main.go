package main

import (
	"context"
	"os"
	"time"

	"pairchat/config"
	"pairchat/internal/database"
	"pairchat/pkg/logger"
)

func main() {
	cfg := config.LoadConfig()
	log := logger.New(logger.DevelopmentMode)
	defer log.Sync()

	db, err := database.Connect(cfg)
	if err != nil {
		log.Errorf("connect database: %v", err)
		os.Exit(1)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := database.Migrate(ctx, db); err != nil {
		log.Errorf("migrate: %v", err)
		os.Exit(1)
	}

	log.Infof("migrations applied")
}
