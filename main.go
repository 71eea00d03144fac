package main

import (
	"context"
	"log"
	"strconv"

	"campus_shelf/app"
	"campus_shelf/config"
	"campus_shelf/routes"

	"go.uber.org/zap"
)

func main() {
	config.LoadEnv()
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger, err := app.NewLogger(cfg.Env.Log)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}

	application, err := app.New(context.Background(), cfg, logger)
	if err != nil {
		logger.Fatal("init app", zap.Error(err))
	}
	defer application.Close()

	if err := app.SeedCatalog(context.Background(), application.Repo, logger); err != nil {
		logger.Warn("seed catalog", zap.Error(err))
	}

	r := application.Router
	routes.RegisterRoutes(r, application)

	addr := ":" + strconv.Itoa(cfg.HTTP.Port)
	logger.Info("listening", zap.String("addr", addr))
	if err := r.Run(addr); err != nil {
		logger.Error("server stopped", zap.Error(err))
	}
}
