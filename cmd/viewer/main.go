package main

import (
	"context"
	"detectionview/internal/app"
	"detectionview/internal/config"
	"detectionview/internal/logger"
	"log"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	cfg := config.Load()
	appLogger := logger.NewLogger(cfg)
	defer appLogger.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.NewApp(cfg, appLogger)
	if err != nil {
		log.Fatalf("Failed to create app: %v", err)
	}

	if err := application.Run(ctx); err != nil {
		log.Fatalf("Failed to run server: %v", err)
	}
}
