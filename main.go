package main

import (
	"log"

	"github.com/SundayYogurt/eventhub_service/config"
	"github.com/SundayYogurt/eventhub_service/internal/api"
	"github.com/SundayYogurt/eventhub_service/pkg/logger"
	"go.uber.org/zap"
)

func main() {
	//load configuration
	cfg := config.LoadConfig()

	zl, err := logger.Init(logger.Config{Level: cfg.LogLevel, Dev: cfg.LogDev, File: cfg.LogFile})
	if err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	defer zl.Sync()

	if err := cfg.Validate(); err != nil {
		zl.Fatal("invalid configuration", zap.Error(err))
	}

	if err := api.StartServer(cfg, zl); err != nil {
		zl.Fatal("server stopped", zap.Error(err))
	}
}
