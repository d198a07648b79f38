package main

import (
	"log"
	"log/slog"
	"os"

	"paygate/config"
	"paygate/internal/app"
	"paygate/pkg/logger"

	_ "github.com/joho/godotenv/autoload"
)

func main() {
	cfg, err := config.New()
	if err != nil {
		log.Fatalf("Config error: %s", err)
	}

	logger.Setup(logger.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})

	if err := app.Run(cfg); err != nil {
		slog.Error("gateway stopped", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
