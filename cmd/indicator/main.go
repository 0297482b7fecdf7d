package main

import (
	"flag"
	"log"
	"os"

	"foresight/internal/di"
	"foresight/pkg/config"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "config file path")
	flag.Parse()

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	log.Printf("env=%s component=%s instrument=%s timescale=%s selection=%s",
		cfg.Environment, cfg.Indicator.Component, cfg.Indicator.Instrument,
		cfg.Indicator.Timescale, cfg.Indicator.Selection)

	app, err := di.InitializeIndicatorApp(cfg)
	if err != nil {
		log.Fatalf("app initialization failed: %v", err)
	}

	if err := app.Run(); err != nil {
		log.Printf("app error: %v", err)
		os.Exit(1)
	}
}
