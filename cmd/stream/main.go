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

	log.Printf("env=%s source=%s instrument=%s", cfg.Environment, cfg.Stream.Source, cfg.Stream.Instrument)

	app, err := di.InitializeStreamApp(cfg)
	if err != nil {
		log.Fatalf("app initialization failed: %v", err)
	}

	if err := app.Run(); err != nil {
		log.Printf("app error: %v", err)
		os.Exit(1)
	}
}
