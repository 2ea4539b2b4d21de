package main

import (
	"context"
	"flag"
	"log"

	"auri/internal/di"
	"auri/pkg/config"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	app, cleanup, err := di.InitializeApp(context.Background(), cfg)
	if err != nil {
		log.Fatalf("initialize app: %v", err)
	}
	defer cleanup()

	if err := app.Run(); err != nil {
		log.Fatalf("run app: %v", err)
	}
}
