package main

import (
	"context"
	"flag"
	"log"
	"os"

	"FinForge/internal/di"
	"FinForge/pkg/config"
	"FinForge/pkg/trace"
)

var version = "dev"

func main() {
	configPath := flag.String("config", "config/config.yaml", "config file path")
	flag.Parse()

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	if err := trace.Init(trace.Config{
		Enabled:     cfg.Tracing.Enabled,
		ServiceName: cfg.Tracing.ServiceName,
		Version:     version,
		PrettyPrint: cfg.Tracing.PrettyPrint,
	}); err != nil {
		log.Fatalf("tracing init failed: %v", err)
	}

	log.Printf("env=%s catalog=%s kafka=%v", cfg.Environment, cfg.Catalog.Backend, cfg.Kafka.Enabled)

	app, cleanup, err := di.InitializeApp(cfg)
	if err != nil {
		log.Fatalf("app initialization failed: %v", err)
	}

	runErr := app.Run(context.Background())
	cleanup()
	if err := trace.Shutdown(context.Background()); err != nil {
		log.Printf("trace shutdown: %v", err)
	}
	if runErr != nil {
		log.Printf("app error: %v", runErr)
		os.Exit(1)
	}
}
