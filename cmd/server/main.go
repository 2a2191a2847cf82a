package main

import (
	"context"
	"flag"

	"github.com/apex/log"

	"github.com/franckalain/dermscan/internal/analyzer"
	"github.com/franckalain/dermscan/internal/config"
	"github.com/franckalain/dermscan/internal/history"
	"github.com/franckalain/dermscan/internal/server"
)

func main() {
	configPath := flag.String("config", config.GetConfigPath(), "path to configuration file")
	analyzerConfig := flag.String("analyzer-config", "", "path to analyzer configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	// Initialize history store
	store, err := history.New(cfg.History.Type, cfg.History.Path)
	if err != nil {
		log.Fatalf("failed to open history store: %v", err)
	}
	defer store.Close()

	// Initialize analyzer
	a, err := analyzer.New(cfg.Analyzer.Type, *analyzerConfig)
	if err != nil {
		log.Fatalf("failed to create analyzer: %v", err)
	}
	if err := a.Load(context.Background()); err != nil {
		log.Fatalf("failed to load analyzer: %v", err)
	}
	log.Infof("using %s analyzer with %s history store", a.Name(), cfg.History.Type)

	// Start server
	srv := server.New(store, a, cfg.Server.Debug)
	if err := srv.Start(cfg.Server.Port, cfg.Server.StaticDir); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}
