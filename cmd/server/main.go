package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/hexclash/hexclash-server-go/internal/catalog"
	"github.com/hexclash/hexclash-server-go/internal/config"
	"github.com/hexclash/hexclash-server-go/internal/flavor"
	"github.com/hexclash/hexclash-server-go/internal/game"
	"github.com/hexclash/hexclash-server-go/internal/server"
)

var (
	configPath = flag.String("config", config.DefaultPath, "path to configuration file")
	version    = "dev" // set via ldflags during build
)

func main() {
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := config.NewLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting HexClash server",
		zap.String("version", version),
		zap.String("config", *configPath),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load card catalog
	cat, err := catalog.Open(ctx, cfg.Catalog.Path, cfg.Catalog.DatabaseURL, logger)
	if err != nil {
		logger.Fatal("failed to load card catalog", zap.Error(err))
	}
	logger.Info("card catalog loaded", zap.Int("cards", cat.Len()))

	// Initialize flavor text client
	flavorSvc := flavor.NewService(logger.Named("flavor"), cfg.FlavorOptions(), nil)
	if !cfg.Flavor.Enabled {
		logger.Info("flavor text disabled; using fallback lines")
	}

	settings := cfg.Settings()
	templates := cat.Templates()
	newMatch := func(l *zap.Logger) (*game.Manager, error) {
		return game.NewManager(l, settings, templates, game.WithFlavor(flavorSvc))
	}

	// Fail fast on teams that name cards missing from the catalog.
	check, err := newMatch(logger)
	if err != nil {
		logger.Fatal("invalid match settings", zap.Error(err))
	}
	check.Close()

	hub := server.NewHub(cfg.Server, newMatch, logger)

	logger.Info("HexClash server initialized",
		zap.String("version", version),
		zap.String("address", cfg.Server.Address),
		zap.Int("max_turns", settings.MaxTurns),
		zap.String("board", string(settings.Board.Kind)),
	)

	if err := hub.ListenAndServe(ctx); err != nil {
		logger.Error("server error", zap.Error(err))
	}

	logger.Info("HexClash server stopped")
}
