/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the record engine server. Handles configuration,
  dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Parse command-line flags and load YAML config
  2. Build family specs (tickets, invoices) with config overrides
  3. Open the SQLite tombstone archive (if configured)
  4. Construct the RecordStore and wire the API handler
  5. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -config   Path to YAML config file (optional)
  -listen   Listen address, overrides config (default from config: :8080)
  -archive  Tombstone archive path, overrides config
  -seed     Load demo data on startup

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close the archive database
  4. Exit

EXAMPLES:
  # Run with defaults (in-memory only, history discarded on delete)
  ./server

  # Run with a tombstone archive and demo data
  ./server -archive=./data/tombstones.db -seed

  # Run with a config file
  ./server -config=./config.yaml

SEE ALSO:
  - api/server.go: Router configuration
  - config/config.go: YAML schema
*/
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/warp/record-engine/api"
	"github.com/warp/record-engine/config"
	"github.com/warp/record-engine/factory"
	"github.com/warp/record-engine/generic"
	"github.com/warp/record-engine/store/sqlite"
)

func main() {
	// Flags
	configPath := flag.String("config", "", "Path to YAML config file")
	listen := flag.String("listen", "", "Listen address (overrides config)")
	archivePath := flag.String("archive", "", "Tombstone archive path (overrides config)")
	seed := flag.Bool("seed", false, "Load demo data on startup")
	flag.Parse()

	log := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if *listen != "" {
		cfg.Listen = *listen
	}
	if *archivePath != "" {
		cfg.ArchivePath = *archivePath
	}
	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil && cfg.LogLevel != "" {
		log = log.Level(level)
	}

	// Family specs with config overrides
	families, err := factory.Families(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid family configuration")
	}

	// Optional tombstone archive
	var archive generic.Archive
	if cfg.ArchivePath != "" {
		sqliteArchive, err := sqlite.New(cfg.ArchivePath)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to open tombstone archive")
		}
		defer sqliteArchive.Close()
		archive = sqliteArchive
		log.Info().Str("path", cfg.ArchivePath).Msg("tombstone archive enabled")
	}

	// One store per process, passed explicitly to whatever needs it.
	store := generic.NewRecordStore(generic.StoreConfig{
		Families: families,
		Archive:  archive,
	})

	if *seed {
		n, err := api.SeedDemoData(context.Background(), store)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to seed demo data")
		}
		log.Info().Int("records", n).Msg("demo data loaded")
	}

	handler := api.NewHandler(store, log)
	router := api.NewRouter(handler, cfg.CORSOrigins)

	server := &http.Server{
		Addr:         cfg.Listen,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.Listen).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
