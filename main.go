package main

import (
	"flag"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/soocke/boxlabel-go/app"
	"github.com/soocke/boxlabel-go/config"
	"github.com/soocke/boxlabel-go/debug"
)

func main() {
	cfgPath := flag.String("config", config.DefaultPath(), "path to the JSON config file")
	datasetPath := flag.String("dataset", "", "dataset root containing images/ (prompted when empty)")
	debugMode := flag.Bool("debug", false, "enable debug logging and runtime stats")
	lenient := flag.Bool("lenient", false, "skip malformed label lines instead of locking the image")
	flag.Parse()

	cfg, cfgErr := config.Load(*cfgPath)
	if *datasetPath != "" {
		cfg.DatasetPath = *datasetPath
	}
	if *debugMode {
		cfg.Debug = true
	}
	if *lenient {
		cfg.StrictLabels = false
	}

	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	logger := NewLogger(level, uuid.NewString())
	if cfgErr != nil {
		logger.Warn("config not loaded, using defaults", "path", *cfgPath, "error", cfgErr)
	}
	if cfg.Debug {
		debug.StartGoroutineLogger(5*time.Second, logger)
		debug.StartMemLogger(5*time.Second, logger)
	}

	application := app.NewApp("Box Label", cfg, *cfgPath, logger)
	application.Start()
}
