package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/simlens/simlens/internal/config"
	"github.com/simlens/simlens/internal/events"
)

// runnotify announces a finished simulation run on the configured event bus.
// The launcher calls it after the simulator process exits.
func main() {
	configPath := flag.String("config", "", "Path to configuration file")
	csvPath := flag.String("file", "", "CSV written by the run (default: source.csv_path)")
	status := flag.String("status", events.StatusCompleted, "Run status (completed, failed)")
	runID := flag.String("run-id", "", "Run ID (default: generated)")
	timeout := flag.Duration("timeout", 10*time.Second, "Publish timeout")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Error: failed to load config: %v\n", err)
	}
	if cfg.Events.Type == "" || cfg.Events.Type == "memory" {
		log.Fatal("Error: events.type is memory; configure nats, redis or kafka to notify another process")
	}

	path := *csvPath
	if path == "" {
		path = cfg.Source.CSVPath
	}

	bus, err := events.NewBus(cfg.Events)
	if err != nil {
		log.Fatalf("Error: %v\n", err)
	}
	defer func() { _ = bus.Close() }()

	ev := events.NewRunEvent(path, *status)
	if *runID != "" {
		ev.RunID = *runID
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()
	if err := bus.Publish(ctx, ev); err != nil {
		log.Fatalf("Error: %v\n", err)
	}

	fmt.Printf("published run %s (%s) on %s %s\n", ev.RunID, ev.Status, cfg.Events.Type, cfg.Events.Subject)
}
