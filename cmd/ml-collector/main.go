package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"ManetLens/internal/collector"
	"ManetLens/internal/config"
	"ManetLens/internal/model"
	"ManetLens/internal/trace"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "Path to configuration YAML")
	output := flag.String("output", "", "Packet log to append to (defaults to analysis.packets_path)")
	replay := flag.String("replay", "", "Replay a packet log over NATS instead of recording")
	interval := flag.Duration("interval", 0, "Delay between replayed events")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if *replay != "" {
		replayLog(cfg, *replay, *interval)
		return
	}

	path := *output
	if path == "" {
		path = cfg.Analysis.PacketsPath
	}
	if path == "" {
		log.Fatal("No output path: set --output or analysis.packets_path")
	}

	recorder, err := collector.NewRecorder(path)
	if err != nil {
		log.Fatalf("Failed to open packet log: %v", err)
	}
	defer recorder.Close()

	sub, err := collector.NewSubscriber(cfg.Collector)
	if err != nil {
		log.Fatalf("Failed to connect to NATS: %v", err)
	}
	defer sub.Close()

	var count atomic.Int64
	err = sub.Start(func(event model.PacketEvent) {
		if err := recorder.Record(event); err != nil {
			log.Printf("Error recording packet event: %v", err)
			return
		}
		count.Add(1)
	})
	if err != nil {
		log.Fatalf("Failed to subscribe: %v", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Printf("Shutdown signal received; %d packet events recorded to %s.", count.Load(), path)
}

// replayLog publishes every event of a recorded packet log, standing in
// for a live simulation host.
func replayLog(cfg *config.Config, path string, interval time.Duration) {
	events, err := trace.LoadPacketEvents(path)
	if err != nil {
		log.Fatalf("Failed to load packet log: %v", err)
	}

	pub, err := collector.NewPublisher(cfg.Collector)
	if err != nil {
		log.Fatalf("Failed to connect to NATS: %v", err)
	}
	defer pub.Close()

	if interval <= 0 {
		n, err := pub.PublishAll(events)
		if err != nil {
			log.Fatalf("Replay stopped after %d of %d events: %v", n, len(events), err)
		}
		log.Printf("Replayed %d packet events from %s.", n, path)
		return
	}

	for i := range events {
		if err := pub.Publish(&events[i]); err != nil {
			log.Fatalf("Replay stopped after %d of %d events: %v", i, len(events), err)
		}
		time.Sleep(interval)
	}
	log.Printf("Replayed %d packet events from %s.", len(events), path)
}
