package main

import (
	"flag"
	"log"
	"net"

	"ManetLens/internal/collector"
	"ManetLens/internal/model"
	"ManetLens/pkg/pcaptrace"
)

func main() {
	input := flag.String("input", "", "Path to pcap capture file")
	output := flag.String("output", "packets.csv", "Packet log to write")
	normalNet := flag.String("normal-net", "10.0.0.0", "Base address of the normal-node /24")
	spineNet := flag.String("spine-net", "10.0.1.0", "Base address of the spine-node /24")
	spineSuffix := flag.String("spine-suffix", "S", "Suffix appended to spine node ids")
	flag.Parse()

	if *input == "" {
		log.Fatal("input pcap file required")
	}

	mapper := pcaptrace.Chain(
		pcaptrace.DefaultNodeMapper(net.ParseIP(*normalNet)),
		pcaptrace.SpineNodeMapper(net.ParseIP(*spineNet), *spineSuffix),
	)

	reader, err := pcaptrace.NewReader(*input, mapper)
	if err != nil {
		log.Fatalf("Failed to open pcap file: %v", err)
	}
	defer reader.Close()

	recorder, err := collector.NewRecorder(*output)
	if err != nil {
		log.Fatalf("Failed to open packet log: %v", err)
	}
	defer recorder.Close()

	log.Printf("Reading packets from '%s'...", *input)

	events := make(chan model.PacketEvent)
	go reader.ReadEvents(events)

	count := 0
	for event := range events {
		if err := recorder.Record(event); err != nil {
			log.Fatalf("Failed to record packet event: %v", err)
		}
		count++
	}

	log.Printf("Wrote %d packet events to %s.", count, *output)
}
