package main

import (
	"fmt"
	"log"
	"os"

	"ManetLens/internal/model"
	"ManetLens/internal/writer"
)

// Dumps a report.gob snapshot written by the gob writer.
func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: go run ./scripts/gobana/main.go <report.gob>")
		os.Exit(1)
	}

	report, err := writer.ReadSnapshot(os.Args[1])
	if err != nil {
		log.Fatalf("Failed to read snapshot: %v", err)
	}

	fmt.Printf("Run: %d normal nodes, %d spine nodes, span [%.3f, %.3f], series size %d\n",
		len(report.NormalIDs), len(report.SpineIDs), report.TStart, report.TEnd, report.SeriesSize)

	if report.Health != nil {
		fmt.Println("\nHealth:")
		nodes := append([]string(nil), report.NormalIDs...)
		model.SortNodeIDs(nodes, "")
		for _, node := range nodes {
			s := report.Health[node]
			fmt.Printf("  node %-4s %d/%d series healthy (%.4f)\n",
				node, s.HealthySeries, s.TotalSeries, s.Fraction)
		}
	}

	if report.QoS != nil {
		fmt.Println("\nQoS:")
		for _, node := range report.NormalIDs {
			r := report.QoS[node]
			fmt.Printf("  node %-4s sent %4d recv %4d pdr %s delay %s throughput %.1f bps\n",
				node, r.SentCount, r.RecvCount, r.DeliveryRatio, r.AvgDelay, r.ThroughputBps)
		}
		fmt.Printf("  network: pdr %s delay %s throughput %s\n",
			report.Network.AvgPDR, report.Network.AvgDelay, report.Network.AvgThroughput)
	}

	if report.OfflineTimes != nil {
		fmt.Println("\nFirst offline times:")
		nodes := make([]string, 0, len(report.OfflineTimes))
		for node := range report.OfflineTimes {
			nodes = append(nodes, node)
		}
		model.SortNodeIDs(nodes, "")
		for _, node := range nodes {
			fmt.Printf("  node %-4s %.3fs\n", node, report.OfflineTimes[node])
		}
	}

	if len(report.Warnings) > 0 {
		fmt.Printf("\n%d integrity warning(s):\n", len(report.Warnings))
		for _, w := range report.Warnings {
			fmt.Printf("  %s\n", w)
		}
	}
}
