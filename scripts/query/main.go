package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/ClickHouse/clickhouse-go/v2"
)

// Queries analysis results either through the HTTP API or directly from
// ClickHouse.
func main() {
	mode := flag.String("mode", "api", "Query mode: 'api' via HTTP, 'direct' against ClickHouse.")
	endpoint := flag.String("endpoint", "http://localhost:8081", "API base URL (api mode).")
	resource := flag.String("resource", "health", "Resource to fetch: health, qos, offline.")
	chAddr := flag.String("ch", "localhost:9000", "ClickHouse address (direct mode).")
	database := flag.String("db", "manetlens", "ClickHouse database (direct mode).")
	flag.Parse()

	switch *mode {
	case "api":
		queryViaAPI(*endpoint, *resource)
	case "direct":
		directQuery(*chAddr, *database)
	default:
		log.Fatalf("Invalid mode: %s. Use 'api' or 'direct'.", *mode)
	}
}

func queryViaAPI(endpoint, resource string) {
	url := fmt.Sprintf("%s/api/v1/%s", endpoint, resource)
	resp, err := http.Get(url)
	if err != nil {
		log.Fatalf("Request to %s failed: %v", url, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Fatalf("Failed to read response: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		log.Fatalf("API returned %s: %s", resp.Status, body)
	}
	fmt.Println(string(body))
}

func directQuery(addr, database string) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{addr},
		Auth: clickhouse.Auth{Database: database, Username: "default"},
	})
	if err != nil {
		log.Fatalf("Failed to connect to ClickHouse: %v", err)
	}

	ctx := context.Background()
	rows, err := conn.Query(ctx, `
		SELECT Node, Fraction
		FROM node_health
		WHERE RunTime = (SELECT max(RunTime) FROM node_health)
		ORDER BY Node
	`)
	if err != nil {
		log.Fatalf("Query failed: %v", err)
	}
	defer rows.Close()

	fmt.Println("node\thealth_fraction")
	for rows.Next() {
		var node string
		var fraction float64
		if err := rows.Scan(&node, &fraction); err != nil {
			log.Fatalf("Scan failed: %v", err)
		}
		fmt.Printf("%s\t%.4f\n", node, fraction)
	}
}
