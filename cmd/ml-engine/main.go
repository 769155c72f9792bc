package main

import (
	_ "ManetLens/internal/writer" // Registers the csv, gob and clickhouse writers
)

func main() {
	Execute()
}
