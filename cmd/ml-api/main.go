package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"ManetLens/internal/config"
	"ManetLens/internal/query"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "Path to configuration YAML")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Find the first enabled ClickHouse writer config; the API reads the
	// tables it fills.
	var chCfg *config.ClickHouseConfig
	for _, def := range cfg.Writers {
		if def.Enabled && def.Type == "clickhouse" {
			chCfg = &def.ClickHouse
			break
		}
	}
	if chCfg == nil {
		log.Fatalf("No enabled ClickHouse writer found in config. API server cannot start.")
	}

	querier, err := query.NewClickHouseQuerier(*chCfg)
	if err != nil {
		log.Fatalf("Failed to create querier: %v", err)
	}

	r := mux.NewRouter()
	h := &apiHandler{querier: querier}
	r.HandleFunc("/api/v1/health", h.latestHealth).Methods("GET")
	r.HandleFunc("/api/v1/health/{node}", h.nodeHealthHistory).Methods("GET")
	r.HandleFunc("/api/v1/qos", h.latestQoS).Methods("GET")
	r.HandleFunc("/api/v1/offline", h.latestOffline).Methods("GET")

	server := &http.Server{
		Addr:    cfg.API.ListenAddr,
		Handler: r,
	}

	go func() {
		log.Printf("API server starting on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on %s: %v", server.Addr, err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("API server shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	log.Println("API server exited.")
}

// apiHandler holds the dependencies for the API handlers.
type apiHandler struct {
	querier query.Querier
}

func (h *apiHandler) latestHealth(w http.ResponseWriter, r *http.Request) {
	rows, err := h.querier.LatestHealth(r.Context())
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to query health: %v", err), http.StatusInternalServerError)
		return
	}
	writeJSON(w, rows)
}

func (h *apiHandler) nodeHealthHistory(w http.ResponseWriter, r *http.Request) {
	node := mux.Vars(r)["node"]
	rows, err := h.querier.NodeHealthHistory(r.Context(), node)
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to query health history: %v", err), http.StatusInternalServerError)
		return
	}
	writeJSON(w, rows)
}

func (h *apiHandler) latestQoS(w http.ResponseWriter, r *http.Request) {
	rows, err := h.querier.LatestQoS(r.Context())
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to query qos: %v", err), http.StatusInternalServerError)
		return
	}
	writeJSON(w, rows)
}

func (h *apiHandler) latestOffline(w http.ResponseWriter, r *http.Request) {
	rows, err := h.querier.LatestOfflineTimes(r.Context())
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to query offline times: %v", err), http.StatusInternalServerError)
		return
	}
	writeJSON(w, rows)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}
