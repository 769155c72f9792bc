package writer

import (
	"encoding/gob"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"ManetLens/internal/config"
	"ManetLens/internal/factory"
	"ManetLens/internal/model"
)

func init() {
	factory.RegisterWriter("gob", func(cfg *config.Config, def config.WriterDef) (model.Writer, error) {
		if def.Gob.RootPath == "" {
			return nil, fmt.Errorf("gob writer requires a root_path")
		}
		return NewGobWriter(def.Gob.RootPath), nil
	})
}

// runSummary holds the metadata written next to the report snapshot.
type runSummary struct {
	NormalNodes  int      `json:"normal_nodes"`
	SpineNodes   int      `json:"spine_nodes"`
	SeriesSize   int      `json:"series_size"`
	TStart       float64  `json:"t_start"`
	TEnd         float64  `json:"t_end"`
	WarningCount int      `json:"warning_count"`
	Analyses     []string `json:"analyses"`
	Timestamp    string   `json:"timestamp"`
}

// GobWriter persists the full report as a gob snapshot plus a small JSON
// summary, so later tooling can reload a run without reparsing the logs.
type GobWriter struct {
	rootPath string
}

// NewGobWriter creates a gob snapshot writer.
func NewGobWriter(rootPath string) model.Writer {
	return &GobWriter{rootPath: rootPath}
}

// Write serializes the report to <rootPath>/<timestamp>/report.gob and
// writes summary.json beside it.
func (w *GobWriter) Write(report *model.Report, timestamp string) error {
	dir := filepath.Join(w.rootPath, timestamp)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	reportPath := filepath.Join(dir, "report.gob")
	file, err := os.Create(reportPath)
	if err != nil {
		return fmt.Errorf("failed to create snapshot file '%s': %w", reportPath, err)
	}
	defer file.Close()

	if err := gob.NewEncoder(file).Encode(report); err != nil {
		return fmt.Errorf("failed to encode report to gob: %w", err)
	}

	summary := runSummary{
		NormalNodes:  len(report.NormalIDs),
		SpineNodes:   len(report.SpineIDs),
		SeriesSize:   report.SeriesSize,
		TStart:       report.TStart,
		TEnd:         report.TEnd,
		WarningCount: len(report.Warnings),
		Analyses:     analysesIn(report),
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
	}
	summaryPath := filepath.Join(dir, "summary.json")
	summaryFile, err := os.Create(summaryPath)
	if err != nil {
		return fmt.Errorf("failed to create summary file: %w", err)
	}
	defer summaryFile.Close()

	enc := json.NewEncoder(summaryFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(summary); err != nil {
		return fmt.Errorf("failed to encode summary to json: %w", err)
	}
	return nil
}

// ReadSnapshot loads a report written by the gob writer.
func ReadSnapshot(path string) (*model.Report, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot '%s': %w", path, err)
	}
	defer file.Close()

	var report model.Report
	if err := gob.NewDecoder(file).Decode(&report); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot '%s': %w", path, err)
	}
	return &report, nil
}

// analysesIn lists which analyses populated the report.
func analysesIn(report *model.Report) []string {
	var names []string
	if report.Health != nil {
		names = append(names, "health")
	}
	if report.QoS != nil {
		names = append(names, "qos")
	}
	if report.Connectivity != nil {
		names = append(names, "connectivity")
	}
	if report.Movement != nil {
		names = append(names, "movement")
	}
	return names
}
