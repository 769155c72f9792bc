// Package writer contains the result writers: CSV tables for downstream
// tooling, gob snapshots of the full report, and a ClickHouse sink feeding
// the query API.
package writer

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"ManetLens/internal/config"
	"ManetLens/internal/factory"
	"ManetLens/internal/model"
)

func init() {
	factory.RegisterWriter("csv", func(cfg *config.Config, def config.WriterDef) (model.Writer, error) {
		if def.CSV.RootPath == "" {
			return nil, fmt.Errorf("csv writer requires a root_path")
		}
		return NewCSVWriter(def.CSV.RootPath, cfg.Analysis.SpineSuffix), nil
	})
}

// CSVWriter writes the report as a set of CSV tables under
// <rootPath>/<timestamp>/. Only the tables whose analyses ran are written.
type CSVWriter struct {
	rootPath    string
	spineSuffix string
}

// NewCSVWriter creates a CSV result writer. The spine suffix is only used to
// order node rows numerically.
func NewCSVWriter(rootPath, spineSuffix string) model.Writer {
	return &CSVWriter{rootPath: rootPath, spineSuffix: spineSuffix}
}

// Write persists every populated part of the report.
func (w *CSVWriter) Write(report *model.Report, timestamp string) error {
	dir := filepath.Join(w.rootPath, timestamp)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create result directory: %w", err)
	}

	if report.Health != nil {
		if err := w.writeHealth(dir, report); err != nil {
			return err
		}
	}
	if report.WindowedHealth != nil {
		if err := w.writeHealthWindows(dir, report.WindowedHealth); err != nil {
			return err
		}
	}
	if report.QoS != nil {
		if err := w.writeQoS(dir, report); err != nil {
			return err
		}
	}
	if report.OfflineTimes != nil {
		if err := w.writeOfflineTimes(dir, report.OfflineTimes); err != nil {
			return err
		}
	}
	if report.Connectivity != nil {
		if err := w.writeConnectivity(dir, report.Connectivity); err != nil {
			return err
		}
	}
	if report.Movement != nil {
		if err := w.writeMovement(dir, report.Movement); err != nil {
			return err
		}
	}
	return w.writeWarnings(dir, report.Warnings)
}

// writeTable creates one CSV file with a header and rows.
func writeTable(dir, name string, header []string, rows [][]string) error {
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write header of %s: %w", path, err)
	}
	for _, row := range rows {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write row of %s: %w", path, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func (w *CSVWriter) writeHealth(dir string, report *model.Report) error {
	nodes := sortedKeys(report.Health, w.spineSuffix)
	rows := make([][]string, 0, len(nodes))
	for _, node := range nodes {
		s := report.Health[node]
		rows = append(rows, []string{
			node,
			strconv.Itoa(s.TotalSeries),
			strconv.Itoa(s.HealthySeries),
			formatFloat(s.Fraction),
		})
	}
	return writeTable(dir, "health.csv",
		[]string{"node", "total_series", "healthy_series", "fraction"}, rows)
}

func (w *CSVWriter) writeHealthWindows(dir string, windows []model.TimeWindowSample) error {
	rows := make([][]string, 0, len(windows))
	for _, s := range windows {
		rows = append(rows, []string{
			strconv.Itoa(s.Percent),
			formatFloat(s.Cutoff),
			strconv.Itoa(s.HealthySeries),
			strconv.Itoa(s.TotalSeries),
			formatFloat(s.Fraction),
		})
	}
	return writeTable(dir, "health_windows.csv",
		[]string{"percent", "cutoff_s", "healthy_series", "total_series", "fraction"}, rows)
}

func (w *CSVWriter) writeQoS(dir string, report *model.Report) error {
	nodes := sortedKeys(report.QoS, w.spineSuffix)
	rows := make([][]string, 0, len(nodes))
	for _, node := range nodes {
		r := report.QoS[node]
		rows = append(rows, []string{
			node,
			strconv.Itoa(r.SentCount),
			strconv.Itoa(r.RecvCount),
			r.DeliveryRatio.String(),
			r.AvgDelay.String(),
			r.MinDelay.String(),
			r.MaxDelay.String(),
			r.Jitter.String(),
			strconv.Itoa(r.BytesSent),
			strconv.Itoa(r.BytesRecv),
			formatFloat(r.ThroughputBps),
		})
	}
	if err := writeTable(dir, "qos_per_node.csv",
		[]string{"node", "sent_pkts", "recv_pkts", "pdr", "avg_delay_s", "min_delay_s",
			"max_delay_s", "jitter_s", "bytes_sent", "bytes_recv", "throughput_bps"}, rows); err != nil {
		return err
	}

	summary := [][]string{
		{"avg_pdr", report.Network.AvgPDR.String()},
		{"avg_delay_s", report.Network.AvgDelay.String()},
		{"avg_throughput_bps", report.Network.AvgThroughput.String()},
	}
	return writeTable(dir, "qos_summary.csv", []string{"metric", "value"}, summary)
}

func (w *CSVWriter) writeOfflineTimes(dir string, offline map[string]float64) error {
	nodes := sortedKeys(offline, w.spineSuffix)
	rows := make([][]string, 0, len(nodes))
	for _, node := range nodes {
		rows = append(rows, []string{node, formatFloat(offline[node])})
	}
	return writeTable(dir, "offline_times.csv",
		[]string{"node", "first_offline_s"}, rows)
}

func (w *CSVWriter) writeConnectivity(dir string, stats *model.ConnectivityStats) error {
	nodes := sortedKeys(stats.OnlineFraction, w.spineSuffix)
	rows := make([][]string, 0, len(nodes)+len(stats.WorstSlices)+1)
	rows = append(rows, []string{"overall", "", formatFloat(stats.OverallOnlineFraction)})
	for _, node := range nodes {
		rows = append(rows, []string{"node", node, formatFloat(stats.OnlineFraction[node])})
	}
	for _, s := range stats.WorstSlices {
		rows = append(rows, []string{"worst_slice", formatFloat(s.Time), formatFloat(s.OnlineFraction)})
	}
	return writeTable(dir, "connectivity.csv",
		[]string{"scope", "key", "online_fraction"}, rows)
}

func (w *CSVWriter) writeMovement(dir string, stats *model.MovementStats) error {
	rows := [][]string{
		{"all", formatFloat(stats.Speed.Mean), formatFloat(stats.Speed.Std),
			formatFloat(stats.Speed.Min), formatFloat(stats.Speed.Max), ""},
	}
	nodes := sortedKeys(stats.NodeSpeed, w.spineSuffix)
	for _, node := range nodes {
		s := stats.NodeSpeed[node]
		rows = append(rows, []string{node, formatFloat(s.Mean), formatFloat(s.Std),
			formatFloat(s.Min), formatFloat(s.Max), formatFloat(stats.Distance[node])})
	}
	return writeTable(dir, "movement.csv",
		[]string{"node", "speed_mean", "speed_std", "speed_min", "speed_max", "distance"}, rows)
}

func (w *CSVWriter) writeWarnings(dir string, warnings []model.IntegrityWarning) error {
	rows := make([][]string, 0, len(warnings))
	for _, warn := range warnings {
		rows = append(rows, []string{warn.Kind, warn.PacketID, warn.Detail})
	}
	return writeTable(dir, "warnings.csv",
		[]string{"kind", "packet_id", "detail"}, rows)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

// sortedKeys returns the map keys in node order.
func sortedKeys[V any](m map[string]V, spineSuffix string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	model.SortNodeIDs(keys, spineSuffix)
	return keys
}
