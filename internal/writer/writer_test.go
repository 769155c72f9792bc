package writer

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"ManetLens/internal/model"
)

func sampleReport() *model.Report {
	return &model.Report{
		NormalIDs:  []string{"0", "1", "10"},
		SpineIDs:   []string{"2S"},
		TStart:     0,
		TEnd:       30,
		SeriesSize: 5,
		Health: map[string]model.HealthStat{
			"0":  {TotalSeries: 4, HealthySeries: 2, Fraction: 0.5},
			"1":  {TotalSeries: 4, HealthySeries: 4, Fraction: 1.0},
			"10": {TotalSeries: 2, HealthySeries: 0, Fraction: 0.0},
		},
		WindowedHealth: []model.TimeWindowSample{
			{Percent: 50, Cutoff: 15, TotalSeries: 5, HealthySeries: 3, Fraction: 0.6},
			{Percent: 100, Cutoff: 30, TotalSeries: 10, HealthySeries: 6, Fraction: 0.6},
		},
		QoS: map[string]model.QoSRecord{
			"0": {
				SentCount: 20, RecvCount: 10, BytesSent: 2000, BytesRecv: 1000,
				DeliveryRatio: model.Defined(0.5),
				AvgDelay:      model.Defined(0.25),
				MinDelay:      model.Defined(0.1),
				MaxDelay:      model.Defined(0.4),
				Jitter:        model.Defined(0.05),
				ThroughputBps: 266.7,
			},
			"1": {SentCount: 0, RecvCount: 0},
		},
		Network: model.NetworkQoS{
			AvgPDR:        model.Defined(0.5),
			AvgDelay:      model.Defined(0.25),
			AvgThroughput: model.Defined(133.35),
		},
		OfflineTimes: map[string]float64{"1": 12.5},
		Warnings: []model.IntegrityWarning{
			{Kind: model.WarnDuplicateReceive, PacketID: "p7", Detail: "receive at 3.2 ignored"},
		},
	}
}

func readTable(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("Failed to open %s: %v", path, err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("Failed to parse %s: %v", path, err)
	}
	return rows
}

func TestCSVWriterTables(t *testing.T) {
	root := t.TempDir()
	w := NewCSVWriter(root, "S")

	if err := w.Write(sampleReport(), "2026-01-02_15-04-05"); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	dir := filepath.Join(root, "2026-01-02_15-04-05")

	health := readTable(t, filepath.Join(dir, "health.csv"))
	if len(health) != 4 {
		t.Fatalf("health.csv has %d rows, want header + 3", len(health))
	}
	// Node order is numeric: 0, 1, 10.
	if health[1][0] != "0" || health[2][0] != "1" || health[3][0] != "10" {
		t.Errorf("health.csv node order = %s, %s, %s; want 0, 1, 10",
			health[1][0], health[2][0], health[3][0])
	}
	if health[2][3] != "1.000000" {
		t.Errorf("Fraction of node 1 = %q, want 1.000000", health[2][3])
	}

	windows := readTable(t, filepath.Join(dir, "health_windows.csv"))
	if len(windows) != 3 || windows[1][0] != "50" || windows[2][0] != "100" {
		t.Errorf("health_windows.csv rows = %v, want percents 50 and 100", windows)
	}

	warnings := readTable(t, filepath.Join(dir, "warnings.csv"))
	if len(warnings) != 2 || warnings[1][0] != model.WarnDuplicateReceive || warnings[1][1] != "p7" {
		t.Errorf("warnings.csv rows = %v, want one duplicate_receive row for p7", warnings)
	}
}

func TestCSVWriterUndefinedMetrics(t *testing.T) {
	root := t.TempDir()
	w := NewCSVWriter(root, "S")

	if err := w.Write(sampleReport(), "run"); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	qos := readTable(t, filepath.Join(root, "run", "qos_per_node.csv"))
	if len(qos) != 3 {
		t.Fatalf("qos_per_node.csv has %d rows, want header + 2", len(qos))
	}
	// Node 1 sent nothing; its ratio and delay columns render as n/a.
	row := qos[2]
	if row[0] != "1" || row[3] != "n/a" || row[4] != "n/a" {
		t.Errorf("Zero-send node row = %v, want n/a metrics", row)
	}
}

func TestCSVWriterSkipsAbsentAnalyses(t *testing.T) {
	root := t.TempDir()
	w := NewCSVWriter(root, "S")

	report := &model.Report{
		Health: map[string]model.HealthStat{"0": {TotalSeries: 1, HealthySeries: 1, Fraction: 1}},
	}
	if err := w.Write(report, "run"); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	if _, err := os.Stat(filepath.Join(root, "run", "qos_per_node.csv")); !os.IsNotExist(err) {
		t.Error("qos_per_node.csv written although the qos analysis did not run")
	}
	if _, err := os.Stat(filepath.Join(root, "run", "health.csv")); err != nil {
		t.Errorf("health.csv missing: %v", err)
	}
}

func TestGobWriterRoundTrip(t *testing.T) {
	root := t.TempDir()
	w := NewGobWriter(root)

	report := sampleReport()
	if err := w.Write(report, "run"); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	loaded, err := ReadSnapshot(filepath.Join(root, "run", "report.gob"))
	if err != nil {
		t.Fatalf("ReadSnapshot failed: %v", err)
	}

	if loaded.SeriesSize != report.SeriesSize {
		t.Errorf("SeriesSize = %d, want %d", loaded.SeriesSize, report.SeriesSize)
	}
	if got := loaded.Health["0"].Fraction; got != 0.5 {
		t.Errorf("Health fraction of node 0 = %v, want 0.5", got)
	}
	pdr, ok := loaded.QoS["0"].DeliveryRatio.Value()
	if !ok || pdr != 0.5 {
		t.Errorf("Delivery ratio = %v (defined %v), want 0.5", pdr, ok)
	}
	if loaded.QoS["1"].DeliveryRatio.IsDefined() {
		t.Error("Undefined metric must survive the round trip as undefined")
	}

	if _, err := os.Stat(filepath.Join(root, "run", "summary.json")); err != nil {
		t.Errorf("summary.json missing: %v", err)
	}
}
