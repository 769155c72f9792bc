package writer

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"ManetLens/internal/config"
	"ManetLens/internal/factory"
	"ManetLens/internal/model"
)

func init() {
	factory.RegisterWriter("clickhouse", func(cfg *config.Config, def config.WriterDef) (model.Writer, error) {
		return NewClickHouseWriter(def.ClickHouse)
	})
}

const createHealthTable = `
CREATE TABLE IF NOT EXISTS node_health (
    RunTime       DateTime,
    Node          String,
    TotalSeries   UInt32,
    HealthySeries UInt32,
    Fraction      Float64
) ENGINE = MergeTree()
PARTITION BY toYYYYMM(RunTime)
ORDER BY (RunTime, Node);
`

const createQoSTable = `
CREATE TABLE IF NOT EXISTS node_qos (
    RunTime       DateTime,
    Node          String,
    SentCount     UInt32,
    RecvCount     UInt32,
    BytesSent     UInt64,
    BytesRecv     UInt64,
    DeliveryRatio Nullable(Float64),
    AvgDelay      Nullable(Float64),
    MinDelay      Nullable(Float64),
    MaxDelay      Nullable(Float64),
    Jitter        Nullable(Float64),
    ThroughputBps Float64
) ENGINE = MergeTree()
PARTITION BY toYYYYMM(RunTime)
ORDER BY (RunTime, Node);
`

const createOfflineTable = `
CREATE TABLE IF NOT EXISTS node_offline (
    RunTime      DateTime,
    Node         String,
    FirstOffline Float64
) ENGINE = MergeTree()
PARTITION BY toYYYYMM(RunTime)
ORDER BY (RunTime, Node);
`

// ClickHouseWriter inserts the per-node result tables into ClickHouse, where
// the query API reads them back.
type ClickHouseWriter struct {
	conn driver.Conn
}

// NewClickHouseWriter connects to ClickHouse and ensures the result tables
// exist.
func NewClickHouseWriter(cfg config.ClickHouseConfig) (model.Writer, error) {
	conn, err := Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to clickhouse: %w", err)
	}

	for _, stmt := range []string{createHealthTable, createQoSTable, createOfflineTable} {
		if err := conn.Exec(context.Background(), stmt); err != nil {
			return nil, fmt.Errorf("failed to create table: %w", err)
		}
	}
	log.Println("Successfully connected to ClickHouse and ensured tables exist.")

	return &ClickHouseWriter{conn: conn}, nil
}

// Connect opens a ClickHouse connection and verifies it with a ping.
func Connect(cfg config.ClickHouseConfig) (driver.Conn, error) {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{addr},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
		Compression: &clickhouse.Compression{
			Method: clickhouse.CompressionLZ4,
		},
	})
	if err != nil {
		return nil, err
	}

	if err := conn.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to ping clickhouse: %w", err)
	}
	return conn, nil
}

// Write inserts the report's per-node tables.
func (w *ClickHouseWriter) Write(report *model.Report, timestamp string) error {
	runTime, _ := time.Parse("2006-01-02_15-04-05", timestamp)
	ctx := context.Background()

	if report.Health != nil {
		if err := w.writeHealth(ctx, runTime, report.Health); err != nil {
			return err
		}
	}
	if report.QoS != nil {
		if err := w.writeQoS(ctx, runTime, report.QoS); err != nil {
			return err
		}
	}
	if report.OfflineTimes != nil {
		if err := w.writeOffline(ctx, runTime, report.OfflineTimes); err != nil {
			return err
		}
	}
	return nil
}

func (w *ClickHouseWriter) writeHealth(ctx context.Context, runTime time.Time, health map[string]model.HealthStat) error {
	batch, err := w.conn.PrepareBatch(ctx, "INSERT INTO node_health")
	if err != nil {
		return fmt.Errorf("failed to prepare health batch: %w", err)
	}
	for node, s := range health {
		if err := batch.Append(runTime, node, uint32(s.TotalSeries), uint32(s.HealthySeries), s.Fraction); err != nil {
			return fmt.Errorf("failed to append health row: %w", err)
		}
	}
	if err := batch.Send(); err != nil {
		return fmt.Errorf("failed to send health batch: %w", err)
	}
	log.Printf("Wrote %d health rows to ClickHouse", len(health))
	return nil
}

func (w *ClickHouseWriter) writeQoS(ctx context.Context, runTime time.Time, qos map[string]model.QoSRecord) error {
	batch, err := w.conn.PrepareBatch(ctx, "INSERT INTO node_qos")
	if err != nil {
		return fmt.Errorf("failed to prepare qos batch: %w", err)
	}
	for node, r := range qos {
		err := batch.Append(
			runTime,
			node,
			uint32(r.SentCount),
			uint32(r.RecvCount),
			uint64(r.BytesSent),
			uint64(r.BytesRecv),
			nullable(r.DeliveryRatio),
			nullable(r.AvgDelay),
			nullable(r.MinDelay),
			nullable(r.MaxDelay),
			nullable(r.Jitter),
			r.ThroughputBps,
		)
		if err != nil {
			return fmt.Errorf("failed to append qos row: %w", err)
		}
	}
	if err := batch.Send(); err != nil {
		return fmt.Errorf("failed to send qos batch: %w", err)
	}
	log.Printf("Wrote %d qos rows to ClickHouse", len(qos))
	return nil
}

func (w *ClickHouseWriter) writeOffline(ctx context.Context, runTime time.Time, offline map[string]float64) error {
	batch, err := w.conn.PrepareBatch(ctx, "INSERT INTO node_offline")
	if err != nil {
		return fmt.Errorf("failed to prepare offline batch: %w", err)
	}
	for node, t := range offline {
		if err := batch.Append(runTime, node, t); err != nil {
			return fmt.Errorf("failed to append offline row: %w", err)
		}
	}
	if err := batch.Send(); err != nil {
		return fmt.Errorf("failed to send offline batch: %w", err)
	}
	log.Printf("Wrote %d offline rows to ClickHouse", len(offline))
	return nil
}

// nullable maps an undefined metric to a SQL NULL.
func nullable(m model.Metric) interface{} {
	if v, ok := m.Value(); ok {
		return v
	}
	return nil
}
