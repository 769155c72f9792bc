// Package query reads analysis results back out of ClickHouse for the HTTP
// API.
package query

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"ManetLens/internal/config"
	"ManetLens/internal/model"
	"ManetLens/internal/writer"
)

// HealthRow is one node's health score from a stored run.
type HealthRow struct {
	RunTime       time.Time `json:"run_time"`
	Node          string    `json:"node"`
	TotalSeries   uint32    `json:"total_series"`
	HealthySeries uint32    `json:"healthy_series"`
	Fraction      float64   `json:"fraction"`
}

// QoSRow is one node's QoS record from a stored run. Metrics that were
// undefined in the run are null.
type QoSRow struct {
	RunTime       time.Time    `json:"run_time"`
	Node          string       `json:"node"`
	SentCount     uint32       `json:"sent_pkts"`
	RecvCount     uint32       `json:"recv_pkts"`
	BytesSent     uint64       `json:"bytes_sent"`
	BytesRecv     uint64       `json:"bytes_recv"`
	DeliveryRatio model.Metric `json:"pdr"`
	AvgDelay      model.Metric `json:"avg_delay_s"`
	Jitter        model.Metric `json:"jitter_s"`
	ThroughputBps float64      `json:"throughput_bps"`
}

// OfflineRow is one node's first offline time from a stored run.
type OfflineRow struct {
	RunTime      time.Time `json:"run_time"`
	Node         string    `json:"node"`
	FirstOffline float64   `json:"first_offline_s"`
}

// Querier serves stored analysis results.
type Querier interface {
	LatestHealth(ctx context.Context) ([]HealthRow, error)
	LatestQoS(ctx context.Context) ([]QoSRow, error)
	LatestOfflineTimes(ctx context.Context) ([]OfflineRow, error)
	NodeHealthHistory(ctx context.Context, node string) ([]HealthRow, error)
}

// clickhouseQuerier implements Querier against the tables the ClickHouse
// writer fills.
type clickhouseQuerier struct {
	conn driver.Conn
}

// NewClickHouseQuerier creates a querier for ClickHouse.
func NewClickHouseQuerier(cfg config.ClickHouseConfig) (Querier, error) {
	conn, err := writer.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to clickhouse: %w", err)
	}
	return &clickhouseQuerier{conn: conn}, nil
}

// LatestHealth returns the health table of the most recent run.
func (q *clickhouseQuerier) LatestHealth(ctx context.Context) ([]HealthRow, error) {
	rows, err := q.conn.Query(ctx, `
		SELECT RunTime, Node, TotalSeries, HealthySeries, Fraction
		FROM node_health
		WHERE RunTime = (SELECT max(RunTime) FROM node_health)
		ORDER BY Node
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query health: %w", err)
	}
	defer rows.Close()

	var result []HealthRow
	for rows.Next() {
		var r HealthRow
		if err := rows.Scan(&r.RunTime, &r.Node, &r.TotalSeries, &r.HealthySeries, &r.Fraction); err != nil {
			return nil, fmt.Errorf("failed to scan health row: %w", err)
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

// LatestQoS returns the QoS table of the most recent run.
func (q *clickhouseQuerier) LatestQoS(ctx context.Context) ([]QoSRow, error) {
	rows, err := q.conn.Query(ctx, `
		SELECT RunTime, Node, SentCount, RecvCount, BytesSent, BytesRecv,
		       DeliveryRatio, AvgDelay, Jitter, ThroughputBps
		FROM node_qos
		WHERE RunTime = (SELECT max(RunTime) FROM node_qos)
		ORDER BY Node
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query qos: %w", err)
	}
	defer rows.Close()

	var result []QoSRow
	for rows.Next() {
		var r QoSRow
		var pdr, avgDelay, jitter *float64
		if err := rows.Scan(&r.RunTime, &r.Node, &r.SentCount, &r.RecvCount,
			&r.BytesSent, &r.BytesRecv, &pdr, &avgDelay, &jitter, &r.ThroughputBps); err != nil {
			return nil, fmt.Errorf("failed to scan qos row: %w", err)
		}
		r.DeliveryRatio = fromNullable(pdr)
		r.AvgDelay = fromNullable(avgDelay)
		r.Jitter = fromNullable(jitter)
		result = append(result, r)
	}
	return result, rows.Err()
}

// LatestOfflineTimes returns the offline table of the most recent run.
func (q *clickhouseQuerier) LatestOfflineTimes(ctx context.Context) ([]OfflineRow, error) {
	rows, err := q.conn.Query(ctx, `
		SELECT RunTime, Node, FirstOffline
		FROM node_offline
		WHERE RunTime = (SELECT max(RunTime) FROM node_offline)
		ORDER BY Node
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query offline times: %w", err)
	}
	defer rows.Close()

	var result []OfflineRow
	for rows.Next() {
		var r OfflineRow
		if err := rows.Scan(&r.RunTime, &r.Node, &r.FirstOffline); err != nil {
			return nil, fmt.Errorf("failed to scan offline row: %w", err)
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

// NodeHealthHistory returns one node's health score across all stored runs,
// oldest first.
func (q *clickhouseQuerier) NodeHealthHistory(ctx context.Context, node string) ([]HealthRow, error) {
	rows, err := q.conn.Query(ctx, `
		SELECT RunTime, Node, TotalSeries, HealthySeries, Fraction
		FROM node_health
		WHERE Node = ?
		ORDER BY RunTime
	`, node)
	if err != nil {
		return nil, fmt.Errorf("failed to query health history: %w", err)
	}
	defer rows.Close()

	var result []HealthRow
	for rows.Next() {
		var r HealthRow
		if err := rows.Scan(&r.RunTime, &r.Node, &r.TotalSeries, &r.HealthySeries, &r.Fraction); err != nil {
			return nil, fmt.Errorf("failed to scan health row: %w", err)
		}
		result = append(result, r)
	}
	return result, rows.Err()
}

func fromNullable(v *float64) model.Metric {
	if v == nil {
		return model.Undefined()
	}
	return model.Defined(*v)
}
