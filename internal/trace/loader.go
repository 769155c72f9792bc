// Package trace loads the three CSV log streams emitted by the simulation:
// packet events, movement samples, and connectivity samples. Column order is
// irrelevant; column presence is mandatory and checked against the header.
package trace

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"ManetLens/internal/model"
)

// header maps column names to their index for order-independent row access.
type header map[string]int

func readHeader(r *csv.Reader) (header, error) {
	record, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header row: %w", err)
	}
	h := make(header, len(record))
	for i, name := range record {
		h[strings.TrimSpace(name)] = i
	}
	return h, nil
}

func (h header) require(stream string, fields ...string) error {
	for _, f := range fields {
		if _, ok := h[f]; !ok {
			return &model.SchemaError{Stream: stream, Field: f}
		}
	}
	return nil
}

func (h header) get(record []string, field string) string {
	return strings.TrimSpace(record[h[field]])
}

// LoadPacketEvents reads the packet log. Required columns: uid (or id as an
// alias), time, node, size, received. The received flag follows the log's
// convention: anything that does not parse as a positive integer counts as a
// send.
func LoadPacketEvents(path string) ([]model.PacketEvent, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open packet log: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	h, err := readHeader(r)
	if err != nil {
		return nil, err
	}

	// The packet log names its unique packet id "uid"; "id" in the other
	// streams is a plain row counter, so uid takes precedence.
	uidCol := "uid"
	if _, ok := h[uidCol]; !ok {
		uidCol = "id"
	}
	if err := h.require("packets", uidCol, "time", "node", "size", "received"); err != nil {
		return nil, err
	}

	var events []model.PacketEvent
	for line := 2; ; line++ {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read packet log line %d: %w", line, err)
		}

		t, err := strconv.ParseFloat(h.get(record, "time"), 64)
		if err != nil {
			return nil, fmt.Errorf("packet log line %d: bad time value %q", line, h.get(record, "time"))
		}
		size, err := strconv.Atoi(h.get(record, "size"))
		if err != nil {
			return nil, fmt.Errorf("packet log line %d: bad size value %q", line, h.get(record, "size"))
		}

		recv, err := strconv.Atoi(h.get(record, "received"))
		if err != nil {
			recv = 0
		}

		events = append(events, model.PacketEvent{
			UID:      h.get(record, uidCol),
			Time:     t,
			Node:     h.get(record, "node"),
			Size:     size,
			Received: recv > 0,
		})
	}
	return events, nil
}

// LoadMovementSamples reads the movement log. Required columns: time, node,
// x, y, z, speed.
func LoadMovementSamples(path string) ([]model.MovementSample, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open movement log: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	h, err := readHeader(r)
	if err != nil {
		return nil, err
	}
	if err := h.require("movement", "time", "node", "x", "y", "z", "speed"); err != nil {
		return nil, err
	}

	var samples []model.MovementSample
	for line := 2; ; line++ {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read movement log line %d: %w", line, err)
		}

		s := model.MovementSample{Node: h.get(record, "node")}
		for _, fld := range []struct {
			name string
			dst  *float64
		}{
			{"time", &s.Time},
			{"x", &s.X},
			{"y", &s.Y},
			{"z", &s.Z},
			{"speed", &s.Speed},
		} {
			v, err := strconv.ParseFloat(h.get(record, fld.name), 64)
			if err != nil {
				return nil, fmt.Errorf("movement log line %d: bad %s value %q", line, fld.name, h.get(record, fld.name))
			}
			*fld.dst = v
		}
		samples = append(samples, s)
	}
	return samples, nil
}

// LoadConnectivitySamples reads the connectivity log. Required columns: node,
// time, and exactly one status column, either "online" (bool) or a link
// count convertible to bool via > 0.
func LoadConnectivitySamples(path string) ([]model.ConnectivitySample, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open connectivity log: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	h, err := readHeader(r)
	if err != nil {
		return nil, err
	}
	if err := h.require("connectivity", "node", "time"); err != nil {
		return nil, err
	}

	statusCol, err := connectivityStatusColumn(h)
	if err != nil {
		return nil, err
	}

	var samples []model.ConnectivitySample
	for line := 2; ; line++ {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read connectivity log line %d: %w", line, err)
		}

		t, err := strconv.ParseFloat(h.get(record, "time"), 64)
		if err != nil {
			return nil, fmt.Errorf("connectivity log line %d: bad time value %q", line, h.get(record, "time"))
		}
		online, err := parseOnline(h.get(record, statusCol))
		if err != nil {
			return nil, fmt.Errorf("connectivity log line %d: bad %s value: %v", line, statusCol, err)
		}

		samples = append(samples, model.ConnectivitySample{
			Node:   h.get(record, "node"),
			Time:   t,
			Online: online,
		})
	}
	return samples, nil
}

// connectivityStatusColumn picks the single status column from the header,
// ignoring the id/time/node bookkeeping columns.
func connectivityStatusColumn(h header) (string, error) {
	var status []string
	for name := range h {
		switch name {
		case "id", "time", "node":
		default:
			status = append(status, name)
		}
	}
	if len(status) != 1 {
		return "", fmt.Errorf("connectivity log: expected exactly one status column, found %d (%v)", len(status), status)
	}
	return status[0], nil
}

// parseOnline applies the bool rule: numeric values are online iff > 0,
// otherwise the value must parse as a bool.
func parseOnline(v string) (bool, error) {
	if n, err := strconv.ParseFloat(v, 64); err == nil {
		return n > 0, nil
	}
	b, err := strconv.ParseBool(strings.ToLower(v))
	if err != nil {
		return false, fmt.Errorf("value %q is neither numeric nor bool", v)
	}
	return b, nil
}
