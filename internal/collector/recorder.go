package collector

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"ManetLens/internal/model"
)

// Recorder appends packet events to a packet log CSV, producing the same
// format the trace loader reads back. It is safe for concurrent use by the
// subscriber callback.
type Recorder struct {
	mu sync.Mutex
	f  *os.File
	w  *csv.Writer
}

// NewRecorder opens (or creates) the packet log at path. The header is
// written only when the file is new.
func NewRecorder(path string) (*Recorder, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	info, err := os.Stat(path)
	fresh := os.IsNotExist(err) || (err == nil && info.Size() == 0)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open packet log: %w", err)
	}

	r := &Recorder{f: f, w: csv.NewWriter(f)}
	if fresh {
		if err := r.w.Write([]string{"node", "time", "uid", "size", "received"}); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to write packet log header: %w", err)
		}
	}
	return r, nil
}

// Record appends one event.
func (r *Recorder) Record(event model.PacketEvent) error {
	received := "0"
	if event.Received {
		received = "1"
	}
	row := []string{
		event.Node,
		strconv.FormatFloat(event.Time, 'f', -1, 64),
		event.UID,
		strconv.Itoa(event.Size),
		received,
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.w.Write(row); err != nil {
		return fmt.Errorf("failed to append packet event: %w", err)
	}
	r.w.Flush()
	return r.w.Error()
}

// Close flushes and closes the packet log.
func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.w.Flush()
	if err := r.w.Error(); err != nil {
		r.f.Close()
		return err
	}
	return r.f.Close()
}
