package collector

import (
	"encoding/json"
	"errors"
	"testing"

	"ManetLens/internal/model"
)

// fakeConn records published messages in order.
type fakeConn struct {
	subjects []string
	payloads [][]byte
	failAt   int // publish index that errors, -1 for never
}

func (c *fakeConn) Publish(subject string, data []byte) error {
	if c.failAt >= 0 && len(c.payloads) == c.failAt {
		return errors.New("connection lost")
	}
	c.subjects = append(c.subjects, subject)
	c.payloads = append(c.payloads, data)
	return nil
}

func (c *fakeConn) Drain() error { return nil }

func TestPublisherWireFormat(t *testing.T) {
	conn := &fakeConn{failAt: -1}
	pub := &Publisher{nc: conn, subject: "manetlens.packets"}

	event := model.PacketEvent{UID: "p1", Time: 0.5, Node: "3S", Size: 512, Received: true}
	if err := pub.Publish(&event); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	if len(conn.payloads) != 1 {
		t.Fatalf("Published %d messages, want 1", len(conn.payloads))
	}
	if conn.subjects[0] != "manetlens.packets" {
		t.Errorf("Published to subject %q, want manetlens.packets", conn.subjects[0])
	}

	// The payload must decode the way the subscriber decodes it.
	var decoded model.PacketEvent
	if err := json.Unmarshal(conn.payloads[0], &decoded); err != nil {
		t.Fatalf("Payload is not valid JSON: %v", err)
	}
	if decoded != event {
		t.Errorf("Round trip mismatch: got %+v, want %+v", decoded, event)
	}
}

func TestPublishAllOrderAndCount(t *testing.T) {
	conn := &fakeConn{failAt: -1}
	pub := &Publisher{nc: conn, subject: "manetlens.packets"}

	events := []model.PacketEvent{
		{UID: "p1", Time: 0.0, Node: "0", Size: 100},
		{UID: "p1", Time: 0.2, Node: "2S", Size: 100, Received: true},
		{UID: "p2", Time: 1.0, Node: "1", Size: 100},
	}
	n, err := pub.PublishAll(events)
	if err != nil {
		t.Fatalf("PublishAll failed: %v", err)
	}
	if n != len(events) {
		t.Fatalf("PublishAll reported %d events, want %d", n, len(events))
	}
	for i, payload := range conn.payloads {
		var decoded model.PacketEvent
		if err := json.Unmarshal(payload, &decoded); err != nil {
			t.Fatalf("Payload %d is not valid JSON: %v", i, err)
		}
		if decoded != events[i] {
			t.Errorf("Event %d out of order: got %+v, want %+v", i, decoded, events[i])
		}
	}
}

func TestPublishAllStopsOnError(t *testing.T) {
	conn := &fakeConn{failAt: 1}
	pub := &Publisher{nc: conn, subject: "manetlens.packets"}

	events := []model.PacketEvent{
		{UID: "p1", Node: "0", Size: 100},
		{UID: "p2", Node: "1", Size: 100},
		{UID: "p3", Node: "0", Size: 100},
	}
	n, err := pub.PublishAll(events)
	if err == nil {
		t.Fatal("PublishAll succeeded, want error")
	}
	if n != 1 {
		t.Errorf("PublishAll reported %d events before the error, want 1", n)
	}
}
