// Package collector streams packet events over NATS so simulation hosts can
// feed a central analysis node while a run is still in progress.
package collector

import (
	"encoding/json"
	"log"

	"github.com/nats-io/nats.go"

	"ManetLens/internal/config"
	"ManetLens/internal/model"
)

// natsConn is the slice of *nats.Conn the publisher needs.
type natsConn interface {
	Publish(subject string, data []byte) error
	Drain() error
}

// Publisher publishes packet events to a NATS subject.
type Publisher struct {
	nc      natsConn
	subject string
}

// NewPublisher creates a NATS publisher.
func NewPublisher(cfg config.CollectorConfig) (*Publisher, error) {
	nc, err := nats.Connect(cfg.NATSURL)
	if err != nil {
		return nil, err
	}
	log.Printf("Connected to NATS server at %s", cfg.NATSURL)
	return &Publisher{nc: nc, subject: cfg.Subject}, nil
}

// Publish serializes one packet event to JSON and publishes it.
func (p *Publisher) Publish(event *model.PacketEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.nc.Publish(p.subject, data)
}

// PublishAll publishes events in order and returns how many went out
// before the first error.
func (p *Publisher) PublishAll(events []model.PacketEvent) (int, error) {
	for i := range events {
		if err := p.Publish(&events[i]); err != nil {
			return i, err
		}
	}
	return len(events), nil
}

// Close drains and closes the NATS connection.
func (p *Publisher) Close() {
	if p.nc != nil {
		p.nc.Drain()
		log.Println("NATS connection drained and closed.")
	}
}
