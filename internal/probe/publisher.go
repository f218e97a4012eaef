package probe

import (
	"log"

	"Go2NetPrint/internal/codec"
	"Go2NetPrint/internal/config"
	"Go2NetPrint/internal/model"

	"github.com/nats-io/nats.go"
)

// Publisher is responsible for publishing fingerprints to a NATS subject.
type Publisher struct {
	nc      *nats.Conn
	subject string
}

// NewPublisher creates a new NATS publisher.
func NewPublisher(cfg config.NATSConfig) (*Publisher, error) {
	nc, err := nats.Connect(cfg.URL)
	if err != nil {
		return nil, err
	}
	log.Printf("Connected to NATS server at %s", cfg.URL)
	return &Publisher{nc: nc, subject: cfg.Subject}, nil
}

// Publish serializes a fingerprint to Protobuf and publishes it to the configured NATS subject.
func (p *Publisher) Publish(fp *model.Fingerprint) error {
	data, err := codec.Marshal(fp)
	if err != nil {
		return err
	}
	return p.nc.Publish(p.subject, data)
}

// Close drains and closes the NATS connection.
func (p *Publisher) Close() error {
	if p.nc == nil {
		return nil
	}
	if err := p.nc.Drain(); err != nil {
		return err
	}
	log.Println("NATS connection drained and closed.")
	return nil
}
