package probe

import (
	"log"

	"Go2NetPrint/internal/codec"
	"Go2NetPrint/internal/config"
	"Go2NetPrint/internal/model"

	"github.com/nats-io/nats.go"
)

// FingerprintHandler is a function that processes a received fingerprint.
type FingerprintHandler func(fp *model.Fingerprint)

// Subscriber is responsible for subscribing to a NATS subject and processing messages.
type Subscriber struct {
	nc      *nats.Conn
	sub     *nats.Subscription
	subject string
}

// NewSubscriber creates a new NATS subscriber.
func NewSubscriber(cfg config.NATSConfig) (*Subscriber, error) {
	nc, err := nats.Connect(cfg.URL)
	if err != nil {
		return nil, err
	}
	log.Printf("Connected to NATS server at %s", cfg.URL)
	return &Subscriber{nc: nc, subject: cfg.Subject}, nil
}

// Start subscribes to the configured subject and hands every decoded fingerprint to handler.
func (s *Subscriber) Start(handler FingerprintHandler) error {
	sub, err := s.nc.Subscribe(s.subject, func(msg *nats.Msg) {
		fp, err := codec.Unmarshal(msg.Data)
		if err != nil {
			log.Printf("Error decoding fingerprint: %v", err)
			return
		}
		handler(fp)
	})
	if err != nil {
		return err
	}
	s.sub = sub
	log.Printf("Subscribed to '%s'. Waiting for messages...", s.subject)
	return nil
}

// Close unsubscribes and closes the NATS connection.
func (s *Subscriber) Close() {
	if s.sub != nil {
		s.sub.Unsubscribe()
	}
	if s.nc != nil {
		s.nc.Close()
		log.Println("NATS connection closed.")
	}
}
