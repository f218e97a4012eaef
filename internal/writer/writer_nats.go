package writer

import (
	"Go2NetPrint/internal/config"
	"Go2NetPrint/internal/factory"
	"Go2NetPrint/internal/model"
	"Go2NetPrint/internal/probe"
)

func init() {
	factory.RegisterWriter("nats", func(def config.WriterDef) (model.Writer, error) {
		w, err := NewNATSWriter(def.NATS)
		if err != nil {
			return nil, err
		}
		return w, nil
	})
}

// NATSWriter publishes every fingerprint to a NATS subject.
type NATSWriter struct {
	pub *probe.Publisher
}

// NewNATSWriter connects a publisher for the configured subject.
func NewNATSWriter(cfg config.NATSConfig) (*NATSWriter, error) {
	pub, err := probe.NewPublisher(cfg)
	if err != nil {
		return nil, err
	}
	return &NATSWriter{pub: pub}, nil
}

// Type returns the writer type.
func (w *NATSWriter) Type() string {
	return "nats"
}

// Write publishes the fingerprint.
func (w *NATSWriter) Write(fp *model.Fingerprint) error {
	return w.pub.Publish(fp)
}

// Close drains the NATS connection.
func (w *NATSWriter) Close() error {
	return w.pub.Close()
}
