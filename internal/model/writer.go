package model

// Writer defines a generic interface for emitting a fingerprint to an output sink.
type Writer interface {
	// Write persists or publishes a single fingerprint. Implementations must be
	// safe for concurrent use, the manager may call Write from several workers.
	Write(fp *Fingerprint) error

	// Type returns the configured writer type, e.g. "file" or "clickhouse".
	Type() string
}
