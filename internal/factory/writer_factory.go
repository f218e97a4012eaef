package factory

import (
	"errors"
	"fmt"
	"io"
	"log"

	"Go2NetPrint/internal/config"
	"Go2NetPrint/internal/model"
)

// WriterFactory defines a function that creates a writer from its config entry.
type WriterFactory func(def config.WriterDef) (model.Writer, error)

// registry holds the mapping of writer types to their factory functions.
var registry = make(map[string]WriterFactory)

// RegisterWriter registers a new writer type with its factory function.
func RegisterWriter(name string, factory WriterFactory) {
	if _, exists := registry[name]; exists {
		panic(fmt.Sprintf("writer type '%s' already registered", name))
	}
	registry[name] = factory
}

// Registered reports whether a writer type has a factory.
func Registered(name string) bool {
	_, ok := registry[name]
	return ok
}

// Create builds every enabled writer listed in the config.
func Create(cfg *config.Config) ([]model.Writer, error) {
	var writers []model.Writer

	for _, def := range cfg.Writers {
		if !def.Enabled {
			continue
		}
		log.Printf("Creating writer of type: '%s'", def.Type)

		factory, ok := registry[def.Type]
		if !ok {
			Close(writers)
			return nil, fmt.Errorf("unknown writer type: '%s'", def.Type)
		}

		writer, err := factory(def)
		if err != nil {
			Close(writers)
			return nil, fmt.Errorf("error creating writer type '%s': %w", def.Type, err)
		}

		writers = append(writers, writer)
	}

	return writers, nil
}

// Close releases every writer that holds a connection or file handle.
func Close(writers []model.Writer) error {
	var errs []error
	for _, w := range writers {
		if c, ok := w.(io.Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close %s writer: %w", w.Type(), err))
			}
		}
	}
	return errors.Join(errs...)
}
