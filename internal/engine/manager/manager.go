package manager

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"Go2NetPrint/internal/config"
	"Go2NetPrint/internal/fingerprint"
	"Go2NetPrint/internal/model"
	"Go2NetPrint/internal/trace"
)

// Manager fingerprints traces with a pool of workers and hands every result
// to the configured writers.
type Manager struct {
	pipeline   *fingerprint.Pipeline
	opts       trace.Options
	writers    []model.Writer
	numWorkers int
}

// NewManager creates a new Manager.
func NewManager(cfg *config.Config, writers []model.Writer) *Manager {
	numWorkers := cfg.Engine.NumWorkers
	if numWorkers <= 0 {
		numWorkers = 1
	}
	return &Manager{
		pipeline:   fingerprint.New(fingerprint.Options{ExcludedPacketSize: cfg.Fingerprint.ExcludedPacketSize}),
		opts:       trace.OptionsFromConfig(cfg),
		writers:    writers,
		numWorkers: numWorkers,
	}
}

// Pipeline returns the marker pipeline shared by the workers.
func (m *Manager) Pipeline() *fingerprint.Pipeline {
	return m.pipeline
}

// Run fingerprints every trace file in paths. A failing trace does not stop
// the others; the returned slice holds nil for it and the error lists every
// failure in path order. Cancelling ctx stops traces that have not started.
func (m *Manager) Run(ctx context.Context, paths []string) ([]*model.Fingerprint, error) {
	results := make([]*model.Fingerprint, len(paths))
	errs := make([]error, len(paths))

	jobs := make(chan int)
	var wg sync.WaitGroup
	workers := min(m.numWorkers, len(paths))
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for idx := range jobs {
				results[idx], errs[idx] = m.processFile(paths[idx])
			}
		}()
	}
	log.Printf("Manager started with %d workers for %d traces.", workers, len(paths))

	for i := range paths {
		if ctx.Err() == nil {
			select {
			case jobs <- i:
				continue
			case <-ctx.Done():
			}
		}
		errs[i] = fmt.Errorf("trace %s: %w", paths[i], ctx.Err())
	}
	close(jobs)
	wg.Wait()

	return results, errors.Join(errs...)
}

func (m *Manager) processFile(path string) (*model.Fingerprint, error) {
	obs, err := trace.Load(path, m.opts)
	if err != nil {
		return nil, fmt.Errorf("trace %s: %w", path, err)
	}
	return m.Process(trace.NameOf(path), obs)
}

// Process fingerprints one trace, logs its marker sequence and writes it to
// every writer. The fingerprint is returned even when a writer fails.
func (m *Manager) Process(name string, obs []model.Observation) (*model.Fingerprint, error) {
	fp, err := m.pipeline.Run(name, obs)
	if err != nil {
		return nil, err
	}
	log.Printf("Fingerprint '%s' (%d packets, %d markers): %v", name, len(fp.SizeAndDirection()), len(fp.Markers), fp.Markers)

	var errs []error
	for _, w := range m.writers {
		if err := w.Write(fp); err != nil {
			errs = append(errs, fmt.Errorf("%s writer for '%s': %w", w.Type(), name, err))
		}
	}
	return fp, errors.Join(errs...)
}
