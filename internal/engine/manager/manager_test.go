package manager

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"

	"Go2NetPrint/internal/config"
	"Go2NetPrint/internal/fingerprint"
	"Go2NetPrint/internal/model"
	"Go2NetPrint/internal/trace"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingWriter struct {
	mu    sync.Mutex
	names []string
	fail  bool
}

func (w *recordingWriter) Write(fp *model.Fingerprint) error {
	if w.fail {
		return errors.New("disk full")
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.names = append(w.names, fp.Name)
	return nil
}

func (w *recordingWriter) Type() string {
	return "recording"
}

func writeTrace(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

const (
	client = "192.168.3.100"
	server = "93.184.216.34"
)

func row(size, src, dst string) string {
	return size + "," + src + "," + dst + "\n"
}

func pageLoad() string {
	return row("74", client, server) +
		row("74", server, client) +
		row("66", client, server) +
		row("420", client, server) +
		row("1514", server, client) +
		row("1514", server, client) +
		row("300", client, server)
}

func newConfig(workers int) *config.Config {
	cfg := config.Default()
	cfg.Engine.NumWorkers = workers
	return cfg
}

func TestRunWritesEveryTrace(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	for _, name := range []string{"a.csv", "b.csv", "c.csv", "d.csv", "e.csv"} {
		paths = append(paths, writeTrace(t, dir, name, pageLoad()))
	}

	w := &recordingWriter{}
	m := NewManager(newConfig(3), []model.Writer{w})
	results, err := m.Run(context.Background(), paths)
	require.NoError(t, err)
	require.Len(t, results, len(paths))

	sort.Strings(w.names)
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, w.names)
	for i, fp := range results {
		require.NotNil(t, fp)
		assert.Equal(t, trace.NameOf(paths[i]), fp.Name)
		assert.Equal(t, results[0].Markers, fp.Markers)
	}
}

func TestRunCollectsFailures(t *testing.T) {
	dir := t.TempDir()
	good := writeTrace(t, dir, "good.csv", pageLoad())
	malformed := writeTrace(t, dir, "bad.csv", "abc,"+client+","+server+"\n")
	outgoing := writeTrace(t, dir, "upload.csv", row("500", client, server))
	missing := filepath.Join(dir, "missing.csv")

	w := &recordingWriter{}
	m := NewManager(newConfig(2), []model.Writer{w})
	results, err := m.Run(context.Background(), []string{good, malformed, outgoing, missing})
	require.Error(t, err)

	assert.ErrorIs(t, err, trace.ErrMalformedRecord)
	assert.ErrorIs(t, err, fingerprint.ErrDivisionByZero)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.NotNil(t, results[0])
	assert.Nil(t, results[1])
	assert.Nil(t, results[2])
	assert.Nil(t, results[3])
	assert.Equal(t, []string{"good"}, w.names)
}

func TestRunCancelled(t *testing.T) {
	dir := t.TempDir()
	path := writeTrace(t, dir, "a.csv", pageLoad())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	w := &recordingWriter{}
	_, err := NewManager(newConfig(1), []model.Writer{w}).Run(ctx, []string{path, path, path})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, w.names)
}

func TestProcessWriterFailure(t *testing.T) {
	good := &recordingWriter{}
	m := NewManager(newConfig(1), []model.Writer{&recordingWriter{fail: true}, good})

	fp, err := m.Process("page", []model.Observation{
		{Direction: model.Outgoing, Size: 100},
		{Direction: model.Incoming, Size: 50},
	})
	require.NotNil(t, fp)
	assert.ErrorContains(t, err, "recording writer for 'page': disk full")
	assert.Equal(t, []string{"page"}, good.names)
}

func TestProcessEmptyTrace(t *testing.T) {
	m := NewManager(newConfig(1), nil)
	_, err := m.Process("empty", nil)
	assert.ErrorIs(t, err, fingerprint.ErrEmptyTrace)
	assert.ErrorIs(t, err, fingerprint.ErrDivisionByZero)
}
