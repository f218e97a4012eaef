package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
fingerprint:
  client_ip: 10.0.0.7
trace:
  format: csv
  csv:
    has_header: true
engine:
  num_workers: 4
writers:
  - type: file
    enabled: true
    file:
      root_path: out
  - type: clickhouse
    enabled: false
    clickhouse:
      host: localhost
      port: 9000
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "10.0.0.7", cfg.Fingerprint.ClientIP)
	assert.Equal(t, 66, cfg.Fingerprint.ExcludedPacketSize, "default excluded size is kept")
	assert.Equal(t, "csv", cfg.Trace.Format)
	assert.True(t, cfg.Trace.CSV.HasHeader)
	assert.Equal(t, 2, cfg.Trace.CSV.AddressColumn)
	assert.Equal(t, 4, cfg.Engine.NumWorkers)
	require.Len(t, cfg.Writers, 2)
	assert.Equal(t, 9000, cfg.Writers[1].ClickHouse.Port)
	assert.Equal(t, "gonp.fingerprints", cfg.Probe.Subject)

	w, ok := cfg.EnabledWriter("file")
	require.True(t, ok)
	assert.Equal(t, "out", w.File.RootPath)
	_, ok = cfg.EnabledWriter("clickhouse")
	assert.False(t, ok)
}

func TestLoadConfigInvalid(t *testing.T) {
	cases := map[string]string{
		"bad ip":     "fingerprint:\n  client_ip: not-an-ip\n",
		"bad format": "trace:\n  format: json\n",
		"negative":   "fingerprint:\n  excluded_packet_size: -2\n",
		"bad yaml":   "fingerprint: [\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, body))
			assert.Error(t, err)
		})
	}

	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestValidateDefaultsWorkers(t *testing.T) {
	cfg := Default()
	cfg.Engine.NumWorkers = 0
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 1, cfg.Engine.NumWorkers)
	assert.Equal(t, "192.168.3.100", cfg.ClientIP().String())
}

func TestLoadConfigDisablesFilter(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, "fingerprint:\n  excluded_packet_size: -1\n"))
	require.NoError(t, err)
	assert.Equal(t, -1, cfg.Fingerprint.ExcludedPacketSize)
}
