package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/record-engine/config"
)

func TestLoad_EmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Listen)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.NotEmpty(t, cfg.CORSOrigins)
	assert.Empty(t, cfg.ArchivePath)
	assert.Empty(t, cfg.Tickets.SLA)
	assert.Empty(t, cfg.Billing.NetTerms)
}

func TestLoad_FileOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
listen: ":9090"
archive_path: "./tombstones.db"
tickets:
  sla:
    urgent: "2h"
    high: "12h"
    medium: "24h"
    low: "48h"
billing:
  net_terms: [15, 30]
`), 0o644))

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Listen)
	assert.Equal(t, "./tombstones.db", cfg.ArchivePath)
	// Untouched fields keep their defaults.
	assert.Equal(t, "info", cfg.LogLevel)

	assert.Equal(t, "2h", cfg.Tickets.SLA["urgent"])
	assert.Equal(t, []int{15, 30}, cfg.Billing.NetTerms)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("listen: [unclosed"), 0o644))

	_, err := config.Load(path)
	require.Error(t, err)
}
