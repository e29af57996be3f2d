/*
Package config loads server configuration from YAML.

PURPOSE:
  One YAML file configures the server: listen address, CORS origins, the
  tombstone archive path, and per-family overrides (custom SLA durations
  for tickets, custom net-terms windows for invoices). Flags in
  cmd/server override individual fields for local runs.

EXAMPLE (config.yaml):
  listen: ":8080"
  log_level: "info"
  archive_path: "./data/tombstones.db"
  cors_origins:
    - "http://localhost:5173"
  tickets:
    sla:
      urgent: "4h"
      high: "24h"
      medium: "48h"
      low: "72h"
  billing:
    net_terms: [15, 30, 45, 60]

SEE ALSO:
  - factory/family.go: Turns the overrides into family specs
  - cmd/server/main.go: Load order and flag precedence
*/
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Listen      string   `yaml:"listen"`
	LogLevel    string   `yaml:"log_level"`
	CORSOrigins []string `yaml:"cors_origins"`

	// ArchivePath enables the SQLite tombstone archive when non-empty.
	ArchivePath string `yaml:"archive_path"`

	Tickets TicketsConfig `yaml:"tickets"`
	Billing BillingConfig `yaml:"billing"`
}

// TicketsConfig overrides the ticket family's SLA table. Keys are priority
// names, values are Go duration strings ("4h", "30m").
type TicketsConfig struct {
	SLA map[string]string `yaml:"sla"`
}

// BillingConfig overrides the invoice family's accepted net-terms windows.
type BillingConfig struct {
	NetTerms []int `yaml:"net_terms"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Listen:   ":8080",
		LogLevel: "info",
		CORSOrigins: []string{
			"http://localhost:5173",
			"http://localhost:8080",
		},
	}
}

// Load reads a YAML config file over the defaults. An empty path returns
// the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}
