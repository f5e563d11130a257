// Package config loads the YAML configuration for a deployed receiver,
// following the same load-with-yaml.v3 conventions the rest of the
// dependency pack uses for its own config loaders. Load returns an error
// for a missing file; falling back to Default is left to the caller.
package config

import (
	"fmt"
	"os"

	hcversion "github.com/hashicorp/go-version"
	"gopkg.in/yaml.v3"
)

// MinSchemaVersion bounds the config schema versions this binary
// understands on the low end; schemaVersionConstraint bounds it on the
// high end. A config file from a much newer or older release is
// rejected rather than silently misinterpreted.
var MinSchemaVersion = hcversion.Must(hcversion.NewVersion("1.0.0"))

func schemaVersionConstraint() (hcversion.Constraints, error) {
	return hcversion.NewConstraint("< 2.0.0")
}

// Config is the top-level configuration for the rfswitchd demo binary.
type Config struct {
	SchemaVersion string         `yaml:"schema_version"`
	Protocol      ProtocolConfig `yaml:"protocol"`
	Tracer        TracerConfig   `yaml:"tracer"`
	Debounce      DebounceConfig `yaml:"debounce"`
	Stream        StreamConfig   `yaml:"stream"`
	MQTT          MQTTConfig     `yaml:"mqtt"`
	Metrics       MetricsConfig  `yaml:"metrics"`
}

// ProtocolConfig selects and optionally extends the protocol table.
type ProtocolConfig struct {
	UseCanonical bool           `yaml:"use_canonical"` // start from the canonical 11-row table
	Extra        []ProtocolRow  `yaml:"extra"`          // additional rows layered on top
}

// ProtocolRow is one YAML-authored protocol timing row, the config-file
// equivalent of a makeTimingSpec<...> instantiation.
type ProtocolRow struct {
	ID               uint16 `yaml:"id"`
	ClockUs          uint32 `yaml:"clock_us"`
	TolerancePercent uint32 `yaml:"tolerance_percent"`
	SynchA           uint32 `yaml:"synch_a"`
	SynchB           uint32 `yaml:"synch_b"`
	Data0A           uint32 `yaml:"data0_a"`
	Data0B           uint32 `yaml:"data0_b"`
	Data1A           uint32 `yaml:"data1_a"`
	Data1B           uint32 `yaml:"data1_b"`
	Inverse          bool   `yaml:"inverse"`
}

// TracerConfig controls the pulse tracer and the offline analyzer.
type TracerConfig struct {
	Enabled             bool    `yaml:"enabled"`
	Capacity            int     `yaml:"capacity"`              // ring buffer depth; must be >= analyzer.MinRecordsForDeduction to support deduction
	AnalyzerTolerance   float64 `yaml:"analyzer_tolerance_pct"` // default 20
	CompressedDumpPath  string  `yaml:"compressed_dump_path,omitempty"`
}

// DebounceConfig controls the optional ButtonDetector layer.
type DebounceConfig struct {
	Enabled   bool `yaml:"enabled"`
	DelayMsec int  `yaml:"delay_msec"` // default 250
}

// StreamConfig controls the websocket diagnostic broadcaster.
type StreamConfig struct {
	Enabled bool   `yaml:"enabled"`
	Listen  string `yaml:"listen"` // e.g. ":8088"
	Path    string `yaml:"path"`   // e.g. "/ws"
}

// MQTTConfig controls republishing decoded packets to a broker.
type MQTTConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Broker   string `yaml:"broker"` // e.g. "tcp://localhost:1883"
	Topic    string `yaml:"topic"`
	Username string `yaml:"username,omitempty"`
	Password string `yaml:"password,omitempty"`
}

// MetricsConfig controls the Prometheus metrics endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Listen  string `yaml:"listen"` // e.g. ":9090"
	Path    string `yaml:"path"`   // e.g. "/metrics"
}

// Default returns a Config with sane defaults for a first run, mirroring
// the teacher's pattern of shipping a runnable default rather than
// requiring every field to be specified.
func Default() Config {
	return Config{
		SchemaVersion: "1.0.0",
		Protocol:      ProtocolConfig{UseCanonical: true},
		Tracer:        TracerConfig{Enabled: true, Capacity: 256, AnalyzerTolerance: 20},
		Debounce:      DebounceConfig{Enabled: true, DelayMsec: 250},
		Stream:        StreamConfig{Enabled: true, Listen: ":8088", Path: "/ws"},
		Metrics:       MetricsConfig{Enabled: true, Listen: ":9090", Path: "/metrics"},
	}
}

// Load reads and parses path, validating the schema version against
// MinSchemaVersion and schemaVersionConstraint.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := validateSchemaVersion(cfg.SchemaVersion); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func validateSchemaVersion(raw string) error {
	v, err := hcversion.NewVersion(raw)
	if err != nil {
		return fmt.Errorf("invalid schema_version %q: %w", raw, err)
	}
	if v.LessThan(MinSchemaVersion) {
		return fmt.Errorf("schema_version %s is older than the minimum supported %s", v, MinSchemaVersion)
	}
	constraint, err := schemaVersionConstraint()
	if err != nil {
		return fmt.Errorf("internal schema constraint: %w", err)
	}
	if !constraint.Check(v) {
		return fmt.Errorf("schema_version %s is newer than this binary supports", v)
	}
	return nil
}
