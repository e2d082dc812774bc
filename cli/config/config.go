// Package config loads filebridge.yaml and the .env files that feed its
// ${VAR} references.
package config

import (
	"fmt"
	"time"
)

// Defaults applied to unset values.
const (
	DefaultSourcePath = "./system_a"
	DefaultTargetPath = "./system_b"
	DefaultLedgerPath = "./.filebridge/ledger"
	DefaultServerAddr = ":5000"
	DefaultLogLevel   = "info"
)

// Config represents a filebridge.yaml file. All values are optional; CLI
// flags always override them.
type Config struct {
	ContractsFile string        `yaml:"contracts_file"`
	Source        DirConfig     `yaml:"source"`
	Target        DirConfig     `yaml:"target"`
	Ledger        LedgerConfig  `yaml:"ledger"`
	Server        ServerConfig  `yaml:"server"`
	Log           LogConfig     `yaml:"log"`
	Adapter       AdapterConfig `yaml:"adapter"`
}

// DirConfig locates one side of the bridge.
type DirConfig struct {
	Backend     string `yaml:"backend"`
	Path        string `yaml:"path"`
	Region      string `yaml:"region"`
	Endpoint    string `yaml:"endpoint"`
	S3PathStyle bool   `yaml:"s3_path_style"`
}

// LedgerConfig places the processing ledger.
type LedgerConfig struct {
	Path     string `yaml:"path"`
	Disabled bool   `yaml:"disabled"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Addr         string   `yaml:"addr"`
	ReadTimeout  Duration `yaml:"read_timeout"`
	WriteTimeout Duration `yaml:"write_timeout"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level string `yaml:"level"`
}

// AdapterConfig selects the artifact notification adapter.
type AdapterConfig struct {
	Type      string            `yaml:"type"`
	URL       string            `yaml:"url"`
	Channel   string            `yaml:"channel,omitempty"`
	LatestKey string            `yaml:"latest_key,omitempty"`
	Headers   map[string]string `yaml:"headers,omitempty"`
	Timeout   Duration          `yaml:"timeout,omitempty"`
	Retries   *int              `yaml:"retries,omitempty"`
	Backoff   Duration          `yaml:"backoff,omitempty"`
}

// ApplyDefaults fills unset paths, addresses and levels.
func (c *Config) ApplyDefaults() {
	if c.Source.Path == "" {
		c.Source.Path = DefaultSourcePath
	}
	if c.Target.Path == "" {
		c.Target.Path = DefaultTargetPath
	}
	if c.Ledger.Path == "" {
		c.Ledger.Path = DefaultLedgerPath
	}
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultServerAddr
	}
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
}

// Duration wraps time.Duration for YAML strings such as "10s" or "2m".
type Duration struct {
	time.Duration
}

// UnmarshalYAML parses a Go duration string. Empty means zero.
func (d *Duration) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	if s == "" {
		return nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	d.Duration = parsed
	return nil
}
