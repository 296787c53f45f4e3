// Package config defines and loads the ecoply-cli configuration
// (~/.ecoply/cli.yaml).
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/yndnr/ecoply-go/internal/core/domain"
	"github.com/yndnr/ecoply-go/internal/telemetry/logger"
)

// Output formats accepted by the output key.
const (
	OutputTable = "table"
	OutputJSON  = "json"
	OutputYAML  = "yaml"
)

// CLIConfig is the configuration for ecoply-cli.
type CLIConfig struct {
	// Server is the marketplace API origin.
	Server string `koanf:"server" json:"server" yaml:"server"`
	// Timeout is a Go duration string bounding each request.
	Timeout string `koanf:"timeout" json:"timeout" yaml:"timeout"`
	// Output is the default output format: table, json or yaml.
	Output string `koanf:"output" json:"output" yaml:"output"`

	Credential CredentialConfig `koanf:"credential" json:"credential" yaml:"credential"`
	Transport  TransportConfig  `koanf:"transport" json:"transport" yaml:"transport"`
	Log        LogConfig        `koanf:"log" json:"log" yaml:"log"`
	Metrics    MetricsConfig    `koanf:"metrics" json:"metrics" yaml:"metrics"`
}

// CredentialConfig selects where the session token is kept.
type CredentialConfig struct {
	Backend string `koanf:"backend" json:"backend" yaml:"backend"`
	Path    string `koanf:"path" json:"path,omitempty" yaml:"path,omitempty"`
	// Passphrase seals the token file. It is never written back to disk.
	Passphrase string `koanf:"passphrase" json:"-" yaml:"-"`
}

// TransportConfig tunes the outgoing HTTP pipeline.
type TransportConfig struct {
	RPS    float64 `koanf:"rps" json:"rps" yaml:"rps"`
	Burst  int     `koanf:"burst" json:"burst" yaml:"burst"`
	CAFile string  `koanf:"cafile" json:"cafile,omitempty" yaml:"cafile,omitempty"`
}

// LogConfig configures the diagnostic logger.
type LogConfig struct {
	Level  string `koanf:"level" json:"level" yaml:"level"`
	Format string `koanf:"format" json:"format" yaml:"format"`
}

// MetricsConfig configures the metrics dump written on exit.
type MetricsConfig struct {
	File string `koanf:"file" json:"file,omitempty" yaml:"file,omitempty"`
}

// Default returns the default CLI configuration.
func Default() *CLIConfig {
	return &CLIConfig{
		Server:  "http://localhost:8080",
		Timeout: "30s",
		Output:  OutputTable,
		Credential: CredentialConfig{
			Backend: "file",
		},
		Log: LogConfig{
			Level:  "warn",
			Format: "text",
		},
	}
}

// defaultValues flattens Default into the dotted keys the loader expects.
func defaultValues() map[string]any {
	d := Default()
	return map[string]any{
		"server":             d.Server,
		"timeout":            d.Timeout,
		"output":             d.Output,
		"credential.backend": d.Credential.Backend,
		"log.level":          d.Log.Level,
		"log.format":         d.Log.Format,
	}
}

// RequestTimeout parses Timeout. An empty value yields zero.
func (c *CLIConfig) RequestTimeout() (time.Duration, error) {
	if c.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 0, domain.ErrInvalidArgument.WithDetails(fmt.Sprintf("timeout %q: %v", c.Timeout, err))
	}
	return d, nil
}

// Validate checks the configuration for values no component would accept.
func (c *CLIConfig) Validate() error {
	if strings.TrimSpace(c.Server) == "" {
		return domain.ErrInvalidArgument.WithDetails("server must not be empty")
	}

	if d, err := c.RequestTimeout(); err != nil {
		return err
	} else if d < 0 {
		return domain.ErrInvalidArgument.WithDetails("timeout must not be negative")
	}

	switch c.Output {
	case OutputTable, OutputJSON, OutputYAML:
	default:
		return domain.ErrInvalidArgument.WithDetails(fmt.Sprintf("output %q: want table, json or yaml", c.Output))
	}

	switch c.Credential.Backend {
	case "", "file", "badger", "memory":
	default:
		return domain.ErrInvalidArgument.WithDetails(fmt.Sprintf("credential.backend %q: want file, badger or memory", c.Credential.Backend))
	}

	if c.Transport.RPS < 0 || c.Transport.Burst < 0 {
		return domain.ErrInvalidArgument.WithDetails("transport.rps and transport.burst must not be negative")
	}

	if _, err := logger.ParseLevel(c.Log.Level); err != nil {
		return domain.ErrInvalidArgument.WithDetails(fmt.Sprintf("log.level %q: want debug, info, warn or error", c.Log.Level))
	}

	switch c.Log.Format {
	case "", logger.FormatText, logger.FormatJSON:
	default:
		return domain.ErrInvalidArgument.WithDetails(fmt.Sprintf("log.format %q: want text or json", c.Log.Format))
	}

	return nil
}
