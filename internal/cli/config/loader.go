package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/yndnr/ecoply-go/internal/infra/confloader"
)

// DefaultEnvFile is the dotenv file read from the working directory when
// no other is named.
const DefaultEnvFile = ".env"

// DefaultConfigPath returns the default CLI config file path.
func DefaultConfigPath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".ecoply", "cli.yaml")
}

// LoadOptions names the sources Load reads.
type LoadOptions struct {
	// Path is the YAML file. Empty means DefaultConfigPath. A missing
	// file yields the defaults.
	Path string
	// EnvFile is a dotenv file merged into the process environment
	// before ECOPLY_* variables are read. Empty means DefaultEnvFile,
	// which may be absent; a named file must exist.
	EnvFile string
	// Overrides are flag values keyed by dotted path.
	Overrides map[string]any
}

// Load resolves the configuration from defaults, the YAML file, the
// dotenv file, the environment and overrides, in increasing priority.
func Load(opts LoadOptions) (*CLIConfig, error) {
	cfg, _, err := Inspect(opts)
	return cfg, err
}

// Inspect is Load that also reports which layers set values. Variables
// from the dotenv file count toward the env layer.
func Inspect(opts LoadOptions) (*CLIConfig, []confloader.Source, error) {
	path := opts.Path
	if path == "" {
		path = DefaultConfigPath()
	}

	if err := loadEnvFile(opts.EnvFile); err != nil {
		return nil, nil, err
	}

	loader := confloader.NewLoader(
		confloader.WithDefaults(defaultValues()),
		confloader.WithOptionalConfigFile(path),
		confloader.WithOverrides(opts.Overrides),
	)

	cfg := &CLIConfig{}
	if err := loader.Load(cfg); err != nil {
		return nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	return cfg, loader.Sources(), nil
}

// godotenv.Load never overrides variables already set, so the real
// environment keeps priority over the file.
func loadEnvFile(name string) error {
	if name == "" {
		if _, err := os.Stat(DefaultEnvFile); errors.Is(err, os.ErrNotExist) {
			return nil
		}
		name = DefaultEnvFile
	}
	if err := godotenv.Load(name); err != nil {
		return fmt.Errorf("load env file %s: %w", name, err)
	}
	return nil
}

// Save writes cfg as YAML with owner-only permissions. The credential
// passphrase is never written.
func Save(cfg *CLIConfig, path string) error {
	if path == "" {
		path = DefaultConfigPath()
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".cli-*.yaml")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
