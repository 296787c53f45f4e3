package confloader

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// DefaultEnvPrefix is the environment variable prefix.
const DefaultEnvPrefix = "ECOPLY_"

// Layer names reported by Sources.
const (
	LayerDefaults  = "defaults"
	LayerFile      = "file"
	LayerEnv       = "env"
	LayerOverrides = "overrides"
)

// Source is one layer that contributed to the last Load.
type Source struct {
	Layer string
	// Origin is the file path or env prefix, when the layer has one.
	Origin string
	Keys   int
}

// Loader merges defaults, a YAML file, the environment and overrides, each
// layer replacing keys set by the ones before it.
type Loader struct {
	envPrefix string
	path      string
	required  bool
	defaults  map[string]any
	overrides map[string]any

	k       *koanf.Koanf
	sources []Source
}

// Option configures a Loader.
type Option func(*Loader)

// WithEnvPrefix sets the environment variable prefix.
func WithEnvPrefix(prefix string) Option {
	return func(l *Loader) { l.envPrefix = prefix }
}

// WithConfigFile names a file that must exist.
func WithConfigFile(path string) Option {
	return func(l *Loader) { l.path, l.required = path, true }
}

// WithOptionalConfigFile names a file that is skipped when absent.
func WithOptionalConfigFile(path string) Option {
	return func(l *Loader) { l.path, l.required = path, false }
}

// WithDefaults sets the lowest layer, keyed by dotted path.
func WithDefaults(values map[string]any) Option {
	return func(l *Loader) { l.defaults = values }
}

// WithOverrides sets the highest layer, keyed by dotted path.
func WithOverrides(values map[string]any) Option {
	return func(l *Loader) { l.overrides = values }
}

// NewLoader returns a Loader.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{envPrefix: DefaultEnvPrefix}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load merges every layer and decodes the result into target using koanf
// struct tags. Each call starts from an empty tree.
func (l *Loader) Load(target any) error {
	l.k = koanf.New(".")
	l.sources = nil

	type layer struct {
		name, origin string
		load         func() (koanf.Provider, koanf.Parser, bool, error)
	}
	layers := []layer{
		{LayerDefaults, "", func() (koanf.Provider, koanf.Parser, bool, error) {
			return newMapProvider(l.defaults), nil, len(l.defaults) > 0, nil
		}},
		{LayerFile, l.path, l.fileLayer},
		{LayerEnv, l.envPrefix, func() (koanf.Provider, koanf.Parser, bool, error) {
			return env.Provider(l.envPrefix, ".", l.envKey), nil, true, nil
		}},
		{LayerOverrides, "", func() (koanf.Provider, koanf.Parser, bool, error) {
			return newMapProvider(l.overrides), nil, len(l.overrides) > 0, nil
		}},
	}

	for _, ly := range layers {
		p, parser, ok, err := ly.load()
		if err != nil {
			return fmt.Errorf("load %s: %w", ly.name, err)
		}
		if !ok {
			continue
		}
		layerK := koanf.New(".")
		if err := layerK.Load(p, parser); err != nil {
			return fmt.Errorf("load %s: %w", ly.name, err)
		}
		if err := l.k.Merge(layerK); err != nil {
			return fmt.Errorf("merge %s: %w", ly.name, err)
		}
		if n := len(layerK.Keys()); n > 0 {
			l.sources = append(l.sources, Source{Layer: ly.name, Origin: ly.origin, Keys: n})
		}
	}

	if err := l.k.Unmarshal("", target); err != nil {
		return fmt.Errorf("decode config: %w", err)
	}
	return nil
}

func (l *Loader) fileLayer() (koanf.Provider, koanf.Parser, bool, error) {
	if l.path == "" {
		return nil, nil, false, nil
	}
	if _, err := os.Stat(l.path); err != nil {
		if !l.required && errors.Is(err, os.ErrNotExist) {
			return nil, nil, false, nil
		}
		return nil, nil, false, err
	}
	return file.Provider(l.path), yaml.Parser(), true, nil
}

// envKey maps ECOPLY_CREDENTIAL_BACKEND to credential.backend. Config keys
// therefore never contain underscores.
func (l *Loader) envKey(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(name, l.envPrefix)), "_", ".")
}

// Sources lists the layers that set at least one key in the last Load,
// lowest priority first.
func (l *Loader) Sources() []Source {
	return append([]Source(nil), l.sources...)
}

// FileLoaded reports whether the last Load read the configuration file.
func (l *Loader) FileLoaded() bool {
	for _, s := range l.sources {
		if s.Layer == LayerFile {
			return true
		}
	}
	return false
}

// String returns the merged value at a dotted key.
func (l *Loader) String(key string) string {
	if l.k == nil {
		return ""
	}
	return l.k.String(key)
}

// All returns the merged tree flattened to dotted keys.
func (l *Loader) All() map[string]any {
	if l.k == nil {
		return map[string]any{}
	}
	return l.k.All()
}
