package confloader

import (
	"errors"

	"github.com/knadh/koanf/maps"
)

// mapProvider serves an in-memory layer. Dotted keys such as "log.level"
// become nested maps.
type mapProvider map[string]any

func newMapProvider(flat map[string]any) mapProvider {
	cp := make(map[string]any, len(flat))
	for k, v := range flat {
		cp[k] = v
	}
	return mapProvider(maps.Unflatten(cp, "."))
}

func (m mapProvider) ReadBytes() ([]byte, error) {
	return nil, errors.New("confloader: map layer has no byte form")
}

func (m mapProvider) Read() (map[string]any, error) {
	return maps.Copy(m), nil
}
