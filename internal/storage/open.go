package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/yndnr/ecoply-go/internal/session"
	"github.com/yndnr/ecoply-go/internal/telemetry/logger"
)

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendBadger = "badger"
	BackendMemory = "memory"
)

// Store is a CredentialStore that owns resources.
type Store interface {
	session.CredentialStore
	io.Closer
}

// Config selects and configures a backend.
type Config struct {
	// Backend is one of file, badger, memory. Empty means file.
	Backend string
	// Path is the token file (file) or database directory (badger).
	// Empty means the default under ~/.ecoply.
	Path string
	// Passphrase enables sealing for the file backend.
	Passphrase string
}

// Open creates the configured backend.
func Open(cfg Config, l logger.Logger) (Store, error) {
	backend := strings.ToLower(strings.TrimSpace(cfg.Backend))
	if backend == "" {
		backend = BackendFile
	}

	switch backend {
	case BackendFile:
		path, err := resolvePath(cfg.Path, "token")
		if err != nil {
			return nil, err
		}
		var opts []FileOption
		if cfg.Passphrase != "" {
			s, err := NewSealer([]byte(cfg.Passphrase))
			if err != nil {
				return nil, err
			}
			opts = append(opts, WithSealer(s))
		}
		return NewFileStore(path, opts...), nil

	case BackendBadger:
		if cfg.Passphrase != "" {
			return nil, fmt.Errorf("storage: passphrase is only supported by the %q backend", BackendFile)
		}
		dir, err := resolvePath(cfg.Path, "credentials")
		if err != nil {
			return nil, err
		}
		return OpenBadger(dir, l)

	case BackendMemory:
		return memoryStore{session.NewMemoryStore()}, nil

	default:
		return nil, fmt.Errorf("storage: unknown backend %q (want file, badger or memory)", cfg.Backend)
	}
}

// DefaultDir returns ~/.ecoply.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("storage: resolve home dir: %w", err)
	}
	return filepath.Join(home, ".ecoply"), nil
}

func resolvePath(path, name string) (string, error) {
	if path != "" {
		if strings.HasPrefix(path, "~/") {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("storage: resolve home dir: %w", err)
			}
			path = filepath.Join(home, path[2:])
		}
		return path, nil
	}
	dir, err := DefaultDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}

type memoryStore struct {
	*session.MemoryStore
}

func (memoryStore) Close() error { return nil }
