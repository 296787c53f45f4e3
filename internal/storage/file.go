package storage

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/yndnr/ecoply-go/internal/core/domain"
	"github.com/yndnr/ecoply-go/internal/session"
)

// FileStore keeps the token in a single file with 0600 permissions.
//
// Writes go to a temporary file in the same directory which is then
// renamed over the target, so a reader never sees a partial token.
type FileStore struct {
	path   string
	sealer *Sealer
	mu     sync.Mutex
}

// FileOption configures a FileStore.
type FileOption func(*FileStore)

// WithSealer encrypts the token at rest.
func WithSealer(s *Sealer) FileOption {
	return func(f *FileStore) {
		f.sealer = s
	}
}

// NewFileStore creates a file-backed store at path.
// The file and its directory are created on the first Set.
func NewFileStore(path string, opts ...FileOption) *FileStore {
	f := &FileStore{path: path}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Path returns the token file path.
func (f *FileStore) Path() string {
	return f.path
}

// Get reads the token. A missing or empty file reads as absent.
func (f *FileStore) Get() (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, domain.ErrCredentialUnreadable.WithCause(err)
	}

	if f.sealer != nil {
		if !IsSealed(data) {
			if len(strings.TrimSpace(string(data))) == 0 {
				return "", false, nil
			}
			return "", false, domain.ErrCredentialSealed.WithCause(ErrNotSealed)
		}
		data, err = f.sealer.Open(data)
		if err != nil {
			return "", false, domain.ErrCredentialSealed.WithCause(err)
		}
	}

	// A single trailing newline from a hand-edited file is not part of
	// the token; Set never writes one.
	token := strings.TrimSuffix(string(data), "\n")
	if strings.TrimSpace(token) == "" {
		return "", false, nil
	}
	return token, true, nil
}

// Set writes token, replacing any previous one.
func (f *FileStore) Set(token string) error {
	if err := session.ValidateToken(token); err != nil {
		return err
	}

	payload := []byte(token)
	if f.sealer != nil {
		sealed, err := f.sealer.Seal(payload)
		if err != nil {
			return domain.ErrCredentialUnwritable.WithCause(err)
		}
		payload = sealed
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if err := writeFileAtomic(f.path, payload); err != nil {
		return domain.ErrCredentialUnwritable.WithCause(err)
	}
	return nil
}

// Clear removes the token file.
func (f *FileStore) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return domain.ErrCredentialUnwritable.WithCause(err)
	}
	return nil
}

// Close implements io.Closer.
func (f *FileStore) Close() error {
	return nil
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
