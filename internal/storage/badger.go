package storage

import (
	"errors"
	"fmt"
	"os"

	"github.com/dgraph-io/badger/v3"

	"github.com/yndnr/ecoply-go/internal/core/domain"
	"github.com/yndnr/ecoply-go/internal/session"
	"github.com/yndnr/ecoply-go/internal/telemetry/logger"
)

// tokenKey is the single key the badger store writes.
var tokenKey = []byte("session/token")

// BadgerStore keeps the token in a Badger v3 database.
type BadgerStore struct {
	db *badger.DB
}

// OpenBadger opens (or creates) a Badger database in dir.
func OpenBadger(dir string, l logger.Logger) (*BadgerStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("badger: dir is required")
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("badger: create dir: %w", err)
	}
	return openBadger(badger.DefaultOptions(dir), l)
}

// OpenBadgerInMemory opens a Badger database that lives only in memory.
func OpenBadgerInMemory(l logger.Logger) (*BadgerStore, error) {
	return openBadger(badger.DefaultOptions("").WithInMemory(true), l)
}

func openBadger(opts badger.Options, l logger.Logger) (*BadgerStore, error) {
	if l == nil {
		l = logger.Default()
	}
	opts = opts.
		WithLogger(&badgerLogger{logger: l.With("component", "badger")}).
		WithSyncWrites(true).
		WithNumVersionsToKeep(1).
		WithValueLogFileSize(1 << 24)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("badger: open db: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

// Get reads the token.
func (s *BadgerStore) Get() (string, bool, error) {
	var value []byte

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(tokenKey)
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, domain.ErrCredentialUnreadable.WithCause(err)
	}

	token := string(value)
	return token, token != "", nil
}

// Set writes token, replacing any previous one.
func (s *BadgerStore) Set(token string) error {
	if err := session.ValidateToken(token); err != nil {
		return err
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(tokenKey, []byte(token))
	})
	if err != nil {
		return domain.ErrCredentialUnwritable.WithCause(err)
	}
	return nil
}

// Clear deletes the token key.
func (s *BadgerStore) Clear() error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(tokenKey)
	})
	if err != nil {
		return domain.ErrCredentialUnwritable.WithCause(err)
	}
	return nil
}

// Close closes the database.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}

// badgerLogger adapts logger.Logger to Badger's Logger interface.
// Badger chatters at info level, so info is demoted to debug.
type badgerLogger struct {
	logger logger.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}
