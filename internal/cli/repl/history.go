package repl

import (
	"bufio"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/yndnr/ecoply-go/internal/telemetry/logger"
)

// DefaultHistorySize is the number of lines kept.
const DefaultHistorySize = 1000

// DefaultHistoryPath is ~/.ecoply/history, or a relative path when the home
// directory is unknown.
func DefaultHistoryPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".ecoply", "history")
	}
	return filepath.Join(home, ".ecoply", "history")
}

// History is the REPL line history, persisted one line per entry.
// Lines that pass a secret on the command line are never recorded.
type History struct {
	path  string
	limit int
	lines []string
}

// HistoryOption configures a History.
type HistoryOption func(*History)

// WithHistoryLimit caps the number of kept lines.
func WithHistoryLimit(n int) HistoryOption {
	return func(h *History) {
		if n > 0 {
			h.limit = n
		}
	}
}

// NewHistory returns an empty history persisted at path.
func NewHistory(path string, opts ...HistoryOption) *History {
	h := &History{path: path, limit: DefaultHistorySize}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// File returns the persistence path.
func (h *History) File() string { return h.path }

// Len returns the number of kept lines.
func (h *History) Len() int { return len(h.lines) }

// Add records line and reports whether it was kept. Blank lines, repeats
// of the previous line and lines carrying a secret flag are dropped.
func (h *History) Add(line string) bool {
	line = strings.TrimSpace(line)
	if line == "" || carriesSecret(line) {
		return false
	}
	if n := len(h.lines); n > 0 && h.lines[n-1] == line {
		return false
	}
	h.lines = append(h.lines, line)
	if over := len(h.lines) - h.limit; over > 0 {
		h.lines = append(h.lines[:0:0], h.lines[over:]...)
	}
	return true
}

// Entries returns a copy of the lines, oldest first.
func (h *History) Entries() []string {
	return append([]string(nil), h.lines...)
}

// Load appends the persisted lines. A missing file is an empty history.
func (h *History) Load() error {
	f, err := os.Open(h.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		h.Add(sc.Text())
	}
	return sc.Err()
}

// Save replaces the file with the kept lines, readable by the owner only.
func (h *History) Save() error {
	dir := filepath.Dir(h.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".history-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	w := bufio.NewWriter(tmp)
	for _, line := range h.lines {
		w.WriteString(line)
		w.WriteByte('\n')
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), h.path)
}

// carriesSecret reports whether any flag in line names a sensitive value,
// such as --password or --confirm-password=x.
func carriesSecret(line string) bool {
	for _, field := range strings.Fields(line) {
		if !strings.HasPrefix(field, "-") {
			continue
		}
		name, _, _ := strings.Cut(strings.TrimLeft(field, "-"), "=")
		if logger.IsSensitiveKey(name) {
			return true
		}
	}
	return false
}
