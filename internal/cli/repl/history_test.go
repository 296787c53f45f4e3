package repl

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestHistory_Add(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{"keeps order", []string{"offers list", "whoami"}, []string{"offers list", "whoami"}},
		{"trims and drops blanks", []string{"  status ", "", "   "}, []string{"status"}},
		{"collapses repeats", []string{"whoami", "whoami", "status", "whoami"}, []string{"whoami", "status", "whoami"}},
		{"drops password flag", []string{"login --email a@x.io --password hunter2"}, nil},
		{"drops flag with value", []string{"signup --confirm-password=hunter2"}, nil},
		{"drops passphrase", []string{"config init --credential-passphrase x"}, nil},
		{"keeps secret-looking args", []string{"goto /offers token=1"}, []string{"goto /offers token=1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHistory(filepath.Join(t.TempDir(), "history"))
			for _, line := range tt.in {
				h.Add(line)
			}
			if got := h.Entries(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Entries() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestHistory_Limit(t *testing.T) {
	h := NewHistory("unused", WithHistoryLimit(2))
	for _, line := range []string{"a", "b", "c"} {
		h.Add(line)
	}
	if got := h.Entries(); !reflect.DeepEqual(got, []string{"b", "c"}) {
		t.Errorf("Entries() = %q", got)
	}

	if h := NewHistory("unused", WithHistoryLimit(0)); h.limit != DefaultHistorySize {
		t.Errorf("limit = %d, want default", h.limit)
	}
}

func TestHistory_EntriesIsCopy(t *testing.T) {
	h := NewHistory("unused")
	h.Add("status")
	h.Entries()[0] = "changed"
	if h.Entries()[0] != "status" {
		t.Error("Entries() exposed internal state")
	}
}

func TestHistory_SaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "history")

	h := NewHistory(path)
	h.Add("offers list")
	h.Add("purchases sales --status waiting")
	if err := h.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("mode = %o, want 600", perm)
	}

	loaded := NewHistory(path)
	if err := loaded.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !reflect.DeepEqual(loaded.Entries(), h.Entries()) {
		t.Errorf("loaded %q, want %q", loaded.Entries(), h.Entries())
	}

	leftovers, _ := filepath.Glob(filepath.Join(filepath.Dir(path), ".history-*"))
	if len(leftovers) != 0 {
		t.Errorf("temporary files left behind: %v", leftovers)
	}
}

func TestHistory_LoadFiltersFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history")
	content := strings.Join([]string{"whoami", "", "login --password x", "whoami", "status"}, "\n")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	h := NewHistory(path, WithHistoryLimit(10))
	if err := h.Load(); err != nil {
		t.Fatal(err)
	}
	if got := h.Entries(); !reflect.DeepEqual(got, []string{"whoami", "status"}) {
		t.Errorf("Entries() = %q", got)
	}
}

func TestHistory_LoadMissing(t *testing.T) {
	h := NewHistory(filepath.Join(t.TempDir(), "absent"))
	if err := h.Load(); err != nil {
		t.Errorf("Load() error = %v", err)
	}
	if h.Len() != 0 {
		t.Errorf("Len() = %d", h.Len())
	}
}

func TestDefaultHistoryPath(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	if got := DefaultHistoryPath(); !strings.HasSuffix(got, filepath.Join(".ecoply", "history")) {
		t.Errorf("DefaultHistoryPath() = %q", got)
	}
}
