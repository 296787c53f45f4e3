package storage

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/yndnr/ecoply-go/internal/core/domain"
)

func TestFileStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "token")
	s := NewFileStore(path)

	if _, ok, err := s.Get(); err != nil || ok {
		t.Fatalf("Get() on empty store = ok %v, err %v", ok, err)
	}

	if err := s.Set("tok-1"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	got, ok, err := s.Get()
	if err != nil || !ok || got != "tok-1" {
		t.Fatalf("Get() = %q, %v, %v; want tok-1", got, ok, err)
	}

	if runtime.GOOS != "windows" {
		info, err := os.Stat(path)
		if err != nil {
			t.Fatalf("Stat() error = %v", err)
		}
		if perm := info.Mode().Perm(); perm != 0600 {
			t.Errorf("file mode = %o, want 0600", perm)
		}
	}

	if err := s.Set("tok-2"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if got, _, _ := s.Get(); got != "tok-2" {
		t.Errorf("Get() after overwrite = %q, want tok-2", got)
	}

	if err := s.Clear(); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if _, ok, _ := s.Get(); ok {
		t.Error("Get() after Clear() reports a token")
	}
	if err := s.Clear(); err != nil {
		t.Errorf("second Clear() error = %v", err)
	}
}

func TestFileStore_EmptyToken(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "token"))
	for _, token := range []string{"", "   ", "\t\n", "T1\n"} {
		if err := s.Set(token); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Errorf("Set(%q) error = %v, want ErrInvalidArgument", token, err)
		}
	}
	if _, err := os.Stat(s.Path()); !os.IsNotExist(err) {
		t.Errorf("rejected token must not create the file: %v", err)
	}
}

func TestFileStore_KeepsTokenExactly(t *testing.T) {
	tests := []struct {
		name   string
		sealed bool
	}{
		{"plain", false},
		{"sealed", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var opts []FileOption
			if tt.sealed {
				sealer, err := NewSealer([]byte("correct horse"))
				if err != nil {
					t.Fatal(err)
				}
				opts = append(opts, WithSealer(sealer))
			}
			s := NewFileStore(filepath.Join(t.TempDir(), "token"), opts...)
			if err := s.Set(" T1 "); err != nil {
				t.Fatalf("Set() error = %v", err)
			}
			if got, ok, err := s.Get(); err != nil || !ok || got != " T1 " {
				t.Errorf("Get() = %q, %v, %v; want \" T1 \"", got, ok, err)
			}
		})
	}
}

func TestFileStore_WhitespaceReadsAsAbsent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	if err := os.WriteFile(path, []byte(" \n"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, ok, err := NewFileStore(path).Get(); err != nil || ok {
		t.Errorf("Get() = ok %v, err %v; want absent", ok, err)
	}
}

func TestFileStore_TrimsNewline(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	if err := os.WriteFile(path, []byte("tok-x\n"), 0600); err != nil {
		t.Fatal(err)
	}
	if got, ok, _ := NewFileStore(path).Get(); !ok || got != "tok-x" {
		t.Errorf("Get() = %q, %v; want tok-x", got, ok)
	}
}

func TestFileStore_Unreadable(t *testing.T) {
	// A directory at the token path cannot be read as a file.
	path := t.TempDir()
	_, _, err := NewFileStore(path).Get()
	if !errors.Is(err, domain.ErrCredentialUnreadable) {
		t.Errorf("Get() error = %v, want ErrCredentialUnreadable", err)
	}
}

func TestFileStore_Sealed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	sealer, err := NewSealer([]byte("correct horse"))
	if err != nil {
		t.Fatal(err)
	}

	s := NewFileStore(path, WithSealer(sealer))
	if err := s.Set("tok-secret"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !IsSealed(raw) {
		t.Error("file content is not sealed")
	}

	got, ok, err := s.Get()
	if err != nil || !ok || got != "tok-secret" {
		t.Errorf("Get() = %q, %v, %v; want tok-secret", got, ok, err)
	}

	wrong, _ := NewSealer([]byte("battery staple"))
	if _, _, err := NewFileStore(path, WithSealer(wrong)).Get(); !errors.Is(err, domain.ErrCredentialSealed) {
		t.Errorf("Get() with wrong passphrase error = %v, want ErrCredentialSealed", err)
	}
}

func TestFileStore_SealedRejectsPlaintext(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	if err := os.WriteFile(path, []byte("tok-plain"), 0600); err != nil {
		t.Fatal(err)
	}
	sealer, _ := NewSealer([]byte("correct horse"))
	if _, _, err := NewFileStore(path, WithSealer(sealer)).Get(); !errors.Is(err, domain.ErrCredentialSealed) {
		t.Errorf("Get() error = %v, want ErrCredentialSealed", err)
	}
}
