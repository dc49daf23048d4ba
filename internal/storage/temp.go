package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// TempScope owns the on-disk scratch files of a single request. Every scope
// gets its own uniquely named directory, file names are generated, and
// Release removes the whole directory. Callers defer Release right after
// NewTempScope succeeds.
type TempScope struct {
	mu       sync.Mutex
	dir      string
	released bool
}

// NewTempScope creates a fresh scratch directory under root (os.TempDir when
// root is empty).
func NewTempScope(root string) (*TempScope, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		root = os.TempDir()
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("storage: ensure temp root: %w", err)
	}
	dir, err := os.MkdirTemp(root, "mockup-"+uuid.NewString()+"-")
	if err != nil {
		return nil, fmt.Errorf("storage: create temp scope: %w", err)
	}
	return &TempScope{dir: dir}, nil
}

// Dir returns the scope's directory.
func (s *TempScope) Dir() string {
	return s.dir
}

// WriteFile stores data under a generated name with the given extension and
// returns the full path.
func (s *TempScope) WriteFile(data []byte, ext string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.released {
		return "", errors.New("storage: temp scope already released")
	}
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	name := filepath.Join(s.dir, uuid.NewString()+ext)
	if err := os.WriteFile(name, data, 0o600); err != nil {
		return "", fmt.Errorf("storage: write temp file: %w", err)
	}
	return name, nil
}

// Release removes the scope directory and everything in it. It is safe to
// call more than once.
func (s *TempScope) Release() error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.released {
		return nil
	}
	s.released = true
	if err := os.RemoveAll(s.dir); err != nil {
		return fmt.Errorf("storage: release temp scope: %w", err)
	}
	return nil
}
