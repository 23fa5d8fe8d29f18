package session

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
)

// Slot durably holds the current session token.
type Slot interface {
	// Load returns the stored token, or nothing when the slot is empty.
	Load() ([]byte, error)
	Store(token []byte) error
	Clear() error
}

// FileSlot keeps the token in a file only readable by its owner.
type FileSlot struct {
	path string
}

func NewFileSlot(path string) *FileSlot {
	return &FileSlot{path: path}
}

func (s *FileSlot) Load() ([]byte, error) {
	token, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	return token, errors.Wrap(err, "reading session file")
}

// Store writes the token atomically: readers see either the previous token or the new one.
func (s *FileSlot) Store(token []byte) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return errors.Wrap(err, "creating session directory")
	}
	tmp, err := os.CreateTemp(dir, ".session-*")
	if err != nil {
		return errors.Wrap(err, "creating session file")
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err = tmp.Write(token); err != nil {
		_ = tmp.Close()
		return errors.Wrap(err, "writing session file")
	}
	if err = tmp.Close(); err != nil {
		return errors.Wrap(err, "writing session file")
	}
	// CreateTemp already creates the file with mode 0600
	return errors.Wrap(os.Rename(tmp.Name(), s.path), "saving session file")
}

func (s *FileSlot) Clear() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "removing session file")
	}
	return nil
}

// MemorySlot keeps the token in memory, for tests and embedded use.
type MemorySlot struct {
	mu    sync.Mutex
	token []byte
}

func (s *MemorySlot) Load() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]byte(nil), s.token...), nil
}

func (s *MemorySlot) Store(token []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = append([]byte(nil), token...)
	return nil
}

func (s *MemorySlot) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = nil
	return nil
}
