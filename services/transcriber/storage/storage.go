package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
)

var ErrNotFound = errors.New("file not found")

// Storage owns the flat upload/artifact namespace. Every name it has written
// is tracked in a registry; retrieval resolves names only through that
// registry, never by joining raw client input onto the filesystem.
type Storage interface {
	SaveUpload(ctx context.Context, name string, r io.Reader) error
	SaveArtifact(ctx context.Context, name string, data []byte) error
	Resolve(name string) (string, error)
}

type storage struct {
	root  string
	mu    sync.RWMutex
	known map[string]bool
}

// New creates the upload root if needed and seeds the registry from the
// files already there, so artifacts from before a restart stay retrievable.
func New(root string) (Storage, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create upload root: %w", err)
	}

	known := make(map[string]bool)
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("scan upload root: %w", err)
	}
	for _, e := range entries {
		if !e.IsDir() {
			known[e.Name()] = true
		}
	}

	return &storage{root: root, known: known}, nil
}

func (s *storage) SaveUpload(ctx context.Context, name string, r io.Reader) error {
	f, err := os.Create(filepath.Join(s.root, name))
	if err != nil {
		return fmt.Errorf("create upload file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		return fmt.Errorf("write upload file: %w", err)
	}

	s.register(name)
	return nil
}

func (s *storage) SaveArtifact(ctx context.Context, name string, data []byte) error {
	if err := os.WriteFile(filepath.Join(s.root, name), data, 0o644); err != nil {
		return fmt.Errorf("write artifact %s: %w", name, err)
	}

	s.register(name)
	return nil
}

func (s *storage) Resolve(name string) (string, error) {
	s.mu.RLock()
	ok := s.known[name]
	s.mu.RUnlock()
	if !ok {
		return "", ErrNotFound
	}

	path := filepath.Join(s.root, name)
	if _, err := os.Stat(path); err != nil {
		return "", ErrNotFound
	}
	return path, nil
}

func (s *storage) register(name string) {
	s.mu.Lock()
	s.known[name] = true
	s.mu.Unlock()
}
