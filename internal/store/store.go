// Package store provides flat JSON document persistence for sessions
// and the artist genre cache. Each store is a single JSON object on
// disk, updated whole-document under a per-store lock with an atomic
// file replace, so concurrent writers to the same store serialize
// instead of losing updates.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// File persists one JSON document of type T keyed by string.
type File[T any] struct {
	path string
	mu   sync.Mutex
}

// NewFile creates a store backed by the given file path. The file is
// created lazily on first write; a missing file reads as an empty
// document.
func NewFile[T any](path string) *File[T] {
	return &File[T]{path: path}
}

// Path returns the backing file path.
func (f *File[T]) Path() string {
	return f.path
}

// Load decodes the whole document.
func (f *File[T]) Load() (map[string]T, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.read()
}

// Update runs fn against the decoded document and writes the result
// back. The read-mutate-write cycle holds the store lock, and the
// write lands via a temp file rename, so a crashed writer leaves the
// previous document intact.
func (f *File[T]) Update(fn func(doc map[string]T) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.read()
	if err != nil {
		return err
	}

	if err := fn(doc); err != nil {
		return err
	}

	return f.write(doc)
}

func (f *File[T]) read() (map[string]T, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return make(map[string]T), nil
		}
		return nil, fmt.Errorf("reading store %s: %w", f.path, err)
	}

	doc := make(map[string]T)
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing store %s: %w", f.path, err)
	}
	return doc, nil
}

func (f *File[T]) write(doc map[string]T) error {
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding store: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(f.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("writing store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0600); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("setting store permissions: %w", err)
	}

	if err := os.Rename(tmpPath, f.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replacing store: %w", err)
	}
	return nil
}
