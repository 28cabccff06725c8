package kv

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileStore keeps the whole keyspace in one JSON document. Every write
// rewrites the document through a temp file and rename, so a batch is
// atomic with respect to crashes.
type FileStore struct {
	mu   sync.Mutex
	path string
	data map[string][]byte
}

// NewFileStore opens or creates the document at path.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, fmt.Errorf("kv: file store needs a path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("kv: create directory: %w", err)
	}

	fs := &FileStore{path: path, data: make(map[string][]byte)}

	raw, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		return fs, nil
	case err != nil:
		return nil, fmt.Errorf("kv: read %s: %w", path, err)
	}

	var stored map[string]string
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &stored); err != nil {
			return nil, fmt.Errorf("kv: decode %s: %w", path, err)
		}
	}
	for k, v := range stored {
		fs.data[k] = []byte(v)
	}

	return fs, nil
}

// Path returns the backing file.
func (f *FileStore) Path() string {
	return f.path
}

func (f *FileStore) Get(_ context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	v, ok := f.data[key]
	if !ok {
		return nil, ErrNotFound
	}

	return append([]byte(nil), v...), nil
}

func (f *FileStore) Set(ctx context.Context, key string, value []byte) error {
	return f.Commit(ctx, NewBatch().Set(key, value))
}

func (f *FileStore) Commit(_ context.Context, batch *Batch) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	next := make(map[string][]byte, len(f.data)+batch.Len())
	for k, v := range f.data {
		next[k] = v
	}
	applyOps(next, batch)

	if err := f.flush(next); err != nil {
		return err
	}

	f.data = next

	return nil
}

func (f *FileStore) flush(data map[string][]byte) error {
	// Values are stored as strings so that arbitrary bytes survive.
	doc := make(map[string]string, len(data))
	for k, v := range data {
		doc[k] = string(v)
	}
	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("kv: encode: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".kv-*.tmp")
	if err != nil {
		return fmt.Errorf("kv: create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("kv: write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("kv: close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("kv: replace %s: %w", f.path, err)
	}

	return nil
}

func (f *FileStore) Close() error {
	return nil
}
