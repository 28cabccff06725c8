// Package kv provides the small key-value service workspace state is
// persisted through. Every backend supports all-or-nothing batches so that
// related keys never disagree after a crash.
package kv

import (
	"context"
	"errors"
	"fmt"

	"github.com/conneroisu/uiforge/internal/config"
)

// ErrNotFound is returned by Get when the key has never been written or was
// deleted.
var ErrNotFound = errors.New("kv: key not found")

// Store is a string-keyed byte store.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	// Commit applies every operation in the batch or none of them.
	Commit(ctx context.Context, batch *Batch) error
	Close() error
}

// Op is a single write inside a Batch. A nil Value deletes the key.
type Op struct {
	Key   string
	Value []byte
}

// Batch collects writes for Commit. Later writes to the same key win.
type Batch struct {
	ops []Op
}

// NewBatch returns an empty batch.
func NewBatch() *Batch {
	return &Batch{}
}

// Set queues a write.
func (b *Batch) Set(key string, value []byte) *Batch {
	if value == nil {
		value = []byte{}
	}
	b.ops = append(b.ops, Op{Key: key, Value: value})

	return b
}

// Delete queues a removal.
func (b *Batch) Delete(key string) *Batch {
	b.ops = append(b.ops, Op{Key: key})

	return b
}

// Ops returns the queued operations in order.
func (b *Batch) Ops() []Op {
	return b.ops
}

// Len returns the number of queued operations.
func (b *Batch) Len() int {
	return len(b.ops)
}

// Open constructs the backend selected by cfg.Driver.
func Open(ctx context.Context, cfg config.StorageConfig) (Store, error) {
	switch cfg.Driver {
	case "", "memory":
		return NewMemoryStore(), nil
	case "file":
		return NewFileStore(cfg.Path)
	case "sqlite":
		return NewSQLiteStore(ctx, cfg.Path)
	case "redis":
		return NewRedisStore(ctx, RedisOptions{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	default:
		return nil, fmt.Errorf("kv: unknown driver %q", cfg.Driver)
	}
}
