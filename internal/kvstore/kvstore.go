// Package kvstore is the key-value blob primitive under the journal: get, set
// and remove of whole values, each call atomic at the backend boundary.
//
// Backends: Postgres and SQLite (kv_blobs table), Redis, S3-compatible object
// storage and process memory. Select one with New.
package kvstore

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when the key is absent.
var ErrNotFound = errors.New("key not found")

// Store is a key-value blob store. Remove of an absent key succeeds.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
	Ping(ctx context.Context) error
}

// prefixed namespaces every key of an underlying Store.
type prefixed struct {
	prefix string
	next   Store
}

// WithPrefix returns a Store that prepends prefix to every key.
// An empty prefix returns next unchanged.
func WithPrefix(prefix string, next Store) Store {
	if prefix == "" {
		return next
	}
	return &prefixed{prefix: prefix, next: next}
}

func (p *prefixed) Get(ctx context.Context, key string) ([]byte, error) {
	return p.next.Get(ctx, p.prefix+key)
}

func (p *prefixed) Set(ctx context.Context, key string, value []byte) error {
	return p.next.Set(ctx, p.prefix+key, value)
}

func (p *prefixed) Remove(ctx context.Context, key string) error {
	return p.next.Remove(ctx, p.prefix+key)
}

func (p *prefixed) Ping(ctx context.Context) error {
	return p.next.Ping(ctx)
}
