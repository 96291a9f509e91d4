// Package blob implements repository.EntryRepository as one JSON array kept
// under a single key of a kvstore.Store. Every operation is a full
// read-modify-write of that array; the newest entry sits at index 0.
package blob

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"photojournal/internal/kvstore"
	"photojournal/internal/model"
	"photojournal/internal/repository"
)

// EntriesKey is the well-known key holding the serialized journal.
const EntriesKey = "JOURNAL_ENTRIES"

// EntryBlob is safe for concurrent use: mutations are serialized by a mutex so
// that two overlapping read-modify-write cycles cannot lose an update.
type EntryBlob struct {
	kv     kvstore.Store
	key    string
	logger *slog.Logger

	mu sync.Mutex
}

var _ repository.EntryRepository = (*EntryBlob)(nil)

// NewEntryBlob creates a repository over kv using EntriesKey.
func NewEntryBlob(kv kvstore.Store, logger *slog.Logger) *EntryBlob {
	if logger == nil {
		logger = slog.Default()
	}
	return &EntryBlob{
		kv:     kv,
		key:    EntriesKey,
		logger: logger.With("component", "entry_store"),
	}
}

// load reads and decodes the collection. An absent key is an empty collection.
func (r *EntryBlob) load(ctx context.Context) ([]model.Entry, error) {
	raw, err := r.kv.Get(ctx, r.key)
	if err != nil {
		if errors.Is(err, kvstore.ErrNotFound) {
			return []model.Entry{}, nil
		}
		return nil, err
	}
	var entries []model.Entry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("%w: %v", repository.ErrCorrupt, err)
	}
	if entries == nil {
		entries = []model.Entry{}
	}
	return entries, nil
}

func (r *EntryBlob) save(ctx context.Context, entries []model.Entry) error {
	raw, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("encode entries: %w", err)
	}
	if err := r.kv.Set(ctx, r.key, raw); err != nil {
		return fmt.Errorf("write entries: %w", err)
	}
	return nil
}

// List never fails: a read or decode problem is logged and reported as an empty journal.
func (r *EntryBlob) List(ctx context.Context) ([]model.Entry, error) {
	entries, err := r.load(ctx)
	if err != nil {
		r.logger.ErrorContext(ctx, "failed to load entries", "key", r.key, "error", err)
		return []model.Entry{}, nil
	}
	return entries, nil
}

// FindByID scans the collection for id.
func (r *EntryBlob) FindByID(ctx context.Context, id string) (*model.Entry, error) {
	entries, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range entries {
		if entries[i].ID == id {
			e := entries[i]
			return &e, nil
		}
	}
	return nil, repository.ErrNotFound
}

// Insert prepends entry. It refuses an id that is already stored and never
// overwrites a collection it could not read.
func (r *EntryBlob) Insert(ctx context.Context, entry model.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, err := r.load(ctx)
	if err != nil {
		r.logger.ErrorContext(ctx, "failed to save entry", "entry_id", entry.ID, "error", err)
		return fmt.Errorf("read entries: %w", err)
	}
	for _, e := range current {
		if e.ID == entry.ID {
			return fmt.Errorf("%w: %s", repository.ErrDuplicateID, entry.ID)
		}
	}

	next := make([]model.Entry, 0, len(current)+1)
	next = append(next, entry)
	next = append(next, current...)
	if err := r.save(ctx, next); err != nil {
		r.logger.ErrorContext(ctx, "failed to save entry", "entry_id", entry.ID, "error", err)
		return err
	}
	return nil
}

// DeleteByID filters out every entry with id and writes the rest back in order.
func (r *EntryBlob) DeleteByID(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, err := r.load(ctx)
	if err != nil {
		r.logger.ErrorContext(ctx, "failed to delete entry", "entry_id", id, "error", err)
		return fmt.Errorf("read entries: %w", err)
	}

	kept := make([]model.Entry, 0, len(current))
	for _, e := range current {
		if e.ID != id {
			kept = append(kept, e)
		}
	}
	if err := r.save(ctx, kept); err != nil {
		r.logger.ErrorContext(ctx, "failed to delete entry", "entry_id", id, "error", err)
		return err
	}
	return nil
}

// Clear removes the backing key. Clearing an empty journal succeeds.
func (r *EntryBlob) Clear(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.kv.Remove(ctx, r.key); err != nil {
		r.logger.ErrorContext(ctx, "failed to clear entries", "error", err)
		return fmt.Errorf("remove entries: %w", err)
	}
	return nil
}
