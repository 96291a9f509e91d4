package repository

import (
	"context"
	"errors"

	"photojournal/internal/model"
)

// Package repository contains data access layer abstractions.
// Implementations live in subpackages (e.g., blob) inside this directory.

var (
	// ErrNotFound is returned by FindByID when no entry has the id.
	ErrNotFound = errors.New("entry not found")
	// ErrDuplicateID is returned by Insert when an entry with the same id is already stored.
	ErrDuplicateID = errors.New("duplicate entry id")
	// ErrCorrupt is returned by mutating operations when the stored collection cannot be decoded.
	ErrCorrupt = errors.New("entry collection unreadable")
)

// EntryRepository is the durable, ordered collection of journal entries.
// Entries are returned most-recently-inserted first. No business logic here.
type EntryRepository interface {
	// List returns every entry, newest first. An absent or unreadable collection yields an empty slice.
	List(ctx context.Context) ([]model.Entry, error)

	// FindByID returns the entry with the given id or ErrNotFound.
	FindByID(ctx context.Context, id string) (*model.Entry, error)

	// Insert places entry at the head of the collection.
	Insert(ctx context.Context, entry model.Entry) error

	// DeleteByID removes every entry with the id. A missing id is a no-op success.
	DeleteByID(ctx context.Context, id string) error

	// Clear removes the whole collection.
	Clear(ctx context.Context) error
}
