package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"photojournal/internal/logging"
	"photojournal/internal/model"
	"photojournal/internal/repository"
	"photojournal/internal/storage"
)

var (
	ErrIDRequired = errors.New("id is required")
	ErrNotFound   = errors.New("entry not found")

	ErrDirectLinkUnavailable = errors.New("direct photo link unavailable")
)

// EntryListResult is the service-level DTO for the journal listing.
type EntryListResult struct {
	Items []model.Entry `json:"data"`
	Total int           `json:"total"`
}

// EntryService defines the read and delete use cases of the journal.
type EntryService interface {
	// List returns every entry, newest first.
	List(ctx context.Context) (*EntryListResult, error)

	// Get returns a single entry by its ID.
	Get(ctx context.Context, id string) (*model.Entry, error)

	// OpenImage streams the photo of an entry.
	OpenImage(ctx context.Context, id string) (io.ReadCloser, storage.ObjectInfo, error)

	// ImageURL returns a direct download link for the photo of an entry, valid for ttl.
	// ErrDirectLinkUnavailable means the photo store cannot issue one.
	ImageURL(ctx context.Context, id string, ttl time.Duration) (string, error)

	// Delete removes an entry, then its photo. A missing entry is not an error.
	Delete(ctx context.Context, id string) error

	// Clear removes every entry, then their photos.
	Clear(ctx context.Context) error
}

type entryService struct {
	repo   repository.EntryRepository
	photos storage.Storage
	logger *slog.Logger
}

// NewEntryService constructs a new EntryService. photos may be nil when the
// entries' images are not managed by this service.
func NewEntryService(repo repository.EntryRepository, photos storage.Storage, logger *slog.Logger) EntryService {
	return &entryService{repo: repo, photos: photos, logger: logging.Component(logger, "entry_service")}
}

func (s *entryService) List(ctx context.Context) (*EntryListResult, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []model.Entry{}
	}
	return &EntryListResult{Items: items, Total: len(items)}, nil
}

func (s *entryService) Get(ctx context.Context, id string) (*model.Entry, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	e, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (s *entryService) OpenImage(ctx context.Context, id string) (io.ReadCloser, storage.ObjectInfo, error) {
	e, err := s.Get(ctx, id)
	if err != nil {
		return nil, storage.ObjectInfo{}, err
	}
	if s.photos == nil {
		return nil, storage.ObjectInfo{}, ErrNotFound
	}
	rc, info, err := s.photos.Get(ctx, e.Image)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, storage.ObjectInfo{}, ErrNotFound
		}
		return nil, storage.ObjectInfo{}, fmt.Errorf("open photo: %w", err)
	}
	return rc, info, nil
}

func (s *entryService) ImageURL(ctx context.Context, id string, ttl time.Duration) (string, error) {
	e, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	if s.photos == nil {
		return "", ErrNotFound
	}
	u, err := s.photos.PresignGet(ctx, e.Image, ttl)
	if err != nil {
		if errors.Is(err, storage.ErrPresignUnsupported) {
			return "", ErrDirectLinkUnavailable
		}
		return "", fmt.Errorf("presign photo: %w", err)
	}
	return u, nil
}

// Delete removes the record first so that a failed photo removal never leaves
// an entry pointing at a missing image.
func (s *entryService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrIDRequired
	}
	e, err := s.repo.FindByID(ctx, id)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	if err := s.repo.DeleteByID(ctx, id); err != nil {
		return err
	}
	if e != nil {
		s.removePhoto(ctx, e.Image)
	}
	return nil
}

func (s *entryService) Clear(ctx context.Context) error {
	items, err := s.repo.List(ctx)
	if err != nil {
		return err
	}
	if err := s.repo.Clear(ctx); err != nil {
		return err
	}
	for _, e := range items {
		s.removePhoto(ctx, e.Image)
	}
	return nil
}

func (s *entryService) removePhoto(ctx context.Context, key string) {
	if s.photos == nil || key == "" {
		return
	}
	if err := s.photos.Delete(ctx, key); err != nil {
		s.logger.WarnContext(ctx, "photo cleanup failed", "image", key, "error", err.Error())
	}
}
