package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"photojournal/internal/kvstore"
	"photojournal/internal/model"
)

// DarkModeKey is the key-value key holding the theme preference.
const DarkModeKey = "darkMode"

// PreferencesService stores presentation settings next to the journal.
type PreferencesService interface {
	// Get returns the stored preferences. Absent or unreadable values read as defaults.
	Get(ctx context.Context) (model.Preferences, error)
	SetDarkMode(ctx context.Context, on bool) (model.Preferences, error)
	ToggleDarkMode(ctx context.Context) (model.Preferences, error)
}

type preferencesService struct {
	kv kvstore.Store
	mu sync.Mutex
}

func NewPreferencesService(kv kvstore.Store) PreferencesService {
	return &preferencesService{kv: kv}
}

func (s *preferencesService) Get(ctx context.Context) (model.Preferences, error) {
	return model.Preferences{DarkMode: s.darkMode(ctx)}, nil
}

func (s *preferencesService) SetDarkMode(ctx context.Context, on bool) (model.Preferences, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(ctx, on)
}

func (s *preferencesService) ToggleDarkMode(ctx context.Context) (model.Preferences, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(ctx, !s.darkMode(ctx))
}

func (s *preferencesService) darkMode(ctx context.Context) bool {
	raw, err := s.kv.Get(ctx, DarkModeKey)
	if err != nil {
		return false
	}
	var on bool
	if err := json.Unmarshal(raw, &on); err != nil {
		return false
	}
	return on
}

func (s *preferencesService) write(ctx context.Context, on bool) (model.Preferences, error) {
	raw, err := json.Marshal(on)
	if err != nil {
		return model.Preferences{}, err
	}
	if err := s.kv.Set(ctx, DarkModeKey, raw); err != nil {
		return model.Preferences{}, fmt.Errorf("%w: %w", ErrPersistenceFailed, err)
	}
	return model.Preferences{DarkMode: on}, nil
}

