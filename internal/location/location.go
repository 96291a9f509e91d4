// Package location turns a device position into a human-readable address.
//
// The Resolver only performs the mechanics (permission, one position read,
// reverse geocoding, formatting). Falling back to a placeholder on failure is
// the caller's decision.
package location

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"photojournal/internal/model"
)

var (
	ErrPermissionDenied = errors.New("location permission denied")
	ErrNoPosition       = errors.New("position unavailable")
)

// Accuracy is the accuracy/power tradeoff requested from a PositionProvider.
type Accuracy int

const (
	AccuracyLowest Accuracy = iota
	AccuracyLow
	AccuracyBalanced
	AccuracyHigh
	AccuracyHighest
)

func (a Accuracy) String() string {
	switch a {
	case AccuracyLowest:
		return "lowest"
	case AccuracyLow:
		return "low"
	case AccuracyBalanced:
		return "balanced"
	case AccuracyHigh:
		return "high"
	case AccuracyHighest:
		return "highest"
	}
	return fmt.Sprintf("accuracy(%d)", int(a))
}

// PositionProvider supplies a single position fix.
type PositionProvider interface {
	RequestPermission(ctx context.Context) (bool, error)
	CurrentPosition(ctx context.Context, accuracy Accuracy) (model.Coordinates, error)
}

// Geocoder maps coordinates to zero or more civic addresses.
type Geocoder interface {
	ReverseGeocode(ctx context.Context, c model.Coordinates) ([]model.Address, error)
}

// Resolver resolves the current position of a provider to display text.
type Resolver struct {
	geocoder Geocoder
	timeout  time.Duration
}

// NewResolver returns a Resolver. A zero timeout leaves the caller's deadline in charge.
func NewResolver(geocoder Geocoder, timeout time.Duration) *Resolver {
	return &Resolver{geocoder: geocoder, timeout: timeout}
}

// Resolve asks for permission, reads one balanced-accuracy fix and reverse
// geocodes it. Every failure is returned to the caller.
func (r *Resolver) Resolve(ctx context.Context, provider PositionProvider) (string, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	granted, err := provider.RequestPermission(ctx)
	if err != nil {
		return "", fmt.Errorf("request permission: %w", err)
	}
	if !granted {
		return "", ErrPermissionDenied
	}

	pos, err := provider.CurrentPosition(ctx, AccuracyBalanced)
	if err != nil {
		return "", fmt.Errorf("current position: %w", err)
	}

	addrs, err := r.geocoder.ReverseGeocode(ctx, pos)
	if err != nil {
		return "", fmt.Errorf("reverse geocode: %w", err)
	}

	var first model.Address
	if len(addrs) > 0 {
		first = addrs[0]
	}
	return FormatAddress(first, pos), nil
}

// FormatAddress joins the non-empty address components with ", ". With no
// components it falls back to the coordinates at four decimal places.
func FormatAddress(a model.Address, c model.Coordinates) string {
	parts := make([]string, 0, 5)
	for _, p := range []string{a.Name, a.Street, a.City, a.Region, a.Country} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return fmt.Sprintf("Lat: %.4f, Long: %.4f", c.Latitude, c.Longitude)
	}
	return strings.Join(parts, ", ")
}
