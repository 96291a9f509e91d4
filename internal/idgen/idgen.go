// Package idgen produces journal entry identifiers from a cryptographically
// secure random source.
package idgen

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
)

// IDBytes is the number of random bytes behind every identifier (128 bits).
const IDBytes = 16

// ErrRandomnessUnavailable is returned when the secure random source cannot
// supply bytes. Callers must abort; there is no weaker fallback.
var ErrRandomnessUnavailable = errors.New("secure randomness unavailable")

// RandomSource supplies n random bytes.
type RandomSource interface {
	RandomBytes(ctx context.Context, n int) ([]byte, error)
}

// ReaderSource adapts an io.Reader (crypto/rand.Reader by default) to RandomSource.
type ReaderSource struct {
	Reader io.Reader
}

// RandomBytes reads exactly n bytes from the underlying reader.
func (s ReaderSource) RandomBytes(ctx context.Context, n int) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r := s.Reader
	if r == nil {
		r = rand.Reader
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// Generator turns random bytes into lowercase hexadecimal identifiers.
type Generator struct {
	source RandomSource
}

// New returns a Generator backed by source. A nil source uses crypto/rand.
func New(source RandomSource) *Generator {
	if source == nil {
		source = ReaderSource{Reader: rand.Reader}
	}
	return &Generator{source: source}
}

// Generate returns a 32 character lowercase hex identifier.
func (g *Generator) Generate(ctx context.Context) (string, error) {
	b, err := g.source.RandomBytes(ctx, IDBytes)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrRandomnessUnavailable, err)
	}
	if len(b) < IDBytes {
		return "", fmt.Errorf("%w: short read of %d bytes", ErrRandomnessUnavailable, len(b))
	}
	return hex.EncodeToString(b[:IDBytes]), nil
}
