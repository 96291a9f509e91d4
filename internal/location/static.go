package location

import (
	"context"

	"photojournal/internal/model"
)

// StaticProvider reports a position supplied by the client of a request.
// A nil Position means the client sent no fix.
type StaticProvider struct {
	Granted  bool
	Position *model.Coordinates
}

func (p StaticProvider) RequestPermission(ctx context.Context) (bool, error) {
	return p.Granted, ctx.Err()
}

func (p StaticProvider) CurrentPosition(ctx context.Context, _ Accuracy) (model.Coordinates, error) {
	if err := ctx.Err(); err != nil {
		return model.Coordinates{}, err
	}
	if p.Position == nil {
		return model.Coordinates{}, ErrNoPosition
	}
	return *p.Position, nil
}
