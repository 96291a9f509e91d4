// Package notify delivers the best-effort confirmation sent after an entry is saved.
//
// Delivery never fails the caller: every problem is logged and reported as
// delivered=false.
package notify

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"photojournal/internal/logging"
)

const (
	DefaultChannelID   = "default"
	DefaultChannelName = "Default Channel"
)

var ErrPermissionDenied = errors.New("notification permission denied")

// Importance of a delivery channel.
type Importance int

const (
	ImportanceDefault Importance = iota
	ImportanceHigh
)

// ChannelConfig describes a delivery channel on platforms that require one.
type ChannelConfig struct {
	ID               string     `json:"id"`
	Name             string     `json:"name"`
	Importance       Importance `json:"importance"`
	VibrationPattern []int      `json:"vibration_pattern,omitempty"`
}

// DefaultChannel is the channel every confirmation is posted to.
func DefaultChannel() ChannelConfig {
	return ChannelConfig{
		ID:               DefaultChannelID,
		Name:             DefaultChannelName,
		Importance:       ImportanceHigh,
		VibrationPattern: []int{0, 250, 250, 250},
	}
}

// Notification is scheduled for immediate delivery.
type Notification struct {
	Title     string `json:"title"`
	Body      string `json:"body"`
	ChannelID string `json:"channel_id,omitempty"`
}

// Service is the platform notification capability.
type Service interface {
	Permission(ctx context.Context) (bool, error)
	RequestPermission(ctx context.Context) (bool, error)
	RequiresChannel() bool
	EnsureChannel(ctx context.Context, ch ChannelConfig) error
	Schedule(ctx context.Context, n Notification) error
}

// Dispatcher sends notifications through a Service.
type Dispatcher struct {
	svc     Service
	timeout time.Duration
	logger  *slog.Logger
	wg      sync.WaitGroup
}

// NewDispatcher returns a Dispatcher. timeout bounds each detached dispatch.
func NewDispatcher(svc Service, timeout time.Duration, logger *slog.Logger) *Dispatcher {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Dispatcher{svc: svc, timeout: timeout, logger: logging.Component(logger, "notify")}
}

// Notify delivers one notification and reports whether it was scheduled.
func (d *Dispatcher) Notify(ctx context.Context, title, body string) bool {
	if err := d.deliver(ctx, title, body); err != nil {
		d.logger.WarnContext(ctx, "notification not delivered", "title", title, "error", err.Error())
		return false
	}
	return true
}

func (d *Dispatcher) deliver(ctx context.Context, title, body string) error {
	granted, err := d.svc.Permission(ctx)
	if err != nil {
		return err
	}
	if !granted {
		granted, err = d.svc.RequestPermission(ctx)
		if err != nil {
			return err
		}
		if !granted {
			return ErrPermissionDenied
		}
	}

	n := Notification{Title: title, Body: body}
	if d.svc.RequiresChannel() {
		ch := DefaultChannel()
		if err := d.svc.EnsureChannel(ctx, ch); err != nil {
			return err
		}
		n.ChannelID = ch.ID
	}
	return d.svc.Schedule(ctx, n)
}

// Dispatch runs Notify on its own goroutine, detached from the cancellation of
// ctx, and returns a channel that receives the result once. Callers may drop it.
func (d *Dispatcher) Dispatch(ctx context.Context, title, body string) <-chan bool {
	out := make(chan bool, 1)
	dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.timeout)

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer cancel()
		out <- d.Notify(dctx, title, body)
		close(out)
	}()
	return out
}

// Wait blocks until every dispatch started so far has finished, or ctx ends.
func (d *Dispatcher) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
