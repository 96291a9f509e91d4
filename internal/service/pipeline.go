package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"photojournal/internal/capture"
	"photojournal/internal/location"
	"photojournal/internal/logging"
	"photojournal/internal/model"
	"photojournal/internal/repository"
	"photojournal/internal/storage"
)

// Stage of the capture state machine.
type Stage string

const (
	StageIdle              Stage = "idle"
	StageCapturing         Stage = "capturing"
	StageResolvingLocation Stage = "resolving_location"
	StageSaving            Stage = "saving"
	StageDone              Stage = "done"
	StageFailed            Stage = "failed"
)

const (
	NotificationTitle = "New Journal Entry"
	notificationPeek  = 30
)

// CaptureRequest carries the devices of a single capture run.
type CaptureRequest struct {
	Camera   capture.Device
	Position location.PositionProvider
}

// CaptureState is a snapshot of the pipeline.
type CaptureState struct {
	Stage           Stage  `json:"stage"`
	Pending         bool   `json:"pending"`
	PendingImage    string `json:"pending_image,omitempty"`
	PendingLocation string `json:"pending_location,omitempty"`
}

// IDGenerator produces entry identifiers.
type IDGenerator interface {
	Generate(ctx context.Context) (string, error)
}

// LocationResolver resolves the position of a provider to display text.
type LocationResolver interface {
	Resolve(ctx context.Context, provider location.PositionProvider) (string, error)
}

// Notifier sends a detached notification and reports the result on the channel.
type Notifier interface {
	Dispatch(ctx context.Context, title, body string) <-chan bool
}

// CaptureService turns a captured photo into a persisted journal entry.
type CaptureService interface {
	// Capture runs a full capture. Overlapping runs are rejected with ErrPipelineBusy.
	Capture(ctx context.Context, req CaptureRequest) (*model.Entry, error)
	// RetrySave repeats the save of the last run that failed with ErrPersistenceFailed,
	// reusing its photo and location.
	RetrySave(ctx context.Context) (*model.Entry, error)
	State() CaptureState
	// Wait blocks until detached notifications have completed or ctx ends.
	Wait(ctx context.Context) error
}

// PipelineDeps wires a CaptureService. Photos, Metrics and Clock are optional.
type PipelineDeps struct {
	IDs      IDGenerator
	Resolver LocationResolver
	Entries  repository.EntryRepository
	Notifier Notifier
	Photos   storage.Storage
	Metrics  *PipelineMetrics
	Logger   *slog.Logger
	Clock    func() time.Time
}

type pendingSave struct {
	image    string
	location string
}

type capturePipeline struct {
	deps   PipelineDeps
	logger *slog.Logger
	tracer trace.Tracer

	// run is held for the duration of a Capture or RetrySave.
	run sync.Mutex

	mu      sync.Mutex
	stage   Stage
	pending *pendingSave

	observers sync.WaitGroup
}

// NewCaptureService constructs the capture pipeline.
func NewCaptureService(deps PipelineDeps) CaptureService {
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	return &capturePipeline{
		deps:   deps,
		logger: logging.Component(deps.Logger, "capture_pipeline"),
		tracer: otel.Tracer("photojournal/internal/service"),
		stage:  StageIdle,
	}
}

func (p *capturePipeline) Capture(ctx context.Context, req CaptureRequest) (*model.Entry, error) {
	if !p.run.TryLock() {
		return nil, p.busy()
	}
	defer p.run.Unlock()

	ctx, span := p.tracer.Start(ctx, "journal.capture")
	defer span.End()

	if stale := p.reset(); stale != nil {
		p.discardPhoto(ctx, stale.image)
	}

	p.setStage(StageCapturing)
	image, err := p.capturePhoto(ctx, req.Camera)
	if err != nil {
		return nil, p.finish(ctx, span, err)
	}

	p.setStage(StageResolvingLocation)
	loc := p.resolveLocation(ctx, req.Position)

	return p.save(ctx, span, image, loc)
}

func (p *capturePipeline) RetrySave(ctx context.Context) (*model.Entry, error) {
	if !p.run.TryLock() {
		return nil, p.busy()
	}
	defer p.run.Unlock()

	p.mu.Lock()
	pend, stage := p.pending, p.stage
	p.mu.Unlock()
	if pend == nil {
		err := &StageError{Stage: stage, Kind: ErrNothingToRetry}
		p.deps.Metrics.observeCapture(err.Kind)
		return nil, err
	}

	ctx, span := p.tracer.Start(ctx, "journal.retry_save")
	defer span.End()

	return p.save(ctx, span, pend.image, pend.location)
}

func (p *capturePipeline) State() CaptureState {
	p.mu.Lock()
	defer p.mu.Unlock()
	st := CaptureState{Stage: p.stage}
	if p.pending != nil {
		st.Pending = true
		st.PendingImage = p.pending.image
		st.PendingLocation = p.pending.location
	}
	return st
}

func (p *capturePipeline) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		p.observers.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *capturePipeline) capturePhoto(ctx context.Context, cam capture.Device) (string, error) {
	ctx, span := p.tracer.Start(ctx, "journal.capture.photo")
	defer span.End()

	if cam == nil {
		return "", &StageError{Stage: StageCapturing, Kind: ErrCaptureFailed, Err: errors.New("no camera")}
	}
	granted, err := cam.RequestPermission(ctx)
	if err != nil {
		return "", &StageError{Stage: StageCapturing, Kind: ErrCaptureFailed, Err: err}
	}
	if !granted {
		return "", &StageError{Stage: StageCapturing, Kind: ErrPermissionDenied, Err: errors.New("camera permission denied")}
	}

	ref, err := cam.CapturePhoto(ctx)
	switch {
	case errors.Is(err, capture.ErrCancelled):
		return "", &StageError{Stage: StageCapturing, Kind: ErrCaptureCancelled, Err: err}
	case err != nil:
		return "", &StageError{Stage: StageCapturing, Kind: ErrCaptureFailed, Err: err}
	}
	span.SetAttributes(attribute.String("journal.image", ref))
	return ref, nil
}

// resolveLocation never fails: any resolver error degrades to UnknownLocation.
func (p *capturePipeline) resolveLocation(ctx context.Context, provider location.PositionProvider) string {
	ctx, span := p.tracer.Start(ctx, "journal.capture.location")
	defer span.End()

	var err error
	loc := ""
	switch {
	case provider == nil:
		err = errors.New("no position provider")
	case p.deps.Resolver == nil:
		err = errors.New("no location resolver")
	default:
		loc, err = p.deps.Resolver.Resolve(ctx, provider)
	}
	if err == nil && loc != "" {
		return loc
	}
	if err == nil {
		err = errors.New("empty location")
	}

	span.RecordError(err)
	p.logger.WarnContext(ctx, "location unresolved",
		"kind", ErrLocationResolutionFailed.Error(),
		"error", err.Error(),
		"fallback", model.UnknownLocation,
	)
	return model.UnknownLocation
}

func (p *capturePipeline) save(ctx context.Context, parent trace.Span, image, loc string) (*model.Entry, error) {
	p.setStage(StageSaving)

	ctx, span := p.tracer.Start(ctx, "journal.capture.save")
	defer span.End()

	id, err := p.deps.IDs.Generate(ctx)
	if err != nil {
		p.clearPending()
		p.discardPhoto(ctx, image)
		span.RecordError(err)
		return nil, p.finish(ctx, parent, &StageError{Stage: StageSaving, Kind: ErrRandomnessUnavailable, Err: err})
	}

	entry := model.Entry{
		ID:        id,
		Image:     image,
		Location:  loc,
		Timestamp: p.deps.Clock().UTC().Truncate(time.Millisecond),
	}
	span.SetAttributes(attribute.String("journal.entry_id", id))

	if err := p.deps.Entries.Insert(ctx, entry); err != nil {
		p.mu.Lock()
		p.pending = &pendingSave{image: image, location: loc}
		p.mu.Unlock()
		span.RecordError(err)
		return nil, p.finish(ctx, parent, &StageError{Stage: StageSaving, Kind: ErrPersistenceFailed, Err: err})
	}

	p.mu.Lock()
	p.pending = nil
	p.stage = StageDone
	p.mu.Unlock()

	p.deps.Metrics.observeCapture(nil)
	p.logger.InfoContext(ctx, "entry saved", "id", entry.ID, "location", entry.Location)
	p.notify(ctx, entry)
	return &entry, nil
}

// notify dispatches the confirmation without waiting for it.
func (p *capturePipeline) notify(ctx context.Context, entry model.Entry) {
	if p.deps.Notifier == nil {
		return
	}
	res := p.deps.Notifier.Dispatch(ctx, NotificationTitle, NotificationBody(entry.Location))

	p.observers.Add(1)
	go func() {
		defer p.observers.Done()
		delivered := <-res
		p.deps.Metrics.observeNotification(delivered)
		if !delivered {
			p.logger.WarnContext(ctx, "notification dropped",
				"kind", ErrNotificationDeliveryFailed.Error(),
				"id", entry.ID,
			)
		}
	}()
}

// NotificationBody previews the first characters of the saved location.
func NotificationBody(loc string) string {
	r := []rune(loc)
	if len(r) > notificationPeek {
		r = r[:notificationPeek]
	}
	return "Saved location: " + string(r) + "..."
}

// finish records a failed run. Cancelled captures return to Idle, anything else is Failed.
func (p *capturePipeline) finish(ctx context.Context, span trace.Span, err error) error {
	var serr *StageError
	if !errors.As(err, &serr) {
		serr = &StageError{Stage: p.State().Stage, Kind: ErrCaptureFailed, Err: err}
	}

	next := StageFailed
	if errors.Is(serr.Kind, ErrCaptureCancelled) {
		next = StageIdle
	}
	p.setStage(next)
	p.deps.Metrics.observeCapture(serr.Kind)

	span.RecordError(serr)
	span.SetStatus(codes.Error, serr.Kind.Error())

	level := slog.LevelError
	if next == StageIdle || errors.Is(serr.Kind, ErrPermissionDenied) {
		level = slog.LevelInfo
	}
	p.logger.Log(ctx, level, "capture failed",
		"stage", string(serr.Stage),
		"kind", serr.Kind.Error(),
		"retryable", serr.Retryable(),
		"error", fmt.Sprint(serr.Err),
	)
	return serr
}

func (p *capturePipeline) busy() error {
	err := &StageError{Stage: p.State().Stage, Kind: ErrPipelineBusy}
	p.deps.Metrics.observeCapture(err.Kind)
	return err
}

func (p *capturePipeline) reset() *pendingSave {
	p.mu.Lock()
	defer p.mu.Unlock()
	stale := p.pending
	p.pending = nil
	p.stage = StageIdle
	return stale
}

func (p *capturePipeline) clearPending() {
	p.mu.Lock()
	p.pending = nil
	p.mu.Unlock()
}

func (p *capturePipeline) setStage(s Stage) {
	p.mu.Lock()
	p.stage = s
	p.mu.Unlock()
}

// discardPhoto removes a photo no entry will ever reference. Best-effort.
func (p *capturePipeline) discardPhoto(ctx context.Context, image string) {
	if p.deps.Photos == nil || image == "" {
		return
	}
	if err := p.deps.Photos.Delete(ctx, image); err != nil {
		p.logger.WarnContext(ctx, "photo cleanup failed", "image", image, "error", err.Error())
	}
}
