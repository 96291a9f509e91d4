package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"photojournal/internal/capture"
	"photojournal/internal/http/middleware"
	"photojournal/internal/service"
)

// errorPayload defines the standardized error response body.
type errorPayload struct {
	RequestID string        `json:"request_id"`
	Error     errorEnvelope `json:"error"`
}

type errorEnvelope struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable,omitempty"`
}

// requestIDFromCtx extracts request_id previously stored by middleware.RequestID.
func requestIDFromCtx(c *fiber.Ctx) string {
	if v := c.Locals(middleware.RequestIDLocalKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// writeError writes a standardized JSON error response without leaking internal errors.
//
// Parameters:
// - status: HTTP status code to return
// - code: machine-readable short error code (e.g., "INVALID_ID", "NOT_FOUND", "INTERNAL_ERROR")
// - message: human-readable safe message (no internal details)
func writeError(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(errorPayload{
		RequestID: requestIDFromCtx(c),
		Error: errorEnvelope{
			Code:    code,
			Message: message,
		},
	})
}

type captureFailure struct {
	kind    error
	status  int
	code    string
	message string
}

// captureFailures maps every pipeline failure kind to its HTTP response.
// Client mistakes carried inside a kind are matched before the kind itself.
var captureFailures = []captureFailure{
	{capture.ErrUnsupportedType, fiber.StatusUnsupportedMediaType, "UNSUPPORTED_MEDIA_TYPE", "photo must be an image"},
	{service.ErrPermissionDenied, fiber.StatusForbidden, "PERMISSION_DENIED", "permission denied"},
	{service.ErrRandomnessUnavailable, fiber.StatusInternalServerError, "RANDOMNESS_UNAVAILABLE", "entry id could not be generated, capture again"},
	{service.ErrPersistenceFailed, fiber.StatusServiceUnavailable, "PERSISTENCE_FAILED", "entry could not be saved, retry the save"},
	{service.ErrCaptureCancelled, fiber.StatusBadRequest, "CAPTURE_CANCELLED", "no photo was captured"},
	{service.ErrCaptureFailed, fiber.StatusBadGateway, "CAPTURE_FAILED", "photo capture failed"},
	{service.ErrPipelineBusy, fiber.StatusConflict, "PIPELINE_BUSY", "a capture is already in progress"},
	{service.ErrNothingToRetry, fiber.StatusConflict, "NOTHING_TO_RETRY", "there is no failed save to retry"},
}

// writeCaptureError classifies a pipeline error into the standardized envelope.
func writeCaptureError(c *fiber.Ctx, err error) error {
	for _, f := range captureFailures {
		if errors.Is(err, f.kind) {
			return c.Status(f.status).JSON(errorPayload{
				RequestID: requestIDFromCtx(c),
				Error: errorEnvelope{
					Code:      f.code,
					Message:   f.message,
					Retryable: errors.Is(f.kind, service.ErrPersistenceFailed),
				},
			})
		}
	}
	return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
}

// ErrorHandler returns a Fiber global error handler that standardizes error responses.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		var e *fiber.Error
		if errors.As(err, &e) {
			status = e.Code
		}

		switch status {
		case fiber.StatusBadRequest:
			return writeError(c, status, "BAD_REQUEST", "bad request")
		case fiber.StatusNotFound:
			return writeError(c, status, "NOT_FOUND", "resource not found")
		case fiber.StatusMethodNotAllowed:
			return writeError(c, status, "METHOD_NOT_ALLOWED", "method not allowed")
		case fiber.StatusRequestEntityTooLarge:
			return writeError(c, status, "PAYLOAD_TOO_LARGE", "request body too large")
		default:
			return writeError(c, status, "INTERNAL_ERROR", "internal server error")
		}
	}
}
