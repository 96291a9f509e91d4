package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"photojournal/internal/logging"
)

const (
	// RequestIDHeader carries the request id in both directions.
	RequestIDHeader = "X-Request-ID"
	// RequestIDLocalKey is the Fiber locals key the error envelope reads.
	RequestIDLocalKey = logging.RequestIDKey

	maxRequestIDLen = 128
)

// RequestID tags every request with an id. A client supplied X-Request-ID is
// reused when it is short printable ASCII, otherwise a UUID is generated.
// The id is echoed in the response, kept in locals for the error envelope and
// stored in the user context, so every log line a capture or entry operation
// writes while serving the request carries it.
func RequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(RequestIDHeader)
		if !usableRequestID(id) {
			id = uuid.NewString()
		}

		c.Locals(RequestIDLocalKey, id)
		c.SetUserContext(logging.WithRequestID(c.UserContext(), id))
		c.Set(RequestIDHeader, id)

		return c.Next()
	}
}

// usableRequestID rejects ids that would bloat or break a log line.
func usableRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLen {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] < 0x21 || id[i] > 0x7e {
			return false
		}
	}
	return true
}
