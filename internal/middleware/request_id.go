package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	requestIDHeader = "X-Request-ID"
	loggerKey       = "logger"
)

// RequestID tags every request with an id, echoes it in the response and
// stores a request scoped logger in Locals.
func RequestID(log logrus.FieldLogger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(requestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}

		c.Set(requestIDHeader, id)
		c.Locals(loggerKey, log.WithFields(logrus.Fields{
			"request_id": id,
			"method":     c.Method(),
			"path":       c.Path(),
		}))
		return c.Next()
	}
}

// Logger returns the request scoped logger, or fallback when RequestID did
// not run.
func Logger(c *fiber.Ctx, fallback logrus.FieldLogger) logrus.FieldLogger {
	if l, ok := c.Locals(loggerKey).(logrus.FieldLogger); ok {
		return l
	}
	return fallback
}
