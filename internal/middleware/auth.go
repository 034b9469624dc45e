package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/example/pandol/internal/session"
	"github.com/example/pandol/internal/utils"
)

const sessionKey = "session"

// Auth validates the bearer token and stores the session both in Locals and
// in the request's user context, where services resolve it.
func Auth(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "missing authorization header")
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid authorization header")
		}

		claims, err := utils.ParseToken(secret, strings.TrimSpace(parts[1]))
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid token")
		}

		s := &session.Session{UserID: claims.UserID, Role: claims.Role}
		c.Locals(sessionKey, s)
		c.SetUserContext(session.WithSession(c.UserContext(), s))
		return c.Next()
	}
}

// RequireRole rejects sessions whose role is not listed. It must run after Auth.
func RequireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		s, ok := CurrentSession(c)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "not authenticated")
		}
		for _, role := range roles {
			if s.Role == role {
				return c.Next()
			}
		}
		return fiber.NewError(fiber.StatusForbidden, "insufficient permissions")
	}
}

// CurrentSession extracts the authenticated session from the request.
func CurrentSession(c *fiber.Ctx) (*session.Session, bool) {
	s, ok := c.Locals(sessionKey).(*session.Session)
	return s, ok && s != nil
}
