package serverutils

import (
	"crypto/subtle"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const SessionLocalKey = "session_id"

// SessionMiddleware accepts a Bearer token, or a token query parameter for
// websocket upgrades that cannot set headers.
func SessionMiddleware(issuer *SessionTokenIssuer) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		tokenStr := ""
		authHeader := ctx.Get("Authorization")
		if strings.HasPrefix(authHeader, "Bearer ") {
			tokenStr = authHeader[len("Bearer "):]
		} else {
			tokenStr = ctx.Query("token")
		}
		if tokenStr == "" {
			return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse("Missing session token"))
		}

		sessionID, err := issuer.Parse(tokenStr)
		if err != nil {
			return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse("Invalid session token"))
		}

		ctx.Locals(SessionLocalKey, sessionID)
		return ctx.Next()
	}
}

// SessionID returns the session attached by SessionMiddleware.
func SessionID(ctx *fiber.Ctx) (uuid.UUID, bool) {
	id, ok := ctx.Locals(SessionLocalKey).(uuid.UUID)
	return id, ok
}

// AdminKeyMiddleware guards curator routes with a shared key in X-Admin-Key.
// An empty configured key disables the routes.
func AdminKeyMiddleware(adminKey string) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		given := ctx.Get("X-Admin-Key")
		if adminKey == "" || subtle.ConstantTimeCompare([]byte(given), []byte(adminKey)) != 1 {
			return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse("Invalid admin key"))
		}
		return ctx.Next()
	}
}
