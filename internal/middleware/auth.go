package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v3"

	"github.com/kayceejenz/mtop/internal/auth"
)

const accountIDKey = "accountID"

// RequireAuth rejects requests without a valid bearer session token and
// stores the token's account id for downstream handlers.
func RequireAuth(issuer *auth.Issuer) fiber.Handler {
	return func(c fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			return ErrorResponse(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "Missing bearer token")
		}

		claims, err := issuer.Parse(strings.TrimSpace(token))
		if err != nil {
			return ErrorResponse(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "Invalid or expired session token")
		}

		c.Locals(accountIDKey, claims.AccountID())
		return c.Next()
	}
}

// AccountID returns the authenticated account id, or "" outside RequireAuth.
func AccountID(c fiber.Ctx) string {
	id, _ := c.Locals(accountIDKey).(string)
	return id
}
