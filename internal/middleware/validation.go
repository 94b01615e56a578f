package middleware

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/kayceejenz/mtop/internal/model"
)

// Paging limits for list endpoints.
const (
	MaxPageLimit  = 100
	MaxPageOffset = 10_000
	// MaxSyncLookback bounds how far back a delta request may reach.
	MaxSyncLookback = 7 * 24 * time.Hour
)

// ErrorResponse is a helper that returns a standard API error response.
func ErrorResponse(c fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    code,
			"message": message,
		},
	})
}

// ValidateUUID checks that a path or query id is a canonical UUID and returns
// it lowercased.
func ValidateUUID(field, id string) (string, string) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", field + " is required"
	}
	parsed, err := uuid.Parse(id)
	if err != nil || len(id) != 36 {
		return "", field + " must be a UUID"
	}
	return parsed.String(), ""
}

// ValidateOrder normalizes a feed ordering; empty means top.
func ValidateOrder(order string) (string, string) {
	order = strings.ToLower(strings.TrimSpace(order))
	switch order {
	case "":
		return model.OrderTop, ""
	case model.OrderTop, model.OrderRecent:
		return order, ""
	}
	return "", "order must be top or recent"
}

// ValidatePage parses limit and offset query values. A zero limit lets the
// service apply its default.
func ValidatePage(limitStr, offsetStr string) (int, int, string) {
	limit, offset := 0, 0
	if s := strings.TrimSpace(limitStr); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 || n > MaxPageLimit {
			return 0, 0, "limit must be between 1 and 100"
		}
		limit = n
	}
	if s := strings.TrimSpace(offsetStr); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 || n > MaxPageOffset {
			return 0, 0, "offset must be between 0 and 10000"
		}
		offset = n
	}
	return limit, offset, ""
}

// ValidateSince parses an RFC 3339 sync cursor. Cursors in the future or
// older than MaxSyncLookback are rejected.
func ValidateSince(since string, now time.Time) (time.Time, string) {
	since = strings.TrimSpace(since)
	if since == "" {
		return time.Time{}, "since is required"
	}
	t, err := time.Parse(time.RFC3339Nano, since)
	if err != nil {
		return time.Time{}, "since must be an RFC 3339 timestamp"
	}
	if t.After(now.Add(time.Minute)) {
		return time.Time{}, "since must not be in the future"
	}
	if now.Sub(t) > MaxSyncLookback {
		return time.Time{}, "since must be within the last 7 days"
	}
	return t, ""
}
