package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/kayceejenz/mtop/internal/middleware"
	"github.com/kayceejenz/mtop/internal/model"
)

type SyncService interface {
	Delta(ctx context.Context, promptID string, since time.Time) (*model.SyncDeltaResponse, error)
}

type SyncHandler struct {
	svc SyncService
	now func() time.Time
}

func NewSyncHandler(svc SyncService) *SyncHandler {
	return &SyncHandler{svc: svc, now: time.Now}
}

// Delta handles GET /api/sync/delta?promptId=&since=TIMESTAMP. Clients poll
// with the syncTimestamp of the previous response as the next cursor.
func (h *SyncHandler) Delta(c fiber.Ctx) error {
	promptID, errMsg := middleware.ValidateUUID("promptId", fiber.Query[string](c, "promptId"))
	if errMsg != "" {
		return badRequest(c, errMsg)
	}
	since, errMsg := middleware.ValidateSince(fiber.Query[string](c, "since"), h.now())
	if errMsg != "" {
		return badRequest(c, errMsg)
	}

	resp, err := h.svc.Delta(c.Context(), promptID, since)
	if err != nil {
		return handleError(c, err, "fetch delta sync")
	}
	return c.JSON(resp)
}
