package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog/log"

	"github.com/kayceejenz/mtop/internal/middleware"
	"github.com/kayceejenz/mtop/internal/model"
)

// Outcome labels shared by handlers and metrics.
const (
	outcomeOK           = "ok"
	outcomeDuplicate    = "duplicate"
	outcomeInsufficient = "insufficient_balance"
	outcomeNotFound     = "not_found"
	outcomeInvalid      = "invalid"
	outcomeUnavailable  = "unavailable"
	outcomeError        = "error"
)

// handleError maps a service error onto the API error envelope. Client-caused
// outcomes are always 4xx; only infrastructure failures produce 5xx.
func handleError(c fiber.Ctx, err error, action string) error {
	switch {
	case errors.Is(err, model.ErrPromptClosed):
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "PROMPT_CLOSED", "Prompt is no longer accepting submissions")
	case errors.Is(err, model.ErrPurchaseRefClaimed):
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "PURCHASE_REF_CLAIMED", "Transaction reference was already claimed by another account")
	case errors.Is(err, model.ErrValidation):
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, model.ErrAccountNotFound):
		return middleware.ErrorResponse(c, fiber.StatusNotFound, "NOT_FOUND", "Account not found")
	case errors.Is(err, model.ErrMemeNotFound):
		return middleware.ErrorResponse(c, fiber.StatusNotFound, "NOT_FOUND", "Meme not found")
	case errors.Is(err, model.ErrPromptNotFound):
		return middleware.ErrorResponse(c, fiber.StatusNotFound, "NOT_FOUND", "Prompt not found")
	case errors.Is(err, model.ErrPurchaseNotFound):
		return middleware.ErrorResponse(c, fiber.StatusNotFound, "NOT_FOUND", "Purchase not found")
	case errors.Is(err, model.ErrNotFound):
		return middleware.ErrorResponse(c, fiber.StatusNotFound, "NOT_FOUND", "Resource not found")
	case errors.Is(err, model.ErrAlreadyVoted):
		return middleware.ErrorResponse(c, fiber.StatusConflict, "ALREADY_VOTED", "You have already voted on this meme")
	case errors.Is(err, model.ErrInsufficientBalance):
		return middleware.ErrorResponse(c, fiber.StatusPaymentRequired, "INSUFFICIENT_BALANCE", "Not enough likes")
	case errors.Is(err, model.ErrUpstreamUnavailable):
		log.Error().Err(err).Str("component", "api").Str("action", action).Msg("upstream unavailable")
		return middleware.ErrorResponse(c, fiber.StatusServiceUnavailable, "UPSTREAM_UNAVAILABLE", "Service temporarily unavailable, retry later")
	default:
		log.Error().Err(err).Str("component", "api").Str("action", action).Msg("unexpected error")
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to "+action)
	}
}

// outcomeOf classifies an error for outcome-labelled metrics.
func outcomeOf(err error) string {
	switch {
	case err == nil:
		return outcomeOK
	case errors.Is(err, model.ErrAlreadyVoted):
		return outcomeDuplicate
	case errors.Is(err, model.ErrInsufficientBalance):
		return outcomeInsufficient
	case errors.Is(err, model.ErrNotFound):
		return outcomeNotFound
	case errors.Is(err, model.ErrValidation):
		return outcomeInvalid
	case errors.Is(err, model.ErrUpstreamUnavailable):
		return outcomeUnavailable
	}
	return outcomeError
}

func badRequest(c fiber.Ctx, msg string) error {
	return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", msg)
}

func invalidBody(c fiber.Ctx) error {
	return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", "Invalid request body")
}
