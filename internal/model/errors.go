package model

import (
	"errors"
	"fmt"
)

// Domain outcomes. Client-caused outcomes are distinguishable from
// ErrUpstreamUnavailable with errors.Is.
var (
	ErrNotFound            = errors.New("not found")
	ErrAlreadyVoted        = errors.New("already voted")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrValidation          = errors.New("validation failed")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	ErrAccountNotFound  = fmt.Errorf("account %w", ErrNotFound)
	ErrMemeNotFound     = fmt.Errorf("meme %w", ErrNotFound)
	ErrPromptNotFound   = fmt.Errorf("prompt %w", ErrNotFound)
	ErrPurchaseNotFound = fmt.Errorf("purchase %w", ErrNotFound)

	ErrPromptClosed       = fmt.Errorf("%w: prompt is no longer accepting submissions", ErrValidation)
	ErrPurchaseRefClaimed = fmt.Errorf("%w: purchase reference already claimed by another account", ErrValidation)
)

// ValidationError wraps ErrValidation with a field-level message.
func ValidationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
