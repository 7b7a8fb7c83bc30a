package errors

import (
	"errors"
	"fmt"
)

var (
	ErrValidation       = errors.New("validation failed")
	ErrUnknownPlan      = fmt.Errorf("unknown price plan: %w", ErrValidation)
	ErrNotFound         = errors.New("not found")
	ErrInvalidState     = errors.New("invalid order")
	ErrPaymentRequired  = errors.New("payment required")
	ErrContentNotReady  = errors.New("content not ready")
	ErrSignatureInvalid = errors.New("invalid signature")
	ErrGenerationFailed = errors.New("generation failed")
)

// IsNotReady reports whether err signals content or payment not being available yet.
func IsNotReady(err error) bool {
	return errors.Is(err, ErrPaymentRequired) || errors.Is(err, ErrContentNotReady)
}
