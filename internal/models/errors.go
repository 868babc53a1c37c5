package models

import (
	"errors"
	"fmt"
)

// Common errors used throughout the application
var (
	ErrProfileNotFound     = errors.New("profile not found")
	ErrItemNotFound        = errors.New("media item not found")
	ErrPaymentNotFound     = errors.New("payment not found")
	ErrStoreUnavailable    = errors.New("store unavailable")
	ErrInvalidPrice        = errors.New("price below minimum")
	ErrEmptyCart           = errors.New("cart is empty")
	ErrAlreadyUnlocked     = errors.New("content already unlocked")
	ErrUnauthorized        = errors.New("unauthorized access")
	ErrInvalidInput        = errors.New("invalid input")
	ErrDuplicateEntry      = errors.New("duplicate entry")
	ErrNotImplemented      = errors.New("feature not implemented")
	ErrVerificationTimeout = errors.New("payment verification timed out")
)

// DeclineCategory classifies a definitive provider-side payment failure.
type DeclineCategory string

const (
	DeclineCardDeclined      DeclineCategory = "card_declined"
	DeclineInsufficientFunds DeclineCategory = "insufficient_funds"
	DeclineCardExpired       DeclineCategory = "card_expired"
	DeclineInvalidCard       DeclineCategory = "invalid_card"
	DeclineProviderError     DeclineCategory = "provider_error"
)

// DeclineError is a terminal provider-side failure. The payment it belongs
// to always transitions to failed; the category drives the user-facing
// message.
type DeclineError struct {
	Category DeclineCategory
	Detail   string
}

func (e *DeclineError) Error() string {
	return fmt.Sprintf("payment declined (%s): %s", e.Category, e.Detail)
}

// UserMessage returns the message shown to the buyer for this decline.
func (e *DeclineError) UserMessage() string {
	switch e.Category {
	case DeclineCardDeclined:
		return "Your card was declined. Please try a different card."
	case DeclineInsufficientFunds:
		return "Your card has insufficient funds."
	case DeclineCardExpired:
		return "Your card has expired. Please use a different card."
	case DeclineInvalidCard:
		return "Your card details are invalid. Please check and try again."
	default:
		return "The payment could not be processed. Please try again later."
	}
}
