package services

import "media-gallery-platform/internal/models"

// PaymentProvider is the closed capability surface of a payment method.
// The concrete implementation (Square card processing, or the crypto
// placeholder) is selected by configuration, never by string comparison
// at call sites.
type PaymentProvider interface {
	Name() string

	// CreateCheckout opens a hosted checkout for the given reference and
	// returns the URL the buyer is redirected to.
	CreateCheckout(req ProviderCheckoutRequest) (*ProviderCheckoutResponse, error)

	// ChargeToken charges a client-side tokenized card. A definitive
	// decline comes back as *models.DeclineError.
	ChargeToken(req ProviderChargeRequest) (*ProviderChargeResult, error)

	// GetPaymentStatus asks the provider for the current status of a
	// payment, identified by the provider's own transaction id.
	GetPaymentStatus(providerTxID string) (*ProviderPaymentStatus, error)

	// VerifyWebhookSignature authenticates an inbound webhook delivery.
	VerifyWebhookSignature(notificationURL string, body []byte, signature string) bool
}

// ProviderCheckoutRequest describes a hosted-checkout creation.
type ProviderCheckoutRequest struct {
	Reference   string // our idempotency reference
	AmountCents int
	Currency    string
	Description string
}

// ProviderCheckoutResponse is the provider's answer to CreateCheckout.
type ProviderCheckoutResponse struct {
	CheckoutURL  string
	ProviderTxID string
}

// ProviderChargeRequest describes a direct tokenized-card charge.
type ProviderChargeRequest struct {
	SourceID    string // client-side tokenization result
	Reference   string
	AmountCents int
	Currency    string
	Note        string
}

// ProviderChargeResult is the provider's answer to ChargeToken.
type ProviderChargeResult struct {
	ProviderTxID string
	Status       models.PaymentStatus
}

// ProviderPaymentStatus is the provider's current view of a payment.
type ProviderPaymentStatus struct {
	ProviderTxID string
	Status       models.PaymentStatus
	FailureCode  string
}
