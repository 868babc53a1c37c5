package services

import (
	"fmt"

	"media-gallery-platform/internal/models"
)

// CryptoPaymentService is the reserved crypto payment method. It is
// selectable by configuration so deployments can flip to it once an
// on-chain processor exists, but every operation fails until then.
type CryptoPaymentService struct{}

// NewCryptoPaymentService creates the crypto payment placeholder
func NewCryptoPaymentService() *CryptoPaymentService {
	return &CryptoPaymentService{}
}

// Name implements PaymentProvider
func (s *CryptoPaymentService) Name() string {
	return "crypto"
}

func (s *CryptoPaymentService) CreateCheckout(req ProviderCheckoutRequest) (*ProviderCheckoutResponse, error) {
	return nil, fmt.Errorf("crypto payments: %w", models.ErrNotImplemented)
}

func (s *CryptoPaymentService) ChargeToken(req ProviderChargeRequest) (*ProviderChargeResult, error) {
	return nil, fmt.Errorf("crypto payments: %w", models.ErrNotImplemented)
}

func (s *CryptoPaymentService) GetPaymentStatus(providerTxID string) (*ProviderPaymentStatus, error) {
	return nil, fmt.Errorf("crypto payments: %w", models.ErrNotImplemented)
}

func (s *CryptoPaymentService) VerifyWebhookSignature(notificationURL string, body []byte, signature string) bool {
	return false
}

// NewPaymentProvider selects the configured payment method. Unknown
// methods are an error rather than a silent fallback to card.
func NewPaymentProvider(method string, square SquareConfig) (PaymentProvider, error) {
	switch method {
	case "", "card":
		return NewSquareService(square), nil
	case "crypto":
		return NewCryptoPaymentService(), nil
	default:
		return nil, fmt.Errorf("%w: unknown payment method %q", models.ErrInvalidInput, method)
	}
}
