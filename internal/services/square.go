package services

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"media-gallery-platform/internal/models"
)

// SquareConfig represents Square payment service configuration
type SquareConfig struct {
	AccessToken         string
	LocationID          string
	Environment         string // "sandbox" or "production"
	WebhookSignatureKey string
	CallbackURL         string
}

// SquareService handles card payments via the Square API
type SquareService struct {
	config  SquareConfig
	client  *http.Client
	baseURL string
}

const squareAPIVersion = "2024-07-17"

// NewSquareService creates a new Square payment service
func NewSquareService(config SquareConfig) *SquareService {
	baseURL := "https://connect.squareup.com"
	if config.Environment == "sandbox" {
		baseURL = "https://connect.squareupsandbox.com"
	}

	return &SquareService{
		config:  config,
		client:  &http.Client{Timeout: 30 * time.Second},
		baseURL: baseURL,
	}
}

// Name implements PaymentProvider
func (s *SquareService) Name() string {
	return "square"
}

type squareMoney struct {
	Amount   int    `json:"amount"`
	Currency string `json:"currency"`
}

type squarePayment struct {
	ID          string      `json:"id"`
	Status      string      `json:"status"`
	ReferenceID string      `json:"reference_id"`
	OrderID     string      `json:"order_id"`
	AmountMoney squareMoney `json:"amount_money"`
}

type squareError struct {
	Category string `json:"category"`
	Code     string `json:"code"`
	Detail   string `json:"detail"`
}

type squareErrorResponse struct {
	Errors []squareError `json:"errors"`
}

// CreateCheckout opens a hosted payment link for the given reference.
func (s *SquareService) CreateCheckout(req ProviderCheckoutRequest) (*ProviderCheckoutResponse, error) {
	body := map[string]interface{}{
		"idempotency_key": req.Reference,
		"quick_pay": map[string]interface{}{
			"name":        req.Description,
			"location_id": s.config.LocationID,
			"price_money": squareMoney{Amount: req.AmountCents, Currency: req.Currency},
		},
		"checkout_options": map[string]interface{}{
			"redirect_url": s.config.CallbackURL,
		},
		"payment_note": req.Reference,
	}

	var resp struct {
		PaymentLink struct {
			ID      string `json:"id"`
			URL     string `json:"url"`
			OrderID string `json:"order_id"`
		} `json:"payment_link"`
	}
	if err := s.do("POST", "/v2/online-checkout/payment-links", body, &resp); err != nil {
		return nil, err
	}

	return &ProviderCheckoutResponse{
		CheckoutURL:  resp.PaymentLink.URL,
		ProviderTxID: resp.PaymentLink.OrderID,
	}, nil
}

// ChargeToken charges a card token produced by Square's client-side
// tokenization widget. The reference doubles as Square's idempotency key,
// so a retried charge with the same reference cannot settle twice.
func (s *SquareService) ChargeToken(req ProviderChargeRequest) (*ProviderChargeResult, error) {
	body := map[string]interface{}{
		"source_id":       req.SourceID,
		"idempotency_key": req.Reference,
		"amount_money":    squareMoney{Amount: req.AmountCents, Currency: req.Currency},
		"location_id":     s.config.LocationID,
		"reference_id":    req.Reference,
		"note":            req.Note,
		"autocomplete":    true,
	}

	var resp struct {
		Payment squarePayment `json:"payment"`
	}
	if err := s.do("POST", "/v2/payments", body, &resp); err != nil {
		return nil, err
	}

	return &ProviderChargeResult{
		ProviderTxID: resp.Payment.ID,
		Status:       mapSquareStatus(resp.Payment.Status),
	}, nil
}

// GetPaymentStatus fetches the provider's current view of a payment by
// its Square payment id.
func (s *SquareService) GetPaymentStatus(providerTxID string) (*ProviderPaymentStatus, error) {
	var resp struct {
		Payment squarePayment `json:"payment"`
	}
	if err := s.do("GET", "/v2/payments/"+providerTxID, nil, &resp); err != nil {
		return nil, err
	}

	status := &ProviderPaymentStatus{
		ProviderTxID: resp.Payment.ID,
		Status:       mapSquareStatus(resp.Payment.Status),
	}
	if status.Status == models.PaymentFailed {
		status.FailureCode = resp.Payment.Status
	}
	return status, nil
}

// VerifyWebhookSignature authenticates a webhook delivery. Square signs
// the concatenation of the notification URL and the raw body with
// HMAC-SHA256 of the subscription's signature key, base64-encoded.
func (s *SquareService) VerifyWebhookSignature(notificationURL string, body []byte, signature string) bool {
	if s.config.WebhookSignatureKey == "" || signature == "" {
		return false
	}

	mac := hmac.New(sha256.New, []byte(s.config.WebhookSignatureKey))
	mac.Write([]byte(notificationURL))
	mac.Write(body)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(signature), []byte(expected))
}

// WebhookEvent is the subset of a Square webhook payload reconciliation
// needs.
type WebhookEvent struct {
	Type         string
	ProviderTxID string
	Reference    string
	Status       models.PaymentStatus
	FailureCode  string
}

// ParseWebhookEvent extracts the payment transition from a webhook body.
func ParseWebhookEvent(body []byte) (*WebhookEvent, error) {
	var payload struct {
		Type string `json:"type"`
		Data struct {
			Object struct {
				Payment squarePayment `json:"payment"`
			} `json:"object"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%w: malformed webhook payload: %v", models.ErrInvalidInput, err)
	}
	if payload.Type != "payment.updated" && payload.Type != "payment.created" {
		return &WebhookEvent{Type: payload.Type, Status: models.PaymentPending}, nil
	}

	event := &WebhookEvent{
		Type:         payload.Type,
		ProviderTxID: payload.Data.Object.Payment.ID,
		Reference:    payload.Data.Object.Payment.ReferenceID,
		Status:       mapSquareStatus(payload.Data.Object.Payment.Status),
	}
	if event.Status == models.PaymentFailed {
		event.FailureCode = payload.Data.Object.Payment.Status
	}
	return event, nil
}

// mapSquareStatus maps Square payment statuses onto our state machine.
// APPROVED is an authorization that has not settled, so it stays pending
// until the COMPLETED update arrives.
func mapSquareStatus(status string) models.PaymentStatus {
	switch status {
	case "COMPLETED":
		return models.PaymentCompleted
	case "FAILED", "CANCELED":
		return models.PaymentFailed
	default:
		return models.PaymentPending
	}
}

// do runs one Square API call and decodes the response, translating error
// payloads into typed errors.
func (s *SquareService) do(method, path string, body interface{}, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, s.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.config.AccessToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Square-Version", squareAPIVersion)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("request to Square failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read Square response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return s.handleAPIError(resp.StatusCode, respBody)
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("failed to decode Square response: %w", err)
		}
	}
	return nil
}

// handleAPIError converts a Square error payload into a typed error.
// Card-level declines become DeclineError with a distinct category so the
// buyer sees the right message.
func (s *SquareService) handleAPIError(statusCode int, body []byte) error {
	var errResp squareErrorResponse
	if err := json.Unmarshal(body, &errResp); err != nil || len(errResp.Errors) == 0 {
		return fmt.Errorf("square API error (status %d): %s", statusCode, string(body))
	}

	first := errResp.Errors[0]
	if category, ok := declineCategoryForCode(first.Code); ok {
		return &models.DeclineError{Category: category, Detail: first.Detail}
	}

	return fmt.Errorf("square API error %s: %s", first.Code, first.Detail)
}

// declineCategoryForCode maps Square card-error codes to decline
// categories.
func declineCategoryForCode(code string) (models.DeclineCategory, bool) {
	switch code {
	case "CARD_DECLINED", "GENERIC_DECLINE", "CARD_DECLINED_CALL_ISSUER", "CARD_DECLINED_VERIFICATION_REQUIRED":
		return models.DeclineCardDeclined, true
	case "INSUFFICIENT_FUNDS":
		return models.DeclineInsufficientFunds, true
	case "CARD_EXPIRED", "EXPIRATION_FAILURE", "INVALID_EXPIRATION":
		return models.DeclineCardExpired, true
	case "INVALID_CARD", "INVALID_CARD_DATA", "CVV_FAILURE", "ADDRESS_VERIFICATION_FAILURE", "INVALID_ACCOUNT":
		return models.DeclineInvalidCard, true
	case "PAYMENT_LIMIT_EXCEEDED", "TEMPORARY_ERROR":
		return models.DeclineProviderError, true
	}
	return "", false
}
