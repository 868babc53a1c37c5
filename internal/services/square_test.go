package services

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"media-gallery-platform/internal/models"
)

func TestSquareService_VerifyWebhookSignature(t *testing.T) {
	svc := NewSquareService(SquareConfig{
		Environment:         "sandbox",
		WebhookSignatureKey: "signature-key",
	})

	url := "https://example.com/webhooks/square"
	body := []byte(`{"type":"payment.updated"}`)

	mac := hmac.New(sha256.New, []byte("signature-key"))
	mac.Write([]byte(url))
	mac.Write(body)
	valid := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	assert.True(t, svc.VerifyWebhookSignature(url, body, valid))
	assert.False(t, svc.VerifyWebhookSignature(url, body, "tampered"))
	assert.False(t, svc.VerifyWebhookSignature(url, []byte(`{"type":"other"}`), valid))
	assert.False(t, svc.VerifyWebhookSignature(url, body, ""))

	unconfigured := NewSquareService(SquareConfig{Environment: "sandbox"})
	assert.False(t, unconfigured.VerifyWebhookSignature(url, body, valid))
}

func TestMapSquareStatus(t *testing.T) {
	assert.Equal(t, models.PaymentCompleted, mapSquareStatus("COMPLETED"))
	assert.Equal(t, models.PaymentFailed, mapSquareStatus("FAILED"))
	assert.Equal(t, models.PaymentFailed, mapSquareStatus("CANCELED"))
	// Authorization without capture is still pending.
	assert.Equal(t, models.PaymentPending, mapSquareStatus("APPROVED"))
	assert.Equal(t, models.PaymentPending, mapSquareStatus("PENDING"))
	assert.Equal(t, models.PaymentPending, mapSquareStatus(""))
}

func TestDeclineCategoryForCode(t *testing.T) {
	cases := map[string]models.DeclineCategory{
		"CARD_DECLINED":      models.DeclineCardDeclined,
		"GENERIC_DECLINE":    models.DeclineCardDeclined,
		"INSUFFICIENT_FUNDS": models.DeclineInsufficientFunds,
		"CARD_EXPIRED":       models.DeclineCardExpired,
		"CVV_FAILURE":        models.DeclineInvalidCard,
		"INVALID_CARD":       models.DeclineInvalidCard,
	}
	for code, want := range cases {
		got, ok := declineCategoryForCode(code)
		assert.True(t, ok, code)
		assert.Equal(t, want, got, code)
	}

	_, ok := declineCategoryForCode("UNAUTHORIZED")
	assert.False(t, ok)
}

func TestSquareService_ChargeToken(t *testing.T) {
	var captured map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "POST", r.Method)
		require.Equal(t, "/v2/payments", r.URL.Path)
		require.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		json.NewEncoder(w).Encode(map[string]interface{}{
			"payment": map[string]interface{}{
				"id":           "sq-pay-1",
				"status":       "COMPLETED",
				"reference_id": captured["reference_id"],
			},
		})
	}))
	defer server.Close()

	svc := NewSquareService(SquareConfig{AccessToken: "test-token", LocationID: "loc-1", Environment: "sandbox"})
	svc.baseURL = server.URL

	result, err := svc.ChargeToken(ProviderChargeRequest{
		SourceID:    "cnon:card-nonce",
		Reference:   "PAY-abc",
		AmountCents: 499,
		Currency:    "USD",
	})
	require.NoError(t, err)
	assert.Equal(t, "sq-pay-1", result.ProviderTxID)
	assert.Equal(t, models.PaymentCompleted, result.Status)

	// The reference doubles as the provider-side idempotency key.
	assert.Equal(t, "PAY-abc", captured["idempotency_key"])
	assert.Equal(t, "PAY-abc", captured["reference_id"])
	assert.Equal(t, "cnon:card-nonce", captured["source_id"])
}

func TestSquareService_ChargeToken_Decline(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"errors": []map[string]string{
				{"category": "PAYMENT_METHOD_ERROR", "code": "INSUFFICIENT_FUNDS", "detail": "Insufficient funds"},
			},
		})
	}))
	defer server.Close()

	svc := NewSquareService(SquareConfig{AccessToken: "test-token", Environment: "sandbox"})
	svc.baseURL = server.URL

	_, err := svc.ChargeToken(ProviderChargeRequest{SourceID: "cnon:poor", Reference: "PAY-abc", AmountCents: 499, Currency: "USD"})
	var decline *models.DeclineError
	require.ErrorAs(t, err, &decline)
	assert.Equal(t, models.DeclineInsufficientFunds, decline.Category)
}

func TestSquareService_GetPaymentStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v2/payments/sq-pay-1", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"payment": map[string]interface{}{"id": "sq-pay-1", "status": "FAILED"},
		})
	}))
	defer server.Close()

	svc := NewSquareService(SquareConfig{AccessToken: "test-token", Environment: "sandbox"})
	svc.baseURL = server.URL

	status, err := svc.GetPaymentStatus("sq-pay-1")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentFailed, status.Status)
	assert.Equal(t, "FAILED", status.FailureCode)
}

func TestParseWebhookEvent(t *testing.T) {
	body := []byte(`{
		"type": "payment.updated",
		"data": {"object": {"payment": {
			"id": "sq-pay-1",
			"status": "COMPLETED",
			"reference_id": "PAY-abc"
		}}}
	}`)

	event, err := ParseWebhookEvent(body)
	require.NoError(t, err)
	assert.Equal(t, "payment.updated", event.Type)
	assert.Equal(t, "sq-pay-1", event.ProviderTxID)
	assert.Equal(t, "PAY-abc", event.Reference)
	assert.Equal(t, models.PaymentCompleted, event.Status)

	// Unrelated event types come back with no payment attached.
	other, err := ParseWebhookEvent([]byte(`{"type":"refund.created"}`))
	require.NoError(t, err)
	assert.Empty(t, other.ProviderTxID)

	_, err = ParseWebhookEvent([]byte(`{not json`))
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}
