package handlers

import (
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"media-gallery-platform/internal/middleware"
	"media-gallery-platform/internal/models"
	"media-gallery-platform/internal/services"
)

// squareSignatureHeader carries the webhook HMAC Square computes over the
// notification URL and the raw body.
const squareSignatureHeader = "x-square-hmacsha256-signature"

// PaymentHandler serves payment status, client-driven verification and
// the provider webhook.
type PaymentHandler struct {
	payments   services.PaymentStore
	provider   services.PaymentProvider
	reconciler *services.ReconciliationService
	poller     *services.PaymentPoller
	webhookURL string
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(
	payments services.PaymentStore,
	provider services.PaymentProvider,
	reconciler *services.ReconciliationService,
	poller *services.PaymentPoller,
	webhookURL string,
) *PaymentHandler {
	return &PaymentHandler{
		payments:   payments,
		provider:   provider,
		reconciler: reconciler,
		poller:     poller,
		webhookURL: webhookURL,
	}
}

// GetStatus returns the actor's view of one payment.
func (h *PaymentHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	reference := chi.URLParam(r, "reference")

	payment, err := h.payments.GetByReference(reference)
	if err != nil {
		respondError(w, err)
		return
	}

	actor := middleware.ActorFromContext(r.Context())
	if payment.ActorID != actor.ID && !middleware.IsAdminFromContext(r.Context()) {
		respondError(w, models.ErrUnauthorized)
		return
	}

	respondJSON(w, http.StatusOK, payment)
}

// Verify polls the provider until the payment settles or the attempt
// budget runs out. A timeout is not a failure: the payment stays pending
// and the webhook may still complete it.
func (h *PaymentHandler) Verify(w http.ResponseWriter, r *http.Request) {
	reference := chi.URLParam(r, "reference")

	payment, err := h.payments.GetByReference(reference)
	if err != nil {
		respondError(w, err)
		return
	}
	actor := middleware.ActorFromContext(r.Context())
	if payment.ActorID != actor.ID && !middleware.IsAdminFromContext(r.Context()) {
		respondError(w, models.ErrUnauthorized)
		return
	}

	result, err := h.poller.Verify(r.Context(), reference)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// SquareWebhook ingests provider payment notifications. Deliveries with a
// bad signature are rejected outright; replayed deliveries reconcile to
// already_processed with no writes.
func (h *PaymentHandler) SquareWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "failed to read body"})
		return
	}

	signature := r.Header.Get(squareSignatureHeader)
	if !h.provider.VerifyWebhookSignature(h.webhookURL, body, signature) {
		log.Printf("webhook: rejected delivery with invalid signature")
		respondJSON(w, http.StatusUnauthorized, errorResponse{Error: "invalid signature"})
		return
	}

	event, err := services.ParseWebhookEvent(body)
	if err != nil {
		respondError(w, err)
		return
	}

	// Non-payment events and non-terminal updates are acknowledged so the
	// provider stops redelivering them.
	if event.ProviderTxID == "" || event.Status == models.PaymentPending {
		respondJSON(w, http.StatusOK, map[string]bool{"received": true})
		return
	}

	var result *services.ReconcileResult
	if event.Reference != "" {
		result, err = h.reconciler.Reconcile(event.Reference, event.Status, event.ProviderTxID, event.FailureCode)
	} else {
		result, err = h.reconciler.ReconcileByProviderTx(event.ProviderTxID, event.Status, event.FailureCode)
	}
	if err != nil {
		if errors.Is(err, models.ErrPaymentNotFound) {
			// Not a payment of ours. Acknowledge so the provider moves on;
			// unlock state is never fabricated from webhook data alone.
			log.Printf("webhook: no payment matches reference=%q provider_tx=%q", event.Reference, event.ProviderTxID)
			respondJSON(w, http.StatusOK, map[string]bool{"received": true})
			return
		}
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}
