package services

import (
	"fmt"
	"log"

	"media-gallery-platform/internal/models"
)

// ReconcileResult reports what a reconciliation attempt did.
type ReconcileResult struct {
	// AlreadyProcessed is true when the payment was terminal before this
	// call, or another reconciler won the race; in either case this call
	// wrote nothing.
	AlreadyProcessed bool                  `json:"already_processed"`
	Status           models.PaymentStatus  `json:"status"`
	UnlocksGranted   []models.UnlockRecord `json:"unlocks_granted,omitempty"`
}

// ReconciliationService converts a provider's terminal payment status
// into durable unlock state exactly once. Webhook deliveries and client
// polling both land here; the conditional status transition in the store
// guarantees that replays and races are no-ops.
type ReconciliationService struct {
	payments PaymentStore
}

// NewReconciliationService creates a new reconciliation service
func NewReconciliationService(payments PaymentStore) *ReconciliationService {
	return &ReconciliationService{payments: payments}
}

// Reconcile applies a terminal provider status to the payment identified
// by our reference.
//
// A status for an unknown reference is ErrPaymentNotFound: unlock state
// is never fabricated from webhook data without a matching pending row.
func (s *ReconciliationService) Reconcile(reference string, terminal models.PaymentStatus, providerTxID, failureCode string) (*ReconcileResult, error) {
	payment, err := s.payments.GetByReference(reference)
	if err != nil {
		return nil, err
	}

	if payment.IsTerminal() {
		return &ReconcileResult{AlreadyProcessed: true, Status: payment.Status}, nil
	}

	switch terminal {
	case models.PaymentCompleted:
		unlocks := payment.UnlockRecords()
		applied, err := s.payments.CompleteWithUnlocks(reference, providerTxID, unlocks)
		if err != nil {
			return nil, fmt.Errorf("failed to complete payment %s: %w", reference, err)
		}
		if !applied {
			// A concurrent reconciler got there first.
			return &ReconcileResult{AlreadyProcessed: true, Status: models.PaymentCompleted}, nil
		}
		log.Printf("payment %s completed: granted %d unlock(s) for actor %s", reference, len(unlocks), payment.ActorID)
		return &ReconcileResult{Status: models.PaymentCompleted, UnlocksGranted: unlocks}, nil

	case models.PaymentFailed:
		applied, err := s.payments.MarkFailed(reference, providerTxID, failureCode)
		if err != nil {
			return nil, fmt.Errorf("failed to mark payment %s failed: %w", reference, err)
		}
		if !applied {
			return &ReconcileResult{AlreadyProcessed: true, Status: models.PaymentFailed}, nil
		}
		log.Printf("payment %s failed (%s)", reference, failureCode)
		return &ReconcileResult{Status: models.PaymentFailed}, nil

	default:
		return nil, fmt.Errorf("%w: %q is not a terminal status", models.ErrInvalidInput, terminal)
	}
}

// ReconcileByProviderTx resolves the local payment from the provider's
// transaction id before reconciling; used when a webhook carries only the
// provider id.
func (s *ReconciliationService) ReconcileByProviderTx(providerTxID string, terminal models.PaymentStatus, failureCode string) (*ReconcileResult, error) {
	payment, err := s.payments.GetByProviderTxID(providerTxID)
	if err != nil {
		return nil, err
	}
	return s.Reconcile(payment.Reference, terminal, providerTxID, failureCode)
}

// Refund transitions a completed payment to refunded. Unlock records
// stay in place; revocation is a separate admin decision.
func (s *ReconciliationService) Refund(reference string) (*models.Payment, error) {
	payment, err := s.payments.GetByReference(reference)
	if err != nil {
		return nil, err
	}
	if !payment.CanBeRefunded() {
		return nil, fmt.Errorf("%w: payment is %s, only completed payments can be refunded", models.ErrInvalidInput, payment.Status)
	}

	applied, err := s.payments.Refund(reference)
	if err != nil {
		return nil, err
	}
	if !applied {
		return nil, fmt.Errorf("%w: payment is no longer refundable", models.ErrInvalidInput)
	}

	return s.payments.GetByReference(reference)
}
