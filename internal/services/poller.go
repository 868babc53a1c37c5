package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"media-gallery-platform/internal/models"
)

// PollPolicy bounds a verification loop. The budget is deliberately
// small: a payment that has not settled within it is reported as a
// timeout, not a failure, because the webhook may still complete it
// later.
type PollPolicy struct {
	MaxAttempts int
	Interval    time.Duration
}

// DefaultPollPolicy matches the client behavior the provider docs
// recommend: ten polls two seconds apart.
func DefaultPollPolicy() PollPolicy {
	return PollPolicy{MaxAttempts: 10, Interval: 2 * time.Second}
}

// PaymentPoller drives client-side payment verification: it asks the
// provider for the payment's status on a fixed interval and feeds any
// terminal answer through the same reconciliation path webhooks use.
type PaymentPoller struct {
	payments   PaymentStore
	provider   PaymentProvider
	reconciler *ReconciliationService
	policy     PollPolicy
}

// NewPaymentPoller creates a new payment poller
func NewPaymentPoller(payments PaymentStore, provider PaymentProvider, reconciler *ReconciliationService, policy PollPolicy) *PaymentPoller {
	if policy.MaxAttempts <= 0 {
		policy = DefaultPollPolicy()
	}
	return &PaymentPoller{
		payments:   payments,
		provider:   provider,
		reconciler: reconciler,
		policy:     policy,
	}
}

// Verify polls the provider until the payment reaches a terminal status,
// the context is cancelled (the client navigated away), or the attempt
// budget runs out. On exhaustion it returns ErrVerificationTimeout and
// the payment stays pending server-side.
func (p *PaymentPoller) Verify(ctx context.Context, reference string) (*ReconcileResult, error) {
	for attempt := 1; attempt <= p.policy.MaxAttempts; attempt++ {
		// Re-read every attempt so a webhook landing mid-poll ends the loop.
		payment, err := p.payments.GetByReference(reference)
		if err != nil {
			return nil, err
		}
		if payment.IsTerminal() {
			return &ReconcileResult{AlreadyProcessed: true, Status: payment.Status}, nil
		}

		if payment.ProviderTxID != "" {
			status, err := p.provider.GetPaymentStatus(payment.ProviderTxID)
			if err != nil {
				var decline *models.DeclineError
				if errors.As(err, &decline) {
					return p.reconciler.Reconcile(reference, models.PaymentFailed, "", string(decline.Category))
				}
				// Transient provider trouble; spend an attempt and keep going.
			} else if status.Status != models.PaymentPending {
				return p.reconciler.Reconcile(reference, status.Status, status.ProviderTxID, status.FailureCode)
			}
		}

		if attempt == p.policy.MaxAttempts {
			break
		}

		timer := time.NewTimer(p.policy.Interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	return nil, fmt.Errorf("payment %s still pending after %d attempts: %w",
		reference, p.policy.MaxAttempts, models.ErrVerificationTimeout)
}
