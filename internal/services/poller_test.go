package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"media-gallery-platform/internal/models"
)

func pollerFixture(t *testing.T, provider *fakeProvider) (*PaymentPoller, *fakePayments, *fakeUnlocks, *models.Payment) {
	t.Helper()
	unlocks := newFakeUnlocks()
	payments := newFakePayments(unlocks)
	reconciler := NewReconciliationService(payments)

	payment := pendingPayment(t, payments, "u1", []models.LineItem{
		{ProfileID: 1, ItemIndex: 0, ItemType: models.ItemPhoto, PriceCents: 499},
	})
	require.NoError(t, payments.SetProviderTxID(payment.Reference, "sq-tx-1"))

	poller := NewPaymentPoller(payments, provider, reconciler, PollPolicy{
		MaxAttempts: 3,
		Interval:    time.Millisecond,
	})
	return poller, payments, unlocks, payment
}

func TestPaymentPoller_SettlesMidPoll(t *testing.T) {
	provider := &fakeProvider{
		statusFn: func(call int) (*ProviderPaymentStatus, error) {
			if call < 3 {
				return &ProviderPaymentStatus{ProviderTxID: "sq-tx-1", Status: models.PaymentPending}, nil
			}
			return &ProviderPaymentStatus{ProviderTxID: "sq-tx-1", Status: models.PaymentCompleted}, nil
		},
	}
	poller, payments, unlocks, payment := pollerFixture(t, provider)

	result, err := poller.Verify(context.Background(), payment.Reference)
	require.NoError(t, err)
	assert.False(t, result.AlreadyProcessed)
	assert.Equal(t, models.PaymentCompleted, result.Status)
	assert.Equal(t, 1, unlocks.count())

	stored, _ := payments.GetByReference(payment.Reference)
	assert.Equal(t, models.PaymentCompleted, stored.Status)
}

func TestPaymentPoller_TimeoutLeavesPaymentPending(t *testing.T) {
	provider := &fakeProvider{} // always pending
	poller, payments, unlocks, payment := pollerFixture(t, provider)

	_, err := poller.Verify(context.Background(), payment.Reference)
	require.ErrorIs(t, err, models.ErrVerificationTimeout)
	assert.Equal(t, 3, provider.statusCalls)

	// Timeout is not failure: the webhook can still settle this payment.
	stored, _ := payments.GetByReference(payment.Reference)
	assert.Equal(t, models.PaymentPending, stored.Status)
	assert.Equal(t, 0, unlocks.count())
}

func TestPaymentPoller_ContextCancellation(t *testing.T) {
	provider := &fakeProvider{} // always pending
	unlocks := newFakeUnlocks()
	payments := newFakePayments(unlocks)
	reconciler := NewReconciliationService(payments)

	payment := pendingPayment(t, payments, "u1", []models.LineItem{
		{ProfileID: 1, ItemIndex: 0, ItemType: models.ItemPhoto, PriceCents: 499},
	})
	require.NoError(t, payments.SetProviderTxID(payment.Reference, "sq-tx-1"))

	poller := NewPaymentPoller(payments, provider, reconciler, PollPolicy{
		MaxAttempts: 10,
		Interval:    time.Hour, // cancellation must win, not the timer
	})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := poller.Verify(ctx, payment.Reference)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPaymentPoller_DeclineDuringPoll(t *testing.T) {
	provider := &fakeProvider{
		statusFn: func(call int) (*ProviderPaymentStatus, error) {
			return nil, &models.DeclineError{Category: models.DeclineCardExpired, Detail: "expired"}
		},
	}
	poller, payments, _, payment := pollerFixture(t, provider)

	result, err := poller.Verify(context.Background(), payment.Reference)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentFailed, result.Status)

	stored, _ := payments.GetByReference(payment.Reference)
	assert.Equal(t, models.PaymentFailed, stored.Status)
}

func TestPaymentPoller_WebhookWinsMidPoll(t *testing.T) {
	unlocks := newFakeUnlocks()
	payments := newFakePayments(unlocks)
	reconciler := NewReconciliationService(payments)

	payment := pendingPayment(t, payments, "u1", []models.LineItem{
		{ProfileID: 1, ItemIndex: 0, ItemType: models.ItemPhoto, PriceCents: 499},
	})
	require.NoError(t, payments.SetProviderTxID(payment.Reference, "sq-tx-1"))

	// The provider keeps answering pending, but a webhook completes the
	// payment between attempts.
	provider := &fakeProvider{
		statusFn: func(call int) (*ProviderPaymentStatus, error) {
			if call == 1 {
				_, err := reconciler.Reconcile(payment.Reference, models.PaymentCompleted, "sq-tx-1", "")
				require.NoError(t, err)
			}
			return &ProviderPaymentStatus{ProviderTxID: "sq-tx-1", Status: models.PaymentPending}, nil
		},
	}
	poller := NewPaymentPoller(payments, provider, reconciler, PollPolicy{
		MaxAttempts: 5,
		Interval:    time.Millisecond,
	})

	result, err := poller.Verify(context.Background(), payment.Reference)
	require.NoError(t, err)
	assert.True(t, result.AlreadyProcessed)
	assert.Equal(t, models.PaymentCompleted, result.Status)
	assert.Equal(t, 1, unlocks.count())
}

func TestPaymentPoller_TerminalShortCircuit(t *testing.T) {
	provider := &fakeProvider{}
	poller, payments, _, payment := pollerFixture(t, provider)

	reconciler := NewReconciliationService(payments)
	_, err := reconciler.Reconcile(payment.Reference, models.PaymentCompleted, "sq-tx-1", "")
	require.NoError(t, err)

	result, err := poller.Verify(context.Background(), payment.Reference)
	require.NoError(t, err)
	assert.True(t, result.AlreadyProcessed)
	assert.Equal(t, 0, provider.statusCalls)
}
