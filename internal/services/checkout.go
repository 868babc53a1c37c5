package services

import (
	"errors"
	"fmt"
	"log"

	"media-gallery-platform/internal/models"
)

// PaymentStore is the payment access checkout and reconciliation need.
type PaymentStore interface {
	Create(payment *models.Payment) (*models.Payment, error)
	GetByReference(reference string) (*models.Payment, error)
	GetByProviderTxID(providerTxID string) (*models.Payment, error)
	SetProviderTxID(reference, providerTxID string) error
	CompleteWithUnlocks(reference, providerTxID string, unlocks []models.UnlockRecord) (bool, error)
	MarkFailed(reference, providerTxID, failureCode string) (bool, error)
	Refund(reference string) (bool, error)
	ListByActor(actorID string, status models.PaymentStatus, limit int) ([]*models.Payment, error)
}

// CheckoutIntent is what the client needs to take a created checkout to
// the provider's hosted page.
type CheckoutIntent struct {
	Reference   string `json:"reference"`
	CheckoutURL string `json:"checkout_url,omitempty"`
	TotalCents  int    `json:"total_cents"`
}

// CheckoutService builds payment intents. It never trusts client-supplied
// prices: every line item is re-priced from the authoritative resolver,
// and already-unlocked content is rejected before any charge.
type CheckoutService struct {
	pricing     *PricingService
	entitlement *EntitlementService
	payments    PaymentStore
	provider    PaymentProvider
	reconciler  *ReconciliationService
	currency    string
}

// NewCheckoutService creates a new checkout service
func NewCheckoutService(
	pricing *PricingService,
	entitlement *EntitlementService,
	payments PaymentStore,
	provider PaymentProvider,
	reconciler *ReconciliationService,
	currency string,
) *CheckoutService {
	if currency == "" {
		currency = "USD"
	}
	return &CheckoutService{
		pricing:     pricing,
		entitlement: entitlement,
		payments:    payments,
		provider:    provider,
		reconciler:  reconciler,
		currency:    currency,
	}
}

// CreateIntent validates and prices the line items, writes a pending
// payment row, and opens a hosted checkout with the provider. The
// reference is derived from actor + sorted line items + the client's
// nonce, so a retried submit with the same nonce converges on the
// existing pending payment instead of charging twice.
func (s *CheckoutService) CreateIntent(actor models.Actor, nonce string, lineItems []models.LineItem) (*CheckoutIntent, error) {
	if actor.IsGuest {
		return nil, fmt.Errorf("%w: purchases require a signed-in account", models.ErrUnauthorized)
	}
	if nonce == "" {
		return nil, fmt.Errorf("%w: checkout nonce is required", models.ErrInvalidInput)
	}

	lineItems = models.DedupeLineItems(lineItems)
	if len(lineItems) == 0 {
		return nil, models.ErrEmptyCart
	}

	total := 0
	priced := make([]models.LineItem, 0, len(lineItems))
	for _, li := range lineItems {
		if err := li.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %v", models.ErrInvalidInput, err)
		}

		if li.IsPackage() {
			fully, err := s.entitlement.IsPackageFullyUnlocked(actor, li.ProfileID, li.Package.ItemType())
			if err != nil {
				return nil, err
			}
			if fully {
				return nil, models.ErrAlreadyUnlocked
			}
			price, err := s.pricing.PackagePriceFor(li.ProfileID, li.Package)
			if err != nil {
				return nil, err
			}
			li.PriceCents = price
		} else {
			unlocked, err := s.entitlement.IsUnlocked(actor, li.ProfileID, li.ItemIndex, li.ItemType)
			if err != nil {
				return nil, err
			}
			if unlocked {
				return nil, models.ErrAlreadyUnlocked
			}
			price, err := s.pricing.PriceFor(li.ProfileID, li.ItemIndex, li.ItemType)
			if err != nil {
				return nil, err
			}
			li.PriceCents = price
		}

		total += li.PriceCents
		priced = append(priced, li)
	}

	reference := models.CheckoutReference(actor.ID, nonce, priced)

	payment, err := s.payments.Create(&models.Payment{
		Reference:   reference,
		ActorID:     actor.ID,
		AmountCents: total,
		Currency:    s.currency,
		LineItems:   priced,
	})
	if errors.Is(err, models.ErrDuplicateEntry) {
		// Client retry with the same nonce: reuse the pending payment.
		existing, getErr := s.payments.GetByReference(reference)
		if getErr != nil {
			return nil, getErr
		}
		if !existing.IsPending() {
			return nil, models.ErrAlreadyUnlocked
		}
		payment = existing
	} else if err != nil {
		return nil, err
	}

	checkout, err := s.provider.CreateCheckout(ProviderCheckoutRequest{
		Reference:   payment.Reference,
		AmountCents: payment.AmountCents,
		Currency:    payment.Currency,
		Description: fmt.Sprintf("Purchase of %d item(s)", len(payment.LineItems)),
	})
	if err != nil {
		// The pending row stays behind: abandoned checkouts are auditable
		// and the same reference can be retried.
		return nil, fmt.Errorf("failed to open checkout with %s: %w", s.provider.Name(), err)
	}

	if checkout.ProviderTxID != "" {
		if err := s.payments.SetProviderTxID(payment.Reference, checkout.ProviderTxID); err != nil {
			log.Printf("checkout %s: failed to record provider tx id: %v", payment.Reference, err)
		}
	}

	return &CheckoutIntent{
		Reference:   payment.Reference,
		CheckoutURL: checkout.CheckoutURL,
		TotalCents:  payment.AmountCents,
	}, nil
}

// ChargeIntent charges a client-tokenized card for an existing pending
// payment and immediately reconciles the terminal result. Declines map to
// their category, transition the payment to failed, and still come back
// as errors to the caller.
func (s *CheckoutService) ChargeIntent(actor models.Actor, reference, sourceID string) (*ReconcileResult, error) {
	if sourceID == "" {
		return nil, fmt.Errorf("%w: card token is required", models.ErrInvalidInput)
	}

	payment, err := s.payments.GetByReference(reference)
	if err != nil {
		return nil, err
	}
	if payment.ActorID != actor.ID {
		return nil, models.ErrUnauthorized
	}
	if payment.IsTerminal() {
		return &ReconcileResult{AlreadyProcessed: true, Status: payment.Status}, nil
	}

	result, err := s.provider.ChargeToken(ProviderChargeRequest{
		SourceID:    sourceID,
		Reference:   payment.Reference,
		AmountCents: payment.AmountCents,
		Currency:    payment.Currency,
		Note:        fmt.Sprintf("Purchase of %d item(s)", len(payment.LineItems)),
	})
	if err != nil {
		var decline *models.DeclineError
		if errors.As(err, &decline) {
			// A definitive decline must never leave the payment pending.
			if _, recErr := s.reconciler.Reconcile(payment.Reference, models.PaymentFailed, "", string(decline.Category)); recErr != nil {
				log.Printf("charge %s: failed to record decline: %v", payment.Reference, recErr)
			}
		}
		return nil, err
	}

	return s.reconciler.Reconcile(payment.Reference, result.Status, result.ProviderTxID, "")
}

// PurchaseHistory lists the actor's completed payments with their line
// metadata.
func (s *CheckoutService) PurchaseHistory(actor models.Actor, limit int) ([]*models.Payment, error) {
	if actor.IsGuest {
		return nil, models.ErrUnauthorized
	}
	return s.payments.ListByActor(actor.ID, models.PaymentCompleted, limit)
}
