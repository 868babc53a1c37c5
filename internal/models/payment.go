package models

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// PaymentStatus represents the status of a payment
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
	PaymentRefunded  PaymentStatus = "refunded"
)

// Payment is the local record of a checkout handed to the payment
// provider. It is written with status pending before the provider is
// called, so abandoned checkouts stay auditable. Reference is our
// idempotency key; ProviderTxID is the provider's transaction id once
// known.
type Payment struct {
	ID           int           `json:"id" db:"id"`
	Reference    string        `json:"reference" db:"reference"`
	ActorID      string        `json:"actor_id" db:"actor_id"`
	AmountCents  int           `json:"amount_cents" db:"amount_cents"`
	Currency     string        `json:"currency" db:"currency"`
	ProviderTxID string        `json:"provider_tx_id" db:"provider_tx_id"`
	Status       PaymentStatus `json:"status" db:"status"`
	LineItems    []LineItem    `json:"line_items" db:"-"`
	FailureCode  string        `json:"failure_code,omitempty" db:"failure_code"`
	CreatedAt    time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at" db:"updated_at"`
}

// LineItem names exactly one thing being purchased: either a single media
// item (ItemIndex set, Package empty) or a whole package (Package set,
// ItemIndex ignored). Recorded in payment metadata so reconciliation
// knows what to unlock.
type LineItem struct {
	ProfileID  int         `json:"profile_id"`
	ItemIndex  int         `json:"item_index"`
	ItemType   ItemType    `json:"item_type,omitempty"`
	Package    PackageType `json:"package,omitempty"`
	PriceCents int         `json:"price_cents"`
}

// IsPackage reports whether the line item is a bundle purchase.
func (li LineItem) IsPackage() bool {
	return li.Package != ""
}

// Validate checks a line item's shape before pricing.
func (li LineItem) Validate() error {
	if li.ProfileID <= 0 {
		return errors.New("line item profile id is required")
	}
	if li.IsPackage() {
		if !ValidPackageType(li.Package) {
			return fmt.Errorf("unknown package type %q", li.Package)
		}
		return nil
	}
	if !ValidItemType(li.ItemType) {
		return fmt.Errorf("unknown item type %q", li.ItemType)
	}
	if li.ItemIndex < 0 {
		return errors.New("line item index cannot be negative")
	}
	return nil
}

// key returns the canonical identity of the line item, ignoring price.
func (li LineItem) key() string {
	if li.IsPackage() {
		return fmt.Sprintf("%d:pkg:%s", li.ProfileID, li.Package)
	}
	return fmt.Sprintf("%d:%s:%d", li.ProfileID, li.ItemType, li.ItemIndex)
}

// DedupeLineItems drops duplicate (profile, index, type) tuples while
// preserving the order of first occurrence.
func DedupeLineItems(items []LineItem) []LineItem {
	seen := make(map[string]bool, len(items))
	out := make([]LineItem, 0, len(items))
	for _, li := range items {
		if seen[li.key()] {
			continue
		}
		seen[li.key()] = true
		out = append(out, li)
	}
	return out
}

// CheckoutReference derives the payment reference (idempotency key) from
// the actor, the canonical sorted line-item set and a client-held nonce.
// A client that retries with the same nonce produces the same reference,
// so a duplicate submit lands on the existing pending payment instead of
// creating a second charge.
func CheckoutReference(actorID, nonce string, items []LineItem) string {
	keys := make([]string, 0, len(items))
	for _, li := range items {
		keys = append(keys, li.key())
	}
	sort.Strings(keys)

	h := sha256.New()
	fmt.Fprintf(h, "%s|%s|%s", actorID, nonce, strings.Join(keys, ","))
	return "PAY-" + hex.EncodeToString(h.Sum(nil))[:24]
}

// IsTerminal reports whether the payment reached a sink state. Terminal
// payments are never transitioned again, except completed -> refunded by
// an explicit refund.
func (p *Payment) IsTerminal() bool {
	switch p.Status {
	case PaymentCompleted, PaymentFailed, PaymentRefunded:
		return true
	}
	return false
}

// IsPending returns true if the payment is awaiting a terminal status
func (p *Payment) IsPending() bool {
	return p.Status == PaymentPending
}

// CanBeRefunded returns true if the payment can be refunded
func (p *Payment) CanBeRefunded() bool {
	return p.Status == PaymentCompleted
}

// AmountInCurrency returns the amount in major units, for display only.
// Cents remain the source of truth everywhere else.
func (p *Payment) AmountInCurrency() float64 {
	return float64(p.AmountCents) / 100.0
}

// ValidPaymentStatus reports whether s is a known payment status.
func ValidPaymentStatus(s PaymentStatus) bool {
	switch s {
	case PaymentPending, PaymentCompleted, PaymentFailed, PaymentRefunded:
		return true
	}
	return false
}

// UnlockRecords expands the payment's line items into the unlock records
// a completed reconciliation grants. Package line items grant a single
// package-scoped record; the entitlement resolver consults it before
// item records, so every covered item reads as unlocked immediately.
func (p *Payment) UnlockRecords() []UnlockRecord {
	records := make([]UnlockRecord, 0, len(p.LineItems))
	for _, li := range p.LineItems {
		if li.IsPackage() {
			records = append(records, PackageUnlock(p.ActorID, li.ProfileID, li.Package))
			continue
		}
		records = append(records, ItemUnlock(p.ActorID, li.ProfileID, li.ItemIndex, li.ItemType))
	}
	return records
}
