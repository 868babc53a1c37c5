package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckoutReference(t *testing.T) {
	items := []LineItem{
		{ProfileID: 1, ItemIndex: 0, ItemType: ItemPhoto},
		{ProfileID: 1, ItemIndex: 2, ItemType: ItemVideo},
		{ProfileID: 2, Package: PackagePhotos},
	}
	reversed := []LineItem{items[2], items[1], items[0]}

	ref := CheckoutReference("u1", "nonce", items)
	assert.True(t, strings.HasPrefix(ref, "PAY-"))
	assert.Len(t, ref, len("PAY-")+24)

	// Line-item order does not change the reference.
	assert.Equal(t, ref, CheckoutReference("u1", "nonce", reversed))

	// Any change to actor, nonce or items does.
	assert.NotEqual(t, ref, CheckoutReference("u2", "nonce", items))
	assert.NotEqual(t, ref, CheckoutReference("u1", "other", items))
	assert.NotEqual(t, ref, CheckoutReference("u1", "nonce", items[:2]))
}

func TestDedupeLineItems(t *testing.T) {
	items := []LineItem{
		{ProfileID: 1, ItemIndex: 0, ItemType: ItemPhoto, PriceCents: 499},
		{ProfileID: 1, ItemIndex: 0, ItemType: ItemPhoto, PriceCents: 100}, // duplicate tuple, price differs
		{ProfileID: 1, ItemIndex: 0, ItemType: ItemVideo},
		{ProfileID: 1, Package: PackagePhotos},
		{ProfileID: 1, Package: PackagePhotos},
	}

	out := DedupeLineItems(items)
	require.Len(t, out, 3)
	// First occurrence wins.
	assert.Equal(t, 499, out[0].PriceCents)
	assert.Equal(t, ItemVideo, out[1].ItemType)
	assert.Equal(t, PackagePhotos, out[2].Package)
}

func TestLineItem_Validate(t *testing.T) {
	assert.NoError(t, LineItem{ProfileID: 1, ItemIndex: 0, ItemType: ItemPhoto}.Validate())
	assert.NoError(t, LineItem{ProfileID: 1, Package: PackageVideos}.Validate())

	assert.Error(t, LineItem{ItemIndex: 0, ItemType: ItemPhoto}.Validate())
	assert.Error(t, LineItem{ProfileID: 1, ItemIndex: -1, ItemType: ItemPhoto}.Validate())
	assert.Error(t, LineItem{ProfileID: 1, ItemIndex: 0, ItemType: "gif"}.Validate())
	assert.Error(t, LineItem{ProfileID: 1, Package: "everything"}.Validate())
}

func TestPayment_UnlockRecords(t *testing.T) {
	payment := &Payment{
		ActorID: "u1",
		LineItems: []LineItem{
			{ProfileID: 1, ItemIndex: 2, ItemType: ItemPhoto},
			{ProfileID: 1, Package: PackageVideos},
		},
	}

	records := payment.UnlockRecords()
	require.Len(t, records, 2)

	assert.Equal(t, UnlockItem, records[0].Type)
	assert.Equal(t, 2, records[0].ItemIndex)
	assert.Equal(t, ItemPhoto, records[0].ItemType)

	// A package purchase grants one package-scoped record, not one per item.
	assert.Equal(t, UnlockVideos, records[1].Type)
}

func TestUnlockRecord_Covers(t *testing.T) {
	item := ItemUnlock("u1", 1, 3, ItemPhoto)
	assert.True(t, item.Covers(3, ItemPhoto))
	assert.False(t, item.Covers(3, ItemVideo))
	assert.False(t, item.Covers(4, ItemPhoto))

	photos := PackageUnlock("u1", 1, PackagePhotos)
	assert.True(t, photos.Covers(0, ItemPhoto))
	assert.True(t, photos.Covers(99, ItemPhoto))
	assert.False(t, photos.Covers(0, ItemVideo))

	profile := UnlockRecord{Type: UnlockProfile}
	assert.True(t, profile.Covers(0, ItemPhoto))
	assert.True(t, profile.Covers(0, ItemVideo))
}

func TestPayment_StatusTransitions(t *testing.T) {
	p := &Payment{Status: PaymentPending}
	assert.True(t, p.IsPending())
	assert.False(t, p.IsTerminal())
	assert.False(t, p.CanBeRefunded())

	p.Status = PaymentCompleted
	assert.True(t, p.IsTerminal())
	assert.True(t, p.CanBeRefunded())

	p.Status = PaymentFailed
	assert.True(t, p.IsTerminal())
	assert.False(t, p.CanBeRefunded())

	p.Status = PaymentRefunded
	assert.True(t, p.IsTerminal())
	assert.False(t, p.CanBeRefunded())
}

func TestValidatePriceCents(t *testing.T) {
	assert.ErrorIs(t, ValidatePriceCents(0), ErrInvalidPrice)
	assert.ErrorIs(t, ValidatePriceCents(MinPriceCents-1), ErrInvalidPrice)
	assert.NoError(t, ValidatePriceCents(MinPriceCents))
	assert.NoError(t, ValidatePriceCents(1999))
}

func TestMediaItem_Locked(t *testing.T) {
	unset := &MediaItem{}
	assert.True(t, unset.Locked(), "unset lock flag must read as locked")

	locked := true
	assert.True(t, (&MediaItem{IsLocked: &locked}).Locked())

	open := false
	assert.False(t, (&MediaItem{IsLocked: &open}).Locked())
}

func TestCart(t *testing.T) {
	cart := &Cart{}
	assert.True(t, cart.IsEmpty())

	item := LineItem{ProfileID: 1, ItemIndex: 0, ItemType: ItemPhoto, PriceCents: 499}
	cart.Add(item)
	cart.Add(item) // duplicate tuple collapses
	cart.Add(LineItem{ProfileID: 1, Package: PackagePhotos, PriceCents: 1999})

	assert.Len(t, cart.Items, 2)
	assert.Equal(t, 2498, cart.TotalCents)

	cart.Remove(item)
	assert.Len(t, cart.Items, 1)
	assert.Equal(t, 1999, cart.TotalCents)
}
