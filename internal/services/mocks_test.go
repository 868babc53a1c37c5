package services

import (
	"fmt"
	"sync"

	"media-gallery-platform/internal/models"
)

// fakeCatalog is an in-memory CatalogStore / MediaStore for testing
type fakeCatalog struct {
	profiles map[int]*models.Profile
	items    map[string]*models.MediaItem
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		profiles: make(map[int]*models.Profile),
		items:    make(map[string]*models.MediaItem),
	}
}

func itemKey(profileID, itemIndex int, itemType models.ItemType) string {
	return fmt.Sprintf("%d/%s/%d", profileID, itemType, itemIndex)
}

func (f *fakeCatalog) addProfile(p *models.Profile) *models.Profile {
	f.profiles[p.ID] = p
	return p
}

func (f *fakeCatalog) addItem(profileID, itemIndex int, itemType models.ItemType, locked *bool) *models.MediaItem {
	item := &models.MediaItem{
		ProfileID: profileID,
		ItemType:  itemType,
		ItemIndex: itemIndex,
		URL:       fmt.Sprintf("https://cdn.test/%d/%s/%d", profileID, itemType, itemIndex),
		IsLocked:  locked,
	}
	f.items[itemKey(profileID, itemIndex, itemType)] = item
	return item
}

func (f *fakeCatalog) GetProfile(id int) (*models.Profile, error) {
	p, ok := f.profiles[id]
	if !ok {
		return nil, models.ErrProfileNotFound
	}
	return p, nil
}

func (f *fakeCatalog) ListMediaItems(profileID int) ([]*models.MediaItem, error) {
	var out []*models.MediaItem
	for _, item := range f.items {
		if item.ProfileID == profileID {
			out = append(out, item)
		}
	}
	return out, nil
}

func (f *fakeCatalog) GetMediaItem(profileID, itemIndex int, itemType models.ItemType) (*models.MediaItem, error) {
	item, ok := f.items[itemKey(profileID, itemIndex, itemType)]
	if !ok {
		return nil, models.ErrItemNotFound
	}
	return item, nil
}

func (f *fakeCatalog) CountMediaItems(profileID int) (int, int, error) {
	photos, videos := 0, 0
	for _, item := range f.items {
		if item.ProfileID != profileID {
			continue
		}
		if item.ItemType == models.ItemPhoto {
			photos++
		} else {
			videos++
		}
	}
	return photos, videos, nil
}

func (f *fakeCatalog) UpdateProfile(id int, req *models.ProfileUpdateRequest) (*models.Profile, error) {
	p, ok := f.profiles[id]
	if !ok {
		return nil, models.ErrProfileNotFound
	}
	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.IsUnlocked != nil {
		p.IsUnlocked = *req.IsUnlocked
	}
	if req.PhotoPriceCents != nil {
		p.PhotoPriceCents = req.PhotoPriceCents
	}
	if req.VideoPriceCents != nil {
		p.VideoPriceCents = req.VideoPriceCents
	}
	if req.PhotoPackagePriceCents != nil {
		p.PhotoPackagePriceCents = req.PhotoPackagePriceCents
	}
	if req.VideoPackagePriceCents != nil {
		p.VideoPackagePriceCents = req.VideoPackagePriceCents
	}
	return p, nil
}

func (f *fakeCatalog) AddMediaItem(profileID int, itemType models.ItemType, url, previewURL string, isLocked *bool) (*models.MediaItem, error) {
	if _, ok := f.profiles[profileID]; !ok {
		return nil, models.ErrProfileNotFound
	}
	nextIndex := 0
	for _, item := range f.items {
		if item.ProfileID == profileID && item.ItemType == itemType && item.ItemIndex >= nextIndex {
			nextIndex = item.ItemIndex + 1
		}
	}
	item := &models.MediaItem{
		ProfileID:  profileID,
		ItemType:   itemType,
		ItemIndex:  nextIndex,
		URL:        url,
		PreviewURL: previewURL,
		IsLocked:   isLocked,
	}
	f.items[itemKey(profileID, nextIndex, itemType)] = item
	return item, nil
}

func (f *fakeCatalog) SetItemLock(profileID, itemIndex int, itemType models.ItemType, locked bool) error {
	item, ok := f.items[itemKey(profileID, itemIndex, itemType)]
	if !ok {
		return models.ErrItemNotFound
	}
	item.IsLocked = &locked
	return nil
}

func (f *fakeCatalog) SetCover(profileID, itemIndex int, itemType models.ItemType) error {
	target, ok := f.items[itemKey(profileID, itemIndex, itemType)]
	if !ok {
		return models.ErrItemNotFound
	}
	for _, item := range f.items {
		if item.ProfileID == profileID {
			item.IsCover = false
		}
	}
	target.IsCover = true
	return nil
}

// fakeUnlocks is an in-memory UnlockStore for testing
type fakeUnlocks struct {
	mu      sync.Mutex
	records []models.UnlockRecord
}

func newFakeUnlocks() *fakeUnlocks {
	return &fakeUnlocks{}
}

func (f *fakeUnlocks) ListForProfile(actorID string, profileID int) ([]*models.UnlockRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.UnlockRecord
	for i := range f.records {
		rec := f.records[i]
		if rec.ActorID == actorID && rec.ProfileID == profileID {
			out = append(out, &rec)
		}
	}
	return out, nil
}

func (f *fakeUnlocks) HasPackageUnlock(actorID string, profileID int, unlockType models.UnlockType) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, rec := range f.records {
		if rec.ActorID == actorID && rec.ProfileID == profileID && rec.Type == unlockType {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUnlocks) HasItemUnlock(actorID string, profileID, itemIndex int, itemType models.ItemType) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, rec := range f.records {
		if rec.ActorID == actorID && rec.ProfileID == profileID &&
			rec.Type == models.UnlockItem && rec.ItemIndex == itemIndex && rec.ItemType == itemType {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUnlocks) Grant(record models.UnlockRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.grantLocked(record)
	return nil
}

func (f *fakeUnlocks) grantLocked(record models.UnlockRecord) {
	for _, rec := range f.records {
		if rec.ActorID == record.ActorID && rec.ProfileID == record.ProfileID &&
			rec.Type == record.Type && rec.ItemIndex == record.ItemIndex && rec.ItemType == record.ItemType {
			return
		}
	}
	f.records = append(f.records, record)
}

func (f *fakeUnlocks) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.records)
}

// fakePrices is an in-memory PriceStore for testing
type fakePrices struct {
	overrides map[string]int
}

func newFakePrices() *fakePrices {
	return &fakePrices{overrides: make(map[string]int)}
}

func (f *fakePrices) GetOverride(profileID, itemIndex int, itemType models.ItemType) (*int, error) {
	if cents, ok := f.overrides[itemKey(profileID, itemIndex, itemType)]; ok {
		return &cents, nil
	}
	return nil, nil
}

func (f *fakePrices) ListOverrides(profileID int) ([]*models.PriceOverride, error) {
	return nil, nil
}

func (f *fakePrices) UpsertOverride(profileID, itemIndex int, itemType models.ItemType, priceCents int) error {
	f.overrides[itemKey(profileID, itemIndex, itemType)] = priceCents
	return nil
}

// fakePayments is an in-memory PaymentStore mirroring the conditional
// transition semantics of the SQL repository.
type fakePayments struct {
	mu            sync.Mutex
	payments      map[string]*models.Payment
	unlocks       *fakeUnlocks
	completeCalls int
	grantWrites   int
}

func newFakePayments(unlocks *fakeUnlocks) *fakePayments {
	return &fakePayments{
		payments: make(map[string]*models.Payment),
		unlocks:  unlocks,
	}
}

func (f *fakePayments) Create(payment *models.Payment) (*models.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.payments[payment.Reference]; exists {
		return nil, models.ErrDuplicateEntry
	}
	p := *payment
	p.Status = models.PaymentPending
	f.payments[p.Reference] = &p
	return &p, nil
}

func (f *fakePayments) GetByReference(reference string) (*models.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.payments[reference]
	if !ok {
		return nil, models.ErrPaymentNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakePayments) GetByProviderTxID(providerTxID string) (*models.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.payments {
		if p.ProviderTxID == providerTxID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, models.ErrPaymentNotFound
}

func (f *fakePayments) SetProviderTxID(reference, providerTxID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.payments[reference]
	if !ok {
		return models.ErrPaymentNotFound
	}
	p.ProviderTxID = providerTxID
	return nil
}

func (f *fakePayments) CompleteWithUnlocks(reference, providerTxID string, unlocks []models.UnlockRecord) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.completeCalls++
	p, ok := f.payments[reference]
	if !ok {
		return false, models.ErrPaymentNotFound
	}
	if p.Status != models.PaymentPending {
		return false, nil
	}
	p.Status = models.PaymentCompleted
	if providerTxID != "" {
		p.ProviderTxID = providerTxID
	}
	for _, rec := range unlocks {
		f.unlocks.grantLocked(rec)
		f.grantWrites++
	}
	return true, nil
}

func (f *fakePayments) MarkFailed(reference, providerTxID, failureCode string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.payments[reference]
	if !ok {
		return false, models.ErrPaymentNotFound
	}
	if p.Status != models.PaymentPending {
		return false, nil
	}
	p.Status = models.PaymentFailed
	p.FailureCode = failureCode
	if providerTxID != "" {
		p.ProviderTxID = providerTxID
	}
	return true, nil
}

func (f *fakePayments) Refund(reference string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.payments[reference]
	if !ok {
		return false, models.ErrPaymentNotFound
	}
	if p.Status != models.PaymentCompleted {
		return false, nil
	}
	p.Status = models.PaymentRefunded
	return true, nil
}

func (f *fakePayments) ListByActor(actorID string, status models.PaymentStatus, limit int) ([]*models.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Payment
	for _, p := range f.payments {
		if p.ActorID != actorID {
			continue
		}
		if status != "" && p.Status != status {
			continue
		}
		cp := *p
		out = append(out, &cp)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

// fakeProvider is a scriptable PaymentProvider for testing
type fakeProvider struct {
	mu          sync.Mutex
	statusCalls int

	checkoutErr error
	chargeErr   error
	chargeRes   *ProviderChargeResult
	statusFn    func(call int) (*ProviderPaymentStatus, error)
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) CreateCheckout(req ProviderCheckoutRequest) (*ProviderCheckoutResponse, error) {
	if f.checkoutErr != nil {
		return nil, f.checkoutErr
	}
	return &ProviderCheckoutResponse{
		CheckoutURL:  "https://pay.test/" + req.Reference,
		ProviderTxID: "tx-" + req.Reference,
	}, nil
}

func (f *fakeProvider) ChargeToken(req ProviderChargeRequest) (*ProviderChargeResult, error) {
	if f.chargeErr != nil {
		return nil, f.chargeErr
	}
	if f.chargeRes != nil {
		return f.chargeRes, nil
	}
	return &ProviderChargeResult{ProviderTxID: "tx-" + req.Reference, Status: models.PaymentCompleted}, nil
}

func (f *fakeProvider) GetPaymentStatus(providerTxID string) (*ProviderPaymentStatus, error) {
	f.mu.Lock()
	f.statusCalls++
	call := f.statusCalls
	f.mu.Unlock()
	if f.statusFn != nil {
		return f.statusFn(call)
	}
	return &ProviderPaymentStatus{ProviderTxID: providerTxID, Status: models.PaymentPending}, nil
}

func (f *fakeProvider) VerifyWebhookSignature(notificationURL string, body []byte, signature string) bool {
	return signature == "valid"
}
