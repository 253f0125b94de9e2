package billing_test

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/pharmabill/pharmabill-api/internal/application/billing"
	"github.com/pharmabill/pharmabill-api/internal/application/inventory"
	"github.com/pharmabill/pharmabill-api/internal/application/ledger"
	"github.com/pharmabill/pharmabill-api/internal/domain/entity"
	"github.com/pharmabill/pharmabill-api/internal/domain/repository"
	"github.com/pharmabill/pharmabill-api/pkg/logger"
)

// ---- in-memory fakes ----

type fakeBatchRepo struct {
	batches map[string]*entity.Batch
}

func newFakeBatchRepo() *fakeBatchRepo {
	return &fakeBatchRepo{batches: map[string]*entity.Batch{}}
}

func (f *fakeBatchRepo) GetByID(id string) (*entity.Batch, error) {
	b, ok := f.batches[id]
	if !ok {
		return nil, nil
	}
	cp := *b
	return &cp, nil
}

func (f *fakeBatchRepo) Available(shopID, productID string, asOf time.Time) ([]*entity.Batch, error) {
	var out []*entity.Batch
	for _, b := range f.batches {
		if b.ShopID == shopID && b.ProductID == productID && b.Active && b.Quantity > 0 && !b.Expired(asOf) {
			cp := *b
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].ExpiryDate.Equal(out[j].ExpiryDate) {
			return out[i].ExpiryDate.Before(out[j].ExpiryDate)
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (f *fakeBatchRepo) AvailableForUpdate(shopID, productID string, asOf time.Time) ([]*entity.Batch, error) {
	return f.Available(shopID, productID, asOf)
}

func (f *fakeBatchRepo) GetForUpdate(id string) (*entity.Batch, error) {
	return f.GetByID(id)
}

func (f *fakeBatchRepo) FindMergeable(shopID, productID, batchCode string, expiry time.Time) (*entity.Batch, error) {
	for _, b := range f.batches {
		if b.ShopID == shopID && b.ProductID == productID && b.BatchCode == batchCode && b.ExpiryDate.Equal(expiry) {
			cp := *b
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeBatchRepo) Create(batch *entity.Batch) error {
	cp := *batch
	f.batches[batch.ID] = &cp
	return nil
}

func (f *fakeBatchRepo) Update(batch *entity.Batch) error {
	cp := *batch
	f.batches[batch.ID] = &cp
	return nil
}

func (f *fakeBatchRepo) SumActiveQuantity(shopID, productID string) (int64, error) {
	var total int64
	for _, b := range f.batches {
		if b.ShopID == shopID && b.ProductID == productID && b.Active {
			total += b.Quantity
		}
	}
	return total, nil
}

func (f *fakeBatchRepo) Delete(id string) error {
	delete(f.batches, id)
	return nil
}

type fakeProductRepo struct {
	products map[string]*entity.Product
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: map[string]*entity.Product{}}
}

func (f *fakeProductRepo) GetByID(id string) (*entity.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProductRepo) UpdateStock(id string, quantity int64) error {
	if p, ok := f.products[id]; ok {
		p.StockQuantity = quantity
	}
	return nil
}

type fakeShopRepo struct {
	shops map[string]*entity.Shop
}

func (f *fakeShopRepo) GetByID(id string) (*entity.Shop, error) {
	s, ok := f.shops[id]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

type fakePartyRepo struct {
	parties map[string]*entity.Party
}

func (f *fakePartyRepo) GetByID(id string) (*entity.Party, error) {
	p, ok := f.parties[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (f *fakePartyRepo) AdjustBalance(id string, delta decimal.Decimal) error {
	if p, ok := f.parties[id]; ok {
		p.Balance = p.Balance.Add(delta)
	}
	return nil
}

type fakeCounterRepo struct {
	counters map[string]int64
}

func newFakeCounterRepo() *fakeCounterRepo {
	return &fakeCounterRepo{counters: map[string]int64{}}
}

func (f *fakeCounterRepo) Next(shopID, documentType, periodKey string) (int64, error) {
	key := shopID + "|" + documentType + "|" + periodKey
	f.counters[key]++
	return f.counters[key], nil
}

type fakeDocRepo struct {
	docs map[string]*entity.Document
}

func newFakeDocRepo() *fakeDocRepo {
	return &fakeDocRepo{docs: map[string]*entity.Document{}}
}

func copyDoc(d *entity.Document) *entity.Document {
	cp := *d
	cp.Items = append([]entity.DocumentItem(nil), d.Items...)
	cp.LedgerEntryIDs = append([]string(nil), d.LedgerEntryIDs...)
	cp.EditHistory = append([]entity.EditRecord(nil), d.EditHistory...)
	return &cp
}

func (f *fakeDocRepo) GetByID(id string) (*entity.Document, error) {
	d, ok := f.docs[id]
	if !ok {
		return nil, nil
	}
	return copyDoc(d), nil
}

func (f *fakeDocRepo) GetByIDForUpdate(id string) (*entity.Document, error) {
	return f.GetByID(id)
}

func (f *fakeDocRepo) Create(doc *entity.Document) error {
	f.docs[doc.ID] = copyDoc(doc)
	return nil
}

func (f *fakeDocRepo) Update(doc *entity.Document) error {
	stored, ok := f.docs[doc.ID]
	if !ok {
		f.docs[doc.ID] = copyDoc(doc)
		return nil
	}
	items := stored.Items
	f.docs[doc.ID] = copyDoc(doc)
	// The item list is written through ReplaceItems / the item updater, the
	// way the SQL adapter splits the writes.
	if len(doc.Items) == 0 {
		f.docs[doc.ID].Items = items
	}
	return nil
}

func (f *fakeDocRepo) ReplaceItems(docID string, items []entity.DocumentItem) error {
	if d, ok := f.docs[docID]; ok {
		d.Items = append([]entity.DocumentItem(nil), items...)
	}
	return nil
}

func (f *fakeDocRepo) UpdateItemReturnedQuantity(itemID string, returnedQuantity int64) error {
	for _, d := range f.docs {
		for i := range d.Items {
			if d.Items[i].ID == itemID {
				d.Items[i].ReturnedQuantity = returnedQuantity
				return nil
			}
		}
	}
	return nil
}

func (f *fakeDocRepo) Delete(id string) error {
	delete(f.docs, id)
	return nil
}

func (f *fakeDocRepo) ListReturns(originalDocID string) ([]*entity.Document, error) {
	var out []*entity.Document
	for _, d := range f.docs {
		if d.OriginalDocID == originalDocID {
			out = append(out, copyDoc(d))
		}
	}
	return out, nil
}

func (f *fakeDocRepo) CountByBatch(batchID string) (int64, error) {
	var n int64
	for _, d := range f.docs {
		for _, it := range d.Items {
			if it.BatchID == batchID {
				n++
			}
		}
	}
	return n, nil
}

type fakeLedgerRepo struct {
	entries []*entity.LedgerEntry
}

func (f *fakeLedgerRepo) CreateBatch(entries []*entity.LedgerEntry) error {
	for _, e := range entries {
		cp := *e
		f.entries = append(f.entries, &cp)
	}
	return nil
}

func (f *fakeLedgerRepo) DeleteByReference(referenceType, referenceID string) error {
	kept := f.entries[:0]
	for _, e := range f.entries {
		if e.ReferenceType != referenceType || e.ReferenceID != referenceID {
			kept = append(kept, e)
		}
	}
	f.entries = kept
	return nil
}

func (f *fakeLedgerRepo) Balance(shopID string, account entity.Account, asOf time.Time) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, e := range f.entries {
		if e.ShopID != shopID || e.Account != account || e.Date.After(asOf) {
			continue
		}
		if e.Type == entity.EntryDebit {
			total = total.Add(e.Amount)
		} else {
			total = total.Sub(e.Amount)
		}
	}
	return total, nil
}

func (f *fakeLedgerRepo) ListByParty(shopID, partyType, partyID string, from, to time.Time) ([]*entity.LedgerEntry, error) {
	var out []*entity.LedgerEntry
	for _, e := range f.entries {
		if e.ShopID == shopID && e.PartyType == partyType && e.PartyID == partyID &&
			!e.Date.Before(from) && !e.Date.After(to) {
			cp := *e
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (f *fakeLedgerRepo) byReference(refType, refID string) []*entity.LedgerEntry {
	var out []*entity.LedgerEntry
	for _, e := range f.entries {
		if e.ReferenceType == refType && e.ReferenceID == refID {
			out = append(out, e)
		}
	}
	return out
}

// fakeTxRunner hands the shared fakes to the callback; there is no real
// transaction to roll back, so tests assert on observable state instead.
type fakeTxRunner struct {
	counterRepo *fakeCounterRepo
	batchRepo   *fakeBatchRepo
	productRepo *fakeProductRepo
	partyRepo   *fakePartyRepo
	docRepo     *fakeDocRepo
	ledgerRepo  *fakeLedgerRepo
}

func (f *fakeTxRunner) RunBilling(ctx context.Context, fn func(
	counterRepo repository.CounterRepository,
	batchRepo repository.BatchRepository,
	productRepo repository.ProductRepository,
	partyRepo repository.PartyRepository,
	docRepo repository.DocumentRepository,
	ledgerRepo repository.LedgerRepository,
) error) error {
	return fn(f.counterRepo, f.batchRepo, f.productRepo, f.partyRepo, f.docRepo, f.ledgerRepo)
}

// ---- wiring ----

type testEnv struct {
	coordinator *billing.Coordinator
	batches     *fakeBatchRepo
	products    *fakeProductRepo
	parties     *fakePartyRepo
	docs        *fakeDocRepo
	ledger      *fakeLedgerRepo
}

func newTestEnv() *testEnv {
	batches := newFakeBatchRepo()
	products := newFakeProductRepo()
	parties := &fakePartyRepo{parties: map[string]*entity.Party{}}
	shops := &fakeShopRepo{shops: map[string]*entity.Shop{}}
	docs := newFakeDocRepo()
	ledgerRepo := &fakeLedgerRepo{}

	shops.shops["shop-1"] = &entity.Shop{ID: "shop-1", Name: "Ravi Medicals", State: "KA"}

	tx := &fakeTxRunner{
		counterRepo: newFakeCounterRepo(),
		batchRepo:   batches,
		productRepo: products,
		partyRepo:   parties,
		docRepo:     docs,
		ledgerRepo:  ledgerRepo,
	}

	coordinator := billing.NewCoordinator(
		tx,
		inventory.NewUseCase(nil, batches, products),
		ledger.NewUseCase(ledgerRepo),
		shops,
		parties,
		products,
		docs,
		logger.New(logger.Config{Env: "production", Level: "error"}),
	)

	return &testEnv{
		coordinator: coordinator,
		batches:     batches,
		products:    products,
		parties:     parties,
		docs:        docs,
		ledger:      ledgerRepo,
	}
}

func (e *testEnv) addProduct(id string, gstRate, sellingPrice decimal.Decimal) {
	e.products.products[id] = &entity.Product{
		ID:           id,
		ShopID:       "shop-1",
		Name:         "Product " + id,
		GSTRate:      gstRate,
		SellingPrice: sellingPrice,
	}
}

func (e *testEnv) addBatch(id, productID string, qty int64, expiry time.Time, sellingPrice, purchasePrice decimal.Decimal) {
	e.batches.batches[id] = &entity.Batch{
		ID:            id,
		ShopID:        "shop-1",
		ProductID:     productID,
		BatchCode:     "BC-" + id,
		ExpiryDate:    expiry,
		SellingPrice:  sellingPrice,
		PurchasePrice: purchasePrice,
		GSTRate:       decimal.NewFromInt(5),
		Quantity:      qty,
		Active:        true,
		CreatedAt:     time.Now().Add(-time.Hour),
	}
}

func (e *testEnv) addParty(id, partyType string) {
	e.parties.parties[id] = &entity.Party{
		ID:     id,
		ShopID: "shop-1",
		Type:   partyType,
		Name:   "Party " + id,
		State:  "KA",
	}
}
