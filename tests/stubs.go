package tests

// In-memory repository stubs. Services run their transaction closures with a
// nil *gorm.DB in this mode, so every *Tx method here simply ignores the tx
// argument. FindByIDForUpdateTx returns a copy to mirror the snapshot
// semantics of a real SELECT ... FOR UPDATE row read.

import (
	"context"
	"errors"
	"sync"
	"time"

	"shopkeep/internal/dto"
	"shopkeep/internal/model"
	"shopkeep/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var errNotFound = errors.New("not found")

// ── Listings ─────────────────────────────────────────────────────────────────

type stubListingRepo struct {
	mu       sync.Mutex
	listings map[uuid.UUID]*model.ProductListing
}

func newStubListingRepo() *stubListingRepo {
	return &stubListingRepo{listings: make(map[uuid.UUID]*model.ProductListing)}
}

func (r *stubListingRepo) DB() *gorm.DB { return nil }

func (r *stubListingRepo) Create(_ context.Context, l *model.ProductListing) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	r.listings[l.ID] = l
	return nil
}

func (r *stubListingRepo) FindByID(_ context.Context, id uuid.UUID) (*model.ProductListing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.listings[id]
	if !ok {
		return nil, errNotFound
	}
	return l, nil
}

func (r *stubListingRepo) FindByTemplateAndStore(_ context.Context, templateID, storeID uuid.UUID) (*model.ProductListing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, l := range r.listings {
		if l.TemplateID == templateID && l.StoreID == storeID {
			return l, nil
		}
	}
	return nil, errNotFound
}

func (r *stubListingRepo) ListByTemplate(_ context.Context, templateID uuid.UUID) ([]model.ProductListing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.ProductListing
	for _, l := range r.listings {
		if l.TemplateID == templateID {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (r *stubListingRepo) List(_ context.Context, filter dto.ListingFilter) ([]model.ProductListing, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.ProductListing
	for _, l := range r.listings {
		if filter.StoreID != "" && l.StoreID.String() != filter.StoreID {
			continue
		}
		if filter.Active == "" && !l.Active {
			continue
		}
		if filter.Active == "false" && l.Active {
			continue
		}
		out = append(out, *l)
	}
	return out, int64(len(out)), nil
}

func (r *stubListingRepo) Update(_ context.Context, l *model.ProductListing) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listings[l.ID] = l
	return nil
}

func (r *stubListingRepo) UpdateTx(_ *gorm.DB, l *model.ProductListing) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listings[l.ID] = l
	return nil
}

func (r *stubListingRepo) Deactivate(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.listings[id]
	if !ok {
		return errNotFound
	}
	l.Active = false
	return nil
}

func (r *stubListingRepo) DeactivateByStore(_ context.Context, storeID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, l := range r.listings {
		if l.StoreID == storeID {
			l.Active = false
		}
	}
	return nil
}

func (r *stubListingRepo) FindByIDForUpdateTx(_ *gorm.DB, id uuid.UUID) (*model.ProductListing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.listings[id]
	if !ok {
		return nil, errNotFound
	}
	cp := *l
	return &cp, nil
}

func (r *stubListingRepo) DecrementStockTx(_ *gorm.DB, id uuid.UUID, qty int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.listings[id]
	if !ok {
		return false, errNotFound
	}
	if l.Stock < qty {
		return false, nil
	}
	l.Stock -= qty
	return true, nil
}

func (r *stubListingRepo) IncrementStockTx(_ *gorm.DB, id uuid.UUID, qty int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.listings[id]
	if !ok {
		return errNotFound
	}
	l.Stock += qty
	return nil
}

var _ repository.ListingRepository = (*stubListingRepo)(nil)

// stock returns the current stock for assertions.
func (r *stubListingRepo) stock(id uuid.UUID) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.listings[id].Stock
}

// ── Sales ────────────────────────────────────────────────────────────────────

type stubSaleRepo struct {
	mu    sync.Mutex
	sales map[uuid.UUID]*model.Sale
}

func newStubSaleRepo() *stubSaleRepo {
	return &stubSaleRepo{sales: make(map[uuid.UUID]*model.Sale)}
}

func (r *stubSaleRepo) DB() *gorm.DB { return nil }

func (r *stubSaleRepo) Create(_ context.Context, _ *gorm.DB, s *model.Sale) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	s.CreatedAt = time.Now()
	r.sales[s.ID] = s
	return nil
}

func (r *stubSaleRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Sale, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sales[id]
	if !ok {
		return nil, errNotFound
	}
	return s, nil
}

func (r *stubSaleRepo) FindByIDForUpdateTx(_ *gorm.DB, id uuid.UUID) (*model.Sale, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sales[id]
	if !ok {
		return nil, errNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *stubSaleRepo) UpdateStatusTx(_ *gorm.DB, id uuid.UUID, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sales[id]
	if !ok {
		return errNotFound
	}
	s.Status = status
	return nil
}

func (r *stubSaleRepo) List(_ context.Context, filter dto.SaleFilter) ([]model.Sale, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Sale
	for _, s := range r.sales {
		if filter.Status != "" && filter.Status != "all" && s.Status != filter.Status {
			continue
		}
		if filter.StoreID != "" && s.StoreID.String() != filter.StoreID {
			continue
		}
		out = append(out, *s)
	}
	return out, int64(len(out)), nil
}

var _ repository.SaleRepository = (*stubSaleRepo)(nil)

// ── Stock movements ──────────────────────────────────────────────────────────

type stubMovementRepo struct {
	mu        sync.Mutex
	movements []model.StockMovement
}

func (r *stubMovementRepo) CreateTx(_ *gorm.DB, m *model.StockMovement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	r.movements = append(r.movements, *m)
	return nil
}

func (r *stubMovementRepo) ListByListing(_ context.Context, listingID uuid.UUID, _ int) ([]model.StockMovement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.StockMovement
	for _, m := range r.movements {
		if m.ListingID == listingID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *stubMovementRepo) byType(typ string) []model.StockMovement {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.StockMovement
	for _, m := range r.movements {
		if m.Type == typ {
			out = append(out, m)
		}
	}
	return out
}

var _ repository.StockMovementRepository = (*stubMovementRepo)(nil)

// ── Debts ────────────────────────────────────────────────────────────────────

type stubDebtRepo struct {
	mu    sync.Mutex
	debts map[uuid.UUID]*model.Debt
}

func newStubDebtRepo() *stubDebtRepo {
	return &stubDebtRepo{debts: make(map[uuid.UUID]*model.Debt)}
}

func (r *stubDebtRepo) Create(_ context.Context, d *model.Debt) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	r.debts[d.ID] = d
	return nil
}

func (r *stubDebtRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Debt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.debts[id]
	if !ok {
		return nil, errNotFound
	}
	return d, nil
}

func (r *stubDebtRepo) List(_ context.Context, filter dto.DebtFilter) ([]model.Debt, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Debt
	for _, d := range r.debts {
		if filter.Status != "" && filter.Status != "all" && d.Status != filter.Status {
			continue
		}
		if filter.StoreID != "" && d.StoreID.String() != filter.StoreID {
			continue
		}
		out = append(out, *d)
	}
	return out, int64(len(out)), nil
}

func (r *stubDebtRepo) AddPayment(_ context.Context, id uuid.UUID, amount decimal.Decimal) (*model.Debt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.debts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	d.PaidAmount = d.PaidAmount.Add(amount)
	// Upward transition only, like the SQL implementation
	if d.PaidAmount.GreaterThanOrEqual(d.TotalAmount) {
		d.Status = "paid"
	}
	cp := *d
	return &cp, nil
}

func (r *stubDebtRepo) MarkOverdue(_ context.Context, asOf time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, d := range r.debts {
		if d.Status != "paid" && d.Status != "overdue" && d.DueDate.Before(asOf) {
			d.Status = "overdue"
			count++
		}
	}
	return count, nil
}

func (r *stubDebtRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.debts[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.debts, id)
	return nil
}

var _ repository.DebtRepository = (*stubDebtRepo)(nil)

// ── Users ────────────────────────────────────────────────────────────────────

type stubUserRepo struct {
	users map[uuid.UUID]*model.User
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[uuid.UUID]*model.User)}
}

func (r *stubUserRepo) Create(_ context.Context, u *model.User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	r.users[u.ID] = u
	return nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, errNotFound
	}
	return u, nil
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range r.users {
		if u.Username == username && u.Active {
			return u, nil
		}
	}
	return nil, errNotFound
}

func (r *stubUserRepo) List(_ context.Context) ([]model.User, error) {
	var out []model.User
	for _, u := range r.users {
		if u.Active {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *stubUserRepo) ListAll(_ context.Context) ([]model.User, error) {
	var out []model.User
	for _, u := range r.users {
		out = append(out, *u)
	}
	return out, nil
}

func (r *stubUserRepo) Update(_ context.Context, u *model.User) error {
	r.users[u.ID] = u
	return nil
}

func (r *stubUserRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	u, ok := r.users[id]
	if !ok {
		return errNotFound
	}
	u.Active = false
	return nil
}

func (r *stubUserRepo) Reactivate(_ context.Context, id uuid.UUID) error {
	u, ok := r.users[id]
	if !ok {
		return errNotFound
	}
	u.Active = true
	return nil
}

var _ repository.UserRepository = (*stubUserRepo)(nil)

// ── Stores ───────────────────────────────────────────────────────────────────

type stubStoreRepo struct {
	stores map[uuid.UUID]*model.Store
}

func newStubStoreRepo() *stubStoreRepo {
	return &stubStoreRepo{stores: make(map[uuid.UUID]*model.Store)}
}

func (r *stubStoreRepo) Create(_ context.Context, s *model.Store) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	r.stores[s.ID] = s
	return nil
}

func (r *stubStoreRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Store, error) {
	s, ok := r.stores[id]
	if !ok {
		return nil, errNotFound
	}
	return s, nil
}

func (r *stubStoreRepo) List(_ context.Context) ([]model.Store, error) {
	var out []model.Store
	for _, s := range r.stores {
		if s.Active {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *stubStoreRepo) Update(_ context.Context, s *model.Store) error {
	r.stores[s.ID] = s
	return nil
}

func (r *stubStoreRepo) Deactivate(_ context.Context, id uuid.UUID) error {
	s, ok := r.stores[id]
	if !ok {
		return errNotFound
	}
	s.Active = false
	return nil
}

var _ repository.StoreRepository = (*stubStoreRepo)(nil)

// ── Products ─────────────────────────────────────────────────────────────────

type stubProductRepo struct {
	templates map[uuid.UUID]*model.ProductTemplate
}

func newStubProductRepo() *stubProductRepo {
	return &stubProductRepo{templates: make(map[uuid.UUID]*model.ProductTemplate)}
}

func (r *stubProductRepo) Create(_ context.Context, p *model.ProductTemplate) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.templates[p.ID] = p
	return nil
}

func (r *stubProductRepo) FindByID(_ context.Context, id uuid.UUID) (*model.ProductTemplate, error) {
	p, ok := r.templates[id]
	if !ok {
		return nil, errNotFound
	}
	return p, nil
}

func (r *stubProductRepo) FindByBarcode(_ context.Context, barcode string) (*model.ProductTemplate, error) {
	for _, p := range r.templates {
		if p.Barcode == barcode {
			return p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubProductRepo) List(_ context.Context, filter dto.ProductFilter) ([]model.ProductTemplate, int64, error) {
	var out []model.ProductTemplate
	for _, p := range r.templates {
		if filter.Barcode != "" && p.Barcode != filter.Barcode {
			continue
		}
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

func (r *stubProductRepo) Update(_ context.Context, p *model.ProductTemplate) error {
	r.templates[p.ID] = p
	return nil
}

var _ repository.ProductRepository = (*stubProductRepo)(nil)

// ── Seed helpers ─────────────────────────────────────────────────────────────

func seedListing(repo *stubListingRepo, storeID uuid.UUID, stock int, buy, minSell, maxSell float64) *model.ProductListing {
	l := &model.ProductListing{
		ID:           uuid.New(),
		TemplateID:   uuid.New(),
		StoreID:      storeID,
		Stock:        stock,
		BuyPrice:     decimal.NewFromFloat(buy),
		MinSellPrice: decimal.NewFromFloat(minSell),
		MaxSellPrice: decimal.NewFromFloat(maxSell),
		Active:       true,
	}
	repo.listings[l.ID] = l
	return l
}
