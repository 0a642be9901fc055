package repository

import (
	"context"

	"shopkeep/internal/dto"
	"shopkeep/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ListingRepository is the data access contract for the inventory ledger.
// The decrement path is deliberately transaction-only: callers must hold the
// sale transaction so that validation and decrement stay atomic per row.
type ListingRepository interface {
	Create(ctx context.Context, l *model.ProductListing) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.ProductListing, error)
	FindByTemplateAndStore(ctx context.Context, templateID, storeID uuid.UUID) (*model.ProductListing, error)
	ListByTemplate(ctx context.Context, templateID uuid.UUID) ([]model.ProductListing, error)
	List(ctx context.Context, filter dto.ListingFilter) ([]model.ProductListing, int64, error)
	Update(ctx context.Context, l *model.ProductListing) error
	Deactivate(ctx context.Context, id uuid.UUID) error
	DeactivateByStore(ctx context.Context, storeID uuid.UUID) error

	// Used inside transactions — callers must pass the tx instance.
	// FindByIDForUpdateTx takes a row lock (SELECT ... FOR UPDATE) so price
	// bounds and the cost snapshot are read against the same state the
	// decrement commits against.
	FindByIDForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.ProductListing, error)
	// DecrementStockTx applies `stock = stock - qty` guarded by
	// `stock >= qty`. Returns false when the guard rejected the update.
	DecrementStockTx(tx *gorm.DB, id uuid.UUID, qty int) (bool, error)
	// IncrementStockTx restores stock unconditionally (reversal path).
	IncrementStockTx(tx *gorm.DB, id uuid.UUID, qty int) error
	UpdateTx(tx *gorm.DB, l *model.ProductListing) error

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type listingRepo struct{ db *gorm.DB }

func NewListingRepository(db *gorm.DB) ListingRepository { return &listingRepo{db: db} }

func (r *listingRepo) DB() *gorm.DB { return r.db }

func (r *listingRepo) Create(ctx context.Context, l *model.ProductListing) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *listingRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.ProductListing, error) {
	var l model.ProductListing
	err := r.db.WithContext(ctx).Preload("Template").First(&l, id).Error
	return &l, err
}

func (r *listingRepo) FindByTemplateAndStore(ctx context.Context, templateID, storeID uuid.UUID) (*model.ProductListing, error) {
	var l model.ProductListing
	err := r.db.WithContext(ctx).
		Where("template_id = ? AND store_id = ?", templateID, storeID).
		First(&l).Error
	return &l, err
}

func (r *listingRepo) ListByTemplate(ctx context.Context, templateID uuid.UUID) ([]model.ProductListing, error) {
	var listings []model.ProductListing
	err := r.db.WithContext(ctx).
		Preload("Store").
		Where("template_id = ?", templateID).
		Find(&listings).Error
	return listings, err
}

func (r *listingRepo) List(ctx context.Context, filter dto.ListingFilter) ([]model.ProductListing, int64, error) {
	var listings []model.ProductListing
	var total int64

	q := r.db.WithContext(ctx).Model(&model.ProductListing{})

	// Active filter: "false" = inactive, "all" = everything, default active
	switch filter.Active {
	case "false":
		q = q.Where("active = false")
	case "all":
		// no filter
	default:
		q = q.Where("active = true")
	}
	if filter.StoreID != "" {
		q = q.Where("store_id = ?", filter.StoreID)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Preload("Template").Limit(filter.Limit).Offset(offset).Find(&listings).Error
	return listings, total, err
}

func (r *listingRepo) Update(ctx context.Context, l *model.ProductListing) error {
	return r.db.WithContext(ctx).Save(l).Error
}

func (r *listingRepo) Deactivate(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.ProductListing{}).
		Where("id = ?", id).Update("active", false).Error
}

func (r *listingRepo) DeactivateByStore(ctx context.Context, storeID uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.ProductListing{}).
		Where("store_id = ?", storeID).Update("active", false).Error
}

func (r *listingRepo) FindByIDForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.ProductListing, error) {
	var l model.ProductListing
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&l, id).Error
	return &l, err
}

func (r *listingRepo) DecrementStockTx(tx *gorm.DB, id uuid.UUID, qty int) (bool, error) {
	res := tx.Model(&model.ProductListing{}).
		Where("id = ? AND stock >= ?", id, qty).
		Update("stock", gorm.Expr("stock - ?", qty))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *listingRepo) UpdateTx(tx *gorm.DB, l *model.ProductListing) error {
	return tx.Save(l).Error
}

func (r *listingRepo) IncrementStockTx(tx *gorm.DB, id uuid.UUID, qty int) error {
	return tx.Model(&model.ProductListing{}).
		Where("id = ?", id).
		Update("stock", gorm.Expr("stock + ?", qty)).Error
}
