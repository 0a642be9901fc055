package repository

import (
	"context"

	"shopkeep/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type StockMovementRepository interface {
	// CreateTx writes the movement inside the caller's transaction so the
	// ledger entry commits or rolls back with the stock change itself.
	CreateTx(tx *gorm.DB, m *model.StockMovement) error
	ListByListing(ctx context.Context, listingID uuid.UUID, limit int) ([]model.StockMovement, error)
}

type stockMovementRepo struct{ db *gorm.DB }

func NewStockMovementRepository(db *gorm.DB) StockMovementRepository {
	return &stockMovementRepo{db: db}
}

func (r *stockMovementRepo) CreateTx(tx *gorm.DB, m *model.StockMovement) error {
	return tx.Create(m).Error
}

func (r *stockMovementRepo) ListByListing(ctx context.Context, listingID uuid.UUID, limit int) ([]model.StockMovement, error) {
	if limit <= 0 {
		limit = 100
	}
	var movements []model.StockMovement
	err := r.db.WithContext(ctx).
		Where("listing_id = ?", listingID).
		Order("created_at DESC").
		Limit(limit).
		Find(&movements).Error
	return movements, err
}
