package repository

import (
	"context"
	"time"

	"shopkeep/internal/dto"
	"shopkeep/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type DebtRepository interface {
	Create(ctx context.Context, d *model.Debt) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Debt, error)
	List(ctx context.Context, filter dto.DebtFilter) ([]model.Debt, int64, error)
	// AddPayment applies the increment server-side so concurrent payments
	// never lose updates, then upgrades status to "paid" when the total is
	// covered. Returns the fresh row.
	AddPayment(ctx context.Context, id uuid.UUID, amount decimal.Decimal) (*model.Debt, error)
	// MarkOverdue reclassifies every non-paid, non-overdue debt past its due
	// date. Returns the number of rows changed — zero on an immediate re-run.
	MarkOverdue(ctx context.Context, asOf time.Time) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type debtRepo struct{ db *gorm.DB }

func NewDebtRepository(db *gorm.DB) DebtRepository { return &debtRepo{db: db} }

func (r *debtRepo) Create(ctx context.Context, d *model.Debt) error {
	return r.db.WithContext(ctx).Create(d).Error
}

func (r *debtRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Debt, error) {
	var d model.Debt
	err := r.db.WithContext(ctx).Preload("Template").First(&d, id).Error
	return &d, err
}

func (r *debtRepo) List(ctx context.Context, filter dto.DebtFilter) ([]model.Debt, int64, error) {
	var debts []model.Debt
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Debt{})

	if filter.Status != "" && filter.Status != "all" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.StoreID != "" {
		q = q.Where("store_id = ?", filter.StoreID)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Order("due_date ASC").Offset(offset).Limit(filter.Limit).Find(&debts).Error
	return debts, total, err
}

func (r *debtRepo) AddPayment(ctx context.Context, id uuid.UUID, amount decimal.Decimal) (*model.Debt, error) {
	var d model.Debt
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Debt{}).Where("id = ?", id).
			Update("paid_amount", gorm.Expr("paid_amount + ?", amount))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		// Upward transition only — overdue/upcoming correction is the
		// sweep's job, never the payment path's.
		if err := tx.Model(&model.Debt{}).
			Where("id = ? AND paid_amount >= total_amount", id).
			Update("status", "paid").Error; err != nil {
			return err
		}
		return tx.First(&d, id).Error
	})
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *debtRepo) MarkOverdue(ctx context.Context, asOf time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.Debt{}).
		Where("status NOT IN ('paid', 'overdue') AND due_date < ?", asOf).
		Update("status", "overdue")
	return res.RowsAffected, res.Error
}

func (r *debtRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&model.Debt{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
