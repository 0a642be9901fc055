package repository

import (
	"context"

	"shopkeep/internal/dto"
	"shopkeep/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProductRepository interface {
	Create(ctx context.Context, p *model.ProductTemplate) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.ProductTemplate, error)
	FindByBarcode(ctx context.Context, barcode string) (*model.ProductTemplate, error)
	List(ctx context.Context, filter dto.ProductFilter) ([]model.ProductTemplate, int64, error)
	Update(ctx context.Context, p *model.ProductTemplate) error
}

type productRepo struct{ db *gorm.DB }

func NewProductRepository(db *gorm.DB) ProductRepository { return &productRepo{db: db} }

func (r *productRepo) Create(ctx context.Context, p *model.ProductTemplate) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *productRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.ProductTemplate, error) {
	var p model.ProductTemplate
	err := r.db.WithContext(ctx).First(&p, id).Error
	return &p, err
}

func (r *productRepo) FindByBarcode(ctx context.Context, barcode string) (*model.ProductTemplate, error) {
	var p model.ProductTemplate
	err := r.db.WithContext(ctx).Where("barcode = ?", barcode).First(&p).Error
	return &p, err
}

func (r *productRepo) List(ctx context.Context, filter dto.ProductFilter) ([]model.ProductTemplate, int64, error) {
	var templates []model.ProductTemplate
	var total int64

	q := r.db.WithContext(ctx).Model(&model.ProductTemplate{})

	if filter.Barcode != "" {
		q = q.Where("barcode = ?", filter.Barcode)
	}
	if filter.Name != "" {
		q = q.Where("name ILIKE ?", "%"+filter.Name+"%")
	}
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Order("name ASC").Limit(filter.Limit).Offset(offset).Find(&templates).Error
	return templates, total, err
}

func (r *productRepo) Update(ctx context.Context, p *model.ProductTemplate) error {
	return r.db.WithContext(ctx).Save(p).Error
}
