package repository

import (
	"context"

	"shopkeep/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type StoreRepository interface {
	Create(ctx context.Context, s *model.Store) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Store, error)
	List(ctx context.Context) ([]model.Store, error)
	Update(ctx context.Context, s *model.Store) error
	Deactivate(ctx context.Context, id uuid.UUID) error
}

type storeRepo struct{ db *gorm.DB }

func NewStoreRepository(db *gorm.DB) StoreRepository { return &storeRepo{db: db} }

func (r *storeRepo) Create(ctx context.Context, s *model.Store) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *storeRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Store, error) {
	var s model.Store
	err := r.db.WithContext(ctx).First(&s, id).Error
	return &s, err
}

func (r *storeRepo) List(ctx context.Context) ([]model.Store, error) {
	var stores []model.Store
	err := r.db.WithContext(ctx).Where("active = true").Order("name ASC").Find(&stores).Error
	return stores, err
}

func (r *storeRepo) Update(ctx context.Context, s *model.Store) error {
	return r.db.WithContext(ctx).Save(s).Error
}

func (r *storeRepo) Deactivate(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Store{}).Where("id = ?", id).Update("active", false).Error
}
