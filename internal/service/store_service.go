package service

import (
	"context"

	"shopkeep/internal/dto"
	"shopkeep/internal/model"
	"shopkeep/internal/repository"

	"github.com/google/uuid"
)

type StoreService interface {
	CreateStore(ctx context.Context, req dto.CreateStoreRequest) (*dto.StoreResponse, error)
	GetStore(ctx context.Context, id uuid.UUID) (*dto.StoreResponse, error)
	ListStores(ctx context.Context) ([]dto.StoreResponse, error)
	UpdateStore(ctx context.Context, id uuid.UUID, req dto.UpdateStoreRequest) (*dto.StoreResponse, error)
	DeactivateStore(ctx context.Context, id uuid.UUID) error
}

type storeService struct {
	repo        repository.StoreRepository
	listingRepo repository.ListingRepository
}

func NewStoreService(repo repository.StoreRepository, listingRepo repository.ListingRepository) StoreService {
	return &storeService{repo: repo, listingRepo: listingRepo}
}

func (s *storeService) CreateStore(ctx context.Context, req dto.CreateStoreRequest) (*dto.StoreResponse, error) {
	store := &model.Store{
		Name:    req.Name,
		Address: req.Address,
		Phone:   req.Phone,
		Active:  true,
	}
	if err := s.repo.Create(ctx, store); err != nil {
		return nil, err
	}
	return storeToResponse(store), nil
}

func (s *storeService) GetStore(ctx context.Context, id uuid.UUID) (*dto.StoreResponse, error) {
	store, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrStoreNotFound
	}
	return storeToResponse(store), nil
}

func (s *storeService) ListStores(ctx context.Context) ([]dto.StoreResponse, error) {
	stores, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.StoreResponse, len(stores))
	for i := range stores {
		resp[i] = *storeToResponse(&stores[i])
	}
	return resp, nil
}

func (s *storeService) UpdateStore(ctx context.Context, id uuid.UUID, req dto.UpdateStoreRequest) (*dto.StoreResponse, error) {
	store, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrStoreNotFound
	}
	if req.Name != "" {
		store.Name = req.Name
	}
	if req.Address != nil {
		store.Address = req.Address
	}
	if req.Phone != nil {
		store.Phone = req.Phone
	}
	if err := s.repo.Update(ctx, store); err != nil {
		return nil, err
	}
	return storeToResponse(store), nil
}

// DeactivateStore retires a store and every listing it carries. Nothing is
// deleted: sale and debt history keep resolving.
func (s *storeService) DeactivateStore(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return ErrStoreNotFound
	}
	if err := s.repo.Deactivate(ctx, id); err != nil {
		return err
	}
	return s.listingRepo.DeactivateByStore(ctx, id)
}

func storeToResponse(s *model.Store) *dto.StoreResponse {
	return &dto.StoreResponse{
		ID:      s.ID.String(),
		Name:    s.Name,
		Address: s.Address,
		Phone:   s.Phone,
		Active:  s.Active,
	}
}
