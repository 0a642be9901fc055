package service

import (
	"context"

	"shopkeep/internal/dto"
	"shopkeep/internal/model"
	"shopkeep/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InventoryService covers the catalog-management side of the inventory
// ledger: reads, upserts and manual stock corrections. The sale path talks to
// the listing repository directly inside its own transaction.
type InventoryService interface {
	GetListing(ctx context.Context, id uuid.UUID) (*dto.ListingResponse, error)
	List(ctx context.Context, filter dto.ListingFilter) (*dto.ListingListResponse, error)
	UpsertListing(ctx context.Context, req dto.UpsertListingRequest) (*dto.ListingResponse, error)
	AdjustStock(ctx context.Context, id uuid.UUID, req dto.AdjustStockRequest) (*dto.ListingResponse, error)
	ListMovements(ctx context.Context, listingID uuid.UUID, limit int) ([]dto.MovementResponse, error)
}

type inventoryService struct {
	repo         repository.ListingRepository
	movementRepo repository.StockMovementRepository
}

func NewInventoryService(repo repository.ListingRepository, movementRepo repository.StockMovementRepository) InventoryService {
	return &inventoryService{repo: repo, movementRepo: movementRepo}
}

func (s *inventoryService) GetListing(ctx context.Context, id uuid.UUID) (*dto.ListingResponse, error) {
	l, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrListingNotFound
	}
	resp := listingToResponse(l)
	return &resp, nil
}

func (s *inventoryService) List(ctx context.Context, filter dto.ListingFilter) (*dto.ListingListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	listings, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ListingResponse, 0, len(listings))
	for i := range listings {
		items = append(items, listingToResponse(&listings[i]))
	}
	return &dto.ListingListResponse{
		Data:  items,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

// UpsertListing creates or updates the (template, store) pairing. An update
// reactivates a deactivated listing; a stock change writes a restock entry to
// the movement ledger inside the same transaction.
func (s *inventoryService) UpsertListing(ctx context.Context, req dto.UpsertListingRequest) (*dto.ListingResponse, error) {
	if req.MinSellPrice.GreaterThan(req.MaxSellPrice) {
		return nil, ErrInvalidPriceBand
	}
	templateID, err := uuid.Parse(req.TemplateID)
	if err != nil {
		return nil, err
	}
	storeID, err := uuid.Parse(req.StoreID)
	if err != nil {
		return nil, err
	}

	existing, findErr := s.repo.FindByTemplateAndStore(ctx, templateID, storeID)
	if findErr != nil {
		l := &model.ProductListing{
			TemplateID:   templateID,
			StoreID:      storeID,
			Stock:        req.Stock,
			BuyPrice:     req.BuyPrice,
			MinSellPrice: req.MinSellPrice,
			MaxSellPrice: req.MaxSellPrice,
			Active:       true,
		}
		if err := s.repo.Create(ctx, l); err != nil {
			return nil, err
		}
		resp := listingToResponse(l)
		return &resp, nil
	}

	stockBefore := existing.Stock
	existing.Stock = req.Stock
	existing.BuyPrice = req.BuyPrice
	existing.MinSellPrice = req.MinSellPrice
	existing.MaxSellPrice = req.MaxSellPrice
	existing.Active = true

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		if err := s.repo.UpdateTx(tx, existing); err != nil {
			return err
		}
		if req.Stock != stockBefore {
			return s.movementRepo.CreateTx(tx, &model.StockMovement{
				ListingID:   existing.ID,
				Type:        "restock",
				Quantity:    req.Stock - stockBefore,
				StockBefore: stockBefore,
				StockAfter:  req.Stock,
				Reason:      "catalog upsert",
			})
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	resp := listingToResponse(existing)
	return &resp, nil
}

// AdjustStock applies a manual correction. Negative deltas are guarded the
// same way sales are — stock never goes below zero.
func (s *inventoryService) AdjustStock(ctx context.Context, id uuid.UUID, req dto.AdjustStockRequest) (*dto.ListingResponse, error) {
	var updated *model.ProductListing
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		l, err := s.repo.FindByIDForUpdateTx(tx, id)
		if err != nil {
			return ErrListingNotFound
		}
		if req.Delta < 0 {
			ok, err := s.repo.DecrementStockTx(tx, id, -req.Delta)
			if err != nil {
				return err
			}
			if !ok {
				return ErrInsufficientStock
			}
		} else {
			if err := s.repo.IncrementStockTx(tx, id, req.Delta); err != nil {
				return err
			}
		}

		mov := &model.StockMovement{
			ListingID:   id,
			Type:        "manual_adjust",
			Quantity:    req.Delta,
			StockBefore: l.Stock,
			StockAfter:  l.Stock + req.Delta,
			Reason:      req.Reason,
		}
		if err := s.movementRepo.CreateTx(tx, mov); err != nil {
			return err
		}
		l.Stock += req.Delta
		updated = l
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	resp := listingToResponse(updated)
	return &resp, nil
}

func (s *inventoryService) ListMovements(ctx context.Context, listingID uuid.UUID, limit int) ([]dto.MovementResponse, error) {
	movements, err := s.movementRepo.ListByListing(ctx, listingID, limit)
	if err != nil {
		return nil, err
	}
	resp := make([]dto.MovementResponse, 0, len(movements))
	for _, m := range movements {
		var ref *string
		if m.ReferenceID != nil {
			v := m.ReferenceID.String()
			ref = &v
		}
		resp = append(resp, dto.MovementResponse{
			ID:          m.ID.String(),
			ListingID:   m.ListingID.String(),
			Type:        m.Type,
			Quantity:    m.Quantity,
			StockBefore: m.StockBefore,
			StockAfter:  m.StockAfter,
			Reason:      m.Reason,
			ReferenceID: ref,
			CreatedAt:   m.CreatedAt.Format("2006-01-02T15:04:05Z"),
		})
	}
	return resp, nil
}

func listingToResponse(l *model.ProductListing) dto.ListingResponse {
	resp := dto.ListingResponse{
		ID:           l.ID.String(),
		TemplateID:   l.TemplateID.String(),
		StoreID:      l.StoreID.String(),
		Stock:        l.Stock,
		BuyPrice:     l.BuyPrice,
		MinSellPrice: l.MinSellPrice,
		MaxSellPrice: l.MaxSellPrice,
		Active:       l.Active,
	}
	if l.Template != nil {
		resp.Product = l.Template.Name
		resp.Barcode = l.Template.Barcode
	}
	return resp
}
