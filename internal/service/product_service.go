package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"shopkeep/internal/dto"
	"shopkeep/internal/model"
	"shopkeep/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type ProductService interface {
	CreateProduct(ctx context.Context, req dto.CreateProductRequest) (*dto.ProductResponse, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error)
	ListProducts(ctx context.Context, filter dto.ProductFilter) (*dto.ProductListResponse, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, req dto.UpdateProductRequest) (*dto.ProductResponse, error)
	PriceCheck(ctx context.Context, barcode string) (*dto.PriceCheckResponse, error)
}

type productService struct {
	repo        repository.ProductRepository
	listingRepo repository.ListingRepository
	storeRepo   repository.StoreRepository
	rdb         *redis.Client
}

// NewProductService builds the catalog service. rdb may be nil — the price
// check then skips its cache and always hits the database.
func NewProductService(
	repo repository.ProductRepository,
	listingRepo repository.ListingRepository,
	storeRepo repository.StoreRepository,
	rdb *redis.Client,
) ProductService {
	return &productService{repo: repo, listingRepo: listingRepo, storeRepo: storeRepo, rdb: rdb}
}

const priceCacheTTL = 60 * time.Second

func priceCacheKey(barcode string) string { return "price:" + barcode }

func (s *productService) CreateProduct(ctx context.Context, req dto.CreateProductRequest) (*dto.ProductResponse, error) {
	if _, err := s.repo.FindByBarcode(ctx, req.Barcode); err == nil {
		return nil, ErrBarcodeTaken
	}

	category := req.Category
	if category == "" {
		category = "general"
	}
	tpl := &model.ProductTemplate{
		Name:     req.Name,
		Barcode:  req.Barcode,
		Category: category,
		ImageURL: req.ImageURL,
	}
	if err := s.repo.Create(ctx, tpl); err != nil {
		return nil, err
	}

	if len(req.Assignments) > 0 {
		if err := s.reconcileAssignments(ctx, tpl.ID, req.Assignments); err != nil {
			return nil, err
		}
	}
	return s.buildResponse(ctx, tpl)
}

func (s *productService) GetProduct(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error) {
	tpl, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrProductNotFound
	}
	return s.buildResponse(ctx, tpl)
}

func (s *productService) ListProducts(ctx context.Context, filter dto.ProductFilter) (*dto.ProductListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	templates, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(templates))
	for i := range templates {
		t := &templates[i]
		items = append(items, dto.ProductResponse{
			ID:       t.ID.String(),
			Name:     t.Name,
			Barcode:  t.Barcode,
			Category: t.Category,
			ImageURL: t.ImageURL,
		})
	}
	return &dto.ProductListResponse{
		Data:  items,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

// UpdateProduct edits the template and, when Assignments is non-nil,
// reconciles the store set: listed stores are upserted, deselected stores get
// their listing deactivated. A nil Assignments leaves listings untouched.
func (s *productService) UpdateProduct(ctx context.Context, id uuid.UUID, req dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	tpl, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrProductNotFound
	}

	if req.Barcode != "" && req.Barcode != tpl.Barcode {
		if _, err := s.repo.FindByBarcode(ctx, req.Barcode); err == nil {
			return nil, ErrBarcodeTaken
		}
		tpl.Barcode = req.Barcode
	}
	if req.Name != "" {
		tpl.Name = req.Name
	}
	if req.Category != "" {
		tpl.Category = req.Category
	}
	if req.ImageURL != nil {
		tpl.ImageURL = req.ImageURL
	}
	if err := s.repo.Update(ctx, tpl); err != nil {
		return nil, err
	}

	if req.Assignments != nil {
		if err := s.reconcileAssignments(ctx, tpl.ID, *req.Assignments); err != nil {
			return nil, err
		}
	}

	s.invalidatePriceCache(ctx, tpl.Barcode)
	return s.buildResponse(ctx, tpl)
}

// reconcileAssignments makes the listing set match the desired stores.
// Deselected listings are deactivated, never deleted — sale lines keep
// pointing at them.
func (s *productService) reconcileAssignments(ctx context.Context, templateID uuid.UUID, desired []dto.StoreAssignmentRequest) error {
	wanted := make(map[uuid.UUID]dto.StoreAssignmentRequest, len(desired))
	for _, a := range desired {
		if a.MinSellPrice.GreaterThan(a.MaxSellPrice) {
			return ErrInvalidPriceBand
		}
		storeID, err := uuid.Parse(a.StoreID)
		if err != nil {
			return err
		}
		if _, err := s.storeRepo.FindByID(ctx, storeID); err != nil {
			return ErrStoreNotFound
		}
		wanted[storeID] = a
	}

	existing, err := s.listingRepo.ListByTemplate(ctx, templateID)
	if err != nil {
		return err
	}
	seen := make(map[uuid.UUID]bool, len(existing))

	for i := range existing {
		l := &existing[i]
		seen[l.StoreID] = true
		a, keep := wanted[l.StoreID]
		if !keep {
			if l.Active {
				if err := s.listingRepo.Deactivate(ctx, l.ID); err != nil {
					return err
				}
			}
			continue
		}
		l.Stock = a.Stock
		l.BuyPrice = a.BuyPrice
		l.MinSellPrice = a.MinSellPrice
		l.MaxSellPrice = a.MaxSellPrice
		l.Active = true
		if err := s.listingRepo.Update(ctx, l); err != nil {
			return err
		}
	}

	for storeID, a := range wanted {
		if seen[storeID] {
			continue
		}
		l := &model.ProductListing{
			TemplateID:   templateID,
			StoreID:      storeID,
			Stock:        a.Stock,
			BuyPrice:     a.BuyPrice,
			MinSellPrice: a.MinSellPrice,
			MaxSellPrice: a.MaxSellPrice,
			Active:       true,
		}
		if err := s.listingRepo.Create(ctx, l); err != nil {
			return err
		}
	}
	return nil
}

// PriceCheck is the public barcode lookup. Responses never expose the buy
// price or exact stock — only the sell band and an in-stock flag per store.
// Results are cached in Redis for a minute; catalog writes invalidate.
func (s *productService) PriceCheck(ctx context.Context, barcode string) (*dto.PriceCheckResponse, error) {
	if s.rdb != nil {
		if raw, err := s.rdb.Get(ctx, priceCacheKey(barcode)).Result(); err == nil {
			var cached dto.PriceCheckResponse
			if json.Unmarshal([]byte(raw), &cached) == nil {
				return &cached, nil
			}
		}
	}

	tpl, err := s.repo.FindByBarcode(ctx, barcode)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	listings, err := s.listingRepo.ListByTemplate(ctx, tpl.ID)
	if err != nil {
		return nil, err
	}

	resp := &dto.PriceCheckResponse{
		Name:     tpl.Name,
		Barcode:  tpl.Barcode,
		Category: tpl.Category,
		Listings: make([]dto.PriceCheckListing, 0, len(listings)),
	}
	for i := range listings {
		l := &listings[i]
		if !l.Active {
			continue
		}
		entry := dto.PriceCheckListing{
			MinSellPrice: l.MinSellPrice,
			MaxSellPrice: l.MaxSellPrice,
			InStock:      l.Stock > 0,
		}
		if l.Store != nil {
			entry.Store = l.Store.Name
		}
		resp.Listings = append(resp.Listings, entry)
	}

	if s.rdb != nil {
		if data, err := json.Marshal(resp); err == nil {
			if err := s.rdb.Set(ctx, priceCacheKey(barcode), data, priceCacheTTL).Err(); err != nil {
				log.Debug().Err(err).Msg("price cache write failed")
			}
		}
	}
	return resp, nil
}

func (s *productService) invalidatePriceCache(ctx context.Context, barcode string) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, priceCacheKey(barcode)).Err(); err != nil {
		log.Debug().Err(err).Str("barcode", barcode).Msg("price cache invalidation failed")
	}
}

func (s *productService) buildResponse(ctx context.Context, tpl *model.ProductTemplate) (*dto.ProductResponse, error) {
	listings, err := s.listingRepo.ListByTemplate(ctx, tpl.ID)
	if err != nil {
		return nil, err
	}
	resp := &dto.ProductResponse{
		ID:       tpl.ID.String(),
		Name:     tpl.Name,
		Barcode:  tpl.Barcode,
		Category: tpl.Category,
		ImageURL: tpl.ImageURL,
		Listings: make([]dto.ListingResponse, 0, len(listings)),
	}
	for i := range listings {
		resp.Listings = append(resp.Listings, listingToResponse(&listings[i]))
	}
	return resp, nil
}
