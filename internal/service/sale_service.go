package service

import (
	"context"
	"fmt"

	"shopkeep/internal/dto"
	"shopkeep/internal/infra"
	"shopkeep/internal/model"
	"shopkeep/internal/repository"
	"shopkeep/internal/worker"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type SaleService interface {
	SubmitSale(ctx context.Context, storeID, workerID uuid.UUID, req dto.SubmitSaleRequest) (*dto.SaleResponse, error)
	UndoSale(ctx context.Context, id, adminID uuid.UUID, reason string) error
	GetSale(ctx context.Context, id uuid.UUID) (*dto.SaleResponse, error)
	ListSales(ctx context.Context, filter dto.SaleFilter) (*dto.SaleListResponse, error)
	ReceiptPDF(ctx context.Context, id uuid.UUID) ([]byte, error)
}

type saleService struct {
	repo          repository.SaleRepository
	listingRepo   repository.ListingRepository
	movementRepo  repository.StockMovementRepository
	dispatcher    *worker.Dispatcher
	lowStockLimit int
}

func NewSaleService(
	repo repository.SaleRepository,
	listingRepo repository.ListingRepository,
	movementRepo repository.StockMovementRepository,
	dispatcher *worker.Dispatcher,
	lowStockLimit int,
) SaleService {
	return &saleService{
		repo:          repo,
		listingRepo:   listingRepo,
		movementRepo:  movementRepo,
		dispatcher:    dispatcher,
		lowStockLimit: lowStockLimit,
	}
}

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// ── SubmitSale ────────────────────────────────────────────────────────────────
// Full ACID commit:
//   1. Lock every referenced listing (FOR UPDATE) and validate the whole sale
//      against the locked rows — store ownership, active flag, price band,
//      stock sufficiency — before touching anything.
//   2. Guarded decrement per line (`stock = stock - qty WHERE stock >= qty`),
//      build items with the cost snapshot read under the lock.
//   3. Persist the Sale header + items + stock movements.
//   4. COMMIT; any failure anywhere rolls back every decrement.
//   5. (async) enqueue low-stock alerts, best-effort.
//
// The row locks serialize concurrent sales per listing, so for any schedule of
// concurrent submissions the final stock is the initial stock minus the sum of
// the successful quantities, and never negative.

func (s *saleService) SubmitSale(ctx context.Context, storeID, workerID uuid.UUID, req dto.SubmitSaleRequest) (*dto.SaleResponse, error) {
	type saleLine struct {
		listingID uuid.UUID
		qty       int
		unitPrice decimal.Decimal
	}

	lines := make([]saleLine, 0, len(req.Lines))
	for i, ln := range req.Lines {
		lid, err := uuid.Parse(ln.ListingID)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid listing_id: %w", i+1, err)
		}
		if ln.Quantity <= 0 {
			return nil, fmt.Errorf("line %d: quantity must be positive", i+1)
		}
		lines = append(lines, saleLine{listingID: lid, qty: ln.Quantity, unitPrice: ln.UnitPrice})
	}

	var sale model.Sale
	type lowStock struct {
		listingID uuid.UUID
		stock     int
	}
	var alerts []lowStock

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		type resolvedLine struct {
			saleLine
			listing *model.ProductListing
		}

		// Phase 1: lock + validate every line. The same listing may appear on
		// several lines, so stock sufficiency is checked cumulatively.
		resolved := make([]resolvedLine, 0, len(lines))
		needed := make(map[uuid.UUID]int)
		for i, ln := range lines {
			l, err := s.listingRepo.FindByIDForUpdateTx(tx, ln.listingID)
			if err != nil {
				return fmt.Errorf("line %d: %w", i+1, ErrListingNotFound)
			}
			if !l.Active {
				return fmt.Errorf("line %d: %w", i+1, ErrListingInactive)
			}
			if l.StoreID != storeID {
				return fmt.Errorf("line %d: %w", i+1, ErrListingWrongStore)
			}
			if ln.unitPrice.LessThan(l.MinSellPrice) || ln.unitPrice.GreaterThan(l.MaxSellPrice) {
				return fmt.Errorf("line %d: %w", i+1, ErrPriceOutOfRange)
			}
			needed[l.ID] += ln.qty
			if l.Stock < needed[l.ID] {
				return fmt.Errorf("line %d: %w", i+1, ErrInsufficientStock)
			}
			resolved = append(resolved, resolvedLine{saleLine: ln, listing: l})
		}

		// Phase 2: decrement and accumulate totals. The conditional guard is
		// kept even though the rows are locked — it is the last line of
		// defense against overselling.
		total := decimal.Zero
		profit := decimal.Zero
		sale = model.Sale{
			StoreID:  storeID,
			WorkerID: workerID,
			Status:   "active",
		}
		for i, r := range resolved {
			ok, err := s.listingRepo.DecrementStockTx(tx, r.listing.ID, r.qty)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("line %d: %w", i+1, ErrInsufficientStock)
			}
			qty := decimal.NewFromInt(int64(r.qty))
			lineTotal := r.unitPrice.Mul(qty)
			total = total.Add(lineTotal)
			profit = profit.Add(r.unitPrice.Sub(r.listing.BuyPrice).Mul(qty))

			sale.Items = append(sale.Items, model.SaleItem{
				ListingID:        r.listing.ID,
				Quantity:         r.qty,
				UnitPrice:        r.unitPrice,
				BuyPriceSnapshot: r.listing.BuyPrice,
				LineTotal:        lineTotal,
			})
		}
		sale.TotalPrice = total
		sale.Profit = profit

		if err := s.repo.Create(ctx, tx, &sale); err != nil {
			return err
		}

		// Movement ledger — one entry per line, inside the same tx
		stockAfter := make(map[uuid.UUID]int)
		for _, r := range resolved {
			stockAfter[r.listing.ID] = r.listing.Stock
		}
		for _, r := range resolved {
			before := stockAfter[r.listing.ID]
			after := before - r.qty
			stockAfter[r.listing.ID] = after

			saleRef := sale.ID
			mov := &model.StockMovement{
				ListingID:   r.listing.ID,
				Type:        "sale",
				Quantity:    -r.qty,
				StockBefore: before,
				StockAfter:  after,
				ReferenceID: &saleRef,
			}
			if err := s.movementRepo.CreateTx(tx, mov); err != nil {
				return err
			}
		}

		for id, after := range stockAfter {
			if after <= s.lowStockLimit {
				alerts = append(alerts, lowStock{listingID: id, stock: after})
			}
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	// Low-stock alerts are best-effort — fire & forget
	if s.dispatcher != nil {
		for _, a := range alerts {
			_ = s.dispatcher.EnqueueAlert(ctx, worker.AlertJobPayload{
				Kind:      "low_stock",
				ListingID: a.listingID.String(),
				Stock:     a.stock,
			})
		}
	}

	return saleToResponse(&sale), nil
}

// ── UndoSale ──────────────────────────────────────────────────────────────────
// Compensating reversal: restores sold quantities and flips the status to
// "undone". The record and its items are never deleted. A second undo on the
// same sale is rejected, never silently double-restocked.

func (s *saleService) UndoSale(ctx context.Context, id, adminID uuid.UUID, reason string) error {
	return runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		sale, err := s.repo.FindByIDForUpdateTx(tx, id)
		if err != nil {
			return ErrSaleNotFound
		}
		if sale.Status == "undone" {
			return ErrSaleAlreadyUndone
		}

		for _, item := range sale.Items {
			l, err := s.listingRepo.FindByIDForUpdateTx(tx, item.ListingID)
			if err != nil {
				return fmt.Errorf("restore listing %s: %w", item.ListingID, err)
			}
			// Unconditional increment — reversal always succeeds
			if err := s.listingRepo.IncrementStockTx(tx, item.ListingID, item.Quantity); err != nil {
				return err
			}

			saleRef := sale.ID
			mov := &model.StockMovement{
				ListingID:   item.ListingID,
				Type:        "undo_restore",
				Quantity:    item.Quantity,
				StockBefore: l.Stock,
				StockAfter:  l.Stock + item.Quantity,
				Reason:      fmt.Sprintf("sale undone by %s — %s", adminID, reason),
				ReferenceID: &saleRef,
			}
			if err := s.movementRepo.CreateTx(tx, mov); err != nil {
				return err
			}
		}

		return s.repo.UpdateStatusTx(tx, id, "undone")
	})
}

func (s *saleService) GetSale(ctx context.Context, id uuid.UUID) (*dto.SaleResponse, error) {
	sale, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrSaleNotFound
	}
	return saleToResponse(sale), nil
}

// ListSales returns a paginated list, filtered by store, date and status.
// Default filter: today's active sales.
func (s *saleService) ListSales(ctx context.Context, filter dto.SaleFilter) (*dto.SaleListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	if filter.Status == "" {
		filter.Status = "active"
	}
	sales, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.SaleResponse, 0, len(sales))
	for i := range sales {
		items = append(items, *saleToResponse(&sales[i]))
	}
	return &dto.SaleListResponse{
		Data:  items,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

// ReceiptPDF renders the sale as a thermal-style PDF receipt.
func (s *saleService) ReceiptPDF(ctx context.Context, id uuid.UUID) ([]byte, error) {
	sale, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrSaleNotFound
	}
	storeName := "shopkeep"
	if sale.Store != nil {
		storeName = sale.Store.Name
	}
	return infra.RenderSaleReceipt(sale, storeName)
}

func saleToResponse(sale *model.Sale) *dto.SaleResponse {
	items := make([]dto.SaleItemResponse, 0, len(sale.Items))
	for _, item := range sale.Items {
		name := ""
		if item.Listing != nil && item.Listing.Template != nil {
			name = item.Listing.Template.Name
		}
		items = append(items, dto.SaleItemResponse{
			ListingID:        item.ListingID.String(),
			Product:          name,
			Quantity:         item.Quantity,
			UnitPrice:        item.UnitPrice,
			BuyPriceSnapshot: item.BuyPriceSnapshot,
			LineTotal:        item.LineTotal,
		})
	}
	return &dto.SaleResponse{
		ID:         sale.ID.String(),
		StoreID:    sale.StoreID.String(),
		WorkerID:   sale.WorkerID.String(),
		Items:      items,
		TotalPrice: sale.TotalPrice,
		Profit:     sale.Profit,
		Status:     sale.Status,
		CreatedAt:  sale.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}
