package service

import (
	"context"
	"time"

	"shopkeep/internal/dto"
	"shopkeep/internal/model"
	"shopkeep/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// Clock supplies "now" to everything date-sensitive, so tests can travel in
// time. Production wiring passes time.Now.
type Clock func() time.Time

type DebtService interface {
	CreateDebt(ctx context.Context, req dto.CreateDebtRequest) (*dto.DebtResponse, error)
	GetDebt(ctx context.Context, id uuid.UUID) (*dto.DebtResponse, error)
	RecordPayment(ctx context.Context, id uuid.UUID, req dto.RecordPaymentRequest) (*dto.DebtResponse, error)
	ListDebts(ctx context.Context, filter dto.DebtFilter) (*dto.DebtListResponse, error)
	SweepOverdue(ctx context.Context, asOf time.Time) (int64, error)
	DeleteDebt(ctx context.Context, id uuid.UUID) error
}

type debtService struct {
	repo  repository.DebtRepository
	clock Clock
}

func NewDebtService(repo repository.DebtRepository, clock Clock) DebtService {
	if clock == nil {
		clock = time.Now
	}
	return &debtService{repo: repo, clock: clock}
}

const dueDateLayout = "2006-01-02"

// deriveDebtStatus is evaluated once at creation. "paid" wins over everything;
// a due date strictly before today means "overdue"; due today is "upcoming".
func deriveDebtStatus(total, paid decimal.Decimal, due, now time.Time) string {
	if paid.GreaterThanOrEqual(total) {
		return "paid"
	}
	if due.Before(startOfDay(now)) {
		return "overdue"
	}
	return "upcoming"
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func (s *debtService) CreateDebt(ctx context.Context, req dto.CreateDebtRequest) (*dto.DebtResponse, error) {
	storeID, err := uuid.Parse(req.StoreID)
	if err != nil {
		return nil, err
	}
	due, err := time.Parse(dueDateLayout, req.DueDate)
	if err != nil {
		return nil, ErrInvalidDueDate
	}

	var templateID *uuid.UUID
	if req.TemplateID != nil {
		tid, err := uuid.Parse(*req.TemplateID)
		if err != nil {
			return nil, err
		}
		templateID = &tid
	}

	debt := &model.Debt{
		StoreID:      storeID,
		CustomerName: req.CustomerName,
		PhoneNumber:  req.PhoneNumber,
		TotalAmount:  req.TotalAmount,
		PaidAmount:   req.PaidAmount,
		DueDate:      due,
		Status:       deriveDebtStatus(req.TotalAmount, req.PaidAmount, due, s.clock()),
		Notes:        req.Notes,
		TemplateID:   templateID,
	}
	if err := s.repo.Create(ctx, debt); err != nil {
		return nil, err
	}
	return debtToResponse(debt), nil
}

func (s *debtService) GetDebt(ctx context.Context, id uuid.UUID) (*dto.DebtResponse, error) {
	debt, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, ErrDebtNotFound
	}
	return debtToResponse(debt), nil
}

// RecordPayment adds to the paid amount atomically. Only the upward
// transition to "paid" is applied here; a stale "upcoming" on a now-overdue
// debt stays until the sweep corrects it. That asymmetry mirrors the ledger
// this system replaced and is pinned by tests — change it there first.
// Overpayment is allowed: repeated partial payments may push paid_amount past
// total_amount (credit in the customer's favor).
func (s *debtService) RecordPayment(ctx context.Context, id uuid.UUID, req dto.RecordPaymentRequest) (*dto.DebtResponse, error) {
	if !req.Amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	debt, err := s.repo.AddPayment(ctx, id, req.Amount)
	if err != nil {
		return nil, ErrDebtNotFound
	}
	return debtToResponse(debt), nil
}

// ListDebts sweeps first, then reads — callers always see up-to-date
// overdue classification.
func (s *debtService) ListDebts(ctx context.Context, filter dto.DebtFilter) (*dto.DebtListResponse, error) {
	if _, err := s.SweepOverdue(ctx, s.clock()); err != nil {
		return nil, err
	}

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	debts, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.DebtResponse, 0, len(debts))
	for i := range debts {
		items = append(items, *debtToResponse(&debts[i]))
	}
	return &dto.DebtListResponse{
		Data:  items,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

func (s *debtService) SweepOverdue(ctx context.Context, asOf time.Time) (int64, error) {
	count, err := s.repo.MarkOverdue(ctx, startOfDay(asOf))
	if err != nil {
		return 0, err
	}
	if count > 0 {
		log.Info().Int64("count", count).Msg("debts reclassified overdue")
	}
	return count, nil
}

func (s *debtService) DeleteDebt(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return ErrDebtNotFound
	}
	return nil
}

func debtToResponse(d *model.Debt) *dto.DebtResponse {
	var templateID *string
	if d.TemplateID != nil {
		v := d.TemplateID.String()
		templateID = &v
	}
	remaining := d.TotalAmount.Sub(d.PaidAmount)
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}
	return &dto.DebtResponse{
		ID:           d.ID.String(),
		StoreID:      d.StoreID.String(),
		CustomerName: d.CustomerName,
		PhoneNumber:  d.PhoneNumber,
		TotalAmount:  d.TotalAmount,
		PaidAmount:   d.PaidAmount,
		Remaining:    remaining,
		DueDate:      d.DueDate.Format(dueDateLayout),
		Status:       d.Status,
		Notes:        d.Notes,
		TemplateID:   templateID,
		CreatedAt:    d.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}
