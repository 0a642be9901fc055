package worker

// Background goroutine that periodically reclassifies past-due debts to
// "overdue" and enqueues an alert per tick that moved anything. Read paths
// also sweep on demand; this cron just keeps the data fresh for anyone
// querying the tables directly.

import (
	"context"
	"time"

	"shopkeep/internal/dto"

	"github.com/rs/zerolog/log"
)

// DebtSweeper is the slice of the debt service the cron needs. Declared here
// so the service layer can depend on this package for dispatching without a
// cycle the other way.
type DebtSweeper interface {
	SweepOverdue(ctx context.Context, asOf time.Time) (int64, error)
	ListDebts(ctx context.Context, filter dto.DebtFilter) (*dto.DebtListResponse, error)
}

// SweepCronConfig holds all dependencies for the sweep goroutine.
type SweepCronConfig struct {
	Debts      DebtSweeper
	Dispatcher *Dispatcher
	Interval   time.Duration
}

// StartSweepCron launches a background goroutine that ticks on the configured
// interval and runs the overdue sweep. It respects the context for graceful
// shutdown.
func StartSweepCron(ctx context.Context, cfg SweepCronConfig) {
	if cfg.Interval <= 0 {
		cfg.Interval = 15 * time.Minute
	}
	go func() {
		ticker := time.NewTicker(cfg.Interval)
		defer ticker.Stop()

		log.Info().Dur("interval", cfg.Interval).Msg("sweep_cron: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("sweep_cron: shutting down")
				return
			case <-ticker.C:
				runSweep(ctx, cfg)
			}
		}
	}()
}

func runSweep(ctx context.Context, cfg SweepCronConfig) {
	count, err := cfg.Debts.SweepOverdue(ctx, time.Now())
	if err != nil {
		log.Error().Err(err).Msg("sweep_cron: sweep failed")
		return
	}
	if count == 0 {
		return
	}
	log.Info().Int64("count", count).Msg("sweep_cron: debts moved to overdue")

	if cfg.Dispatcher == nil {
		return
	}
	// One per-tick notice is enough; the shopkeeper reviews the debt list.
	debts, err := cfg.Debts.ListDebts(ctx, dto.DebtFilter{Status: "overdue", Page: 1, Limit: 1})
	if err != nil || len(debts.Data) == 0 {
		return
	}
	d := debts.Data[0]
	_ = cfg.Dispatcher.EnqueueAlert(ctx, AlertJobPayload{
		Kind:         "debt_overdue",
		DebtID:       d.ID,
		CustomerName: d.CustomerName,
	})
}
