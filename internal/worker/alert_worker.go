package worker

// Processes alert jobs from QueueAlerts: low-stock warnings after a sale
// and overdue-debt notices from the sweep. Alerts go to the configured
// shopkeeper address over SMTP, guarded by the circuit breaker so a dead
// mail server never stalls the pool.

import (
	"context"
	"encoding/json"
	"fmt"

	"shopkeep/internal/infra"

	"github.com/rs/zerolog/log"
)

// AlertJobPayload is the job envelope sent to QueueAlerts.
type AlertJobPayload struct {
	Kind         string `json:"kind"` // low_stock | debt_overdue
	ListingID    string `json:"listing_id,omitempty"`
	Stock        int    `json:"stock,omitempty"`
	DebtID       string `json:"debt_id,omitempty"`
	CustomerName string `json:"customer_name,omitempty"`
}

type AlertWorker struct {
	mailer  *infra.Mailer
	cb      *infra.CircuitBreaker
	toEmail string
}

func NewAlertWorker(mailer *infra.Mailer, cb *infra.CircuitBreaker, toEmail string) *AlertWorker {
	return &AlertWorker{mailer: mailer, cb: cb, toEmail: toEmail}
}

func (w *AlertWorker) Process(_ context.Context, raw json.RawMessage) {
	var payload AlertJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("alert_worker: invalid payload")
		return
	}
	if w.toEmail == "" {
		log.Debug().Msg("alert_worker: no alert address configured — skipping")
		return
	}

	var subject, body string
	switch payload.Kind {
	case "low_stock":
		subject = "Low stock warning"
		body = fmt.Sprintf("Listing %s is down to %d units.", payload.ListingID, payload.Stock)
	case "debt_overdue":
		subject = "Debt overdue"
		body = fmt.Sprintf("Debt %s (%s) is past its due date.", payload.DebtID, payload.CustomerName)
	default:
		log.Warn().Str("kind", payload.Kind).Msg("alert_worker: unknown alert kind")
		return
	}

	err := w.cb.Execute(func() error {
		return w.mailer.SendAlert(w.toEmail, subject, body)
	})
	if err != nil {
		log.Error().Err(err).Str("kind", payload.Kind).Msg("alert_worker: failed to send alert")
		return
	}
	log.Info().Str("kind", payload.Kind).Str("to", w.toEmail).Msg("alert_worker: alert sent")
}
