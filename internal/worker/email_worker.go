package worker

// email_worker.go
// Processes email jobs from QueueEmail, sending PDF receipts via SMTP.
// All sends go through the circuit breaker; a tripped breaker fails fast
// and the receipt retry loop reschedules delivery.

import (
	"context"
	"encoding/json"
	"time"

	"delipos/internal/infra"
	"delipos/internal/model"
	"delipos/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// EmailJobPayload is the job envelope sent to QueueEmail.
type EmailJobPayload struct {
	ReceiptID string `json:"receipt_id"`
	ToEmail   string `json:"to_email"`
	Subject   string `json:"subject"`
	Body      string `json:"body"`
	PDFPath   string `json:"pdf_path"`
}

// ReceiptMailer is the delivery dependency; infra.Mailer satisfies it.
type ReceiptMailer interface {
	SendReceipt(to, subject, body, pdfPath string) error
}

type EmailWorker struct {
	mailer      ReceiptMailer
	cb          *infra.CircuitBreaker
	receiptRepo repository.ReceiptRepository
}

func NewEmailWorker(mailer ReceiptMailer, cb *infra.CircuitBreaker, receiptRepo repository.ReceiptRepository) *EmailWorker {
	return &EmailWorker{mailer: mailer, cb: cb, receiptRepo: receiptRepo}
}

// Process sends one receipt email. Failure schedules a retry on the receipt
// record rather than re-enqueueing immediately.
func (w *EmailWorker) Process(ctx context.Context, raw json.RawMessage) {
	var payload EmailJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("email_worker: invalid payload")
		return
	}
	if payload.ToEmail == "" {
		log.Warn().Msg("email_worker: empty to_email — skipping")
		return
	}

	sendErr := w.cb.Execute(func() error {
		return w.mailer.SendReceipt(payload.ToEmail, payload.Subject, payload.Body, payload.PDFPath)
	})
	if sendErr != nil {
		log.Error().Err(sendErr).Str("to", payload.ToEmail).Msg("email_worker: failed to send email")
		w.scheduleRetry(ctx, payload.ReceiptID, sendErr.Error())
		return
	}

	w.markSent(ctx, payload.ReceiptID)
	log.Info().Str("to", payload.ToEmail).Msg("email_worker: receipt sent successfully")
}

func (w *EmailWorker) markSent(ctx context.Context, receiptID string) {
	rec := w.load(ctx, receiptID)
	if rec == nil {
		return
	}
	rec.Status = model.ReceiptSent
	rec.NextRetryAt = nil
	rec.LastError = nil
	_ = w.receiptRepo.Update(ctx, rec)
}

func (w *EmailWorker) scheduleRetry(ctx context.Context, receiptID, errMsg string) {
	rec := w.load(ctx, receiptID)
	if rec == nil {
		return
	}
	rec.RetryCount++
	rec.LastError = &errMsg
	next := time.Now().Add(computeRetryBackoff(rec.RetryCount))
	rec.NextRetryAt = &next
	_ = w.receiptRepo.Update(ctx, rec)
}

func (w *EmailWorker) load(ctx context.Context, receiptID string) *model.Receipt {
	id, err := uuid.Parse(receiptID)
	if err != nil {
		log.Warn().Str("receipt_id", receiptID).Msg("email_worker: invalid receipt_id")
		return nil
	}
	rec, err := w.receiptRepo.FindByID(ctx, id)
	if err != nil {
		log.Warn().Err(err).Str("receipt_id", receiptID).Msg("email_worker: receipt not found")
		return nil
	}
	return rec
}
