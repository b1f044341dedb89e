package worker

// receipt_worker.go
// Processes receipt jobs from QueueReceipt: renders the PDF for a completed
// transaction and, when the customer left an email, hands delivery off to
// the email queue.

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"delipos/internal/infra"
	"delipos/internal/model"
	"delipos/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ReceiptJobPayload is the job envelope sent to QueueReceipt.
type ReceiptJobPayload struct {
	TransactionID string `json:"transaction_id"`
	Email         string `json:"email,omitempty"`
}

type ReceiptWorker struct {
	receiptRepo repository.ReceiptRepository
	txnRepo     repository.TransactionRepository
	dispatcher  *Dispatcher
	storagePath string
}

func NewReceiptWorker(
	receiptRepo repository.ReceiptRepository,
	txnRepo repository.TransactionRepository,
	dispatcher *Dispatcher,
	storagePath string,
) *ReceiptWorker {
	return &ReceiptWorker{
		receiptRepo: receiptRepo,
		txnRepo:     txnRepo,
		dispatcher:  dispatcher,
		storagePath: storagePath,
	}
}

// Process handles a single receipt job:
//  1. Fetch the transaction with its items
//  2. Create the Receipt record as pending
//  3. Render the PDF with retry (disk hiccups are transient)
//  4. Mark rendered; enqueue the email job when an address was given
func (w *ReceiptWorker) Process(ctx context.Context, raw json.RawMessage) {
	var payload ReceiptJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("receipt_worker: invalid payload")
		return
	}

	txID, err := uuid.Parse(payload.TransactionID)
	if err != nil {
		log.Error().Str("transaction_id", payload.TransactionID).Msg("receipt_worker: invalid transaction_id")
		return
	}

	txn, err := w.txnRepo.FindByID(ctx, txID)
	if err != nil {
		log.Error().Err(err).Str("transaction_id", payload.TransactionID).Msg("receipt_worker: transaction not found")
		return
	}

	rec := &model.Receipt{
		TransactionID: txID,
		Status:        model.ReceiptPending,
	}
	if payload.Email != "" {
		email := payload.Email
		rec.Email = &email
	}
	if err := w.receiptRepo.Create(ctx, rec); err != nil {
		log.Error().Err(err).Str("transaction_id", payload.TransactionID).Msg("receipt_worker: failed to create receipt")
		return
	}

	var pdfPath string
	renderErr := withRetry(ctx, 3, func(attempt int) error {
		path, err := infra.GenerateReceiptPDF(txn, w.storagePath)
		if err != nil {
			log.Warn().Err(err).Int("attempt", attempt+1).
				Str("transaction_id", payload.TransactionID).
				Msg("receipt_worker: render attempt failed, retrying")
			return err
		}
		pdfPath = path
		return nil
	})
	if renderErr != nil {
		msg := renderErr.Error()
		rec.Status = model.ReceiptError
		rec.LastError = &msg
		_ = w.receiptRepo.Update(ctx, rec)
		log.Error().Err(renderErr).Str("transaction_id", payload.TransactionID).Msg("receipt_worker: render failed after all retries")
		return
	}

	rec.Status = model.ReceiptRendered
	rec.PDFPath = &pdfPath
	_ = w.receiptRepo.Update(ctx, rec)
	log.Info().Str("pdf", pdfPath).Str("transaction_id", payload.TransactionID).Msg("receipt_worker: PDF generated")

	if rec.Email == nil {
		return
	}
	emailJob := EmailJobPayload{
		ReceiptID: rec.ID.String(),
		ToEmail:   *rec.Email,
		Subject:   fmt.Sprintf("Your receipt — Transaction #%d", txn.Number),
		Body:      fmt.Sprintf("Attached is your receipt.\nTotal: $%s", txn.Total.StringFixed(2)),
		PDFPath:   pdfPath,
	}
	if err := w.dispatcher.EnqueueEmail(ctx, emailJob); err != nil {
		// The retry loop will pick it up from next_retry_at.
		next := time.Now().Add(time.Minute)
		rec.NextRetryAt = &next
		_ = w.receiptRepo.Update(ctx, rec)
		log.Warn().Err(err).Str("email", *rec.Email).Msg("receipt_worker: failed to enqueue email")
	}
}

// withRetry calls fn up to maxAttempts times with exponential backoff.
// Backoff schedule: attempt 1 = immediate, 2 = 1s, 3 = 2s.
func withRetry(ctx context.Context, maxAttempts int, fn func(attempt int) error) error {
	var lastErr error
	for i := 0; i < maxAttempts; i++ {
		if i > 0 {
			wait := time.Duration(1<<uint(i-1)) * time.Second
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}
		if err := fn(i); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return lastErr
}
