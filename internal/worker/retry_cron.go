package worker

// retry_cron.go
// Background goroutine that periodically re-attempts email delivery for
// receipts stuck in status='rendered' with a next_retry_at in the past.
// Uses the circuit breaker to avoid hammering a downed SMTP relay.

import (
	"context"
	"fmt"
	"time"

	"delipos/internal/infra"
	"delipos/internal/model"
	"delipos/internal/repository"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	retryTickInterval = 30 * time.Second
	retryBatchSize    = 10

	// MaxReceiptRetries is the delivery attempt ceiling before a receipt is
	// parked in the DLQ for manual inspection.
	MaxReceiptRetries = 5
)

// computeRetryBackoff doubles per attempt: 1m, 2m, 4m… capped at 30m.
func computeRetryBackoff(retryCount int) time.Duration {
	backoff := time.Minute << uint(retryCount-1)
	if backoff > 30*time.Minute {
		backoff = 30 * time.Minute
	}
	return backoff
}

// RetryCronConfig holds all dependencies for the retry goroutine.
type RetryCronConfig struct {
	ReceiptRepo repository.ReceiptRepository
	TxnRepo     repository.TransactionRepository
	Mailer      ReceiptMailer
	CB          *infra.CircuitBreaker
	RDB         *redis.Client
}

// StartRetryCron launches a background goroutine that ticks every 30s,
// queries receipts due for another delivery attempt, and sends them through
// the circuit breaker. It respects the context for graceful shutdown.
func StartRetryCron(ctx context.Context, cfg RetryCronConfig) {
	go func() {
		ticker := time.NewTicker(retryTickInterval)
		defer ticker.Stop()

		log.Info().Msg("retry_cron: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("retry_cron: shutting down")
				return
			case <-ticker.C:
				processRetries(ctx, cfg)
			}
		}
	}()
}

func processRetries(ctx context.Context, cfg RetryCronConfig) {
	// If CB is open, skip entirely — don't hammer a downed relay
	if cfg.CB.State() == infra.CBOpen {
		log.Debug().Msg("retry_cron: circuit breaker is open, skipping tick")
		return
	}

	receipts, err := cfg.ReceiptRepo.ListPendingRetries(ctx, time.Now(), retryBatchSize)
	if err != nil {
		log.Error().Err(err).Msg("retry_cron: failed to query pending retries")
		return
	}
	if len(receipts) == 0 {
		return
	}

	log.Info().Int("count", len(receipts)).Msg("retry_cron: processing pending receipts")

	for i := range receipts {
		rec := &receipts[i]

		// Check CB state before each send — it may have tripped mid-batch
		if cfg.CB.State() == infra.CBOpen {
			log.Debug().Msg("retry_cron: circuit breaker opened mid-batch, stopping")
			return
		}
		if rec.Email == nil || rec.PDFPath == nil {
			rec.NextRetryAt = nil
			_ = cfg.ReceiptRepo.Update(ctx, rec)
			continue
		}

		txn, err := cfg.TxnRepo.FindByID(ctx, rec.TransactionID)
		if err != nil {
			log.Warn().Err(err).Str("receipt_id", rec.ID.String()).Msg("retry_cron: transaction missing, skipping")
			continue
		}

		subject := fmt.Sprintf("Your receipt — Transaction #%d", txn.Number)
		body := fmt.Sprintf("Attached is your receipt.\nTotal: $%s", txn.Total.StringFixed(2))
		cbErr := cfg.CB.Execute(func() error {
			return cfg.Mailer.SendReceipt(*rec.Email, subject, body, *rec.PDFPath)
		})

		if cbErr != nil {
			rec.RetryCount++
			errMsg := cbErr.Error()
			rec.LastError = &errMsg
			nextRetry := time.Now().Add(computeRetryBackoff(rec.RetryCount))
			rec.NextRetryAt = &nextRetry

			if rec.RetryCount >= MaxReceiptRetries {
				rec.Status = model.ReceiptError
				rec.NextRetryAt = nil
				log.Error().
					Str("receipt_id", rec.ID.String()).
					Str("transaction_id", rec.TransactionID.String()).
					Int("retries", rec.RetryCount).
					Msg("retry_cron: max retries exceeded, moving to DLQ")

				payload := fmt.Sprintf(`{"receipt_id":"%s","transaction_id":"%s"}`, rec.ID, rec.TransactionID)
				SendToDLQ(ctx, cfg.RDB, QueueEmail, "email", []byte(payload),
					fmt.Sprintf("max retries (%d) exceeded: %s", MaxReceiptRetries, errMsg),
					rec.RetryCount)
			} else {
				log.Warn().
					Str("receipt_id", rec.ID.String()).
					Int("retry_count", rec.RetryCount).
					Time("next_retry_at", *rec.NextRetryAt).
					Msg("retry_cron: delivery failed, scheduled next attempt")
			}

			_ = cfg.ReceiptRepo.Update(ctx, rec)
			continue
		}

		rec.Status = model.ReceiptSent
		rec.NextRetryAt = nil
		rec.LastError = nil
		_ = cfg.ReceiptRepo.Update(ctx, rec)

		log.Info().
			Str("receipt_id", rec.ID.String()).
			Int("total_retries", rec.RetryCount).
			Msg("retry_cron: receipt delivered after retry")
	}
}
