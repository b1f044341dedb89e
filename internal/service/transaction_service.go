package service

import (
	"context"
	"time"

	"delipos/internal/checkout"
	"delipos/internal/dto"
	"delipos/internal/model"
	"delipos/internal/repository"
	"delipos/internal/worker"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CheckoutRecord is everything the checkout flow hands over at completion
// time. Lines and totals are snapshots — the cart keeps mutating after a
// cash sale until the change screen is dismissed.
type CheckoutRecord struct {
	StoreID        string
	Lines          []checkout.Line
	Totals         checkout.Totals
	Settings       checkout.Settings
	Method         string // cash | card
	CashGivenCents *int64
	IdempotencyKey *string
	ReceiptEmail   *string
}

type TransactionService interface {
	Create(ctx context.Context, rec CheckoutRecord) (*dto.TransactionResponse, error)
	List(ctx context.Context, filter dto.TransactionFilter) (*dto.TransactionListResponse, error)
}

type transactionService struct {
	repo        repository.TransactionRepository
	productRepo repository.ProductRepository
	dispatcher  *worker.Dispatcher
}

func NewTransactionService(
	repo repository.TransactionRepository,
	productRepo repository.ProductRepository,
	dispatcher *worker.Dispatcher,
) TransactionService {
	return &transactionService{repo: repo, productRepo: productRepo, dispatcher: dispatcher}
}

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// ── Create ────────────────────────────────────────────────────────────────────
// One transaction per completed sale:
//  1. Deduplicate by idempotency key (double-tap protection over the network)
//  2. Snapshot every cart line with its unit price and line subtotal
//  3. BEGIN TX: next transaction number, create record+items, decrement
//     inventory for catalog lines (negatives allowed — oversell only warns)
//  4. COMMIT
//  5. (async) dispatch receipt job, best effort

func (s *transactionService) Create(ctx context.Context, rec CheckoutRecord) (*dto.TransactionResponse, error) {
	if rec.IdempotencyKey != nil {
		if existing, err := s.repo.FindByIdempotencyKey(ctx, *rec.IdempotencyKey); err == nil {
			return transactionToResponse(existing), nil
		}
	}

	total := rec.Totals.For(rec.Method)
	fee := checkout.ProcessingFee(rec.Totals, &rec.Settings, rec.Method)

	var cashGiven *decimal.Decimal
	if rec.CashGivenCents != nil {
		v := checkout.FromCents(*rec.CashGivenCents)
		cashGiven = &v
	}

	t := model.Transaction{
		StoreID:        rec.StoreID,
		Subtotal:       rec.Totals.Subtotal.Round(2),
		Tax:            rec.Totals.Tax.Round(2),
		Total:          total.Round(2),
		ProcessingFee:  fee.Round(2),
		PaymentMethod:  rec.Method,
		CashGiven:      cashGiven,
		IdempotencyKey: rec.IdempotencyKey,
	}
	for i := range rec.Lines {
		l := rec.Lines[i]
		item := model.TransactionItem{
			Name:      l.Name,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice.Round(2),
			Subtotal:  l.Total().Round(2),
		}
		if l.UPC != "" {
			upc := l.UPC
			item.UPC = &upc
		}
		if l.Kind == checkout.LineWeighed {
			w := l.Weight
			item.Weight = &w
			item.UnitPrice = l.PerPound.Round(2)
		}
		t.Items = append(t.Items, item)
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		number, err := s.repo.NextNumber(ctx, tx)
		if err != nil {
			return err
		}
		t.Number = number
		if err := s.repo.Create(ctx, tx, &t); err != nil {
			return err
		}
		for i := range rec.Lines {
			l := rec.Lines[i]
			if l.UPC == "" {
				continue
			}
			if err := s.productRepo.AdjustInventoryByUPCTx(tx, l.UPC, -l.Quantity); err != nil {
				return err
			}
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	// Async receipt job — fire & forget
	if s.dispatcher != nil {
		payload := worker.ReceiptJobPayload{TransactionID: t.ID.String()}
		if rec.ReceiptEmail != nil {
			payload.Email = *rec.ReceiptEmail
		}
		if err := s.dispatcher.EnqueueReceipt(ctx, payload); err != nil {
			log.Warn().Err(err).Str("transaction_id", t.ID.String()).Msg("transaction: receipt enqueue failed")
		}
	}

	return transactionToResponse(&t), nil
}

func (s *transactionService) List(ctx context.Context, filter dto.TransactionFilter) (*dto.TransactionListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	transactions, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.TransactionResponse, 0, len(transactions))
	for i := range transactions {
		items = append(items, *transactionToResponse(&transactions[i]))
	}
	return &dto.TransactionListResponse{Data: items, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func transactionToResponse(t *model.Transaction) *dto.TransactionResponse {
	items := make([]dto.TransactionItemResponse, 0, len(t.Items))
	for _, item := range t.Items {
		upc := ""
		if item.UPC != nil {
			upc = *item.UPC
		}
		items = append(items, dto.TransactionItemResponse{
			UPC:       upc,
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Weight:    item.Weight,
			Subtotal:  item.Subtotal,
		})
	}
	resp := &dto.TransactionResponse{
		ID:            t.ID.String(),
		Number:        t.Number,
		StoreID:       t.StoreID,
		Items:         items,
		Subtotal:      t.Subtotal,
		Tax:           t.Tax,
		Total:         t.Total,
		ProcessingFee: t.ProcessingFee,
		PaymentMethod: t.PaymentMethod,
		CashGiven:     t.CashGiven,
		CreatedAt:     t.CreatedAt.Format(time.RFC3339),
	}
	if t.CashGiven != nil {
		change := t.CashGiven.Sub(t.Total).Round(2)
		resp.Change = &change
	}
	return resp
}
