package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"delipos/internal/dto"
	"delipos/internal/infra"
	"delipos/internal/model"
	"delipos/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// ── Stubs ─────────────────────────────────────────────────────────────────────

type sentMail struct {
	to, subject, body, pdfPath string
}

type stubMailer struct {
	err  error
	sent []sentMail
}

var _ ReceiptMailer = (*stubMailer)(nil)

func (m *stubMailer) SendReceipt(to, subject, body, pdfPath string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{to, subject, body, pdfPath})
	return nil
}

type stubReceiptRepo struct {
	receipts map[uuid.UUID]*model.Receipt
}

var _ repository.ReceiptRepository = (*stubReceiptRepo)(nil)

func newStubReceiptRepo(recs ...*model.Receipt) *stubReceiptRepo {
	r := &stubReceiptRepo{receipts: make(map[uuid.UUID]*model.Receipt)}
	for _, rec := range recs {
		r.receipts[rec.ID] = rec
	}
	return r
}

func (r *stubReceiptRepo) Create(ctx context.Context, rec *model.Receipt) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	r.receipts[rec.ID] = rec
	return nil
}

func (r *stubReceiptRepo) Update(ctx context.Context, rec *model.Receipt) error {
	r.receipts[rec.ID] = rec
	return nil
}

func (r *stubReceiptRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Receipt, error) {
	rec, ok := r.receipts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return rec, nil
}

func (r *stubReceiptRepo) FindByTransactionID(ctx context.Context, txID uuid.UUID) (*model.Receipt, error) {
	for _, rec := range r.receipts {
		if rec.TransactionID == txID {
			return rec, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubReceiptRepo) ListPendingRetries(ctx context.Context, before time.Time, limit int) ([]model.Receipt, error) {
	var due []model.Receipt
	for _, rec := range r.receipts {
		if rec.Status == model.ReceiptRendered && rec.NextRetryAt != nil && !rec.NextRetryAt.After(before) {
			due = append(due, *rec)
		}
		if len(due) == limit {
			break
		}
	}
	return due, nil
}

type stubTxnRepo struct {
	txn *model.Transaction
}

var _ repository.TransactionRepository = (*stubTxnRepo)(nil)

func (r *stubTxnRepo) Create(ctx context.Context, tx *gorm.DB, t *model.Transaction) error { return nil }

func (r *stubTxnRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Transaction, error) {
	if r.txn == nil || r.txn.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return r.txn, nil
}

func (r *stubTxnRepo) FindByIdempotencyKey(ctx context.Context, key string) (*model.Transaction, error) {
	return nil, gorm.ErrRecordNotFound
}

func (r *stubTxnRepo) NextNumber(ctx context.Context, tx *gorm.DB) (int, error) { return 0, nil }

func (r *stubTxnRepo) List(ctx context.Context, filter dto.TransactionFilter) ([]model.Transaction, int64, error) {
	return nil, 0, nil
}

func (r *stubTxnRepo) ListByDay(ctx context.Context, storeID, date string) ([]model.Transaction, error) {
	return nil, nil
}

func (r *stubTxnRepo) DB() *gorm.DB { return nil }

func closedBreaker() *infra.CircuitBreaker {
	return infra.NewCircuitBreaker(infra.CircuitBreakerConfig{
		FailureThreshold: 3,
		SuccessThreshold: 1,
		OpenTimeout:      time.Hour,
	})
}

func renderedReceipt(email, pdfPath string) *model.Receipt {
	e, p := email, pdfPath
	return &model.Receipt{
		ID:            uuid.New(),
		TransactionID: uuid.New(),
		Status:        model.ReceiptRendered,
		Email:         &e,
		PDFPath:       &p,
	}
}

func emailPayload(t *testing.T, rec *model.Receipt) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(EmailJobPayload{
		ReceiptID: rec.ID.String(),
		ToEmail:   *rec.Email,
		Subject:   "Your receipt — Transaction #1001",
		Body:      "Attached is your receipt.",
		PDFPath:   *rec.PDFPath,
	})
	require.NoError(t, err)
	return raw
}

// ── EmailWorker ───────────────────────────────────────────────────────────────

func TestEmailWorkerMarksReceiptSent(t *testing.T) {
	rec := renderedReceipt("customer@example.com", "/receipts/r.pdf")
	repo := newStubReceiptRepo(rec)
	mailer := &stubMailer{}
	w := NewEmailWorker(mailer, closedBreaker(), repo)

	w.Process(context.Background(), emailPayload(t, rec))

	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "customer@example.com", mailer.sent[0].to)
	assert.Equal(t, "/receipts/r.pdf", mailer.sent[0].pdfPath)
	assert.Equal(t, model.ReceiptSent, rec.Status)
	assert.Nil(t, rec.NextRetryAt)
	assert.Nil(t, rec.LastError)
}

func TestEmailWorkerSchedulesRetryOnSendFailure(t *testing.T) {
	rec := renderedReceipt("customer@example.com", "/receipts/r.pdf")
	repo := newStubReceiptRepo(rec)
	mailer := &stubMailer{err: errors.New("relay down")}
	w := NewEmailWorker(mailer, closedBreaker(), repo)

	w.Process(context.Background(), emailPayload(t, rec))

	assert.Equal(t, model.ReceiptRendered, rec.Status, "stays rendered for the retry loop")
	assert.Equal(t, 1, rec.RetryCount)
	require.NotNil(t, rec.NextRetryAt)
	assert.True(t, rec.NextRetryAt.After(time.Now()))
	require.NotNil(t, rec.LastError)
	assert.Contains(t, *rec.LastError, "relay down")
}

func TestEmailWorkerSkipsEmptyAddress(t *testing.T) {
	rec := renderedReceipt("customer@example.com", "/receipts/r.pdf")
	repo := newStubReceiptRepo(rec)
	mailer := &stubMailer{}
	w := NewEmailWorker(mailer, closedBreaker(), repo)

	raw, err := json.Marshal(EmailJobPayload{ReceiptID: rec.ID.String()})
	require.NoError(t, err)
	w.Process(context.Background(), raw)

	assert.Empty(t, mailer.sent)
	assert.Equal(t, model.ReceiptRendered, rec.Status)
	assert.Zero(t, rec.RetryCount)
}

// An open breaker fails fast: the mailer is never invoked, but the receipt
// still gets a retry slot so delivery resumes once the relay recovers.
func TestEmailWorkerOpenBreakerFailsFast(t *testing.T) {
	rec := renderedReceipt("customer@example.com", "/receipts/r.pdf")
	repo := newStubReceiptRepo(rec)
	mailer := &stubMailer{}
	cb := infra.NewCircuitBreaker(infra.CircuitBreakerConfig{
		FailureThreshold: 1,
		SuccessThreshold: 1,
		OpenTimeout:      time.Hour,
	})
	require.Error(t, cb.Execute(func() error { return errors.New("x") }))
	require.Equal(t, infra.CBOpen, cb.State())

	w := NewEmailWorker(mailer, cb, repo)
	w.Process(context.Background(), emailPayload(t, rec))

	assert.Empty(t, mailer.sent)
	assert.Equal(t, 1, rec.RetryCount)
	require.NotNil(t, rec.NextRetryAt)
}

// ── Retry loop ────────────────────────────────────────────────────────────────

func dueReceipt(txnID uuid.UUID) *model.Receipt {
	rec := renderedReceipt("customer@example.com", "/receipts/r.pdf")
	rec.TransactionID = txnID
	past := time.Now().Add(-time.Minute)
	rec.NextRetryAt = &past
	return rec
}

func TestRetryCronDeliversDueReceipt(t *testing.T) {
	txn := &model.Transaction{ID: uuid.New(), Number: 1001, Total: decimal.NewFromFloat(12.34)}
	rec := dueReceipt(txn.ID)
	repo := newStubReceiptRepo(rec)
	mailer := &stubMailer{}

	processRetries(context.Background(), RetryCronConfig{
		ReceiptRepo: repo,
		TxnRepo:     &stubTxnRepo{txn: txn},
		Mailer:      mailer,
		CB:          closedBreaker(),
	})

	require.Len(t, mailer.sent, 1)
	assert.Contains(t, mailer.sent[0].subject, "#1001")
	assert.Contains(t, mailer.sent[0].body, "12.34")

	stored, err := repo.FindByID(context.Background(), rec.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ReceiptSent, stored.Status)
	assert.Nil(t, stored.NextRetryAt)
}

func TestRetryCronSchedulesNextAttemptOnFailure(t *testing.T) {
	txn := &model.Transaction{ID: uuid.New(), Number: 1002, Total: decimal.NewFromFloat(5)}
	rec := dueReceipt(txn.ID)
	repo := newStubReceiptRepo(rec)
	mailer := &stubMailer{err: errors.New("relay down")}

	processRetries(context.Background(), RetryCronConfig{
		ReceiptRepo: repo,
		TxnRepo:     &stubTxnRepo{txn: txn},
		Mailer:      mailer,
		CB:          closedBreaker(),
	})

	stored, err := repo.FindByID(context.Background(), rec.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ReceiptRendered, stored.Status)
	assert.Equal(t, 1, stored.RetryCount)
	require.NotNil(t, stored.NextRetryAt)
	assert.True(t, stored.NextRetryAt.After(time.Now()))
}

func TestRetryCronSkipsTickWhileBreakerOpen(t *testing.T) {
	txn := &model.Transaction{ID: uuid.New(), Number: 1003, Total: decimal.NewFromFloat(5)}
	rec := dueReceipt(txn.ID)
	repo := newStubReceiptRepo(rec)
	mailer := &stubMailer{}
	cb := infra.NewCircuitBreaker(infra.CircuitBreakerConfig{
		FailureThreshold: 1,
		SuccessThreshold: 1,
		OpenTimeout:      time.Hour,
	})
	require.Error(t, cb.Execute(func() error { return errors.New("x") }))

	processRetries(context.Background(), RetryCronConfig{
		ReceiptRepo: repo,
		TxnRepo:     &stubTxnRepo{txn: txn},
		Mailer:      mailer,
		CB:          cb,
	})

	assert.Empty(t, mailer.sent)
	stored, err := repo.FindByID(context.Background(), rec.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ReceiptRendered, stored.Status)
}
