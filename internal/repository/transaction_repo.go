package repository

import (
	"context"

	"delipos/internal/dto"
	"delipos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TransactionRepository interface {
	Create(ctx context.Context, tx *gorm.DB, t *model.Transaction) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Transaction, error)
	FindByIdempotencyKey(ctx context.Context, key string) (*model.Transaction, error)
	NextNumber(ctx context.Context, tx *gorm.DB) (int, error)
	List(ctx context.Context, filter dto.TransactionFilter) ([]model.Transaction, int64, error)
	ListByDay(ctx context.Context, storeID, date string) ([]model.Transaction, error)
	DB() *gorm.DB // exposes the DB for transaction creation in service layer
}

type transactionRepo struct{ db *gorm.DB }

func NewTransactionRepository(db *gorm.DB) TransactionRepository { return &transactionRepo{db: db} }

func (r *transactionRepo) DB() *gorm.DB { return r.db }

func (r *transactionRepo) Create(ctx context.Context, tx *gorm.DB, t *model.Transaction) error {
	return tx.WithContext(ctx).Create(t).Error
}

func (r *transactionRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Transaction, error) {
	var t model.Transaction
	err := r.db.WithContext(ctx).Preload("Items").First(&t, id).Error
	return &t, err
}

func (r *transactionRepo) FindByIdempotencyKey(ctx context.Context, key string) (*model.Transaction, error) {
	var t model.Transaction
	err := r.db.WithContext(ctx).Preload("Items").Where("idempotency_key = ?", key).First(&t).Error
	return &t, err
}

func (r *transactionRepo) NextNumber(ctx context.Context, tx *gorm.DB) (int, error) {
	// Uses a PostgreSQL sequence for atomic transaction number generation
	var num int
	err := tx.WithContext(ctx).Raw("SELECT nextval('transactions_number_seq')").Scan(&num).Error
	return num, err
}

func (r *transactionRepo) List(ctx context.Context, filter dto.TransactionFilter) ([]model.Transaction, int64, error) {
	var transactions []model.Transaction
	var total int64
	offset := (filter.Page - 1) * filter.Limit

	q := r.db.WithContext(ctx).Model(&model.Transaction{})

	if filter.StoreID != "" {
		q = q.Where("store_id = ?", filter.StoreID)
	}
	if filter.Method != "" {
		q = q.Where("payment_method = ?", filter.Method)
	}
	if filter.Date != "" {
		q = q.Where("DATE(created_at) = ?", filter.Date)
	} else {
		// Default: today
		q = q.Where("DATE(created_at) = CURRENT_DATE")
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := q.Preload("Items").
		Order("created_at DESC").
		Offset(offset).Limit(filter.Limit).
		Find(&transactions).Error

	return transactions, total, err
}

func (r *transactionRepo) ListByDay(ctx context.Context, storeID, date string) ([]model.Transaction, error) {
	var transactions []model.Transaction
	q := r.db.WithContext(ctx).Where("store_id = ?", storeID)
	if date != "" {
		q = q.Where("DATE(created_at) = ?", date)
	} else {
		q = q.Where("DATE(created_at) = CURRENT_DATE")
	}
	err := q.Order("created_at ASC").Find(&transactions).Error
	return transactions, err
}
