package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Transaction is the immutable record of one completed sale.
// Items are price snapshots — later catalog edits never rewrite history.
type Transaction struct {
	ID             uuid.UUID        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Number         int              `gorm:"uniqueIndex;not null"`
	StoreID        string           `gorm:"index;not null"`
	Subtotal       decimal.Decimal  `gorm:"type:decimal(10,2);not null"`
	Tax            decimal.Decimal  `gorm:"type:decimal(10,2);not null"`
	Total          decimal.Decimal  `gorm:"type:decimal(10,2);not null"`
	ProcessingFee  decimal.Decimal  `gorm:"type:decimal(10,2);not null;default:0"`
	PaymentMethod  string           `gorm:"not null"` // cash | card
	CashGiven      *decimal.Decimal `gorm:"type:decimal(10,2)"`
	IdempotencyKey *string          `gorm:"uniqueIndex"`
	CreatedAt      time.Time

	Items []TransactionItem `gorm:"foreignKey:TransactionID"`
}

// TransactionItem snapshots one cart line at completion time.
type TransactionItem struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TransactionID uuid.UUID `gorm:"type:uuid;index;not null"`
	UPC           *string
	Name          string           `gorm:"not null"`
	Quantity      int              `gorm:"not null"`
	UnitPrice     decimal.Decimal  `gorm:"type:decimal(10,2);not null"`
	Weight        *decimal.Decimal `gorm:"type:decimal(8,3)"`
	Subtotal      decimal.Decimal  `gorm:"type:decimal(10,2);not null"`
}
