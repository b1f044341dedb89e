package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// StoreSettings is the per-store pricing configuration read by the checkout
// engine. One row per store id.
type StoreSettings struct {
	StoreID             string          `gorm:"primaryKey"`
	TaxEnabled          bool            `gorm:"not null;default:true"`
	TaxRate             decimal.Decimal `gorm:"type:decimal(5,2);not null;default:8"`
	TaxName             string          `gorm:"not null;default:'Sales Tax'"`
	CashDiscountEnabled bool            `gorm:"not null;default:false"`
	CashDiscountRate    decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
	UpdatedAt           time.Time
}
