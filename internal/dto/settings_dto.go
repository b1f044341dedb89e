package dto

import "github.com/shopspring/decimal"

type SettingsResponse struct {
	StoreID             string          `json:"store_id"`
	TaxEnabled          bool            `json:"tax_enabled"`
	TaxRate             decimal.Decimal `json:"tax_rate"`
	TaxName             string          `json:"tax_name"`
	CashDiscountEnabled bool            `json:"cash_discount_enabled"`
	CashDiscountRate    decimal.Decimal `json:"cash_discount_rate"`
}

type UpdateSettingsRequest struct {
	TaxEnabled          *bool            `json:"tax_enabled"`
	TaxRate             *decimal.Decimal `json:"tax_rate"    validate:"omitempty,min=0,max=100"`
	TaxName             *string          `json:"tax_name"    validate:"omitempty,min=1"`
	CashDiscountEnabled *bool            `json:"cash_discount_enabled"`
	CashDiscountRate    *decimal.Decimal `json:"cash_discount_rate" validate:"omitempty,min=0,max=100"`
}
