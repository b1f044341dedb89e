package dto

import "github.com/shopspring/decimal"

// TransactionFilter is bound from the query string of GET /v1/transactions.
type TransactionFilter struct {
	StoreID string `form:"store_id"`
	Date    string `form:"date"` // YYYY-MM-DD; empty = today
	Method  string `form:"method"`
	Page    int    `form:"page,default=1"   validate:"min=1"`
	Limit   int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type TransactionItemResponse struct {
	UPC       string           `json:"upc,omitempty"`
	Name      string           `json:"name"`
	Quantity  int              `json:"quantity"`
	UnitPrice decimal.Decimal  `json:"unit_price"`
	Weight    *decimal.Decimal `json:"weight,omitempty"`
	Subtotal  decimal.Decimal  `json:"subtotal"`
}

type TransactionResponse struct {
	ID            string                    `json:"id"`
	Number        int                       `json:"number"`
	StoreID       string                    `json:"store_id"`
	Items         []TransactionItemResponse `json:"items"`
	Subtotal      decimal.Decimal           `json:"subtotal"`
	Tax           decimal.Decimal           `json:"tax"`
	Total         decimal.Decimal           `json:"total"`
	ProcessingFee decimal.Decimal           `json:"processing_fee"`
	PaymentMethod string                    `json:"payment_method"`
	CashGiven     *decimal.Decimal          `json:"cash_given,omitempty"`
	Change        *decimal.Decimal          `json:"change,omitempty"`
	CreatedAt     string                    `json:"created_at"`
}

type TransactionListResponse struct {
	Data  []TransactionResponse `json:"data"`
	Total int64                 `json:"total"`
	Page  int                   `json:"page"`
	Limit int                   `json:"limit"`
}

// DailySummaryResponse aggregates one day of sales for reporting.
type DailySummaryResponse struct {
	StoreID        string                     `json:"store_id"`
	Date           string                     `json:"date"`
	Count          int                        `json:"count"`
	Gross          decimal.Decimal            `json:"gross"`
	Tax            decimal.Decimal            `json:"tax"`
	ProcessingFees decimal.Decimal            `json:"processing_fees"`
	ByMethod       map[string]decimal.Decimal `json:"by_method"`
}
