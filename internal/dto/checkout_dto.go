package dto

import (
	"delipos/internal/checkout"

	"github.com/shopspring/decimal"
)

// ─── Scan flow ───────────────────────────────────────────────────────────────

// ScanRequest carries the raw scanner input: digits, optionally terminated
// by a newline the scanner hardware appends.
type ScanRequest struct {
	Input string `json:"input" validate:"required"`
}

// ScanResponse statuses:
//
//	buffering — digits consumed, no terminator yet
//	added     — product found and added to the cart
//	similar   — a near-match UPC awaits "did you mean" confirmation
//	not_found — no match; register is blocked pending resolution
//	blocked   — scan rejected because an earlier scan is unresolved
type ScanResponse struct {
	Status  string                `json:"status"`
	Message string                `json:"message,omitempty"`
	Advice  *checkout.StockAdvice `json:"advice,omitempty"`
	Pending string                `json:"pending_upc,omitempty"`
	Similar *ProductResponse      `json:"similar,omitempty"`
	Cart    *CartResponse         `json:"cart,omitempty"`
}

type ManualItemRequest struct {
	Name  string          `json:"name"  validate:"required,min=1"`
	Price decimal.Decimal `json:"price" validate:"required"`
}

// ─── Cart mutation ───────────────────────────────────────────────────────────

// ComposeRequest finalizes a food-menu item into the cart.
type ComposeRequest struct {
	Entry string `json:"entry" validate:"required"`
	// Option is the single-select choice; for the juice flow it is the size
	// and Selections carries the ingredients.
	Option     string           `json:"option"`
	Selections map[string]int   `json:"selections"`
	Modifiers  map[string]int   `json:"modifiers"`
	CustomAdd  *decimal.Decimal `json:"custom_add_on" validate:"omitempty,gt=0"`
	Combo      bool             `json:"combo"`
	// Weight routes by-the-pound entries through the weighed flow.
	Weight *decimal.Decimal `json:"weight" validate:"omitempty,gt=0"`
	// ReplaceKey re-commits a customized item over an existing line.
	ReplaceKey string `json:"replace_key"`
}

type QuantityRequest struct {
	Key   string `json:"key"   validate:"required"`
	Delta int    `json:"delta" validate:"required"`
}

// ─── Payment flow ────────────────────────────────────────────────────────────

type SelectMethodRequest struct {
	Method string `json:"method" validate:"required,oneof=cash card"`
}

type TenderRequest struct {
	AmountCents int64 `json:"amount_cents" validate:"required,gt=0"`
}

// ConfirmRequest finalizes a cash or card payment. ReceiptEmail is optional;
// when given, the rendered receipt is emailed to the customer.
type ConfirmRequest struct {
	ReceiptEmail string `json:"receipt_email" validate:"omitempty,email"`
}

type FlowResponse struct {
	State        string               `json:"state"`
	AwaitConfirm bool                 `json:"await_confirm,omitempty"`
	Tendered     decimal.Decimal      `json:"tendered"`
	Change       decimal.Decimal      `json:"change"`
	Totals       TotalsResponse       `json:"totals"`
	Transaction  *TransactionResponse `json:"transaction,omitempty"`
}

// ─── Cart / totals views ─────────────────────────────────────────────────────

type LineResponse struct {
	Key       string           `json:"key"`
	Kind      string           `json:"kind"`
	UPC       string           `json:"upc,omitempty"`
	Name      string           `json:"name"`
	UnitPrice decimal.Decimal  `json:"unit_price"`
	Quantity  int              `json:"quantity"`
	Weight    *decimal.Decimal `json:"weight,omitempty"`
	PerPound  *decimal.Decimal `json:"per_pound,omitempty"`
	Modifiers string           `json:"modifiers,omitempty"`
	Total     decimal.Decimal  `json:"total"`
}

type TotalsResponse struct {
	Subtotal  decimal.Decimal `json:"subtotal"`
	TaxName   string          `json:"tax_name"`
	Tax       decimal.Decimal `json:"tax"`
	CashTotal decimal.Decimal `json:"cash_total"`
	CardTotal decimal.Decimal `json:"card_total"`
}

type CartResponse struct {
	Lines  []LineResponse `json:"lines"`
	Totals TotalsResponse `json:"totals"`
}
