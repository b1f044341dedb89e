package checkout

import (
	"github.com/shopspring/decimal"
)

// Settings is the read-only pricing configuration for one store.
type Settings struct {
	TaxEnabled          bool
	TaxRate             decimal.Decimal // percent
	TaxName             string
	CashDiscountEnabled bool
	CashDiscountRate    decimal.Decimal // percent
}

// DefaultSettings are the documented fallbacks used when the settings
// provider is unavailable: tax on at 8%, no cash discount.
func DefaultSettings() Settings {
	return Settings{
		TaxEnabled: true,
		TaxRate:    decimal.NewFromInt(8),
		TaxName:    "Sales Tax",
	}
}

// cardTransactionFee is the fixed per-transaction fee folded into the card
// price under cash-discount pricing.
var cardTransactionFee = decimal.NewFromFloat(0.30)

var oneHundred = decimal.NewFromInt(100)

// Totals is the derived price set for a cart. CashTotal is the canonical
// "true" price; CardTotal embeds the surcharge when cash discount is on.
type Totals struct {
	Subtotal  decimal.Decimal `json:"subtotal"`
	Tax       decimal.Decimal `json:"tax"`
	CashTotal decimal.Decimal `json:"cash_total"`
	CardTotal decimal.Decimal `json:"card_total"`
}

// ComputeTotals derives totals from the cart and settings. Pure: calling it
// twice without a cart mutation yields identical results. A nil settings
// pointer uses the safe defaults of a tax-disabled, no-discount store.
func ComputeTotals(c *Cart, s *Settings) Totals {
	if s == nil {
		s = &Settings{}
	}

	subtotal := decimal.Zero
	for _, l := range c.Lines() {
		subtotal = subtotal.Add(l.Total())
	}

	tax := decimal.Zero
	if s.TaxEnabled {
		tax = subtotal.Mul(s.TaxRate).Div(oneHundred)
	}

	cash := subtotal.Add(tax)
	card := cash
	if s.CashDiscountEnabled {
		card = cash.Mul(oneHundred.Add(s.CashDiscountRate)).Div(oneHundred).Add(cardTransactionFee)
	}

	return Totals{Subtotal: subtotal, Tax: tax, CashTotal: cash, CardTotal: card}
}

// For dispatches on payment method; anything but "card" gets the cash price.
func (t Totals) For(method string) decimal.Decimal {
	if method == "card" {
		return t.CardTotal
	}
	return t.CashTotal
}

// ProcessingFee is the card surcharge recorded on the transaction:
// cashTotal × rate/100 + the fixed fee, zero for cash or when the discount
// program is off.
func ProcessingFee(t Totals, s *Settings, method string) decimal.Decimal {
	if s == nil || !s.CashDiscountEnabled || method != "card" {
		return decimal.Zero
	}
	return t.CashTotal.Mul(s.CashDiscountRate).Div(oneHundred).Add(cardTransactionFee)
}

// Cents converts a money value to integer cents, rounding at the boundary.
// All tender arithmetic happens in cents to keep change exact.
func Cents(d decimal.Decimal) int64 {
	return d.Mul(oneHundred).Round(0).IntPart()
}

// FromCents converts integer cents back to a two-decimal money value.
func FromCents(c int64) decimal.Decimal {
	return decimal.New(c, -2)
}
