package checkout

import "fmt"

// AdviceKind classifies the inventory message shown after a successful add.
// None of these block the add — the register always allows oversell.
type AdviceKind string

const (
	AdviceOK       AdviceKind = "ok"
	AdviceOversold AdviceKind = "oversold" // stock at or below zero, override sale
	AdviceLow      AdviceKind = "low"      // resulting quantity exceeds stock
)

// StockAdvice is the warning computed at add time from the catalog snapshot
// and the quantity the cart will hold after the add.
type StockAdvice struct {
	Kind    AdviceKind `json:"kind"`
	Message string     `json:"message"`
}

// AdviseStock implements the inventory-aware messaging for a scan add.
func AdviseStock(p ProductRef, resultingQty int) StockAdvice {
	switch {
	case p.Inventory != nil && *p.Inventory <= 0:
		return StockAdvice{
			Kind:    AdviceOversold,
			Message: fmt.Sprintf("%s is out of stock — added as override sale", p.Name),
		}
	case p.Inventory != nil && resultingQty > *p.Inventory:
		return StockAdvice{
			Kind:    AdviceLow,
			Message: fmt.Sprintf("Only %d of %s in stock; cart now holds %d", *p.Inventory, p.Name, resultingQty),
		}
	default:
		return StockAdvice{
			Kind:    AdviceOK,
			Message: fmt.Sprintf("Added %s", p.Name),
		}
	}
}
