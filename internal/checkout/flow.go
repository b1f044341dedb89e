package checkout

import (
	"errors"
)

// FlowState is the payment flow machine state.
type FlowState string

const (
	FlowIdle    FlowState = "idle"
	FlowPayment FlowState = "payment" // method selection
	FlowCash    FlowState = "cash"    // tender entry (+ confirmation prompt)
	FlowChange  FlowState = "change"  // cash complete, change on screen
	FlowCard    FlowState = "card"    // card total shown for terminal entry
	FlowSuccess FlowState = "success" // card complete
)

var (
	ErrEmptyCart          = errors.New("checkout: cart is empty")
	ErrInsufficientTender = errors.New("checkout: cash given is less than the total")
	ErrWrongFlowState     = errors.New("checkout: operation not valid in current state")
	ErrCompletionPending  = errors.New("checkout: a transaction is already being processed")
)

// Flow orchestrates idle → payment → {cash | card} → {change | success} →
// idle. Tender is accumulated in integer cents; the completion callback is
// supplied by the owner and fired exactly once per sale — the processing
// flag gates double submission.
type Flow struct {
	state      FlowState
	totals     Totals
	tendered   int64 // cents
	change     int64 // cents
	awaitCash  bool  // tender accepted, confirmation prompt showing
	processing bool
}

func NewFlow() *Flow {
	return &Flow{state: FlowIdle}
}

func (f *Flow) State() FlowState { return f.state }
func (f *Flow) Totals() Totals   { return f.totals }

// TenderedCents is the cash accumulated so far.
func (f *Flow) TenderedCents() int64 { return f.tendered }

// ChangeCents is the computed change after a completed cash sale.
func (f *Flow) ChangeCents() int64 { return f.change }

// AwaitingCashConfirm reports whether the tender was accepted and the
// confirmation prompt is showing.
func (f *Flow) AwaitingCashConfirm() bool { return f.awaitCash }

// Begin starts checkout. An empty cart is a no-op error, no transition.
func (f *Flow) Begin(totals Totals, cartEmpty bool) error {
	if f.state != FlowIdle {
		return ErrWrongFlowState
	}
	if cartEmpty {
		return ErrEmptyCart
	}
	f.totals = totals
	f.state = FlowPayment
	return nil
}

// SelectCash opens tender entry.
func (f *Flow) SelectCash() error {
	if f.state != FlowPayment {
		return ErrWrongFlowState
	}
	f.state = FlowCash
	f.tendered = 0
	f.awaitCash = false
	return nil
}

// SelectCard shows the card total for manual terminal entry.
func (f *Flow) SelectCard() error {
	if f.state != FlowPayment {
		return ErrWrongFlowState
	}
	f.state = FlowCard
	return nil
}

// AddTender accumulates cash given, via quick presets or digit entry.
func (f *Flow) AddTender(cents int64) error {
	if f.state != FlowCash || f.awaitCash {
		return ErrWrongFlowState
	}
	f.tendered += cents
	return nil
}

// ClearTender resets the entered amount.
func (f *Flow) ClearTender() error {
	if f.state != FlowCash || f.awaitCash {
		return ErrWrongFlowState
	}
	f.tendered = 0
	return nil
}

// SubmitCash validates the tender. Insufficient cash is rejected in place —
// the machine stays in tender entry. Sufficient cash raises the
// confirmation prompt.
func (f *Flow) SubmitCash() error {
	if f.state != FlowCash || f.awaitCash {
		return ErrWrongFlowState
	}
	if f.tendered < Cents(f.totals.CashTotal) {
		return ErrInsufficientTender
	}
	f.awaitCash = true
	return nil
}

// ConfirmCash fires the completion callback and, on success, computes
// change in integer cents and moves to the change screen. On failure the
// machine stays put so the operator can retry.
func (f *Flow) ConfirmCash(complete func() error) error {
	if f.state != FlowCash || !f.awaitCash {
		return ErrWrongFlowState
	}
	if f.processing {
		return ErrCompletionPending
	}
	f.processing = true
	defer func() { f.processing = false }()

	if err := complete(); err != nil {
		return err
	}
	f.change = f.tendered - Cents(f.totals.CashTotal)
	f.awaitCash = false
	f.state = FlowChange
	return nil
}

// DeclineCash dismisses the confirmation prompt without losing the tender.
func (f *Flow) DeclineCash() error {
	if f.state != FlowCash || !f.awaitCash {
		return ErrWrongFlowState
	}
	f.awaitCash = false
	return nil
}

// ConfirmCard fires completion after the operator confirms the terminal
// collected payment. There is no cancelling past this point.
func (f *Flow) ConfirmCard(complete func() error) error {
	if f.state != FlowCard {
		return ErrWrongFlowState
	}
	if f.processing {
		return ErrCompletionPending
	}
	f.processing = true
	defer func() { f.processing = false }()

	if err := complete(); err != nil {
		return err
	}
	f.state = FlowSuccess
	return nil
}

// DeclineCard answers "no" to the collection prompt — back to method
// selection, nothing recorded.
func (f *Flow) DeclineCard() error {
	if f.state != FlowCard {
		return ErrWrongFlowState
	}
	f.state = FlowPayment
	return nil
}

// Next dismisses the change or success screen and returns to idle. For
// cash this is the point at which the owner clears the cart, so the change
// amount stayed inspectable until now.
func (f *Flow) Next() error {
	if f.state != FlowChange && f.state != FlowSuccess {
		return ErrWrongFlowState
	}
	f.state = FlowIdle
	f.tendered = 0
	f.change = 0
	return nil
}

// Cancel abandons payment before any completion call, preserving the cart.
func (f *Flow) Cancel() error {
	switch f.state {
	case FlowPayment, FlowCash, FlowCard:
		if f.processing {
			return ErrCompletionPending
		}
		f.state = FlowIdle
		f.tendered = 0
		f.awaitCash = false
		return nil
	default:
		return ErrWrongFlowState
	}
}
