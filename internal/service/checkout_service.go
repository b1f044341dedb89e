package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"delipos/internal/checkout"
	"delipos/internal/dto"
	"delipos/internal/menu"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

var (
	ErrNothingPending = errors.New("checkout: no unresolved scan to act on")
	ErrNoSimilarMatch = errors.New("checkout: no similar product pending")
	ErrWeightRequired = errors.New("checkout: weight is required for by-the-pound items")
)

// CheckoutService owns one register session per store: the cart, the scan
// state machine, and the payment flow. All mutations for a store serialize
// on the session mutex; two terminals hammering the same store never
// interleave a scan with a payment confirmation.
type CheckoutService interface {
	// Scan flow
	ScanInput(ctx context.Context, storeID, input string) (*dto.ScanResponse, error)
	ConfirmSimilar(ctx context.Context, storeID string) (*dto.ScanResponse, error)
	RejectSimilar(ctx context.Context, storeID string) (*dto.ScanResponse, error)
	AddPendingAsNew(ctx context.Context, storeID string, req dto.CreateProductRequest) (*dto.ScanResponse, error)
	AddPendingAsManual(ctx context.Context, storeID string, req dto.ManualItemRequest) (*dto.ScanResponse, error)
	CancelPending(ctx context.Context, storeID string) (*dto.ScanResponse, error)

	// Cart mutation
	Compose(ctx context.Context, storeID string, req dto.ComposeRequest) (*dto.CartResponse, error)
	AddOpenItem(ctx context.Context, storeID string, req dto.ManualItemRequest) (*dto.CartResponse, error)
	UpdateQuantity(ctx context.Context, storeID string, req dto.QuantityRequest) (*dto.CartResponse, error)
	RemoveLine(ctx context.Context, storeID, key string) (*dto.CartResponse, error)
	ClearCart(ctx context.Context, storeID string) (*dto.CartResponse, error)
	Cart(ctx context.Context, storeID string) (*dto.CartResponse, error)

	// Payment flow
	Begin(ctx context.Context, storeID string) (*dto.FlowResponse, error)
	SelectMethod(ctx context.Context, storeID, method string) (*dto.FlowResponse, error)
	Tender(ctx context.Context, storeID string, cents int64) (*dto.FlowResponse, error)
	ClearTender(ctx context.Context, storeID string) (*dto.FlowResponse, error)
	SubmitCash(ctx context.Context, storeID string) (*dto.FlowResponse, error)
	ConfirmCash(ctx context.Context, storeID, receiptEmail string) (*dto.FlowResponse, error)
	DeclineCash(ctx context.Context, storeID string) (*dto.FlowResponse, error)
	ConfirmCard(ctx context.Context, storeID, receiptEmail string) (*dto.FlowResponse, error)
	DeclineCard(ctx context.Context, storeID string) (*dto.FlowResponse, error)
	NextTransaction(ctx context.Context, storeID string) (*dto.FlowResponse, error)
	CancelPayment(ctx context.Context, storeID string) (*dto.FlowResponse, error)
}

// session is the live register state for one store.
type session struct {
	mu      sync.Mutex
	cart    *checkout.Cart
	scanner *checkout.Scanner
	flow    *checkout.Flow

	similar *checkout.ProductRef // near-match awaiting "did you mean"
	method  string               // selected for the in-flight payment
	idemKey string               // one key per payment attempt, reused on retry
	lastTxn *dto.TransactionResponse
}

type checkoutService struct {
	mu       sync.Mutex
	sessions map[string]*session

	catalog   CatalogService
	settings  SettingsService
	txns      TransactionService
	cartStore checkout.CartStore
	debounce  time.Duration
}

func NewCheckoutService(
	catalog CatalogService,
	settings SettingsService,
	txns TransactionService,
	cartStore checkout.CartStore,
	debounce time.Duration,
) CheckoutService {
	return &checkoutService{
		sessions:  make(map[string]*session),
		catalog:   catalog,
		settings:  settings,
		txns:      txns,
		cartStore: cartStore,
		debounce:  debounce,
	}
}

// acquire returns the store's session with its mutex held. First touch
// rehydrates the cart from the persisted snapshot.
func (s *checkoutService) acquire(ctx context.Context, storeID string) *session {
	s.mu.Lock()
	sess, ok := s.sessions[storeID]
	if !ok {
		sess = &session{
			cart:    checkout.NewCart(storeID, s.cartStore),
			scanner: checkout.NewScanner(s.debounce),
			flow:    checkout.NewFlow(),
		}
		s.sessions[storeID] = sess
	}
	s.mu.Unlock()

	sess.mu.Lock()
	if !ok {
		if err := sess.cart.Rehydrate(ctx); err != nil {
			log.Warn().Err(err).Str("store_id", storeID).Msg("checkout: cart rehydrate failed, starting empty")
		}
	}
	return sess
}

// ─── Scan flow ───────────────────────────────────────────────────────────────

func (s *checkoutService) ScanInput(ctx context.Context, storeID, input string) (*dto.ScanResponse, error) {
	sess := s.acquire(ctx, storeID)
	defer sess.mu.Unlock()

	resp := &dto.ScanResponse{Status: "buffering"}
	for _, r := range input {
		if r == '\n' || r == '\r' {
			code, err := sess.scanner.Enter()
			if err != nil {
				return s.blockedResponse(sess), nil
			}
			if code == "" {
				continue
			}
			resp = s.resolveScan(ctx, sess, code)
			continue
		}
		if err := sess.scanner.Key(r); err != nil {
			return s.blockedResponse(sess), nil
		}
	}
	if resp.Status == "buffering" || resp.Status == "added" {
		resp.Cart = s.cartResponse(ctx, sess, storeID)
	}
	return resp, nil
}

// resolveScan runs lookup, then the similarity fallback, and blocks the
// scanner when the code stays unresolved.
func (s *checkoutService) resolveScan(ctx context.Context, sess *session, code string) *dto.ScanResponse {
	if ref, err := s.catalog.LookupByUPC(ctx, code); err == nil {
		line := sess.cart.AddProduct(ctx, *ref)
		advice := checkout.AdviseStock(*ref, line.Quantity)
		return &dto.ScanResponse{Status: "added", Message: advice.Message, Advice: &advice}
	}

	if ref, _ := s.catalog.FindSimilar(ctx, code); ref != nil {
		sess.scanner.Block(code)
		sess.similar = ref
		return &dto.ScanResponse{
			Status:  "similar",
			Message: fmt.Sprintf("No product for %s. Did you mean %s?", code, ref.Name),
			Pending: code,
			Similar: &dto.ProductResponse{UPC: ref.UPC, Name: ref.Name, Price: ref.Price},
		}
	}

	sess.scanner.Block(code)
	sess.similar = nil
	return &dto.ScanResponse{
		Status:  "not_found",
		Message: fmt.Sprintf("No product found for %s", code),
		Pending: code,
	}
}

func (s *checkoutService) blockedResponse(sess *session) *dto.ScanResponse {
	resp := &dto.ScanResponse{
		Status:  "blocked",
		Message: "Resolve the pending product before scanning again",
		Pending: sess.scanner.Pending(),
	}
	if sess.similar != nil {
		resp.Similar = &dto.ProductResponse{UPC: sess.similar.UPC, Name: sess.similar.Name, Price: sess.similar.Price}
	}
	return resp
}

func (s *checkoutService) ConfirmSimilar(ctx context.Context, storeID string) (*dto.ScanResponse, error) {
	sess := s.acquire(ctx, storeID)
	defer sess.mu.Unlock()

	if sess.scanner.State() != checkout.ScanBlocked {
		return nil, ErrNothingPending
	}
	if sess.similar == nil {
		return nil, ErrNoSimilarMatch
	}
	ref := *sess.similar
	line := sess.cart.AddProduct(ctx, ref)
	advice := checkout.AdviseStock(ref, line.Quantity)
	sess.similar = nil
	sess.scanner.Unblock()
	return &dto.ScanResponse{
		Status:  "added",
		Message: advice.Message,
		Advice:  &advice,
		Cart:    s.cartResponse(ctx, sess, storeID),
	}, nil
}

// RejectSimilar dismisses the suggestion. The register stays blocked — the
// scanned code is still unresolved and the operator must create, key in, or
// cancel.
func (s *checkoutService) RejectSimilar(ctx context.Context, storeID string) (*dto.ScanResponse, error) {
	sess := s.acquire(ctx, storeID)
	defer sess.mu.Unlock()

	if sess.scanner.State() != checkout.ScanBlocked {
		return nil, ErrNothingPending
	}
	sess.similar = nil
	return &dto.ScanResponse{
		Status:  "not_found",
		Message: fmt.Sprintf("No product found for %s", sess.scanner.Pending()),
		Pending: sess.scanner.Pending(),
	}, nil
}

// AddPendingAsNew creates the catalog product for the unresolved UPC and adds
// it to the cart in one move.
func (s *checkoutService) AddPendingAsNew(ctx context.Context, storeID string, req dto.CreateProductRequest) (*dto.ScanResponse, error) {
	sess := s.acquire(ctx, storeID)
	defer sess.mu.Unlock()

	if sess.scanner.State() != checkout.ScanBlocked {
		return nil, ErrNothingPending
	}
	req.UPC = sess.scanner.Pending()
	created, err := s.catalog.Create(ctx, req)
	if err != nil {
		return nil, err
	}
	inv := created.Inventory
	ref := checkout.ProductRef{UPC: created.UPC, Name: created.Name, Price: created.Price, Inventory: &inv}
	line := sess.cart.AddProduct(ctx, ref)
	advice := checkout.AdviseStock(ref, line.Quantity)
	sess.similar = nil
	sess.scanner.Unblock()
	return &dto.ScanResponse{
		Status:  "added",
		Message: advice.Message,
		Advice:  &advice,
		Cart:    s.cartResponse(ctx, sess, storeID),
	}, nil
}

// AddPendingAsManual rings the unresolved code up as a one-off priced item
// without touching the catalog.
func (s *checkoutService) AddPendingAsManual(ctx context.Context, storeID string, req dto.ManualItemRequest) (*dto.ScanResponse, error) {
	sess := s.acquire(ctx, storeID)
	defer sess.mu.Unlock()

	if sess.scanner.State() != checkout.ScanBlocked {
		return nil, ErrNothingPending
	}
	sess.cart.AddOpen(ctx, req.Name, req.Price)
	sess.similar = nil
	sess.scanner.Unblock()
	return &dto.ScanResponse{
		Status:  "added",
		Message: fmt.Sprintf("Added %s", req.Name),
		Cart:    s.cartResponse(ctx, sess, storeID),
	}, nil
}

// CancelPending drops the unresolved scan entirely.
func (s *checkoutService) CancelPending(ctx context.Context, storeID string) (*dto.ScanResponse, error) {
	sess := s.acquire(ctx, storeID)
	defer sess.mu.Unlock()

	if sess.scanner.State() != checkout.ScanBlocked {
		return nil, ErrNothingPending
	}
	sess.similar = nil
	sess.scanner.Unblock()
	return &dto.ScanResponse{
		Status: "buffering",
		Cart:   s.cartResponse(ctx, sess, storeID),
	}, nil
}

// ─── Cart mutation ───────────────────────────────────────────────────────────

func (s *checkoutService) Compose(ctx context.Context, storeID string, req dto.ComposeRequest) (*dto.CartResponse, error) {
	sess := s.acquire(ctx, storeID)
	defer sess.mu.Unlock()

	entry, err := menu.FindEntry(req.Entry)
	if err != nil {
		return nil, err
	}

	// By-the-pound entries bypass the option composer.
	if entry.ByWeight {
		if req.Weight == nil || !req.Weight.IsPositive() {
			return nil, ErrWeightRequired
		}
		sess.cart.AddWeighed(ctx, entry.Name, entry.PerPound, *req.Weight)
		return s.cartResponse(ctx, sess, storeID), nil
	}

	item, err := composeItem(entry, req)
	if err != nil {
		return nil, err
	}

	if len(req.Modifiers) > 0 || req.CustomAdd != nil {
		if err := menu.ApplyModifiers(item, entry.ModifierGroup, req.Modifiers, req.CustomAdd); err != nil {
			return nil, err
		}
	}

	var line *checkout.Line
	if req.ReplaceKey != "" {
		line, err = sess.cart.ReplaceComposed(ctx, req.ReplaceKey, item)
		if err != nil {
			return nil, err
		}
	} else {
		line = sess.cart.AddComposed(ctx, item)
	}

	if req.Combo {
		if _, err := sess.cart.AddCombo(ctx, line.Key()); err != nil {
			return nil, err
		}
	}
	return s.cartResponse(ctx, sess, storeID), nil
}

// composeItem walks the option composer for one request. The juice flow is
// the single two-stage path: the size selection prices the item and the
// ingredient counts are confirmed in the same call.
func composeItem(entry *menu.MenuEntry, req dto.ComposeRequest) (*menu.Item, error) {
	if !entry.RequiresOptions {
		return &menu.Item{Name: entry.Name, Price: entry.Price}, nil
	}

	cfg, err := menu.ConfigFor(entry.OptionKind)
	if err != nil {
		return nil, err
	}
	comp, err := menu.NewComposer(entry, cfg)
	if err != nil {
		return nil, err
	}

	if comp.MultiSelect() {
		comp.Seed(req.Selections)
		return comp.Confirm()
	}

	item, err := comp.SelectOption(req.Option)
	if err != nil {
		return nil, err
	}
	if item != nil {
		return item, nil
	}
	// Juice hand-off: size accepted, now the ingredient multi-select.
	comp.Seed(req.Selections)
	return comp.Confirm()
}

func (s *checkoutService) AddOpenItem(ctx context.Context, storeID string, req dto.ManualItemRequest) (*dto.CartResponse, error) {
	sess := s.acquire(ctx, storeID)
	defer sess.mu.Unlock()
	sess.cart.AddOpen(ctx, req.Name, req.Price)
	return s.cartResponse(ctx, sess, storeID), nil
}

func (s *checkoutService) UpdateQuantity(ctx context.Context, storeID string, req dto.QuantityRequest) (*dto.CartResponse, error) {
	sess := s.acquire(ctx, storeID)
	defer sess.mu.Unlock()
	if err := sess.cart.UpdateQuantity(ctx, req.Key, req.Delta); err != nil {
		return nil, err
	}
	return s.cartResponse(ctx, sess, storeID), nil
}

func (s *checkoutService) RemoveLine(ctx context.Context, storeID, key string) (*dto.CartResponse, error) {
	sess := s.acquire(ctx, storeID)
	defer sess.mu.Unlock()
	if err := sess.cart.Remove(ctx, key); err != nil {
		return nil, err
	}
	return s.cartResponse(ctx, sess, storeID), nil
}

func (s *checkoutService) ClearCart(ctx context.Context, storeID string) (*dto.CartResponse, error) {
	sess := s.acquire(ctx, storeID)
	defer sess.mu.Unlock()
	sess.cart.Clear(ctx)
	return s.cartResponse(ctx, sess, storeID), nil
}

func (s *checkoutService) Cart(ctx context.Context, storeID string) (*dto.CartResponse, error) {
	sess := s.acquire(ctx, storeID)
	defer sess.mu.Unlock()
	return s.cartResponse(ctx, sess, storeID), nil
}

// ─── Payment flow ────────────────────────────────────────────────────────────

func (s *checkoutService) Begin(ctx context.Context, storeID string) (*dto.FlowResponse, error) {
	sess := s.acquire(ctx, storeID)
	defer sess.mu.Unlock()

	settings := s.settings.Pricing(ctx, storeID)
	totals := checkout.ComputeTotals(sess.cart, &settings)
	if err := sess.flow.Begin(totals, sess.cart.Empty()); err != nil {
		return nil, err
	}
	sess.method = ""
	sess.idemKey = uuid.NewString()
	sess.lastTxn = nil
	return s.flowResponse(sess, storeID), nil
}

func (s *checkoutService) SelectMethod(ctx context.Context, storeID, method string) (*dto.FlowResponse, error) {
	sess := s.acquire(ctx, storeID)
	defer sess.mu.Unlock()

	var err error
	switch method {
	case "cash":
		err = sess.flow.SelectCash()
	case "card":
		err = sess.flow.SelectCard()
	default:
		err = fmt.Errorf("checkout: unknown payment method %q", method)
	}
	if err != nil {
		return nil, err
	}
	sess.method = method
	return s.flowResponse(sess, storeID), nil
}

func (s *checkoutService) Tender(ctx context.Context, storeID string, cents int64) (*dto.FlowResponse, error) {
	sess := s.acquire(ctx, storeID)
	defer sess.mu.Unlock()
	if err := sess.flow.AddTender(cents); err != nil {
		return nil, err
	}
	return s.flowResponse(sess, storeID), nil
}

func (s *checkoutService) ClearTender(ctx context.Context, storeID string) (*dto.FlowResponse, error) {
	sess := s.acquire(ctx, storeID)
	defer sess.mu.Unlock()
	if err := sess.flow.ClearTender(); err != nil {
		return nil, err
	}
	return s.flowResponse(sess, storeID), nil
}

func (s *checkoutService) SubmitCash(ctx context.Context, storeID string) (*dto.FlowResponse, error) {
	sess := s.acquire(ctx, storeID)
	defer sess.mu.Unlock()
	if err := sess.flow.SubmitCash(); err != nil {
		return nil, err
	}
	return s.flowResponse(sess, storeID), nil
}

// ConfirmCash records the sale and moves to the change screen. The cart is
// deliberately NOT cleared here: the line items stay visible behind the
// change amount until the operator taps Next Transaction.
func (s *checkoutService) ConfirmCash(ctx context.Context, storeID, receiptEmail string) (*dto.FlowResponse, error) {
	sess := s.acquire(ctx, storeID)
	defer sess.mu.Unlock()

	err := sess.flow.ConfirmCash(func() error {
		tendered := sess.flow.TenderedCents()
		return s.record(ctx, sess, storeID, "cash", &tendered, receiptEmail)
	})
	if err != nil {
		return nil, err
	}
	return s.flowResponse(sess, storeID), nil
}

func (s *checkoutService) DeclineCash(ctx context.Context, storeID string) (*dto.FlowResponse, error) {
	sess := s.acquire(ctx, storeID)
	defer sess.mu.Unlock()
	if err := sess.flow.DeclineCash(); err != nil {
		return nil, err
	}
	return s.flowResponse(sess, storeID), nil
}

// ConfirmCard records the sale and clears the cart immediately — there is no
// change to count, so the success screen needs nothing from the lines.
func (s *checkoutService) ConfirmCard(ctx context.Context, storeID, receiptEmail string) (*dto.FlowResponse, error) {
	sess := s.acquire(ctx, storeID)
	defer sess.mu.Unlock()

	err := sess.flow.ConfirmCard(func() error {
		return s.record(ctx, sess, storeID, "card", nil, receiptEmail)
	})
	if err != nil {
		return nil, err
	}
	sess.cart.Clear(ctx)
	return s.flowResponse(sess, storeID), nil
}

func (s *checkoutService) DeclineCard(ctx context.Context, storeID string) (*dto.FlowResponse, error) {
	sess := s.acquire(ctx, storeID)
	defer sess.mu.Unlock()
	if err := sess.flow.DeclineCard(); err != nil {
		return nil, err
	}
	return s.flowResponse(sess, storeID), nil
}

// NextTransaction dismisses the change or success screen. For a cash sale
// this is the point the cart clears.
func (s *checkoutService) NextTransaction(ctx context.Context, storeID string) (*dto.FlowResponse, error) {
	sess := s.acquire(ctx, storeID)
	defer sess.mu.Unlock()

	wasCash := sess.method == "cash"
	if err := sess.flow.Next(); err != nil {
		return nil, err
	}
	if wasCash {
		sess.cart.Clear(ctx)
	}
	sess.method = ""
	sess.idemKey = ""
	sess.lastTxn = nil
	return s.flowResponse(sess, storeID), nil
}

func (s *checkoutService) CancelPayment(ctx context.Context, storeID string) (*dto.FlowResponse, error) {
	sess := s.acquire(ctx, storeID)
	defer sess.mu.Unlock()

	if err := sess.flow.Cancel(); err != nil {
		return nil, err
	}
	sess.method = ""
	sess.idemKey = ""
	return s.flowResponse(sess, storeID), nil
}

// record persists the completed sale. Called inside the flow's completion
// gate, so it runs at most once concurrently per session; the idempotency
// key catches retries after a timeout that actually committed.
func (s *checkoutService) record(ctx context.Context, sess *session, storeID, method string, cashCents *int64, receiptEmail string) error {
	settings := s.settings.Pricing(ctx, storeID)
	key := sess.idemKey
	rec := CheckoutRecord{
		StoreID:  storeID,
		Lines:    sess.cart.Lines(),
		Totals:   sess.flow.Totals(),
		Settings: settings,
		Method:   method,
	}
	if key != "" {
		rec.IdempotencyKey = &key
	}
	if cashCents != nil {
		c := *cashCents
		rec.CashGivenCents = &c
	}
	if receiptEmail != "" {
		e := receiptEmail
		rec.ReceiptEmail = &e
	}
	txn, err := s.txns.Create(ctx, rec)
	if err != nil {
		return err
	}
	sess.lastTxn = txn
	return nil
}

// ─── View builders ───────────────────────────────────────────────────────────

func (s *checkoutService) cartResponse(ctx context.Context, sess *session, storeID string) *dto.CartResponse {
	settings := s.settings.Pricing(ctx, storeID)
	totals := checkout.ComputeTotals(sess.cart, &settings)

	lines := sess.cart.Lines()
	out := make([]dto.LineResponse, 0, len(lines))
	for i := range lines {
		l := lines[i]
		lr := dto.LineResponse{
			Key:       l.Key(),
			Kind:      string(l.Kind),
			UPC:       l.UPC,
			Name:      l.Name,
			UnitPrice: l.UnitPrice,
			Quantity:  l.Quantity,
			Modifiers: menu.ModifierSummary(l.Modifiers),
			Total:     l.Total().Round(2),
		}
		if l.Kind == checkout.LineWeighed {
			w, pp := l.Weight, l.PerPound
			lr.Weight = &w
			lr.PerPound = &pp
		}
		out = append(out, lr)
	}
	return &dto.CartResponse{Lines: out, Totals: totalsResponse(totals, &settings)}
}

func (s *checkoutService) flowResponse(sess *session, storeID string) *dto.FlowResponse {
	totals := sess.flow.Totals()
	settings := checkout.DefaultSettings()
	return &dto.FlowResponse{
		State:        string(sess.flow.State()),
		AwaitConfirm: sess.flow.AwaitingCashConfirm(),
		Tendered:     checkout.FromCents(sess.flow.TenderedCents()),
		Change:       checkout.FromCents(sess.flow.ChangeCents()),
		Totals:       totalsResponse(totals, &settings),
		Transaction:  sess.lastTxn,
	}
}

func totalsResponse(t checkout.Totals, s *checkout.Settings) dto.TotalsResponse {
	name := "Tax"
	if s != nil && s.TaxName != "" {
		name = s.TaxName
	}
	return dto.TotalsResponse{
		Subtotal:  t.Subtotal.Round(2),
		TaxName:   name,
		Tax:       t.Tax.Round(2),
		CashTotal: t.CashTotal.Round(2),
		CardTotal: t.CardTotal.Round(2),
	}
}
