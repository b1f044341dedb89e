package handler

import (
	"errors"
	"net/http"

	"delipos/internal/apierror"
	"delipos/internal/checkout"
	"delipos/internal/dto"
	"delipos/internal/menu"
	"delipos/internal/service"

	"github.com/gin-gonic/gin"
)

// CheckoutHandler exposes the register: scan input, cart mutation, and the
// payment flow. Every route is scoped to a store via the path.
type CheckoutHandler struct{ svc service.CheckoutService }

func NewCheckoutHandler(svc service.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{svc: svc}
}

// writeCheckoutError maps domain errors onto HTTP statuses. State machine
// violations are conflicts, not server faults.
func writeCheckoutError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, checkout.ErrWrongFlowState),
		errors.Is(err, checkout.ErrCompletionPending),
		errors.Is(err, service.ErrNothingPending),
		errors.Is(err, service.ErrNoSimilarMatch):
		c.JSON(http.StatusConflict, apierror.New(err.Error()))
	case errors.Is(err, checkout.ErrInsufficientTender),
		errors.Is(err, checkout.ErrEmptyCart),
		errors.Is(err, service.ErrWeightRequired),
		errors.Is(err, menu.ErrNoSelection),
		errors.Is(err, menu.ErrUnknownOption),
		errors.Is(err, menu.ErrOptionRequired):
		c.JSON(http.StatusUnprocessableEntity, apierror.New(err.Error()))
	default:
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
	}
}

// ─── Scan flow ───────────────────────────────────────────────────────────────

// Scan godoc
// @Summary Feed raw scanner input to the register
// @Tags checkout
// @Accept json
// @Produce json
// @Param store path string true "Store ID"
// @Param body body dto.ScanRequest true "Raw input"
// @Success 200 {object} dto.ScanResponse
// @Router /v1/stores/{store}/checkout/scan [post]
func (h *CheckoutHandler) Scan(c *gin.Context) {
	var req dto.ScanRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.ScanInput(c.Request.Context(), c.Param("store"), req.Input)
	if err != nil {
		writeCheckoutError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CheckoutHandler) ConfirmSimilar(c *gin.Context) {
	resp, err := h.svc.ConfirmSimilar(c.Request.Context(), c.Param("store"))
	if err != nil {
		writeCheckoutError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CheckoutHandler) RejectSimilar(c *gin.Context) {
	resp, err := h.svc.RejectSimilar(c.Request.Context(), c.Param("store"))
	if err != nil {
		writeCheckoutError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// CreatePending registers the unresolved UPC as a new catalog product and
// rings it up.
func (h *CheckoutHandler) CreatePending(c *gin.Context) {
	var req dto.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid JSON: "+err.Error()))
		return
	}
	// UPC comes from the pending scan, not the body
	resp, err := h.svc.AddPendingAsNew(c.Request.Context(), c.Param("store"), req)
	if err != nil {
		writeCheckoutError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CheckoutHandler) ManualPending(c *gin.Context) {
	var req dto.ManualItemRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.AddPendingAsManual(c.Request.Context(), c.Param("store"), req)
	if err != nil {
		writeCheckoutError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CheckoutHandler) CancelPending(c *gin.Context) {
	resp, err := h.svc.CancelPending(c.Request.Context(), c.Param("store"))
	if err != nil {
		writeCheckoutError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ─── Cart ────────────────────────────────────────────────────────────────────

// Cart godoc
// @Summary Current cart with derived totals
// @Tags checkout
// @Produce json
// @Param store path string true "Store ID"
// @Success 200 {object} dto.CartResponse
// @Router /v1/stores/{store}/checkout/cart [get]
func (h *CheckoutHandler) Cart(c *gin.Context) {
	resp, err := h.svc.Cart(c.Request.Context(), c.Param("store"))
	if err != nil {
		writeCheckoutError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Compose finalizes a food-menu item (options, modifiers, combo) into the cart.
func (h *CheckoutHandler) Compose(c *gin.Context) {
	var req dto.ComposeRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Compose(c.Request.Context(), c.Param("store"), req)
	if err != nil {
		writeCheckoutError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CheckoutHandler) AddOpenItem(c *gin.Context) {
	var req dto.ManualItemRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.AddOpenItem(c.Request.Context(), c.Param("store"), req)
	if err != nil {
		writeCheckoutError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CheckoutHandler) UpdateQuantity(c *gin.Context) {
	var req dto.QuantityRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.UpdateQuantity(c.Request.Context(), c.Param("store"), req)
	if err != nil {
		writeCheckoutError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// RemoveLine deletes one line. The merge key travels as a query parameter
// because composed names contain spaces and separators.
func (h *CheckoutHandler) RemoveLine(c *gin.Context) {
	key := c.Query("key")
	if key == "" {
		c.JSON(http.StatusBadRequest, apierror.New("Query parameter key is required"))
		return
	}
	resp, err := h.svc.RemoveLine(c.Request.Context(), c.Param("store"), key)
	if err != nil {
		writeCheckoutError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CheckoutHandler) ClearCart(c *gin.Context) {
	resp, err := h.svc.ClearCart(c.Request.Context(), c.Param("store"))
	if err != nil {
		writeCheckoutError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ─── Payment flow ────────────────────────────────────────────────────────────

// Begin godoc
// @Summary Start checkout for the current cart
// @Tags checkout
// @Produce json
// @Param store path string true "Store ID"
// @Success 200 {object} dto.FlowResponse
// @Failure 422 {object} apierror.APIError "Empty cart"
// @Router /v1/stores/{store}/checkout/pay [post]
func (h *CheckoutHandler) Begin(c *gin.Context) {
	resp, err := h.svc.Begin(c.Request.Context(), c.Param("store"))
	if err != nil {
		writeCheckoutError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CheckoutHandler) SelectMethod(c *gin.Context) {
	var req dto.SelectMethodRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.SelectMethod(c.Request.Context(), c.Param("store"), req.Method)
	if err != nil {
		writeCheckoutError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CheckoutHandler) Tender(c *gin.Context) {
	var req dto.TenderRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Tender(c.Request.Context(), c.Param("store"), req.AmountCents)
	if err != nil {
		writeCheckoutError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CheckoutHandler) ClearTender(c *gin.Context) {
	resp, err := h.svc.ClearTender(c.Request.Context(), c.Param("store"))
	if err != nil {
		writeCheckoutError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CheckoutHandler) SubmitCash(c *gin.Context) {
	resp, err := h.svc.SubmitCash(c.Request.Context(), c.Param("store"))
	if err != nil {
		writeCheckoutError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ConfirmCash completes the sale. The optional body carries a customer email
// for receipt delivery; an absent or empty body means print only.
func (h *CheckoutHandler) ConfirmCash(c *gin.Context) {
	var req dto.ConfirmRequest
	if c.Request.ContentLength > 0 && !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.ConfirmCash(c.Request.Context(), c.Param("store"), req.ReceiptEmail)
	if err != nil {
		writeCheckoutError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CheckoutHandler) DeclineCash(c *gin.Context) {
	resp, err := h.svc.DeclineCash(c.Request.Context(), c.Param("store"))
	if err != nil {
		writeCheckoutError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CheckoutHandler) ConfirmCard(c *gin.Context) {
	var req dto.ConfirmRequest
	if c.Request.ContentLength > 0 && !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.ConfirmCard(c.Request.Context(), c.Param("store"), req.ReceiptEmail)
	if err != nil {
		writeCheckoutError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CheckoutHandler) DeclineCard(c *gin.Context) {
	resp, err := h.svc.DeclineCard(c.Request.Context(), c.Param("store"))
	if err != nil {
		writeCheckoutError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CheckoutHandler) NextTransaction(c *gin.Context) {
	resp, err := h.svc.NextTransaction(c.Request.Context(), c.Param("store"))
	if err != nil {
		writeCheckoutError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *CheckoutHandler) CancelPayment(c *gin.Context) {
	resp, err := h.svc.CancelPayment(c.Request.Context(), c.Param("store"))
	if err != nil {
		writeCheckoutError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
