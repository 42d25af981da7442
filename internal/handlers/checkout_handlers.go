package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vetaris/storefront-golang/internal/cart"
	"github.com/vetaris/storefront-golang/internal/checkout"
	"github.com/vetaris/storefront-golang/internal/middleware"
)

//
// --- Checkout Handlers ---
//

const (
	msgInvalidCard   = "Please enter a valid card number."
	msgOrderInFlight = "Your order is already being submitted"
)

// wizard finds the visitor's running checkout or answers for them.
func (h *Handlers) wizard(c *gin.Context) (*checkout.Wizard, bool) {
	w, ok := h.Wizards.Get(middleware.SessionID(c))
	if !ok {
		c.JSON(http.StatusConflict, gin.H{"error": "Checkout has not been started", "redirect": "/checkout"})
		return nil, false
	}
	return w, true
}

// EnterCheckout is the handler for GET /checkout
// It starts a fresh wizard, replacing any earlier one. An empty cart
// never gets a wizard and is sent back to the catalog.
func (h *Handlers) EnterCheckout(c *gin.Context) {
	sid := middleware.SessionID(c)
	store := h.cartStore(c)

	// 1. --- An order already on its way keeps its wizard ---
	if cur, ok := h.Wizards.Get(sid); ok && cur.State() == checkout.Submitting {
		submissionInFlight(c, cur)
		return
	}

	// 2. --- Enter the wizard ---
	w, err := checkout.Enter(c.Request.Context(), store, h.Backend,
		checkout.WithRedirectDelay(h.CheckoutRedirectDelay),
		checkout.WithLogger(h.Log),
	)
	if errors.Is(err, checkout.ErrEmptyCart) {
		h.Wizards.Discard(sid)
		c.Redirect(http.StatusSeeOther, checkout.CatalogPath)
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not start checkout"})
		return
	}
	if cur, ok := h.Wizards.Replace(sid, w); !ok {
		submissionInFlight(c, cur)
		return
	}

	// 3. --- Render the first step beside the order summary ---
	c.JSON(http.StatusOK, gin.H{
		"state":   w.State(),
		"address": w.Draft().Address,
		"summary": cart.RenderSummary(store.Load(c.Request.Context()), h.CurrencySuffix),
		"preview": checkout.Preview(checkout.Payment{}),
	})
}

func submissionInFlight(c *gin.Context, w *checkout.Wizard) {
	c.JSON(http.StatusConflict, gin.H{"error": msgOrderInFlight, "state": w.State()})
}

// SubmitAddress is the handler for POST /checkout/address
func (h *Handlers) SubmitAddress(c *gin.Context) {
	w, ok := h.wizard(c)
	if !ok {
		return
	}

	var input checkout.Address
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	err := w.SubmitAddress(input)
	switch {
	case errors.Is(err, checkout.ErrInvalidAddress):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "state": w.State()})
		return
	case err != nil:
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "state": w.State()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"state":   w.State(),
		"address": w.Draft().Address,
	})
}

// BackToAddress is the handler for POST /checkout/back
func (h *Handlers) BackToAddress(c *gin.Context) {
	w, ok := h.wizard(c)
	if !ok {
		return
	}

	if err := w.Back(); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "state": w.State()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"state":   w.State(),
		"address": w.Draft().Address,
	})
}

// SubmitPayment is the handler for POST /checkout/payment
// It places the order. The backend call is bound to this request, so a
// visitor who leaves mid-submission cancels it. The visitor's lock is
// held throughout so cart changes made meanwhile land after the cart is
// cleared instead of being wiped by it.
func (h *Handlers) SubmitPayment(c *gin.Context) {
	sid := middleware.SessionID(c)
	w, ok := h.wizard(c)
	if !ok {
		return
	}
	if w.State() == checkout.Submitting {
		submissionInFlight(c, w)
		return
	}

	// 1. --- Bind Input ---
	var input checkout.Payment
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	// 2. --- Submit ---
	unlock := h.locks.lock(sid)
	out, err := w.SubmitPayment(h.backendCtx(c), input)
	unlock()
	switch {
	case errors.Is(err, checkout.ErrInvalidCardNumber):
		c.JSON(http.StatusBadRequest, gin.H{"error": msgInvalidCard, "state": w.State()})
		return
	case errors.Is(err, checkout.ErrSubmissionInFlight):
		submissionInFlight(c, w)
		return
	case errors.Is(err, checkout.ErrEmptyCart):
		h.Wizards.DiscardIf(sid, w)
		c.JSON(http.StatusOK, gin.H{"notice": cart.EmptyMessage, "redirect": out.Redirect})
		return
	case err != nil:
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "state": w.State()})
		return
	}

	// 3. --- Report the outcome ---
	switch {
	case out.State == checkout.Succeeded:
		h.Wizards.DiscardIf(sid, w)
		c.JSON(http.StatusOK, gin.H{
			"outcome":           out.State,
			"state":             w.State(),
			"notice":            out.Notice,
			"order":             out.Confirmation,
			"redirect":          out.Redirect,
			"redirect_after_ms": out.After.Milliseconds(),
		})
	case out.Redirect != "":
		h.Wizards.DiscardIf(sid, w)
		c.JSON(http.StatusUnauthorized, gin.H{
			"outcome":  out.State,
			"error":    out.Error,
			"redirect": out.Redirect,
		})
	default:
		c.JSON(http.StatusBadGateway, gin.H{
			"outcome": out.State,
			"state":   w.State(),
			"error":   out.Error,
		})
	}
}

// FormatPayment is the handler for POST /checkout/format
// It reformats the card fields as they are typed and redraws the card
// preview. Nothing is validated here.
func (h *Handlers) FormatPayment(c *gin.Context) {
	var input checkout.Payment
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"card_number": checkout.FormatCardNumber(input.CardNumber),
		"expiry":      checkout.FormatExpiry(input.Expiry),
		"preview":     checkout.Preview(input),
	})
}
