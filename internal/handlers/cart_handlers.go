package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/vetaris/storefront-golang/internal/cart"
	"github.com/vetaris/storefront-golang/internal/catalog"
	"github.com/vetaris/storefront-golang/internal/checkout"
	"github.com/vetaris/storefront-golang/internal/middleware"
	"go.uber.org/zap"
)

//
// --- Cart Handlers ---
//

func productIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("product_id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
		return 0, false
	}
	return id, true
}

// GetCart is the handler for GET /cart
func (h *Handlers) GetCart(c *gin.Context) {
	current := h.cartStore(c).Load(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"cart": cart.Render(current, h.CurrencySuffix),
	})
}

// AddToCart is the handler for POST /cart/items/:product_id
// It adds one unit of a catalog product. Unknown products change nothing.
func (h *Handlers) AddToCart(c *gin.Context) {
	// 1. --- Parse Input ---
	productID, ok := productIDParam(c)
	if !ok {
		return
	}

	// 2. --- Load the catalog the cart resolves products from ---
	cat, err := h.loadCatalog(c)
	if err != nil {
		h.backendError(c, err)
		return
	}

	h.dispatchCart(c, cat, cart.Command{Kind: cart.CommandAdd, ProductID: productID})
}

// RemoveFromCart is the handler for POST /cart/items/:product_id/remove
// It takes one unit out, dropping the line at zero.
func (h *Handlers) RemoveFromCart(c *gin.Context) {
	productID, ok := productIDParam(c)
	if !ok {
		return
	}

	// Removal never needs product metadata.
	h.dispatchCart(c, catalog.New(nil), cart.Command{Kind: cart.CommandRemove, ProductID: productID})
}

// dispatchCart runs one cart command under the visitor's lock.
func (h *Handlers) dispatchCart(c *gin.Context, cat cart.Catalog, cmd cart.Command) {
	// 1. --- Serialize this visitor's mutations ---
	unlock := h.locks.lock(middleware.SessionID(c))
	defer unlock()

	// 2. --- Apply ---
	ctrl := cart.NewController(c.Request.Context(), h.cartStore(c), cat, h.CurrencySuffix)
	update, err := ctrl.Dispatch(c.Request.Context(), cmd)
	if err != nil {
		h.Log.Error("cart update failed",
			zap.String("command", string(cmd.Kind)),
			zap.Int64("product_id", cmd.ProductID),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update cart"})
		return
	}

	// 3. --- Send the re-rendered cart ---
	body := gin.H{
		"cart":    update.View,
		"changed": update.Changed,
	}
	if update.Notice != "" {
		body["notice"] = update.Notice
	}
	c.JSON(http.StatusOK, body)
}

// CartCheckout is the handler for POST /cart/checkout
// It is the cart's checkout button: an empty cart stays put with a
// notice, a logged-out visitor goes to login, everyone else to checkout.
func (h *Handlers) CartCheckout(c *gin.Context) {
	// 1. --- Empty cart ---
	if h.cartStore(c).Load(c.Request.Context()).IsEmpty() {
		c.JSON(http.StatusOK, gin.H{"notice": cart.EmptyMessage})
		return
	}

	// 2. --- Auth check ---
	st, err := h.AuthStatus(c)
	if err != nil || !st.Authenticated {
		c.JSON(http.StatusOK, gin.H{"notice": msgLoginRequired, "redirect": checkout.LoginPath})
		return
	}

	// 3. --- On to checkout ---
	c.JSON(http.StatusOK, gin.H{"redirect": "/checkout"})
}
