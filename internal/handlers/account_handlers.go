package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/vetaris/storefront-golang/internal/checkout"
	"github.com/vetaris/storefront-golang/internal/models"
)

//
// --- Account Handlers ---
//

const (
	msgNoOrders          = "You have no orders yet."
	msgAccountLoadFailed = "Your details could not be loaded."
	orderDateLayout      = "2 January 2006 15:04"
)

// OrderItemView is one line of a past order.
type OrderItemView struct {
	Name     string `json:"name"`
	Quantity string `json:"quantity"` // "2x"
	Price    string `json:"price"`
}

// OrderView is an order card of the account page.
type OrderView struct {
	ID          int64           `json:"id"`
	Title       string          `json:"title"`
	Date        string          `json:"date"`
	Status      string          `json:"status"`
	StatusClass string          `json:"status_class"`
	Items       []OrderItemView `json:"items"`
	Total       string          `json:"total"`
}

// statusClass picks the badge style for an order status.
func statusClass(status string) string {
	if status == models.OrderStatusCompleted {
		return "completed"
	}
	return "preparing"
}

func initial(email string) string {
	r, _ := utf8.DecodeRuneInString(email)
	if r == utf8.RuneError {
		return ""
	}
	return string(unicode.ToUpper(r))
}

func newOrderView(o models.Order, suffix string) OrderView {
	view := OrderView{
		ID:          o.ID,
		Title:       fmt.Sprintf("Order #%d", o.ID),
		Status:      o.Status,
		StatusClass: statusClass(o.Status),
		Items:       make([]OrderItemView, 0, len(o.Items)),
		Total:       "Total: " + models.FormatMoney(o.TotalAmount, suffix),
	}
	if !o.CreatedAt.IsZero() {
		view.Date = o.CreatedAt.Format(orderDateLayout)
	}
	for _, item := range o.Items {
		view.Items = append(view.Items, OrderItemView{
			Name:     item.ProductName,
			Quantity: fmt.Sprintf("%dx", item.Quantity),
			Price:    models.FormatMoney(item.PriceAtPurchase, suffix),
		})
	}
	return view
}

// GetAccount is the handler for GET /account
// It shows the visitor's email and order history, newest first as the
// backend returns it. Logged-out visitors are sent to login.
func (h *Handlers) GetAccount(c *gin.Context) {
	// 1. --- Who is this? ---
	st, err := h.AuthStatus(c)
	if err != nil || !st.Authenticated {
		c.Redirect(http.StatusSeeOther, checkout.LoginPath)
		return
	}

	account := gin.H{
		"email":   st.Email,
		"initial": initial(strings.TrimSpace(st.Email)),
	}

	// 2. --- Order history ---
	orders, err := h.Backend.ListOrders(h.backendCtx(c))
	if err != nil {
		_ = c.Error(err)
		account["error"] = msgAccountLoadFailed
		c.JSON(http.StatusBadGateway, account)
		return
	}

	views := make([]OrderView, 0, len(orders))
	for _, o := range orders {
		views = append(views, newOrderView(o, h.CurrencySuffix))
	}
	account["orders"] = views
	if len(views) == 0 {
		account["message"] = msgNoOrders
	}

	c.JSON(http.StatusOK, account)
}
