package handlers

import (
	"fmt"
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
	"github.com/vetaris/storefront-golang/internal/models"
)

//
// --- Admin: Order Handlers ---
//

const unknownEmail = "Unknown"

// OrderRow is one row of the admin orders table.
type OrderRow struct {
	ID     int64  `json:"id"`
	Date   string `json:"date"`
	Email  string `json:"email"`
	Total  string `json:"total"`
	Status string `json:"status"`
}

func (h *Handlers) orderRow(o models.Order) OrderRow {
	row := OrderRow{
		ID:     o.ID,
		Email:  o.UserEmail,
		Total:  models.FormatMoney(o.TotalAmount, h.CurrencySuffix),
		Status: o.Status,
	}
	if row.Email == "" {
		row.Email = unknownEmail
	}
	if !o.CreatedAt.IsZero() {
		row.Date = o.CreatedAt.Format("02.01.2006")
	}
	return row
}

// AdminListOrders is the handler for GET /admin/orders
func (h *Handlers) AdminListOrders(c *gin.Context) {
	orders, err := h.Backend.ListAllOrders(h.backendCtx(c))
	if err != nil {
		h.backendError(c, err)
		return
	}

	rows := make([]OrderRow, 0, len(orders))
	for _, o := range orders {
		rows = append(rows, h.orderRow(o))
	}
	c.JSON(http.StatusOK, gin.H{"orders": rows})
}

// AdminGetOrder is the handler for GET /admin/orders/:id
// The backend has no single-order endpoint, so the order is picked out
// of the full listing.
func (h *Handlers) AdminGetOrder(c *gin.Context) {
	// 1. --- Parse ID ---
	id, ok := idParam(c)
	if !ok {
		return
	}

	// 2. --- Find it ---
	orders, err := h.Backend.ListAllOrders(h.backendCtx(c))
	if err != nil {
		h.backendError(c, err)
		return
	}
	i := slices.IndexFunc(orders, func(o models.Order) bool { return o.ID == id })
	if i < 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}
	order := orders[i]

	// 3. --- Build the detail view ---
	items := make([]OrderItemView, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, OrderItemView{
			Name:     item.ProductName,
			Quantity: fmt.Sprintf("x%d", item.Quantity),
			Price:    models.FormatMoney(item.PriceAtPurchase, h.CurrencySuffix),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"order":    h.orderRow(order),
		"items":    items,
		"statuses": models.OrderStatuses,
	})
}

// UpdateOrderStatus is the handler for POST /admin/orders/:id/status
func (h *Handlers) UpdateOrderStatus(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	var input models.UpdateOrderStatusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}
	if !slices.Contains(models.OrderStatuses, input.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown order status"})
		return
	}

	if err := h.Backend.UpdateOrderStatus(h.backendCtx(c), id, input.Status); err != nil {
		h.backendError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Order status updated"})
}
