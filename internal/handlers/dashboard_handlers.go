package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vetaris/storefront-golang/internal/models"
)

// AdminStats is the numbers shown on the admin dashboard.
type AdminStats struct {
	TotalOrders   int `json:"totalOrders"`
	TotalProducts int `json:"totalProducts"`
	PendingOrders int `json:"pendingOrders"`
}

func countPending(orders []models.Order) int {
	n := 0
	for _, o := range orders {
		if o.Status == models.OrderStatusPreparing {
			n++
		}
	}
	return n
}

// GetAdminDashboard is the handler for GET /admin
func (h *Handlers) GetAdminDashboard(c *gin.Context) {
	ctx := h.backendCtx(c)
	stats := AdminStats{}

	// 1. Products
	products, err := h.Backend.ListProducts(ctx)
	if err != nil {
		h.backendError(c, err)
		return
	}
	stats.TotalProducts = len(products)

	// 2. Orders, and how many are still being prepared
	orders, err := h.Backend.ListAllOrders(ctx)
	if err != nil {
		h.backendError(c, err)
		return
	}
	stats.TotalOrders = len(orders)
	stats.PendingOrders = countPending(orders)

	c.JSON(http.StatusOK, stats)
}
