package models

import (
	"github.com/shopspring/decimal"
)

// Order statuses as the backend spells them.
const (
	OrderStatusPreparing = "Hazırlanıyor"
	OrderStatusShipped   = "Kargoya Verildi"
	OrderStatusCompleted = "Tamamlandı"
	OrderStatusCancelled = "İptal Edildi"
)

// OrderStatuses lists the values the admin status select offers.
var OrderStatuses = []string{
	OrderStatusPreparing,
	OrderStatusShipped,
	OrderStatusCompleted,
	OrderStatusCancelled,
}

// Order is owned by the backend; the storefront only reads it.
type Order struct {
	ID          int64           `json:"id"`
	UserEmail   string          `json:"user_email,omitempty"` // admin listing only
	TotalAmount decimal.Decimal `json:"total_amount"`
	Status      string          `json:"status"`
	CreatedAt   Timestamp       `json:"created_at"`
	Items       []OrderItem     `json:"items"`
}

// OrderItem is a line of a placed order, priced by the backend.
type OrderItem struct {
	ProductID       int64           `json:"product_id"`
	ProductName     string          `json:"product_name"`
	Quantity        int             `json:"quantity"`
	PriceAtPurchase decimal.Decimal `json:"price_at_purchase"`
}

// OrderLineRequest is one requested line. Price is deliberately absent:
// the backend decides price-at-purchase.
type OrderLineRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

// CreateOrderRequest is the body of POST /api/orders.
type CreateOrderRequest struct {
	Items []OrderLineRequest `json:"items"`
}

// OrderConfirmation is whatever the backend answers on a created order.
type OrderConfirmation struct {
	OrderID int64  `json:"order_id,omitempty"`
	Message string `json:"message,omitempty"`
}

// UpdateOrderStatusInput is the admin status form.
type UpdateOrderStatusInput struct {
	Status string `json:"status" binding:"required"`
}
