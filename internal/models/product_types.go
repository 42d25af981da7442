package models

import (
	"github.com/shopspring/decimal"
)

// Product is the catalog entry served by GET /api/products.
// The storefront never writes it except through the admin endpoints.
type Product struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image"`
	IsActive    bool            `json:"is_active"`
	Stock       int             `json:"stock"`
}

// ProductInput is the admin product form (create and update share it).
type ProductInput struct {
	Name        string          `json:"name" binding:"required"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	Image       string          `json:"image"`
	Description string          `json:"description"`
	Stock       *int            `json:"stock,omitempty" binding:"omitempty,gte=0"`
	IsActive    *bool           `json:"is_active,omitempty"`
}

// DefaultStock is what a new product gets when the admin form leaves stock empty.
const DefaultStock = 100
