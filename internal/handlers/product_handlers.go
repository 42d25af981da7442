package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/vetaris/storefront-golang/internal/models"
)

//
// --- Admin: Product Handlers ---
//

// ProductRow is one row of the admin products table.
type ProductRow struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Price    string `json:"price"`
	Stock    int    `json:"stock"`
	IsActive bool   `json:"is_active"`
	Image    string `json:"image"`
}

func idParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID"})
		return 0, false
	}
	return id, true
}

// AdminListProducts is the handler for GET /admin/products
func (h *Handlers) AdminListProducts(c *gin.Context) {
	products, err := h.Backend.ListProducts(h.backendCtx(c))
	if err != nil {
		h.backendError(c, err)
		return
	}

	rows := make([]ProductRow, 0, len(products))
	for _, p := range products {
		rows = append(rows, ProductRow{
			ID:       p.ID,
			Name:     p.Name,
			Category: p.Category,
			Price:    models.FormatMoney(p.Price, h.CurrencySuffix),
			Stock:    p.Stock,
			IsActive: p.IsActive,
			Image:    p.Image,
		})
	}

	c.JSON(http.StatusOK, gin.H{"products": rows})
}

// bindProduct reads and checks the product form.
func bindProduct(c *gin.Context) (models.ProductInput, bool) {
	var input models.ProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return input, false
	}
	if input.Price.IsNegative() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Price cannot be negative"})
		return input, false
	}
	return input, true
}

// CreateProduct is the handler for POST /admin/products
// New products get the default stock and are active unless told otherwise.
func (h *Handlers) CreateProduct(c *gin.Context) {
	// 1. --- Bind & Validate ---
	input, ok := bindProduct(c)
	if !ok {
		return
	}

	// 2. --- Defaults ---
	if input.Stock == nil {
		stock := models.DefaultStock
		input.Stock = &stock
	}
	if input.IsActive == nil {
		active := true
		input.IsActive = &active
	}

	// 3. --- Save ---
	if err := h.Backend.CreateProduct(h.backendCtx(c), input); err != nil {
		h.backendError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Product created"})
}

// UpdateProduct is the handler for PUT /admin/products/:id
func (h *Handlers) UpdateProduct(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	input, ok := bindProduct(c)
	if !ok {
		return
	}

	if err := h.Backend.UpdateProduct(h.backendCtx(c), id, input); err != nil {
		h.backendError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Product updated"})
}

// DeleteProduct is the handler for DELETE /admin/products/:id
func (h *Handlers) DeleteProduct(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}

	if err := h.Backend.DeleteProduct(h.backendCtx(c), id); err != nil {
		h.backendError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Product deleted"})
}
