package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/vetaris/storefront-golang/internal/catalog"
	"github.com/vetaris/storefront-golang/internal/models"
	"github.com/vetaris/storefront-golang/internal/storage"
	"go.uber.org/zap"
)

//
// --- Catalog Handlers (Public) ---
//

// NavView is the header state every page shows.
type NavView struct {
	Authenticated bool   `json:"authenticated"`
	Email         string `json:"email,omitempty"`
	ShowAdmin     bool   `json:"show_admin"`
	CartCount     int    `json:"cart_count"`
}

// nav builds the header. A backend that cannot answer /me leaves the
// visitor looking logged out.
func (h *Handlers) nav(c *gin.Context, cartCount int) NavView {
	view := NavView{CartCount: cartCount}
	st, err := h.AuthStatus(c)
	if err != nil {
		h.Log.Debug("auth status unavailable", zap.Error(err))
		return view
	}
	if st.Authenticated {
		view.Authenticated = true
		view.Email = st.Email
		view.ShowAdmin = st.IsAdmin
	}
	return view
}

// carouselIndex reads the visitor's hero carousel position.
func (h *Handlers) carouselIndex(c *gin.Context) int {
	data, err := h.namespace(c).Get(c.Request.Context(), carouselKey)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			h.Log.Warn("carousel position read failed", zap.Error(err))
		}
		return 0
	}
	i, err := strconv.Atoi(string(data))
	if err != nil {
		return 0
	}
	return i
}

// GetCatalog is the handler for GET / and GET /products
// It fetches the product list once and renders the grid and hero carousel.
func (h *Handlers) GetCatalog(c *gin.Context) {
	// 1. --- Fetch Products ---
	cat, err := h.loadCatalog(c)
	if err != nil {
		h.backendError(c, err)
		return
	}

	// 2. --- Build Carousel at the visitor's position ---
	carousel := catalog.NewCarousel(cat, h.CurrencySuffix, h.carouselIndex(c))

	// 3. --- Cart badge ---
	count := h.cartStore(c).Load(c.Request.Context()).ItemCount()

	c.JSON(http.StatusOK, gin.H{
		"nav":      h.nav(c, count),
		"products": cat.Cards(h.CurrencySuffix),
		"carousel": gin.H{
			"index":  carousel.Index(),
			"slides": carousel.Slides(),
		},
	})
}

// GetProduct is the handler for GET /products/:id
// It returns the product detail shown in the quick-view modal.
func (h *Handlers) GetProduct(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
		return
	}

	cat, err := h.loadCatalog(c)
	if err != nil {
		h.backendError(c, err)
		return
	}

	p, ok := cat.Lookup(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"product": productDetail(p, h.CurrencySuffix),
	})
}

func productDetail(p models.Product, suffix string) gin.H {
	card := catalog.NewCard(p, suffix)
	return gin.H{
		"id":          p.ID,
		"name":        p.Name,
		"category":    p.Category,
		"description": p.Description,
		"price":       card.Price,
		"image":       p.Image,
		"slug":        card.Slug,
		"in_stock":    card.InStock,
		"stock":       p.Stock,
		"add_action":  card.AddAction,
	}
}

// SlideCarousel is the handler for POST /carousel/:direction
// It moves the hero carousel one slide, wrapping at either end.
func (h *Handlers) SlideCarousel(c *gin.Context) {
	cat, err := h.loadCatalog(c)
	if err != nil {
		h.backendError(c, err)
		return
	}

	carousel := catalog.NewCarousel(cat, h.CurrencySuffix, h.carouselIndex(c))
	if err := carousel.Move(c.Param("direction")); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Direction must be next or prev"})
		return
	}

	if err := h.namespace(c).Set(c.Request.Context(), carouselKey, []byte(strconv.Itoa(carousel.Index()))); err != nil {
		h.Log.Warn("carousel position save failed", zap.Error(err))
	}

	c.JSON(http.StatusOK, gin.H{
		"index":  carousel.Index(),
		"slides": carousel.Slides(),
	})
}
