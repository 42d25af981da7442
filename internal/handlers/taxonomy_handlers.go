package handlers

import (
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"
	"github.com/gosimple/slug"
	"github.com/vetaris/storefront-golang/internal/catalog"
)

// --- Category Handlers ---

// CategoryView is one entry of the category filter.
type CategoryView struct {
	Name  string `json:"name"`
	Slug  string `json:"slug"`
	Count int    `json:"count"`
}

// categories groups the active products by their category name.
// Products without a category are not listed under any.
func categories(cat *catalog.Catalog) []CategoryView {
	index := make(map[string]int)
	var views []CategoryView
	for _, p := range cat.Active() {
		if p.Category == "" {
			continue
		}
		i, ok := index[p.Category]
		if !ok {
			i = len(views)
			index[p.Category] = i
			views = append(views, CategoryView{Name: p.Category, Slug: slug.Make(p.Category)})
		}
		views[i].Count++
	}
	sort.Slice(views, func(a, b int) bool { return views[a].Name < views[b].Name })
	return views
}

// GetAllCategories is the handler for GET /categories
func (h *Handlers) GetAllCategories(c *gin.Context) {
	cat, err := h.loadCatalog(c)
	if err != nil {
		h.backendError(c, err)
		return
	}

	views := categories(cat)
	if views == nil {
		views = []CategoryView{}
	}
	c.JSON(http.StatusOK, gin.H{"categories": views})
}

// GetCategory is the handler for GET /categories/:slug
// It returns the product cards of one category.
func (h *Handlers) GetCategory(c *gin.Context) {
	cat, err := h.loadCatalog(c)
	if err != nil {
		h.backendError(c, err)
		return
	}

	want := c.Param("slug")
	cards := []catalog.Card{}
	name := ""
	for _, p := range cat.Active() {
		if p.Category == "" || slug.Make(p.Category) != want {
			continue
		}
		name = p.Category
		cards = append(cards, catalog.NewCard(p, h.CurrencySuffix))
	}
	if name == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"category": CategoryView{Name: name, Slug: want, Count: len(cards)},
		"products": cards,
	})
}
