// Package catalog holds the product list fetched for a page load and the
// projections the catalog view is built from.
package catalog

import (
	"context"
	"fmt"

	"github.com/gosimple/slug"
	"github.com/vetaris/storefront-golang/internal/models"
)

// descriptionPreview is how many characters of a description a card shows.
const descriptionPreview = 60

// Fetcher retrieves the full product list from the backend.
type Fetcher interface {
	ListProducts(ctx context.Context) ([]models.Product, error)
}

// Catalog is an immutable snapshot of the product list.
type Catalog struct {
	products []models.Product
	byID     map[int64]int
}

// New indexes products by ID. Later duplicates of an ID are ignored.
func New(products []models.Product) *Catalog {
	c := &Catalog{
		products: make([]models.Product, 0, len(products)),
		byID:     make(map[int64]int, len(products)),
	}
	for _, p := range products {
		if _, dup := c.byID[p.ID]; dup {
			continue
		}
		c.byID[p.ID] = len(c.products)
		c.products = append(c.products, p)
	}
	return c
}

// Load fetches the product list once and wraps it in a Catalog.
func Load(ctx context.Context, f Fetcher) (*Catalog, error) {
	products, err := f.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	return New(products), nil
}

// Lookup finds a product by ID.
func (c *Catalog) Lookup(productID int64) (models.Product, bool) {
	i, ok := c.byID[productID]
	if !ok {
		return models.Product{}, false
	}
	return c.products[i], true
}

// Products returns every product in backend order.
func (c *Catalog) Products() []models.Product {
	out := make([]models.Product, len(c.products))
	copy(out, c.products)
	return out
}

// Active returns the products flagged active, in backend order.
func (c *Catalog) Active() []models.Product {
	var out []models.Product
	for _, p := range c.products {
		if p.IsActive {
			out = append(out, p)
		}
	}
	return out
}

func (c *Catalog) Len() int { return len(c.products) }

// Card is the product tile of the catalog grid.
type Card struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Price       string `json:"price"`
	Image       string `json:"image"`
	Slug        string `json:"slug"`
	InStock     bool   `json:"in_stock"`
	AddAction   string `json:"add_action"`
}

// NewCard projects p into a grid tile.
func NewCard(p models.Product, suffix string) Card {
	return Card{
		ID:          p.ID,
		Name:        p.Name,
		Category:    p.Category,
		Description: Truncate(p.Description, descriptionPreview),
		Price:       models.FormatMoney(p.Price, suffix),
		Image:       p.Image,
		Slug:        slug.Make(p.Name),
		InStock:     p.Stock > 0,
		AddAction:   fmt.Sprintf("/cart/items/%d", p.ID),
	}
}

// Cards projects every product of the catalog.
func (c *Catalog) Cards(suffix string) []Card {
	cards := make([]Card, 0, len(c.products))
	for _, p := range c.products {
		cards = append(cards, NewCard(p, suffix))
	}
	return cards
}

// Truncate keeps the first n characters of s and appends "..." when
// anything was cut.
func Truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
