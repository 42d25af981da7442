package catalog

import (
	"errors"

	"github.com/vetaris/storefront-golang/internal/models"
)

var ErrUnknownDirection = errors.New("catalog: unknown carousel direction")

// Slide is one hero carousel frame.
type Slide struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	Image     string `json:"image"`
	Price     string `json:"price"`
	Active    bool   `json:"active"`
}

// Carousel cycles through the active products. Movement wraps at both ends.
type Carousel struct {
	slides []Slide
	index  int
}

// NewCarousel builds a carousel over the active products of c, positioned
// at index (normalized into range).
func NewCarousel(c *Catalog, suffix string, index int) *Carousel {
	active := c.Active()
	slides := make([]Slide, 0, len(active))
	for _, p := range active {
		slides = append(slides, newSlide(p, suffix))
	}
	car := &Carousel{slides: slides}
	car.index = car.wrap(index)
	return car
}

func newSlide(p models.Product, suffix string) Slide {
	return Slide{
		ProductID: p.ID,
		Name:      p.Name,
		Image:     p.Image,
		Price:     models.FormatMoney(p.Price, suffix),
	}
}

func (c *Carousel) wrap(i int) int {
	n := len(c.slides)
	if n == 0 {
		return 0
	}
	return ((i % n) + n) % n
}

// Move shifts by one slide: "next" or "prev".
func (c *Carousel) Move(direction string) error {
	switch direction {
	case "next":
		c.Next()
	case "prev":
		c.Prev()
	default:
		return ErrUnknownDirection
	}
	return nil
}

func (c *Carousel) Next() { c.index = c.wrap(c.index + 1) }

func (c *Carousel) Prev() { c.index = c.wrap(c.index - 1) }

func (c *Carousel) Index() int { return c.index }

func (c *Carousel) Len() int { return len(c.slides) }

// Slides returns every frame with the current one marked active.
func (c *Carousel) Slides() []Slide {
	out := make([]Slide, len(c.slides))
	copy(out, c.slides)
	if len(out) > 0 {
		out[c.index].Active = true
	}
	return out
}
