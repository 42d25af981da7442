package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/vetaris/storefront-golang/internal/models"
)

// ErrUnknownCommand is returned by Dispatch for a command it has no handler for.
var ErrUnknownCommand = errors.New("cart: unknown command")

// Catalog resolves product metadata for the cart.
type Catalog interface {
	Lookup(productID int64) (models.Product, bool)
}

// CommandKind names a cart mutation.
type CommandKind string

const (
	CommandAdd    CommandKind = "add"
	CommandRemove CommandKind = "remove"
)

// Command is a single user action against the cart.
type Command struct {
	Kind      CommandKind
	ProductID int64
}

// Update is what a mutation hands back to the caller: the new cart, its
// re-rendered view and an optional one-shot notice.
type Update struct {
	Cart    models.Cart
	View    View
	Notice  string
	Changed bool
}

// Controller holds one visitor's cart for the duration of a request. It
// is not safe for concurrent use; callers serialize per visitor.
type Controller struct {
	store   *Store
	catalog Catalog
	suffix  string
	cart    models.Cart
}

// NewController loads the persisted cart and binds it to catalog.
func NewController(ctx context.Context, store *Store, catalog Catalog, suffix string) *Controller {
	return &Controller{
		store:   store,
		catalog: catalog,
		suffix:  suffix,
		cart:    store.Load(ctx),
	}
}

// Cart returns a copy of the current cart.
func (c *Controller) Cart() models.Cart {
	return c.cart.Clone()
}

func (c *Controller) Total() decimal.Decimal {
	return c.cart.Total()
}

func (c *Controller) ItemCount() int {
	return c.cart.ItemCount()
}

// View renders the current cart.
func (c *Controller) View() View {
	return Render(c.cart, c.suffix)
}

// AddItem adds one unit of productID. Products missing from the catalog
// are ignored without error.
func (c *Controller) AddItem(ctx context.Context, productID int64) (Update, error) {
	product, ok := c.catalog.Lookup(productID)
	if !ok {
		return c.update("", false), nil
	}

	if i := c.cart.Find(productID); i >= 0 {
		c.cart.Lines[i].Quantity++
	} else {
		c.cart.Lines = append(c.cart.Lines, models.CartLine{
			ProductID: product.ID,
			Name:      product.Name,
			Price:     product.Price,
			Image:     product.Image,
			Quantity:  1,
		})
	}

	if err := c.store.Save(ctx, c.cart); err != nil {
		return Update{}, err
	}
	return c.update(fmt.Sprintf("%s added to your cart!", product.Name), true), nil
}

// RemoveItem takes one unit of productID out of the cart, dropping the
// line when it reaches zero. Absent products are ignored.
func (c *Controller) RemoveItem(ctx context.Context, productID int64) (Update, error) {
	i := c.cart.Find(productID)
	if i < 0 {
		return c.update("", false), nil
	}

	if c.cart.Lines[i].Quantity > 1 {
		c.cart.Lines[i].Quantity--
	} else {
		c.cart.Lines = append(c.cart.Lines[:i], c.cart.Lines[i+1:]...)
	}

	if err := c.store.Save(ctx, c.cart); err != nil {
		return Update{}, err
	}
	return c.update("", true), nil
}

// Dispatch routes cmd to its handler.
func (c *Controller) Dispatch(ctx context.Context, cmd Command) (Update, error) {
	switch cmd.Kind {
	case CommandAdd:
		return c.AddItem(ctx, cmd.ProductID)
	case CommandRemove:
		return c.RemoveItem(ctx, cmd.ProductID)
	default:
		return Update{}, fmt.Errorf("%w: %q", ErrUnknownCommand, cmd.Kind)
	}
}

func (c *Controller) update(notice string, changed bool) Update {
	return Update{
		Cart:    c.cart.Clone(),
		View:    c.View(),
		Notice:  notice,
		Changed: changed,
	}
}
