package backend

import (
	"context"
	"fmt"
	"net/http"

	"github.com/vetaris/storefront-golang/internal/models"
)

//
// --- Catalog ---
//

// ListProducts fetches GET /api/products.
func (c *Client) ListProducts(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	if err := c.call(ctx, http.MethodGet, "/api/products", nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (c *Client) CreateProduct(ctx context.Context, in models.ProductInput) error {
	return c.call(ctx, http.MethodPost, "/api/products", in, nil)
}

func (c *Client) UpdateProduct(ctx context.Context, id int64, in models.ProductInput) error {
	return c.call(ctx, http.MethodPut, fmt.Sprintf("/api/products/%d", id), in, nil)
}

func (c *Client) DeleteProduct(ctx context.Context, id int64) error {
	return c.call(ctx, http.MethodDelete, fmt.Sprintf("/api/products/%d", id), nil, nil)
}

//
// --- Auth ---
//

// Me asks the backend who the current visitor is.
func (c *Client) Me(ctx context.Context) (models.AuthStatus, error) {
	var status models.AuthStatus
	err := c.call(ctx, http.MethodGet, "/api/auth/me", nil, &status)
	return status, err
}

// Login authenticates and returns the session cookies the backend set.
// They must be replayed (WithCookies) on later calls for this visitor.
func (c *Client) Login(ctx context.Context, creds models.Credentials) ([]*http.Cookie, error) {
	resp, err := c.do(ctx, http.MethodPost, "/api/auth/login", creds)
	if err != nil {
		return nil, err
	}
	return (&http.Response{Header: resp.header}).Cookies(), nil
}

func (c *Client) Register(ctx context.Context, creds models.Credentials) error {
	return c.call(ctx, http.MethodPost, "/api/auth/register", creds, nil)
}

func (c *Client) Logout(ctx context.Context) error {
	return c.call(ctx, http.MethodPost, "/api/auth/logout", nil, nil)
}

//
// --- Orders ---
//

// CreateOrder submits POST /api/orders. The request carries product IDs
// and quantities only.
func (c *Client) CreateOrder(ctx context.Context, req models.CreateOrderRequest) (models.OrderConfirmation, error) {
	var conf models.OrderConfirmation
	err := c.call(ctx, http.MethodPost, "/api/orders", req, &conf)
	return conf, err
}

// ListOrders returns the visitor's own orders, newest first as the backend sends them.
func (c *Client) ListOrders(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	if err := c.call(ctx, http.MethodGet, "/api/orders", nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// ListAllOrders is the admin listing of every customer's orders.
func (c *Client) ListAllOrders(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	if err := c.call(ctx, http.MethodGet, "/api/admin/orders", nil, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (c *Client) UpdateOrderStatus(ctx context.Context, id int64, status string) error {
	path := fmt.Sprintf("/api/admin/orders/%d/status", id)
	return c.call(ctx, http.MethodPost, path, models.UpdateOrderStatusInput{Status: status}, nil)
}

//
// --- Blog ---
//

func (c *Client) ListBlogPosts(ctx context.Context) ([]models.BlogPost, error) {
	var posts []models.BlogPost
	if err := c.call(ctx, http.MethodGet, "/api/blog", nil, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (c *Client) CreateBlogPost(ctx context.Context, in models.BlogPostInput) error {
	return c.call(ctx, http.MethodPost, "/api/blog", in, nil)
}

func (c *Client) UpdateBlogPost(ctx context.Context, id int64, in models.BlogPostInput) error {
	return c.call(ctx, http.MethodPut, fmt.Sprintf("/api/blog/%d", id), in, nil)
}

func (c *Client) DeleteBlogPost(ctx context.Context, id int64) error {
	return c.call(ctx, http.MethodDelete, fmt.Sprintf("/api/blog/%d", id), nil, nil)
}
