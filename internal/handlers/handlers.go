package handlers

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/vetaris/storefront-golang/internal/backend"
	"github.com/vetaris/storefront-golang/internal/cart"
	"github.com/vetaris/storefront-golang/internal/catalog"
	"github.com/vetaris/storefront-golang/internal/checkout"
	"github.com/vetaris/storefront-golang/internal/middleware"
	"github.com/vetaris/storefront-golang/internal/models"
	"github.com/vetaris/storefront-golang/internal/storage"
	"go.uber.org/zap"
)

// Keys inside a visitor namespace, besides cart.StorageKey.
const (
	backendSessionKey = "backend_session"
	carouselKey       = "carousel"
)

// Messages shown to the visitor.
const (
	msgBackendDown   = "Something went wrong. Please try again."
	msgLoginRequired = "Please log in first."
)

// Backend is the slice of the shop API the handlers use.
type Backend interface {
	catalog.Fetcher
	checkout.OrderPlacer

	Me(ctx context.Context) (models.AuthStatus, error)
	Login(ctx context.Context, creds models.Credentials) ([]*http.Cookie, error)
	Register(ctx context.Context, creds models.Credentials) error
	Logout(ctx context.Context) error
	ListOrders(ctx context.Context) ([]models.Order, error)

	CreateProduct(ctx context.Context, in models.ProductInput) error
	UpdateProduct(ctx context.Context, id int64, in models.ProductInput) error
	DeleteProduct(ctx context.Context, id int64) error
	ListAllOrders(ctx context.Context) ([]models.Order, error)
	UpdateOrderStatus(ctx context.Context, id int64, status string) error

	ListBlogPosts(ctx context.Context) ([]models.BlogPost, error)
	CreateBlogPost(ctx context.Context, in models.BlogPostInput) error
	UpdateBlogPost(ctx context.Context, id int64, in models.BlogPostInput) error
	DeleteBlogPost(ctx context.Context, id int64) error
}

// Handlers struct holds all dependencies for our handlers.
type Handlers struct {
	KV      storage.KV // per-visitor state, namespaced by session
	Backend Backend
	Wizards *checkout.Registry
	Log     *zap.Logger

	CurrencySuffix        string
	CheckoutRedirectDelay time.Duration
	UploadDir             string
	PublicBaseURL         string

	locks sessionLocks
}

// sessionLocks serializes state-changing requests of one visitor.
type sessionLocks struct {
	mu    sync.Mutex
	locks map[string]*sessionLock
}

type sessionLock struct {
	mu   sync.Mutex
	refs int
}

func (s *sessionLocks) lock(sid string) (unlock func()) {
	s.mu.Lock()
	if s.locks == nil {
		s.locks = make(map[string]*sessionLock)
	}
	l, ok := s.locks[sid]
	if !ok {
		l = &sessionLock{}
		s.locks[sid] = l
	}
	l.refs++
	s.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		s.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, sid)
		}
		s.mu.Unlock()
	}
}

// namespace is the calling visitor's storage.
func (h *Handlers) namespace(c *gin.Context) *storage.Namespace {
	return storage.Scoped(h.KV, middleware.SessionID(c))
}

func (h *Handlers) cartStore(c *gin.Context) *cart.Store {
	return cart.NewStore(h.namespace(c), h.Log)
}

// backendCtx is the request context carrying what backend calls need:
// the request ID and the visitor's backend session cookies.
func (h *Handlers) backendCtx(c *gin.Context) context.Context {
	ctx := c.Request.Context()
	if id := c.GetString(middleware.RequestIDKey); id != "" {
		ctx = backend.WithRequestID(ctx, id)
	}

	data, err := h.namespace(c).Get(ctx, backendSessionKey)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			h.Log.Warn("backend session read failed", zap.Error(err))
		}
		return ctx
	}
	cookies, err := backend.DecodeCookies(data)
	if err != nil {
		h.Log.Debug("discarding malformed backend session", zap.Error(err))
		return ctx
	}
	return backend.WithCookies(ctx, cookies)
}

// AuthStatus asks the backend who the visitor is.
func (h *Handlers) AuthStatus(c *gin.Context) (models.AuthStatus, error) {
	return h.Backend.Me(h.backendCtx(c))
}

// loadCatalog fetches the product list for this request.
func (h *Handlers) loadCatalog(c *gin.Context) (*catalog.Catalog, error) {
	return catalog.Load(h.backendCtx(c), h.Backend)
}

// backendError answers a failed backend call the same way everywhere.
func (h *Handlers) backendError(c *gin.Context, err error) {
	_ = c.Error(err)
	switch {
	case backend.IsUnauthenticated(err):
		c.JSON(http.StatusUnauthorized, gin.H{"error": backend.Reason(err, msgLoginRequired), "redirect": checkout.LoginPath})
	case errors.Is(err, context.Canceled):
		c.Status(499)
	default:
		var apiErr *backend.APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode < http.StatusInternalServerError {
			c.JSON(apiErr.StatusCode, gin.H{"error": backend.Reason(err, msgBackendDown)})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": msgBackendDown})
	}
}
