package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vetaris/storefront-golang/internal/auth"
	"github.com/vetaris/storefront-golang/internal/backend"
	"github.com/vetaris/storefront-golang/internal/cart"
	"github.com/vetaris/storefront-golang/internal/checkout"
	"github.com/vetaris/storefront-golang/internal/handlers"
	"github.com/vetaris/storefront-golang/internal/models"
	"github.com/vetaris/storefront-golang/internal/routes"
	"github.com/vetaris/storefront-golang/internal/storage"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const shopCookie = "shop_session"

// fakeShop stands in for the shop's REST backend.
type fakeShop struct {
	mu sync.Mutex

	products    []models.Product
	orders      []models.Order
	posts       []models.BlogPost
	admin       bool
	orderStatus int // when set, POST /api/orders fails with it
	orderGate   *gate

	placed     []models.CreateOrderRequest
	created    []models.ProductInput
	newPosts   []models.BlogPostInput
	registered int
	statuses   map[int64]string
}

func newFakeShop() *fakeShop {
	return &fakeShop{
		products: []models.Product{
			{ID: 1, Name: "Ceramic Mug", Category: "Kitchen", Price: decimal.RequireFromString("10.50"), IsActive: true, Stock: 5},
			{ID: 2, Name: "Tea Set", Category: "Kitchen", Price: decimal.RequireFromString("12.00"), IsActive: true, Stock: 2},
			{ID: 3, Name: "Old Lamp", Category: "Decor", Price: decimal.RequireFromString("30.00"), IsActive: false},
		},
		statuses: make(map[int64]string),
	}
}

// gate holds POST /api/orders until released.
type gate struct {
	arrived chan struct{}
	release chan struct{}
}

func newGate() *gate {
	return &gate{arrived: make(chan struct{}, 4), release: make(chan struct{})}
}

func (g *gate) waitArrived(t *testing.T) {
	t.Helper()
	select {
	case <-g.arrived:
	case <-time.After(5 * time.Second):
		t.Fatal("order never reached the backend")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *fakeShop) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPost && r.URL.Path == "/api/orders" {
		s.mu.Lock()
		g := s.orderGate
		s.mu.Unlock()
		if g != nil {
			g.arrived <- struct{}{}
			<-g.release
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cookie, err := r.Cookie(shopCookie)
	loggedIn := err == nil && cookie.Value == "token-1"

	route := r.Method + " " + r.URL.Path
	switch {
	case route == "GET /api/products":
		writeJSON(w, http.StatusOK, s.products)
	case route == "POST /api/products":
		var in models.ProductInput
		_ = json.NewDecoder(r.Body).Decode(&in)
		s.created = append(s.created, in)
		writeJSON(w, http.StatusCreated, map[string]any{"message": "ok"})

	case route == "GET /api/auth/me":
		if !loggedIn {
			writeJSON(w, http.StatusOK, models.AuthStatus{})
			return
		}
		writeJSON(w, http.StatusOK, models.AuthStatus{Authenticated: true, Email: "ayse@example.com", IsAdmin: s.admin})
	case route == "POST /api/auth/login":
		var in models.Credentials
		_ = json.NewDecoder(r.Body).Decode(&in)
		if in.Password != "secret" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Invalid credentials"})
			return
		}
		http.SetCookie(w, &http.Cookie{Name: shopCookie, Value: "token-1", Path: "/"})
		writeJSON(w, http.StatusOK, map[string]string{"message": "ok"})
	case route == "POST /api/auth/register":
		s.registered++
		writeJSON(w, http.StatusCreated, map[string]string{"message": "ok"})
	case route == "POST /api/auth/logout":
		writeJSON(w, http.StatusOK, map[string]string{"message": "ok"})

	case route == "POST /api/orders":
		if !loggedIn {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Lütfen giriş yapın"})
			return
		}
		if s.orderStatus != 0 {
			w.WriteHeader(s.orderStatus)
			return
		}
		var req models.CreateOrderRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		s.placed = append(s.placed, req)
		writeJSON(w, http.StatusCreated, models.OrderConfirmation{OrderID: 42})
	case route == "GET /api/orders" || route == "GET /api/admin/orders":
		writeJSON(w, http.StatusOK, s.orders)
	case r.Method == http.MethodPost && strings.HasPrefix(r.URL.Path, "/api/admin/orders/"):
		var in models.UpdateOrderStatusInput
		_ = json.NewDecoder(r.Body).Decode(&in)
		s.statuses[7] = in.Status
		writeJSON(w, http.StatusOK, map[string]string{"message": "ok"})

	case route == "GET /api/blog":
		writeJSON(w, http.StatusOK, s.posts)
	case route == "POST /api/blog":
		var in models.BlogPostInput
		_ = json.NewDecoder(r.Body).Decode(&in)
		s.newPosts = append(s.newPosts, in)
		writeJSON(w, http.StatusCreated, map[string]string{"message": "ok"})

	default:
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	}
}

type testEnv struct {
	shop    *fakeShop
	shopSrv *httptest.Server
	h       *handlers.Handlers
	url     string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	shop := newFakeShop()
	shopSrv := httptest.NewServer(shop)
	t.Cleanup(shopSrv.Close)

	client, err := backend.NewClient(shopSrv.URL, shopSrv.Client(), zap.NewNop())
	require.NoError(t, err)
	tokens, err := auth.NewTokens("test-secret", time.Hour)
	require.NoError(t, err)

	h := &handlers.Handlers{
		KV:                    storage.NewMemoryStore(time.Hour),
		Backend:               client,
		Wizards:               checkout.NewRegistry(),
		Log:                   zap.NewNop(),
		CurrencySuffix:        "₺",
		CheckoutRedirectDelay: 2 * time.Second,
		UploadDir:             t.TempDir(),
		PublicBaseURL:         "http://shop.test",
	}
	router := routes.SetupRouter(h, routes.Options{
		Tokens:      tokens,
		SessionTTL:  time.Hour,
		CORSOrigins: []string{"http://localhost:5173"},
	})
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return &testEnv{shop: shop, shopSrv: shopSrv, h: h, url: srv.URL}
}

// visitor is one browser: its own cookie jar, redirects not followed.
type visitor struct {
	t    *testing.T
	env  *testEnv
	http *http.Client
}

func (e *testEnv) visitor(t *testing.T) *visitor {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &visitor{
		t:   t,
		env: e,
		http: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// set changes the fake shop while its server may be running.
func (e *testEnv) set(fn func(s *fakeShop)) {
	e.shop.mu.Lock()
	defer e.shop.mu.Unlock()
	fn(e.shop)
}

func (v *visitor) send(method, path string, body any) (*http.Response, map[string]any) {
	v.t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(v.t, err)
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, v.env.url+path, reader)
	require.NoError(v.t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return v.do(req)
}

func (v *visitor) do(req *http.Request) (*http.Response, map[string]any) {
	v.t.Helper()

	resp, err := v.http.Do(req)
	require.NoError(v.t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(v.t, err)
	out := map[string]any{}
	if len(raw) > 0 && strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(v.t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp, out
}

// sendAsync sends a JSON request from another goroutine and reports the
// status code, or -1 when the request could not be made.
func (v *visitor) sendAsync(method, path string, body any) <-chan int {
	done := make(chan int, 1)
	go func() {
		data, _ := json.Marshal(body)
		req, err := http.NewRequest(method, v.env.url+path, bytes.NewReader(data))
		if err != nil {
			done <- -1
			return
		}
		req.Header.Set("Content-Type", "application/json")
		resp, err := v.http.Do(req)
		if err != nil {
			done <- -1
			return
		}
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		done <- resp.StatusCode
	}()
	return done
}

func waitStatus(t *testing.T, done <-chan int) int {
	t.Helper()
	select {
	case code := <-done:
		return code
	case <-time.After(5 * time.Second):
		t.Fatal("request did not finish")
		return 0
	}
}

func (v *visitor) login() {
	v.t.Helper()
	resp, _ := v.send(http.MethodPost, "/login", map[string]string{"email": "ayse@example.com", "password": "secret"})
	require.Equal(v.t, http.StatusOK, resp.StatusCode)
}

func (v *visitor) add(productID string) map[string]any {
	v.t.Helper()
	resp, body := v.send(http.MethodPost, "/cart/items/"+productID, nil)
	require.Equal(v.t, http.StatusOK, resp.StatusCode)
	return body
}

func cartView(body map[string]any) map[string]any {
	view, _ := body["cart"].(map[string]any)
	return view
}

var fullAddress = map[string]string{
	"full_name": "Ayşe Yılmaz",
	"phone":     "05551234567",
	"city":      "İzmir",
	"district":  "Konak",
	"address":   "Atatürk Cd. 12",
}

var validCard = map[string]string{
	"card_number": "4111 1111 1111 1111",
	"card_name":   "Ayse Yilmaz",
	"expiry":      "12/28",
}

//
// --- Catalog ---
//

func TestCatalogView(t *testing.T) {
	env := newTestEnv(t)
	v := env.visitor(t)

	resp, body := v.send(http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	products := body["products"].([]any)
	assert.Len(t, products, 3)
	first := products[0].(map[string]any)
	assert.Equal(t, "10.50 ₺", first["price"])
	assert.Equal(t, "ceramic-mug", first["slug"])
	assert.Equal(t, "/cart/items/1", first["add_action"])

	carousel := body["carousel"].(map[string]any)
	assert.Len(t, carousel["slides"].([]any), 2, "inactive products stay out of the carousel")

	nav := body["nav"].(map[string]any)
	assert.Equal(t, false, nav["authenticated"])
	assert.Equal(t, float64(0), nav["cart_count"])
}

func TestGetProduct(t *testing.T) {
	env := newTestEnv(t)
	v := env.visitor(t)

	resp, body := v.send(http.MethodGet, "/products/2", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Tea Set", body["product"].(map[string]any)["name"])

	resp, _ = v.send(http.MethodGet, "/products/99", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = v.send(http.MethodGet, "/products/abc", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCarouselWrapsAndPersists(t *testing.T) {
	env := newTestEnv(t)
	v := env.visitor(t)

	_, body := v.send(http.MethodPost, "/carousel/next", nil)
	assert.Equal(t, float64(1), body["index"])

	_, body = v.send(http.MethodPost, "/carousel/next", nil)
	assert.Equal(t, float64(0), body["index"], "wraps past the last slide")

	_, body = v.send(http.MethodPost, "/carousel/prev", nil)
	assert.Equal(t, float64(1), body["index"], "wraps before the first slide")

	_, body = v.send(http.MethodGet, "/", nil)
	assert.Equal(t, float64(1), body["carousel"].(map[string]any)["index"])

	resp, _ := v.send(http.MethodPost, "/carousel/sideways", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCategories(t *testing.T) {
	env := newTestEnv(t)
	v := env.visitor(t)

	_, body := v.send(http.MethodGet, "/categories", nil)
	cats := body["categories"].([]any)
	require.Len(t, cats, 1, "Decor only has an inactive product")
	assert.Equal(t, "kitchen", cats[0].(map[string]any)["slug"])
	assert.Equal(t, float64(2), cats[0].(map[string]any)["count"])

	resp, body := v.send(http.MethodGet, "/categories/kitchen", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body["products"].([]any), 2)

	resp, _ = v.send(http.MethodGet, "/categories/decor", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestBackendDownIsBadGateway(t *testing.T) {
	env := newTestEnv(t)
	v := env.visitor(t)
	env.shopSrv.Close()

	resp, body := v.send(http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.NotEmpty(t, body["error"])
}

//
// --- Cart ---
//

func TestCartAddAndRemove(t *testing.T) {
	env := newTestEnv(t)
	v := env.visitor(t)

	body := v.add("1")
	assert.Equal(t, "Ceramic Mug added to your cart!", body["notice"])
	assert.Equal(t, float64(1), cartView(body)["item_count"])

	v.add("1")
	body = v.add("2")
	view := cartView(body)
	assert.Equal(t, float64(3), view["item_count"])
	assert.Equal(t, "33.00 ₺", view["total"])

	_, body = v.send(http.MethodGet, "/cart", nil)
	lines := cartView(body)["lines"].([]any)
	require.Len(t, lines, 2)
	assert.Equal(t, "2 x 10.50 ₺", lines[0].(map[string]any)["summary"])

	_, body = v.send(http.MethodPost, "/cart/items/2/remove", nil)
	assert.Equal(t, true, body["changed"])
	view = cartView(body)
	assert.Equal(t, float64(2), view["item_count"])
	assert.Len(t, view["lines"].([]any), 1, "line dropped at zero")

	_, body = v.send(http.MethodPost, "/cart/items/2/remove", nil)
	assert.Equal(t, false, body["changed"])
}

func TestAddUnknownProductChangesNothing(t *testing.T) {
	env := newTestEnv(t)
	v := env.visitor(t)

	body := v.add("99")
	assert.Equal(t, false, body["changed"])
	assert.Equal(t, true, cartView(body)["empty"])
	assert.Equal(t, cart.EmptyMessage, cartView(body)["message"])

	resp, _ := v.send(http.MethodPost, "/cart/items/0", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCartIsPerVisitor(t *testing.T) {
	env := newTestEnv(t)
	alice := env.visitor(t)
	bob := env.visitor(t)

	alice.add("1")

	_, body := bob.send(http.MethodGet, "/cart", nil)
	assert.Equal(t, true, cartView(body)["empty"])

	_, body = alice.send(http.MethodGet, "/cart", nil)
	assert.Equal(t, float64(1), cartView(body)["item_count"])
}

func TestCartCheckoutButton(t *testing.T) {
	env := newTestEnv(t)
	v := env.visitor(t)

	_, body := v.send(http.MethodPost, "/cart/checkout", nil)
	assert.Equal(t, cart.EmptyMessage, body["notice"])
	assert.Nil(t, body["redirect"])

	v.add("1")
	_, body = v.send(http.MethodPost, "/cart/checkout", nil)
	assert.Equal(t, checkout.LoginPath, body["redirect"])

	v.login()
	_, body = v.send(http.MethodPost, "/cart/checkout", nil)
	assert.Equal(t, "/checkout", body["redirect"])
}

//
// --- Checkout ---
//

func TestEnterCheckoutWithEmptyCartRedirects(t *testing.T) {
	env := newTestEnv(t)
	v := env.visitor(t)

	resp, _ := v.send(http.MethodGet, "/checkout", nil)
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, checkout.CatalogPath, resp.Header.Get("Location"))
}

func TestCheckoutStepsWithoutWizard(t *testing.T) {
	env := newTestEnv(t)
	v := env.visitor(t)

	resp, _ := v.send(http.MethodPost, "/checkout/address", fullAddress)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestCheckoutPlacesOrder(t *testing.T) {
	env := newTestEnv(t)
	v := env.visitor(t)
	v.login()
	v.add("1")
	v.add("1")
	v.add("2")

	// Enter
	resp, body := v.send(http.MethodGet, "/checkout", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "awaiting_address", body["state"])
	summary := body["summary"].(map[string]any)
	assert.Equal(t, "33.00 ₺", summary["total"])

	// Incomplete address is refused
	resp, body = v.send(http.MethodPost, "/checkout/address", map[string]string{"full_name": "Ayşe"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "awaiting_address", body["state"])

	resp, body = v.send(http.MethodPost, "/checkout/address", fullAddress)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "awaiting_payment", body["state"])

	// Short card number never reaches the backend
	resp, _ = v.send(http.MethodPost, "/checkout/payment", map[string]string{"card_number": "4111 1111"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = v.send(http.MethodPost, "/checkout/payment", validCard)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "succeeded", body["outcome"])
	assert.Equal(t, checkout.AccountPath, body["redirect"])
	assert.Equal(t, float64(2000), body["redirect_after_ms"])

	env.shop.mu.Lock()
	require.Len(t, env.shop.placed, 1)
	assert.Equal(t, []models.OrderLineRequest{{ProductID: 1, Quantity: 2}, {ProductID: 2, Quantity: 1}}, env.shop.placed[0].Items)
	env.shop.mu.Unlock()

	_, body = v.send(http.MethodGet, "/cart", nil)
	assert.Equal(t, true, cartView(body)["empty"], "cart cleared after the order")

	resp, _ = v.send(http.MethodPost, "/checkout/payment", validCard)
	assert.Equal(t, http.StatusConflict, resp.StatusCode, "the finished wizard is gone")
}

func TestCheckoutBackKeepsAddress(t *testing.T) {
	env := newTestEnv(t)
	v := env.visitor(t)
	v.add("1")

	v.send(http.MethodGet, "/checkout", nil)
	v.send(http.MethodPost, "/checkout/address", fullAddress)

	resp, body := v.send(http.MethodPost, "/checkout/back", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "awaiting_address", body["state"])
	assert.Equal(t, "Konak", body["address"].(map[string]any)["district"])
}

func TestCheckoutLoggedOutGoesToLogin(t *testing.T) {
	env := newTestEnv(t)
	v := env.visitor(t)
	v.add("2")

	v.send(http.MethodGet, "/checkout", nil)
	v.send(http.MethodPost, "/checkout/address", fullAddress)

	resp, body := v.send(http.MethodPost, "/checkout/payment", validCard)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, checkout.LoginPath, body["redirect"])
	assert.Equal(t, "failed", body["outcome"])

	_, body = v.send(http.MethodGet, "/cart", nil)
	assert.Equal(t, float64(1), cartView(body)["item_count"], "cart kept on failure")
}

func TestCheckoutBackendFailureStaysOnPayment(t *testing.T) {
	env := newTestEnv(t)
	env.set(func(s *fakeShop) { s.orderStatus = http.StatusInternalServerError })
	v := env.visitor(t)
	v.login()
	v.add("1")

	v.send(http.MethodGet, "/checkout", nil)
	v.send(http.MethodPost, "/checkout/address", fullAddress)

	resp, body := v.send(http.MethodPost, "/checkout/payment", validCard)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Equal(t, "failed", body["outcome"])
	assert.Equal(t, "awaiting_payment", body["state"])
	assert.NotEmpty(t, body["error"])

	env.set(func(s *fakeShop) { s.orderStatus = 0 })

	resp, body = v.send(http.MethodPost, "/checkout/payment", validCard)
	require.Equal(t, http.StatusOK, resp.StatusCode, "retry from the same wizard")
	assert.Equal(t, "succeeded", body["outcome"])
}

func TestReenteringCheckoutWhileOrderInFlight(t *testing.T) {
	env := newTestEnv(t)
	g := newGate()
	env.set(func(s *fakeShop) { s.orderGate = g })
	v := env.visitor(t)
	v.login()
	v.add("1")

	v.send(http.MethodGet, "/checkout", nil)
	v.send(http.MethodPost, "/checkout/address", fullAddress)

	payment := v.sendAsync(http.MethodPost, "/checkout/payment", validCard)
	g.waitArrived(t)

	resp, body := v.send(http.MethodGet, "/checkout", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "submitting", body["state"])

	resp, _ = v.send(http.MethodPost, "/checkout/address", fullAddress)
	assert.Equal(t, http.StatusConflict, resp.StatusCode, "the running wizard is still in charge")

	resp, body = v.send(http.MethodPost, "/checkout/payment", validCard)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "submitting", body["state"])

	close(g.release)
	assert.Equal(t, http.StatusOK, waitStatus(t, payment))

	env.set(func(s *fakeShop) {
		assert.Len(t, s.placed, 1, "one order for one cart")
	})
}

func TestCartChangeDuringOrderSurvives(t *testing.T) {
	env := newTestEnv(t)
	g := newGate()
	env.set(func(s *fakeShop) { s.orderGate = g })
	v := env.visitor(t)
	v.login()
	v.add("1")

	v.send(http.MethodGet, "/checkout", nil)
	v.send(http.MethodPost, "/checkout/address", fullAddress)

	payment := v.sendAsync(http.MethodPost, "/checkout/payment", validCard)
	g.waitArrived(t)

	added := v.sendAsync(http.MethodPost, "/cart/items/2", nil)
	time.Sleep(50 * time.Millisecond)
	close(g.release)

	assert.Equal(t, http.StatusOK, waitStatus(t, payment))
	assert.Equal(t, http.StatusOK, waitStatus(t, added))

	_, body := v.send(http.MethodGet, "/cart", nil)
	lines := cartView(body)["lines"].([]any)
	require.Len(t, lines, 1, "only the ordered line was cleared")
	assert.Equal(t, float64(2), lines[0].(map[string]any)["product_id"])

	env.set(func(s *fakeShop) {
		require.Len(t, s.placed, 1)
		assert.Equal(t, []models.OrderLineRequest{{ProductID: 1, Quantity: 1}}, s.placed[0].Items)
	})
}

func TestFormatPayment(t *testing.T) {
	env := newTestEnv(t)
	v := env.visitor(t)

	_, body := v.send(http.MethodPost, "/checkout/format", map[string]string{
		"card_number": "4111-1111 1111x1111",
		"expiry":      "1228",
	})
	assert.Equal(t, "4111 1111 1111 1111", body["card_number"])
	assert.Equal(t, "12/28", body["expiry"])
	assert.Equal(t, checkout.CardNamePlaceholder, body["preview"].(map[string]any)["name"])
}

//
// --- Auth & Account ---
//

func TestLoginFailure(t *testing.T) {
	env := newTestEnv(t)
	v := env.visitor(t)

	resp, body := v.send(http.MethodPost, "/login", map[string]string{"email": "ayse@example.com", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Login failed: Invalid credentials", body["error"])
}

func TestLoginAndLogout(t *testing.T) {
	env := newTestEnv(t)
	v := env.visitor(t)

	v.login()
	_, body := v.send(http.MethodGet, "/me", nil)
	assert.Equal(t, true, body["authenticated"])
	assert.Equal(t, "ayse@example.com", body["email"])
	assert.Equal(t, false, body["show_admin"])

	resp, body := v.send(http.MethodPost, "/logout", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, checkout.LoginPath, body["redirect"])

	_, body = v.send(http.MethodGet, "/me", nil)
	assert.Equal(t, false, body["authenticated"])
}

func TestRegister(t *testing.T) {
	env := newTestEnv(t)
	v := env.visitor(t)

	resp, body := v.send(http.MethodPost, "/register", map[string]string{
		"email": "new@example.com", "password": "pw1", "confirmPassword": "pw2",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Passwords do not match!", body["error"])
	env.set(func(s *fakeShop) {
		assert.Equal(t, 0, s.registered, "mismatch never reaches the backend")
	})

	resp, body = v.send(http.MethodPost, "/register", map[string]string{
		"email": "new@example.com", "password": "pw1", "confirmPassword": "pw1",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, checkout.LoginPath, body["redirect"])
}

func TestAccountRequiresLogin(t *testing.T) {
	env := newTestEnv(t)
	v := env.visitor(t)

	resp, _ := v.send(http.MethodGet, "/account", nil)
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, checkout.LoginPath, resp.Header.Get("Location"))
}

func TestAccountShowsOrders(t *testing.T) {
	env := newTestEnv(t)
	v := env.visitor(t)
	v.login()

	_, body := v.send(http.MethodGet, "/account", nil)
	assert.Equal(t, "A", body["initial"])
	assert.Equal(t, "You have no orders yet.", body["message"])

	env.shop.mu.Lock()
	env.shop.orders = []models.Order{{
		ID:          12,
		TotalAmount: decimal.RequireFromString("40"),
		Status:      models.OrderStatusCompleted,
		CreatedAt:   models.Timestamp{Time: time.Date(2026, 3, 1, 10, 20, 0, 0, time.UTC)},
		Items: []models.OrderItem{
			{ProductID: 1, ProductName: "Ceramic Mug", Quantity: 2, PriceAtPurchase: decimal.RequireFromString("20")},
		},
	}}
	env.shop.mu.Unlock()

	_, body = v.send(http.MethodGet, "/account", nil)
	orders := body["orders"].([]any)
	require.Len(t, orders, 1)
	order := orders[0].(map[string]any)
	assert.Equal(t, "Order #12", order["title"])
	assert.Equal(t, "completed", order["status_class"])
	assert.Equal(t, "Total: 40.00 ₺", order["total"])
	assert.Equal(t, "1 March 2026 10:20", order["date"])
}

//
// --- Admin ---
//

func TestAdminGate(t *testing.T) {
	env := newTestEnv(t)
	v := env.visitor(t)

	resp, _ := v.send(http.MethodGet, "/admin", nil)
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, checkout.AccountPath, resp.Header.Get("Location"))

	v.login()
	resp, _ = v.send(http.MethodGet, "/admin", nil)
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode, "logged in but not admin")

	env.set(func(s *fakeShop) { s.admin = true })
	resp, body := v.send(http.MethodGet, "/admin", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(3), body["totalProducts"])
}

func adminVisitor(t *testing.T, env *testEnv) *visitor {
	env.set(func(s *fakeShop) { s.admin = true })
	v := env.visitor(t)
	v.login()
	return v
}

func TestAdminCreateProduct(t *testing.T) {
	env := newTestEnv(t)
	v := adminVisitor(t, env)

	resp, _ := v.send(http.MethodPost, "/admin/products", map[string]any{"name": "Vase", "price": 20})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	env.shop.mu.Lock()
	require.Len(t, env.shop.created, 1)
	created := env.shop.created[0]
	env.shop.mu.Unlock()
	require.NotNil(t, created.Stock)
	assert.Equal(t, models.DefaultStock, *created.Stock)
	require.NotNil(t, created.IsActive)
	assert.True(t, *created.IsActive)

	resp, _ = v.send(http.MethodPost, "/admin/products", map[string]any{"name": "Vase", "price": -1})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAdminOrders(t *testing.T) {
	env := newTestEnv(t)
	env.set(func(s *fakeShop) {
		s.orders = []models.Order{{
			ID:          7,
			TotalAmount: decimal.RequireFromString("15"),
			Status:      models.OrderStatusPreparing,
			CreatedAt:   models.Timestamp{Time: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)},
		}}
	})
	v := adminVisitor(t, env)

	_, body := v.send(http.MethodGet, "/admin/orders", nil)
	rows := body["orders"].([]any)
	require.Len(t, rows, 1)
	row := rows[0].(map[string]any)
	assert.Equal(t, "Unknown", row["email"])
	assert.Equal(t, "01.03.2026", row["date"])
	assert.Equal(t, "15.00 ₺", row["total"])

	resp, body := v.send(http.MethodGet, "/admin/orders/7", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body["statuses"].([]any), len(models.OrderStatuses))

	resp, _ = v.send(http.MethodGet, "/admin/orders/8", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = v.send(http.MethodPost, "/admin/orders/7/status", map[string]string{"status": "Lost"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = v.send(http.MethodPost, "/admin/orders/7/status", map[string]string{"status": models.OrderStatusShipped})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	env.shop.mu.Lock()
	assert.Equal(t, models.OrderStatusShipped, env.shop.statuses[7])
	env.shop.mu.Unlock()
}

func TestBlog(t *testing.T) {
	env := newTestEnv(t)
	env.set(func(s *fakeShop) {
		s.posts = []models.BlogPost{
			{ID: 1, Title: "Live", Slug: "live", IsPublished: true},
			{ID: 2, Title: "Draft", Slug: "draft"},
		}
	})
	v := adminVisitor(t, env)

	_, body := v.send(http.MethodGet, "/blog", nil)
	assert.Len(t, body["posts"].([]any), 1, "drafts are hidden")

	_, body = v.send(http.MethodGet, "/admin/blog", nil)
	assert.Len(t, body["posts"].([]any), 2)

	resp, body := v.send(http.MethodPost, "/admin/blog", map[string]any{"title": "Yeni Çay Sezonu", "content": "..."})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "yeni-cay-sezonu", body["slug"])
	env.shop.mu.Lock()
	assert.Equal(t, "yeni-cay-sezonu", env.shop.newPosts[0].Slug)
	env.shop.mu.Unlock()
}

func TestUploadImage(t *testing.T) {
	env := newTestEnv(t)
	v := adminVisitor(t, env)

	upload := func(name string) (*http.Response, map[string]any) {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		part, err := mw.CreateFormFile("file", name)
		require.NoError(t, err)
		_, _ = part.Write([]byte("not really a png"))
		require.NoError(t, mw.Close())

		req, err := http.NewRequest(http.MethodPost, env.url+"/admin/uploads", &buf)
		require.NoError(t, err)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		return v.do(req)
	}

	resp, body := upload("mug.PNG")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	url := body["url"].(string)
	assert.True(t, strings.HasPrefix(url, "http://shop.test/uploads/"))
	assert.True(t, strings.HasSuffix(url, ".png"))

	_, err := os.Stat(filepath.Join(env.h.UploadDir, filepath.Base(url)))
	assert.NoError(t, err)

	resp, _ = upload("script.sh")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
