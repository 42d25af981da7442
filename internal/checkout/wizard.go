package checkout

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/vetaris/storefront-golang/internal/backend"
	"github.com/vetaris/storefront-golang/internal/models"
	"go.uber.org/zap"
)

// Where the wizard sends the visitor.
const (
	CatalogPath = "/"
	AccountPath = "/account"
	LoginPath   = "/login"
)

// DefaultRedirectDelay is how long the success notice stays up before
// the visitor is sent to the account view.
const DefaultRedirectDelay = 2 * time.Second

const (
	successNotice      = "Order received! Redirecting to your account..."
	genericOrderFailed = "Your order could not be created. Please try again."
)

// Address is the delivery form. Every field is required; content is not
// otherwise checked.
type Address struct {
	FullName string `json:"full_name" validate:"required"`
	Phone    string `json:"phone" validate:"required"`
	City     string `json:"city" validate:"required"`
	District string `json:"district" validate:"required"`
	Line     string `json:"address" validate:"required"`
}

func (a Address) trimmed() Address {
	return Address{
		FullName: strings.TrimSpace(a.FullName),
		Phone:    strings.TrimSpace(a.Phone),
		City:     strings.TrimSpace(a.City),
		District: strings.TrimSpace(a.District),
		Line:     strings.TrimSpace(a.Line),
	}
}

// Payment is the card form.
type Payment struct {
	CardNumber string `json:"card_number"`
	CardName   string `json:"card_name"`
	Expiry     string `json:"expiry"`
}

// Draft is everything typed into the wizard. It lives in memory only.
type Draft struct {
	Address Address `json:"address"`
	Payment Payment `json:"-"`
}

// CartStore is the persisted cart the wizard reads and clears.
type CartStore interface {
	Load(ctx context.Context) models.Cart
	Clear(ctx context.Context) error
}

// OrderPlacer submits orders to the backend.
type OrderPlacer interface {
	CreateOrder(ctx context.Context, req models.CreateOrderRequest) (models.OrderConfirmation, error)
}

// Outcome reports how a payment submission ended. Redirect, when set, is
// where the visitor goes next, after waiting After.
type Outcome struct {
	State        State                     `json:"state"`
	Notice       string                    `json:"notice,omitempty"`
	Error        string                    `json:"error,omitempty"`
	Redirect     string                    `json:"redirect,omitempty"`
	After        time.Duration             `json:"-"`
	Confirmation *models.OrderConfirmation `json:"confirmation,omitempty"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Wizard is one visitor's checkout. Its methods may be called from
// concurrent requests; Submitting excludes a second submission.
type Wizard struct {
	mu            sync.Mutex
	state         State
	draft         Draft
	lastError     string
	touched       time.Time
	store         CartStore
	orders        OrderPlacer
	redirectDelay time.Duration
	log           *zap.Logger
}

// Option customizes a Wizard.
type Option func(*Wizard)

func WithRedirectDelay(d time.Duration) Option {
	return func(w *Wizard) { w.redirectDelay = d }
}

func WithLogger(log *zap.Logger) Option {
	return func(w *Wizard) { w.log = log }
}

// Enter starts a checkout. An empty persisted cart yields ErrEmptyCart and
// no wizard; the caller sends the visitor back to CatalogPath.
func Enter(ctx context.Context, store CartStore, orders OrderPlacer, opts ...Option) (*Wizard, error) {
	if store.Load(ctx).IsEmpty() {
		return nil, ErrEmptyCart
	}

	w := &Wizard{
		state:         AwaitingAddress,
		store:         store,
		orders:        orders,
		redirectDelay: DefaultRedirectDelay,
		log:           zap.NewNop(),
		touched:       time.Now(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

func (w *Wizard) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Draft returns a copy of the typed-in data.
func (w *Wizard) Draft() Draft {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.draft
}

// LastError is the message of the most recent failed submission.
func (w *Wizard) LastError() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastError
}

func (w *Wizard) lastTouched() time.Time {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.touched
}

// SubmitAddress moves to AwaitingPayment when every address field is
// filled. The address is kept either way so the form can be redrawn.
func (w *Wizard) SubmitAddress(addr Address) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.touched = time.Now()

	if w.state != AwaitingAddress {
		return fmt.Errorf("%w: submit address in %s", ErrInvalidTransition, w.state)
	}

	addr = addr.trimmed()
	w.draft.Address = addr
	if err := validate.Struct(addr); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fe.Field())
			}
			return fmt.Errorf("%w: missing %s", ErrInvalidAddress, strings.Join(fields, ", "))
		}
		return fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}

	w.state = AwaitingPayment
	return nil
}

// Back returns from the payment step to the address step without
// touching the draft.
func (w *Wizard) Back() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.touched = time.Now()

	switch w.state {
	case AwaitingPayment:
		w.state = AwaitingAddress
		return nil
	case AwaitingAddress:
		return nil
	default:
		return fmt.Errorf("%w: back in %s", ErrInvalidTransition, w.state)
	}
}

// SubmitPayment validates the card and places the order from the
// persisted cart. A returned error means nothing was sent; backend
// failures are reported in the Outcome instead.
func (w *Wizard) SubmitPayment(ctx context.Context, p Payment) (Outcome, error) {
	// 1. --- Gate on state and card number ---
	w.mu.Lock()
	w.touched = time.Now()
	switch w.state {
	case Submitting:
		w.mu.Unlock()
		return Outcome{}, ErrSubmissionInFlight
	case AwaitingPayment:
	default:
		state := w.state
		w.mu.Unlock()
		return Outcome{}, fmt.Errorf("%w: submit payment in %s", ErrInvalidTransition, state)
	}

	w.draft.Payment = p
	if len(digitsOnly(p.CardNumber)) < minCardDigits {
		w.mu.Unlock()
		return Outcome{}, ErrInvalidCardNumber
	}

	// 2. --- Build the order from the persisted cart ---
	cart := w.store.Load(ctx)
	if cart.IsEmpty() {
		w.mu.Unlock()
		return Outcome{State: AwaitingPayment, Redirect: CatalogPath}, ErrEmptyCart
	}
	req := models.CreateOrderRequest{Items: make([]models.OrderLineRequest, 0, len(cart.Lines))}
	for _, line := range cart.Lines {
		req.Items = append(req.Items, models.OrderLineRequest{ProductID: line.ProductID, Quantity: line.Quantity})
	}

	w.state = Submitting
	w.mu.Unlock()

	// 3. --- Submit outside the lock ---
	conf, err := w.orders.CreateOrder(ctx, req)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.touched = time.Now()

	// 4. --- Failure: record it and go back to payment ---
	if err != nil {
		msg := backend.Reason(err, genericOrderFailed)
		w.lastError = msg
		w.state = AwaitingPayment
		w.log.Warn("order submission failed", zap.Int("lines", len(req.Items)), zap.Error(err))

		out := Outcome{State: Failed, Error: msg}
		if backend.IsUnauthenticated(err) {
			out.Redirect = LoginPath
		}
		return out, nil
	}

	// 5. --- Success: clear the cart, then send the visitor on ---
	if err := w.store.Clear(ctx); err != nil {
		w.log.Error("cart clear after order failed", zap.Error(err))
	}
	w.state = Succeeded
	w.lastError = ""
	w.log.Info("order placed", zap.Int64("order_id", conf.OrderID), zap.Int("lines", len(req.Items)))

	return Outcome{
		State:        Succeeded,
		Notice:       successNotice,
		Redirect:     AccountPath,
		After:        w.redirectDelay,
		Confirmation: &conf,
	}, nil
}
