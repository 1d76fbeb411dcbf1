// Package checkout turns a session cart plus a contact form into a placed
// order. The flow is a small state machine: Editing -> Submitting ->
// Succeeded, falling back to Editing when the order cannot be stored.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"storefront/internal/domain"
	"storefront/internal/logging"
	"storefront/internal/metrics"
)

// State of a checkout.
type State int

const (
	Editing State = iota
	Submitting
	Succeeded
)

func (s State) String() string {
	switch s {
	case Editing:
		return "editing"
	case Submitting:
		return "submitting"
	case Succeeded:
		return "succeeded"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

var (
	// ErrSubmitFailed is the single user-facing error for any failure to store the order.
	ErrSubmitFailed = errors.New("order could not be placed, please try again")
	// ErrNotEditing is returned when Submit is called outside the Editing state.
	ErrNotEditing = errors.New("checkout is not accepting submissions")
)

// Cart is the part of the cart engine checkout reads and reconciles.
type Cart interface {
	Lines() []domain.CartLine
	TotalCents() int64
	Clear()
	Close()
}

// OrderCreator stores an order header together with its items.
type OrderCreator interface {
	CreateOrder(ctx context.Context, header domain.Order, items []domain.OrderItem) (*domain.Order, error)
}

// Notifier tells a human that an order was placed. Best-effort.
type Notifier interface {
	OrderPlaced(ctx context.Context, order domain.Order, items []domain.OrderItem) error
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(o *Orchestrator) { o.logger = logging.OrNop(logger).Named("checkout") }
}

// WithClearDelay sets how long the confirmation stays up before the cart is
// cleared and closed.
func WithClearDelay(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d >= 0 {
			o.clearDelay = d
		}
	}
}

// WithNotifyTimeout bounds the background notification call.
func WithNotifyTimeout(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d > 0 {
			o.notifyTimeout = d
		}
	}
}

// OnSuccess registers a callback run after the cart has been cleared, unless
// the orchestrator was discarded first.
func OnSuccess(fn func(order domain.Order)) Option {
	return func(o *Orchestrator) { o.onSuccess = fn }
}

// Orchestrator drives one checkout attempt. Create a new one per checkout.
type Orchestrator struct {
	cart     Cart
	orders   OrderCreator
	notifier Notifier
	logger   *zap.Logger

	clearDelay    time.Duration
	notifyTimeout time.Duration
	onSuccess     func(order domain.Order)

	mu    sync.Mutex
	state State
	draft Draft
	errs  FieldErrors
	order *domain.Order
	alive bool
	wg    sync.WaitGroup
}

func New(cart Cart, orders OrderCreator, notifier Notifier, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		cart:          cart,
		orders:        orders,
		notifier:      notifier,
		logger:        zap.NewNop(),
		clearDelay:    3 * time.Second,
		notifyTimeout: 10 * time.Second,
		state:         Editing,
		errs:          FieldErrors{},
		alive:         true,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

func (o *Orchestrator) Draft() Draft {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.draft
}

// Errors returns the fields currently marked invalid.
func (o *Orchestrator) Errors() FieldErrors {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make(FieldErrors, len(o.errs))
	for f, bad := range o.errs {
		if bad {
			out[f] = true
		}
	}
	return out
}

// Order returns the placed order once Succeeded.
func (o *Orchestrator) Order() (domain.Order, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.order == nil {
		return domain.Order{}, false
	}
	return *o.order, true
}

// SetField edits the draft and clears that field's error marker. Edits are
// ignored once the checkout has left Editing.
func (o *Orchestrator) SetField(field Field, value string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state != Editing {
		return
	}
	o.draft.Set(field, value)
	delete(o.errs, field)
}

// Fill sets every field of the draft, as when a whole form is posted.
func (o *Orchestrator) Fill(d Draft) {
	o.SetField(FieldName, d.Name)
	o.SetField(FieldPhone, d.Phone)
	o.SetField(FieldAddress, d.Address)
	o.SetField(FieldCity, d.City)
	o.SetField(FieldNote, d.Note)
}

// Submit validates the draft and places the order. It returns a
// *ValidationError for bad input, domain.ErrEmptyCart for an empty cart and
// ErrSubmitFailed when the order could not be stored; in all those cases the
// checkout stays in Editing with the draft intact and the cart untouched.
func (o *Orchestrator) Submit(ctx context.Context) (*domain.Order, error) {
	o.mu.Lock()
	if o.state != Editing {
		o.mu.Unlock()
		return nil, ErrNotEditing
	}
	if errs := o.draft.Validate(); len(errs) > 0 {
		o.errs = errs
		o.mu.Unlock()
		metrics.CheckoutOutcomesTotal.WithLabelValues("invalid").Inc()
		o.logger.Debug("checkout validation failed", zap.Any("fields", errs.Fields()))
		return nil, &ValidationError{Fields: errs}
	}
	lines := o.cart.Lines()
	if len(lines) == 0 {
		o.mu.Unlock()
		metrics.CheckoutOutcomesTotal.WithLabelValues("empty").Inc()
		return nil, domain.ErrEmptyCart
	}
	draft := o.draft
	o.state = Submitting
	o.mu.Unlock()

	header, items := buildOrder(draft, lines)
	order, err := o.orders.CreateOrder(ctx, header, items)
	if err != nil {
		o.logger.Error("create order failed",
			zap.String("customer", header.CustomerName),
			zap.Int64("total_cents", header.TotalCents),
			zap.Int("items", len(items)),
			zap.Error(err),
		)
		metrics.CheckoutOutcomesTotal.WithLabelValues("failed").Inc()
		o.mu.Lock()
		o.state = Editing
		o.mu.Unlock()
		return nil, fmt.Errorf("%w: %w", ErrSubmitFailed, err)
	}

	placed := *order
	o.mu.Lock()
	o.state = Succeeded
	o.order = &placed
	o.mu.Unlock()

	metrics.OrdersCreatedTotal.Inc()
	metrics.CheckoutOutcomesTotal.WithLabelValues("placed").Inc()
	o.logger.Info("order placed",
		zap.String("order_id", placed.ID),
		zap.Int64("total_cents", placed.TotalCents),
		zap.Int("items", len(items)),
	)

	o.notify(ctx, placed, items)
	o.scheduleReset(placed)
	return &placed, nil
}

// Discard marks the orchestrator as no longer observed. A pending success
// callback is skipped; the cart is still cleared on schedule.
func (o *Orchestrator) Discard() {
	o.mu.Lock()
	o.alive = false
	o.mu.Unlock()
}

// Wait blocks until the background notification and the scheduled cart reset
// have finished.
func (o *Orchestrator) Wait() {
	o.wg.Wait()
}

func (o *Orchestrator) notify(ctx context.Context, order domain.Order, items []domain.OrderItem) {
	if o.notifier == nil {
		return
	}
	notifyCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), o.notifyTimeout)
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		defer cancel()
		defer func() {
			if r := recover(); r != nil {
				o.logger.Error("order notification panicked", zap.String("order_id", order.ID), zap.Any("panic", r))
			}
		}()
		if err := o.notifier.OrderPlaced(notifyCtx, order, items); err != nil {
			o.logger.Warn("order notification failed", zap.String("order_id", order.ID), zap.Error(err))
		}
	}()
}

func (o *Orchestrator) scheduleReset(order domain.Order) {
	o.wg.Add(1)
	time.AfterFunc(o.clearDelay, func() {
		defer o.wg.Done()
		o.cart.Clear()
		o.cart.Close()

		o.mu.Lock()
		alive := o.alive
		o.mu.Unlock()
		if alive && o.onSuccess != nil {
			o.onSuccess(order)
		}
	})
}

func buildOrder(d Draft, lines []domain.CartLine) (domain.Order, []domain.OrderItem) {
	var total int64
	items := make([]domain.OrderItem, 0, len(lines))
	for _, line := range lines {
		total += line.TotalCents()
		items = append(items, domain.OrderItem{
			VariantID:            line.VariantID,
			Quantity:             line.Quantity,
			PriceAtPurchaseCents: line.UnitPriceCents,
			Name:                 line.Name,
			Size:                 line.Size,
		})
	}
	header := domain.Order{
		CustomerName: strings.TrimSpace(d.Name),
		Phone:        strings.TrimSpace(d.Phone),
		Address:      strings.TrimSpace(d.Address),
		City:         strings.TrimSpace(d.City),
		TotalCents:   total,
		Status:       domain.OrderStatusNew,
	}
	if note := strings.TrimSpace(d.Note); note != "" {
		header.Note = &note
	}
	return header, items
}
