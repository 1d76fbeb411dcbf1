package httpserver

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"

	"storefront/internal/cart"
	"storefront/internal/checkout"
	"storefront/internal/domain"
)

// checkoutTracker keeps at most one live orchestrator per session, from
// submission until its cart has been cleared. The session's cart stays
// pinned in memory for that window.
type checkoutTracker struct {
	mu      sync.Mutex
	carts   *cart.Sessions
	pending map[string]*checkout.Orchestrator
}

func newCheckoutTracker(carts *cart.Sessions) *checkoutTracker {
	return &checkoutTracker{carts: carts, pending: make(map[string]*checkout.Orchestrator)}
}

func (t *checkoutTracker) begin(sessionID string, build func(engine *cart.Engine, done func(domain.Order)) *checkout.Orchestrator) (*checkout.Orchestrator, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, busy := t.pending[sessionID]; busy {
		return nil, checkout.ErrNotEditing
	}
	o := build(t.carts.Pin(sessionID), func(domain.Order) { t.release(sessionID) })
	t.pending[sessionID] = o
	return o, nil
}

func (t *checkoutTracker) release(sessionID string) {
	t.carts.Unpin(sessionID)
	t.mu.Lock()
	delete(t.pending, sessionID)
	t.mu.Unlock()
}

func (t *checkoutTracker) busy(sessionID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.pending[sessionID]
	return ok
}

// wait blocks until every pending orchestrator has finished its background
// work.
func (t *checkoutTracker) wait() {
	t.mu.Lock()
	pending := make([]*checkout.Orchestrator, 0, len(t.pending))
	for _, o := range t.pending {
		pending = append(pending, o)
	}
	t.mu.Unlock()
	for _, o := range pending {
		o.Wait()
	}
}

func (h *handlers) checkout(c *gin.Context) {
	var draft checkout.Draft
	if err := c.ShouldBindJSON(&draft); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	sid := sessionID(c)
	o, err := h.checkouts.begin(sid, func(engine *cart.Engine, done func(domain.Order)) *checkout.Orchestrator {
		return checkout.New(engine, h.deps.Orders, h.deps.Notifier,
			checkout.WithLogger(h.logger),
			checkout.WithClearDelay(h.deps.CheckoutClearDelay),
			checkout.WithNotifyTimeout(h.deps.NotifyTimeout),
			checkout.OnSuccess(done),
		)
	})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	o.Fill(draft)
	order, err := o.Submit(c.Request.Context())
	if err != nil {
		h.checkouts.release(sid)
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, toOrderResponse(*order))
}
