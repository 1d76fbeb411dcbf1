// Package cart holds the session cart: an ordered set of lines unique on
// (productId, variantId), mirrored to a snapshot store after every mutation.
package cart

import (
	"sync"

	"storefront/internal/domain"
)

// Store is the snapshot store the engine mirrors its lines to. Implementations
// must not fail loudly; persist.Adapter logs and swallows errors.
type Store interface {
	Get(key string, dst any) bool
	Set(key string, value any)
}

// State is a read-only view of the cart with derived totals.
type State struct {
	Lines      []domain.CartLine `json:"lines"`
	IsOpen     bool              `json:"isOpen"`
	TotalItems int               `json:"totalItems"`
	TotalCents int64             `json:"totalCents"`
}

// Engine owns one cart. All methods are safe for concurrent use; each
// mutation sees the result of the previous one and is flushed to the store
// before it returns.
type Engine struct {
	mu    sync.Mutex
	store Store
	key   string
	lines []domain.CartLine
	open  bool
}

// New loads the cart stored under key, starting empty when nothing is stored.
func New(store Store, key string) *Engine {
	e := &Engine{store: store, key: key, lines: []domain.CartLine{}}
	if store == nil {
		return e
	}
	var stored []domain.CartLine
	if store.Get(key, &stored) {
		for _, line := range stored {
			if line.ProductID == "" || line.VariantID == "" || line.Quantity < 1 {
				continue
			}
			e.lines = append(e.lines, line)
		}
	}
	return e
}

// Add merges quantity into the line for (product, variant) or appends a new
// line priced at the product's base price with the variant's current stock as
// its ceiling. The merge path does not clamp to MaxQuantity; only
// UpdateQuantity does. Quantities below 1 count as 1. Add opens the cart.
func (e *Engine) Add(product domain.Product, variant domain.Variant, quantity int) {
	if quantity < 1 {
		quantity = 1
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	if i := e.indexOf(product.ID, variant.ID); i >= 0 {
		e.lines[i].Quantity += quantity
	} else {
		e.lines = append(e.lines, domain.CartLine{
			ProductID:      product.ID,
			VariantID:      variant.ID,
			Name:           product.NameSr,
			LocalizedName:  product.NameEn,
			Size:           variant.Size,
			UnitPriceCents: product.BasePriceCents,
			Quantity:       quantity,
			MaxQuantity:    variant.Quantity,
			ImageURL:       product.ImageURL,
		})
	}
	e.open = true
	e.flush()
}

// Remove deletes the matching line. Absent lines are ignored.
func (e *Engine) Remove(productID, variantID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.removeLocked(productID, variantID)
}

// UpdateQuantity sets a line's quantity, clamped to its MaxQuantity.
// A quantity below 1, before or after clamping, removes the line; absent
// lines are ignored.
func (e *Engine) UpdateQuantity(productID, variantID string, quantity int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	i := e.indexOf(productID, variantID)
	if i < 0 {
		return
	}
	quantity = min(quantity, e.lines[i].MaxQuantity)
	if quantity < 1 {
		e.removeLocked(productID, variantID)
		return
	}
	e.lines[i].Quantity = quantity
	e.flush()
}

// Clear empties the cart.
func (e *Engine) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.lines = []domain.CartLine{}
	e.flush()
}

func (e *Engine) Open() {
	e.mu.Lock()
	e.open = true
	e.mu.Unlock()
}

func (e *Engine) Close() {
	e.mu.Lock()
	e.open = false
	e.mu.Unlock()
}

func (e *Engine) IsOpen() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.open
}

// Lines returns a copy of the lines in insertion order.
func (e *Engine) Lines() []domain.CartLine {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.copyLines()
}

// TotalItems is the sum of line quantities.
func (e *Engine) TotalItems() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return totalItems(e.lines)
}

// TotalCents is the sum of unit price times quantity over all lines.
func (e *Engine) TotalCents() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return totalCents(e.lines)
}

// Snapshot returns lines, visibility and totals from one consistent read.
func (e *Engine) Snapshot() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return State{
		Lines:      e.copyLines(),
		IsOpen:     e.open,
		TotalItems: totalItems(e.lines),
		TotalCents: totalCents(e.lines),
	}
}

func (e *Engine) removeLocked(productID, variantID string) {
	i := e.indexOf(productID, variantID)
	if i < 0 {
		return
	}
	e.lines = append(e.lines[:i:i], e.lines[i+1:]...)
	e.flush()
}

func (e *Engine) indexOf(productID, variantID string) int {
	for i, line := range e.lines {
		if line.ProductID == productID && line.VariantID == variantID {
			return i
		}
	}
	return -1
}

func (e *Engine) copyLines() []domain.CartLine {
	out := make([]domain.CartLine, len(e.lines))
	copy(out, e.lines)
	return out
}

// flush must be called with mu held.
func (e *Engine) flush() {
	if e.store == nil {
		return
	}
	e.store.Set(e.key, e.copyLines())
}

func totalItems(lines []domain.CartLine) int {
	n := 0
	for _, line := range lines {
		n += line.Quantity
	}
	return n
}

func totalCents(lines []domain.CartLine) int64 {
	var sum int64
	for _, line := range lines {
		sum += line.TotalCents()
	}
	return sum
}
