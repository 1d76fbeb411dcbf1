package httpserver

import (
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/cart"
	"storefront/internal/domain"
	"storefront/internal/persist"
)

func TestListProductsPassesFilterAndLocalizes(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(t, http.MethodGet, "/api/products?category=shirts&brand=b1&style=casual&inStock=true&lang=en", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, domain.ProductFilter{Category: "shirts", BrandID: "b1", Style: "casual", InStockOnly: true}, env.catalog.lastQuery)
	products := decode[[]productResponse](t, rec)
	require.Len(t, products, 1)
	assert.Equal(t, "Shirt", products[0].Name)
	assert.Equal(t, "€20.00", products[0].Price.Formatted)
	assert.Equal(t, []string{"M"}, products[0].AvailableSizes)
	assert.True(t, products[0].InStock)
}

func TestListProductsRejectsBadInStock(t *testing.T) {
	env := newTestEnv(t, nil)
	rec := env.do(t, http.MethodGet, "/api/products?inStock=maybe", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetProductNotFound(t *testing.T) {
	env := newTestEnv(t, nil)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/api/products/nope", "", nil).Code)
	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/products/p1", "", nil).Code)
}

func TestBrandsNeverNull(t *testing.T) {
	env := newTestEnv(t, nil)
	rec := env.do(t, http.MethodGet, "/api/brands", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestCategoriesLocalized(t *testing.T) {
	env := newTestEnv(t, nil)
	rec := env.do(t, http.MethodGet, "/api/categories?lang=en", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	cats := decode[[]categoryResponse](t, rec)
	require.Len(t, cats, 1)
	assert.Equal(t, "Shirts", cats[0].Name)
	assert.Equal(t, 1, cats[0].ProductCount)
}

func TestLanguagePreference(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(t, http.MethodGet, "/api/language", "", nil)
	assert.JSONEq(t, `{"language":"sr"}`, rec.Body.String())

	rec = env.do(t, http.MethodPut, "/api/language", `{"language":"EN"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"language":"en"}`, env.do(t, http.MethodGet, "/api/language", "", nil).Body.String())

	rec = env.do(t, http.MethodPost, "/api/language/toggle", "", nil)
	assert.JSONEq(t, `{"language":"sr"}`, rec.Body.String())

	rec = env.do(t, http.MethodPut, "/api/language", `{"language":"de"}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCartLifecycle(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(t, http.MethodPost, "/api/cart/lines", `{"productId":"p1","variantId":"v-m","quantity":2}`, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	c := decode[cartResponse](t, rec)
	require.Len(t, c.Lines, 1)
	assert.True(t, c.IsOpen)
	assert.Equal(t, 2, c.TotalItems)
	assert.Equal(t, "€40.00", c.TotalPrice.Formatted)
	assert.Equal(t, "Košulja", c.Lines[0].DisplayName)
	assert.Equal(t, 5, c.Lines[0].MaxQuantity)

	rec = env.do(t, http.MethodPatch, "/api/cart/lines/p1/v-m", `{"quantity":10}`, nil)
	c = decode[cartResponse](t, rec)
	assert.Equal(t, 5, c.Lines[0].Quantity)

	rec = env.do(t, http.MethodPost, "/api/cart/close", "", nil)
	assert.False(t, decode[cartResponse](t, rec).IsOpen)

	rec = env.do(t, http.MethodDelete, "/api/cart/lines/p1/v-m", "", nil)
	assert.Empty(t, decode[cartResponse](t, rec).Lines)

	env.do(t, http.MethodPost, "/api/cart/lines", `{"productId":"p1","variantId":"v-m"}`, nil)
	rec = env.do(t, http.MethodDelete, "/api/cart", "", nil)
	c = decode[cartResponse](t, rec)
	assert.Empty(t, c.Lines)
	assert.Equal(t, int64(0), c.TotalPrice.CentAmount)
}

func TestAddCartLineErrors(t *testing.T) {
	env := newTestEnv(t, nil)

	cases := []struct {
		name string
		body string
		want int
	}{
		{"missing ids", `{"quantity":1}`, http.StatusBadRequest},
		{"unknown product", `{"productId":"p9","variantId":"v-m"}`, http.StatusNotFound},
		{"unknown size", `{"productId":"p1","variantId":"v-xl"}`, http.StatusNotFound},
		{"sold out size", `{"productId":"p1","variantId":"v-l"}`, http.StatusConflict},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, "/api/cart/lines", tc.body, nil)
			assert.Equal(t, tc.want, rec.Code)
		})
	}
	assert.Empty(t, env.carts.Get(testSession).Lines())
}

func TestUpdateCartLineRequiresQuantity(t *testing.T) {
	env := newTestEnv(t, nil)
	rec := env.do(t, http.MethodPatch, "/api/cart/lines/p1/v-m", `{}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

const validDraft = `{"name":"Ana Anić","phone":"+381 64 123 4567","address":"Knez Mihailova 1","city":"Beograd"}`

func TestCheckoutPlacesOrderAndClearsCartLater(t *testing.T) {
	env := newTestEnv(t, nil)
	env.do(t, http.MethodPost, "/api/cart/lines", `{"productId":"p1","variantId":"v-m","quantity":2}`, nil)

	rec := env.do(t, http.MethodPost, "/api/checkout", validDraft, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	order := decode[orderResponse](t, rec)
	assert.Equal(t, "order-1", order.ID)
	assert.Equal(t, int64(4000), order.TotalCents)
	assert.Equal(t, "€40.00", order.Total.Formatted)
	assert.Equal(t, domain.OrderStatusNew, order.Status)
	require.Len(t, order.Items, 1)
	assert.Equal(t, "v-m", order.Items[0].VariantID)

	// A second submission while the confirmation is showing is refused.
	rec = env.do(t, http.MethodPost, "/api/checkout", validDraft, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	engine := env.carts.Get(testSession)
	require.Eventually(t, func() bool {
		return len(engine.Lines()) == 0 && !env.server.handlers.checkouts.busy(testSession)
	}, time.Second, 5*time.Millisecond)
	assert.False(t, engine.IsOpen())
	assert.Len(t, env.orders.created, 1)
}

func TestAnonymousCartRequestsStayBounded(t *testing.T) {
	carts := cart.NewSessions(persist.NewAdapter(persist.NewMemoryBackend(), nil, 0), 10, time.Hour)
	env := newTestEnv(t, func(d *Deps) { d.Carts = carts })

	for i := 0; i < 100; i++ {
		rec := env.do(t, http.MethodGet, "/api/cart", "", map[string]string{sessionHeader: "x"})
		require.Equal(t, http.StatusOK, rec.Code)
	}
	assert.Equal(t, 10, carts.Len())
}

func TestCheckoutKeepsCartResidentUntilCleared(t *testing.T) {
	carts := cart.NewSessions(persist.NewAdapter(persist.NewMemoryBackend(), nil, 0), 1, time.Hour)
	env := newTestEnv(t, func(d *Deps) {
		d.Carts = carts
		d.CheckoutClearDelay = 100 * time.Millisecond
	})
	env.do(t, http.MethodPost, "/api/cart/lines", `{"productId":"p1","variantId":"v-m"}`, nil)
	engine := carts.Get(testSession)

	rec := env.do(t, http.MethodPost, "/api/checkout", validDraft, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	env.do(t, http.MethodGet, "/api/cart", "", map[string]string{sessionHeader: uuid.NewString()})
	assert.Same(t, engine, carts.Get(testSession))

	require.Eventually(t, func() bool {
		return len(engine.Lines()) == 0 && !env.server.handlers.checkouts.busy(testSession)
	}, time.Second, 5*time.Millisecond)

	env.do(t, http.MethodGet, "/api/cart", "", map[string]string{sessionHeader: uuid.NewString()})
	reloaded := carts.Get(testSession)
	assert.NotSame(t, engine, reloaded)
	assert.Empty(t, reloaded.Lines())
}

func TestCheckoutValidationErrors(t *testing.T) {
	env := newTestEnv(t, nil)
	env.do(t, http.MethodPost, "/api/cart/lines", `{"productId":"p1","variantId":"v-m"}`, nil)

	rec := env.do(t, http.MethodPost, "/api/checkout", `{"name":"Ana","phone":"123"}`, nil)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := decode[errorResponse](t, rec)
	assert.Equal(t, []string{"address", "city", "phone"}, body.Fields)

	assert.False(t, env.server.handlers.checkouts.busy(testSession))
	assert.Len(t, env.carts.Get(testSession).Lines(), 1)
}

func TestCheckoutEmptyCart(t *testing.T) {
	env := newTestEnv(t, nil)
	rec := env.do(t, http.MethodPost, "/api/checkout", validDraft, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCheckoutStoreFailureIsGeneric(t *testing.T) {
	env := newTestEnv(t, nil)
	env.orders.createErr = assert.AnError
	env.do(t, http.MethodPost, "/api/cart/lines", `{"productId":"p1","variantId":"v-m"}`, nil)

	rec := env.do(t, http.MethodPost, "/api/checkout", validDraft, nil)
	require.Equal(t, http.StatusBadGateway, rec.Code)
	assert.NotContains(t, rec.Body.String(), assert.AnError.Error())
	assert.Len(t, env.carts.Get(testSession).Lines(), 1)

	env.orders.createErr = nil
	rec = env.do(t, http.MethodPost, "/api/checkout", validDraft, nil)
	assert.Equal(t, http.StatusCreated, rec.Code)
}
