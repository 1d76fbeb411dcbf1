package httpserver

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/domain"
	"storefront/internal/media"
	"storefront/internal/service/auth"
)

func login(t *testing.T, env *testEnv) map[string]string {
	t.Helper()
	rec := env.do(t, http.MethodPost, "/api/admin/login", `{"email":"admin@shop.rs","password":"s3cret-pass"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	token := decode[auth.Token](t, rec)
	require.NotEmpty(t, token.AccessToken)
	return map[string]string{"Authorization": "Bearer " + token.AccessToken}
}

func TestAdminRequiresToken(t *testing.T) {
	env := newTestEnv(t, nil)

	assert.Equal(t, http.StatusUnauthorized, env.do(t, http.MethodGet, "/api/admin/products", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, env.do(t, http.MethodGet, "/api/admin/products", "", map[string]string{"Authorization": "Bearer junk"}).Code)
	assert.Equal(t, http.StatusUnauthorized, env.do(t, http.MethodGet, "/api/admin/products", "", map[string]string{"Authorization": "Basic abc"}).Code)

	rec := env.do(t, http.MethodPost, "/api/admin/login", `{"email":"admin@shop.rs","password":"wrong"}`, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminProductsAndVariants(t *testing.T) {
	env := newTestEnv(t, nil)
	headers := login(t, env)

	rec := env.do(t, http.MethodGet, "/api/admin/products", "", headers)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]productResponse](t, rec), 1)

	rec = env.do(t, http.MethodPost, "/api/admin/products", `{"nameSr":"Jakna","basePriceCents":8900}`, headers)
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/admin/products", `{"nameSr":" "}`, headers)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPut, "/api/admin/products/missing", `{"nameSr":"X"}`, headers)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodDelete, "/api/admin/products/p1", "", headers)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/admin/products/p1/variants", `{"size":"XL","quantity":4}`, headers)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "XL", decode[domain.Variant](t, rec).Size)

	rec = env.do(t, http.MethodPut, "/api/admin/variants/v-m/stock", `{"quantity":7}`, headers)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 7, decode[domain.Variant](t, rec).Quantity)

	rec = env.do(t, http.MethodPut, "/api/admin/variants/v-m/stock", `{}`, headers)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminBrands(t *testing.T) {
	env := newTestEnv(t, nil)
	headers := login(t, env)

	rec := env.do(t, http.MethodGet, "/api/admin/brands", "", headers)
	assert.JSONEq(t, `[{"id":"b1","name":"Nord","isActive":false,"createdAt":"0001-01-01T00:00:00Z"}]`, rec.Body.String())

	rec = env.do(t, http.MethodPost, "/api/admin/brands", `{"name":"Sever"}`, headers)
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = env.do(t, http.MethodPut, "/api/admin/brands/b1", `{"name":"Nord 2"}`, headers)
	assert.Equal(t, "Nord 2", decode[domain.Brand](t, rec).Name)
}

func TestAdminOrderStatus(t *testing.T) {
	env := newTestEnv(t, nil)
	headers := login(t, env)

	rec := env.do(t, http.MethodPatch, "/api/admin/orders/o1/status", `{"status":"shipped"}`, headers)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.OrderStatusShipped, decode[orderResponse](t, rec).Status)

	rec = env.do(t, http.MethodPatch, "/api/admin/orders/o1/status", `{"status":"lost"}`, headers)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	env.orders.statusErr = fmt.Errorf("variant v-m: %w", domain.ErrInsufficientStock)
	rec = env.do(t, http.MethodPatch, "/api/admin/orders/o1/status", `{"status":"confirmed"}`, headers)
	assert.Equal(t, http.StatusConflict, rec.Code)

	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/api/admin/orders/nope", "", headers).Code)
}

func TestAdminOrderListFilters(t *testing.T) {
	env := newTestEnv(t, nil)
	headers := login(t, env)

	rec := env.do(t, http.MethodGet, "/api/admin/orders?status=new&from=2026-03-01&to=2026-03-31", "", headers)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	assert.Equal(t, "new", env.orders.filter.Status)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), env.orders.filter.From)
	assert.Equal(t, time.Date(2026, 3, 31, 23, 59, 59, int(time.Second-time.Nanosecond), time.UTC), env.orders.filter.To)

	rec = env.do(t, http.MethodGet, "/api/admin/orders?from=2026-04-01&to=2026-03-01", "", headers)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = env.do(t, http.MethodGet, "/api/admin/orders?from=yesterday", "", headers)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminAnalyticsInventoryDashboard(t *testing.T) {
	env := newTestEnv(t, nil)
	headers := login(t, env)

	rec := env.do(t, http.MethodGet, "/api/admin/analytics?from=2026-01-01T00:00:00Z", "", headers)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), env.stats.from)
	assert.True(t, env.stats.to.IsZero())

	rec = env.do(t, http.MethodGet, "/api/admin/inventory/low-stock?threshold=5", "", headers)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 5, env.catalog.threshold)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = env.do(t, http.MethodGet, "/api/admin/inventory/low-stock?threshold=-1", "", headers)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/admin/dashboard", "", headers)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"todayOrders":1`)
}

func multipartUpload(t *testing.T, field, name string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile(field, name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func TestAdminUpload(t *testing.T) {
	env := newTestEnv(t, nil)
	headers := login(t, env)

	body, contentType := multipartUpload(t, "file", "shirt.png", []byte("\x89PNG\r\n\x1a\nrest"))
	req := httptest.NewRequest(http.MethodPost, "/api/admin/uploads", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", headers["Authorization"])
	rec := httptest.NewRecorder()
	env.server.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "products/x.png")
	assert.Equal(t, "shirt.png", env.uploader.name)

	req = httptest.NewRequest(http.MethodPost, "/api/admin/uploads", bytes.NewBufferString("{}"))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", headers["Authorization"])
	rec = httptest.NewRecorder()
	env.server.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminUploadDisabled(t *testing.T) {
	env := newTestEnv(t, func(d *Deps) { d.Uploads = media.Disabled{} })
	headers := login(t, env)

	body, contentType := multipartUpload(t, "file", "shirt.png", []byte("\x89PNG\r\n\x1a\n"))
	req := httptest.NewRequest(http.MethodPost, "/api/admin/uploads", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", headers["Authorization"])
	rec := httptest.NewRecorder()
	env.server.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
