package httpserver

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storefront/internal/domain"
	"storefront/internal/media"
	"storefront/internal/service/auth"
	"storefront/internal/service/catalog"
)

const claimsCtxKey = "adminClaims"

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *handlers) adminLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	token, err := h.deps.Auth.Login(req.Email, req.Password)
	if err != nil {
		h.logger.Info("admin login rejected", zap.String("email", req.Email), zap.Error(err))
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, token)
}

// adminAuth requires a valid bearer token issued by adminLogin.
func (h *handlers) adminAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(raw) == "" {
			writeError(c, h.logger, auth.ErrInvalidToken)
			return
		}
		claims, err := h.deps.Auth.Verify(strings.TrimSpace(raw))
		if err != nil {
			writeError(c, h.logger, err)
			return
		}
		c.Set(claimsCtxKey, claims)
		c.Next()
	}
}

func (h *handlers) adminListProducts(c *gin.Context) {
	products, err := h.deps.Catalog.AdminListProducts(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, toProductResponses(products, h.requestLanguage(c)))
}

func (h *handlers) adminGetProduct(c *gin.Context) {
	p, err := h.deps.Catalog.AdminGetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, toProductResponse(*p, h.requestLanguage(c)))
}

func (h *handlers) adminCreateProduct(c *gin.Context) {
	var in catalog.ProductInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	p, err := h.deps.Catalog.CreateProduct(c.Request.Context(), in)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, toProductResponse(*p, h.requestLanguage(c)))
}

func (h *handlers) adminUpdateProduct(c *gin.Context) {
	var in catalog.ProductInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	p, err := h.deps.Catalog.UpdateProduct(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, toProductResponse(*p, h.requestLanguage(c)))
}

func (h *handlers) adminDeleteProduct(c *gin.Context) {
	if err := h.deps.Catalog.DeleteProduct(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handlers) adminCreateVariant(c *gin.Context) {
	var in catalog.VariantInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	v, err := h.deps.Catalog.CreateVariant(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, v)
}

func (h *handlers) adminUpdateVariant(c *gin.Context) {
	var in catalog.VariantInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	v, err := h.deps.Catalog.UpdateVariant(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

type stockRequest struct {
	Quantity *int `json:"quantity"`
}

func (h *handlers) adminSetStock(c *gin.Context) {
	var req stockRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Quantity == nil {
		badRequest(c, "quantity is required")
		return
	}
	v, err := h.deps.Catalog.SetStock(c.Request.Context(), c.Param("id"), *req.Quantity)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

func (h *handlers) adminListBrands(c *gin.Context) {
	brands, err := h.deps.Catalog.AdminListBrands(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	if brands == nil {
		brands = []domain.Brand{}
	}
	c.JSON(http.StatusOK, brands)
}

func (h *handlers) adminCreateBrand(c *gin.Context) {
	var in catalog.BrandInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	b, err := h.deps.Catalog.CreateBrand(c.Request.Context(), in)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, b)
}

func (h *handlers) adminUpdateBrand(c *gin.Context) {
	var in catalog.BrandInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	b, err := h.deps.Catalog.UpdateBrand(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *handlers) adminListOrders(c *gin.Context) {
	from, to, err := parseRange(c)
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	filter := domain.OrderFilter{Status: c.Query("status"), From: from, To: to}
	orders, err := h.deps.Orders.List(c.Request.Context(), filter)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponses(orders))
}

func (h *handlers) adminGetOrder(c *gin.Context) {
	o, err := h.deps.Orders.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(*o))
}

func adminEmail(c *gin.Context) string {
	if claims, ok := c.Get(claimsCtxKey); ok {
		if cl, ok := claims.(*auth.Claims); ok {
			return cl.Email
		}
	}
	return ""
}

type statusRequest struct {
	Status string `json:"status"`
}

func (h *handlers) adminUpdateOrderStatus(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	o, err := h.deps.Orders.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	h.logger.Info("order status changed",
		zap.String("order_id", o.ID),
		zap.String("status", o.Status),
		zap.String("admin", adminEmail(c)),
	)
	c.JSON(http.StatusOK, toOrderResponse(*o))
}

func (h *handlers) adminAnalytics(c *gin.Context) {
	from, to, err := parseRange(c)
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	report, err := h.deps.Analytics.Report(c.Request.Context(), from, to)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *handlers) adminLowStock(c *gin.Context) {
	threshold := 0
	if raw := c.Query("threshold"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			badRequest(c, "threshold must be a non-negative integer")
			return
		}
		threshold = n
	}
	alerts, err := h.deps.Catalog.LowStock(c.Request.Context(), threshold)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	if alerts == nil {
		alerts = []domain.StockAlert{}
	}
	c.JSON(http.StatusOK, alerts)
}

func (h *handlers) adminDashboard(c *gin.Context) {
	d, err := h.deps.Analytics.Dashboard(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (h *handlers) adminUpload(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		badRequest(c, "multipart field \"file\" is required")
		return
	}
	if fh.Size > media.MaxUploadBytes {
		writeError(c, h.logger, media.ErrTooLarge)
		return
	}
	f, err := fh.Open()
	if err != nil {
		writeError(c, h.logger, fmt.Errorf("open upload: %w", err))
		return
	}
	defer f.Close()

	url, err := h.deps.Uploads.Upload(c.Request.Context(), fh.Filename, f)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"url": url})
}

// parseRange reads the from/to query parameters as RFC 3339 timestamps or
// YYYY-MM-DD dates. A date-only "to" covers the whole day.
func parseRange(c *gin.Context) (time.Time, time.Time, error) {
	from, err := parseTimeParam(c.Query("from"), false)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("from: %w", err)
	}
	to, err := parseTimeParam(c.Query("to"), true)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("to: %w", err)
	}
	if !from.IsZero() && !to.IsZero() && from.After(to) {
		return time.Time{}, time.Time{}, errors.New("from must not be after to")
	}
	return from, to, nil
}

func parseTimeParam(raw string, endOfDay bool) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	day, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return time.Time{}, errors.New("expected RFC 3339 or YYYY-MM-DD")
	}
	if endOfDay {
		return day.Add(24*time.Hour - time.Nanosecond), nil
	}
	return day, nil
}
