package httpserver

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"storefront/internal/domain"
	"storefront/internal/language"
)

func (h *handlers) listProducts(c *gin.Context) {
	filter := domain.ProductFilter{
		Category: c.Query("category"),
		BrandID:  c.Query("brand"),
		Style:    c.Query("style"),
	}
	if raw := c.Query("inStock"); raw != "" {
		inStock, err := strconv.ParseBool(raw)
		if err != nil {
			badRequest(c, "inStock must be a boolean")
			return
		}
		filter.InStockOnly = inStock
	}
	products, err := h.deps.Catalog.ListProducts(c.Request.Context(), filter)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, toProductResponses(products, h.requestLanguage(c)))
}

func (h *handlers) getProduct(c *gin.Context) {
	p, err := h.deps.Catalog.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, toProductResponse(*p, h.requestLanguage(c)))
}

func (h *handlers) listBrands(c *gin.Context) {
	brands, err := h.deps.Catalog.ListBrands(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	if brands == nil {
		brands = []domain.Brand{}
	}
	c.JSON(http.StatusOK, brands)
}

func (h *handlers) listCategories(c *gin.Context) {
	categories, err := h.deps.Categories.List(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	lang := h.requestLanguage(c)
	out := make([]categoryResponse, 0, len(categories))
	for _, cat := range categories {
		out = append(out, categoryResponse{Category: cat, Name: language.Pick(lang, cat.NameSr, cat.NameEn)})
	}
	c.JSON(http.StatusOK, out)
}

type languageBody struct {
	Language string `json:"language"`
}

func (h *handlers) getLanguage(c *gin.Context) {
	c.JSON(http.StatusOK, languageBody{Language: string(h.deps.Languages.Get(sessionID(c)))})
}

func (h *handlers) setLanguage(c *gin.Context) {
	var body languageBody
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	code, err := language.Parse(body.Language)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	h.deps.Languages.Set(sessionID(c), code)
	c.JSON(http.StatusOK, languageBody{Language: string(code)})
}

func (h *handlers) toggleLanguage(c *gin.Context) {
	code := h.deps.Languages.Toggle(sessionID(c))
	c.JSON(http.StatusOK, languageBody{Language: string(code)})
}
