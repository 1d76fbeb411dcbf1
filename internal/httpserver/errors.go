package httpserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storefront/internal/checkout"
	"storefront/internal/domain"
	"storefront/internal/language"
	"storefront/internal/media"
	"storefront/internal/service/auth"
	"storefront/internal/service/catalog"
)

type errorResponse struct {
	Error  string   `json:"error"`
	Fields []string `json:"fields,omitempty"`
}

func statusFor(err error) int {
	var verr *checkout.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrConflict),
		errors.Is(err, domain.ErrInsufficientStock),
		errors.Is(err, checkout.ErrNotEditing):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInvalidStatus),
		errors.Is(err, domain.ErrEmptyCart),
		errors.Is(err, catalog.ErrInvalidInput),
		errors.Is(err, language.ErrUnsupported):
		return http.StatusBadRequest
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken):
		return http.StatusUnauthorized
	case errors.Is(err, auth.ErrNotConfigured), errors.Is(err, media.ErrNotConfigured):
		return http.StatusServiceUnavailable
	case errors.Is(err, media.ErrUnsupportedType):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, media.ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, checkout.ErrSubmitFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeError maps err to a status code and a JSON body. Unexpected errors are
// logged and answered with a generic message.
func writeError(c *gin.Context, logger *zap.Logger, err error) {
	status := statusFor(err)
	resp := errorResponse{Error: err.Error()}

	var verr *checkout.ValidationError
	switch {
	case errors.As(err, &verr):
		for _, f := range verr.Fields.Fields() {
			resp.Fields = append(resp.Fields, string(f))
		}
		logger.Debug("checkout validation failed", zap.Strings("fields", resp.Fields))
	case errors.Is(err, checkout.ErrSubmitFailed):
		resp.Error = checkout.ErrSubmitFailed.Error()
	case status == http.StatusInternalServerError:
		logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		resp.Error = "internal error"
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, resp)
}

func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Error: msg})
}
