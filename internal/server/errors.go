package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	companydomain "github.com/timberbase/timberbase/internal/company/domain"
	"github.com/timberbase/timberbase/internal/entitlement"
	paymentdomain "github.com/timberbase/timberbase/internal/payment/domain"
	projectdomain "github.com/timberbase/timberbase/internal/project/domain"
	"gorm.io/gorm"
)

type errorPayload struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrNotFound       = errors.New("not_found")
	ErrInvalidRequest = errors.New("invalid_request")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

// mapError keeps responses short: status plus an error type, never payload
// echoes or stack traces.
func mapError(err error) (int, errorPayload) {
	switch {
	case err == nil:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, paymentdomain.ErrInvalidToken):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	case errors.Is(err, entitlement.ErrSubscriptionRequired):
		// deliberately not a 403: callers render an upgrade prompt, not a
		// permission-denied screen
		return http.StatusPaymentRequired, errorPayload{
			Type:    "subscription_required",
			Message: "an active subscription is required",
		}
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden, errorPayload{
			Type:    "forbidden",
			Message: "forbidden",
		}
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, paymentdomain.ErrMalformedPayload),
		errors.Is(err, paymentdomain.ErrUnresolvedSubscription):
		return http.StatusBadRequest, errorPayload{
			Type:    "invalid_request",
			Message: "invalid request",
		}
	case errors.Is(err, ErrNotFound),
		errors.Is(err, paymentdomain.ErrUnresolvedTenant),
		errors.Is(err, companydomain.ErrNotFound),
		errors.Is(err, projectdomain.ErrNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}
