package handlers

import (
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/windoze95/cookiify-api/internal/logger"
	"github.com/windoze95/cookiify-api/internal/service"
	"go.uber.org/zap"
)

// Error codes carried in the "error" field of a failure envelope.
const (
	codeInvalidRequest      = "invalid_request"
	codeUnauthorized        = "unauthorized"
	codeForbidden           = "forbidden"
	codeNotFound            = "not_found"
	codeConflict            = "conflict"
	codeRateLimited         = "rate_limited"
	codeNotConfigured       = "not_configured"
	codeQuotaExceeded       = "quota_exceeded"
	codeUpstreamUnavailable = "upstream_unavailable"
	codeInternal            = "internal_error"
)

// Envelope is the JSON shape of every API response.
type Envelope struct {
	Success      bool   `json:"success"`
	Data         any    `json:"data,omitempty"`
	Cached       *bool  `json:"cached,omitempty"`
	Source       string `json:"source,omitempty"`
	TotalResults *int   `json:"totalResults,omitempty"`
	Message      string `json:"message,omitempty"`
	Error        string `json:"error,omitempty"`
}

func respondOK(c *gin.Context, status int, data any) {
	c.JSON(status, Envelope{Success: true, Data: data})
}

func respondMessage(c *gin.Context, status int, message string) {
	c.JSON(status, Envelope{Success: true, Message: message})
}

func respondFail(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, Envelope{Success: false, Message: message, Error: code})
}

// respondError maps a service error onto its HTTP status. Unclassified
// errors are logged and reported as a generic server error.
func respondError(c *gin.Context, err error) {
	var rateLimited *service.RateLimitError
	if errors.As(err, &rateLimited) {
		seconds := int(math.Ceil(rateLimited.RetryAfter.Seconds()))
		c.Header("Retry-After", strconv.Itoa(seconds))
		respondFail(c, http.StatusTooManyRequests, codeRateLimited, rateLimited.Error())
		return
	}

	message := "Something went wrong"
	var svcErr *service.Error
	if errors.As(err, &svcErr) {
		message = svcErr.Message
	}

	switch {
	case errors.Is(err, service.ErrClient):
		respondFail(c, http.StatusBadRequest, codeInvalidRequest, message)
	case errors.Is(err, service.ErrConflict):
		respondFail(c, http.StatusBadRequest, codeConflict, message)
	case errors.Is(err, service.ErrUnauthorized):
		respondFail(c, http.StatusUnauthorized, codeUnauthorized, message)
	case errors.Is(err, service.ErrQuotaExceeded):
		respondFail(c, http.StatusPaymentRequired, codeQuotaExceeded, message)
	case errors.Is(err, service.ErrForbidden):
		respondFail(c, http.StatusForbidden, codeForbidden, message)
	case errors.Is(err, service.ErrNotFound):
		respondFail(c, http.StatusNotFound, codeNotFound, message)
	case errors.Is(err, service.ErrNotConfigured):
		respondFail(c, http.StatusServiceUnavailable, codeNotConfigured, message)
	case errors.Is(err, service.ErrUpstreamUnavailable):
		logger.FromGin(c).Warn("upstream request failed", zap.Error(err))
		respondFail(c, http.StatusServiceUnavailable, codeUpstreamUnavailable, message)
	default:
		logger.FromGin(c).Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		respondFail(c, http.StatusInternalServerError, codeInternal, "Something went wrong")
	}
}
