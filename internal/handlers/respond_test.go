package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/windoze95/cookiify-api/internal/service"
)

func respondWith(err error) (int, testEnvelope, http.Header) {
	r := gin.New()
	r.GET("/", func(c *gin.Context) { respondError(c, err) })
	w := serve(r, "GET", "/", nil)
	var env testEnvelope
	_ = json.Unmarshal(w.Body.Bytes(), &env)
	return w.Code, env, w.Header()
}

func TestRespondError_StatusMapping(t *testing.T) {
	cases := []struct {
		kind error
		want int
	}{
		{service.ErrClient, http.StatusBadRequest},
		{service.ErrConflict, http.StatusBadRequest},
		{service.ErrUnauthorized, http.StatusUnauthorized},
		{service.ErrQuotaExceeded, http.StatusPaymentRequired},
		{service.ErrForbidden, http.StatusForbidden},
		{service.ErrNotFound, http.StatusNotFound},
		{service.ErrNotConfigured, http.StatusServiceUnavailable},
		{service.ErrUpstreamUnavailable, http.StatusServiceUnavailable},
	}
	for _, tc := range cases {
		status, env, _ := respondWith(&service.Error{Kind: tc.kind, Message: "boom"})
		if status != tc.want {
			t.Errorf("%v: status = %d, want %d", tc.kind, status, tc.want)
		}
		if env.Success || env.Message != "boom" {
			t.Errorf("%v: envelope = %+v", tc.kind, env)
		}
	}
}

func TestRespondError_RateLimitedSetsRetryAfter(t *testing.T) {
	status, env, header := respondWith(&service.RateLimitError{Endpoint: "suggestion", Limit: 10, RetryAfter: 90*time.Second + time.Millisecond})

	if status != http.StatusTooManyRequests {
		t.Errorf("status = %d, want %d", status, http.StatusTooManyRequests)
	}
	if got := header.Get("Retry-After"); got != "91" {
		t.Errorf("Retry-After = %q, want 91", got)
	}
	if env.Message != "Too many suggestion requests, please try again later" {
		t.Errorf("message = %q", env.Message)
	}
}

func TestRespondError_InternalHidesCause(t *testing.T) {
	status, env, _ := respondWith(errors.New("pq: connection refused"))

	if status != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", status, http.StatusInternalServerError)
	}
	if env.Message != "Something went wrong" || env.Error != codeInternal {
		t.Errorf("envelope = %+v", env)
	}
}
