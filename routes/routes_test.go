package routes

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"wanderly/handlers"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func ok(c *gin.Context) { c.String(http.StatusOK, "ok") }

func newBundle() *handlers.HandlerBundle {
	return &handlers.HandlerBundle{
		ChatHandler:            ok,
		StreamHandler:          ok,
		GetStateHandler:        ok,
		ResetStateHandler:      ok,
		GraphHandler:           ok,
		OrdersHandler:          ok,
		PaymentCallbackHandler: ok,
		StripeWebhookHandler:   ok,
		HealthHandler:          ok,
	}
}

func send(r http.Handler, method, path string) int {
	req := httptest.NewRequest(method, path, strings.NewReader(`{}`))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func TestCallbackOnlyRegisteredForSimulatedPayments(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	RegisterRoutes(r, newBundle(), AuthConfig{Secret: "s"})
	assert.Equal(t, http.StatusOK, send(r, http.MethodPost, "/api/payments/callback"))

	hb := newBundle()
	hb.PaymentCallbackHandler = nil
	r = gin.New()
	RegisterRoutes(r, hb, AuthConfig{Secret: "s"})
	assert.Equal(t, http.StatusNotFound, send(r, http.MethodPost, "/api/payments/callback"))
	assert.Equal(t, http.StatusOK, send(r, http.MethodPost, "/api/payments/stripe/webhook"))
}

func TestAgentRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterRoutes(r, newBundle(), AuthConfig{Secret: "s"})

	assert.Equal(t, http.StatusOK, send(r, http.MethodGet, "/api/agent/graph"))
	assert.Equal(t, http.StatusOK, send(r, http.MethodGet, "/api/agent/orders/t1"))
	assert.Equal(t, http.StatusOK, send(r, http.MethodGet, "/api/agent/state/t1"))

	r = gin.New()
	RegisterRoutes(r, newBundle(), AuthConfig{Secret: "s", Required: true})
	assert.Equal(t, http.StatusUnauthorized, send(r, http.MethodGet, "/api/agent/orders/t1"))
	assert.Equal(t, http.StatusOK, send(r, http.MethodGet, "/api/agent/graph"))
}
