package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubBreaker struct{ state gobreaker.State }

func (s stubBreaker) State() gobreaker.State { return s.state }
func (s stubBreaker) IsOpen() bool           { return s.state == gobreaker.StateOpen }

func serveBreakers(t *testing.T, breakers []breakerStatus) (int, BreakerHealthResponse) {
	t.Helper()
	rec := httptest.NewRecorder()
	breakerHealthHandler(breakers)(rec, httptest.NewRequest(http.MethodGet, "/health/breakers", nil))

	var resp BreakerHealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return rec.Code, resp
}

func TestBreakerHealthHandler_AllClosed(t *testing.T) {
	code, resp := serveBreakers(t, []breakerStatus{
		{name: "download", breaker: stubBreaker{gobreaker.StateClosed}},
		{name: "database", breaker: stubBreaker{gobreaker.StateHalfOpen}},
	})

	assert.Equal(t, http.StatusOK, code)
	assert.True(t, resp.Healthy)
	assert.Equal(t, []BreakerState{
		{Name: "download", State: "closed", Open: false},
		{Name: "database", State: "half-open", Open: false},
	}, resp.Breakers)
}

func TestBreakerHealthHandler_OpenBreaker(t *testing.T) {
	code, resp := serveBreakers(t, []breakerStatus{
		{name: "download", breaker: stubBreaker{gobreaker.StateOpen}},
		{name: "database", breaker: stubBreaker{gobreaker.StateClosed}},
	})

	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.False(t, resp.Healthy)
	assert.True(t, resp.Breakers[0].Open)
}
