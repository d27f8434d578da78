package router

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	apphttp "bosfinder_backend/internal/http"
	"bosfinder_backend/platform/logger"

	"github.com/gin-gonic/gin"
)

type testConfig struct{}

func (testConfig) GetHTTPAddr() string         { return ":0" }
func (testConfig) GetCORSAllowAll() bool       { return false }
func (testConfig) GetCORSOrigins() []string    { return []string{"https://app.bosfinder.ht"} }
func (testConfig) GetCORSAllowCreds() bool     { return true }
func (testConfig) GetJWTAccessSecret() string  { return "secret" }
func (testConfig) GetInitialLeadCredits() int  { return 5 }
func (testConfig) GetUnlockRatePerMinute() int { return 10 }

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

type stubModule struct{}

func (stubModule) Name() string { return "stub" }

func (stubModule) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.V1.GET("/public", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	ctx.Protected.GET("/private", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	ctx.Admin.GET("/things", func(c *gin.Context) { c.Status(http.StatusNoContent) })
}

func init() {
	gin.SetMode(gin.TestMode)
}

func newEngine(health error) *gin.Engine {
	return New(&apphttp.App{
		Config:  testConfig{},
		Logger:  logger.Discard(),
		Health:  pinger{err: health},
		Modules: []apphttp.Module{stubModule{}},
	})
}

func TestRouteGroups(t *testing.T) {
	engine := newEngine(nil)
	tests := []struct {
		path string
		want int
	}{
		{path: "/api/health", want: http.StatusOK},
		{path: "/api/v1/public", want: http.StatusNoContent},
		{path: "/api/v1/private", want: http.StatusUnauthorized},
		{path: "/api/v1/admin/things", want: http.StatusUnauthorized},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
		if rec.Code != tt.want {
			t.Errorf("GET %s = %d, want %d", tt.path, rec.Code, tt.want)
		}
	}
}

func TestHealthReportsStoreOutage(t *testing.T) {
	engine := newEngine(errors.New("connection refused"))
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestCORSAllowsConfiguredOrigin(t *testing.T) {
	engine := newEngine(nil)
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/public", nil)
	req.Header.Set("Origin", "https://app.bosfinder.ht")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://app.bosfinder.ht" {
		t.Fatalf("Access-Control-Allow-Origin = %q", got)
	}
}
