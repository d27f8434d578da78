package httpkit

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bosfinder_backend/platform/apperr"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret"

type jwtConfig struct{}

func (jwtConfig) GetJWTAccessSecret() string { return testSecret }

func init() {
	gin.SetMode(gin.TestMode)
}

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func newAuthEngine() *gin.Engine {
	engine := gin.New()
	engine.GET("/me", AuthRequired(jwtConfig{}), func(c *gin.Context) {
		id := MustGetIdentity(c)
		if id == nil {
			return
		}
		OK(c, gin.H{"userId": id.UserID(), "bos": id.HasRole(RoleBos)})
	})
	engine.GET("/admin", AuthRequired(jwtConfig{}), RequireRole(RoleAdmin), func(c *gin.Context) {
		OK(c, gin.H{"ok": true})
	})
	return engine
}

func TestAuthRequired(t *testing.T) {
	engine := newAuthEngine()
	valid := signToken(t, jwt.MapClaims{
		"sub":   "firebase-uid-123",
		"roles": []string{RoleBos},
		"exp":   time.Now().Add(time.Hour).Unix(),
	})
	expired := signToken(t, jwt.MapClaims{"sub": "u1", "exp": time.Now().Add(-time.Hour).Unix()})
	refresh := signToken(t, jwt.MapClaims{"sub": "u1", "type": "refresh"})
	noSubject := signToken(t, jwt.MapClaims{"roles": []string{RoleBos}})

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{name: "valid", header: "Bearer " + valid, wantStatus: http.StatusOK},
		{name: "missing", header: "", wantStatus: http.StatusUnauthorized},
		{name: "malformed", header: "Token " + valid, wantStatus: http.StatusUnauthorized},
		{name: "expired", header: "Bearer " + expired, wantStatus: http.StatusUnauthorized},
		{name: "refresh token", header: "Bearer " + refresh, wantStatus: http.StatusUnauthorized},
		{name: "no subject", header: "Bearer " + noSubject, wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			engine.ServeHTTP(rec, req)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
		})
	}

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+valid)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	var body struct {
		UserID string `json:"userId"`
		Bos    bool   `json:"bos"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.UserID != "firebase-uid-123" || !body.Bos {
		t.Fatalf("identity = %+v", body)
	}
}

func TestRequireRole(t *testing.T) {
	engine := newAuthEngine()
	for _, tc := range []struct {
		roles []string
		want  int
	}{
		{roles: []string{RoleBos}, want: http.StatusForbidden},
		{roles: []string{RoleAdmin}, want: http.StatusOK},
	} {
		token := signToken(t, jwt.MapClaims{"sub": "u1", "roles": tc.roles})
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, req)
		if rec.Code != tc.want {
			t.Errorf("roles %v: status = %d, want %d", tc.roles, rec.Code, tc.want)
		}
	}
}

func TestHandleErrorMapsKinds(t *testing.T) {
	tests := []struct {
		err        error
		wantStatus int
	}{
		{err: apperr.NotFound("job request not found"), wantStatus: http.StatusNotFound},
		{err: apperr.Forbidden("lead belongs to another professional"), wantStatus: http.StatusForbidden},
		{err: apperr.InsufficientCredits("Insufficient lead credits"), wantStatus: http.StatusPaymentRequired},
		{err: apperr.Storage("store unavailable", fmt.Errorf("dial tcp: refused")), wantStatus: http.StatusServiceUnavailable},
		{err: fmt.Errorf("unlock: %w", apperr.Conflict("busy")), wantStatus: http.StatusConflict},
		{err: fmt.Errorf("boom"), wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		rec := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(rec)
		if !HandleError(c, tt.err) {
			t.Fatalf("HandleError(%v) returned false", tt.err)
		}
		if rec.Code != tt.wantStatus {
			t.Errorf("HandleError(%v) status = %d, want %d", tt.err, rec.Code, tt.wantStatus)
		}
	}

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	if HandleError(c, nil) {
		t.Fatal("HandleError(nil) should return false")
	}
}

func TestKeyedRateLimiter(t *testing.T) {
	limiter := NewKeyedRateLimiter(PerMinute(2), 2, nil)
	if !limiter.Allow("user:a") || !limiter.Allow("user:a") {
		t.Fatal("burst should allow two calls")
	}
	if limiter.Allow("user:a") {
		t.Fatal("third call should be limited")
	}
	if !limiter.Allow("user:b") {
		t.Fatal("other keys have their own bucket")
	}
}

func TestRequestIDIsEchoed(t *testing.T) {
	engine := gin.New()
	engine.Use(RequestID())
	engine.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, "req-1")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	if got := rec.Header().Get(HeaderRequestID); got != "req-1" {
		t.Fatalf("request id = %q", got)
	}

	rec = httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Header().Get(HeaderRequestID) == "" {
		t.Fatal("expected generated request id")
	}
}
