package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"bosfinder_backend/internal/events"
	"bosfinder_backend/internal/leads/repository"
	"bosfinder_backend/internal/leads/service"
	"bosfinder_backend/internal/leads/transport"
	"bosfinder_backend/internal/shared/collections"
	"bosfinder_backend/platform/docstore/memstore"
	"bosfinder_backend/platform/httpkit"
	"bosfinder_backend/platform/logger"
	"bosfinder_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeAuth trusts the X-Test-User header and grants the bos role.
func fakeAuth(c *gin.Context) {
	if user := c.GetHeader("X-Test-User"); user != "" {
		c.Set(httpkit.ContextUserIDKey, user)
		c.Set(httpkit.ContextRolesKey, []string{httpkit.RoleBos})
	}
	c.Next()
}

func newTestEngine(t *testing.T, credits int) (*gin.Engine, *service.Service) {
	t.Helper()
	store := memstore.New()
	ctx := context.Background()
	require.NoError(t, store.Put(ctx, collections.BosProfiles, "B", []byte(`{"id":"B","leadCredits":`+strconv.Itoa(credits)+`}`)))
	require.NoError(t, store.Put(ctx, collections.JobRequests, "J", []byte(`{"id":"J","status":"open"}`)))

	log := logger.Discard()
	svc := service.New(repository.New(store), events.NewInMemoryBus(log), log)
	h := New(svc, validator.New())

	engine := gin.New()
	api := engine.Group("/api/v1", fakeAuth)
	api.POST("/job-requests/:id/lead", h.OpenLead)
	api.GET("/leads", h.List)
	api.GET("/leads/credits", h.Credits)
	api.POST("/leads/:id/unlock", h.Unlock)
	api.POST("/admin/bos-profiles/:id/credits", h.Grant)
	return engine, svc
}

func do(engine *gin.Engine, method, path, user, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		req.Header.Set("X-Test-User", user)
	}
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func openLead(t *testing.T, engine *gin.Engine) transport.LeadResponse {
	t.Helper()
	rec := do(engine, http.MethodPost, "/api/v1/job-requests/J/lead", "B", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var lead transport.LeadResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &lead))
	return lead
}

func TestUnlockEndpoint(t *testing.T) {
	engine, _ := newTestEngine(t, 1)
	lead := openLead(t, engine)
	assert.False(t, lead.HasUnlockedContact)

	rec := do(engine, http.MethodPost, "/api/v1/leads/"+lead.ID+"/unlock", "B", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var res transport.UnlockResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.True(t, res.Success)
	assert.Equal(t, service.MsgUnlocked, res.Message)
	assert.Equal(t, 0, res.LeadCredits)
	require.NotNil(t, res.Lead)
	assert.True(t, res.Lead.HasUnlockedContact)

	rec = do(engine, http.MethodPost, "/api/v1/leads/"+lead.ID+"/unlock", "B", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.True(t, res.AlreadyUnlocked)
}

func TestUnlockEndpointWithoutCredits(t *testing.T) {
	engine, _ := newTestEngine(t, 0)
	lead := openLead(t, engine)

	rec := do(engine, http.MethodPost, "/api/v1/leads/"+lead.ID+"/unlock", "B", "")
	assert.Equal(t, http.StatusPaymentRequired, rec.Code)
	assert.JSONEq(t, `{"success":false,"message":"Insufficient lead credits","leadCredits":0}`, rec.Body.String())
}

func TestUnlockEndpointErrors(t *testing.T) {
	engine, _ := newTestEngine(t, 3)
	lead := openLead(t, engine)

	rec := do(engine, http.MethodPost, "/api/v1/leads/"+lead.ID+"/unlock", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(engine, http.MethodPost, "/api/v1/leads/"+lead.ID+"/unlock", "X", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":false`)

	rec = do(engine, http.MethodPost, "/api/v1/leads/missing/unlock", "B", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGrantAndCreditsEndpoints(t *testing.T) {
	engine, _ := newTestEngine(t, 0)

	rec := do(engine, http.MethodPost, "/api/v1/admin/bos-profiles/B/credits", "admin", `{"amount":0}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(engine, http.MethodPost, "/api/v1/admin/bos-profiles/B/credits", "admin", `{"amount":5,"note":"cash"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"bosId":"B","balance":5}`, rec.Body.String())

	rec = do(engine, http.MethodGet, "/api/v1/leads/credits?limit=10", "B", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var credits transport.CreditsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &credits))
	assert.Equal(t, 5, credits.Balance)
	require.Len(t, credits.History, 1)
	assert.Equal(t, "grant", credits.History[0].Type)

	rec = do(engine, http.MethodGet, "/api/v1/leads/credits?limit=500", "B", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListEndpoint(t *testing.T) {
	engine, _ := newTestEngine(t, 0)
	lead := openLead(t, engine)

	rec := do(engine, http.MethodGet, "/api/v1/leads", "B", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list transport.LeadListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Equal(t, 1, list.Total)
	assert.Equal(t, lead.ID, list.Items[0].ID)
}
