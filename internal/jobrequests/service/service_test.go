package service

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"bosfinder_backend/internal/events"
	"bosfinder_backend/internal/jobrequests/repository"
	"bosfinder_backend/internal/jobrequests/transport"
	"bosfinder_backend/platform/apperr"
	"bosfinder_backend/platform/docstore/memstore"
	"bosfinder_backend/platform/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClients map[string]Client

func (f fakeClients) GetClient(_ context.Context, userID string) (Client, error) {
	c, ok := f[userID]
	if !ok {
		return Client{}, apperr.NotFound("user not found")
	}
	return c, nil
}

type fakeCatalog struct{}

func (fakeCatalog) CanonicalCategory(name string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "plumber":
		return "Plumber", nil
	case "mason":
		return "Mason", nil
	}
	return "", apperr.Validation("unknown category: " + name)
}

func (fakeCatalog) CanonicalPlace(commune string) (string, string, error) {
	switch strings.ToLower(strings.TrimSpace(commune)) {
	case "delmas":
		return "Delmas", "Port-au-Prince", nil
	case "jacmel":
		return "Jacmel", "Jacmel", nil
	}
	return "", "", apperr.Validation("unknown commune: " + commune)
}

// fakeGate hands out one lead per (job, bos) and unlocks on demand.
type fakeGate struct {
	mu       sync.Mutex
	unlocked map[string]bool
	opened   int
}

func (g *fakeGate) OpenLead(_ context.Context, jobRequestID, bosID string) (LeadAccess, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.opened++
	id := jobRequestID + "/" + bosID
	if !g.unlocked[id] {
		return LeadAccess{LeadID: id}, nil
	}
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	return LeadAccess{LeadID: id, HasUnlockedContact: true, UnlockedAt: &at}, nil
}

func (g *fakeGate) unlock(jobRequestID, bosID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.unlocked[jobRequestID+"/"+bosID] = true
}

type fixture struct {
	svc  *Service
	gate *fakeGate
	bus  *events.InMemoryBus

	mu       sync.Mutex
	received []events.Event
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		gate: &fakeGate{unlocked: map[string]bool{}},
		bus:  events.NewInMemoryBus(logger.Discard()),
	}
	record := events.HandlerFunc(func(_ context.Context, e events.Event) error {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.received = append(f.received, e)
		return nil
	})
	f.bus.Subscribe(events.JobRequestCreated{}.EventName(), record)
	f.bus.Subscribe(events.JobRequestStatusChanged{}.EventName(), record)

	clients := fakeClients{
		"client-1": {Role: "client", FullName: "Marie Joseph", PhoneNumber: "+50937123456"},
		"client-2": {Role: "client", FullName: "Rose Pierre", PhoneNumber: "+50938000001"},
		"bos-1":    {Role: "bos", FullName: "Jean Plombier", PhoneNumber: "+50938000000"},
	}
	f.svc = New(repository.New(memstore.New()), clients, fakeCatalog{}, f.gate, f.bus, logger.Discard())
	return f
}

func (f *fixture) events() []events.Event {
	f.bus.Wait()
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]events.Event(nil), f.received...)
}

func (f *fixture) post(t *testing.T, clientID, category, commune string) transport.JobRequestResponse {
	t.Helper()
	job, err := f.svc.Create(context.Background(), clientID, transport.CreateJobRequestRequest{
		Title:       "Fix the pipes",
		Description: "Water is leaking under the sink.",
		Category:    category,
		Commune:     commune,
	})
	require.NoError(t, err)
	return job
}

func TestCreateNormalizesAndPublishes(t *testing.T) {
	f := newFixture(t)
	job, err := f.svc.Create(context.Background(), "client-1", transport.CreateJobRequestRequest{
		Title:       "  <i>Leaking</i>   sink ",
		Description: "Water under the sink.",
		Category:    "plumber",
		Commune:     "delmas",
		ClientPhone: "3800 1122",
	})
	require.NoError(t, err)

	assert.Equal(t, "Leaking sink", job.Title)
	assert.Equal(t, "Plumber", job.Category)
	assert.Equal(t, "Delmas", job.Commune)
	assert.Equal(t, "Port-au-Prince", job.City)
	assert.Equal(t, "+50938001122", job.ClientPhone)
	assert.Equal(t, "Marie Joseph", job.ClientName)
	assert.Equal(t, repository.StatusOpen, job.Status)

	got := f.events()
	require.Len(t, got, 1)
	created, ok := got[0].(events.JobRequestCreated)
	require.True(t, ok)
	assert.Equal(t, job.ID, created.JobRequestID)
	assert.Equal(t, "Plumber", created.Category)
}

func TestCreateRejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	valid := transport.CreateJobRequestRequest{Title: "Wall", Description: "Build a garden wall.", Category: "mason", Commune: "jacmel"}

	_, err := f.svc.Create(ctx, "bos-1", valid)
	assert.True(t, apperr.Is(err, apperr.KindForbidden), "got %v", err)

	_, err = f.svc.Create(ctx, "ghost", valid)
	assert.True(t, apperr.Is(err, apperr.KindNotFound), "got %v", err)

	bad := valid
	bad.ClientPhone = "not a phone"
	_, err = f.svc.Create(ctx, "client-1", bad)
	assert.True(t, apperr.Is(err, apperr.KindValidation), "got %v", err)

	bad = valid
	bad.Title = "<b></b>"
	_, err = f.svc.Create(ctx, "client-1", bad)
	assert.True(t, apperr.Is(err, apperr.KindValidation), "got %v", err)
}

func TestProfessionalSeesContactOnlyAfterUnlock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	job := f.post(t, "client-1", "plumber", "delmas")

	view, err := f.svc.GetForBos(ctx, job.ID, "bos-1")
	require.NoError(t, err)
	require.NotNil(t, view.Lead)
	assert.False(t, view.Lead.HasUnlockedContact)
	assert.Empty(t, view.ClientPhone)
	assert.Empty(t, view.ClientName)
	assert.Equal(t, "Fix the pipes", view.Title)

	f.gate.unlock(job.ID, "bos-1")
	view, err = f.svc.GetForBos(ctx, job.ID, "bos-1")
	require.NoError(t, err)
	assert.True(t, view.Lead.HasUnlockedContact)
	assert.Equal(t, "+50937123456", view.ClientPhone)
	assert.Equal(t, "Marie Joseph", view.ClientName)

	_, err = f.svc.GetForBos(ctx, "missing", "bos-1")
	assert.True(t, apperr.Is(err, apperr.KindNotFound), "got %v", err)
	assert.Equal(t, 2, f.gate.opened)
}

func TestOwnerAccessAndStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	job := f.post(t, "client-1", "plumber", "delmas")

	own, err := f.svc.GetForOwner(ctx, job.ID, "client-1")
	require.NoError(t, err)
	assert.Equal(t, job.ClientPhone, own.ClientPhone)

	_, err = f.svc.GetForOwner(ctx, job.ID, "client-2")
	assert.True(t, apperr.Is(err, apperr.KindForbidden), "got %v", err)

	err = f.svc.UpdateStatus(ctx, job.ID, "client-2", repository.StatusClosed)
	assert.True(t, apperr.Is(err, apperr.KindForbidden), "got %v", err)

	err = f.svc.UpdateStatus(ctx, job.ID, "client-1", "archived")
	assert.True(t, apperr.Is(err, apperr.KindValidation), "got %v", err)

	err = f.svc.UpdateStatus(ctx, "missing", "client-1", repository.StatusClosed)
	assert.True(t, apperr.Is(err, apperr.KindNotFound), "got %v", err)

	require.NoError(t, f.svc.UpdateStatus(ctx, job.ID, "client-1", repository.StatusInContact))
	require.NoError(t, f.svc.UpdateStatus(ctx, job.ID, "client-1", repository.StatusInContact))

	own, err = f.svc.GetForOwner(ctx, job.ID, "client-1")
	require.NoError(t, err)
	assert.Equal(t, repository.StatusInContact, own.Status)

	var changes []events.JobRequestStatusChanged
	for _, e := range f.events() {
		if c, ok := e.(events.JobRequestStatusChanged); ok {
			changes = append(changes, c)
		}
	}
	require.Len(t, changes, 1)
	assert.Equal(t, repository.StatusOpen, changes[0].OldStatus)
	assert.Equal(t, repository.StatusInContact, changes[0].NewStatus)
}

func TestMatchingJobRequests(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	plumbingDelmas := f.post(t, "client-1", "plumber", "delmas")
	masonryJacmel := f.post(t, "client-2", "mason", "jacmel")
	closed := f.post(t, "client-1", "plumber", "jacmel")
	require.NoError(t, f.svc.UpdateStatus(ctx, closed.ID, "client-1", repository.StatusClosed))

	ids := func(resp transport.JobRequestViewListResponse) []string {
		out := make([]string, 0, len(resp.Items))
		for _, item := range resp.Items {
			assert.Empty(t, item.ClientPhone)
			out = append(out, item.ID)
		}
		return out
	}

	all, err := f.svc.MatchingJobRequests(ctx, []string{"Plumber", "mason"}, nil)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{plumbingDelmas.ID, masonryJacmel.ID}, ids(all))

	jacmel := "Jacmel"
	inJacmel, err := f.svc.MatchingJobRequests(ctx, []string{"plumber", "mason"}, &jacmel)
	require.NoError(t, err)
	assert.Equal(t, []string{masonryJacmel.ID}, ids(inJacmel))

	none, err := f.svc.MatchingJobRequests(ctx, nil, nil)
	require.NoError(t, err)
	assert.Zero(t, none.Total)

	// Stale profile categories are ignored rather than failing the listing.
	withStale, err := f.svc.MatchingJobRequests(ctx, []string{"astronaut", "plumber"}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{plumbingDelmas.ID}, ids(withStale))

	unknown, err := f.svc.MatchingJobRequests(ctx, []string{"astronaut"}, nil)
	require.NoError(t, err)
	assert.Zero(t, unknown.Total)
	assert.NotNil(t, unknown.Items)

	atlantis := "Atlantis"
	nowhere, err := f.svc.MatchingJobRequests(ctx, []string{"plumber"}, &atlantis)
	require.NoError(t, err)
	assert.Zero(t, nowhere.Total)
}

func TestListByClientNewestFirst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	clock := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	f.svc.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}

	first := f.post(t, "client-1", "plumber", "delmas")
	second := f.post(t, "client-1", "mason", "delmas")
	f.post(t, "client-2", "mason", "delmas")

	list, err := f.svc.ListByClient(ctx, "client-1")
	require.NoError(t, err)
	require.Equal(t, 2, list.Total)
	assert.Equal(t, second.ID, list.Items[0].ID)
	assert.Equal(t, first.ID, list.Items[1].ID)
}
