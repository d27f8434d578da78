// Package storetest holds the behaviour every docstore.Store backend must share.
package storetest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"bosfinder_backend/platform/docstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

type counter struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// Run exercises a fresh store produced by newStore for each subtest.
func Run(t *testing.T, newStore func(t *testing.T) docstore.Store) {
	t.Run("get missing", func(t *testing.T) { testGetMissing(t, newStore(t)) })
	t.Run("create once", func(t *testing.T) { testCreateOnce(t, newStore(t)) })
	t.Run("concurrent create", func(t *testing.T) { testConcurrentCreate(t, newStore(t)) })
	t.Run("put replaces", func(t *testing.T) { testPutReplaces(t, newStore(t)) })
	t.Run("atomic update", func(t *testing.T) { testAtomicUpdate(t, newStore(t)) })
	t.Run("atomic update aborts", func(t *testing.T) { testAtomicUpdateAborts(t, newStore(t)) })
	t.Run("undeclared write", func(t *testing.T) { testUndeclaredWrite(t, newStore(t)) })
	t.Run("concurrent increments", func(t *testing.T) { testConcurrentIncrements(t, newStore(t)) })
	t.Run("concurrent increments from absent", func(t *testing.T) { testConcurrentIncrementsFromAbsent(t, newStore(t)) })
	t.Run("query", func(t *testing.T) { testQuery(t, newStore(t)) })
}

func testGetMissing(t *testing.T, s docstore.Store) {
	_, err := s.Get(context.Background(), "counters", "missing")
	assert.ErrorIs(t, err, docstore.ErrNotFound)
}

func testCreateOnce(t *testing.T, s docstore.Store) {
	ctx := context.Background()
	require.NoError(t, s.Create(ctx, "counters", "a", mustEncode(t, counter{Name: "first"})))

	err := s.Create(ctx, "counters", "a", mustEncode(t, counter{Name: "second"}))
	assert.ErrorIs(t, err, docstore.ErrAlreadyExists)

	got := mustGet(t, s, "counters", "a")
	assert.Equal(t, "first", got.Name)
}

func testConcurrentCreate(t *testing.T, s docstore.Store) {
	ctx := context.Background()
	const writers = 16

	var created atomic.Int32
	var g errgroup.Group
	for i := 0; i < writers; i++ {
		i := i
		g.Go(func() error {
			err := s.Create(ctx, "counters", "shared", mustEncode(t, counter{Name: fmt.Sprintf("w%d", i)}))
			switch {
			case err == nil:
				created.Add(1)
				return nil
			case errors.Is(err, docstore.ErrAlreadyExists):
				return nil
			default:
				return err
			}
		})
	}
	require.NoError(t, g.Wait())
	assert.EqualValues(t, 1, created.Load())
}

func testPutReplaces(t *testing.T, s docstore.Store) {
	ctx := context.Background()
	require.NoError(t, s.Put(ctx, "counters", "a", mustEncode(t, counter{Name: "a", Value: 1})))
	require.NoError(t, s.Put(ctx, "counters", "a", mustEncode(t, counter{Name: "a", Value: 2})))
	assert.Equal(t, 2, mustGet(t, s, "counters", "a").Value)
}

func testAtomicUpdate(t *testing.T, s docstore.Store) {
	ctx := context.Background()
	require.NoError(t, s.Put(ctx, "counters", "a", mustEncode(t, counter{Name: "a", Value: 3})))

	keys := []docstore.Key{docstore.NewKey("counters", "a"), docstore.NewKey("counters", "b")}
	err := s.AtomicUpdate(ctx, keys, func(snaps []docstore.Snapshot) ([]docstore.Write, error) {
		if !snaps[0].Exists || snaps[1].Exists {
			return nil, fmt.Errorf("unexpected snapshots: %+v", snaps)
		}
		a, err := docstore.Decode[counter](snaps[0].Data)
		if err != nil {
			return nil, err
		}
		patched, err := docstore.Patch(snaps[0].Data, map[string]any{"value": a.Value - 1})
		if err != nil {
			return nil, err
		}
		created, err := docstore.Encode(counter{Name: "b", Value: 1})
		if err != nil {
			return nil, err
		}
		return []docstore.Write{{Key: keys[0], Data: patched}, {Key: keys[1], Data: created}}, nil
	})
	require.NoError(t, err)

	assert.Equal(t, counter{Name: "a", Value: 2}, mustGet(t, s, "counters", "a"))
	assert.Equal(t, counter{Name: "b", Value: 1}, mustGet(t, s, "counters", "b"))
}

func testAtomicUpdateAborts(t *testing.T, s docstore.Store) {
	ctx := context.Background()
	require.NoError(t, s.Put(ctx, "counters", "a", mustEncode(t, counter{Name: "a", Value: 0})))

	errEmpty := errors.New("counter empty")
	key := docstore.NewKey("counters", "a")
	err := s.AtomicUpdate(ctx, []docstore.Key{key}, func(snaps []docstore.Snapshot) ([]docstore.Write, error) {
		return nil, errEmpty
	})
	assert.ErrorIs(t, err, errEmpty)

	err = s.AtomicUpdate(ctx, []docstore.Key{key}, func(snaps []docstore.Snapshot) ([]docstore.Write, error) {
		return nil, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 0, mustGet(t, s, "counters", "a").Value)
}

func testUndeclaredWrite(t *testing.T, s docstore.Store) {
	ctx := context.Background()
	declared := docstore.NewKey("counters", "a")
	other := docstore.NewKey("counters", "b")

	err := s.AtomicUpdate(ctx, []docstore.Key{declared}, func(snaps []docstore.Snapshot) ([]docstore.Write, error) {
		return []docstore.Write{{Key: other, Data: json.RawMessage(`{"name":"b"}`)}}, nil
	})
	assert.ErrorIs(t, err, docstore.ErrUndeclaredWrite)

	_, err = s.Get(ctx, "counters", "b")
	assert.ErrorIs(t, err, docstore.ErrNotFound)
}

func testConcurrentIncrements(t *testing.T, s docstore.Store) {
	ctx := context.Background()
	const workers = 20
	require.NoError(t, s.Put(ctx, "counters", "hits", mustEncode(t, counter{Name: "hits"})))

	key := docstore.NewKey("counters", "hits")
	var g errgroup.Group
	for i := 0; i < workers; i++ {
		g.Go(func() error {
			for {
				err := s.AtomicUpdate(ctx, []docstore.Key{key}, func(snaps []docstore.Snapshot) ([]docstore.Write, error) {
					c, err := docstore.Decode[counter](snaps[0].Data)
					if err != nil {
						return nil, err
					}
					patched, err := docstore.Patch(snaps[0].Data, map[string]any{"value": c.Value + 1})
					if err != nil {
						return nil, err
					}
					return []docstore.Write{{Key: key, Data: patched}}, nil
				})
				if errors.Is(err, docstore.ErrConflict) {
					continue
				}
				return err
			}
		})
	}
	require.NoError(t, g.Wait())
	assert.Equal(t, workers, mustGet(t, s, "counters", "hits").Value)
}

func testConcurrentIncrementsFromAbsent(t *testing.T, s docstore.Store) {
	ctx := context.Background()
	const workers = 20

	key := docstore.NewKey("counters", "fresh")
	var g errgroup.Group
	for i := 0; i < workers; i++ {
		g.Go(func() error {
			for {
				err := s.AtomicUpdate(ctx, []docstore.Key{key}, func(snaps []docstore.Snapshot) ([]docstore.Write, error) {
					c := counter{Name: "fresh"}
					if snaps[0].Exists {
						var err error
						if c, err = docstore.Decode[counter](snaps[0].Data); err != nil {
							return nil, err
						}
					}
					c.Value++
					data, err := docstore.Encode(c)
					if err != nil {
						return nil, err
					}
					return []docstore.Write{{Key: key, Data: data}}, nil
				})
				if errors.Is(err, docstore.ErrConflict) {
					continue
				}
				return err
			}
		})
	}
	require.NoError(t, g.Wait())
	assert.Equal(t, workers, mustGet(t, s, "counters", "fresh").Value)
}

func testQuery(t *testing.T, s docstore.Store) {
	ctx := context.Background()
	type job struct {
		Category  string   `json:"category"`
		Commune   string   `json:"commune"`
		Status    string   `json:"status"`
		Tags      []string `json:"tags"`
		Rating    float64  `json:"rating"`
		CreatedAt string   `json:"createdAt"`
	}
	seed := map[string]job{
		"j1": {Category: "Plumber", Commune: "Delmas", Status: "open", Tags: []string{"urgent"}, Rating: 4.5, CreatedAt: "2024-03-01T10:00:00Z"},
		"j2": {Category: "Mason", Commune: "Delmas", Status: "open", Tags: []string{}, Rating: 3, CreatedAt: "2024-03-02T10:00:00.5Z"},
		"j3": {Category: "Plumber", Commune: "Delmas", Status: "closed", Rating: 5, CreatedAt: "2024-03-03T10:00:00Z"},
		"j4": {Category: "Plumber", Commune: "Pétion-Ville", Status: "open", Tags: []string{"urgent"}, Rating: 2, CreatedAt: "2024-03-04T10:00:00Z"},
		"j5": {Category: "Electrician", Commune: "Delmas", Status: "open", Rating: 4, CreatedAt: "2024-03-02T10:00:00Z"},
	}
	for id, j := range seed {
		require.NoError(t, s.Put(ctx, "jobs", id, mustEncode(t, j)))
	}
	require.NoError(t, s.Put(ctx, "other", "j9", mustEncode(t, job{Status: "open", Commune: "Delmas", Category: "Plumber"})))

	docs, err := s.Query(ctx, "jobs", docstore.Query{
		Filters: []docstore.Filter{
			docstore.Where("status", docstore.OpEqual, "open"),
			docstore.Where("commune", docstore.OpEqual, "Delmas"),
			docstore.Where("category", docstore.OpIn, []string{"Plumber", "Mason"}),
		},
		Order: &docstore.Order{Field: "createdAt", Kind: docstore.OrderTime, Descending: true},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"j2", "j1"}, ids(docs))

	docs, err = s.Query(ctx, "jobs", docstore.Query{
		Filters: []docstore.Filter{docstore.Where("tags", docstore.OpArrayContains, "urgent")},
		Order:   &docstore.Order{Field: "rating", Kind: docstore.OrderNumber, Descending: true},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"j1", "j4"}, ids(docs))

	docs, err = s.Query(ctx, "jobs", docstore.Query{
		Filters: []docstore.Filter{docstore.Where("rating", docstore.OpGreaterOrEq, 4)},
		Order:   &docstore.Order{Field: "rating", Kind: docstore.OrderNumber, Descending: true},
		Limit:   2,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"j3", "j1"}, ids(docs))

	_, err = s.Query(ctx, "jobs", docstore.Query{
		Filters: []docstore.Filter{docstore.Where("bad field", docstore.OpEqual, "x")},
	})
	assert.ErrorIs(t, err, docstore.ErrInvalidQuery)
}

func mustEncode(t *testing.T, v any) json.RawMessage {
	t.Helper()
	data, err := docstore.Encode(v)
	require.NoError(t, err)
	return data
}

func mustGet(t *testing.T, s docstore.Store, collection, id string) counter {
	t.Helper()
	doc, err := s.Get(context.Background(), collection, id)
	require.NoError(t, err)
	c, err := docstore.Decode[counter](doc.Data)
	require.NoError(t, err)
	return c
}

func ids(docs []docstore.Document) []string {
	out := make([]string, len(docs))
	for i, d := range docs {
		out[i] = d.ID
	}
	return out
}
