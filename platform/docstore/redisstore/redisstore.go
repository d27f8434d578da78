// Package redisstore implements docstore.Store on Redis.
//
// Each document is a JSON string at "<prefix>:<collection>:<id>"; the ids of a
// collection are tracked in the set "<prefix>:<collection>:_ids" for queries.
// Atomic updates use WATCH/MULTI/EXEC and retry when a watched key changes.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"bosfinder_backend/platform/docstore"

	"github.com/redis/go-redis/v9"
)

const defaultMaxRetries = 10

// Store is a Redis-backed document store.
type Store struct {
	rdb        redis.UniversalClient
	prefix     string
	maxRetries int
}

// Option customises a Store.
type Option func(*Store)

// WithMaxRetries bounds the optimistic retries of AtomicUpdate.
func WithMaxRetries(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.maxRetries = n
		}
	}
}

// New creates a Store on top of an existing client.
func New(rdb redis.UniversalClient, prefix string, opts ...Option) *Store {
	s := &Store{rdb: rdb, prefix: prefix, maxRetries: defaultMaxRetries}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Compile-time check that Store implements docstore.Store.
var _ docstore.Store = (*Store)(nil)

func (s *Store) docKey(k docstore.Key) string {
	return s.prefix + ":" + k.Collection + ":" + k.ID
}

func (s *Store) indexKey(collection string) string {
	return s.prefix + ":" + collection + ":_ids"
}

// Get returns the document or docstore.ErrNotFound.
func (s *Store) Get(ctx context.Context, collection, id string) (docstore.Document, error) {
	key := docstore.NewKey(collection, id)
	raw, err := s.rdb.Get(ctx, s.docKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return docstore.Document{}, docstore.ErrNotFound
	}
	if err != nil {
		return docstore.Document{}, fmt.Errorf("redis get %s: %w", key, err)
	}
	return docstore.Document{Key: key, Data: raw}, nil
}

// Create uses SETNX so only the first writer of a key succeeds.
func (s *Store) Create(ctx context.Context, collection, id string, data json.RawMessage) error {
	key := docstore.NewKey(collection, id)

	var created *redis.BoolCmd
	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		created = pipe.SetNX(ctx, s.docKey(key), []byte(data), 0)
		pipe.SAdd(ctx, s.indexKey(collection), id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis create %s: %w", key, err)
	}
	if !created.Val() {
		return docstore.ErrAlreadyExists
	}
	return nil
}

// Put creates or replaces the document.
func (s *Store) Put(ctx context.Context, collection, id string, data json.RawMessage) error {
	key := docstore.NewKey(collection, id)
	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.docKey(key), []byte(data), 0)
		pipe.SAdd(ctx, s.indexKey(collection), id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis put %s: %w", key, err)
	}
	return nil
}

// AtomicUpdate watches every key, runs the mutation and commits inside MULTI.
// When another client touches a watched key the whole read-mutate-write cycle
// is repeated, up to the configured retry budget.
func (s *Store) AtomicUpdate(ctx context.Context, keys []docstore.Key, mutate docstore.Mutation) error {
	if len(keys) == 0 {
		return nil
	}

	redisKeys := make([]string, len(keys))
	for i, k := range keys {
		redisKeys[i] = s.docKey(k)
	}

	txf := func(tx *redis.Tx) error {
		values, err := tx.MGet(ctx, redisKeys...).Result()
		if err != nil {
			return fmt.Errorf("redis mget: %w", err)
		}

		snapshots := make([]docstore.Snapshot, len(keys))
		for i, v := range values {
			snapshots[i] = docstore.Snapshot{Key: keys[i]}
			if str, ok := v.(string); ok {
				snapshots[i].Data = json.RawMessage(str)
				snapshots[i].Exists = true
			}
		}

		writes, err := mutate(snapshots)
		if err != nil {
			return err
		}
		if err := docstore.CheckWrites(keys, writes); err != nil {
			return err
		}
		if len(writes) == 0 {
			return nil
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			for _, w := range writes {
				pipe.Set(ctx, s.docKey(w.Key), []byte(w.Data), 0)
				pipe.SAdd(ctx, s.indexKey(w.Key.Collection), w.Key.ID)
			}
			return nil
		})
		return err
	}

	for attempt := 0; attempt < s.maxRetries; attempt++ {
		err := s.rdb.Watch(ctx, txf, redisKeys...)
		if err == nil {
			return nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return docstore.ErrConflict
}

// Query loads the whole collection and evaluates q in memory.
func (s *Store) Query(ctx context.Context, collection string, q docstore.Query) ([]docstore.Document, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	ids, err := s.rdb.SMembers(ctx, s.indexKey(collection)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis smembers %s: %w", collection, err)
	}
	if len(ids) == 0 {
		return []docstore.Document{}, nil
	}

	redisKeys := make([]string, len(ids))
	for i, id := range ids {
		redisKeys[i] = s.docKey(docstore.NewKey(collection, id))
	}
	values, err := s.rdb.MGet(ctx, redisKeys...).Result()
	if err != nil {
		return nil, fmt.Errorf("redis mget %s: %w", collection, err)
	}

	docs := make([]docstore.Document, 0, len(values))
	for i, v := range values {
		str, ok := v.(string)
		if !ok {
			continue
		}
		docs = append(docs, docstore.Document{
			Key:  docstore.NewKey(collection, ids[i]),
			Data: json.RawMessage(str),
		})
	}

	return docstore.Evaluate(docs, q)
}

// Ping checks the Redis connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}
