// Package memstore is an in-process docstore.Store. It backs tests and the
// default development configuration; a single mutex serialises every write.
package memstore

import (
	"bytes"
	"context"
	"encoding/json"
	"sync"

	"bosfinder_backend/platform/docstore"
)

// Store keeps documents in a map guarded by a mutex.
type Store struct {
	mu   sync.RWMutex
	docs map[docstore.Key]json.RawMessage
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{docs: make(map[docstore.Key]json.RawMessage)}
}

// Compile-time check that Store implements docstore.Store.
var _ docstore.Store = (*Store)(nil)

// Get returns a copy of the stored document.
func (s *Store) Get(ctx context.Context, collection, id string) (docstore.Document, error) {
	if err := ctx.Err(); err != nil {
		return docstore.Document{}, err
	}
	key := docstore.NewKey(collection, id)

	s.mu.RLock()
	data, ok := s.docs[key]
	s.mu.RUnlock()
	if !ok {
		return docstore.Document{}, docstore.ErrNotFound
	}
	return docstore.Document{Key: key, Data: clone(data)}, nil
}

// Create stores data only when the key is free.
func (s *Store) Create(ctx context.Context, collection, id string, data json.RawMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	key := docstore.NewKey(collection, id)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[key]; ok {
		return docstore.ErrAlreadyExists
	}
	s.docs[key] = clone(data)
	return nil
}

// Put creates or replaces the document.
func (s *Store) Put(ctx context.Context, collection, id string, data json.RawMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	s.docs[docstore.NewKey(collection, id)] = clone(data)
	s.mu.Unlock()
	return nil
}

// AtomicUpdate runs the mutation while holding the write lock.
func (s *Store) AtomicUpdate(ctx context.Context, keys []docstore.Key, mutate docstore.Mutation) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshots := make([]docstore.Snapshot, len(keys))
	for i, key := range keys {
		data, ok := s.docs[key]
		snapshots[i] = docstore.Snapshot{Key: key, Data: clone(data), Exists: ok}
	}

	writes, err := mutate(snapshots)
	if err != nil {
		return err
	}
	if err := docstore.CheckWrites(keys, writes); err != nil {
		return err
	}
	for _, w := range writes {
		s.docs[w.Key] = clone(w.Data)
	}
	return nil
}

// Query evaluates q over every document of the collection.
func (s *Store) Query(ctx context.Context, collection string, q docstore.Query) ([]docstore.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	docs := make([]docstore.Document, 0)
	for key, data := range s.docs {
		if key.Collection == collection {
			docs = append(docs, docstore.Document{Key: key, Data: clone(data)})
		}
	}
	s.mu.RUnlock()

	return docstore.Evaluate(docs, q)
}

// Ping always succeeds.
func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

// Len returns the number of documents in a collection.
func (s *Store) Len(collection string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for key := range s.docs {
		if key.Collection == collection {
			n++
		}
	}
	return n
}

func clone(data json.RawMessage) json.RawMessage {
	if data == nil {
		return nil
	}
	return bytes.Clone(data)
}
