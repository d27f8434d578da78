// Package docstore defines the document store contract consumed by the domain modules.
// Records are JSON documents addressed by (collection, id). Backends live in the
// memstore, pgstore and redisstore subpackages.
// This is part of the platform layer and contains no business logic.
package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"sort"
)

var (
	// ErrNotFound is returned when no document exists at the requested key.
	ErrNotFound = errors.New("docstore: document not found")
	// ErrAlreadyExists is returned by Create when the key is taken.
	ErrAlreadyExists = errors.New("docstore: document already exists")
	// ErrConflict is returned when an atomic update kept losing races to concurrent writers.
	ErrConflict = errors.New("docstore: concurrent modification")
	// ErrUndeclaredWrite is returned when a mutation writes a key it did not read.
	ErrUndeclaredWrite = errors.New("docstore: write to undeclared key")
	// ErrInvalidQuery is returned for malformed filters or orderings.
	ErrInvalidQuery = errors.New("docstore: invalid query")
)

// Key addresses a single document.
type Key struct {
	Collection string
	ID         string
}

// NewKey builds a Key.
func NewKey(collection, id string) Key {
	return Key{Collection: collection, ID: id}
}

func (k Key) String() string {
	return k.Collection + "/" + k.ID
}

// Document is a stored record.
type Document struct {
	Key
	Data json.RawMessage
}

// Snapshot is the state of one key as observed inside an atomic update.
type Snapshot struct {
	Key    Key
	Data   json.RawMessage
	Exists bool
}

// Write replaces the document at Key with Data.
type Write struct {
	Key  Key
	Data json.RawMessage
}

// Mutation computes the writes for an atomic update from the current snapshots,
// which arrive in the same order as the requested keys. Returning no writes
// commits nothing. Returning an error aborts the update and is passed through
// unchanged. Backends with optimistic concurrency may call a Mutation several
// times, so it must not have side effects beyond its return values.
type Mutation func(snapshots []Snapshot) ([]Write, error)

// Store is the document store contract.
type Store interface {
	// Get returns the document at (collection, id) or ErrNotFound.
	Get(ctx context.Context, collection, id string) (Document, error)
	// Create stores data only if the key is free, otherwise ErrAlreadyExists.
	Create(ctx context.Context, collection, id string, data json.RawMessage) error
	// Put creates or replaces the document.
	Put(ctx context.Context, collection, id string, data json.RawMessage) error
	// AtomicUpdate reads keys, applies the mutation and commits its writes as one unit.
	AtomicUpdate(ctx context.Context, keys []Key, mutate Mutation) error
	// Query returns the documents of a collection matching q.
	Query(ctx context.Context, collection string, q Query) ([]Document, error)
	// Ping verifies connectivity to the backend.
	Ping(ctx context.Context) error
}

var fieldNamePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

// ValidFieldName reports whether name can be used as a filter or order field.
func ValidFieldName(name string) bool {
	return fieldNamePattern.MatchString(name)
}

// Encode marshals a record for storage.
func Encode(v any) (json.RawMessage, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return data, nil
}

// Decode unmarshals stored data into a record.
func Decode[T any](data json.RawMessage) (T, error) {
	var out T
	if err := json.Unmarshal(data, &out); err != nil {
		return out, fmt.Errorf("decode document: %w", err)
	}
	return out, nil
}

// Patch overwrites the given top-level fields of data and leaves every other field untouched.
func Patch(data json.RawMessage, fields map[string]any) (json.RawMessage, error) {
	doc := make(map[string]json.RawMessage)
	if len(data) > 0 {
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("patch document: %w", err)
		}
	}
	for name, value := range fields {
		raw, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("patch field %s: %w", name, err)
		}
		doc[name] = raw
	}
	return json.Marshal(doc)
}

// CheckWrites verifies every write targets one of the declared keys.
func CheckWrites(keys []Key, writes []Write) error {
	declared := make(map[Key]struct{}, len(keys))
	for _, k := range keys {
		declared[k] = struct{}{}
	}
	for _, w := range writes {
		if _, ok := declared[w.Key]; !ok {
			return fmt.Errorf("%w: %s", ErrUndeclaredWrite, w.Key)
		}
	}
	return nil
}

// SortedKeys returns a deduplicated copy of keys in a stable lock order.
func SortedKeys(keys []Key) []Key {
	seen := make(map[Key]struct{}, len(keys))
	out := make([]Key, 0, len(keys))
	for _, k := range keys {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Collection != out[j].Collection {
			return out[i].Collection < out[j].Collection
		}
		return out[i].ID < out[j].ID
	})
	return out
}
