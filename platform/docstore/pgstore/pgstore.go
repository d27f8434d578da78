// Package pgstore implements docstore.Store on a single Postgres JSONB table.
package pgstore

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"bosfinder_backend/platform/docstore"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Migrations holds the goose migrations for the documents table.
//
//go:embed migrations/*.sql
var Migrations embed.FS

// MigrationsDir is the directory inside Migrations.
const MigrationsDir = "migrations"

const (
	getDocumentQuery = `SELECT data FROM documents WHERE collection = $1 AND id = $2`

	createDocumentQuery = `
		INSERT INTO documents (collection, id, data)
		VALUES ($1, $2, $3::jsonb)
		ON CONFLICT (collection, id) DO NOTHING`

	upsertDocumentQuery = `
		INSERT INTO documents (collection, id, data)
		VALUES ($1, $2, $3::jsonb)
		ON CONFLICT (collection, id) DO UPDATE SET data = EXCLUDED.data, updated_at = NOW()`

	lockDocumentQuery = `SELECT data FROM documents WHERE collection = $1 AND id = $2 FOR UPDATE`

	// Row locks cannot cover documents that do not exist yet, so every key is
	// also serialized on a transaction-scoped advisory lock.
	lockKeyQuery = `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`
)

const (
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
	defaultMaxRetries      = 5
)

// Store is a Postgres-backed document store.
type Store struct {
	pool       *pgxpool.Pool
	maxRetries int
}

// New creates a store on an established pool. maxRetries bounds the retries
// of an AtomicUpdate aborted by a serialization failure or deadlock.
func New(pool *pgxpool.Pool, maxRetries int) *Store {
	if maxRetries < 1 {
		maxRetries = defaultMaxRetries
	}
	return &Store{pool: pool, maxRetries: maxRetries}
}

// Compile-time check that Store implements docstore.Store.
var _ docstore.Store = (*Store)(nil)

// Get returns the document or docstore.ErrNotFound.
func (s *Store) Get(ctx context.Context, collection, id string) (docstore.Document, error) {
	var data []byte
	err := s.pool.QueryRow(ctx, getDocumentQuery, collection, id).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return docstore.Document{}, docstore.ErrNotFound
	}
	if err != nil {
		return docstore.Document{}, fmt.Errorf("get document %s/%s: %w", collection, id, err)
	}
	return docstore.Document{Key: docstore.NewKey(collection, id), Data: data}, nil
}

// Create relies on the primary key: a conflicting insert affects no rows.
func (s *Store) Create(ctx context.Context, collection, id string, data json.RawMessage) error {
	tag, err := s.pool.Exec(ctx, createDocumentQuery, collection, id, string(data))
	if err != nil {
		return fmt.Errorf("create document %s/%s: %w", collection, id, err)
	}
	if tag.RowsAffected() == 0 {
		return docstore.ErrAlreadyExists
	}
	return nil
}

// Put creates or replaces the document.
func (s *Store) Put(ctx context.Context, collection, id string, data json.RawMessage) error {
	if _, err := s.pool.Exec(ctx, upsertDocumentQuery, collection, id, string(data)); err != nil {
		return fmt.Errorf("put document %s/%s: %w", collection, id, err)
	}
	return nil
}

// AtomicUpdate locks every key in a stable order, present or absent, applies
// the mutation and commits its writes in the same transaction.
func (s *Store) AtomicUpdate(ctx context.Context, keys []docstore.Key, mutate docstore.Mutation) error {
	for attempt := 0; attempt < s.maxRetries; attempt++ {
		err := s.atomicUpdateOnce(ctx, keys, mutate)
		if err == nil {
			return nil
		}
		if !isRetryable(err) {
			return err
		}
	}
	return docstore.ErrConflict
}

func (s *Store) atomicUpdateOnce(ctx context.Context, keys []docstore.Key, mutate docstore.Mutation) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	current := make(map[docstore.Key][]byte, len(keys))
	for _, key := range docstore.SortedKeys(keys) {
		if _, err := tx.Exec(ctx, lockKeyQuery, key.String()); err != nil {
			return fmt.Errorf("lock key %s: %w", key, err)
		}
		var data []byte
		err := tx.QueryRow(ctx, lockDocumentQuery, key.Collection, key.ID).Scan(&data)
		if errors.Is(err, pgx.ErrNoRows) {
			continue
		}
		if err != nil {
			return fmt.Errorf("lock document %s: %w", key, err)
		}
		current[key] = data
	}

	snapshots := make([]docstore.Snapshot, len(keys))
	for i, key := range keys {
		data, ok := current[key]
		snapshots[i] = docstore.Snapshot{Key: key, Data: data, Exists: ok}
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

	for _, w := range writes {
		if _, err := tx.Exec(ctx, upsertDocumentQuery, w.Key.Collection, w.Key.ID, string(w.Data)); err != nil {
			return fmt.Errorf("write document %s: %w", w.Key, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Query translates q into a JSONB query over the collection.
func (s *Store) Query(ctx context.Context, collection string, q docstore.Query) ([]docstore.Document, error) {
	sql, args, err := buildQuery(collection, q)
	if err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", collection, err)
	}
	defer rows.Close()

	docs := make([]docstore.Document, 0)
	for rows.Next() {
		var id string
		var data []byte
		if err := rows.Scan(&id, &data); err != nil {
			return nil, fmt.Errorf("scan %s: %w", collection, err)
		}
		docs = append(docs, docstore.Document{Key: docstore.NewKey(collection, id), Data: data})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query %s: %w", collection, err)
	}
	return docs, nil
}

// Ping checks the pool.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// buildQuery renders q as SQL. Field names are validated by q.Validate and
// inlined as literals so expression indexes on data->>'field' apply.
func buildQuery(collection string, q docstore.Query) (string, []any, error) {
	if err := q.Validate(); err != nil {
		return "", nil, err
	}

	var sb strings.Builder
	args := []any{collection}
	sb.WriteString("SELECT id, data FROM documents WHERE collection = $1")

	for _, f := range q.Filters {
		field := "'" + f.Field + "'"
		switch f.Op {
		case docstore.OpEqual:
			containment, err := json.Marshal(map[string]any{f.Field: f.Value})
			if err != nil {
				return "", nil, fmt.Errorf("encode filter %s: %w", f.Field, err)
			}
			args = append(args, string(containment))
			fmt.Fprintf(&sb, " AND data @> $%d::jsonb", len(args))
		case docstore.OpArrayContains:
			containment, err := json.Marshal(map[string]any{f.Field: []any{f.Value}})
			if err != nil {
				return "", nil, fmt.Errorf("encode filter %s: %w", f.Field, err)
			}
			args = append(args, string(containment))
			fmt.Fprintf(&sb, " AND data @> $%d::jsonb", len(args))
		case docstore.OpIn:
			args = append(args, f.Value)
			fmt.Fprintf(&sb, " AND data->>%s = ANY($%d::text[])", field, len(args))
		case docstore.OpGreaterOrEq:
			args = append(args, f.Value)
			fmt.Fprintf(&sb, " AND (data->>%s)::numeric >= $%d", field, len(args))
		case docstore.OpLessOrEq:
			args = append(args, f.Value)
			fmt.Fprintf(&sb, " AND (data->>%s)::numeric <= $%d", field, len(args))
		}
	}

	if q.Order != nil {
		expr := "data->>'" + q.Order.Field + "'"
		switch q.Order.Kind {
		case docstore.OrderNumber:
			expr = "(" + expr + ")::numeric"
		case docstore.OrderTime:
			expr = "(" + expr + ")::timestamptz"
		}
		direction := "ASC"
		if q.Order.Descending {
			direction = "DESC"
		}
		fmt.Fprintf(&sb, " ORDER BY %s %s NULLS LAST, id ASC", expr, direction)
	}

	if q.Limit > 0 {
		args = append(args, q.Limit)
		fmt.Fprintf(&sb, " LIMIT $%d", len(args))
	}

	return sb.String(), args, nil
}

func isRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgSerializationFailure || pgErr.Code == pgDeadlockDetected
	}
	return false
}
