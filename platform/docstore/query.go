package docstore

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// Op is a filter operator.
type Op string

const (
	OpEqual         Op = "=="
	OpIn            Op = "in"
	OpArrayContains Op = "array-contains"
	OpGreaterOrEq   Op = ">="
	OpLessOrEq      Op = "<="
)

// OrderKind tells backends how to compare the order field.
type OrderKind int

const (
	OrderText OrderKind = iota
	OrderNumber
	OrderTime
)

// Filter is a single predicate on a top-level field.
// OpIn expects a []string value; comparison operators expect a number.
type Filter struct {
	Field string
	Op    Op
	Value any
}

// Order sorts query results by a top-level field.
type Order struct {
	Field      string
	Kind       OrderKind
	Descending bool
}

// Query selects documents of one collection.
type Query struct {
	Filters []Filter
	Order   *Order
	Limit   int
}

// Where is shorthand for building a Filter.
func Where(field string, op Op, value any) Filter {
	return Filter{Field: field, Op: op, Value: value}
}

// Validate checks field names, operators and value shapes.
func (q Query) Validate() error {
	for _, f := range q.Filters {
		if !ValidFieldName(f.Field) {
			return fmt.Errorf("%w: field %q", ErrInvalidQuery, f.Field)
		}
		switch f.Op {
		case OpEqual, OpArrayContains:
		case OpIn:
			if _, ok := f.Value.([]string); !ok {
				return fmt.Errorf("%w: %s expects []string", ErrInvalidQuery, f.Op)
			}
		case OpGreaterOrEq, OpLessOrEq:
			if _, ok := toFloat(f.Value); !ok {
				return fmt.Errorf("%w: %s expects a number", ErrInvalidQuery, f.Op)
			}
		default:
			return fmt.Errorf("%w: operator %q", ErrInvalidQuery, f.Op)
		}
	}
	if q.Order != nil && !ValidFieldName(q.Order.Field) {
		return fmt.Errorf("%w: order field %q", ErrInvalidQuery, q.Order.Field)
	}
	if q.Limit < 0 {
		return fmt.Errorf("%w: negative limit", ErrInvalidQuery)
	}
	return nil
}

// Evaluate filters, orders and limits docs in memory. Used by backends without
// a native query language.
func Evaluate(docs []Document, q Query) ([]Document, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	type row struct {
		doc    Document
		fields map[string]any
	}

	rows := make([]row, 0, len(docs))
	for _, doc := range docs {
		fields := make(map[string]any)
		if err := json.Unmarshal(doc.Data, &fields); err != nil {
			return nil, fmt.Errorf("decode %s: %w", doc.Key, err)
		}
		if matchAll(fields, q.Filters) {
			rows = append(rows, row{doc: doc, fields: fields})
		}
	}

	if q.Order != nil {
		order := *q.Order
		sort.SliceStable(rows, func(i, j int) bool {
			a, b := rows[i].fields[order.Field], rows[j].fields[order.Field]
			if (a == nil) != (b == nil) {
				return b == nil
			}
			c := compareField(a, b, order.Kind)
			if c == 0 {
				return rows[i].doc.ID < rows[j].doc.ID
			}
			if order.Descending {
				return c > 0
			}
			return c < 0
		})
	}

	if q.Limit > 0 && len(rows) > q.Limit {
		rows = rows[:q.Limit]
	}

	out := make([]Document, len(rows))
	for i, r := range rows {
		out[i] = r.doc
	}
	return out, nil
}

func matchAll(fields map[string]any, filters []Filter) bool {
	for _, f := range filters {
		if !matchOne(fields[f.Field], f) {
			return false
		}
	}
	return true
}

func matchOne(value any, f Filter) bool {
	if value == nil {
		return false
	}
	switch f.Op {
	case OpEqual:
		return equalValues(value, f.Value)
	case OpIn:
		for _, candidate := range f.Value.([]string) {
			if equalValues(value, candidate) {
				return true
			}
		}
		return false
	case OpArrayContains:
		items, ok := value.([]any)
		if !ok {
			return false
		}
		for _, item := range items {
			if equalValues(item, f.Value) {
				return true
			}
		}
		return false
	case OpGreaterOrEq, OpLessOrEq:
		have, ok := toFloat(value)
		if !ok {
			return false
		}
		want, _ := toFloat(f.Value)
		if f.Op == OpGreaterOrEq {
			return have >= want
		}
		return have <= want
	}
	return false
}

func equalValues(a, b any) bool {
	if fa, ok := toFloat(a); ok {
		fb, ok := toFloat(b)
		return ok && fa == fb
	}
	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	default:
		return false
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

func compareField(a, b any, kind OrderKind) int {
	switch kind {
	case OrderNumber:
		fa, _ := toFloat(a)
		fb, _ := toFloat(b)
		return compareOrdered(fa, fb)
	case OrderTime:
		ta := parseTime(a)
		tb := parseTime(b)
		return ta.Compare(tb)
	default:
		sa, _ := a.(string)
		sb, _ := b.(string)
		return compareOrdered(sa, sb)
	}
}

func parseTime(v any) time.Time {
	s, _ := v.(string)
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func compareOrdered[T float64 | string](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
