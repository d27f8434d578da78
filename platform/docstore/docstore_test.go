package docstore

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestPatchKeepsUnknownFields(t *testing.T) {
	data := json.RawMessage(`{"userId":"u1","leadCredits":5,"bio":"hello"}`)

	patched, err := Patch(data, map[string]any{"leadCredits": 4})
	if err != nil {
		t.Fatalf("Patch() error = %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal(patched, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got["leadCredits"] != float64(4) {
		t.Errorf("leadCredits = %v, want 4", got["leadCredits"])
	}
	if got["bio"] != "hello" || got["userId"] != "u1" {
		t.Errorf("untouched fields lost: %v", got)
	}
}

func TestCheckWrites(t *testing.T) {
	keys := []Key{NewKey("leads", "a")}
	if err := CheckWrites(keys, []Write{{Key: NewKey("leads", "a")}}); err != nil {
		t.Fatalf("declared write rejected: %v", err)
	}
	err := CheckWrites(keys, []Write{{Key: NewKey("leads", "b")}})
	if !errors.Is(err, ErrUndeclaredWrite) {
		t.Fatalf("expected ErrUndeclaredWrite, got %v", err)
	}
}

func TestSortedKeys(t *testing.T) {
	keys := []Key{
		NewKey("leads", "b"),
		NewKey("bosProfiles", "z"),
		NewKey("leads", "a"),
		NewKey("leads", "b"),
	}
	got := SortedKeys(keys)
	want := []Key{NewKey("bosProfiles", "z"), NewKey("leads", "a"), NewKey("leads", "b")}
	if len(got) != len(want) {
		t.Fatalf("SortedKeys() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("SortedKeys()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestQueryValidate(t *testing.T) {
	tests := []struct {
		name    string
		query   Query
		wantErr bool
	}{
		{name: "empty", query: Query{}},
		{name: "equal", query: Query{Filters: []Filter{Where("status", OpEqual, "open")}}},
		{name: "in needs slice", query: Query{Filters: []Filter{Where("category", OpIn, "Plumber")}}, wantErr: true},
		{name: "range needs number", query: Query{Filters: []Filter{Where("rating", OpGreaterOrEq, "4")}}, wantErr: true},
		{name: "unknown op", query: Query{Filters: []Filter{Where("status", Op("!="), "open")}}, wantErr: true},
		{name: "unsafe field", query: Query{Filters: []Filter{Where("data->>'x'", OpEqual, "open")}}, wantErr: true},
		{name: "unsafe order", query: Query{Order: &Order{Field: "1=1"}}, wantErr: true},
		{name: "negative limit", query: Query{Limit: -1}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.query.Validate()
			if tt.wantErr && !errors.Is(err, ErrInvalidQuery) {
				t.Fatalf("expected ErrInvalidQuery, got %v", err)
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestEvaluateOrdersMissingValuesLast(t *testing.T) {
	docs := []Document{
		{Key: NewKey("p", "a"), Data: json.RawMessage(`{"rating":3}`)},
		{Key: NewKey("p", "b"), Data: json.RawMessage(`{}`)},
		{Key: NewKey("p", "c"), Data: json.RawMessage(`{"rating":5}`)},
		{Key: NewKey("p", "d"), Data: json.RawMessage(`{"rating":3}`)},
	}

	for _, desc := range []bool{true, false} {
		got, err := Evaluate(docs, Query{Order: &Order{Field: "rating", Kind: OrderNumber, Descending: desc}})
		if err != nil {
			t.Fatalf("Evaluate() error = %v", err)
		}
		ids := make([]string, len(got))
		for i, d := range got {
			ids[i] = d.ID
		}
		want := []string{"c", "a", "d", "b"}
		if !desc {
			want = []string{"a", "d", "c", "b"}
		}
		for i := range want {
			if ids[i] != want[i] {
				t.Fatalf("descending=%v order = %v, want %v", desc, ids, want)
			}
		}
	}
}

func TestEvaluateTimeOrderingHandlesFractionalSeconds(t *testing.T) {
	docs := []Document{
		{Key: NewKey("j", "whole"), Data: json.RawMessage(`{"createdAt":"2024-03-02T10:00:00Z"}`)},
		{Key: NewKey("j", "frac"), Data: json.RawMessage(`{"createdAt":"2024-03-02T10:00:00.5Z"}`)},
	}
	got, err := Evaluate(docs, Query{Order: &Order{Field: "createdAt", Kind: OrderTime, Descending: true}})
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if got[0].ID != "frac" {
		t.Fatalf("expected later timestamp first, got %s", got[0].ID)
	}
}
