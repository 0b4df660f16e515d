package inmemory

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/leofalp/aitask/core/record"
	"github.com/leofalp/aitask/core/task"
	"github.com/leofalp/aitask/providers/observability"
)

func newRecord(id string) record.Record {
	return record.Record{
		ID:      id,
		Kind:    task.KindSpeech,
		Options: map[string]string{"voice": "alloy"},
		Input:   []record.Item{{Type: "text", Text: "hello"}},
	}
}

// TestStore_AppendAndAll verifies that appended records are returned in
// order and that callers cannot mutate the stored copies.
func TestStore_AppendAndAll(t *testing.T) {
	s := New()
	ctx := context.Background()

	if n, _ := s.Count(ctx); n != 0 {
		t.Fatalf("expected empty store, got %d", n)
	}

	for _, id := range []string{"a", "b"} {
		if err := s.Append(ctx, newRecord(id)); err != nil {
			t.Fatalf("append %s: %v", id, err)
		}
	}

	all := s.All()
	if len(all) != 2 || all[0].ID != "a" || all[1].ID != "b" {
		t.Fatalf("unexpected records: %+v", all)
	}

	all[0].Options["voice"] = "changed"
	all[0].Input[0].Text = "changed"
	again := s.All()
	if again[0].Options["voice"] != "alloy" || again[0].Input[0].Text != "hello" {
		t.Fatalf("expected copy protection, got %+v", again[0])
	}
}

// TestStore_Last verifies window selection and ordering.
func TestStore_Last(t *testing.T) {
	s := New()
	for i := range 5 {
		_ = s.Append(context.Background(), newRecord(string(rune('a'+i))))
	}

	tests := []struct {
		n    int
		want []string
	}{
		{n: 2, want: []string{"d", "e"}},
		{n: 0, want: nil},
		{n: -1, want: nil},
		{n: 10, want: []string{"a", "b", "c", "d", "e"}},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("n=%d", tt.n), func(t *testing.T) {
			got := s.Last(tt.n)
			if len(got) != len(tt.want) {
				t.Fatalf("expected %d records, got %d", len(tt.want), len(got))
			}
			for i, rec := range got {
				if rec.ID != tt.want[i] {
					t.Errorf("record %d: expected %q, got %q", i, tt.want[i], rec.ID)
				}
			}
		})
	}

	recent, err := s.Recent(context.Background(), 1)
	if err != nil || len(recent) != 1 || recent[0].ID != "e" {
		t.Fatalf("unexpected Recent result: %+v, %v", recent, err)
	}
}

// TestStore_Clear verifies that Clear empties the store.
func TestStore_Clear(t *testing.T) {
	s := New()
	_ = s.Append(context.Background(), newRecord("a"))
	s.Clear()
	if n, _ := s.Count(context.Background()); n != 0 {
		t.Fatalf("expected 0 after clear, got %d", n)
	}
}

// TestStore_ConcurrentAppend verifies that parallel appends are all kept.
func TestStore_ConcurrentAppend(t *testing.T) {
	s := New()
	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = s.Append(context.Background(), newRecord(fmt.Sprint(i)))
		}(i)
	}
	wg.Wait()

	if n, _ := s.Count(context.Background()); n != 50 {
		t.Fatalf("expected 50 records, got %d", n)
	}
}

// ========== Span integration ==========

type recordingSpan struct {
	events []string
	attrs  []observability.Attribute
}

func (s *recordingSpan) End()                                       {}
func (s *recordingSpan) SetStatus(observability.StatusCode, string) {}
func (s *recordingSpan) RecordError(error)                          {}
func (s *recordingSpan) SetAttributes(attrs ...observability.Attribute) {
	s.attrs = append(s.attrs, attrs...)
}
func (s *recordingSpan) AddEvent(name string, _ ...observability.Attribute) {
	s.events = append(s.events, name)
}

// TestStore_AppendAddsSpanEvent verifies that Append reports to the span
// carried by the context.
func TestStore_AppendAddsSpanEvent(t *testing.T) {
	span := &recordingSpan{}
	ctx := observability.ContextWithSpan(context.Background(), span)

	s := New()
	_ = s.Append(ctx, newRecord("a"))
	_ = s.Append(ctx, newRecord("b"))

	if len(span.events) != 2 || span.events[0] != observability.EventHistoryAppend {
		t.Fatalf("unexpected events: %v", span.events)
	}
	last := span.attrs[len(span.attrs)-1]
	if last.Key != observability.AttrHistoryTotal || last.Value != 2 {
		t.Fatalf("expected total=2 attribute, got %+v", last)
	}
}
