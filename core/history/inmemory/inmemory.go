package inmemory

import (
	"context"
	"sync"

	"github.com/leofalp/aitask/core/history"
	"github.com/leofalp/aitask/core/record"
	"github.com/leofalp/aitask/providers/observability"
)

// Store keeps records in a slice guarded by an RWMutex.
type Store struct {
	mu      sync.RWMutex
	records []record.Record
}

// New returns an empty Store.
func New() *Store {
	return &Store{records: []record.Record{}}
}

var (
	_ history.Store  = (*Store)(nil)
	_ history.Reader = (*Store)(nil)
)

// Append stores a copy of rec. When a span is present in ctx, an event with
// the record id and kind is added and the running total is set as a span
// attribute.
func (s *Store) Append(ctx context.Context, rec record.Record) error {
	span := observability.SpanFromContext(ctx)
	if span != nil {
		span.AddEvent(observability.EventHistoryAppend,
			observability.RecordID(rec.ID),
			observability.Kind(rec.Kind.String()),
		)
	}

	s.mu.Lock()
	s.records = append(s.records, rec.Clone())
	total := len(s.records)
	s.mu.Unlock()

	if span != nil {
		span.SetAttributes(observability.Int(observability.AttrHistoryTotal, total))
	}
	return nil
}

// Count returns the number of stored records. The error is always nil.
func (s *Store) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	n := len(s.records)
	s.mu.RUnlock()
	return n, nil
}

// All returns copies of every record in append order.
func (s *Store) All() []record.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneAll(s.records)
}

// Last returns copies of the last n records in append order. n <= 0 yields
// an empty slice; n larger than the store yields everything.
func (s *Store) Last(n int) []record.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if n <= 0 {
		return []record.Record{}
	}
	start := max(len(s.records)-n, 0)
	return cloneAll(s.records[start:])
}

// Recent is Last behind the history.Reader signature.
func (s *Store) Recent(_ context.Context, n int) ([]record.Record, error) {
	return s.Last(n), nil
}

// Clear drops every record.
func (s *Store) Clear() {
	s.mu.Lock()
	s.records = []record.Record{}
	s.mu.Unlock()
}

func cloneAll(records []record.Record) []record.Record {
	out := make([]record.Record, len(records))
	for i, rec := range records {
		out[i] = rec.Clone()
	}
	return out
}
