package sqlitehistory

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/leofalp/aitask/core/record"
	"github.com/leofalp/aitask/core/task"
	"github.com/leofalp/aitask/providers/ai"
)

func openTempStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Fatalf("close store: %v", err)
		}
	})
	return store
}

// TestOpen_RequiresPath verifies that an empty path is rejected.
func TestOpen_RequiresPath(t *testing.T) {
	t.Parallel()

	if _, err := Open("  "); err == nil {
		t.Fatal("expected empty path error")
	}
}

// TestOpen_Reopen verifies that migrations run once and data survives a
// reopen of the same file.
func TestOpen_Reopen(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "history.db")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := store.Append(context.Background(), record.Record{ID: "a", Kind: task.KindChat, Provider: ai.ProviderEcho}); err != nil {
		t.Fatalf("append: %v", err)
	}
	_ = store.Close()

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	n, err := reopened.Count(context.Background())
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 record after reopen, got %d", n)
	}
}

// TestAppendRecent_RoundTrip verifies that every record field survives
// storage.
func TestAppendRecent_RoundTrip(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	created := time.Date(2026, time.February, 22, 16, 40, 0, 0, time.UTC)
	input := record.Record{
		ID:        "rec-1",
		Kind:      task.KindSpeech,
		Sender:    "cli",
		CreatedAt: created,
		Provider:  ai.ProviderStability,
		ModelID:   "stable-audio",
		ModelName: "Stable Audio",
		Options:   map[string]string{"voice": "nova"},
		Usage:     &ai.Usage{Characters: 12},
		Cost:      0.42,
		Input:     []record.Item{record.TextItem("", "hello there!")},
		Output:    []record.Item{{Type: ai.ModalityAudio, Mime: "audio/mpeg", Path: "out/StabilityAI_tts.mp3", Size: 9}},
	}
	if err := store.Append(context.Background(), input); err != nil {
		t.Fatalf("append: %v", err)
	}

	got, err := store.Recent(context.Background(), 5)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 record, got %d", len(got))
	}
	rec := got[0]
	if rec.ID != input.ID || rec.Kind != input.Kind || rec.Sender != input.Sender {
		t.Fatalf("identity mismatch: %+v", rec)
	}
	if !rec.CreatedAt.Equal(created) {
		t.Fatalf("created_at = %v, want %v", rec.CreatedAt, created)
	}
	if rec.Provider != input.Provider || rec.ModelID != input.ModelID || rec.ModelName != input.ModelName {
		t.Fatalf("model mismatch: %+v", rec)
	}
	if rec.Options["voice"] != "nova" || rec.Usage == nil || rec.Usage.Characters != 12 || rec.Cost != 0.42 {
		t.Fatalf("payload mismatch: %+v", rec)
	}
	if len(rec.Output) != 1 || rec.Output[0].Path != "out/StabilityAI_tts.mp3" || rec.Output[0].Size != 9 {
		t.Fatalf("output mismatch: %+v", rec.Output)
	}
}

// TestAppend_DuplicateID verifies that a record id is stored once.
func TestAppend_DuplicateID(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	rec := record.Record{ID: "dup", Kind: task.KindChat, Provider: ai.ProviderEcho}
	if err := store.Append(context.Background(), rec); err != nil {
		t.Fatalf("first append: %v", err)
	}
	if err := store.Append(context.Background(), rec); err == nil {
		t.Fatal("expected duplicate id error")
	}
}

// TestAppend_CanceledContext verifies that a canceled context stops Append.
func TestAppend_CanceledContext(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := store.Append(ctx, record.Record{ID: "a", Kind: task.KindChat}); err == nil {
		t.Fatal("expected context error")
	}
}

// TestRecent_Window verifies ordering and window size.
func TestRecent_Window(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	for _, id := range []string{"a", "b", "c"} {
		if err := store.Append(context.Background(), record.Record{ID: id, Kind: task.KindCompletion, Provider: ai.ProviderEcho}); err != nil {
			t.Fatalf("append %s: %v", id, err)
		}
	}

	got, err := store.Recent(context.Background(), 2)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(got) != 2 || got[0].ID != "b" || got[1].ID != "c" {
		t.Fatalf("unexpected window: %+v", got)
	}
	if got[0].Options != nil || got[0].Usage != nil {
		t.Fatalf("expected NULL columns to decode as nil, got %+v", got[0])
	}

	none, err := store.Recent(context.Background(), 0)
	if err != nil || len(none) != 0 {
		t.Fatalf("expected empty window, got %v, %v", none, err)
	}
}

// TestExtractUp verifies migration section parsing.
func TestExtractUp(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{name: "no markers", content: "CREATE TABLE x (a INT);", want: "CREATE TABLE x (a INT);"},
		{name: "up only", content: "-- +migrate Up\nSELECT 1;", want: "\nSELECT 1;"},
		{name: "up and down", content: "-- +migrate Up\nSELECT 1;\n-- +migrate Down\nSELECT 2;", want: "\nSELECT 1;\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractUp(tt.content); got != tt.want {
				t.Errorf("extractUp() = %q, want %q", got, tt.want)
			}
		})
	}
}
