package storage

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func newTestStorage(t *testing.T) *SQLiteMemoryStorage {
	t.Helper()
	t.Setenv("DB_PATH", filepath.Join(t.TempDir(), "memories.db"))

	s, err := NewSQLiteStorage()
	if err != nil {
		t.Fatalf("NewSQLiteStorage failed: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSaveAndGetMemories(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	now := time.Date(2026, 8, 23, 10, 30, 0, 0, time.UTC)

	records := []Record{
		{User: "alice", Role: "user", Content: "what is NVDA trading at", CreatedAt: now},
		{User: "alice", Role: "assistant", Content: "NVDA: 120.00 USD", CreatedAt: now.Add(time.Second)},
		{User: "bob", Role: "user", Content: "unrelated", CreatedAt: now},
	}
	for _, r := range records {
		if err := s.SaveMemory(ctx, r); err != nil {
			t.Fatalf("SaveMemory failed: %v", err)
		}
	}

	got, err := s.GetMemoriesByUser(ctx, "alice", 10)
	if err != nil {
		t.Fatalf("GetMemoriesByUser failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 records for alice, got %d", len(got))
	}
	// Most recent first.
	if got[0].Content != "NVDA: 120.00 USD" || got[1].Content != "what is NVDA trading at" {
		t.Errorf("unexpected order: %+v", got)
	}
	if !got[1].CreatedAt.Equal(now) {
		t.Errorf("timestamp not round-tripped: %v", got[1].CreatedAt)
	}
}

func TestGetMemoriesLimit(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if err := s.SaveMemory(ctx, Record{User: "u", Role: "user", Content: "m", CreatedAt: time.Now()}); err != nil {
			t.Fatal(err)
		}
	}
	got, err := s.GetMemoriesByUser(ctx, "u", 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 records, got %d", len(got))
	}
}

func TestSearchMemories(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	now := time.Now()

	for _, content := range []string{"aspirin dosage question", "contract review notes", "aspirin interactions"} {
		if err := s.SaveMemory(ctx, Record{User: "u", Role: "user", Content: content, CreatedAt: now}); err != nil {
			t.Fatal(err)
		}
	}

	got, err := s.SearchMemories(ctx, "u", "aspirin", 10)
	if err != nil {
		t.Fatalf("SearchMemories failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(got))
	}
	for _, r := range got {
		if !strings.Contains(r.Content, "aspirin") {
			t.Errorf("non-matching record returned: %q", r.Content)
		}
	}

	got, err = s.SearchMemories(ctx, "other-user", "aspirin", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Fatalf("search leaked across users: %+v", got)
	}
}

func TestSaveMemoryWithToolFields(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	err := s.SaveMemory(ctx, Record{
		User:       "u",
		Role:       "tool",
		Tool:       "stock_quote",
		Parameters: `{"symbol":"NVDA"}`,
		Content:    "NVDA: 120.00 USD",
		CreatedAt:  time.Now(),
	})
	if err != nil {
		t.Fatal(err)
	}

	got, err := s.GetMemoriesByUser(ctx, "u", 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Tool != "stock_quote" || got[0].Parameters != `{"symbol":"NVDA"}` {
		t.Fatalf("tool fields not round-tripped: %+v", got)
	}
}

func TestRecordListToString(t *testing.T) {
	now := time.Date(2026, 8, 23, 10, 0, 0, 0, time.UTC)
	records := []Record{
		{Role: "user", Content: "one", CreatedAt: now},
		{Role: "assistant", Content: "two", CreatedAt: now},
		{Role: "user", Content: "three", CreatedAt: now},
	}

	if got := RecordListToString(nil, 5); got != "" {
		t.Errorf("expected empty string for no records, got %q", got)
	}

	got := RecordListToString(records, 2)
	if !strings.Contains(got, "Content: one") || !strings.Contains(got, "Content: two") {
		t.Errorf("missing records: %q", got)
	}
	if strings.Contains(got, "Content: three") {
		t.Errorf("max not applied: %q", got)
	}
	if !strings.Contains(got, "[2026-08-23 10:00:00] Role: user") {
		t.Errorf("unexpected format: %q", got)
	}
}
