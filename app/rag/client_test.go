package rag

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
)

// fakeEmbedder maps text deterministically onto a small vector so that
// identical texts embed identically and different texts diverge.
type fakeEmbedder struct {
	calls int
	fail  bool
}

func (f *fakeEmbedder) EmbedText(_ context.Context, text string) ([]float32, error) {
	f.calls++
	if f.fail {
		return nil, fmt.Errorf("embedder unavailable")
	}
	vec := make([]float32, 4)
	for i, r := range text {
		vec[i%4] += float32(r)
	}
	return vec, nil
}

type fakeStore struct {
	collections map[string]int // name -> vector size
	points      map[string][]Point
	ensures     int
	deleted     []string
	failQuery   bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		collections: map[string]int{},
		points:      map[string][]Point{},
	}
}

func (s *fakeStore) EnsureCollection(_ context.Context, collection string, vectorSize int) error {
	s.ensures++
	if size, ok := s.collections[collection]; ok {
		if size != vectorSize {
			return fmt.Errorf("collection %s expects vectors of size %d, got %d", collection, size, vectorSize)
		}
		return nil
	}
	s.collections[collection] = vectorSize
	return nil
}

func (s *fakeStore) Upsert(_ context.Context, collection string, points []Point) error {
	s.points[collection] = append(s.points[collection], points...)
	return nil
}

func (s *fakeStore) Query(_ context.Context, collection string, vector []float32, limit int) ([]Result, error) {
	if s.failQuery {
		return nil, fmt.Errorf("store unreachable")
	}
	var results []Result
	for _, p := range s.points[collection] {
		r := Result{ID: p.ID, Score: cosine(vector, p.Vector)}
		if t, ok := p.Payload["text"].(string); ok {
			r.Text = t
		}
		if n, ok := p.Payload["name"].(string); ok {
			r.Name = n
		}
		if f, ok := p.Payload["filename"].(string); ok {
			r.Filename = f
		}
		results = append(results, r)
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func (s *fakeStore) CollectionExists(_ context.Context, collection string) (bool, error) {
	_, ok := s.collections[collection]
	return ok, nil
}

func (s *fakeStore) DeleteCollection(_ context.Context, collection string) error {
	delete(s.collections, collection)
	delete(s.points, collection)
	s.deleted = append(s.deleted, collection)
	return nil
}

func (s *fakeStore) Close() error { return nil }

func cosine(a, b []float32) float32 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(na) * math.Sqrt(nb)))
}

func TestUpsertTextAndSelfRetrieval(t *testing.T) {
	store := newFakeStore()
	client := NewClient(store, &fakeEmbedder{}, "T")

	id, err := client.UpsertText(context.Background(), "The sky is blue", "T", "doc1")
	if err != nil {
		t.Fatalf("UpsertText failed: %v", err)
	}
	if id == "" {
		t.Fatal("expected a generated point id")
	}

	results, err := client.Retrieve(context.Background(), "The sky is blue", "T", 1)
	if err != nil {
		t.Fatalf("Retrieve failed: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Text != "The sky is blue" {
		t.Errorf("unexpected text: %q", results[0].Text)
	}
	if results[0].Score < 0.99 {
		t.Errorf("self-retrieval score too low: %f", results[0].Score)
	}
	if results[0].Source() != "doc1" {
		t.Errorf("unexpected source: %q", results[0].Source())
	}

	// A related question must surface the same document when it is the
	// best available match.
	results, err = client.Retrieve(context.Background(), "What color is the sky?", "T", 1)
	if err != nil {
		t.Fatalf("Retrieve failed: %v", err)
	}
	if len(results) != 1 || results[0].Name != "doc1" || results[0].Text != "The sky is blue" {
		t.Fatalf("unexpected results: %+v", results)
	}
}

func TestEnsureCollectionIdempotent(t *testing.T) {
	store := newFakeStore()
	client := NewClient(store, &fakeEmbedder{}, "T")
	ctx := context.Background()

	// Repeated upserts into the same collection re-ensure it with the same
	// size; no error, still exactly one collection.
	for i := 0; i < 3; i++ {
		if _, err := client.UpsertText(ctx, "same size text", "T", ""); err != nil {
			t.Fatalf("upsert %d failed: %v", i, err)
		}
	}
	if len(store.collections) != 1 {
		t.Fatalf("expected exactly one collection, got %v", store.collections)
	}
	if store.ensures != 3 {
		t.Fatalf("expected 3 ensure calls, got %d", store.ensures)
	}
}

func TestEnsureCollectionSizeMismatch(t *testing.T) {
	store := newFakeStore()
	store.collections["T"] = 8 // pre-existing collection with another size

	client := NewClient(store, &fakeEmbedder{}, "T")
	if _, err := client.UpsertText(context.Background(), "hello", "T", ""); err == nil {
		t.Fatal("expected a vector size mismatch error")
	}
}

func TestRetrieveRankedByScore(t *testing.T) {
	store := newFakeStore()
	client := NewClient(store, &fakeEmbedder{}, "T")
	ctx := context.Background()

	for _, text := range []string{"alpha beta gamma", "totally unrelated zzzz", "alpha beta"} {
		if _, err := client.UpsertText(ctx, text, "", ""); err != nil {
			t.Fatalf("UpsertText(%q) failed: %v", text, err)
		}
	}

	results, err := client.Retrieve(ctx, "alpha beta gamma", "", 3)
	if err != nil {
		t.Fatalf("Retrieve failed: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for i := 1; i < len(results); i++ {
		if results[i].Score > results[i-1].Score {
			t.Fatalf("results not ranked by descending score: %v", results)
		}
	}
	if results[0].Text != "alpha beta gamma" {
		t.Errorf("expected exact match first, got %q", results[0].Text)
	}
}

func TestContextForQuery(t *testing.T) {
	ctx := context.Background()

	t.Run("empty collection returns sentinel", func(t *testing.T) {
		client := NewClient(newFakeStore(), &fakeEmbedder{}, "T")
		if got := client.ContextForQuery(ctx, "anything", "", 3); got != NoContextSentinel {
			t.Errorf("expected sentinel, got %q", got)
		}
	})

	t.Run("store failure degrades to sentinel", func(t *testing.T) {
		store := newFakeStore()
		store.failQuery = true
		client := NewClient(store, &fakeEmbedder{}, "T")
		if got := client.ContextForQuery(ctx, "anything", "", 3); got != NoContextSentinel {
			t.Errorf("expected sentinel, got %q", got)
		}
	})

	t.Run("renders headers with source and score", func(t *testing.T) {
		client := NewClient(newFakeStore(), &fakeEmbedder{}, "T")
		if _, err := client.UpsertText(ctx, "The sky is blue", "", "weather.txt"); err != nil {
			t.Fatalf("UpsertText failed: %v", err)
		}
		got := client.ContextForQuery(ctx, "The sky is blue", "", 1)
		if !strings.HasPrefix(got, "Document 1 (from weather.txt, score: ") {
			t.Errorf("unexpected header: %q", got)
		}
		if !strings.Contains(got, "The sky is blue") {
			t.Errorf("context missing document text: %q", got)
		}
	})
}

func TestUpsertDocument(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	t.Run("missing file", func(t *testing.T) {
		client := NewClient(newFakeStore(), &fakeEmbedder{}, "T")
		_, err := client.UpsertDocument(ctx, filepath.Join(dir, "nope.txt"), "")
		if err == nil || !strings.Contains(err.Error(), "not found") {
			t.Fatalf("expected not found error, got %v", err)
		}
	})

	t.Run("empty file is a no-op", func(t *testing.T) {
		path := filepath.Join(dir, "empty.txt")
		if err := os.WriteFile(path, []byte("   \n"), 0o644); err != nil {
			t.Fatal(err)
		}
		store := newFakeStore()
		embedder := &fakeEmbedder{}
		client := NewClient(store, embedder, "T")

		id, err := client.UpsertDocument(ctx, path, "")
		if err != nil {
			t.Fatalf("expected no error for empty file, got %v", err)
		}
		if id != "" || embedder.calls != 0 || len(store.points["T"]) != 0 {
			t.Fatalf("empty file must not be embedded or stored")
		}
	})

	t.Run("stores filename payload", func(t *testing.T) {
		path := filepath.Join(dir, "notes.txt")
		if err := os.WriteFile(path, []byte("some notes"), 0o644); err != nil {
			t.Fatal(err)
		}
		store := newFakeStore()
		client := NewClient(store, &fakeEmbedder{}, "T")

		if _, err := client.UpsertDocument(ctx, path, ""); err != nil {
			t.Fatalf("UpsertDocument failed: %v", err)
		}
		points := store.points["T"]
		if len(points) != 1 {
			t.Fatalf("expected 1 point, got %d", len(points))
		}
		if points[0].Payload["filename"] != path {
			t.Errorf("unexpected filename payload: %v", points[0].Payload["filename"])
		}
	})
}

func TestIngestFolder(t *testing.T) {
	dir := t.TempDir()
	long := strings.Repeat("a", 1200) // 3 chunks at size 500 overlap 100
	if err := os.WriteFile(filepath.Join(dir, "long.txt"), []byte(long), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "short.txt"), []byte("short"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "empty.txt"), []byte(""), 0o644); err != nil {
		t.Fatal(err)
	}

	store := newFakeStore()
	client := NewClient(store, &fakeEmbedder{}, "T")

	count, err := client.IngestFolder(context.Background(), dir, "")
	if err != nil {
		t.Fatalf("IngestFolder failed: %v", err)
	}
	if count != 4 {
		t.Fatalf("expected 4 points, got %d", count)
	}
	if len(store.points["T"]) != count {
		t.Fatalf("store holds %d points, reported %d", len(store.points["T"]), count)
	}
}

func TestClearCollection(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	client := NewClient(store, &fakeEmbedder{}, "T")

	// Absent collection is not an error.
	if err := client.ClearCollection(ctx, "ghost"); err != nil {
		t.Fatalf("expected nil for absent collection, got %v", err)
	}
	if len(store.deleted) != 0 {
		t.Fatal("absent collection must not be deleted")
	}

	if _, err := client.UpsertText(ctx, "data", "T", ""); err != nil {
		t.Fatal(err)
	}
	if err := client.ClearCollection(ctx, "T"); err != nil {
		t.Fatalf("ClearCollection failed: %v", err)
	}
	if len(store.deleted) != 1 || store.deleted[0] != "T" {
		t.Fatalf("unexpected deletions: %v", store.deleted)
	}
}

func TestChunkText(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		size    int
		overlap int
		want    int
	}{
		{"empty", "", 500, 100, 0},
		{"single chunk", "hello", 500, 100, 1},
		{"exact boundary", strings.Repeat("x", 500), 500, 100, 1},
		{"two chunks", strings.Repeat("x", 501), 500, 100, 2},
		{"three chunks", strings.Repeat("x", 1200), 500, 100, 3},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ChunkText(tc.text, tc.size, tc.overlap)
			if len(got) != tc.want {
				t.Fatalf("expected %d chunks, got %d", tc.want, len(got))
			}
		})
	}

	// Consecutive chunks share the configured overlap.
	chunks := ChunkText("abcdefghij", 6, 2)
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %v", chunks)
	}
	if chunks[0] != "abcdef" || chunks[1] != "efghij" {
		t.Fatalf("unexpected chunk boundaries: %v", chunks)
	}
}
