package rag

import "context"

// Point is one embedded document ready to be written to the vector store.
type Point struct {
	ID      string
	Vector  []float32
	Payload map[string]any
}

// Result is a retrieved document ranked by similarity score.
type Result struct {
	ID       string
	Text     string
	Name     string
	Filename string
	Score    float32
}

// Source returns the most specific origin label available for the result.
func (r Result) Source() string {
	if r.Filename != "" {
		return r.Filename
	}
	if r.Name != "" {
		return r.Name
	}
	return "Unknown"
}

type Interface interface {
	UpsertText(ctx context.Context, text, collection, name string) (string, error)
	UpsertDocument(ctx context.Context, path, collection string) (string, error)
	IngestFolder(ctx context.Context, folder, collection string) (int, error)
	Retrieve(ctx context.Context, query, collection string, limit int) ([]Result, error)
	ContextForQuery(ctx context.Context, query, collection string, limit int) string
	ClearCollection(ctx context.Context, collection string) error
}

type vectorStore interface {
	EnsureCollection(ctx context.Context, collection string, vectorSize int) error
	Upsert(ctx context.Context, collection string, points []Point) error
	Query(ctx context.Context, collection string, vector []float32, limit int) ([]Result, error)
	CollectionExists(ctx context.Context, collection string) (bool, error)
	DeleteCollection(ctx context.Context, collection string) error
	Close() error
}
