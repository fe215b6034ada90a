package rag

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"ConverseAI/app/utils"
)

// Embedder turns text into a fixed-length vector.
type Embedder interface {
	EmbedText(ctx context.Context, text string) ([]float32, error)
}

const (
	chunkSize = 500
	overlap   = 100

	DefaultCollection = "Default"
)

const NoContextSentinel = "No relevant context found."

type Client struct {
	store      vectorStore
	embedder   Embedder
	collection string
}

var _ Interface = &Client{}

// NewClient builds a retrieval client over an explicit store and embedder.
// collection is the default used when a call passes an empty name.
func NewClient(store vectorStore, embedder Embedder, collection string) *Client {
	if collection == "" {
		collection = DefaultCollection
	}
	return &Client{
		store:      store,
		embedder:   embedder,
		collection: collection,
	}
}

func (c *Client) collectionOr(name string) string {
	if name == "" {
		return c.collection
	}
	return name
}

// UpsertText embeds text and writes it as a single point. Returns the
// generated point id.
func (c *Client) UpsertText(ctx context.Context, text, collection, name string) (string, error) {
	collection = c.collectionOr(collection)
	if name == "" {
		name = "text_document"
	}

	vec, err := c.embedder.EmbedText(ctx, text)
	if err != nil {
		return "", fmt.Errorf("embed text: %w", err)
	}
	if err = c.store.EnsureCollection(ctx, collection, len(vec)); err != nil {
		return "", err
	}

	pointID := uuid.New().String()
	err = c.store.Upsert(ctx, collection, []Point{{
		ID:      pointID,
		Vector:  vec,
		Payload: map[string]any{"text": text, "name": name},
	}})
	if err != nil {
		return "", fmt.Errorf("upsert text: %w", err)
	}

	log.Printf("✅ Text uploaded with ID %s to collection '%s'", pointID, collection)
	return pointID, nil
}

// UpsertDocument reads a whole file and stores it under its path. An empty
// file is a no-op with a warning; a missing file is a reported error.
func (c *Client) UpsertDocument(ctx context.Context, path, collection string) (string, error) {
	collection = c.collectionOr(collection)

	text, err := utils.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("file '%s' not found", path)
		}
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		log.Printf("⚠️ File %s is empty, nothing to upsert", path)
		return "", nil
	}

	vec, err := c.embedder.EmbedText(ctx, text)
	if err != nil {
		return "", fmt.Errorf("embed document %s: %w", path, err)
	}
	if err = c.store.EnsureCollection(ctx, collection, len(vec)); err != nil {
		return "", err
	}

	pointID := uuid.New().String()
	err = c.store.Upsert(ctx, collection, []Point{{
		ID:     pointID,
		Vector: vec,
		Payload: map[string]any{
			"text":     text,
			"filename": path,
			"name":     path,
		},
	}})
	if err != nil {
		return "", fmt.Errorf("upsert document %s: %w", path, err)
	}

	log.Printf("✅ Document '%s' uploaded with ID %s to collection '%s'", path, pointID, collection)
	return pointID, nil
}

// IngestFolder chunks every file directly under folder and upserts the
// chunks in one batch per file. Returns the number of points written.
func (c *Client) IngestFolder(ctx context.Context, folder, collection string) (int, error) {
	collection = c.collectionOr(collection)

	paths, err := utils.LoadFilesFromDir(folder)
	if err != nil {
		return 0, err
	}

	total := 0
	for _, p := range paths {
		text, err := utils.ReadFile(p)
		if err != nil {
			return total, err
		}
		if strings.TrimSpace(text) == "" {
			log.Printf("⚠️ File %s is empty, skipping", p)
			continue
		}

		chunks := ChunkText(text, chunkSize, overlap)
		batch := make([]Point, 0, len(chunks))

		for i, ch := range chunks {
			vec, err := c.embedder.EmbedText(ctx, ch)
			if err != nil {
				return total, fmt.Errorf("embed chunk %d of %s: %w", i, p, err)
			}
			if err = c.store.EnsureCollection(ctx, collection, len(vec)); err != nil {
				return total, err
			}
			batch = append(batch, Point{
				ID:     uuid.New().String(),
				Vector: vec,
				Payload: map[string]any{
					"text":     ch,
					"filename": p,
					"name":     filepath.Base(p),
				},
			})
		}

		if err = c.store.Upsert(ctx, collection, batch); err != nil {
			return total, fmt.Errorf("upsert batch for %s: %w", p, err)
		}
		total += len(batch)
	}

	return total, nil
}

// Retrieve embeds the query and returns up to limit nearest neighbors,
// ranked by descending similarity score.
func (c *Client) Retrieve(ctx context.Context, query, collection string, limit int) ([]Result, error) {
	collection = c.collectionOr(collection)

	vec, err := c.embedder.EmbedText(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	results, err := c.store.Query(ctx, collection, vec, limit)
	if err != nil {
		return nil, fmt.Errorf("query collection '%s': %w", collection, err)
	}
	return results, nil
}

// ContextForQuery renders retrieval results as a prompt-ready block.
// Failures degrade to the sentinel so an in-flight agent run never aborts.
func (c *Client) ContextForQuery(ctx context.Context, query, collection string, limit int) string {
	results, err := c.Retrieve(ctx, query, collection, limit)
	if err != nil {
		log.Printf("⚠️ Error retrieving context: %v", err)
		return NoContextSentinel
	}
	if len(results) == 0 {
		return NoContextSentinel
	}

	parts := make([]string, 0, len(results))
	for i, result := range results {
		parts = append(parts, fmt.Sprintf("Document %d (from %s, score: %.3f):\n%s",
			i+1, result.Source(), result.Score, result.Text))
	}

	return strings.Join(parts, "\n\n---\n\n")
}

// ClearCollection drops the whole collection. Absent collections are a
// no-op, never an error.
func (c *Client) ClearCollection(ctx context.Context, collection string) error {
	collection = c.collectionOr(collection)

	exists, err := c.store.CollectionExists(ctx, collection)
	if err != nil {
		return fmt.Errorf("check collection '%s': %w", collection, err)
	}
	if !exists {
		log.Printf("ℹ️ Collection '%s' does not exist", collection)
		return nil
	}
	if err = c.store.DeleteCollection(ctx, collection); err != nil {
		return fmt.Errorf("clear collection '%s': %w", collection, err)
	}
	log.Printf("✅ Collection '%s' cleared", collection)
	return nil
}

func ChunkText(text string, size, overlap int) []string {
	runes := []rune(text)
	var chunks []string

	for start := 0; start < len(runes); start += size - overlap {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
		if end == len(runes) {
			break
		}
	}

	return chunks
}
