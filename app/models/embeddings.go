package models

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"ConverseAI/app/utils/restclient"
)

const embeddingEndpoint = "/api/embeddings"

// Embedder turns text into a fixed-length vector.
type Embedder interface {
	EmbedText(ctx context.Context, text string) ([]float32, error)
}

// OllamaEmbedder generates embeddings through a local or remote Ollama server.
type OllamaEmbedder struct {
	restClient *restclient.RestClient
	model      string
	cache      sync.Map
}

func NewOllamaEmbedder(model string) *OllamaEmbedder {
	baseURL := os.Getenv("OLLAMA_BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if model == "" {
		model = os.Getenv("EMBEDDINGS_MODEL")
	}
	if model == "" {
		model = "nomic-embed-text:latest"
	}
	return &OllamaEmbedder{
		restClient: restclient.NewRestClient(baseURL, nil),
		model:      model,
	}
}

func (e *OllamaEmbedder) EmbedText(ctx context.Context, input string) ([]float32, error) {
	if strings.TrimSpace(input) == "" {
		return nil, errors.New("cannot embed empty text")
	}

	if v, ok := e.cache.Load(input); ok {
		if emb, ok2 := v.([]float32); ok2 {
			return emb, nil
		}
	}

	req := embeddingRequestPayload{
		Model:  e.model,
		Prompt: input,
	}
	resp, err := e.sendEmbeddings(ctx, req, 3)
	if err != nil {
		return nil, err
	}
	if len(resp.Embedding) == 0 {
		return nil, errors.New("no embedding data returned")
	}
	e.cache.Store(input, resp.Embedding)
	return resp.Embedding, nil
}

func (e *OllamaEmbedder) sendEmbeddings(ctx context.Context, payload embeddingRequestPayload, maxRetries int) (*embeddingResponse, error) {
	var (
		lastErr error
		body    []byte
		status  int
		out     embeddingResponse
	)

	for i := 0; i < maxRetries; i++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if i > 0 {
			sleep := time.Duration(100*(1<<uint(i))) * time.Millisecond
			sleep += time.Duration(time.Now().UnixNano() % int64(100*time.Millisecond))
			time.Sleep(sleep)
		}

		b, s, err := e.restClient.Post(ctx, embeddingEndpoint, payload, nil)
		body, status, lastErr = b, s, err
		if err != nil {
			log.Printf("⚠️ embed attempt %d failed: http=%d err=%v", i+1, status, err)
			continue
		}
		if err := json.Unmarshal(body, &out); err != nil {
			lastErr = fmt.Errorf("parse embeddings json: %w", err)
			log.Printf("⚠️ %v", lastErr)
			continue
		}

		return &out, nil
	}
	return nil, fmt.Errorf("embeddings request failed after %d retries: %w", maxRetries, lastErr)
}
