package transcription

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"ConverseAI/app/utils/restclient"
)

// BatchTranscriber transcribes whole audio files through the asynchronous
// REST API: upload, submit a job, poll until done.
type BatchTranscriber struct {
	restClient   *restclient.RestClient
	pollInterval time.Duration
}

type transcriptJob struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Text   string `json:"text"`
	Error  string `json:"error"`
}

func NewBatchTranscriber(apiKey string) (*BatchTranscriber, error) {
	if apiKey == "" {
		apiKey = os.Getenv("ASSEMBLY_AI_API_KEY")
	}
	if apiKey == "" {
		return nil, errors.New("ASSEMBLY_AI_API_KEY not found in environment")
	}
	baseURL := os.Getenv("TRANSCRIPTION_BASE_URL")
	if baseURL == "" {
		baseURL = "https://api.assemblyai.com"
	}
	return &BatchTranscriber{
		restClient:   restclient.NewRestClient(baseURL, map[string]string{"Authorization": apiKey}),
		pollInterval: 3 * time.Second,
	}, nil
}

// TranscribeFile uploads the audio file and blocks until the transcription
// job completes or fails.
func (b *BatchTranscriber) TranscribeFile(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open audio file %s: %w", path, err)
	}
	defer f.Close()

	body, status, err := b.restClient.PostRaw(ctx, "/v2/upload", f, "application/octet-stream", nil)
	if err != nil {
		return "", fmt.Errorf("upload audio: %w", err)
	}
	if status != http.StatusOK {
		return "", fmt.Errorf("upload audio: http %d", status)
	}
	var uploaded struct {
		UploadURL string `json:"upload_url"`
	}
	if err = json.Unmarshal(body, &uploaded); err != nil {
		return "", fmt.Errorf("parse upload response: %w", err)
	}

	payload := map[string]string{
		"audio_url":    uploaded.UploadURL,
		"speech_model": "best",
	}
	body, status, err = b.restClient.Post(ctx, "/v2/transcript", payload, nil)
	if err != nil {
		return "", fmt.Errorf("submit transcription job: %w", err)
	}
	if status != http.StatusOK {
		return "", fmt.Errorf("submit transcription job: http %d", status)
	}
	var job transcriptJob
	if err = json.Unmarshal(body, &job); err != nil {
		return "", fmt.Errorf("parse job response: %w", err)
	}

	return b.poll(ctx, job.ID)
}

func (b *BatchTranscriber) poll(ctx context.Context, jobID string) (string, error) {
	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(b.pollInterval):
		}

		body, status, err := b.restClient.Get(ctx, "/v2/transcript/"+jobID, nil)
		if err != nil {
			return "", fmt.Errorf("poll transcription job %s: %w", jobID, err)
		}
		if status != http.StatusOK {
			return "", fmt.Errorf("poll transcription job %s: http %d", jobID, status)
		}
		var job transcriptJob
		if err = json.Unmarshal(body, &job); err != nil {
			return "", fmt.Errorf("parse job status: %w", err)
		}

		switch job.Status {
		case "completed":
			return job.Text, nil
		case "error":
			return "", fmt.Errorf("transcription failed: %s", job.Error)
		}
	}
}
