package configs

import (
	"os"
	"strconv"
	"time"
)

// Settings gathers every environment-driven knob in one place so the rest
// of the code receives explicit configuration instead of reading globals.
type Settings struct {
	Collection string `validate:"required"`

	QdrantHost string `validate:"required"`
	QdrantPort int    `validate:"gt=0"`

	OllamaBaseURL   string `validate:"required,url"`
	EmbeddingsModel string `validate:"required"`

	LLMBaseURL string `validate:"required,url"`
	LLMModel   string `validate:"required"`

	SpeechAPIKey  string
	PauseDuration time.Duration `validate:"gt=0"`
	SampleRate    int           `validate:"gt=0"`

	DBPath string
}

func LoadSettings() *Settings {
	return &Settings{
		Collection:      envOrDefault("RAG_COLLECTION", "Default"),
		QdrantHost:      envOrDefault("QDRANT_URL", "localhost"),
		QdrantPort:      envOrDefaultInt("QDRANT_PORT", 6334),
		OllamaBaseURL:   envOrDefault("OLLAMA_BASE_URL", "http://localhost:11434"),
		EmbeddingsModel: envOrDefault("EMBEDDINGS_MODEL", "nomic-embed-text:latest"),
		LLMBaseURL:      envOrDefault("LLM_BASE_URL", "http://localhost:1234"),
		LLMModel:        envOrDefault("LLM_MODEL", "gpt-4.1"),
		SpeechAPIKey:    os.Getenv("ASSEMBLY_AI_API_KEY"),
		PauseDuration:   envOrDefaultDuration("PAUSE_DURATION", 3*time.Second),
		SampleRate:      envOrDefaultInt("SAMPLE_RATE", 16000),
		DBPath:          os.Getenv("DB_PATH"),
	}
}

// CheckEnvironment reports which of the given variables are unset, in the
// order given. Networked commands refuse to start when any are missing.
func CheckEnvironment(vars ...string) []string {
	var missing []string
	for _, v := range vars {
		if os.Getenv(v) == "" {
			missing = append(missing, v)
		}
	}
	return missing
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envOrDefaultInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envOrDefaultDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
