package tools

import (
	"context"
	"errors"
	"log"
	"time"

	"ConverseAI/app/storage"
)

// MemoryTools returns the conversation-memory tools bound to a store and a
// user. Lookup failures are logged and reported as empty, keeping the
// session alive.
func MemoryTools(db storage.Interface, user string) []Tool {
	return []Tool{
		{
			Name:        recall_memory,
			Description: "Recall past conversation memories for the current user, optionally filtered by a search phrase.",
			Parameters: Parameter{
				Type: "object",
				Properties: map[string]any{
					"query": map[string]any{
						"type":        "string",
						"description": "Phrase to search for. Empty returns the most recent memories.",
					},
					"limit": map[string]any{
						"type":        "integer",
						"description": "Maximum number of memories to return. Defaults to 10.",
					},
				},
				Required: []string{},
			},
			HandlerFunc: func(ctx context.Context, task ToolTask) (string, error) {
				return withParsed[MemoryAction](task.Parameters, recall_memory, func(a MemoryAction) (string, error) {
					limit := a.Limit
					if limit <= 0 {
						limit = 10
					}
					var (
						records []storage.Record
						err     error
					)
					if a.Query == "" {
						records, err = db.GetMemoriesByUser(ctx, user, limit)
					} else {
						records, err = db.SearchMemories(ctx, user, a.Query, limit)
					}
					if err != nil {
						log.Printf("⚠️ Error recalling memories for user %s: %v", user, err)
						return "No memories found.", nil
					}
					if len(records) == 0 {
						return "No memories found.", nil
					}
					return storage.RecordListToString(records, limit), nil
				})
			},
		},
		{
			Name:        store_memory,
			Description: "Store a note in the current user's conversation memory for later recall.",
			Parameters: Parameter{
				Type: "object",
				Properties: map[string]any{
					"content": map[string]any{
						"type":        "string",
						"description": "The note to remember.",
					},
				},
				Required: []string{"content"},
			},
			HandlerFunc: func(ctx context.Context, task ToolTask) (string, error) {
				return withParsed[NoteAction](task.Parameters, store_memory, func(a NoteAction) (string, error) {
					if a.Content == "" {
						return "", errors.New("invalid parameters: 'content' is required")
					}
					err := db.SaveMemory(ctx, storage.Record{
						User:      user,
						Role:      "note",
						Content:   a.Content,
						CreatedAt: time.Now(),
					})
					if err != nil {
						log.Printf("⚠️ Error storing note for user %s: %v", user, err)
						return "Could not store the note.", nil
					}
					return "Note stored.", nil
				})
			},
		},
	}
}
