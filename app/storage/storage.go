package storage

import (
	"context"
	"fmt"
	"time"
)

type Interface interface {
	SaveMemory(ctx context.Context, record Record) error
	GetMemoriesByUser(ctx context.Context, user string, limit int) ([]Record, error)
	SearchMemories(ctx context.Context, user, pattern string, limit int) ([]Record, error)
}

// Record is one remembered exchange: a user utterance, an assistant
// analysis, or a tool result produced while answering.
type Record struct {
	ID         int64     `json:"id" db:"id"`
	User       string    `json:"user" db:"user"`
	Role       string    `json:"role" db:"role"`
	Tool       string    `json:"tool" db:"tool"`
	Parameters string    `json:"parameters" db:"parameters"`
	Content    string    `json:"content" db:"content"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

func RecordListToString(records []Record, max int) string {
	recordsSliced := records
	var summary string
	if len(records) > 0 {
		if len(records) > max {
			recordsSliced = records[:max]
		}
		for _, entry := range recordsSliced {
			summary += fmt.Sprintf("\n[%s] Role: %s | Content: %s",
				entry.CreatedAt.Format("2006-01-02 15:04:05"), entry.Role, entry.Content)
		}
	}
	return summary
}
