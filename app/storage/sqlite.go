package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

type SQLiteMemoryStorage struct {
	db *sql.DB
}

func getDBPath() (string, error) {
	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		projectDir, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("get project directory: %w", err)
		}
		defaultPath := filepath.Join(projectDir, "data", "memories.db")
		if err := os.MkdirAll(filepath.Dir(defaultPath), os.ModePerm); err != nil {
			return "", fmt.Errorf("create data directory: %w", err)
		}
		log.Printf("📂 DB_PATH not set, using default: %s", defaultPath)
		return defaultPath, nil
	}
	return dbPath, nil
}

func NewSQLiteStorage() (*SQLiteMemoryStorage, error) {
	dbPath, err := getDBPath()
	if err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open SQLite DB at %s: %w", dbPath, err)
	}

	if _, err = db.Exec(`
        CREATE TABLE IF NOT EXISTS memories (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            user TEXT NOT NULL,
            role TEXT NOT NULL,
            content TEXT NOT NULL,
            tool TEXT NULL,
            parameters TEXT NULL,
            created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
        );
        CREATE INDEX IF NOT EXISTS idx_user ON memories (user);
    `); err != nil {
		return nil, fmt.Errorf("create memories table: %w", err)
	}

	return &SQLiteMemoryStorage{db: db}, nil
}

func (s *SQLiteMemoryStorage) SaveMemory(ctx context.Context, record Record) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO memories (user, role, content, tool, parameters, created_at)
		 VALUES (?, ?, ?, ?, ?, datetime(?))`,
		record.User, record.Role, record.Content, record.Tool, record.Parameters,
		record.CreatedAt.Format("2006-01-02 15:04:05"),
	)
	if err != nil {
		log.Printf("⚠️ Error saving memory for user %s: %v", record.User, err)
		return err
	}
	return nil
}

func (s *SQLiteMemoryStorage) GetMemoriesByUser(ctx context.Context, user string, limit int) ([]Record, error) {
	return s.query(ctx,
		`SELECT id, user, role, content, tool, parameters, created_at
		 FROM memories
		 WHERE user = ?
		 ORDER BY id DESC
		 LIMIT ?`,
		user, limit)
}

func (s *SQLiteMemoryStorage) SearchMemories(ctx context.Context, user, pattern string, limit int) ([]Record, error) {
	return s.query(ctx,
		`SELECT id, user, role, content, tool, parameters, created_at
		 FROM memories
		 WHERE user = ? AND content LIKE ?
		 ORDER BY id DESC
		 LIMIT ?`,
		user, "%"+pattern+"%", limit)
}

func (s *SQLiteMemoryStorage) query(ctx context.Context, q string, args ...any) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var memories []Record
	for rows.Next() {
		var r Record
		var tool, parameters sql.NullString
		var createdAt string
		if err = rows.Scan(&r.ID, &r.User, &r.Role, &r.Content, &tool, &parameters, &createdAt); err != nil {
			log.Printf("⚠️ Error scanning memory row: %v", err)
			continue
		}
		r.Tool = tool.String
		r.Parameters = parameters.String
		r.CreatedAt, _ = time.Parse("2006-01-02 15:04:05", createdAt)
		memories = append(memories, r)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return memories, nil
}

func (s *SQLiteMemoryStorage) Close() error {
	return s.db.Close()
}
