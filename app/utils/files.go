package utils

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"
)

func ReadFile(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read file %s: %w", path, err)
	}
	return string(content), nil
}

// LoadFilesFromDir returns the paths of all regular files directly under dir.
func LoadFilesFromDir(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w", dir, err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	return paths, nil
}

// ReadAllFilesInFolder concatenates the contents of every regular file in
// folder, newline separated. Unreadable files are skipped with a warning.
func ReadAllFilesInFolder(folder string) (string, error) {
	paths, err := LoadFilesFromDir(folder)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for _, p := range paths {
		content, err := os.ReadFile(p)
		if err != nil {
			log.Printf("⚠️ Could not read file %s: %v", p, err)
			continue
		}
		sb.Write(content)
		sb.WriteByte('\n')
	}
	return sb.String(), nil
}

// SaveTextToFile writes text under outputDir. An empty filename gets a
// timestamp-based name; a missing .txt extension is appended.
func SaveTextToFile(text, filename, outputDir string) (string, error) {
	if outputDir == "" {
		outputDir = "output"
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir %s: %w", outputDir, err)
	}

	if filename == "" {
		filename = time.Now().Format("20060102_150405") + ".txt"
	} else if !strings.HasSuffix(filename, ".txt") {
		filename += ".txt"
	}

	path := filepath.Join(outputDir, filename)
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return "", fmt.Errorf("write file %s: %w", path, err)
	}
	log.Printf("✅ Saved text to %s", path)
	return path, nil
}
