package scoring

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// ScoreStorage loads and replaces the full score history. Tests swap in an
// in-memory implementation.
type ScoreStorage interface {
	LoadAll() ([]ScoreHistoryEntry, error)
	// SaveAll overwrites whatever was stored before.
	SaveAll(entries []ScoreHistoryEntry) error
}

// JSONFileStorage keeps the history as JSON lines in a single file.
type JSONFileStorage struct {
	path string
}

// NewJSONFileStorage uses ~/.config/go-match3/scores.json.
func NewJSONFileStorage() (*JSONFileStorage, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("could not get user home directory: %w", err)
	}
	scoreFilePath := filepath.Join(homeDir, ".config", "go-match3", "scores.json")
	return &JSONFileStorage{path: scoreFilePath}, nil
}

// NewJSONFileStorageAt creates a JSONFileStorage backed by the given file.
func NewJSONFileStorageAt(path string) *JSONFileStorage {
	return &JSONFileStorage{path: path}
}

// Path returns the file the scores are kept in.
func (jfs *JSONFileStorage) Path() string {
	return jfs.path
}

// LoadAll decodes the stream of JSON entries in the file. A missing or empty
// file holds no entries.
func (jfs *JSONFileStorage) LoadAll() ([]ScoreHistoryEntry, error) {
	file, err := os.Open(jfs.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []ScoreHistoryEntry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", jfs.path, err)
	}
	defer file.Close()

	entries := make([]ScoreHistoryEntry, 0)
	decoder := json.NewDecoder(bufio.NewReader(file))
	for {
		var entry ScoreHistoryEntry
		err := decoder.Decode(&entry)
		if errors.Is(err, io.EOF) {
			return entries, nil
		}
		if err != nil {
			return nil, fmt.Errorf("decode %s entry %d: %w", jfs.path, len(entries)+1, err)
		}
		entries = append(entries, entry)
	}
}

// SaveAll replaces the file with entries, one JSON object per line, by
// writing a temporary file next to it and renaming it into place.
func (jfs *JSONFileStorage) SaveAll(entries []ScoreHistoryEntry) error {
	dir := filepath.Dir(jfs.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create scores directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".scores-*.json")
	if err != nil {
		return fmt.Errorf("create temporary scores file: %w", err)
	}
	defer os.Remove(tmp.Name()) // no-op after a successful rename

	writer := bufio.NewWriter(tmp)
	encoder := json.NewEncoder(writer)
	for _, entry := range entries {
		if err := encoder.Encode(entry); err != nil {
			tmp.Close()
			return fmt.Errorf("encode score entry: %w", err)
		}
	}
	if err := writer.Flush(); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmp.Name(), err)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return fmt.Errorf("chmod %s: %w", tmp.Name(), err)
	}
	return os.Rename(tmp.Name(), jfs.path)
}
