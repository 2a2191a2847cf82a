package history

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/apex/log"

	"github.com/franckalain/dermscan/internal/models"
)

// FileStore keeps the whole history as one JSON array in a single file,
// the way the browser build kept it under a single storage key. Concurrent
// processes writing the same file race last-writer-wins; that is accepted
// and not locked against.
type FileStore struct {
	path string
}

// NewFileStore creates a file store at the given path. The file is created
// on first write.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// List returns the saved analyses, newest first. A missing or malformed
// file is logged and reported as an empty list.
func (s *FileStore) List(ctx context.Context) ([]models.SavedAnalysis, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warnf("failed to read history file %s: %v", s.path, err)
		}
		return []models.SavedAnalysis{}, nil
	}

	var items []models.SavedAnalysis
	if err := json.Unmarshal(data, &items); err != nil {
		log.Warnf("history file %s is malformed, treating as empty: %v", s.path, err)
		return []models.SavedAnalysis{}, nil
	}
	if items == nil {
		items = []models.SavedAnalysis{}
	}
	return items, nil
}

// Add snapshots the result under the confirmed name and prepends it.
func (s *FileStore) Add(ctx context.Context, result models.AnalysisResult, name string) (*models.SavedAnalysis, error) {
	if name == "" {
		return nil, ErrEmptyName
	}

	items, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	entry := newEntry(result, name)
	items = append([]models.SavedAnalysis{entry}, items...)
	if err := s.persist(items); err != nil {
		return nil, err
	}
	return &entry, nil
}

// Remove deletes the entry with the given id. Unknown ids are a no-op.
func (s *FileStore) Remove(ctx context.Context, id string) error {
	items, err := s.List(ctx)
	if err != nil {
		return err
	}

	kept := items[:0]
	found := false
	for _, item := range items {
		if item.ID == id && !found {
			found = true
			continue
		}
		kept = append(kept, item)
	}
	if !found {
		return nil
	}
	return s.persist(kept)
}

// Clear removes the backing file entirely.
func (s *FileStore) Clear(ctx context.Context) error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}

func (s *FileStore) Close() error { return nil }

func (s *FileStore) persist(items []models.SavedAnalysis) error {
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to encode history: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write history: %w", err)
	}
	return nil
}
