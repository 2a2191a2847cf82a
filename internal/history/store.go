// Package history persists named, timestamped analysis snapshots.
package history

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/franckalain/dermscan/internal/models"
)

// ErrEmptyName is returned by Add when no confirmed name was given.
// Name confirmation happens at the call site, not here.
var ErrEmptyName = errors.New("saved analysis requires a non-empty name")

// Store is the saved-analysis history, newest first. List tolerates a
// missing or unreadable backing value and reports it as an empty list;
// write failures are returned, never swallowed.
type Store interface {
	List(ctx context.Context) ([]models.SavedAnalysis, error)
	Add(ctx context.Context, result models.AnalysisResult, name string) (*models.SavedAnalysis, error)
	Remove(ctx context.Context, id string) error
	Clear(ctx context.Context) error
	Close() error
}

// New creates a store of the given type: "file" (single JSON file) or
// "sqlite".
func New(storeType, path string) (Store, error) {
	switch storeType {
	case "file":
		return NewFileStore(path), nil
	case "sqlite":
		return NewSQLiteStore(path)
	default:
		return nil, fmt.Errorf("unsupported history store type: %s", storeType)
	}
}

// newEntry snapshots a result under a confirmed name. The stored copy gets
// its product name overwritten to the confirmed name.
func newEntry(result models.AnalysisResult, name string) models.SavedAnalysis {
	result.ProductName = name
	return models.SavedAnalysis{
		ID:        uuid.New().String(),
		Name:      name,
		Timestamp: time.Now().UnixMilli(),
		Result:    result,
	}
}
