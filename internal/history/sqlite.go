package history

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"

	"github.com/apex/log"
	_ "modernc.org/sqlite"

	"github.com/franckalain/dermscan/internal/models"
)

//go:embed schema.sql
var schemaFS embed.FS

// SQLiteStore persists the history in a SQLite database, for deployments
// where a single shared server holds everyone's saved analyses.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (and if needed creates) the database at dbPath.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		return nil, fmt.Errorf("error enabling WAL mode: %w", err)
	}

	schemaBytes, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		return nil, fmt.Errorf("error reading schema file: %w", err)
	}
	if _, err := db.Exec(string(schemaBytes)); err != nil {
		return nil, fmt.Errorf("error initializing schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// List returns the saved analyses, newest first. Rows whose stored result
// no longer decodes are logged and skipped rather than failing the list.
func (s *SQLiteStore) List(ctx context.Context) ([]models.SavedAnalysis, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, timestamp, result
		FROM saved_analyses
		ORDER BY timestamp DESC, rowid DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}
	defer rows.Close()

	items := []models.SavedAnalysis{}
	for rows.Next() {
		var item models.SavedAnalysis
		var resultJSON string
		if err := rows.Scan(&item.ID, &item.Name, &item.Timestamp, &resultJSON); err != nil {
			return nil, fmt.Errorf("failed to read history: %w", err)
		}
		if err := json.Unmarshal([]byte(resultJSON), &item.Result); err != nil {
			log.Warnf("saved analysis %s is malformed, skipping: %v", item.ID, err)
			continue
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// Add snapshots the result under the confirmed name.
func (s *SQLiteStore) Add(ctx context.Context, result models.AnalysisResult, name string) (*models.SavedAnalysis, error) {
	if name == "" {
		return nil, ErrEmptyName
	}

	entry := newEntry(result, name)
	resultJSON, err := json.Marshal(entry.Result)
	if err != nil {
		return nil, fmt.Errorf("failed to encode history: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO saved_analyses (id, name, timestamp, result)
		VALUES (?, ?, ?, ?)
	`, entry.ID, entry.Name, entry.Timestamp, string(resultJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to write history: %w", err)
	}
	return &entry, nil
}

// Remove deletes the entry with the given id. Unknown ids are a no-op.
func (s *SQLiteStore) Remove(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM saved_analyses WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to write history: %w", err)
	}
	return nil
}

// Clear empties the history.
func (s *SQLiteStore) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM saved_analyses`)
	if err != nil {
		return fmt.Errorf("failed to write history: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
