package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/Chupii37/AutoTweet-Bot/internal/models"
)

// SQLiteStore persists history in a local SQLite file. Category pools come
// from the JSON data files and are held in memory; only the ledger needs
// durability here.
type SQLiteStore struct {
	db         *sql.DB
	categories []models.Category
}

func OpenSQLite(path string, categories []models.Category) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	s := &SQLiteStore{db: db, categories: categories}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS history (
        id TEXT PRIMARY KEY,
        text TEXT NOT NULL,
        category TEXT NOT NULL,
        topic TEXT NOT NULL DEFAULT '',
        outcome TEXT NOT NULL,
        post_id TEXT NOT NULL DEFAULT '',
        created_at TIMESTAMP NOT NULL
    );`)
	if err != nil {
		return fmt.Errorf("exec migrate: %w", err)
	}
	return nil
}

func (s *SQLiteStore) LoadCategories(ctx context.Context) ([]models.Category, error) {
	out := make([]models.Category, len(s.categories))
	copy(out, s.categories)
	return out, nil
}

func (s *SQLiteStore) AppendEntry(ctx context.Context, entry *models.HistoryEntry) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO history(id, text, category, topic, outcome, post_id, created_at)
        VALUES(?,?,?,?,?,?,?)`,
		entry.ID, entry.Text, entry.Category, entry.Topic, string(entry.Outcome), entry.PostID, entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert history %s: %w", entry.ID, err)
	}

	// Keep the ledger bounded; oldest rows go first.
	_, err = s.db.ExecContext(ctx, `DELETE FROM history WHERE id NOT IN (
        SELECT id FROM history ORDER BY created_at DESC LIMIT ?)`, maxRetained)
	if err != nil {
		return fmt.Errorf("prune history: %w", err)
	}
	return nil
}

func (s *SQLiteStore) RecentEntries(ctx context.Context, limit int) ([]models.HistoryEntry, error) {
	if limit <= 0 {
		limit = maxRetained
	}
	rows, err := s.db.QueryContext(ctx, `SELECT id, text, category, topic, outcome, post_id, created_at
        FROM history ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var entries []models.HistoryEntry
	for rows.Next() {
		var e models.HistoryEntry
		var outcome string
		if err := rows.Scan(&e.ID, &e.Text, &e.Category, &e.Topic, &outcome, &e.PostID, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		e.Outcome = models.Outcome(outcome)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *SQLiteStore) Close() error { return s.db.Close() }
