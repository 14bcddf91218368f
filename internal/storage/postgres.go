package storage

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/Chupii37/AutoTweet-Bot/internal/models"
)

//go:embed migrations.sql
var migrations embed.FS

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type PostgresStore struct {
	db         *sql.DB
	categories []models.Category
}

func NewPostgresStore(config DatabaseConfig, categories []models.Category) (*PostgresStore, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		config.Host, config.Port, config.User, config.Password, config.DBName, config.SSLMode)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %v", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("error connecting to the database: %v", err)
	}

	store := &PostgresStore{db: db, categories: categories}

	// Initialize database schema
	if err := store.initializeSchema(); err != nil {
		return nil, fmt.Errorf("error initializing database schema: %v", err)
	}

	return store, nil
}

func (s *PostgresStore) initializeSchema() error {
	migrationSQL, err := migrations.ReadFile("migrations.sql")
	if err != nil {
		return fmt.Errorf("error reading migrations file: %v", err)
	}

	_, err = s.db.Exec(string(migrationSQL))
	if err != nil {
		return fmt.Errorf("error executing migrations: %v", err)
	}

	return nil
}

func (s *PostgresStore) LoadCategories(ctx context.Context) ([]models.Category, error) {
	out := make([]models.Category, len(s.categories))
	copy(out, s.categories)
	return out, nil
}

func (s *PostgresStore) AppendEntry(ctx context.Context, entry *models.HistoryEntry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO history (id, text, category, topic, outcome, post_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		entry.ID, entry.Text, entry.Category, entry.Topic, string(entry.Outcome), entry.PostID, entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("error inserting history entry: %v", err)
	}
	return nil
}

func (s *PostgresStore) RecentEntries(ctx context.Context, limit int) ([]models.HistoryEntry, error) {
	if limit <= 0 {
		limit = maxRetained
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, text, category, topic, outcome, post_id, created_at
		FROM history
		ORDER BY created_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("error querying history: %v", err)
	}
	defer rows.Close()

	var entries []models.HistoryEntry
	for rows.Next() {
		var e models.HistoryEntry
		var outcome string
		err := rows.Scan(
			&e.ID,
			&e.Text,
			&e.Category,
			&e.Topic,
			&outcome,
			&e.PostID,
			&e.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning history entry: %v", err)
		}
		e.Outcome = models.Outcome(outcome)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *PostgresStore) Close() error { return s.db.Close() }
