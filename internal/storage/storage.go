package storage

import (
	"context"

	"github.com/Chupii37/AutoTweet-Bot/internal/models"
)

// Store is what the bot needs from persistence: category pools at startup and
// an append-only tweet history.
type Store interface {
	CategoryStore
	Close() error

	// Embed HistoryStore interface
	HistoryStore
}

type CategoryStore interface {
	LoadCategories(ctx context.Context) ([]models.Category, error)
}

type HistoryStore interface {
	AppendEntry(ctx context.Context, entry *models.HistoryEntry) error
	// RecentEntries returns up to limit entries, most recent first.
	RecentEntries(ctx context.Context, limit int) ([]models.HistoryEntry, error)
}
