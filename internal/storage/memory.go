package storage

import (
	"context"
	"sync"

	"github.com/Chupii37/AutoTweet-Bot/internal/models"
)

// maxRetained caps how much history any store keeps around.
const maxRetained = 1000

type MemoryStore struct {
	mu         sync.RWMutex
	categories []models.Category
	entries    []models.HistoryEntry
}

func NewMemoryStore(categories []models.Category) *MemoryStore {
	return &MemoryStore{categories: categories}
}

func (s *MemoryStore) LoadCategories(ctx context.Context) ([]models.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Category, len(s.categories))
	copy(out, s.categories)
	return out, nil
}

func (s *MemoryStore) AppendEntry(ctx context.Context, entry *models.HistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = append(s.entries, *entry)
	if len(s.entries) > maxRetained {
		s.entries = s.entries[len(s.entries)-maxRetained:]
	}
	return nil
}

func (s *MemoryStore) RecentEntries(ctx context.Context, limit int) ([]models.HistoryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 || limit > len(s.entries) {
		limit = len(s.entries)
	}

	// Entries are stored oldest first; return most recent first.
	out := make([]models.HistoryEntry, 0, limit)
	for i := len(s.entries) - 1; i >= len(s.entries)-limit; i-- {
		out = append(out, s.entries[i])
	}
	return out, nil
}

func (s *MemoryStore) Close() error { return nil }
