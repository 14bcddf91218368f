package history

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Chupii37/AutoTweet-Bot/internal/models"
	"github.com/Chupii37/AutoTweet-Bot/internal/storage"
)

const maxCached = 1000

// Ledger is the append-only record of everything the bot posted or attempted.
// It keeps a most-recent-first cache in front of the store so duplicate and
// recency checks stay cheap and keep working even when persistence is down.
type Ledger struct {
	mu     sync.Mutex
	store  storage.HistoryStore
	recent []models.HistoryEntry
	logger *zap.Logger
}

// NewLedger loads up to loadLimit existing entries from the store so checks
// see history from previous runs.
func NewLedger(ctx context.Context, store storage.HistoryStore, loadLimit int, logger *zap.Logger) (*Ledger, error) {
	entries, err := store.RecentEntries(ctx, loadLimit)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	return &Ledger{store: store, recent: entries, logger: logger}, nil
}

// Record appends one entry. The in-memory cache is updated even when the
// store write fails, so in-process duplicate detection stays intact; the gap
// this leaves for future runs is surfaced as a warning.
func (l *Ledger) Record(ctx context.Context, entry *models.HistoryEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}

	l.mu.Lock()
	l.recent = append([]models.HistoryEntry{*entry}, l.recent...)
	if len(l.recent) > maxCached {
		l.recent = l.recent[:maxCached]
	}
	l.mu.Unlock()

	if err := l.store.AppendEntry(ctx, entry); err != nil {
		l.logger.Warn("history entry not persisted, duplicate checks may miss it after restart",
			zap.Error(err),
			zap.String("entry_id", entry.ID))
		return fmt.Errorf("persist history entry: %w", err)
	}
	return nil
}

// RecentTopics returns the topics of the last windowSize entries for one
// category, most recent first.
func (l *Ledger) RecentTopics(categoryID string, windowSize int) []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	topics := make([]string, 0, windowSize)
	for _, e := range l.recent {
		if e.Category != categoryID || e.Topic == "" {
			continue
		}
		topics = append(topics, e.Topic)
		if len(topics) == windowSize {
			break
		}
	}
	return topics
}

// IsDuplicate reports whether text matches any of the last lookback entries
// after case and whitespace normalization.
func (l *Ledger) IsDuplicate(text string, lookback int) bool {
	needle := Normalize(text)

	l.mu.Lock()
	defer l.mu.Unlock()

	for i, e := range l.recent {
		if lookback > 0 && i == lookback {
			break
		}
		if Normalize(e.Text) == needle {
			return true
		}
	}
	return false
}

// Normalize lowercases and collapses runs of whitespace to single spaces.
func Normalize(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}

// Stats summarizes the cached history.
type Stats struct {
	Total       int
	Posted      int
	DryRun      int
	Failed      int
	SuccessRate float64
	Categories  map[string]int
}

func (l *Ledger) Stats() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()

	st := Stats{Categories: make(map[string]int)}
	for _, e := range l.recent {
		st.Total++
		st.Categories[e.Category]++
		switch e.Outcome {
		case models.OutcomePosted:
			st.Posted++
		case models.OutcomeDryRun:
			st.DryRun++
		case models.OutcomeFailed:
			st.Failed++
		}
	}
	if st.Total > 0 {
		st.SuccessRate = float64(st.Posted+st.DryRun) / float64(st.Total)
	}
	return st
}
