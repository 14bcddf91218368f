package models

import (
	"errors"
	"fmt"
	"time"
)

// TweetMaxLength is the platform character limit for a single post.
const TweetMaxLength = 280

// Category is one weighted content pool the bot can draw from.
type Category struct {
	ID        string   `json:"id"`
	Weight    float64  `json:"weight"`
	Topics    []string `json:"topics"`
	Templates []string `json:"templates"`
	Hashtags  []string `json:"hashtags"`
}

// Validate checks the invariants every loaded category must satisfy.
func (c *Category) Validate() error {
	if c.ID == "" {
		return errors.New("category id is empty")
	}
	if c.Weight <= 0 {
		return fmt.Errorf("category %s: weight must be positive, got %v", c.ID, c.Weight)
	}
	if len(c.Topics) == 0 {
		return fmt.Errorf("category %s: no topics", c.ID)
	}
	if len(c.Templates) == 0 {
		return fmt.Errorf("category %s: no templates", c.ID)
	}
	return nil
}

// TweetCandidate is a rendered, not yet validated piece of text. It lives only
// for the duration of one posting attempt.
type TweetCandidate struct {
	Category    string    `json:"category"`
	Topic       string    `json:"topic"`
	Text        string    `json:"text"`
	GeneratedAt time.Time `json:"generated_at"`
}

// Outcome records how a posting attempt ended.
type Outcome string

const (
	OutcomePosted Outcome = "posted"
	OutcomeDryRun Outcome = "dry-run"
	OutcomeFailed Outcome = "failed"
)

// HistoryEntry is one append-only ledger record. Entries are never mutated or
// deleted once written.
type HistoryEntry struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Category  string    `json:"category"`
	Topic     string    `json:"topic"`
	Outcome   Outcome   `json:"outcome"`
	PostID    string    `json:"post_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// SlotState tracks a schedule slot through its lifecycle.
type SlotState string

const (
	SlotPending SlotState = "pending"
	SlotFired   SlotState = "fired"
	SlotSkipped SlotState = "skipped"
)

// ScheduleSlot is one planned posting time within the current week.
type ScheduleSlot struct {
	At    time.Time `json:"at"`
	State SlotState `json:"state"`
}
