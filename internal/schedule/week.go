package schedule

import (
	"sync"
	"time"

	"github.com/Chupii37/AutoTweet-Bot/internal/models"
)

// Week owns the slots planned for one week. Claiming a slot is atomic: a slot
// leaves the pending state exactly once, so two concurrent flows can never act
// on the same slot.
type Week struct {
	mu    sync.Mutex
	start time.Time
	slots []models.ScheduleSlot
}

func NewWeek(start time.Time, slots []models.ScheduleSlot) *Week {
	return &Week{start: start.UTC(), slots: slots}
}

func (w *Week) Start() time.Time { return w.start }

func (w *Week) End() time.Time { return w.start.Add(WeekLength) }

// Contains reports whether t falls inside this week's window.
func (w *Week) Contains(t time.Time) bool {
	t = t.UTC()
	return !t.Before(w.start) && t.Before(w.End())
}

// Slots returns a copy of the current slot states.
func (w *Week) Slots() []models.ScheduleSlot {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]models.ScheduleSlot, len(w.slots))
	copy(out, w.slots)
	return out
}

// Claim marks the earliest pending slot due at or before now as fired and
// returns its index. This is a pure query plus one atomic transition; it never
// blocks on anything but the mutex.
func (w *Week) Claim(now time.Time) (int, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for i := range w.slots {
		if w.slots[i].State != models.SlotPending {
			continue
		}
		if w.slots[i].At.After(now.UTC()) {
			// Slots are sorted; nothing later is due either.
			return 0, false
		}
		w.slots[i].State = models.SlotFired
		return i, true
	}
	return 0, false
}

// MarkSkipped downgrades a claimed slot to skipped.
func (w *Week) MarkSkipped(i int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if i >= 0 && i < len(w.slots) {
		w.slots[i].State = models.SlotSkipped
	}
}
