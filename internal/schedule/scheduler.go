package schedule

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/Chupii37/AutoTweet-Bot/internal/models"
	"go.uber.org/zap"
)

// WeekLength is the planning window handed to PlanWeek.
const WeekLength = 7 * 24 * time.Hour

// ErrUnsatisfiable means the requested slot count cannot honor the minimum
// gap inside a single week, even with evenly spaced times.
var ErrUnsatisfiable = errors.New("schedule: posts_per_week and min_gap do not fit in one week")

// Planner turns a weekly posting target into concrete randomized timestamps.
type Planner struct {
	rng         *rand.Rand
	retryBudget int
	startHour   int
	endHour     int
	logger      *zap.Logger
}

// NewPlanner creates a planner whose randomness is fully determined by seed.
// startHour/endHour bound the daily window picks may land in; pass 0 and 24
// to allow any time of day.
func NewPlanner(seed int64, retryBudget, startHour, endHour int, logger *zap.Logger) *Planner {
	if retryBudget <= 0 {
		retryBudget = 100
	}
	if endHour <= startHour {
		startHour, endHour = 0, 24
	}
	return &Planner{
		rng:         rand.New(rand.NewSource(seed)),
		retryBudget: retryBudget,
		startHour:   startHour,
		endHour:     endHour,
		logger:      logger,
	}
}

// WeekStartFor returns the start of the planning week containing t.
func WeekStartFor(t time.Time) time.Time {
	return t.UTC().Truncate(WeekLength)
}

// PlanWeek produces postsPerWeek slots inside [weekStart, weekStart+7d), all
// pending, sorted ascending, with consecutive slots at least minGap apart.
//
// The week is divided into equal sub-intervals with one uniform pick per
// interval. An arrangement violating the gap constraint is thrown away and
// resampled up to the retry budget; after that the planner degrades to evenly
// spaced slots instead of failing the week.
func (p *Planner) PlanWeek(weekStart time.Time, postsPerWeek int, minGap time.Duration) ([]models.ScheduleSlot, error) {
	if postsPerWeek == 0 {
		return nil, nil
	}
	if postsPerWeek < 0 {
		return nil, fmt.Errorf("schedule: posts_per_week must be >= 0, got %d", postsPerWeek)
	}
	if minGap < 0 {
		minGap = 0
	}
	if time.Duration(postsPerWeek)*minGap > WeekLength {
		return nil, ErrUnsatisfiable
	}

	weekStart = weekStart.UTC()
	interval := WeekLength / time.Duration(postsPerWeek)

	for attempt := 0; attempt < p.retryBudget; attempt++ {
		slots := make([]models.ScheduleSlot, 0, postsPerWeek)
		for i := 0; i < postsPerWeek; i++ {
			at := weekStart.Add(time.Duration(i)*interval + time.Duration(p.rng.Int63n(int64(interval))))
			slots = append(slots, models.ScheduleSlot{At: p.clampToDailyWindow(at), State: models.SlotPending})
		}
		if gapsOK(slots, minGap) {
			return slots, nil
		}
	}

	// Evenly spaced fallback: interval-centered picks always honor the gap
	// because postsPerWeek*minGap <= one week.
	if p.logger != nil {
		p.logger.Warn("falling back to evenly spaced slots",
			zap.Int("posts_per_week", postsPerWeek),
			zap.Duration("min_gap", minGap),
			zap.Int("retry_budget", p.retryBudget))
	}
	slots := make([]models.ScheduleSlot, 0, postsPerWeek)
	for i := 0; i < postsPerWeek; i++ {
		at := weekStart.Add(time.Duration(i)*interval + interval/2)
		slots = append(slots, models.ScheduleSlot{At: at, State: models.SlotPending})
	}
	return slots, nil
}

// clampToDailyWindow re-rolls the time of day when a pick lands outside the
// configured posting hours. The day itself is kept.
func (p *Planner) clampToDailyWindow(at time.Time) time.Time {
	h := at.Hour()
	if h >= p.startHour && h < p.endHour {
		return at
	}
	hour := p.startHour + p.rng.Intn(p.endHour-p.startHour)
	return time.Date(at.Year(), at.Month(), at.Day(), hour, p.rng.Intn(60), p.rng.Intn(60), 0, time.UTC)
}

func gapsOK(slots []models.ScheduleSlot, minGap time.Duration) bool {
	for i := 1; i < len(slots); i++ {
		if slots[i].At.Before(slots[i-1].At) {
			return false
		}
		if slots[i].At.Sub(slots[i-1].At) < minGap {
			return false
		}
	}
	return true
}
