package orchestrator

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Chupii37/AutoTweet-Bot/internal/content"
	"github.com/Chupii37/AutoTweet-Bot/internal/history"
	"github.com/Chupii37/AutoTweet-Bot/internal/models"
	"github.com/Chupii37/AutoTweet-Bot/internal/publisher"
	"github.com/Chupii37/AutoTweet-Bot/internal/ratelimit"
	"github.com/Chupii37/AutoTweet-Bot/internal/schedule"
	"github.com/Chupii37/AutoTweet-Bot/internal/storage"
	"github.com/Chupii37/AutoTweet-Bot/internal/validate"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = t
}

type fakePublisher struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (p *fakePublisher) Publish(ctx context.Context, text string) (publisher.PostResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if p.err != nil {
		return publisher.PostResult{}, p.err
	}
	return publisher.PostResult{PostID: "12345"}, nil
}

func (p *fakePublisher) Verify(ctx context.Context) error { return nil }

func (p *fakePublisher) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

var testStart = time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC)

func singleCategory(template string) []models.Category {
	return []models.Category{{
		ID:        "crypto",
		Weight:    1,
		Topics:    []string{"staking"},
		Templates: []string{template},
	}}
}

type fixture struct {
	orch    *Orchestrator
	ledger  *history.Ledger
	pub     *fakePublisher
	clock   *fakeClock
	limiter *ratelimit.Limiter
}

func newFixture(t *testing.T, cats []models.Category, opts Options) *fixture {
	t.Helper()
	logger := zap.NewNop()

	store := storage.NewMemoryStore(cats)
	ledger, err := history.NewLedger(context.Background(), store, 0, logger)
	require.NoError(t, err)

	catalog, err := content.NewCatalog(cats, 42, 2, 280, logger)
	require.NoError(t, err)

	validator := validate.New(280, 5, nil)
	limiter := ratelimit.NewLimiter(2, 7*24*time.Hour)
	pub := &fakePublisher{}
	clock := &fakeClock{t: testStart}
	planner := schedule.NewPlanner(42, 100, 0, 24, logger)

	if opts.RetryBudget == 0 {
		opts.RetryBudget = 3
	}
	if opts.PostsPerWeek == 0 {
		opts.PostsPerWeek = 2
	}
	if opts.RecentTopics == 0 {
		opts.RecentTopics = 10
	}
	if opts.DuplicateLookback == 0 {
		opts.DuplicateLookback = 50
	}
	if opts.PublishTimeout == 0 {
		opts.PublishTimeout = time.Second
	}

	orch := New(catalog, nil, validator, ledger, limiter, pub, planner, clock, opts, logger)
	return &fixture{orch: orch, ledger: ledger, pub: pub, clock: clock, limiter: limiter}
}

func TestRunOnce_DryRunRecordsWithoutPublishing(t *testing.T) {
	f := newFixture(t, singleCategory("One thought on {topic}."), Options{DryRun: true})

	outcome, err := f.orch.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.OutcomeDryRun, outcome)
	assert.Equal(t, 0, f.pub.callCount(), "dry run must never contact the publisher")

	st := f.ledger.Stats()
	assert.Equal(t, 1, st.Total)
	assert.Equal(t, 1, st.DryRun)
}

func TestRunOnce_PublishesAndRecords(t *testing.T) {
	f := newFixture(t, singleCategory("One thought on {topic}."), Options{})

	outcome, err := f.orch.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.OutcomePosted, outcome)
	assert.Equal(t, 1, f.pub.callCount())

	assert.True(t, f.ledger.IsDuplicate("One thought on staking.", 10))
}

func TestRunOnce_PublishFailureIsRecordedNotRetried(t *testing.T) {
	f := newFixture(t, singleCategory("One thought on {topic}."), Options{})
	f.pub.err = errors.New("platform is down")

	outcome, err := f.orch.RunOnce(context.Background())
	require.NoError(t, err, "publish failure is an outcome, not a skip")
	assert.Equal(t, models.OutcomeFailed, outcome)
	assert.Equal(t, 1, f.pub.callCount(), "no inline retry after a publish failure")

	st := f.ledger.Stats()
	assert.Equal(t, 1, st.Failed)
}

func TestRunOnce_BlocklistedContentSkipsAfterRetries(t *testing.T) {
	// Every candidate this category can produce trips the profanity check.
	f := newFixture(t, singleCategory("This scam involves {topic}."), Options{})

	_, err := f.orch.RunOnce(context.Background())
	assert.Error(t, err, "slot must be skipped once retries are exhausted")
	assert.Equal(t, 0, f.pub.callCount())
	assert.Equal(t, 0, f.ledger.Stats().Total)
}

func TestRunOnce_DuplicateCandidatesSkip(t *testing.T) {
	f := newFixture(t, singleCategory("One thought on {topic}."), Options{})

	// First attempt posts; the only possible candidate is now in the ledger.
	_, err := f.orch.RunOnce(context.Background())
	require.NoError(t, err)

	_, err = f.orch.RunOnce(context.Background())
	assert.Error(t, err)
	assert.Equal(t, 1, f.pub.callCount())
}

func TestRateLimiter_DeniesThirdAttemptInWindow(t *testing.T) {
	cats := []models.Category{{
		ID:     "crypto",
		Weight: 1,
		Topics: []string{"staking", "halving", "rollups"},
		Templates: []string{
			"First angle on {topic}.",
			"Second angle on {topic}.",
			"Third angle on {topic}.",
		},
	}}
	f := newFixture(t, cats, Options{RetryBudget: 10})

	_, err := f.orch.RunOnce(context.Background())
	require.NoError(t, err)
	_, err = f.orch.RunOnce(context.Background())
	require.NoError(t, err)

	// Capacity 2 per week: the third attempt is denied and skipped.
	_, err = f.orch.RunOnce(context.Background())
	assert.Error(t, err)
	assert.Equal(t, 2, f.pub.callCount())
}

func TestTick_ClaimsAndFiresDueSlot(t *testing.T) {
	f := newFixture(t, singleCategory("One thought on {topic}."), Options{
		PostsPerWeek: 2,
		MinGap:       24 * time.Hour,
		DryRun:       true,
	})

	week, err := f.orch.CurrentWeek(testStart)
	require.NoError(t, err)
	slots := week.Slots()
	require.Len(t, slots, 2)

	// Before the first slot: nothing happens.
	f.orch.Tick(slots[0].At.Add(-time.Minute))
	assert.Equal(t, 0, f.ledger.Stats().Total)

	// At the first slot: exactly one attempt fires.
	f.orch.Tick(slots[0].At)
	assert.Equal(t, 1, f.ledger.Stats().Total)
	assert.Equal(t, models.SlotFired, week.Slots()[0].State)

	// The same moment again: the slot is consumed, nothing more fires.
	f.orch.Tick(slots[0].At)
	assert.Equal(t, 1, f.ledger.Stats().Total)
}

func TestTick_MarksSlotSkippedOnExhaustedRetries(t *testing.T) {
	f := newFixture(t, singleCategory("Total scam: {topic}."), Options{
		PostsPerWeek: 1,
		DryRun:       true,
	})

	week, err := f.orch.CurrentWeek(testStart)
	require.NoError(t, err)
	slot := week.Slots()[0]

	f.orch.Tick(slot.At)
	assert.Equal(t, models.SlotSkipped, week.Slots()[0].State)
	assert.Equal(t, 0, f.ledger.Stats().Total)
}

func TestRun_ShutsDownCleanly(t *testing.T) {
	f := newFixture(t, singleCategory("One thought on {topic}."), Options{
		Tick:   10 * time.Millisecond,
		DryRun: true,
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.orch.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("orchestrator did not shut down")
	}
}
