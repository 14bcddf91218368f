package orchestrator

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/Chupii37/AutoTweet-Bot/internal/content"
	"github.com/Chupii37/AutoTweet-Bot/internal/history"
	"github.com/Chupii37/AutoTweet-Bot/internal/models"
	"github.com/Chupii37/AutoTweet-Bot/internal/publisher"
	"github.com/Chupii37/AutoTweet-Bot/internal/ratelimit"
	"github.com/Chupii37/AutoTweet-Bot/internal/schedule"
	"github.com/Chupii37/AutoTweet-Bot/internal/validate"
)

// State names one step of the per-slot pipeline.
type State string

const (
	StateIdle       State = "idle"
	StateSelecting  State = "selecting"
	StateValidating State = "validating"
	StateGating     State = "gating"
	StatePublishing State = "publishing"
	StateRecording  State = "recording"
	StateSkipped    State = "skipped"
)

// Options carries the per-run knobs the orchestrator needs.
type Options struct {
	PostsPerWeek      int
	MinGap            time.Duration
	Tick              time.Duration
	RetryBudget       int // candidate attempts per slot
	RecentTopics      int
	DuplicateLookback int
	PublishTimeout    time.Duration
	DryRun            bool
}

// Orchestrator drives one slot at a time through selecting, validating,
// gating, publishing and recording. A single flow owns a claimed slot; the
// week and the rate limiter carry their own locks.
type Orchestrator struct {
	catalog   *content.Catalog
	gpt       *content.GPTGenerator // nil when disabled
	validator *validate.Validator
	ledger    *history.Ledger
	limiter   *ratelimit.Limiter
	pub       publisher.Publisher
	planner   *schedule.Planner
	clock     schedule.Clock
	opts      Options
	logger    *zap.Logger

	week *schedule.Week
}

func New(
	catalog *content.Catalog,
	gpt *content.GPTGenerator,
	validator *validate.Validator,
	ledger *history.Ledger,
	limiter *ratelimit.Limiter,
	pub publisher.Publisher,
	planner *schedule.Planner,
	clock schedule.Clock,
	opts Options,
	logger *zap.Logger,
) *Orchestrator {
	if opts.RetryBudget <= 0 {
		opts.RetryBudget = 5
	}
	if opts.Tick <= 0 {
		opts.Tick = time.Minute
	}
	return &Orchestrator{
		catalog:   catalog,
		gpt:       gpt,
		validator: validator,
		ledger:    ledger,
		limiter:   limiter,
		pub:       pub,
		planner:   planner,
		clock:     clock,
		opts:      opts,
		logger:    logger,
	}
}

// Run is the cooperative loop: wake on every tick, replan at week rollover,
// claim at most one due slot and process it to completion. Shutdown is only
// honored between slots, so an in-flight publish is always recorded.
func (o *Orchestrator) Run(ctx context.Context) error {
	ticker := time.NewTicker(o.opts.Tick)
	defer ticker.Stop()

	if err := o.ensureWeek(o.clock.Now()); err != nil {
		return err
	}
	o.logWeek()

	for {
		select {
		case <-ctx.Done():
			o.logger.Info("scheduler loop stopped")
			return nil
		case <-ticker.C:
			now := o.clock.Now()
			if err := o.ensureWeek(now); err != nil {
				return err
			}
			o.Tick(now)
		}
	}
}

// Tick claims and processes at most one due slot. Exported so tests and the
// run-once path can drive the loop with a fake clock.
func (o *Orchestrator) Tick(now time.Time) {
	idx, ok := o.week.Claim(now)
	if !ok {
		return
	}

	o.logger.Info("slot due", zap.Int("slot", idx), zap.Time("at", now))
	outcome, skipped := o.processAttempt(now)
	if skipped {
		o.week.MarkSkipped(idx)
		o.logger.Warn("slot skipped", zap.Int("slot", idx))
		return
	}
	o.logger.Info("slot completed", zap.Int("slot", idx), zap.String("outcome", string(outcome)))
}

// RunOnce executes exactly one orchestration attempt immediately, regardless
// of the schedule. The rate limiter still applies.
func (o *Orchestrator) RunOnce(ctx context.Context) (models.Outcome, error) {
	outcome, skipped := o.processAttempt(o.clock.Now())
	if skipped {
		return "", errors.New("attempt skipped")
	}
	return outcome, nil
}

// CurrentWeek plans (if needed) and returns this week's slots.
func (o *Orchestrator) CurrentWeek(now time.Time) (*schedule.Week, error) {
	if err := o.ensureWeek(now); err != nil {
		return nil, err
	}
	return o.week, nil
}

func (o *Orchestrator) ensureWeek(now time.Time) error {
	if o.week != nil && o.week.Contains(now) {
		return nil
	}
	start := schedule.WeekStartFor(now)
	slots, err := o.planner.PlanWeek(start, o.opts.PostsPerWeek, o.opts.MinGap)
	if err != nil {
		return err
	}
	o.week = schedule.NewWeek(start, slots)
	return nil
}

func (o *Orchestrator) logWeek() {
	for i, s := range o.week.Slots() {
		o.logger.Info("scheduled slot", zap.Int("slot", i), zap.Time("at", s.At))
	}
}

// processAttempt walks one attempt through the state machine. It returns the
// recorded outcome, or skipped=true when retries ran out or the rate limiter
// denied the attempt.
func (o *Orchestrator) processAttempt(now time.Time) (models.Outcome, bool) {
	cand := o.selectCandidate(now)
	if cand == nil {
		return "", true
	}

	o.setState(StateGating)
	if !o.limiter.TryAcquire(now) {
		// Retrying cannot help until the window advances.
		o.logger.Warn("rate limit reached, skipping slot",
			zap.String("category", cand.Category))
		o.setState(StateSkipped)
		return "", true
	}

	entry := &models.HistoryEntry{
		Text:      cand.Text,
		Category:  cand.Category,
		Topic:     cand.Topic,
		CreatedAt: now,
	}

	o.setState(StatePublishing)
	if o.opts.DryRun {
		o.logger.Info("dry run, not publishing", zap.String("text", cand.Text))
		entry.Outcome = models.OutcomeDryRun
	} else {
		// Publish and record run off the loop context on purpose: once
		// publishing starts, shutdown must wait for the outcome to land
		// in the ledger.
		pubCtx, cancel := context.WithTimeout(context.Background(), o.opts.PublishTimeout)
		result, err := o.pub.Publish(pubCtx, cand.Text)
		cancel()
		if err != nil {
			// No inline retry; the slot stays fired-with-failure.
			o.logger.Error("publish failed", zap.Error(err), zap.String("category", cand.Category))
			entry.Outcome = models.OutcomeFailed
		} else {
			entry.Outcome = models.OutcomePosted
			entry.PostID = result.PostID
		}
	}

	o.setState(StateRecording)
	if err := o.ledger.Record(context.Background(), entry); err != nil {
		// Already logged as a warning by the ledger; never rolls back the
		// publish and never takes the loop down.
		o.logger.Error("failed to record history entry", zap.Error(err))
	}

	o.setState(StateIdle)
	return entry.Outcome, false
}

// selectCandidate loops Selecting -> Validating until a candidate passes
// validation and the duplicate check, bounded by the retry budget.
func (o *Orchestrator) selectCandidate(now time.Time) *models.TweetCandidate {
	for attempt := 1; attempt <= o.opts.RetryBudget; attempt++ {
		o.setState(StateSelecting)
		cat := o.catalog.SelectCategory()
		recent := o.ledger.RecentTopics(cat.ID, o.opts.RecentTopics)

		cand, err := o.catalog.Render(cat, recent, now)
		if err != nil {
			o.logger.Warn("render failed",
				zap.Error(err),
				zap.String("category", cat.ID),
				zap.Int("attempt", attempt))
			continue
		}

		if o.gpt != nil {
			rewriteCtx, cancel := context.WithTimeout(context.Background(), o.opts.PublishTimeout)
			cand.Text = o.gpt.Rewrite(rewriteCtx, cand.Category, cand.Topic, cand.Text)
			cancel()
		}

		o.setState(StateValidating)
		if res := o.validator.Validate(cand.Text); !res.OK {
			o.logger.Warn("candidate rejected by validator",
				zap.Strings("reasons", res.Reasons),
				zap.String("category", cat.ID),
				zap.Int("attempt", attempt))
			continue
		}
		if o.ledger.IsDuplicate(cand.Text, o.opts.DuplicateLookback) {
			o.logger.Warn("candidate is a duplicate",
				zap.String("category", cat.ID),
				zap.Int("attempt", attempt))
			continue
		}
		return cand
	}

	o.logger.Warn("retry budget exhausted, no valid candidate",
		zap.Int("budget", o.opts.RetryBudget))
	o.setState(StateSkipped)
	return nil
}

func (o *Orchestrator) setState(s State) {
	o.logger.Debug("state transition", zap.String("state", string(s)))
}
