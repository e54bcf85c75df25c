// Package session implements the timed assessment session engine: one
// state machine per (user, test) that owns the countdown, the answer
// store, the integrity monitor and the persistence manager, and hands a
// finished answer set to the scoring engine on submission.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nirwairkumar/nkc-assess-backend/internal/model"
	"github.com/nirwairkumar/nkc-assess-backend/internal/scoring"
)

// AttemptSaver is the external Attempt Repository as seen by the engine.
// Save is the only call permitted to block.
type AttemptSaver interface {
	Save(ctx context.Context, attempt *model.Attempt) error
}

// Config wires a Controller's collaborators.
type Config struct {
	Test        *model.TestDefinition
	UserID      string
	Persistence *PersistenceManager
	Attempts    AttemptSaver
	// Violations receives counted violations for audit. Optional.
	Violations ViolationSink
	// OnWarning is invoked outside the lock for each warn-level violation.
	// Optional.
	OnWarning func(count, max int)
	// TickInterval defaults to one second. Tests shorten it or drive
	// Tick directly.
	TickInterval time.Duration
	Logger       zerolog.Logger
}

// Controller runs a single candidate through one live test. All state
// transitions are serialized through one mutex, so the countdown's ticks
// and user-driven operations never interleave. The final submission is
// the only operation that blocks: the status flips to submitting before
// the repository call starts and answer mutations are rejected until it
// resolves.
type Controller struct {
	mu sync.Mutex

	test    *model.TestDefinition
	userID  string
	persist *PersistenceManager
	saver   AttemptSaver
	sink    ViolationSink
	onWarn  func(count, max int)
	tickEvy time.Duration
	log     zerolog.Logger

	status    model.SessionStatus
	answers   *answerStore
	marked    map[string]bool
	visited   map[int]bool
	current   int
	remaining int
	monitor   *integrityMonitor
	countdown *Countdown

	formFields []model.FormField
	attempt    *model.Attempt
	// resumeAlive remembers whether the liveness marker was present at
	// load; when true, declining the resume is not allowed.
	resumeAlive bool
	pendingSnap *model.Snapshot
}

// New builds a controller in the initializing state. Call Start next.
func New(cfg Config) *Controller {
	interval := cfg.TickInterval
	if interval <= 0 {
		interval = time.Second
	}
	return &Controller{
		test:    cfg.Test,
		userID:  cfg.UserID,
		persist: cfg.Persistence,
		saver:   cfg.Attempts,
		sink:    cfg.Violations,
		onWarn:  cfg.OnWarning,
		tickEvy: interval,
		log: cfg.Logger.With().
			Str("component", "session_controller").
			Str("user_id", cfg.UserID).
			Str("test_id", cfg.Test.ID.String()).
			Logger(),
		status:  model.StatusInitializing,
		answers: newAnswerStore(cfg.Test),
		marked:  make(map[string]bool),
		visited: make(map[int]bool),
		monitor: newIntegrityMonitor(cfg.Test.Policy),
	}
}

// Start performs the resume check and either activates a fresh session or
// parks the controller awaiting the candidate's resume decision.
func (c *Controller) Start(ctx context.Context) (model.ResumePrompt, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.status != model.StatusInitializing {
		return model.ResumePrompt{}, ErrSessionNotLive
	}

	snap, alive, err := c.persist.Load(ctx)
	if err != nil {
		return model.ResumePrompt{}, err
	}

	if snap != nil {
		c.status = model.StatusAwaitingResume
		c.pendingSnap = snap
		c.resumeAlive = alive
		return model.ResumePrompt{SnapshotFound: true, Mandatory: alive}, nil
	}

	c.activateLocked(ctx, c.test.DurationSeconds())
	return model.ResumePrompt{}, nil
}

// Resume answers a pending resume prompt. Accepting restores the entire
// saved state including the remaining time. Declining is only allowed
// when the liveness marker was absent; it discards both storage tiers and
// starts fresh.
func (c *Controller) Resume(ctx context.Context, accept bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.status != model.StatusAwaitingResume {
		return ErrNotAwaitingResume
	}

	if !accept {
		if c.resumeAlive {
			return ErrResumeMandatory
		}
		c.persist.Discard(ctx)
		c.pendingSnap = nil
		c.activateLocked(ctx, c.test.DurationSeconds())
		return nil
	}

	snap := c.pendingSnap
	c.pendingSnap = nil

	c.answers.restore(snap.Answers)
	c.marked = make(map[string]bool, len(snap.MarkedForReview))
	for _, id := range snap.MarkedForReview {
		if c.answers.has(id) {
			c.marked[id] = true
		}
	}
	c.visited = make(map[int]bool, len(snap.Visited))
	for _, i := range snap.Visited {
		if i >= 0 && i < len(c.test.Questions) {
			c.visited[i] = true
		}
	}
	c.current = snap.CurrentQuestionIndex
	if c.current < 0 || c.current >= len(c.test.Questions) {
		c.current = 0
	}

	remaining := snap.TimeRemaining
	if remaining < 0 {
		remaining = 0
	}
	c.activateLocked(ctx, remaining)
	return nil
}

// activateLocked enters Active, starts the countdown and writes the first
// snapshot. A restored remaining value of zero expires on the next tick.
func (c *Controller) activateLocked(ctx context.Context, remaining int) {
	c.status = model.StatusActive
	c.remaining = remaining
	c.visited[c.current] = true
	c.countdown = startCountdown(c.tickEvy, c.Tick)
	c.persist.Heartbeat(ctx)
	c.persist.Save(ctx, c.snapshotLocked())
	c.log.Info().Int("time_remaining", remaining).Msg("Session active")
}

// SelectAnswer records a candidate's answer for one question.
func (c *Controller) SelectAnswer(ctx context.Context, qid string, v model.AnswerValue) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.mutableLocked(); err != nil {
		return err
	}
	if err := c.answers.set(qid, v); err != nil {
		return err
	}
	c.persist.Save(ctx, c.snapshotLocked())
	return nil
}

// ClearAnswer removes the candidate's answer for one question.
func (c *Controller) ClearAnswer(ctx context.Context, qid string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.mutableLocked(); err != nil {
		return err
	}
	if err := c.answers.clear(qid); err != nil {
		return err
	}
	c.persist.Save(ctx, c.snapshotLocked())
	return nil
}

// ToggleMarkForReview flips the review flag for one question.
func (c *Controller) ToggleMarkForReview(ctx context.Context, qid string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.mutableLocked(); err != nil {
		return err
	}
	if !c.answers.has(qid) {
		return ErrUnknownQuestion
	}
	if c.marked[qid] {
		delete(c.marked, qid)
	} else {
		c.marked[qid] = true
	}
	c.persist.Save(ctx, c.snapshotLocked())
	return nil
}

// Navigate moves the candidate to a question index and records the visit.
func (c *Controller) Navigate(ctx context.Context, index int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.mutableLocked(); err != nil {
		return err
	}
	if index < 0 || index >= len(c.test.Questions) {
		return ErrIndexOutOfRange
	}
	c.current = index
	c.visited[index] = true
	c.persist.Save(ctx, c.snapshotLocked())
	return nil
}

// Heartbeat refreshes the liveness marker. Driven by the client while the
// tab stays open.
func (c *Controller) Heartbeat(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.status == model.StatusActive {
		c.persist.Heartbeat(ctx)
	}
}

// SetFormFields stores the pre-test form responses carried into the
// finished attempt.
func (c *Controller) SetFormFields(fields []model.FormField) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.formFields = fields
}

// Tick is invoked by the countdown once per interval. Time only moves
// while the session is active; the transition to expired happens exactly
// once, after which further ticks are no-ops.
func (c *Controller) Tick() {
	c.mu.Lock()

	if c.status != model.StatusActive {
		c.mu.Unlock()
		return
	}

	if c.remaining > 0 {
		c.remaining--
	}
	ctx := context.Background()
	if c.remaining > 0 {
		c.persist.Save(ctx, c.snapshotLocked())
		c.mu.Unlock()
		return
	}

	c.status = model.StatusExpired
	c.countdown.Stop()
	c.persist.Save(ctx, c.snapshotLocked())
	c.log.Info().Msg("Time expired")
	c.mu.Unlock()

	// Expiry submits on the engine's behalf. A failed save leaves the
	// session expired and resubmittable.
	if err := c.Submit(ctx, model.SubmitReasonTimeUp); err != nil {
		c.log.Warn().Err(err).Msg("Automatic submission after expiry failed")
	}
}

// HandleViolation consumes one environment event and applies the
// escalation policy. Forced submissions take the same path as a manual
// submit and need no confirmation.
func (c *Controller) HandleViolation(ctx context.Context, v Violation) error {
	c.mu.Lock()

	if c.status != model.StatusActive {
		c.mu.Unlock()
		return nil
	}

	action, count := c.monitor.observe(v)
	if action == actionIgnore {
		c.mu.Unlock()
		return nil
	}

	if c.sink != nil {
		if err := c.sink.Record(ctx, c.userID, c.test.ID.String(), v, count); err != nil {
			c.log.Warn().Err(err).Msg("Violation audit record failed")
		}
	}
	c.persist.Save(ctx, c.snapshotLocked())
	max := c.monitor.max
	c.mu.Unlock()

	switch action {
	case actionWarn:
		c.log.Info().Str("kind", string(v.Kind)).Int("count", count).Msg("Violation warning")
		if c.onWarn != nil {
			c.onWarn(count, max)
		}
		return nil
	case actionForceSubmit:
		c.log.Warn().Str("kind", string(v.Kind)).Int("count", count).Msg("Violation limit reached, forcing submission")
		return c.Submit(ctx, model.SubmitReasonViolation)
	}
	return nil
}

// ObserveEnvironment consumes violations from an observer until its
// channel closes or the context ends. Run it in its own goroutine.
func (c *Controller) ObserveEnvironment(ctx context.Context, obs EnvironmentObserver) {
	for {
		select {
		case <-ctx.Done():
			return
		case v, ok := <-obs.Events():
			if !ok {
				return
			}
			if err := c.HandleViolation(ctx, v); err != nil {
				c.log.Warn().Err(err).Msg("Violation handling failed")
			}
		}
	}
}

// Submit finalizes the session: cancels the countdown, scores the answer
// set and hands the attempt to the repository. On failure the prior
// status is restored with every answer intact and the call may be
// retried. Success is final: both storage tiers are deleted and the
// session accepts nothing further.
func (c *Controller) Submit(ctx context.Context, reason model.SubmitReason) error {
	c.mu.Lock()

	switch c.status {
	case model.StatusActive, model.StatusExpired:
		// Proceed.
	case model.StatusSubmitting:
		c.mu.Unlock()
		return ErrSubmitInFlight
	case model.StatusSubmitted:
		c.mu.Unlock()
		return ErrAlreadySubmitted
	default:
		c.mu.Unlock()
		return ErrSessionNotLive
	}

	prior := c.status
	c.status = model.StatusSubmitting
	c.countdown.Stop()

	result := scoring.Score(c.test, c.answers.snapshot())
	attempt := &model.Attempt{
		ID:          uuid.New(),
		TestID:      c.test.ID,
		UserID:      c.userID,
		Answers:     c.answers.snapshot(),
		Result:      result,
		FormFields:  c.formFields,
		Reason:      reason,
		SubmittedAt: time.Now(),
	}
	c.mu.Unlock()

	err := c.saver.Save(ctx, attempt)

	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		c.status = prior
		c.log.Error().Err(err).Str("reason", string(reason)).Msg("Attempt save failed, session preserved")
		return &SubmissionError{Err: err}
	}

	c.status = model.StatusSubmitted
	c.attempt = attempt
	c.persist.Discard(ctx)
	c.log.Info().
		Str("reason", string(reason)).
		Float64("score", result.Score).
		Int("correct", result.CorrectCount).
		Int("wrong", result.WrongCount).
		Msg("Session submitted")
	return nil
}

// Abort tears the session down without submitting. The durable snapshot
// is kept so the candidate can resume later; only the in-memory session
// ends. Used on server shutdown.
func (c *Controller) Abort() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.status.Final() {
		return
	}
	if c.countdown != nil {
		c.countdown.Stop()
	}
	c.status = model.StatusAborted
	c.log.Info().Msg("Session aborted")
}

// State returns a point-in-time copy of the session state.
func (c *Controller) State() model.SessionState {
	c.mu.Lock()
	defer c.mu.Unlock()

	return model.SessionState{
		CurrentQuestionIndex: c.current,
		Answers:              c.answers.snapshot(),
		MarkedForReview:      model.SortedSet(c.marked),
		Visited:              model.SortedIndexSet(c.visited),
		TimeRemaining:        c.remaining,
		ViolationCount:       c.monitor.count,
		Status:               c.status,
	}
}

// Status returns the current lifecycle state.
func (c *Controller) Status() model.SessionStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Test exposes the definition this controller runs.
func (c *Controller) Test() *model.TestDefinition { return c.test }

// Attempt returns the stored attempt once the session is submitted, nil
// before that.
func (c *Controller) Attempt() *model.Attempt {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.attempt
}

// mutableLocked gates answer mutations. The submitting, submitted and
// aborted states reject them; so do the pre-active states.
func (c *Controller) mutableLocked() error {
	switch c.status {
	case model.StatusActive, model.StatusExpired:
		return nil
	case model.StatusSubmitting:
		return ErrSubmitInFlight
	case model.StatusSubmitted:
		return ErrAlreadySubmitted
	case model.StatusAwaitingResume:
		return ErrResumePending
	default:
		return ErrSessionNotLive
	}
}

func (c *Controller) snapshotLocked() *model.Snapshot {
	return &model.Snapshot{
		Answers:              c.answers.snapshot(),
		MarkedForReview:      model.SortedSet(c.marked),
		Visited:              model.SortedIndexSet(c.visited),
		CurrentQuestionIndex: c.current,
		TimeRemaining:        c.remaining,
	}
}
