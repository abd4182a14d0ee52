// Package session implements the quiz attempt engine: answer capture,
// navigation, countdown timing, integrity monitoring, scoring, and the
// read-only review walk over a finalized attempt.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/pavelanni/quizdesk/internal/model"
)

// ErrEmptyQuiz is returned by Start when the quiz has no questions.
// Callers are expected to have validated the quiz at creation time.
var ErrEmptyQuiz = errors.New("quiz has no questions")

// DefaultTickInterval is how often an armed engine re-evaluates remaining time.
const DefaultTickInterval = time.Second

// Options configures an attempt. The zero value arms a real one-second
// countdown with no integrity monitoring.
type Options struct {
	// Clock overrides time.Now, for deterministic tests.
	Clock func() time.Time
	// TickInterval is the countdown re-evaluation period. Zero disables the
	// background ticker; Tick must then be driven by the caller.
	TickInterval time.Duration
	// Watcher is the integrity monitor installed for the lifetime of the
	// attempt. Nil means no monitoring.
	Watcher Watcher
	// OnFinalized is invoked exactly once with the finalized Result, on
	// whichever path terminates the attempt. It must not call back into the
	// engine.
	OnFinalized func(model.Result)
}

// Engine drives one quiz attempt from start to a finalized Result.
//
// All mutations are serialized behind a mutex: user intents, the periodic
// tick, and the integrity callback may arrive from different goroutines, and
// finalization must happen exactly once. Every intent other than Start is a
// no-op on invalid input or after termination rather than an error; a timed
// exam keeps running instead of failing.
type Engine struct {
	mu      sync.Mutex
	quiz    model.Quiz
	taker   model.Taker
	now     func() time.Time
	answers []string
	current int

	deadline       time.Time
	pendingConfirm bool
	terminated     bool
	reason         model.TerminationReason
	result         model.Result

	ticker      *ticker
	watcher     Watcher
	onFinalized func(model.Result)
}

// Start begins an attempt: first question selected, all answers blank,
// deadline set from the quiz duration, countdown and integrity monitor armed.
func Start(quiz model.Quiz, taker model.Taker, opts Options) (*Engine, error) {
	if len(quiz.Questions) == 0 {
		return nil, ErrEmptyQuiz
	}
	now := opts.Clock
	if now == nil {
		now = time.Now
	}
	e := &Engine{
		quiz:        quiz,
		taker:       taker,
		now:         now,
		answers:     make([]string, len(quiz.Questions)),
		deadline:    now().Add(time.Duration(quiz.Duration) * time.Minute),
		watcher:     opts.Watcher,
		onFinalized: opts.OnFinalized,
	}
	if e.watcher != nil {
		e.watcher.Install(e.OnIntegrityViolation)
	}
	if opts.TickInterval > 0 {
		e.ticker = newTicker(opts.TickInterval, e.Tick)
	}
	return e, nil
}

// SelectAnswer records the given option for the current question, overwriting
// any prior selection. Ignored once terminated or while a submit confirmation
// is pending.
func (e *Engine) SelectAnswer(option string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.terminated || e.pendingConfirm {
		return
	}
	e.answers[e.current] = option
}

// Navigate moves the current question by delta (+1 or -1). Requests that
// would leave the question range, or any other delta, are silently ignored;
// there is no clamping.
func (e *Engine) Navigate(delta int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.terminated || e.pendingConfirm {
		return
	}
	if delta != 1 && delta != -1 {
		return
	}
	next := e.current + delta
	if next < 0 || next >= len(e.quiz.Questions) {
		return
	}
	e.current = next
}

// RequestSubmit moves the attempt into the pending-confirmation state.
// Nothing is finalized until ConfirmSubmit.
func (e *Engine) RequestSubmit() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.terminated {
		return
	}
	e.pendingConfirm = true
}

// CancelSubmit returns from pending confirmation to normal navigation.
func (e *Engine) CancelSubmit() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.terminated {
		return
	}
	e.pendingConfirm = false
}

// ConfirmSubmit finalizes the attempt as a manual submission. It only acts
// when a confirmation is pending; once terminated it keeps returning the same
// Result. The bool reports whether a finalized Result is available.
func (e *Engine) ConfirmSubmit() (model.Result, bool) {
	e.mu.Lock()
	if e.terminated {
		res := e.result
		e.mu.Unlock()
		return res, true
	}
	if !e.pendingConfirm {
		e.mu.Unlock()
		return model.Result{}, false
	}
	res, first := e.finalizeLocked(model.TerminatedManual)
	e.mu.Unlock()
	if first {
		e.afterFinalize(res)
	}
	return res, true
}

// ForceSubmit finalizes the attempt with the given reason, bypassing the
// confirmation step. Idempotent: after termination it returns the stored
// Result unchanged.
func (e *Engine) ForceSubmit(reason model.TerminationReason) model.Result {
	e.mu.Lock()
	res, first := e.finalizeLocked(reason)
	e.mu.Unlock()
	if first {
		e.afterFinalize(res)
	}
	return res
}

// Tick re-evaluates remaining time and force-submits with a timeout reason
// once the deadline has passed. Driven once per interval by the armed ticker,
// or directly by tests.
func (e *Engine) Tick() {
	e.mu.Lock()
	if e.terminated || e.now().Before(e.deadline) {
		e.mu.Unlock()
		return
	}
	res, first := e.finalizeLocked(model.TerminatedTimeout)
	e.mu.Unlock()
	if first {
		e.afterFinalize(res)
	}
}

// OnIntegrityViolation terminates the attempt immediately with zero score.
// Invoked by the installed Watcher when the environment reports a suspected
// violation; there is no grace period.
func (e *Engine) OnIntegrityViolation() {
	e.ForceSubmit(model.TerminatedViolation)
}

// Result returns the finalized Result, if the attempt has terminated.
func (e *Engine) Result() (model.Result, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.result, e.terminated
}

// Quiz returns the quiz this attempt runs against.
func (e *Engine) Quiz() model.Quiz {
	return e.quiz
}

// Taker returns the identity the attempt was started for.
func (e *Engine) Taker() model.Taker {
	return e.taker
}

// finalizeLocked terminates the attempt exactly once. The second return is
// false when the attempt was already terminated. Caller holds e.mu.
func (e *Engine) finalizeLocked(reason model.TerminationReason) (model.Result, bool) {
	if e.terminated {
		return e.result, false
	}
	e.terminated = true
	e.pendingConfirm = false
	e.reason = reason

	score := Score(e.quiz, e.answers)
	if reason == model.TerminatedViolation {
		// Integrity penalty: the score is zeroed but the recorded answers
		// are kept for audit.
		score = 0
	}
	answers := make([]string, len(e.answers))
	copy(answers, e.answers)
	e.result = model.Result{
		QuizID:      e.quiz.ID,
		Name:        e.taker.Name,
		RollNumber:  e.taker.RollNumber,
		Email:       e.taker.Email,
		Score:       score,
		Total:       len(e.quiz.Questions),
		Answers:     answers,
		Reason:      reason,
		SubmittedAt: e.now(),
	}
	return e.result, true
}

// afterFinalize disarms the countdown and integrity monitor and emits the
// Result. Runs once, outside the state lock, on the first finalization only.
func (e *Engine) afterFinalize(res model.Result) {
	if e.ticker != nil {
		e.ticker.Stop()
	}
	if e.watcher != nil {
		e.watcher.Uninstall()
	}
	if e.onFinalized != nil {
		e.onFinalized(res)
	}
}
