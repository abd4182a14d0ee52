// Package app wires the repository, the question source, and the live
// attempt registry into one application context, with an explicit
// load-at-start / save-on-mutation lifecycle.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pavelanni/quizdesk/internal/generator"
	"github.com/pavelanni/quizdesk/internal/model"
	"github.com/pavelanni/quizdesk/internal/session"
	"github.com/pavelanni/quizdesk/internal/store"
)

var (
	// ErrInvalidCode is returned when a taker supplies an unknown quiz code.
	ErrInvalidCode = errors.New("unknown quiz code")
	// ErrAttemptNotFound is returned for an unknown attempt id.
	ErrAttemptNotFound = errors.New("attempt not found")
	// ErrAttemptActive is returned when a taker already has a live attempt.
	ErrAttemptActive = errors.New("taker already has an active attempt")
	// ErrAttemptRunning is returned when review is requested before termination.
	ErrAttemptRunning = errors.New("attempt has not terminated")
)

// QuestionSource produces a validated ordered MCQ sequence for a request.
// Satisfied by generator.Client; swapped for a stub in tests.
type QuestionSource interface {
	Generate(ctx context.Context, req generator.Request) ([]model.MCQ, error)
}

// Attempt is one live (or recently finalized) quiz attempt.
type Attempt struct {
	ID      string
	Engine  *session.Engine
	Watcher *session.SignalWatcher

	mu     sync.Mutex
	review *session.Review
}

// App is the application context: repository access, question generation,
// and the registry of attempts. Exactly one attempt is live per taker.
type App struct {
	store  *store.Store
	source QuestionSource

	tickInterval time.Duration
	clock        func() time.Time

	mu       sync.Mutex
	attempts map[string]*Attempt // attempt id -> attempt
	active   map[string]string   // taker key -> live attempt id
}

// Options configures an App. Zero values mean real time and a one-second tick.
type Options struct {
	Clock        func() time.Time
	TickInterval time.Duration
}

// New creates the application context around an opened store and a question source.
func New(st *store.Store, source QuestionSource, opts Options) *App {
	tick := opts.TickInterval
	if tick == 0 {
		tick = session.DefaultTickInterval
	}
	return &App{
		store:        st,
		source:       source,
		tickInterval: tick,
		clock:        opts.Clock,
		attempts:     make(map[string]*Attempt),
		active:       make(map[string]string),
	}
}

// Store exposes the repository for read-side handlers.
func (a *App) Store() *store.Store {
	return a.store
}

// CreateQuiz validates and persists a manually authored quiz, assigning a
// fresh code. Nothing is persisted when validation fails.
func (a *App) CreateQuiz(title string, duration int, questions []model.MCQ) (model.Quiz, error) {
	quiz := model.Quiz{Title: title, Duration: duration, Questions: questions}
	if err := quiz.Validate(); err != nil {
		return model.Quiz{}, err
	}
	if err := a.store.UpsertQuiz(&quiz); err != nil {
		return model.Quiz{}, fmt.Errorf("save quiz: %w", err)
	}
	slog.Info("created quiz", "id", quiz.ID, "title", quiz.Title, "questions", len(quiz.Questions))
	return quiz, nil
}

// GenerateQuiz asks the question source for an MCQ set and persists the quiz.
// A generation failure aborts the flow with no partial quiz stored.
func (a *App) GenerateQuiz(ctx context.Context, title string, duration int, req generator.Request) (model.Quiz, error) {
	questions, err := a.source.Generate(ctx, req)
	if err != nil {
		return model.Quiz{}, err
	}
	return a.CreateQuiz(title, duration, questions)
}

// StartAttempt begins a quiz attempt for the taker identified by code.
// An unknown code is ErrInvalidCode; a taker with a live attempt gets
// ErrAttemptActive.
func (a *App) StartAttempt(code string, taker model.Taker) (*Attempt, error) {
	if err := taker.Validate(); err != nil {
		return nil, err
	}
	quiz, err := a.store.GetQuiz(code)
	if errors.Is(err, store.ErrQuizNotFound) {
		return nil, ErrInvalidCode
	}
	if err != nil {
		return nil, fmt.Errorf("load quiz: %w", err)
	}

	key := takerKey(taker)
	a.mu.Lock()
	defer a.mu.Unlock()
	if id, ok := a.active[key]; ok {
		if att, ok := a.attempts[id]; ok {
			if _, done := att.Engine.Result(); !done {
				return nil, ErrAttemptActive
			}
		}
	}

	attempt := &Attempt{
		ID:      uuid.NewString(),
		Watcher: &session.SignalWatcher{},
	}
	engine, err := session.Start(quiz, taker, session.Options{
		Clock:        a.clock,
		TickInterval: a.tickInterval,
		Watcher:      attempt.Watcher,
		OnFinalized:  func(res model.Result) { a.finalized(attempt.ID, key, res) },
	})
	if err != nil {
		return nil, err
	}
	attempt.Engine = engine
	a.attempts[attempt.ID] = attempt
	a.active[key] = attempt.ID

	slog.Info("attempt started", "attempt", attempt.ID, "quiz", quiz.ID, "roll_number", taker.RollNumber)
	return attempt, nil
}

// Attempt looks up an attempt by id.
func (a *App) Attempt(id string) (*Attempt, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	att, ok := a.attempts[id]
	if !ok {
		return nil, ErrAttemptNotFound
	}
	return att, nil
}

// ReleaseAttempt drops a finalized attempt from the registry, once its result
// has been reviewed or abandoned. Live attempts are kept.
func (a *App) ReleaseAttempt(id string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	att, ok := a.attempts[id]
	if !ok {
		return
	}
	if _, done := att.Engine.Result(); !done {
		return
	}
	delete(a.attempts, id)
}

// finalized runs exactly once per attempt, on whichever path terminated it:
// it appends the result to the repository and frees the taker slot.
func (a *App) finalized(attemptID, takerKey string, res model.Result) {
	if err := a.store.AppendResult(res); err != nil {
		// Repository failure is fatal to the submission, but the engine has
		// already terminated; log loudly rather than losing the signal.
		slog.Error("failed to persist result", "attempt", attemptID, "quiz", res.QuizID, "error", err)
	}

	a.mu.Lock()
	if a.active[takerKey] == attemptID {
		delete(a.active, takerKey)
	}
	a.mu.Unlock()

	slog.Info("attempt finalized",
		"attempt", attemptID,
		"quiz", res.QuizID,
		"score", res.Score,
		"total", res.Total,
		"reason", res.Reason,
	)
}

func takerKey(t model.Taker) string {
	return t.RollNumber + "|" + t.Email
}

// BeginReview starts (or restarts) a read-only review walk over the
// attempt's finalized result.
func (att *Attempt) BeginReview() (session.ReviewItem, error) {
	res, done := att.Engine.Result()
	if !done {
		return session.ReviewItem{}, ErrAttemptRunning
	}
	att.mu.Lock()
	defer att.mu.Unlock()
	att.review = session.BeginReview(res, att.Engine.Quiz())
	return att.review.Current(), nil
}

// ReviewNavigate moves the review cursor and returns the view under it.
func (att *Attempt) ReviewNavigate(delta int) (session.ReviewItem, error) {
	att.mu.Lock()
	defer att.mu.Unlock()
	if att.review == nil {
		return session.ReviewItem{}, ErrAttemptRunning
	}
	att.review.Navigate(delta)
	return att.review.Current(), nil
}

// EndReview finishes the walk and returns the original result unchanged.
func (att *Attempt) EndReview() (model.Result, error) {
	att.mu.Lock()
	defer att.mu.Unlock()
	if att.review == nil {
		return model.Result{}, ErrAttemptRunning
	}
	res := att.review.End()
	att.review = nil
	return res, nil
}
