package model

import (
	"context"
	"fmt"
	"time"
)

// Difficulty represents question difficulty level.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Unanswered is the sentinel stored for a question the taker never answered.
const Unanswered = ""

// MCQ is a single multiple-choice question. Immutable once its quiz is created.
type MCQ struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
	Explanation   string   `json:"explanation,omitempty"`
}

// Quiz is an ordered set of questions with a time limit.
// Never mutated after creation.
type Quiz struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Questions []MCQ     `json:"questions"`
	Duration  int       `json:"duration"` // minutes
	CreatedAt time.Time `json:"created_at"`
}

// TerminationReason describes why a quiz attempt ended.
type TerminationReason string

const (
	// TerminatedManual means the taker confirmed submission themselves.
	TerminatedManual TerminationReason = "manual"
	// TerminatedTimeout means the countdown expired.
	TerminatedTimeout TerminationReason = "timeout"
	// TerminatedViolation means an integrity violation forced submission.
	TerminatedViolation TerminationReason = "integrity_violation"
)

// Result is the immutable outcome of one completed attempt.
// Answers are retained even when a violation zeroes the score, for audit.
type Result struct {
	QuizID      string            `json:"quiz_id"`
	Name        string            `json:"name"`
	RollNumber  string            `json:"roll_number"`
	Email       string            `json:"email"`
	Score       int               `json:"score"`
	Total       int               `json:"total"`
	Answers     []string          `json:"answers"`
	Reason      TerminationReason `json:"reason"`
	SubmittedAt time.Time         `json:"submitted_at"`
}

// Taker identifies the person sitting an attempt. All fields are opaque
// strings; the only requirement is that none is empty.
type Taker struct {
	Name       string `json:"name"`
	RollNumber string `json:"roll_number"`
	Email      string `json:"email"`
}

// Professor represents a quiz author.
type Professor struct {
	ID          int64
	Username    string
	DisplayName string
	SecretHash  string
	Active      bool
	CreatedAt   time.Time
}

// AuthSession represents a professor's authentication session.
type AuthSession struct {
	ID        string
	UserID    int64
	CreatedAt time.Time
	ExpiresAt time.Time
}

// ValidationError reports invalid authoring input. It is surfaced to the
// professor before a quiz is created, never afterwards.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Validate checks the MCQ invariants: at least two options and a correct
// answer that is one of them. Duplicate option text is deliberately allowed.
func (q MCQ) Validate() error {
	if q.Question == "" {
		return &ValidationError{Field: "question", Reason: "must not be empty"}
	}
	if len(q.Options) < 2 {
		return &ValidationError{Field: "options", Reason: "need at least two options"}
	}
	for _, opt := range q.Options {
		if opt == q.CorrectAnswer {
			return nil
		}
	}
	return &ValidationError{Field: "correct_answer", Reason: "must match one of the options"}
}

// Validate checks the Quiz invariants. Question-level invariants are checked
// here too so a quiz is fully vetted at the creation boundary.
func (z Quiz) Validate() error {
	if z.Title == "" {
		return &ValidationError{Field: "title", Reason: "must not be empty"}
	}
	if z.Duration <= 0 {
		return &ValidationError{Field: "duration", Reason: "must be a positive number of minutes"}
	}
	if len(z.Questions) == 0 {
		return &ValidationError{Field: "questions", Reason: "need at least one question"}
	}
	for i, q := range z.Questions {
		if err := q.Validate(); err != nil {
			return fmt.Errorf("question %d: %w", i+1, err)
		}
	}
	return nil
}

// Validate checks that no taker identity field is empty.
func (t Taker) Validate() error {
	if t.Name == "" {
		return &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if t.RollNumber == "" {
		return &ValidationError{Field: "roll_number", Reason: "must not be empty"}
	}
	if t.Email == "" {
		return &ValidationError{Field: "email", Reason: "must not be empty"}
	}
	return nil
}

type professorCtxKey struct{}

// ContextWithProfessor stores an authenticated professor in the request context.
func ContextWithProfessor(ctx context.Context, p *Professor) context.Context {
	return context.WithValue(ctx, professorCtxKey{}, p)
}

// ProfessorFromContext retrieves the authenticated professor from context, or nil.
func ProfessorFromContext(ctx context.Context) *Professor {
	p, _ := ctx.Value(professorCtxKey{}).(*Professor)
	return p
}
