package session

import (
	"time"

	"github.com/pavelanni/quizdesk/internal/model"
)

// Snapshot is the render-ready view of the attempt at the current question.
// The presentation layer consumes snapshots and never touches engine state.
type Snapshot struct {
	Question         string                  `json:"question"`
	Options          []string                `json:"options"`
	Selected         string                  `json:"selected"`
	Position         int                     `json:"position"` // 1-based
	Total            int                     `json:"total"`
	RemainingSeconds int                     `json:"remaining_seconds"`
	IsFirst          bool                    `json:"is_first"`
	IsLast           bool                    `json:"is_last"`
	PendingConfirm   bool                    `json:"pending_confirm"`
	Terminated       bool                    `json:"terminated"`
	Reason           model.TerminationReason `json:"reason,omitempty"`
}

// Snapshot returns the current render-ready state.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	q := e.quiz.Questions[e.current]
	options := make([]string, len(q.Options))
	copy(options, q.Options)

	remaining := e.deadline.Sub(e.now())
	if remaining < 0 || e.terminated {
		remaining = 0
	}

	return Snapshot{
		Question:         q.Question,
		Options:          options,
		Selected:         e.answers[e.current],
		Position:         e.current + 1,
		Total:            len(e.quiz.Questions),
		RemainingSeconds: int(remaining / time.Second),
		IsFirst:          e.current == 0,
		IsLast:           e.current == len(e.quiz.Questions)-1,
		PendingConfirm:   e.pendingConfirm,
		Terminated:       e.terminated,
		Reason:           e.reason,
	}
}
