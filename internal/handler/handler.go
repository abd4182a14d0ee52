// Package handler is the HTTP presentation adapter: it maps requests to
// engine intents and renders session state as JSON snapshots.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pavelanni/quizdesk/internal/app"
	"github.com/pavelanni/quizdesk/internal/generator"
	"github.com/pavelanni/quizdesk/internal/model"
)

// Config holds runtime handler parameters set via CLI flags.
type Config struct {
	SecureCookies bool
}

// Handler holds shared dependencies for HTTP handlers.
type Handler struct {
	app    *app.App
	config Config
}

// New creates a new Handler.
func New(a *app.App, cfg Config) *Handler {
	return &Handler{app: a, config: cfg}
}

// Routes registers all HTTP routes.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/api/login", h.handleLogin)
	r.Post("/api/logout", h.handleLogout)

	// Professor surface.
	r.Group(func(r chi.Router) {
		r.Use(h.requireAuth)
		r.Post("/api/quizzes", h.handleCreateQuiz)
		r.Post("/api/quizzes/generate", h.handleGenerateQuiz)
		r.Get("/api/quizzes", h.handleListQuizzes)
		r.Get("/api/quizzes/{quizID}", h.handleGetQuiz)
		r.Get("/api/quizzes/{quizID}/results", h.handleQuizResults)
		r.Post("/api/professors", h.handleCreateProfessor)
		r.Get("/api/professors", h.handleListProfessors)
		r.Post("/api/professors/{profID}/toggle", h.handleToggleProfessor)
	})

	// Taker surface.
	r.Post("/api/attempts", h.handleStartAttempt)
	r.Get("/api/attempts/{attemptID}", h.handleSnapshot)
	r.Post("/api/attempts/{attemptID}/intents", h.handleIntent)
	r.Post("/api/attempts/{attemptID}/violation", h.handleViolation)
	r.Get("/api/attempts/{attemptID}/result", h.handleResult)
	r.Post("/api/attempts/{attemptID}/review", h.handleBeginReview)
	r.Post("/api/attempts/{attemptID}/review/navigate", h.handleReviewNavigate)
	r.Post("/api/attempts/{attemptID}/review/end", h.handleEndReview)
}

// intent is the tagged variant the view layer posts for every user action
// inside an attempt.
type intent struct {
	Type   string `json:"type"` // select_answer, navigate, request_submit, confirm_submit, cancel_submit
	Option string `json:"option,omitempty"`
	Delta  int    `json:"delta,omitempty"`
}

func (h *Handler) handleStartAttempt(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code  string `json:"code"`
		Name  string `json:"name"`
		Roll  string `json:"roll_number"`
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	taker := model.Taker{Name: req.Name, RollNumber: req.Roll, Email: req.Email}
	attempt, err := h.app.StartAttempt(req.Code, taker)
	if err != nil {
		respondAttemptError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{
		"attempt_id": attempt.ID,
		"title":      attempt.Engine.Quiz().Title,
		"snapshot":   attempt.Engine.Snapshot(),
	})
}

func (h *Handler) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	attempt, err := h.app.Attempt(chi.URLParam(r, "attemptID"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	respondJSON(w, http.StatusOK, attempt.Engine.Snapshot())
}

func (h *Handler) handleIntent(w http.ResponseWriter, r *http.Request) {
	attempt, err := h.app.Attempt(chi.URLParam(r, "attemptID"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	var in intent
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	// Invalid intents inside an active attempt are absorbed as no-ops by the
	// engine; only an unknown intent type is a protocol error.
	switch in.Type {
	case "select_answer":
		attempt.Engine.SelectAnswer(in.Option)
	case "navigate":
		attempt.Engine.Navigate(in.Delta)
	case "request_submit":
		attempt.Engine.RequestSubmit()
	case "confirm_submit":
		attempt.Engine.ConfirmSubmit()
	case "cancel_submit":
		attempt.Engine.CancelSubmit()
	default:
		http.Error(w, "unknown intent type", http.StatusBadRequest)
		return
	}

	respondJSON(w, http.StatusOK, attempt.Engine.Snapshot())
}

func (h *Handler) handleViolation(w http.ResponseWriter, r *http.Request) {
	attempt, err := h.app.Attempt(chi.URLParam(r, "attemptID"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	attempt.Watcher.Report()
	respondJSON(w, http.StatusOK, attempt.Engine.Snapshot())
}

func (h *Handler) handleResult(w http.ResponseWriter, r *http.Request) {
	attempt, err := h.app.Attempt(chi.URLParam(r, "attemptID"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	res, done := attempt.Engine.Result()
	if !done {
		http.Error(w, "attempt still in progress", http.StatusConflict)
		return
	}
	respondJSON(w, http.StatusOK, res)
}

func (h *Handler) handleBeginReview(w http.ResponseWriter, r *http.Request) {
	attempt, err := h.app.Attempt(chi.URLParam(r, "attemptID"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	item, err := attempt.BeginReview()
	if err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	respondJSON(w, http.StatusOK, item)
}

func (h *Handler) handleReviewNavigate(w http.ResponseWriter, r *http.Request) {
	attempt, err := h.app.Attempt(chi.URLParam(r, "attemptID"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	var req struct {
		Delta int `json:"delta"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	item, err := attempt.ReviewNavigate(req.Delta)
	if err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	respondJSON(w, http.StatusOK, item)
}

func (h *Handler) handleEndReview(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "attemptID")
	attempt, err := h.app.Attempt(id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	res, err := attempt.EndReview()
	if err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	h.app.ReleaseAttempt(id)
	respondJSON(w, http.StatusOK, res)
}

func respondAttemptError(w http.ResponseWriter, err error) {
	var vErr *model.ValidationError
	switch {
	case errors.Is(err, app.ErrInvalidCode):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, app.ErrAttemptActive):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.As(err, &vErr):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		slog.Error("failed to start attempt", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}

// respondGenerationError maps authoring failures onto HTTP statuses.
func respondGenerationError(w http.ResponseWriter, err error) {
	var vErr *model.ValidationError
	switch {
	case errors.Is(err, generator.ErrGenerationFailed):
		http.Error(w, err.Error(), http.StatusBadGateway)
	case errors.As(err, &vErr):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		slog.Error("quiz creation failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
