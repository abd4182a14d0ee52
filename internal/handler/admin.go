package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"golang.org/x/crypto/bcrypt"

	"github.com/go-chi/chi/v5"

	"github.com/pavelanni/quizdesk/internal/generator"
	"github.com/pavelanni/quizdesk/internal/model"
	"github.com/pavelanni/quizdesk/internal/store"
)

func (h *Handler) handleCreateQuiz(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title     string      `json:"title"`
		Duration  int         `json:"duration"`
		Questions []model.MCQ `json:"questions"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	quiz, err := h.app.CreateQuiz(req.Title, req.Duration, req.Questions)
	if err != nil {
		respondGenerationError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, quiz)
}

func (h *Handler) handleGenerateQuiz(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title      string           `json:"title"`
		Duration   int              `json:"duration"`
		Topic      string           `json:"topic,omitempty"`
		SourceText string           `json:"source_text,omitempty"`
		Difficulty model.Difficulty `json:"difficulty,omitempty"`
		Count      int              `json:"count,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	quiz, err := h.app.GenerateQuiz(r.Context(), req.Title, req.Duration, generator.Request{
		Topic:      req.Topic,
		SourceText: req.SourceText,
		Difficulty: req.Difficulty,
		Count:      req.Count,
	})
	if err != nil {
		respondGenerationError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, quiz)
}

func (h *Handler) handleListQuizzes(w http.ResponseWriter, r *http.Request) {
	quizzes, err := h.app.Store().LoadQuizzes()
	if err != nil {
		slog.Error("failed to load quizzes", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	summaries := make([]model.QuizSummary, 0, len(quizzes))
	for _, q := range quizzes {
		summaries = append(summaries, model.QuizSummary{
			ID:           q.ID,
			Title:        q.Title,
			NumQuestions: len(q.Questions),
			Duration:     q.Duration,
		})
	}
	respondJSON(w, http.StatusOK, summaries)
}

func (h *Handler) handleGetQuiz(w http.ResponseWriter, r *http.Request) {
	quiz, err := h.app.Store().GetQuiz(chi.URLParam(r, "quizID"))
	if err == store.ErrQuizNotFound {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, quiz)
}

func (h *Handler) handleQuizResults(w http.ResponseWriter, r *http.Request) {
	quizID := chi.URLParam(r, "quizID")
	if _, err := h.app.Store().GetQuiz(quizID); err == store.ErrQuizNotFound {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	} else if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	results, err := h.app.Store().ResultsForQuiz(quizID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, results)
}

func (h *Handler) handleCreateProfessor(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username    string `json:"username"`
		DisplayName string `json:"display_name"`
		Password    string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Username == "" || req.Password == "" {
		http.Error(w, "username and password required", http.StatusBadRequest)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		slog.Error("failed to hash password", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	if req.DisplayName == "" {
		req.DisplayName = req.Username
	}

	id, err := h.app.Store().CreateProfessor(model.Professor{
		Username:    req.Username,
		DisplayName: req.DisplayName,
		SecretHash:  string(hash),
		Active:      true,
	})
	if err != nil {
		http.Error(w, "failed to create professor: "+err.Error(), http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{"id": id, "username": req.Username})
}

func (h *Handler) handleListProfessors(w http.ResponseWriter, r *http.Request) {
	professors, err := h.app.Store().ListProfessors()
	if err != nil {
		slog.Error("failed to list professors", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	type profView struct {
		ID          int64  `json:"id"`
		Username    string `json:"username"`
		DisplayName string `json:"display_name"`
		Active      bool   `json:"active"`
	}
	views := make([]profView, 0, len(professors))
	for _, p := range professors {
		views = append(views, profView{ID: p.ID, Username: p.Username, DisplayName: p.DisplayName, Active: p.Active})
	}
	respondJSON(w, http.StatusOK, views)
}

func (h *Handler) handleToggleProfessor(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "profID"), 10, 64)
	if err != nil {
		http.Error(w, "invalid professor ID", http.StatusBadRequest)
		return
	}
	if err := h.app.Store().ToggleProfessorActive(id); err != nil {
		slog.Error("failed to toggle professor", "id", id, "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
