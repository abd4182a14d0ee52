package store

import (
	"regexp"
	"testing"
	"time"

	"github.com/pavelanni/quizdesk/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("newTestStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleQuiz(title string) model.Quiz {
	return model.Quiz{
		Title:    title,
		Duration: 15,
		Questions: []model.MCQ{
			{
				Question:      "Capital of France?",
				Options:       []string{"London", "Paris", "Berlin", "Madrid"},
				CorrectAnswer: "Paris",
				Explanation:   "Paris has been the capital since 987.",
			},
			{
				Question:      "2 + 2?",
				Options:       []string{"3", "4"},
				CorrectAnswer: "4",
			},
		},
	}
}

func TestUpsertQuizAssignsCode(t *testing.T) {
	s := newTestStore(t)

	q := sampleQuiz("First")
	if err := s.UpsertQuiz(&q); err != nil {
		t.Fatalf("UpsertQuiz: %v", err)
	}
	if !regexp.MustCompile(`^[A-Z0-9]{6}$`).MatchString(q.ID) {
		t.Errorf("expected 6-char uppercase alphanumeric code, got %q", q.ID)
	}

	count, err := s.QuizCount()
	if err != nil {
		t.Fatalf("QuizCount: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 quiz, got %d", count)
	}

	// Upsert by existing id replaces rather than duplicating.
	q.Title = "First (edited)"
	if err := s.UpsertQuiz(&q); err != nil {
		t.Fatalf("UpsertQuiz again: %v", err)
	}
	count, _ = s.QuizCount()
	if count != 1 {
		t.Fatalf("expected 1 quiz after upsert, got %d", count)
	}
	got, err := s.GetQuiz(q.ID)
	if err != nil {
		t.Fatalf("GetQuiz: %v", err)
	}
	if got.Title != "First (edited)" {
		t.Errorf("expected updated title, got %q", got.Title)
	}
}

func TestQuizRoundTrip(t *testing.T) {
	s := newTestStore(t)

	q := sampleQuiz("Round trip")
	if err := s.UpsertQuiz(&q); err != nil {
		t.Fatalf("UpsertQuiz: %v", err)
	}

	got, err := s.GetQuiz(q.ID)
	if err != nil {
		t.Fatalf("GetQuiz: %v", err)
	}
	if got.Title != q.Title || got.Duration != q.Duration {
		t.Errorf("quiz metadata mismatch: got %+v", got)
	}
	if len(got.Questions) != len(q.Questions) {
		t.Fatalf("expected %d questions, got %d", len(q.Questions), len(got.Questions))
	}
	for i := range q.Questions {
		want, have := q.Questions[i], got.Questions[i]
		if have.Question != want.Question || have.CorrectAnswer != want.CorrectAnswer ||
			have.Explanation != want.Explanation {
			t.Errorf("question %d mismatch: got %+v, want %+v", i, have, want)
		}
		if len(have.Options) != len(want.Options) {
			t.Fatalf("question %d: expected %d options, got %d", i, len(want.Options), len(have.Options))
		}
		for j := range want.Options {
			if have.Options[j] != want.Options[j] {
				t.Errorf("question %d option %d: got %q, want %q", i, j, have.Options[j], want.Options[j])
			}
		}
	}
}

func TestGetQuizNotFound(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.GetQuiz("NOPE99"); err != ErrQuizNotFound {
		t.Errorf("expected ErrQuizNotFound, got %v", err)
	}
}

func TestLoadSaveQuizzes(t *testing.T) {
	s := newTestStore(t)

	a, b := sampleQuiz("A"), sampleQuiz("B")
	if err := s.UpsertQuiz(&a); err != nil {
		t.Fatalf("UpsertQuiz a: %v", err)
	}
	if err := s.UpsertQuiz(&b); err != nil {
		t.Fatalf("UpsertQuiz b: %v", err)
	}

	quizzes, err := s.LoadQuizzes()
	if err != nil {
		t.Fatalf("LoadQuizzes: %v", err)
	}
	if len(quizzes) != 2 {
		t.Fatalf("expected 2 quizzes, got %d", len(quizzes))
	}
	if quizzes[a.ID].Title != "A" || quizzes[b.ID].Title != "B" {
		t.Errorf("quiz mapping mismatch: %v", quizzes)
	}

	// SaveQuizzes replaces the whole mapping.
	delete(quizzes, b.ID)
	if err := s.SaveQuizzes(quizzes); err != nil {
		t.Fatalf("SaveQuizzes: %v", err)
	}
	reloaded, err := s.LoadQuizzes()
	if err != nil {
		t.Fatalf("LoadQuizzes after save: %v", err)
	}
	if len(reloaded) != 1 {
		t.Fatalf("expected 1 quiz after save, got %d", len(reloaded))
	}
	if _, ok := reloaded[a.ID]; !ok {
		t.Errorf("expected quiz %s to survive the save", a.ID)
	}
}

func TestResultsAppendOnly(t *testing.T) {
	s := newTestStore(t)

	r1 := model.Result{
		QuizID:      "ABC123",
		Name:        "Ada",
		RollNumber:  "CS-01",
		Email:       "ada@example.com",
		Score:       1,
		Total:       2,
		Answers:     []string{"Paris", "41"},
		Reason:      model.TerminatedManual,
		SubmittedAt: time.Now(),
	}
	r2 := r1
	r2.Name = "Grace"
	r2.RollNumber = "CS-02"
	r2.Score = 0
	r2.Reason = model.TerminatedViolation

	if err := s.AppendResult(r1); err != nil {
		t.Fatalf("AppendResult r1: %v", err)
	}
	if err := s.AppendResult(r2); err != nil {
		t.Fatalf("AppendResult r2: %v", err)
	}

	results, err := s.LoadResults()
	if err != nil {
		t.Fatalf("LoadResults: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Name != "Ada" || results[1].Name != "Grace" {
		t.Errorf("results out of insertion order: %v", results)
	}
	if results[1].Reason != model.TerminatedViolation || results[1].Score != 0 {
		t.Errorf("violation result not preserved: %+v", results[1])
	}
	if len(results[1].Answers) != 2 || results[1].Answers[0] != "Paris" {
		t.Errorf("answers not retained for audit: %v", results[1].Answers)
	}
}

func TestSaveResultsReplaces(t *testing.T) {
	s := newTestStore(t)

	r := model.Result{QuizID: "Q1", Name: "Ada", RollNumber: "CS-01", Email: "a@x",
		Score: 2, Total: 2, Answers: []string{"a", "b"}, Reason: model.TerminatedManual}
	if err := s.AppendResult(r); err != nil {
		t.Fatalf("AppendResult: %v", err)
	}

	if err := s.SaveResults(nil); err != nil {
		t.Fatalf("SaveResults: %v", err)
	}
	results, err := s.LoadResults()
	if err != nil {
		t.Fatalf("LoadResults: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("expected empty result list, got %d", len(results))
	}
}

func TestResultsForQuiz(t *testing.T) {
	s := newTestStore(t)

	for _, quizID := range []string{"AAA111", "BBB222", "AAA111"} {
		r := model.Result{QuizID: quizID, Name: "N", RollNumber: "R", Email: "E",
			Score: 0, Total: 1, Answers: []string{""}, Reason: model.TerminatedTimeout}
		if err := s.AppendResult(r); err != nil {
			t.Fatalf("AppendResult: %v", err)
		}
	}

	results, err := s.ResultsForQuiz("AAA111")
	if err != nil {
		t.Fatalf("ResultsForQuiz: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results for AAA111, got %d", len(results))
	}
}

func TestProfessorCRUD(t *testing.T) {
	s := newTestStore(t)

	count, err := s.ProfessorCount()
	if err != nil {
		t.Fatalf("ProfessorCount: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected 0 professors, got %d", count)
	}

	id, err := s.CreateProfessor(model.Professor{
		Username:    "turing",
		DisplayName: "Alan Turing",
		SecretHash:  "$2a$10$fake",
		Active:      true,
	})
	if err != nil {
		t.Fatalf("CreateProfessor: %v", err)
	}

	p, err := s.GetProfessorByUsername("turing")
	if err != nil {
		t.Fatalf("GetProfessorByUsername: %v", err)
	}
	if p == nil || p.ID != id || p.DisplayName != "Alan Turing" {
		t.Fatalf("unexpected professor: %+v", p)
	}

	missing, err := s.GetProfessorByUsername("nobody")
	if err != nil {
		t.Fatalf("GetProfessorByUsername missing: %v", err)
	}
	if missing != nil {
		t.Errorf("expected nil for unknown username, got %+v", missing)
	}

	if err := s.ToggleProfessorActive(id); err != nil {
		t.Fatalf("ToggleProfessorActive: %v", err)
	}
	p, _ = s.GetProfessorByID(id)
	if p.Active {
		t.Error("expected professor to be inactive after toggle")
	}
}

func TestAuthSessionLifecycle(t *testing.T) {
	s := newTestStore(t)

	id, err := s.CreateProfessor(model.Professor{Username: "prof", SecretHash: "h", Active: true})
	if err != nil {
		t.Fatalf("CreateProfessor: %v", err)
	}

	token, err := s.CreateAuthSession(id)
	if err != nil {
		t.Fatalf("CreateAuthSession: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty token")
	}

	sess, err := s.GetAuthSession(token)
	if err != nil {
		t.Fatalf("GetAuthSession: %v", err)
	}
	if sess == nil || sess.UserID != id {
		t.Fatalf("unexpected session: %+v", sess)
	}

	if err := s.DeleteAuthSession(token); err != nil {
		t.Fatalf("DeleteAuthSession: %v", err)
	}
	sess, err = s.GetAuthSession(token)
	if err != nil {
		t.Fatalf("GetAuthSession after delete: %v", err)
	}
	if sess != nil {
		t.Errorf("expected nil session after delete, got %+v", sess)
	}
}

func TestNewQuizCodeShape(t *testing.T) {
	s := newTestStore(t)

	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		code, err := s.newQuizCode()
		if err != nil {
			t.Fatalf("newQuizCode: %v", err)
		}
		if !regexp.MustCompile(`^[A-Z0-9]{6}$`).MatchString(code) {
			t.Fatalf("bad code shape: %q", code)
		}
		seen[code] = true
	}
	if len(seen) < 2 {
		t.Error("codes do not look random")
	}
}

func TestExportResults(t *testing.T) {
	s := newTestStore(t)

	q := sampleQuiz("Export me")
	if err := s.UpsertQuiz(&q); err != nil {
		t.Fatalf("UpsertQuiz: %v", err)
	}
	r := model.Result{QuizID: q.ID, Name: "Ada", RollNumber: "CS-01", Email: "a@x",
		Score: 2, Total: 2, Answers: []string{"Paris", "4"}, Reason: model.TerminatedManual}
	if err := s.AppendResult(r); err != nil {
		t.Fatalf("AppendResult: %v", err)
	}

	export, err := s.ExportResults()
	if err != nil {
		t.Fatalf("ExportResults: %v", err)
	}
	if len(export.Quizzes) != 1 || export.Quizzes[0].NumQuestions != 2 {
		t.Errorf("unexpected quiz summaries: %+v", export.Quizzes)
	}
	if len(export.Results) != 1 || export.Results[0].Name != "Ada" {
		t.Errorf("unexpected results: %+v", export.Results)
	}
	if export.ExportedAt.IsZero() {
		t.Error("expected ExportedAt to be set")
	}
}
