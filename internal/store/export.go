package store

import (
	"fmt"
	"time"

	"github.com/pavelanni/quizdesk/internal/model"
)

// ExportResults builds an export-ready dump of all stored quizzes and results.
func (s *Store) ExportResults() (model.ResultsExport, error) {
	quizzes, err := s.LoadQuizzes()
	if err != nil {
		return model.ResultsExport{}, fmt.Errorf("load quizzes: %w", err)
	}
	results, err := s.LoadResults()
	if err != nil {
		return model.ResultsExport{}, fmt.Errorf("load results: %w", err)
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

	return model.ResultsExport{
		ExportedAt: time.Now(),
		Quizzes:    summaries,
		Results:    results,
	}, nil
}
