package model

import "time"

// ResultsExport is the top-level JSON structure for result export.
type ResultsExport struct {
	ExportedAt time.Time     `json:"exported_at"`
	Quizzes    []QuizSummary `json:"quizzes"`
	Results    []Result      `json:"results"`
}

// QuizSummary holds quiz metadata for export, without question bodies.
type QuizSummary struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	NumQuestions int    `json:"num_questions"`
	Duration     int    `json:"duration"`
}
