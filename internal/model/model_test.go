package model

import (
	"errors"
	"testing"
)

func validMCQ() MCQ {
	return MCQ{
		Question:      "Capital of France?",
		Options:       []string{"London", "Paris"},
		CorrectAnswer: "Paris",
	}
}

func TestMCQValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*MCQ)
		wantErr bool
	}{
		{"valid", func(q *MCQ) {}, false},
		{"empty question", func(q *MCQ) { q.Question = "" }, true},
		{"one option", func(q *MCQ) { q.Options = []string{"Paris"} }, true},
		{"no options", func(q *MCQ) { q.Options = nil }, true},
		{"answer not in options", func(q *MCQ) { q.CorrectAnswer = "Rome" }, true},
		{"duplicate options allowed", func(q *MCQ) { q.Options = []string{"Paris", "Paris"} }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := validMCQ()
			tt.mutate(&q)
			err := q.Validate()
			if tt.wantErr {
				var vErr *ValidationError
				if !errors.As(err, &vErr) {
					t.Errorf("expected ValidationError, got %v", err)
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestQuizValidate(t *testing.T) {
	valid := Quiz{Title: "T", Duration: 10, Questions: []MCQ{validMCQ()}}

	tests := []struct {
		name    string
		mutate  func(*Quiz)
		wantErr bool
	}{
		{"valid", func(z *Quiz) {}, false},
		{"empty title", func(z *Quiz) { z.Title = "" }, true},
		{"zero duration", func(z *Quiz) { z.Duration = 0 }, true},
		{"negative duration", func(z *Quiz) { z.Duration = -5 }, true},
		{"no questions", func(z *Quiz) { z.Questions = nil }, true},
		{"bad nested question", func(z *Quiz) { z.Questions[0].CorrectAnswer = "nope" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			z := valid
			z.Questions = append([]MCQ(nil), valid.Questions...)
			tt.mutate(&z)
			err := z.Validate()
			if tt.wantErr {
				var vErr *ValidationError
				if !errors.As(err, &vErr) {
					t.Errorf("expected ValidationError, got %v", err)
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestTakerValidate(t *testing.T) {
	valid := Taker{Name: "Ada", RollNumber: "CS-01", Email: "ada@example.com"}
	if err := valid.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	for _, tt := range []struct {
		name  string
		taker Taker
	}{
		{"no name", Taker{RollNumber: "R", Email: "E"}},
		{"no roll", Taker{Name: "N", Email: "E"}},
		{"no email", Taker{Name: "N", RollNumber: "R"}},
	} {
		t.Run(tt.name, func(t *testing.T) {
			var vErr *ValidationError
			if !errors.As(tt.taker.Validate(), &vErr) {
				t.Error("expected ValidationError")
			}
		})
	}
}
