// Package store persists quizzes, results, and professor accounts in a
// single local SQLite database.
package store

import (
	"crypto/rand"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/pavelanni/quizdesk/internal/model"

	_ "modernc.org/sqlite"
)

// ErrQuizNotFound is returned for an unknown quiz code.
var ErrQuizNotFound = errors.New("quiz not found")

const codeLength = 6

const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS quizzes (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		duration INTEGER NOT NULL,
		questions TEXT NOT NULL,
		created_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS results (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		quiz_id TEXT NOT NULL,
		name TEXT NOT NULL,
		roll_number TEXT NOT NULL,
		email TEXT NOT NULL,
		score INTEGER NOT NULL,
		total INTEGER NOT NULL,
		answers TEXT NOT NULL,
		reason TEXT NOT NULL,
		submitted_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS professors (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT NOT NULL UNIQUE,
		display_name TEXT NOT NULL,
		secret_hash TEXT NOT NULL,
		active BOOLEAN NOT NULL DEFAULT 1,
		created_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS auth_sessions (
		id TEXT PRIMARY KEY,
		user_id INTEGER NOT NULL,
		created_at DATETIME NOT NULL,
		expires_at DATETIME NOT NULL,
		FOREIGN KEY (user_id) REFERENCES professors(id)
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// UpsertQuiz stores a quiz, inserting or replacing by id. A quiz with an
// empty id is assigned a fresh unique code first; the assigned id is written
// back into the passed quiz.
func (s *Store) UpsertQuiz(q *model.Quiz) error {
	if q.ID == "" {
		code, err := s.newQuizCode()
		if err != nil {
			return err
		}
		q.ID = code
	}
	if q.CreatedAt.IsZero() {
		q.CreatedAt = time.Now()
	}
	questions, err := json.Marshal(q.Questions)
	if err != nil {
		return fmt.Errorf("marshal questions: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO quizzes (id, title, duration, questions, created_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET title = excluded.title,
		   duration = excluded.duration, questions = excluded.questions`,
		q.ID, q.Title, q.Duration, string(questions), q.CreatedAt,
	)
	return err
}

// GetQuiz returns the quiz with the given code, or ErrQuizNotFound.
func (s *Store) GetQuiz(id string) (model.Quiz, error) {
	var q model.Quiz
	var questions string
	err := s.db.QueryRow(
		`SELECT id, title, duration, questions, created_at FROM quizzes WHERE id = ?`, id,
	).Scan(&q.ID, &q.Title, &q.Duration, &questions, &q.CreatedAt)
	if err == sql.ErrNoRows {
		return model.Quiz{}, ErrQuizNotFound
	}
	if err != nil {
		return model.Quiz{}, err
	}
	if err := json.Unmarshal([]byte(questions), &q.Questions); err != nil {
		return model.Quiz{}, fmt.Errorf("unmarshal questions for %s: %w", id, err)
	}
	return q, nil
}

// LoadQuizzes returns all stored quizzes keyed by id.
func (s *Store) LoadQuizzes() (map[string]model.Quiz, error) {
	rows, err := s.db.Query(`SELECT id, title, duration, questions, created_at FROM quizzes`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	quizzes := make(map[string]model.Quiz)
	for rows.Next() {
		var q model.Quiz
		var questions string
		if err := rows.Scan(&q.ID, &q.Title, &q.Duration, &questions, &q.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(questions), &q.Questions); err != nil {
			return nil, fmt.Errorf("unmarshal questions for %s: %w", q.ID, err)
		}
		quizzes[q.ID] = q
	}
	return quizzes, rows.Err()
}

// SaveQuizzes replaces the stored quizzes with the given mapping.
func (s *Store) SaveQuizzes(quizzes map[string]model.Quiz) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM quizzes`); err != nil {
		return err
	}
	for id, q := range quizzes {
		questions, err := json.Marshal(q.Questions)
		if err != nil {
			return fmt.Errorf("marshal questions for %s: %w", id, err)
		}
		createdAt := q.CreatedAt
		if createdAt.IsZero() {
			createdAt = time.Now()
		}
		_, err = tx.Exec(
			`INSERT INTO quizzes (id, title, duration, questions, created_at) VALUES (?, ?, ?, ?, ?)`,
			id, q.Title, q.Duration, string(questions), createdAt,
		)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

// AppendResult adds a result to the append-only result list.
func (s *Store) AppendResult(r model.Result) error {
	answers, err := json.Marshal(r.Answers)
	if err != nil {
		return fmt.Errorf("marshal answers: %w", err)
	}
	submittedAt := r.SubmittedAt
	if submittedAt.IsZero() {
		submittedAt = time.Now()
	}
	_, err = s.db.Exec(
		`INSERT INTO results (quiz_id, name, roll_number, email, score, total, answers, reason, submitted_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.QuizID, r.Name, r.RollNumber, r.Email, r.Score, r.Total, string(answers), r.Reason, submittedAt,
	)
	return err
}

// LoadResults returns all results in insertion order.
func (s *Store) LoadResults() ([]model.Result, error) {
	rows, err := s.db.Query(
		`SELECT quiz_id, name, roll_number, email, score, total, answers, reason, submitted_at
		 FROM results ORDER BY id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var results []model.Result
	for rows.Next() {
		var r model.Result
		var answers string
		if err := rows.Scan(&r.QuizID, &r.Name, &r.RollNumber, &r.Email, &r.Score, &r.Total, &answers, &r.Reason, &r.SubmittedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(answers), &r.Answers); err != nil {
			return nil, fmt.Errorf("unmarshal answers: %w", err)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// SaveResults replaces the stored result list.
func (s *Store) SaveResults(results []model.Result) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM results`); err != nil {
		return err
	}
	for _, r := range results {
		answers, err := json.Marshal(r.Answers)
		if err != nil {
			return fmt.Errorf("marshal answers: %w", err)
		}
		submittedAt := r.SubmittedAt
		if submittedAt.IsZero() {
			submittedAt = time.Now()
		}
		_, err = tx.Exec(
			`INSERT INTO results (quiz_id, name, roll_number, email, score, total, answers, reason, submitted_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			r.QuizID, r.Name, r.RollNumber, r.Email, r.Score, r.Total, string(answers), r.Reason, submittedAt,
		)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

// ResultsForQuiz returns the results recorded for one quiz, in insertion order.
func (s *Store) ResultsForQuiz(quizID string) ([]model.Result, error) {
	rows, err := s.db.Query(
		`SELECT quiz_id, name, roll_number, email, score, total, answers, reason, submitted_at
		 FROM results WHERE quiz_id = ? ORDER BY id`, quizID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var results []model.Result
	for rows.Next() {
		var r model.Result
		var answers string
		if err := rows.Scan(&r.QuizID, &r.Name, &r.RollNumber, &r.Email, &r.Score, &r.Total, &answers, &r.Reason, &r.SubmittedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(answers), &r.Answers); err != nil {
			return nil, fmt.Errorf("unmarshal answers: %w", err)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// QuizCount returns the number of stored quizzes.
func (s *Store) QuizCount() (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM quizzes`).Scan(&count)
	return count, err
}

// newQuizCode generates a short uppercase alphanumeric code not yet present
// in the quizzes table. Collisions are retried.
func (s *Store) newQuizCode() (string, error) {
	for attempt := 0; attempt < 100; attempt++ {
		code, err := randomCode(codeLength)
		if err != nil {
			return "", err
		}
		var exists int
		err = s.db.QueryRow(`SELECT COUNT(*) FROM quizzes WHERE id = ?`, code).Scan(&exists)
		if err != nil {
			return "", err
		}
		if exists == 0 {
			return code, nil
		}
	}
	return "", errors.New("could not generate a unique quiz code")
}

func randomCode(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	for i := range b {
		b[i] = codeAlphabet[int(b[i])%len(codeAlphabet)]
	}
	return string(b), nil
}
