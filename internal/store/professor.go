package store

import (
	"database/sql"
	"log/slog"
	"time"

	"github.com/pavelanni/quizdesk/internal/model"
)

// CreateProfessor inserts a new professor account.
func (s *Store) CreateProfessor(p model.Professor) (int64, error) {
	res, err := s.db.Exec(
		`INSERT INTO professors (username, display_name, secret_hash, active, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		p.Username, p.DisplayName, p.SecretHash, p.Active, time.Now(),
	)
	if err != nil {
		slog.Error("failed to create professor", "username", p.Username, "error", err)
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	slog.Info("created professor", "id", id, "username", p.Username)
	return id, nil
}

// GetProfessorByUsername returns a professor by username, or nil if unknown.
func (s *Store) GetProfessorByUsername(username string) (*model.Professor, error) {
	var p model.Professor
	err := s.db.QueryRow(
		`SELECT id, username, display_name, secret_hash, active, created_at
		 FROM professors WHERE username = ?`, username,
	).Scan(&p.ID, &p.Username, &p.DisplayName, &p.SecretHash, &p.Active, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetProfessorByID returns a professor by ID, or nil if unknown.
func (s *Store) GetProfessorByID(id int64) (*model.Professor, error) {
	var p model.Professor
	err := s.db.QueryRow(
		`SELECT id, username, display_name, secret_hash, active, created_at
		 FROM professors WHERE id = ?`, id,
	).Scan(&p.ID, &p.Username, &p.DisplayName, &p.SecretHash, &p.Active, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListProfessors returns all professor accounts.
func (s *Store) ListProfessors() ([]model.Professor, error) {
	rows, err := s.db.Query(
		`SELECT id, username, display_name, secret_hash, active, created_at
		 FROM professors ORDER BY id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var professors []model.Professor
	for rows.Next() {
		var p model.Professor
		if err := rows.Scan(&p.ID, &p.Username, &p.DisplayName, &p.SecretHash, &p.Active, &p.CreatedAt); err != nil {
			return nil, err
		}
		professors = append(professors, p)
	}
	return professors, rows.Err()
}

// ToggleProfessorActive flips the active flag on a professor account.
func (s *Store) ToggleProfessorActive(id int64) error {
	_, err := s.db.Exec(`UPDATE professors SET active = NOT active WHERE id = ?`, id)
	return err
}

// ProfessorCount returns the total number of professor accounts.
func (s *Store) ProfessorCount() (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM professors`).Scan(&count)
	return count, err
}
