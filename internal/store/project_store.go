package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/vbonduro/renovo/internal/domain"
	"github.com/vbonduro/renovo/internal/errs"
)

type ProjectStore struct {
	db *sql.DB
}

func NewProjectStore(db *sql.DB) *ProjectStore {
	return &ProjectStore{db: db}
}

func (s *ProjectStore) Create(ctx context.Context, propertyID, title string, preferences []byte) (*domain.Project, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO projects (id, property_id, title, design_preferences) VALUES (?, ?, ?, ?)
	`, id, propertyID, title, string(preferences))
	if err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	return s.GetByID(ctx, id)
}

func (s *ProjectStore) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	p := &domain.Project{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, property_id, title, version, created_at, updated_at FROM projects WHERE id = ?
	`, id).Scan(&p.ID, &p.PropertyID, &p.Title, &p.Version, &p.CreatedAt, &p.UpdatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	return p, nil
}

func (s *ProjectStore) ListByProperty(ctx context.Context, propertyID string) ([]*domain.Project, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, property_id, title, version, created_at, updated_at FROM projects
		WHERE property_id = ? ORDER BY created_at ASC, id ASC
	`, propertyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var projects []*domain.Project
	for rows.Next() {
		p := &domain.Project{}
		if err := rows.Scan(&p.ID, &p.PropertyID, &p.Title, &p.Version, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating projects: %w", err)
	}

	return projects, nil
}

// GetPreferences returns the raw design preferences document and the version
// it is at.
func (s *ProjectStore) GetPreferences(ctx context.Context, id string) ([]byte, int64, error) {
	var raw string
	var version int64
	err := s.db.QueryRowContext(ctx, `
		SELECT design_preferences, version FROM projects WHERE id = ?
	`, id).Scan(&raw, &version)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, 0, errs.NotFound("project")
	}
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get design preferences: %w", err)
	}

	return []byte(raw), version, nil
}

// ReplacePreferences overwrites the whole preferences document if the stored
// version still equals expectedVersion, and returns the new version.
func (s *ProjectStore) ReplacePreferences(ctx context.Context, id string, preferences []byte, expectedVersion int64) (int64, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE projects
		SET design_preferences = ?, version = version + 1, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND version = ?
	`, string(preferences), id, expectedVersion)
	if err != nil {
		return 0, fmt.Errorf("failed to replace design preferences: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		p, err := s.GetByID(ctx, id)
		if err != nil {
			return 0, err
		}
		if p == nil {
			return 0, errs.NotFound("project")
		}
		return 0, fmt.Errorf("project %s at version %d, expected %d: %w", id, p.Version, expectedVersion, errs.ErrVersionConflict)
	}

	return expectedVersion + 1, nil
}

// GetSOWPreferences returns the raw preferences document together with the
// document version and the statement-of-work version, read in one statement.
func (s *ProjectStore) GetSOWPreferences(ctx context.Context, id string) ([]byte, int64, int64, error) {
	var raw string
	var version, sowVersion int64
	err := s.db.QueryRowContext(ctx, `
		SELECT design_preferences, version, sow_version FROM projects WHERE id = ?
	`, id).Scan(&raw, &version, &sowVersion)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, 0, 0, errs.NotFound("project")
	}
	if err != nil {
		return nil, 0, 0, fmt.Errorf("failed to get statement of work: %w", err)
	}

	return []byte(raw), version, sowVersion, nil
}

// ReplaceSOW overwrites the preferences document after a statement-of-work
// edit. Both versions must still match; the new statement-of-work version is
// returned.
func (s *ProjectStore) ReplaceSOW(ctx context.Context, id string, preferences []byte, expectedVersion, expectedSOWVersion int64) (int64, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE projects
		SET design_preferences = ?, version = version + 1, sow_version = sow_version + 1, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND version = ? AND sow_version = ?
	`, string(preferences), id, expectedVersion, expectedSOWVersion)
	if err != nil {
		return 0, fmt.Errorf("failed to replace statement of work: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		_, version, sowVersion, err := s.GetSOWPreferences(ctx, id)
		if err != nil {
			return 0, err
		}
		return 0, fmt.Errorf("project %s at version %d/%d, expected %d/%d: %w",
			id, version, sowVersion, expectedVersion, expectedSOWVersion, errs.ErrVersionConflict)
	}

	return expectedSOWVersion + 1, nil
}
