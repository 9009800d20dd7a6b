package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vbonduro/renovo/internal/domain"
	"github.com/vbonduro/renovo/internal/errs"
)

// PhotoStore keeps the before-photo records of projects. The image bytes live
// in a photostore.PhotoStore under StorageKey.
type PhotoStore struct {
	db *sql.DB
}

func NewPhotoStore(db *sql.DB) *PhotoStore {
	return &PhotoStore{db: db}
}

func (s *PhotoStore) Create(ctx context.Context, projectID, roomName, storageKey, mimeType string, tags []string) (*domain.BeforePhoto, error) {
	encoded, err := encodeList(tags)
	if err != nil {
		return nil, err
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO before_photos (project_id, room_name, storage_key, mime_type, tags) VALUES (?, ?, ?, ?, ?)
	`, projectID, roomName, storageKey, mimeType, encoded)
	if err != nil {
		return nil, fmt.Errorf("failed to create photo: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert id: %w", err)
	}

	return s.GetByID(ctx, id)
}

func (s *PhotoStore) GetByID(ctx context.Context, id int64) (*domain.BeforePhoto, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, project_id, room_name, storage_key, mime_type, tags, uploaded_at
		FROM before_photos WHERE id = ?
	`, id)

	photo, err := scanPhoto(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get photo: %w", err)
	}

	return photo, nil
}

func (s *PhotoStore) ListByProject(ctx context.Context, projectID string) ([]*domain.BeforePhoto, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, project_id, room_name, storage_key, mime_type, tags, uploaded_at
		FROM before_photos WHERE project_id = ? ORDER BY id ASC
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list photos: %w", err)
	}
	defer rows.Close()

	var photos []*domain.BeforePhoto
	for rows.Next() {
		photo, err := scanPhoto(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan photo: %w", err)
		}
		photos = append(photos, photo)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating photos: %w", err)
	}

	return photos, nil
}

func (s *PhotoStore) Delete(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM before_photos WHERE id = ?
	`, id)
	if err != nil {
		return fmt.Errorf("failed to delete photo: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return errs.NotFound("photo")
	}

	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPhoto(row scanner) (*domain.BeforePhoto, error) {
	photo := &domain.BeforePhoto{}
	var tags string
	if err := row.Scan(&photo.ID, &photo.ProjectID, &photo.RoomName, &photo.StorageKey, &photo.MimeType, &tags, &photo.UploadedAt); err != nil {
		return nil, err
	}
	decoded, err := decodeList(tags)
	if err != nil {
		return nil, err
	}
	photo.Tags = decoded
	return photo, nil
}
