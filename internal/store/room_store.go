package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/vbonduro/renovo/internal/domain"
)

type RoomStore struct {
	db *sql.DB
}

func NewRoomStore(db *sql.DB) *RoomStore {
	return &RoomStore{db: db}
}

func (s *RoomStore) Create(ctx context.Context, propertyID, name string) (*domain.Room, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO rooms (id, property_id, name) VALUES (?, ?, ?)
	`, id, propertyID, name)
	if err != nil {
		return nil, fmt.Errorf("failed to create room: %w", err)
	}

	return s.GetByID(ctx, id)
}

func (s *RoomStore) GetByID(ctx context.Context, id string) (*domain.Room, error) {
	r := &domain.Room{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, property_id, name, created_at FROM rooms WHERE id = ?
	`, id).Scan(&r.ID, &r.PropertyID, &r.Name, &r.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get room: %w", err)
	}

	return r, nil
}

// ListByProperty returns rooms in creation order. Best-match resolution picks
// the first hit, so the order is part of the contract.
func (s *RoomStore) ListByProperty(ctx context.Context, propertyID string) ([]domain.Room, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, property_id, name, created_at FROM rooms
		WHERE property_id = ? ORDER BY rowid ASC
	`, propertyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}
	defer rows.Close()

	rooms := []domain.Room{}
	for rows.Next() {
		var r domain.Room
		if err := rows.Scan(&r.ID, &r.PropertyID, &r.Name, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan room: %w", err)
		}
		rooms = append(rooms, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rooms: %w", err)
	}

	return rooms, nil
}

// UpsertDesign replaces the design arrays of one room in one project.
func (s *RoomStore) UpsertDesign(ctx context.Context, d domain.RoomDesign) error {
	renderings, err := encodeList(d.Renderings)
	if err != nil {
		return err
	}
	drawings, err := encodeList(d.Drawings)
	if err != nil {
		return err
	}
	inspiration, err := encodeList(d.InspirationImages)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO room_designs (project_id, room_id, renderings, drawings, inspiration_images)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (project_id, room_id) DO UPDATE SET
			renderings = excluded.renderings,
			drawings = excluded.drawings,
			inspiration_images = excluded.inspiration_images
	`, d.ProjectID, d.RoomID, renderings, drawings, inspiration)
	if err != nil {
		return fmt.Errorf("failed to save room design: %w", err)
	}

	return nil
}

func (s *RoomStore) ListDesigns(ctx context.Context, projectID string) ([]domain.RoomDesign, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT d.project_id, d.room_id, d.renderings, d.drawings, d.inspiration_images
		FROM room_designs d JOIN rooms r ON r.id = d.room_id
		WHERE d.project_id = ? ORDER BY r.rowid ASC
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list room designs: %w", err)
	}
	defer rows.Close()

	designs := []domain.RoomDesign{}
	for rows.Next() {
		var d domain.RoomDesign
		var renderings, drawings, inspiration string
		if err := rows.Scan(&d.ProjectID, &d.RoomID, &renderings, &drawings, &inspiration); err != nil {
			return nil, fmt.Errorf("failed to scan room design: %w", err)
		}
		if d.Renderings, err = decodeList(renderings); err != nil {
			return nil, err
		}
		if d.Drawings, err = decodeList(drawings); err != nil {
			return nil, err
		}
		if d.InspirationImages, err = decodeList(inspiration); err != nil {
			return nil, err
		}
		designs = append(designs, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating room designs: %w", err)
	}

	return designs, nil
}
