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

type PropertyStore struct {
	db *sql.DB
}

func NewPropertyStore(db *sql.DB) *PropertyStore {
	return &PropertyStore{db: db}
}

func (s *PropertyStore) Create(ctx context.Context, name, address string) (*domain.Property, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO properties (id, name, address) VALUES (?, ?, ?)
	`, id, name, address)
	if err != nil {
		return nil, fmt.Errorf("failed to create property: %w", err)
	}

	return s.GetByID(ctx, id)
}

func (s *PropertyStore) GetByID(ctx context.Context, id string) (*domain.Property, error) {
	p := &domain.Property{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, address, blueprint_url, created_at FROM properties WHERE id = ?
	`, id).Scan(&p.ID, &p.Name, &p.Address, &p.BlueprintURL, &p.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get property: %w", err)
	}

	return p, nil
}

func (s *PropertyStore) SetBlueprint(ctx context.Context, id, url string) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE properties SET blueprint_url = ? WHERE id = ?
	`, url, id)
	if err != nil {
		return fmt.Errorf("failed to set blueprint: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return errs.NotFound("property")
	}

	return nil
}
