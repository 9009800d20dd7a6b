package service

import (
	"context"

	"github.com/vbonduro/renovo/internal/domain"
)

// propertyRepository is the subset of store.PropertyStore the services require.
type propertyRepository interface {
	Create(ctx context.Context, name, address string) (*domain.Property, error)
	GetByID(ctx context.Context, id string) (*domain.Property, error)
	SetBlueprint(ctx context.Context, id, url string) error
}

// projectRepository is the subset of store.ProjectStore the services require.
type projectRepository interface {
	Create(ctx context.Context, propertyID, title string, preferences []byte) (*domain.Project, error)
	GetByID(ctx context.Context, id string) (*domain.Project, error)
	ListByProperty(ctx context.Context, propertyID string) ([]*domain.Project, error)
	GetPreferences(ctx context.Context, id string) ([]byte, int64, error)
	ReplacePreferences(ctx context.Context, id string, preferences []byte, expectedVersion int64) (int64, error)
	GetSOWPreferences(ctx context.Context, id string) ([]byte, int64, int64, error)
	ReplaceSOW(ctx context.Context, id string, preferences []byte, expectedVersion, expectedSOWVersion int64) (int64, error)
}

// roomRepository is the subset of store.RoomStore the services require.
type roomRepository interface {
	Create(ctx context.Context, propertyID, name string) (*domain.Room, error)
	GetByID(ctx context.Context, id string) (*domain.Room, error)
	ListByProperty(ctx context.Context, propertyID string) ([]domain.Room, error)
	UpsertDesign(ctx context.Context, d domain.RoomDesign) error
	ListDesigns(ctx context.Context, projectID string) ([]domain.RoomDesign, error)
}

// photoRepository is the subset of store.PhotoStore the services require.
type photoRepository interface {
	Create(ctx context.Context, projectID, roomName, storageKey, mimeType string, tags []string) (*domain.BeforePhoto, error)
	GetByID(ctx context.Context, id int64) (*domain.BeforePhoto, error)
	ListByProject(ctx context.Context, projectID string) ([]*domain.BeforePhoto, error)
	Delete(ctx context.Context, id int64) error
}
