package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/vbonduro/renovo/internal/domain"
	"github.com/vbonduro/renovo/internal/errs"
	"github.com/vbonduro/renovo/internal/preferences"
	"github.com/vbonduro/renovo/internal/tags"
)

// maxPreferenceRetries bounds the re-read loop for server-side edits of the
// preferences document that lose a version race.
const maxPreferenceRetries = 3

type ProjectService struct {
	properties propertyRepository
	projects   projectRepository
	rooms      roomRepository
	logger     *slog.Logger
}

func NewProjectService(properties propertyRepository, projects projectRepository, rooms roomRepository, logger *slog.Logger) *ProjectService {
	return &ProjectService{
		properties: properties,
		projects:   projects,
		rooms:      rooms,
		logger:     logger,
	}
}

func (s *ProjectService) CreateProperty(ctx context.Context, name, address string) (*domain.Property, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errs.BadRequest("property name is required")
	}
	return s.properties.Create(ctx, name, strings.TrimSpace(address))
}

func (s *ProjectService) GetProperty(ctx context.Context, id string) (*domain.Property, error) {
	p, err := s.properties.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, errs.NotFound("property")
	}
	return p, nil
}

func (s *ProjectService) SetBlueprint(ctx context.Context, propertyID, url string) error {
	return s.properties.SetBlueprint(ctx, propertyID, strings.TrimSpace(url))
}

func (s *ProjectService) AddRoom(ctx context.Context, propertyID, name string) (*domain.Room, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errs.BadRequest("room name is required")
	}
	if _, err := s.GetProperty(ctx, propertyID); err != nil {
		return nil, err
	}
	return s.rooms.Create(ctx, propertyID, name)
}

func (s *ProjectService) ListRooms(ctx context.Context, propertyID string) ([]domain.Room, error) {
	if _, err := s.GetProperty(ctx, propertyID); err != nil {
		return nil, err
	}
	return s.rooms.ListByProperty(ctx, propertyID)
}

func (s *ProjectService) CreateProject(ctx context.Context, propertyID, title string) (*domain.Project, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, errs.BadRequest("project title is required")
	}
	if _, err := s.GetProperty(ctx, propertyID); err != nil {
		return nil, err
	}

	raw, err := preferences.New().Encode()
	if err != nil {
		return nil, err
	}
	project, err := s.projects.Create(ctx, propertyID, title, raw)
	if err != nil {
		return nil, err
	}
	s.logger.Info("project created", "project_id", project.ID, "property_id", propertyID)
	return project, nil
}

func (s *ProjectService) GetProject(ctx context.Context, id string) (*domain.Project, error) {
	p, err := s.projects.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, errs.NotFound("project")
	}
	return p, nil
}

// ProjectDetails is a project with its decoded design preferences.
type ProjectDetails struct {
	*domain.Project
	StatementOfWork   domain.SOWData       `json:"statementOfWork"`
	InspirationImages []string             `json:"inspirationImages"`
	DesignAssets      []domain.DesignAsset `json:"designAssets"`
}

func (s *ProjectService) GetProjectDetails(ctx context.Context, id string) (*ProjectDetails, error) {
	project, err := s.GetProject(ctx, id)
	if err != nil {
		return nil, err
	}
	doc, version, err := s.LoadPreferences(ctx, id)
	if err != nil {
		return nil, err
	}
	project.Version = version
	return &ProjectDetails{
		Project:           project,
		StatementOfWork:   doc.StatementOfWork,
		InspirationImages: doc.InspirationImages,
		DesignAssets:      doc.DesignAssets,
	}, nil
}

// LoadPreferences reads and decodes a project's design preferences.
func (s *ProjectService) LoadPreferences(ctx context.Context, projectID string) (*preferences.Document, int64, error) {
	raw, version, err := s.projects.GetPreferences(ctx, projectID)
	if err != nil {
		return nil, 0, err
	}
	doc, err := preferences.Decode(raw)
	if err != nil {
		return nil, 0, err
	}
	return doc, version, nil
}

// LoadSOW returns the saved statement of work and the section version it was
// read at. Writes to other preference sections do not move that version.
func (s *ProjectService) LoadSOW(ctx context.Context, projectID string) (domain.SOWData, int64, error) {
	raw, _, sowVersion, err := s.projects.GetSOWPreferences(ctx, projectID)
	if err != nil {
		return domain.SOWData{}, 0, err
	}
	doc, err := preferences.Decode(raw)
	if err != nil {
		return domain.SOWData{}, 0, err
	}
	return doc.StatementOfWork, sowVersion, nil
}

// SaveSOW replaces the statement_of_work section and writes the full merged
// preferences document back, provided no other statement of work was saved
// since expectedVersion. Concurrent writes to other sections are re-read and
// merged.
func (s *ProjectService) SaveSOW(ctx context.Context, projectID string, data domain.SOWData, expectedVersion int64) (int64, error) {
	var err error
	for attempt := 0; attempt < maxPreferenceRetries; attempt++ {
		var raw []byte
		var version, sowVersion int64
		raw, version, sowVersion, err = s.projects.GetSOWPreferences(ctx, projectID)
		if err != nil {
			return 0, err
		}
		if sowVersion != expectedVersion {
			return 0, fmt.Errorf("statement of work for project %s at version %d, expected %d: %w", projectID, sowVersion, expectedVersion, errs.ErrVersionConflict)
		}

		var doc *preferences.Document
		doc, err = preferences.Decode(raw)
		if err != nil {
			return 0, err
		}
		doc.StatementOfWork = data
		raw, err = doc.Encode()
		if err != nil {
			return 0, err
		}

		var next int64
		next, err = s.projects.ReplaceSOW(ctx, projectID, raw, version, expectedVersion)
		if !errors.Is(err, errs.ErrVersionConflict) {
			return next, err
		}
		s.logger.Warn("design preferences changed concurrently, retrying", "project_id", projectID, "attempt", attempt+1)
	}
	return 0, err
}

// updatePreferences applies fn to the freshest document and writes it back.
// A lost version race re-reads and re-applies fn.
func (s *ProjectService) updatePreferences(ctx context.Context, projectID string, fn func(doc *preferences.Document) error) error {
	var err error
	for attempt := 0; attempt < maxPreferenceRetries; attempt++ {
		var doc *preferences.Document
		var version int64
		doc, version, err = s.LoadPreferences(ctx, projectID)
		if err != nil {
			return err
		}
		if err = fn(doc); err != nil {
			return err
		}
		var raw []byte
		raw, err = doc.Encode()
		if err != nil {
			return err
		}
		_, err = s.projects.ReplacePreferences(ctx, projectID, raw, version)
		if !errors.Is(err, errs.ErrVersionConflict) {
			return err
		}
		s.logger.Warn("design preferences changed concurrently, retrying", "project_id", projectID, "attempt", attempt+1)
	}
	return err
}

// SetRoomDesign replaces one room's renderings, drawings and inspiration
// images. The room must belong to the project's property.
func (s *ProjectService) SetRoomDesign(ctx context.Context, design domain.RoomDesign) error {
	project, err := s.GetProject(ctx, design.ProjectID)
	if err != nil {
		return err
	}
	room, err := s.rooms.GetByID(ctx, design.RoomID)
	if err != nil {
		return err
	}
	if room == nil || room.PropertyID != project.PropertyID {
		return errs.NotFound("room")
	}
	return s.rooms.UpsertDesign(ctx, design)
}

func (s *ProjectService) AddDesignAsset(ctx context.Context, projectID string, asset domain.DesignAsset) error {
	asset.Name = strings.TrimSpace(asset.Name)
	asset.URL = strings.TrimSpace(asset.URL)
	if asset.URL == "" {
		return errs.BadRequest("asset url is required")
	}
	if asset.Name == "" {
		asset.Name = asset.URL
	}
	asset.Tags = tags.Dedupe(asset.Tags)
	return s.updatePreferences(ctx, projectID, func(doc *preferences.Document) error {
		doc.DesignAssets = append(doc.DesignAssets, asset)
		return nil
	})
}

func (s *ProjectService) SetInspirationImages(ctx context.Context, projectID string, urls []string) error {
	cleaned := make([]string, 0, len(urls))
	for _, u := range urls {
		if u = strings.TrimSpace(u); u != "" {
			cleaned = append(cleaned, u)
		}
	}
	return s.updatePreferences(ctx, projectID, func(doc *preferences.Document) error {
		doc.InspirationImages = cleaned
		return nil
	})
}

// SetCustomTags replaces the project's tag metadata overrides.
func (s *ProjectService) SetCustomTags(ctx context.Context, projectID string, overrides tags.Catalogue) error {
	clean := make(tags.Catalogue, len(overrides))
	for id, meta := range overrides {
		id = strings.TrimSpace(id)
		if id == "" {
			return errs.BadRequest("tag id is required")
		}
		meta.ID = id
		clean[id] = meta
	}
	return s.updatePreferences(ctx, projectID, func(doc *preferences.Document) error {
		doc.TagsMetadata = clean
		return nil
	})
}

// AddTags records metadata for tags the project does not know yet. Existing
// entries are left alone so user edits win over suggestions.
func (s *ProjectService) AddTags(ctx context.Context, projectID string, metas []domain.TagMetadata) error {
	if len(metas) == 0 {
		return nil
	}
	return s.updatePreferences(ctx, projectID, func(doc *preferences.Document) error {
		for _, m := range metas {
			if _, ok := doc.TagsMetadata[m.ID]; !ok && m.ID != "" {
				doc.TagsMetadata[m.ID] = m
			}
		}
		return nil
	})
}

func (s *ProjectService) ListProjects(ctx context.Context, propertyID string) ([]*domain.Project, error) {
	if _, err := s.GetProperty(ctx, propertyID); err != nil {
		return nil, err
	}
	return s.projects.ListByProperty(ctx, propertyID)
}
