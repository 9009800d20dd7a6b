package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/vbonduro/renovo/internal/assets"
	"github.com/vbonduro/renovo/internal/catalog"
	"github.com/vbonduro/renovo/internal/domain"
	"github.com/vbonduro/renovo/internal/errs"
	"github.com/vbonduro/renovo/internal/notify"
	"github.com/vbonduro/renovo/internal/photostore"
	"github.com/vbonduro/renovo/internal/preferences"
	"github.com/vbonduro/renovo/internal/rooms"
	"github.com/vbonduro/renovo/internal/tagging"
	"github.com/vbonduro/renovo/internal/tags"
)

// preferencesStore is the part of ProjectService AssetService reads and
// writes preferences through.
type preferencesStore interface {
	GetProject(ctx context.Context, id string) (*domain.Project, error)
	LoadPreferences(ctx context.Context, projectID string) (*preferences.Document, int64, error)
	AddTags(ctx context.Context, projectID string, metas []domain.TagMetadata) error
}

type AssetService struct {
	projects   preferencesStore
	properties propertyRepository
	rooms      roomRepository
	photos     photoRepository
	photoStg   photostore.PhotoStore
	suggester  tagging.Suggester
	catalog    *catalog.Catalog
	policy     rooms.MatchPolicy
	notifier   notify.Notifier
	logger     *slog.Logger
}

// NewAssetService wires the asset read model. suggester may be nil, in which
// case uploads are stored without suggested tags.
func NewAssetService(
	projects preferencesStore,
	properties propertyRepository,
	roomRepo roomRepository,
	photos photoRepository,
	photoStg photostore.PhotoStore,
	suggester tagging.Suggester,
	cat *catalog.Catalog,
	policy rooms.MatchPolicy,
	notifier notify.Notifier,
	logger *slog.Logger,
) *AssetService {
	return &AssetService{
		projects:   projects,
		properties: properties,
		rooms:      roomRepo,
		photos:     photos,
		photoStg:   photoStg,
		suggester:  suggester,
		catalog:    cat,
		policy:     policy,
		notifier:   notifier,
		logger:     logger,
	}
}

// PhotoURL is the API path a stored photo is served from.
func PhotoURL(storageKey string) string {
	return "/photos/" + storageKey
}

// projectSources holds everything read for one project's asset view.
type projectSources struct {
	property *domain.Property
	rooms    []domain.Room
	designs  []domain.RoomDesign
	photos   []*domain.BeforePhoto
	prefs    *preferences.Document
}

// loadSources reads every asset source concurrently. Any failure fails the
// whole read.
func (s *AssetService) loadSources(ctx context.Context, project *domain.Project) (*projectSources, error) {
	src := &projectSources{}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		p, err := s.properties.GetByID(gctx, project.PropertyID)
		src.property = p
		return err
	})
	g.Go(func() error {
		r, err := s.rooms.ListByProperty(gctx, project.PropertyID)
		src.rooms = r
		return err
	})
	g.Go(func() error {
		d, err := s.rooms.ListDesigns(gctx, project.ID)
		src.designs = d
		return err
	})
	g.Go(func() error {
		p, err := s.photos.ListByProject(gctx, project.ID)
		src.photos = p
		return err
	})
	g.Go(func() error {
		doc, _, err := s.projects.LoadPreferences(gctx, project.ID)
		src.prefs = doc
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load asset sources: %w", err)
	}
	return src, nil
}

type RoomAssetsResult struct {
	Selected string             `json:"selected"`
	Assets   []domain.RoomAsset `json:"assets"`
	Groups   assets.Groups      `json:"groups"`
}

// RoomAssets aggregates every asset of a project, keeps those shown under
// selected ("all" or a room name or id) and groups them by type.
func (s *AssetService) RoomAssets(ctx context.Context, projectID, selected string) (*RoomAssetsResult, error) {
	selected = strings.TrimSpace(selected)
	if selected == "" {
		selected = assets.All
	}

	project, err := s.projects.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	src, err := s.loadSources(ctx, project)
	if err != nil {
		return nil, err
	}

	before := make([]assets.BeforePhoto, 0, len(src.photos))
	for _, p := range src.photos {
		before = append(before, assets.BeforePhoto{RoomName: p.RoomName, URL: PhotoURL(p.StorageKey), Tags: p.Tags})
	}
	blueprint := ""
	if src.property != nil {
		blueprint = src.property.BlueprintURL
	}

	all := assets.Aggregate(assets.Sources{
		Rooms:             src.rooms,
		RoomDesigns:       src.designs,
		BeforePhotos:      before,
		InspirationImages: src.prefs.InspirationImages,
		DesignAssets:      src.prefs.DesignAssets,
		BlueprintURL:      blueprint,
	}, s.policy)

	shown := assets.Filter(all, selected, s.policy)
	if shown == nil {
		shown = []domain.RoomAsset{}
	}
	groups := assets.Group(shown)
	if groups.Dropped > 0 {
		s.logger.Debug("assets of unknown type left out of groups", "project_id", projectID, "dropped", groups.Dropped)
	}

	return &RoomAssetsResult{Selected: selected, Assets: shown, Groups: groups}, nil
}

// Tags returns the merged tag catalogue for a project: defaults, then the
// project's own metadata, then one tag per current room.
func (s *AssetService) Tags(ctx context.Context, projectID string) (tags.Catalogue, error) {
	project, err := s.projects.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	var roomList []domain.Room
	var doc *preferences.Document
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		roomList, err = s.rooms.ListByProperty(gctx, project.PropertyID)
		return err
	})
	g.Go(func() error {
		var err error
		doc, _, err = s.projects.LoadPreferences(gctx, projectID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load tag sources: %w", err)
	}

	return tags.Merge(s.catalog.DefaultTags(), doc.TagsMetadata, roomList, s.catalog.RoomTagColor), nil
}

// UploadBeforePhoto stores the image, asks the tagger for tags, and records
// the photo under the free-text room name. Tagging failures are logged and
// the photo is kept without suggested tags.
func (s *AssetService) UploadBeforePhoto(ctx context.Context, projectID, roomName string, imageData []byte, mimeType string) (*domain.BeforePhoto, error) {
	s.logger.Info("upload before photo started", "project_id", projectID, "room", roomName, "mime_type", mimeType, "bytes", len(imageData))

	project, err := s.projects.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	photoTags := []string{}
	if match, err := s.matchRoom(ctx, project.PropertyID, roomName); err != nil {
		return nil, err
	} else if match != nil {
		photoTags = append(photoTags, tags.RoomTagID(match.Name))
	}

	suggestion := s.suggest(ctx, projectID, imageData, mimeType)
	photoTags = tags.Dedupe(append(photoTags, suggestion.IDs()...))

	storageKey, err := s.photoStg.Save(ctx, "project_"+projectID, mimeType, bytes.NewReader(imageData))
	if err != nil {
		s.notifier.Notify(ctx, notify.Failure(projectID, "Failed to upload photo", err))
		return nil, fmt.Errorf("failed to save photo: %w", err)
	}
	s.logger.Debug("photo saved", "project_id", projectID, "storage_key", storageKey)

	photo, err := s.photos.Create(ctx, projectID, strings.TrimSpace(roomName), storageKey, mimeType, photoTags)
	if err != nil {
		if derr := s.photoStg.Delete(ctx, storageKey); derr != nil {
			s.logger.Error("failed to roll back stored photo", "storage_key", storageKey, "error", derr)
		}
		s.notifier.Notify(ctx, notify.Failure(projectID, "Failed to upload photo", err))
		return nil, fmt.Errorf("failed to create photo record: %w", err)
	}

	if suggestion != nil && len(suggestion.Tags) > 0 {
		if err := s.projects.AddTags(ctx, projectID, suggestion.Tags); err != nil {
			s.logger.Error("failed to record suggested tags", "project_id", projectID, "error", err)
		}
	}

	s.logger.Info("upload before photo complete", "project_id", projectID, "photo_id", photo.ID, "tags", len(photo.Tags))
	s.notifier.Notify(ctx, notify.Success(projectID, "Photo uploaded", ""))
	return photo, nil
}

func (s *AssetService) matchRoom(ctx context.Context, propertyID, roomName string) (*domain.Room, error) {
	if strings.TrimSpace(roomName) == "" {
		return nil, nil
	}
	roomList, err := s.rooms.ListByProperty(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	return s.policy.BestMatch(roomName, roomList), nil
}

func (s *AssetService) suggest(ctx context.Context, projectID string, imageData []byte, mimeType string) *tagging.Suggestion {
	if s.suggester == nil {
		return nil
	}
	s.logger.Info("tag suggestion started", "project_id", projectID)
	suggestion, err := s.suggester.Suggest(ctx, bytes.NewReader(imageData), mimeType)
	if err != nil {
		s.logger.Warn("tag suggestion failed", "project_id", projectID, "error", err)
		return nil
	}
	s.logger.Info("tag suggestion complete", "project_id", projectID, "tags", len(suggestion.Tags))
	return suggestion
}

// DeleteBeforePhoto removes the record first, then the stored bytes. A
// failed blob delete is logged; the record is already gone.
func (s *AssetService) DeleteBeforePhoto(ctx context.Context, projectID string, photoID int64) error {
	photo, err := s.photos.GetByID(ctx, photoID)
	if err != nil {
		return err
	}
	if photo == nil || photo.ProjectID != projectID {
		return errs.NotFound("photo")
	}

	if err := s.photos.Delete(ctx, photoID); err != nil {
		return err
	}
	if err := s.photoStg.Delete(ctx, photo.StorageKey); err != nil {
		s.logger.Error("failed to delete stored photo", "photo_id", photoID, "storage_key", photo.StorageKey, "error", err)
	}

	s.logger.Info("before photo deleted", "project_id", projectID, "photo_id", photoID)
	return nil
}

// OpenPhoto streams stored photo bytes and their MIME type.
func (s *AssetService) OpenPhoto(ctx context.Context, storageKey string) (io.ReadCloser, string, error) {
	return s.photoStg.Get(ctx, storageKey)
}
