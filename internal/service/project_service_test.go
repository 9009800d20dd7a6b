package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbonduro/renovo/internal/db"
	"github.com/vbonduro/renovo/internal/domain"
	"github.com/vbonduro/renovo/internal/errs"
	"github.com/vbonduro/renovo/internal/store"
	"github.com/vbonduro/renovo/internal/tags"
)

func TestCreatePropertyRequiresName(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.projects.CreateProperty(context.Background(), "  ", "")
	assert.ErrorIs(t, err, errs.ErrBadRequest)
}

func TestAddRoomUnknownProperty(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.projects.AddRoom(context.Background(), "missing", "Kitchen")
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestCreateProjectStartsWithEmptyPreferences(t *testing.T) {
	env := newTestEnv(t)
	project, _ := env.seedProject(t)

	details, err := env.projects.GetProjectDetails(context.Background(), project.ID)
	require.NoError(t, err)
	assert.Equal(t, "Remodel", details.Title)
	assert.Equal(t, int64(1), details.Version)
	assert.Empty(t, details.StatementOfWork.WorkAreas)
	assert.NotNil(t, details.StatementOfWork.LaborItems)
	assert.NotNil(t, details.InspirationImages)
	assert.NotNil(t, details.DesignAssets)
}

func TestGetProjectNotFound(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.projects.GetProject(context.Background(), "missing")
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestPreferenceEditsKeepOtherSections(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	project, _ := env.seedProject(t)

	_, err := env.projects.SaveSOW(ctx, project.ID, domain.SOWData{
		WorkAreas: []domain.WorkArea{{ID: "a1", Name: "Kitchen", Type: domain.WorkAreaPrimary}},
	}, 1)
	require.NoError(t, err)

	require.NoError(t, env.projects.AddDesignAsset(ctx, project.ID, domain.DesignAsset{
		Name: "Tile board",
		URL:  "https://cdn.example.com/tile.png",
		Tags: []string{"room:kitchen", "room:kitchen", "material:tile"},
	}))
	require.NoError(t, env.projects.SetInspirationImages(ctx, project.ID, []string{"https://cdn.example.com/a.jpg", " "}))

	details, err := env.projects.GetProjectDetails(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(4), details.Version)
	require.Len(t, details.StatementOfWork.WorkAreas, 1)
	assert.Equal(t, "Kitchen", details.StatementOfWork.WorkAreas[0].Name)
	require.Len(t, details.DesignAssets, 1)
	assert.Equal(t, []string{"room:kitchen", "material:tile"}, details.DesignAssets[0].Tags)
	assert.Equal(t, []string{"https://cdn.example.com/a.jpg"}, details.InspirationImages)
}

func TestSaveSOWStaleVersion(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	project, _ := env.seedProject(t)

	next, err := env.projects.SaveSOW(ctx, project.ID, domain.SOWData{
		WorkAreas: []domain.WorkArea{{ID: "a1", Name: "Kitchen"}},
	}, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), next)

	_, err = env.projects.SaveSOW(ctx, project.ID, domain.SOWData{}, 1)
	assert.ErrorIs(t, err, errs.ErrVersionConflict)

	data, version, err := env.projects.LoadSOW(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), version)
	require.Len(t, data.WorkAreas, 1)
}

func TestSaveSOWAfterOtherSectionWrites(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	project, _ := env.seedProject(t)

	_, sowVersion, err := env.projects.LoadSOW(ctx, project.ID)
	require.NoError(t, err)

	require.NoError(t, env.projects.SetInspirationImages(ctx, project.ID, []string{"x.jpg"}))
	require.NoError(t, env.projects.AddDesignAsset(ctx, project.ID, domain.DesignAsset{Name: "Board", URL: "https://cdn.example.com/b.png"}))
	require.NoError(t, env.projects.AddTags(ctx, project.ID, []domain.TagMetadata{{ID: "fixture:sink", Label: "Sink", Category: "fixture"}}))

	next, err := env.projects.SaveSOW(ctx, project.ID, domain.SOWData{
		WorkAreas: []domain.WorkArea{{ID: "a1", Name: "Kitchen"}},
	}, sowVersion)
	require.NoError(t, err)
	assert.Equal(t, sowVersion+1, next)

	details, err := env.projects.GetProjectDetails(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"x.jpg"}, details.InspirationImages)
	assert.Len(t, details.DesignAssets, 1)
	require.Len(t, details.StatementOfWork.WorkAreas, 1)
}

// interleavingProjects writes another preferences section just before the
// first statement-of-work replace lands.
type interleavingProjects struct {
	*store.ProjectStore
	once sync.Once
}

func (p *interleavingProjects) ReplaceSOW(ctx context.Context, id string, prefs []byte, expectedVersion, expectedSOWVersion int64) (int64, error) {
	var err error
	p.once.Do(func() {
		_, err = p.ProjectStore.ReplacePreferences(ctx, id, []byte(`{"inspirationImages":["late.jpg"]}`), expectedVersion)
	})
	if err != nil {
		return 0, err
	}
	return p.ProjectStore.ReplaceSOW(ctx, id, prefs, expectedVersion, expectedSOWVersion)
}

func TestSaveSOWRetriesLostDocumentRace(t *testing.T) {
	d, err := db.OpenForTesting()
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, d.Close()) })
	ctx := context.Background()

	projects := &interleavingProjects{ProjectStore: store.NewProjectStore(d)}
	svc := NewProjectService(store.NewPropertyStore(d), projects, store.NewRoomStore(d), slog.Default())
	property, err := svc.CreateProperty(ctx, "Maple House", "")
	require.NoError(t, err)
	project, err := svc.CreateProject(ctx, property.ID, "Remodel")
	require.NoError(t, err)

	next, err := svc.SaveSOW(ctx, project.ID, domain.SOWData{
		WorkAreas: []domain.WorkArea{{ID: "a1", Name: "Kitchen"}},
	}, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), next)

	details, err := svc.GetProjectDetails(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"late.jpg"}, details.InspirationImages)
	require.Len(t, details.StatementOfWork.WorkAreas, 1)
}

func TestSaveSOWPreservesUnknownSections(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	project, _ := env.seedProject(t)

	// a section written by another client
	_, err := env.projects.projects.ReplacePreferences(ctx, project.ID, []byte(`{"moodBoard":{"pins":[1,2]}}`), 1)
	require.NoError(t, err)

	_, err = env.projects.SaveSOW(ctx, project.ID, domain.SOWData{}, 1)
	require.NoError(t, err)

	raw, _, err := env.projects.projects.GetPreferences(ctx, project.ID)
	require.NoError(t, err)
	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.JSONEq(t, `{"pins":[1,2]}`, string(doc["moodBoard"]))
	assert.Contains(t, doc, "statement_of_work")
}

func TestSetRoomDesignRejectsForeignRoom(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	project, _ := env.seedProject(t, "Kitchen")
	_, otherRooms := env.seedProject(t, "Garage")

	err := env.projects.SetRoomDesign(ctx, domain.RoomDesign{ProjectID: project.ID, RoomID: otherRooms[0].ID})
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestSetCustomTagsAndAddTags(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	project, _ := env.seedProject(t)

	require.NoError(t, env.projects.SetCustomTags(ctx, project.ID, tags.Catalogue{
		"style:farmhouse": {Label: "Farmhouse", Category: "style", Color: "#aa8844"},
	}))
	require.NoError(t, env.projects.AddTags(ctx, project.ID, []domain.TagMetadata{
		{ID: "style:farmhouse", Label: "Suggested label", Category: "style"},
		{ID: "fixture:sink", Label: "Sink", Category: "fixture"},
	}))

	doc, _, err := env.projects.LoadPreferences(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, "Farmhouse", doc.TagsMetadata["style:farmhouse"].Label)
	assert.Equal(t, "style:farmhouse", doc.TagsMetadata["style:farmhouse"].ID)
	assert.Equal(t, "Sink", doc.TagsMetadata["fixture:sink"].Label)

	err = env.projects.SetCustomTags(ctx, project.ID, tags.Catalogue{" ": {Label: "blank"}})
	assert.ErrorIs(t, err, errs.ErrBadRequest)
}

func TestListProjects(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	project, _ := env.seedProject(t)

	projects, err := env.projects.ListProjects(ctx, project.PropertyID)
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, project.ID, projects[0].ID)
}
