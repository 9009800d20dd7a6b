package assets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbonduro/renovo/internal/domain"
	"github.com/vbonduro/renovo/internal/rooms"
)

func testSources() Sources {
	return Sources{
		Rooms: []domain.Room{
			{ID: "r-kitchen", Name: "Kitchen"},
			{ID: "r-bath", Name: "Bathroom 2"},
		},
		RoomDesigns: []domain.RoomDesign{
			{
				RoomID:            "r-kitchen",
				Renderings:        []string{"https://cdn/k-render-1.png", "https://cdn/k-render-2.png"},
				Drawings:          []string{"https://cdn/k-drawing.pdf"},
				InspirationImages: []string{"https://cdn/shared.jpg"},
			},
		},
		BeforePhotos: []BeforePhoto{
			{RoomName: "bathroom_2", URL: "/photos/b1.jpg", Tags: []string{"custom:tile", "custom:tile"}},
			{RoomName: "garage", URL: "/photos/g1.jpg"},
		},
		InspirationImages: []string{"https://cdn/shared.jpg"},
		DesignAssets: []domain.DesignAsset{
			{Name: "Moodboard", URL: "https://cdn/mood.png", Tags: []string{"room:kitchen"}},
			{Name: "Permit", URL: "https://cdn/permit.pdf", Type: "document"},
			{Name: "Bath tile", URL: "https://cdn/tile.png", RoomID: "r-bath"},
		},
		BlueprintURL: "https://cdn/blueprint.pdf",
	}
}

func TestAggregate(t *testing.T) {
	got := Aggregate(testSources(), rooms.Loose)

	require.Len(t, got, 11)

	assert.Equal(t, domain.RoomAsset{
		Name:     "Kitchen Rendering 1",
		RoomName: "Kitchen",
		URL:      "https://cdn/k-render-1.png",
		Type:     domain.AssetDesign,
		Tags:     []string{"rendering", "room:kitchen"},
		RoomID:   "r-kitchen",
	}, got[0])

	bath := got[4]
	assert.Equal(t, "Bathroom 2", bath.RoomName)
	assert.Equal(t, "r-bath", bath.RoomID)
	assert.Equal(t, domain.AssetBeforePhoto, bath.Type)
	assert.Equal(t, []string{"before-photo", "room:bathroom-2", "custom:tile"}, bath.Tags)

	garage := got[5]
	assert.Equal(t, "Garage", garage.RoomName)
	assert.Empty(t, garage.RoomID)

	assert.Equal(t, General, got[6].RoomName)
	assert.Equal(t, domain.AssetInspiration, got[6].Type)

	assert.Equal(t, "Kitchen", got[7].RoomName, "room taken from room: tag")
	assert.Equal(t, domain.AssetType("document"), got[8].Type)
	assert.Equal(t, "Bathroom 2", got[9].RoomName, "room taken from room id")
	assert.Equal(t, "Property Blueprint", got[10].Name)
}

func TestAggregateKeepsDuplicateURLs(t *testing.T) {
	got := Aggregate(testSources(), rooms.Loose)

	count := 0
	for _, a := range got {
		if a.URL == "https://cdn/shared.jpg" {
			count++
		}
	}
	assert.Equal(t, 2, count)
}

func TestAggregateUnknownRoomDesign(t *testing.T) {
	got := Aggregate(Sources{RoomDesigns: []domain.RoomDesign{{RoomID: "gone", Renderings: []string{"u"}}}}, rooms.Loose)
	require.Len(t, got, 1)
	assert.Equal(t, rooms.Unknown, got[0].RoomName)
}

func TestFilterAllIsIdentity(t *testing.T) {
	all := Aggregate(testSources(), rooms.Loose)
	got := Filter(all, All, rooms.Loose)
	assert.Equal(t, all, got)
	assert.Equal(t, len(all), len(got))

	assert.Nil(t, Filter(nil, All, rooms.Loose))
}

func TestFilterBlankSelectionIsAll(t *testing.T) {
	all := Aggregate(Sources{
		Rooms:       testSources().Rooms,
		RoomDesigns: []domain.RoomDesign{{RoomID: "gone", Renderings: []string{"u"}}},
	}, rooms.Loose)
	require.NotEmpty(t, all)

	for _, selected := range []string{"", "   ", "\t"} {
		assert.Equal(t, all, Filter(all, selected, rooms.Loose), "selected %q", selected)
		assert.Equal(t, all, Filter(all, selected, rooms.Exact), "selected %q", selected)
	}
}

func TestFilterByRoom(t *testing.T) {
	all := Aggregate(testSources(), rooms.Loose)

	kitchen := Filter(all, "kitchen", rooms.Loose)
	assert.Len(t, kitchen, 5)
	for _, a := range kitchen {
		assert.Equal(t, "Kitchen", a.RoomName)
	}

	byID := Filter(all, "r-bath", rooms.Loose)
	assert.Len(t, byID, 2)

	byTag := Filter([]domain.RoomAsset{{RoomName: General, Tags: []string{"Den"}}}, "Den", rooms.Exact)
	assert.Len(t, byTag, 1)
}

func TestFilterOverMatchesLoosely(t *testing.T) {
	assets := []domain.RoomAsset{
		{RoomName: "Bathroom 2", Type: domain.AssetDesign},
		{RoomName: "Bath", Type: domain.AssetDesign},
		{RoomName: "Kitchen", Type: domain.AssetDesign},
	}

	assert.Len(t, Filter(assets, "Bath", rooms.Loose), 2)
	assert.Len(t, Filter(assets, "Bathroom 2", rooms.Loose), 2)
	assert.Len(t, Filter(assets, "Bath", rooms.Exact), 1)
}

func TestGroupCompleteness(t *testing.T) {
	all := Aggregate(testSources(), rooms.Loose)
	for _, selected := range []string{All, "Kitchen", "bath", "nothing"} {
		filtered := Filter(all, selected, rooms.Loose)
		g := Group(filtered)
		assert.Equal(t, len(filtered), g.Total()+g.Dropped, "selected %q", selected)
	}

	g := Group(all)
	assert.Len(t, g.Design, 6)
	assert.Len(t, g.BeforePhoto, 2)
	assert.Len(t, g.Inspiration, 2)
	assert.Equal(t, 1, g.Dropped)
}

func TestGroupEmpty(t *testing.T) {
	g := Group(nil)
	assert.NotNil(t, g.Design)
	assert.Zero(t, g.Total())
}
