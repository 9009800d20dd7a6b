package tags

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vbonduro/renovo/internal/domain"
)

func TestMergePrecedence(t *testing.T) {
	defaults := Catalogue{
		"type:kitchen": {Label: "Kitchen", Category: "type", Color: "#111"},
		"style:modern": {Label: "Modern", Category: "style"},
		"room:bedroom": {Label: "Old Bedroom", Category: "room"},
	}
	overrides := Catalogue{
		"type:kitchen": {Label: "Chef Kitchen", Category: "type", Color: "#222"},
		"custom:foo":   {Label: "Foo"},
		"room:bedroom": {Label: "Stale Bedroom", Category: "room", Color: "#333"},
	}
	roomList := []domain.Room{{ID: "r1", Name: "bedroom"}, {ID: "r2", Name: "living_room"}}

	got := Merge(defaults, overrides, roomList, "#6366f1")

	assert.Equal(t, "Chef Kitchen", got["type:kitchen"].Label)
	assert.Equal(t, "#222", got["type:kitchen"].Color)
	assert.Equal(t, "Modern", got["style:modern"].Label)
	assert.Equal(t, "custom:foo", got["custom:foo"].ID)
	assert.Equal(t, domain.TagMetadata{ID: "room:bedroom", Label: "Bedroom", Category: "room", Color: "#6366f1"}, got["room:bedroom"])
	assert.Equal(t, "Living Room", got["room:living-room"].Label)
	assert.Len(t, got, 5)

	// inputs untouched
	assert.Equal(t, "Kitchen", defaults["type:kitchen"].Label)
	assert.Len(t, overrides, 3)
}

func TestMergeRecomputesFromRooms(t *testing.T) {
	first := Merge(nil, nil, []domain.Room{{Name: "Den"}}, "")
	second := Merge(nil, nil, []domain.Room{{Name: "Office"}}, "")

	assert.Contains(t, first, "room:den")
	assert.NotContains(t, second, "room:den")
	assert.Contains(t, second, "room:office")
}

func TestLookupUnknown(t *testing.T) {
	var c Catalogue
	got := c.Lookup("custom:mystery")
	assert.Equal(t, domain.TagMetadata{ID: "custom:mystery", Label: "custom:mystery"}, got)
}

func TestSplit(t *testing.T) {
	ns, v := Split("type:kitchen")
	assert.Equal(t, "type", ns)
	assert.Equal(t, "kitchen", v)

	ns, v = Split("plain")
	assert.Empty(t, ns)
	assert.Equal(t, "plain", v)
}

func TestRoomTagID(t *testing.T) {
	assert.Equal(t, "room:living-room", RoomTagID("Living Room"))
	assert.Equal(t, "room:living-room", RoomTagID("living_room"))
}

func TestDedupe(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, Dedupe([]string{"a", " ", "b", "a", "b "}))
	assert.Empty(t, Dedupe(nil))
}
