// Package tags merges tag display metadata from the default catalogue,
// per-project overrides and the property's current rooms.
package tags

import (
	"strings"

	"github.com/vbonduro/renovo/internal/domain"
	"github.com/vbonduro/renovo/internal/rooms"
)

const (
	RoomNamespace = "room"
	RoomCategory  = "room"
)

// Catalogue maps a tag id to its display metadata.
type Catalogue map[string]domain.TagMetadata

// Lookup never fails: unknown ids get a placeholder labelled with the raw id.
func (c Catalogue) Lookup(id string) domain.TagMetadata {
	if meta, ok := c[id]; ok {
		return meta
	}
	return domain.TagMetadata{ID: id, Label: id}
}

// RoomTagID returns the generated tag id for a room name, e.g. "room:living-room".
func RoomTagID(roomName string) string {
	return RoomNamespace + ":" + rooms.Slug(roomName)
}

// Split separates a namespaced tag into namespace and value. Tags without a
// namespace return an empty namespace.
func Split(tag string) (namespace, value string) {
	ns, v, ok := strings.Cut(tag, ":")
	if !ok {
		return "", tag
	}
	return ns, v
}

// Merge builds a fresh catalogue from defaults, then overrides, then one
// generated tag per room. Later sources replace earlier entries with the same
// id, so room tags always reflect the current room list. Inputs are not
// modified.
func Merge(defaults, overrides Catalogue, roomList []domain.Room, roomColor string) Catalogue {
	out := make(Catalogue, len(defaults)+len(overrides)+len(roomList))
	for id, meta := range defaults {
		out[id] = withID(id, meta)
	}
	for id, meta := range overrides {
		out[id] = withID(id, meta)
	}
	for _, r := range roomList {
		id := RoomTagID(r.Name)
		out[id] = domain.TagMetadata{
			ID:       id,
			Label:    rooms.NormalizeRoomName(r.Name),
			Category: RoomCategory,
			Color:    roomColor,
		}
	}
	return out
}

func withID(id string, meta domain.TagMetadata) domain.TagMetadata {
	if meta.ID == "" {
		meta.ID = id
	}
	if meta.Label == "" {
		meta.Label = id
	}
	return meta
}

// Dedupe returns tags with duplicates and blanks removed, first occurrence
// order preserved.
func Dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, t := range in {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
