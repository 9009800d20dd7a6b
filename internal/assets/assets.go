// Package assets merges design assets from their heterogeneous sources into
// one flat list and filters and groups it for display.
package assets

import (
	"fmt"
	"strings"

	"github.com/vbonduro/renovo/internal/domain"
	"github.com/vbonduro/renovo/internal/rooms"
	"github.com/vbonduro/renovo/internal/tags"
)

// All is the room selection that passes every asset through.
const All = "all"

// General is the room name given to assets that are not tied to a room.
const General = "General"

// BeforePhoto is a before-photo reference keyed by the free-text room name it
// was uploaded under.
type BeforePhoto struct {
	RoomName string
	URL      string
	Tags     []string
}

// Sources holds every input the aggregation reads. Each source contributes
// independently.
type Sources struct {
	Rooms             []domain.Room
	RoomDesigns       []domain.RoomDesign
	BeforePhotos      []BeforePhoto
	InspirationImages []string
	DesignAssets      []domain.DesignAsset
	BlueprintURL      string
}

// Aggregate flattens sources into RoomAssets. Identical URLs coming from
// different sources are kept as separate entries.
func Aggregate(src Sources, policy rooms.MatchPolicy) []domain.RoomAsset {
	byID := make(map[string]domain.Room, len(src.Rooms))
	for _, r := range src.Rooms {
		byID[r.ID] = r
	}

	var out []domain.RoomAsset

	for _, d := range src.RoomDesigns {
		roomName := rooms.Unknown
		if r, ok := byID[d.RoomID]; ok {
			roomName = rooms.NormalizeRoomName(r.Name)
		}
		roomTag := tags.RoomTagID(roomName)
		for i, url := range d.Renderings {
			out = append(out, domain.RoomAsset{
				Name:     fmt.Sprintf("%s Rendering %d", roomName, i+1),
				RoomName: roomName,
				URL:      url,
				Type:     domain.AssetDesign,
				Tags:     []string{"rendering", roomTag},
				RoomID:   d.RoomID,
			})
		}
		for i, url := range d.Drawings {
			out = append(out, domain.RoomAsset{
				Name:     fmt.Sprintf("%s Drawing %d", roomName, i+1),
				RoomName: roomName,
				URL:      url,
				Type:     domain.AssetDesign,
				Tags:     []string{"drawing", roomTag},
				RoomID:   d.RoomID,
			})
		}
		for i, url := range d.InspirationImages {
			out = append(out, domain.RoomAsset{
				Name:     fmt.Sprintf("%s Inspiration %d", roomName, i+1),
				RoomName: roomName,
				URL:      url,
				Type:     domain.AssetInspiration,
				Tags:     []string{"inspiration", roomTag},
				RoomID:   d.RoomID,
			})
		}
	}

	counts := make(map[string]int)
	for _, p := range src.BeforePhotos {
		roomName := rooms.NormalizeRoomName(p.RoomName)
		asset := domain.RoomAsset{
			RoomName: roomName,
			URL:      p.URL,
			Type:     domain.AssetBeforePhoto,
		}
		if match := policy.BestMatch(roomName, src.Rooms); match != nil {
			asset.RoomID = match.ID
		}
		counts[roomName]++
		asset.Name = fmt.Sprintf("%s Before Photo %d", roomName, counts[roomName])
		asset.Tags = tags.Dedupe(append([]string{"before-photo", tags.RoomTagID(roomName)}, p.Tags...))
		out = append(out, asset)
	}

	for i, url := range src.InspirationImages {
		out = append(out, domain.RoomAsset{
			Name:     fmt.Sprintf("Inspiration %d", i+1),
			RoomName: General,
			URL:      url,
			Type:     domain.AssetInspiration,
			Tags:     []string{"inspiration"},
		})
	}

	for _, a := range src.DesignAssets {
		asset := domain.RoomAsset{
			Name:     a.Name,
			RoomName: General,
			URL:      a.URL,
			Type:     domain.AssetType(a.Type),
			Tags:     tags.Dedupe(a.Tags),
			RoomID:   a.RoomID,
		}
		if asset.Type == "" {
			asset.Type = domain.AssetDesign
		}
		if r, ok := byID[a.RoomID]; ok {
			asset.RoomName = rooms.NormalizeRoomName(r.Name)
		} else if name := roomFromTags(a.Tags); name != "" {
			asset.RoomName = rooms.NormalizeRoomName(name)
		}
		out = append(out, asset)
	}

	if src.BlueprintURL != "" {
		out = append(out, domain.RoomAsset{
			Name:     "Property Blueprint",
			RoomName: General,
			URL:      src.BlueprintURL,
			Type:     domain.AssetDesign,
			Tags:     []string{"blueprint"},
		})
	}

	return out
}

func roomFromTags(tagList []string) string {
	for _, t := range tagList {
		if ns, v := tags.Split(t); ns == tags.RoomNamespace && v != "" {
			return strings.ReplaceAll(v, "-", " ")
		}
	}
	return ""
}

// Filter returns the assets shown under selected. "all", or a blank
// selection, returns assets unchanged. Otherwise an asset is kept when its room name equals selected
// case-insensitively, its room id equals selected, one of its tags equals
// selected or selected's room tag, or (loose policy) the room names contain
// one another. The loose rule can over-match ("Bath" keeps "Bathroom 2").
func Filter(assets []domain.RoomAsset, selected string, policy rooms.MatchPolicy) []domain.RoomAsset {
	selected = strings.TrimSpace(selected)
	if selected == "" || selected == All {
		return assets
	}
	roomTag := tags.RoomTagID(selected)
	out := make([]domain.RoomAsset, 0, len(assets))
	for _, a := range assets {
		if matchesRoom(a, selected, roomTag, policy) {
			out = append(out, a)
		}
	}
	return out
}

func matchesRoom(a domain.RoomAsset, selected, roomTag string, policy rooms.MatchPolicy) bool {
	if strings.EqualFold(a.RoomName, selected) {
		return true
	}
	if a.RoomID != "" && a.RoomID == selected {
		return true
	}
	for _, t := range a.Tags {
		if t == selected || t == roomTag {
			return true
		}
	}
	return policy.Matches(a.RoomName, selected)
}

// Groups partitions assets by type. Dropped counts assets of any other type.
type Groups struct {
	Design      []domain.RoomAsset `json:"design"`
	BeforePhoto []domain.RoomAsset `json:"before-photo"`
	Inspiration []domain.RoomAsset `json:"inspiration"`
	Dropped     int                `json:"dropped"`
}

func Group(assets []domain.RoomAsset) Groups {
	g := Groups{
		Design:      []domain.RoomAsset{},
		BeforePhoto: []domain.RoomAsset{},
		Inspiration: []domain.RoomAsset{},
	}
	for _, a := range assets {
		switch a.Type {
		case domain.AssetDesign:
			g.Design = append(g.Design, a)
		case domain.AssetBeforePhoto:
			g.BeforePhoto = append(g.BeforePhoto, a)
		case domain.AssetInspiration:
			g.Inspiration = append(g.Inspiration, a)
		default:
			g.Dropped++
		}
	}
	return g
}

// Total is the number of assets across all three groups.
func (g Groups) Total() int {
	return len(g.Design) + len(g.BeforePhoto) + len(g.Inspiration)
}
