// Package preferences decodes and encodes a project's design preferences
// document. Known sections are typed; anything else is carried through
// untouched so a write never drops data another client stored.
package preferences

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/vbonduro/renovo/internal/domain"
	"github.com/vbonduro/renovo/internal/tags"
)

const (
	keyStatementOfWork   = "statement_of_work"
	keyTagsMetadata      = "tagsMetadata"
	keyInspirationImages = "inspirationImages"
	keyDesignAssets      = "designAssets"
)

type Document struct {
	StatementOfWork   domain.SOWData
	TagsMetadata      tags.Catalogue
	InspirationImages []string
	DesignAssets      []domain.DesignAsset

	// Extra holds sections this service does not interpret.
	Extra map[string]json.RawMessage
}

// New returns an empty document with every section default-filled.
func New() *Document {
	d := &Document{}
	d.fillDefaults()
	return d
}

// legacyLaborItem accepts both the current id-based and the older
// name-based work-area reference.
type legacyLaborItem struct {
	domain.LaborItem
	AffectedAreas []string `json:"affectedAreas"`
}

type legacySOW struct {
	WorkAreas     []domain.WorkArea     `json:"workAreas"`
	LaborItems    []legacyLaborItem     `json:"laborItems"`
	MaterialItems []domain.MaterialItem `json:"materialItems"`
}

type tagsSection struct {
	Tags tags.Catalogue `json:"tags"`
}

// Decode parses raw into a Document. Empty input is an empty document.
// Labor items saved with name-based affectedAreas are migrated to ids by
// case-insensitive name lookup among the document's work areas; names with
// no matching area are dropped.
func Decode(raw []byte) (*Document, error) {
	d := &Document{Extra: map[string]json.RawMessage{}}
	if len(bytes.TrimSpace(raw)) == 0 || string(bytes.TrimSpace(raw)) == "null" {
		d.fillDefaults()
		return d, nil
	}

	var sections map[string]json.RawMessage
	if err := json.Unmarshal(raw, &sections); err != nil {
		return nil, fmt.Errorf("failed to decode design preferences: %w", err)
	}

	for key, value := range sections {
		var err error
		switch key {
		case keyStatementOfWork:
			err = d.decodeSOW(value)
		case keyTagsMetadata:
			var ts tagsSection
			err = json.Unmarshal(value, &ts)
			d.TagsMetadata = ts.Tags
		case keyInspirationImages:
			err = json.Unmarshal(value, &d.InspirationImages)
		case keyDesignAssets:
			err = json.Unmarshal(value, &d.DesignAssets)
		default:
			d.Extra[key] = value
		}
		if err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", key, err)
		}
	}

	d.fillDefaults()
	return d, nil
}

func (d *Document) decodeSOW(raw json.RawMessage) error {
	var legacy legacySOW
	if err := json.Unmarshal(raw, &legacy); err != nil {
		return err
	}

	// a legacy name cannot tell duplicate-named areas apart, so it refers to all of them
	idsByName := make(map[string][]string, len(legacy.WorkAreas))
	for _, w := range legacy.WorkAreas {
		key := strings.ToLower(w.Name)
		idsByName[key] = append(idsByName[key], w.ID)
	}

	sow := domain.SOWData{
		WorkAreas:     legacy.WorkAreas,
		MaterialItems: legacy.MaterialItems,
	}
	for _, l := range legacy.LaborItems {
		item := l.LaborItem
		if len(item.AffectedAreaIDs) == 0 && len(l.AffectedAreas) > 0 {
			seen := make(map[string]bool)
			for _, name := range l.AffectedAreas {
				for _, id := range idsByName[strings.ToLower(name)] {
					if !seen[id] {
						seen[id] = true
						item.AffectedAreaIDs = append(item.AffectedAreaIDs, id)
					}
				}
			}
		}
		sow.LaborItems = append(sow.LaborItems, item)
	}
	d.StatementOfWork = sow
	return nil
}

func (d *Document) fillDefaults() {
	d.StatementOfWork = d.StatementOfWork.Clone()
	if d.TagsMetadata == nil {
		d.TagsMetadata = tags.Catalogue{}
	}
	if d.InspirationImages == nil {
		d.InspirationImages = []string{}
	}
	if d.DesignAssets == nil {
		d.DesignAssets = []domain.DesignAsset{}
	}
	for i := range d.DesignAssets {
		if d.DesignAssets[i].Tags == nil {
			d.DesignAssets[i].Tags = []string{}
		}
	}
	if d.Extra == nil {
		d.Extra = map[string]json.RawMessage{}
	}
}

// Encode writes the full merged document: typed sections plus Extra.
func (d *Document) Encode() ([]byte, error) {
	d.fillDefaults()
	out := make(map[string]any, len(d.Extra)+4)
	for k, v := range d.Extra {
		out[k] = v
	}
	out[keyStatementOfWork] = d.StatementOfWork
	out[keyTagsMetadata] = tagsSection{Tags: d.TagsMetadata}
	out[keyInspirationImages] = d.InspirationImages
	out[keyDesignAssets] = d.DesignAssets

	data, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("failed to encode design preferences: %w", err)
	}
	return data, nil
}
