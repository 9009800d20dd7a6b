package domain

type WorkAreaType string

const (
	WorkAreaPrimary   WorkAreaType = "primary"
	WorkAreaSecondary WorkAreaType = "secondary"
)

type WorkArea struct {
	ID    string       `json:"id"`
	Name  string       `json:"name"`
	Type  WorkAreaType `json:"type"`
	Notes string       `json:"notes"`
}

// LaborItem references the work areas it touches by id. Names are resolved
// when rendering so a renamed area never leaves a stale label behind.
type LaborItem struct {
	ID              string   `json:"id"`
	Category        string   `json:"category"`
	Subcategory     string   `json:"subcategory"`
	AffectedAreaIDs []string `json:"affectedAreaIds"`
	Notes           string   `json:"notes"`
}

type MaterialItem struct {
	ID          string            `json:"id"`
	Category    string            `json:"category"`
	Subcategory string            `json:"subcategory"`
	Quantity    float64           `json:"quantity"`
	Unit        string            `json:"unit"`
	Details     map[string]string `json:"details"`
	Notes       string            `json:"notes"`
}

// SOWData is the statement-of-work aggregate saved wholesale into a project's
// design preferences.
type SOWData struct {
	WorkAreas     []WorkArea     `json:"workAreas"`
	LaborItems    []LaborItem    `json:"laborItems"`
	MaterialItems []MaterialItem `json:"materialItems"`
}

// Patch types carry the fields to shallow-merge; nil leaves a field unchanged.

type WorkAreaPatch struct {
	Name  *string       `json:"name,omitempty"`
	Type  *WorkAreaType `json:"type,omitempty"`
	Notes *string       `json:"notes,omitempty"`
}

type LaborItemPatch struct {
	Category        *string   `json:"category,omitempty"`
	Subcategory     *string   `json:"subcategory,omitempty"`
	AffectedAreaIDs *[]string `json:"affectedAreaIds,omitempty"`
	Notes           *string   `json:"notes,omitempty"`
}

type MaterialItemPatch struct {
	Category    *string            `json:"category,omitempty"`
	Subcategory *string            `json:"subcategory,omitempty"`
	Quantity    *float64           `json:"quantity,omitempty"`
	Unit        *string            `json:"unit,omitempty"`
	Details     *map[string]string `json:"details,omitempty"`
	Notes       *string            `json:"notes,omitempty"`
}

func (p WorkAreaPatch) Apply(w WorkArea) WorkArea {
	if p.Name != nil {
		w.Name = *p.Name
	}
	if p.Type != nil {
		w.Type = *p.Type
	}
	if p.Notes != nil {
		w.Notes = *p.Notes
	}
	return w
}

func (p LaborItemPatch) Apply(l LaborItem) LaborItem {
	if p.Category != nil {
		l.Category = *p.Category
	}
	if p.Subcategory != nil {
		l.Subcategory = *p.Subcategory
	}
	if p.AffectedAreaIDs != nil {
		l.AffectedAreaIDs = append([]string(nil), (*p.AffectedAreaIDs)...)
	}
	if p.Notes != nil {
		l.Notes = *p.Notes
	}
	return l
}

func (p MaterialItemPatch) Apply(m MaterialItem) MaterialItem {
	if p.Category != nil {
		m.Category = *p.Category
	}
	if p.Subcategory != nil {
		m.Subcategory = *p.Subcategory
	}
	if p.Quantity != nil {
		m.Quantity = *p.Quantity
	}
	if p.Unit != nil {
		m.Unit = *p.Unit
	}
	if p.Details != nil {
		m.Details = cloneDetails(*p.Details)
	}
	if p.Notes != nil {
		m.Notes = *p.Notes
	}
	return m
}

// Clone returns a deep copy with nil collections replaced by empty ones.
func (d SOWData) Clone() SOWData {
	out := SOWData{
		WorkAreas:     make([]WorkArea, len(d.WorkAreas)),
		LaborItems:    make([]LaborItem, 0, len(d.LaborItems)),
		MaterialItems: make([]MaterialItem, 0, len(d.MaterialItems)),
	}
	copy(out.WorkAreas, d.WorkAreas)
	for _, l := range d.LaborItems {
		l.AffectedAreaIDs = append([]string{}, l.AffectedAreaIDs...)
		out.LaborItems = append(out.LaborItems, l)
	}
	for _, m := range d.MaterialItems {
		m.Details = cloneDetails(m.Details)
		out.MaterialItems = append(out.MaterialItems, m)
	}
	return out
}

func cloneDetails(src map[string]string) map[string]string {
	dst := make(map[string]string, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
