package domain

import "time"

type Property struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Address      string    `json:"address"`
	BlueprintURL string    `json:"blueprintUrl,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

type Project struct {
	ID         string    `json:"id"`
	PropertyID string    `json:"propertyId"`
	Title      string    `json:"title"`
	Version    int64     `json:"version"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

type Room struct {
	ID         string    `json:"id"`
	PropertyID string    `json:"propertyId"`
	Name       string    `json:"name"`
	CreatedAt  time.Time `json:"createdAt"`
}

// RoomDesign holds the per-room design preference arrays of a project.
type RoomDesign struct {
	ProjectID         string   `json:"projectId"`
	RoomID            string   `json:"roomId"`
	Renderings        []string `json:"renderings"`
	Drawings          []string `json:"drawings"`
	InspirationImages []string `json:"inspirationImages"`
}

// BeforePhoto documents a room's pre-renovation state. RoomName is free text
// as entered at upload time.
type BeforePhoto struct {
	ID         int64     `json:"id"`
	ProjectID  string    `json:"projectId"`
	RoomName   string    `json:"roomName"`
	StorageKey string    `json:"storageKey"`
	MimeType   string    `json:"mimeType"`
	Tags       []string  `json:"tags"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// DesignAsset is an entry of the generic tagged design-asset list kept in the
// project's design preferences.
type DesignAsset struct {
	Name   string   `json:"name"`
	URL    string   `json:"url"`
	Type   string   `json:"type,omitempty"`
	Tags   []string `json:"tags"`
	RoomID string   `json:"roomId,omitempty"`
}

type AssetType string

const (
	AssetDesign      AssetType = "design"
	AssetBeforePhoto AssetType = "before-photo"
	AssetInspiration AssetType = "inspiration"
)

// RoomAsset is assembled at read time and never stored. It has no identity
// beyond its URL.
type RoomAsset struct {
	Name     string    `json:"name"`
	RoomName string    `json:"roomName"`
	URL      string    `json:"url"`
	Type     AssetType `json:"type"`
	Tags     []string  `json:"tags"`
	RoomID   string    `json:"roomId,omitempty"`
}

type TagMetadata struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	Category string `json:"category"`
	Color    string `json:"color,omitempty"`
}
