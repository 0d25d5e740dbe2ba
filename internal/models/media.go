package models

import "time"

// MediaRecord is an image as returned by the media host. Read-only.
type MediaRecord struct {
	AssetID   string `json:"asset_id"`
	PublicID  string `json:"public_id"`
	Folder    string `json:"folder"`
	Format    string `json:"format"`
	SecureURL string `json:"secure_url"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Bytes     int64  `json:"bytes,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}

// GalleryImage is a MediaRecord normalized for display.
type GalleryImage struct {
	MediaRecord
	Category string `json:"category"`
	Caption  string `json:"caption"`
	Alt      string `json:"alt"`
}

// CatalogState is a snapshot of the image catalog. IsLoading and Error are
// never both set once a refresh cycle has finished.
type CatalogState struct {
	Images          []GalleryImage `json:"images"`
	Categories      []string       `json:"categories"`
	IsLoading       bool           `json:"is_loading"`
	Error           *string        `json:"error"`
	LastRefreshedAt *time.Time     `json:"last_refreshed_at,omitempty"`
}

const CategoryAll = "all"
