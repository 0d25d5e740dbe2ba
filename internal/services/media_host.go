package services

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/bajrangpainters/backend/internal/config"
	"github.com/bajrangpainters/backend/internal/models"
)

// MediaHost lists image records stored under a folder prefix.
type MediaHost interface {
	ListImages(ctx context.Context, prefix string, max int) ([]models.MediaRecord, error)
}

// NewMediaHost builds the host selected by MEDIA_HOST.
func NewMediaHost(cfg *config.Config) (MediaHost, error) {
	switch strings.ToLower(cfg.MediaHost) {
	case config.MediaHostCloudinary:
		return NewCloudinaryHost(cfg), nil
	case config.MediaHostS3:
		return NewS3Host(cfg)
	default:
		return nil, fmt.Errorf("unsupported media host %q", cfg.MediaHost)
	}
}

// folderOf returns the directory part of a slash separated id, or "" at the root.
func folderOf(id string) string {
	dir := path.Dir(id)
	if dir == "." || dir == "/" {
		return ""
	}
	return dir
}
