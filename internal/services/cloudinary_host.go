package services

import (
	"context"
	"fmt"
	"strconv"

	"github.com/bajrangpainters/backend/internal/config"
	"github.com/bajrangpainters/backend/internal/models"
	"github.com/go-resty/resty/v2"
)

// Cloudinary caps a single listing page at 500 resources.
const cloudinaryMaxPage = 500

type cloudinaryResource struct {
	AssetID     string `json:"asset_id"`
	PublicID    string `json:"public_id"`
	Format      string `json:"format"`
	Version     int64  `json:"version"`
	CreatedAt   string `json:"created_at"`
	Bytes       int64  `json:"bytes"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	Folder      string `json:"folder"`
	AssetFolder string `json:"asset_folder"`
	SecureURL   string `json:"secure_url"`
}

type cloudinaryPage struct {
	Resources  []cloudinaryResource `json:"resources"`
	NextCursor string               `json:"next_cursor"`
}

type cloudinaryError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// CloudinaryHost lists uploaded images through the Cloudinary Admin API.
type CloudinaryHost struct {
	client    *resty.Client
	cloudName string
}

func NewCloudinaryHost(cfg *config.Config) *CloudinaryHost {
	client := resty.New().
		SetBaseURL(cfg.CloudinaryBaseURL).
		SetBasicAuth(cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret).
		SetTimeout(cfg.CloudinaryTimeout).
		SetHeader("Accept", "application/json")

	return &CloudinaryHost{
		client:    client,
		cloudName: cfg.CloudinaryCloudName,
	}
}

// ListImages returns up to max images whose public id starts with prefix,
// following next_cursor until the cap is reached or the listing ends.
func (h *CloudinaryHost) ListImages(ctx context.Context, prefix string, max int) ([]models.MediaRecord, error) {
	if h.cloudName == "" {
		return nil, fmt.Errorf("cloudinary cloud name not configured")
	}

	records := []models.MediaRecord{}
	cursor := ""
	for len(records) < max {
		pageSize := max - len(records)
		if pageSize > cloudinaryMaxPage {
			pageSize = cloudinaryMaxPage
		}

		query := map[string]string{
			"type":        "upload",
			"prefix":      prefix,
			"max_results": strconv.Itoa(pageSize),
		}
		if cursor != "" {
			query["next_cursor"] = cursor
		}

		var page cloudinaryPage
		var apiErr cloudinaryError
		resp, err := h.client.R().
			SetContext(ctx).
			SetPathParam("cloud", h.cloudName).
			SetQueryParams(query).
			SetResult(&page).
			SetError(&apiErr).
			Get("/v1_1/{cloud}/resources/image/upload")
		if err != nil {
			return nil, fmt.Errorf("cloudinary request failed: %w", err)
		}
		if resp.IsError() {
			if apiErr.Error.Message != "" {
				return nil, fmt.Errorf("cloudinary returned %d: %s", resp.StatusCode(), apiErr.Error.Message)
			}
			return nil, fmt.Errorf("cloudinary returned %d", resp.StatusCode())
		}

		for _, r := range page.Resources {
			records = append(records, r.toRecord())
		}
		if page.NextCursor == "" || len(page.Resources) == 0 {
			break
		}
		cursor = page.NextCursor
	}

	if len(records) > max {
		records = records[:max]
	}
	return records, nil
}

func (r cloudinaryResource) toRecord() models.MediaRecord {
	folder := r.Folder
	if folder == "" {
		folder = r.AssetFolder
	}
	if folder == "" {
		folder = folderOf(r.PublicID)
	}
	return models.MediaRecord{
		AssetID:   r.AssetID,
		PublicID:  r.PublicID,
		Folder:    folder,
		Format:    r.Format,
		SecureURL: r.SecureURL,
		Width:     r.Width,
		Height:    r.Height,
		Bytes:     r.Bytes,
		CreatedAt: r.CreatedAt,
	}
}
