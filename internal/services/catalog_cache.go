package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/bajrangpainters/backend/internal/models"
	"github.com/redis/go-redis/v9"
)

const catalogSnapshotKey = "catalog:snapshot"

// RedisCatalogCache keeps the last good catalog in Redis.
type RedisCatalogCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCatalogCache(client *redis.Client, ttl time.Duration) *RedisCatalogCache {
	return &RedisCatalogCache{client: client, ttl: ttl}
}

// Load returns nil without error when no snapshot is stored.
func (c *RedisCatalogCache) Load(ctx context.Context) ([]models.GalleryImage, error) {
	raw, err := c.client.Get(ctx, catalogSnapshotKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var images []models.GalleryImage
	if err := json.Unmarshal(raw, &images); err != nil {
		return nil, fmt.Errorf("corrupt catalog snapshot: %w", err)
	}
	return images, nil
}

func (c *RedisCatalogCache) Save(ctx context.Context, images []models.GalleryImage) error {
	raw, err := json.Marshal(images)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, catalogSnapshotKey, raw, c.ttl).Err()
}
