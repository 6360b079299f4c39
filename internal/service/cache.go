package service

import (
	"ImageHub/internal/repo"
	"ImageHub/model"
	"context"
	"encoding/json"
	"fmt"
	"time"
)

const galleryCacheTTL = 5 * time.Minute

func galleryCacheKey(userID uint64) string {
	return fmt.Sprintf("gallery:%d", userID)
}

// getGalleryFromCache reads the cached raw listing for a user. Expiry
// filtering always happens after the cache, against the caller's clock.
func getGalleryFromCache(ctx context.Context, userID uint64) ([]model.Image, bool) {
	if repo.Redis == nil {
		return nil, false
	}
	val, err := repo.Redis.Get(ctx, galleryCacheKey(userID)).Result()
	if err != nil {
		return nil, false
	}
	var images []model.Image
	if err := json.Unmarshal([]byte(val), &images); err != nil {
		return nil, false
	}
	return images, true
}

func setGalleryToCache(ctx context.Context, userID uint64, images []model.Image) {
	if repo.Redis == nil {
		return
	}
	data, err := json.Marshal(images)
	if err != nil {
		return
	}
	_ = repo.Redis.Set(ctx, galleryCacheKey(userID), string(data), galleryCacheTTL).Err()
}

func invalidateGalleryCache(ctx context.Context, userID uint64) {
	if repo.Redis == nil {
		return
	}
	_ = repo.Redis.Del(ctx, galleryCacheKey(userID)).Err()
}
