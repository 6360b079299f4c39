package service

import (
	"ImageHub/config"
	"ImageHub/internal/storage"
	"ImageHub/internal/task"
	"ImageHub/model"
	"ImageHub/utils"
	"errors"
	"fmt"
	"log"
	"path"
	"strings"
	"time"

	"golang.org/x/net/context"
)

const (
	maxCreateAttempts = 5
	fileIDLength      = 16
	deleteKeyLength   = 12
	presignExpiry     = 24 * time.Hour
)

// Stats summarizes a user's gallery.
type Stats struct {
	TotalImages int   `json:"total_images"`
	TotalBytes  int64 `json:"total_bytes"`
	LiveImages  int   `json:"live_images"`
}

// CreateImage stores an uploaded image: both blob locations first, then the
// metadata record. A failed metadata insert rolls the blobs back, so either
// all three exist afterwards or none do. Duplicate ids are regenerated up to
// maxCreateAttempts before giving up.
func CreateImage(ctx context.Context, userID uint64, userName, originalName string, data []byte, ttlHours int) (*model.Image, error) {
	if len(data) == 0 {
		return nil, ErrInvalidInput
	}
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(originalName), "."))
	if ext == "" || ttlHours < 0 {
		return nil, ErrInvalidInput
	}
	if ctx == nil {
		ctx = context.Background()
	}

	now := time.Now()
	var expiresAt *time.Time
	if ttlHours > 0 {
		t := now.Add(time.Duration(ttlHours) * time.Hour)
		expiresAt = &t
	}

	for attempt := 0; attempt < maxCreateAttempts; attempt++ {
		fileID := utils.HexToken(fileIDLength)
		deleteKey := utils.HexToken(deleteKeyLength)

		private, public, err := storage.Blobs.Put(ctx, userName, fileID, ext, data)
		if err != nil {
			return nil, err
		}

		img := &model.Image{
			FileID:        fileID,
			UserID:        userID,
			OriginalName:  originalName,
			PrivateObject: private.Object,
			PublicObject:  public.Object,
			Size:          int64(len(data)),
			Extension:     ext,
			DeleteKey:     deleteKey,
			TTLHours:      ttlHours,
			ExpiresAt:     expiresAt,
		}
		if err := insertImage(img); err != nil {
			rollbackBlobs(ctx, private, public)
			if errors.Is(err, ErrDuplicateFileID) || errors.Is(err, ErrDuplicateDeleteKey) {
				continue
			}
			return nil, err
		}
		invalidateGalleryCache(ctx, userID)
		return img, nil
	}
	return nil, ErrIDExhaustion
}

func rollbackBlobs(ctx context.Context, locations ...storage.Location) {
	for _, loc := range locations {
		if err := storage.Blobs.Remove(ctx, loc); err != nil {
			log.Printf("rollback blob %s/%s failed: %v", loc.Bucket, loc.Object, err)
		}
	}
}

// ListLiveImages returns a user's gallery newest-first, with expired records
// filtered out against the given clock. Filtering happens here so a slow
// sweep never shows stale content.
func ListLiveImages(userID uint64, now time.Time) ([]model.Image, error) {
	ctx := context.Background()
	images, ok := getGalleryFromCache(ctx, userID)
	if !ok {
		var err error
		images, err = listImagesByOwner(userID)
		if err != nil {
			return nil, err
		}
		setGalleryToCache(ctx, userID, images)
	}
	live := make([]model.Image, 0, len(images))
	for _, img := range images {
		if img.ExpiresAt != nil && !img.ExpiresAt.After(now) {
			continue
		}
		live = append(live, img)
	}
	return live, nil
}

// GetOwnedImage loads a record and checks ownership.
func GetOwnedImage(userID uint64, fileID string) (*model.Image, error) {
	img, err := getImageByFileID(fileID)
	if err != nil {
		return nil, err
	}
	if img.UserID != userID {
		return nil, ErrForbidden
	}
	return img, nil
}

// RecordView counts one view. Viewing a since-deleted locator is not an
// error; the missing blob yields the 404 upstream.
func RecordView(fileID string) error {
	err := incrementImageViews(fileID)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	return err
}

// DeleteImage removes an image on behalf of its owner: both blobs
// best-effort, then the metadata record. Metadata removal is the success
// criterion; an orphaned blob is tolerable, orphaned metadata would
// resurrect deleted content in listings.
func DeleteImage(userID uint64, fileID string) error {
	img, err := getImageByFileID(fileID)
	if err != nil {
		return err
	}
	if img.UserID != userID {
		return ErrForbidden
	}
	ctx := context.Background()
	removeImageBlobs(ctx, img)
	if err := deleteImageByFileID(fileID); err != nil {
		return err
	}
	invalidateGalleryCache(ctx, userID)
	return nil
}

// removeImageBlobs deletes both locations best-effort. Failures are logged
// and queued for a removal retry, never propagated.
func removeImageBlobs(ctx context.Context, img *model.Image) {
	locations := []storage.Location{
		storage.Blobs.PrivateLocationForObject(img.PrivateObject),
		storage.Blobs.PublicLocationForObject(img.PublicObject),
	}
	for _, loc := range locations {
		if err := storage.Blobs.Remove(ctx, loc); err != nil {
			log.Printf("remove blob %s/%s failed: %v", loc.Bucket, loc.Object, err)
			if qErr := task.EnqueueBlobCleanup(ctx, loc); qErr != nil {
				log.Printf("enqueue blob cleanup %s/%s failed: %v", loc.Bucket, loc.Object, qErr)
			}
		}
	}
}

// ReclaimExpired removes every image whose expiry has passed and returns the
// count reclaimed. One object's failure never aborts the rest of the batch,
// and losing a race with an explicit delete counts as someone else's
// successful removal.
func ReclaimExpired(now time.Time) (int, error) {
	expired, err := findExpiredImages(now)
	if err != nil {
		return 0, err
	}
	ctx := context.Background()
	reclaimed := 0
	owners := make(map[uint64]struct{})
	for i := range expired {
		img := &expired[i]
		removeImageBlobs(ctx, img)
		if err := deleteImageByFileID(img.FileID); err != nil {
			if !errors.Is(err, ErrNotFound) {
				log.Printf("reclaim %s failed: %v", img.FileID, err)
			}
			continue
		}
		reclaimed++
		owners[img.UserID] = struct{}{}
	}
	for userID := range owners {
		invalidateGalleryCache(ctx, userID)
	}
	return reclaimed, nil
}

// GalleryStats returns dashboard totals for a user.
func GalleryStats(userID uint64, now time.Time) (*Stats, error) {
	images, err := listImagesByOwner(userID)
	if err != nil {
		return nil, err
	}
	stats := &Stats{TotalImages: len(images)}
	for _, img := range images {
		stats.TotalBytes += img.Size
		if img.ExpiresAt == nil || img.ExpiresAt.After(now) {
			stats.LiveImages++
		}
	}
	return stats, nil
}

// MediaURL builds the shareable locator for an image: the configured media
// base plus the public filename, or a presigned URL when no base is set.
func MediaURL(ctx context.Context, img *model.Image) string {
	base := strings.TrimRight(config.AppConfig.MediaBaseURL, "/")
	if base != "" {
		return fmt.Sprintf("%s/%s", base, img.PublicObject)
	}
	loc := storage.Blobs.PublicLocationForObject(img.PublicObject)
	url, err := storage.Blobs.PresignedURL(ctx, loc, presignExpiry)
	if err != nil {
		log.Printf("presign %s failed: %v", img.PublicObject, err)
		return ""
	}
	return url
}
