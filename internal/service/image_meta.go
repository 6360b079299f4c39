package service

import (
	"ImageHub/internal/repo"
	"ImageHub/model"
	"errors"
	"strings"
	"time"

	mysqlDriver "github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

// insertImage creates the metadata record. Unique-index violations on the
// file id and delete key columns are surfaced as distinct errors so the
// caller can regenerate and retry.
func insertImage(img *model.Image) error {
	if err := repo.Db.Create(img).Error; err != nil {
		var mysqlErr *mysqlDriver.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
			if strings.Contains(mysqlErr.Message, "delete_key") {
				return ErrDuplicateDeleteKey
			}
			return ErrDuplicateFileID
		}
		return err
	}
	return nil
}

// listImagesByOwner returns all of a user's records newest-first, including
// stale (expired, not yet reclaimed) ones. Staleness filtering belongs to
// the orchestrator.
func listImagesByOwner(userID uint64) ([]model.Image, error) {
	var images []model.Image
	err := repo.Db.
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&images).Error
	return images, err
}

// findExpiredImages returns every record whose expiry has passed.
func findExpiredImages(now time.Time) ([]model.Image, error) {
	var images []model.Image
	err := repo.Db.
		Where("expires_at IS NOT NULL AND expires_at <= ?", now).
		Find(&images).Error
	return images, err
}

func getImageByFileID(fileID string) (*model.Image, error) {
	var img model.Image
	if err := repo.Db.Where("file_id = ?", fileID).First(&img).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &img, nil
}

// deleteImageByFileID removes the record. Deleting an already-absent record
// reports ErrNotFound; a racing delete and reclaim thus produce exactly one
// logical removal.
func deleteImageByFileID(fileID string) error {
	res := repo.Db.Where("file_id = ?", fileID).Delete(&model.Image{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// incrementImageViews adds one view inside the database so concurrent views
// never lose updates.
func incrementImageViews(fileID string) error {
	res := repo.Db.Model(&model.Image{}).
		Where("file_id = ?", fileID).
		UpdateColumn("views", gorm.Expr("views + 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
