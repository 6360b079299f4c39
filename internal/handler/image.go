package handler

import (
	"ImageHub/internal/dto"
	"ImageHub/internal/service"
	"ImageHub/internal/storage"
	"ImageHub/utils"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// allowedExtensions mirrors the upload form's accepted image types.
var allowedExtensions = map[string]bool{
	"png":  true,
	"jpg":  true,
	"jpeg": true,
	"gif":  true,
	"bmp":  true,
	"webp": true,
}

// allowedTTLHours is the fixed auto-delete option set, in hours. 0 is never.
var allowedTTLHours = map[int]bool{
	0:   true,
	1:   true,
	6:   true,
	12:  true,
	24:  true,
	72:  true,
	168: true,
}

// Upload stores one or more images with an optional TTL.
func Upload(c *gin.Context) {
	userID := c.MustGet("user_id").(uint64)
	userName := c.MustGet("username").(string)

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid multipart form: " + err.Error()})
		return
	}
	files := form.File["files"]
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no files uploaded"})
		return
	}

	ttlHours := 0
	if raw := strings.TrimSpace(c.PostForm("ttl_hours")); raw != "" {
		ttlHours, err = strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid ttl_hours"})
			return
		}
	}
	if !allowedTTLHours[ttlHours] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ttl_hours must be one of 0, 1, 6, 12, 24, 72, 168"})
		return
	}

	resp := dto.UploadResponse{}
	for _, fileHeader := range files {
		ext := strings.ToLower(strings.TrimPrefix(path.Ext(fileHeader.Filename), "."))
		if !allowedExtensions[ext] {
			resp.Failed = append(resp.Failed, dto.UploadError{
				OriginalName: fileHeader.Filename,
				Reason:       "unsupported file type",
			})
			continue
		}
		src, err := fileHeader.Open()
		if err != nil {
			resp.Failed = append(resp.Failed, dto.UploadError{
				OriginalName: fileHeader.Filename,
				Reason:       err.Error(),
			})
			continue
		}
		data, err := io.ReadAll(src)
		_ = src.Close()
		if err != nil {
			resp.Failed = append(resp.Failed, dto.UploadError{
				OriginalName: fileHeader.Filename,
				Reason:       err.Error(),
			})
			continue
		}

		img, err := service.CreateImage(c.Request.Context(), userID, userName, fileHeader.Filename, data, ttlHours)
		if err != nil {
			resp.Failed = append(resp.Failed, dto.UploadError{
				OriginalName: fileHeader.Filename,
				Reason:       err.Error(),
			})
			continue
		}
		resp.Uploaded = append(resp.Uploaded, dto.UploadResult{
			FileID:       img.FileID,
			OriginalName: img.OriginalName,
			Size:         img.Size,
			URL:          service.MediaURL(c.Request.Context(), img),
			DeleteKey:    img.DeleteKey,
			ExpiresAt:    img.ExpiresAt,
		})
	}

	if len(resp.Uploaded) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "all uploads failed", "failed": resp.Failed})
		return
	}
	utils.Success(c, resp)
}

// Gallery returns the user's live images, newest first.
func Gallery(c *gin.Context) {
	userID := c.MustGet("user_id").(uint64)
	now := time.Now()
	images, err := service.ListLiveImages(userID, now)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get gallery failed: " + err.Error()})
		return
	}

	items := make([]dto.GalleryItem, 0, len(images))
	for i := range images {
		img := &images[i]
		items = append(items, dto.GalleryItem{
			FileID:        img.FileID,
			OriginalName:  img.OriginalName,
			Size:          img.Size,
			SizeHuman:     utils.FormatFileSize(img.Size),
			Extension:     img.Extension,
			Views:         img.Views,
			CreatedAt:     img.CreatedAt,
			ExpiresAt:     img.ExpiresAt,
			TimeRemaining: utils.FormatTimeRemaining(img.ExpiresAt, now),
			URL:           service.MediaURL(c.Request.Context(), img),
		})
	}
	utils.Success(c, gin.H{"images": items, "total": len(items)})
}

// Stats returns dashboard totals for the user.
func Stats(c *gin.Context) {
	userID := c.MustGet("user_id").(uint64)
	stats, err := service.GalleryStats(userID, time.Now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get stats failed: " + err.Error()})
		return
	}
	utils.Success(c, dto.StatsResponse{
		TotalImages:     stats.TotalImages,
		TotalBytes:      stats.TotalBytes,
		TotalBytesHuman: utils.FormatFileSize(stats.TotalBytes),
		LiveImages:      stats.LiveImages,
	})
}

// Delete removes one of the user's images.
func Delete(c *gin.Context) {
	var req dto.DeleteImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}
	userID := c.MustGet("user_id").(uint64)
	if err := service.DeleteImage(userID, req.FileID); err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "image not found"})
		case errors.Is(err, service.ErrForbidden):
			c.JSON(http.StatusForbidden, gin.H{"error": "not your image"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed: " + err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "success"})
}

// Download streams the user's own image with its original filename.
func Download(c *gin.Context) {
	userID := c.MustGet("user_id").(uint64)
	fileID := c.Param("fileID")

	img, err := service.GetOwnedImage(userID, fileID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "image not found"})
			return
		}
		if errors.Is(err, service.ErrForbidden) {
			c.JSON(http.StatusForbidden, gin.H{"error": "not your image"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if err := service.RecordView(fileID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	loc := storage.Blobs.PrivateLocationForObject(img.PrivateObject)
	data, err := storage.Blobs.Read(c.Request.Context(), loc)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "image not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	name := utils.SanitizeHeaderFilename(img.OriginalName)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", name))
	c.Data(http.StatusOK, contentTypeForExtension(img.Extension), data)
}

// ShareLink returns the shareable locator for one of the user's images.
func ShareLink(c *gin.Context) {
	userID := c.MustGet("user_id").(uint64)
	fileID := c.Param("fileID")

	img, err := service.GetOwnedImage(userID, fileID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "image not found"})
			return
		}
		if errors.Is(err, service.ErrForbidden) {
			c.JSON(http.StatusForbidden, gin.H{"error": "not your image"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	url := service.MediaURL(c.Request.Context(), img)
	if url == "" {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "build share link failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}

func contentTypeForExtension(ext string) string {
	if ct := mime.TypeByExtension("." + ext); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
