package handler

import (
	"ImageHub/internal/service"
	"ImageHub/internal/storage"
	"errors"
	"net/http"
	"path"
	"strings"

	"github.com/gin-gonic/gin"
)

// ServeMedia serves a public image by filename and counts the view. The
// filename is the stable public object name, so a deleted or reclaimed image
// simply 404s here.
func ServeMedia(c *gin.Context) {
	filename := c.Param("filename")
	if filename == "" || strings.ContainsAny(filename, "/\\") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid filename"})
		return
	}

	fileID := strings.TrimSuffix(filename, path.Ext(filename))
	if err := service.RecordView(fileID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	loc := storage.Blobs.PublicLocationForObject(filename)
	data, err := storage.Blobs.Read(c.Request.Context(), loc)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ext := strings.TrimPrefix(path.Ext(filename), ".")
	c.Header("Cache-Control", "public, max-age=300")
	c.Data(http.StatusOK, contentTypeForExtension(ext), data)
}
