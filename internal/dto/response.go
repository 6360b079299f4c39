package dto

import "time"

// GalleryItem is one gallery row, ready for rendering.
type GalleryItem struct {
	FileID        string     `json:"file_id"`
	OriginalName  string     `json:"original_name"`
	Size          int64      `json:"size"`
	SizeHuman     string     `json:"size_human"`
	Extension     string     `json:"extension"`
	Views         int64      `json:"views"`
	CreatedAt     time.Time  `json:"created_at"`
	ExpiresAt     *time.Time `json:"expires_at"`
	TimeRemaining string     `json:"time_remaining"`
	URL           string     `json:"url"`
}

// UploadResult reports one stored upload.
type UploadResult struct {
	FileID       string     `json:"file_id"`
	OriginalName string     `json:"original_name"`
	Size         int64      `json:"size"`
	URL          string     `json:"url"`
	DeleteKey    string     `json:"delete_key"`
	ExpiresAt    *time.Time `json:"expires_at"`
}

// UploadResponse reports a whole upload batch.
type UploadResponse struct {
	Uploaded []UploadResult `json:"uploaded"`
	Failed   []UploadError  `json:"failed,omitempty"`
}

// UploadError reports one rejected file in a batch.
type UploadError struct {
	OriginalName string `json:"original_name"`
	Reason       string `json:"reason"`
}

// StatsResponse carries dashboard totals.
type StatsResponse struct {
	TotalImages     int    `json:"total_images"`
	TotalBytes      int64  `json:"total_bytes"`
	TotalBytesHuman string `json:"total_bytes_human"`
	LiveImages      int    `json:"live_images"`
}
