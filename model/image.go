package model

import "time"

type Image struct {
	ID uint64 `gorm:"primaryKey" json:"-"`

	// FileID is the external handle; object names are derived from it.
	FileID string `gorm:"column:file_id;size:32;uniqueIndex;not null" json:"file_id"`

	UserID uint64 `gorm:"column:user_id;not null;index" json:"user_id,omitempty"`
	User   User   `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE" json:"-"`

	OriginalName string `gorm:"column:original_name;size:255;not null" json:"original_name"`

	// One logical image lives at two locations: an owner-scoped private
	// object and a flat public-serving object. Both exist or neither does.
	PrivateObject string `gorm:"column:private_object;size:512;not null" json:"private_object"`
	PublicObject  string `gorm:"column:public_object;size:512;not null" json:"public_object"`

	Size      int64  `gorm:"column:size;not null" json:"size"`
	Extension string `gorm:"column:extension;size:16;not null" json:"extension"`

	DeleteKey string `gorm:"column:delete_key;size:32;uniqueIndex;not null" json:"delete_key"`

	// TTLHours of 0 means the image never expires and ExpiresAt stays null.
	TTLHours  int        `gorm:"column:ttl_hours;not null;default:0" json:"ttl_hours"`
	ExpiresAt *time.Time `gorm:"column:expires_at;index" json:"expires_at"`

	Views int64 `gorm:"column:views;not null;default:0" json:"views"`

	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the database table name.
func (Image) TableName() string {
	return "image"
}
