package model

import (
	"net/url"
	"path"
	"time"

	"gorm.io/gorm"
)

// HistoryAttachment is a reference to an externally hosted file linked to a
// history record. The service never stores file content, only the URL handed
// back by the upload provider.
type HistoryAttachment struct {
	ID        uint   `json:"id" gorm:"primaryKey"`
	HistoryID uint   `json:"history_id" gorm:"index;not null"`
	URL       string `json:"url" gorm:"type:text;not null"`
	Name      string `json:"name" gorm:"type:varchar(255)"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// BeforeCreate derives the display name from the file URL
func (a *HistoryAttachment) BeforeCreate(tx *gorm.DB) error {
	if a.Name == "" {
		a.Name = AttachmentName(a.URL)
	}
	return nil
}

// AttachmentName returns the last path segment of a file URL, used as the
// attachment's display name.
func AttachmentName(rawURL string) string {
	if u, err := url.Parse(rawURL); err == nil && u.Path != "" {
		return path.Base(u.Path)
	}
	return path.Base(rawURL)
}
