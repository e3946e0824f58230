package model

import (
	"time"

	"gorm.io/gorm"
)

// History is a free-text dated event record attached to a company
type History struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	CompanyID   uint       `json:"company_id" gorm:"index;not null"`
	Title       string     `json:"title" gorm:"type:varchar(200);not null"`
	Description string     `json:"description" gorm:"type:text"`
	HistoryDate *time.Time `json:"history_date"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Attachments []HistoryAttachment `json:"attachments,omitempty" gorm:"foreignKey:HistoryID"`
}
