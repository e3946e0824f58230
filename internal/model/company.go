package model

import (
	"time"

	"gorm.io/gorm"
)

// Signature types a company can subscribe with
const (
	SignatureMonthly  = "MONTHLY"
	SignatureAnnually = "ANNUALLY"
)

// Company represents a client organization managed through the dashboard
type Company struct {
	ID             uint   `json:"id" gorm:"primaryKey"`
	Name           string `json:"name" gorm:"type:varchar(100);index;not null"`
	DocumentNumber string `json:"document_number" gorm:"type:varchar(50)"`
	Email          string `json:"email" gorm:"type:varchar(100)"`
	Phone          string `json:"phone" gorm:"type:varchar(20)"`
	IsActive       bool   `json:"is_active" gorm:"default:true"`

	// Subscription lifecycle
	SignatureType            string     `json:"signature_type" gorm:"type:varchar(20)"` // MONTHLY, ANNUALLY or empty
	SubscriptionDate         *time.Time `json:"subscription_date"`
	SubscriptionEnd          *time.Time `json:"subscription_end"`
	CancelSubscriptionDate   *time.Time `json:"cancel_subscription_date"`
	CancelSubscriptionReason string     `json:"cancel_subscription_reason" gorm:"type:text"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Histories []History `json:"histories,omitempty" gorm:"foreignKey:CompanyID"`
	Payments  []Payment `json:"payments,omitempty" gorm:"foreignKey:CompanyID"`
}

// ValidSignatureType reports whether t is an accepted signature type.
// The empty string means no subscription plan has been chosen yet.
func ValidSignatureType(t string) bool {
	return t == "" || t == SignatureMonthly || t == SignatureAnnually
}
