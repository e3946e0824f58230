package model

import (
	"time"

	"gorm.io/gorm"
)

// Payment is a financial transaction recorded against a company.
// NetValue is owned by the server: it is recomputed from Value and Discount on
// every write, so a client-supplied value can never drift from the inputs.
type Payment struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	CompanyID   uint      `json:"company_id" gorm:"index;not null"`
	Value       float64   `json:"value" gorm:"not null"`
	Discount    float64   `json:"discount" gorm:"default:0"`
	NetValue    float64   `json:"net_value"`
	Description string    `json:"description" gorm:"type:text"`
	PaymentDate time.Time `json:"payment_date" gorm:"not null"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// BeforeSave keeps the derived net value consistent with value and discount
func (p *Payment) BeforeSave(tx *gorm.DB) error {
	p.NetValue = NetValue(p.Value, p.Discount)
	return nil
}

// NetValue computes the net amount of a payment: gross value minus discount
func NetValue(value, discount float64) float64 {
	return value - discount
}
