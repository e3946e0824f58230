package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func openModelDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + t.Name() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&Company{}, &History{}, &HistoryAttachment{}, &Payment{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestNetValue(t *testing.T) {
	assert.Equal(t, float64(850), NetValue(1000, 150))
	assert.Equal(t, float64(200), NetValue(200, 0))
}

func TestPaymentNetValueRecomputedOnSave(t *testing.T) {
	db := openModelDB(t)
	company := Company{Name: "Acme", IsActive: true}
	require.NoError(t, db.Create(&company).Error)

	payment := Payment{
		CompanyID:   company.ID,
		Value:       1000,
		Discount:    150,
		NetValue:    9999, // overwritten by the save hook
		PaymentDate: time.Now(),
	}
	require.NoError(t, db.Create(&payment).Error)
	assert.Equal(t, float64(850), payment.NetValue)

	payment.Discount = 400
	require.NoError(t, db.Save(&payment).Error)
	assert.Equal(t, float64(600), payment.NetValue)

	var stored Payment
	require.NoError(t, db.First(&stored, payment.ID).Error)
	assert.Equal(t, float64(600), stored.NetValue)
}
