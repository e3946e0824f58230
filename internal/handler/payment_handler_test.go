package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"testing"
	"time"

	"company-service/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedCompany(t *testing.T) (*gorm.DB, model.Company) {
	t.Helper()
	db := setupTestDB(t)
	company := model.Company{Name: "Acme", IsActive: true}
	require.NoError(t, db.Create(&company).Error)
	return db, company
}

func TestCreatePaymentComputesNetValue(t *testing.T) {
	_, company := seedCompany(t)
	id := strconv.Itoa(int(company.ID))

	req := newJSONRequest(http.MethodPost, "/api/companies/"+id+"/finances",
		`{"value":1000,"discount":150}`)
	rec := call(t, CreatePayment, req, []string{"companyId"}, []string{id})

	require.Equal(t, http.StatusCreated, rec.Code)

	var payment model.Payment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payment))
	assert.Equal(t, float64(850), payment.NetValue)
	assert.Equal(t, company.ID, payment.CompanyID)
	assert.False(t, payment.PaymentDate.IsZero(), "payment date defaults to now")
}

func TestCreatePaymentDefaultDiscount(t *testing.T) {
	_, company := seedCompany(t)
	id := strconv.Itoa(int(company.ID))

	req := newJSONRequest(http.MethodPost, "/api/companies/"+id+"/finances", `{"value":200}`)
	rec := call(t, CreatePayment, req, []string{"companyId"}, []string{id})

	require.Equal(t, http.StatusCreated, rec.Code)

	var payment model.Payment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payment))
	assert.Equal(t, float64(200), payment.NetValue)
	assert.Zero(t, payment.Discount)
}

func TestCreatePaymentDiscountExceedsValue(t *testing.T) {
	db, company := seedCompany(t)
	id := strconv.Itoa(int(company.ID))

	req := newJSONRequest(http.MethodPost, "/api/companies/"+id+"/finances",
		`{"value":100,"discount":150}`)
	rec := call(t, CreatePayment, req, []string{"companyId"}, []string{id})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "discount")

	var count int64
	db.Model(&model.Payment{}).Count(&count)
	assert.Zero(t, count, "negative net value must not be stored")
}

func TestCreatePaymentRequiresPositiveValue(t *testing.T) {
	_, company := seedCompany(t)
	id := strconv.Itoa(int(company.ID))

	req := newJSONRequest(http.MethodPost, "/api/companies/"+id+"/finances", `{"value":0}`)
	rec := call(t, CreatePayment, req, []string{"companyId"}, []string{id})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "value")
}

func TestCreatePaymentMissingCompany(t *testing.T) {
	setupTestDB(t)

	req := newJSONRequest(http.MethodPost, "/api/companies/55/finances", `{"value":100}`)
	rec := call(t, CreatePayment, req, []string{"companyId"}, []string{"55"})

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdatePaymentRecomputesNetValue(t *testing.T) {
	db, company := seedCompany(t)
	payment := model.Payment{CompanyID: company.ID, Value: 1000, Discount: 150, PaymentDate: time.Now()}
	require.NoError(t, db.Create(&payment).Error)
	require.Equal(t, float64(850), payment.NetValue)

	companyID := strconv.Itoa(int(company.ID))
	paymentID := strconv.Itoa(int(payment.ID))
	req := newJSONRequest(http.MethodPatch, "/api/companies/"+companyID+"/finances/"+paymentID,
		`{"discount":250}`)
	rec := call(t, UpdatePayment, req,
		[]string{"companyId", "paymentId"},
		[]string{companyID, paymentID})

	require.Equal(t, http.StatusOK, rec.Code)

	var updated model.Payment
	require.NoError(t, db.First(&updated, payment.ID).Error)
	assert.Equal(t, float64(1000), updated.Value)
	assert.Equal(t, float64(250), updated.Discount)
	assert.Equal(t, float64(750), updated.NetValue)
}

func TestUpdatePaymentIgnoresClientNetValue(t *testing.T) {
	db, company := seedCompany(t)
	payment := model.Payment{CompanyID: company.ID, Value: 500, Discount: 100, PaymentDate: time.Now()}
	require.NoError(t, db.Create(&payment).Error)

	companyID := strconv.Itoa(int(company.ID))
	paymentID := strconv.Itoa(int(payment.ID))
	req := newJSONRequest(http.MethodPatch, "/api/companies/"+companyID+"/finances/"+paymentID,
		`{"net_value":9999,"description":"adjusted"}`)
	rec := call(t, UpdatePayment, req,
		[]string{"companyId", "paymentId"},
		[]string{companyID, paymentID})

	require.Equal(t, http.StatusOK, rec.Code)

	var updated model.Payment
	require.NoError(t, db.First(&updated, payment.ID).Error)
	assert.Equal(t, float64(400), updated.NetValue, "client-supplied net value is never trusted")
	assert.Equal(t, "adjusted", updated.Description)
}

func TestUpdatePaymentWrongCompany(t *testing.T) {
	db, company := seedCompany(t)
	other := model.Company{Name: "Other", IsActive: true}
	require.NoError(t, db.Create(&other).Error)
	payment := model.Payment{CompanyID: company.ID, Value: 300, PaymentDate: time.Now()}
	require.NoError(t, db.Create(&payment).Error)

	otherID := strconv.Itoa(int(other.ID))
	paymentID := strconv.Itoa(int(payment.ID))
	req := newJSONRequest(http.MethodPatch, "/api/companies/"+otherID+"/finances/"+paymentID,
		`{"value":1}`)
	rec := call(t, UpdatePayment, req,
		[]string{"companyId", "paymentId"},
		[]string{otherID, paymentID})

	require.Equal(t, http.StatusNotFound, rec.Code)

	var unchanged model.Payment
	require.NoError(t, db.First(&unchanged, payment.ID).Error)
	assert.Equal(t, float64(300), unchanged.Value)
}

func TestDeletePaymentWrongCompany(t *testing.T) {
	db, company := seedCompany(t)
	other := model.Company{Name: "Other", IsActive: true}
	require.NoError(t, db.Create(&other).Error)
	payment := model.Payment{CompanyID: company.ID, Value: 300, PaymentDate: time.Now()}
	require.NoError(t, db.Create(&payment).Error)

	otherID := strconv.Itoa(int(other.ID))
	paymentID := strconv.Itoa(int(payment.ID))
	req := newJSONRequest(http.MethodDelete, "/api/companies/"+otherID+"/finances/"+paymentID, "")
	rec := call(t, DeletePayment, req,
		[]string{"companyId", "paymentId"},
		[]string{otherID, paymentID})

	require.Equal(t, http.StatusNotFound, rec.Code)

	var count int64
	db.Model(&model.Payment{}).Count(&count)
	assert.Equal(t, int64(1), count, "mismatched parent must not delete the payment")
}

func TestDeletePayment(t *testing.T) {
	db, company := seedCompany(t)
	payment := model.Payment{CompanyID: company.ID, Value: 300, PaymentDate: time.Now()}
	require.NoError(t, db.Create(&payment).Error)

	companyID := strconv.Itoa(int(company.ID))
	paymentID := strconv.Itoa(int(payment.ID))
	req := newJSONRequest(http.MethodDelete, "/api/companies/"+companyID+"/finances/"+paymentID, "")
	rec := call(t, DeletePayment, req,
		[]string{"companyId", "paymentId"},
		[]string{companyID, paymentID})

	require.Equal(t, http.StatusOK, rec.Code)

	var count int64
	db.Model(&model.Payment{}).Count(&count)
	assert.Zero(t, count)
}

func TestListPaymentsOrder(t *testing.T) {
	db, company := seedCompany(t)
	older := model.Payment{CompanyID: company.ID, Value: 10,
		PaymentDate: time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)}
	require.NoError(t, db.Create(&older).Error)
	newer := model.Payment{CompanyID: company.ID, Value: 20,
		PaymentDate: time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC)}
	require.NoError(t, db.Create(&newer).Error)

	id := strconv.Itoa(int(company.ID))
	req := newJSONRequest(http.MethodGet, "/api/companies/"+id+"/finances?order=asc", "")
	rec := call(t, ListPayments, req, []string{"companyId"}, []string{id})

	require.Equal(t, http.StatusOK, rec.Code)

	var payments []model.Payment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payments))
	require.Len(t, payments, 2)
	assert.Equal(t, float64(10), payments[0].Value)

	req = newJSONRequest(http.MethodGet, "/api/companies/"+id+"/finances", "")
	rec = call(t, ListPayments, req, []string{"companyId"}, []string{id})
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payments))
	require.Len(t, payments, 2)
	assert.Equal(t, float64(20), payments[0].Value, "default order is newest first")
}
