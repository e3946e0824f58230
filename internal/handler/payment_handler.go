package handler

import (
	"net/http"
	"time"

	"company-service/internal/model"
	"company-service/pkg/database"
	"company-service/pkg/logger"
	"company-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// PaymentCreateRequest defines the structure for payment creation requests.
// NetValue is intentionally not accepted: the server owns the derived field.
type PaymentCreateRequest struct {
	Value       float64    `json:"value"`
	Discount    float64    `json:"discount"`
	Description string     `json:"description"`
	PaymentDate *time.Time `json:"payment_date"`
}

// PaymentUpdateRequest defines the structure for partial payment updates
type PaymentUpdateRequest struct {
	Value       *float64   `json:"value"`
	Discount    *float64   `json:"discount"`
	Description *string    `json:"description"`
	PaymentDate *time.Time `json:"payment_date"`
}

func validatePaymentAmounts(value, discount float64) violations {
	v := violations{}
	if value <= 0 {
		v.add("value", "value must be greater than zero")
	}
	if discount < 0 {
		v.add("discount", "discount must not be negative")
	}
	if discount > value {
		v.add("discount", "discount must not exceed value")
	}
	return v
}

// CreatePayment records a payment against a company
func CreatePayment(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordPaymentOperation("create")

	companyID, err := paramID(c, "companyId")
	if err != nil {
		log.Error("Invalid company ID", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid company ID"})
	}

	var req PaymentCreateRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Uint("company_id", companyID), zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	if v := validatePaymentAmounts(req.Value, req.Discount); !v.empty() {
		log.Warn("Payment creation rejected", zap.Uint("company_id", companyID), zap.Any("fields", v))
		return validationError(c, v)
	}

	if _, err := findCompany(companyID); err != nil {
		if notFound(err) {
			log.Warn("Company not found for payment creation", zap.Uint("company_id", companyID))
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Company not found"})
		}
		log.Error("Failed to load company", zap.Uint("company_id", companyID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to create payment"})
	}

	// Payment date defaults to now when not supplied
	paymentDate := time.Now()
	if req.PaymentDate != nil {
		paymentDate = *req.PaymentDate
	}

	payment := model.Payment{
		CompanyID:   companyID,
		Value:       req.Value,
		Discount:    req.Discount,
		Description: req.Description,
		PaymentDate: paymentDate,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())

	if err := database.GetDB().Create(&payment).Error; err != nil {
		log.Error("Failed to create payment",
			zap.Uint("company_id", companyID),
			zap.Float64("value", req.Value),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to create payment"})
	}

	log.Info("Payment created successfully",
		zap.Uint("payment_id", payment.ID),
		zap.Uint("company_id", companyID),
		zap.Float64("net_value", payment.NetValue))
	return c.JSON(http.StatusCreated, payment)
}

// ListPayments retrieves the payments of a company ordered by payment date
func ListPayments(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordPaymentOperation("list")

	companyID, err := paramID(c, "companyId")
	if err != nil {
		log.Error("Invalid company ID", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid company ID"})
	}

	order, ok := orderParam(c)
	if !ok {
		return validationError(c, violations{"order": "order must be asc or desc"})
	}

	if _, err := findCompany(companyID); err != nil {
		if notFound(err) {
			log.Warn("Company not found for payment listing", zap.Uint("company_id", companyID))
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Company not found"})
		}
		log.Error("Failed to load company", zap.Uint("company_id", companyID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve payments"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())

	var payments []model.Payment
	result := database.GetDB().
		Where("company_id = ?", companyID).
		Order("payment_date " + order).
		Find(&payments)
	if result.Error != nil {
		log.Error("Failed to retrieve payments", zap.Uint("company_id", companyID), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve payments"})
	}

	log.Info("Payments retrieved successfully",
		zap.Uint("company_id", companyID),
		zap.Int("count", len(payments)))
	return c.JSON(http.StatusOK, payments)
}

// UpdatePayment applies a partial update and recomputes the net value from
// the effective value and discount
func UpdatePayment(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordPaymentOperation("update")

	companyID, err := paramID(c, "companyId")
	if err != nil {
		log.Error("Invalid company ID", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid company ID"})
	}
	paymentID, err := paramID(c, "paymentId")
	if err != nil {
		log.Error("Invalid payment ID", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid payment ID"})
	}

	var req PaymentUpdateRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Uint("payment_id", paymentID), zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	if _, err := findCompany(companyID); err != nil {
		if notFound(err) {
			log.Warn("Company not found for payment update", zap.Uint("company_id", companyID))
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Company not found"})
		}
		log.Error("Failed to load company", zap.Uint("company_id", companyID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to update payment"})
	}

	var payment model.Payment
	result := database.GetDB().
		Where("id = ? AND company_id = ?", paymentID, companyID).
		First(&payment)
	if result.Error != nil {
		log.Warn("Payment not found or does not belong to company",
			zap.Uint("payment_id", paymentID),
			zap.Uint("company_id", companyID),
			zap.Error(result.Error))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Payment not found"})
	}

	// Validate against the effective amounts after the patch
	value := payment.Value
	if req.Value != nil {
		value = *req.Value
	}
	discount := payment.Discount
	if req.Discount != nil {
		discount = *req.Discount
	}
	if v := validatePaymentAmounts(value, discount); !v.empty() {
		log.Warn("Payment update rejected", zap.Uint("payment_id", paymentID), zap.Any("fields", v))
		return validationError(c, v)
	}

	payment.Value = value
	payment.Discount = discount
	if req.Description != nil {
		payment.Description = *req.Description
	}
	if req.PaymentDate != nil {
		payment.PaymentDate = *req.PaymentDate
	}

	defer prometheus.TrackDBOperation("update")(time.Now())

	if err := database.GetDB().Save(&payment).Error; err != nil {
		log.Error("Failed to update payment", zap.Uint("payment_id", paymentID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to update payment"})
	}

	log.Info("Payment updated successfully",
		zap.Uint("payment_id", payment.ID),
		zap.Float64("net_value", payment.NetValue))
	return c.JSON(http.StatusOK, payment)
}

// DeletePayment deletes a payment after checking company ownership
func DeletePayment(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordPaymentOperation("delete")

	companyID, err := paramID(c, "companyId")
	if err != nil {
		log.Error("Invalid company ID", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid company ID"})
	}
	paymentID, err := paramID(c, "paymentId")
	if err != nil {
		log.Error("Invalid payment ID", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid payment ID"})
	}

	if _, err := findCompany(companyID); err != nil {
		if notFound(err) {
			log.Warn("Company not found for payment delete", zap.Uint("company_id", companyID))
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Company not found"})
		}
		log.Error("Failed to load company", zap.Uint("company_id", companyID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to delete payment"})
	}

	var payment model.Payment
	result := database.GetDB().
		Where("id = ? AND company_id = ?", paymentID, companyID).
		First(&payment)
	if result.Error != nil {
		log.Warn("Payment not found or does not belong to company",
			zap.Uint("payment_id", paymentID),
			zap.Uint("company_id", companyID),
			zap.Error(result.Error))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Payment not found"})
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())

	if err := database.GetDB().Delete(&payment).Error; err != nil {
		log.Error("Failed to delete payment", zap.Uint("payment_id", paymentID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to delete payment"})
	}

	log.Info("Payment deleted successfully",
		zap.Uint("payment_id", payment.ID),
		zap.Uint("company_id", companyID))
	return c.JSON(http.StatusOK, payment)
}
