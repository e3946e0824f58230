package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"company-service/internal/model"
	"company-service/pkg/database"
	"company-service/pkg/logger"
	"company-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CompanyCreateRequest defines the structure for company creation requests
type CompanyCreateRequest struct {
	Name string `json:"name"`
}

// CompanyUpdateRequest defines the structure for partial company updates.
// Pointer fields distinguish "not sent" from "set to zero value". IsActive is
// deliberately absent: the activate/inactivate endpoints are the only way to
// flip it.
type CompanyUpdateRequest struct {
	Name             *string    `json:"name"`
	DocumentNumber   *string    `json:"document_number"`
	Email            *string    `json:"email"`
	Phone            *string    `json:"phone"`
	SignatureType    *string    `json:"signature_type"`
	SubscriptionDate *time.Time `json:"subscription_date"`
	SubscriptionEnd  *time.Time `json:"subscription_end"`
}

// CancelSubscriptionRequest carries the cancellation date and reason, which
// are always set together
type CancelSubscriptionRequest struct {
	CancelSubscriptionDate   *time.Time `json:"cancel_subscription_date"`
	CancelSubscriptionReason string     `json:"cancel_subscription_reason"`
}

// CreateCompany creates a new company
func CreateCompany(c echo.Context) error {
	log := logger.FromContext(c)
	log.Info("Creating new company")
	prometheus.RecordCompanyOperation("create")

	var req CompanyCreateRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	v := violations{}
	if strings.TrimSpace(req.Name) == "" {
		v.add("name", "name is required")
	}
	if !v.empty() {
		log.Warn("Company creation rejected", zap.Any("fields", v))
		return validationError(c, v)
	}

	company := model.Company{
		Name:     req.Name,
		IsActive: true,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())

	if err := database.GetDB().Create(&company).Error; err != nil {
		log.Error("Failed to create company", zap.String("name", req.Name), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to create company"})
	}

	updateActiveCompanyCount()

	log.Info("Company created successfully",
		zap.Uint("company_id", company.ID),
		zap.String("name", company.Name))
	return c.JSON(http.StatusCreated, company)
}

// ListCompanies retrieves all companies, newest first unless the caller asks
// for ascending order
func ListCompanies(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordCompanyOperation("list")

	order, ok := orderParam(c)
	if !ok {
		log.Warn("Invalid order parameter", zap.String("order", c.QueryParam("order")))
		return validationError(c, violations{"order": "order must be asc or desc"})
	}

	query := database.GetDB().Model(&model.Company{})

	// Filter by active status if specified
	if isActive := c.QueryParam("is_active"); isActive != "" {
		active, err := strconv.ParseBool(isActive)
		if err != nil {
			return validationError(c, violations{"is_active": "is_active must be a boolean"})
		}
		query = query.Where("is_active = ?", active)
	}

	defer prometheus.TrackDBOperation("query")(time.Now())

	var companies []model.Company
	if err := query.Order("created_at " + order).Find(&companies).Error; err != nil {
		log.Error("Failed to retrieve companies", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve companies"})
	}

	log.Info("Companies retrieved successfully", zap.Int("count", len(companies)))
	return c.JSON(http.StatusOK, companies)
}

// GetCompany retrieves a company by ID with its histories and payments
func GetCompany(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordCompanyOperation("get")

	id, err := paramID(c, "companyId")
	if err != nil {
		log.Error("Invalid company ID", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid company ID"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())

	var company model.Company
	result := database.GetDB().
		Preload("Histories", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at desc")
		}).
		Preload("Histories.Attachments").
		Preload("Payments", func(db *gorm.DB) *gorm.DB {
			return db.Order("payment_date desc")
		}).
		First(&company, id)
	if result.Error != nil {
		log.Warn("Company not found", zap.Uint("company_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Company not found"})
	}

	return c.JSON(http.StatusOK, company)
}

// UpdateCompany applies a partial update to a company
func UpdateCompany(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordCompanyOperation("update")

	id, err := paramID(c, "companyId")
	if err != nil {
		log.Error("Invalid company ID", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid company ID"})
	}

	var req CompanyUpdateRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Uint("company_id", id), zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	v := violations{}
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		v.add("name", "name must not be empty")
	}
	if req.SignatureType != nil && !model.ValidSignatureType(*req.SignatureType) {
		v.add("signature_type", "signature_type must be MONTHLY or ANNUALLY")
	}
	if !v.empty() {
		log.Warn("Company update rejected", zap.Uint("company_id", id), zap.Any("fields", v))
		return validationError(c, v)
	}

	var company model.Company
	if err := database.GetDB().First(&company, id).Error; err != nil {
		log.Warn("Company not found for update", zap.Uint("company_id", id), zap.Error(err))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Company not found"})
	}

	if req.Name != nil {
		company.Name = *req.Name
	}
	if req.DocumentNumber != nil {
		company.DocumentNumber = *req.DocumentNumber
	}
	if req.Email != nil {
		company.Email = *req.Email
	}
	if req.Phone != nil {
		company.Phone = *req.Phone
	}
	if req.SignatureType != nil {
		company.SignatureType = *req.SignatureType
	}
	if req.SubscriptionDate != nil {
		company.SubscriptionDate = req.SubscriptionDate
	}
	if req.SubscriptionEnd != nil {
		company.SubscriptionEnd = req.SubscriptionEnd
	}

	// Temporal ordering is enforced here rather than in the edit form
	if company.SubscriptionDate != nil && company.SubscriptionEnd != nil &&
		company.SubscriptionEnd.Before(*company.SubscriptionDate) {
		log.Warn("Subscription end precedes subscription start", zap.Uint("company_id", id))
		return validationError(c, violations{"subscription_end": "subscription_end must not precede subscription_date"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())

	if err := database.GetDB().Save(&company).Error; err != nil {
		log.Error("Failed to update company", zap.Uint("company_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to update company"})
	}

	log.Info("Company updated successfully", zap.Uint("company_id", company.ID))
	return c.JSON(http.StatusOK, company)
}

// DeleteCompany deletes a company together with its histories, attachments
// and payments in one transaction, so children are never orphaned
func DeleteCompany(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordCompanyOperation("delete")

	id, err := paramID(c, "companyId")
	if err != nil {
		log.Error("Invalid company ID", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid company ID"})
	}

	var company model.Company
	if err := database.GetDB().First(&company, id).Error; err != nil {
		log.Warn("Company not found for delete", zap.Uint("company_id", id), zap.Error(err))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Company not found"})
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())

	err = database.GetDB().Transaction(func(tx *gorm.DB) error {
		var historyIDs []uint
		if err := tx.Model(&model.History{}).
			Where("company_id = ?", id).
			Pluck("id", &historyIDs).Error; err != nil {
			return err
		}
		if len(historyIDs) > 0 {
			if err := tx.Where("history_id IN ?", historyIDs).
				Delete(&model.HistoryAttachment{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("company_id = ?", id).Delete(&model.History{}).Error; err != nil {
			return err
		}
		if err := tx.Where("company_id = ?", id).Delete(&model.Payment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&company).Error
	})
	if err != nil {
		log.Error("Failed to delete company", zap.Uint("company_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to delete company"})
	}

	updateActiveCompanyCount()

	log.Info("Company deleted successfully",
		zap.Uint("company_id", id),
		zap.String("name", company.Name))
	return c.JSON(http.StatusOK, company)
}

// ActivateCompany sets isActive=true. Calling it on an already active
// company is a no-op that returns the same state.
func ActivateCompany(c echo.Context) error {
	prometheus.RecordCompanyOperation("activate")
	return setCompanyActive(c, true)
}

// InactivateCompany sets isActive=false
func InactivateCompany(c echo.Context) error {
	prometheus.RecordCompanyOperation("inactivate")
	return setCompanyActive(c, false)
}

func setCompanyActive(c echo.Context, active bool) error {
	log := logger.FromContext(c)

	id, err := paramID(c, "companyId")
	if err != nil {
		log.Error("Invalid company ID", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid company ID"})
	}

	var company model.Company
	if err := database.GetDB().First(&company, id).Error; err != nil {
		log.Warn("Company not found", zap.Uint("company_id", id), zap.Error(err))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Company not found"})
	}

	defer prometheus.TrackDBOperation("update")(time.Now())

	if err := database.GetDB().Model(&company).Update("is_active", active).Error; err != nil {
		log.Error("Failed to change company active state",
			zap.Uint("company_id", id),
			zap.Bool("active", active),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to update company"})
	}

	updateActiveCompanyCount()

	log.Info("Company active state changed",
		zap.Uint("company_id", company.ID),
		zap.Bool("is_active", company.IsActive))
	return c.JSON(http.StatusOK, company)
}

// CancelSubscription records the cancellation date and reason together.
// It does not change isActive or subscriptionEnd: deactivation stays a
// separate explicit action.
func CancelSubscription(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordCompanyOperation("cancel_subscription")

	id, err := paramID(c, "companyId")
	if err != nil {
		log.Error("Invalid company ID", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid company ID"})
	}

	var req CancelSubscriptionRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Uint("company_id", id), zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	v := violations{}
	if req.CancelSubscriptionDate == nil {
		v.add("cancel_subscription_date", "cancel_subscription_date is required")
	}
	if strings.TrimSpace(req.CancelSubscriptionReason) == "" {
		v.add("cancel_subscription_reason", "cancel_subscription_reason is required")
	}
	if !v.empty() {
		log.Warn("Cancellation rejected", zap.Uint("company_id", id), zap.Any("fields", v))
		return validationError(c, v)
	}

	var company model.Company
	if err := database.GetDB().First(&company, id).Error; err != nil {
		log.Warn("Company not found for cancellation", zap.Uint("company_id", id), zap.Error(err))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Company not found"})
	}

	company.CancelSubscriptionDate = req.CancelSubscriptionDate
	company.CancelSubscriptionReason = req.CancelSubscriptionReason

	defer prometheus.TrackDBOperation("update")(time.Now())

	if err := database.GetDB().Save(&company).Error; err != nil {
		log.Error("Failed to cancel subscription", zap.Uint("company_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to cancel subscription"})
	}

	log.Info("Subscription cancelled",
		zap.Uint("company_id", company.ID),
		zap.Timep("cancel_date", company.CancelSubscriptionDate))
	return c.JSON(http.StatusOK, company)
}

// Helper to keep the active companies gauge current
func updateActiveCompanyCount() {
	var count int64
	if err := database.GetDB().Model(&model.Company{}).
		Where("is_active = ?", true).
		Count(&count).Error; err != nil {
		return
	}
	prometheus.UpdateActiveCompanies(int(count))
}

// notFound reports whether an error is a gorm record-not-found
func notFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
