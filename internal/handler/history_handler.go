package handler

import (
	"net/http"
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

// HistoryCreateRequest defines the structure for history creation requests
type HistoryCreateRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	HistoryDate *time.Time `json:"history_date"`
}

// HistoryUpdateRequest defines the structure for partial history updates
type HistoryUpdateRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	HistoryDate *time.Time `json:"history_date"`
}

// CreateHistory creates a history record scoped to a company
func CreateHistory(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordHistoryOperation("create")

	companyID, err := paramID(c, "companyId")
	if err != nil {
		log.Error("Invalid company ID", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid company ID"})
	}

	var req HistoryCreateRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Uint("company_id", companyID), zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	v := violations{}
	if strings.TrimSpace(req.Title) == "" {
		v.add("title", "title is required")
	}
	if !v.empty() {
		log.Warn("History creation rejected", zap.Uint("company_id", companyID), zap.Any("fields", v))
		return validationError(c, v)
	}

	// The parent must exist before anything is written
	if _, err := findCompany(companyID); err != nil {
		if notFound(err) {
			log.Warn("Company not found for history creation", zap.Uint("company_id", companyID))
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Company not found"})
		}
		log.Error("Failed to load company", zap.Uint("company_id", companyID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to create history"})
	}

	history := model.History{
		CompanyID:   companyID,
		Title:       req.Title,
		Description: req.Description,
		HistoryDate: req.HistoryDate,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())

	if err := database.GetDB().Create(&history).Error; err != nil {
		log.Error("Failed to create history",
			zap.Uint("company_id", companyID),
			zap.String("title", req.Title),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to create history"})
	}

	log.Info("History created successfully",
		zap.Uint("history_id", history.ID),
		zap.Uint("company_id", companyID))
	return c.JSON(http.StatusCreated, history)
}

// ListHistories retrieves the histories of a company ordered by business date
func ListHistories(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordHistoryOperation("list")

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
			log.Warn("Company not found for history listing", zap.Uint("company_id", companyID))
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Company not found"})
		}
		log.Error("Failed to load company", zap.Uint("company_id", companyID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve histories"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())

	// Undated histories sort by their creation time; COALESCE keeps the
	// ordering identical across sqlite and postgres, which place NULLs at
	// opposite ends.
	var histories []model.History
	result := database.GetDB().
		Where("company_id = ?", companyID).
		Preload("Attachments").
		Order("COALESCE(history_date, created_at) " + order).
		Order("created_at " + order).
		Find(&histories)
	if result.Error != nil {
		log.Error("Failed to retrieve histories", zap.Uint("company_id", companyID), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to retrieve histories"})
	}

	log.Info("Histories retrieved successfully",
		zap.Uint("company_id", companyID),
		zap.Int("count", len(histories)))
	return c.JSON(http.StatusOK, histories)
}

// UpdateHistory applies a partial update to a history after checking it
// belongs to the addressed company
func UpdateHistory(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordHistoryOperation("update")

	companyID, err := paramID(c, "companyId")
	if err != nil {
		log.Error("Invalid company ID", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid company ID"})
	}
	historyID, err := paramID(c, "historyId")
	if err != nil {
		log.Error("Invalid history ID", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid history ID"})
	}

	var req HistoryUpdateRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Uint("history_id", historyID), zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	v := violations{}
	if req.Title != nil && strings.TrimSpace(*req.Title) == "" {
		v.add("title", "title must not be empty")
	}
	if !v.empty() {
		log.Warn("History update rejected", zap.Uint("history_id", historyID), zap.Any("fields", v))
		return validationError(c, v)
	}

	if _, err := findCompany(companyID); err != nil {
		if notFound(err) {
			log.Warn("Company not found for history update", zap.Uint("company_id", companyID))
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Company not found"})
		}
		log.Error("Failed to load company", zap.Uint("company_id", companyID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to update history"})
	}

	// Scoped lookup: a history addressed through the wrong company is not found
	var history model.History
	result := database.GetDB().
		Where("id = ? AND company_id = ?", historyID, companyID).
		First(&history)
	if result.Error != nil {
		log.Warn("History not found or does not belong to company",
			zap.Uint("history_id", historyID),
			zap.Uint("company_id", companyID),
			zap.Error(result.Error))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "History not found"})
	}

	if req.Title != nil {
		history.Title = *req.Title
	}
	if req.Description != nil {
		history.Description = *req.Description
	}
	if req.HistoryDate != nil {
		history.HistoryDate = req.HistoryDate
	}

	defer prometheus.TrackDBOperation("update")(time.Now())

	if err := database.GetDB().Save(&history).Error; err != nil {
		log.Error("Failed to update history", zap.Uint("history_id", historyID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to update history"})
	}

	log.Info("History updated successfully",
		zap.Uint("history_id", history.ID),
		zap.Uint("company_id", companyID))
	return c.JSON(http.StatusOK, history)
}

// DeleteHistory deletes a history and its attachments after checking company
// ownership
func DeleteHistory(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordHistoryOperation("delete")

	companyID, err := paramID(c, "companyId")
	if err != nil {
		log.Error("Invalid company ID", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid company ID"})
	}
	historyID, err := paramID(c, "historyId")
	if err != nil {
		log.Error("Invalid history ID", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid history ID"})
	}

	if _, err := findCompany(companyID); err != nil {
		if notFound(err) {
			log.Warn("Company not found for history delete", zap.Uint("company_id", companyID))
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Company not found"})
		}
		log.Error("Failed to load company", zap.Uint("company_id", companyID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to delete history"})
	}

	var history model.History
	result := database.GetDB().
		Where("id = ? AND company_id = ?", historyID, companyID).
		First(&history)
	if result.Error != nil {
		log.Warn("History not found or does not belong to company",
			zap.Uint("history_id", historyID),
			zap.Uint("company_id", companyID),
			zap.Error(result.Error))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "History not found"})
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())

	err = database.GetDB().Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("history_id = ?", history.ID).
			Delete(&model.HistoryAttachment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&history).Error
	})
	if err != nil {
		log.Error("Failed to delete history", zap.Uint("history_id", historyID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to delete history"})
	}

	log.Info("History deleted successfully",
		zap.Uint("history_id", history.ID),
		zap.Uint("company_id", companyID))
	return c.JSON(http.StatusOK, history)
}
