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
)

// AttachmentCreateRequest carries the URL handed back by the external upload
// provider. The display name is derived server-side from the last path segment.
type AttachmentCreateRequest struct {
	URL string `json:"url"`
}

// CreateAttachment links an uploaded file to a history record
func CreateAttachment(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordAttachmentOperation("create")

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

	var req AttachmentCreateRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Uint("history_id", historyID), zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request data"})
	}

	v := violations{}
	if strings.TrimSpace(req.URL) == "" {
		v.add("url", "url is required")
	}
	if !v.empty() {
		log.Warn("Attachment creation rejected", zap.Uint("history_id", historyID), zap.Any("fields", v))
		return validationError(c, v)
	}

	if _, err := findCompany(companyID); err != nil {
		if notFound(err) {
			log.Warn("Company not found for attachment creation", zap.Uint("company_id", companyID))
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Company not found"})
		}
		log.Error("Failed to load company", zap.Uint("company_id", companyID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to create attachment"})
	}

	// The history must belong to the addressed company
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

	attachment := model.HistoryAttachment{
		HistoryID: history.ID,
		URL:       req.URL,
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())

	if err := database.GetDB().Create(&attachment).Error; err != nil {
		log.Error("Failed to create attachment",
			zap.Uint("history_id", historyID),
			zap.String("url", req.URL),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to create attachment"})
	}

	log.Info("Attachment created successfully",
		zap.Uint("attachment_id", attachment.ID),
		zap.Uint("history_id", history.ID),
		zap.String("name", attachment.Name))
	return c.JSON(http.StatusCreated, attachment)
}

// DeleteAttachment removes a file reference after checking the full ownership
// chain (company → history → attachment). The externally hosted file itself
// is not touched.
func DeleteAttachment(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordAttachmentOperation("delete")

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
	attachmentID, err := paramID(c, "attachmentId")
	if err != nil {
		log.Error("Invalid attachment ID", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid attachment ID"})
	}

	if _, err := findCompany(companyID); err != nil {
		if notFound(err) {
			log.Warn("Company not found for attachment delete", zap.Uint("company_id", companyID))
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Company not found"})
		}
		log.Error("Failed to load company", zap.Uint("company_id", companyID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to delete attachment"})
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

	var attachment model.HistoryAttachment
	result = database.GetDB().
		Where("id = ? AND history_id = ?", attachmentID, history.ID).
		First(&attachment)
	if result.Error != nil {
		log.Warn("Attachment not found or does not belong to history",
			zap.Uint("attachment_id", attachmentID),
			zap.Uint("history_id", historyID),
			zap.Error(result.Error))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Attachment not found"})
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())

	if err := database.GetDB().Delete(&attachment).Error; err != nil {
		log.Error("Failed to delete attachment", zap.Uint("attachment_id", attachmentID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to delete attachment"})
	}

	log.Info("Attachment deleted successfully",
		zap.Uint("attachment_id", attachment.ID),
		zap.Uint("history_id", history.ID))
	return c.JSON(http.StatusOK, attachment)
}
