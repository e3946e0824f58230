package handler

import (
	"net/http"
	"strconv"
	"strings"

	"company-service/internal/model"
	"company-service/pkg/database"

	"github.com/labstack/echo/v4"
)

// violations collects field-level validation messages returned to the caller
// on a 400 response.
type violations map[string]string

func (v violations) add(field, message string) {
	v[field] = message
}

func (v violations) empty() bool {
	return len(v) == 0
}

// validationError writes the uniform 400 response with field messages
func validationError(c echo.Context, v violations) error {
	return c.JSON(http.StatusBadRequest, echo.Map{
		"error":  "validation failed",
		"fields": v,
	})
}

// paramID parses a numeric path parameter
func paramID(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}

// orderParam resolves the caller-supplied sort direction for list endpoints.
// The direction is always explicit in the query layer; an unknown value is a
// validation error rather than a silent default.
func orderParam(c echo.Context) (string, bool) {
	switch strings.ToLower(c.QueryParam("order")) {
	case "", "desc":
		return "desc", true
	case "asc":
		return "asc", true
	default:
		return "", false
	}
}

// findCompany loads the parent company for child-record operations.
// A missing parent is reported as not found before anything is written.
func findCompany(companyID uint) (*model.Company, error) {
	var company model.Company
	if err := database.GetDB().First(&company, companyID).Error; err != nil {
		return nil, err
	}
	return &company, nil
}
