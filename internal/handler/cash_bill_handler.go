package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/dafibh/pooldesk/pooldesk-backend/internal/export"
	"github.com/dafibh/pooldesk/pooldesk-backend/internal/service"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// CashBillHandler serves cash bill downloads
type CashBillHandler struct {
	cashBillService *service.CashBillService
}

// NewCashBillHandler creates a new CashBillHandler
func NewCashBillHandler(cashBillService *service.CashBillService) *CashBillHandler {
	return &CashBillHandler{cashBillService: cashBillService}
}

// CashBillRequest represents the cash bill export request body
type CashBillRequest struct {
	SelectedUser *string `json:"selectedUser,omitempty"`
	Format       string  `json:"format,omitempty"`
}

// Export handles POST /api/v1/admin/cash-bills. The body may select one member
// and a format; the format can also be given as ?format=.
func (h *CashBillHandler) Export(c echo.Context) error {
	var req CashBillRequest
	if c.Request().ContentLength != 0 {
		if err := c.Bind(&req); err != nil {
			return NewValidationError(c, "Invalid request body", nil)
		}
	}
	if req.Format == "" {
		req.Format = c.QueryParam("format")
	}

	format, err := export.ParseFormat(req.Format)
	if err != nil {
		return respondError(c, err, "export cash bill")
	}

	input := service.CashBillRequest{Format: format}
	if req.SelectedUser != nil && *req.SelectedUser != "" {
		userID, err := uuid.Parse(*req.SelectedUser)
		if err != nil {
			return NewValidationError(c, "Invalid member ID", []ValidationError{{Field: "selectedUser", Message: "Must be a valid member ID"}})
		}
		input.SelectedUser = &userID
	}

	download, err := h.cashBillService.Generate(c.Request().Context(), input)
	if err != nil {
		return respondError(c, err, "export cash bill")
	}

	header := c.Response().Header()
	header.Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", download.Filename))
	header.Set("X-Member-Count", strconv.Itoa(download.MemberCount))
	if download.ArchiveURL != "" {
		header.Set("X-Archive-URL", download.ArchiveURL)
	}

	return c.Blob(http.StatusOK, download.Artifact.ContentType, download.Artifact.Data)
}
