package handler

import (
	"net/http"

	"github.com/dafibh/pooldesk/pooldesk-backend/internal/domain"
	"github.com/dafibh/pooldesk/pooldesk-backend/internal/middleware"
	"github.com/dafibh/pooldesk/pooldesk-backend/internal/service"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// LoanHandler handles loan-related HTTP requests
type LoanHandler struct {
	loanService *service.LoanService
}

// NewLoanHandler creates a new LoanHandler
func NewLoanHandler(loanService *service.LoanService) *LoanHandler {
	return &LoanHandler{loanService: loanService}
}

// CreateLoanRequest represents the create loan request body
type CreateLoanRequest struct {
	UserID         string  `json:"userId"`
	Amount         string  `json:"amount"`
	InterestRate   *string `json:"interestRate,omitempty"`
	DurationMonths *int32  `json:"durationMonths,omitempty"`
	Purpose        *string `json:"purpose,omitempty"`
}

// LoanResponse represents a loan in API responses
type LoanResponse struct {
	ID                    string  `json:"id"`
	UserID                string  `json:"userId"`
	MemberName            string  `json:"memberName"`
	MemberEmail           string  `json:"memberEmail"`
	MemberCode            *string `json:"memberCode,omitempty"`
	Amount                string  `json:"amount"`
	InterestRate          string  `json:"interestRate"`
	DurationMonths        int32   `json:"durationMonths"`
	Purpose               *string `json:"purpose,omitempty"`
	Status                string  `json:"status"`
	MonthlyInterest       string  `json:"monthlyInterest"`
	InterestPaidThisMonth bool    `json:"interestPaidThisMonth"`
	RequestedAt           string  `json:"requestedAt"`
	ApprovedAt            *string `json:"approvedAt,omitempty"`
	ApprovedBy            *string `json:"approvedBy,omitempty"`
	CreatedAt             string  `json:"createdAt"`
	UpdatedAt             string  `json:"updatedAt"`
}

// CreateLoan handles POST /api/v1/admin/loans
func (h *LoanHandler) CreateLoan(c echo.Context) error {
	var req CreateLoanRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	var fieldErrors []ValidationError
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		fieldErrors = append(fieldErrors, ValidationError{Field: "userId", Message: "Must be a valid member ID"})
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		fieldErrors = append(fieldErrors, ValidationError{Field: "amount", Message: "Must be a decimal number"})
	}

	input := service.CreateLoanInput{
		UserID:         userID,
		Amount:         amount,
		DurationMonths: req.DurationMonths,
		Purpose:        req.Purpose,
	}
	if req.InterestRate != nil && *req.InterestRate != "" {
		rate, err := decimal.NewFromString(*req.InterestRate)
		if err != nil {
			fieldErrors = append(fieldErrors, ValidationError{Field: "interestRate", Message: "Must be a decimal number"})
		} else {
			input.InterestRate = &rate
		}
	}
	if len(fieldErrors) > 0 {
		return NewValidationError(c, "Invalid loan", fieldErrors)
	}

	loan, err := h.loanService.CreateLoan(c.Request().Context(), middleware.GetMember(c), input)
	if err != nil {
		return respondError(c, err, "create loan")
	}

	return c.JSON(http.StatusCreated, toLoanResponse(loan))
}

// ListLoans handles GET /api/v1/admin/loans?status=&userId=&search=
func (h *LoanHandler) ListLoans(c echo.Context) error {
	filter := domain.LoanFilter{
		Status: domain.LoanStatus(c.QueryParam("status")),
		Search: c.QueryParam("search"),
	}
	if raw := c.QueryParam("userId"); raw != "" {
		userID, err := uuid.Parse(raw)
		if err != nil {
			return NewValidationError(c, "Invalid member ID", []ValidationError{{Field: "userId", Message: "Must be a valid member ID"}})
		}
		filter.UserID = &userID
	}

	loans, err := h.loanService.ListLoans(c.Request().Context(), filter)
	if err != nil {
		return respondError(c, err, "list loans")
	}

	response := make([]LoanResponse, len(loans))
	for i, loan := range loans {
		response[i] = toLoanResponse(loan)
	}
	return c.JSON(http.StatusOK, response)
}

// GetLoan handles GET /api/v1/admin/loans/:loanId
func (h *LoanHandler) GetLoan(c echo.Context) error {
	loanID, err := uuid.Parse(c.Param("loanId"))
	if err != nil {
		return NewValidationError(c, "Invalid loan ID", nil)
	}

	loan, err := h.loanService.GetLoan(c.Request().Context(), loanID)
	if err != nil {
		log.Debug().Err(err).Str("loan_id", loanID.String()).Msg("Loan lookup failed")
		return respondError(c, err, "get loan")
	}

	return c.JSON(http.StatusOK, toLoanResponse(loan))
}

func toLoanResponse(loan *service.LoanSummary) LoanResponse {
	resp := LoanResponse{
		ID:                    loan.ID.String(),
		UserID:                loan.UserID.String(),
		MemberName:            loan.MemberName,
		MemberEmail:           loan.MemberEmail,
		MemberCode:            loan.MemberCode,
		Amount:                loan.Amount.StringFixed(2),
		InterestRate:          loan.InterestRate.String(),
		DurationMonths:        loan.DurationMonths,
		Purpose:               loan.Purpose,
		Status:                string(loan.Status),
		MonthlyInterest:       loan.MonthlyInterest.StringFixed(2),
		InterestPaidThisMonth: loan.InterestPaidThisMonth,
		RequestedAt:           formatTime(loan.RequestedAt),
		ApprovedAt:            formatTimePtr(loan.ApprovedAt),
		CreatedAt:             formatTime(loan.CreatedAt),
		UpdatedAt:             formatTime(loan.UpdatedAt),
	}
	if loan.ApprovedBy != nil {
		approvedBy := loan.ApprovedBy.String()
		resp.ApprovedBy = &approvedBy
	}
	return resp
}
