package handler

import (
	"net/http"

	"github.com/dafibh/pooldesk/pooldesk-backend/internal/domain"
	"github.com/dafibh/pooldesk/pooldesk-backend/internal/service"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// LoanPaymentHandler handles loan payment-related HTTP requests
type LoanPaymentHandler struct {
	paymentService *service.LoanPaymentService
}

// NewLoanPaymentHandler creates a new LoanPaymentHandler
func NewLoanPaymentHandler(paymentService *service.LoanPaymentService) *LoanPaymentHandler {
	return &LoanPaymentHandler{paymentService: paymentService}
}

// RecordPaymentRequest represents the record payment request body
type RecordPaymentRequest struct {
	InterestPaid    *bool   `json:"interestPaid"`
	PrincipalAmount *string `json:"principalAmount,omitempty"`
}

// LoanPaymentResponse represents a ledger entry in API responses
type LoanPaymentResponse struct {
	ID                 string `json:"id"`
	LoanID             string `json:"loanId"`
	UserID             string `json:"userId"`
	MonthYear          string `json:"monthYear"`
	PrincipalPaid      string `json:"principalPaid"`
	InterestPaid       string `json:"interestPaid"`
	InterestMarkedPaid bool   `json:"interestMarkedPaid"`
	RemainingBalance   string `json:"remainingBalance"`
	PaymentDate        string `json:"paymentDate"`
	Status             string `json:"status"`
	CreatedAt          string `json:"createdAt"`
}

// LoanBalanceResponse is the loan state after a payment
type LoanBalanceResponse struct {
	ID        string `json:"id"`
	Amount    string `json:"amount"`
	Status    string `json:"status"`
	UpdatedAt string `json:"updatedAt"`
}

// RecordPaymentResponse represents the result of recording a payment
type RecordPaymentResponse struct {
	Payment LoanPaymentResponse `json:"payment"`
	Loan    LoanBalanceResponse `json:"loan"`
}

// RecordPayment handles POST /api/v1/admin/loans/:loanId/payments
func (h *LoanPaymentHandler) RecordPayment(c echo.Context) error {
	loanID, err := uuid.Parse(c.Param("loanId"))
	if err != nil {
		return NewValidationError(c, "Invalid loan ID", nil)
	}

	var req RecordPaymentRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}
	if req.InterestPaid == nil {
		return NewValidationError(c, "interestPaid is required", []ValidationError{{Field: "interestPaid", Message: "Must be true or false"}})
	}

	input := service.RecordPaymentInput{InterestPaid: *req.InterestPaid}
	if req.PrincipalAmount != nil && *req.PrincipalAmount != "" {
		principal, err := decimal.NewFromString(*req.PrincipalAmount)
		if err != nil {
			return NewValidationError(c, "Invalid principal amount", []ValidationError{{Field: "principalAmount", Message: "Must be a decimal number"}})
		}
		input.PrincipalAmount = &principal
	}

	result, err := h.paymentService.RecordPayment(c.Request().Context(), loanID, input)
	if err != nil {
		return respondError(c, err, "record payment")
	}

	return c.JSON(http.StatusCreated, RecordPaymentResponse{
		Payment: toLoanPaymentResponse(result.Payment),
		Loan: LoanBalanceResponse{
			ID:        result.Loan.ID.String(),
			Amount:    result.Loan.Amount.StringFixed(2),
			Status:    string(result.Loan.Status),
			UpdatedAt: formatTime(result.Loan.UpdatedAt),
		},
	})
}

// ListLoanPayments handles GET /api/v1/admin/loans/:loanId/payments
func (h *LoanPaymentHandler) ListLoanPayments(c echo.Context) error {
	loanID, err := uuid.Parse(c.Param("loanId"))
	if err != nil {
		return NewValidationError(c, "Invalid loan ID", nil)
	}

	payments, err := h.paymentService.ListLoanPayments(c.Request().Context(), loanID)
	if err != nil {
		return respondError(c, err, "get loan payments")
	}

	return c.JSON(http.StatusOK, toLoanPaymentResponses(payments))
}

// ListPayments handles GET /api/v1/admin/payments?userId=&loanId=
func (h *LoanPaymentHandler) ListPayments(c echo.Context) error {
	var filter domain.PaymentFilter
	if raw := c.QueryParam("userId"); raw != "" {
		userID, err := uuid.Parse(raw)
		if err != nil {
			return NewValidationError(c, "Invalid member ID", []ValidationError{{Field: "userId", Message: "Must be a valid member ID"}})
		}
		filter.UserID = &userID
	}
	if raw := c.QueryParam("loanId"); raw != "" {
		loanID, err := uuid.Parse(raw)
		if err != nil {
			return NewValidationError(c, "Invalid loan ID", []ValidationError{{Field: "loanId", Message: "Must be a valid loan ID"}})
		}
		filter.LoanID = &loanID
	}

	payments, err := h.paymentService.ListPayments(c.Request().Context(), filter)
	if err != nil {
		return respondError(c, err, "get payment history")
	}

	return c.JSON(http.StatusOK, toLoanPaymentResponses(payments))
}

func toLoanPaymentResponses(payments []*domain.LoanPayment) []LoanPaymentResponse {
	response := make([]LoanPaymentResponse, len(payments))
	for i, p := range payments {
		response[i] = toLoanPaymentResponse(p)
	}
	return response
}

func toLoanPaymentResponse(p *domain.LoanPayment) LoanPaymentResponse {
	return LoanPaymentResponse{
		ID:                 p.ID.String(),
		LoanID:             p.LoanID.String(),
		UserID:             p.UserID.String(),
		MonthYear:          p.MonthYear,
		PrincipalPaid:      p.PrincipalPaid.StringFixed(2),
		InterestPaid:       p.InterestPaid.StringFixed(2),
		InterestMarkedPaid: p.InterestMarkedPaid,
		RemainingBalance:   p.RemainingBalance.StringFixed(2),
		PaymentDate:        formatTime(p.PaymentDate),
		Status:             string(p.Status),
		CreatedAt:          formatTime(p.CreatedAt),
	}
}
