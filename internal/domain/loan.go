package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var ErrLoanNotFound error = notFoundError("loan not found")

// LoanStatus is the lifecycle state of a loan
type LoanStatus string

const (
	LoanStatusPending   LoanStatus = "pending"
	LoanStatusApproved  LoanStatus = "approved"
	LoanStatusRejected  LoanStatus = "rejected"
	LoanStatusActive    LoanStatus = "active"
	LoanStatusCompleted LoanStatus = "completed"
)

// Valid reports whether s is a known loan status
func (s LoanStatus) Valid() bool {
	switch s {
	case LoanStatusPending, LoanStatusApproved, LoanStatusRejected, LoanStatusActive, LoanStatusCompleted:
		return true
	}
	return false
}

// Defaults applied when an admin records a new loan
const (
	DefaultLoanDurationMonths = 12
	MaxLoanPurposeLength      = 500
)

// DefaultInterestRate is the monthly percentage pre-filled for new loans
var DefaultInterestRate = decimal.NewFromInt(15)

// Loan is a member's outstanding borrowing. Amount is the current principal
// balance and only ever decreases through recorded payments.
type Loan struct {
	ID             uuid.UUID       `json:"id"`
	UserID         uuid.UUID       `json:"userId"`
	Amount         decimal.Decimal `json:"amount"`
	InterestRate   decimal.Decimal `json:"interestRate"`
	DurationMonths int32           `json:"durationMonths"`
	Purpose        *string         `json:"purpose,omitempty"`
	Status         LoanStatus      `json:"status"`
	RequestedAt    time.Time       `json:"requestedAt"`
	ApprovedAt     *time.Time      `json:"approvedAt,omitempty"`
	ApprovedBy     *uuid.UUID      `json:"approvedBy,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

func (l *Loan) Validate() error {
	if l.UserID == uuid.Nil {
		return NewValidationError("userId", "member is required")
	}
	if l.Amount.LessThanOrEqual(decimal.Zero) {
		return NewValidationError("amount", "loan amount must be positive")
	}
	if l.InterestRate.IsNegative() {
		return NewValidationError("interestRate", "interest rate cannot be negative")
	}
	if l.DurationMonths < 1 {
		return NewValidationError("durationMonths", "duration must be at least 1 month")
	}
	if l.Purpose != nil && len(*l.Purpose) > MaxLoanPurposeLength {
		return NewValidationError("purpose", "purpose must be 500 characters or less")
	}
	if !l.Status.Valid() {
		return NewValidationError("status", "unknown loan status")
	}
	return nil
}

// IsCompleted returns true once the balance has been fully repaid
func (l *Loan) IsCompleted() bool {
	return l.Status == LoanStatusCompleted
}

// LoanUpdate is the state change proposed for a loan after a payment. The store
// applies it only if the loan's balance still equals ExpectedAmount.
type LoanUpdate struct {
	LoanID         uuid.UUID       `json:"loanId"`
	ExpectedAmount decimal.Decimal `json:"expectedAmount"`
	Amount         decimal.Decimal `json:"amount"`
	Status         LoanStatus      `json:"status"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

// Apply returns a copy of loan with the update applied
func (u LoanUpdate) Apply(loan *Loan) *Loan {
	updated := *loan
	updated.Amount = u.Amount
	updated.Status = u.Status
	updated.UpdatedAt = u.UpdatedAt
	return &updated
}

// LoanFilter narrows loan listings. Zero values mean "any".
type LoanFilter struct {
	Status LoanStatus
	UserID *uuid.UUID
	Search string
}

// LoanWithMember is a loan joined with the borrower's profile fields
type LoanWithMember struct {
	Loan
	MemberName  string  `json:"memberName"`
	MemberEmail string  `json:"memberEmail"`
	MemberCode  *string `json:"memberCode,omitempty"`
}

type LoanRepository interface {
	Create(ctx context.Context, loan *Loan) (*Loan, error)
	GetByID(ctx context.Context, id uuid.UUID) (*LoanWithMember, error)
	List(ctx context.Context, filter LoanFilter) ([]*LoanWithMember, error)
}
