package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentStatus labels a ledger entry
type PaymentStatus string

const (
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusUnpaid  PaymentStatus = "unpaid"
	PaymentStatusMissed  PaymentStatus = "missed"
	PaymentStatusPartial PaymentStatus = "partial"
)

// LoanPayment is an immutable ledger entry created once per recorded payment.
// RemainingBalance is the loan's principal balance after this payment.
type LoanPayment struct {
	ID                 uuid.UUID       `json:"id"`
	LoanID             uuid.UUID       `json:"loanId"`
	UserID             uuid.UUID       `json:"userId"`
	MonthYear          string          `json:"monthYear"`
	PrincipalPaid      decimal.Decimal `json:"principalPaid"`
	InterestPaid       decimal.Decimal `json:"interestPaid"`
	InterestMarkedPaid bool            `json:"interestMarkedPaid"`
	RemainingBalance   decimal.Decimal `json:"remainingBalance"`
	PaymentDate        time.Time       `json:"paymentDate"`
	Status             PaymentStatus   `json:"status"`
	CreatedAt          time.Time       `json:"createdAt"`
}

// PaymentFilter narrows payment history listings
type PaymentFilter struct {
	UserID *uuid.UUID
	LoanID *uuid.UUID
}

// LoanPaymentRepository reads the ledger. Entries are only ever written through
// LedgerTx.InsertPayment, together with the loan update they belong to.
type LoanPaymentRepository interface {
	// ListByLoan returns a loan's entries ordered by payment date, newest first
	ListByLoan(ctx context.Context, loanID uuid.UUID) ([]*LoanPayment, error)
	// List returns entries across loans ordered by payment date, newest first
	List(ctx context.Context, filter PaymentFilter) ([]*LoanPayment, error)
}

// LedgerTx is the view of the store available inside a ledger transaction
type LedgerTx interface {
	// GetLoanForUpdate reads the loan and locks it until the transaction ends
	GetLoanForUpdate(ctx context.Context, id uuid.UUID) (*Loan, error)
	InsertPayment(ctx context.Context, payment *LoanPayment) error
	// UpdateLoan applies update and returns ErrConcurrentUpdate when the stored
	// balance no longer equals update.ExpectedAmount
	UpdateLoan(ctx context.Context, update LoanUpdate) error
}

// LedgerStore runs fn atomically: either every write made through the LedgerTx
// commits or none does.
type LedgerStore interface {
	WithinTx(ctx context.Context, fn func(tx LedgerTx) error) error
}
