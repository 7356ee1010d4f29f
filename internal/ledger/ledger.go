// Package ledger computes how a loan's balance, interest and status move when a
// payment is recorded. It holds no state and performs no I/O: callers pass in the
// loan and the current time and persist the proposed result themselves.
package ledger

import (
	"sort"
	"time"

	"github.com/dafibh/pooldesk/pooldesk-backend/internal/domain"
	"github.com/dafibh/pooldesk/pooldesk-backend/internal/util"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// PaymentIntent is what the admin reports for one payment event
type PaymentIntent struct {
	InterestPaid bool
	// Principal is nil when no principal was repaid
	Principal *decimal.Decimal
}

// Result is the proposed ledger entry and loan update. Both must be committed
// together.
type Result struct {
	Payment *domain.LoanPayment
	Update  domain.LoanUpdate
}

// RecordPayment validates intent against loan and returns the entry to append
// and the loan state that follows from it.
//
// Interest is simple interest at the loan's percentage rate, applied once per
// call to the balance before this payment. The period label comes from now, so
// recording twice in a month appends two entries.
func RecordPayment(loan *domain.Loan, intent PaymentIntent, now time.Time) (*Result, error) {
	if loan == nil {
		return nil, domain.ErrLoanNotFound
	}
	if loan.Status != domain.LoanStatusActive {
		return nil, domain.NewValidationError("loan", "payments can only be recorded against an active loan (status is "+string(loan.Status)+")")
	}

	currentBalance := loan.Amount

	principal := decimal.Zero
	if intent.Principal != nil {
		principal = *intent.Principal
	}
	if principal.IsNegative() {
		return nil, domain.NewValidationError("principalAmount", "principal amount cannot be negative")
	}
	if principal.GreaterThan(currentBalance) {
		return nil, domain.NewValidationError("principalAmount", "principal amount must be between 0 and "+currentBalance.StringFixed(2))
	}
	if !intent.InterestPaid && !principal.IsPositive() {
		return nil, domain.NewValidationError("", "nothing to record")
	}

	interest := decimal.Zero
	if intent.InterestPaid {
		interest = InterestOn(currentBalance, loan.InterestRate)
	}

	remaining := decimal.Max(decimal.Zero, currentBalance.Sub(principal))

	status := loan.Status
	if remaining.IsZero() {
		status = domain.LoanStatusCompleted
	}

	payment := &domain.LoanPayment{
		LoanID:             loan.ID,
		UserID:             loan.UserID,
		MonthYear:          util.MonthLabel(now),
		PrincipalPaid:      principal,
		InterestPaid:       interest,
		InterestMarkedPaid: intent.InterestPaid,
		RemainingBalance:   remaining,
		PaymentDate:        now,
		Status:             domain.PaymentStatusPaid,
	}

	return &Result{
		Payment: payment,
		Update: domain.LoanUpdate{
			LoanID:         loan.ID,
			ExpectedAmount: currentBalance,
			Amount:         remaining,
			Status:         status,
			UpdatedAt:      now,
		},
	}, nil
}

// InterestOn returns balance * rate / 100
func InterestOn(balance, ratePercent decimal.Decimal) decimal.Decimal {
	return balance.Mul(ratePercent).Div(hundred)
}

// MonthlyInterest is the interest the loan would owe if interest were recorded now
func MonthlyInterest(loan *domain.Loan) decimal.Decimal {
	return InterestOn(loan.Amount, loan.InterestRate)
}

// IsInterestPaidThisCycle looks at the most recent entry of payments, which must
// be ordered by payment date newest first. It reports whether that entry falls in
// now's calendar month and had interest marked as paid.
func IsInterestPaidThisCycle(payments []*domain.LoanPayment, now time.Time) bool {
	if len(payments) == 0 || payments[0] == nil {
		return false
	}
	latest := payments[0]
	return latest.InterestMarkedPaid && util.SameCalendarMonth(latest.PaymentDate, now)
}

// SortByPaymentDateDesc orders payments newest first, in place
func SortByPaymentDateDesc(payments []*domain.LoanPayment) {
	sort.SliceStable(payments, func(i, j int) bool {
		return payments[i].PaymentDate.After(payments[j].PaymentDate)
	})
}
