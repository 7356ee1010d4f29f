package domain

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RawAmount is a line-item value exactly as the source provided it. The source is
// a loosely typed reporting view, so the text may be empty or not a number.
type RawAmount string

// Decimal parses the amount, degrading anything missing or non-numeric to zero
func (r RawAmount) Decimal() decimal.Decimal {
	s := strings.TrimSpace(string(r))
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// UnmarshalJSON accepts numbers and strings; anything else becomes empty
func (r *RawAmount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		*r = ""
		return nil
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			*r = ""
			return nil
		}
		*r = RawAmount(s)
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		*r = RawAmount(data)
	default:
		*r = ""
	}
	return nil
}

// RawAmountFrom formats a decimal read from a typed column
func RawAmountFrom(d *decimal.Decimal) RawAmount {
	if d == nil {
		return ""
	}
	return RawAmount(d.String())
}

// MemberCashBillSnapshot is a read-only, point-in-time projection of one member's
// figures for the printed cash bill. Fine is display-only; it never feeds the ledger.
type MemberCashBillSnapshot struct {
	UserID    uuid.UUID `json:"user_id"`
	FullName  string    `json:"full_name"`
	Name      string    `json:"name,omitempty"`
	MemberID  string    `json:"member_id,omitempty"`
	VoucherNo string    `json:"voucher_no,omitempty"`
	Voucher   string    `json:"voucher,omitempty"`

	SubscriptionIncome      RawAmount `json:"subscription_income"`
	LoanBalance             RawAmount `json:"loan_balance"`
	MonthlyInterest         RawAmount `json:"monthly_interest"`
	UpdatedPrincipalBalance RawAmount `json:"updated_principal_balance"`
	MonthlyInstallment      RawAmount `json:"monthly_installment"`
	InstallmentInterest     RawAmount `json:"installment_interest"`
	InterestMonths          RawAmount `json:"interest_months"`
	TotalLoanBalance        RawAmount `json:"total_loan_balance"`
	Fine                    RawAmount `json:"fine"`
	TotalAmountToPay        RawAmount `json:"total_amount_to_pay"`
}

// LineItem is one labelled row of a cash bill
type LineItem struct {
	Label  string
	Amount decimal.Decimal
}

// LineItems returns the nine bill rows in print order
func (s *MemberCashBillSnapshot) LineItems() []LineItem {
	return []LineItem{
		{"Subscription Income", s.SubscriptionIncome.Decimal()},
		{"Principal Balance", s.LoanBalance.Decimal()},
		{"Interest", s.MonthlyInterest.Decimal()},
		{"Principal Balance", s.UpdatedPrincipalBalance.Decimal()},
		{"Monthly Installment / Month", s.MonthlyInstallment.Decimal()},
		{"Installment Interest", s.InstallmentInterest.Decimal()},
		{"Interest Months", s.InterestMonths.Decimal()},
		{"Total Loan Balance", s.TotalLoanBalance.Decimal()},
		{"Fine", s.Fine.Decimal()},
	}
}

// Total is the amount due as supplied by the source. It is not re-derived from
// the line items.
func (s *MemberCashBillSnapshot) Total() decimal.Decimal {
	return s.TotalAmountToPay.Decimal()
}

// CashBillRepository reads member snapshots. A nil userID returns every member.
type CashBillRepository interface {
	ListSnapshots(ctx context.Context, userID *uuid.UUID) ([]*MemberCashBillSnapshot, error)
}
