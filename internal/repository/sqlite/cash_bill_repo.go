package sqlite

import (
	"context"
	"database/sql"

	"github.com/dafibh/pooldesk/pooldesk-backend/internal/domain"
	"github.com/google/uuid"
)

// CashBillRepository implements domain.CashBillRepository over the
// member_cash_bill_data view
type CashBillRepository struct {
	db *DB
}

// NewCashBillRepository creates a new CashBillRepository
func NewCashBillRepository(db *DB) *CashBillRepository {
	return &CashBillRepository{db: db}
}

// ListSnapshots reads one snapshot per member, or only userID's when set
func (r *CashBillRepository) ListSnapshots(ctx context.Context, userID *uuid.UUID) ([]*domain.MemberCashBillSnapshot, error) {
	query := `SELECT user_id, full_name, name, member_id, voucher_no, voucher,
		subscription_income, loan_balance, monthly_interest, updated_principal_balance,
		monthly_installment, installment_interest, interest_months, total_loan_balance,
		fine, total_amount_to_pay
		FROM member_cash_bill_data`
	var args []any
	if userID != nil {
		query += ` WHERE user_id = ?`
		args = append(args, *userID)
	}
	query += ` ORDER BY full_name`

	rows, err := r.db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, domain.WrapStoreError("list cash bill snapshots", err)
	}
	defer rows.Close()

	var snapshots []*domain.MemberCashBillSnapshot
	for rows.Next() {
		var (
			s       domain.MemberCashBillSnapshot
			text    [5]sql.NullString
			amounts [10]sql.NullString
		)
		dest := []any{&s.UserID}
		for i := range text {
			dest = append(dest, &text[i])
		}
		for i := range amounts {
			dest = append(dest, &amounts[i])
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, domain.WrapStoreError("list cash bill snapshots", err)
		}

		s.FullName, s.Name, s.MemberID, s.VoucherNo, s.Voucher =
			text[0].String, text[1].String, text[2].String, text[3].String, text[4].String
		for i, field := range []*domain.RawAmount{
			&s.SubscriptionIncome, &s.LoanBalance, &s.MonthlyInterest, &s.UpdatedPrincipalBalance,
			&s.MonthlyInstallment, &s.InstallmentInterest, &s.InterestMonths, &s.TotalLoanBalance,
			&s.Fine, &s.TotalAmountToPay,
		} {
			*field = domain.RawAmount(amounts[i].String)
		}
		snapshots = append(snapshots, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.WrapStoreError("list cash bill snapshots", err)
	}
	return snapshots, nil
}
