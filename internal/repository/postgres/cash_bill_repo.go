package postgres

import (
	"context"

	"github.com/dafibh/pooldesk/pooldesk-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CashBillRepository implements domain.CashBillRepository over the
// member_cash_bill_data reporting view
type CashBillRepository struct {
	pool *pgxpool.Pool
}

// NewCashBillRepository creates a new CashBillRepository
func NewCashBillRepository(pool *pgxpool.Pool) *CashBillRepository {
	return &CashBillRepository{pool: pool}
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
		query += ` WHERE user_id = $1`
		args = append(args, uuidToPg(*userID))
	}
	query += ` ORDER BY full_name`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, domain.WrapStoreError("list cash bill snapshots", err)
	}
	defer rows.Close()

	var snapshots []*domain.MemberCashBillSnapshot
	for rows.Next() {
		s, err := scanSnapshot(rows)
		if err != nil {
			return nil, domain.WrapStoreError("list cash bill snapshots", err)
		}
		snapshots = append(snapshots, s)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.WrapStoreError("list cash bill snapshots", err)
	}
	return snapshots, nil
}

func scanSnapshot(row pgx.Row) (*domain.MemberCashBillSnapshot, error) {
	var (
		userID    pgtype.UUID
		fullName  pgtype.Text
		name      pgtype.Text
		memberID  pgtype.Text
		voucherNo pgtype.Text
		voucher   pgtype.Text
		amounts   [10]pgtype.Numeric
	)
	dest := []any{&userID, &fullName, &name, &memberID, &voucherNo, &voucher}
	for i := range amounts {
		dest = append(dest, &amounts[i])
	}
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	raw := func(i int) domain.RawAmount {
		return domain.RawAmountFrom(pgNumericToDecimalPtr(amounts[i]))
	}
	return &domain.MemberCashBillSnapshot{
		UserID:                  pgToUUID(userID),
		FullName:                fullName.String,
		Name:                    name.String,
		MemberID:                memberID.String,
		VoucherNo:               voucherNo.String,
		Voucher:                 voucher.String,
		SubscriptionIncome:      raw(0),
		LoanBalance:             raw(1),
		MonthlyInterest:         raw(2),
		UpdatedPrincipalBalance: raw(3),
		MonthlyInstallment:      raw(4),
		InstallmentInterest:     raw(5),
		InterestMonths:          raw(6),
		TotalLoanBalance:        raw(7),
		Fine:                    raw(8),
		TotalAmountToPay:        raw(9),
	}, nil
}
