package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/dafibh/pooldesk/pooldesk-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

const paymentColumns = `id, loan_id, user_id, month_year, principal_paid, interest_paid, interest_marked_paid,
	remaining_balance, payment_date, status, created_at`

// LoanPaymentRepository implements domain.LoanPaymentRepository using PostgreSQL
type LoanPaymentRepository struct {
	pool *pgxpool.Pool
}

// NewLoanPaymentRepository creates a new LoanPaymentRepository
func NewLoanPaymentRepository(pool *pgxpool.Pool) *LoanPaymentRepository {
	return &LoanPaymentRepository{pool: pool}
}

// ListByLoan retrieves a loan's ledger, newest first
func (r *LoanPaymentRepository) ListByLoan(ctx context.Context, loanID uuid.UUID) ([]*domain.LoanPayment, error) {
	return r.List(ctx, domain.PaymentFilter{LoanID: &loanID})
}

// List retrieves ledger entries across loans, newest first
func (r *LoanPaymentRepository) List(ctx context.Context, filter domain.PaymentFilter) ([]*domain.LoanPayment, error) {
	var (
		conditions []string
		args       []any
	)
	if filter.LoanID != nil {
		args = append(args, uuidToPg(*filter.LoanID))
		conditions = append(conditions, fmt.Sprintf("loan_id = $%d", len(args)))
	}
	if filter.UserID != nil {
		args = append(args, uuidToPg(*filter.UserID))
		conditions = append(conditions, fmt.Sprintf("user_id = $%d", len(args)))
	}

	query := `SELECT ` + paymentColumns + ` FROM loan_payments`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY payment_date DESC, created_at DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, domain.WrapStoreError("list payments", err)
	}
	defer rows.Close()

	var payments []*domain.LoanPayment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, domain.WrapStoreError("list payments", err)
		}
		payments = append(payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.WrapStoreError("list payments", err)
	}
	return payments, nil
}

func scanPayment(row pgx.Row) (*domain.LoanPayment, error) {
	var (
		id          pgtype.UUID
		loanID      pgtype.UUID
		userID      pgtype.UUID
		principal   pgtype.Numeric
		interest    pgtype.Numeric
		remaining   pgtype.Numeric
		paymentDate pgtype.Timestamptz
		status      string
		createdAt   pgtype.Timestamptz
		p           domain.LoanPayment
	)
	if err := row.Scan(&id, &loanID, &userID, &p.MonthYear, &principal, &interest, &p.InterestMarkedPaid,
		&remaining, &paymentDate, &status, &createdAt); err != nil {
		return nil, err
	}
	p.ID = pgToUUID(id)
	p.LoanID = pgToUUID(loanID)
	p.UserID = pgToUUID(userID)
	p.PrincipalPaid = pgNumericToDecimal(principal)
	p.InterestPaid = pgNumericToDecimal(interest)
	p.RemainingBalance = pgNumericToDecimal(remaining)
	p.PaymentDate = paymentDate.Time
	p.Status = domain.PaymentStatus(status)
	p.CreatedAt = createdAt.Time
	return &p, nil
}
