package sqlite

import (
	"context"
	"strings"

	"github.com/dafibh/pooldesk/pooldesk-backend/internal/domain"
	"github.com/google/uuid"
)

const paymentColumns = `id, loan_id, user_id, month_year, principal_paid, interest_paid, interest_marked_paid,
	remaining_balance, payment_date, status, created_at`

// LoanPaymentRepository implements domain.LoanPaymentRepository using SQLite
type LoanPaymentRepository struct {
	db *DB
}

// NewLoanPaymentRepository creates a new LoanPaymentRepository
func NewLoanPaymentRepository(db *DB) *LoanPaymentRepository {
	return &LoanPaymentRepository{db: db}
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
		conditions = append(conditions, "loan_id = ?")
		args = append(args, *filter.LoanID)
	}
	if filter.UserID != nil {
		conditions = append(conditions, "user_id = ?")
		args = append(args, *filter.UserID)
	}

	query := `SELECT ` + paymentColumns + ` FROM loan_payments`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY payment_date DESC, created_at DESC"

	rows, err := r.db.conn.QueryContext(ctx, query, args...)
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

func scanPayment(row scanner) (*domain.LoanPayment, error) {
	var (
		p           domain.LoanPayment
		status      string
		paymentDate string
		createdAt   string
	)
	if err := row.Scan(&p.ID, &p.LoanID, &p.UserID, &p.MonthYear, &p.PrincipalPaid, &p.InterestPaid,
		&p.InterestMarkedPaid, &p.RemainingBalance, &paymentDate, &status, &createdAt); err != nil {
		return nil, err
	}
	var err error
	if p.PaymentDate, err = parseTime(paymentDate); err != nil {
		return nil, err
	}
	if p.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	p.Status = domain.PaymentStatus(status)
	return &p, nil
}
