package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dafibh/pooldesk/pooldesk-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

const loanColumns = `l.id, l.user_id, l.amount, l.interest_rate, l.duration_months, l.purpose, l.status,
	l.requested_at, l.approved_at, l.approved_by, l.created_at, l.updated_at`

const loanWithMemberQuery = `SELECT ` + loanColumns + `, p.full_name, p.email, p.member_id
	FROM loans l
	JOIN profiles p ON p.id = l.user_id`

// LoanRepository implements domain.LoanRepository using PostgreSQL
type LoanRepository struct {
	pool *pgxpool.Pool
}

// NewLoanRepository creates a new LoanRepository
func NewLoanRepository(pool *pgxpool.Pool) *LoanRepository {
	return &LoanRepository{pool: pool}
}

// Create creates a new loan
func (r *LoanRepository) Create(ctx context.Context, loan *domain.Loan) (*domain.Loan, error) {
	amount, err := decimalToPgNumeric(loan.Amount)
	if err != nil {
		return nil, domain.WrapStoreError("create loan", err)
	}
	rate, err := decimalToPgNumeric(loan.InterestRate)
	if err != nil {
		return nil, domain.WrapStoreError("create loan", err)
	}

	id := loan.ID
	if id == uuid.Nil {
		id = uuid.New()
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO loans AS l (id, user_id, amount, interest_rate, duration_months, purpose, status,
			requested_at, approved_at, approved_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11)
		RETURNING `+loanColumns,
		uuidToPg(id),
		uuidToPg(loan.UserID),
		amount,
		rate,
		loan.DurationMonths,
		stringPtrToPgText(loan.Purpose),
		string(loan.Status),
		loan.RequestedAt,
		timePtrToPg(loan.ApprovedAt),
		uuidPtrToPg(loan.ApprovedBy),
		loan.CreatedAt,
	)
	created, err := scanLoan(row)
	if err != nil {
		return nil, domain.WrapStoreError("create loan", err)
	}
	return created, nil
}

// GetByID retrieves a loan with its borrower's profile
func (r *LoanRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.LoanWithMember, error) {
	row := r.pool.QueryRow(ctx, loanWithMemberQuery+` WHERE l.id = $1`, uuidToPg(id))
	loan, err := scanLoanWithMember(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrLoanNotFound
		}
		return nil, domain.WrapStoreError("get loan", err)
	}
	return loan, nil
}

// List retrieves loans matching filter, newest first
func (r *LoanRepository) List(ctx context.Context, filter domain.LoanFilter) ([]*domain.LoanWithMember, error) {
	var (
		conditions []string
		args       []any
	)
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		conditions = append(conditions, fmt.Sprintf("l.status = $%d", len(args)))
	}
	if filter.UserID != nil {
		args = append(args, uuidToPg(*filter.UserID))
		conditions = append(conditions, fmt.Sprintf("l.user_id = $%d", len(args)))
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		args = append(args, "%"+escapeLike(search)+"%")
		n := len(args)
		conditions = append(conditions, fmt.Sprintf(
			"(p.full_name ILIKE $%d OR p.email ILIKE $%d OR COALESCE(p.member_id, '') ILIKE $%d)", n, n, n))
	}

	query := loanWithMemberQuery
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY l.created_at DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, domain.WrapStoreError("list loans", err)
	}
	defer rows.Close()

	var loans []*domain.LoanWithMember
	for rows.Next() {
		loan, err := scanLoanWithMember(rows)
		if err != nil {
			return nil, domain.WrapStoreError("list loans", err)
		}
		loans = append(loans, loan)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.WrapStoreError("list loans", err)
	}
	return loans, nil
}

// escapeLike escapes LIKE wildcards in user input
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

type loanRow struct {
	id          pgtype.UUID
	userID      pgtype.UUID
	amount      pgtype.Numeric
	rate        pgtype.Numeric
	duration    int32
	purpose     pgtype.Text
	status      string
	requestedAt pgtype.Timestamptz
	approvedAt  pgtype.Timestamptz
	approvedBy  pgtype.UUID
	createdAt   pgtype.Timestamptz
	updatedAt   pgtype.Timestamptz
}

func (l *loanRow) dest() []any {
	return []any{&l.id, &l.userID, &l.amount, &l.rate, &l.duration, &l.purpose, &l.status,
		&l.requestedAt, &l.approvedAt, &l.approvedBy, &l.createdAt, &l.updatedAt}
}

func (l *loanRow) toDomain() *domain.Loan {
	return &domain.Loan{
		ID:             pgToUUID(l.id),
		UserID:         pgToUUID(l.userID),
		Amount:         pgNumericToDecimal(l.amount),
		InterestRate:   pgNumericToDecimal(l.rate),
		DurationMonths: l.duration,
		Purpose:        pgTextToStringPtr(l.purpose),
		Status:         domain.LoanStatus(l.status),
		RequestedAt:    l.requestedAt.Time,
		ApprovedAt:     pgToTimePtr(l.approvedAt),
		ApprovedBy:     pgToUUIDPtr(l.approvedBy),
		CreatedAt:      l.createdAt.Time,
		UpdatedAt:      l.updatedAt.Time,
	}
}

func scanLoan(row pgx.Row) (*domain.Loan, error) {
	var l loanRow
	if err := row.Scan(l.dest()...); err != nil {
		return nil, err
	}
	return l.toDomain(), nil
}

func scanLoanWithMember(row pgx.Row) (*domain.LoanWithMember, error) {
	var (
		l          loanRow
		name       string
		email      string
		memberCode pgtype.Text
	)
	if err := row.Scan(append(l.dest(), &name, &email, &memberCode)...); err != nil {
		return nil, err
	}
	return &domain.LoanWithMember{
		Loan:        *l.toDomain(),
		MemberName:  name,
		MemberEmail: email,
		MemberCode:  pgTextToStringPtr(memberCode),
	}, nil
}
