package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/dafibh/pooldesk/pooldesk-backend/internal/domain"
	"github.com/google/uuid"
)

const loanColumns = `l.id, l.user_id, l.amount, l.interest_rate, l.duration_months, l.purpose, l.status,
	l.requested_at, l.approved_at, l.approved_by, l.created_at, l.updated_at`

const loanWithMemberQuery = `SELECT ` + loanColumns + `, p.full_name, p.email, p.member_id
	FROM loans l
	JOIN profiles p ON p.id = l.user_id`

// LoanRepository implements domain.LoanRepository using SQLite
type LoanRepository struct {
	db *DB
}

// NewLoanRepository creates a new LoanRepository
func NewLoanRepository(db *DB) *LoanRepository {
	return &LoanRepository{db: db}
}

// Create creates a new loan
func (r *LoanRepository) Create(ctx context.Context, loan *domain.Loan) (*domain.Loan, error) {
	created := *loan
	if created.ID == uuid.Nil {
		created.ID = uuid.New()
	}
	created.UpdatedAt = created.CreatedAt

	approvedBy := uuid.NullUUID{}
	if loan.ApprovedBy != nil {
		approvedBy = uuid.NullUUID{UUID: *loan.ApprovedBy, Valid: true}
	}

	_, err := r.db.conn.ExecContext(ctx, `
		INSERT INTO loans (id, user_id, amount, interest_rate, duration_months, purpose, status,
			requested_at, approved_at, approved_by, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		created.ID,
		created.UserID,
		created.Amount,
		created.InterestRate,
		created.DurationMonths,
		nullString(created.Purpose),
		string(created.Status),
		formatTime(created.RequestedAt),
		formatTimePtr(created.ApprovedAt),
		approvedBy,
		formatTime(created.CreatedAt),
		formatTime(created.UpdatedAt),
	)
	if err != nil {
		return nil, domain.WrapStoreError("create loan", err)
	}
	return &created, nil
}

// GetByID retrieves a loan with its borrower's profile
func (r *LoanRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.LoanWithMember, error) {
	row := r.db.conn.QueryRowContext(ctx, loanWithMemberQuery+` WHERE l.id = ?`, id)
	loan, err := scanLoanWithMember(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
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
		conditions = append(conditions, "l.status = ?")
		args = append(args, string(filter.Status))
	}
	if filter.UserID != nil {
		conditions = append(conditions, "l.user_id = ?")
		args = append(args, *filter.UserID)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + escapeLike(search) + "%"
		conditions = append(conditions,
			`(p.full_name LIKE ? ESCAPE '\' OR p.email LIKE ? ESCAPE '\' OR COALESCE(p.member_id, '') LIKE ? ESCAPE '\')`)
		args = append(args, pattern, pattern, pattern)
	}

	query := loanWithMemberQuery
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY l.created_at DESC"

	rows, err := r.db.conn.QueryContext(ctx, query, args...)
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

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

type loanRow struct {
	loan        domain.Loan
	purpose     sql.NullString
	status      string
	requestedAt string
	approvedAt  sql.NullString
	approvedBy  uuid.NullUUID
	createdAt   string
	updatedAt   string
}

func (l *loanRow) dest() []any {
	return []any{&l.loan.ID, &l.loan.UserID, &l.loan.Amount, &l.loan.InterestRate, &l.loan.DurationMonths,
		&l.purpose, &l.status, &l.requestedAt, &l.approvedAt, &l.approvedBy, &l.createdAt, &l.updatedAt}
}

func (l *loanRow) toDomain() (*domain.Loan, error) {
	loan := l.loan
	var err error
	if loan.RequestedAt, err = parseTime(l.requestedAt); err != nil {
		return nil, err
	}
	if loan.ApprovedAt, err = parseTimePtr(l.approvedAt); err != nil {
		return nil, err
	}
	if loan.CreatedAt, err = parseTime(l.createdAt); err != nil {
		return nil, err
	}
	if loan.UpdatedAt, err = parseTime(l.updatedAt); err != nil {
		return nil, err
	}
	loan.Purpose = stringPtr(l.purpose)
	loan.Status = domain.LoanStatus(l.status)
	if l.approvedBy.Valid {
		id := l.approvedBy.UUID
		loan.ApprovedBy = &id
	}
	return &loan, nil
}

func scanLoan(row scanner) (*domain.Loan, error) {
	var l loanRow
	if err := row.Scan(l.dest()...); err != nil {
		return nil, err
	}
	return l.toDomain()
}

func scanLoanWithMember(row scanner) (*domain.LoanWithMember, error) {
	var (
		l          loanRow
		name       string
		email      string
		memberCode sql.NullString
	)
	if err := row.Scan(append(l.dest(), &name, &email, &memberCode)...); err != nil {
		return nil, err
	}
	loan, err := l.toDomain()
	if err != nil {
		return nil, err
	}
	return &domain.LoanWithMember{
		Loan:        *loan,
		MemberName:  name,
		MemberEmail: email,
		MemberCode:  stringPtr(memberCode),
	}, nil
}
