package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/dafibh/pooldesk/pooldesk-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const memberColumns = `id, auth0_id, email, full_name, member_id, phone, role, monthly_contribution, created_at, updated_at`

// MemberRepository implements domain.MemberRepository using SQLite
type MemberRepository struct {
	db *DB
}

// NewMemberRepository creates a new MemberRepository
func NewMemberRepository(db *DB) *MemberRepository {
	return &MemberRepository{db: db}
}

// GetByID retrieves a member by their ID
func (r *MemberRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Member, error) {
	row := r.db.conn.QueryRowContext(ctx, `SELECT `+memberColumns+` FROM profiles WHERE id = ?`, id)
	return r.get(row, "get member")
}

// GetByAuth0ID retrieves a member by their Auth0 subject
func (r *MemberRepository) GetByAuth0ID(ctx context.Context, auth0ID string) (*domain.Member, error) {
	row := r.db.conn.QueryRowContext(ctx, `SELECT `+memberColumns+` FROM profiles WHERE auth0_id = ?`, auth0ID)
	return r.get(row, "get member by auth0 id")
}

func (r *MemberRepository) get(row *sql.Row, op string) (*domain.Member, error) {
	member, err := scanMember(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrMemberNotFound
		}
		return nil, domain.WrapStoreError(op, err)
	}
	return member, nil
}

// List retrieves all members ordered by name
func (r *MemberRepository) List(ctx context.Context) ([]*domain.Member, error) {
	rows, err := r.db.conn.QueryContext(ctx, `SELECT `+memberColumns+` FROM profiles ORDER BY full_name`)
	if err != nil {
		return nil, domain.WrapStoreError("list members", err)
	}
	defer rows.Close()

	var members []*domain.Member
	for rows.Next() {
		member, err := scanMember(rows)
		if err != nil {
			return nil, domain.WrapStoreError("list members", err)
		}
		members = append(members, member)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.WrapStoreError("list members", err)
	}
	return members, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanMember(row scanner) (*domain.Member, error) {
	var (
		m            domain.Member
		memberID     sql.NullString
		phone        sql.NullString
		role         string
		contribution decimal.Decimal
		createdAt    string
		updatedAt    string
	)
	if err := row.Scan(&m.ID, &m.Auth0ID, &m.Email, &m.FullName, &memberID, &phone, &role, &contribution, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	var err error
	if m.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if m.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	m.MemberID = stringPtr(memberID)
	m.Phone = stringPtr(phone)
	m.Role = domain.Role(role)
	m.MonthlyContribution = contribution
	return &m, nil
}
