package postgres

import (
	"context"
	"errors"

	"github.com/dafibh/pooldesk/pooldesk-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

const memberColumns = `id, auth0_id, email, full_name, member_id, phone, role, monthly_contribution, created_at, updated_at`

// MemberRepository implements domain.MemberRepository using PostgreSQL
type MemberRepository struct {
	pool *pgxpool.Pool
}

// NewMemberRepository creates a new MemberRepository
func NewMemberRepository(pool *pgxpool.Pool) *MemberRepository {
	return &MemberRepository{pool: pool}
}

// GetByID retrieves a member by their ID
func (r *MemberRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Member, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+memberColumns+` FROM profiles WHERE id = $1`, uuidToPg(id))
	member, err := scanMember(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrMemberNotFound
		}
		return nil, domain.WrapStoreError("get member", err)
	}
	return member, nil
}

// GetByAuth0ID retrieves a member by their Auth0 subject
func (r *MemberRepository) GetByAuth0ID(ctx context.Context, auth0ID string) (*domain.Member, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+memberColumns+` FROM profiles WHERE auth0_id = $1`, auth0ID)
	member, err := scanMember(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrMemberNotFound
		}
		return nil, domain.WrapStoreError("get member by auth0 id", err)
	}
	return member, nil
}

// List retrieves all members ordered by name
func (r *MemberRepository) List(ctx context.Context) ([]*domain.Member, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+memberColumns+` FROM profiles ORDER BY full_name`)
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

func scanMember(row pgx.Row) (*domain.Member, error) {
	var (
		id           pgtype.UUID
		memberID     pgtype.Text
		phone        pgtype.Text
		role         string
		contribution pgtype.Numeric
		createdAt    pgtype.Timestamptz
		updatedAt    pgtype.Timestamptz
		m            domain.Member
	)
	if err := row.Scan(&id, &m.Auth0ID, &m.Email, &m.FullName, &memberID, &phone, &role, &contribution, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	m.ID = pgToUUID(id)
	m.MemberID = pgTextToStringPtr(memberID)
	m.Phone = pgTextToStringPtr(phone)
	m.Role = domain.Role(role)
	m.MonthlyContribution = pgNumericToDecimal(contribution)
	m.CreatedAt = createdAt.Time
	m.UpdatedAt = updatedAt.Time
	return &m, nil
}
