package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var ErrMemberNotFound error = notFoundError("member not found")

// Role is a member's access level on the dashboard
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Member is a pool member's profile
type Member struct {
	ID                  uuid.UUID       `json:"id"`
	Auth0ID             string          `json:"auth0Id"`
	Email               string          `json:"email"`
	FullName            string          `json:"fullName"`
	MemberID            *string         `json:"memberId,omitempty"`
	Phone               *string         `json:"phone,omitempty"`
	Role                Role            `json:"role"`
	MonthlyContribution decimal.Decimal `json:"monthlyContribution"`
	CreatedAt           time.Time       `json:"createdAt"`
	UpdatedAt           time.Time       `json:"updatedAt"`
}

// IsAdmin reports whether the member may use the admin dashboard
func (m *Member) IsAdmin() bool {
	return m.Role == RoleAdmin
}

// MemberRepository defines the interface for member persistence operations
type MemberRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Member, error)
	GetByAuth0ID(ctx context.Context, auth0ID string) (*Member, error)
	List(ctx context.Context) ([]*Member, error)
}
