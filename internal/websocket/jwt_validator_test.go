package websocket

import (
	"context"
	"errors"
	"testing"

	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/dafibh/pooldesk/pooldesk-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockMemberLookup struct {
	member *domain.Member
	err    error
}

func (m *mockMemberLookup) GetByAuth0ID(ctx context.Context, auth0ID string) (*domain.Member, error) {
	return m.member, m.err
}

type stubTokenValidator struct {
	claims any
	err    error
}

func (s *stubTokenValidator) ValidateToken(ctx context.Context, token string) (any, error) {
	return s.claims, s.err
}

func claimsFor(subject string) *validator.ValidatedClaims {
	return &validator.ValidatedClaims{
		RegisteredClaims: validator.RegisteredClaims{Subject: subject},
	}
}

func TestCustomClaims_Validate(t *testing.T) {
	claims := &CustomClaims{}
	assert.NoError(t, claims.Validate(context.Background()))
}

func TestNewAuth0JWTValidator_Success(t *testing.T) {
	lookup := &mockMemberLookup{}

	v, err := NewAuth0JWTValidator("test.auth0.com", "https://api.pooldesk.app", lookup)
	require.NoError(t, err)
	assert.NotNil(t, v.validator)
	assert.Equal(t, lookup, v.members)
}

func TestAuth0JWTValidator_ValidateToken_InvalidJWT(t *testing.T) {
	v, err := NewAuth0JWTValidator("test.auth0.com", "https://api.pooldesk.app", &mockMemberLookup{})
	require.NoError(t, err)

	member, err := v.ValidateToken(context.Background(), "invalid-token")
	assert.Nil(t, member)
	assert.True(t, errors.Is(err, ErrInvalidToken))
}

func TestAuth0JWTValidator_ValidateToken(t *testing.T) {
	admin := &domain.Member{ID: uuid.New(), Auth0ID: "auth0|admin", Role: domain.RoleAdmin}
	user := &domain.Member{ID: uuid.New(), Auth0ID: "auth0|user", Role: domain.RoleUser}

	tests := []struct {
		name    string
		claims  any
		lookup  *mockMemberLookup
		want    *domain.Member
		wantErr error
	}{
		{"admin accepted", claimsFor("auth0|admin"), &mockMemberLookup{member: admin}, admin, nil},
		{"non-admin rejected", claimsFor("auth0|user"), &mockMemberLookup{member: user}, nil, ErrNotAdmin},
		{"unknown member rejected", claimsFor("auth0|ghost"), &mockMemberLookup{err: domain.ErrMemberNotFound}, nil, ErrNotAdmin},
		{"unexpected claims type", map[string]string{"sub": "x"}, &mockMemberLookup{member: admin}, nil, ErrInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &Auth0JWTValidator{
				validator: &stubTokenValidator{claims: tt.claims},
				members:   tt.lookup,
			}

			member, err := v.ValidateToken(context.Background(), "token")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, member)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, member)
		})
	}
}
