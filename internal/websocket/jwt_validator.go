package websocket

import (
	"context"
	"errors"
	"net/url"
	"time"

	"github.com/auth0/go-jwt-middleware/v2/jwks"
	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/dafibh/pooldesk/pooldesk-backend/internal/domain"
)

// ErrInvalidToken is returned when JWT validation fails
var ErrInvalidToken = errors.New("invalid token")

// ErrNotAdmin is returned when the token belongs to someone without admin access
var ErrNotAdmin = errors.New("admin access required")

// MemberLookup resolves the member behind an Auth0 subject
type MemberLookup interface {
	GetByAuth0ID(ctx context.Context, auth0ID string) (*domain.Member, error)
}

// CustomClaims contains the custom claims from Auth0 JWT
type CustomClaims struct{}

// Validate implements validator.CustomClaims
func (c CustomClaims) Validate(ctx context.Context) error {
	return nil
}

// TokenValidator parses a raw JWT into validated claims
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (any, error)
}

// Auth0JWTValidator validates Auth0 JWT tokens for WebSocket connections
type Auth0JWTValidator struct {
	validator TokenValidator
	members   MemberLookup
}

// NewAuth0JWTValidator creates a new Auth0JWTValidator
func NewAuth0JWTValidator(auth0Domain, audience string, members MemberLookup) (*Auth0JWTValidator, error) {
	issuerURL, err := url.Parse("https://" + auth0Domain + "/")
	if err != nil {
		return nil, err
	}

	provider := jwks.NewCachingProvider(issuerURL, 5*time.Minute)

	jwtValidator, err := validator.New(
		provider.KeyFunc,
		validator.RS256,
		issuerURL.String(),
		[]string{audience},
		validator.WithCustomClaims(func() validator.CustomClaims {
			return &CustomClaims{}
		}),
		validator.WithAllowedClockSkew(time.Minute),
	)
	if err != nil {
		return nil, err
	}

	return &Auth0JWTValidator{
		validator: jwtValidator,
		members:   members,
	}, nil
}

// ValidateToken validates a JWT and returns the admin it belongs to
func (v *Auth0JWTValidator) ValidateToken(ctx context.Context, token string) (*domain.Member, error) {
	claims, err := v.validator.ValidateToken(ctx, token)
	if err != nil {
		return nil, ErrInvalidToken
	}

	validatedClaims, ok := claims.(*validator.ValidatedClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	member, err := v.members.GetByAuth0ID(ctx, validatedClaims.RegisteredClaims.Subject)
	if err != nil {
		return nil, ErrNotAdmin
	}
	if !member.IsAdmin() {
		return nil, ErrNotAdmin
	}

	return member, nil
}
