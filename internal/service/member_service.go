package service

import (
	"context"
	"errors"

	"github.com/dafibh/pooldesk/pooldesk-backend/internal/domain"
	"github.com/rs/zerolog/log"
)

// MemberService handles member lookups for the admin dashboard
type MemberService struct {
	memberRepo domain.MemberRepository
}

// NewMemberService creates a new MemberService
func NewMemberService(memberRepo domain.MemberRepository) *MemberService {
	return &MemberService{memberRepo: memberRepo}
}

// ListMembers returns every member for the member picker
func (s *MemberService) ListMembers(ctx context.Context) ([]*domain.Member, error) {
	members, err := s.memberRepo.List(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list members")
		return nil, err
	}
	return members, nil
}

// GetByAuth0ID resolves the member behind an Auth0 subject
func (s *MemberService) GetByAuth0ID(ctx context.Context, auth0ID string) (*domain.Member, error) {
	return s.memberRepo.GetByAuth0ID(ctx, auth0ID)
}

// RequireAdmin returns the member behind auth0ID if they hold the admin role
func (s *MemberService) RequireAdmin(ctx context.Context, auth0ID string) (*domain.Member, error) {
	member, err := s.memberRepo.GetByAuth0ID(ctx, auth0ID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrForbidden
		}
		return nil, err
	}
	if !member.IsAdmin() {
		log.Warn().Str("member_id", member.ID.String()).Msg("Non-admin denied admin access")
		return nil, domain.ErrForbidden
	}
	return member, nil
}
