package service

import (
	"context"
	"errors"
	"testing"

	"github.com/dafibh/pooldesk/pooldesk-backend/internal/domain"
	"github.com/dafibh/pooldesk/pooldesk-backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemberService_ListMembers(t *testing.T) {
	repo := testutil.NewMockMemberRepository()
	repo.AddMember(&domain.Member{FullName: "Zara"})
	repo.AddMember(&domain.Member{FullName: "Anil"})
	svc := NewMemberService(repo)

	members, err := svc.ListMembers(context.Background())
	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.Equal(t, "Anil", members[0].FullName)

	repo.ListErr = errors.New("connection reset")
	_, err = svc.ListMembers(context.Background())
	assert.Error(t, err)
}

func TestMemberService_RequireAdmin(t *testing.T) {
	repo := testutil.NewMockMemberRepository()
	repo.AddMember(&domain.Member{Auth0ID: "auth0|admin", Role: domain.RoleAdmin})
	repo.AddMember(&domain.Member{Auth0ID: "auth0|user", Role: domain.RoleUser})
	svc := NewMemberService(repo)

	admin, err := svc.RequireAdmin(context.Background(), "auth0|admin")
	require.NoError(t, err)
	assert.True(t, admin.IsAdmin())

	_, err = svc.RequireAdmin(context.Background(), "auth0|user")
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = svc.RequireAdmin(context.Background(), "auth0|nobody")
	assert.ErrorIs(t, err, domain.ErrForbidden)
}
