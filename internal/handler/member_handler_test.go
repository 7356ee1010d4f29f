package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/dafibh/pooldesk/pooldesk-backend/internal/domain"
	"github.com/dafibh/pooldesk/pooldesk-backend/internal/service"
	"github.com/dafibh/pooldesk/pooldesk-backend/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListMembers(t *testing.T) {
	repo := testutil.NewMockMemberRepository()
	code := "M-7"
	repo.AddMember(&domain.Member{FullName: "Lakshmi", Email: "l@example.com", MemberID: &code, Role: domain.RoleUser, MonthlyContribution: decimal.NewFromInt(500)})
	repo.AddMember(&domain.Member{FullName: "Arun", Role: domain.RoleAdmin})
	h := NewMemberHandler(service.NewMemberService(repo))

	c, rec := newJSONContext(http.MethodGet, "/api/v1/admin/members", "")
	require.NoError(t, h.ListMembers(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var response []MemberResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	require.Len(t, response, 2)
	assert.Equal(t, "Arun", response[0].FullName)
	assert.Equal(t, "admin", response[0].Role)
	assert.Equal(t, "Lakshmi", response[1].FullName)
	require.NotNil(t, response[1].MemberID)
	assert.Equal(t, "M-7", *response[1].MemberID)
	assert.Equal(t, "500.00", response[1].MonthlyContribution)
}
