package handler

import (
	"net/http"

	"github.com/dafibh/pooldesk/pooldesk-backend/internal/domain"
	"github.com/dafibh/pooldesk/pooldesk-backend/internal/service"
	"github.com/labstack/echo/v4"
)

// MemberHandler handles member-related HTTP requests
type MemberHandler struct {
	memberService *service.MemberService
}

// NewMemberHandler creates a new MemberHandler
func NewMemberHandler(memberService *service.MemberService) *MemberHandler {
	return &MemberHandler{memberService: memberService}
}

// MemberResponse represents a member in API responses
type MemberResponse struct {
	ID                  string  `json:"id"`
	FullName            string  `json:"fullName"`
	Email               string  `json:"email"`
	MemberID            *string `json:"memberId,omitempty"`
	Role                string  `json:"role"`
	MonthlyContribution string  `json:"monthlyContribution"`
}

// ListMembers handles GET /api/v1/admin/members
func (h *MemberHandler) ListMembers(c echo.Context) error {
	members, err := h.memberService.ListMembers(c.Request().Context())
	if err != nil {
		return respondError(c, err, "list members")
	}

	response := make([]MemberResponse, len(members))
	for i, m := range members {
		response[i] = toMemberResponse(m)
	}
	return c.JSON(http.StatusOK, response)
}

func toMemberResponse(m *domain.Member) MemberResponse {
	return MemberResponse{
		ID:                  m.ID.String(),
		FullName:            m.FullName,
		Email:               m.Email,
		MemberID:            m.MemberID,
		Role:                string(m.Role),
		MonthlyContribution: m.MonthlyContribution.StringFixed(2),
	}
}
