package export

import (
	"testing"
	"time"

	"github.com/dafibh/pooldesk/pooldesk-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "John_Doe_V-123", SanitizeFilename("John Doe V-123"))
	assert.Equal(t, "a.b_c-d", SanitizeFilename("a.b_c-d"))
	assert.Equal(t, "_____", SanitizeFilename("ராம் "))
}

func TestScope(t *testing.T) {
	userID := uuid.MustParse("6f1c2d3e-0000-4000-8000-000000000001")

	tests := []struct {
		name      string
		selected  *uuid.UUID
		snapshots []*domain.MemberCashBillSnapshot
		want      string
	}{
		{"no selection", nil, nil, AllMembersScope},
		{"profile name", &userID, []*domain.MemberCashBillSnapshot{{Name: " Ravi K ", MemberID: "V1"}}, "Ravi_K"},
		{"member id", &userID, []*domain.MemberCashBillSnapshot{{MemberID: "V 1"}}, "V_1"},
		{"user id from row", &userID, []*domain.MemberCashBillSnapshot{{UserID: userID}}, userID.String()},
		{"selected id without rows", &userID, nil, userID.String()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Scope(tt.selected, tt.snapshots))
		})
	}
}

func TestFilename(t *testing.T) {
	date := time.Date(2026, time.March, 5, 23, 0, 0, 0, time.UTC)

	assert.Equal(t, "cash-bill-all-members-2026-03-05.xlsx", Filename(CashBillDocument, AllMembersScope, date, FormatXLSX))
	assert.Equal(t, "cash-bill-Ravi_K-2026-03-05.pdf", Filename(CashBillDocument, "Ravi_K", date, FormatPDF))
}
