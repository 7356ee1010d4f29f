package handler

import (
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/dafibh/pooldesk/pooldesk-backend/internal/domain"
	"github.com/dafibh/pooldesk/pooldesk-backend/internal/export"
	"github.com/dafibh/pooldesk/pooldesk-backend/internal/service"
	"github.com/dafibh/pooldesk/pooldesk-backend/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func handlerSnapshots() []*domain.MemberCashBillSnapshot {
	return []*domain.MemberCashBillSnapshot{
		{
			UserID:             uuid.New(),
			FullName:           "Anil Menon - 4",
			Name:               "Anil Menon",
			SubscriptionIncome: "500",
			LoanBalance:        "8000",
			MonthlyInterest:    "1200",
			TotalAmountToPay:   "1700",
		},
		{
			UserID:             uuid.New(),
			FullName:           "Lakshmi Nair",
			SubscriptionIncome: "500",
			TotalAmountToPay:   "500",
		},
	}
}

func newCashBillHandler(repo *testutil.MockCashBillRepository) (*CashBillHandler, *service.CashBillService) {
	svc := service.NewCashBillService(repo, export.DefaultRegistry(), service.FixedClock(handlerNow), "CASH BILL MEETING")
	return NewCashBillHandler(svc), svc
}

func TestCashBillExport_DefaultsToXLSX(t *testing.T) {
	h, _ := newCashBillHandler(&testutil.MockCashBillRepository{Snapshots: handlerSnapshots()})

	c, rec := newJSONContext(http.MethodPost, "/api/v1/admin/cash-bills", "")
	require.NoError(t, h.Export(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, export.FormatXLSX.ContentType(), rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="cash-bill-all-members-2025-04-10.xlsx"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "2", rec.Header().Get("X-Member-Count"))
	assert.Empty(t, rec.Header().Get("X-Archive-URL"))
	// xlsx files are zip archives
	assert.True(t, strings.HasPrefix(rec.Body.String(), "PK"))
}

func TestCashBillExport_FormatFromQuery(t *testing.T) {
	h, _ := newCashBillHandler(&testutil.MockCashBillRepository{Snapshots: handlerSnapshots()})

	c, rec := newJSONContext(http.MethodPost, "/api/v1/admin/cash-bills?format=csv", "")
	require.NoError(t, h.Export(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `attachment; filename="cash-bill-all-members-2025-04-10.csv"`, rec.Header().Get("Content-Disposition"))
	assert.Contains(t, rec.Body.String(), "Anil Menon")
	assert.Contains(t, rec.Body.String(), "Lakshmi Nair")
}

func TestCashBillExport_SelectedMember(t *testing.T) {
	snapshots := handlerSnapshots()
	h, _ := newCashBillHandler(&testutil.MockCashBillRepository{Snapshots: snapshots})

	body := `{"selectedUser":"` + snapshots[0].UserID.String() + `","format":"pdf"}`
	c, rec := newJSONContext(http.MethodPost, "/api/v1/admin/cash-bills", body)
	require.NoError(t, h.Export(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="cash-bill-Anil_Menon-2025-04-10.pdf"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "1", rec.Header().Get("X-Member-Count"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "%PDF"))
}

func TestCashBillExport_Archived(t *testing.T) {
	archive := &testutil.MockDocumentArchive{}
	h, svc := newCashBillHandler(&testutil.MockCashBillRepository{Snapshots: handlerSnapshots()})
	svc.SetArchive(archive)

	c, rec := newJSONContext(http.MethodPost, "/api/v1/admin/cash-bills", `{"format":"csv"}`)
	require.NoError(t, h.Export(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, archive.Stored, 1)
	assert.True(t, strings.HasPrefix(rec.Header().Get("X-Archive-URL"), "https://archive.test/"))
}

func TestCashBillExport_Errors(t *testing.T) {
	tests := []struct {
		name   string
		repo   *testutil.MockCashBillRepository
		target string
		body   string
		status int
	}{
		{"unsupported format", &testutil.MockCashBillRepository{Snapshots: handlerSnapshots()}, "/api/v1/admin/cash-bills", `{"format":"docx"}`, http.StatusBadRequest},
		{"invalid member", &testutil.MockCashBillRepository{Snapshots: handlerSnapshots()}, "/api/v1/admin/cash-bills", `{"selectedUser":"abc"}`, http.StatusBadRequest},
		{"malformed body", &testutil.MockCashBillRepository{Snapshots: handlerSnapshots()}, "/api/v1/admin/cash-bills", `{"format":`, http.StatusBadRequest},
		{"no snapshots", &testutil.MockCashBillRepository{}, "/api/v1/admin/cash-bills", "", http.StatusNotFound},
		{"unknown member", &testutil.MockCashBillRepository{Snapshots: handlerSnapshots()}, "/api/v1/admin/cash-bills", `{"selectedUser":"` + uuid.NewString() + `"}`, http.StatusNotFound},
		{"store failure", &testutil.MockCashBillRepository{Err: errors.New("connection reset")}, "/api/v1/admin/cash-bills", "", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _ := newCashBillHandler(tt.repo)

			c, rec := newJSONContext(http.MethodPost, tt.target, tt.body)
			require.NoError(t, h.Export(c))

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.status, decodeProblem(t, rec).Status)
		})
	}
}
