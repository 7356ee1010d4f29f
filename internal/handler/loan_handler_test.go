package handler

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/dafibh/pooldesk/pooldesk-backend/internal/domain"
	"github.com/dafibh/pooldesk/pooldesk-backend/internal/service"
	"github.com/dafibh/pooldesk/pooldesk-backend/internal/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var handlerNow = time.Date(2025, 4, 10, 12, 0, 0, 0, time.UTC)

type loanHandlerFixture struct {
	members  *testutil.MockMemberRepository
	loans    *testutil.MockLoanRepository
	payments *testutil.MockLoanPaymentRepository
	admin    *domain.Member
	borrower *domain.Member
	handler  *LoanHandler
}

func newLoanHandlerFixture() *loanHandlerFixture {
	f := &loanHandlerFixture{
		members:  testutil.NewMockMemberRepository(),
		loans:    testutil.NewMockLoanRepository(),
		payments: testutil.NewMockLoanPaymentRepository(),
		admin:    &domain.Member{ID: uuid.New(), Auth0ID: "auth0|admin", FullName: "Admin", Role: domain.RoleAdmin},
		borrower: &domain.Member{ID: uuid.New(), Auth0ID: "auth0|priya", FullName: "Priya Menon", Email: "priya@example.com", Role: domain.RoleUser},
	}
	f.members.AddMember(f.admin)
	f.members.AddMember(f.borrower)
	f.loans.Members[f.borrower.ID] = f.borrower

	svc := service.NewLoanService(f.loans, f.payments, f.members, service.FixedClock(handlerNow))
	f.handler = NewLoanHandler(svc)
	return f
}

func (f *loanHandlerFixture) addLoan(amount int64, status domain.LoanStatus) *domain.Loan {
	loan := &domain.Loan{
		ID:             uuid.New(),
		UserID:         f.borrower.ID,
		Amount:         decimal.NewFromInt(amount),
		InterestRate:   decimal.NewFromInt(15),
		DurationMonths: 12,
		Status:         status,
		RequestedAt:    handlerNow.AddDate(0, -1, 0),
	}
	f.loans.AddLoan(loan)
	return loan
}

func TestCreateLoan_Success(t *testing.T) {
	f := newLoanHandlerFixture()

	c, rec := newJSONContext(http.MethodPost, "/api/v1/admin/loans", `{"userId":"`+f.borrower.ID.String()+`","amount":"2500.50","purpose":"roof repair"}`)
	setupAuthContext(c, f.admin)

	require.NoError(t, f.handler.CreateLoan(c))
	assert.Equal(t, http.StatusCreated, rec.Code)

	var response LoanResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, "2500.50", response.Amount)
	assert.Equal(t, "15", response.InterestRate)
	assert.Equal(t, int32(12), response.DurationMonths)
	assert.Equal(t, "active", response.Status)
	assert.Equal(t, "Priya Menon", response.MemberName)
	assert.Equal(t, "375.08", response.MonthlyInterest)
	require.NotNil(t, response.ApprovedBy)
	assert.Equal(t, f.admin.ID.String(), *response.ApprovedBy)
	require.NotNil(t, response.ApprovedAt)
	assert.Equal(t, "2025-04-10T12:00:00Z", *response.ApprovedAt)
}

func TestCreateLoan_ValidationErrors(t *testing.T) {
	f := newLoanHandlerFixture()

	tests := []struct {
		name   string
		body   string
		fields []string
	}{
		{"bad ids and amount", `{"userId":"nope","amount":"lots"}`, []string{"userId", "amount"}},
		{"bad rate", `{"userId":"` + f.borrower.ID.String() + `","amount":"100","interestRate":"high"}`, []string{"interestRate"}},
		{"non-positive amount", `{"userId":"` + f.borrower.ID.String() + `","amount":"0"}`, []string{"amount"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := newJSONContext(http.MethodPost, "/api/v1/admin/loans", tt.body)
			setupAuthContext(c, f.admin)

			require.NoError(t, f.handler.CreateLoan(c))
			assert.Equal(t, http.StatusBadRequest, rec.Code)

			problem := decodeProblem(t, rec)
			fields := make([]string, len(problem.Errors))
			for i, e := range problem.Errors {
				fields[i] = e.Field
			}
			assert.Equal(t, tt.fields, fields)
		})
	}
}

func TestCreateLoan_UnknownMember(t *testing.T) {
	f := newLoanHandlerFixture()

	c, rec := newJSONContext(http.MethodPost, "/api/v1/admin/loans", `{"userId":"`+uuid.NewString()+`","amount":"100"}`)
	setupAuthContext(c, f.admin)

	require.NoError(t, f.handler.CreateLoan(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListLoans(t *testing.T) {
	f := newLoanHandlerFixture()
	active := f.addLoan(1000, domain.LoanStatusActive)
	f.addLoan(0, domain.LoanStatusCompleted)
	f.payments.AddPayment(&domain.LoanPayment{LoanID: active.ID, InterestMarkedPaid: true, PaymentDate: handlerNow.AddDate(0, 0, -1)})

	c, rec := newJSONContext(http.MethodGet, "/api/v1/admin/loans?status=active&userId="+f.borrower.ID.String(), "")
	setupAuthContext(c, f.admin)

	require.NoError(t, f.handler.ListLoans(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var response []LoanResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	require.Len(t, response, 1)
	assert.Equal(t, active.ID.String(), response[0].ID)
	assert.True(t, response[0].InterestPaidThisMonth)
	assert.Equal(t, "150.00", response[0].MonthlyInterest)
}

func TestListLoans_BadFilters(t *testing.T) {
	f := newLoanHandlerFixture()

	for _, target := range []string{"/api/v1/admin/loans?userId=abc", "/api/v1/admin/loans?status=lost"} {
		c, rec := newJSONContext(http.MethodGet, target, "")
		setupAuthContext(c, f.admin)

		require.NoError(t, f.handler.ListLoans(c))
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
	}
}

func TestGetLoan(t *testing.T) {
	f := newLoanHandlerFixture()
	loan := f.addLoan(800, domain.LoanStatusActive)

	c, rec := newJSONContext(http.MethodGet, "/api/v1/admin/loans/"+loan.ID.String(), "")
	c.SetParamNames("loanId")
	c.SetParamValues(loan.ID.String())
	setupAuthContext(c, f.admin)

	require.NoError(t, f.handler.GetLoan(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var response LoanResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, "800.00", response.Amount)
	assert.Equal(t, "120.00", response.MonthlyInterest)
	assert.False(t, response.InterestPaidThisMonth)
}

func TestGetLoan_NotFoundAndInvalidID(t *testing.T) {
	f := newLoanHandlerFixture()

	c, rec := newJSONContext(http.MethodGet, "/api/v1/admin/loans/x", "")
	c.SetParamNames("loanId")
	c.SetParamValues(uuid.NewString())
	require.NoError(t, f.handler.GetLoan(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "loan not found", decodeProblem(t, rec).Detail)

	c, rec = newJSONContext(http.MethodGet, "/api/v1/admin/loans/x", "")
	c.SetParamNames("loanId")
	c.SetParamValues("12")
	require.NoError(t, f.handler.GetLoan(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
