package service

import (
	"context"
	"strings"
	"time"

	"github.com/dafibh/pooldesk/pooldesk-backend/internal/domain"
	"github.com/dafibh/pooldesk/pooldesk-backend/internal/ledger"
	"github.com/dafibh/pooldesk/pooldesk-backend/internal/websocket"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// LoanService handles loan business logic
type LoanService struct {
	loanRepo       domain.LoanRepository
	paymentRepo    domain.LoanPaymentRepository
	memberRepo     domain.MemberRepository
	eventPublisher websocket.EventPublisher
	now            Clock
}

// NewLoanService creates a new LoanService
func NewLoanService(loanRepo domain.LoanRepository, paymentRepo domain.LoanPaymentRepository, memberRepo domain.MemberRepository, now Clock) *LoanService {
	return &LoanService{
		loanRepo:    loanRepo,
		paymentRepo: paymentRepo,
		memberRepo:  memberRepo,
		now:         now,
	}
}

// SetEventPublisher sets the event publisher for real-time updates
func (s *LoanService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *LoanService) publishEvent(channel string, event websocket.Event) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(channel, event)
	}
}

// CreateLoanInput contains input for recording a loan on a member's behalf
type CreateLoanInput struct {
	UserID         uuid.UUID
	Amount         decimal.Decimal
	InterestRate   *decimal.Decimal // nil uses DefaultInterestRate
	DurationMonths *int32           // nil uses DefaultLoanDurationMonths
	Purpose        *string
}

// LoanSummary is a loan with the figures the dashboard shows next to it
type LoanSummary struct {
	domain.LoanWithMember
	MonthlyInterest       decimal.Decimal `json:"monthlyInterest"`
	InterestPaidThisMonth bool            `json:"interestPaidThisMonth"`
}

// CreateLoan records an admin-approved loan. It starts active with the full
// amount outstanding.
func (s *LoanService) CreateLoan(ctx context.Context, admin *domain.Member, input CreateLoanInput) (*LoanSummary, error) {
	if input.UserID == uuid.Nil {
		return nil, domain.NewValidationError("userId", "member is required")
	}
	if _, err := s.memberRepo.GetByID(ctx, input.UserID); err != nil {
		return nil, err
	}

	now := s.now()
	loan := &domain.Loan{
		UserID:         input.UserID,
		Amount:         input.Amount,
		InterestRate:   domain.DefaultInterestRate,
		DurationMonths: domain.DefaultLoanDurationMonths,
		Status:         domain.LoanStatusActive,
		RequestedAt:    now,
		ApprovedAt:     &now,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if input.InterestRate != nil {
		loan.InterestRate = *input.InterestRate
	}
	if input.DurationMonths != nil {
		loan.DurationMonths = *input.DurationMonths
	}
	if input.Purpose != nil {
		if purpose := strings.TrimSpace(*input.Purpose); purpose != "" {
			loan.Purpose = &purpose
		}
	}
	if admin != nil {
		loan.ApprovedBy = &admin.ID
	}

	if err := loan.Validate(); err != nil {
		return nil, err
	}

	created, err := s.loanRepo.Create(ctx, loan)
	if err != nil {
		log.Error().Err(err).Str("user_id", input.UserID.String()).Msg("Failed to create loan")
		return nil, err
	}

	summary, err := s.GetLoan(ctx, created.ID)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("loan_id", created.ID.String()).
		Str("user_id", created.UserID.String()).
		Str("amount", created.Amount.String()).
		Msg("Loan created")

	s.publishEvent(websocket.AdminChannel, websocket.LoanCreated(summary))
	return summary, nil
}

// GetLoan returns one loan with its monthly interest and cycle flag
func (s *LoanService) GetLoan(ctx context.Context, id uuid.UUID) (*LoanSummary, error) {
	loan, err := s.loanRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.summarize(ctx, loan, s.now())
}

// ListLoans returns loans matching filter, each flagged with whether this
// month's interest has been paid
func (s *LoanService) ListLoans(ctx context.Context, filter domain.LoanFilter) ([]*LoanSummary, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, domain.NewValidationError("status", "unknown loan status")
	}
	filter.Search = strings.TrimSpace(filter.Search)

	loans, err := s.loanRepo.List(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list loans")
		return nil, err
	}

	now := s.now()
	result := make([]*LoanSummary, 0, len(loans))
	for _, loan := range loans {
		summary, err := s.summarize(ctx, loan, now)
		if err != nil {
			return nil, err
		}
		result = append(result, summary)
	}
	return result, nil
}

func (s *LoanService) summarize(ctx context.Context, loan *domain.LoanWithMember, now time.Time) (*LoanSummary, error) {
	payments, err := s.paymentRepo.ListByLoan(ctx, loan.ID)
	if err != nil {
		log.Error().Err(err).Str("loan_id", loan.ID.String()).Msg("Failed to load loan payments")
		return nil, err
	}
	return &LoanSummary{
		LoanWithMember:        *loan,
		MonthlyInterest:       ledger.MonthlyInterest(&loan.Loan),
		InterestPaidThisMonth: ledger.IsInterestPaidThisCycle(payments, now),
	}, nil
}
