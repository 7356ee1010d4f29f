package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/dafibh/pooldesk/pooldesk-backend/internal/domain"
	"github.com/dafibh/pooldesk/pooldesk-backend/internal/ledger"
	"github.com/dafibh/pooldesk/pooldesk-backend/internal/websocket"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// DefaultLedgerRetries bounds how often a payment is retried after losing a race
const DefaultLedgerRetries = 3

// LoanPaymentService records payments and reads the ledger
type LoanPaymentService struct {
	ledgerStore    domain.LedgerStore
	paymentRepo    domain.LoanPaymentRepository
	loanRepo       domain.LoanRepository
	eventPublisher websocket.EventPublisher
	now            Clock
	maxRetries     int
}

// NewLoanPaymentService creates a new LoanPaymentService
func NewLoanPaymentService(ledgerStore domain.LedgerStore, paymentRepo domain.LoanPaymentRepository, loanRepo domain.LoanRepository, now Clock, maxRetries int) *LoanPaymentService {
	if maxRetries < 1 {
		maxRetries = DefaultLedgerRetries
	}
	return &LoanPaymentService{
		ledgerStore: ledgerStore,
		paymentRepo: paymentRepo,
		loanRepo:    loanRepo,
		now:         now,
		maxRetries:  maxRetries,
	}
}

// SetEventPublisher sets the event publisher for real-time updates
func (s *LoanPaymentService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *LoanPaymentService) publishEvent(loanID uuid.UUID, event websocket.Event) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(websocket.AdminChannel, event)
		s.eventPublisher.Publish(websocket.LoanChannel(loanID), event)
	}
}

// RecordPaymentInput is one payment event reported by an admin
type RecordPaymentInput struct {
	InterestPaid    bool
	PrincipalAmount *decimal.Decimal
}

// RecordPaymentResult is the appended ledger entry and the loan after it
type RecordPaymentResult struct {
	Payment *domain.LoanPayment `json:"payment"`
	Loan    *domain.Loan        `json:"loan"`
}

// RecordPayment appends a ledger entry and moves the loan's balance in one
// transaction. If another payment lands on the loan first the whole unit is
// retried against the fresh balance, up to maxRetries attempts.
func (s *LoanPaymentService) RecordPayment(ctx context.Context, loanID uuid.UUID, input RecordPaymentInput) (*RecordPaymentResult, error) {
	intent := ledger.PaymentIntent{
		InterestPaid: input.InterestPaid,
		Principal:    input.PrincipalAmount,
	}

	var result *RecordPaymentResult
	var err error
	for attempt := 1; attempt <= s.maxRetries; attempt++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}

		result, err = s.recordOnce(ctx, loanID, intent)
		if err == nil {
			break
		}
		if !errors.Is(err, domain.ErrConcurrentUpdate) {
			return nil, err
		}
		log.Warn().
			Str("loan_id", loanID.String()).
			Int("attempt", attempt).
			Msg("Loan changed while recording payment, retrying")
	}
	if err != nil {
		log.Error().Err(err).Str("loan_id", loanID.String()).Int("attempts", s.maxRetries).Msg("Giving up on payment after repeated conflicts")
		return nil, err
	}

	log.Info().
		Str("loan_id", loanID.String()).
		Str("payment_id", result.Payment.ID.String()).
		Str("principal_paid", result.Payment.PrincipalPaid.String()).
		Str("interest_paid", result.Payment.InterestPaid.String()).
		Str("remaining_balance", result.Payment.RemainingBalance.String()).
		Msg("Loan payment recorded")

	s.publishEvent(loanID, websocket.LoanPaymentRecorded(result))
	if result.Loan.IsCompleted() {
		s.publishEvent(loanID, websocket.LoanCompleted(result.Loan))
	}

	return result, nil
}

func (s *LoanPaymentService) recordOnce(ctx context.Context, loanID uuid.UUID, intent ledger.PaymentIntent) (*RecordPaymentResult, error) {
	var result *RecordPaymentResult
	err := s.ledgerStore.WithinTx(ctx, func(tx domain.LedgerTx) error {
		loan, err := tx.GetLoanForUpdate(ctx, loanID)
		if err != nil {
			return err
		}

		proposed, err := ledger.RecordPayment(loan, intent, s.now())
		if err != nil {
			return err
		}

		if err := tx.InsertPayment(ctx, proposed.Payment); err != nil {
			return fmt.Errorf("insert payment: %w", err)
		}
		if err := tx.UpdateLoan(ctx, proposed.Update); err != nil {
			return fmt.Errorf("update loan: %w", err)
		}

		result = &RecordPaymentResult{
			Payment: proposed.Payment,
			Loan:    proposed.Update.Apply(loan),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ListLoanPayments returns a loan's ledger newest first
func (s *LoanPaymentService) ListLoanPayments(ctx context.Context, loanID uuid.UUID) ([]*domain.LoanPayment, error) {
	if _, err := s.loanRepo.GetByID(ctx, loanID); err != nil {
		return nil, err
	}
	return s.paymentRepo.ListByLoan(ctx, loanID)
}

// ListPayments returns payment history across loans, optionally for one member
func (s *LoanPaymentService) ListPayments(ctx context.Context, filter domain.PaymentFilter) ([]*domain.LoanPayment, error) {
	payments, err := s.paymentRepo.List(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list loan payments")
		return nil, err
	}
	return payments, nil
}
