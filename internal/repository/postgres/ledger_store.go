package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/dafibh/pooldesk/pooldesk-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// LedgerStore implements domain.LedgerStore on a pgx transaction
type LedgerStore struct {
	pool *pgxpool.Pool
}

// NewLedgerStore creates a new LedgerStore
func NewLedgerStore(pool *pgxpool.Pool) *LedgerStore {
	return &LedgerStore{pool: pool}
}

// WithinTx runs fn in a transaction, committing only when fn succeeds
func (s *LedgerStore) WithinTx(ctx context.Context, fn func(tx domain.LedgerTx) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return domain.WrapStoreError("begin ledger tx", err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			log.Error().Err(err).Msg("Failed to rollback ledger transaction")
		}
	}()

	if err := fn(&ledgerTx{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.WrapStoreError("commit ledger tx", err)
	}
	return nil
}

type ledgerTx struct {
	tx pgx.Tx
}

// GetLoanForUpdate reads the loan and holds a row lock until commit
func (t *ledgerTx) GetLoanForUpdate(ctx context.Context, id uuid.UUID) (*domain.Loan, error) {
	row := t.tx.QueryRow(ctx, `SELECT `+loanColumns+` FROM loans l WHERE l.id = $1 FOR UPDATE`, uuidToPg(id))
	loan, err := scanLoan(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrLoanNotFound
		}
		return nil, domain.WrapStoreError("lock loan", err)
	}
	return loan, nil
}

// InsertPayment appends a ledger entry, assigning its ID and creation time
func (t *ledgerTx) InsertPayment(ctx context.Context, p *domain.LoanPayment) error {
	principal, err := decimalToPgNumeric(p.PrincipalPaid)
	if err != nil {
		return domain.WrapStoreError("insert payment", err)
	}
	interest, err := decimalToPgNumeric(p.InterestPaid)
	if err != nil {
		return domain.WrapStoreError("insert payment", err)
	}
	remaining, err := decimalToPgNumeric(p.RemainingBalance)
	if err != nil {
		return domain.WrapStoreError("insert payment", err)
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}

	err = t.tx.QueryRow(ctx, `
		INSERT INTO loan_payments (id, loan_id, user_id, month_year, principal_paid, interest_paid,
			interest_marked_paid, remaining_balance, payment_date, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at`,
		uuidToPg(p.ID),
		uuidToPg(p.LoanID),
		uuidToPg(p.UserID),
		p.MonthYear,
		principal,
		interest,
		p.InterestMarkedPaid,
		remaining,
		p.PaymentDate,
		string(p.Status),
	).Scan(&p.CreatedAt)
	if err != nil {
		return domain.WrapStoreError("insert payment", err)
	}
	return nil
}

// UpdateLoan applies the update only while the balance still equals ExpectedAmount
func (t *ledgerTx) UpdateLoan(ctx context.Context, u domain.LoanUpdate) error {
	expected, err := decimalToPgNumeric(u.ExpectedAmount)
	if err != nil {
		return domain.WrapStoreError("update loan", err)
	}
	amount, err := decimalToPgNumeric(u.Amount)
	if err != nil {
		return domain.WrapStoreError("update loan", err)
	}

	tag, err := t.tx.Exec(ctx, `
		UPDATE loans SET amount = $1, status = $2, updated_at = $3
		WHERE id = $4 AND amount = $5`,
		amount, string(u.Status), u.UpdatedAt, uuidToPg(u.LoanID), expected)
	if err != nil {
		return domain.WrapStoreError("update loan", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("loan %s: %w", u.LoanID, domain.ErrConcurrentUpdate)
	}
	return nil
}
