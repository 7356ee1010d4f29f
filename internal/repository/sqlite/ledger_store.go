package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dafibh/pooldesk/pooldesk-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// LedgerStore implements domain.LedgerStore using SQLite transactions
type LedgerStore struct {
	db  *DB
	now func() time.Time
}

// NewLedgerStore creates a new LedgerStore
func NewLedgerStore(db *DB) *LedgerStore {
	return &LedgerStore{db: db, now: time.Now}
}

// WithinTx runs fn in a transaction, committing only when fn succeeds
func (s *LedgerStore) WithinTx(ctx context.Context, fn func(tx domain.LedgerTx) error) error {
	tx, err := s.db.conn.BeginTx(ctx, nil)
	if err != nil {
		return domain.WrapStoreError("begin ledger tx", err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			log.Error().Err(err).Msg("Failed to rollback ledger transaction")
		}
	}()

	if err := fn(&ledgerTx{tx: tx, now: s.now}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return domain.WrapStoreError("commit ledger tx", err)
	}
	return nil
}

type ledgerTx struct {
	tx  *sql.Tx
	now func() time.Time
}

// GetLoanForUpdate reads the loan; the single connection keeps it exclusive
func (t *ledgerTx) GetLoanForUpdate(ctx context.Context, id uuid.UUID) (*domain.Loan, error) {
	row := t.tx.QueryRowContext(ctx, `SELECT `+loanColumns+` FROM loans l WHERE l.id = ?`, id)
	loan, err := scanLoan(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrLoanNotFound
		}
		return nil, domain.WrapStoreError("lock loan", err)
	}
	return loan, nil
}

// InsertPayment appends a ledger entry, assigning its ID and creation time
func (t *ledgerTx) InsertPayment(ctx context.Context, p *domain.LoanPayment) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	createdAt := t.now()

	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO loan_payments (id, loan_id, user_id, month_year, principal_paid, interest_paid,
			interest_marked_paid, remaining_balance, payment_date, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID,
		p.LoanID,
		p.UserID,
		p.MonthYear,
		p.PrincipalPaid,
		p.InterestPaid,
		p.InterestMarkedPaid,
		p.RemainingBalance,
		formatTime(p.PaymentDate),
		string(p.Status),
		formatTime(createdAt),
	)
	if err != nil {
		return domain.WrapStoreError("insert payment", err)
	}
	p.CreatedAt = createdAt
	return nil
}

// UpdateLoan applies the update only while the balance still equals ExpectedAmount
func (t *ledgerTx) UpdateLoan(ctx context.Context, u domain.LoanUpdate) error {
	res, err := t.tx.ExecContext(ctx, `
		UPDATE loans SET amount = ?, status = ?, updated_at = ?
		WHERE id = ? AND amount = ?`,
		u.Amount, string(u.Status), formatTime(u.UpdatedAt), u.LoanID, u.ExpectedAmount)
	if err != nil {
		return domain.WrapStoreError("update loan", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return domain.WrapStoreError("update loan", err)
	}
	if n == 0 {
		return fmt.Errorf("loan %s: %w", u.LoanID, domain.ErrConcurrentUpdate)
	}
	return nil
}
