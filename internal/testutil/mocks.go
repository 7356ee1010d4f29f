package testutil

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dafibh/pooldesk/pooldesk-backend/internal/domain"
	"github.com/dafibh/pooldesk/pooldesk-backend/internal/websocket"
	"github.com/google/uuid"
)

// MockMemberRepository is a mock implementation of domain.MemberRepository
type MockMemberRepository struct {
	ByID    map[uuid.UUID]*domain.Member
	ListErr error
}

// NewMockMemberRepository creates a new MockMemberRepository
func NewMockMemberRepository() *MockMemberRepository {
	return &MockMemberRepository{
		ByID: make(map[uuid.UUID]*domain.Member),
	}
}

// AddMember adds a member to the mock repository
func (m *MockMemberRepository) AddMember(member *domain.Member) {
	if member.ID == uuid.Nil {
		member.ID = uuid.New()
	}
	m.ByID[member.ID] = member
}

// GetByID retrieves a member by ID
func (m *MockMemberRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Member, error) {
	if member, ok := m.ByID[id]; ok {
		return member, nil
	}
	return nil, domain.ErrMemberNotFound
}

// GetByAuth0ID retrieves a member by Auth0 ID
func (m *MockMemberRepository) GetByAuth0ID(ctx context.Context, auth0ID string) (*domain.Member, error) {
	for _, member := range m.ByID {
		if member.Auth0ID == auth0ID {
			return member, nil
		}
	}
	return nil, domain.ErrMemberNotFound
}

// List returns all members ordered by full name
func (m *MockMemberRepository) List(ctx context.Context) ([]*domain.Member, error) {
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	result := make([]*domain.Member, 0, len(m.ByID))
	for _, member := range m.ByID {
		result = append(result, member)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].FullName < result[j].FullName })
	return result, nil
}

// MockLoanRepository is a mock implementation of domain.LoanRepository
type MockLoanRepository struct {
	mu        sync.Mutex
	Loans     map[uuid.UUID]*domain.Loan
	Members   map[uuid.UUID]*domain.Member
	CreateErr error
}

// NewMockLoanRepository creates a new MockLoanRepository
func NewMockLoanRepository() *MockLoanRepository {
	return &MockLoanRepository{
		Loans:   make(map[uuid.UUID]*domain.Loan),
		Members: make(map[uuid.UUID]*domain.Member),
	}
}

// AddLoan adds a loan to the mock repository
func (m *MockLoanRepository) AddLoan(loan *domain.Loan) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if loan.ID == uuid.Nil {
		loan.ID = uuid.New()
	}
	m.Loans[loan.ID] = loan
}

// Create stores a new loan
func (m *MockLoanRepository) Create(ctx context.Context, loan *domain.Loan) (*domain.Loan, error) {
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}
	created := *loan
	created.ID = uuid.New()
	if created.CreatedAt.IsZero() {
		created.CreatedAt = time.Now()
	}
	created.UpdatedAt = created.CreatedAt
	m.AddLoan(&created)
	return &created, nil
}

// GetByID retrieves a loan joined with its member
func (m *MockLoanRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.LoanWithMember, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	loan, ok := m.Loans[id]
	if !ok {
		return nil, domain.ErrLoanNotFound
	}
	return m.withMember(loan), nil
}

// List returns loans matching the filter, newest request first
func (m *MockLoanRepository) List(ctx context.Context, filter domain.LoanFilter) ([]*domain.LoanWithMember, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]*domain.LoanWithMember, 0)
	for _, loan := range m.Loans {
		if filter.Status != "" && loan.Status != filter.Status {
			continue
		}
		if filter.UserID != nil && loan.UserID != *filter.UserID {
			continue
		}
		lw := m.withMember(loan)
		if filter.Search != "" && !strings.Contains(strings.ToLower(lw.MemberName+" "+lw.MemberEmail), strings.ToLower(filter.Search)) {
			continue
		}
		result = append(result, lw)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].RequestedAt.After(result[j].RequestedAt) })
	return result, nil
}

func (m *MockLoanRepository) withMember(loan *domain.Loan) *domain.LoanWithMember {
	lw := &domain.LoanWithMember{Loan: *loan}
	if member, ok := m.Members[loan.UserID]; ok {
		lw.MemberName = member.FullName
		lw.MemberEmail = member.Email
		lw.MemberCode = member.MemberID
	}
	return lw
}

// MockLoanPaymentRepository is a mock implementation of domain.LoanPaymentRepository
type MockLoanPaymentRepository struct {
	mu       sync.Mutex
	Payments []*domain.LoanPayment
	ListErr  error
}

// NewMockLoanPaymentRepository creates a new MockLoanPaymentRepository
func NewMockLoanPaymentRepository() *MockLoanPaymentRepository {
	return &MockLoanPaymentRepository{}
}

// AddPayment appends a ledger entry
func (m *MockLoanPaymentRepository) AddPayment(payment *domain.LoanPayment) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if payment.ID == uuid.Nil {
		payment.ID = uuid.New()
	}
	m.Payments = append(m.Payments, payment)
}

// ListByLoan returns a loan's entries newest first
func (m *MockLoanPaymentRepository) ListByLoan(ctx context.Context, loanID uuid.UUID) ([]*domain.LoanPayment, error) {
	return m.List(ctx, domain.PaymentFilter{LoanID: &loanID})
}

// List returns entries matching the filter newest first
func (m *MockLoanPaymentRepository) List(ctx context.Context, filter domain.PaymentFilter) ([]*domain.LoanPayment, error) {
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]*domain.LoanPayment, 0)
	for _, p := range m.Payments {
		if filter.LoanID != nil && p.LoanID != *filter.LoanID {
			continue
		}
		if filter.UserID != nil && p.UserID != *filter.UserID {
			continue
		}
		result = append(result, p)
	}
	sort.SliceStable(result, func(i, j int) bool { return result[i].PaymentDate.After(result[j].PaymentDate) })
	return result, nil
}

// MockLedgerStore is an in-memory domain.LedgerStore backed by the loan and
// payment mocks. Writes made inside a failed transaction are discarded.
type MockLedgerStore struct {
	mu       sync.Mutex
	Loans    *MockLoanRepository
	Payments *MockLoanPaymentRepository
	// BeforeUpdate runs before each UpdateLoan and may mutate the stored loan to
	// simulate a concurrent writer
	BeforeUpdate func(loan *domain.Loan)
	// InsertErr forces InsertPayment to fail
	InsertErr error
	TxCount   int
}

// NewMockLedgerStore creates a MockLedgerStore sharing state with the given repositories
func NewMockLedgerStore(loans *MockLoanRepository, payments *MockLoanPaymentRepository) *MockLedgerStore {
	return &MockLedgerStore{Loans: loans, Payments: payments}
}

// WithinTx runs fn and commits its writes only if fn succeeds
func (s *MockLedgerStore) WithinTx(ctx context.Context, fn func(tx domain.LedgerTx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.TxCount++

	tx := &mockLedgerTx{store: s}
	if err := fn(tx); err != nil {
		return err
	}

	s.Loans.mu.Lock()
	for _, loan := range tx.updated {
		s.Loans.Loans[loan.ID] = loan
	}
	s.Loans.mu.Unlock()
	for _, p := range tx.inserted {
		s.Payments.AddPayment(p)
	}
	return nil
}

type mockLedgerTx struct {
	store    *MockLedgerStore
	inserted []*domain.LoanPayment
	updated  []*domain.Loan
}

func (tx *mockLedgerTx) GetLoanForUpdate(ctx context.Context, id uuid.UUID) (*domain.Loan, error) {
	tx.store.Loans.mu.Lock()
	defer tx.store.Loans.mu.Unlock()
	loan, ok := tx.store.Loans.Loans[id]
	if !ok {
		return nil, domain.ErrLoanNotFound
	}
	copied := *loan
	return &copied, nil
}

func (tx *mockLedgerTx) InsertPayment(ctx context.Context, payment *domain.LoanPayment) error {
	if tx.store.InsertErr != nil {
		return tx.store.InsertErr
	}
	payment.ID = uuid.New()
	payment.CreatedAt = payment.PaymentDate
	tx.inserted = append(tx.inserted, payment)
	return nil
}

func (tx *mockLedgerTx) UpdateLoan(ctx context.Context, update domain.LoanUpdate) error {
	tx.store.Loans.mu.Lock()
	defer tx.store.Loans.mu.Unlock()
	loan, ok := tx.store.Loans.Loans[update.LoanID]
	if !ok {
		return domain.ErrLoanNotFound
	}
	if tx.store.BeforeUpdate != nil {
		tx.store.BeforeUpdate(loan)
	}
	if !loan.Amount.Equal(update.ExpectedAmount) {
		return domain.ErrConcurrentUpdate
	}
	tx.updated = append(tx.updated, update.Apply(loan))
	return nil
}

// MockCashBillRepository is a mock implementation of domain.CashBillRepository
type MockCashBillRepository struct {
	Snapshots []*domain.MemberCashBillSnapshot
	Err       error
}

// ListSnapshots returns every snapshot, or only userID's when set
func (m *MockCashBillRepository) ListSnapshots(ctx context.Context, userID *uuid.UUID) ([]*domain.MemberCashBillSnapshot, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	result := make([]*domain.MemberCashBillSnapshot, 0, len(m.Snapshots))
	for _, s := range m.Snapshots {
		if userID != nil && s.UserID != *userID {
			continue
		}
		result = append(result, s)
	}
	return result, nil
}

// StoredDocument is a document captured by MockDocumentArchive
type StoredDocument struct {
	Key         string
	Data        []byte
	ContentType string
	Filename    string
}

// MockDocumentArchive is a mock implementation of storage.DocumentArchive
type MockDocumentArchive struct {
	mu       sync.Mutex
	Stored   []StoredDocument
	StoreErr error
}

// Store records the document
func (m *MockDocumentArchive) Store(ctx context.Context, key string, data []byte, contentType, filename string) error {
	if m.StoreErr != nil {
		return m.StoreErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Stored = append(m.Stored, StoredDocument{Key: key, Data: data, ContentType: contentType, Filename: filename})
	return nil
}

// GeneratePresignedURL returns a fake URL for key
func (m *MockDocumentArchive) GeneratePresignedURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	return "https://archive.test/" + key, nil
}

// PublishedEvent is an event captured by MockEventPublisher
type PublishedEvent struct {
	Channel string
	Event   websocket.Event
}

// MockEventPublisher captures published events
type MockEventPublisher struct {
	mu     sync.Mutex
	Events []PublishedEvent
}

// Publish records the event
func (m *MockEventPublisher) Publish(channel string, event websocket.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, PublishedEvent{Channel: channel, Event: event})
}

// Types returns the published event types in order, optionally limited to one channel
func (m *MockEventPublisher) Types(channel string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	types := make([]string, 0)
	for _, e := range m.Events {
		if channel == "" || e.Channel == channel {
			types = append(types, e.Event.Type)
		}
	}
	return types
}
