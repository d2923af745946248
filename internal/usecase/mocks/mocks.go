package mocks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cajafin/ledger/internal/domain"
	"github.com/cajafin/ledger/internal/usecase"
)

// MockBankAccountRepository is a mock implementation of BankAccountRepository.
type MockBankAccountRepository struct {
	mu       sync.RWMutex
	accounts map[string]*domain.BankAccount

	CreateFunc           func(ctx context.Context, tx usecase.Transaction, account *domain.BankAccount) error
	GetByIDFunc          func(ctx context.Context, id string) (*domain.BankAccount, error)
	GetByIDForUpdateFunc func(ctx context.Context, tx usecase.Transaction, id string) (*domain.BankAccount, error)
	UpdateBalanceFunc    func(ctx context.Context, tx usecase.Transaction, account *domain.BankAccount, movedAt time.Time) error
	SetActiveFunc        func(ctx context.Context, id string, active bool, updatedAt time.Time) error
	ListFunc             func(ctx context.Context, filter usecase.AccountFilter) ([]*domain.BankAccount, error)
}

func NewMockBankAccountRepository() *MockBankAccountRepository {
	return &MockBankAccountRepository{
		accounts: make(map[string]*domain.BankAccount),
	}
}

// Seed stores an account directly, bypassing any Func override.
func (m *MockBankAccountRepository) Seed(account *domain.BankAccount) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[account.ID] = account
}

func (m *MockBankAccountRepository) Create(ctx context.Context, tx usecase.Transaction, account *domain.BankAccount) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, account)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[account.ID] = account
	return nil
}

func (m *MockBankAccountRepository) GetByID(ctx context.Context, id string) (*domain.BankAccount, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if acc, ok := m.accounts[id]; ok {
		return acc, nil
	}
	return nil, domain.ErrAccountNotFound
}

func (m *MockBankAccountRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.BankAccount, error) {
	if m.GetByIDForUpdateFunc != nil {
		return m.GetByIDForUpdateFunc(ctx, tx, id)
	}
	return m.GetByID(ctx, id)
}

func (m *MockBankAccountRepository) UpdateBalance(ctx context.Context, tx usecase.Transaction, account *domain.BankAccount, movedAt time.Time) error {
	if m.UpdateBalanceFunc != nil {
		return m.UpdateBalanceFunc(ctx, tx, account, movedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[account.ID] = account
	return nil
}

func (m *MockBankAccountRepository) SetActive(ctx context.Context, id string, active bool, updatedAt time.Time) error {
	if m.SetActiveFunc != nil {
		return m.SetActiveFunc(ctx, id, active, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	acc, ok := m.accounts[id]
	if !ok {
		return domain.ErrAccountNotFound
	}
	acc.Active = active
	acc.UpdatedAt = updatedAt
	return nil
}

func (m *MockBankAccountRepository) List(ctx context.Context, filter usecase.AccountFilter) ([]*domain.BankAccount, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, filter)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var accounts []*domain.BankAccount
	for _, acc := range m.accounts {
		if filter.OwnerID != "" && acc.OwnerID != filter.OwnerID {
			continue
		}
		accounts = append(accounts, acc)
	}
	return accounts, nil
}

// MockBankMovementRepository is a mock implementation of BankMovementRepository.
type MockBankMovementRepository struct {
	mu        sync.RWMutex
	movements map[string]*domain.BankMovement

	CreateFunc           func(ctx context.Context, tx usecase.Transaction, movement *domain.BankMovement) error
	GetByIDFunc          func(ctx context.Context, id string) (*domain.BankMovement, error)
	GetByIDForUpdateFunc func(ctx context.Context, tx usecase.Transaction, id string) (*domain.BankMovement, error)
	MarkCancelledFunc    func(ctx context.Context, tx usecase.Transaction, id, cancelledBy, reason string, cancelledAt time.Time) error
	ListFunc             func(ctx context.Context, filter usecase.MovementFilter) ([]*domain.BankMovement, error)
	SumSignedAmountsFunc func(ctx context.Context, accountID string) (decimal.Decimal, error)
	FindUnlinkedFunc     func(ctx context.Context, limit int) ([]*domain.BankMovement, error)
}

func NewMockBankMovementRepository() *MockBankMovementRepository {
	return &MockBankMovementRepository{
		movements: make(map[string]*domain.BankMovement),
	}
}

func (m *MockBankMovementRepository) Create(ctx context.Context, tx usecase.Transaction, movement *domain.BankMovement) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, movement)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.movements[movement.ID] = movement
	return nil
}

func (m *MockBankMovementRepository) GetByID(ctx context.Context, id string) (*domain.BankMovement, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if mov, ok := m.movements[id]; ok {
		return mov, nil
	}
	return nil, domain.ErrMovementNotFound
}

func (m *MockBankMovementRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.BankMovement, error) {
	if m.GetByIDForUpdateFunc != nil {
		return m.GetByIDForUpdateFunc(ctx, tx, id)
	}
	return m.GetByID(ctx, id)
}

func (m *MockBankMovementRepository) MarkCancelled(ctx context.Context, tx usecase.Transaction, id, cancelledBy, reason string, cancelledAt time.Time) error {
	if m.MarkCancelledFunc != nil {
		return m.MarkCancelledFunc(ctx, tx, id, cancelledBy, reason, cancelledAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	mov, ok := m.movements[id]
	if !ok {
		return domain.ErrMovementNotFound
	}
	mov.Status = domain.MovementStatusCancelled
	mov.CancelledBy = &cancelledBy
	mov.CancelReason = &reason
	mov.CancelledAt = &cancelledAt
	return nil
}

func (m *MockBankMovementRepository) List(ctx context.Context, filter usecase.MovementFilter) ([]*domain.BankMovement, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, filter)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var movements []*domain.BankMovement
	for _, mov := range m.movements {
		if filter.AccountID != "" && mov.AccountID != filter.AccountID {
			continue
		}
		movements = append(movements, mov)
	}
	return movements, nil
}

func (m *MockBankMovementRepository) SumSignedAmounts(ctx context.Context, accountID string) (decimal.Decimal, error) {
	if m.SumSignedAmountsFunc != nil {
		return m.SumSignedAmountsFunc(ctx, accountID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	sum := decimal.Zero
	for _, mov := range m.movements {
		if mov.AccountID != accountID || mov.Status == domain.MovementStatusCancelled {
			continue
		}
		sum = sum.Add(mov.SignedAmount())
	}
	return sum, nil
}

func (m *MockBankMovementRepository) FindUnlinked(ctx context.Context, limit int) ([]*domain.BankMovement, error) {
	if m.FindUnlinkedFunc != nil {
		return m.FindUnlinkedFunc(ctx, limit)
	}
	return nil, nil
}

// MockCashMovementRepository is a mock implementation of CashMovementRepository.
type MockCashMovementRepository struct {
	mu        sync.RWMutex
	movements map[string]*domain.CashMovement

	CreateFunc           func(ctx context.Context, tx usecase.Transaction, movement *domain.CashMovement) error
	GetByIDFunc          func(ctx context.Context, id string) (*domain.CashMovement, error)
	GetByIDForUpdateFunc func(ctx context.Context, tx usecase.Transaction, id string) (*domain.CashMovement, error)
	UpdateStatusFunc     func(ctx context.Context, tx usecase.Transaction, id string, status domain.CashMovementStatus, auditNote string, updatedAt time.Time) error
	ListFunc             func(ctx context.Context, filter usecase.CashFilter) ([]*domain.CashMovement, error)
}

func NewMockCashMovementRepository() *MockCashMovementRepository {
	return &MockCashMovementRepository{
		movements: make(map[string]*domain.CashMovement),
	}
}

func (m *MockCashMovementRepository) Create(ctx context.Context, tx usecase.Transaction, movement *domain.CashMovement) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, movement)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.movements[movement.ID] = movement
	return nil
}

func (m *MockCashMovementRepository) GetByID(ctx context.Context, id string) (*domain.CashMovement, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if mov, ok := m.movements[id]; ok {
		return mov, nil
	}
	return nil, domain.ErrCashMovementNotFound
}

func (m *MockCashMovementRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.CashMovement, error) {
	if m.GetByIDForUpdateFunc != nil {
		return m.GetByIDForUpdateFunc(ctx, tx, id)
	}
	return m.GetByID(ctx, id)
}

func (m *MockCashMovementRepository) UpdateStatus(ctx context.Context, tx usecase.Transaction, id string, status domain.CashMovementStatus, auditNote string, updatedAt time.Time) error {
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, tx, id, status, auditNote, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	mov, ok := m.movements[id]
	if !ok {
		return domain.ErrCashMovementNotFound
	}
	mov.Status = status
	mov.AuditNote = auditNote
	mov.UpdatedAt = updatedAt
	return nil
}

func (m *MockCashMovementRepository) List(ctx context.Context, filter usecase.CashFilter) ([]*domain.CashMovement, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, filter)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var movements []*domain.CashMovement
	for _, mov := range m.movements {
		if filter.OwnerID != "" && mov.OwnerID != filter.OwnerID {
			continue
		}
		movements = append(movements, mov)
	}
	return movements, nil
}

// MockLoanRepository is a mock implementation of LoanRepository.
type MockLoanRepository struct {
	mu    sync.RWMutex
	loans map[string]*domain.Loan

	CreateFunc           func(ctx context.Context, tx usecase.Transaction, loan *domain.Loan) error
	GetByIDFunc          func(ctx context.Context, id string) (*domain.Loan, error)
	GetByIDForUpdateFunc func(ctx context.Context, tx usecase.Transaction, id string) (*domain.Loan, error)
	UpdateStatsFunc      func(ctx context.Context, tx usecase.Transaction, loan *domain.Loan) error
	UpdateStatusFunc     func(ctx context.Context, tx usecase.Transaction, id string, status domain.LoanStatus, updatedAt time.Time) error
	ListFunc             func(ctx context.Context, filter usecase.LoanFilter) ([]*domain.Loan, error)
	StatisticsFunc       func(ctx context.Context, ownerID string) (*domain.LoanStatistics, error)
}

func NewMockLoanRepository() *MockLoanRepository {
	return &MockLoanRepository{
		loans: make(map[string]*domain.Loan),
	}
}

func (m *MockLoanRepository) Create(ctx context.Context, tx usecase.Transaction, loan *domain.Loan) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, loan)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loans[loan.ID] = loan
	return nil
}

func (m *MockLoanRepository) GetByID(ctx context.Context, id string) (*domain.Loan, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if loan, ok := m.loans[id]; ok {
		return loan, nil
	}
	return nil, domain.ErrLoanNotFound
}

func (m *MockLoanRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Loan, error) {
	if m.GetByIDForUpdateFunc != nil {
		return m.GetByIDForUpdateFunc(ctx, tx, id)
	}
	return m.GetByID(ctx, id)
}

func (m *MockLoanRepository) UpdateStats(ctx context.Context, tx usecase.Transaction, loan *domain.Loan) error {
	if m.UpdateStatsFunc != nil {
		return m.UpdateStatsFunc(ctx, tx, loan)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loans[loan.ID] = loan
	return nil
}

func (m *MockLoanRepository) UpdateStatus(ctx context.Context, tx usecase.Transaction, id string, status domain.LoanStatus, updatedAt time.Time) error {
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, tx, id, status, updatedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	loan, ok := m.loans[id]
	if !ok {
		return domain.ErrLoanNotFound
	}
	loan.Status = status
	loan.UpdatedAt = updatedAt
	return nil
}

func (m *MockLoanRepository) List(ctx context.Context, filter usecase.LoanFilter) ([]*domain.Loan, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, filter)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var loans []*domain.Loan
	for _, loan := range m.loans {
		if filter.OwnerID != "" && loan.OwnerID != filter.OwnerID {
			continue
		}
		loans = append(loans, loan)
	}
	return loans, nil
}

func (m *MockLoanRepository) Statistics(ctx context.Context, ownerID string) (*domain.LoanStatistics, error) {
	if m.StatisticsFunc != nil {
		return m.StatisticsFunc(ctx, ownerID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	stats := &domain.LoanStatistics{
		OwnerID:           ownerID,
		TotalApproved:     decimal.Zero,
		TotalOutstanding:  decimal.Zero,
		TotalInterestPaid: decimal.Zero,
	}
	for _, loan := range m.loans {
		if loan.OwnerID != ownerID {
			continue
		}
		stats.TotalLoans++
		stats.TotalInterestPaid = stats.TotalInterestPaid.Add(loan.InterestPaid)
		stats.InstallmentsPaid += loan.InstallmentsPaid
		switch loan.Status {
		case domain.LoanStatusApproved:
			stats.ActiveLoans++
			stats.TotalApproved = stats.TotalApproved.Add(loan.PrincipalApproved)
			stats.TotalOutstanding = stats.TotalOutstanding.Add(loan.Outstanding)
			stats.InstallmentsPending += loan.InstallmentsPending
		case domain.LoanStatusCancelled:
			stats.CancelledLoans++
		}
	}
	return stats, nil
}

// MockLoanPaymentRepository is a mock implementation of LoanPaymentRepository.
type MockLoanPaymentRepository struct {
	mu       sync.RWMutex
	payments map[string]*domain.LoanPayment

	CreateBatchFunc      func(ctx context.Context, tx usecase.Transaction, payments []*domain.LoanPayment) error
	CountByLoanFunc      func(ctx context.Context, tx usecase.Transaction, loanID string) (int, error)
	GetByIDFunc          func(ctx context.Context, id string) (*domain.LoanPayment, error)
	GetByIDForUpdateFunc func(ctx context.Context, tx usecase.Transaction, id string) (*domain.LoanPayment, error)
	UpdateFunc           func(ctx context.Context, tx usecase.Transaction, payment *domain.LoanPayment) error
	ListByLoanFunc       func(ctx context.Context, loanID string) ([]*domain.LoanPayment, error)
}

func NewMockLoanPaymentRepository() *MockLoanPaymentRepository {
	return &MockLoanPaymentRepository{
		payments: make(map[string]*domain.LoanPayment),
	}
}

func (m *MockLoanPaymentRepository) CreateBatch(ctx context.Context, tx usecase.Transaction, payments []*domain.LoanPayment) error {
	if m.CreateBatchFunc != nil {
		return m.CreateBatchFunc(ctx, tx, payments)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range payments {
		m.payments[p.ID] = p
	}
	return nil
}

func (m *MockLoanPaymentRepository) CountByLoan(ctx context.Context, tx usecase.Transaction, loanID string) (int, error) {
	if m.CountByLoanFunc != nil {
		return m.CountByLoanFunc(ctx, tx, loanID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	count := 0
	for _, p := range m.payments {
		if p.LoanID == loanID {
			count++
		}
	}
	return count, nil
}

func (m *MockLoanPaymentRepository) GetByID(ctx context.Context, id string) (*domain.LoanPayment, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if p, ok := m.payments[id]; ok {
		return p, nil
	}
	return nil, domain.ErrPaymentNotFound
}

func (m *MockLoanPaymentRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.LoanPayment, error) {
	if m.GetByIDForUpdateFunc != nil {
		return m.GetByIDForUpdateFunc(ctx, tx, id)
	}
	return m.GetByID(ctx, id)
}

func (m *MockLoanPaymentRepository) Update(ctx context.Context, tx usecase.Transaction, payment *domain.LoanPayment) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, tx, payment)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payments[payment.ID] = payment
	return nil
}

func (m *MockLoanPaymentRepository) ListByLoan(ctx context.Context, loanID string) ([]*domain.LoanPayment, error) {
	if m.ListByLoanFunc != nil {
		return m.ListByLoanFunc(ctx, loanID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var payments []*domain.LoanPayment
	for _, p := range m.payments {
		if p.LoanID == loanID {
			payments = append(payments, p)
		}
	}
	return payments, nil
}

// MockOutboxRepository is a mock implementation of OutboxRepository.
type MockOutboxRepository struct {
	mu     sync.RWMutex
	events []*domain.OutboxEvent

	CreateFunc          func(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error
	GetUnpublishedFunc  func(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublishedFunc   func(ctx context.Context, id string, publishedAt time.Time) error
	DeletePublishedFunc func(ctx context.Context, before time.Time) error
}

func NewMockOutboxRepository() *MockOutboxRepository {
	return &MockOutboxRepository{}
}

func (m *MockOutboxRepository) Create(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, tx, event)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}

func (m *MockOutboxRepository) GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	if m.GetUnpublishedFunc != nil {
		return m.GetUnpublishedFunc(ctx, limit)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*domain.OutboxEvent
	for _, e := range m.events {
		if e.PublishedAt == nil {
			out = append(out, e)
		}
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (m *MockOutboxRepository) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	if m.MarkPublishedFunc != nil {
		return m.MarkPublishedFunc(ctx, id, publishedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.events {
		if e.ID == id {
			e.PublishedAt = &publishedAt
			return nil
		}
	}
	return nil
}

func (m *MockOutboxRepository) DeletePublished(ctx context.Context, before time.Time) error {
	if m.DeletePublishedFunc != nil {
		return m.DeletePublishedFunc(ctx, before)
	}
	return nil
}

// Events returns a snapshot of all recorded events.
func (m *MockOutboxRepository) Events() []*domain.OutboxEvent {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.OutboxEvent, len(m.events))
	copy(out, m.events)
	return out
}

// MockAuditRepository is a mock implementation of AuditRepository.
type MockAuditRepository struct {
	mu   sync.RWMutex
	logs []*domain.AuditLog

	CreateFunc   func(ctx context.Context, log *domain.AuditLog) error
	CreateTxFunc func(ctx context.Context, tx usecase.Transaction, log *domain.AuditLog) error
	ListFunc     func(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error)
}

func NewMockAuditRepository() *MockAuditRepository {
	return &MockAuditRepository{}
}

func (m *MockAuditRepository) Create(ctx context.Context, log *domain.AuditLog) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, log)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logs = append(m.logs, log)
	return nil
}

func (m *MockAuditRepository) CreateTx(ctx context.Context, tx usecase.Transaction, log *domain.AuditLog) error {
	if m.CreateTxFunc != nil {
		return m.CreateTxFunc(ctx, tx, log)
	}
	return m.Create(ctx, log)
}

func (m *MockAuditRepository) List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, filter)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.AuditLog, len(m.logs))
	copy(out, m.logs)
	return out, nil
}

// Logs returns a snapshot of all recorded audit logs.
func (m *MockAuditRepository) Logs() []*domain.AuditLog {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.AuditLog, len(m.logs))
	copy(out, m.logs)
	return out
}

// MockTransaction is a mock implementation of Transaction.
type MockTransaction struct {
	CommitFunc   func(ctx context.Context) error
	RollbackFunc func(ctx context.Context) error

	mu         sync.Mutex
	Committed  bool
	RolledBack bool
}

func (m *MockTransaction) Commit(ctx context.Context) error {
	if m.CommitFunc != nil {
		return m.CommitFunc(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Committed = true
	return nil
}

func (m *MockTransaction) Rollback(ctx context.Context) error {
	if m.RollbackFunc != nil {
		return m.RollbackFunc(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.Committed {
		m.RolledBack = true
	}
	return nil
}

// MockTransactionManager is a mock implementation of TransactionManager.
type MockTransactionManager struct {
	BeginFunc func(ctx context.Context) (usecase.Transaction, error)
}

func NewMockTransactionManager() *MockTransactionManager {
	return &MockTransactionManager{}
}

func (m *MockTransactionManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if m.BeginFunc != nil {
		return m.BeginFunc(ctx)
	}
	return &MockTransaction{}, nil
}

// SequentialIDGenerator generates predictable IDs for tests.
type SequentialIDGenerator struct {
	mu     sync.Mutex
	prefix string
	next   int
}

func NewSequentialIDGenerator(prefix string) *SequentialIDGenerator {
	return &SequentialIDGenerator{prefix: prefix}
}

func (g *SequentialIDGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.next++
	return fmt.Sprintf("%s-%04d", g.prefix, g.next)
}

// MockCodeGenerator counts per prefix and formats codes the same way the real
// generator does.
type MockCodeGenerator struct {
	mu   sync.Mutex
	seqs map[string]int

	NextFunc func(ctx context.Context, tx usecase.Transaction, prefix, dateSegment, ownerID string, width int) string
}

func NewMockCodeGenerator() *MockCodeGenerator {
	return &MockCodeGenerator{seqs: make(map[string]int)}
}

func (g *MockCodeGenerator) Next(ctx context.Context, tx usecase.Transaction, prefix, dateSegment, ownerID string, width int) string {
	if g.NextFunc != nil {
		return g.NextFunc(ctx, tx, prefix, dateSegment, ownerID, width)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	key := prefix + dateSegment + ownerID
	g.seqs[key]++
	return domain.FormatCode(prefix, dateSegment, g.seqs[key], width)
}

// PassthroughRetrier runs the operation once with no retry.
type PassthroughRetrier struct{}

func (PassthroughRetrier) Retry(ctx context.Context, operation func() error) error {
	return operation()
}

// MockCache is a mock implementation of Cache.
type MockCache struct {
	mu    sync.RWMutex
	items map[string]string

	GetFunc    func(ctx context.Context, key string) (string, error)
	SetFunc    func(ctx context.Context, key, value string, ttl time.Duration) error
	DeleteFunc func(ctx context.Context, key string) error
}

func NewMockCache() *MockCache {
	return &MockCache{items: make(map[string]string)}
}

func (m *MockCache) Get(ctx context.Context, key string) (string, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, key)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.items[key], nil
}

func (m *MockCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if m.SetFunc != nil {
		return m.SetFunc(ctx, key, value, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = value
	return nil
}

func (m *MockCache) Delete(ctx context.Context, key string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, key)
	return nil
}

// MockIdempotencyStore is a mock implementation of IdempotencyStore.
type MockIdempotencyStore struct {
	mu    sync.Mutex
	items map[string][]byte

	CheckAndSetFunc func(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	UpdateFunc      func(ctx context.Context, key string, response []byte, ttl time.Duration) error
}

func NewMockIdempotencyStore() *MockIdempotencyStore {
	return &MockIdempotencyStore{items: make(map[string][]byte)}
}

func (m *MockIdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	if m.CheckAndSetFunc != nil {
		return m.CheckAndSetFunc(ctx, key, response, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.items[key]; ok {
		return true, existing, nil
	}
	m.items[key] = response
	return false, nil, nil
}

func (m *MockIdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, key, response, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = response
	return nil
}
