package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cajafin/ledger/internal/domain"
)

// AccountFilter narrows account listings.
type AccountFilter struct {
	OwnerID string
	Type    domain.AccountType
	Active  *bool
	Limit   int
	Offset  int
}

// MovementFilter narrows bank movement listings.
type MovementFilter struct {
	AccountID string
	OwnerID   string
	Type      domain.MovementType
	Status    domain.MovementStatus
	From      *time.Time
	To        *time.Time
	Search    string
	Limit     int
	Offset    int
}

// CashFilter narrows cash movement listings.
type CashFilter struct {
	OwnerID string
	Type    domain.CashMovementType
	Status  domain.CashMovementStatus
	From    *time.Time
	To      *time.Time
	Search  string
	Limit   int
	Offset  int
}

// LoanFilter narrows loan listings.
type LoanFilter struct {
	OwnerID string
	Status  domain.LoanStatus
	Search  string
	Limit   int
	Offset  int
}

// BankAccountRepository defines data access for bank accounts.
type BankAccountRepository interface {
	Create(ctx context.Context, tx Transaction, account *domain.BankAccount) error
	GetByID(ctx context.Context, id string) (*domain.BankAccount, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.BankAccount, error)
	// UpdateBalance persists balance, version, and last movement stamp in one
	// write, guarded by the expected previous version.
	UpdateBalance(ctx context.Context, tx Transaction, account *domain.BankAccount, movedAt time.Time) error
	SetActive(ctx context.Context, id string, active bool, updatedAt time.Time) error
	List(ctx context.Context, filter AccountFilter) ([]*domain.BankAccount, error)
}

// BankMovementRepository defines data access for bank movements.
type BankMovementRepository interface {
	Create(ctx context.Context, tx Transaction, movement *domain.BankMovement) error
	GetByID(ctx context.Context, id string) (*domain.BankMovement, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.BankMovement, error)
	MarkCancelled(ctx context.Context, tx Transaction, id, cancelledBy, reason string, cancelledAt time.Time) error
	List(ctx context.Context, filter MovementFilter) ([]*domain.BankMovement, error)
	// SumSignedAmounts totals non-cancelled movements for an account,
	// expenses negative.
	SumSignedAmounts(ctx context.Context, accountID string) (decimal.Decimal, error)
	// FindUnlinked returns processed movements that claim a cash origin but
	// have no cash movement pointing back at them.
	FindUnlinked(ctx context.Context, limit int) ([]*domain.BankMovement, error)
}

// CashMovementRepository defines data access for cash movements.
type CashMovementRepository interface {
	Create(ctx context.Context, tx Transaction, movement *domain.CashMovement) error
	GetByID(ctx context.Context, id string) (*domain.CashMovement, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.CashMovement, error)
	UpdateStatus(ctx context.Context, tx Transaction, id string, status domain.CashMovementStatus, auditNote string, updatedAt time.Time) error
	List(ctx context.Context, filter CashFilter) ([]*domain.CashMovement, error)
}

// LoanRepository defines data access for loans.
type LoanRepository interface {
	Create(ctx context.Context, tx Transaction, loan *domain.Loan) error
	GetByID(ctx context.Context, id string) (*domain.Loan, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Loan, error)
	UpdateStats(ctx context.Context, tx Transaction, loan *domain.Loan) error
	UpdateStatus(ctx context.Context, tx Transaction, id string, status domain.LoanStatus, updatedAt time.Time) error
	List(ctx context.Context, filter LoanFilter) ([]*domain.Loan, error)
	Statistics(ctx context.Context, ownerID string) (*domain.LoanStatistics, error)
}

// LoanPaymentRepository defines data access for loan payments.
type LoanPaymentRepository interface {
	CreateBatch(ctx context.Context, tx Transaction, payments []*domain.LoanPayment) error
	CountByLoan(ctx context.Context, tx Transaction, loanID string) (int, error)
	GetByID(ctx context.Context, id string) (*domain.LoanPayment, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.LoanPayment, error)
	Update(ctx context.Context, tx Transaction, payment *domain.LoanPayment) error
	ListByLoan(ctx context.Context, loanID string) ([]*domain.LoanPayment, error)
}

// OutboxRepository defines data access for outbox events.
type OutboxRepository interface {
	Create(ctx context.Context, tx Transaction, event *domain.OutboxEvent) error
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
	DeletePublished(ctx context.Context, before time.Time) error
}

// AuditRepository defines data access for audit logs.
type AuditRepository interface {
	Create(ctx context.Context, log *domain.AuditLog) error
	CreateTx(ctx context.Context, tx Transaction, log *domain.AuditLog) error
	List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error)
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// IDGenerator generates unique record IDs.
type IDGenerator interface {
	Generate() string
}

// CodeGenerator produces human-readable sequential operation codes scoped by
// owner. It never fails: when sequence lookup or parsing breaks it degrades
// to a timestamp-derived code. The storage-layer unique constraint remains
// the authoritative guard against duplicates.
type CodeGenerator interface {
	Next(ctx context.Context, tx Transaction, prefix, dateSegment, ownerID string, width int) string
}

// Retrier retries an operation on transient storage failures.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// Cache defines caching operations.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// LoanScheduleKey builds the cache key for a loan's amortization table.
func LoanScheduleKey(loanID string) string {
	return "loan:" + loanID + ":schedule"
}

// LoanStatsKey builds the cache key for an owner's loan statistics.
func LoanStatsKey(ownerID string) string {
	return "owner:" + ownerID + ":loanstats"
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
}
