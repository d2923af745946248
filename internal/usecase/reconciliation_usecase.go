package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cajafin/ledger/internal/domain"
)

// ReconciliationUseCase verifies the incremental balance invariant and
// hunts for half-linked records. It is the detection side of the design:
// integrated postings commit atomically, and this pass proves it.
type ReconciliationUseCase struct {
	accountRepo  BankAccountRepository
	movementRepo BankMovementRepository
}

// NewReconciliationUseCase creates a new ReconciliationUseCase.
func NewReconciliationUseCase(accountRepo BankAccountRepository, movementRepo BankMovementRepository) *ReconciliationUseCase {
	return &ReconciliationUseCase{
		accountRepo:  accountRepo,
		movementRepo: movementRepo,
	}
}

// ReconciliationResult represents the result of a reconciliation check.
type ReconciliationResult struct {
	AccountID         string
	RecordedBalance   decimal.Decimal
	CalculatedBalance decimal.Decimal
	Difference        decimal.Decimal
	IsReconciled      bool
	LastChecked       time.Time
}

// ReconcileAccount recomputes initial + sum(signed non-cancelled movements)
// and compares it with the incrementally maintained CurrentBalance.
func (uc *ReconciliationUseCase) ReconcileAccount(ctx context.Context, accountID string) (*ReconciliationResult, error) {
	account, err := uc.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	sum, err := uc.movementRepo.SumSignedAmounts(ctx, accountID)
	if err != nil {
		return nil, err
	}

	calculated := account.InitialBalance.Add(sum)
	diff := account.CurrentBalance.Sub(calculated)

	return &ReconciliationResult{
		AccountID:         accountID,
		RecordedBalance:   account.CurrentBalance,
		CalculatedBalance: calculated,
		Difference:        diff,
		IsReconciled:      diff.IsZero(),
		LastChecked:       time.Now().UTC(),
	}, nil
}

// ReconcileOwnerAccounts reconciles every account of an owner.
func (uc *ReconciliationUseCase) ReconcileOwnerAccounts(ctx context.Context, ownerID string) ([]*ReconciliationResult, error) {
	limit, offset := domain.ValidatePagination(1000, 0)
	accounts, err := uc.accountRepo.List(ctx, AccountFilter{OwnerID: ownerID, Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}

	results := make([]*ReconciliationResult, 0, len(accounts))
	for _, account := range accounts {
		result, err := uc.ReconcileAccount(ctx, account.ID)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}

	return results, nil
}

// FindUnlinkedMovements returns bank movements that claim a cash origin but
// whose cash record is missing or does not point back.
func (uc *ReconciliationUseCase) FindUnlinkedMovements(ctx context.Context, limit int) ([]*domain.BankMovement, error) {
	limit, _ = domain.ValidatePagination(limit, 0)
	return uc.movementRepo.FindUnlinked(ctx, limit)
}
