package usecase

import (
	"context"

	"github.com/cajafin/ledger/internal/domain"
	"github.com/cajafin/ledger/internal/infrastructure/metrics"
)

// BankMovementUseCase exposes bank-only movement posting and reversal, for
// deposits, withdrawals, and transfers that never touch the cash register.
type BankMovementUseCase struct {
	txManager    TransactionManager
	accountRepo  BankAccountRepository
	movementRepo BankMovementRepository
	recorder     *MovementRecorder
	retrier      Retrier
	metrics      *metrics.Metrics
}

// NewBankMovementUseCase creates a new BankMovementUseCase.
func NewBankMovementUseCase(
	txManager TransactionManager,
	accountRepo BankAccountRepository,
	movementRepo BankMovementRepository,
	recorder *MovementRecorder,
	m *metrics.Metrics,
) *BankMovementUseCase {
	return &BankMovementUseCase{
		txManager:    txManager,
		accountRepo:  accountRepo,
		movementRepo: movementRepo,
		recorder:     recorder,
		metrics:      m,
	}
}

// WithRetrier sets a retrier for transient storage failures.
func (uc *BankMovementUseCase) WithRetrier(r Retrier) *BankMovementUseCase {
	uc.retrier = r
	return uc
}

// PostMovement posts a single bank movement against the actor's account.
// The account row is locked for the whole operation, so concurrent debits
// serialize and the sufficiency check always sees the committed balance.
func (uc *BankMovementUseCase) PostMovement(ctx context.Context, accountID string, input PostMovementInput, actor domain.Actor) (*domain.BankMovement, error) {
	var movement *domain.BankMovement

	op := func() error {
		var err error
		movement, err = uc.postOnce(ctx, accountID, input, actor)
		return err
	}

	var err error
	if uc.retrier != nil {
		err = uc.retrier.Retry(ctx, op)
	} else {
		err = op()
	}
	if err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.MovementsPosted.WithLabelValues(string(input.Type)).Inc()
	}

	return movement, nil
}

func (uc *BankMovementUseCase) postOnce(ctx context.Context, accountID string, input PostMovementInput, actor domain.Actor) (*domain.BankMovement, error) {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	account, err := uc.accountRepo.GetByIDForUpdate(ctx, tx, accountID)
	if err != nil {
		return nil, err
	}

	if !account.OwnedBy(actor) && actor.Role != domain.RoleAdmin {
		return nil, domain.ErrNotAuthorized
	}

	movement, err := uc.recorder.PostInTx(ctx, tx, account, input)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return movement, nil
}

// ReverseMovement cancels a processed movement by posting its compensating
// entry and marking the original cancelled.
func (uc *BankMovementUseCase) ReverseMovement(ctx context.Context, movementID, reason string, actor domain.Actor) (*domain.BankMovement, error) {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	movement, err := uc.movementRepo.GetByIDForUpdate(ctx, tx, movementID)
	if err != nil {
		return nil, err
	}

	account, err := uc.accountRepo.GetByIDForUpdate(ctx, tx, movement.AccountID)
	if err != nil {
		return nil, err
	}

	if !account.OwnedBy(actor) && actor.Role != domain.RoleAdmin {
		return nil, domain.ErrNotAuthorized
	}

	compensating, err := uc.recorder.ReverseInTx(ctx, tx, account, movement, reason, actor)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.MovementsReversed.Inc()
	}

	return compensating, nil
}

// GetMovement retrieves a movement by ID.
func (uc *BankMovementUseCase) GetMovement(ctx context.Context, id string) (*domain.BankMovement, error) {
	return uc.movementRepo.GetByID(ctx, id)
}

// ListMovements lists movements for the actor with filters.
func (uc *BankMovementUseCase) ListMovements(ctx context.Context, filter MovementFilter, actor domain.Actor) ([]*domain.BankMovement, error) {
	filter.OwnerID = actor.UserID
	filter.Limit, filter.Offset = domain.ValidatePagination(filter.Limit, filter.Offset)

	return uc.movementRepo.List(ctx, filter)
}
