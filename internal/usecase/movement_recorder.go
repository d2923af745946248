package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cajafin/ledger/internal/domain"
)

// MovementRecorder posts and reverses bank movements inside a caller-owned
// transaction. It is the single write path for account balances: every
// mutation freezes balanceBefore/balanceAfter on the movement and persists
// the new balance under the row lock the caller already holds.
type MovementRecorder struct {
	accountRepo  BankAccountRepository
	movementRepo BankMovementRepository
	outboxRepo   OutboxRepository
	idGen        IDGenerator
	codeGen      CodeGenerator
}

// NewMovementRecorder creates a new MovementRecorder.
func NewMovementRecorder(
	accountRepo BankAccountRepository,
	movementRepo BankMovementRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
	codeGen CodeGenerator,
) *MovementRecorder {
	return &MovementRecorder{
		accountRepo:  accountRepo,
		movementRepo: movementRepo,
		outboxRepo:   outboxRepo,
		idGen:        idGen,
		codeGen:      codeGen,
	}
}

// PostMovementInput describes one bank movement to post.
type PostMovementInput struct {
	Type             domain.MovementType
	Category         domain.BankCategory
	Amount           decimal.Decimal
	Description      string
	CounterAccountID *string
	CashMovementID   *string
}

// PostInTx validates and posts one movement against a locked account,
// mutating the account balance. The caller must have loaded the account
// with GetByIDForUpdate inside tx.
func (r *MovementRecorder) PostInTx(ctx context.Context, tx Transaction, account *domain.BankAccount, input PostMovementInput) (*domain.BankMovement, error) {
	if !account.Active {
		return nil, fmt.Errorf("%w: %s", domain.ErrAccountInactive, account.Code)
	}

	if !input.Type.IsValid() {
		return nil, fmt.Errorf("%w: unknown movement type %q", domain.ErrInvalidStateTransition, input.Type)
	}

	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}

	if input.Type.IsOutgoing() {
		if err := account.ValidateDebit(input.Amount); err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()

	balanceBefore := account.CurrentBalance
	var balanceAfter decimal.Decimal
	if input.Type.IsOutgoing() {
		balanceAfter = account.ApplyDebit(input.Amount)
	} else {
		balanceAfter = account.ApplyCredit(input.Amount)
	}

	prefix := domain.CodePrefixIncome
	if input.Type.IsOutgoing() {
		prefix = domain.CodePrefixExpense
	}
	code := r.codeGen.Next(ctx, tx, prefix, domain.MonthSegment(now), account.OwnerID, domain.CodeWidthDefault)

	movement := &domain.BankMovement{
		ID:               r.idGen.Generate(),
		Code:             code,
		AccountID:        account.ID,
		CounterAccountID: input.CounterAccountID,
		Type:             input.Type,
		Category:         input.Category,
		Amount:           input.Amount,
		Currency:         account.Currency,
		BalanceBefore:    balanceBefore,
		BalanceAfter:     balanceAfter,
		Status:           domain.MovementStatusProcessed,
		Description:      input.Description,
		CashMovementID:   input.CashMovementID,
		CreatedAt:        now,
	}

	if err := r.movementRepo.Create(ctx, tx, movement); err != nil {
		return nil, err
	}

	account.CurrentBalance = balanceAfter
	account.Version++
	account.LastMovementAt = &now

	if err := r.accountRepo.UpdateBalance(ctx, tx, account, now); err != nil {
		return nil, err
	}

	if r.outboxRepo != nil {
		event := &domain.OutboxEvent{
			ID:            r.idGen.Generate(),
			AggregateID:   movement.ID,
			AggregateType: domain.AggregateTypeMovement,
			EventType:     domain.EventTypeMovementPosted,
			Payload: map[string]any{
				"movement_id":    movement.ID,
				"code":           movement.Code,
				"account_id":     account.ID,
				"type":           string(movement.Type),
				"amount":         movement.Amount.String(),
				"balance_before": balanceBefore.String(),
				"balance_after":  balanceAfter.String(),
			},
			CreatedAt: now,
		}
		if err := r.outboxRepo.Create(ctx, tx, event); err != nil {
			return nil, err
		}
	}

	return movement, nil
}

// ReverseInTx posts the compensating movement for a processed one and marks
// the original cancelled. The ledger is append-mostly: nothing is deleted
// and the original amount is never edited.
func (r *MovementRecorder) ReverseInTx(ctx context.Context, tx Transaction, account *domain.BankAccount, movement *domain.BankMovement, reason string, actor domain.Actor) (*domain.BankMovement, error) {
	if err := movement.CanReverse(); err != nil {
		return nil, err
	}

	if movement.AccountID != account.ID {
		return nil, domain.ErrMovementNotFound
	}

	compensating, err := r.PostInTx(ctx, tx, account, PostMovementInput{
		Type:             movement.Type.Opposite(),
		Category:         movement.Category,
		Amount:           movement.Amount,
		Description:      fmt.Sprintf("Anulación de %s: %s", movement.Code, reason),
		CounterAccountID: movement.CounterAccountID,
	})
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if err := r.movementRepo.MarkCancelled(ctx, tx, movement.ID, actor.UserID, reason, now); err != nil {
		return nil, err
	}
	movement.Status = domain.MovementStatusCancelled
	movement.CancelledBy = &actor.UserID
	movement.CancelledAt = &now
	movement.CancelReason = &reason

	if r.outboxRepo != nil {
		event := &domain.OutboxEvent{
			ID:            r.idGen.Generate(),
			AggregateID:   movement.ID,
			AggregateType: domain.AggregateTypeMovement,
			EventType:     domain.EventTypeMovementReversed,
			Payload: map[string]any{
				"reversal_movement_id": compensating.ID,
				"original_movement_id": movement.ID,
				"account_id":           account.ID,
				"amount":               movement.Amount.String(),
			},
			CreatedAt: now,
		}
		if err := r.outboxRepo.Create(ctx, tx, event); err != nil {
			return nil, err
		}
	}

	return compensating, nil
}
