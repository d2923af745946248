package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cajafin/ledger/internal/domain"
)

// CashMovementUseCase handles cash-register movements that do not touch a
// bank account. Integrated events go through IntegrationUseCase instead.
type CashMovementUseCase struct {
	txManager TransactionManager
	cashRepo  CashMovementRepository
	idGen     IDGenerator
	codeGen   CodeGenerator
}

// NewCashMovementUseCase creates a new CashMovementUseCase.
func NewCashMovementUseCase(
	txManager TransactionManager,
	cashRepo CashMovementRepository,
	idGen IDGenerator,
	codeGen CodeGenerator,
) *CashMovementUseCase {
	return &CashMovementUseCase{
		txManager: txManager,
		cashRepo:  cashRepo,
		idGen:     idGen,
		codeGen:   codeGen,
	}
}

// RegisterCashInput represents a cash-register event.
type RegisterCashInput struct {
	Type     domain.CashMovementType
	Concept  string
	Category domain.CashCategory
	Amount   decimal.Decimal
	Method   domain.PaymentMethod
}

// Register persists a cash-only movement in pending state.
func (uc *CashMovementUseCase) Register(ctx context.Context, input RegisterCashInput, actor domain.Actor) (*domain.CashMovement, error) {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	movement, err := uc.buildInTx(ctx, tx, input, actor)
	if err != nil {
		return nil, err
	}

	if err := uc.cashRepo.Create(ctx, tx, movement); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return movement, nil
}

// buildInTx validates the event and assembles the record without saving it.
// The integration orchestrator uses this to fill in the bank link before the
// single write.
func (uc *CashMovementUseCase) buildInTx(ctx context.Context, tx Transaction, input RegisterCashInput, actor domain.Actor) (*domain.CashMovement, error) {
	if !input.Type.IsValid() {
		return nil, fmt.Errorf("%w: unknown cash movement type %q", domain.ErrInvalidStateTransition, input.Type)
	}

	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}

	if err := domain.ValidateConcept(input.Concept); err != nil {
		return nil, err
	}

	// A cash denomination breakdown, when present, must add up to the
	// declared amount.
	if input.Method.Kind == domain.MethodCash && len(input.Method.Denominations) > 0 {
		if !input.Method.Total().Equal(input.Amount) {
			return nil, fmt.Errorf("%w: denomination breakdown %s does not match amount %s",
				domain.ErrInvalidAmount, input.Method.Total().StringFixed(2), input.Amount.StringFixed(2))
		}
	}

	now := time.Now().UTC()

	return &domain.CashMovement{
		ID:        uc.idGen.Generate(),
		Code:      uc.codeGen.Next(ctx, tx, domain.CodePrefixCash, domain.MonthSegment(now), actor.UserID, domain.CodeWidthDefault),
		OwnerID:   actor.UserID,
		Type:      input.Type,
		Concept:   input.Concept,
		Category:  input.Category,
		Amount:    input.Amount,
		Method:    input.Method,
		Status:    domain.CashStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Validate advances a pending movement to validated.
func (uc *CashMovementUseCase) Validate(ctx context.Context, id string, actor domain.Actor) error {
	return uc.transition(ctx, id, domain.CashStatusValidated, "", actor)
}

// Apply advances a validated movement to applied. Applied movements can no
// longer be cancelled.
func (uc *CashMovementUseCase) Apply(ctx context.Context, id string, actor domain.Actor) error {
	return uc.transition(ctx, id, domain.CashStatusApplied, "", actor)
}

// Cancel marks a cash movement cancelled with an audit reason. Movements
// linked to a bank side must go through IntegrationUseCase.ReverseIntegrated
// so both ledgers unwind together.
func (uc *CashMovementUseCase) Cancel(ctx context.Context, id, reason string, actor domain.Actor) error {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	movement, err := uc.cashRepo.GetByIDForUpdate(ctx, tx, id)
	if err != nil {
		return err
	}

	if movement.OwnerID != actor.UserID && actor.Role != domain.RoleAdmin {
		return domain.ErrNotAuthorized
	}

	if movement.AffectsBankAccount {
		return fmt.Errorf("%w: movement %s is linked to a bank movement, use integrated reversal", domain.ErrInvalidStateTransition, movement.Code)
	}

	if err := movement.CanCancel(); err != nil {
		return err
	}

	note := appendAuditNote(movement.AuditNote, fmt.Sprintf("anulado por %s: %s", actor.UserID, reason))
	if err := uc.cashRepo.UpdateStatus(ctx, tx, id, domain.CashStatusCancelled, note, time.Now().UTC()); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (uc *CashMovementUseCase) transition(ctx context.Context, id string, next domain.CashMovementStatus, note string, actor domain.Actor) error {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	movement, err := uc.cashRepo.GetByIDForUpdate(ctx, tx, id)
	if err != nil {
		return err
	}

	if movement.OwnerID != actor.UserID && actor.Role != domain.RoleAdmin {
		return domain.ErrNotAuthorized
	}

	if !movement.CanTransitionTo(next) {
		return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidStateTransition, movement.Status, next)
	}

	auditNote := movement.AuditNote
	if note != "" {
		auditNote = appendAuditNote(auditNote, note)
	}

	if err := uc.cashRepo.UpdateStatus(ctx, tx, id, next, auditNote, time.Now().UTC()); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// GetCashMovement retrieves a cash movement by ID.
func (uc *CashMovementUseCase) GetCashMovement(ctx context.Context, id string) (*domain.CashMovement, error) {
	return uc.cashRepo.GetByID(ctx, id)
}

// ListCashMovements lists the actor's cash movements.
func (uc *CashMovementUseCase) ListCashMovements(ctx context.Context, filter CashFilter, actor domain.Actor) ([]*domain.CashMovement, error) {
	filter.OwnerID = actor.UserID
	filter.Limit, filter.Offset = domain.ValidatePagination(filter.Limit, filter.Offset)

	return uc.cashRepo.List(ctx, filter)
}

func appendAuditNote(existing, note string) string {
	if existing == "" {
		return note
	}
	return existing + " | " + note
}
