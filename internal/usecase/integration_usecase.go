package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cajafin/ledger/internal/domain"
	"github.com/cajafin/ledger/internal/infrastructure/metrics"
)

// IntegrationUseCase ties the cash register and the bank ledger together:
// a single business event that touches both is validated once, posted on
// both sides inside one transaction, linked, and reversed as a pair.
type IntegrationUseCase struct {
	txManager    TransactionManager
	accountRepo  BankAccountRepository
	movementRepo BankMovementRepository
	cashRepo     CashMovementRepository
	cashUC       *CashMovementUseCase
	recorder     *MovementRecorder
	auditRepo    AuditRepository
	idGen        IDGenerator
	retrier      Retrier
	metrics      *metrics.Metrics
}

// NewIntegrationUseCase creates a new IntegrationUseCase.
func NewIntegrationUseCase(
	txManager TransactionManager,
	accountRepo BankAccountRepository,
	movementRepo BankMovementRepository,
	cashRepo CashMovementRepository,
	cashUC *CashMovementUseCase,
	recorder *MovementRecorder,
	auditRepo AuditRepository,
	idGen IDGenerator,
	m *metrics.Metrics,
) *IntegrationUseCase {
	return &IntegrationUseCase{
		txManager:    txManager,
		accountRepo:  accountRepo,
		movementRepo: movementRepo,
		cashRepo:     cashRepo,
		cashUC:       cashUC,
		recorder:     recorder,
		auditRepo:    auditRepo,
		idGen:        idGen,
		metrics:      m,
	}
}

// WithRetrier sets a retrier for transient storage failures.
func (uc *IntegrationUseCase) WithRetrier(r Retrier) *IntegrationUseCase {
	uc.retrier = r
	return uc
}

// IntegratedEventInput is a business event to record on the cash ledger
// and, when AffectsBankAccount is set, on the bank ledger as well.
type IntegratedEventInput struct {
	Type               domain.CashMovementType
	Concept            string
	Category           domain.CashCategory
	Amount             decimal.Decimal
	Method             domain.PaymentMethod
	AffectsBankAccount bool
	BankAccountID      string
}

// BalanceSummary reports the bank balance swing of an integrated posting.
type BalanceSummary struct {
	AccountID     string
	BalanceBefore decimal.Decimal
	BalanceAfter  decimal.Decimal
}

// IntegratedPostingResult carries both sides of an integrated posting.
// Bank and Summary are nil for cash-only events.
type IntegratedPostingResult struct {
	Cash    *domain.CashMovement
	Bank    *domain.BankMovement
	Summary *BalanceSummary
}

// PostIntegrated records a business event. Cash-only events delegate to the
// cash recorder; bank-affecting events post the bank movement first, then
// the cash movement embedding the frozen bank balances and the link, all in
// one transaction so a crash can never leave one side without the other.
func (uc *IntegrationUseCase) PostIntegrated(ctx context.Context, input IntegratedEventInput, actor domain.Actor) (*IntegratedPostingResult, error) {
	if !input.AffectsBankAccount {
		cash, err := uc.cashUC.Register(ctx, RegisterCashInput{
			Type:     input.Type,
			Concept:  input.Concept,
			Category: input.Category,
			Amount:   input.Amount,
			Method:   input.Method,
		}, actor)
		if err != nil {
			return nil, err
		}
		return &IntegratedPostingResult{Cash: cash}, nil
	}

	var result *IntegratedPostingResult

	op := func() error {
		var err error
		result, err = uc.postIntegratedOnce(ctx, input, actor)
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
		uc.metrics.IntegratedPostings.WithLabelValues(string(input.Type)).Inc()
	}

	return result, nil
}

func (uc *IntegrationUseCase) postIntegratedOnce(ctx context.Context, input IntegratedEventInput, actor domain.Actor) (*IntegratedPostingResult, error) {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	// Locking the account row serializes concurrent postings: the
	// sufficiency check below always runs against the committed balance,
	// so two simultaneous debits can never both pass on stale reads.
	account, err := uc.accountRepo.GetByIDForUpdate(ctx, tx, input.BankAccountID)
	if err != nil {
		return nil, err
	}

	if !account.Active {
		return nil, fmt.Errorf("%w: %s", domain.ErrAccountInactive, account.Code)
	}

	if !account.OwnedBy(actor) && actor.Role != domain.RoleAdmin {
		return nil, domain.ErrNotAuthorized
	}

	movementType := domain.MovementIncome
	if input.Type == domain.CashExpense {
		movementType = domain.MovementExpense
		if err := account.ValidateDebit(input.Amount); err != nil {
			return nil, err
		}
	}

	// Build the cash record first so the bank movement can carry the back
	// link, but save it last with the bank balances already frozen in.
	cash, err := uc.cashUC.buildInTx(ctx, tx, RegisterCashInput{
		Type:     input.Type,
		Concept:  input.Concept,
		Category: input.Category,
		Amount:   input.Amount,
		Method:   input.Method,
	}, actor)
	if err != nil {
		return nil, err
	}

	bank, err := uc.recorder.PostInTx(ctx, tx, account, PostMovementInput{
		Type:           movementType,
		Category:       domain.MapCashCategory(input.Category, input.Type),
		Amount:         input.Amount,
		Description:    input.Concept,
		CashMovementID: &cash.ID,
	})
	if err != nil {
		return nil, err
	}

	cash.Status = domain.CashStatusValidated
	cash.AffectsBankAccount = true
	cash.BankAccountID = &account.ID
	cash.BankBalanceBefore = &bank.BalanceBefore
	cash.BankBalanceAfter = &bank.BalanceAfter
	cash.BankMovementID = &bank.ID

	if err := uc.cashRepo.Create(ctx, tx, cash); err != nil {
		return nil, err
	}

	uc.audit(ctx, tx, actor, domain.AuditActionMovementPost, cash, bank, nil)

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return &IntegratedPostingResult{
		Cash: cash,
		Bank: bank,
		Summary: &BalanceSummary{
			AccountID:     account.ID,
			BalanceBefore: bank.BalanceBefore,
			BalanceAfter:  bank.BalanceAfter,
		},
	}, nil
}

// IntegratedReversalResult carries the outcome of an integrated reversal.
type IntegratedReversalResult struct {
	CashMovementID     string
	OriginalBankID     *string
	CompensatingMoveID *string
}

// ReverseIntegrated cancels a cash movement and, when a bank side is
// linked, unwinds the bank ledger through a compensating movement. Both
// cancellations commit together or not at all.
func (uc *IntegrationUseCase) ReverseIntegrated(ctx context.Context, cashMovementID, reason string, actor domain.Actor) (*IntegratedReversalResult, error) {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	cash, err := uc.cashRepo.GetByIDForUpdate(ctx, tx, cashMovementID)
	if err != nil {
		return nil, err
	}

	if cash.OwnerID != actor.UserID && actor.Role != domain.RoleAdmin {
		return nil, domain.ErrNotAuthorized
	}

	if err := cash.CanCancel(); err != nil {
		return nil, err
	}

	result := &IntegratedReversalResult{CashMovementID: cash.ID}

	note := appendAuditNote(cash.AuditNote, fmt.Sprintf("anulado por %s: %s", actor.UserID, reason))
	if err := uc.cashRepo.UpdateStatus(ctx, tx, cash.ID, domain.CashStatusCancelled, note, time.Now().UTC()); err != nil {
		return nil, err
	}

	if cash.BankMovementID != nil {
		result.OriginalBankID = cash.BankMovementID

		bank, err := uc.movementRepo.GetByIDForUpdate(ctx, tx, *cash.BankMovementID)
		if err != nil {
			return nil, err
		}

		account, err := uc.accountRepo.GetByIDForUpdate(ctx, tx, bank.AccountID)
		if err != nil {
			return nil, err
		}

		compensating, err := uc.recorder.ReverseInTx(ctx, tx, account, bank, reason, actor)
		if err != nil {
			return nil, err
		}

		result.CompensatingMoveID = &compensating.ID
	}

	// The audit row records both sides before commit; if the commit itself
	// fails a later reconciliation pass can still see what was attempted.
	uc.audit(ctx, tx, actor, domain.AuditActionMovementReverse, cash, nil, result)

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.MovementsReversed.Inc()
	}

	return result, nil
}

func (uc *IntegrationUseCase) audit(ctx context.Context, tx Transaction, actor domain.Actor, action domain.AuditAction, cash *domain.CashMovement, bank *domain.BankMovement, reversal *IntegratedReversalResult) {
	if uc.auditRepo == nil {
		return
	}

	after := domain.JSON{"cash": domain.MarshalState(cash)}
	if bank != nil {
		after["bank"] = domain.MarshalState(bank)
	}
	if reversal != nil {
		after["reversal"] = domain.MarshalState(reversal)
	}

	// Audit failures must not fail the business operation.
	_ = uc.auditRepo.CreateTx(ctx, tx, &domain.AuditLog{
		ID:           uc.idGen.Generate(),
		UserID:       actor.UserID,
		Action:       string(action),
		ResourceType: domain.AggregateTypeCashMovement,
		ResourceID:   cash.ID,
		AfterState:   after,
		Status:       string(domain.AuditStatusSuccess),
		CreatedAt:    time.Now().UTC(),
	})
}
