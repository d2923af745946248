package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cajafin/ledger/internal/domain"
)

// AccountUseCase handles bank account business logic.
type AccountUseCase struct {
	txManager   TransactionManager
	accountRepo BankAccountRepository
	recorder    *MovementRecorder
	idGen       IDGenerator
	codeGen     CodeGenerator
}

// NewAccountUseCase creates a new AccountUseCase.
func NewAccountUseCase(
	txManager TransactionManager,
	accountRepo BankAccountRepository,
	recorder *MovementRecorder,
	idGen IDGenerator,
	codeGen CodeGenerator,
) *AccountUseCase {
	return &AccountUseCase{
		txManager:   txManager,
		accountRepo: accountRepo,
		recorder:    recorder,
		idGen:       idGen,
		codeGen:     codeGen,
	}
}

// OpenAccountInput represents input for opening a bank account.
type OpenAccountInput struct {
	BankName        string
	AccountNumber   string
	Type            domain.AccountType
	Currency        string
	InitialBalance  decimal.Decimal
	MinBalanceAlert decimal.Decimal
	// SeedMovement posts one opening movement equal to InitialBalance so the
	// ledger explains the starting balance.
	SeedMovement bool
}

// OpenAccount opens a bank account for the actor, optionally posting a seed
// movement equal to the initial balance.
func (uc *AccountUseCase) OpenAccount(ctx context.Context, input OpenAccountInput, actor domain.Actor) (*domain.BankAccount, error) {
	if err := domain.ValidateCurrency(input.Currency); err != nil {
		return nil, err
	}

	if !input.Type.IsValid() {
		return nil, domain.ErrInvalidStateTransition
	}

	if input.InitialBalance.IsNegative() {
		return nil, domain.ErrInvalidAmount
	}

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	now := time.Now().UTC()

	account := &domain.BankAccount{
		ID:              uc.idGen.Generate(),
		Code:            uc.codeGen.Next(ctx, tx, domain.CodePrefixAccount, "", actor.UserID, domain.CodeWidthDefault),
		OwnerID:         actor.UserID,
		BankName:        input.BankName,
		AccountNumber:   input.AccountNumber,
		Type:            input.Type,
		Currency:        input.Currency,
		InitialBalance:  input.InitialBalance,
		CurrentBalance:  decimal.Zero,
		Version:         0,
		Active:          true,
		MinBalanceAlert: input.MinBalanceAlert,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if input.SeedMovement && input.InitialBalance.IsPositive() {
		// The opening balance lives in the ledger as a movement instead of
		// the InitialBalance field, so current = initial + sum(movements)
		// holds from day one without double counting.
		account.InitialBalance = decimal.Zero
		if err := uc.accountRepo.Create(ctx, tx, account); err != nil {
			return nil, err
		}

		_, err := uc.recorder.PostInTx(ctx, tx, account, PostMovementInput{
			Type:        domain.MovementIncome,
			Category:    domain.BankCatDeposit,
			Amount:      input.InitialBalance,
			Description: "Saldo inicial de apertura",
		})
		if err != nil {
			return nil, err
		}
	} else {
		account.CurrentBalance = input.InitialBalance
		if err := uc.accountRepo.Create(ctx, tx, account); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return account, nil
}

// GetAccount retrieves an account, enforcing ownership.
func (uc *AccountUseCase) GetAccount(ctx context.Context, id string, actor domain.Actor) (*domain.BankAccount, error) {
	account, err := uc.accountRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !account.OwnedBy(actor) && actor.Role != domain.RoleAdmin {
		return nil, domain.ErrNotAuthorized
	}

	return account, nil
}

// SetActive toggles the active flag of an account.
func (uc *AccountUseCase) SetActive(ctx context.Context, id string, active bool, actor domain.Actor) error {
	account, err := uc.accountRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if !account.OwnedBy(actor) && actor.Role != domain.RoleAdmin {
		return domain.ErrNotAuthorized
	}

	return uc.accountRepo.SetActive(ctx, id, active, time.Now().UTC())
}

// ListAccounts lists the actor's accounts.
func (uc *AccountUseCase) ListAccounts(ctx context.Context, filter AccountFilter, actor domain.Actor) ([]*domain.BankAccount, error) {
	filter.OwnerID = actor.UserID
	filter.Limit, filter.Offset = domain.ValidatePagination(filter.Limit, filter.Offset)

	return uc.accountRepo.List(ctx, filter)
}
