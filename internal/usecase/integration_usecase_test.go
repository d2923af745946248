package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/cajafin/ledger/internal/domain"
	"github.com/cajafin/ledger/internal/usecase"
	"github.com/cajafin/ledger/internal/usecase/mocks"
)

type integrationFixture struct {
	accRepo   *mocks.MockBankAccountRepository
	movRepo   *mocks.MockBankMovementRepository
	cashRepo  *mocks.MockCashMovementRepository
	auditRepo *mocks.MockAuditRepository
	uc        *usecase.IntegrationUseCase
}

func newIntegrationFixture() *integrationFixture {
	accRepo := mocks.NewMockBankAccountRepository()
	movRepo := mocks.NewMockBankMovementRepository()
	cashRepo := mocks.NewMockCashMovementRepository()
	auditRepo := mocks.NewMockAuditRepository()
	txManager := mocks.NewMockTransactionManager()
	idGen := mocks.NewSequentialIDGenerator("int")
	codeGen := mocks.NewMockCodeGenerator()

	recorder := usecase.NewMovementRecorder(accRepo, movRepo, mocks.NewMockOutboxRepository(), idGen, codeGen)
	cashUC := usecase.NewCashMovementUseCase(txManager, cashRepo, idGen, codeGen)
	uc := usecase.NewIntegrationUseCase(txManager, accRepo, movRepo, cashRepo, cashUC, recorder, auditRepo, idGen, nil)

	return &integrationFixture{
		accRepo:   accRepo,
		movRepo:   movRepo,
		cashRepo:  cashRepo,
		auditRepo: auditRepo,
		uc:        uc,
	}
}

func (f *integrationFixture) seedAccount(balance int64) *domain.BankAccount {
	account := &domain.BankAccount{
		ID:             "acc-1",
		Code:           "CTA-001",
		OwnerID:        "user-1",
		Currency:       "PEN",
		InitialBalance: decimal.NewFromInt(balance),
		CurrentBalance: decimal.NewFromInt(balance),
		Active:         true,
	}
	f.accRepo.Seed(account)
	return account
}

func TestIntegrationUseCase_PostIntegrated_CashOnly(t *testing.T) {
	f := newIntegrationFixture()

	result, err := f.uc.PostIntegrated(context.Background(), usecase.IntegratedEventInput{
		Type:     domain.CashIncome,
		Concept:  "Venta en mostrador",
		Category: domain.CashCatSale,
		Amount:   decimal.NewFromInt(80),
		Method:   domain.PaymentMethod{Kind: domain.MethodCash},
	}, operatorActor())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Bank != nil || result.Summary != nil {
		t.Error("cash-only posting must not touch the bank ledger")
	}
	if result.Cash.Status != domain.CashStatusPending {
		t.Errorf("expected pending cash movement, got %s", result.Cash.Status)
	}
	if result.Cash.AffectsBankAccount {
		t.Error("cash-only movement must not be flagged as bank-affecting")
	}
}

func TestIntegrationUseCase_PostIntegrated_BankAffecting(t *testing.T) {
	tests := []struct {
		name      string
		typ       domain.CashMovementType
		category  domain.CashCategory
		amount    int64
		wantAfter int64
		wantType  domain.MovementType
		wantCat   domain.BankCategory
	}{
		{
			name:      "income credits the account",
			typ:       domain.CashIncome,
			category:  domain.CashCatSale,
			amount:    200,
			wantAfter: 700,
			wantType:  domain.MovementIncome,
			wantCat:   domain.BankCatCustomerCollection,
		},
		{
			name:      "expense debits the account",
			typ:       domain.CashExpense,
			category:  domain.CashCatUtilities,
			amount:    120,
			wantAfter: 380,
			wantType:  domain.MovementExpense,
			wantCat:   domain.BankCatUtilities,
		},
		{
			name:      "unmapped income category falls back",
			typ:       domain.CashIncome,
			category:  domain.CashCatOther,
			amount:    50,
			wantAfter: 550,
			wantType:  domain.MovementIncome,
			wantCat:   domain.BankCatExtraIncome,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newIntegrationFixture()
			f.seedAccount(500)
			ctx := context.Background()

			result, err := f.uc.PostIntegrated(ctx, usecase.IntegratedEventInput{
				Type:               tt.typ,
				Concept:            "Evento integrado",
				Category:           tt.category,
				Amount:             decimal.NewFromInt(tt.amount),
				Method:             domain.PaymentMethod{Kind: domain.MethodTransfer, Reference: "OP-778"},
				AffectsBankAccount: true,
				BankAccountID:      "acc-1",
			}, operatorActor())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if result.Bank == nil || result.Summary == nil {
				t.Fatal("expected a bank side on an integrated posting")
			}
			if result.Bank.Type != tt.wantType {
				t.Errorf("expected bank type %s, got %s", tt.wantType, result.Bank.Type)
			}
			if result.Bank.Category != tt.wantCat {
				t.Errorf("expected bank category %s, got %s", tt.wantCat, result.Bank.Category)
			}
			if !result.Summary.BalanceAfter.Equal(decimal.NewFromInt(tt.wantAfter)) {
				t.Errorf("expected balance after %d, got %s", tt.wantAfter, result.Summary.BalanceAfter)
			}

			// Both sides must point at each other.
			cash := result.Cash
			if cash.Status != domain.CashStatusValidated {
				t.Errorf("expected validated cash side, got %s", cash.Status)
			}
			if cash.BankMovementID == nil || *cash.BankMovementID != result.Bank.ID {
				t.Error("cash side must link the bank movement")
			}
			if result.Bank.CashMovementID == nil || *result.Bank.CashMovementID != cash.ID {
				t.Error("bank side must link the cash movement")
			}
			if cash.BankBalanceBefore == nil || !cash.BankBalanceBefore.Equal(result.Bank.BalanceBefore) {
				t.Error("cash side must embed the frozen bank balanceBefore")
			}
			if cash.BankBalanceAfter == nil || !cash.BankBalanceAfter.Equal(result.Bank.BalanceAfter) {
				t.Error("cash side must embed the frozen bank balanceAfter")
			}

			account, _ := f.accRepo.GetByID(ctx, "acc-1")
			if !account.CurrentBalance.Equal(decimal.NewFromInt(tt.wantAfter)) {
				t.Errorf("expected account balance %d, got %s", tt.wantAfter, account.CurrentBalance)
			}

			if len(f.auditRepo.Logs()) == 0 {
				t.Error("expected an audit row for the integrated posting")
			}
		})
	}
}

func TestIntegrationUseCase_PostIntegrated_InsufficientFunds(t *testing.T) {
	f := newIntegrationFixture()
	f.seedAccount(100)
	ctx := context.Background()

	_, err := f.uc.PostIntegrated(ctx, usecase.IntegratedEventInput{
		Type:               domain.CashExpense,
		Concept:            "Pago grande",
		Category:           domain.CashCatRawMaterial,
		Amount:             decimal.NewFromInt(500),
		Method:             domain.PaymentMethod{Kind: domain.MethodTransfer},
		AffectsBankAccount: true,
		BankAccountID:      "acc-1",
	}, operatorActor())

	if !errors.Is(err, domain.ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}

	// Neither side may exist after the failure.
	movements, _ := f.cashRepo.List(ctx, usecase.CashFilter{OwnerID: "user-1"})
	if len(movements) != 0 {
		t.Errorf("expected no cash movement, got %d", len(movements))
	}
	account, _ := f.accRepo.GetByID(ctx, "acc-1")
	if !account.CurrentBalance.Equal(decimal.NewFromInt(100)) {
		t.Errorf("expected balance unchanged at 100, got %s", account.CurrentBalance)
	}
}

func TestIntegrationUseCase_PostIntegrated_InactiveAccount(t *testing.T) {
	f := newIntegrationFixture()
	account := f.seedAccount(100)
	account.Active = false

	_, err := f.uc.PostIntegrated(context.Background(), usecase.IntegratedEventInput{
		Type:               domain.CashIncome,
		Concept:            "Depósito",
		Category:           domain.CashCatSale,
		Amount:             decimal.NewFromInt(10),
		Method:             domain.PaymentMethod{Kind: domain.MethodCash},
		AffectsBankAccount: true,
		BankAccountID:      "acc-1",
	}, operatorActor())

	if !errors.Is(err, domain.ErrAccountInactive) {
		t.Errorf("expected ErrAccountInactive, got %v", err)
	}
}

func TestIntegrationUseCase_ReverseIntegrated(t *testing.T) {
	f := newIntegrationFixture()
	f.seedAccount(100)
	ctx := context.Background()
	actor := operatorActor()

	posted, err := f.uc.PostIntegrated(ctx, usecase.IntegratedEventInput{
		Type:               domain.CashExpense,
		Concept:            "Pago de servicios",
		Category:           domain.CashCatUtilities,
		Amount:             decimal.NewFromInt(30),
		Method:             domain.PaymentMethod{Kind: domain.MethodTransfer},
		AffectsBankAccount: true,
		BankAccountID:      "acc-1",
	}, actor)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	account, _ := f.accRepo.GetByID(ctx, "acc-1")
	if !account.CurrentBalance.Equal(decimal.NewFromInt(70)) {
		t.Fatalf("expected 70 after expense, got %s", account.CurrentBalance)
	}

	result, err := f.uc.ReverseIntegrated(ctx, posted.Cash.ID, "pago duplicado", actor)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.OriginalBankID == nil || *result.OriginalBankID != posted.Bank.ID {
		t.Error("expected the original bank movement in the result")
	}
	if result.CompensatingMoveID == nil {
		t.Fatal("expected a compensating movement")
	}

	// The bank balance is restored through the compensating entry.
	account, _ = f.accRepo.GetByID(ctx, "acc-1")
	if !account.CurrentBalance.Equal(decimal.NewFromInt(100)) {
		t.Errorf("expected balance restored to 100, got %s", account.CurrentBalance)
	}

	cash, _ := f.cashRepo.GetByID(ctx, posted.Cash.ID)
	if cash.Status != domain.CashStatusCancelled {
		t.Errorf("expected cancelled cash side, got %s", cash.Status)
	}

	bank, _ := f.movRepo.GetByID(ctx, posted.Bank.ID)
	if bank.Status != domain.MovementStatusCancelled {
		t.Errorf("expected cancelled bank side, got %s", bank.Status)
	}

	compensating, _ := f.movRepo.GetByID(ctx, *result.CompensatingMoveID)
	if compensating.Type != domain.MovementIncome {
		t.Errorf("expected compensating income, got %s", compensating.Type)
	}

	// A second reversal of the same event is rejected.
	if _, err := f.uc.ReverseIntegrated(ctx, posted.Cash.ID, "otra vez", actor); !errors.Is(err, domain.ErrMovementCancelled) {
		t.Errorf("expected ErrMovementCancelled, got %v", err)
	}
}

func TestIntegrationUseCase_ReverseIntegrated_CashOnly(t *testing.T) {
	f := newIntegrationFixture()
	ctx := context.Background()
	actor := operatorActor()

	posted, err := f.uc.PostIntegrated(ctx, usecase.IntegratedEventInput{
		Type:     domain.CashIncome,
		Concept:  "Venta",
		Category: domain.CashCatSale,
		Amount:   decimal.NewFromInt(40),
		Method:   domain.PaymentMethod{Kind: domain.MethodCash},
	}, actor)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result, err := f.uc.ReverseIntegrated(ctx, posted.Cash.ID, "venta anulada", actor)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.OriginalBankID != nil || result.CompensatingMoveID != nil {
		t.Error("cash-only reversal must not touch the bank ledger")
	}

	cash, _ := f.cashRepo.GetByID(ctx, posted.Cash.ID)
	if cash.Status != domain.CashStatusCancelled {
		t.Errorf("expected cancelled, got %s", cash.Status)
	}
}
