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

func operatorActor() domain.Actor {
	return domain.Actor{UserID: "user-1", DisplayName: "Operador", Role: domain.RoleOperator}
}

func newAccountUseCase(accRepo *mocks.MockBankAccountRepository, movRepo *mocks.MockBankMovementRepository) *usecase.AccountUseCase {
	recorder := usecase.NewMovementRecorder(accRepo, movRepo, nil, mocks.NewSequentialIDGenerator("id"), mocks.NewMockCodeGenerator())
	return usecase.NewAccountUseCase(
		mocks.NewMockTransactionManager(),
		accRepo,
		recorder,
		mocks.NewSequentialIDGenerator("acc"),
		mocks.NewMockCodeGenerator(),
	)
}

func TestAccountUseCase_OpenAccount(t *testing.T) {
	tests := []struct {
		name        string
		input       usecase.OpenAccountInput
		expectError bool
		errorType   error
	}{
		{
			name: "opens savings account",
			input: usecase.OpenAccountInput{
				BankName:       "BCP",
				AccountNumber:  "191-12345678-0-01",
				Type:           domain.AccountTypeSavings,
				Currency:       "PEN",
				InitialBalance: decimal.NewFromInt(1000),
			},
		},
		{
			name: "rejects unknown currency",
			input: usecase.OpenAccountInput{
				BankName:       "BCP",
				AccountNumber:  "191-12345678-0-01",
				Type:           domain.AccountTypeSavings,
				Currency:       "EUR",
				InitialBalance: decimal.NewFromInt(1000),
			},
			expectError: true,
		},
		{
			name: "rejects negative initial balance",
			input: usecase.OpenAccountInput{
				BankName:       "BCP",
				AccountNumber:  "191-12345678-0-01",
				Type:           domain.AccountTypeSavings,
				Currency:       "PEN",
				InitialBalance: decimal.NewFromInt(-50),
			},
			expectError: true,
			errorType:   domain.ErrInvalidAmount,
		},
		{
			name: "rejects unknown account type",
			input: usecase.OpenAccountInput{
				BankName:       "BCP",
				AccountNumber:  "191-12345678-0-01",
				Type:           domain.AccountType("bitcoin"),
				Currency:       "PEN",
				InitialBalance: decimal.NewFromInt(1000),
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			accRepo := mocks.NewMockBankAccountRepository()
			movRepo := mocks.NewMockBankMovementRepository()
			uc := newAccountUseCase(accRepo, movRepo)

			account, err := uc.OpenAccount(context.Background(), tt.input, operatorActor())

			if tt.expectError {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if tt.errorType != nil && !errors.Is(err, tt.errorType) {
					t.Errorf("expected error %v, got %v", tt.errorType, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !account.CurrentBalance.Equal(tt.input.InitialBalance) {
				t.Errorf("expected balance %s, got %s", tt.input.InitialBalance, account.CurrentBalance)
			}
			if account.Code == "" {
				t.Error("expected a generated code")
			}
			if !account.Active {
				t.Error("expected new account to be active")
			}
		})
	}
}

func TestAccountUseCase_OpenAccount_CodesScopedPerOwner(t *testing.T) {
	accRepo := mocks.NewMockBankAccountRepository()
	movRepo := mocks.NewMockBankMovementRepository()
	uc := newAccountUseCase(accRepo, movRepo)

	input := usecase.OpenAccountInput{
		BankName:       "BCP",
		AccountNumber:  "191-12345678-0-01",
		Type:           domain.AccountTypeSavings,
		Currency:       "PEN",
		InitialBalance: decimal.NewFromInt(1000),
	}

	first, err := uc.OpenAccount(context.Background(), input, operatorActor())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Each owner draws from their own sequence: the second owner's first
	// account gets the same number the first owner's did, and both creations
	// succeed.
	other := domain.Actor{UserID: "user-2", DisplayName: "Otra Operadora", Role: domain.RoleOperator}
	second, err := uc.OpenAccount(context.Background(), input, other)
	if err != nil {
		t.Fatalf("unexpected error for second owner: %v", err)
	}

	if first.Code != second.Code {
		t.Errorf("expected both owners to start at the same code, got %s and %s", first.Code, second.Code)
	}
	if first.OwnerID == second.OwnerID {
		t.Error("expected accounts to belong to different owners")
	}
}

func TestAccountUseCase_OpenAccount_SeedMovement(t *testing.T) {
	accRepo := mocks.NewMockBankAccountRepository()
	movRepo := mocks.NewMockBankMovementRepository()
	uc := newAccountUseCase(accRepo, movRepo)

	account, err := uc.OpenAccount(context.Background(), usecase.OpenAccountInput{
		BankName:       "Interbank",
		AccountNumber:  "200-300400500",
		Type:           domain.AccountTypeChecking,
		Currency:       "PEN",
		InitialBalance: decimal.NewFromInt(500),
		SeedMovement:   true,
	}, operatorActor())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The opening balance must be explained by the ledger, not the
	// InitialBalance field, so the balance invariant holds from day one.
	if !account.InitialBalance.IsZero() {
		t.Errorf("expected zero initial balance, got %s", account.InitialBalance)
	}
	if !account.CurrentBalance.Equal(decimal.NewFromInt(500)) {
		t.Errorf("expected current balance 500, got %s", account.CurrentBalance)
	}

	movements, err := movRepo.List(context.Background(), usecase.MovementFilter{AccountID: account.ID})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(movements) != 1 {
		t.Fatalf("expected 1 seed movement, got %d", len(movements))
	}
	if movements[0].Type != domain.MovementIncome {
		t.Errorf("expected seed movement to be %s, got %s", domain.MovementIncome, movements[0].Type)
	}
	if !movements[0].BalanceBefore.IsZero() {
		t.Errorf("expected seed movement balanceBefore 0, got %s", movements[0].BalanceBefore)
	}
	if !movements[0].BalanceAfter.Equal(decimal.NewFromInt(500)) {
		t.Errorf("expected seed movement balanceAfter 500, got %s", movements[0].BalanceAfter)
	}
}

func TestAccountUseCase_GetAccount_Ownership(t *testing.T) {
	accRepo := mocks.NewMockBankAccountRepository()
	accRepo.Seed(&domain.BankAccount{ID: "acc-1", OwnerID: "user-1", Active: true})

	uc := newAccountUseCase(accRepo, mocks.NewMockBankMovementRepository())

	if _, err := uc.GetAccount(context.Background(), "acc-1", operatorActor()); err != nil {
		t.Fatalf("owner should read own account: %v", err)
	}

	stranger := domain.Actor{UserID: "user-2", Role: domain.RoleOperator}
	if _, err := uc.GetAccount(context.Background(), "acc-1", stranger); !errors.Is(err, domain.ErrNotAuthorized) {
		t.Errorf("expected ErrNotAuthorized, got %v", err)
	}

	admin := domain.Actor{UserID: "admin-1", Role: domain.RoleAdmin}
	if _, err := uc.GetAccount(context.Background(), "acc-1", admin); err != nil {
		t.Errorf("admin should read any account: %v", err)
	}
}

func TestAccountUseCase_SetActive(t *testing.T) {
	accRepo := mocks.NewMockBankAccountRepository()
	accRepo.Seed(&domain.BankAccount{ID: "acc-1", OwnerID: "user-1", Active: true})

	uc := newAccountUseCase(accRepo, mocks.NewMockBankMovementRepository())

	if err := uc.SetActive(context.Background(), "acc-1", false, operatorActor()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	account, err := accRepo.GetByID(context.Background(), "acc-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if account.Active {
		t.Error("expected account to be inactive")
	}
}
