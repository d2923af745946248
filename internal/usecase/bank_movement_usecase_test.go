package usecase_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/cajafin/ledger/internal/domain"
	"github.com/cajafin/ledger/internal/usecase"
	"github.com/cajafin/ledger/internal/usecase/mocks"
)

type movementFixture struct {
	accRepo *mocks.MockBankAccountRepository
	movRepo *mocks.MockBankMovementRepository
	outbox  *mocks.MockOutboxRepository
	uc      *usecase.BankMovementUseCase
}

func newMovementFixture() *movementFixture {
	accRepo := mocks.NewMockBankAccountRepository()
	movRepo := mocks.NewMockBankMovementRepository()
	outbox := mocks.NewMockOutboxRepository()
	recorder := usecase.NewMovementRecorder(accRepo, movRepo, outbox, mocks.NewSequentialIDGenerator("mov"), mocks.NewMockCodeGenerator())
	uc := usecase.NewBankMovementUseCase(mocks.NewMockTransactionManager(), accRepo, movRepo, recorder, nil)
	return &movementFixture{accRepo: accRepo, movRepo: movRepo, outbox: outbox, uc: uc}
}

func (f *movementFixture) seedAccount(balance int64) *domain.BankAccount {
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

func TestBankMovementUseCase_PostMovement(t *testing.T) {
	tests := []struct {
		name        string
		balance     int64
		input       usecase.PostMovementInput
		wantAfter   int64
		expectError bool
		errorType   error
	}{
		{
			name:    "income credits the balance",
			balance: 100,
			input: usecase.PostMovementInput{
				Type:        domain.MovementIncome,
				Category:    domain.BankCatDeposit,
				Amount:      decimal.NewFromInt(50),
				Description: "Depósito",
			},
			wantAfter: 150,
		},
		{
			name:    "expense debits the balance",
			balance: 100,
			input: usecase.PostMovementInput{
				Type:        domain.MovementExpense,
				Category:    domain.BankCatUtilities,
				Amount:      decimal.NewFromInt(30),
				Description: "Pago de luz",
			},
			wantAfter: 70,
		},
		{
			name:    "rejects overdraft",
			balance: 100,
			input: usecase.PostMovementInput{
				Type:        domain.MovementExpense,
				Category:    domain.BankCatUtilities,
				Amount:      decimal.NewFromInt(150),
				Description: "Pago grande",
			},
			expectError: true,
			errorType:   domain.ErrInsufficientFunds,
		},
		{
			name:    "rejects zero amount",
			balance: 100,
			input: usecase.PostMovementInput{
				Type:        domain.MovementIncome,
				Category:    domain.BankCatDeposit,
				Amount:      decimal.Zero,
				Description: "Nada",
			},
			expectError: true,
			errorType:   domain.ErrInvalidAmount,
		},
		{
			name:    "rejects unknown type",
			balance: 100,
			input: usecase.PostMovementInput{
				Type:        domain.MovementType("misterio"),
				Amount:      decimal.NewFromInt(10),
				Description: "???",
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newMovementFixture()
			f.seedAccount(tt.balance)

			movement, err := f.uc.PostMovement(context.Background(), "acc-1", tt.input, operatorActor())

			if tt.expectError {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if tt.errorType != nil && !errors.Is(err, tt.errorType) {
					t.Errorf("expected error %v, got %v", tt.errorType, err)
				}
				// A failed posting must leave the balance untouched.
				account, _ := f.accRepo.GetByID(context.Background(), "acc-1")
				if !account.CurrentBalance.Equal(decimal.NewFromInt(tt.balance)) {
					t.Errorf("balance changed on failed posting: %s", account.CurrentBalance)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if !movement.BalanceBefore.Equal(decimal.NewFromInt(tt.balance)) {
				t.Errorf("expected balanceBefore %d, got %s", tt.balance, movement.BalanceBefore)
			}
			if !movement.BalanceAfter.Equal(decimal.NewFromInt(tt.wantAfter)) {
				t.Errorf("expected balanceAfter %d, got %s", tt.wantAfter, movement.BalanceAfter)
			}
			if movement.Status != domain.MovementStatusProcessed {
				t.Errorf("expected processed status, got %s", movement.Status)
			}

			account, _ := f.accRepo.GetByID(context.Background(), "acc-1")
			if !account.CurrentBalance.Equal(decimal.NewFromInt(tt.wantAfter)) {
				t.Errorf("expected account balance %d, got %s", tt.wantAfter, account.CurrentBalance)
			}
			if account.LastMovementAt == nil {
				t.Error("expected LastMovementAt to be stamped")
			}
		})
	}
}

func TestBankMovementUseCase_InsufficientFundsMessage(t *testing.T) {
	f := newMovementFixture()
	f.seedAccount(100)

	_, err := f.uc.PostMovement(context.Background(), "acc-1", usecase.PostMovementInput{
		Type:        domain.MovementExpense,
		Category:    domain.BankCatUtilities,
		Amount:      decimal.NewFromInt(250),
		Description: "Pago",
	}, operatorActor())

	if !errors.Is(err, domain.ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}
	// Both amounts must be visible for support to act on the message.
	if !strings.Contains(err.Error(), "250") || !strings.Contains(err.Error(), "100") {
		t.Errorf("expected message to carry requested and available amounts, got %q", err.Error())
	}
}

func TestBankMovementUseCase_ReverseMovement(t *testing.T) {
	f := newMovementFixture()
	f.seedAccount(100)
	ctx := context.Background()
	actor := operatorActor()

	original, err := f.uc.PostMovement(ctx, "acc-1", usecase.PostMovementInput{
		Type:        domain.MovementExpense,
		Category:    domain.BankCatUtilities,
		Amount:      decimal.NewFromInt(30),
		Description: "Pago de agua",
	}, actor)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	account, _ := f.accRepo.GetByID(ctx, "acc-1")
	if !account.CurrentBalance.Equal(decimal.NewFromInt(70)) {
		t.Fatalf("expected balance 70 after expense, got %s", account.CurrentBalance)
	}

	compensating, err := f.uc.ReverseMovement(ctx, original.ID, "monto equivocado", actor)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The reversal restores the balance through a new entry.
	account, _ = f.accRepo.GetByID(ctx, "acc-1")
	if !account.CurrentBalance.Equal(decimal.NewFromInt(100)) {
		t.Errorf("expected balance restored to 100, got %s", account.CurrentBalance)
	}
	if compensating.Type != domain.MovementIncome {
		t.Errorf("expected compensating income, got %s", compensating.Type)
	}
	if !strings.Contains(compensating.Description, original.Code) {
		t.Errorf("expected compensating description to reference %s, got %q", original.Code, compensating.Description)
	}

	// The original is cancelled in place, never deleted or edited.
	stored, _ := f.movRepo.GetByID(ctx, original.ID)
	if stored.Status != domain.MovementStatusCancelled {
		t.Errorf("expected original cancelled, got %s", stored.Status)
	}
	if !stored.Amount.Equal(decimal.NewFromInt(30)) {
		t.Errorf("original amount must not change, got %s", stored.Amount)
	}
	if stored.CancelledBy == nil || *stored.CancelledBy != actor.UserID {
		t.Error("expected cancelledBy stamp")
	}

	// Reversing twice is rejected.
	if _, err := f.uc.ReverseMovement(ctx, original.ID, "otra vez", actor); !errors.Is(err, domain.ErrMovementCancelled) {
		t.Errorf("expected ErrMovementCancelled on double reversal, got %v", err)
	}
}

func TestBankMovementUseCase_ReverseRestoresExactBalance(t *testing.T) {
	f := newMovementFixture()
	f.seedAccount(1000)
	ctx := context.Background()
	actor := operatorActor()

	// A mixed run of postings with one reversal must land exactly where
	// arithmetic says: 1000 +200 -150 (+150 back) = 1050.
	if _, err := f.uc.PostMovement(ctx, "acc-1", usecase.PostMovementInput{
		Type: domain.MovementIncome, Category: domain.BankCatCustomerCollection,
		Amount: decimal.NewFromInt(200), Description: "Cobro",
	}, actor); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expense, err := f.uc.PostMovement(ctx, "acc-1", usecase.PostMovementInput{
		Type: domain.MovementExpense, Category: domain.BankCatSupplierPayment,
		Amount: decimal.NewFromInt(150), Description: "Compra",
	}, actor)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := f.uc.ReverseMovement(ctx, expense.ID, "compra anulada", actor); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	account, _ := f.accRepo.GetByID(ctx, "acc-1")
	if !account.CurrentBalance.Equal(decimal.NewFromInt(1050)) {
		t.Errorf("expected 1050, got %s", account.CurrentBalance)
	}

	// initial + signed sum of non-cancelled movements must equal the balance.
	sum, _ := f.movRepo.SumSignedAmounts(ctx, "acc-1")
	if !account.InitialBalance.Add(sum).Equal(account.CurrentBalance) {
		t.Errorf("balance invariant broken: initial %s + sum %s != current %s",
			account.InitialBalance, sum, account.CurrentBalance)
	}
}

func TestBankMovementUseCase_PostDeniedForStranger(t *testing.T) {
	f := newMovementFixture()
	f.seedAccount(100)

	stranger := domain.Actor{UserID: "user-2", Role: domain.RoleOperator}
	_, err := f.uc.PostMovement(context.Background(), "acc-1", usecase.PostMovementInput{
		Type:        domain.MovementIncome,
		Category:    domain.BankCatDeposit,
		Amount:      decimal.NewFromInt(10),
		Description: "Depósito ajeno",
	}, stranger)

	if !errors.Is(err, domain.ErrNotAuthorized) {
		t.Errorf("expected ErrNotAuthorized, got %v", err)
	}
}

func TestBankMovementUseCase_InactiveAccount(t *testing.T) {
	f := newMovementFixture()
	account := f.seedAccount(100)
	account.Active = false

	_, err := f.uc.PostMovement(context.Background(), "acc-1", usecase.PostMovementInput{
		Type:        domain.MovementIncome,
		Category:    domain.BankCatDeposit,
		Amount:      decimal.NewFromInt(10),
		Description: "Depósito",
	}, operatorActor())

	if !errors.Is(err, domain.ErrAccountInactive) {
		t.Errorf("expected ErrAccountInactive, got %v", err)
	}
}
