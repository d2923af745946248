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

func newCashUseCase(cashRepo *mocks.MockCashMovementRepository) *usecase.CashMovementUseCase {
	return usecase.NewCashMovementUseCase(
		mocks.NewMockTransactionManager(),
		cashRepo,
		mocks.NewSequentialIDGenerator("cash"),
		mocks.NewMockCodeGenerator(),
	)
}

func TestCashMovementUseCase_Register(t *testing.T) {
	tests := []struct {
		name        string
		input       usecase.RegisterCashInput
		expectError bool
		errorType   error
	}{
		{
			name: "registers a cash sale",
			input: usecase.RegisterCashInput{
				Type:     domain.CashIncome,
				Concept:  "Venta del día",
				Category: domain.CashCatSale,
				Amount:   decimal.NewFromInt(350),
				Method:   domain.PaymentMethod{Kind: domain.MethodCash},
			},
		},
		{
			name: "registers with matching denominations",
			input: usecase.RegisterCashInput{
				Type:     domain.CashIncome,
				Concept:  "Venta con arqueo",
				Category: domain.CashCatSale,
				Amount:   decimal.NewFromInt(150),
				Method: domain.PaymentMethod{
					Kind: domain.MethodCash,
					Denominations: []domain.Denomination{
						{Value: decimal.NewFromInt(100), Count: 1},
						{Value: decimal.NewFromInt(50), Count: 1},
					},
				},
			},
		},
		{
			name: "rejects denomination mismatch",
			input: usecase.RegisterCashInput{
				Type:     domain.CashIncome,
				Concept:  "Venta con arqueo malo",
				Category: domain.CashCatSale,
				Amount:   decimal.NewFromInt(200),
				Method: domain.PaymentMethod{
					Kind: domain.MethodCash,
					Denominations: []domain.Denomination{
						{Value: decimal.NewFromInt(100), Count: 1},
					},
				},
			},
			expectError: true,
			errorType:   domain.ErrInvalidAmount,
		},
		{
			name: "rejects zero amount",
			input: usecase.RegisterCashInput{
				Type:     domain.CashExpense,
				Concept:  "Nada",
				Category: domain.CashCatOther,
				Amount:   decimal.Zero,
				Method:   domain.PaymentMethod{Kind: domain.MethodCash},
			},
			expectError: true,
			errorType:   domain.ErrInvalidAmount,
		},
		{
			name: "rejects empty concept",
			input: usecase.RegisterCashInput{
				Type:     domain.CashIncome,
				Concept:  "",
				Category: domain.CashCatSale,
				Amount:   decimal.NewFromInt(10),
				Method:   domain.PaymentMethod{Kind: domain.MethodCash},
			},
			expectError: true,
		},
		{
			name: "rejects unknown type",
			input: usecase.RegisterCashInput{
				Type:     domain.CashMovementType("prestamo"),
				Concept:  "Tipo raro",
				Category: domain.CashCatOther,
				Amount:   decimal.NewFromInt(10),
				Method:   domain.PaymentMethod{Kind: domain.MethodCash},
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cashRepo := mocks.NewMockCashMovementRepository()
			uc := newCashUseCase(cashRepo)

			movement, err := uc.Register(context.Background(), tt.input, operatorActor())

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
			if movement.Status != domain.CashStatusPending {
				t.Errorf("expected pending status, got %s", movement.Status)
			}
			if !strings.HasPrefix(movement.Code, domain.CodePrefixCash) {
				t.Errorf("expected CAJA code, got %s", movement.Code)
			}
			if movement.OwnerID != "user-1" {
				t.Errorf("expected owner user-1, got %s", movement.OwnerID)
			}
		})
	}
}

func TestCashMovementUseCase_Lifecycle(t *testing.T) {
	cashRepo := mocks.NewMockCashMovementRepository()
	uc := newCashUseCase(cashRepo)
	ctx := context.Background()
	actor := operatorActor()

	movement, err := uc.Register(ctx, usecase.RegisterCashInput{
		Type:     domain.CashIncome,
		Concept:  "Venta",
		Category: domain.CashCatSale,
		Amount:   decimal.NewFromInt(100),
		Method:   domain.PaymentMethod{Kind: domain.MethodCash},
	}, actor)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// pending -> applied skips validation and must be rejected.
	if err := uc.Apply(ctx, movement.ID, actor); !errors.Is(err, domain.ErrInvalidStateTransition) {
		t.Errorf("expected ErrInvalidStateTransition, got %v", err)
	}

	if err := uc.Validate(ctx, movement.ID, actor); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := uc.Apply(ctx, movement.ID, actor); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Applied movements are terminal.
	if err := uc.Cancel(ctx, movement.ID, "tarde", actor); err == nil {
		t.Error("expected cancel of applied movement to fail")
	}

	stored, _ := cashRepo.GetByID(ctx, movement.ID)
	if stored.Status != domain.CashStatusApplied {
		t.Errorf("expected applied, got %s", stored.Status)
	}
}

func TestCashMovementUseCase_Cancel(t *testing.T) {
	cashRepo := mocks.NewMockCashMovementRepository()
	uc := newCashUseCase(cashRepo)
	ctx := context.Background()
	actor := operatorActor()

	movement, err := uc.Register(ctx, usecase.RegisterCashInput{
		Type:     domain.CashExpense,
		Concept:  "Compra de útiles",
		Category: domain.CashCatOther,
		Amount:   decimal.NewFromInt(45),
		Method:   domain.PaymentMethod{Kind: domain.MethodCash},
	}, actor)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := uc.Cancel(ctx, movement.ID, "registro duplicado", actor); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stored, _ := cashRepo.GetByID(ctx, movement.ID)
	if stored.Status != domain.CashStatusCancelled {
		t.Errorf("expected cancelled, got %s", stored.Status)
	}
	if !strings.Contains(stored.AuditNote, "registro duplicado") || !strings.Contains(stored.AuditNote, actor.UserID) {
		t.Errorf("expected audit note with reason and user, got %q", stored.AuditNote)
	}

	// Double cancellation is rejected.
	if err := uc.Cancel(ctx, movement.ID, "otra vez", actor); err == nil {
		t.Error("expected double cancel to fail")
	}
}

func TestCashMovementUseCase_CancelLinkedRequiresIntegratedReversal(t *testing.T) {
	cashRepo := mocks.NewMockCashMovementRepository()
	uc := newCashUseCase(cashRepo)
	ctx := context.Background()

	bankID := "bank-1"
	linked := &domain.CashMovement{
		ID:                 "cash-1",
		OwnerID:            "user-1",
		Type:               domain.CashIncome,
		Status:             domain.CashStatusValidated,
		AffectsBankAccount: true,
		BankMovementID:     &bankID,
	}
	if err := cashRepo.Create(ctx, &mocks.MockTransaction{}, linked); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err := uc.Cancel(ctx, "cash-1", "me equivoqué", operatorActor())
	if !errors.Is(err, domain.ErrInvalidStateTransition) {
		t.Fatalf("expected ErrInvalidStateTransition, got %v", err)
	}
	if !strings.Contains(err.Error(), "integrated reversal") {
		t.Errorf("expected hint towards integrated reversal, got %q", err.Error())
	}
}

func TestCashMovementUseCase_CancelDeniedForStranger(t *testing.T) {
	cashRepo := mocks.NewMockCashMovementRepository()
	uc := newCashUseCase(cashRepo)
	ctx := context.Background()

	movement, err := uc.Register(ctx, usecase.RegisterCashInput{
		Type:     domain.CashIncome,
		Concept:  "Venta",
		Category: domain.CashCatSale,
		Amount:   decimal.NewFromInt(10),
		Method:   domain.PaymentMethod{Kind: domain.MethodCash},
	}, operatorActor())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stranger := domain.Actor{UserID: "user-2", Role: domain.RoleOperator}
	if err := uc.Cancel(ctx, movement.ID, "ajeno", stranger); !errors.Is(err, domain.ErrNotAuthorized) {
		t.Errorf("expected ErrNotAuthorized, got %v", err)
	}
}
