package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/cajafin/ledger/internal/adapter/http/dto"
	"github.com/cajafin/ledger/internal/domain"
	"github.com/cajafin/ledger/internal/usecase"
)

type integrationServiceStub struct {
	postFn    func(ctx context.Context, input usecase.IntegratedEventInput, actor domain.Actor) (*usecase.IntegratedPostingResult, error)
	reverseFn func(ctx context.Context, cashMovementID, reason string, actor domain.Actor) (*usecase.IntegratedReversalResult, error)
}

func (s *integrationServiceStub) PostIntegrated(ctx context.Context, input usecase.IntegratedEventInput, actor domain.Actor) (*usecase.IntegratedPostingResult, error) {
	return s.postFn(ctx, input, actor)
}

func (s *integrationServiceStub) ReverseIntegrated(ctx context.Context, cashMovementID, reason string, actor domain.Actor) (*usecase.IntegratedReversalResult, error) {
	return s.reverseFn(ctx, cashMovementID, reason, actor)
}

func TestIntegrationHandler_Post_CashAndBank(t *testing.T) {
	result := &usecase.IntegratedPostingResult{
		Cash: &domain.CashMovement{
			ID:                 "cash-1",
			Type:               domain.CashIncome,
			Amount:             decimal.NewFromInt(300),
			Status:             domain.CashStatusValidated,
			AffectsBankAccount: true,
		},
		Bank: &domain.BankMovement{
			ID:        "mov-1",
			AccountID: "acc-1",
			Type:      domain.MovementIncome,
			Amount:    decimal.NewFromInt(300),
			Status:    domain.MovementStatusProcessed,
		},
	}

	var captured usecase.IntegratedEventInput
	h := NewIntegrationHandler(&integrationServiceStub{
		postFn: func(ctx context.Context, input usecase.IntegratedEventInput, actor domain.Actor) (*usecase.IntegratedPostingResult, error) {
			captured = input
			return result, nil
		},
	})

	body, _ := json.Marshal(dto.IntegratedEventRequest{
		Type:               "ingreso",
		Concept:            "Depósito de ventas",
		Amount:             decimal.NewFromInt(300),
		Method:             dto.PaymentMethodRequest{Kind: "transferencia", Reference: "OP-12"},
		AffectsBankAccount: true,
		BankAccountID:      "acc-1",
	})

	req := withActor(httptest.NewRequest(http.MethodPost, "/events", bytes.NewReader(body)), testActor())
	rec := httptest.NewRecorder()

	h.Post(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if !captured.AffectsBankAccount || captured.BankAccountID != "acc-1" {
		t.Fatalf("expected input to match request, got %+v", captured)
	}

	var resp dto.IntegratedPostingResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Cash == nil || resp.Bank == nil {
		t.Fatalf("expected both sides in response, got %+v", resp)
	}
}

func TestIntegrationHandler_Post_CashOnly(t *testing.T) {
	result := &usecase.IntegratedPostingResult{
		Cash: &domain.CashMovement{
			ID:     "cash-1",
			Type:   domain.CashExpense,
			Amount: decimal.NewFromInt(45),
			Status: domain.CashStatusValidated,
		},
	}

	h := NewIntegrationHandler(&integrationServiceStub{
		postFn: func(ctx context.Context, input usecase.IntegratedEventInput, actor domain.Actor) (*usecase.IntegratedPostingResult, error) {
			return result, nil
		},
	})

	body, _ := json.Marshal(dto.IntegratedEventRequest{
		Type:    "egreso",
		Concept: "Compra de útiles",
		Amount:  decimal.NewFromInt(45),
		Method:  dto.PaymentMethodRequest{Kind: "efectivo"},
	})

	req := withActor(httptest.NewRequest(http.MethodPost, "/events", bytes.NewReader(body)), testActor())
	rec := httptest.NewRecorder()

	h.Post(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp dto.IntegratedPostingResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Bank != nil {
		t.Fatalf("expected no bank side for a cash-only event, got %+v", resp.Bank)
	}
}

func TestIntegrationHandler_Post_InactiveAccount(t *testing.T) {
	h := NewIntegrationHandler(&integrationServiceStub{
		postFn: func(ctx context.Context, input usecase.IntegratedEventInput, actor domain.Actor) (*usecase.IntegratedPostingResult, error) {
			return nil, domain.ErrAccountInactive
		},
	})

	body, _ := json.Marshal(dto.IntegratedEventRequest{
		Type:               "ingreso",
		Amount:             decimal.NewFromInt(300),
		AffectsBankAccount: true,
		BankAccountID:      "acc-1",
	})

	req := withActor(httptest.NewRequest(http.MethodPost, "/events", bytes.NewReader(body)), testActor())
	rec := httptest.NewRecorder()

	h.Post(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
}

func TestIntegrationHandler_Reverse_Success(t *testing.T) {
	originalBank := "mov-1"
	compensating := "mov-2"
	result := &usecase.IntegratedReversalResult{
		CashMovementID:     "cash-1",
		OriginalBankID:     &originalBank,
		CompensatingMoveID: &compensating,
	}

	var capturedID, capturedReason string
	h := NewIntegrationHandler(&integrationServiceStub{
		reverseFn: func(ctx context.Context, cashMovementID, reason string, actor domain.Actor) (*usecase.IntegratedReversalResult, error) {
			capturedID = cashMovementID
			capturedReason = reason
			return result, nil
		},
	})

	body, _ := json.Marshal(dto.ReverseRequest{Reason: "evento duplicado"})
	req := withActor(httptest.NewRequest(http.MethodPost, "/events/cash-1/reverse", bytes.NewReader(body)), testActor())
	req = reqWithURLParam(req, "id", "cash-1")
	rec := httptest.NewRecorder()

	h.Reverse(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if capturedID != "cash-1" || capturedReason != "evento duplicado" {
		t.Fatalf("expected id and reason to be forwarded, got %q %q", capturedID, capturedReason)
	}

	var resp dto.IntegratedReversalResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.CompensatingMoveID == nil || *resp.CompensatingMoveID != "mov-2" {
		t.Fatalf("expected compensating movement mov-2, got %+v", resp)
	}
}
