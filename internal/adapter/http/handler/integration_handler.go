package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cajafin/ledger/internal/adapter/http/dto"
	"github.com/cajafin/ledger/internal/domain"
	"github.com/cajafin/ledger/internal/usecase"
)

// IntegrationService defines the behavior needed by IntegrationHandler.
type IntegrationService interface {
	PostIntegrated(ctx context.Context, input usecase.IntegratedEventInput, actor domain.Actor) (*usecase.IntegratedPostingResult, error)
	ReverseIntegrated(ctx context.Context, cashMovementID, reason string, actor domain.Actor) (*usecase.IntegratedReversalResult, error)
}

// IntegrationHandler handles integrated posting HTTP requests.
type IntegrationHandler struct {
	integrationUC IntegrationService
}

// NewIntegrationHandler creates a new IntegrationHandler.
func NewIntegrationHandler(integrationUC IntegrationService) *IntegrationHandler {
	return &IntegrationHandler{integrationUC: integrationUC}
}

// Post records a business event against the cash register and, when
// requested, the linked bank account in one transaction.
func (h *IntegrationHandler) Post(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(r.Context(), w)
	if !ok {
		return
	}

	var req dto.IntegratedEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	result, err := h.integrationUC.PostIntegrated(r.Context(), req.ToUseCaseInput(), actor)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to post integrated event", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.IntegratedPostingFromResult(result))
}

// Reverse cancels both sides of an integrated posting.
func (h *IntegrationHandler) Reverse(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(r.Context(), w)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")

	var req dto.ReverseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	result, err := h.integrationUC.ReverseIntegrated(r.Context(), id, req.Reason, actor)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to reverse integrated posting", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.IntegratedReversalFromResult(result))
}
