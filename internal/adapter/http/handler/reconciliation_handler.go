package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cajafin/ledger/internal/adapter/http/dto"
	"github.com/cajafin/ledger/internal/domain"
	"github.com/cajafin/ledger/internal/usecase"
)

// ReconciliationService defines the behavior needed by ReconciliationHandler.
type ReconciliationService interface {
	ReconcileAccount(ctx context.Context, accountID string) (*usecase.ReconciliationResult, error)
	ReconcileOwnerAccounts(ctx context.Context, ownerID string) ([]*usecase.ReconciliationResult, error)
	FindUnlinkedMovements(ctx context.Context, limit int) ([]*domain.BankMovement, error)
}

// ReconciliationHandler handles balance verification HTTP requests.
type ReconciliationHandler struct {
	reconUC ReconciliationService
}

// NewReconciliationHandler creates a new ReconciliationHandler.
func NewReconciliationHandler(reconUC ReconciliationService) *ReconciliationHandler {
	return &ReconciliationHandler{reconUC: reconUC}
}

// ReconcileAccount checks one account's invariant.
func (h *ReconciliationHandler) ReconcileAccount(w http.ResponseWriter, r *http.Request) {
	result, err := h.reconUC.ReconcileAccount(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to reconcile account", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ReconciliationFromResult(result))
}

// ReconcileOwn checks every account of the authenticated actor.
func (h *ReconciliationHandler) ReconcileOwn(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(r.Context(), w)
	if !ok {
		return
	}

	results, err := h.reconUC.ReconcileOwnerAccounts(r.Context(), actor.UserID)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to reconcile accounts", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ReconciliationsFromResults(results))
}

// UnlinkedMovements lists integrated bank movements whose cash side does
// not point back, the detectable half-link state.
func (h *ReconciliationHandler) UnlinkedMovements(w http.ResponseWriter, r *http.Request) {
	limit := parseIntQuery(r, "limit", 100)

	movements, err := h.reconUC.FindUnlinkedMovements(r.Context(), limit)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to find unlinked movements", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ListMovementsResponse{
		Movements: dto.MovementsFromDomain(movements),
		Total:     int64(len(movements)),
	})
}
