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

// CashService defines the behavior needed by CashHandler.
type CashService interface {
	Register(ctx context.Context, input usecase.RegisterCashInput, actor domain.Actor) (*domain.CashMovement, error)
	Validate(ctx context.Context, id string, actor domain.Actor) error
	Apply(ctx context.Context, id string, actor domain.Actor) error
	Cancel(ctx context.Context, id, reason string, actor domain.Actor) error
	GetCashMovement(ctx context.Context, id string) (*domain.CashMovement, error)
	ListCashMovements(ctx context.Context, filter usecase.CashFilter, actor domain.Actor) ([]*domain.CashMovement, error)
}

// CashHandler handles cash register HTTP requests.
type CashHandler struct {
	cashUC CashService
}

// NewCashHandler creates a new CashHandler.
func NewCashHandler(cashUC CashService) *CashHandler {
	return &CashHandler{cashUC: cashUC}
}

// Register records a cash-only movement in pending state.
func (h *CashHandler) Register(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(r.Context(), w)
	if !ok {
		return
	}

	var req dto.RegisterCashRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	movement, err := h.cashUC.Register(r.Context(), req.ToUseCaseInput(), actor)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to register cash movement", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.CashMovementFromDomain(movement))
}

// Validate advances a pending movement to validated.
func (h *CashHandler) Validate(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.cashUC.Validate)
}

// Apply advances a validated movement to applied.
func (h *CashHandler) Apply(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.cashUC.Apply)
}

func (h *CashHandler) transition(w http.ResponseWriter, r *http.Request, fn func(context.Context, string, domain.Actor) error) {
	actor, ok := requireActor(r.Context(), w)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	if err := fn(r.Context(), id, actor); err != nil {
		writeError(w, mapDomainError(err), "failed to update cash movement", err.Error())
		return
	}

	movement, err := h.cashUC.GetCashMovement(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get cash movement", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.CashMovementFromDomain(movement))
}

// Cancel cancels a cash movement, recording who and why.
func (h *CashHandler) Cancel(w http.ResponseWriter, r *http.Request) {
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

	if err := h.cashUC.Cancel(r.Context(), id, req.Reason, actor); err != nil {
		writeError(w, mapDomainError(err), "failed to cancel cash movement", err.Error())
		return
	}

	movement, err := h.cashUC.GetCashMovement(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get cash movement", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.CashMovementFromDomain(movement))
}

// Get retrieves a cash movement by ID.
func (h *CashHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing cash movement ID", "")
		return
	}

	movement, err := h.cashUC.GetCashMovement(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get cash movement", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.CashMovementFromDomain(movement))
}

// List lists the actor's cash movements.
func (h *CashHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(r.Context(), w)
	if !ok {
		return
	}

	filter := usecase.CashFilter{
		Type:   domain.CashMovementType(r.URL.Query().Get("type")),
		Status: domain.CashMovementStatus(r.URL.Query().Get("status")),
		From:   parseTimeQuery(r, "from"),
		To:     parseTimeQuery(r, "to"),
		Search: r.URL.Query().Get("search"),
		Limit:  parseIntQuery(r, "limit", 20),
		Offset: parseIntQuery(r, "offset", 0),
	}

	movements, err := h.cashUC.ListCashMovements(r.Context(), filter, actor)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list cash movements", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ListCashMovementsResponse{
		Movements: dto.CashMovementsFromDomain(movements),
		Total:     int64(len(movements)),
	})
}
