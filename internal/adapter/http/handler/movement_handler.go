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

// MovementService defines the behavior needed by MovementHandler.
type MovementService interface {
	PostMovement(ctx context.Context, accountID string, input usecase.PostMovementInput, actor domain.Actor) (*domain.BankMovement, error)
	ReverseMovement(ctx context.Context, movementID, reason string, actor domain.Actor) (*domain.BankMovement, error)
	GetMovement(ctx context.Context, id string) (*domain.BankMovement, error)
	ListMovements(ctx context.Context, filter usecase.MovementFilter, actor domain.Actor) ([]*domain.BankMovement, error)
}

// MovementHandler handles bank movement HTTP requests.
type MovementHandler struct {
	movementUC MovementService
}

// NewMovementHandler creates a new MovementHandler.
func NewMovementHandler(movementUC MovementService) *MovementHandler {
	return &MovementHandler{movementUC: movementUC}
}

// Post posts a movement against an account.
func (h *MovementHandler) Post(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(r.Context(), w)
	if !ok {
		return
	}

	accountID := chi.URLParam(r, "id")

	var req dto.PostMovementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	movement, err := h.movementUC.PostMovement(r.Context(), accountID, req.ToUseCaseInput(), actor)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to post movement", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.MovementFromDomain(movement))
}

// Reverse cancels a movement and posts the compensating entry.
func (h *MovementHandler) Reverse(w http.ResponseWriter, r *http.Request) {
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

	reversal, err := h.movementUC.ReverseMovement(r.Context(), id, req.Reason, actor)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to reverse movement", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.MovementFromDomain(reversal))
}

// Get retrieves a movement by ID.
func (h *MovementHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing movement ID", "")
		return
	}

	movement, err := h.movementUC.GetMovement(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get movement", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.MovementFromDomain(movement))
}

// List lists movements with filters.
func (h *MovementHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(r.Context(), w)
	if !ok {
		return
	}

	filter := usecase.MovementFilter{
		AccountID: r.URL.Query().Get("account_id"),
		Type:      domain.MovementType(r.URL.Query().Get("type")),
		Status:    domain.MovementStatus(r.URL.Query().Get("status")),
		From:      parseTimeQuery(r, "from"),
		To:        parseTimeQuery(r, "to"),
		Search:    r.URL.Query().Get("search"),
		Limit:     parseIntQuery(r, "limit", 20),
		Offset:    parseIntQuery(r, "offset", 0),
	}

	movements, err := h.movementUC.ListMovements(r.Context(), filter, actor)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list movements", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ListMovementsResponse{
		Movements: dto.MovementsFromDomain(movements),
		Total:     int64(len(movements)),
	})
}

// ListByAccount lists movements for one account.
func (h *MovementHandler) ListByAccount(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(r.Context(), w)
	if !ok {
		return
	}

	filter := usecase.MovementFilter{
		AccountID: chi.URLParam(r, "id"),
		Type:      domain.MovementType(r.URL.Query().Get("type")),
		Status:    domain.MovementStatus(r.URL.Query().Get("status")),
		From:      parseTimeQuery(r, "from"),
		To:        parseTimeQuery(r, "to"),
		Limit:     parseIntQuery(r, "limit", 20),
		Offset:    parseIntQuery(r, "offset", 0),
	}

	movements, err := h.movementUC.ListMovements(r.Context(), filter, actor)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list movements", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ListMovementsResponse{
		Movements: dto.MovementsFromDomain(movements),
		Total:     int64(len(movements)),
	})
}
