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

// AccountService defines the behavior needed by AccountHandler.
type AccountService interface {
	OpenAccount(ctx context.Context, input usecase.OpenAccountInput, actor domain.Actor) (*domain.BankAccount, error)
	GetAccount(ctx context.Context, id string, actor domain.Actor) (*domain.BankAccount, error)
	SetActive(ctx context.Context, id string, active bool, actor domain.Actor) error
	ListAccounts(ctx context.Context, filter usecase.AccountFilter, actor domain.Actor) ([]*domain.BankAccount, error)
}

// AccountHandler handles bank account HTTP requests.
type AccountHandler struct {
	accountUC AccountService
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accountUC AccountService) *AccountHandler {
	return &AccountHandler{accountUC: accountUC}
}

// Open opens a new bank account.
func (h *AccountHandler) Open(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(r.Context(), w)
	if !ok {
		return
	}

	var req dto.OpenAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	account, err := h.accountUC.OpenAccount(r.Context(), req.ToUseCaseInput(), actor)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to open account", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.AccountFromDomain(account))
}

// Get retrieves an account by ID.
func (h *AccountHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(r.Context(), w)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	account, err := h.accountUC.GetAccount(r.Context(), id, actor)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get account", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.AccountFromDomain(account))
}

// SetActive toggles an account's active flag.
func (h *AccountHandler) SetActive(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(r.Context(), w)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")

	var req dto.SetActiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := h.accountUC.SetActive(r.Context(), id, req.Active, actor); err != nil {
		writeError(w, mapDomainError(err), "failed to update account", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"active": req.Active})
}

// List lists the actor's accounts.
func (h *AccountHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(r.Context(), w)
	if !ok {
		return
	}

	filter := usecase.AccountFilter{
		Type:   domain.AccountType(r.URL.Query().Get("type")),
		Limit:  parseIntQuery(r, "limit", 20),
		Offset: parseIntQuery(r, "offset", 0),
	}
	if val := r.URL.Query().Get("active"); val != "" {
		active := val == "true"
		filter.Active = &active
	}

	accounts, err := h.accountUC.ListAccounts(r.Context(), filter, actor)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list accounts", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ListAccountsResponse{
		Accounts: dto.AccountsFromDomain(accounts),
		Total:    int64(len(accounts)),
	})
}
