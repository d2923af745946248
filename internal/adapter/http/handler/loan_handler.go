package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/cajafin/ledger/internal/adapter/http/dto"
	"github.com/cajafin/ledger/internal/domain"
	"github.com/cajafin/ledger/internal/usecase"
)

// LoanService defines the behavior needed by LoanHandler.
type LoanService interface {
	RequestLoan(ctx context.Context, input usecase.RequestLoanInput, actor domain.Actor) (*domain.Loan, error)
	AmortizationTable(ctx context.Context, loanID string, actor domain.Actor) ([]domain.InstallmentRow, error)
	GenerateSchedule(ctx context.Context, loanID string, actor domain.Actor) ([]*domain.LoanPayment, error)
	ApplyPayment(ctx context.Context, input usecase.ApplyPaymentInput, actor domain.Actor) (*domain.LoanPayment, error)
	AccruePenalty(ctx context.Context, paymentID string, dailyRatePercent decimal.Decimal, actor domain.Actor) (*domain.LoanPayment, error)
	RejectPayment(ctx context.Context, paymentID, reason string, actor domain.Actor) error
	CancelLoan(ctx context.Context, loanID, reason string, actor domain.Actor) error
	GetLoan(ctx context.Context, id string, actor domain.Actor) (*domain.Loan, error)
	ListLoans(ctx context.Context, filter usecase.LoanFilter, actor domain.Actor) ([]*domain.Loan, error)
	ListPayments(ctx context.Context, loanID string, actor domain.Actor) ([]*domain.LoanPayment, error)
	Statistics(ctx context.Context, actor domain.Actor) (*domain.LoanStatistics, error)
}

// LoanHandler handles loan HTTP requests.
type LoanHandler struct {
	loanUC LoanService
	// penaltyRate is the configured daily mora rate in percent, used when
	// the request does not override it.
	penaltyRate decimal.Decimal
}

// NewLoanHandler creates a new LoanHandler.
func NewLoanHandler(loanUC LoanService, penaltyRate decimal.Decimal) *LoanHandler {
	return &LoanHandler{loanUC: loanUC, penaltyRate: penaltyRate}
}

// Request creates an auto-approved loan.
func (h *LoanHandler) Request(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(r.Context(), w)
	if !ok {
		return
	}

	var req dto.RequestLoanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	loan, err := h.loanUC.RequestLoan(r.Context(), req.ToUseCaseInput(), actor)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to request loan", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.LoanFromDomain(loan))
}

// Simulate returns the amortization table without persisting anything.
func (h *LoanHandler) Simulate(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(r.Context(), w)
	if !ok {
		return
	}

	rows, err := h.loanUC.AmortizationTable(r.Context(), chi.URLParam(r, "id"), actor)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to simulate schedule", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.InstallmentRowsFromDomain(rows))
}

// GenerateSchedule persists the amortization schedule of a loan.
func (h *LoanHandler) GenerateSchedule(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(r.Context(), w)
	if !ok {
		return
	}

	payments, err := h.loanUC.GenerateSchedule(r.Context(), chi.URLParam(r, "id"), actor)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to generate schedule", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.PaymentsFromDomain(payments))
}

// ApplyPayment pays one pending installment.
func (h *LoanHandler) ApplyPayment(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(r.Context(), w)
	if !ok {
		return
	}

	paymentID := chi.URLParam(r, "paymentID")

	var req dto.ApplyPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	payment, err := h.loanUC.ApplyPayment(r.Context(), req.ToUseCaseInput(paymentID), actor)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to apply payment", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.PaymentFromDomain(payment))
}

// AccruePenalty recomputes mora on an overdue installment.
func (h *LoanHandler) AccruePenalty(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(r.Context(), w)
	if !ok {
		return
	}

	paymentID := chi.URLParam(r, "paymentID")

	var req dto.AccruePenaltyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	rate := h.penaltyRate
	if req.DailyRatePercent != nil {
		rate = *req.DailyRatePercent
	}

	payment, err := h.loanUC.AccruePenalty(r.Context(), paymentID, rate, actor)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to accrue penalty", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.PaymentFromDomain(payment))
}

// RejectPayment marks an installment as rejected.
func (h *LoanHandler) RejectPayment(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(r.Context(), w)
	if !ok {
		return
	}

	paymentID := chi.URLParam(r, "paymentID")

	var req dto.ReverseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := h.loanUC.RejectPayment(r.Context(), paymentID, req.Reason, actor); err != nil {
		writeError(w, mapDomainError(err), "failed to reject payment", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": string(domain.PaymentStatusRejected)})
}

// Cancel cancels a loan that has no processed payments.
func (h *LoanHandler) Cancel(w http.ResponseWriter, r *http.Request) {
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

	if err := h.loanUC.CancelLoan(r.Context(), id, req.Reason, actor); err != nil {
		writeError(w, mapDomainError(err), "failed to cancel loan", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": string(domain.LoanStatusCancelled)})
}

// Get retrieves a loan by ID.
func (h *LoanHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(r.Context(), w)
	if !ok {
		return
	}

	loan, err := h.loanUC.GetLoan(r.Context(), chi.URLParam(r, "id"), actor)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get loan", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.LoanFromDomain(loan))
}

// List lists the actor's loans.
func (h *LoanHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(r.Context(), w)
	if !ok {
		return
	}

	filter := usecase.LoanFilter{
		Status: domain.LoanStatus(r.URL.Query().Get("status")),
		Search: r.URL.Query().Get("search"),
		Limit:  parseIntQuery(r, "limit", 20),
		Offset: parseIntQuery(r, "offset", 0),
	}

	loans, err := h.loanUC.ListLoans(r.Context(), filter, actor)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list loans", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ListLoansResponse{
		Loans: dto.LoansFromDomain(loans),
		Total: int64(len(loans)),
	})
}

// Statistics summarizes the actor's loan portfolio.
func (h *LoanHandler) Statistics(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(r.Context(), w)
	if !ok {
		return
	}

	stats, err := h.loanUC.Statistics(r.Context(), actor)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to compute loan statistics", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.LoanStatisticsFromDomain(stats))
}

// ListPayments lists the schedule of a loan.
func (h *LoanHandler) ListPayments(w http.ResponseWriter, r *http.Request) {
	actor, ok := requireActor(r.Context(), w)
	if !ok {
		return
	}

	payments, err := h.loanUC.ListPayments(r.Context(), chi.URLParam(r, "id"), actor)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list payments", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.PaymentsFromDomain(payments))
}
