package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cajafin/ledger/internal/domain"
	"github.com/cajafin/ledger/internal/infrastructure/metrics"
)

// LoanUseCase is the amortization engine: it computes fixed-installment
// schedules, applies payments, accrues mora, and keeps the loan's running
// statistics in step with its payments.
type LoanUseCase struct {
	txManager   TransactionManager
	loanRepo    LoanRepository
	paymentRepo LoanPaymentRepository
	outboxRepo  OutboxRepository
	idGen       IDGenerator
	codeGen     CodeGenerator
	metrics     *metrics.Metrics
	cache       Cache
}

const (
	// scheduleCacheTTL bounds how long a cached amortization table is
	// served. Loan terms are immutable after approval, so the TTL is
	// generous.
	scheduleCacheTTL = time.Hour

	// statsCacheTTL keeps portfolio statistics fresh enough for
	// dashboards; writes also invalidate eagerly.
	statsCacheTTL = time.Minute
)

// NewLoanUseCase creates a new LoanUseCase.
func NewLoanUseCase(
	txManager TransactionManager,
	loanRepo LoanRepository,
	paymentRepo LoanPaymentRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
	codeGen CodeGenerator,
	m *metrics.Metrics,
) *LoanUseCase {
	return &LoanUseCase{
		txManager:   txManager,
		loanRepo:    loanRepo,
		paymentRepo: paymentRepo,
		outboxRepo:  outboxRepo,
		idGen:       idGen,
		codeGen:     codeGen,
		metrics:     m,
	}
}

// WithCache enables amortization table caching.
func (uc *LoanUseCase) WithCache(cache Cache) *LoanUseCase {
	uc.cache = cache
	return uc
}

// RequestLoanInput represents a loan request.
type RequestLoanInput struct {
	Principal         decimal.Decimal
	Currency          string
	AnnualRatePercent decimal.Decimal
	TermMonths        int
	PaymentDay        int
}

// RequestLoan creates a loan. Loans are auto-approved at request time:
// approved principal equals requested principal and the fixed installment
// is computed immediately.
func (uc *LoanUseCase) RequestLoan(ctx context.Context, input RequestLoanInput, actor domain.Actor) (*domain.Loan, error) {
	if err := domain.ValidateCurrency(input.Currency); err != nil {
		return nil, err
	}

	if err := domain.ValidatePaymentDay(input.PaymentDay); err != nil {
		return nil, err
	}

	installment, err := domain.MonthlyInstallment(input.Principal, input.AnnualRatePercent, input.TermMonths)
	if err != nil {
		return nil, err
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	now := time.Now().UTC()

	loan := &domain.Loan{
		ID:                  uc.idGen.Generate(),
		Code:                uc.codeGen.Next(ctx, tx, domain.CodePrefixLoan, "", actor.UserID, domain.CodeWidthDefault),
		OwnerID:             actor.UserID,
		PrincipalRequested:  input.Principal,
		PrincipalApproved:   input.Principal,
		Currency:            input.Currency,
		AnnualRatePercent:   input.AnnualRatePercent,
		TermMonths:          input.TermMonths,
		MonthlyInstallment:  installment,
		Outstanding:         input.Principal,
		PaymentDay:          input.PaymentDay,
		Status:              domain.LoanStatusApproved,
		InstallmentsPending: input.TermMonths,
		InterestPaid:        decimal.Zero,
		FeesPaid:            decimal.Zero,
		RequestedAt:         now,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	if err := uc.loanRepo.Create(ctx, tx, loan); err != nil {
		return nil, err
	}

	if uc.outboxRepo != nil {
		event := &domain.OutboxEvent{
			ID:            uc.idGen.Generate(),
			AggregateID:   loan.ID,
			AggregateType: domain.AggregateTypeLoan,
			EventType:     domain.EventTypeLoanCreated,
			Payload: map[string]any{
				"loan_id":     loan.ID,
				"code":        loan.Code,
				"principal":   loan.PrincipalApproved.String(),
				"installment": loan.MonthlyInstallment.String(),
				"term_months": loan.TermMonths,
			},
			CreatedAt: now,
		}
		if err := uc.outboxRepo.Create(ctx, tx, event); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.LoansCreated.Inc()
	}
	uc.invalidateStats(ctx, loan.OwnerID)

	return loan, nil
}

// AmortizationTable computes the installment breakdown for a loan without
// touching persisted state. Results are cached per loan: the inputs are
// frozen at approval, so a cached table never diverges from a recomputed one.
func (uc *LoanUseCase) AmortizationTable(ctx context.Context, loanID string, actor domain.Actor) ([]domain.InstallmentRow, error) {
	loan, err := uc.getOwned(ctx, loanID, actor)
	if err != nil {
		return nil, err
	}

	if uc.cache != nil {
		if cached, err := uc.cache.Get(ctx, LoanScheduleKey(loan.ID)); err == nil && cached != "" {
			var rows []domain.InstallmentRow
			if err := json.Unmarshal([]byte(cached), &rows); err == nil {
				return rows, nil
			}
		}
	}

	rows, err := domain.AmortizationTable(loan.PrincipalApproved, loan.AnnualRatePercent, loan.TermMonths, loan.RequestedAt, loan.PaymentDay)
	if err != nil {
		return nil, err
	}

	if uc.cache != nil {
		if data, err := json.Marshal(rows); err == nil {
			// Best effort: a cache write failure never fails the read.
			_ = uc.cache.Set(ctx, LoanScheduleKey(loan.ID), string(data), scheduleCacheTTL)
		}
	}

	return rows, nil
}

// GenerateSchedule bulk-creates one pending LoanPayment per table row.
// Regeneration is forbidden: the schedule is the source of truth for
// payment application once it exists.
func (uc *LoanUseCase) GenerateSchedule(ctx context.Context, loanID string, actor domain.Actor) ([]*domain.LoanPayment, error) {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	loan, err := uc.loanRepo.GetByIDForUpdate(ctx, tx, loanID)
	if err != nil {
		return nil, err
	}

	if loan.OwnerID != actor.UserID && actor.Role != domain.RoleAdmin {
		return nil, domain.ErrNotAuthorized
	}

	if loan.Status != domain.LoanStatusApproved {
		return nil, fmt.Errorf("%w: loan %s is %s", domain.ErrInvalidStateTransition, loan.Code, loan.Status)
	}

	existing, err := uc.paymentRepo.CountByLoan(ctx, tx, loan.ID)
	if err != nil {
		return nil, err
	}
	if existing > 0 {
		return nil, fmt.Errorf("%w: loan %s has %d payments", domain.ErrScheduleExists, loan.Code, existing)
	}

	table, err := domain.AmortizationTable(loan.PrincipalApproved, loan.AnnualRatePercent, loan.TermMonths, loan.RequestedAt, loan.PaymentDay)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	payments := make([]*domain.LoanPayment, 0, len(table))
	remaining := loan.PrincipalApproved
	for _, row := range table {
		payments = append(payments, &domain.LoanPayment{
			ID:            uc.idGen.Generate(),
			Code:          domain.FormatCode(domain.CodePrefixLoanPayment, "", row.Number, domain.CodeWidthPayment),
			LoanID:        loan.ID,
			Number:        row.Number,
			DueDate:       row.DueDate,
			Capital:       row.Capital,
			Interest:      row.Interest,
			Fee:           decimal.Zero,
			Penalty:       decimal.Zero,
			Total:         row.Installment,
			AmountPaid:    decimal.Zero,
			Status:        domain.PaymentStatusPending,
			BalanceBefore: remaining,
			BalanceAfter:  row.Remaining,
			CreatedAt:     now,
			UpdatedAt:     now,
		})
		remaining = row.Remaining
	}

	if err := uc.paymentRepo.CreateBatch(ctx, tx, payments); err != nil {
		return nil, err
	}

	if uc.outboxRepo != nil {
		event := &domain.OutboxEvent{
			ID:            uc.idGen.Generate(),
			AggregateID:   loan.ID,
			AggregateType: domain.AggregateTypeLoan,
			EventType:     domain.EventTypeScheduleGenerated,
			Payload: map[string]any{
				"loan_id":      loan.ID,
				"installments": len(payments),
			},
			CreatedAt: now,
		}
		if err := uc.outboxRepo.Create(ctx, tx, event); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return payments, nil
}

// ApplyPaymentInput represents a payment against a scheduled installment.
type ApplyPaymentInput struct {
	PaymentID    string
	AmountPaid   decimal.Decimal
	Method       domain.PaymentMethodKind
	OperationRef string
}

// ApplyPayment processes a pending installment. The amount is clamped to
// the installment total, days in arrears are computed against the due date,
// and the owning loan's statistics are updated in the same transaction.
func (uc *LoanUseCase) ApplyPayment(ctx context.Context, input ApplyPaymentInput, actor domain.Actor) (*domain.LoanPayment, error) {
	if err := domain.ValidateAmount(input.AmountPaid); err != nil {
		return nil, err
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	payment, err := uc.paymentRepo.GetByIDForUpdate(ctx, tx, input.PaymentID)
	if err != nil {
		return nil, err
	}

	loan, err := uc.loanRepo.GetByIDForUpdate(ctx, tx, payment.LoanID)
	if err != nil {
		return nil, err
	}

	if loan.OwnerID != actor.UserID && actor.Role != domain.RoleAdmin {
		return nil, domain.ErrNotAuthorized
	}

	if err := payment.CanApply(); err != nil {
		return nil, fmt.Errorf("%w: payment %d is %s", domain.ErrInvalidStateTransition, payment.Number, payment.Status)
	}

	now := time.Now().UTC()
	amount := payment.ClampAmount(input.AmountPaid)

	payment.AmountPaid = amount
	payment.PaidAt = &now
	payment.DaysLate = domain.DaysInArrears(payment.DueDate, now)
	payment.Status = domain.PaymentStatusProcessed
	payment.Method = &input.Method
	if input.OperationRef != "" {
		payment.OperationRef = &input.OperationRef
	}
	payment.UpdatedAt = now

	if err := uc.paymentRepo.Update(ctx, tx, payment); err != nil {
		return nil, err
	}

	loan.ApplyPaymentStats(payment, amount)
	loan.UpdatedAt = now

	if err := uc.loanRepo.UpdateStats(ctx, tx, loan); err != nil {
		return nil, err
	}

	if uc.outboxRepo != nil {
		event := &domain.OutboxEvent{
			ID:            uc.idGen.Generate(),
			AggregateID:   payment.ID,
			AggregateType: domain.AggregateTypePayment,
			EventType:     domain.EventTypePaymentApplied,
			Payload: map[string]any{
				"payment_id":  payment.ID,
				"loan_id":     loan.ID,
				"number":      payment.Number,
				"amount_paid": amount.String(),
				"days_late":   payment.DaysLate,
			},
			CreatedAt: now,
		}
		if err := uc.outboxRepo.Create(ctx, tx, event); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.PaymentsApplied.Inc()
	}
	uc.invalidateStats(ctx, loan.OwnerID)

	return payment, nil
}

// AccruePenalty folds mora into an overdue pending installment.
func (uc *LoanUseCase) AccruePenalty(ctx context.Context, paymentID string, dailyRatePercent decimal.Decimal, actor domain.Actor) (*domain.LoanPayment, error) {
	if dailyRatePercent.LessThanOrEqual(decimal.Zero) {
		return nil, domain.ErrInvalidAmount
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	payment, err := uc.paymentRepo.GetByIDForUpdate(ctx, tx, paymentID)
	if err != nil {
		return nil, err
	}

	loan, err := uc.loanRepo.GetByID(ctx, payment.LoanID)
	if err != nil {
		return nil, err
	}

	if loan.OwnerID != actor.UserID && actor.Role != domain.RoleAdmin {
		return nil, domain.ErrNotAuthorized
	}

	if payment.Status == domain.PaymentStatusPending {
		// An unpaid overdue installment accrues against today.
		payment.DaysLate = domain.DaysInArrears(payment.DueDate, time.Now().UTC())
	}

	if err := payment.AccruePenalty(dailyRatePercent); err != nil {
		return nil, err
	}
	payment.UpdatedAt = time.Now().UTC()

	if err := uc.paymentRepo.Update(ctx, tx, payment); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return payment, nil
}

// RejectPayment marks a pending installment rejected.
func (uc *LoanUseCase) RejectPayment(ctx context.Context, paymentID, reason string, actor domain.Actor) error {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	payment, err := uc.paymentRepo.GetByIDForUpdate(ctx, tx, paymentID)
	if err != nil {
		return err
	}

	loan, err := uc.loanRepo.GetByID(ctx, payment.LoanID)
	if err != nil {
		return err
	}

	if loan.OwnerID != actor.UserID && actor.Role != domain.RoleAdmin {
		return domain.ErrNotAuthorized
	}

	if payment.Status != domain.PaymentStatusPending {
		return fmt.Errorf("%w: payment %d is %s", domain.ErrInvalidStateTransition, payment.Number, payment.Status)
	}

	payment.Status = domain.PaymentStatusRejected
	payment.UpdatedAt = time.Now().UTC()

	if err := uc.paymentRepo.Update(ctx, tx, payment); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// CancelLoan cancels a loan that has no processed payments.
func (uc *LoanUseCase) CancelLoan(ctx context.Context, loanID, reason string, actor domain.Actor) error {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	loan, err := uc.loanRepo.GetByIDForUpdate(ctx, tx, loanID)
	if err != nil {
		return err
	}

	if loan.OwnerID != actor.UserID && actor.Role != domain.RoleAdmin {
		return domain.ErrNotAuthorized
	}

	if err := loan.CanCancel(); err != nil {
		return fmt.Errorf("%w: loan %s cannot be cancelled", err, loan.Code)
	}

	if err := uc.loanRepo.UpdateStatus(ctx, tx, loan.ID, domain.LoanStatusCancelled, time.Now().UTC()); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	if uc.cache != nil {
		_ = uc.cache.Delete(ctx, LoanScheduleKey(loan.ID))
	}
	uc.invalidateStats(ctx, loan.OwnerID)

	return nil
}

// Statistics summarizes the actor's loan portfolio, serving a cached
// snapshot when one is fresh.
func (uc *LoanUseCase) Statistics(ctx context.Context, actor domain.Actor) (*domain.LoanStatistics, error) {
	if uc.cache != nil {
		if cached, err := uc.cache.Get(ctx, LoanStatsKey(actor.UserID)); err == nil && cached != "" {
			var stats domain.LoanStatistics
			if err := json.Unmarshal([]byte(cached), &stats); err == nil {
				return &stats, nil
			}
		}
	}

	stats, err := uc.loanRepo.Statistics(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}

	if uc.cache != nil {
		if data, err := json.Marshal(stats); err == nil {
			_ = uc.cache.Set(ctx, LoanStatsKey(actor.UserID), string(data), statsCacheTTL)
		}
	}

	return stats, nil
}

func (uc *LoanUseCase) invalidateStats(ctx context.Context, ownerID string) {
	if uc.cache != nil {
		_ = uc.cache.Delete(ctx, LoanStatsKey(ownerID))
	}
}

// GetLoan retrieves a loan, enforcing ownership.
func (uc *LoanUseCase) GetLoan(ctx context.Context, id string, actor domain.Actor) (*domain.Loan, error) {
	return uc.getOwned(ctx, id, actor)
}

// ListLoans lists the actor's loans.
func (uc *LoanUseCase) ListLoans(ctx context.Context, filter LoanFilter, actor domain.Actor) ([]*domain.Loan, error) {
	filter.OwnerID = actor.UserID
	filter.Limit, filter.Offset = domain.ValidatePagination(filter.Limit, filter.Offset)

	return uc.loanRepo.List(ctx, filter)
}

// ListPayments lists the schedule of a loan.
func (uc *LoanUseCase) ListPayments(ctx context.Context, loanID string, actor domain.Actor) ([]*domain.LoanPayment, error) {
	if _, err := uc.getOwned(ctx, loanID, actor); err != nil {
		return nil, err
	}

	return uc.paymentRepo.ListByLoan(ctx, loanID)
}

func (uc *LoanUseCase) getOwned(ctx context.Context, id string, actor domain.Actor) (*domain.Loan, error) {
	loan, err := uc.loanRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if loan.OwnerID != actor.UserID && actor.Role != domain.RoleAdmin {
		return nil, domain.ErrNotAuthorized
	}

	return loan, nil
}
