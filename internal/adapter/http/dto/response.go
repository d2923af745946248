package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/cajafin/ledger/internal/domain"
	"github.com/cajafin/ledger/internal/usecase"
)

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// AccountResponse represents a bank account in API responses.
type AccountResponse struct {
	ID              string          `json:"id"`
	Code            string          `json:"code"`
	BankName        string          `json:"bank_name"`
	AccountNumber   string          `json:"account_number"`
	Type            string          `json:"type"`
	Currency        string          `json:"currency"`
	InitialBalance  decimal.Decimal `json:"initial_balance"`
	CurrentBalance  decimal.Decimal `json:"current_balance"`
	Version         int64           `json:"version"`
	Active          bool            `json:"active"`
	MinBalanceAlert decimal.Decimal `json:"min_balance_alert"`
	BelowAlert      bool            `json:"below_alert"`
	LastMovementAt  *time.Time      `json:"last_movement_at,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// AccountFromDomain converts a domain account to a response.
func AccountFromDomain(a *domain.BankAccount) *AccountResponse {
	return &AccountResponse{
		ID:              a.ID,
		Code:            a.Code,
		BankName:        a.BankName,
		AccountNumber:   a.AccountNumber,
		Type:            string(a.Type),
		Currency:        a.Currency,
		InitialBalance:  a.InitialBalance,
		CurrentBalance:  a.CurrentBalance,
		Version:         a.Version,
		Active:          a.Active,
		MinBalanceAlert: a.MinBalanceAlert,
		BelowAlert:      a.BelowAlertThreshold(),
		LastMovementAt:  a.LastMovementAt,
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}
}

// AccountsFromDomain converts domain accounts to responses.
func AccountsFromDomain(accounts []*domain.BankAccount) []*AccountResponse {
	result := make([]*AccountResponse, len(accounts))
	for i, a := range accounts {
		result[i] = AccountFromDomain(a)
	}
	return result
}

// ListAccountsResponse wraps an account listing.
type ListAccountsResponse struct {
	Accounts []*AccountResponse `json:"accounts"`
	Total    int64              `json:"total"`
}

// MovementResponse represents a bank movement in API responses.
type MovementResponse struct {
	ID               string          `json:"id"`
	Code             string          `json:"code"`
	AccountID        string          `json:"account_id"`
	CounterAccountID *string         `json:"counter_account_id,omitempty"`
	Type             string          `json:"type"`
	Category         string          `json:"category"`
	Amount           decimal.Decimal `json:"amount"`
	Currency         string          `json:"currency"`
	BalanceBefore    decimal.Decimal `json:"balance_before"`
	BalanceAfter     decimal.Decimal `json:"balance_after"`
	Status           string          `json:"status"`
	Description      string          `json:"description"`
	CashMovementID   *string         `json:"cash_movement_id,omitempty"`
	CancelledBy      *string         `json:"cancelled_by,omitempty"`
	CancelledAt      *time.Time      `json:"cancelled_at,omitempty"`
	CancelReason     *string         `json:"cancel_reason,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
}

// MovementFromDomain converts a domain movement to a response.
func MovementFromDomain(m *domain.BankMovement) *MovementResponse {
	return &MovementResponse{
		ID:               m.ID,
		Code:             m.Code,
		AccountID:        m.AccountID,
		CounterAccountID: m.CounterAccountID,
		Type:             string(m.Type),
		Category:         string(m.Category),
		Amount:           m.Amount,
		Currency:         m.Currency,
		BalanceBefore:    m.BalanceBefore,
		BalanceAfter:     m.BalanceAfter,
		Status:           string(m.Status),
		Description:      m.Description,
		CashMovementID:   m.CashMovementID,
		CancelledBy:      m.CancelledBy,
		CancelledAt:      m.CancelledAt,
		CancelReason:     m.CancelReason,
		CreatedAt:        m.CreatedAt,
	}
}

// MovementsFromDomain converts domain movements to responses.
func MovementsFromDomain(movements []*domain.BankMovement) []*MovementResponse {
	result := make([]*MovementResponse, len(movements))
	for i, m := range movements {
		result[i] = MovementFromDomain(m)
	}
	return result
}

// ListMovementsResponse wraps a movement listing.
type ListMovementsResponse struct {
	Movements []*MovementResponse `json:"movements"`
	Total     int64               `json:"total"`
}

// PaymentMethodResponse describes how cash physically moved.
type PaymentMethodResponse struct {
	Kind          string             `json:"kind"`
	Denominations []DenominationItem `json:"denominations,omitempty"`
	Reference     string             `json:"reference,omitempty"`
}

func paymentMethodFromDomain(m domain.PaymentMethod) PaymentMethodResponse {
	denominations := make([]DenominationItem, len(m.Denominations))
	for i, d := range m.Denominations {
		denominations[i] = DenominationItem{Value: d.Value, Count: d.Count}
	}
	return PaymentMethodResponse{
		Kind:          string(m.Kind),
		Denominations: denominations,
		Reference:     m.Reference,
	}
}

// CashMovementResponse represents a cash movement in API responses.
type CashMovementResponse struct {
	ID                 string                `json:"id"`
	Code               string                `json:"code"`
	Type               string                `json:"type"`
	Concept            string                `json:"concept"`
	Category           string                `json:"category"`
	Amount             decimal.Decimal       `json:"amount"`
	Method             PaymentMethodResponse `json:"method"`
	Status             string                `json:"status"`
	AffectsBankAccount bool                  `json:"affects_bank_account"`
	BankAccountID      *string               `json:"bank_account_id,omitempty"`
	BankBalanceBefore  *decimal.Decimal      `json:"bank_balance_before,omitempty"`
	BankBalanceAfter   *decimal.Decimal      `json:"bank_balance_after,omitempty"`
	BankMovementID     *string               `json:"bank_movement_id,omitempty"`
	AuditNote          string                `json:"audit_note,omitempty"`
	CreatedAt          time.Time             `json:"created_at"`
	UpdatedAt          time.Time             `json:"updated_at"`
}

// CashMovementFromDomain converts a domain cash movement to a response.
func CashMovementFromDomain(m *domain.CashMovement) *CashMovementResponse {
	return &CashMovementResponse{
		ID:                 m.ID,
		Code:               m.Code,
		Type:               string(m.Type),
		Concept:            m.Concept,
		Category:           string(m.Category),
		Amount:             m.Amount,
		Method:             paymentMethodFromDomain(m.Method),
		Status:             string(m.Status),
		AffectsBankAccount: m.AffectsBankAccount,
		BankAccountID:      m.BankAccountID,
		BankBalanceBefore:  m.BankBalanceBefore,
		BankBalanceAfter:   m.BankBalanceAfter,
		BankMovementID:     m.BankMovementID,
		AuditNote:          m.AuditNote,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
}

// CashMovementsFromDomain converts domain cash movements to responses.
func CashMovementsFromDomain(movements []*domain.CashMovement) []*CashMovementResponse {
	result := make([]*CashMovementResponse, len(movements))
	for i, m := range movements {
		result[i] = CashMovementFromDomain(m)
	}
	return result
}

// ListCashMovementsResponse wraps a cash movement listing.
type ListCashMovementsResponse struct {
	Movements []*CashMovementResponse `json:"movements"`
	Total     int64                   `json:"total"`
}

// IntegratedPostingResponse carries both sides of an integrated posting.
type IntegratedPostingResponse struct {
	Cash *CashMovementResponse `json:"cash"`
	Bank *MovementResponse     `json:"bank,omitempty"`
}

// IntegratedPostingFromResult converts an orchestrator result to a response.
func IntegratedPostingFromResult(result *usecase.IntegratedPostingResult) *IntegratedPostingResponse {
	resp := &IntegratedPostingResponse{Cash: CashMovementFromDomain(result.Cash)}
	if result.Bank != nil {
		resp.Bank = MovementFromDomain(result.Bank)
	}
	return resp
}

// IntegratedReversalResponse identifies the cancelled cash side, the
// cancelled bank original, and the compensating movement.
type IntegratedReversalResponse struct {
	CashMovementID     string  `json:"cash_movement_id"`
	OriginalBankID     *string `json:"original_bank_id,omitempty"`
	CompensatingMoveID *string `json:"compensating_move_id,omitempty"`
}

// IntegratedReversalFromResult converts an orchestrator reversal result.
func IntegratedReversalFromResult(result *usecase.IntegratedReversalResult) *IntegratedReversalResponse {
	return &IntegratedReversalResponse{
		CashMovementID:     result.CashMovementID,
		OriginalBankID:     result.OriginalBankID,
		CompensatingMoveID: result.CompensatingMoveID,
	}
}

// LoanResponse represents a loan in API responses.
type LoanResponse struct {
	ID                  string          `json:"id"`
	Code                string          `json:"code"`
	PrincipalRequested  decimal.Decimal `json:"principal_requested"`
	PrincipalApproved   decimal.Decimal `json:"principal_approved"`
	Currency            string          `json:"currency"`
	AnnualRatePercent   decimal.Decimal `json:"annual_rate_percent"`
	TermMonths          int             `json:"term_months"`
	MonthlyInstallment  decimal.Decimal `json:"monthly_installment"`
	Outstanding         decimal.Decimal `json:"outstanding"`
	PaymentDay          int             `json:"payment_day"`
	Status              string          `json:"status"`
	InstallmentsPaid    int             `json:"installments_paid"`
	InstallmentsPending int             `json:"installments_pending"`
	InterestPaid        decimal.Decimal `json:"interest_paid"`
	FeesPaid            decimal.Decimal `json:"fees_paid"`
	RequestedAt         time.Time       `json:"requested_at"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

// LoanFromDomain converts a domain loan to a response.
func LoanFromDomain(l *domain.Loan) *LoanResponse {
	return &LoanResponse{
		ID:                  l.ID,
		Code:                l.Code,
		PrincipalRequested:  l.PrincipalRequested,
		PrincipalApproved:   l.PrincipalApproved,
		Currency:            l.Currency,
		AnnualRatePercent:   l.AnnualRatePercent,
		TermMonths:          l.TermMonths,
		MonthlyInstallment:  l.MonthlyInstallment,
		Outstanding:         l.Outstanding,
		PaymentDay:          l.PaymentDay,
		Status:              string(l.Status),
		InstallmentsPaid:    l.InstallmentsPaid,
		InstallmentsPending: l.InstallmentsPending,
		InterestPaid:        l.InterestPaid,
		FeesPaid:            l.FeesPaid,
		RequestedAt:         l.RequestedAt,
		CreatedAt:           l.CreatedAt,
		UpdatedAt:           l.UpdatedAt,
	}
}

// LoansFromDomain converts domain loans to responses.
func LoansFromDomain(loans []*domain.Loan) []*LoanResponse {
	result := make([]*LoanResponse, len(loans))
	for i, l := range loans {
		result[i] = LoanFromDomain(l)
	}
	return result
}

// ListLoansResponse wraps a loan listing.
type ListLoansResponse struct {
	Loans []*LoanResponse `json:"loans"`
	Total int64           `json:"total"`
}

// LoanStatisticsResponse summarizes an owner's loan portfolio.
type LoanStatisticsResponse struct {
	TotalLoans          int             `json:"total_loans"`
	ActiveLoans         int             `json:"active_loans"`
	CancelledLoans      int             `json:"cancelled_loans"`
	TotalApproved       decimal.Decimal `json:"total_approved"`
	TotalOutstanding    decimal.Decimal `json:"total_outstanding"`
	TotalInterestPaid   decimal.Decimal `json:"total_interest_paid"`
	InstallmentsPaid    int             `json:"installments_paid"`
	InstallmentsPending int             `json:"installments_pending"`
}

// LoanStatisticsFromDomain converts portfolio statistics to a response.
func LoanStatisticsFromDomain(s *domain.LoanStatistics) *LoanStatisticsResponse {
	return &LoanStatisticsResponse{
		TotalLoans:          s.TotalLoans,
		ActiveLoans:         s.ActiveLoans,
		CancelledLoans:      s.CancelledLoans,
		TotalApproved:       s.TotalApproved,
		TotalOutstanding:    s.TotalOutstanding,
		TotalInterestPaid:   s.TotalInterestPaid,
		InstallmentsPaid:    s.InstallmentsPaid,
		InstallmentsPending: s.InstallmentsPending,
	}
}

// PaymentResponse represents a loan installment in API responses.
type PaymentResponse struct {
	ID            string          `json:"id"`
	Code          string          `json:"code"`
	LoanID        string          `json:"loan_id"`
	Number        int             `json:"number"`
	DueDate       time.Time       `json:"due_date"`
	PaidAt        *time.Time      `json:"paid_at,omitempty"`
	Capital       decimal.Decimal `json:"capital"`
	Interest      decimal.Decimal `json:"interest"`
	Fee           decimal.Decimal `json:"fee"`
	Penalty       decimal.Decimal `json:"penalty"`
	Total         decimal.Decimal `json:"total"`
	AmountPaid    decimal.Decimal `json:"amount_paid"`
	DaysLate      int             `json:"days_late"`
	Status        string          `json:"status"`
	BalanceBefore decimal.Decimal `json:"balance_before"`
	BalanceAfter  decimal.Decimal `json:"balance_after"`
	Method        *string         `json:"method,omitempty"`
	OperationRef  *string         `json:"operation_ref,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// PaymentFromDomain converts a domain payment to a response.
func PaymentFromDomain(p *domain.LoanPayment) *PaymentResponse {
	var method *string
	if p.Method != nil {
		m := string(*p.Method)
		method = &m
	}
	return &PaymentResponse{
		ID:            p.ID,
		Code:          p.Code,
		LoanID:        p.LoanID,
		Number:        p.Number,
		DueDate:       p.DueDate,
		PaidAt:        p.PaidAt,
		Capital:       p.Capital,
		Interest:      p.Interest,
		Fee:           p.Fee,
		Penalty:       p.Penalty,
		Total:         p.Total,
		AmountPaid:    p.AmountPaid,
		DaysLate:      p.DaysLate,
		Status:        string(p.Status),
		BalanceBefore: p.BalanceBefore,
		BalanceAfter:  p.BalanceAfter,
		Method:        method,
		OperationRef:  p.OperationRef,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

// PaymentsFromDomain converts domain payments to responses.
func PaymentsFromDomain(payments []*domain.LoanPayment) []*PaymentResponse {
	result := make([]*PaymentResponse, len(payments))
	for i, p := range payments {
		result[i] = PaymentFromDomain(p)
	}
	return result
}

// InstallmentRowResponse is one row of a simulated amortization table.
type InstallmentRowResponse struct {
	Number      int             `json:"number"`
	DueDate     time.Time       `json:"due_date"`
	Installment decimal.Decimal `json:"installment"`
	Interest    decimal.Decimal `json:"interest"`
	Capital     decimal.Decimal `json:"capital"`
	Remaining   decimal.Decimal `json:"remaining"`
}

// InstallmentRowsFromDomain converts amortization rows to responses.
func InstallmentRowsFromDomain(rows []domain.InstallmentRow) []InstallmentRowResponse {
	result := make([]InstallmentRowResponse, len(rows))
	for i, r := range rows {
		result[i] = InstallmentRowResponse{
			Number:      r.Number,
			DueDate:     r.DueDate,
			Installment: r.Installment,
			Interest:    r.Interest,
			Capital:     r.Capital,
			Remaining:   r.Remaining,
		}
	}
	return result
}

// ReconciliationResponse reports one account's reconciliation check.
type ReconciliationResponse struct {
	AccountID         string          `json:"account_id"`
	RecordedBalance   decimal.Decimal `json:"recorded_balance"`
	CalculatedBalance decimal.Decimal `json:"calculated_balance"`
	Difference        decimal.Decimal `json:"difference"`
	IsReconciled      bool            `json:"is_reconciled"`
	LastChecked       time.Time       `json:"last_checked"`
}

// ReconciliationFromResult converts a reconciliation result to a response.
func ReconciliationFromResult(r *usecase.ReconciliationResult) *ReconciliationResponse {
	return &ReconciliationResponse{
		AccountID:         r.AccountID,
		RecordedBalance:   r.RecordedBalance,
		CalculatedBalance: r.CalculatedBalance,
		Difference:        r.Difference,
		IsReconciled:      r.IsReconciled,
		LastChecked:       r.LastChecked,
	}
}

// ReconciliationsFromResults converts reconciliation results to responses.
func ReconciliationsFromResults(results []*usecase.ReconciliationResult) []*ReconciliationResponse {
	out := make([]*ReconciliationResponse, len(results))
	for i, r := range results {
		out[i] = ReconciliationFromResult(r)
	}
	return out
}
