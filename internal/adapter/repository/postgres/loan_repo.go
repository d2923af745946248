package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cajafin/ledger/internal/domain"
	"github.com/cajafin/ledger/internal/usecase"
)

// LoanRepository implements usecase.LoanRepository.
type LoanRepository struct {
	pool *pgxpool.Pool
}

// NewLoanRepository creates a new LoanRepository.
func NewLoanRepository(pool *pgxpool.Pool) *LoanRepository {
	return &LoanRepository{pool: pool}
}

const loanColumns = `id, code, owner_id, principal_requested, principal_approved, currency,
annual_rate_percent, term_months, monthly_installment, outstanding, payment_day, status,
installments_paid, installments_pending, interest_paid, fees_paid, requested_at,
created_at, updated_at`

// Create inserts a loan inside the caller's transaction.
func (r *LoanRepository) Create(ctx context.Context, tx usecase.Transaction, loan *domain.Loan) error {
	_, err := pgxTx(tx).Exec(ctx, `
INSERT INTO loans (`+loanColumns+`)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`,
		loan.ID,
		loan.Code,
		loan.OwnerID,
		decimalToNumeric(loan.PrincipalRequested),
		decimalToNumeric(loan.PrincipalApproved),
		loan.Currency,
		decimalToNumeric(loan.AnnualRatePercent),
		loan.TermMonths,
		decimalToNumeric(loan.MonthlyInstallment),
		decimalToNumeric(loan.Outstanding),
		loan.PaymentDay,
		string(loan.Status),
		loan.InstallmentsPaid,
		loan.InstallmentsPending,
		decimalToNumeric(loan.InterestPaid),
		decimalToNumeric(loan.FeesPaid),
		timeToPgTimestamptz(loan.RequestedAt),
		timeToPgTimestamptz(loan.CreatedAt),
		timeToPgTimestamptz(loan.UpdatedAt),
	)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgErrUniqueViolation {
		return fmt.Errorf("%w: loan %s", domain.ErrAlreadyExists, loan.Code)
	}

	return err
}

// GetByID retrieves a loan by ID.
func (r *LoanRepository) GetByID(ctx context.Context, id string) (*domain.Loan, error) {
	row := r.pool.QueryRow(ctx, `
SELECT `+loanColumns+` FROM loans WHERE id = $1`, id)

	return scanLoan(row)
}

// GetByIDForUpdate retrieves a loan with a FOR UPDATE row lock.
func (r *LoanRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Loan, error) {
	row := pgxTx(tx).QueryRow(ctx, `
SELECT `+loanColumns+` FROM loans WHERE id = $1 FOR UPDATE`, id)

	return scanLoan(row)
}

// UpdateStats persists the running payment statistics of a loan.
func (r *LoanRepository) UpdateStats(ctx context.Context, tx usecase.Transaction, loan *domain.Loan) error {
	tag, err := pgxTx(tx).Exec(ctx, `
UPDATE loans
SET outstanding = $1, installments_paid = $2, installments_pending = $3,
    interest_paid = $4, fees_paid = $5, updated_at = $6
WHERE id = $7`,
		decimalToNumeric(loan.Outstanding),
		loan.InstallmentsPaid,
		loan.InstallmentsPending,
		decimalToNumeric(loan.InterestPaid),
		decimalToNumeric(loan.FeesPaid),
		timeToPgTimestamptz(loan.UpdatedAt),
		loan.ID,
	)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrLoanNotFound
	}

	return nil
}

// UpdateStatus changes the loan status.
func (r *LoanRepository) UpdateStatus(ctx context.Context, tx usecase.Transaction, id string, status domain.LoanStatus, updatedAt time.Time) error {
	tag, err := pgxTx(tx).Exec(ctx, `
UPDATE loans SET status = $1, updated_at = $2 WHERE id = $3`,
		string(status), timeToPgTimestamptz(updatedAt), id)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrLoanNotFound
	}

	return nil
}

// List lists loans with filters and pagination.
func (r *LoanRepository) List(ctx context.Context, filter usecase.LoanFilter) ([]*domain.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE owner_id = $1`
	args := []any{filter.OwnerID}

	if filter.Status != "" {
		args = append(args, string(filter.Status))
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		query += fmt.Sprintf(" AND code ILIKE $%d", len(args))
	}

	args = append(args, filter.Limit, filter.Offset)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var loans []*domain.Loan
	for rows.Next() {
		loan, err := scanLoan(rows)
		if err != nil {
			return nil, err
		}
		loans = append(loans, loan)
	}

	return loans, rows.Err()
}

// Statistics aggregates an owner's portfolio in one pass. Principal and
// outstanding sums count approved loans only; interest paid counts all.
func (r *LoanRepository) Statistics(ctx context.Context, ownerID string) (*domain.LoanStatistics, error) {
	row := r.pool.QueryRow(ctx, `
SELECT COUNT(*),
       COUNT(*) FILTER (WHERE status = $2),
       COUNT(*) FILTER (WHERE status = $3),
       COALESCE(SUM(principal_approved) FILTER (WHERE status = $2), 0),
       COALESCE(SUM(outstanding) FILTER (WHERE status = $2), 0),
       COALESCE(SUM(interest_paid), 0),
       COALESCE(SUM(installments_paid), 0),
       COALESCE(SUM(installments_pending) FILTER (WHERE status = $2), 0)
FROM loans WHERE owner_id = $1`,
		ownerID, string(domain.LoanStatusApproved), string(domain.LoanStatusCancelled))

	var (
		stats       domain.LoanStatistics
		approved    pgtype.Numeric
		outstanding pgtype.Numeric
		interest    pgtype.Numeric
	)
	if err := row.Scan(
		&stats.TotalLoans,
		&stats.ActiveLoans,
		&stats.CancelledLoans,
		&approved,
		&outstanding,
		&interest,
		&stats.InstallmentsPaid,
		&stats.InstallmentsPending,
	); err != nil {
		return nil, err
	}

	stats.OwnerID = ownerID
	stats.TotalApproved = numericToDecimal(approved)
	stats.TotalOutstanding = numericToDecimal(outstanding)
	stats.TotalInterestPaid = numericToDecimal(interest)

	return &stats, nil
}

func scanLoan(row pgx.Row) (*domain.Loan, error) {
	var (
		loan        domain.Loan
		status      string
		requested   pgtype.Numeric
		approved    pgtype.Numeric
		rate        pgtype.Numeric
		installment pgtype.Numeric
		outstanding pgtype.Numeric
		interest    pgtype.Numeric
		fees        pgtype.Numeric
		requestedAt pgtype.Timestamptz
		createdAt   pgtype.Timestamptz
		updatedAt   pgtype.Timestamptz
	)

	err := row.Scan(
		&loan.ID,
		&loan.Code,
		&loan.OwnerID,
		&requested,
		&approved,
		&loan.Currency,
		&rate,
		&loan.TermMonths,
		&installment,
		&outstanding,
		&loan.PaymentDay,
		&status,
		&loan.InstallmentsPaid,
		&loan.InstallmentsPending,
		&interest,
		&fees,
		&requestedAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrLoanNotFound
		}
		return nil, err
	}

	loan.Status = domain.LoanStatus(status)
	loan.PrincipalRequested = numericToDecimal(requested)
	loan.PrincipalApproved = numericToDecimal(approved)
	loan.AnnualRatePercent = numericToDecimal(rate)
	loan.MonthlyInstallment = numericToDecimal(installment)
	loan.Outstanding = numericToDecimal(outstanding)
	loan.InterestPaid = numericToDecimal(interest)
	loan.FeesPaid = numericToDecimal(fees)
	loan.RequestedAt = requestedAt.Time
	loan.CreatedAt = createdAt.Time
	loan.UpdatedAt = updatedAt.Time

	return &loan, nil
}
