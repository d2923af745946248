package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cajafin/ledger/internal/domain"
	"github.com/cajafin/ledger/internal/usecase"
)

// LoanPaymentRepository implements usecase.LoanPaymentRepository.
type LoanPaymentRepository struct {
	pool *pgxpool.Pool
}

// NewLoanPaymentRepository creates a new LoanPaymentRepository.
func NewLoanPaymentRepository(pool *pgxpool.Pool) *LoanPaymentRepository {
	return &LoanPaymentRepository{pool: pool}
}

const paymentColumns = `id, code, loan_id, number, due_date, paid_at, capital, interest, fee,
penalty, total, amount_paid, days_late, status, balance_before, balance_after, method,
operation_ref, created_at, updated_at`

// CreateBatch bulk-inserts a whole amortization schedule in one round trip.
func (r *LoanPaymentRepository) CreateBatch(ctx context.Context, tx usecase.Transaction, payments []*domain.LoanPayment) error {
	if len(payments) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, p := range payments {
		var method *string
		if p.Method != nil {
			m := string(*p.Method)
			method = &m
		}

		batch.Queue(`
INSERT INTO loan_payments (`+paymentColumns+`)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)`,
			p.ID,
			p.Code,
			p.LoanID,
			p.Number,
			timeToPgTimestamptz(p.DueDate),
			timePtrToPgTimestamptz(p.PaidAt),
			decimalToNumeric(p.Capital),
			decimalToNumeric(p.Interest),
			decimalToNumeric(p.Fee),
			decimalToNumeric(p.Penalty),
			decimalToNumeric(p.Total),
			decimalToNumeric(p.AmountPaid),
			p.DaysLate,
			string(p.Status),
			decimalToNumeric(p.BalanceBefore),
			decimalToNumeric(p.BalanceAfter),
			method,
			p.OperationRef,
			timeToPgTimestamptz(p.CreatedAt),
			timeToPgTimestamptz(p.UpdatedAt),
		)
	}

	results := pgxTx(tx).SendBatch(ctx, batch)
	defer results.Close()

	for range payments {
		if _, err := results.Exec(); err != nil {
			return err
		}
	}

	return nil
}

// CountByLoan counts the scheduled installments of a loan inside the
// caller's transaction.
func (r *LoanPaymentRepository) CountByLoan(ctx context.Context, tx usecase.Transaction, loanID string) (int, error) {
	var count int
	err := pgxTx(tx).QueryRow(ctx, `
SELECT COUNT(*) FROM loan_payments WHERE loan_id = $1`, loanID).Scan(&count)

	return count, err
}

// GetByID retrieves a payment by ID.
func (r *LoanPaymentRepository) GetByID(ctx context.Context, id string) (*domain.LoanPayment, error) {
	row := r.pool.QueryRow(ctx, `
SELECT `+paymentColumns+` FROM loan_payments WHERE id = $1`, id)

	return scanPayment(row)
}

// GetByIDForUpdate retrieves a payment with a FOR UPDATE row lock.
func (r *LoanPaymentRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.LoanPayment, error) {
	row := pgxTx(tx).QueryRow(ctx, `
SELECT `+paymentColumns+` FROM loan_payments WHERE id = $1 FOR UPDATE`, id)

	return scanPayment(row)
}

// Update persists the mutable fields of a payment.
func (r *LoanPaymentRepository) Update(ctx context.Context, tx usecase.Transaction, payment *domain.LoanPayment) error {
	var method *string
	if payment.Method != nil {
		m := string(*payment.Method)
		method = &m
	}

	tag, err := pgxTx(tx).Exec(ctx, `
UPDATE loan_payments
SET paid_at = $1, penalty = $2, total = $3, amount_paid = $4, days_late = $5,
    status = $6, method = $7, operation_ref = $8, updated_at = $9
WHERE id = $10`,
		timePtrToPgTimestamptz(payment.PaidAt),
		decimalToNumeric(payment.Penalty),
		decimalToNumeric(payment.Total),
		decimalToNumeric(payment.AmountPaid),
		payment.DaysLate,
		string(payment.Status),
		method,
		payment.OperationRef,
		timeToPgTimestamptz(payment.UpdatedAt),
		payment.ID,
	)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrPaymentNotFound
	}

	return nil
}

// ListByLoan returns the full schedule of a loan ordered by installment
// number.
func (r *LoanPaymentRepository) ListByLoan(ctx context.Context, loanID string) ([]*domain.LoanPayment, error) {
	rows, err := r.pool.Query(ctx, `
SELECT `+paymentColumns+` FROM loan_payments WHERE loan_id = $1 ORDER BY number`, loanID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []*domain.LoanPayment
	for rows.Next() {
		payment, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, payment)
	}

	return payments, rows.Err()
}

func scanPayment(row pgx.Row) (*domain.LoanPayment, error) {
	var (
		payment    domain.LoanPayment
		status     string
		method     *string
		dueDate    pgtype.Timestamptz
		paidAt     pgtype.Timestamptz
		capital    pgtype.Numeric
		interest   pgtype.Numeric
		fee        pgtype.Numeric
		penalty    pgtype.Numeric
		total      pgtype.Numeric
		amountPaid pgtype.Numeric
		before     pgtype.Numeric
		after      pgtype.Numeric
		createdAt  pgtype.Timestamptz
		updatedAt  pgtype.Timestamptz
	)

	err := row.Scan(
		&payment.ID,
		&payment.Code,
		&payment.LoanID,
		&payment.Number,
		&dueDate,
		&paidAt,
		&capital,
		&interest,
		&fee,
		&penalty,
		&total,
		&amountPaid,
		&payment.DaysLate,
		&status,
		&before,
		&after,
		&method,
		&payment.OperationRef,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPaymentNotFound
		}
		return nil, err
	}

	payment.Status = domain.PaymentStatus(status)
	if method != nil {
		kind := domain.PaymentMethodKind(*method)
		payment.Method = &kind
	}
	payment.DueDate = dueDate.Time
	payment.PaidAt = pgTimestamptzToTimePtr(paidAt)
	payment.Capital = numericToDecimal(capital)
	payment.Interest = numericToDecimal(interest)
	payment.Fee = numericToDecimal(fee)
	payment.Penalty = numericToDecimal(penalty)
	payment.Total = numericToDecimal(total)
	payment.AmountPaid = numericToDecimal(amountPaid)
	payment.BalanceBefore = numericToDecimal(before)
	payment.BalanceAfter = numericToDecimal(after)
	payment.CreatedAt = createdAt.Time
	payment.UpdatedAt = updatedAt.Time

	return &payment, nil
}
