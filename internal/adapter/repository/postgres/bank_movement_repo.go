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
	"github.com/shopspring/decimal"

	"github.com/cajafin/ledger/internal/domain"
	"github.com/cajafin/ledger/internal/usecase"
)

// BankMovementRepository implements usecase.BankMovementRepository.
type BankMovementRepository struct {
	pool *pgxpool.Pool
}

// NewBankMovementRepository creates a new BankMovementRepository.
func NewBankMovementRepository(pool *pgxpool.Pool) *BankMovementRepository {
	return &BankMovementRepository{pool: pool}
}

const movementColumns = `id, code, account_id, counter_account_id, type, category, amount,
currency, balance_before, balance_after, status, description, cash_movement_id,
cancelled_by, cancelled_at, cancel_reason, created_at`

// Create inserts a movement inside the caller's transaction.
func (r *BankMovementRepository) Create(ctx context.Context, tx usecase.Transaction, movement *domain.BankMovement) error {
	_, err := pgxTx(tx).Exec(ctx, `
INSERT INTO bank_movements (`+movementColumns+`)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
		movement.ID,
		movement.Code,
		movement.AccountID,
		movement.CounterAccountID,
		string(movement.Type),
		string(movement.Category),
		decimalToNumeric(movement.Amount),
		movement.Currency,
		decimalToNumeric(movement.BalanceBefore),
		decimalToNumeric(movement.BalanceAfter),
		string(movement.Status),
		movement.Description,
		movement.CashMovementID,
		movement.CancelledBy,
		timePtrToPgTimestamptz(movement.CancelledAt),
		movement.CancelReason,
		timeToPgTimestamptz(movement.CreatedAt),
	)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgErrUniqueViolation {
		return fmt.Errorf("%w: movement %s", domain.ErrAlreadyExists, movement.Code)
	}

	return err
}

// GetByID retrieves a movement by ID.
func (r *BankMovementRepository) GetByID(ctx context.Context, id string) (*domain.BankMovement, error) {
	row := r.pool.QueryRow(ctx, `
SELECT `+movementColumns+` FROM bank_movements WHERE id = $1`, id)

	return scanMovement(row)
}

// GetByIDForUpdate retrieves a movement with a FOR UPDATE row lock.
func (r *BankMovementRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.BankMovement, error) {
	row := pgxTx(tx).QueryRow(ctx, `
SELECT `+movementColumns+` FROM bank_movements WHERE id = $1 FOR UPDATE`, id)

	return scanMovement(row)
}

// MarkCancelled flips a movement to cancelled with its audit stamps. Only
// the status and cancellation fields change; the entry itself is immutable.
func (r *BankMovementRepository) MarkCancelled(ctx context.Context, tx usecase.Transaction, id, cancelledBy, reason string, cancelledAt time.Time) error {
	tag, err := pgxTx(tx).Exec(ctx, `
UPDATE bank_movements
SET status = $1, cancelled_by = $2, cancel_reason = $3, cancelled_at = $4
WHERE id = $5 AND status = $6`,
		string(domain.MovementStatusCancelled),
		cancelledBy,
		reason,
		timeToPgTimestamptz(cancelledAt),
		id,
		string(domain.MovementStatusProcessed),
	)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrMovementNotProcessed
	}

	return nil
}

// List lists movements with filters and pagination. The owner filter joins
// through the account, movements themselves carry no owner column.
func (r *BankMovementRepository) List(ctx context.Context, filter usecase.MovementFilter) ([]*domain.BankMovement, error) {
	query := `
SELECT m.id, m.code, m.account_id, m.counter_account_id, m.type, m.category, m.amount,
m.currency, m.balance_before, m.balance_after, m.status, m.description, m.cash_movement_id,
m.cancelled_by, m.cancelled_at, m.cancel_reason, m.created_at
FROM bank_movements m
JOIN bank_accounts a ON a.id = m.account_id
WHERE 1=1`
	var args []any

	if filter.OwnerID != "" {
		args = append(args, filter.OwnerID)
		query += fmt.Sprintf(" AND a.owner_id = $%d", len(args))
	}
	if filter.AccountID != "" {
		args = append(args, filter.AccountID)
		query += fmt.Sprintf(" AND m.account_id = $%d", len(args))
	}
	if filter.Type != "" {
		args = append(args, string(filter.Type))
		query += fmt.Sprintf(" AND m.type = $%d", len(args))
	}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		query += fmt.Sprintf(" AND m.status = $%d", len(args))
	}
	if filter.From != nil {
		args = append(args, timeToPgTimestamptz(*filter.From))
		query += fmt.Sprintf(" AND m.created_at >= $%d", len(args))
	}
	if filter.To != nil {
		args = append(args, timeToPgTimestamptz(*filter.To))
		query += fmt.Sprintf(" AND m.created_at < $%d", len(args))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		query += fmt.Sprintf(" AND (m.description ILIKE $%d OR m.code ILIKE $%d)", len(args), len(args))
	}

	args = append(args, filter.Limit, filter.Offset)
	query += fmt.Sprintf(" ORDER BY m.created_at DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var movements []*domain.BankMovement
	for rows.Next() {
		movement, err := scanMovement(rows)
		if err != nil {
			return nil, err
		}
		movements = append(movements, movement)
	}

	return movements, rows.Err()
}

// SumSignedAmounts totals non-cancelled movements for an account, expenses
// and outgoing transfers negative. This is the reconciliation side of the
// incremental balance.
func (r *BankMovementRepository) SumSignedAmounts(ctx context.Context, accountID string) (decimal.Decimal, error) {
	var sum pgtype.Numeric
	err := r.pool.QueryRow(ctx, `
SELECT COALESCE(SUM(
	CASE WHEN type IN ($1, $2) THEN -amount ELSE amount END
), 0)
FROM bank_movements
WHERE account_id = $3 AND status != $4`,
		string(domain.MovementExpense),
		string(domain.MovementTransferOut),
		accountID,
		string(domain.MovementStatusCancelled),
	).Scan(&sum)
	if err != nil {
		return decimal.Zero, err
	}

	return numericToDecimal(sum), nil
}

// FindUnlinked returns processed movements that claim a cash origin whose
// cash record is missing or does not point back.
func (r *BankMovementRepository) FindUnlinked(ctx context.Context, limit int) ([]*domain.BankMovement, error) {
	rows, err := r.pool.Query(ctx, `
SELECT `+movementColumns+` FROM bank_movements m
WHERE m.cash_movement_id IS NOT NULL
  AND m.status = $1
  AND NOT EXISTS (
	SELECT 1 FROM cash_movements c
	WHERE c.id = m.cash_movement_id AND c.bank_movement_id = m.id
  )
ORDER BY m.created_at
LIMIT $2`,
		string(domain.MovementStatusProcessed), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var movements []*domain.BankMovement
	for rows.Next() {
		movement, err := scanMovement(rows)
		if err != nil {
			return nil, err
		}
		movements = append(movements, movement)
	}

	return movements, rows.Err()
}

func scanMovement(row pgx.Row) (*domain.BankMovement, error) {
	var (
		movement    domain.BankMovement
		typ         string
		category    string
		status      string
		amount      pgtype.Numeric
		before      pgtype.Numeric
		after       pgtype.Numeric
		cancelledAt pgtype.Timestamptz
		createdAt   pgtype.Timestamptz
	)

	err := row.Scan(
		&movement.ID,
		&movement.Code,
		&movement.AccountID,
		&movement.CounterAccountID,
		&typ,
		&category,
		&amount,
		&movement.Currency,
		&before,
		&after,
		&status,
		&movement.Description,
		&movement.CashMovementID,
		&movement.CancelledBy,
		&cancelledAt,
		&movement.CancelReason,
		&createdAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrMovementNotFound
		}
		return nil, err
	}

	movement.Type = domain.MovementType(typ)
	movement.Category = domain.BankCategory(category)
	movement.Status = domain.MovementStatus(status)
	movement.Amount = numericToDecimal(amount)
	movement.BalanceBefore = numericToDecimal(before)
	movement.BalanceAfter = numericToDecimal(after)
	movement.CancelledAt = pgTimestamptzToTimePtr(cancelledAt)
	movement.CreatedAt = createdAt.Time

	return &movement, nil
}
