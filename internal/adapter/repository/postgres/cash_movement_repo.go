package postgres

import (
	"context"
	"encoding/json"
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

// CashMovementRepository implements usecase.CashMovementRepository. The
// payment method breakdown is stored as jsonb; everything queried on lives
// in its own column.
type CashMovementRepository struct {
	pool *pgxpool.Pool
}

// NewCashMovementRepository creates a new CashMovementRepository.
func NewCashMovementRepository(pool *pgxpool.Pool) *CashMovementRepository {
	return &CashMovementRepository{pool: pool}
}

const cashColumns = `id, code, owner_id, type, concept, category, amount, method, status,
affects_bank_account, bank_account_id, bank_balance_before, bank_balance_after,
bank_movement_id, audit_note, created_at, updated_at`

// Create inserts a cash movement inside the caller's transaction.
func (r *CashMovementRepository) Create(ctx context.Context, tx usecase.Transaction, movement *domain.CashMovement) error {
	method, err := json.Marshal(movement.Method)
	if err != nil {
		return err
	}

	_, err = pgxTx(tx).Exec(ctx, `
INSERT INTO cash_movements (`+cashColumns+`)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
		movement.ID,
		movement.Code,
		movement.OwnerID,
		string(movement.Type),
		movement.Concept,
		string(movement.Category),
		decimalToNumeric(movement.Amount),
		method,
		string(movement.Status),
		movement.AffectsBankAccount,
		movement.BankAccountID,
		decimalPtrToNumeric(movement.BankBalanceBefore),
		decimalPtrToNumeric(movement.BankBalanceAfter),
		movement.BankMovementID,
		movement.AuditNote,
		timeToPgTimestamptz(movement.CreatedAt),
		timeToPgTimestamptz(movement.UpdatedAt),
	)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgErrUniqueViolation {
		return fmt.Errorf("%w: cash movement %s", domain.ErrAlreadyExists, movement.Code)
	}

	return err
}

// GetByID retrieves a cash movement by ID.
func (r *CashMovementRepository) GetByID(ctx context.Context, id string) (*domain.CashMovement, error) {
	row := r.pool.QueryRow(ctx, `
SELECT `+cashColumns+` FROM cash_movements WHERE id = $1`, id)

	return scanCashMovement(row)
}

// GetByIDForUpdate retrieves a cash movement with a FOR UPDATE row lock.
func (r *CashMovementRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.CashMovement, error) {
	row := pgxTx(tx).QueryRow(ctx, `
SELECT `+cashColumns+` FROM cash_movements WHERE id = $1 FOR UPDATE`, id)

	return scanCashMovement(row)
}

// UpdateStatus advances the lifecycle state and replaces the audit note.
func (r *CashMovementRepository) UpdateStatus(ctx context.Context, tx usecase.Transaction, id string, status domain.CashMovementStatus, auditNote string, updatedAt time.Time) error {
	tag, err := pgxTx(tx).Exec(ctx, `
UPDATE cash_movements SET status = $1, audit_note = $2, updated_at = $3 WHERE id = $4`,
		string(status), auditNote, timeToPgTimestamptz(updatedAt), id)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrCashMovementNotFound
	}

	return nil
}

// List lists cash movements with filters and pagination.
func (r *CashMovementRepository) List(ctx context.Context, filter usecase.CashFilter) ([]*domain.CashMovement, error) {
	query := `SELECT ` + cashColumns + ` FROM cash_movements WHERE owner_id = $1`
	args := []any{filter.OwnerID}

	if filter.Type != "" {
		args = append(args, string(filter.Type))
		query += fmt.Sprintf(" AND type = $%d", len(args))
	}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if filter.From != nil {
		args = append(args, timeToPgTimestamptz(*filter.From))
		query += fmt.Sprintf(" AND created_at >= $%d", len(args))
	}
	if filter.To != nil {
		args = append(args, timeToPgTimestamptz(*filter.To))
		query += fmt.Sprintf(" AND created_at < $%d", len(args))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		query += fmt.Sprintf(" AND (concept ILIKE $%d OR code ILIKE $%d)", len(args), len(args))
	}

	args = append(args, filter.Limit, filter.Offset)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var movements []*domain.CashMovement
	for rows.Next() {
		movement, err := scanCashMovement(rows)
		if err != nil {
			return nil, err
		}
		movements = append(movements, movement)
	}

	return movements, rows.Err()
}

func scanCashMovement(row pgx.Row) (*domain.CashMovement, error) {
	var (
		movement  domain.CashMovement
		typ       string
		category  string
		status    string
		amount    pgtype.Numeric
		method    []byte
		before    pgtype.Numeric
		after     pgtype.Numeric
		createdAt pgtype.Timestamptz
		updatedAt pgtype.Timestamptz
	)

	err := row.Scan(
		&movement.ID,
		&movement.Code,
		&movement.OwnerID,
		&typ,
		&movement.Concept,
		&category,
		&amount,
		&method,
		&status,
		&movement.AffectsBankAccount,
		&movement.BankAccountID,
		&before,
		&after,
		&movement.BankMovementID,
		&movement.AuditNote,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCashMovementNotFound
		}
		return nil, err
	}

	if err := json.Unmarshal(method, &movement.Method); err != nil {
		return nil, fmt.Errorf("cash movement %s: bad method payload: %w", movement.ID, err)
	}

	movement.Type = domain.CashMovementType(typ)
	movement.Category = domain.CashCategory(category)
	movement.Status = domain.CashMovementStatus(status)
	movement.Amount = numericToDecimal(amount)
	movement.BankBalanceBefore = numericToDecimalPtr(before)
	movement.BankBalanceAfter = numericToDecimalPtr(after)
	movement.CreatedAt = createdAt.Time
	movement.UpdatedAt = updatedAt.Time

	return &movement, nil
}
