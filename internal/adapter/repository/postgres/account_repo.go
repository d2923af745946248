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

const pgErrUniqueViolation = "23505"

// BankAccountRepository implements usecase.BankAccountRepository.
type BankAccountRepository struct {
	pool *pgxpool.Pool
}

// NewBankAccountRepository creates a new BankAccountRepository.
func NewBankAccountRepository(pool *pgxpool.Pool) *BankAccountRepository {
	return &BankAccountRepository{pool: pool}
}

const accountColumns = `id, code, owner_id, bank_name, account_number, type, currency,
initial_balance, current_balance, version, active, min_balance_alert,
last_movement_at, created_at, updated_at`

// Create inserts an account inside the caller's transaction.
func (r *BankAccountRepository) Create(ctx context.Context, tx usecase.Transaction, account *domain.BankAccount) error {
	_, err := pgxTx(tx).Exec(ctx, `
INSERT INTO bank_accounts (`+accountColumns+`)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		account.ID,
		account.Code,
		account.OwnerID,
		account.BankName,
		account.AccountNumber,
		string(account.Type),
		account.Currency,
		decimalToNumeric(account.InitialBalance),
		decimalToNumeric(account.CurrentBalance),
		account.Version,
		account.Active,
		decimalToNumeric(account.MinBalanceAlert),
		timePtrToPgTimestamptz(account.LastMovementAt),
		timeToPgTimestamptz(account.CreatedAt),
		timeToPgTimestamptz(account.UpdatedAt),
	)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgErrUniqueViolation {
		return fmt.Errorf("%w: account %s", domain.ErrAlreadyExists, account.Code)
	}

	return err
}

// GetByID retrieves an account by ID.
func (r *BankAccountRepository) GetByID(ctx context.Context, id string) (*domain.BankAccount, error) {
	row := r.pool.QueryRow(ctx, `
SELECT `+accountColumns+` FROM bank_accounts WHERE id = $1`, id)

	return scanAccount(row)
}

// GetByIDForUpdate retrieves an account with a FOR UPDATE row lock.
func (r *BankAccountRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.BankAccount, error) {
	row := pgxTx(tx).QueryRow(ctx, `
SELECT `+accountColumns+` FROM bank_accounts WHERE id = $1 FOR UPDATE`, id)

	return scanAccount(row)
}

// UpdateBalance persists balance, version, and last movement stamp in one
// write. The WHERE clause checks the previous version: under the row lock
// this can only miss when something outside the posting path touched the
// row, which is treated as a conflict rather than silently overwritten.
func (r *BankAccountRepository) UpdateBalance(ctx context.Context, tx usecase.Transaction, account *domain.BankAccount, movedAt time.Time) error {
	tag, err := pgxTx(tx).Exec(ctx, `
UPDATE bank_accounts
SET current_balance = $1, version = $2, last_movement_at = $3, updated_at = $3
WHERE id = $4 AND version = $5`,
		decimalToNumeric(account.CurrentBalance),
		account.Version,
		timeToPgTimestamptz(movedAt),
		account.ID,
		account.Version-1,
	)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("account %s: version conflict at %d", account.Code, account.Version-1)
	}

	return nil
}

// SetActive toggles the active flag.
func (r *BankAccountRepository) SetActive(ctx context.Context, id string, active bool, updatedAt time.Time) error {
	tag, err := r.pool.Exec(ctx, `
UPDATE bank_accounts SET active = $1, updated_at = $2 WHERE id = $3`,
		active, timeToPgTimestamptz(updatedAt), id)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrAccountNotFound
	}

	return nil
}

// List lists accounts with filters and pagination.
func (r *BankAccountRepository) List(ctx context.Context, filter usecase.AccountFilter) ([]*domain.BankAccount, error) {
	query := `SELECT ` + accountColumns + ` FROM bank_accounts WHERE owner_id = $1`
	args := []any{filter.OwnerID}

	if filter.Type != "" {
		args = append(args, string(filter.Type))
		query += fmt.Sprintf(" AND type = $%d", len(args))
	}
	if filter.Active != nil {
		args = append(args, *filter.Active)
		query += fmt.Sprintf(" AND active = $%d", len(args))
	}

	args = append(args, filter.Limit, filter.Offset)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []*domain.BankAccount
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}

	return accounts, rows.Err()
}

func scanAccount(row pgx.Row) (*domain.BankAccount, error) {
	var (
		account        domain.BankAccount
		typ            string
		initial        pgtype.Numeric
		current        pgtype.Numeric
		alert          pgtype.Numeric
		lastMovementAt pgtype.Timestamptz
		createdAt      pgtype.Timestamptz
		updatedAt      pgtype.Timestamptz
	)

	err := row.Scan(
		&account.ID,
		&account.Code,
		&account.OwnerID,
		&account.BankName,
		&account.AccountNumber,
		&typ,
		&account.Currency,
		&initial,
		&current,
		&account.Version,
		&account.Active,
		&alert,
		&lastMovementAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, err
	}

	account.Type = domain.AccountType(typ)
	account.InitialBalance = numericToDecimal(initial)
	account.CurrentBalance = numericToDecimal(current)
	account.MinBalanceAlert = numericToDecimal(alert)
	account.LastMovementAt = pgTimestamptzToTimePtr(lastMovementAt)
	account.CreatedAt = createdAt.Time
	account.UpdatedAt = updatedAt.Time

	return &account, nil
}
