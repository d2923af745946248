package testutil

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"

	postgresRepo "github.com/cajafin/ledger/internal/adapter/repository/postgres"
	"github.com/cajafin/ledger/internal/domain"
	"github.com/cajafin/ledger/internal/infrastructure/postgres"
)

// TestDB provides isolated test database connections. Tests calling NewTestDB
// are skipped when DATABASE_URL is not set.
type TestDB struct {
	Pool     *pgxpool.Pool
	Tx       *postgresRepo.TxManager
	Accounts *postgresRepo.BankAccountRepository
	t        *testing.T
}

// NewTestDB connects to the test database, running migrations first.
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL not set, skipping database test")
	}

	// Tests run from the package directory, so probe upward for migrations.
	migrationsPath := "internal/infrastructure/postgres/migrations"
	if _, err := os.Stat(migrationsPath); os.IsNotExist(err) {
		migrationsPath = "../../internal/infrastructure/postgres/migrations"
	}
	if _, err := os.Stat(migrationsPath); os.IsNotExist(err) {
		migrationsPath = "../../../internal/infrastructure/postgres/migrations"
	}

	if err := postgres.RunMigrations(dbURL, migrationsPath); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}

	if err := pool.Ping(ctx); err != nil {
		t.Fatalf("failed to ping test database: %v", err)
	}

	return &TestDB{
		Pool:     pool,
		Tx:       postgresRepo.NewTxManager(pool),
		Accounts: postgresRepo.NewBankAccountRepository(pool),
		t:        t,
	}
}

// Cleanup closes the database connection.
func (db *TestDB) Cleanup() {
	db.Pool.Close()
}

// TruncateAll removes all data from tables.
func (db *TestDB) TruncateAll(ctx context.Context) {
	db.t.Helper()

	_, err := db.Pool.Exec(ctx, `
		TRUNCATE TABLE loan_payments CASCADE;
		TRUNCATE TABLE loans CASCADE;
		TRUNCATE TABLE cash_movements CASCADE;
		TRUNCATE TABLE bank_movements CASCADE;
		TRUNCATE TABLE bank_accounts CASCADE;
		TRUNCATE TABLE outbox_events CASCADE;
		TRUNCATE TABLE audit_logs CASCADE;
		TRUNCATE TABLE code_sequences CASCADE;
	`)
	if err != nil {
		db.t.Fatalf("failed to truncate tables: %v", err)
	}
}

// CreateTestAccount creates an active account with the given balance.
func (db *TestDB) CreateTestAccount(ctx context.Context, ownerID string, balance decimal.Decimal) *domain.BankAccount {
	db.t.Helper()

	now := time.Now().UTC()
	account := &domain.BankAccount{
		ID:             ulid.Make().String(),
		Code:           "CTA-" + ulid.Make().String()[:8],
		OwnerID:        ownerID,
		BankName:       "Banco de Pruebas",
		AccountNumber:  "000-" + ulid.Make().String()[:10],
		Type:           domain.AccountTypeChecking,
		Currency:       "PEN",
		InitialBalance: balance,
		CurrentBalance: balance,
		Version:        1,
		Active:         true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	tx, err := db.Tx.Begin(ctx)
	if err != nil {
		db.t.Fatalf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback(ctx)

	if err := db.Accounts.Create(ctx, tx, account); err != nil {
		db.t.Fatalf("failed to create test account: %v", err)
	}
	if err := tx.Commit(ctx); err != nil {
		db.t.Fatalf("failed to commit test account: %v", err)
	}

	return account
}

// TestActor returns an operator actor for use in tests.
func TestActor(userID string) domain.Actor {
	return domain.Actor{
		UserID:      userID,
		DisplayName: "Operadora de Prueba",
		Email:       userID + "@cajafin.test",
		Role:        domain.RoleAdmin,
	}
}

// GenerateID generates a new ULID.
func GenerateID() string {
	return ulid.Make().String()
}
