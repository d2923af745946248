package integration

import (
	"testing"

	"github.com/cajafin/ledger/internal/adapter/repository/postgres"
	"github.com/cajafin/ledger/internal/usecase"
	"github.com/cajafin/ledger/tests/testutil"
)

// stack wires the use cases against a live test database.
type stack struct {
	db *testutil.TestDB

	accountRepo  *postgres.BankAccountRepository
	movementRepo *postgres.BankMovementRepository
	cashRepo     *postgres.CashMovementRepository
	loanRepo     *postgres.LoanRepository
	paymentRepo  *postgres.LoanPaymentRepository
	outboxRepo   *postgres.OutboxRepository

	accountUC     *usecase.AccountUseCase
	movementUC    *usecase.BankMovementUseCase
	cashUC        *usecase.CashMovementUseCase
	integrationUC *usecase.IntegrationUseCase
	loanUC        *usecase.LoanUseCase
	reconUC       *usecase.ReconciliationUseCase
}

func newStack(t *testing.T, db *testutil.TestDB) *stack {
	t.Helper()

	pool := db.Pool
	txManager := postgres.NewTxManager(pool)
	accountRepo := postgres.NewBankAccountRepository(pool)
	movementRepo := postgres.NewBankMovementRepository(pool)
	cashRepo := postgres.NewCashMovementRepository(pool)
	loanRepo := postgres.NewLoanRepository(pool)
	paymentRepo := postgres.NewLoanPaymentRepository(pool)
	outboxRepo := postgres.NewOutboxRepository(pool)
	auditRepo := postgres.NewAuditRepository(pool)
	idGen := postgres.NewULIDGenerator()
	codeGen := postgres.NewCodeGenerator()
	retrier := postgres.NewRetrier()

	recorder := usecase.NewMovementRecorder(accountRepo, movementRepo, outboxRepo, idGen, codeGen)
	cashUC := usecase.NewCashMovementUseCase(txManager, cashRepo, idGen, codeGen)

	return &stack{
		db:           db,
		accountRepo:  accountRepo,
		movementRepo: movementRepo,
		cashRepo:     cashRepo,
		loanRepo:     loanRepo,
		paymentRepo:  paymentRepo,
		outboxRepo:   outboxRepo,

		accountUC:  usecase.NewAccountUseCase(txManager, accountRepo, recorder, idGen, codeGen),
		movementUC: usecase.NewBankMovementUseCase(txManager, accountRepo, movementRepo, recorder, nil).WithRetrier(retrier),
		cashUC:     cashUC,
		integrationUC: usecase.NewIntegrationUseCase(
			txManager, accountRepo, movementRepo, cashRepo, cashUC, recorder, auditRepo, idGen, nil,
		).WithRetrier(retrier),
		loanUC:  usecase.NewLoanUseCase(txManager, loanRepo, paymentRepo, outboxRepo, idGen, codeGen, nil),
		reconUC: usecase.NewReconciliationUseCase(accountRepo, movementRepo),
	}
}
