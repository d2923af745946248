package integration

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cajafin/ledger/internal/domain"
	"github.com/cajafin/ledger/internal/usecase"
	"github.com/cajafin/ledger/tests/testutil"
)

func TestOutboxEvents(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	ctx := context.Background()
	testDB := testutil.NewTestDB(t)
	defer testDB.Cleanup()

	s := newStack(t, testDB)
	actor := testutil.TestActor("owner-1")

	t.Run("posting a movement records an event", func(t *testing.T) {
		testDB.TruncateAll(ctx)
		account := testDB.CreateTestAccount(ctx, actor.UserID, decimal.NewFromInt(500))

		movement, err := s.movementUC.PostMovement(ctx, account.ID, usecase.PostMovementInput{
			Type:        domain.MovementIncome,
			Category:    domain.BankCatDeposit,
			Amount:      decimal.NewFromInt(100),
			Description: "Depósito",
		}, actor)
		if err != nil {
			t.Fatalf("failed to post movement: %v", err)
		}

		events, err := s.outboxRepo.GetUnpublished(ctx, 10)
		if err != nil {
			t.Fatalf("failed to read outbox: %v", err)
		}
		if len(events) != 1 {
			t.Fatalf("expected 1 unpublished event, got %d", len(events))
		}
		if events[0].AggregateID != movement.ID {
			t.Errorf("expected aggregate %s, got %s", movement.ID, events[0].AggregateID)
		}
		if events[0].EventType != domain.EventTypeMovementPosted {
			t.Errorf("expected movement posted event, got %s", events[0].EventType)
		}
	})

	t.Run("published events leave the unpublished set and get pruned", func(t *testing.T) {
		testDB.TruncateAll(ctx)
		account := testDB.CreateTestAccount(ctx, actor.UserID, decimal.NewFromInt(500))

		if _, err := s.movementUC.PostMovement(ctx, account.ID, usecase.PostMovementInput{
			Type:        domain.MovementIncome,
			Category:    domain.BankCatDeposit,
			Amount:      decimal.NewFromInt(100),
			Description: "Depósito",
		}, actor); err != nil {
			t.Fatalf("failed to post movement: %v", err)
		}

		events, err := s.outboxRepo.GetUnpublished(ctx, 10)
		if err != nil {
			t.Fatalf("failed to read outbox: %v", err)
		}

		now := time.Now().UTC()
		for _, event := range events {
			if err := s.outboxRepo.MarkPublished(ctx, event.ID, now); err != nil {
				t.Fatalf("failed to mark published: %v", err)
			}
		}

		remaining, err := s.outboxRepo.GetUnpublished(ctx, 10)
		if err != nil {
			t.Fatalf("failed to read outbox: %v", err)
		}
		if len(remaining) != 0 {
			t.Errorf("expected no unpublished events, got %d", len(remaining))
		}

		if err := s.outboxRepo.DeletePublished(ctx, now.Add(time.Second)); err != nil {
			t.Fatalf("failed to prune outbox: %v", err)
		}

		var count int
		if err := testDB.Pool.QueryRow(ctx, "SELECT COUNT(*) FROM outbox_events").Scan(&count); err != nil {
			t.Fatalf("failed to count outbox rows: %v", err)
		}
		if count != 0 {
			t.Errorf("expected pruned outbox, got %d rows", count)
		}
	})

	t.Run("loan creation records an event", func(t *testing.T) {
		testDB.TruncateAll(ctx)

		loan, err := s.loanUC.RequestLoan(ctx, usecase.RequestLoanInput{
			Principal:         decimal.NewFromInt(5000),
			Currency:          "PEN",
			AnnualRatePercent: decimal.RequireFromString("14"),
			TermMonths:        6,
			PaymentDay:        10,
		}, actor)
		if err != nil {
			t.Fatalf("failed to request loan: %v", err)
		}

		events, err := s.outboxRepo.GetUnpublished(ctx, 10)
		if err != nil {
			t.Fatalf("failed to read outbox: %v", err)
		}
		if len(events) != 1 {
			t.Fatalf("expected 1 unpublished event, got %d", len(events))
		}
		if events[0].AggregateID != loan.ID || events[0].EventType != domain.EventTypeLoanCreated {
			t.Errorf("expected loan created event for %s, got %s/%s", loan.ID, events[0].EventType, events[0].AggregateID)
		}
	})
}
