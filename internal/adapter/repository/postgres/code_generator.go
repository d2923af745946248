package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/cajafin/ledger/internal/domain"
	"github.com/cajafin/ledger/internal/usecase"
)

// CodeGenerator allocates human-readable sequential codes from the
// code_sequences table, locked inside the caller's transaction so two
// postings can never draw the same number. Allocation never fails the
// owning write: any storage or parsing problem degrades to a
// timestamp-derived code and the unique constraint on the target table
// stays the final guard.
type CodeGenerator struct {
	logger zerolog.Logger
}

// NewCodeGenerator creates a new CodeGenerator.
func NewCodeGenerator() *CodeGenerator {
	return &CodeGenerator{logger: log.Logger}
}

const selectLastCode = `
SELECT last_code FROM code_sequences
WHERE owner_id = $1 AND prefix = $2 AND date_segment = $3
FOR UPDATE`

const upsertLastCode = `
INSERT INTO code_sequences (owner_id, prefix, date_segment, last_code, updated_at)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (owner_id, prefix, date_segment)
DO UPDATE SET last_code = EXCLUDED.last_code, updated_at = EXCLUDED.updated_at`

// Next returns the next code in the owner-scoped sequence.
func (g *CodeGenerator) Next(ctx context.Context, tx usecase.Transaction, prefix, dateSegment, ownerID string, width int) string {
	now := time.Now().UTC()

	ptx := pgxTx(tx)

	var lastCode string
	err := ptx.QueryRow(ctx, selectLastCode, ownerID, prefix, dateSegment).Scan(&lastCode)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		g.logger.Warn().
			Err(err).
			Str("prefix", prefix).
			Msg("code sequence lookup failed, using fallback")
		return domain.FallbackCode(prefix, dateSegment, now)
	}

	next, err := domain.NextSequence(lastCode, prefix, dateSegment, width)
	if err != nil {
		g.logger.Warn().
			Err(err).
			Str("prefix", prefix).
			Str("last_code", lastCode).
			Msg("code sequence parse failed, using fallback")
		return domain.FallbackCode(prefix, dateSegment, now)
	}

	if _, err := ptx.Exec(ctx, upsertLastCode, ownerID, prefix, dateSegment, next, now); err != nil {
		g.logger.Warn().
			Err(err).
			Str("prefix", prefix).
			Msg("code sequence update failed, using fallback")
		return domain.FallbackCode(prefix, dateSegment, now)
	}

	return next
}
