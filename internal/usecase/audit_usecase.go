package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/exchops/panelledger/internal/domain"
)

// AuditUseCase records operation audit entries. Writes are fire-and-forget:
// a failed insert is logged to the operator console and never propagated,
// so audit completeness is best-effort while ledger correctness never
// depends on it.
type AuditUseCase struct {
	repo   AuditRepository
	instr  Instrumentation
	logger zerolog.Logger
	now    func() time.Time
}

// NewAuditUseCase creates a new AuditUseCase.
func NewAuditUseCase(repo AuditRepository, instr Instrumentation, logger zerolog.Logger) *AuditUseCase {
	if instr == nil {
		instr = NopInstrumentation{}
	}

	return &AuditUseCase{
		repo:   repo,
		instr:  instr,
		logger: logger,
		now:    time.Now,
	}
}

// Log writes one audit entry. The write is detached from the caller's
// cancellation so a rolled-back unit of work still gets its failure audited.
func (uc *AuditUseCase) Log(
	ctx context.Context,
	operation domain.AuditOperation,
	entityType domain.EntityType,
	entityID string,
	data domain.JSON,
	result domain.AuditResult,
	actorID string,
) {
	entry := &domain.AuditLog{
		Operation:  string(operation),
		EntityType: string(entityType),
		EntityID:   entityID,
		Data:       data,
		Result:     string(result),
		ActorID:    actorID,
		CreatedAt:  uc.now().UTC(),
	}

	if err := uc.repo.Create(context.WithoutCancel(ctx), entry); err != nil {
		uc.instr.AuditWriteFailed()
		uc.logger.Error().
			Err(err).
			Str("operation", string(operation)).
			Str("entity_type", string(entityType)).
			Str("entity_id", entityID).
			Msg("audit write failed, continuing")
	}
}

// List retrieves audit entries for operator review.
func (uc *AuditUseCase) List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error) {
	filter.Limit, filter.Offset = clampPagination(filter.Limit, filter.Offset)

	return uc.repo.List(ctx, filter)
}
