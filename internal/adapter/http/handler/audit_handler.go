package handler

import (
	"context"
	"net/http"

	"github.com/exchops/panelledger/internal/adapter/http/dto"
	"github.com/exchops/panelledger/internal/domain"
)

// AuditService defines the behavior needed by AuditHandler.
type AuditService interface {
	List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error)
}

// AuditHandler handles audit trail HTTP requests.
type AuditHandler struct {
	auditUC AuditService
}

// NewAuditHandler creates a new AuditHandler.
func NewAuditHandler(auditUC AuditService) *AuditHandler {
	return &AuditHandler{auditUC: auditUC}
}

// List returns audit records matching the query filters.
func (h *AuditHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := domain.AuditFilter{
		ActorID:    r.URL.Query().Get("actor_id"),
		Operation:  r.URL.Query().Get("operation"),
		EntityType: r.URL.Query().Get("entity_type"),
		EntityID:   r.URL.Query().Get("entity_id"),
		Limit:      parseIntQuery(r, "limit", 50),
		Offset:     parseIntQuery(r, "offset", 0),
	}

	if from, err := parseDateQuery(r, "from"); err != nil {
		writeError(w, http.StatusBadRequest, "invalid from date", err.Error())
		return
	} else if !from.IsZero() {
		filter.StartDate = &from
	}

	if to, err := parseDateQuery(r, "to"); err != nil {
		writeError(w, http.StatusBadRequest, "invalid to date", err.Error())
		return
	} else if !to.IsZero() {
		filter.EndDate = &to
	}

	logs, err := h.auditUC.List(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list audit records", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.AuditLogsFromDomain(logs))
}
