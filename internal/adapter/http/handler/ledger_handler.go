package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/exchops/panelledger/internal/adapter/http/dto"
	"github.com/exchops/panelledger/internal/domain"
	"github.com/exchops/panelledger/internal/usecase"
)

// LedgerQueryService defines the read and lock operations needed by
// LedgerHandler.
type LedgerQueryService interface {
	GetPanelLedger(ctx context.Context, panelID string, date time.Time) (*domain.PanelLedger, error)
	GetBankLedger(ctx context.Context, bankAccountID string, date time.Time) (*domain.BankLedger, error)
	ListPanelLedgers(ctx context.Context, filter usecase.LedgerFilter) ([]*domain.PanelLedger, error)
	ListBankLedgers(ctx context.Context, filter usecase.LedgerFilter) ([]*domain.BankLedger, error)
	LockLedger(ctx context.Context, entityType domain.EntityType, entityID string, date time.Time, lock bool, actorID string) error
}

// ValidationService defines the integrity checks needed by LedgerHandler.
type ValidationService interface {
	CanModify(ctx context.Context, entityType domain.EntityType, entityID string, date time.Time) (usecase.ModifyCheck, error)
	ValidateBalanceCalculation(ctx context.Context, entityType domain.EntityType, entityID string, date time.Time) (usecase.BalanceCheck, error)
	ValidateAllLedgers(ctx context.Context, date time.Time) (*usecase.ValidationReport, error)
}

// CalculationService defines the metric recomputation needed by
// LedgerHandler.
type CalculationService interface {
	RecalculatePanel(ctx context.Context, panelID string, date time.Time) (*domain.PanelLedger, error)
	RecalculateBank(ctx context.Context, bankAccountID string, date time.Time) (*domain.BankLedger, error)
	RecalculateAll(ctx context.Context, date time.Time) (*usecase.RecalculationSummary, error)
}

// SnapshotService serves the cached daily ledger aggregate.
type SnapshotService interface {
	Get(ctx context.Context) (*usecase.LedgerSnapshot, error)
}

// LedgerHandler handles daily ledger HTTP requests: lookups, listings,
// lock management, integrity checks and metric recalculation.
type LedgerHandler struct {
	queryUC      LedgerQueryService
	validationUC ValidationService
	calcUC       CalculationService
	snapshotUC   SnapshotService
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(
	queryUC LedgerQueryService,
	validationUC ValidationService,
	calcUC CalculationService,
	snapshotUC SnapshotService,
) *LedgerHandler {
	return &LedgerHandler{
		queryUC:      queryUC,
		validationUC: validationUC,
		calcUC:       calcUC,
		snapshotUC:   snapshotUC,
	}
}

// Snapshot returns the cached aggregate over today's ledger rows.
func (h *LedgerHandler) Snapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := h.snapshotUC.Get(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load ledger snapshot", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, snap)
}

// GetPanel returns a panel's ledger row for a date (today by default).
func (h *LedgerHandler) GetPanel(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing panel ID", "")
		return
	}

	date, err := parseDateQuery(r, "date")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date", err.Error())
		return
	}

	row, err := h.queryUC.GetPanelLedger(r.Context(), id, date)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to get panel ledger", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.PanelLedgerFromDomain(row))
}

// GetBank returns a bank account's ledger row for a date (today by default).
func (h *LedgerHandler) GetBank(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing bank account ID", "")
		return
	}

	date, err := parseDateQuery(r, "date")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date", err.Error())
		return
	}

	row, err := h.queryUC.GetBankLedger(r.Context(), id, date)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to get bank ledger", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.BankLedgerFromDomain(row))
}

// ListPanels lists panel ledger rows matching the query filters.
func (h *LedgerHandler) ListPanels(w http.ResponseWriter, r *http.Request) {
	filter, err := h.ledgerFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid filter", err.Error())
		return
	}

	rows, err := h.queryUC.ListPanelLedgers(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list panel ledgers", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.PanelLedgersFromDomain(rows))
}

// ListBanks lists bank ledger rows matching the query filters.
func (h *LedgerHandler) ListBanks(w http.ResponseWriter, r *http.Request) {
	filter, err := h.ledgerFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid filter", err.Error())
		return
	}

	rows, err := h.queryUC.ListBankLedgers(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list bank ledgers", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.BankLedgersFromDomain(rows))
}

func (h *LedgerHandler) ledgerFilter(r *http.Request) (usecase.LedgerFilter, error) {
	filter := usecase.LedgerFilter{
		EntityID: r.URL.Query().Get("entity_id"),
		Status:   domain.LedgerStatus(r.URL.Query().Get("status")),
		Limit:    parseIntQuery(r, "limit", 50),
		Offset:   parseIntQuery(r, "offset", 0),
	}

	from, err := parseDateQuery(r, "from")
	if err != nil {
		return usecase.LedgerFilter{}, err
	}
	if !from.IsZero() {
		filter.DateFrom = &from
	}

	to, err := parseDateQuery(r, "to")
	if err != nil {
		return usecase.LedgerFilter{}, err
	}
	if !to.IsZero() {
		filter.DateTo = &to
	}

	return filter, nil
}

// Lock locks or unlocks a daily ledger row.
func (h *LedgerHandler) Lock(w http.ResponseWriter, r *http.Request) {
	var req dto.LockLedgerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	date, err := parseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date", err.Error())
		return
	}

	err = h.queryUC.LockLedger(r.Context(), domain.EntityType(req.EntityType), req.EntityID, date, req.Lock, actorID(r))
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to change ledger lock", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"locked": req.Lock})
}

// CanModify reports whether a ledger row may be mutated.
func (h *LedgerHandler) CanModify(w http.ResponseWriter, r *http.Request) {
	entityType := domain.EntityType(r.URL.Query().Get("entity_type"))
	entityID := r.URL.Query().Get("entity_id")
	if entityID == "" {
		writeError(w, http.StatusBadRequest, "missing entity_id", "")
		return
	}

	date, err := parseDateQuery(r, "date")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date", err.Error())
		return
	}

	if date.IsZero() {
		date = time.Now()
	}

	check, err := h.validationUC.CanModify(r.Context(), entityType, entityID, date)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to check ledger", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.ModifyCheckResponse{Allowed: check.Allowed, Reason: check.Reason})
}

// Validate runs an integrity check. With an entity it compares the
// stored closing balance against the recomputed one; without, it sweeps
// every row for the date.
func (h *LedgerHandler) Validate(w http.ResponseWriter, r *http.Request) {
	var req dto.ValidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	date, err := parseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date", err.Error())
		return
	}
	if date.IsZero() {
		date = time.Now()
	}

	if req.EntityID != "" {
		check, err := h.validationUC.ValidateBalanceCalculation(r.Context(), domain.EntityType(req.EntityType), req.EntityID, date)
		if err != nil {
			status := mapDomainError(err)
			writeError(w, status, "failed to validate ledger", err.Error())

			return
		}

		writeJSON(w, http.StatusOK, dto.BalanceCheckResponse{
			Valid:    check.Valid,
			Expected: check.Expected,
			Actual:   check.Actual,
		})

		return
	}

	report, err := h.validationUC.ValidateAllLedgers(r.Context(), date)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to validate ledgers", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ValidationReportFromUseCase(report))
}

// Recalculate recomputes derived metrics. With an entity it targets one
// row; without, it recomputes every open row for the date.
func (h *LedgerHandler) Recalculate(w http.ResponseWriter, r *http.Request) {
	var req dto.RecalculateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	date, err := parseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date", err.Error())
		return
	}
	if date.IsZero() {
		date = time.Now()
	}

	switch domain.EntityType(req.EntityType) {
	case domain.EntityPanel:
		row, err := h.calcUC.RecalculatePanel(r.Context(), req.EntityID, date)
		if err != nil {
			status := mapDomainError(err)
			writeError(w, status, "failed to recalculate panel ledger", err.Error())

			return
		}

		writeJSON(w, http.StatusOK, dto.PanelLedgerFromDomain(row))
	case domain.EntityBank:
		row, err := h.calcUC.RecalculateBank(r.Context(), req.EntityID, date)
		if err != nil {
			status := mapDomainError(err)
			writeError(w, status, "failed to recalculate bank ledger", err.Error())

			return
		}

		writeJSON(w, http.StatusOK, dto.BankLedgerFromDomain(row))
	default:
		summary, err := h.calcUC.RecalculateAll(r.Context(), date)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to recalculate ledgers", err.Error())
			return
		}

		writeJSON(w, http.StatusOK, dto.RecalculationSummaryFromUseCase(summary))
	}
}
