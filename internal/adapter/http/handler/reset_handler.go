package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/exchops/panelledger/internal/adapter/http/dto"
	"github.com/exchops/panelledger/internal/usecase"
)

// ResetService defines the behavior needed by ResetHandler.
type ResetService interface {
	PerformDailyReset(ctx context.Context, actorID string) (*usecase.ResetSummary, error)
	ManualReset(ctx context.Context, targetDate time.Time, actorID string) (*usecase.ResetSummary, error)
	IsResetComplete(ctx context.Context, date time.Time) (*usecase.ResetStatus, error)
}

// ResetHandler handles daily reset HTTP requests.
type ResetHandler struct {
	resetUC ResetService
}

// NewResetHandler creates a new ResetHandler.
func NewResetHandler(resetUC ResetService) *ResetHandler {
	return &ResetHandler{resetUC: resetUC}
}

// Trigger runs a reset. With an explicit date it targets that day's
// rollover; without one it runs the regular daily reset for today.
func (h *ResetHandler) Trigger(w http.ResponseWriter, r *http.Request) {
	var req dto.ResetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	date, err := parseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date", err.Error())
		return
	}

	var summary *usecase.ResetSummary
	if date.IsZero() {
		summary, err = h.resetUC.PerformDailyReset(r.Context(), actorID(r))
	} else {
		summary, err = h.resetUC.ManualReset(r.Context(), date, actorID(r))
	}
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to run reset", err.Error())

		return
	}

	writeJSON(w, http.StatusOK, dto.ResetSummaryFromUseCase(summary))
}

// Status reports whether the rollover for a date has completed.
func (h *ResetHandler) Status(w http.ResponseWriter, r *http.Request) {
	date, err := parseDateQuery(r, "date")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date", err.Error())
		return
	}
	if date.IsZero() {
		date = time.Now()
	}

	status, err := h.resetUC.IsResetComplete(r.Context(), date)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to check reset status", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ResetStatusFromUseCase(status))
}
