package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/exchops/panelledger/internal/adapter/http/dto"
	"github.com/exchops/panelledger/internal/domain"
)

// ActorIDHeader carries the operator identity for audit trails.
const ActorIDHeader = "X-Actor-ID"

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, message, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(dto.ErrorResponse{
		Error:   message,
		Message: details,
	})
}

// mapDomainError maps domain errors to HTTP status codes.
func mapDomainError(err error) int {
	switch {
	case errors.Is(err, domain.ErrLedgerNotFound),
		errors.Is(err, domain.ErrPanelNotFound),
		errors.Is(err, domain.ErrBankAccountNotFound),
		errors.Is(err, domain.ErrPlayerNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrDuplicateReference),
		errors.Is(err, domain.ErrLedgerAlreadyClosed):
		return http.StatusConflict
	case errors.Is(err, domain.ErrLedgerClosed),
		errors.Is(err, domain.ErrLedgerInPast):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrLedgerDateTooFar),
		errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrInvalidCharge),
		errors.Is(err, domain.ErrInsufficientBalance),
		errors.Is(err, domain.ErrInsufficientPoints),
		errors.Is(err, domain.ErrUnknownEntityType):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// actorID extracts the operator identity from the request headers.
func actorID(r *http.Request) string {
	return r.Header.Get(ActorIDHeader)
}

// parseIntQuery parses an integer query parameter with a default value.
func parseIntQuery(r *http.Request, key string, defaultValue int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}
	return i
}

// parseDateQuery parses a YYYY-MM-DD query parameter. A missing value
// yields the zero time, which downstream code resolves to today.
func parseDateQuery(r *http.Request, key string) (time.Time, error) {
	return parseDate(r.URL.Query().Get(key))
}

// parseDate parses an optional YYYY-MM-DD body field.
func parseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	return time.Parse("2006-01-02", value)
}
