package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/exchops/panelledger/internal/adapter/http/dto"
	"github.com/exchops/panelledger/internal/domain"
	"github.com/exchops/panelledger/internal/usecase"
)

// TransactionService defines the behavior needed by TransactionHandler.
type TransactionService interface {
	ProcessDeposit(ctx context.Context, input usecase.DepositInput) (*usecase.TransactionResult, error)
	ProcessWithdrawal(ctx context.Context, input usecase.WithdrawalInput) (*usecase.TransactionResult, error)
	ProcessTopUp(ctx context.Context, input usecase.TopUpInput) (*usecase.TransactionResult, error)
	ProcessBonus(ctx context.Context, input usecase.BonusInput) (*usecase.TransactionResult, error)
}

// TransactionQueryService lists transaction log entries.
type TransactionQueryService interface {
	GetTransactions(ctx context.Context, filter usecase.TransactionFilter) ([]*domain.TransactionLogEntry, error)
}

// TransactionHandler handles transaction-related HTTP requests.
type TransactionHandler struct {
	txUC    TransactionService
	queryUC TransactionQueryService
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(txUC TransactionService, queryUC TransactionQueryService) *TransactionHandler {
	return &TransactionHandler{txUC: txUC, queryUC: queryUC}
}

// Deposit processes a player deposit.
func (h *TransactionHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	var req dto.DepositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	input, err := req.ToUseCaseInput(actorID(r))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	result, err := h.txUC.ProcessDeposit(r.Context(), input)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to process deposit", err.Error())

		return
	}

	writeJSON(w, http.StatusCreated, dto.TransactionResultFromUseCase(result))
}

// Withdrawal processes a player cash-out.
func (h *TransactionHandler) Withdrawal(w http.ResponseWriter, r *http.Request) {
	var req dto.WithdrawalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	input, err := req.ToUseCaseInput(actorID(r))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	result, err := h.txUC.ProcessWithdrawal(r.Context(), input)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to process withdrawal", err.Error())

		return
	}

	writeJSON(w, http.StatusCreated, dto.TransactionResultFromUseCase(result))
}

// TopUp processes a panel inventory replenishment.
func (h *TransactionHandler) TopUp(w http.ResponseWriter, r *http.Request) {
	var req dto.TopUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	input, err := req.ToUseCaseInput(actorID(r))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	result, err := h.txUC.ProcessTopUp(r.Context(), input)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to process top-up", err.Error())

		return
	}

	writeJSON(w, http.StatusCreated, dto.TransactionResultFromUseCase(result))
}

// Bonus processes a promotional point grant.
func (h *TransactionHandler) Bonus(w http.ResponseWriter, r *http.Request) {
	var req dto.BonusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	input, err := req.ToUseCaseInput(actorID(r))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request", err.Error())
		return
	}

	result, err := h.txUC.ProcessBonus(r.Context(), input)
	if err != nil {
		status := mapDomainError(err)
		writeError(w, status, "failed to process bonus", err.Error())

		return
	}

	writeJSON(w, http.StatusCreated, dto.TransactionResultFromUseCase(result))
}

// List returns transaction log entries matching the query filters.
func (h *TransactionHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := usecase.TransactionFilter{
		EntityType:    domain.EntityType(r.URL.Query().Get("entity_type")),
		EntityID:      r.URL.Query().Get("entity_id"),
		ReferenceType: domain.ReferenceType(r.URL.Query().Get("reference_type")),
		Limit:         parseIntQuery(r, "limit", 50),
		Offset:        parseIntQuery(r, "offset", 0),
	}

	if from, err := parseDateQuery(r, "from"); err != nil {
		writeError(w, http.StatusBadRequest, "invalid from date", err.Error())
		return
	} else if !from.IsZero() {
		filter.DateFrom = &from
	}

	if to, err := parseDateQuery(r, "to"); err != nil {
		writeError(w, http.StatusBadRequest, "invalid to date", err.Error())
		return
	} else if !to.IsZero() {
		filter.DateTo = &to
	}

	entries, err := h.queryUC.GetTransactions(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list transactions", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionEntriesFromDomain(entries))
}
