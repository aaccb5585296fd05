package domain

import "errors"

var (
	// Ledger errors
	ErrLedgerNotFound      = errors.New("ledger row not found")
	ErrLedgerClosed        = errors.New("ledger is closed and cannot be modified")
	ErrLedgerInPast        = errors.New("ledger date is in the past")
	ErrLedgerDateTooFar    = errors.New("ledger date is too far in the future")
	ErrLedgerAlreadyClosed = errors.New("ledger rows for date are already closed")

	// Transaction errors
	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrInvalidCharge       = errors.New("charge must not be negative")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrInsufficientPoints  = errors.New("insufficient panel points")
	ErrDuplicateReference  = errors.New("reference already processed")
	ErrUnknownEntityType   = errors.New("unknown entity type")

	// Master data errors
	ErrPanelNotFound       = errors.New("panel not found")
	ErrBankAccountNotFound = errors.New("bank account not found")
	ErrPlayerNotFound      = errors.New("player not found")
)
