package dto

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/exchops/panelledger/internal/usecase"
)

const dateLayout = "2006-01-02"

// parseDate parses an optional YYYY-MM-DD date. An empty string means
// "today" and is left to the use case to resolve.
func parseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}

	date, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", value)
	}

	return date, nil
}

func parseMode(value string) (usecase.ApplyMode, error) {
	switch value {
	case "":
		return "", nil
	case string(usecase.ApplyLive):
		return usecase.ApplyLive, nil
	case string(usecase.ApplyHistorical):
		return usecase.ApplyHistorical, nil
	default:
		return "", fmt.Errorf("invalid mode %q, expected live or historical", value)
	}
}

// DepositRequest represents a player deposit settled between a panel
// and a bank account.
type DepositRequest struct {
	PanelID       string          `json:"panel_id"`
	BankAccountID string          `json:"bank_account_id"`
	PlayerID      string          `json:"player_id"`
	Amount        decimal.Decimal `json:"amount"`
	BonusPoints   decimal.Decimal `json:"bonus_points"`
	ReferenceID   string          `json:"reference_id"`
	Date          string          `json:"date,omitempty"`
	Mode          string          `json:"mode,omitempty"`
	Description   string          `json:"description,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *DepositRequest) ToUseCaseInput(actorID string) (usecase.DepositInput, error) {
	date, err := parseDate(r.Date)
	if err != nil {
		return usecase.DepositInput{}, err
	}

	mode, err := parseMode(r.Mode)
	if err != nil {
		return usecase.DepositInput{}, err
	}

	return usecase.DepositInput{
		PanelID:       r.PanelID,
		BankAccountID: r.BankAccountID,
		PlayerID:      r.PlayerID,
		Amount:        r.Amount,
		BonusPoints:   r.BonusPoints,
		ReferenceID:   r.ReferenceID,
		Date:          date,
		Mode:          mode,
		ActorID:       actorID,
		Description:   r.Description,
	}, nil
}

// WithdrawalRequest represents a player cash-out settled between a
// panel and a bank account.
type WithdrawalRequest struct {
	PanelID       string          `json:"panel_id"`
	BankAccountID string          `json:"bank_account_id"`
	PlayerID      string          `json:"player_id"`
	Amount        decimal.Decimal `json:"amount"`
	Charge        decimal.Decimal `json:"charge"`
	ReferenceID   string          `json:"reference_id"`
	Date          string          `json:"date,omitempty"`
	Mode          string          `json:"mode,omitempty"`
	Description   string          `json:"description,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *WithdrawalRequest) ToUseCaseInput(actorID string) (usecase.WithdrawalInput, error) {
	date, err := parseDate(r.Date)
	if err != nil {
		return usecase.WithdrawalInput{}, err
	}

	mode, err := parseMode(r.Mode)
	if err != nil {
		return usecase.WithdrawalInput{}, err
	}

	return usecase.WithdrawalInput{
		PanelID:       r.PanelID,
		BankAccountID: r.BankAccountID,
		PlayerID:      r.PlayerID,
		Amount:        r.Amount,
		Charge:        r.Charge,
		ReferenceID:   r.ReferenceID,
		Date:          date,
		Mode:          mode,
		ActorID:       actorID,
		Description:   r.Description,
	}, nil
}

// TopUpRequest represents a panel inventory replenishment.
type TopUpRequest struct {
	PanelID string          `json:"panel_id"`
	Points  decimal.Decimal `json:"points"`
	Date    string          `json:"date,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *TopUpRequest) ToUseCaseInput(actorID string) (usecase.TopUpInput, error) {
	date, err := parseDate(r.Date)
	if err != nil {
		return usecase.TopUpInput{}, err
	}

	return usecase.TopUpInput{
		PanelID: r.PanelID,
		Points:  r.Points,
		Date:    date,
		ActorID: actorID,
	}, nil
}

// BonusRequest represents a promotional point grant to a player.
type BonusRequest struct {
	PanelID     string          `json:"panel_id"`
	PlayerID    string          `json:"player_id"`
	Points      decimal.Decimal `json:"points"`
	ReferenceID string          `json:"reference_id"`
	Date        string          `json:"date,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *BonusRequest) ToUseCaseInput(actorID string) (usecase.BonusInput, error) {
	date, err := parseDate(r.Date)
	if err != nil {
		return usecase.BonusInput{}, err
	}

	return usecase.BonusInput{
		PanelID:     r.PanelID,
		PlayerID:    r.PlayerID,
		Points:      r.Points,
		ReferenceID: r.ReferenceID,
		Date:        date,
		ActorID:     actorID,
	}, nil
}

// LockLedgerRequest represents a request to lock or unlock a daily
// ledger row.
type LockLedgerRequest struct {
	EntityType string `json:"entity_type"`
	EntityID   string `json:"entity_id"`
	Date       string `json:"date,omitempty"`
	Lock       bool   `json:"lock"`
}

// ResetRequest represents a reset trigger. An empty date runs the
// regular daily reset for today.
type ResetRequest struct {
	Date string `json:"date,omitempty"`
}

// RecalculateRequest represents a metrics recalculation request. An
// empty entity type recalculates every open row for the date.
type RecalculateRequest struct {
	EntityType string `json:"entity_type,omitempty"`
	EntityID   string `json:"entity_id,omitempty"`
	Date       string `json:"date,omitempty"`
}

// ValidateRequest represents an integrity check request. An empty
// entity type runs the full-ledger sweep for the date.
type ValidateRequest struct {
	EntityType string `json:"entity_type,omitempty"`
	EntityID   string `json:"entity_id,omitempty"`
	Date       string `json:"date,omitempty"`
}
