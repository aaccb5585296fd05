package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerStatus is the lifecycle state of a daily ledger row.
type LedgerStatus string

const (
	StatusOpen   LedgerStatus = "OPEN"
	StatusClosed LedgerStatus = "CLOSED"
)

// EntityType identifies which ledger table a row belongs to.
type EntityType string

const (
	EntityPanel EntityType = "panel"
	EntityBank  EntityType = "bank_account"
)

// BalanceEpsilon is the rounding tolerance when comparing a stored
// closing balance against the recomputed one.
var BalanceEpsilon = decimal.RequireFromString("0.01")

// PanelLedger is one panel's balance snapshot for a single calendar day.
// Deposits and bonuses hand points to players and drain panel inventory;
// withdrawals and top-ups replenish it.
type PanelLedger struct {
	ID               string
	PanelID          string
	LedgerDate       time.Time
	OpeningBalance   decimal.Decimal
	ClosingBalance   decimal.Decimal
	PointsBalance    decimal.Decimal
	TotalDeposits    decimal.Decimal
	TotalWithdrawals decimal.Decimal
	BonusPoints      decimal.Decimal
	TopUp            decimal.Decimal
	ProfitLoss       decimal.Decimal
	ROI              decimal.Decimal
	Utilization      decimal.Decimal
	Status           LedgerStatus
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// ExpectedClosing recomputes the closing balance from the day's counters:
// closing = opening - (deposits + bonus) + withdrawals + topUp.
func (l *PanelLedger) ExpectedClosing() decimal.Decimal {
	return l.OpeningBalance.
		Sub(l.TotalDeposits.Add(l.BonusPoints)).
		Add(l.TotalWithdrawals).
		Add(l.TopUp)
}

// IsBalanced reports whether the stored closing balance matches the
// counters within BalanceEpsilon.
func (l *PanelLedger) IsBalanced() bool {
	return l.ExpectedClosing().Sub(l.ClosingBalance).Abs().LessThanOrEqual(BalanceEpsilon)
}

// ApplyDeposit records a player deposit with optional bonus points.
// Both come out of panel inventory.
func (l *PanelLedger) ApplyDeposit(amount, bonus decimal.Decimal) {
	total := amount.Add(bonus)
	l.TotalDeposits = l.TotalDeposits.Add(amount)
	l.BonusPoints = l.BonusPoints.Add(bonus)
	l.ClosingBalance = l.ClosingBalance.Sub(total)
	l.PointsBalance = l.PointsBalance.Sub(total)
}

// ApplyWithdrawal records a player cash-out returning points to the panel.
func (l *PanelLedger) ApplyWithdrawal(amount decimal.Decimal) {
	l.TotalWithdrawals = l.TotalWithdrawals.Add(amount)
	l.ClosingBalance = l.ClosingBalance.Add(amount)
	l.PointsBalance = l.PointsBalance.Add(amount)
}

// ApplyTopUp records an inventory replenishment with no bank counterpart.
func (l *PanelLedger) ApplyTopUp(points decimal.Decimal) {
	l.TopUp = l.TopUp.Add(points)
	l.ClosingBalance = l.ClosingBalance.Add(points)
	l.PointsBalance = l.PointsBalance.Add(points)
}

// ApplyBonus records promotional points granted out of panel inventory.
func (l *PanelLedger) ApplyBonus(points decimal.Decimal) {
	l.BonusPoints = l.BonusPoints.Add(points)
	l.ClosingBalance = l.ClosingBalance.Sub(points)
	l.PointsBalance = l.PointsBalance.Sub(points)
}

// BankLedger is one bank account's cash snapshot for a single calendar day.
type BankLedger struct {
	ID               string
	BankAccountID    string
	LedgerDate       time.Time
	OpeningBalance   decimal.Decimal
	ClosingBalance   decimal.Decimal
	TotalDeposits    decimal.Decimal
	TotalWithdrawals decimal.Decimal
	TotalCharges     decimal.Decimal
	ProfitLoss       decimal.Decimal
	ROI              decimal.Decimal
	Status           LedgerStatus
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// ExpectedClosing recomputes the closing balance from the day's counters:
// closing = opening + deposits - withdrawals. Charges are tracked
// separately and only affect NetBalance.
func (l *BankLedger) ExpectedClosing() decimal.Decimal {
	return l.OpeningBalance.
		Add(l.TotalDeposits).
		Sub(l.TotalWithdrawals)
}

// IsBalanced reports whether the stored closing balance matches the
// counters within BalanceEpsilon.
func (l *BankLedger) IsBalanced() bool {
	return l.ExpectedClosing().Sub(l.ClosingBalance).Abs().LessThanOrEqual(BalanceEpsilon)
}

// NetBalance is the closing balance net of accumulated charges.
func (l *BankLedger) NetBalance() decimal.Decimal {
	return l.ClosingBalance.Sub(l.TotalCharges)
}

// ApplyDeposit records cash received from a player.
func (l *BankLedger) ApplyDeposit(amount decimal.Decimal) {
	l.TotalDeposits = l.TotalDeposits.Add(amount)
	l.ClosingBalance = l.ClosingBalance.Add(amount)
}

// ApplyWithdrawal records cash paid out to a player plus any processing charge.
func (l *BankLedger) ApplyWithdrawal(amount, charge decimal.Decimal) {
	l.TotalWithdrawals = l.TotalWithdrawals.Add(amount)
	l.TotalCharges = l.TotalCharges.Add(charge)
	l.ClosingBalance = l.ClosingBalance.Sub(amount)
}
