package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Direction is the side of a transaction log entry.
type Direction string

const (
	DirectionCredit Direction = "credit"
	DirectionDebit  Direction = "debit"
)

// ReferenceType classifies what a transaction log entry settles.
type ReferenceType string

const (
	ReferenceDeposit    ReferenceType = "deposit"
	ReferenceWithdrawal ReferenceType = "withdrawal"
	ReferenceBonus      ReferenceType = "bonus"
	ReferenceTopUp      ReferenceType = "topup"
	ReferenceCharge     ReferenceType = "charge"
	ReferenceTransfer   ReferenceType = "transfer"
)

// TransactionLogEntry is one side of a financial event. The log is
// append-only: entries are never updated or deleted. Deposits and
// withdrawals produce a panel/bank pair with opposite directions and
// equal amounts; top-ups and bonuses produce a single panel entry.
type TransactionLogEntry struct {
	ID                string
	TransactionDate   time.Time
	LedgerDate        time.Time
	EntityType        EntityType
	EntityID          string
	Direction         Direction
	Amount            decimal.Decimal
	ReferenceType     ReferenceType
	ReferenceID       string
	RelatedEntityType EntityType
	RelatedEntityID   string
	Description       string
	CreatedAt         time.Time
}

// PlayerTransactionType classifies a player balance movement.
type PlayerTransactionType string

const (
	PlayerTxDeposit    PlayerTransactionType = "deposit"
	PlayerTxWithdrawal PlayerTransactionType = "withdrawal"
	PlayerTxWin        PlayerTransactionType = "win"
	PlayerTxBonus      PlayerTransactionType = "bonus"
)

// PlayerTransaction is an append-only record of a player balance change,
// including Win entries synthesized when a withdrawal exceeds the
// tracked balance.
type PlayerTransaction struct {
	ID            string
	PlayerID      string
	Type          PlayerTransactionType
	Amount        decimal.Decimal
	BalanceBefore decimal.Decimal
	BalanceAfter  decimal.Decimal
	ReferenceID   string
	Description   string
	CreatedAt     time.Time
}
