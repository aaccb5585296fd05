package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Panel is a point-balance account representing betting-exchange inventory.
type Panel struct {
	ID        string
	Name      string
	Active    bool
	CreatedAt time.Time
}

// BankAccount is a cash account used to settle deposits and withdrawals.
type BankAccount struct {
	ID        string
	Name      string
	Active    bool
	CreatedAt time.Time
}

// Player carries the live tracked balance used for win inference at
// cash-out time. It is not a ledgered entity.
type Player struct {
	ID        string
	Name      string
	Balance   decimal.Decimal
	UpdatedAt time.Time
}
