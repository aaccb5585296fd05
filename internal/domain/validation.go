package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Validation constants
const (
	MaxTransactionAmount = "1000000000" // 1 billion points/currency units
	// FutureDateTolerance allows a transaction dated one day ahead to
	// absorb client clock skew around midnight.
	FutureDateTolerance = 24 * time.Hour
)

// NormalizeDate truncates a timestamp to its calendar day in the given
// location. The result is midnight UTC of that day so dates compare and
// store uniformly.
func NormalizeDate(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}

	local := t.In(loc)

	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
}

// ValidateAmount checks that a transaction amount is positive and within bounds.
func ValidateAmount(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	maxAmount, _ := decimal.NewFromString(MaxTransactionAmount)
	if amount.GreaterThan(maxAmount) {
		return fmt.Errorf("%w: maximum amount is %s", ErrInvalidAmount, MaxTransactionAmount)
	}

	return nil
}

// ValidateLedgerDate rejects dates more than one day in the future.
func ValidateLedgerDate(date, today time.Time) error {
	if date.After(today.Add(FutureDateTolerance)) {
		return fmt.Errorf("%w: %s", ErrLedgerDateTooFar, date.Format("2006-01-02"))
	}

	return nil
}

// ValidateEntityType checks that a string names a ledgered entity kind.
func ValidateEntityType(entityType EntityType) error {
	switch entityType {
	case EntityPanel, EntityBank:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownEntityType, entityType)
	}
}
