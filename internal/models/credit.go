package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreditType classifies a ledger entry.
type CreditType string

const (
	// CreditEarned lowers the amount owed (payment received, credit earned).
	CreditEarned CreditType = "Earned"
	// CreditSpent raises the amount owed (purchase on credit).
	CreditSpent CreditType = "Spent"
	// CreditAdjustment applies its signed amount as given.
	CreditAdjustment CreditType = "Adjustment"
)

// Valid reports whether t is one of the known credit types.
func (t CreditType) Valid() bool {
	switch t {
	case CreditEarned, CreditSpent, CreditAdjustment:
		return true
	}
	return false
}

// Delta returns the signed change the entry applies to the member balance.
func (t CreditType) Delta(amount decimal.Decimal) decimal.Decimal {
	switch t {
	case CreditEarned:
		return amount.Abs().Neg()
	case CreditSpent:
		return amount.Abs()
	default:
		return amount
	}
}

// Credit is an append-only ledger entry against a member's balance.
type Credit struct {
	BaseModel
	MemberID             uint            `gorm:"not null;index" json:"member_id"`
	Amount               decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount"`
	Type                 CreditType      `gorm:"type:varchar(20);not null" json:"type"`
	RelatedTransactionID *uint           `json:"related_transaction_id"`
	Notes                string          `gorm:"type:text" json:"notes"`
	Timestamp            time.Time       `gorm:"not null;index" json:"timestamp"`
}
