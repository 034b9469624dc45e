package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Member statuses.
const (
	MemberStatusActive    = "active"
	MemberStatusInactive  = "inactive"
	MemberStatusSuspended = "suspended"
)

// Member is a cooperative account holder. CreditBalance caches the ledger
// total and is written only through the credit ledger write path.
type Member struct {
	BaseModel
	Name          string          `gorm:"size:255;not null" json:"name"`
	Email         string          `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Phone         *string         `gorm:"size:50" json:"phone"`
	Address       *string         `gorm:"type:text" json:"address"`
	CreditBalance decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"credit_balance"`
	CreditLimit   decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"credit_limit"`
	UserID        *uint           `gorm:"index" json:"user_id"`
	User          *User           `json:"user,omitempty"`
	Status        string          `gorm:"size:50;not null;default:active" json:"status"`
	ProfileImage  *string         `gorm:"type:text" json:"profile_image,omitempty"`
}

// MemberActivity is an audit trail row for member-facing events.
type MemberActivity struct {
	BaseModel
	MemberID             uint                `gorm:"not null;index" json:"member_id"`
	Action               string              `gorm:"size:255;not null" json:"action"`
	Amount               decimal.NullDecimal `gorm:"type:decimal(10,2)" json:"amount"`
	Timestamp            time.Time           `gorm:"not null" json:"timestamp"`
	RelatedTransactionID *uint               `json:"related_transaction_id"`
	Description          string              `gorm:"type:text" json:"description"`
}

// TokenTypePasswordReset marks a password reset token.
const TokenTypePasswordReset = "password-reset"

// VerificationToken is a one-time token such as a password reset link.
type VerificationToken struct {
	BaseModel
	Token     string     `gorm:"size:255;uniqueIndex;not null" json:"-"`
	Type      string     `gorm:"size:50;not null" json:"type"`
	MemberID  *uint      `gorm:"index" json:"member_id"`
	UserID    *uint      `gorm:"index" json:"user_id"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	UsedAt    *time.Time `json:"used_at"`
}
