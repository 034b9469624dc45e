package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Payment methods accepted at checkout. Comparison is case-insensitive.
const (
	PaymentCash   = "cash"
	PaymentCredit = "credit"
	PaymentGCash  = "gcash"
)

// Transaction is a completed point-of-sale purchase. Rows are never mutated
// after checkout.
type Transaction struct {
	BaseModel
	Timestamp            time.Time           `gorm:"not null;index" json:"timestamp"`
	UserID               uint                `gorm:"not null;index" json:"user_id"`
	User                 *User               `json:"user,omitempty"`
	MemberID             *uint               `gorm:"index" json:"member_id"`
	Member               *Member             `json:"member,omitempty"`
	TotalAmount          decimal.Decimal     `gorm:"type:decimal(10,2);not null" json:"total_amount"`
	PaymentMethod        string              `gorm:"size:50" json:"payment_method"`
	ManualDiscountAmount decimal.NullDecimal `gorm:"type:decimal(10,2)" json:"manual_discount_amount"`
	Items                []TransactionItem   `json:"items,omitempty"`
}

type TransactionItem struct {
	BaseModel
	TransactionID         uint            `gorm:"not null;index" json:"transaction_id"`
	ProductID             uint            `gorm:"not null;index" json:"product_id"`
	Product               *Product        `json:"product,omitempty"`
	Quantity              int             `gorm:"not null" json:"quantity"`
	PriceAtTimeOfSale     decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price_at_time_of_sale"`
	BasePriceAtTimeOfSale decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"base_price_at_time_of_sale"`
	Profit                decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"profit"`
}

// Reprice recomputes line profits and the transaction total from the price
// snapshots on the items. The manual discount comes off the gross total,
// which never drops below zero.
func (t *Transaction) Reprice() {
	total := decimal.Zero
	for i := range t.Items {
		item := &t.Items[i]
		qty := decimal.NewFromInt(int64(item.Quantity))
		item.Profit = item.PriceAtTimeOfSale.Sub(item.BasePriceAtTimeOfSale).Mul(qty)
		total = total.Add(item.PriceAtTimeOfSale.Mul(qty))
	}

	if t.ManualDiscountAmount.Valid {
		total = total.Sub(t.ManualDiscountAmount.Decimal)
	}
	if total.IsNegative() {
		total = decimal.Zero
	}
	t.TotalAmount = total
}

// IsCredit reports whether the purchase was charged to the member's credit.
func (t Transaction) IsCredit() bool {
	return strings.ToLower(t.PaymentMethod) == PaymentCredit
}
