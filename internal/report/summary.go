package report

import (
	"strings"
	"time"
)

const (
	dayDuration       = 24 * time.Hour
	newMemberWindow   = 90 * dayDuration
	recentPayWindow   = 30 * dayDuration
	highUtilization   = 0.8
	memberCustomerTag = "Member"
)

// SalesSummary aggregates a set of sales.
type SalesSummary struct {
	TotalAmount        float64      `json:"total_amount"`
	TotalItems         int          `json:"total_items"`
	Transactions       int          `json:"transactions"`
	MemberTransactions int          `json:"member_transactions"`
	WalkInTransactions int          `json:"walk_in_transactions"`
	MemberShare        Pct          `json:"member_share"`
	WalkInShare        Pct          `json:"walk_in_share"`
	MemberAmount       float64      `json:"member_amount"`
	MemberAmountShare  Pct          `json:"member_amount_share"`
	AverageValue       float64      `json:"average_value"`
	AverageItems       float64      `json:"average_items"`
	Highest            *SalesRecord `json:"highest,omitempty"`
}

// SummarizeSales computes totals, the member/walk-in split and the single
// highest sale (first one wins on ties).
func SummarizeSales(rows []SalesRecord) SalesSummary {
	var s SalesSummary
	s.Transactions = len(rows)

	for i := range rows {
		row := rows[i]
		s.TotalAmount += row.Amount
		s.TotalItems += row.Items

		if strings.Contains(row.Customer, memberCustomerTag) {
			s.MemberTransactions++
			s.MemberAmount += row.Amount
		}
		if row.Customer == CustomerWalkIn {
			s.WalkInTransactions++
		}
		if s.Highest == nil || row.Amount > s.Highest.Amount {
			s.Highest = &rows[i]
		}
	}

	s.MemberShare = Percent(float64(s.MemberTransactions), float64(s.Transactions))
	s.WalkInShare = Percent(float64(s.WalkInTransactions), float64(s.Transactions))
	s.MemberAmountShare = Percent(s.MemberAmount, s.TotalAmount)

	if s.Transactions > 0 {
		s.AverageValue = s.TotalAmount / float64(s.Transactions)
		s.AverageItems = float64(s.TotalItems) / float64(s.Transactions)
	}

	return s
}

// CategoryShare is one category's slice of the inventory.
type CategoryShare struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
	Share Pct    `json:"share"`
}

// InventorySummary aggregates a set of inventory records.
type InventorySummary struct {
	Products      int             `json:"products"`
	LowStock      int             `json:"low_stock"`
	LowStockShare Pct             `json:"low_stock_share"`
	BelowReorder  int             `json:"below_reorder"`
	Categories    []CategoryShare `json:"categories"`
}

// SummarizeInventory counts low stock items and the share of each category,
// categories in order of first appearance.
func SummarizeInventory(rows []InventoryRecord) InventorySummary {
	s := InventorySummary{Products: len(rows), Categories: []CategoryShare{}}
	index := map[string]int{}

	for _, row := range rows {
		if row.Status == StatusLowStock {
			s.LowStock++
		}
		if row.Stock < row.ReorderLevel {
			s.BelowReorder++
		}

		i, ok := index[row.Category]
		if !ok {
			i = len(s.Categories)
			index[row.Category] = i
			s.Categories = append(s.Categories, CategoryShare{Name: row.Category})
		}
		s.Categories[i].Count++
	}

	s.LowStockShare = Percent(float64(s.LowStock), float64(s.Products))
	for i := range s.Categories {
		s.Categories[i].Share = Percent(float64(s.Categories[i].Count), float64(s.Products))
	}

	return s
}

// MemberSummary aggregates member activity.
type MemberSummary struct {
	Members             int           `json:"members"`
	TotalPurchases      int           `json:"total_purchases"`
	TotalPoints         int           `json:"total_points"`
	NewMembers          int           `json:"new_members"`
	AverageDurationDays int           `json:"average_duration_days"`
	AveragePurchases    float64       `json:"average_purchases"`
	AveragePoints       float64       `json:"average_points"`
	MostActive          *MemberRecord `json:"most_active,omitempty"`
}

// SummarizeMembers computes totals relative to now. New members joined less
// than 90 days before now; the most active member is the first with the
// highest purchase count.
func SummarizeMembers(rows []MemberRecord, now time.Time) MemberSummary {
	s := MemberSummary{Members: len(rows)}
	var durationDays float64

	for i := range rows {
		row := rows[i]
		s.TotalPurchases += row.Purchases
		s.TotalPoints += row.Points

		age := now.Sub(row.JoinDate)
		if age < newMemberWindow {
			s.NewMembers++
		}
		durationDays += float64(age) / float64(dayDuration)

		if s.MostActive == nil || row.Purchases > s.MostActive.Purchases {
			s.MostActive = &rows[i]
		}
	}

	if s.Members > 0 {
		n := float64(s.Members)
		s.AverageDurationDays = RoundHalfUp(durationDays / n)
		s.AveragePurchases = float64(s.TotalPurchases) / n
		s.AveragePoints = float64(s.TotalPoints) / n
	}

	return s
}

// CreditSummary aggregates member credit positions.
type CreditSummary struct {
	Members         int     `json:"members"`
	TotalBalance    float64 `json:"total_balance"`
	TotalLimit      float64 `json:"total_limit"`
	Utilization     Pct     `json:"utilization"`
	OverEighty      int     `json:"over_eighty"`
	NearLimit       int     `json:"near_limit"`
	PaidInFull      int     `json:"paid_in_full"`
	PaidInFullShare Pct     `json:"paid_in_full_share"`
	AverageBalance  float64 `json:"average_balance"`
	RecentPayments  int     `json:"recent_payments"`
}

// SummarizeCredit computes overall utilization (sum of balances over sum of
// limits) and payment patterns relative to now. Records with a non-positive
// limit never count as over 80% utilized.
func SummarizeCredit(rows []CreditRecord, now time.Time) CreditSummary {
	s := CreditSummary{Members: len(rows)}

	for _, row := range rows {
		s.TotalBalance += row.Balance
		s.TotalLimit += row.Limit

		if row.Limit > 0 && row.Balance/row.Limit > highUtilization {
			s.OverEighty++
		}
		switch row.Status {
		case StatusNearLimit:
			s.NearLimit++
		case StatusPaidInFull:
			s.PaidInFull++
		}
		if !row.LastPayment.IsZero() && now.Sub(row.LastPayment) < recentPayWindow {
			s.RecentPayments++
		}
	}

	s.Utilization = Percent(s.TotalBalance, s.TotalLimit)
	s.PaidInFullShare = Percent(float64(s.PaidInFull), float64(s.Members))
	if s.Members > 0 {
		s.AverageBalance = s.TotalBalance / float64(s.Members)
	}

	return s
}

// CreditStatus labels a credit position: paid in full at zero balance, near
// limit from 90% utilization.
func CreditStatus(balance, limit float64) string {
	switch {
	case balance <= 0:
		return StatusPaidInFull
	case limit > 0 && balance/limit >= 0.9:
		return StatusNearLimit
	default:
		return StatusGoodStanding
	}
}
