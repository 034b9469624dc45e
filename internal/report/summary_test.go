package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarizeSales(t *testing.T) {
	s := SummarizeSales(SampleDataset().Sales)

	assert.InDelta(t, 6669.80, s.TotalAmount, 1e-9)
	assert.Equal(t, 67, s.TotalItems)
	assert.Equal(t, 5, s.Transactions)
	assert.Equal(t, 3, s.MemberTransactions)
	assert.Equal(t, 2, s.WalkInTransactions)
	assert.Equal(t, Pct{Value: 60, Valid: true}, s.MemberShare)
	assert.Equal(t, Pct{Value: 40, Valid: true}, s.WalkInShare)
	assert.InDelta(t, 4454.05, s.MemberAmount, 1e-9)
	assert.Equal(t, Pct{Value: 67, Valid: true}, s.MemberAmountShare)
	assert.InDelta(t, 13.4, s.AverageItems, 1e-9)

	require.NotNil(t, s.Highest)
	assert.Equal(t, uint(5), s.Highest.ID)
}

func TestSummarizeSalesFirstHighestWins(t *testing.T) {
	rows := []SalesRecord{
		{ID: 1, Amount: 100, Customer: CustomerWalkIn},
		{ID: 2, Amount: 300, Customer: "Member #1"},
		{ID: 3, Amount: 300, Customer: "Member #2"},
	}

	s := SummarizeSales(rows)
	require.NotNil(t, s.Highest)
	assert.Equal(t, uint(2), s.Highest.ID)
}

func TestSummarizeSalesEmpty(t *testing.T) {
	s := SummarizeSales(nil)

	assert.Zero(t, s.Transactions)
	assert.Nil(t, s.Highest)
	assert.False(t, s.MemberShare.Valid)
	assert.False(t, s.MemberAmountShare.Valid)
	assert.Zero(t, s.AverageValue)
}

func TestSummarizeInventory(t *testing.T) {
	s := SummarizeInventory(SampleDataset().Inventory)

	assert.Equal(t, 5, s.Products)
	assert.Equal(t, 2, s.LowStock)
	assert.Equal(t, 2, s.BelowReorder)
	assert.Equal(t, Pct{Value: 40, Valid: true}, s.LowStockShare)
	assert.Equal(t, []CategoryShare{
		{Name: "Produce", Count: 2, Share: Pct{Value: 40, Valid: true}},
		{Name: "Dairy", Count: 2, Share: Pct{Value: 40, Valid: true}},
		{Name: "Bakery", Count: 1, Share: Pct{Value: 20, Valid: true}},
	}, s.Categories)
}

func TestSummarizeMembers(t *testing.T) {
	now := time.Date(2023, time.June, 1, 0, 0, 0, 0, time.UTC)
	s := SummarizeMembers(SampleDataset().Members, now)

	assert.Equal(t, 5, s.Members)
	assert.Equal(t, 117, s.TotalPurchases)
	assert.Equal(t, 1170, s.TotalPoints)
	assert.Equal(t, 3, s.NewMembers)
	assert.Equal(t, 80, s.AverageDurationDays)
	assert.InDelta(t, 23.4, s.AveragePurchases, 1e-9)

	require.NotNil(t, s.MostActive)
	assert.Equal(t, "Robert Johnson", s.MostActive.Name)
}

func TestSummarizeCredit(t *testing.T) {
	ds := SampleDataset()

	t.Run("early May", func(t *testing.T) {
		s := SummarizeCredit(ds.Credit, time.Date(2023, time.May, 5, 0, 0, 0, 0, time.UTC))

		assert.InDelta(t, 2350, s.TotalBalance, 1e-9)
		assert.InDelta(t, 4500, s.TotalLimit, 1e-9)
		assert.Equal(t, Pct{Value: 52, Valid: true}, s.Utilization)
		assert.Equal(t, 1, s.OverEighty)
		assert.Equal(t, 1, s.NearLimit)
		assert.Equal(t, 1, s.PaidInFull)
		assert.Equal(t, Pct{Value: 20, Valid: true}, s.PaidInFullShare)
		assert.InDelta(t, 470, s.AverageBalance, 1e-9)
		assert.Equal(t, 5, s.RecentPayments)
	})

	t.Run("a month later", func(t *testing.T) {
		s := SummarizeCredit(ds.Credit, time.Date(2023, time.June, 5, 0, 0, 0, 0, time.UTC))
		assert.Zero(t, s.RecentPayments)
	})
}

func TestSummarizeCreditZeroLimit(t *testing.T) {
	rows := []CreditRecord{{ID: 1, Member: "Ana", Balance: 450, Limit: 0}}

	s := SummarizeCredit(rows, time.Now())
	assert.False(t, s.Utilization.Valid)
	assert.Zero(t, s.OverEighty)
	assert.Zero(t, s.RecentPayments)
}

func TestCreditStatus(t *testing.T) {
	assert.Equal(t, StatusPaidInFull, CreditStatus(0, 1000))
	assert.Equal(t, StatusGoodStanding, CreditStatus(450, 1000))
	assert.Equal(t, StatusNearLimit, CreditStatus(900, 1000))
	assert.Equal(t, StatusGoodStanding, CreditStatus(100, 0))
}
