package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/example/pandol/internal/models"
	"github.com/example/pandol/internal/report"
)

// PointsPerPurchase is the loyalty points a member earns per transaction.
const PointsPerPurchase = 10

// ReportSource builds report datasets from the live tables.
type ReportSource struct {
	db *gorm.DB
}

func NewReportSource(db *gorm.DB) *ReportSource {
	return &ReportSource{db: db}
}

// Dataset loads every record set. Sales are limited to transactions at or
// after since; a zero since loads all of them.
func (s *ReportSource) Dataset(ctx context.Context, since time.Time) (report.Dataset, error) {
	var ds report.Dataset
	var err error

	if ds.Sales, err = s.sales(ctx, since); err != nil {
		return ds, err
	}
	if ds.Inventory, err = s.inventory(ctx); err != nil {
		return ds, err
	}
	if ds.Members, err = s.members(ctx); err != nil {
		return ds, err
	}
	if ds.Credit, err = s.credit(ctx); err != nil {
		return ds, err
	}
	return ds, nil
}

func (s *ReportSource) sales(ctx context.Context, since time.Time) ([]report.SalesRecord, error) {
	query := s.db.WithContext(ctx).Preload("Items").Order("timestamp, id")
	if !since.IsZero() {
		query = query.Where("timestamp >= ?", since)
	}

	var txs []models.Transaction
	if err := query.Find(&txs).Error; err != nil {
		return nil, translate(err, "load sales")
	}

	rows := make([]report.SalesRecord, 0, len(txs))
	for _, tx := range txs {
		items := 0
		for _, item := range tx.Items {
			items += item.Quantity
		}
		customer := report.CustomerWalkIn
		if tx.MemberID != nil {
			customer = fmt.Sprintf("Member #%d", *tx.MemberID)
		}
		rows = append(rows, report.SalesRecord{
			ID:       tx.ID,
			Date:     tx.Timestamp,
			Amount:   tx.TotalAmount.InexactFloat64(),
			Items:    items,
			Customer: customer,
		})
	}
	return rows, nil
}

func (s *ReportSource) inventory(ctx context.Context) ([]report.InventoryRecord, error) {
	var products []models.Product
	if err := s.db.WithContext(ctx).Preload("Category").Where("is_active = ?", true).Order("id").Find(&products).Error; err != nil {
		return nil, translate(err, "load inventory")
	}

	rows := make([]report.InventoryRecord, 0, len(products))
	for _, p := range products {
		category := ""
		if p.Category != nil {
			category = p.Category.Name
		}
		rows = append(rows, report.InventoryRecord{
			ID:           p.ID,
			Name:         p.Name,
			Category:     category,
			Stock:        p.StockQuantity,
			ReorderLevel: p.ReorderLevel,
			Status:       p.StockStatus(),
		})
	}
	return rows, nil
}

type memberActivityRow struct {
	ID        uint
	Name      string
	Email     string
	CreatedAt time.Time
	Purchases int
}

func (s *ReportSource) members(ctx context.Context) ([]report.MemberRecord, error) {
	var found []memberActivityRow
	err := s.db.WithContext(ctx).
		Table("members AS m").
		Select("m.id, m.name, m.email, m.created_at, COUNT(t.id) AS purchases").
		Joins("LEFT JOIN transactions t ON t.member_id = m.id").
		Group("m.id, m.name, m.email, m.created_at").
		Order("m.id").
		Scan(&found).Error
	if err != nil {
		return nil, translate(err, "load member activity")
	}

	rows := make([]report.MemberRecord, 0, len(found))
	for _, m := range found {
		rows = append(rows, report.MemberRecord{
			ID:        m.ID,
			Name:      m.Name,
			Email:     m.Email,
			JoinDate:  m.CreatedAt,
			Purchases: m.Purchases,
			Points:    m.Purchases * PointsPerPurchase,
		})
	}
	return rows, nil
}

type creditPositionRow struct {
	ID            uint
	Name          string
	CreditBalance decimal.Decimal
	CreditLimit   decimal.Decimal
	LastPayment   *time.Time
}

func (s *ReportSource) credit(ctx context.Context) ([]report.CreditRecord, error) {
	var found []creditPositionRow
	err := s.db.WithContext(ctx).
		Table("members AS m").
		Select("m.id, m.name, m.credit_balance, m.credit_limit, MAX(c.timestamp) AS last_payment").
		Joins("LEFT JOIN credits c ON c.member_id = m.id AND c.type = ?", models.CreditEarned).
		Group("m.id, m.name, m.credit_balance, m.credit_limit").
		Order("m.id").
		Scan(&found).Error
	if err != nil {
		return nil, translate(err, "load credit positions")
	}

	rows := make([]report.CreditRecord, 0, len(found))
	for _, m := range found {
		balance := m.CreditBalance.InexactFloat64()
		limit := m.CreditLimit.InexactFloat64()
		row := report.CreditRecord{
			ID:      m.ID,
			Member:  m.Name,
			Balance: balance,
			Limit:   limit,
			Status:  report.CreditStatus(balance, limit),
		}
		if m.LastPayment != nil {
			row.LastPayment = *m.LastPayment
		}
		rows = append(rows, row)
	}
	return rows, nil
}
