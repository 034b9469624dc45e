package repository

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/example/pandol/internal/models"
	"github.com/example/pandol/internal/utils"
)

// TransactionRepository reads and records point-of-sale transactions.
type TransactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// GetByMemberID returns a member's transactions, most recent first.
func (r *TransactionRepository) GetByMemberID(ctx context.Context, memberID uint) ([]models.Transaction, error) {
	var txs []models.Transaction
	err := r.db.WithContext(ctx).
		Where("member_id = ?", memberID).
		Order("timestamp desc, id desc").
		Find(&txs).Error
	return txs, translate(err, "get transactions by member")
}

// GetItemsByTransactionID returns the line items with their products joined.
// Product is nil for an item whose product row no longer exists.
func (r *TransactionRepository) GetItemsByTransactionID(ctx context.Context, transactionID uint) ([]models.TransactionItem, error) {
	var items []models.TransactionItem
	err := r.db.WithContext(ctx).
		Preload("Product").
		Where("transaction_id = ?", transactionID).
		Order("id").
		Find(&items).Error
	return items, translate(err, "get transaction items")
}

// List pages through transactions, optionally for a single member.
func (r *TransactionRepository) List(ctx context.Context, pg utils.Pagination, memberID *uint) ([]models.Transaction, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Transaction{})
	if memberID != nil {
		query = query.Where("member_id = ?", *memberID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translate(err, "count transactions")
	}

	var txs []models.Transaction
	err := query.
		Preload("Items.Product").
		Preload("Member").
		Order("timestamp desc, id desc").
		Limit(pg.Limit).Offset(pg.Offset).
		Find(&txs).Error
	return txs, total, translate(err, "list transactions")
}

// CreateSale records sale and its items, snapshots product prices, takes the
// sold quantities out of stock and, when credit is not nil, posts it to the
// ledger against the new transaction. A sale discounted down to zero posts no
// ledger entry. Everything commits or nothing does.
func (r *TransactionRepository) CreateSale(ctx context.Context, sale *models.Transaction, credit *models.Credit) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range sale.Items {
			item := &sale.Items[i]

			var product models.Product
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&product, item.ProductID).Error; err != nil {
				return translate(err, "lock product")
			}
			if !product.IsActive || product.StockQuantity < item.Quantity {
				return errors.Wrapf(ErrInsufficientStock, "%s: %d left", product.Name, product.StockQuantity)
			}

			item.PriceAtTimeOfSale = product.Price
			item.BasePriceAtTimeOfSale = product.BasePrice

			if err := tx.Model(&product).
				Update("stock_quantity", gorm.Expr("stock_quantity - ?", item.Quantity)).Error; err != nil {
				return translate(err, "decrement stock")
			}
		}

		sale.Reprice()
		if err := tx.Create(sale).Error; err != nil {
			return translate(err, "insert transaction")
		}

		if credit == nil || !sale.TotalAmount.IsPositive() {
			return nil
		}
		credit.RelatedTransactionID = &sale.ID
		credit.Amount = sale.TotalAmount
		credit.Timestamp = sale.Timestamp
		_, err := postCredit(tx, credit)
		return err
	})
}
