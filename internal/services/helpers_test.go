package services_test

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/example/pandol/internal/logger"
	"github.com/example/pandol/internal/models"
	"github.com/example/pandol/internal/session"
	"github.com/example/pandol/internal/utils"
)

var (
	quietLog = logger.Discard()
	resolver = session.ContextResolver{}
)

func sessionCtx(userID uint) context.Context {
	return session.WithSession(context.Background(), &session.Session{UserID: userID, Role: models.RoleMember})
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 10, 0, 0, 0, time.UTC)
}

func member(id uint, balance, limit string) models.Member {
	m := models.Member{
		Name:          "Ana Reyes",
		Email:         "ana@example.com",
		CreditBalance: dec(balance),
		CreditLimit:   dec(limit),
		Status:        models.MemberStatusActive,
	}
	m.ID = id
	m.CreatedAt = day(2024, time.January, 15)
	return m
}

func transaction(id uint, method, total string, at time.Time) models.Transaction {
	tx := models.Transaction{Timestamp: at, PaymentMethod: method, TotalAmount: dec(total)}
	tx.ID = id
	return tx
}

func item(name string, qty int, price string) models.TransactionItem {
	it := models.TransactionItem{Quantity: qty, PriceAtTimeOfSale: dec(price)}
	if name != "" {
		it.Product = &models.Product{Name: name}
	}
	return it
}

// fakeTransactions serves fixed transactions and items from memory.
type fakeTransactions struct {
	txs   []models.Transaction
	items map[uint][]models.TransactionItem
}

func (f *fakeTransactions) GetByMemberID(context.Context, uint) ([]models.Transaction, error) {
	return f.txs, nil
}

func (f *fakeTransactions) GetItemsByTransactionID(_ context.Context, id uint) ([]models.TransactionItem, error) {
	return f.items[id], nil
}

func (f *fakeTransactions) List(context.Context, utils.Pagination, *uint) ([]models.Transaction, int64, error) {
	return f.txs, int64(len(f.txs)), nil
}

func (f *fakeTransactions) CreateSale(context.Context, *models.Transaction, *models.Credit) error {
	return nil
}
