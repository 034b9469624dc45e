package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/example/pandol/internal/models"
	"github.com/example/pandol/internal/session"
	"github.com/example/pandol/internal/utils"
)

var (
	ErrUnauthenticated      = errors.New("not authenticated")
	ErrEmptySale            = errors.New("sale has no items")
	ErrInvalidQuantity      = errors.New("quantity must be greater than zero")
	ErrInvalidPaymentMethod = errors.New("payment method must be cash, credit or gcash")
	ErrCreditRequiresMember = errors.New("credit sales require a member")
	ErrInvalidDiscount      = errors.New("discount cannot be negative")
	ErrMemberNotActive      = errors.New("member is not active")
)

// CheckoutItem is one product line at the register.
type CheckoutItem struct {
	ProductID uint `json:"product_id"`
	Quantity  int  `json:"quantity"`
}

// CheckoutParams describes a sale being rung up.
type CheckoutParams struct {
	MemberID      *uint
	PaymentMethod string
	Discount      decimal.Decimal
	Items         []CheckoutItem
}

// SaleService records point-of-sale transactions.
type SaleService struct {
	members      MemberRepository
	transactions TransactionRepository
	sessions     session.Resolver
	log          logrus.FieldLogger
	now          func() time.Time
}

func NewSaleService(members MemberRepository, transactions TransactionRepository, sessions session.Resolver, log logrus.FieldLogger) *SaleService {
	return &SaleService{
		members:      members,
		transactions: transactions,
		sessions:     sessions,
		log:          log.WithField("component", "sale_service"),
		now:          time.Now,
	}
}

// Checkout validates and records a sale made by the session's cashier. Credit
// sales post a Spent entry for the sale total in the same database
// transaction.
func (s *SaleService) Checkout(ctx context.Context, p CheckoutParams) (*models.Transaction, error) {
	sess, err := s.sessions.Current(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "resolve session")
	}
	if sess == nil {
		return nil, ErrUnauthenticated
	}

	method := strings.ToLower(strings.TrimSpace(p.PaymentMethod))
	switch method {
	case models.PaymentCash, models.PaymentCredit, models.PaymentGCash:
	default:
		return nil, ErrInvalidPaymentMethod
	}
	if p.Discount.IsNegative() {
		return nil, ErrInvalidDiscount
	}

	items, err := mergeItems(p.Items)
	if err != nil {
		return nil, err
	}

	var member *models.Member
	if p.MemberID != nil {
		member, err = s.members.GetByID(ctx, *p.MemberID)
		if err != nil {
			return nil, errors.Wrap(err, "load member")
		}
		if member.Status != models.MemberStatusActive {
			return nil, ErrMemberNotActive
		}
	}
	if method == models.PaymentCredit && member == nil {
		return nil, ErrCreditRequiresMember
	}

	sale := &models.Transaction{
		Timestamp:     s.now(),
		UserID:        sess.UserID,
		MemberID:      p.MemberID,
		PaymentMethod: method,
		Items:         items,
	}
	if p.Discount.IsPositive() {
		sale.ManualDiscountAmount = decimal.NewNullDecimal(p.Discount)
	}

	var credit *models.Credit
	if sale.IsCredit() {
		credit = &models.Credit{MemberID: member.ID, Type: models.CreditSpent, Notes: "Credit purchase"}
	}

	if err := s.transactions.CreateSale(ctx, sale, credit); err != nil {
		return nil, errors.Wrap(err, "record sale")
	}

	log := s.log.WithFields(logrus.Fields{
		"transaction_id": sale.ID,
		"cashier_id":     sess.UserID,
		"total":          sale.TotalAmount.StringFixed(2),
		"payment_method": method,
	})
	log.Info("sale recorded")

	if member != nil {
		activity := &models.MemberActivity{
			MemberID:             member.ID,
			Action:               "purchase",
			Amount:               decimal.NewNullDecimal(sale.TotalAmount),
			Timestamp:            sale.Timestamp,
			RelatedTransactionID: &sale.ID,
			Description:          fmt.Sprintf("Purchase %s paid by %s", transactionCode(sale.ID), method),
		}
		if err := s.members.RecordActivity(ctx, activity); err != nil {
			log.WithError(err).Warn("record purchase activity")
		}
	}

	return sale, nil
}

// List pages through recorded sales.
func (s *SaleService) List(ctx context.Context, pg utils.Pagination, memberID *uint) ([]models.Transaction, int64, error) {
	return s.transactions.List(ctx, pg, memberID)
}

// mergeItems folds repeated products into one line, keeping first-seen order.
func mergeItems(lines []CheckoutItem) ([]models.TransactionItem, error) {
	if len(lines) == 0 {
		return nil, ErrEmptySale
	}

	index := map[uint]int{}
	items := make([]models.TransactionItem, 0, len(lines))
	for _, line := range lines {
		if line.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
		if i, ok := index[line.ProductID]; ok {
			items[i].Quantity += line.Quantity
			continue
		}
		index[line.ProductID] = len(items)
		items = append(items, models.TransactionItem{ProductID: line.ProductID, Quantity: line.Quantity})
	}
	return items, nil
}
