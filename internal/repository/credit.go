package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/example/pandol/internal/models"
	"github.com/example/pandol/internal/utils"
)

// CreditRepository owns the credit ledger and the cached member balance.
type CreditRepository struct {
	db *gorm.DB
}

func NewCreditRepository(db *gorm.DB) *CreditRepository {
	return &CreditRepository{db: db}
}

// LedgerTotal pairs a member's cached balance with the sum of its ledger.
type LedgerTotal struct {
	MemberID uint
	Cached   decimal.Decimal
	Ledger   decimal.Decimal
}

// Post appends entry to the ledger and moves the cached balance in the same
// transaction. It returns the member as it is after the entry.
func (r *CreditRepository) Post(ctx context.Context, entry *models.Credit) (*models.Member, error) {
	var member *models.Member
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		member, err = postCredit(tx, entry)
		return err
	})
	if err != nil {
		return nil, err
	}
	return member, nil
}

// postCredit is the only code path that writes Members.credit_balance outside
// reconciliation. tx must be an open transaction.
func postCredit(tx *gorm.DB, entry *models.Credit) (*models.Member, error) {
	if !entry.Type.Valid() {
		return nil, errors.Wrapf(ErrInvalidCreditType, "%q", entry.Type)
	}

	var member models.Member
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&member, entry.MemberID).Error; err != nil {
		return nil, translate(err, "lock member")
	}

	balance := member.CreditBalance.Add(entry.Type.Delta(entry.Amount))
	if balance.IsNegative() {
		return nil, errors.Wrapf(ErrNegativeBalance, "member %d", member.ID)
	}
	if entry.Type == models.CreditSpent && balance.GreaterThan(member.CreditLimit) {
		return nil, errors.Wrapf(ErrCreditLimitExceeded, "member %d: %s over %s", member.ID, balance, member.CreditLimit)
	}

	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}
	if err := tx.Create(entry).Error; err != nil {
		return nil, translate(err, "insert credit entry")
	}

	if err := tx.Model(&member).Update("credit_balance", balance).Error; err != nil {
		return nil, translate(err, "update cached balance")
	}
	member.CreditBalance = balance

	activity := models.MemberActivity{
		MemberID:             member.ID,
		Action:               "credit_" + string(entry.Type),
		Amount:               decimal.NewNullDecimal(entry.Amount),
		Timestamp:            entry.Timestamp,
		RelatedTransactionID: entry.RelatedTransactionID,
		Description:          fmt.Sprintf("%s %s, balance now %s", entry.Type, entry.Amount.StringFixed(2), balance.StringFixed(2)),
	}
	if err := tx.Create(&activity).Error; err != nil {
		return nil, translate(err, "record credit activity")
	}

	return &member, nil
}

// ListByMember pages through a member's ledger, newest first.
func (r *CreditRepository) ListByMember(ctx context.Context, memberID uint, pg utils.Pagination) ([]models.Credit, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Credit{}).Where("member_id = ?", memberID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translate(err, "count credits")
	}

	var entries []models.Credit
	err := query.Order("timestamp desc, id desc").Limit(pg.Limit).Offset(pg.Offset).Find(&entries).Error
	return entries, total, translate(err, "list credits")
}

// ListByType returns every entry of one type for a member, newest first.
func (r *CreditRepository) ListByType(ctx context.Context, memberID uint, typ models.CreditType) ([]models.Credit, error) {
	var entries []models.Credit
	err := r.db.WithContext(ctx).
		Where("member_id = ? AND type = ?", memberID, typ).
		Order("timestamp desc, id desc").
		Find(&entries).Error
	return entries, translate(err, "list credits by type")
}

const ledgerTotalsQuery = `
SELECT m.id AS member_id,
       m.credit_balance AS cached,
       COALESCE(SUM(CASE c.type
                    WHEN 'Earned' THEN -ABS(c.amount)
                    WHEN 'Spent' THEN ABS(c.amount)
                    ELSE c.amount END), 0) AS ledger
FROM members m
LEFT JOIN credits c ON c.member_id = m.id
GROUP BY m.id, m.credit_balance
ORDER BY m.id`

// LedgerTotals sums every member's ledger next to the cached balance.
func (r *CreditRepository) LedgerTotals(ctx context.Context) ([]LedgerTotal, error) {
	var totals []LedgerTotal
	err := r.db.WithContext(ctx).Raw(ledgerTotalsQuery).Scan(&totals).Error
	return totals, translate(err, "sum ledger")
}

// RepairBalance overwrites the cached balance with the ledger total, provided
// nobody posted in between.
func (r *CreditRepository) RepairBalance(ctx context.Context, memberID uint, cached, ledger decimal.Decimal) error {
	res := r.db.WithContext(ctx).Model(&models.Member{}).
		Where("id = ? AND credit_balance = ?", memberID, cached).
		Update("credit_balance", ledger)
	if res.Error != nil {
		return translate(res.Error, "repair balance")
	}
	if res.RowsAffected == 0 {
		return errors.Wrapf(ErrNotFound, "member %d changed during repair", memberID)
	}
	return nil
}
