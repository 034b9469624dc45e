package services

import (
	"context"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/example/pandol/internal/models"
	"github.com/example/pandol/internal/report"
	"github.com/example/pandol/internal/utils"
)

// AlertUtilization is the utilization percentage at which admins are alerted.
const AlertUtilization = 80

var (
	ErrInvalidAmount     = errors.New("amount must be greater than zero")
	ErrInvalidCreditType = errors.New("credit type must be Earned, Spent or Adjustment")
)

// CreditAlert is sent when a member's utilization crosses AlertUtilization.
type CreditAlert struct {
	MemberID    uint
	MemberName  string
	Balance     decimal.Decimal
	Limit       decimal.Decimal
	Utilization report.Pct
}

// PostCreditParams describes one ledger entry to post.
type PostCreditParams struct {
	MemberID             uint
	Amount               decimal.Decimal
	Type                 models.CreditType
	Notes                string
	RelatedTransactionID *uint
}

// BalanceDrift is a member whose cached balance disagreed with the ledger.
type BalanceDrift struct {
	MemberID uint            `json:"member_id"`
	Cached   decimal.Decimal `json:"cached"`
	Ledger   decimal.Decimal `json:"ledger"`
	Repaired bool            `json:"repaired"`
}

// CreditService is the write path of the credit ledger.
type CreditService struct {
	members  MemberRepository
	credits  CreditRepository
	notifier Notifier
	log      logrus.FieldLogger
}

func NewCreditService(members MemberRepository, credits CreditRepository, notifier Notifier, log logrus.FieldLogger) *CreditService {
	return &CreditService{
		members:  members,
		credits:  credits,
		notifier: notifier,
		log:      log.WithField("component", "credit_service"),
	}
}

// Post records an entry and returns it with the member's new position.
func (s *CreditService) Post(ctx context.Context, p PostCreditParams) (*models.Credit, *models.Member, error) {
	if !p.Type.Valid() {
		return nil, nil, ErrInvalidCreditType
	}
	if p.Type == models.CreditAdjustment {
		if p.Amount.IsZero() {
			return nil, nil, ErrInvalidAmount
		}
	} else if !p.Amount.IsPositive() {
		return nil, nil, ErrInvalidAmount
	}

	entry := &models.Credit{
		MemberID:             p.MemberID,
		Amount:               p.Amount,
		Type:                 p.Type,
		Notes:                p.Notes,
		RelatedTransactionID: p.RelatedTransactionID,
	}

	member, err := s.credits.Post(ctx, entry)
	if err != nil {
		return nil, nil, errors.Wrap(err, "post credit entry")
	}

	s.log.WithFields(logrus.Fields{
		"member_id": member.ID,
		"type":      entry.Type,
		"amount":    entry.Amount.StringFixed(2),
		"balance":   member.CreditBalance.StringFixed(2),
	}).Info("credit entry posted")

	previous := member.CreditBalance.Sub(entry.Type.Delta(entry.Amount))
	s.alertOnCrossing(ctx, member, previous)

	return entry, member, nil
}

func (s *CreditService) alertOnCrossing(ctx context.Context, member *models.Member, previous decimal.Decimal) {
	if s.notifier == nil {
		return
	}

	limit := member.CreditLimit.InexactFloat64()
	before := report.Percent(previous.InexactFloat64(), limit)
	after := report.Percent(member.CreditBalance.InexactFloat64(), limit)
	if !after.Valid || after.Value < AlertUtilization || (before.Valid && before.Value >= AlertUtilization) {
		return
	}

	alert := CreditAlert{
		MemberID:    member.ID,
		MemberName:  member.Name,
		Balance:     member.CreditBalance,
		Limit:       member.CreditLimit,
		Utilization: after,
	}
	if err := s.notifier.NotifyCreditAlert(ctx, alert); err != nil {
		s.log.WithError(err).WithField("member_id", member.ID).Warn("send credit alert")
	}
}

// Ledger pages through a member's entries, newest first.
func (s *CreditService) Ledger(ctx context.Context, memberID uint, pg utils.Pagination) ([]models.Credit, int64, error) {
	if _, err := s.members.GetByID(ctx, memberID); err != nil {
		return nil, 0, err
	}
	return s.credits.ListByMember(ctx, memberID, pg)
}

// Reconcile compares each cached balance with its ledger total and resets
// the cache where they differ. The ledger wins.
func (s *CreditService) Reconcile(ctx context.Context) ([]BalanceDrift, error) {
	totals, err := s.credits.LedgerTotals(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "load ledger totals")
	}

	drifts := []BalanceDrift{}
	for _, t := range totals {
		if t.Cached.Equal(t.Ledger) {
			continue
		}

		drift := BalanceDrift{MemberID: t.MemberID, Cached: t.Cached, Ledger: t.Ledger}
		log := s.log.WithFields(logrus.Fields{
			"member_id": t.MemberID,
			"cached":    t.Cached.StringFixed(2),
			"ledger":    t.Ledger.StringFixed(2),
		})

		if err := s.credits.RepairBalance(ctx, t.MemberID, t.Cached, t.Ledger); err != nil {
			log.WithError(err).Error("repair cached balance")
		} else {
			drift.Repaired = true
			log.Warn("cached balance drifted from ledger, repaired")
		}
		drifts = append(drifts, drift)
	}

	s.log.WithFields(logrus.Fields{"members": len(totals), "drifts": len(drifts)}).Info("balance reconciliation finished")
	return drifts, nil
}
