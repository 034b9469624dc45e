package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/example/pandol/internal/models"
	"github.com/example/pandol/internal/report"
	"github.com/example/pandol/internal/repository"
	"github.com/example/pandol/internal/services"
	"github.com/example/pandol/internal/services/mocks"
	"github.com/example/pandol/internal/utils"
)

type CreditServiceTestSuite struct {
	suite.Suite
	ctrl     *gomock.Controller
	members  *mocks.MockMemberRepository
	credits  *mocks.MockCreditRepository
	notifier *mocks.MockNotifier
	service  *services.CreditService
}

func TestCreditServiceSuite(t *testing.T) {
	suite.Run(t, new(CreditServiceTestSuite))
}

func (s *CreditServiceTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.members = mocks.NewMockMemberRepository(s.ctrl)
	s.credits = mocks.NewMockCreditRepository(s.ctrl)
	s.notifier = mocks.NewMockNotifier(s.ctrl)
	s.service = services.NewCreditService(s.members, s.credits, s.notifier, quietLog)
}

func (s *CreditServiceTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *CreditServiceTestSuite) posted(balance, limit string) *models.Member {
	m := member(7, balance, limit)
	return &m
}

func (s *CreditServiceTestSuite) TestPostPayment() {
	s.credits.EXPECT().Post(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, c *models.Credit) (*models.Member, error) {
			s.Equal(models.CreditEarned, c.Type)
			s.Equal("Cash payment", c.Notes)
			return s.posted("250", "1000"), nil
		})

	entry, m, err := s.service.Post(context.Background(), services.PostCreditParams{
		MemberID: 7,
		Amount:   dec("200"),
		Type:     models.CreditEarned,
		Notes:    "Cash payment",
	})
	s.Require().NoError(err)
	s.Equal(uint(7), entry.MemberID)
	s.Equal("250", m.CreditBalance.String())
}

func (s *CreditServiceTestSuite) TestPostAlertsWhenCrossingEightyPercent() {
	s.credits.EXPECT().Post(gomock.Any(), gomock.Any()).Return(s.posted("850", "1000"), nil)
	s.notifier.EXPECT().NotifyCreditAlert(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, a services.CreditAlert) error {
			s.Equal(uint(7), a.MemberID)
			s.Equal(report.Pct{Value: 85, Valid: true}, a.Utilization)
			return nil
		})

	_, _, err := s.service.Post(context.Background(), services.PostCreditParams{MemberID: 7, Amount: dec("100"), Type: models.CreditSpent})
	s.Require().NoError(err)
}

func (s *CreditServiceTestSuite) TestPostDoesNotRepeatAlertAboveEighty() {
	s.credits.EXPECT().Post(gomock.Any(), gomock.Any()).Return(s.posted("950", "1000"), nil)

	_, _, err := s.service.Post(context.Background(), services.PostCreditParams{MemberID: 7, Amount: dec("50"), Type: models.CreditSpent})
	s.Require().NoError(err)
}

func (s *CreditServiceTestSuite) TestPostNotifierFailureIsNotFatal() {
	s.credits.EXPECT().Post(gomock.Any(), gomock.Any()).Return(s.posted("900", "1000"), nil)
	s.notifier.EXPECT().NotifyCreditAlert(gomock.Any(), gomock.Any()).Return(errors.New("telegram down"))

	_, _, err := s.service.Post(context.Background(), services.PostCreditParams{MemberID: 7, Amount: dec("500"), Type: models.CreditSpent})
	s.NoError(err)
}

func (s *CreditServiceTestSuite) TestPostValidation() {
	ctx := context.Background()

	_, _, err := s.service.Post(ctx, services.PostCreditParams{MemberID: 7, Amount: dec("10"), Type: "Refund"})
	s.ErrorIs(err, services.ErrInvalidCreditType)

	_, _, err = s.service.Post(ctx, services.PostCreditParams{MemberID: 7, Amount: dec("-10"), Type: models.CreditSpent})
	s.ErrorIs(err, services.ErrInvalidAmount)

	_, _, err = s.service.Post(ctx, services.PostCreditParams{MemberID: 7, Amount: decimal.Zero, Type: models.CreditAdjustment})
	s.ErrorIs(err, services.ErrInvalidAmount)
}

func (s *CreditServiceTestSuite) TestPostNegativeAdjustment() {
	s.credits.EXPECT().Post(gomock.Any(), gomock.Any()).Return(s.posted("90", "1000"), nil)

	entry, _, err := s.service.Post(context.Background(), services.PostCreditParams{MemberID: 7, Amount: dec("-10"), Type: models.CreditAdjustment})
	s.Require().NoError(err)
	s.Equal("-10", entry.Amount.String())
}

func (s *CreditServiceTestSuite) TestPostPropagatesLimitError() {
	s.credits.EXPECT().Post(gomock.Any(), gomock.Any()).Return(nil, repository.ErrCreditLimitExceeded)

	_, _, err := s.service.Post(context.Background(), services.PostCreditParams{MemberID: 7, Amount: dec("5000"), Type: models.CreditSpent})
	s.ErrorIs(err, repository.ErrCreditLimitExceeded)
}

func (s *CreditServiceTestSuite) TestLedgerUnknownMember() {
	s.members.EXPECT().GetByID(gomock.Any(), uint(99)).Return(nil, repository.ErrNotFound)

	_, _, err := s.service.Ledger(context.Background(), 99, utils.NewPagination(1, 20))
	s.ErrorIs(err, repository.ErrNotFound)
}

func (s *CreditServiceTestSuite) TestLedger() {
	pg := utils.NewPagination(2, 10)
	m := member(7, "0", "0")
	s.members.EXPECT().GetByID(gomock.Any(), uint(7)).Return(&m, nil)
	s.credits.EXPECT().ListByMember(gomock.Any(), uint(7), pg).Return([]models.Credit{{Type: models.CreditSpent}}, int64(11), nil)

	entries, total, err := s.service.Ledger(context.Background(), 7, pg)
	s.Require().NoError(err)
	s.Len(entries, 1)
	s.EqualValues(11, total)
}

func (s *CreditServiceTestSuite) TestReconcile() {
	s.credits.EXPECT().LedgerTotals(gomock.Any()).Return([]repository.LedgerTotal{
		{MemberID: 1, Cached: dec("100"), Ledger: dec("100.00")},
		{MemberID: 2, Cached: dec("999"), Ledger: dec("300")},
		{MemberID: 3, Cached: dec("5"), Ledger: dec("0")},
	}, nil)
	s.credits.EXPECT().RepairBalance(gomock.Any(), uint(2), dec("999"), dec("300")).Return(nil)
	s.credits.EXPECT().RepairBalance(gomock.Any(), uint(3), dec("5"), dec("0")).Return(repository.ErrNotFound)

	drifts, err := s.service.Reconcile(context.Background())
	s.Require().NoError(err)
	s.Require().Len(drifts, 2)
	s.Equal(uint(2), drifts[0].MemberID)
	s.True(drifts[0].Repaired)
	s.Equal(uint(3), drifts[1].MemberID)
	s.False(drifts[1].Repaired)
}
