package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/example/pandol/internal/models"
	"github.com/example/pandol/internal/report"
	"github.com/example/pandol/internal/repository"
	"github.com/example/pandol/internal/utils"
)

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

type MemberRepository interface {
	GetByUserID(ctx context.Context, userID uint) ([]models.Member, error)
	GetByID(ctx context.Context, id uint) (*models.Member, error)
	GetByEmail(ctx context.Context, email string) (*models.Member, error)
	List(ctx context.Context, pg utils.Pagination, search string) ([]models.Member, int64, error)
	Create(ctx context.Context, member *models.Member) error
	Update(ctx context.Context, id uint, fields map[string]interface{}) (*models.Member, error)
	RecordActivity(ctx context.Context, activity *models.MemberActivity) error
}

type TransactionRepository interface {
	GetByMemberID(ctx context.Context, memberID uint) ([]models.Transaction, error)
	GetItemsByTransactionID(ctx context.Context, transactionID uint) ([]models.TransactionItem, error)
	List(ctx context.Context, pg utils.Pagination, memberID *uint) ([]models.Transaction, int64, error)
	CreateSale(ctx context.Context, sale *models.Transaction, credit *models.Credit) error
}

type CreditRepository interface {
	Post(ctx context.Context, entry *models.Credit) (*models.Member, error)
	ListByMember(ctx context.Context, memberID uint, pg utils.Pagination) ([]models.Credit, int64, error)
	ListByType(ctx context.Context, memberID uint, typ models.CreditType) ([]models.Credit, error)
	LedgerTotals(ctx context.Context) ([]repository.LedgerTotal, error)
	RepairBalance(ctx context.Context, memberID uint, cached, ledger decimal.Decimal) error
}

type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	CreateWithMember(ctx context.Context, user *models.User, roleName string, member *models.Member) error
	UpdatePassword(ctx context.Context, id uint, hash string) error
}

type TokenRepository interface {
	Create(ctx context.Context, token *models.VerificationToken) error
	Consume(ctx context.Context, token, typ string, now time.Time) (*models.VerificationToken, error)
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}

type LetterheadRepository interface {
	Get(ctx context.Context) (*models.Letterhead, error)
	Save(ctx context.Context, lh *models.Letterhead) error
}

type ReportSource interface {
	Dataset(ctx context.Context, since time.Time) (report.Dataset, error)
}

type Notifier interface {
	NotifyCreditAlert(ctx context.Context, alert CreditAlert) error
}
