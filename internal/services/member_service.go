package services

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/mail"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/example/pandol/internal/models"
	"github.com/example/pandol/internal/report"
	"github.com/example/pandol/internal/repository"
	"github.com/example/pandol/internal/session"
	"github.com/example/pandol/internal/utils"
)

const (
	displayDateLayout   = "Jan 2, 2006"
	recentPurchaseLimit = 2
	paymentTermDays     = 30
	maxProfileImageSize = 5 << 20
	profileImagePrefix  = "data:image/"
)

var (
	ErrInvalidEmail        = errors.New("invalid email address")
	ErrInvalidProfileImage = errors.New("profile picture must be a base64 data:image URI")
	ErrProfileImageTooBig  = errors.New("profile picture exceeds 5 MB")
)

// ItemDetail is one resolved line of a purchase.
type ItemDetail struct {
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

// Purchase is a member-facing view of a transaction.
type Purchase struct {
	ID          string       `json:"id"`
	Date        string       `json:"date"`
	Items       int          `json:"items"`
	Total       float64      `json:"total"`
	Status      string       `json:"status"`
	ItemDetails []ItemDetail `json:"item_details"`
}

// RecentItem is an item from one of the latest purchases.
type RecentItem struct {
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
	Date     string  `json:"date"`
}

// Payment is either a credit purchase falling due or a payment already made.
type Payment struct {
	ID          string  `json:"id"`
	DueDate     string  `json:"due_date,omitempty"`
	Date        string  `json:"date,omitempty"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description,omitempty"`
	Status      string  `json:"status,omitempty"`
}

// MemberData is the member dashboard view model.
type MemberData struct {
	Name              string       `json:"name"`
	MemberID          string       `json:"member_id"`
	JoinDate          string       `json:"join_date"`
	CreditLimit       float64      `json:"credit_limit"`
	CurrentCredit     float64      `json:"current_credit"`
	AvailableCredit   float64      `json:"available_credit"`
	CreditUtilization report.Pct   `json:"credit_utilization"`
	LoyaltyPoints     int          `json:"loyalty_points"`
	PurchaseHistory   []Purchase   `json:"purchase_history"`
	UpcomingPayments  []Payment    `json:"upcoming_payments"`
	RecentItems       []RecentItem `json:"recent_items"`
	PaymentHistory    []Payment    `json:"payment_history"`
}

// MemberProfileData is the member profile view model. TotalTransactions is
// the sum of all transaction totals.
type MemberProfileData struct {
	ID                uint    `json:"id"`
	MemberID          string  `json:"member_id"`
	Name              string  `json:"name"`
	Email             string  `json:"email"`
	Phone             *string `json:"phone"`
	Address           *string `json:"address"`
	JoinDate          string  `json:"join_date"`
	CreditLimit       float64 `json:"credit_limit"`
	CreditBalance     float64 `json:"credit_balance"`
	TotalPurchases    int     `json:"total_purchases"`
	TotalTransactions float64 `json:"total_transactions"`
	UserID            *uint   `json:"user_id"`
	ProfilePicture    *string `json:"profile_picture"`
}

// ProfileUpdate holds the fields a member may change on their own record.
// A nil field is left alone; ClearProfilePicture removes the picture.
type ProfileUpdate struct {
	Email               *string
	ProfilePicture      *string
	ClearProfilePicture bool
}

// MemberService derives member-facing view models for the session's member.
// Every public method reports failure as nil or false after logging it.
type MemberService struct {
	members      MemberRepository
	transactions TransactionRepository
	credits      CreditRepository
	sessions     session.Resolver
	log          logrus.FieldLogger
}

func NewMemberService(
	members MemberRepository,
	transactions TransactionRepository,
	credits CreditRepository,
	sessions session.Resolver,
	log logrus.FieldLogger,
) *MemberService {
	return &MemberService{
		members:      members,
		transactions: transactions,
		credits:      credits,
		sessions:     sessions,
		log:          log.WithField("component", "member_service"),
	}
}

// currentMember resolves the first member linked to the session's user.
func (s *MemberService) currentMember(ctx context.Context, op string) *models.Member {
	log := s.log.WithField("op", op)

	sess, err := s.sessions.Current(ctx)
	if err != nil {
		log.WithError(err).Error("resolve session")
		return nil
	}
	if sess == nil {
		log.Warn("no active session found")
		return nil
	}

	members, err := s.members.GetByUserID(ctx, sess.UserID)
	if err != nil {
		log.WithError(err).WithField("user_id", sess.UserID).Error("load member")
		return nil
	}
	if len(members) == 0 {
		log.WithField("user_id", sess.UserID).Warn("no member found for the current user")
		return nil
	}

	return &members[0]
}

// CurrentMemberData builds the dashboard for the session's member.
func (s *MemberService) CurrentMemberData(ctx context.Context) *MemberData {
	member := s.currentMember(ctx, "member_data")
	if member == nil {
		return nil
	}
	log := s.log.WithField("member_id", member.ID)

	txs, err := s.transactions.GetByMemberID(ctx, member.ID)
	if err != nil {
		log.WithError(err).Error("load transactions")
		return nil
	}

	data := &MemberData{
		Name:             member.Name,
		MemberID:         utils.MemberCode(member.ID),
		JoinDate:         formatDate(member.CreatedAt),
		LoyaltyPoints:    len(txs) * repository.PointsPerPurchase,
		PurchaseHistory:  []Purchase{},
		UpcomingPayments: []Payment{},
		RecentItems:      []RecentItem{},
		PaymentHistory:   []Payment{},
	}

	for _, tx := range txs {
		items, err := s.transactions.GetItemsByTransactionID(ctx, tx.ID)
		if err != nil {
			log.WithError(err).WithField("transaction_id", tx.ID).Error("load transaction items")
			return nil
		}

		purchase := Purchase{
			ID:          transactionCode(tx.ID),
			Date:        formatDate(tx.Timestamp),
			Total:       tx.TotalAmount.InexactFloat64(),
			Status:      "Completed",
			ItemDetails: []ItemDetail{},
		}
		if tx.IsCredit() {
			purchase.Status = "Credit"
		}

		for _, item := range items {
			if item.Product == nil {
				continue
			}
			detail := ItemDetail{
				Name:     item.Product.Name,
				Quantity: item.Quantity,
				Price:    item.PriceAtTimeOfSale.InexactFloat64(),
			}
			purchase.ItemDetails = append(purchase.ItemDetails, detail)

			if len(data.PurchaseHistory) < recentPurchaseLimit {
				data.RecentItems = append(data.RecentItems, RecentItem{
					Name:     detail.Name,
					Quantity: detail.Quantity,
					Price:    detail.Price,
					Date:     purchase.Date,
				})
			}
		}
		purchase.Items = len(purchase.ItemDetails)
		data.PurchaseHistory = append(data.PurchaseHistory, purchase)

		if tx.IsCredit() && tx.TotalAmount.IsPositive() {
			data.UpcomingPayments = append(data.UpcomingPayments, Payment{
				ID:          fmt.Sprintf("PAY-%d", tx.ID),
				DueDate:     formatDate(tx.Timestamp.AddDate(0, 0, paymentTermDays)),
				Amount:      purchase.Total,
				Description: "Credit payment for " + purchase.ID,
			})
		}
	}

	data.CreditLimit = member.CreditLimit.InexactFloat64()
	data.CurrentCredit = member.CreditBalance.InexactFloat64()
	data.AvailableCredit = decimal.Max(member.CreditLimit.Sub(member.CreditBalance), decimal.Zero).InexactFloat64()
	data.CreditUtilization = report.Percent(data.CurrentCredit, data.CreditLimit)
	if !data.CreditUtilization.Valid {
		log.Warn("credit limit not set, utilization unavailable")
	}

	payments, err := s.credits.ListByType(ctx, member.ID, models.CreditEarned)
	if err != nil {
		log.WithError(err).Error("load payment history")
		return nil
	}
	for _, p := range payments {
		data.PaymentHistory = append(data.PaymentHistory, Payment{
			ID:          fmt.Sprintf("PAY-%d", p.ID),
			Date:        formatDate(p.Timestamp),
			Amount:      p.Amount.Abs().InexactFloat64(),
			Description: paymentDescription(p),
			Status:      "Completed",
		})
	}

	return data
}

// CurrentMemberProfileData builds the profile snapshot for the session's member.
func (s *MemberService) CurrentMemberProfileData(ctx context.Context) *MemberProfileData {
	member := s.currentMember(ctx, "member_profile")
	if member == nil {
		return nil
	}

	txs, err := s.transactions.GetByMemberID(ctx, member.ID)
	if err != nil {
		s.log.WithError(err).WithField("member_id", member.ID).Error("load transactions")
		return nil
	}

	volume := decimal.Zero
	for _, tx := range txs {
		volume = volume.Add(tx.TotalAmount)
	}

	return &MemberProfileData{
		ID:                member.ID,
		MemberID:          utils.MemberCode(member.ID),
		Name:              member.Name,
		Email:             member.Email,
		Phone:             member.Phone,
		Address:           member.Address,
		JoinDate:          formatDate(member.CreatedAt),
		CreditLimit:       member.CreditLimit.InexactFloat64(),
		CreditBalance:     member.CreditBalance.InexactFloat64(),
		TotalPurchases:    len(txs),
		TotalTransactions: volume.InexactFloat64(),
		UserID:            member.UserID,
		ProfilePicture:    member.ProfileImage,
	}
}

// UpdateMemberProfile changes the email and/or profile picture of memberID.
// It fails closed unless the session belongs to that same member.
func (s *MemberService) UpdateMemberProfile(ctx context.Context, memberID uint, upd ProfileUpdate) bool {
	member := s.currentMember(ctx, "update_profile")
	if member == nil {
		return false
	}
	log := s.log.WithField("member_id", memberID)

	if member.ID != memberID {
		log.WithField("session_member_id", member.ID).Warn("unauthorized profile update attempt")
		return false
	}

	fields, err := profileFields(upd)
	if err != nil {
		log.WithError(err).Warn("rejected profile update")
		return false
	}
	if len(fields) == 0 {
		log.Warn("profile update without fields")
		return false
	}

	if _, err := s.members.Update(ctx, memberID, fields); err != nil {
		log.WithError(err).Error("update member profile")
		return false
	}

	activity := &models.MemberActivity{
		MemberID:    memberID,
		Action:      "profile_update",
		Timestamp:   time.Now(),
		Description: "Updated " + strings.Join(sortedKeys(fields), ", "),
	}
	if err := s.members.RecordActivity(ctx, activity); err != nil {
		log.WithError(err).Warn("record profile activity")
	}

	return true
}

// SaveProfilePicture stores a data URI as the member's picture.
func (s *MemberService) SaveProfilePicture(ctx context.Context, memberID uint, imageData string) bool {
	return s.UpdateMemberProfile(ctx, memberID, ProfileUpdate{ProfilePicture: &imageData})
}

// RemoveProfilePicture clears the member's picture.
func (s *MemberService) RemoveProfilePicture(ctx context.Context, memberID uint) bool {
	return s.UpdateMemberProfile(ctx, memberID, ProfileUpdate{ClearProfilePicture: true})
}

func profileFields(upd ProfileUpdate) (map[string]interface{}, error) {
	fields := map[string]interface{}{}

	if upd.Email != nil {
		addr, err := mail.ParseAddress(strings.TrimSpace(*upd.Email))
		if err != nil || addr.Name != "" {
			return nil, ErrInvalidEmail
		}
		fields["email"] = addr.Address
	}

	switch {
	case upd.ClearProfilePicture:
		fields["profile_image"] = nil
	case upd.ProfilePicture != nil:
		if err := ValidateProfileImage(*upd.ProfilePicture); err != nil {
			return nil, err
		}
		fields["profile_image"] = *upd.ProfilePicture
	}

	return fields, nil
}

// ValidateProfileImage accepts base64 data:image URIs up to 5 MB decoded.
func ValidateProfileImage(data string) error {
	if !strings.HasPrefix(data, profileImagePrefix) {
		return ErrInvalidProfileImage
	}
	i := strings.Index(data, ";base64,")
	if i < 0 {
		return ErrInvalidProfileImage
	}
	payload := data[i+len(";base64,"):]
	if base64.StdEncoding.DecodedLen(len(payload)) > maxProfileImageSize+2 {
		return ErrProfileImageTooBig
	}
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return ErrInvalidProfileImage
	}
	if len(raw) > maxProfileImageSize {
		return ErrProfileImageTooBig
	}
	return nil
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "N/A"
	}
	return t.Format(displayDateLayout)
}

func transactionCode(id uint) string {
	return fmt.Sprintf("TRX-%d", id)
}

func paymentDescription(c models.Credit) string {
	switch {
	case c.Notes != "":
		return c.Notes
	case c.RelatedTransactionID != nil:
		return "Credit payment for " + transactionCode(*c.RelatedTransactionID)
	default:
		return "Credit payment"
	}
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
