package repository

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/example/pandol/internal/models"
)

// UserRepository persists login accounts.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// GetByEmail loads a user with its role.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Preload("Role").
		Where("LOWER(email) = ?", strings.ToLower(email)).
		First(&user).Error
	if err != nil {
		return nil, translate(err, "get user by email")
	}
	return &user, nil
}

// Create inserts user with the named role.
func (r *UserRepository) Create(ctx context.Context, user *models.User, roleName string) error {
	return createUser(r.db.WithContext(ctx), user, roleName)
}

// CreateWithMember inserts user and attaches member to it in one transaction.
// A member without an ID is created; an existing member is linked only while
// it has no login yet. On error neither row is written.
func (r *UserRepository) CreateWithMember(ctx context.Context, user *models.User, roleName string, member *models.Member) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := createUser(tx, user, roleName); err != nil {
			return err
		}

		member.UserID = &user.ID
		if member.ID == 0 {
			return translate(tx.Create(member).Error, "create member")
		}

		res := tx.Model(&models.Member{}).
			Where("id = ? AND user_id IS NULL", member.ID).
			Update("user_id", user.ID)
		if res.Error != nil {
			return translate(res.Error, "link member")
		}
		if res.RowsAffected == 0 {
			return errors.Wrap(ErrDuplicate, "link member")
		}
		return translate(tx.First(member).Error, "reload member")
	})
}

func createUser(tx *gorm.DB, user *models.User, roleName string) error {
	var role models.Role
	if err := tx.Where("name = ?", roleName).First(&role).Error; err != nil {
		return translate(err, "load role")
	}
	user.RoleID = role.ID
	user.Role = &role
	return translate(tx.Create(user).Error, "create user")
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id uint, hash string) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("password_hash", hash)
	if res.Error != nil {
		return translate(res.Error, "update password")
	}
	if res.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound, "update password")
	}
	return nil
}

// TokenRepository persists one-time verification tokens.
type TokenRepository struct {
	db *gorm.DB
}

func NewTokenRepository(db *gorm.DB) *TokenRepository {
	return &TokenRepository{db: db}
}

func (r *TokenRepository) Create(ctx context.Context, token *models.VerificationToken) error {
	return translate(r.db.WithContext(ctx).Create(token).Error, "create token")
}

// Consume marks an unused, unexpired token of the given type as used and
// returns it. A token can be consumed once.
func (r *TokenRepository) Consume(ctx context.Context, token, typ string, now time.Time) (*models.VerificationToken, error) {
	var vt models.VerificationToken
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Where("token = ? AND type = ? AND used_at IS NULL AND expires_at > ?", token, typ, now).
			First(&vt).Error; err != nil {
			return translate(err, "find token")
		}

		res := tx.Model(&vt).Where("used_at IS NULL").Update("used_at", now)
		if res.Error != nil {
			return translate(res.Error, "consume token")
		}
		if res.RowsAffected == 0 {
			return translate(gorm.ErrRecordNotFound, "consume token")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &vt, nil
}

// PurgeExpired deletes tokens that expired or were used before now.
func (r *TokenRepository) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("expires_at <= ? OR used_at IS NOT NULL", now).
		Delete(&models.VerificationToken{})
	return res.RowsAffected, translate(res.Error, "purge tokens")
}
