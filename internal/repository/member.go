package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/example/pandol/internal/models"
	"github.com/example/pandol/internal/utils"
)

// MemberRepository persists members and their activity trail.
type MemberRepository struct {
	db *gorm.DB
}

func NewMemberRepository(db *gorm.DB) *MemberRepository {
	return &MemberRepository{db: db}
}

// GetByUserID returns the members linked to a login. Normally zero or one.
func (r *MemberRepository) GetByUserID(ctx context.Context, userID uint) ([]models.Member, error) {
	var members []models.Member
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("id").Find(&members).Error
	return members, translate(err, "get members by user")
}

func (r *MemberRepository) GetByID(ctx context.Context, id uint) (*models.Member, error) {
	var member models.Member
	if err := r.db.WithContext(ctx).First(&member, id).Error; err != nil {
		return nil, translate(err, "get member")
	}
	return &member, nil
}

func (r *MemberRepository) GetByEmail(ctx context.Context, email string) (*models.Member, error) {
	var member models.Member
	if err := r.db.WithContext(ctx).Where("LOWER(email) = ?", strings.ToLower(email)).First(&member).Error; err != nil {
		return nil, translate(err, "get member by email")
	}
	return &member, nil
}

// List returns a page of members, optionally filtered by name or email.
func (r *MemberRepository) List(ctx context.Context, pg utils.Pagination, search string) ([]models.Member, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Member{})
	if search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ?", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, translate(err, "count members")
	}

	var members []models.Member
	err := query.Order("id").Limit(pg.Limit).Offset(pg.Offset).Find(&members).Error
	return members, total, translate(err, "list members")
}

func (r *MemberRepository) Create(ctx context.Context, member *models.Member) error {
	return translate(r.db.WithContext(ctx).Create(member).Error, "create member")
}

// Update applies the given column values and returns the fresh row.
func (r *MemberRepository) Update(ctx context.Context, id uint, fields map[string]interface{}) (*models.Member, error) {
	res := r.db.WithContext(ctx).Model(&models.Member{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return nil, translate(res.Error, "update member")
	}
	if res.RowsAffected == 0 {
		return nil, translate(gorm.ErrRecordNotFound, "update member")
	}
	return r.GetByID(ctx, id)
}

func (r *MemberRepository) RecordActivity(ctx context.Context, activity *models.MemberActivity) error {
	return translate(r.db.WithContext(ctx).Create(activity).Error, "record member activity")
}
