package handlers

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/example/pandol/internal/models"
	"github.com/example/pandol/internal/services"
	"github.com/example/pandol/internal/utils"
)

// AdminHandler manages admin-only endpoints.
type AdminHandler struct {
	db      *gorm.DB
	members services.MemberRepository
}

// NewAdminHandler constructs AdminHandler.
func NewAdminHandler(db *gorm.DB, members services.MemberRepository) *AdminHandler {
	return &AdminHandler{db: db, members: members}
}

// DashboardStats returns aggregate statistics for the admin dashboard.
func (h *AdminHandler) DashboardStats(c *fiber.Ctx) error {
	db := h.db.WithContext(c.UserContext())

	var totalMembers int64
	if err := db.Model(&models.Member{}).Count(&totalMembers).Error; err != nil {
		return err
	}

	var activeMembers int64
	if err := db.Model(&models.Member{}).Where("status = ?", models.MemberStatusActive).
		Count(&activeMembers).Error; err != nil {
		return err
	}

	var outstanding decimal.Decimal
	if err := db.Model(&models.Member{}).
		Select("COALESCE(SUM(credit_balance), 0)").
		Scan(&outstanding).Error; err != nil {
		return err
	}

	var nearLimit int64
	if err := db.Model(&models.Member{}).
		Where("credit_limit > 0 AND credit_balance >= credit_limit * ?", float64(services.AlertUtilization)/100).
		Count(&nearLimit).Error; err != nil {
		return err
	}

	var todaySales decimal.Decimal
	if err := db.Model(&models.Transaction{}).
		Where("timestamp::date = CURRENT_DATE").
		Select("COALESCE(SUM(total_amount), 0)").
		Scan(&todaySales).Error; err != nil {
		return err
	}

	var lowStock int64
	if err := db.Model(&models.Product{}).
		Where("is_active = ? AND stock_quantity < reorder_level", true).
		Count(&lowStock).Error; err != nil {
		return err
	}

	var upcomingEvents int64
	if err := db.Model(&models.Event{}).Where("event_date >= ?", time.Now()).
		Count(&upcomingEvents).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"total_members":      totalMembers,
			"active_members":     activeMembers,
			"outstanding_credit": outstanding,
			"near_limit_members": nearLimit,
			"today_sales":        todaySales,
			"low_stock_products": lowStock,
			"upcoming_events":    upcomingEvents,
		},
	})
}

// ListMembers returns members with pagination and search.
func (h *AdminHandler) ListMembers(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)

	members, total, err := h.members.List(c.UserContext(), pg, strings.TrimSpace(c.Query("search")))
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success":    true,
		"data":       members,
		"pagination": pg.Meta(total),
	})
}

// GetMember returns one member.
func (h *AdminHandler) GetMember(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	member, err := h.members.GetByID(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": member})
}

type createMemberRequest struct {
	Name        string          `json:"name"`
	Email       string          `json:"email"`
	Phone       *string         `json:"phone"`
	Address     *string         `json:"address"`
	CreditLimit decimal.Decimal `json:"credit_limit"`
}

// CreateMember registers a member record. The member can later sign up with
// the same email to get a login.
func (h *AdminHandler) CreateMember(c *fiber.Ctx) error {
	var req createMemberRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Name == "" || req.Email == "" {
		return fiber.NewError(fiber.StatusBadRequest, "name and email are required")
	}
	if req.CreditLimit.IsNegative() {
		return fiber.NewError(fiber.StatusBadRequest, "credit_limit cannot be negative")
	}

	member := &models.Member{
		Name:        req.Name,
		Email:       req.Email,
		Phone:       req.Phone,
		Address:     req.Address,
		CreditLimit: req.CreditLimit,
		Status:      models.MemberStatusActive,
	}
	if err := h.members.Create(c.UserContext(), member); err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": member})
}

type updateMemberRequest struct {
	CreditLimit *decimal.Decimal `json:"credit_limit"`
	Status      *string          `json:"status"`
}

// UpdateMember changes a member's credit limit and/or status.
func (h *AdminHandler) UpdateMember(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	var req updateMemberRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	fields := map[string]interface{}{}
	if req.CreditLimit != nil {
		if req.CreditLimit.IsNegative() {
			return fiber.NewError(fiber.StatusBadRequest, "credit_limit cannot be negative")
		}
		fields["credit_limit"] = *req.CreditLimit
	}
	if req.Status != nil {
		switch *req.Status {
		case models.MemberStatusActive, models.MemberStatusInactive, models.MemberStatusSuspended:
			fields["status"] = *req.Status
		default:
			return fiber.NewError(fiber.StatusBadRequest, "invalid status")
		}
	}
	if len(fields) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "no fields to update")
	}

	member, err := h.members.Update(c.UserContext(), id, fields)
	if err != nil {
		return err
	}

	if req.CreditLimit != nil {
		amount := decimal.NewNullDecimal(*req.CreditLimit)
		_ = h.members.RecordActivity(c.UserContext(), &models.MemberActivity{
			MemberID:    id,
			Action:      "credit_limit_update",
			Amount:      amount,
			Timestamp:   time.Now(),
			Description: "Credit limit set to " + req.CreditLimit.StringFixed(2),
		})
	}

	return c.JSON(fiber.Map{"success": true, "data": member})
}
