package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/example/pandol/internal/services"
	"github.com/example/pandol/internal/utils"
)

// PosHandler serves the cashier's point-of-sale endpoints.
type PosHandler struct {
	sales *services.SaleService
}

// NewPosHandler constructs PosHandler.
func NewPosHandler(sales *services.SaleService) *PosHandler {
	return &PosHandler{sales: sales}
}

type checkoutRequest struct {
	MemberID      *uint                   `json:"member_id"`
	PaymentMethod string                  `json:"payment_method"`
	Discount      decimal.Decimal         `json:"manual_discount_amount"`
	Items         []services.CheckoutItem `json:"items"`
}

// Checkout rings up a sale.
func (h *PosHandler) Checkout(c *fiber.Ctx) error {
	var req checkoutRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	sale, err := h.sales.Checkout(c.UserContext(), services.CheckoutParams{
		MemberID:      req.MemberID,
		PaymentMethod: req.PaymentMethod,
		Discount:      req.Discount,
		Items:         req.Items,
	})
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": sale})
}

// ListTransactions returns recorded sales, optionally for one member.
func (h *PosHandler) ListTransactions(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)

	var memberID *uint
	if raw := c.Query("member_id"); raw != "" {
		id := c.QueryInt("member_id")
		if id <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "invalid member_id")
		}
		v := uint(id)
		memberID = &v
	}

	sales, total, err := h.sales.List(c.UserContext(), pg, memberID)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success":    true,
		"data":       sales,
		"pagination": pg.Meta(total),
	})
}
