package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/example/pandol/internal/models"
	"github.com/example/pandol/internal/services"
	"github.com/example/pandol/internal/utils"
)

// CreditHandler exposes the member credit ledger.
type CreditHandler struct {
	credits *services.CreditService
}

// NewCreditHandler constructs CreditHandler.
func NewCreditHandler(credits *services.CreditService) *CreditHandler {
	return &CreditHandler{credits: credits}
}

type postCreditRequest struct {
	Amount decimal.Decimal   `json:"amount"`
	Type   models.CreditType `json:"type"`
	Notes  string            `json:"notes"`
}

// PostCredit records a ledger entry against a member.
func (h *CreditHandler) PostCredit(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	var req postCreditRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	entry, member, err := h.credits.Post(c.UserContext(), services.PostCreditParams{
		MemberID: id,
		Amount:   req.Amount,
		Type:     req.Type,
		Notes:    req.Notes,
	})
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"entry":          entry,
			"credit_balance": member.CreditBalance,
			"credit_limit":   member.CreditLimit,
		},
	})
}

// ListCredits returns a member's ledger, newest first.
func (h *CreditHandler) ListCredits(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	pg := utils.ParsePagination(c)
	entries, total, err := h.credits.Ledger(c.UserContext(), id, pg)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success":    true,
		"data":       entries,
		"pagination": pg.Meta(total),
	})
}

// Reconcile compares cached balances with the ledger now instead of waiting
// for the nightly job.
func (h *CreditHandler) Reconcile(c *fiber.Ctx) error {
	drift, err := h.credits.Reconcile(c.UserContext())
	if err != nil {
		return err
	}
	if drift == nil {
		drift = []services.BalanceDrift{}
	}

	return c.JSON(fiber.Map{"success": true, "data": drift})
}
