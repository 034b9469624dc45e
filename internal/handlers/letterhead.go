package handlers

import (
	"net/mail"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/example/pandol/internal/report"
	"github.com/example/pandol/internal/services"
)

// LetterheadHandler manages the letterhead printed on report documents.
type LetterheadHandler struct {
	reports *services.ReportService
}

// NewLetterheadHandler constructs LetterheadHandler.
func NewLetterheadHandler(reports *services.ReportService) *LetterheadHandler {
	return &LetterheadHandler{reports: reports}
}

type letterheadPayload struct {
	CompanyName string `json:"company_name"`
	Address     string `json:"address"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
	FooterNote  string `json:"footer_note"`
}

func payloadFromLetterhead(lh report.Letterhead) letterheadPayload {
	return letterheadPayload{
		CompanyName: lh.CompanyName,
		Address:     lh.Address,
		Phone:       lh.Phone,
		Email:       lh.Email,
		FooterNote:  lh.FooterNote,
	}
}

// GetLetterhead returns the saved letterhead, falling back to the defaults.
func (h *LetterheadHandler) GetLetterhead(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"success": true,
		"data":    payloadFromLetterhead(h.reports.Letterhead(c.UserContext())),
	})
}

// UpdateLetterhead saves the letterhead. Blank fields print the defaults.
func (h *LetterheadHandler) UpdateLetterhead(c *fiber.Ctx) error {
	var input letterheadPayload
	if err := c.BodyParser(&input); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if email := strings.TrimSpace(input.Email); email != "" {
		if _, err := mail.ParseAddress(email); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid email format")
		}
	}

	lh := report.Letterhead{
		CompanyName: strings.TrimSpace(input.CompanyName),
		Address:     strings.TrimSpace(input.Address),
		Phone:       strings.TrimSpace(input.Phone),
		Email:       strings.TrimSpace(input.Email),
		FooterNote:  strings.TrimSpace(input.FooterNote),
	}
	if err := h.reports.SaveLetterhead(c.UserContext(), lh); err != nil {
		return err
	}

	return h.GetLetterhead(c)
}
