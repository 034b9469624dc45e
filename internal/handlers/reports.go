package handlers

import (
	"bytes"

	"github.com/gofiber/fiber/v2"

	"github.com/example/pandol/internal/report"
	"github.com/example/pandol/internal/services"
)

// ReportHandler serves report previews and printable documents.
type ReportHandler struct {
	reports *services.ReportService
}

// NewReportHandler constructs ReportHandler.
func NewReportHandler(reports *services.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// ListOptions returns the report types and time ranges the UI offers.
func (h *ReportHandler) ListOptions(c *fiber.Ctx) error {
	ranges := make([]fiber.Map, 0, len(report.TimeRanges))
	for _, r := range report.TimeRanges {
		ranges = append(ranges, fiber.Map{"value": r, "label": report.TimeRangeLabel(r)})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"types":       report.Kinds,
			"time_ranges": ranges,
			"formats":     []string{"pdf", "html", "csv"},
		},
	})
}

// Preview returns the report as JSON.
func (h *ReportHandler) Preview(c *fiber.Ctx) error {
	r, err := h.reports.Build(c.UserContext(), c.Params("kind"), c.Query("range"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": r})
}

// Print renders the printable document. format=csv downloads the table
// instead; pdf and html both return the document, which prints on load
// unless autoprint=false.
func (h *ReportHandler) Print(c *fiber.Ctx) error {
	format := c.Query("format", "pdf")
	switch format {
	case "pdf", "html":
	case "csv":
		return h.CSV(c)
	default:
		return fiber.NewError(fiber.StatusBadRequest, "format must be pdf, html or csv")
	}

	r, err := h.reports.Build(c.UserContext(), c.Params("kind"), c.Query("range"))
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := h.reports.RenderDocument(c.UserContext(), &buf, r, c.QueryBool("autoprint", true)); err != nil {
		return err
	}

	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.Send(buf.Bytes())
}

// CSV downloads the report table as CSV.
func (h *ReportHandler) CSV(c *fiber.Ctx) error {
	r, err := h.reports.Build(c.UserContext(), c.Params("kind"), c.Query("range"))
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := report.RenderCSV(&buf, r); err != nil {
		return err
	}

	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Attachment(r.Reference + ".csv")
	return c.Send(buf.Bytes())
}
