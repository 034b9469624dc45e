package handlers

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/example/pandol/internal/models"
	"github.com/example/pandol/internal/utils"
)

// EventHandler manages cooperative events shown to members.
type EventHandler struct {
	db *gorm.DB
}

// NewEventHandler constructs EventHandler.
func NewEventHandler(db *gorm.DB) *EventHandler {
	return &EventHandler{db: db}
}

// ListEvents returns events ordered by date. upcoming=true hides past ones.
func (h *EventHandler) ListEvents(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)
	query := h.db.WithContext(c.UserContext()).Model(&models.Event{})

	if t := c.Query("type"); t != "" {
		query = query.Where("type = ?", t)
	}
	if c.QueryBool("upcoming") {
		query = query.Where("event_date >= ?", time.Now())
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var events []models.Event
	if err := query.Order("event_date asc").Limit(pg.Limit).Offset(pg.Offset).
		Find(&events).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success":    true,
		"data":       events,
		"pagination": pg.Meta(total),
	})
}

type eventRequest struct {
	Title       string           `json:"title"`
	Description string           `json:"description"`
	EventDate   time.Time        `json:"event_date"`
	Type        models.EventType `json:"type"`
}

func (req eventRequest) validate() error {
	if strings.TrimSpace(req.Title) == "" {
		return fiber.NewError(fiber.StatusBadRequest, "title is required")
	}
	if req.EventDate.IsZero() {
		return fiber.NewError(fiber.StatusBadRequest, "event_date is required")
	}
	switch req.Type {
	case models.EventOperation, models.EventCommunity, models.EventManagement:
		return nil
	}
	return fiber.NewError(fiber.StatusBadRequest, "type must be Operation, Community or Management")
}

// CreateEvent schedules a new event.
func (h *EventHandler) CreateEvent(c *fiber.Ctx) error {
	var req eventRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := req.validate(); err != nil {
		return err
	}

	event := models.Event{
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		EventDate:   req.EventDate,
		Type:        req.Type,
	}
	if err := h.db.WithContext(c.UserContext()).Create(&event).Error; err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": event})
}

// UpdateEvent replaces an event's details.
func (h *EventHandler) UpdateEvent(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	var event models.Event
	if err := h.db.WithContext(c.UserContext()).First(&event, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "event not found")
		}
		return err
	}

	var req eventRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := req.validate(); err != nil {
		return err
	}

	event.Title = strings.TrimSpace(req.Title)
	event.Description = req.Description
	event.EventDate = req.EventDate
	event.Type = req.Type

	if err := h.db.WithContext(c.UserContext()).Save(&event).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": event})
}

// DeleteEvent removes an event.
func (h *EventHandler) DeleteEvent(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	res := h.db.WithContext(c.UserContext()).Delete(&models.Event{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fiber.NewError(fiber.StatusNotFound, "event not found")
	}

	return c.SendStatus(fiber.StatusNoContent)
}
