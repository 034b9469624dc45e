package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// ReconcileStatus reports the outcome of the last balance reconciliation.
type ReconcileStatus interface {
	LastReconcile() (time.Time, int)
}

// HealthHandler reports service liveness.
type HealthHandler struct {
	db         *gorm.DB
	reconciles ReconcileStatus
}

// NewHealthHandler builds the handler. reconciles may be nil when the
// scheduler is not running.
func NewHealthHandler(db *gorm.DB, reconciles ReconcileStatus) *HealthHandler {
	return &HealthHandler{db: db, reconciles: reconciles}
}

// Health pings the database and reports the last reconcile run.
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	status := fiber.StatusOK
	body := fiber.Map{"success": true, "database": "ok"}
	if err := h.ping(ctx); err != nil {
		status = fiber.StatusServiceUnavailable
		body = fiber.Map{"success": false, "database": "unreachable"}
	}

	if h.reconciles != nil {
		if at, drifted := h.reconciles.LastReconcile(); !at.IsZero() {
			body["last_reconcile"] = fiber.Map{"finished_at": at, "drifted": drifted}
		}
	}

	return c.Status(status).JSON(body)
}

func (h *HealthHandler) ping(ctx context.Context) error {
	if h.db == nil {
		return errors.New("no database configured")
	}
	sqlDB, err := h.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
