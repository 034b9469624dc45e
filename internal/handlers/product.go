package handlers

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/example/pandol/internal/models"
	"github.com/example/pandol/internal/utils"
)

// ProductHandler manages the store's product catalog.
type ProductHandler struct {
	db *gorm.DB
}

// NewProductHandler constructs ProductHandler.
func NewProductHandler(db *gorm.DB) *ProductHandler {
	return &ProductHandler{db: db}
}

// ListProducts returns paginated products with optional filters.
func (h *ProductHandler) ListProducts(c *fiber.Ctx) error {
	pg := utils.ParsePagination(c)
	query := h.db.WithContext(c.UserContext()).Model(&models.Product{})

	if id := c.QueryInt("category_id"); id > 0 {
		query = query.Where("category_id = ?", id)
	}

	if search := strings.TrimSpace(c.Query("search")); search != "" {
		q := "%" + search + "%"
		query = query.Where("name ILIKE ? OR sku ILIKE ?", q, q)
	}

	switch c.Query("status") {
	case "active":
		query = query.Where("is_active = ?", true)
	case "inactive":
		query = query.Where("is_active = ?", false)
	case "low_stock":
		query = query.Where("stock_quantity < reorder_level")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return err
	}

	var products []models.Product
	if err := query.Preload("Category").
		Limit(pg.Limit).Offset(pg.Offset).
		Order("name asc").
		Find(&products).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success":    true,
		"data":       products,
		"pagination": pg.Meta(total),
	})
}

// GetProduct loads a product with its category.
func (h *ProductHandler) GetProduct(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	product, err := h.findProduct(c, id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": product})
}

type productRequest struct {
	Name          *string          `json:"name"`
	Description   *string          `json:"description"`
	SKU           *string          `json:"sku"`
	Price         *decimal.Decimal `json:"price"`
	BasePrice     *decimal.Decimal `json:"base_price"`
	StockQuantity *int             `json:"stock_quantity"`
	ReorderLevel  *int             `json:"reorder_level"`
	CategoryID    *uint            `json:"category_id"`
	Image         *string          `json:"image"`
	Supplier      *string          `json:"supplier"`
	ExpiryDate    *time.Time       `json:"expiry_date"`
	IsActive      *bool            `json:"is_active"`
}

// apply copies the set fields of req onto p.
func (req productRequest) apply(p *models.Product) error {
	if req.Name != nil {
		p.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.SKU != nil {
		p.SKU = strings.ToUpper(strings.TrimSpace(*req.SKU))
	}
	if req.Price != nil {
		p.Price = *req.Price
	}
	if req.BasePrice != nil {
		p.BasePrice = *req.BasePrice
	}
	if req.StockQuantity != nil {
		p.StockQuantity = *req.StockQuantity
	}
	if req.ReorderLevel != nil {
		p.ReorderLevel = *req.ReorderLevel
	}
	if req.CategoryID != nil {
		p.CategoryID = *req.CategoryID
	}
	if req.Image != nil {
		p.Image = *req.Image
	}
	if req.Supplier != nil {
		p.Supplier = *req.Supplier
	}
	if req.ExpiryDate != nil {
		p.ExpiryDate = req.ExpiryDate
	}
	if req.IsActive != nil {
		p.IsActive = *req.IsActive
	}

	switch {
	case p.Name == "" || p.SKU == "":
		return fiber.NewError(fiber.StatusBadRequest, "name and sku are required")
	case p.CategoryID == 0:
		return fiber.NewError(fiber.StatusBadRequest, "category_id is required")
	case p.Price.IsNegative() || p.BasePrice.IsNegative():
		return fiber.NewError(fiber.StatusBadRequest, "prices cannot be negative")
	case p.StockQuantity < 0 || p.ReorderLevel < 0:
		return fiber.NewError(fiber.StatusBadRequest, "stock levels cannot be negative")
	}
	return nil
}

// CreateProduct adds a product to the catalog.
func (h *ProductHandler) CreateProduct(c *fiber.Ctx) error {
	var req productRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	product := models.Product{IsActive: true}
	if err := req.apply(&product); err != nil {
		return err
	}

	if err := h.db.WithContext(c.UserContext()).Create(&product).Error; err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": product})
}

// UpdateProduct changes the given fields of a product.
func (h *ProductHandler) UpdateProduct(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	product, err := h.findProduct(c, id)
	if err != nil {
		return err
	}

	var req productRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := req.apply(product); err != nil {
		return err
	}

	product.Category = nil
	if err := h.db.WithContext(c.UserContext()).Save(product).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"success": true, "data": product})
}

// DeleteProduct archives a product. Sold products stay referenced by their
// transaction items, so rows are deactivated rather than removed.
func (h *ProductHandler) DeleteProduct(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	res := h.db.WithContext(c.UserContext()).Model(&models.Product{}).
		Where("id = ?", id).Update("is_active", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fiber.NewError(fiber.StatusNotFound, "product not found")
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *ProductHandler) findProduct(c *fiber.Ctx, id uint) (*models.Product, error) {
	var product models.Product
	if err := h.db.WithContext(c.UserContext()).Preload("Category").First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fiber.NewError(fiber.StatusNotFound, "product not found")
		}
		return nil, err
	}
	return &product, nil
}

// RegisterProductRoutes mounts the product endpoints. Reads are open to any
// signed-in user; writes need the given guard.
func (h *ProductHandler) RegisterProductRoutes(router fiber.Router, write fiber.Handler) {
	router.Get("/", h.ListProducts)
	router.Get("/:id", h.GetProduct)
	router.Post("/", write, h.CreateProduct)
	router.Put("/:id", write, h.UpdateProduct)
	router.Delete("/:id", write, h.DeleteProduct)
}
