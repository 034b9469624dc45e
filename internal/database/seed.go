package database

import (
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/example/pandol/internal/models"
	"github.com/example/pandol/internal/utils"
)

type seedProduct struct {
	name     string
	category string
	sku      string
	price    string
	base     string
	stock    int
	reorder  int
}

var seedProducts = []seedProduct{
	{"Organic Apples", "Produce", "PRD-0001", "45.00", "32.00", 45, 10},
	{"Whole Milk", "Dairy", "DRY-0001", "98.50", "80.00", 12, 15},
	{"Whole Wheat Bread", "Bakery", "BKR-0001", "65.00", "48.00", 30, 8},
	{"Free Range Eggs", "Dairy", "DRY-0002", "120.00", "95.00", 24, 12},
	{"Organic Bananas", "Produce", "PRD-0002", "60.00", "42.00", 5, 10},
}

// Seed inserts a small demo catalog and an admin account when the database is
// empty. It is a no-op on a populated database.
func Seed(conn *gorm.DB, adminEmail, adminPassword string) error {
	var count int64
	if err := conn.Model(&models.Product{}).Count(&count).Error; err != nil {
		return errors.Wrap(err, "count products")
	}
	if count > 0 {
		return nil
	}

	return conn.Transaction(func(tx *gorm.DB) error {
		categories := map[string]uint{}
		for _, p := range seedProducts {
			if _, ok := categories[p.category]; ok {
				continue
			}
			category := models.Category{Name: p.category}
			if err := tx.Where(models.Category{Name: p.category}).FirstOrCreate(&category).Error; err != nil {
				return errors.Wrap(err, "seed category")
			}
			categories[p.category] = category.ID
		}

		for _, p := range seedProducts {
			product := models.Product{
				Name:          p.name,
				SKU:           p.sku,
				Price:         decimal.RequireFromString(p.price),
				BasePrice:     decimal.RequireFromString(p.base),
				StockQuantity: p.stock,
				ReorderLevel:  p.reorder,
				CategoryID:    categories[p.category],
				IsActive:      true,
			}
			if err := tx.Create(&product).Error; err != nil {
				return errors.Wrap(err, "seed product")
			}
		}

		if adminEmail == "" || adminPassword == "" {
			return nil
		}

		var role models.Role
		if err := tx.Where("name = ?", models.RoleAdmin).First(&role).Error; err != nil {
			return errors.Wrap(err, "load admin role")
		}

		hash, err := utils.HashPassword(adminPassword)
		if err != nil {
			return errors.Wrap(err, "hash admin password")
		}

		admin := models.User{Name: "Administrator", Email: adminEmail, PasswordHash: hash, RoleID: role.ID}
		return errors.Wrap(tx.Where(models.User{Email: adminEmail}).FirstOrCreate(&admin).Error, "seed admin")
	})
}
