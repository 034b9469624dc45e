package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Category struct {
	BaseModel
	Name        string    `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	Products    []Product `json:"products,omitempty"`
}

type Product struct {
	BaseModel
	Name          string          `gorm:"size:255;not null" json:"name"`
	Description   string          `gorm:"type:text" json:"description"`
	SKU           string          `gorm:"column:sku;size:100;uniqueIndex;not null" json:"sku"`
	Price         decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	BasePrice     decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"base_price"`
	StockQuantity int             `gorm:"not null;default:0" json:"stock_quantity"`
	ReorderLevel  int             `gorm:"not null;default:0" json:"reorder_level"`
	CategoryID    uint            `gorm:"not null;index" json:"category_id"`
	Category      *Category       `json:"category,omitempty"`
	Image         string          `gorm:"type:text" json:"image"`
	Supplier      string          `gorm:"size:255" json:"supplier"`
	ExpiryDate    *time.Time      `json:"expiry_date"`
	IsActive      bool            `gorm:"not null;default:true" json:"is_active"`
}

// StockStatus labels a product the way the inventory report does.
func (p Product) StockStatus() string {
	if p.StockQuantity < p.ReorderLevel {
		return "Low Stock"
	}
	return "In Stock"
}
