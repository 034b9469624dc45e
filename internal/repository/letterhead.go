package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/example/pandol/internal/models"
)

// LetterheadRepository stores the single letterhead row.
type LetterheadRepository struct {
	db *gorm.DB
}

func NewLetterheadRepository(db *gorm.DB) *LetterheadRepository {
	return &LetterheadRepository{db: db}
}

// Get returns the saved letterhead or ErrNotFound.
func (r *LetterheadRepository) Get(ctx context.Context) (*models.Letterhead, error) {
	var lh models.Letterhead
	if err := r.db.WithContext(ctx).Order("id").First(&lh).Error; err != nil {
		return nil, translate(err, "get letterhead")
	}
	return &lh, nil
}

// Save creates the letterhead or overwrites the existing one.
func (r *LetterheadRepository) Save(ctx context.Context, lh *models.Letterhead) error {
	current, err := r.Get(ctx)
	if err == nil {
		lh.ID = current.ID
		lh.CreatedAt = current.CreatedAt
	}
	return translate(r.db.WithContext(ctx).Save(lh).Error, "save letterhead")
}
