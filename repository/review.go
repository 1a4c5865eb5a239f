package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"sciencejournal/models"
)

type ReviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// WithTx liefert ein Repository, das in tx arbeitet.
func (r *ReviewRepository) WithTx(tx *gorm.DB) *ReviewRepository {
	return &ReviewRepository{db: tx}
}

func (r *ReviewRepository) Create(ctx context.Context, review *models.PaperReview) error {
	if review == nil {
		return ErrInvalidArgument
	}
	return r.db.WithContext(ctx).Create(review).Error
}

func (r *ReviewRepository) FindByPaper(ctx context.Context, paperID uuid.UUID) ([]models.PaperReview, error) {
	var reviews []models.PaperReview
	err := r.db.WithContext(ctx).Where("paper_id = ?", paperID).Order("id asc").Find(&reviews).Error
	return reviews, err
}

func (r *ReviewRepository) DeleteByPaper(ctx context.Context, paperID uuid.UUID) error {
	return r.db.WithContext(ctx).Where("paper_id = ?", paperID).Delete(&models.PaperReview{}).Error
}
