package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"sciencejournal/models"
)

type DocumentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

// WithTx liefert ein Repository, das in tx arbeitet.
func (r *DocumentRepository) WithTx(tx *gorm.DB) *DocumentRepository {
	return &DocumentRepository{db: tx}
}

func (r *DocumentRepository) Create(ctx context.Context, doc *models.PaperDocument) error {
	if doc == nil {
		return ErrInvalidArgument
	}
	return r.db.WithContext(ctx).Create(doc).Error
}

func (r *DocumentRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.PaperDocument, error) {
	var doc models.PaperDocument
	if err := r.db.WithContext(ctx).First(&doc, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &doc, nil
}

func (r *DocumentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.PaperDocument{}, "id = ?", id).Error
}
