package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"sciencejournal/models"
)

// KeywordRepository speichert die Keywords eines Papers.
// Außerhalb einer Transaktion wird jeder Aufruf einzeln committet.
type KeywordRepository struct {
	db *gorm.DB
}

func NewKeywordRepository(db *gorm.DB) *KeywordRepository {
	return &KeywordRepository{db: db}
}

// WithTx liefert ein Repository, das in tx arbeitet.
func (r *KeywordRepository) WithTx(tx *gorm.DB) *KeywordRepository {
	return &KeywordRepository{db: tx}
}

func (r *KeywordRepository) Add(ctx context.Context, item *models.PapersKeywords) error {
	if item == nil {
		return ErrInvalidArgument
	}
	return r.db.WithContext(ctx).Create(item).Error
}

// AddAll fügt die Keywords in der übergebenen Reihenfolge ein.
func (r *KeywordRepository) AddAll(ctx context.Context, paperID uuid.UUID, keywords []string) error {
	for _, kw := range keywords {
		if err := r.Add(ctx, &models.PapersKeywords{PaperID: paperID, Keyword: kw}); err != nil {
			return err
		}
	}
	return nil
}

// FindKeywordsByPaper liefert die Keywords in Einfügereihenfolge.
func (r *KeywordRepository) FindKeywordsByPaper(ctx context.Context, paperID uuid.UUID) ([]string, error) {
	keywords := []string{}
	err := r.db.WithContext(ctx).
		Model(&models.PapersKeywords{}).
		Where("paper_id = ?", paperID).
		Order("id asc").
		Pluck("keyword", &keywords).Error
	if err != nil {
		return nil, err
	}
	return keywords, nil
}

func (r *KeywordRepository) Update(ctx context.Context, entity *models.PapersKeywords) error {
	if entity == nil {
		return ErrInvalidArgument
	}
	return r.db.WithContext(ctx).Save(entity).Error
}

func (r *KeywordRepository) Delete(ctx context.Context, entity *models.PapersKeywords) error {
	if entity == nil {
		return ErrInvalidArgument
	}
	return r.db.WithContext(ctx).Delete(entity).Error
}

// DeleteAllKeywordsForPaper lädt alle Zeilen des Papers und löscht sie gesammelt.
func (r *KeywordRepository) DeleteAllKeywordsForPaper(ctx context.Context, paperID uuid.UUID) error {
	var rows []models.PapersKeywords
	db := r.db.WithContext(ctx)
	if err := db.Where("paper_id = ?", paperID).Find(&rows).Error; err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}
	return db.Delete(&rows).Error
}
