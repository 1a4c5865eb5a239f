package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"sciencejournal/models"
)

// PaperFilter schränkt FindAll ein. Status nil liefert alle Status.
type PaperFilter struct {
	Status *models.PaperStatus
	Limit  int
}

type PaperRepository struct {
	db *gorm.DB
}

func NewPaperRepository(db *gorm.DB) *PaperRepository {
	return &PaperRepository{db: db}
}

// WithTx liefert ein Repository, das in tx arbeitet.
func (r *PaperRepository) WithTx(tx *gorm.DB) *PaperRepository {
	return &PaperRepository{db: tx}
}

func (r *PaperRepository) Create(ctx context.Context, paper *models.Paper) error {
	if paper == nil {
		return ErrInvalidArgument
	}
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(paper).Error
}

func orderedKeywords(db *gorm.DB) *gorm.DB {
	return db.Order("papers_keywords.id asc")
}

// FindByID lädt ein Paper samt Konferenz, Dokument, Autoren und Keywords.
func (r *PaperRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Paper, error) {
	var paper models.Paper
	err := r.db.WithContext(ctx).
		Preload("Conference").
		Preload("Document").
		Preload("Authors").
		Preload("Keywords", orderedKeywords).
		First(&paper, "id = ?", id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &paper, nil
}

func (r *PaperRepository) FindAll(ctx context.Context, filter PaperFilter) ([]models.Paper, error) {
	query := r.db.WithContext(ctx).
		Preload("Conference").
		Preload("Keywords", orderedKeywords)
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	var papers []models.Paper
	if err := query.Order("created_at desc").Find(&papers).Error; err != nil {
		return nil, err
	}
	return papers, nil
}

func (r *PaperRepository) FindPending(ctx context.Context) ([]models.Paper, error) {
	status := models.StatusPending
	return r.FindAll(ctx, PaperFilter{Status: &status})
}

// FindByAuthor liefert die Paper, die über paper_authors mit userID verknüpft sind.
func (r *PaperRepository) FindByAuthor(ctx context.Context, userID uuid.UUID) ([]models.Paper, error) {
	db := r.db.WithContext(ctx)
	owned := db.Model(&models.PaperAuthor{}).Select("paper_id").Where("user_id = ?", userID)
	var papers []models.Paper
	err := db.
		Preload("Conference").
		Preload("Keywords", orderedKeywords).
		Where("id IN (?)", owned).
		Order("created_at desc").
		Find(&papers).Error
	if err != nil {
		return nil, err
	}
	return papers, nil
}

// Update schreibt die bearbeitbaren Felder, sofern Version noch der
// gespeicherten entspricht, und erhöht sie. Sonst ErrConflict.
func (r *PaperRepository) Update(ctx context.Context, paper *models.Paper) error {
	if paper == nil {
		return ErrInvalidArgument
	}
	now := time.Now()
	res := r.db.WithContext(ctx).
		Model(&models.Paper{}).
		Where("id = ? AND version = ?", paper.ID, paper.Version).
		Updates(map[string]any{
			"title":         paper.Title,
			"abstract":      paper.Abstract,
			"author_first":  paper.AuthorFirst,
			"author_second": paper.AuthorSecond,
			"author_third":  paper.AuthorThird,
			"conference_id": paper.ConferenceID,
			"version":       gorm.Expr("version + 1"),
			"updated_at":    now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrConflict
	}
	paper.Version++
	paper.UpdatedAt = now
	return nil
}

// UpdateStatus setzt den Status von from auf to. Ist der gespeicherte
// Status nicht mehr from, gibt es ErrConflict.
func (r *PaperRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to models.PaperStatus, at time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&models.Paper{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]any{
			"status":      to,
			"reviewed_at": at,
			"version":     gorm.Expr("version + 1"),
			"updated_at":  at,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrConflict
	}
	return nil
}

func (r *PaperRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&models.Paper{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PaperRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Paper{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

func (r *PaperRepository) CountByStatus(ctx context.Context, status models.PaperStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Paper{}).Where("status = ?", status).Count(&count).Error
	return count, err
}

// AddViews erhöht view_count um n, ohne die Version anzufassen.
// Existiert das Paper nicht mehr, gibt es ErrNotFound.
func (r *PaperRepository) AddViews(ctx context.Context, id uuid.UUID, n int64) error {
	res := r.db.WithContext(ctx).
		Model(&models.Paper{}).
		Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + ?", n))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ReplaceAuthors ersetzt die verknüpften Autoren durch userIDs.
func (r *PaperRepository) ReplaceAuthors(ctx context.Context, paperID uuid.UUID, userIDs []uuid.UUID) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("paper_id = ?", paperID).Delete(&models.PaperAuthor{}).Error; err != nil {
		return err
	}
	seen := make(map[uuid.UUID]bool, len(userIDs))
	rows := make([]models.PaperAuthor, 0, len(userIDs))
	for _, id := range userIDs {
		if id == uuid.Nil || seen[id] {
			continue
		}
		seen[id] = true
		rows = append(rows, models.PaperAuthor{PaperID: paperID, UserID: id})
	}
	if len(rows) == 0 {
		return nil
	}
	return db.Create(&rows).Error
}

func (r *PaperRepository) DeleteAuthors(ctx context.Context, paperID uuid.UUID) error {
	return r.db.WithContext(ctx).Where("paper_id = ?", paperID).Delete(&models.PaperAuthor{}).Error
}
