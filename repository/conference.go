package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"sciencejournal/models"
)

type ConferenceRepository struct {
	db *gorm.DB
}

func NewConferenceRepository(db *gorm.DB) *ConferenceRepository {
	return &ConferenceRepository{db: db}
}

func (r *ConferenceRepository) Create(ctx context.Context, conf *models.Conference) error {
	if conf == nil {
		return ErrInvalidArgument
	}
	return translate(r.db.WithContext(ctx).Create(conf).Error)
}

// CreateAll legt mehrere Konferenzen in einem Statement an.
func (r *ConferenceRepository) CreateAll(ctx context.Context, confs []models.Conference) error {
	if len(confs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&confs).Error
}

func (r *ConferenceRepository) FindAll(ctx context.Context) ([]models.Conference, error) {
	var confs []models.Conference
	if err := r.db.WithContext(ctx).Order("name asc").Find(&confs).Error; err != nil {
		return nil, err
	}
	return confs, nil
}

func (r *ConferenceRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Conference, error) {
	var conf models.Conference
	if err := r.db.WithContext(ctx).First(&conf, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &conf, nil
}

func (r *ConferenceRepository) FindByName(ctx context.Context, name string) (*models.Conference, error) {
	var conf models.Conference
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&conf).Error; err != nil {
		return nil, translate(err)
	}
	return &conf, nil
}

func (r *ConferenceRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Conference{}).Count(&count).Error
	return count, err
}
