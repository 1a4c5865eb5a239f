package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"sciencejournal/models"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// WithTx liefert ein Repository, das in tx arbeitet.
func (r *UserRepository) WithTx(tx *gorm.DB) *UserRepository {
	return &UserRepository{db: tx}
}

func (r *UserRepository) Create(ctx context.Context, user *models.ScienceUser) error {
	if user == nil {
		return ErrInvalidArgument
	}
	user.Email = normalizeEmail(user.Email)
	return translate(r.db.WithContext(ctx).Create(user).Error)
}

func (r *UserRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.ScienceUser, error) {
	var user models.ScienceUser
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.ScienceUser, error) {
	var user models.ScienceUser
	if err := r.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

// FindByEmails liefert die registrierten Benutzer zu emails. Unbekannte Adressen fehlen einfach.
func (r *UserRepository) FindByEmails(ctx context.Context, emails []string) ([]models.ScienceUser, error) {
	normalized := make([]string, 0, len(emails))
	for _, e := range emails {
		if e = normalizeEmail(e); e != "" {
			normalized = append(normalized, e)
		}
	}
	if len(normalized) == 0 {
		return nil, nil
	}
	var users []models.ScienceUser
	if err := r.db.WithContext(ctx).Where("email IN ?", normalized).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
