package models

import (
	"time"

	"github.com/google/uuid"
)

// ScienceUser ist ein Benutzerkonto des Portals.
type ScienceUser struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Email        string    `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"not null"`
	IsAdmin      bool      `json:"is_admin" gorm:"not null;default:false"`
}

// TableName gibt explizit den Tabellennamen an.
func (ScienceUser) TableName() string {
	return "science_users"
}
