package models

import (
	"time"

	"github.com/google/uuid"
)

// PaperAuthor verknüpft ein Paper mit einem Benutzerkonto, das es bearbeiten darf.
type PaperAuthor struct {
	PaperID   uuid.UUID `json:"paper_id" gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `json:"user_id" gorm:"type:uuid;primaryKey;index"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName gibt explizit den Tabellennamen an.
func (PaperAuthor) TableName() string {
	return "paper_authors"
}
