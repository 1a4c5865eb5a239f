package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// PaperReview protokolliert eine Freigabe- oder Ablehnungsentscheidung.
type PaperReview struct {
	ID         uint        `json:"id" gorm:"primaryKey"`
	CreatedAt  time.Time   `json:"created_at"`
	PaperID    uuid.UUID   `json:"paper_id" gorm:"type:uuid;index;not null"`
	ReviewerID uuid.UUID   `json:"reviewer_id" gorm:"type:uuid;not null"`
	Decision   PaperStatus `json:"decision" gorm:"not null"`

	// Vorheriger Status, E-Mail des Prüfers usw.
	Details datatypes.JSON `json:"details"`
}

// TableName gibt explizit den Tabellennamen an.
func (PaperReview) TableName() string {
	return "paper_reviews"
}
