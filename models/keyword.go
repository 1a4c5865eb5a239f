package models

import "github.com/google/uuid"

// PapersKeywords ordnet einem Paper ein Keyword zu. Die fortlaufende ID
// bestimmt die Einfügereihenfolge; Duplikate sind erlaubt.
type PapersKeywords struct {
	ID      uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	PaperID uuid.UUID `json:"paper_id" gorm:"type:uuid;index;not null"`
	Keyword string    `json:"keyword" gorm:"not null"`
}

// TableName gibt explizit den Tabellennamen an.
func (PapersKeywords) TableName() string {
	return "papers_keywords"
}
