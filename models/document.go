package models

import (
	"time"

	"github.com/google/uuid"
)

// PaperDocument beschreibt ein hochgeladenes PDF. DocumentName ist der
// Schlüssel im Dokumentenspeicher.
type PaperDocument struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	CreatedAt    time.Time `json:"created_at"`
	DocumentName string    `json:"document_name" gorm:"uniqueIndex;not null"`
	OriginalName string    `json:"original_name"`
	ContentType  string    `json:"content_type"`
	Size         int64     `json:"size"`
}

// TableName gibt explizit den Tabellennamen an.
func (PaperDocument) TableName() string {
	return "paper_documents"
}
