package models

import (
	"time"

	"github.com/google/uuid"
)

// Conference ist der Veranstaltungsort, dem ein Paper zugeordnet wird.
type Conference struct {
	ID          uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	CreatedAt   time.Time  `json:"created_at"`
	Name        string     `json:"name" gorm:"uniqueIndex;not null"`
	Location    string     `json:"location,omitempty"`
	Description string     `json:"description,omitempty" gorm:"type:text"`
	StartsAt    *time.Time `json:"starts_at,omitempty"`
}

// TableName gibt explizit den Tabellennamen an.
func (Conference) TableName() string {
	return "conferences"
}
