package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// PaperStatus ist der Freigabestatus einer Einreichung.
type PaperStatus string

const (
	StatusPending  PaperStatus = "pending"
	StatusApproved PaperStatus = "approved"
	StatusDenied   PaperStatus = "denied"
)

// Valid meldet, ob s einer der drei bekannten Status ist.
func (s PaperStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusDenied:
		return true
	}
	return false
}

// Paper repräsentiert eine eingereichte wissenschaftliche Arbeit.
type Paper struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Title    string `json:"title" gorm:"not null"`
	Abstract string `json:"abstract" gorm:"type:text"`

	// Autorennamen als Freitext, nur für die Anzeige
	AuthorFirst  string `json:"author_first"`
	AuthorSecond string `json:"author_second,omitempty"`
	AuthorThird  string `json:"author_third,omitempty"`

	Status     PaperStatus `json:"status" gorm:"index;not null;default:'pending'"`
	ReviewedAt *time.Time  `json:"reviewed_at,omitempty"`

	ConferenceID *uuid.UUID     `json:"conference_id,omitempty" gorm:"type:uuid;index"`
	Conference   *Conference    `json:"conference,omitempty"`
	DocumentID   *uuid.UUID     `json:"document_id,omitempty" gorm:"type:uuid"`
	Document     *PaperDocument `json:"document,omitempty"`

	// Eigentümer: explizite Relation statt Namensvergleich
	SubmittedBy uuid.UUID        `json:"submitted_by" gorm:"type:uuid;index"`
	Authors     []PaperAuthor    `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	Keywords    []PapersKeywords `json:"-" gorm:"constraint:OnDelete:CASCADE"`

	Version   int   `json:"version" gorm:"not null;default:1"`
	ViewCount int64 `json:"view_count" gorm:"not null;default:0"`
}

// TableName gibt explizit den Tabellennamen an.
func (Paper) TableName() string {
	return "papers"
}

// AuthorNames verbindet die drei Autorenfelder mit Leerzeichen.
func (p *Paper) AuthorNames() string {
	names := make([]string, 0, 3)
	for _, n := range []string{p.AuthorFirst, p.AuthorSecond, p.AuthorThird} {
		if n = strings.TrimSpace(n); n != "" {
			names = append(names, n)
		}
	}
	return strings.Join(names, " ")
}

// AuthorFields liefert die nicht-leeren Autorenfelder in ihrer Reihenfolge.
func (p *Paper) AuthorFields() []string {
	var fields []string
	for _, n := range []string{p.AuthorFirst, p.AuthorSecond, p.AuthorThird} {
		if n = strings.TrimSpace(n); n != "" {
			fields = append(fields, n)
		}
	}
	return fields
}

// IsPending meldet, ob die Arbeit noch auf eine Entscheidung wartet.
func (p *Paper) IsPending() bool {
	return p.Status == StatusPending
}

// KeywordList liefert die geladenen Keywords in Einfügereihenfolge.
func (p *Paper) KeywordList() []string {
	out := make([]string, 0, len(p.Keywords))
	for _, k := range p.Keywords {
		out = append(out, k.Keyword)
	}
	return out
}

// AuthorIDs liefert die IDs aller verknüpften Autoren-Identitäten.
func (p *Paper) AuthorIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(p.Authors))
	for _, a := range p.Authors {
		ids = append(ids, a.UserID)
	}
	return ids
}
