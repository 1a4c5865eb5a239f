package controllers

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"sciencejournal/models"
	"sciencejournal/services"
)

// PaperSummary ist die Listenansicht eines Papers mit gekürztem Abstract.
type PaperSummary struct {
	ID         uuid.UUID          `json:"id"`
	Title      string             `json:"title"`
	Abstract   string             `json:"abstract"`
	Authors    string             `json:"authors"`
	Status     models.PaperStatus `json:"status"`
	Conference string             `json:"conference,omitempty"`
	Keywords   []string           `json:"keywords"`
	ViewCount  int64              `json:"view_count"`
	CreatedAt  time.Time          `json:"created_at"`
}

// PaperDetail ist die vollständige Ansicht eines Papers.
type PaperDetail struct {
	*models.Paper
	Authors    string   `json:"authors"`
	KeywordSet []string `json:"keywords"`
}

func truncateAbstract(s string, max int) string {
	runes := []rune(s)
	if max <= 0 || len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}

func summarize(papers []models.Paper, previewLen int) []PaperSummary {
	out := make([]PaperSummary, 0, len(papers))
	for i := range papers {
		p := &papers[i]
		s := PaperSummary{
			ID:        p.ID,
			Title:     p.Title,
			Abstract:  truncateAbstract(p.Abstract, previewLen),
			Authors:   p.AuthorNames(),
			Status:    p.Status,
			Keywords:  p.KeywordList(),
			ViewCount: p.ViewCount,
			CreatedAt: p.CreatedAt,
		}
		if p.Conference != nil {
			s.Conference = p.Conference.Name
		}
		out = append(out, s)
	}
	return out
}

func detail(p *models.Paper) PaperDetail {
	return PaperDetail{Paper: p, Authors: p.AuthorNames(), KeywordSet: p.KeywordList()}
}

// paperForm bindet Formular- und JSON-Felder einer Einreichung.
type paperForm struct {
	ID           string   `form:"id" json:"id"`
	Version      int      `form:"version" json:"version"`
	Title        string   `form:"title" json:"title"`
	Abstract     string   `form:"abstract" json:"abstract"`
	AuthorFirst  string   `form:"author_first" json:"author_first"`
	AuthorSecond string   `form:"author_second" json:"author_second"`
	AuthorThird  string   `form:"author_third" json:"author_third"`
	ConferenceID string   `form:"conference_id" json:"conference_id"`
	Keywords     []string `form:"keywords" json:"keywords"`

	// jsonBody: Keywords kamen als JSON-Array und bleiben unverändert.
	jsonBody bool
}

func (f *paperForm) input() (services.PaperInput, error) {
	in := services.PaperInput{
		Version:      f.Version,
		Title:        f.Title,
		Abstract:     f.Abstract,
		AuthorFirst:  f.AuthorFirst,
		AuthorSecond: f.AuthorSecond,
		AuthorThird:  f.AuthorThird,
	}
	if f.ID != "" {
		id, err := uuid.Parse(f.ID)
		if err != nil {
			return in, services.ErrNotFound
		}
		in.ID = id
	}
	if f.ConferenceID != "" {
		id, err := uuid.Parse(f.ConferenceID)
		if err != nil {
			return in, fmt.Errorf("%w: conference_id is not a valid id", services.ErrInvalidArgument)
		}
		in.ConferenceID = &id
	}
	if f.jsonBody {
		in.Keywords = append(in.Keywords, f.Keywords...)
		return in, nil
	}
	// Formular: "ml, nlp" und wiederholte Felder werden gleich behandelt
	for _, v := range f.Keywords {
		in.Keywords = append(in.Keywords, strings.Split(v, ",")...)
	}
	return in, nil
}
