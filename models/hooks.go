package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ensureID vergibt eine neue UUID, falls noch keine gesetzt ist.
func ensureID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

func (p *Paper) BeforeCreate(*gorm.DB) error {
	ensureID(&p.ID)
	if p.Status == "" {
		p.Status = StatusPending
	}
	if p.Version == 0 {
		p.Version = 1
	}
	return nil
}

func (c *Conference) BeforeCreate(*gorm.DB) error {
	ensureID(&c.ID)
	return nil
}

func (d *PaperDocument) BeforeCreate(*gorm.DB) error {
	ensureID(&d.ID)
	return nil
}

func (u *ScienceUser) BeforeCreate(*gorm.DB) error {
	ensureID(&u.ID)
	return nil
}
