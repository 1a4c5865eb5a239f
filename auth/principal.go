package auth

import (
	"github.com/google/uuid"

	"sciencejournal/models"
)

// Capability ist eine Berechtigung eines Principals.
type Capability string

const CapabilityAdmin Capability = "admin"

// Principal ist die Identität hinter einer Anfrage.
type Principal struct {
	UserID uuid.UUID
	Email  string
	Admin  bool
}

// FromUser erstellt einen Principal aus einem gespeicherten Konto.
func FromUser(u *models.ScienceUser) *Principal {
	return &Principal{UserID: u.ID, Email: u.Email, Admin: u.IsAdmin}
}

func (p *Principal) HasCapability(c Capability) bool {
	if p == nil {
		return false
	}
	switch c {
	case CapabilityAdmin:
		return p.Admin
	}
	return false
}

// IsOwnerOf meldet, ob der Principal einer der verknüpften Autoren ist.
// paper.Authors muss geladen sein.
func (p *Principal) IsOwnerOf(paper *models.Paper) bool {
	if p == nil || paper == nil {
		return false
	}
	for _, a := range paper.Authors {
		if a.UserID == p.UserID {
			return true
		}
	}
	return false
}

// CanModify meldet, ob der Principal das Paper bearbeiten oder löschen darf.
func (p *Principal) CanModify(paper *models.Paper) bool {
	return p.HasCapability(CapabilityAdmin) || p.IsOwnerOf(paper)
}
