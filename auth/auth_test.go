package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"sciencejournal/models"
)

func TestPrincipalCapabilities(t *testing.T) {
	owner := &Principal{UserID: uuid.New(), Email: "ana@example.org"}
	stranger := &Principal{UserID: uuid.New(), Email: "bo@example.org"}
	admin := &Principal{UserID: uuid.New(), Email: "root@example.org", Admin: true}
	paper := &models.Paper{
		// der Text im Autorenfeld zählt nicht, nur die verknüpfte Identität
		AuthorFirst: "bo@example.org",
		Authors:     []models.PaperAuthor{{UserID: owner.UserID}},
	}

	tests := []struct {
		name      string
		p         *Principal
		owner     bool
		canModify bool
		admin     bool
	}{
		{"owner", owner, true, true, false},
		{"stranger named in author field", stranger, false, false, false},
		{"admin", admin, false, true, true},
		{"anonymous", nil, false, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.p.IsOwnerOf(paper); got != tt.owner {
				t.Errorf("IsOwnerOf = %v, want %v", got, tt.owner)
			}
			if got := tt.p.CanModify(paper); got != tt.canModify {
				t.Errorf("CanModify = %v, want %v", got, tt.canModify)
			}
			if got := tt.p.HasCapability(CapabilityAdmin); got != tt.admin {
				t.Errorf("HasCapability(admin) = %v, want %v", got, tt.admin)
			}
		})
	}
}

func TestTokenRoundTrip(t *testing.T) {
	id := uuid.New()
	token, err := GenerateToken("secret", id, "ana@example.org", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	claims, err := ValidateToken("secret", token)
	if err != nil {
		t.Fatal(err)
	}
	got, err := claims.UserUUID()
	if err != nil || got != id {
		t.Fatalf("user id = %v, %v", got, err)
	}
	if _, err := ValidateToken("other-secret", token); err == nil {
		t.Fatal("token validated with the wrong secret")
	}

	expired, _ := GenerateToken("secret", id, "ana@example.org", -time.Minute)
	if _, err := ValidateToken("secret", expired); err == nil {
		t.Fatal("expired token accepted")
	}
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("correct horse")
	if err != nil {
		t.Fatal(err)
	}
	if !CheckPassword("correct horse", hash) {
		t.Fatal("password rejected")
	}
	if CheckPassword("wrong", hash) {
		t.Fatal("wrong password accepted")
	}
}

func TestAntiForgeryToken(t *testing.T) {
	id := uuid.New()
	token := AntiForgeryToken("secret", id)
	if !VerifyAntiForgeryToken("secret", id, token) {
		t.Fatal("valid token rejected")
	}
	if VerifyAntiForgeryToken("secret", uuid.New(), token) {
		t.Fatal("token accepted for another user")
	}
	if VerifyAntiForgeryToken("secret", id, "") {
		t.Fatal("empty token accepted")
	}
}
