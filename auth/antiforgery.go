package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"

	"github.com/google/uuid"
)

// AntiForgeryToken leitet das Anti-Forgery-Token eines Benutzers ab.
// Ändernde Anfragen müssen es im Header X-CSRF-Token mitschicken.
func AntiForgeryToken(secret string, userID uuid.UUID) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte("antiforgery:"))
	mac.Write(userID[:])
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

func VerifyAntiForgeryToken(secret string, userID uuid.UUID, token string) bool {
	if token == "" {
		return false
	}
	want := AntiForgeryToken(secret, userID)
	return hmac.Equal([]byte(want), []byte(token))
}
