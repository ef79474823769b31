package application

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/ericfisherdev/speeddial/internal/domain/model"
)

// CacheKey builds the response cache key for resource fetched with cred.
// Keys of different base URLs, tokens, resources or parameters never collide.
func CacheKey(cred model.Credential, resource string, params ...string) string {
	var b strings.Builder
	b.WriteString(TenantPrefix(cred))
	b.WriteString(resource)
	for _, p := range params {
		b.WriteByte('|')
		b.WriteString(p)
	}
	return b.String()
}

// TenantPrefix is the key prefix shared by every entry cached for cred.
// Only a fingerprint of the token is embedded.
func TenantPrefix(cred model.Credential) string {
	return "lw|" + cred.BaseURL + "|" + tokenFingerprint(cred.Token) + "|"
}

// loginTokenKey holds the token obtained by a fixed-mode login.
func loginTokenKey(baseURL string) string {
	return "lw|" + baseURL + "|token"
}

func tokenFingerprint(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:8])
}
