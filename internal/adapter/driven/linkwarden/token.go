package linkwarden

import "strings"

// tokenKeys are probed in order inside "response" and then at top level.
var tokenKeys = []string{"token", "accessToken", "access_token", "jwt", "secretKey"}

// ExtractToken finds a bearer token in a login or token-creation response.
// Linkwarden sometimes wraps it in {"response": {...}}; only non-empty string
// values count.
func ExtractToken(payload any) string {
	obj, ok := payload.(map[string]any)
	if !ok {
		return ""
	}
	if inner, ok := obj["response"].(map[string]any); ok {
		if tok := firstToken(inner); tok != "" {
			return tok
		}
	}
	return firstToken(obj)
}

func firstToken(obj map[string]any) string {
	for _, k := range tokenKeys {
		if s, ok := obj[k].(string); ok {
			if s = strings.TrimSpace(s); s != "" {
				return s
			}
		}
	}
	return ""
}
