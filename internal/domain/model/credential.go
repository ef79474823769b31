package model

import (
	"errors"
	"net/url"
	"strings"
)

// ErrInvalidBaseURL is returned by NormalizeBaseURL for empty or hostless input.
var ErrInvalidBaseURL = errors.New("invalid linkwarden base URL")

// Credential is the upstream base URL and bearer token used for one call.
// BaseURL is always normalized: explicit scheme, no trailing slash.
type Credential struct {
	BaseURL string
	Token   string
}

// IsComplete reports whether both the base URL and the token are present.
func (c Credential) IsComplete() bool {
	return c.BaseURL != "" && c.Token != ""
}

// NormalizeBaseURL trims whitespace and trailing slashes and defaults the
// scheme to https:// when the caller omitted one.
func NormalizeBaseURL(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", ErrInvalidBaseURL
	}
	if !strings.Contains(s, "://") {
		s = "https://" + s
	}
	s = strings.TrimRight(s, "/")

	u, err := url.Parse(s)
	if err != nil || u.Host == "" {
		return "", ErrInvalidBaseURL
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", ErrInvalidBaseURL
	}
	return s, nil
}
