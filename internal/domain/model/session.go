package model

import "time"

// Session is the per-browser state kept in session-login mode.
type Session struct {
	ID         string
	Credential Credential
	Username   string // informational; shown on the settings page
	Settings   Settings
	CreatedAt  time.Time
	ExpiresAt  time.Time
}

// Authenticated reports whether the session holds a usable credential.
func (s *Session) Authenticated() bool {
	return s != nil && s.Credential.IsComplete()
}

// ClearCredential drops any partially or fully set upstream credential.
func (s *Session) ClearCredential() {
	s.Credential = Credential{}
	s.Username = ""
}
