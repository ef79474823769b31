package model

import "time"

// UnlockState records whether the password gate has been passed.
// A nil ExpiresAt means the unlock lasts as long as the browser session.
type UnlockState struct {
	Unlocked  bool
	ExpiresAt *time.Time
}

// Active reports whether the state grants access at now. An expired state is
// cleared in place so the caller can persist the re-locked value.
func (s *UnlockState) Active(now time.Time) bool {
	if s == nil || !s.Unlocked {
		return false
	}
	if s.ExpiresAt == nil {
		return true
	}
	if !now.After(*s.ExpiresAt) {
		return true
	}
	s.Unlocked = false
	s.ExpiresAt = nil
	return false
}
