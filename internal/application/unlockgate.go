package application

import (
	"crypto/sha256"
	"crypto/subtle"
	"strings"
	"time"

	"github.com/ericfisherdev/speeddial/internal/domain/model"
)

// UnlockGate decides whether a browser has passed the optional page password.
type UnlockGate struct {
	password string
	ttl      time.Duration
}

// NewUnlockGate creates an UnlockGate. An empty password disables the gate;
// ttl <= 0 makes an unlock last for the browser session.
func NewUnlockGate(password string, ttl time.Duration) *UnlockGate {
	if ttl < 0 {
		ttl = 0
	}
	return &UnlockGate{password: password, ttl: ttl}
}

// Enabled reports whether a password is configured.
func (g *UnlockGate) Enabled() bool { return g.password != "" }

// TTL returns how long a grant lasts; zero means the browser session.
func (g *UnlockGate) TTL() time.Duration { return g.ttl }

// CheckPassword compares given with the configured password in constant time.
func (g *UnlockGate) CheckPassword(given string) bool {
	if !g.Enabled() {
		return false
	}
	want := sha256.Sum256([]byte(g.password))
	got := sha256.Sum256([]byte(strings.TrimSpace(given)))
	return subtle.ConstantTimeCompare(want[:], got[:]) == 1
}

// Grant returns the state recorded after a successful password check.
func (g *UnlockGate) Grant(now time.Time) model.UnlockState {
	state := model.UnlockState{Unlocked: true}
	if g.ttl > 0 {
		exp := now.Add(g.ttl)
		state.ExpiresAt = &exp
	}
	return state
}

// Evaluate reports whether state lets the request through at now. An expired
// state is cleared in place.
func (g *UnlockGate) Evaluate(state *model.UnlockState, now time.Time) bool {
	if !g.Enabled() {
		return true
	}
	return state.Active(now)
}
