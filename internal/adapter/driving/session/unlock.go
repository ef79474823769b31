package session

import (
	"errors"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/ericfisherdev/speeddial/internal/domain/model"
)

// UnlockCookieName carries the signed password-gate state.
const UnlockCookieName = "sd_unlock"

// unlockClaims is the JWT payload of the unlock cookie. Both expiry claims
// are absent for unlocks that last the browser session. The registered exp is
// whole seconds, so the exact instant travels in ExpiresNano.
type unlockClaims struct {
	Unlocked    bool  `json:"unl"`
	ExpiresNano int64 `json:"exp_ns,omitempty"`
	jwt.RegisteredClaims
}

// UnlockCodec reads and writes model.UnlockState as an HS256-signed cookie.
type UnlockCodec struct {
	key    []byte
	secure bool
}

// NewUnlockCodec creates an UnlockCodec signing with key.
func NewUnlockCodec(key []byte, secure bool) *UnlockCodec {
	return &UnlockCodec{key: key, secure: secure}
}

// Read returns the unlock state of r. Missing, tampered or malformed cookies
// yield a locked state. Expiry is left to the caller.
func (c *UnlockCodec) Read(r *http.Request) *model.UnlockState {
	cookie, err := r.Cookie(UnlockCookieName)
	if err != nil || cookie.Value == "" {
		return &model.UnlockState{}
	}

	state, err := c.Decode(cookie.Value)
	if err != nil {
		return &model.UnlockState{}
	}
	return state
}

// Decode verifies the signature of token and returns its state. Claim
// validation is skipped so an expired grant still decodes.
func (c *UnlockCodec) Decode(token string) (*model.UnlockState, error) {
	var claims unlockClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return c.key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithoutClaimsValidation())
	if err != nil {
		return nil, err
	}
	if !claims.Unlocked {
		return nil, errors.New("unlock claim missing")
	}

	state := &model.UnlockState{Unlocked: true}
	switch {
	case claims.ExpiresNano != 0:
		exp := time.Unix(0, claims.ExpiresNano)
		state.ExpiresAt = &exp
	case claims.ExpiresAt != nil:
		exp := claims.ExpiresAt.Time
		state.ExpiresAt = &exp
	}
	return state, nil
}

// Encode signs state.
func (c *UnlockCodec) Encode(state model.UnlockState, now time.Time) (string, error) {
	claims := unlockClaims{
		Unlocked:         state.Unlocked,
		RegisteredClaims: jwt.RegisteredClaims{IssuedAt: jwt.NewNumericDate(now)},
	}
	if state.ExpiresAt != nil {
		claims.ExpiresAt = jwt.NewNumericDate(*state.ExpiresAt)
		claims.ExpiresNano = state.ExpiresAt.UnixNano()
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.key)
}

// Write sets the unlock cookie. A state without expiry becomes a browser
// session cookie.
func (c *UnlockCodec) Write(w http.ResponseWriter, state model.UnlockState, now time.Time) error {
	token, err := c.Encode(state, now)
	if err != nil {
		return err
	}

	cookie := &http.Cookie{
		Name:     UnlockCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	}
	if state.ExpiresAt != nil {
		cookie.MaxAge = int(state.ExpiresAt.Sub(now).Seconds())
	}
	http.SetCookie(w, cookie)
	return nil
}

// Clear expires the unlock cookie.
func (c *UnlockCodec) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     UnlockCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
