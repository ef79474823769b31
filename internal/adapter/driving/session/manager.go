// Package session binds browser cookies to per-session state: the
// session-login record kept in a driven.SessionStore and the signed unlock
// cookie of the password gate.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/ericfisherdev/speeddial/internal/domain/model"
	"github.com/ericfisherdev/speeddial/internal/domain/port/driven"
)

// CookieName carries the opaque session ID.
const CookieName = "sd_session"

type contextKey struct{}

// WithSession returns a copy of ctx carrying sess.
func WithSession(ctx context.Context, sess *model.Session) context.Context {
	return context.WithValue(ctx, contextKey{}, sess)
}

// FromContext returns the session stored by Manager.Middleware, or nil in
// fixed mode.
func FromContext(ctx context.Context) *model.Session {
	sess, _ := ctx.Value(contextKey{}).(*model.Session)
	return sess
}

// Manager loads and persists session-login state keyed by a cookie.
type Manager struct {
	store  driven.SessionStore
	seed   model.Settings
	maxAge time.Duration
	secure bool
	logger *slog.Logger
	now    func() time.Time
}

// NewManager creates a Manager. seed provides the display settings of new
// sessions.
func NewManager(store driven.SessionStore, seed model.Settings, maxAge time.Duration, secure bool, logger *slog.Logger) *Manager {
	return &Manager{
		store:  store,
		seed:   seed.Normalize(model.SessionBounds),
		maxAge: maxAge,
		secure: secure,
		logger: logger,
		now:    time.Now,
	}
}

// Load returns the session named by the request cookie, or a fresh unsaved
// one when the cookie is missing, unknown or expired.
func (m *Manager) Load(r *http.Request) (*model.Session, error) {
	if c, err := r.Cookie(CookieName); err == nil && c.Value != "" {
		sess, err := m.store.Get(r.Context(), c.Value)
		if err != nil {
			return nil, fmt.Errorf("load session: %w", err)
		}
		if sess != nil {
			return sess, nil
		}
	}
	return m.newSession(), nil
}

// Save persists sess, extends its expiry and (re)sets the session cookie.
func (m *Manager) Save(w http.ResponseWriter, r *http.Request, sess *model.Session) error {
	sess.ExpiresAt = m.now().Add(m.maxAge)
	if err := m.store.Save(r.Context(), *sess); err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    sess.ID,
		Path:     "/",
		MaxAge:   int(m.maxAge.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Destroy deletes the stored session and expires the cookie.
func (m *Manager) Destroy(w http.ResponseWriter, r *http.Request) error {
	if c, err := r.Cookie(CookieName); err == nil && c.Value != "" {
		if err := m.store.Delete(r.Context(), c.Value); err != nil {
			return fmt.Errorf("destroy session: %w", err)
		}
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// PurgeExpired removes expired sessions from the store.
func (m *Manager) PurgeExpired(ctx context.Context) (int64, error) {
	return m.store.DeleteExpired(ctx, m.now())
}

// Middleware loads the session of every request into its context. A store
// failure is logged and the request continues with a fresh session.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := m.Load(r)
		if err != nil {
			m.logger.Error("session load failed", "path", r.URL.Path, "error", err)
			sess = m.newSession()
		}
		next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), sess)))
	})
}

func (m *Manager) newSession() *model.Session {
	now := m.now()
	return &model.Session{
		ID:        uuid.NewString(),
		Settings:  m.seed,
		CreatedAt: now,
		ExpiresAt: now.Add(m.maxAge),
	}
}
