package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ericfisherdev/speeddial/internal/domain/model"
	"github.com/ericfisherdev/speeddial/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.SessionStore = (*SessionRepo)(nil)

// SessionRepo is the SQLite implementation of the SessionStore port.
// Bearer tokens are sealed before write and opened after read.
type SessionRepo struct {
	db     *DB
	sealer *Sealer
	now    func() time.Time
}

// NewSessionRepo creates a new SessionRepo.
func NewSessionRepo(db *DB, sealer *Sealer) *SessionRepo {
	return &SessionRepo{db: db, sealer: sealer, now: time.Now}
}

// Get returns the session with id, or (nil, nil) when it does not exist or
// has expired. A token that no longer opens (the key changed) is dropped and
// the session is returned logged out.
func (r *SessionRepo) Get(ctx context.Context, id string) (*model.Session, error) {
	const query = `SELECT id, base_url, token, username, settings, created_at, expires_at
		FROM sessions WHERE id = ? AND expires_at > ?`

	var (
		sess                 model.Session
		sealed, settingsJSON string
		createdAt, expiresAt int64
	)
	err := r.db.Reader.QueryRowContext(ctx, query, id, r.now().Unix()).Scan(
		&sess.ID, &sess.Credential.BaseURL, &sealed, &sess.Username, &settingsJSON, &createdAt, &expiresAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	sess.CreatedAt = time.Unix(createdAt, 0).UTC()
	sess.ExpiresAt = time.Unix(expiresAt, 0).UTC()

	sess.Settings = model.DefaultSettings()
	if err := json.Unmarshal([]byte(settingsJSON), &sess.Settings); err != nil {
		return nil, fmt.Errorf("decode settings of session: %w", err)
	}
	sess.Settings = sess.Settings.Normalize(model.SessionBounds)

	if sealed != "" {
		token, err := r.sealer.Open(sealed)
		if err != nil {
			sess.ClearCredential()
			return &sess, nil
		}
		sess.Credential.Token = token
	}
	if !sess.Credential.IsComplete() {
		sess.ClearCredential()
	}

	return &sess, nil
}

// Save inserts or replaces sess.
func (r *SessionRepo) Save(ctx context.Context, sess model.Session) error {
	var sealed string
	if sess.Credential.Token != "" {
		var err error
		sealed, err = r.sealer.Seal(sess.Credential.Token)
		if err != nil {
			return fmt.Errorf("seal session token: %w", err)
		}
	}

	settings, err := json.Marshal(sess.Settings)
	if err != nil {
		return fmt.Errorf("encode session settings: %w", err)
	}

	now := r.now()
	createdAt := sess.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}

	const query = `INSERT INTO sessions (id, base_url, token, username, settings, created_at, updated_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			base_url = excluded.base_url,
			token = excluded.token,
			username = excluded.username,
			settings = excluded.settings,
			updated_at = excluded.updated_at,
			expires_at = excluded.expires_at`

	_, err = r.db.Writer.ExecContext(ctx, query,
		sess.ID,
		sess.Credential.BaseURL,
		sealed,
		sess.Username,
		string(settings),
		createdAt.Unix(),
		now.Unix(),
		sess.ExpiresAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Delete removes the session with id. Deleting a missing session is not an error.
func (r *SessionRepo) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM sessions WHERE id = ?`
	if _, err := r.db.Writer.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// DeleteExpired removes every session whose expiry is at or before now.
func (r *SessionRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	const query = `DELETE FROM sessions WHERE expires_at <= ?`
	res, err := r.db.Writer.ExecContext(ctx, query, now.Unix())
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("count expired sessions: %w", err)
	}
	return n, nil
}
