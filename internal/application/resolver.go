package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/ericfisherdev/speeddial/internal/domain/model"
	"github.com/ericfisherdev/speeddial/internal/domain/port/driven"
)

// LoginTokenTTL is how long a fixed-mode login token is reused.
const LoginTokenTTL = 60 * time.Second

// CredentialResolver yields the upstream credential for a request.
type CredentialResolver interface {
	// Resolve returns the credential to use for sess. sess is nil in fixed mode.
	Resolve(ctx context.Context, sess *model.Session) (model.Credential, error)
	// Invalidate forgets cred after the upstream rejected it. It reports
	// whether a subsequent Resolve may yield a different credential.
	Invalidate(ctx context.Context, cred model.Credential) bool
	Mode() model.AuthMode
}

// FixedCredentials is the deployment-wide Linkwarden configuration.
type FixedCredentials struct {
	BaseURL  string
	Token    string
	Username string
	Password string
}

// FixedResolver serves a single configured credential. A static token is
// returned as-is; otherwise it logs in with username and password and reuses
// the resulting token for LoginTokenTTL.
type FixedResolver struct {
	gateway driven.LinkwardenGateway
	cache   driven.ResponseCache
	creds   FixedCredentials
	logger  *slog.Logger
	group   singleflight.Group
}

// Compile-time interface satisfaction checks.
var (
	_ CredentialResolver = (*FixedResolver)(nil)
	_ CredentialResolver = (*SessionResolver)(nil)
)

// NewFixedResolver creates a FixedResolver. The base URL is normalized on
// every Resolve so a bad value surfaces as a configuration error per request.
func NewFixedResolver(gateway driven.LinkwardenGateway, cache driven.ResponseCache, creds FixedCredentials, logger *slog.Logger) *FixedResolver {
	creds.Token = strings.TrimSpace(creds.Token)
	creds.Username = strings.TrimSpace(creds.Username)
	return &FixedResolver{
		gateway: gateway,
		cache:   cache,
		creds:   creds,
		logger:  logger,
	}
}

// Mode returns model.AuthModeFixed.
func (r *FixedResolver) Mode() model.AuthMode { return model.AuthModeFixed }

// Resolve returns the configured credential, logging in when no static token is set.
func (r *FixedResolver) Resolve(ctx context.Context, _ *model.Session) (model.Credential, error) {
	base, err := model.NormalizeBaseURL(r.creds.BaseURL)
	if err != nil {
		return model.Credential{}, fmt.Errorf("%w: LINKWARDEN_URL: %w", driven.ErrConfiguration, err)
	}

	if r.creds.Token != "" {
		return model.Credential{BaseURL: base, Token: r.creds.Token}, nil
	}

	if r.creds.Username == "" || r.creds.Password == "" {
		return model.Credential{}, fmt.Errorf("%w: missing LINKWARDEN_TOKEN (or username/password)", driven.ErrConfiguration)
	}

	key := loginTokenKey(base)
	if v, ok := r.cache.Get(key); ok {
		if tok, ok := v.(string); ok && tok != "" {
			return model.Credential{BaseURL: base, Token: tok}, nil
		}
	}

	v, err, _ := doShared(ctx, &r.group, key, func(ctx context.Context) (any, error) {
		if v, ok := r.cache.Get(key); ok {
			return v, nil
		}
		tok, err := r.gateway.CreateSession(ctx, base, r.creds.Username, r.creds.Password)
		if err != nil {
			return nil, err
		}
		r.cache.Set(key, tok, LoginTokenTTL)
		r.logger.Info("logged in to linkwarden", "base_url", base, "username", r.creds.Username)
		return tok, nil
	})
	if err != nil {
		return model.Credential{}, fmt.Errorf("logging in to linkwarden: %w", err)
	}

	return model.Credential{BaseURL: base, Token: v.(string)}, nil
}

// Invalidate drops the cached login token and everything cached with it.
// A static token cannot be refreshed, so it reports false for that case.
func (r *FixedResolver) Invalidate(_ context.Context, cred model.Credential) bool {
	r.cache.InvalidatePrefix(TenantPrefix(cred))
	if r.creds.Token != "" {
		return false
	}
	r.cache.Invalidate(loginTokenKey(cred.BaseURL))
	return true
}

// SessionResolver reads the credential stored in the caller's session.
type SessionResolver struct{}

// NewSessionResolver creates a SessionResolver.
func NewSessionResolver() *SessionResolver { return &SessionResolver{} }

// Mode returns model.AuthModeSession.
func (SessionResolver) Mode() model.AuthMode { return model.AuthModeSession }

// Resolve fails with driven.ErrConfiguration when sess holds no credential.
func (SessionResolver) Resolve(_ context.Context, sess *model.Session) (model.Credential, error) {
	if !sess.Authenticated() {
		return model.Credential{}, fmt.Errorf("%w: not authenticated", driven.ErrConfiguration)
	}
	return sess.Credential, nil
}

// Invalidate never changes server-side state; the user must log in again.
func (SessionResolver) Invalidate(context.Context, model.Credential) bool { return false }
