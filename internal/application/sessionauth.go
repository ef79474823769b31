package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/ericfisherdev/speeddial/internal/domain/model"
	"github.com/ericfisherdev/speeddial/internal/domain/port/driven"
)

// AccessTokenName labels the long-lived tokens minted on username/password login.
const AccessTokenName = "speeddial"

// LoginRequest is what the login form or restore endpoint submits. Either
// Token or Username and Password must be set.
type LoginRequest struct {
	BaseURL  string
	Token    string
	Username string
	Password string
}

// SessionAuthService attaches and detaches upstream credentials to sessions
// in session-login mode.
type SessionAuthService struct {
	gateway driven.LinkwardenGateway
	cache   driven.ResponseCache
	logger  *slog.Logger
}

// NewSessionAuthService creates a SessionAuthService.
func NewSessionAuthService(gateway driven.LinkwardenGateway, cache driven.ResponseCache, logger *slog.Logger) *SessionAuthService {
	return &SessionAuthService{gateway: gateway, cache: cache, logger: logger}
}

// Login verifies req against the upstream and stores the resulting
// credential on sess. On failure sess is left without a credential.
func (s *SessionAuthService) Login(ctx context.Context, sess *model.Session, req LoginRequest) error {
	cred, username, err := s.login(ctx, req)
	if err != nil {
		sess.ClearCredential()
		return err
	}

	sess.Credential = cred
	sess.Username = username
	s.logger.Info("session logged in", "session_id", sess.ID, "base_url", cred.BaseURL)
	return nil
}

// Restore re-attaches a client-held base URL and token to sess after
// validating them.
func (s *SessionAuthService) Restore(ctx context.Context, sess *model.Session, baseURL, token string) error {
	return s.Login(ctx, sess, LoginRequest{BaseURL: baseURL, Token: token})
}

// Logout removes the credential from sess and drops its cached responses.
func (s *SessionAuthService) Logout(_ context.Context, sess *model.Session) {
	if sess.Authenticated() {
		s.cache.InvalidatePrefix(TenantPrefix(sess.Credential))
	}
	sess.ClearCredential()
}

func (s *SessionAuthService) login(ctx context.Context, req LoginRequest) (model.Credential, string, error) {
	base, err := model.NormalizeBaseURL(req.BaseURL)
	if err != nil {
		return model.Credential{}, "", fmt.Errorf("%w: %w", driven.ErrConfiguration, err)
	}

	token := strings.TrimSpace(req.Token)
	username := strings.TrimSpace(req.Username)

	switch {
	case token != "":
		cred := model.Credential{BaseURL: base, Token: token}
		if err := s.validate(ctx, cred); err != nil {
			return model.Credential{}, "", err
		}
		return cred, "", nil

	case username != "" && req.Password != "":
		short, err := s.gateway.CreateSession(ctx, base, username, req.Password)
		if err != nil {
			return model.Credential{}, "", fmt.Errorf("logging in as %s: %w", username, err)
		}

		cred := model.Credential{BaseURL: base, Token: short}
		long, err := s.gateway.CreateToken(ctx, cred, AccessTokenName)
		if err != nil {
			s.logger.Warn("access token exchange failed, using session token", "base_url", base, "error", err)
			return cred, username, nil
		}
		cred.Token = long
		return cred, username, nil

	default:
		return model.Credential{}, "", fmt.Errorf("%w: token or username and password required", driven.ErrConfiguration)
	}
}

// validate probes the collections endpoint with cred. A rejected token is
// reported as driven.ErrAuthentication.
func (s *SessionAuthService) validate(ctx context.Context, cred model.Credential) error {
	status, _, err := s.gateway.Call(ctx, cred, http.MethodGet, "/api/v1/collections", nil, nil)
	if err == nil {
		return nil
	}
	if errors.Is(err, driven.ErrAuthorization) || status == http.StatusForbidden {
		return fmt.Errorf("%w: token rejected: %w", driven.ErrAuthentication, err)
	}
	return fmt.Errorf("validating token: %w", err)
}
