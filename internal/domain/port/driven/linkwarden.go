// Package driven defines secondary port interfaces for external adapters.
package driven

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/ericfisherdev/speeddial/internal/domain/model"
)

// Error kinds surfaced by the gateway and the credential resolvers. Callers
// match them with errors.Is; *UpstreamError wraps one of them.
var (
	// ErrConfiguration means the base URL or credential is missing. Surfaced to
	// users as "not authenticated", never as a server error.
	ErrConfiguration = errors.New("linkwarden not configured")
	// ErrAuthentication means login or token exchange was rejected.
	ErrAuthentication = errors.New("linkwarden authentication failed")
	// ErrAuthorization means an authenticated call returned 401.
	ErrAuthorization = errors.New("linkwarden unauthorized")
	// ErrTransport covers connection failures, timeouts and undecodable bodies.
	ErrTransport = errors.New("linkwarden unreachable")
	// ErrUpstream covers any other HTTP status >= 400.
	ErrUpstream = errors.New("linkwarden error")
)

// UpstreamError carries the diagnostics of a failed upstream call.
type UpstreamError struct {
	Kind       error  // one of the Err* kinds above
	Op         string // e.g. "GET /api/v1/links"
	StatusCode int    // zero for transport failures
	Excerpt    string // bounded prefix of the response body
	Err        error  // underlying cause, may be nil
}

func (e *UpstreamError) Error() string {
	msg := e.Kind.Error()
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (%d)", e.StatusCode)
	}
	if e.Excerpt != "" {
		msg += ": " + e.Excerpt
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes both the kind and the cause to errors.Is/As.
func (e *UpstreamError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// IsClientError reports whether err is an upstream 4xx other than 401.
func IsClientError(err error) bool {
	var ue *UpstreamError
	if !errors.As(err, &ue) {
		return false
	}
	return ue.StatusCode >= 400 && ue.StatusCode < 500 && ue.StatusCode != 401
}

// LinkwardenGateway defines the driven port for the Linkwarden REST API.
// Responses are returned as decoded JSON; shape normalization is the
// caller's job.
type LinkwardenGateway interface {
	// Call performs one authenticated request and returns the HTTP status and
	// the decoded JSON body. body may be nil.
	Call(ctx context.Context, cred model.Credential, method, path string, params url.Values, body any) (int, any, error)

	ListCollections(ctx context.Context, cred model.Credential) (any, error)
	// ListLinks falls back to the per-collection endpoint at most once when
	// the primary endpoint fails with a client error.
	ListLinks(ctx context.Context, cred model.Credential, collectionID string) (any, error)

	// CreateSession logs in with username and password (no bearer token) and
	// returns the short-lived session token.
	CreateSession(ctx context.Context, baseURL, username, password string) (string, error)
	// CreateToken mints a long-lived access token named name.
	CreateToken(ctx context.Context, cred model.Credential, name string) (string, error)

	FetchArchive(ctx context.Context, cred model.Credential, linkID string, format int, preview bool) (*model.Blob, error)
	FetchFavicon(ctx context.Context, cred model.Credential, origin string) (*model.Blob, error)
}
