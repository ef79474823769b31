// Package linkwarden implements the LinkwardenGateway port over the
// Linkwarden REST API.
package linkwarden

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gregjones/httpcache"
	"golang.org/x/oauth2"

	"github.com/ericfisherdev/speeddial/internal/domain/model"
	"github.com/ericfisherdev/speeddial/internal/domain/port/driven"
)

const (
	// DefaultTimeout bounds every upstream call.
	DefaultTimeout = 15 * time.Second

	excerptLimit = 300
	maxBodyBytes = 10 << 20

	// tokenExpiryNever is Linkwarden's "no expiry" value for new access tokens.
	tokenExpiryNever = 4
)

// Compile-time interface satisfaction check.
var _ driven.LinkwardenGateway = (*Client)(nil)

// Client implements driven.LinkwardenGateway. It holds no credential; every
// call receives the caller's resolved model.Credential.
type Client struct {
	base    http.RoundTripper // plain transport for API and archive calls
	favicon http.RoundTripper // httpcache transport; favicons are public per-origin content
	timeout time.Duration
	logger  *slog.Logger
}

// NewClient creates a Client with the following transport stack:
//  1. oauth2.Transport (attaches "Authorization: Bearer <token>" per call)
//  2. httpcache (ETag-aware memory cache, favicon requests only)
//  3. http.DefaultTransport
func NewClient(logger *slog.Logger) *Client {
	return newClient(http.DefaultTransport, DefaultTimeout, logger)
}

// NewClientWithHTTPClient creates a Client that uses httpClient's transport
// and timeout. This constructor is intended for testing with httptest servers.
func NewClientWithHTTPClient(httpClient *http.Client, logger *slog.Logger) *Client {
	transport := httpClient.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}
	timeout := httpClient.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return newClient(transport, timeout, logger)
}

func newClient(transport http.RoundTripper, timeout time.Duration, logger *slog.Logger) *Client {
	cacheTransport := httpcache.NewMemoryCacheTransport()
	cacheTransport.Transport = transport

	return &Client{
		base:    transport,
		favicon: cacheTransport,
		timeout: timeout,
		logger:  logger,
	}
}

// authorized returns an http.Client that sends cred's bearer token on every
// request through base.
func (c *Client) authorized(cred model.Credential, base http.RoundTripper) *http.Client {
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cred.Token, TokenType: "Bearer"})
	return &http.Client{
		Timeout:   c.timeout,
		Transport: &oauth2.Transport{Source: src, Base: base},
	}
}

func (c *Client) anonymous() *http.Client {
	return &http.Client{Timeout: c.timeout, Transport: c.base}
}

// rawResponse is a fully read upstream response.
type rawResponse struct {
	status      int
	contentType string
	body        []byte
}

// send builds and executes one request. A non-nil error is always a
// transport failure; HTTP error statuses are returned in rawResponse.
func (c *Client) send(ctx context.Context, hc *http.Client, method, rawURL string, params url.Values, body any, accept string) (*rawResponse, error) {
	if len(params) > 0 {
		rawURL += "?" + params.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshaling request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", accept)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	c.logger.Debug("linkwarden api call",
		"method", method,
		"path", req.URL.Path,
		"status", resp.StatusCode,
		"bytes", len(data),
		"duration", time.Since(start).Round(time.Millisecond),
	)

	return &rawResponse{
		status:      resp.StatusCode,
		contentType: resp.Header.Get("Content-Type"),
		body:        data,
	}, nil
}

// Call performs one authenticated JSON request against cred.BaseURL+path.
func (c *Client) Call(ctx context.Context, cred model.Credential, method, path string, params url.Values, body any) (int, any, error) {
	op := method + " " + path
	if !cred.IsComplete() {
		return 0, nil, &driven.UpstreamError{Kind: driven.ErrConfiguration, Op: op}
	}

	raw, err := c.send(ctx, c.authorized(cred, c.base), method, cred.BaseURL+path, params, body, "application/json")
	if err != nil {
		return 0, nil, &driven.UpstreamError{Kind: driven.ErrTransport, Op: op, Err: err}
	}

	if err := statusError(op, raw, driven.ErrUpstream); err != nil {
		return raw.status, nil, err
	}

	parsed, err := decodeJSON(raw.body)
	if err != nil {
		return raw.status, nil, &driven.UpstreamError{Kind: driven.ErrTransport, Op: op, StatusCode: raw.status, Excerpt: excerpt(raw.body), Err: err}
	}

	return raw.status, parsed, nil
}

// ListCollections returns the raw collections payload.
func (c *Client) ListCollections(ctx context.Context, cred model.Credential) (any, error) {
	_, data, err := c.Call(ctx, cred, http.MethodGet, "/api/v1/collections", nil, nil)
	return data, err
}

// ListLinks returns the raw links payload for a collection. When the query
// endpoint answers with a client error the per-collection endpoint is tried
// once before giving up.
func (c *Client) ListLinks(ctx context.Context, cred model.Credential, collectionID string) (any, error) {
	params := url.Values{"collectionId": {collectionID}}
	_, data, err := c.Call(ctx, cred, http.MethodGet, "/api/v1/links", params, nil)
	if err == nil || !driven.IsClientError(err) {
		return data, err
	}

	c.logger.Warn("links query rejected, trying collection endpoint",
		"collection_id", collectionID,
		"error", err,
	)

	_, data, err = c.Call(ctx, cred, http.MethodGet, "/api/v1/collections/"+url.PathEscape(collectionID)+"/links", nil, nil)
	return data, err
}

// CreateSession logs in with username and password. Any 4xx rejection,
// including a response without a token, is reported as driven.ErrAuthentication.
func (c *Client) CreateSession(ctx context.Context, baseURL, username, password string) (string, error) {
	const op = "POST /api/v1/session"
	if baseURL == "" || username == "" || password == "" {
		return "", &driven.UpstreamError{Kind: driven.ErrConfiguration, Op: op}
	}

	body := map[string]string{"username": username, "password": password}
	raw, err := c.send(ctx, c.anonymous(), http.MethodPost, baseURL+"/api/v1/session", nil, body, "application/json")
	if err != nil {
		return "", &driven.UpstreamError{Kind: driven.ErrTransport, Op: op, Err: err}
	}

	failKind := driven.ErrAuthentication
	if raw.status >= http.StatusInternalServerError {
		failKind = driven.ErrUpstream
	}
	if err := statusError(op, raw, failKind); err != nil {
		return "", err
	}

	return tokenFromBody(op, raw)
}

// CreateToken mints a non-expiring access token with the given name.
func (c *Client) CreateToken(ctx context.Context, cred model.Credential, name string) (string, error) {
	const op = "POST /api/v1/tokens"
	body := map[string]any{"name": name, "expires": tokenExpiryNever}

	_, data, err := c.Call(ctx, cred, http.MethodPost, "/api/v1/tokens", nil, body)
	if err != nil {
		return "", err
	}

	token := ExtractToken(data)
	if token == "" {
		return "", &driven.UpstreamError{Kind: driven.ErrAuthentication, Op: op, Err: errors.New("response did not include a token")}
	}
	return token, nil
}

// FetchArchive returns the stored archive image (screenshot/preview) of a link.
func (c *Client) FetchArchive(ctx context.Context, cred model.Credential, linkID string, format int, preview bool) (*model.Blob, error) {
	params := url.Values{"format": {strconv.Itoa(format)}}
	if preview {
		params.Set("preview", "true")
	}
	path := "/api/v1/archives/" + url.PathEscape(linkID)
	return c.fetchImage(ctx, cred, c.base, path, params)
}

// FetchFavicon proxies Linkwarden's favicon lookup for origin.
func (c *Client) FetchFavicon(ctx context.Context, cred model.Credential, origin string) (*model.Blob, error) {
	return c.fetchImage(ctx, cred, c.favicon, "/api/v1/getFavicon", url.Values{"url": {origin}})
}

func (c *Client) fetchImage(ctx context.Context, cred model.Credential, transport http.RoundTripper, path string, params url.Values) (*model.Blob, error) {
	op := http.MethodGet + " " + path
	if !cred.IsComplete() {
		return nil, &driven.UpstreamError{Kind: driven.ErrConfiguration, Op: op}
	}

	raw, err := c.send(ctx, c.authorized(cred, transport), http.MethodGet, cred.BaseURL+path, params, nil, "image/*")
	if err != nil {
		return nil, &driven.UpstreamError{Kind: driven.ErrTransport, Op: op, Err: err}
	}

	if err := statusError(op, raw, driven.ErrUpstream); err != nil {
		return nil, err
	}

	contentType := raw.contentType
	if contentType == "" {
		contentType = http.DetectContentType(raw.body)
	}
	if !strings.HasPrefix(contentType, "image/") || len(raw.body) == 0 {
		return nil, &driven.UpstreamError{
			Kind:       driven.ErrUpstream,
			Op:         op,
			StatusCode: raw.status,
			Err:        fmt.Errorf("unexpected content type %q", contentType),
		}
	}

	return &model.Blob{ContentType: contentType, Data: raw.body}, nil
}

// statusError maps HTTP error statuses to the gateway error kinds. failKind
// is used for statuses >= 400 other than 401.
func statusError(op string, raw *rawResponse, failKind error) error {
	switch {
	case raw.status == http.StatusUnauthorized:
		kind := driven.ErrAuthorization
		if failKind == driven.ErrAuthentication {
			kind = driven.ErrAuthentication
		}
		return &driven.UpstreamError{Kind: kind, Op: op, StatusCode: raw.status, Excerpt: excerpt(raw.body)}
	case raw.status >= 400:
		return &driven.UpstreamError{Kind: failKind, Op: op, StatusCode: raw.status, Excerpt: excerpt(raw.body)}
	default:
		return nil
	}
}

func tokenFromBody(op string, raw *rawResponse) (string, error) {
	parsed, err := decodeJSON(raw.body)
	if err != nil {
		return "", &driven.UpstreamError{Kind: driven.ErrAuthentication, Op: op, Excerpt: excerpt(raw.body), Err: err}
	}
	token := ExtractToken(parsed)
	if token == "" {
		return "", &driven.UpstreamError{Kind: driven.ErrAuthentication, Op: op, Err: errors.New("response did not include a token")}
	}
	return token, nil
}

// decodeJSON decodes body keeping numbers exact. An empty body decodes to nil.
func decodeJSON(body []byte) (any, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("decoding json: %w", err)
	}
	return v, nil
}

// excerpt returns at most excerptLimit bytes of body for diagnostics.
func excerpt(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) <= excerptLimit {
		return s
	}
	return strings.ToValidUTF8(s[:excerptLimit], "")
}
