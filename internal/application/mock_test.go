package application_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/ericfisherdev/speeddial/internal/domain/model"
	"github.com/ericfisherdev/speeddial/internal/domain/port/driven"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// mockGateway implements driven.LinkwardenGateway with overridable funcs and
// per-method call counts.
type mockGateway struct {
	mu    sync.Mutex
	calls map[string]int
	creds []model.Credential

	call            func(ctx context.Context, cred model.Credential, method, path string) (int, any, error)
	listCollections func(ctx context.Context, cred model.Credential) (any, error)
	listLinks       func(ctx context.Context, cred model.Credential, collectionID string) (any, error)
	createSession   func(ctx context.Context, baseURL, username, password string) (string, error)
	createToken     func(ctx context.Context, cred model.Credential, name string) (string, error)
	fetchArchive    func(ctx context.Context, cred model.Credential, linkID string) (*model.Blob, error)
	fetchFavicon    func(ctx context.Context, cred model.Credential, origin string) (*model.Blob, error)
}

var _ driven.LinkwardenGateway = (*mockGateway)(nil)

func (m *mockGateway) record(name string, cred model.Credential) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.calls == nil {
		m.calls = make(map[string]int)
	}
	m.calls[name]++
	m.creds = append(m.creds, cred)
}

func (m *mockGateway) count(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[name]
}

func (m *mockGateway) Call(ctx context.Context, cred model.Credential, method, path string, _ url.Values, _ any) (int, any, error) {
	m.record("Call", cred)
	if m.call == nil {
		return http.StatusOK, []any{}, nil
	}
	return m.call(ctx, cred, method, path)
}

func (m *mockGateway) ListCollections(ctx context.Context, cred model.Credential) (any, error) {
	m.record("ListCollections", cred)
	if m.listCollections == nil {
		return []any{}, nil
	}
	return m.listCollections(ctx, cred)
}

func (m *mockGateway) ListLinks(ctx context.Context, cred model.Credential, collectionID string) (any, error) {
	m.record("ListLinks", cred)
	if m.listLinks == nil {
		return []any{}, nil
	}
	return m.listLinks(ctx, cred, collectionID)
}

func (m *mockGateway) CreateSession(ctx context.Context, baseURL, username, password string) (string, error) {
	m.record("CreateSession", model.Credential{BaseURL: baseURL})
	if m.createSession == nil {
		return "session-token", nil
	}
	return m.createSession(ctx, baseURL, username, password)
}

func (m *mockGateway) CreateToken(ctx context.Context, cred model.Credential, name string) (string, error) {
	m.record("CreateToken", cred)
	if m.createToken == nil {
		return "access-token", nil
	}
	return m.createToken(ctx, cred, name)
}

func (m *mockGateway) FetchArchive(ctx context.Context, cred model.Credential, linkID string, _ int, _ bool) (*model.Blob, error) {
	m.record("FetchArchive", cred)
	if m.fetchArchive == nil {
		return &model.Blob{ContentType: "image/png", Data: []byte("png")}, nil
	}
	return m.fetchArchive(ctx, cred, linkID)
}

func (m *mockGateway) FetchFavicon(ctx context.Context, cred model.Credential, origin string) (*model.Blob, error) {
	m.record("FetchFavicon", cred)
	if m.fetchFavicon == nil {
		return &model.Blob{ContentType: "image/x-icon", Data: []byte("ico")}, nil
	}
	return m.fetchFavicon(ctx, cred, origin)
}

// fakeClock is a manually advanced clock for cache expiry tests.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func unauthorized(op string) error {
	return &driven.UpstreamError{Kind: driven.ErrAuthorization, Op: op, StatusCode: http.StatusUnauthorized}
}
