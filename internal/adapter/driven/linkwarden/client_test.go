package linkwarden_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/speeddial/internal/adapter/driven/linkwarden"
	"github.com/ericfisherdev/speeddial/internal/domain/model"
	"github.com/ericfisherdev/speeddial/internal/domain/port/driven"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// newTestClient creates a Client and a credential pointing at an httptest server.
func newTestClient(t *testing.T, handler http.Handler) (*linkwarden.Client, model.Credential) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := linkwarden.NewClientWithHTTPClient(server.Client(), discardLogger)
	return client, model.Credential{BaseURL: server.URL, Token: "test-token"}
}

func upstreamErr(t *testing.T, err error) *driven.UpstreamError {
	t.Helper()
	var ue *driven.UpstreamError
	require.True(t, errors.As(err, &ue), "expected *driven.UpstreamError, got %T", err)
	return ue
}

func TestCall_SendsBearerAndDecodesNumbers(t *testing.T) {
	var gotAuth, gotAccept, gotQuery string
	client, cred := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotAccept = r.Header.Get("Accept")
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"response":[{"id":9007199254740993}]}`)
	}))

	status, body, err := client.Call(context.Background(), cred, http.MethodGet, "/api/v1/links", map[string][]string{"collectionId": {"50"}}, nil)

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Bearer test-token", gotAuth)
	assert.Equal(t, "application/json", gotAccept)
	assert.Equal(t, "collectionId=50", gotQuery)

	items := model.Normalize(body)
	require.Len(t, items, 1)
	assert.Equal(t, "9007199254740993", model.StringField(items[0], "id"))
}

func TestCall_IncompleteCredential(t *testing.T) {
	client := linkwarden.NewClient(discardLogger)

	_, _, err := client.Call(context.Background(), model.Credential{BaseURL: "https://lw.test"}, http.MethodGet, "/api/v1/collections", nil, nil)

	assert.ErrorIs(t, err, driven.ErrConfiguration)
}

func TestCall_Unauthorized(t *testing.T) {
	client, cred := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusUnauthorized)
	}))

	status, _, err := client.Call(context.Background(), cred, http.MethodGet, "/api/v1/collections", nil, nil)

	assert.Equal(t, http.StatusUnauthorized, status)
	assert.ErrorIs(t, err, driven.ErrAuthorization)
	assert.NotErrorIs(t, err, driven.ErrUpstream)
}

func TestCall_UpstreamErrorCarriesBoundedExcerpt(t *testing.T) {
	long := strings.Repeat("x", 1000)
	client, cred := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, long)
	}))

	_, _, err := client.Call(context.Background(), cred, http.MethodGet, "/api/v1/collections", nil, nil)

	require.ErrorIs(t, err, driven.ErrUpstream)
	ue := upstreamErr(t, err)
	assert.Equal(t, http.StatusInternalServerError, ue.StatusCode)
	assert.Len(t, ue.Excerpt, 300)
	assert.Equal(t, "GET /api/v1/collections", ue.Op)
}

func TestCall_ConnectionFailureIsTransportError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	cred := model.Credential{BaseURL: server.URL, Token: "t"}
	client := linkwarden.NewClientWithHTTPClient(server.Client(), discardLogger)
	server.Close()

	_, body, err := client.Call(context.Background(), cred, http.MethodGet, "/api/v1/collections", nil, nil)

	assert.ErrorIs(t, err, driven.ErrTransport)
	assert.Nil(t, body)
}

func TestCall_TimeoutIsTransportError(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		<-release
	}))
	t.Cleanup(server.Close)
	t.Cleanup(func() { close(release) })

	client := linkwarden.NewClientWithHTTPClient(&http.Client{
		Transport: server.Client().Transport,
		Timeout:   50 * time.Millisecond,
	}, discardLogger)

	_, _, err := client.Call(context.Background(), model.Credential{BaseURL: server.URL, Token: "t"}, http.MethodGet, "/api/v1/collections", nil, nil)

	assert.ErrorIs(t, err, driven.ErrTransport)
}

func TestCall_InvalidJSONIsTransportError(t *testing.T) {
	client, cred := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "<html>proxy error</html>")
	}))

	_, _, err := client.Call(context.Background(), cred, http.MethodGet, "/api/v1/collections", nil, nil)

	assert.ErrorIs(t, err, driven.ErrTransport)
}

func TestListLinks_FallsBackOnceOnClientError(t *testing.T) {
	var primary, fallback atomic.Int32
	client, cred := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/links":
			primary.Add(1)
			http.Error(w, "bad request", http.StatusBadRequest)
		case "/api/v1/collections/50/links":
			fallback.Add(1)
			_, _ = io.WriteString(w, `[{"id":1},{"id":2}]`)
		default:
			http.NotFound(w, r)
		}
	}))

	data, err := client.ListLinks(context.Background(), cred, "50")

	require.NoError(t, err)
	assert.Len(t, model.Normalize(data), 2)
	assert.Equal(t, int32(1), primary.Load())
	assert.Equal(t, int32(1), fallback.Load())
}

func TestListLinks_FallbackFailureSurfaces(t *testing.T) {
	var calls atomic.Int32
	client, cred := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		http.Error(w, "missing", http.StatusNotFound)
	}))

	_, err := client.ListLinks(context.Background(), cred, "50")

	require.ErrorIs(t, err, driven.ErrUpstream)
	assert.Equal(t, "GET /api/v1/collections/50/links", upstreamErr(t, err).Op)
	assert.Equal(t, int32(2), calls.Load())
}

func TestListLinks_NoFallbackOnUnauthorized(t *testing.T) {
	var calls atomic.Int32
	client, cred := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))

	_, err := client.ListLinks(context.Background(), cred, "50")

	assert.ErrorIs(t, err, driven.ErrAuthorization)
	assert.Equal(t, int32(1), calls.Load())
}

func TestListLinks_NoFallbackOnServerError(t *testing.T) {
	var calls atomic.Int32
	client, cred := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))

	_, err := client.ListLinks(context.Background(), cred, "50")

	assert.ErrorIs(t, err, driven.ErrUpstream)
	assert.Equal(t, int32(1), calls.Load())
}

func TestCreateSession_ReturnsWrappedToken(t *testing.T) {
	var gotBody map[string]string
	var gotAuth string
	client, cred := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/session", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_, _ = io.WriteString(w, `{"response":{"token":" session-tok "}}`)
	}))

	token, err := client.CreateSession(context.Background(), cred.BaseURL, "alice", "s3cret")

	require.NoError(t, err)
	assert.Equal(t, "session-tok", token)
	assert.Empty(t, gotAuth)
	assert.Equal(t, map[string]string{"username": "alice", "password": "s3cret"}, gotBody)
}

func TestCreateSession_Rejected(t *testing.T) {
	client, cred := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
	}))

	_, err := client.CreateSession(context.Background(), cred.BaseURL, "alice", "wrong")

	assert.ErrorIs(t, err, driven.ErrAuthentication)
}

func TestCreateSession_MissingToken(t *testing.T) {
	client, cred := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"response":{}}`)
	}))

	_, err := client.CreateSession(context.Background(), cred.BaseURL, "alice", "pw")

	assert.ErrorIs(t, err, driven.ErrAuthentication)
}

func TestCreateToken(t *testing.T) {
	var gotBody map[string]any
	client, cred := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/tokens", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_, _ = io.WriteString(w, `{"response":{"secretKey":"long-lived","token":{"id":3}}}`)
	}))

	token, err := client.CreateToken(context.Background(), cred, "speeddial")

	require.NoError(t, err)
	assert.Equal(t, "long-lived", token)
	assert.Equal(t, "speeddial", gotBody["name"])
}

func TestFetchArchive(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n0000")
	client, cred := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/archives/77", r.URL.Path)
		assert.Equal(t, "1", r.URL.Query().Get("format"))
		assert.Equal(t, "true", r.URL.Query().Get("preview"))
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(png)
	}))

	blob, err := client.FetchArchive(context.Background(), cred, "77", 1, true)

	require.NoError(t, err)
	assert.Equal(t, "image/png", blob.ContentType)
	assert.Equal(t, png, blob.Data)
}

func TestFetchArchive_NonImageRejected(t *testing.T) {
	client, cred := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"response":"Archive not found."}`)
	}))

	_, err := client.FetchArchive(context.Background(), cred, "77", 1, true)

	assert.ErrorIs(t, err, driven.ErrUpstream)
}

func TestFetchFavicon_PassesOrigin(t *testing.T) {
	var gotURL string
	client, cred := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotURL = r.URL.Query().Get("url")
		w.Header().Set("Content-Type", "image/x-icon")
		_, _ = w.Write([]byte{0, 0, 1, 0})
	}))

	blob, err := client.FetchFavicon(context.Background(), cred, "https://go.dev")

	require.NoError(t, err)
	assert.Equal(t, "https://go.dev", gotURL)
	assert.Equal(t, "image/x-icon", blob.ContentType)
}

func TestExtractToken(t *testing.T) {
	tests := []struct {
		name    string
		payload any
		want    string
	}{
		{name: "wrapped token", payload: map[string]any{"response": map[string]any{"token": "a"}}, want: "a"},
		{name: "top-level accessToken", payload: map[string]any{"accessToken": "b"}, want: "b"},
		{name: "wrapped wins over top level", payload: map[string]any{"token": "top", "response": map[string]any{"jwt": "inner"}}, want: "inner"},
		{name: "blank ignored", payload: map[string]any{"token": "  ", "access_token": "c"}, want: "c"},
		{name: "non-string ignored", payload: map[string]any{"token": map[string]any{"id": 1}}, want: ""},
		{name: "not an object", payload: []any{"token"}, want: ""},
		{name: "nil", payload: nil, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, linkwarden.ExtractToken(tt.payload))
		})
	}
}
