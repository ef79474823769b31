package cli_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/speeddial/internal/adapter/driving/cli"
	"github.com/ericfisherdev/speeddial/internal/config"
	"github.com/ericfisherdev/speeddial/internal/domain/model"
	"github.com/ericfisherdev/speeddial/internal/domain/port/driven"
)

// --- Mock implementations ---

type mockGateway struct {
	collections any
	links       any
	err         error

	gotCollectionID string
	gotPassword     string
	gotToken        string
}

func (m *mockGateway) Call(context.Context, model.Credential, string, string, url.Values, any) (int, any, error) {
	return 200, nil, nil
}

func (m *mockGateway) ListCollections(_ context.Context, cred model.Credential) (any, error) {
	m.gotToken = cred.Token
	return m.collections, m.err
}

func (m *mockGateway) ListLinks(_ context.Context, cred model.Credential, collectionID string) (any, error) {
	m.gotToken = cred.Token
	m.gotCollectionID = collectionID
	return m.links, m.err
}

func (m *mockGateway) CreateSession(_ context.Context, _, _, password string) (string, error) {
	m.gotPassword = password
	return "session-token", nil
}

func (m *mockGateway) CreateToken(context.Context, model.Credential, string) (string, error) {
	return "", errors.New("not used")
}

func (m *mockGateway) FetchArchive(context.Context, model.Credential, string, int, bool) (*model.Blob, error) {
	return nil, errors.New("not used")
}

func (m *mockGateway) FetchFavicon(context.Context, model.Credential, string) (*model.Blob, error) {
	return nil, errors.New("not used")
}

// --- Test helpers ---

func testConfig() *config.Config {
	settings := model.DefaultSettings()
	settings.CollectionID = "50"
	settings.CollectionName = "Home"
	return &config.Config{
		Linkwarden: config.Linkwarden{BaseURL: "https://lw.test", Token: "tok"},
		AuthMode:   model.AuthModeFixed,
		Settings:   settings,
	}
}

func run(t *testing.T, gw *mockGateway, cfg *config.Config, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := cli.NewRootCmd(cli.Options{
		Version:    "1.2.3",
		Out:        &out,
		Err:        &out,
		LoadConfig: func() (*config.Config, error) { return cfg, nil },
		NewGateway: func(*slog.Logger) driven.LinkwardenGateway { return gw },
		ReadPassword: func(int) ([]byte, error) {
			return []byte("prompted"), nil
		},
	})
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

// --- Tests ---

func TestVersion(t *testing.T) {
	out, err := run(t, &mockGateway{}, testConfig(), "version")

	require.NoError(t, err)
	assert.Equal(t, "speeddialctl 1.2.3\n", out)
}

func TestCollections(t *testing.T) {
	gw := &mockGateway{collections: map[string]any{"response": []any{
		map[string]any{"id": 50, "name": "Start", "_count": map[string]any{"links": 12}},
		map[string]any{"id": 51, "name": "Reading"},
	}}}

	out, err := run(t, gw, testConfig(), "collections")

	require.NoError(t, err)
	assert.Contains(t, out, "2 collections")
	assert.Contains(t, out, "Start")
	assert.Contains(t, out, "12")
	assert.Contains(t, out, "Reading")
	assert.Equal(t, "tok", gw.gotToken)
}

func TestTiles_DefaultCollectionPinnedFirst(t *testing.T) {
	gw := &mockGateway{links: []any{
		map[string]any{"id": 1, "name": "Old", "url": "https://old.test", "createdAt": "2023-01-01"},
		map[string]any{"id": 2, "name": "New", "url": "https://new.test", "createdAt": "2024-01-01"},
		map[string]any{"id": 3, "name": "Pinned", "url": "https://pin.test", "pinned": true},
	}}

	out, err := run(t, gw, testConfig(), "tiles")

	require.NoError(t, err)
	assert.Equal(t, "50", gw.gotCollectionID)
	assert.Contains(t, out, "Home (3 tiles, date_desc)")
	pinned := strings.Index(out, "Pinned")
	newer := strings.Index(out, "New")
	older := strings.Index(out, "Old")
	assert.Less(t, pinned, newer)
	assert.Less(t, newer, older)
}

func TestTiles_ArgumentAndSortFlag(t *testing.T) {
	gw := &mockGateway{links: []any{
		map[string]any{"id": 1, "name": "alpha", "url": "https://a.test"},
		map[string]any{"id": 2, "name": "Bravo", "url": "https://b.test"},
	}}

	out, err := run(t, gw, testConfig(), "tiles", "77", "--sort", "name_desc")

	require.NoError(t, err)
	assert.Equal(t, "77", gw.gotCollectionID)
	assert.Less(t, strings.Index(out, "Bravo"), strings.Index(out, "alpha"))
}

func TestTiles_NoCollection(t *testing.T) {
	cfg := testConfig()
	cfg.Settings.CollectionID = ""

	_, err := run(t, &mockGateway{}, cfg, "tiles")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "LINKWARDEN_COLLECTION")
}

func TestConnect_MissingConfiguration(t *testing.T) {
	cfg := testConfig()
	cfg.Linkwarden = config.Linkwarden{}

	_, err := run(t, &mockGateway{}, cfg, "collections")

	require.Error(t, err)
	assert.ErrorIs(t, err, driven.ErrConfiguration)
	assert.Contains(t, err.Error(), "LINKWARDEN_URL")
}

func TestConnect_PromptsForPassword(t *testing.T) {
	cfg := testConfig()
	cfg.Linkwarden = config.Linkwarden{BaseURL: "https://lw.test", Username: "ada"}
	gw := &mockGateway{collections: []any{}}

	out, err := run(t, gw, cfg, "collections")

	require.NoError(t, err)
	assert.Contains(t, out, "Linkwarden password for ada")
	assert.Equal(t, "prompted", gw.gotPassword)
	assert.Equal(t, "session-token", gw.gotToken)
}

func TestUpstreamErrorIsReturned(t *testing.T) {
	gw := &mockGateway{err: &driven.UpstreamError{Kind: driven.ErrTransport, Op: "GET /api/v1/collections"}}

	_, err := run(t, gw, testConfig(), "collections")

	assert.ErrorIs(t, err, driven.ErrTransport)
}

func TestExecute_ExitCode(t *testing.T) {
	var out bytes.Buffer
	code := cli.Execute(context.Background(), cli.Options{
		Out:        &out,
		Err:        &out,
		LoadConfig: func() (*config.Config, error) { return nil, errors.New("boom") },
	}, []string{"collections"})

	assert.Equal(t, 1, code)
	assert.Contains(t, out.String(), "boom")
}
