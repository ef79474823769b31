package sqlite

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/speeddial/internal/domain/model"
)

var testNow = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func newTestSession(id string) model.Session {
	settings := model.DefaultSettings()
	settings.CollectionID = "50"
	settings.GridColumns = 8
	settings.Theme = model.ThemeDark

	return model.Session{
		ID:         id,
		Credential: model.Credential{BaseURL: "https://lw.test", Token: "secret-token"},
		Username:   "alice",
		Settings:   settings,
		CreatedAt:  testNow,
		ExpiresAt:  testNow.Add(time.Hour),
	}
}

func TestSessionRepo_SaveAndGet(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSessionRepo(db, testSealer(t))
	fixedNow(repo, testNow)
	ctx := context.Background()

	want := newTestSession("s1")
	require.NoError(t, repo.Save(ctx, want))

	got, err := repo.Get(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, want.Credential, got.Credential)
	assert.Equal(t, "alice", got.Username)
	assert.Equal(t, want.Settings, got.Settings)
	assert.True(t, want.CreatedAt.Equal(got.CreatedAt))
	assert.True(t, want.ExpiresAt.Equal(got.ExpiresAt))
}

func TestSessionRepo_TokenSealedAtRest(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSessionRepo(db, testSealer(t))
	fixedNow(repo, testNow)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, newTestSession("s1")))

	var stored string
	require.NoError(t, db.Reader.QueryRowContext(ctx, `SELECT token FROM sessions WHERE id = ?`, "s1").Scan(&stored))
	assert.NotEmpty(t, stored)
	assert.False(t, strings.Contains(stored, "secret-token"))
}

func TestSessionRepo_GetMissing(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSessionRepo(db, testSealer(t))

	got, err := repo.Get(context.Background(), "nope")

	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSessionRepo_ExpiredIsAbsent(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSessionRepo(db, testSealer(t))
	fixedNow(repo, testNow)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, newTestSession("s1")))

	fixedNow(repo, testNow.Add(time.Hour))
	got, err := repo.Get(ctx, "s1")

	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSessionRepo_SaveOverwritesAndKeepsCreatedAt(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSessionRepo(db, testSealer(t))
	fixedNow(repo, testNow)
	ctx := context.Background()

	sess := newTestSession("s1")
	require.NoError(t, repo.Save(ctx, sess))

	sess.ClearCredential()
	sess.Settings.GridColumns = 4
	sess.CreatedAt = testNow.Add(time.Minute)
	require.NoError(t, repo.Save(ctx, sess))

	got, err := repo.Get(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.False(t, got.Authenticated())
	assert.Empty(t, got.Username)
	assert.Equal(t, 4, got.Settings.GridColumns)
	assert.True(t, testNow.Equal(got.CreatedAt))
}

func TestSessionRepo_RotatedKeyDropsCredential(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSessionRepo(db, testSealer(t))
	fixedNow(repo, testNow)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, newTestSession("s1")))

	other, err := NewSealer([]byte(strings.Repeat("k", KeySize)))
	require.NoError(t, err)
	rotated := NewSessionRepo(db, other)
	fixedNow(rotated, testNow)

	got, err := rotated.Get(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.False(t, got.Authenticated())
	assert.Equal(t, "50", got.Settings.CollectionID)
}

func TestSessionRepo_Delete(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSessionRepo(db, testSealer(t))
	fixedNow(repo, testNow)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, newTestSession("s1")))
	require.NoError(t, repo.Delete(ctx, "s1"))
	require.NoError(t, repo.Delete(ctx, "s1"))

	got, err := repo.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSessionRepo_DeleteExpired(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSessionRepo(db, testSealer(t))
	fixedNow(repo, testNow)
	ctx := context.Background()

	old := newTestSession("old")
	old.ExpiresAt = testNow.Add(-time.Minute)
	edge := newTestSession("edge")
	edge.ExpiresAt = testNow
	fresh := newTestSession("fresh")

	for _, s := range []model.Session{old, edge, fresh} {
		require.NoError(t, repo.Save(ctx, s))
	}

	n, err := repo.DeleteExpired(ctx, testNow)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	got, err := repo.Get(ctx, "fresh")
	require.NoError(t, err)
	assert.NotNil(t, got)
}

func TestSealer(t *testing.T) {
	s := testSealer(t)

	a, err := s.Seal("value")
	require.NoError(t, err)
	b, err := s.Seal("value")
	require.NoError(t, err)
	assert.NotEqual(t, a, b, "nonce must differ per seal")

	plain, err := s.Open(a)
	require.NoError(t, err)
	assert.Equal(t, "value", plain)

	_, err = s.Open("not base64!")
	assert.Error(t, err)

	_, err = NewSealer([]byte("short"))
	assert.ErrorIs(t, err, ErrInvalidKey)
}
