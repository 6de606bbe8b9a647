package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"occtl/internal/types"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "occtl.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestServerConfigRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, ok, err := s.ServerConfig(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	saved := types.ServerConfig{
		BaseURL:   "http://localhost:8080",
		Directory: "/projects/demo",
		IsLocal:   true,
	}
	require.NoError(t, s.SaveServerConfig(ctx, saved))

	got, ok, err := s.ServerConfig(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, saved, *got)

	require.NoError(t, s.DeleteServerConfig(ctx))
	_, ok, err = s.ServerConfig(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSaveServerConfigValidates(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	err := s.SaveServerConfig(ctx, types.ServerConfig{BaseURL: ""})
	require.Error(t, err)

	err = s.SaveServerConfig(ctx, types.ServerConfig{BaseURL: "ftp://example.com"})
	require.Error(t, err)
}

func TestPreferencesDefaultsAndUpdate(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	prefs, err := s.Preferences(ctx)
	require.NoError(t, err)
	assert.Equal(t, types.DefaultPreferences(), prefs)

	updated, err := s.UpdatePreferences(ctx, func(p *types.Preferences) {
		p.ThemeMode = types.ThemeDark
		p.AutoScrollToBottom = false
	})
	require.NoError(t, err)
	assert.Equal(t, types.ThemeDark, updated.ThemeMode)
	assert.False(t, updated.AutoScrollToBottom)
	assert.Equal(t, types.FontMedium, updated.FontSize)

	reloaded, err := s.Preferences(ctx)
	require.NoError(t, err)
	assert.Equal(t, updated, reloaded)

	require.NoError(t, s.ResetPreferences(ctx))
	reloaded, err = s.Preferences(ctx)
	require.NoError(t, err)
	assert.Equal(t, types.DefaultPreferences(), reloaded)
}

func TestDecisionHistoryAppendOrder(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	decisions := []types.PermissionDecision{
		{ID: "p1", SessionID: "s1", Type: types.PermissionFile, Response: types.ResponseAlways, Timestamp: 100},
		{ID: "p2", SessionID: "s1", Type: types.PermissionShell, Response: types.ResponseReject, Timestamp: 200},
		{ID: "p3", SessionID: "s2", Type: types.PermissionFile, Response: types.ResponseAlways, Timestamp: 300},
	}
	for _, d := range decisions {
		require.NoError(t, s.AppendDecision(ctx, d))
	}

	all, err := s.ListDecisions(ctx)
	require.NoError(t, err)
	assert.Equal(t, decisions, all)

	forS1, err := s.SessionDecisions(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, decisions[:2], forS1)

	require.NoError(t, s.ClearDecisions(ctx))
	all, err = s.ListDecisions(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestAppendDecisionRejectsInvalid(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	err := s.AppendDecision(ctx, types.PermissionDecision{ID: "p1", Type: types.PermissionFile, Response: types.ResponseAlways})
	require.Error(t, err)

	err = s.AppendDecision(ctx, types.PermissionDecision{ID: "p1", SessionID: "s1", Type: types.PermissionFile, Response: "maybe"})
	require.Error(t, err)
}

func TestSessionCacheRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	cached, err := s.CachedSessions(ctx)
	require.NoError(t, err)
	assert.Empty(t, cached)

	sessions := []types.Session{
		{ID: "ses_1", Title: "first", Time: types.TimeRange{Created: 1}},
		{ID: "ses_2", Title: "second", Time: types.TimeRange{Created: 2}},
	}
	require.NoError(t, s.CacheSessions(ctx, sessions))

	cached, err = s.CachedSessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, sessions, cached)
}

func TestClearWipesEverything(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveServerConfig(ctx, types.ServerConfig{BaseURL: "http://localhost:8080"}))
	require.NoError(t, s.AppendDecision(ctx, types.PermissionDecision{
		ID: "p1", SessionID: "s1", Type: types.PermissionFile, Response: types.ResponseAlways,
	}))

	require.NoError(t, s.Clear(ctx))

	_, ok, err := s.ServerConfig(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
	all, err := s.ListDecisions(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}
