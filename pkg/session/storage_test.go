package session

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// StorageSuite runs the same contract against every backend
type StorageSuite struct {
	suite.Suite
	newStorage func() Storage
	storage    Storage
	ctx        context.Context
}

func (s *StorageSuite) SetupTest() {
	s.ctx = context.Background()
	s.storage = s.newStorage()
	s.Require().NoError(s.storage.Remove(s.ctx, AccessTokenKey, RefreshTokenKey, "other"))
}

func (s *StorageSuite) TearDownTest() {
	s.storage.Close()
}

func (s *StorageSuite) TestGetMissing() {
	value, ok, err := s.storage.Get(s.ctx, AccessTokenKey)
	s.NoError(err)
	s.False(ok)
	s.Empty(value)
}

func (s *StorageSuite) TestSetOverwrites() {
	s.Require().NoError(s.storage.Set(s.ctx, AccessTokenKey, "first"))
	s.Require().NoError(s.storage.Set(s.ctx, AccessTokenKey, "second"))

	value, ok, err := s.storage.Get(s.ctx, AccessTokenKey)
	s.NoError(err)
	s.True(ok)
	s.Equal("second", value)
}

func (s *StorageSuite) TestRemoveSeveralKeys() {
	s.Require().NoError(s.storage.Set(s.ctx, AccessTokenKey, "a"))
	s.Require().NoError(s.storage.Set(s.ctx, RefreshTokenKey, "r"))
	s.Require().NoError(s.storage.Set(s.ctx, "other", "keep"))

	s.Require().NoError(s.storage.Remove(s.ctx, AccessTokenKey, RefreshTokenKey))

	_, ok, _ := s.storage.Get(s.ctx, AccessTokenKey)
	s.False(ok)
	_, ok, _ = s.storage.Get(s.ctx, RefreshTokenKey)
	s.False(ok)
	value, ok, _ := s.storage.Get(s.ctx, "other")
	s.True(ok)
	s.Equal("keep", value)
}

func (s *StorageSuite) TestRemoveMissingIsNoError() {
	s.NoError(s.storage.Remove(s.ctx, "never-set"))
	s.NoError(s.storage.Remove(s.ctx))
}

func TestMemoryStorage(t *testing.T) {
	suite.Run(t, &StorageSuite{newStorage: func() Storage { return NewMemoryStorage() }})
}

func TestSQLiteStorage(t *testing.T) {
	dsn := "file:" + filepath.Join(t.TempDir(), "session.db")
	suite.Run(t, &StorageSuite{newStorage: func() Storage {
		storage, err := NewSQLiteStorage(dsn)
		require.NoError(t, err)
		return storage
	}})
}

func TestRedisStorage(t *testing.T) {
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		t.Skip("REDIS_URL not set")
	}
	suite.Run(t, &StorageSuite{newStorage: func() Storage {
		storage, err := NewRedisStorageFromURL(redisURL)
		require.NoError(t, err)
		return storage
	}})
}

func TestSQLiteStorage_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	dsn := "file:" + filepath.Join(t.TempDir(), "session.db")

	first, err := NewSQLiteStorage(dsn)
	require.NoError(t, err)
	require.NoError(t, NewStore(first).SetToken(ctx, "persisted-token"))
	require.NoError(t, first.Close())

	second, err := NewSQLiteStorage(dsn)
	require.NoError(t, err)
	defer second.Close()

	// A fresh store that never called SetToken still sees the session.
	store := NewStore(second)
	require.True(t, store.IsAuthenticated(ctx))
	require.Empty(t, store.Token())

	require.NoError(t, store.Hydrate(ctx))
	require.Equal(t, "persisted-token", store.Token())
}

func TestMemoryStorage_GetStats(t *testing.T) {
	storage := NewMemoryStorage()
	require.NoError(t, storage.Set(context.Background(), "k", "v"))

	stats := storage.GetStats()
	require.Equal(t, 1, stats["keys"])
	require.Equal(t, "memory", stats["storage_type"])
}
