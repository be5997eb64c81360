package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/KyoTung/camera-store-client/pkg/errors"
)

func setupTestRedis(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return New(client), mr
}

func TestGet_Success(t *testing.T) {
	s, mr := setupTestRedis(t)

	require.NoError(t, mr.Set("storefront:cart", `[{"id":"P1-123"}]`))

	got, err := s.Get(context.Background(), "cart")
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"P1-123"}]`, got)
}

func TestGet_NotFound(t *testing.T) {
	s, _ := setupTestRedis(t)

	_, err := s.Get(context.Background(), "cart")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestSet_WritesPrefixedKey(t *testing.T) {
	s, mr := setupTestRedis(t)

	require.NoError(t, s.Set(context.Background(), "search_history", `["fujifilm"]`))

	assert.True(t, mr.Exists("storefront:search_history"))
	raw, err := mr.Get("storefront:search_history")
	require.NoError(t, err)
	assert.Equal(t, `["fujifilm"]`, raw)
}

func TestSet_NoTTL(t *testing.T) {
	s, mr := setupTestRedis(t)

	require.NoError(t, s.Set(context.Background(), "cart", "[]"))

	assert.Zero(t, mr.TTL("storefront:cart"))
}

func TestDelete(t *testing.T) {
	s, mr := setupTestRedis(t)

	require.NoError(t, mr.Set("storefront:cart", "[]"))
	require.NoError(t, s.Delete(context.Background(), "cart"))
	assert.False(t, mr.Exists("storefront:cart"))

	// Deleting again is not an error.
	assert.NoError(t, s.Delete(context.Background(), "cart"))
}
