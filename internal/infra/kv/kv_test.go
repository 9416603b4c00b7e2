package kv

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	repo "bakery/internal/repository"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// shared contract of every CartStorage implementation
func exerciseStorage(t *testing.T, s repo.CartStorage) {
	t.Helper()
	ctx := context.Background()

	_, err := s.Get(ctx, "cart:missing")
	assert.ErrorIs(t, err, repo.ErrNotFound)

	require.NoError(t, s.Set(ctx, "cart:a", []byte(`[{"productId":"1","quantity":2}]`)))
	got, err := s.Get(ctx, "cart:a")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"productId":"1","quantity":2}]`, string(got))

	require.NoError(t, s.Set(ctx, "cart:a", []byte(`[]`)))
	got, err = s.Get(ctx, "cart:a")
	require.NoError(t, err)
	assert.Equal(t, "[]", string(got))

	require.NoError(t, s.Delete(ctx, "cart:a"))
	_, err = s.Get(ctx, "cart:a")
	assert.ErrorIs(t, err, repo.ErrNotFound)

	// deleting twice is fine
	assert.NoError(t, s.Delete(ctx, "cart:a"))
}

func TestMemoryStorage(t *testing.T) {
	exerciseStorage(t, NewMemoryStorage())
}

func TestMemoryStorage_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStorage()

	buf := []byte("[]")
	require.NoError(t, s.Set(ctx, "k", buf))
	buf[0] = 'x'

	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "[]", string(got))
}

func TestFileStorage(t *testing.T) {
	s, err := NewFileStorage(filepath.Join(t.TempDir(), "carts"))
	require.NoError(t, err)
	exerciseStorage(t, s)
}

func TestFileStorage_NoTempFilesLeft(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStorage(dir)
	require.NoError(t, err)

	require.NoError(t, s.Set(context.Background(), "cart:abc", []byte("[]")))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "cart:abc.json", entries[0].Name())
}

func TestRedisStorage(t *testing.T) {
	mr := miniredis.RunT(t)
	s := NewRedisStorageFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}), 0, nil)
	defer s.Close()

	require.True(t, s.Ping(context.Background()))
	exerciseStorage(t, s)
}

func TestRedisStorage_TTL(t *testing.T) {
	mr := miniredis.RunT(t)
	s := NewRedisStorageFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}), time.Hour, nil)
	defer s.Close()

	require.NoError(t, s.Set(context.Background(), "cart:ttl", []byte("[]")))
	assert.Equal(t, time.Hour, mr.TTL("cart:ttl"))

	mr.FastForward(2 * time.Hour)
	_, err := s.Get(context.Background(), "cart:ttl")
	assert.ErrorIs(t, err, repo.ErrNotFound)
}

func TestRedisStorage_InitializeGivesUp(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	s := NewRedisStorage(addr, 0, nil)
	defer s.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	assert.Error(t, s.Initialize(ctx, 1))
}
