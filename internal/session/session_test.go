package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) (*Manager, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewManager(client, time.Hour), mr
}

func TestCreateAndGet(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	sessionID, err := m.Create(ctx, 7, "alice")
	require.NoError(t, err)
	require.NotEmpty(t, sessionID)

	sess, err := m.Get(ctx, sessionID)
	require.NoError(t, err)
	assert.Equal(t, int64(7), sess.UserID)
	assert.Equal(t, "alice", sess.Username)
	assert.True(t, sess.ExpiresAt.After(sess.CreatedAt))
}

func TestGetMissingSession(t *testing.T) {
	m, _ := newTestManager(t)

	_, err := m.Get(context.Background(), "does-not-exist")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSessionIDsAreUnique(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	first, err := m.Create(ctx, 1, "alice")
	require.NoError(t, err)
	second, err := m.Create(ctx, 1, "alice")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestDelete(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	sessionID, err := m.Create(ctx, 7, "alice")
	require.NoError(t, err)

	require.NoError(t, m.Delete(ctx, sessionID))

	_, err = m.Get(ctx, sessionID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSessionExpiry(t *testing.T) {
	m, mr := newTestManager(t)
	ctx := context.Background()

	sessionID, err := m.Create(ctx, 7, "alice")
	require.NoError(t, err)

	mr.FastForward(2 * time.Hour)

	_, err = m.Get(ctx, sessionID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRefresh(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	sessionID, err := m.Create(ctx, 7, "alice")
	require.NoError(t, err)

	before, err := m.Get(ctx, sessionID)
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)
	require.NoError(t, m.Refresh(ctx, sessionID))

	after, err := m.Get(ctx, sessionID)
	require.NoError(t, err)
	assert.True(t, after.ExpiresAt.After(before.ExpiresAt))
}
