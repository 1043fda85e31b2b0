package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStorage(t *testing.T, ttl time.Duration) (*Storage, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	s := NewWithClient(goredis.NewClient(&goredis.Options{Addr: mr.Addr()}), ttl)
	t.Cleanup(s.Close)
	return s, mr
}

func TestUserDialogState(t *testing.T) {
	ctx := context.Background()
	s, mr := newStorage(t, time.Hour)

	require.NoError(t, s.Ping(ctx))

	state, err := s.GetUserDialogState(ctx, 42)
	require.NoError(t, err)
	assert.True(t, state.Empty())

	want := &UserState{Step: "configure", Product: "business-cards", Query: "material=plastic&qty=30"}
	require.NoError(t, s.SetUserDialogState(ctx, 42, want))

	got, err := s.GetUserDialogState(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, time.Hour, mr.TTL(buildStateKey(42)))

	require.NoError(t, s.DropUserDialogState(ctx, 42))
	got, err = s.GetUserDialogState(ctx, 42)
	require.NoError(t, err)
	assert.True(t, got.Empty())
}

func TestUserDialogStateExpires(t *testing.T) {
	ctx := context.Background()
	s, mr := newStorage(t, 0)

	require.NoError(t, s.SetUserDialogState(ctx, 7, &UserState{Product: "leaflets"}))
	assert.Equal(t, defaultStateTTL, mr.TTL(buildStateKey(7)))

	mr.FastForward(defaultStateTTL + time.Second)

	got, err := s.GetUserDialogState(ctx, 7)
	require.NoError(t, err)
	assert.True(t, got.Empty())
}

func TestUserDialogStateCorrupted(t *testing.T) {
	ctx := context.Background()
	s, mr := newStorage(t, time.Hour)

	require.NoError(t, mr.Set(buildStateKey(9), "{not json"))

	_, err := s.GetUserDialogState(ctx, 9)
	assert.Error(t, err)
}
