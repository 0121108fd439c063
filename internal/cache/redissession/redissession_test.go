package redissession

import (
	"context"
	"testing"

	"github.com/BuyBridge/shopcore/internal/session"
	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
)

func TestStore_RoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	s := New(mr.Addr())

	ctx := context.Background()
	_, ok, err := s.Load(ctx)
	require.NoError(t, err)
	require.False(t, ok)

	want := session.Snapshot{AccessToken: "a", RefreshToken: "r", IsLoggedIn: true}
	require.NoError(t, s.Save(ctx, want))

	got, ok, err := s.Load(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, want.AccessToken, got.AccessToken)
	require.True(t, got.IsLoggedIn)

	require.NoError(t, s.Clear(ctx))
	_, ok, err = s.Load(ctx)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestStore_BrokenPayloadTreatedAsMissing(t *testing.T) {
	mr := miniredis.RunT(t)
	s := New(mr.Addr())

	require.NoError(t, mr.Set(defaultKey, "{not json"))
	_, ok, err := s.Load(context.Background())
	require.NoError(t, err)
	require.False(t, ok)
}
