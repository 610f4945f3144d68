package activity

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFeed_Seeded(t *testing.T) {
	entries := NewFeed().List()
	require.Len(t, entries, 2)
	require.Equal(t, "NODE_STABLE", entries[0].Type)
	require.Equal(t, "BASE-MAINNET", entries[0].Message)
	require.Equal(t, "AUTH_VERIFIED", entries[1].Type)
	require.Equal(t, "OK", entries[1].Status)
}

func TestFeed_PushNewestFirstCapped(t *testing.T) {
	f := NewFeed()
	for i := 0; i < 6; i++ {
		require.True(t, f.Push(Entry{ID: fmt.Sprintf("tx%d", i), Type: TypeAllocated}))
	}

	entries := f.List()
	require.Len(t, entries, FeedSize)
	require.Equal(t, "tx5", entries[0].ID)
	require.Equal(t, "tx1", entries[4].ID)
}

func TestFeed_PushDuplicate(t *testing.T) {
	f := NewFeed()
	require.True(t, f.Push(Entry{ID: "a"}))
	require.False(t, f.Push(Entry{ID: "a"}))
	require.Len(t, f.List(), 3)
}
