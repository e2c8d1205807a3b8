package store_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sawtelle/boatsinker/internal/store"
)

func TestFileStoreRoundTripsThroughDisk(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	s1, err := store.NewFileStore(dir)
	require.NoError(t, err)
	require.NoError(t, s1.Set("game.match1", "winner", "alice"))
	require.NoError(t, s1.Add("game.match1", "player", "alice"))
	require.NoError(t, s1.Add("game.match1", "player", "bob"))
	require.NoError(t, s1.Sync("game.match1"))

	s2, err := store.NewFileStore(dir)
	require.NoError(t, err)

	winner, ok, err := s2.Get("game.match1", "winner")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "alice", winner)

	players, err := s2.GetAll("game.match1", "player")
	require.NoError(t, err)
	require.Equal(t, []string{"alice", "bob"}, players)
}

func TestFileStoreSetReplacesPriorValues(t *testing.T) {
	t.Parallel()

	s, err := store.NewFileStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, s.Add("player.alice", "wins", "1"))
	require.NoError(t, s.Add("player.alice", "wins", "2"))
	require.NoError(t, s.Set("player.alice", "wins", "3"))

	vals, err := s.GetAll("player.alice", "wins")
	require.NoError(t, err)
	require.Equal(t, []string{"3"}, vals)
}

func TestFileStoreRejectsBadID(t *testing.T) {
	t.Parallel()

	s, err := store.NewFileStore(t.TempDir())
	require.NoError(t, err)

	_, _, err = s.Get(".bad", "x")
	require.ErrorIs(t, err, store.ErrInvalidID)
}

func TestFileStoreRemove(t *testing.T) {
	t.Parallel()

	s, err := store.NewFileStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, s.Set("player.bob", "wins", "1"))
	require.NoError(t, s.Remove("player.bob", "wins"))

	_, ok, err := s.Get("player.bob", "wins")
	require.NoError(t, err)
	require.False(t, ok)
}
