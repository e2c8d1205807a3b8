package model_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	m "github.com/sawtelle/boatsinker/internal/model"
)

func newReadyGame(t *testing.T, names ...string) *m.Game {
	t.Helper()
	cfg, err := m.NewConfiguration("t", 2, uint(len(names)), 10, 10, m.StandardShips(), true)
	require.NoError(t, err)

	g := m.NewGame(cfg, "test-game")
	for i, n := range names {
		b := m.NewBoard(cfg, n, i+1)
		require.NoError(t, b.AddRandomShips(0, rand.New(rand.NewSource(int64(i)))))
		require.NoError(t, g.AddBoard(b))
	}
	require.NoError(t, g.Start(false, rand.New(rand.NewSource(0))))
	return g
}

func TestGameStartRequiresPlayerBounds(t *testing.T) {
	t.Parallel()

	cfg, err := m.NewConfiguration("t", 2, 2, 10, 10, m.StandardShips(), true)
	require.NoError(t, err)
	g := m.NewGame(cfg, "t")
	require.NoError(t, g.AddBoard(m.NewBoard(cfg, "alice", 1)))

	err = g.Start(false, rand.New(rand.NewSource(0)))
	require.ErrorIs(t, err, m.ErrPlayerCount)
}

func TestGameAddBoardRejectsDuplicateName(t *testing.T) {
	t.Parallel()

	cfg, _ := m.NewConfiguration("t", 2, 2, 10, 10, m.StandardShips(), true)
	g := m.NewGame(cfg, "t")
	require.NoError(t, g.AddBoard(m.NewBoard(cfg, "alice", 1)))
	err := g.AddBoard(m.NewBoard(cfg, "alice", 2))
	require.ErrorIs(t, err, m.ErrDuplicateName)
}

func TestAttackTurnOrderAndSelfTarget(t *testing.T) {
	t.Parallel()

	g := newReadyGame(t, "alice", "bob")

	_, _, err := g.Attack("bob", "alice", m.Coordinate{X: 1, Y: 1})
	require.ErrorIs(t, err, m.ErrNotYourTurn)

	toMove := g.ToMoveBoard().Name
	_, _, err = g.Attack(toMove, toMove, m.Coordinate{X: 1, Y: 1})
	require.ErrorIs(t, err, m.ErrSelfTarget)
}

func TestNextTurnWrapsAndCountsTurns(t *testing.T) {
	t.Parallel()

	g := newReadyGame(t, "alice", "bob", "carol")
	require.Equal(t, uint(0), g.TurnCount)

	require.NoError(t, g.NextTurn())
	require.NoError(t, g.NextTurn())
	require.Equal(t, uint(0), g.TurnCount)
	require.NoError(t, g.NextTurn()) // wraps to board 0
	require.Equal(t, uint(1), g.TurnCount)
}

func TestFinishWhenAllDead(t *testing.T) {
	t.Parallel()

	cfg, _ := m.NewConfiguration("t", 2, 2, 10, 10, m.StandardShips(), true)
	g := m.NewGame(cfg, "t")

	a := m.NewBoard(cfg, "alice", 1)
	b := m.NewBoard(cfg, "bob", 2)
	require.NoError(t, g.AddBoard(a))
	require.NoError(t, g.AddBoard(b))
	require.NoError(t, g.Start(false, rand.New(rand.NewSource(0))))

	g.Disconnect(1)
	g.Disconnect(2)

	require.True(t, g.IsFinished())
}

func TestAttackIncrementsShooterTurnsAndFinishRequiresEqualTurns(t *testing.T) {
	t.Parallel()

	cfg, err := m.NewConfiguration("t", 2, 2, 3, 3, []m.Ship{{ID: 'A', Length: 2}}, true)
	require.NoError(t, err)

	g := m.NewGame(cfg, "t")
	alice := m.NewBoard(cfg, "alice", 1)
	bob := m.NewBoard(cfg, "bob", 2)
	_, err = alice.PlaceShip(m.Ship{ID: 'A', Length: 2}, m.Coordinate{X: 1, Y: 1}, m.East)
	require.NoError(t, err)
	_, err = bob.PlaceShip(m.Ship{ID: 'A', Length: 2}, m.Coordinate{X: 1, Y: 1}, m.East)
	require.NoError(t, err)
	require.NoError(t, g.AddBoard(alice))
	require.NoError(t, g.AddBoard(bob))
	require.NoError(t, g.Start(false, rand.New(rand.NewSource(0))))

	result, _, err := g.Attack("alice", "bob", m.Coordinate{X: 1, Y: 1})
	require.NoError(t, err)
	require.Equal(t, m.ResultHit, result)
	require.Equal(t, uint(1), alice.Turns)
	require.Equal(t, uint(0), bob.Turns)
	require.Equal(t, uint(1), alice.Score)

	// alice hasn't reached PointGoal (2) yet with a single hit, so
	// IsFinished must be false regardless of the turn-parity check.
	require.False(t, g.IsFinished())

	require.NoError(t, g.NextTurn())
	_, _, err = g.Attack("bob", "alice", m.Coordinate{X: 3, Y: 3})
	require.NoError(t, err)
	require.Equal(t, uint(1), bob.Turns)

	// Still below PointGoal: neither condition of IsFinished holds.
	require.False(t, g.IsFinished())

	require.NoError(t, g.NextTurn())
	result, _, err = g.Attack("alice", "bob", m.Coordinate{X: 2, Y: 1})
	require.NoError(t, err)
	require.Equal(t, m.ResultHit, result)
	require.Equal(t, uint(2), alice.Turns)
	require.Equal(t, uint(2), alice.Score)

	// alice reached PointGoal but bob has played one fewer turn: must
	// not be finished yet even though maxScore >= PointGoal.
	require.False(t, g.IsFinished())

	require.NoError(t, g.NextTurn())
	_, _, err = g.Attack("bob", "alice", m.Coordinate{X: 3, Y: 2})
	require.NoError(t, err)
	require.Equal(t, uint(2), bob.Turns)

	require.True(t, g.IsFinished())
}

func TestDisconnectInLobbyRemovesBoard(t *testing.T) {
	t.Parallel()

	cfg, _ := m.NewConfiguration("t", 2, 2, 10, 10, m.StandardShips(), true)
	g := m.NewGame(cfg, "t")
	require.NoError(t, g.AddBoard(m.NewBoard(cfg, "alice", 1)))
	require.NoError(t, g.AddBoard(m.NewBoard(cfg, "bob", 2)))

	g.Disconnect(1)
	require.Nil(t, g.BoardByName("alice"))
	require.NotNil(t, g.BoardByName("bob"))
}
