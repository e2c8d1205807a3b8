package gameserver

import (
	"math/rand"
	"net"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sawtelle/boatsinker/internal/model"
	"github.com/sawtelle/boatsinker/internal/netio"
	"github.com/sawtelle/boatsinker/internal/wire"
)

// attachSession wires a fresh in-memory session (via net.Pipe) into s,
// returning the session and the peer end's reader so a test can assert
// on what the hub sent it. The writer goroutine is started; the reader
// goroutine is not, since these tests drive handleInbound directly.
func attachSession(t *testing.T, s *Server, handle int) (*netio.Session, *wire.Reader) {
	t.Helper()
	server, client := net.Pipe()
	t.Cleanup(func() { server.Close(); client.Close() })

	sess := netio.NewSession(handle, server, 1000, 1000)
	go sess.RunWriter()
	t.Cleanup(func() { sess.Close() })

	s.sessions[handle] = &sessionMeta{session: sess}
	return sess, wire.NewReader(client)
}

func newTestServer(t *testing.T, minP, maxP uint) *Server {
	t.Helper()
	cfg, err := model.NewConfiguration("t", minP, maxP, 10, 10, model.StandardShips(), true)
	require.NoError(t, err)
	return New(cfg, nil, nil, Options{AutoStart: true, RandomizeOrder: false})
}

func randomDescriptor(t *testing.T, cfg *model.Configuration) string {
	t.Helper()
	b := model.NewBoard(cfg, "tmp", -1)
	require.NoError(t, b.AddRandomShips(0, rand.New(rand.NewSource(1))))
	return b.Descriptor()
}

func drainMessage(t *testing.T, r *wire.Reader) wire.Message {
	t.Helper()
	m, err := r.ReadMessage()
	require.NoError(t, err)
	return m
}

func drainN(t *testing.T, r *wire.Reader, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		drainMessage(t, r)
	}
}

func TestHandleJoinAddsBoardAndBroadcasts(t *testing.T) {
	s := newTestServer(t, 2, 2)
	sess, r := attachSession(t, s, 0)

	desc := randomDescriptor(t, s.cfg)
	msg, err := wire.Decode("J|alice|" + desc)
	require.NoError(t, err)

	s.handleJoin(sess, msg)

	require.Equal(t, "alice", sess.PlayerName)
	require.NotNil(t, s.game.BoardByName("alice"))

	got := drainMessage(t, r)
	require.Equal(t, byte(wire.TypeJoin), got.Type)
	require.Equal(t, "alice", got.Field(0))
}

func TestHandleJoinRejectsMissingDescriptor(t *testing.T) {
	s := newTestServer(t, 2, 2)
	sess, r := attachSession(t, s, 0)

	msg, err := wire.Decode("J|alice")
	require.NoError(t, err)
	s.handleJoin(sess, msg)

	require.Empty(t, sess.PlayerName)
	got := drainMessage(t, r)
	require.Equal(t, byte(wire.TypeError), got.Type)
}

func TestHandleJoinRejectsDuplicateName(t *testing.T) {
	s := newTestServer(t, 2, 3)
	sessA, _ := attachSession(t, s, 0)
	desc := randomDescriptor(t, s.cfg)
	msg, _ := wire.Decode("J|alice|" + desc)
	s.handleJoin(sessA, msg)

	sessB, rB := attachSession(t, s, 1)
	s.handleJoin(sessB, msg)

	require.Empty(t, sessB.PlayerName)
	got := drainMessage(t, rB)
	require.Equal(t, byte(wire.TypeError), got.Type)
}

// joinTwoAndAutoStart joins alice and bob into a fresh 2-player server
// (both sessions already attached, so every broadcastAll reaches both)
// and drains the resulting messages: alice's J broadcast (1), then
// bob's J plus the AutoStart sequence S, B, B, N (5) — 6 total per
// session, since broadcastAll never excludes the sender.
func joinTwoAndAutoStart(t *testing.T) (s *Server, sessA *netio.Session, rA *wire.Reader, sessB *netio.Session, rB *wire.Reader) {
	t.Helper()
	s = newTestServer(t, 2, 2)
	sessA, rA = attachSession(t, s, 0)
	sessB, rB = attachSession(t, s, 1)

	descA := randomDescriptor(t, s.cfg)
	descB := randomDescriptor(t, s.cfg)

	joinA, _ := wire.Decode("J|alice|" + descA)
	s.handleJoin(sessA, joinA)
	drainN(t, rA, 1) // alice's own J broadcast
	drainN(t, rB, 1)

	joinB, _ := wire.Decode("J|bob|" + descB)
	s.handleJoin(sessB, joinB)

	require.Equal(t, model.Running, s.game.State())

	drainN(t, rA, 5) // bob's J, S, B, B, N
	drainN(t, rB, 5)

	return s, sessA, rA, sessB, rB
}

func TestAutoStartBeginsGameAtMaxPlayers(t *testing.T) {
	s, _, _, _, _ := joinTwoAndAutoStart(t)
	require.NotNil(t, s.game.ToMoveBoard())
}

func TestHandleInboundProtocolErrorRepliesWithoutDisconnecting(t *testing.T) {
	s := newTestServer(t, 2, 2)
	sess, r := attachSession(t, s, 0)

	_, err := wire.Decode("|bogus")
	require.Error(t, err)
	require.True(t, wire.IsProtocolError(err))

	s.handleInbound(netio.Inbound{Handle: 0, Err: err})

	got := drainMessage(t, r)
	require.Equal(t, byte(wire.TypeError), got.Type)

	// the session must still be registered: a protocol error keeps the
	// connection open (spec §7), it does not disconnect it.
	_, stillThere := s.sessions[0]
	require.True(t, stillThere)
	_ = sess
}

func TestHandleShootRequiresJoin(t *testing.T) {
	s := newTestServer(t, 2, 2)
	sess, r := attachSession(t, s, 0)

	msg, _ := wire.Decode("S|bob|1|1")
	s.handleShoot(sess, msg)

	got := drainMessage(t, r)
	require.Equal(t, byte(wire.TypeError), got.Type)
}

// sessionFor returns the attached session whose PlayerName matches name.
func sessionFor(t *testing.T, s *Server, name string) *netio.Session {
	t.Helper()
	for _, m := range s.sessions {
		if m.session.PlayerName == name {
			return m.session
		}
	}
	t.Fatalf("no session for %q", name)
	return nil
}

func TestHandleShootAdvancesTurnOnSuccess(t *testing.T) {
	s, _, _, _, _ := joinTwoAndAutoStart(t)

	shooterName := s.game.ToMoveBoard().Name
	targetName := "bob"
	if shooterName == "bob" {
		targetName = "alice"
	}
	shooterSess := sessionFor(t, s, shooterName)

	msg, _ := wire.Decode("S|" + targetName + "|1|1")
	s.handleShoot(shooterSess, msg)

	require.Equal(t, model.Running, s.game.State())
	require.NotEqual(t, shooterName, s.game.ToMoveBoard().Name)
}

func TestHandleSkipRejectsOutOfTurn(t *testing.T) {
	s, _, _, _, _ := joinTwoAndAutoStart(t)

	toMove := s.game.ToMoveBoard().Name
	outOfTurn := "bob"
	if toMove == "bob" {
		outOfTurn = "alice"
	}
	sess := sessionFor(t, s, outOfTurn)

	before := s.game.ToMoveBoard().Name
	msg, _ := wire.Decode("K")
	s.handleSkip(sess, msg)

	require.Equal(t, before, s.game.ToMoveBoard().Name, "turn must not advance on a rejected skip")
}

func TestHandleSkipAdvancesTurnWhenInTurn(t *testing.T) {
	s, _, _, _, _ := joinTwoAndAutoStart(t)

	toMove := s.game.ToMoveBoard().Name
	sess := sessionFor(t, s, toMove)

	msg, _ := wire.Decode("K")
	s.handleSkip(sess, msg)

	require.NotEqual(t, toMove, s.game.ToMoveBoard().Name)
}

func TestHandleChatBroadcastsToEveryoneButSender(t *testing.T) {
	s, sessA, _, _, rB := joinTwoAndAutoStart(t)

	msg, _ := wire.Decode("M||hello everyone")
	s.handleChat(sessA, msg)

	got := drainMessage(t, rB)
	require.Equal(t, byte(wire.TypeChat), got.Type)
	require.Equal(t, "alice", got.Field(0))
	require.Equal(t, "hello everyone", got.Field(1))
}

func TestHandleChatPrivateGoesOnlyToRecipient(t *testing.T) {
	s := newTestServer(t, 2, 3)
	sessA, rA := attachSession(t, s, 0)
	sessB, rB := attachSession(t, s, 1)
	sessC, rC := attachSession(t, s, 2)
	_ = rC

	for i, name := range []string{"alice", "bob", "carol"} {
		sess := []*netio.Session{sessA, sessB, sessC}[i]
		desc := randomDescriptor(t, s.cfg)
		msg, _ := wire.Decode("J|" + name + "|" + desc)
		s.handleJoin(sess, msg)
	}
	require.Equal(t, model.Running, s.game.State())
	// alice's J (1), bob's J (1), carol's J + AutoStart S,B,B,B,N (6): 8 total.
	drainN(t, rA, 8)
	drainN(t, rB, 8)

	msg, _ := wire.Decode("M|bob|psst")
	s.handleChat(sessA, msg)

	got := drainMessage(t, rB)
	require.Equal(t, byte(wire.TypeChat), got.Type)
	require.Equal(t, "psst", got.Field(1))

	msg2, _ := wire.Decode("M|nobody|psst")
	s.handleChat(sessA, msg2)
	got2 := drainMessage(t, rA)
	require.Equal(t, byte(wire.TypeError), got2.Type)
}

func TestRestartGameClearsPlayerNamesAndResendsGameInfo(t *testing.T) {
	s := newTestServer(t, 2, 2)
	sess, r := attachSession(t, s, 0)
	sess.PlayerName = "alice"

	s.restartGame()

	require.Empty(t, sess.PlayerName)
	require.Equal(t, model.Lobby, s.game.State())

	got := drainMessage(t, r)
	require.Equal(t, byte(wire.TypeGameInfo), got.Type)
}
