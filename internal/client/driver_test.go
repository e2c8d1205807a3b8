package client_test

import (
	"context"
	"math/rand"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sawtelle/boatsinker/internal/client"
	"github.com/sawtelle/boatsinker/internal/targeting"
	"github.com/sawtelle/boatsinker/internal/wire"
)

func fakeGameInfo(t *testing.T) string {
	t.Helper()
	line, err := wire.EncodeGameInfo(wire.GameInfo{
		Version:         client.SupportedVersion,
		Title:           "t1",
		MinPlayers:      2,
		MaxPlayers:      2,
		Goal:            17,
		Width:           10,
		Height:          10,
		Boats:           5,
		BoatDescriptors: []string{"A5", "B4", "C3", "D3", "E2"},
	})
	require.NoError(t, err)
	return line
}

// driverHarness runs a Driver against a raw conn peer the test drives
// by hand, encoding/decoding wire lines directly.
func driverHarness(t *testing.T) (peer net.Conn, peerReader *wire.Reader, done <-chan error) {
	t.Helper()
	serverSide, clientSide := net.Pipe()
	t.Cleanup(func() { serverSide.Close(); clientSide.Close() })

	bot := client.StrategyBot{BotName: "alice", Strategy: targeting.Random{}, MinSurfaceAreaPercent: 0}
	d := client.NewDriver(clientSide, bot, nil, rand.New(rand.NewSource(1)))

	ch := make(chan error, 1)
	go func() { ch <- d.Run(context.Background()) }()

	return serverSide, wire.NewReader(serverSide), ch
}

func writeLine(t *testing.T, conn net.Conn, line string) {
	t.Helper()
	_, err := conn.Write([]byte(line))
	require.NoError(t, err)
}

func TestDriverJoinsWithPlacedBoard(t *testing.T) {
	peer, peerReader, _ := driverHarness(t)

	writeLine(t, peer, fakeGameInfo(t))

	msg, err := peerReader.ReadMessage()
	require.NoError(t, err)
	require.Equal(t, byte(wire.TypeJoin), msg.Type)

	req, err := wire.DecodeJoinRequest(msg)
	require.NoError(t, err)
	require.Equal(t, "alice", req.Name)
	require.NotEmpty(t, req.Descriptor)
}

func TestDriverRejectsUnsupportedVersion(t *testing.T) {
	serverSide, clientSide := net.Pipe()
	defer serverSide.Close()
	defer clientSide.Close()

	bot := client.StrategyBot{BotName: "alice", Strategy: targeting.Random{}}
	d := client.NewDriver(clientSide, bot, nil, rand.New(rand.NewSource(1)))

	ch := make(chan error, 1)
	go func() { ch <- d.Run(context.Background()) }()

	line, err := wire.EncodeGameInfo(wire.GameInfo{Version: "99", Title: "t1", MinPlayers: 2, MaxPlayers: 2, Width: 10, Height: 10, BoatDescriptors: []string{"A5"}})
	require.NoError(t, err)
	writeLine(t, serverSide, line)

	select {
	case err := <-ch:
		require.Error(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after an unsupported version")
	}
}

func TestDriverShootsWhenItIsItsTurn(t *testing.T) {
	peer, peerReader, _ := driverHarness(t)

	writeLine(t, peer, fakeGameInfo(t))
	_, err := peerReader.ReadMessage() // the J request
	require.NoError(t, err)

	// Announce an opponent joining, then a board update for them, then
	// hand the turn to alice.
	joinLine, _ := wire.Encode(wire.TypeJoin, "bob")
	writeLine(t, peer, joinLine)

	boardLine, _ := wire.EncodeBoardUpdate(wire.BoardUpdate{Name: "bob", Status: "playing", Descriptor: strings.Repeat(".", 100), Score: 0, Skips: 0})
	writeLine(t, peer, boardLine)

	nextLine, _ := wire.EncodeNextTurn(wire.NextTurn{Name: "alice"})
	writeLine(t, peer, nextLine)

	msg, err := peerReader.ReadMessage()
	require.NoError(t, err)
	require.Equal(t, byte(wire.TypeShoot), msg.Type)

	req, err := wire.DecodeShootRequest(msg)
	require.NoError(t, err)
	require.Equal(t, "bob", req.Target)
}

func TestDriverFinishesOnFinishMessage(t *testing.T) {
	peer, peerReader, done := driverHarness(t)

	writeLine(t, peer, fakeGameInfo(t))
	_, err := peerReader.ReadMessage()
	require.NoError(t, err)

	finishLine, _ := wire.EncodeFinish(wire.Finish{Status: "finished", Turns: 10, Players: 2})
	writeLine(t, peer, finishLine)

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after F")
	}
}

func TestDriverRepliesToPing(t *testing.T) {
	peer, peerReader, _ := driverHarness(t)

	writeLine(t, peer, fakeGameInfo(t))
	_, err := peerReader.ReadMessage()
	require.NoError(t, err)

	pingLine, _ := wire.Encode(wire.TypePing)
	writeLine(t, peer, pingLine)

	msg, err := peerReader.ReadMessage()
	require.NoError(t, err)
	require.Equal(t, byte(wire.TypePing), msg.Type)
}
