package netio_test

import (
	"context"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sawtelle/boatsinker/internal/netio"
	"github.com/sawtelle/boatsinker/internal/wire"
)

func TestSessionSendDeliversLine(t *testing.T) {
	t.Parallel()

	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()

	sess := netio.NewSession(1, server, 1000, 1000)
	go sess.RunWriter()
	defer sess.Close()

	require.NoError(t, sess.Send(wire.TypeNext, "alice"))

	reader := wire.NewReader(client)
	msg, err := reader.ReadMessage()
	require.NoError(t, err)
	require.Equal(t, byte(wire.TypeNext), msg.Type)
	require.Equal(t, "alice", msg.Field(0))
}

func TestSessionRunReaderForwardsMessagesAndEOF(t *testing.T) {
	t.Parallel()

	server, client := net.Pipe()
	defer client.Close()

	sess := netio.NewSession(7, server, 1000, 1000)
	inbound := make(chan netio.Inbound, 8)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sess.RunReader(ctx, inbound)

	line, err := wire.Encode(wire.TypeShoot, "bob", "1", "1")
	require.NoError(t, err)
	go func() {
		_, _ = io.WriteString(client, line)
		client.Close()
	}()

	first := <-inbound
	require.NoError(t, first.Err)
	require.Equal(t, 7, first.Handle)
	require.Equal(t, byte(wire.TypeShoot), first.Msg.Type)
	require.Equal(t, "bob", first.Msg.Field(0))

	second := <-inbound
	require.ErrorIs(t, second.Err, io.EOF)
}

func TestSessionFloodControlDropsExcessLines(t *testing.T) {
	t.Parallel()

	server, client := net.Pipe()
	defer client.Close()

	// One token of burst, refilling at a rate far slower than the test.
	sess := netio.NewSession(3, server, 0.001, 1)
	inbound := make(chan netio.Inbound, 8)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sess.RunReader(ctx, inbound)

	go func() {
		line1, _ := wire.Encode(wire.TypePing)
		line2, _ := wire.Encode(wire.TypePing)
		_, _ = io.WriteString(client, line1)
		_, _ = io.WriteString(client, line2)
		time.Sleep(20 * time.Millisecond)
		client.Close()
	}()

	first := <-inbound
	require.NoError(t, first.Err)
	require.Equal(t, byte(wire.TypePing), first.Msg.Type)

	// The second ping is dropped by flood control, so the next inbound
	// event is the EOF from the closed connection, not another message.
	second := <-inbound
	require.ErrorIs(t, second.Err, io.EOF)
}

func TestSessionCloseIsIdempotent(t *testing.T) {
	t.Parallel()

	server, client := net.Pipe()
	defer client.Close()

	sess := netio.NewSession(9, server, 1000, 1000)
	require.NoError(t, sess.Close())
	require.NoError(t, sess.Close())
}
