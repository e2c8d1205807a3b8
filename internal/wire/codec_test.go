package wire_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sawtelle/boatsinker/internal/wire"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	t.Parallel()

	line, err := wire.Encode(wire.TypeBoard, "alice", "placing", "..........", "0", "0")
	require.NoError(t, err)
	require.True(t, strings.HasSuffix(line, "\n"))

	msg, err := wire.Decode(strings.TrimSuffix(line, "\n"))
	require.NoError(t, err)
	require.Equal(t, byte(wire.TypeBoard), msg.Type)
	require.Equal(t, []string{"alice", "placing", "..........", "0", "0"}, msg.Fields)
}

func TestEncodeRejectsForbiddenBytes(t *testing.T) {
	t.Parallel()

	_, err := wire.Encode(wire.TypeChat, "alice", "hello|world")
	require.ErrorIs(t, err, wire.ErrForbiddenByte)

	_, err = wire.Encode(wire.TypeChat, "alice", "hello\nworld")
	require.ErrorIs(t, err, wire.ErrForbiddenByte)
}

func TestDecodeRejectsLineWithNoMessageType(t *testing.T) {
	t.Parallel()

	_, err := wire.Decode("|foo")
	require.Error(t, err)
	require.ErrorIs(t, err, wire.ErrForbiddenByte)
	require.True(t, wire.IsProtocolError(err))
}

func TestDecodeRejectsEmptyLine(t *testing.T) {
	t.Parallel()

	_, err := wire.Decode("")
	require.Error(t, err)
	require.True(t, wire.IsProtocolError(err))
}

func TestReaderEnforcesMaxLineBytes(t *testing.T) {
	t.Parallel()

	huge := strings.Repeat("x", wire.MaxLineBytes+10) + "\n"
	r := wire.NewReader(strings.NewReader(huge))
	_, err := r.ReadMessage()
	require.ErrorIs(t, err, wire.ErrLineTooLong)
}

func TestReaderDecodesEmptyFields(t *testing.T) {
	t.Parallel()

	r := wire.NewReader(strings.NewReader("M||hello\n"))
	msg, err := r.ReadMessage()
	require.NoError(t, err)
	require.Equal(t, byte(wire.TypeChat), msg.Type)
	require.Equal(t, []string{"", "hello"}, msg.Fields)
}

func TestShootRequestRoundTrip(t *testing.T) {
	t.Parallel()

	line, err := wire.EncodeShootRequest(wire.ShootRequest{Target: "bob", X: 3, Y: 4})
	require.NoError(t, err)

	msg, err := wire.Decode(strings.TrimSuffix(line, "\n"))
	require.NoError(t, err)

	req, err := wire.DecodeShootRequest(msg)
	require.NoError(t, err)
	require.Equal(t, wire.ShootRequest{Target: "bob", X: 3, Y: 4}, req)
}
