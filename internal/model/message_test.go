package model_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	m "github.com/sawtelle/boatsinker/internal/model"
)

func TestMessageIsBroadcast(t *testing.T) {
	t.Parallel()

	require.True(t, m.Message{From: "alice", Text: "hi all"}.IsBroadcast())
	require.False(t, m.Message{From: "alice", To: "bob", Text: "psst"}.IsBroadcast())
}
