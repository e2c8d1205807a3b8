// Package shellbot implements the ShellBot child-process transport
// (spec §4.6): a bot's decision logic runs as a separate OS process,
// communicating over its stdin/stdout using the same '|'-delimited
// line protocol as the network wire, prefixed by an identification
// handshake ("I|name|version|player") borrowed from the original
// source's child-process bootstrap.
package shellbot

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"os/exec"

	"github.com/sawtelle/boatsinker/internal/model"
	"github.com/sawtelle/boatsinker/internal/wire"
)

// Process wraps a spawned child process as a client.Bot: PlaceShips
// and Target calls are translated into wire lines written to the
// child's stdin, and its replies are read back from stdout.
type Process struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	reader *wire.Reader

	name    string
	version string
}

// Start launches path with args and performs the identification
// handshake, blocking until the child sends its "I" line or ctx is
// cancelled.
func Start(ctx context.Context, path string, args []string, requestedName string) (*Process, error) {
	cmd := exec.CommandContext(ctx, path, args...)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("shellbot: stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("shellbot: stdout pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("shellbot: start %s: %w", path, err)
	}

	p := &Process{
		cmd:    cmd,
		stdin:  stdin,
		reader: wire.NewReader(stdout),
	}

	line, err := wire.Encode(wire.TypeIdentify, requestedName, "1", "bot")
	if err != nil {
		p.Close()
		return nil, err
	}
	if _, err := io.WriteString(stdin, line); err != nil {
		p.Close()
		return nil, fmt.Errorf("shellbot: write identify: %w", err)
	}

	msg, err := p.reader.ReadMessage()
	if err != nil {
		p.Close()
		return nil, fmt.Errorf("shellbot: read identify reply: %w", err)
	}
	if msg.Type != wire.TypeIdentify {
		p.Close()
		return nil, fmt.Errorf("shellbot: expected I, got %c", msg.Type)
	}
	id, err := wire.DecodeIdentify(msg)
	if err != nil {
		p.Close()
		return nil, err
	}
	p.name, p.version = id.Name, id.Version

	return p, nil
}

func (p *Process) Name() string { return p.name }

// PlaceShips asks the child to lay out a fleet for cfg by sending a
// synthetic game-info line, then reading back its private board.
func (p *Process) PlaceShips(cfg *model.Configuration, _ *rand.Rand) (*model.Board, error) {
	boats := make([]string, len(cfg.Ships))
	for i, s := range cfg.Ships {
		boats[i] = s.String()
	}
	info := wire.GameInfo{
		Version: "1", Title: cfg.Name,
		MinPlayers: cfg.MinPlayers, MaxPlayers: cfg.MaxPlayers,
		Goal: cfg.PointGoal, Width: cfg.Width, Height: cfg.Height,
		Boats: uint(len(cfg.Ships)), BoatDescriptors: boats,
	}
	line, err := wire.EncodeGameInfo(info)
	if err != nil {
		return nil, err
	}
	if _, err := io.WriteString(p.stdin, line); err != nil {
		return nil, fmt.Errorf("shellbot: write game info: %w", err)
	}

	msg, err := p.reader.ReadMessage()
	if err != nil {
		return nil, fmt.Errorf("shellbot: read board reply: %w", err)
	}
	if msg.Type != wire.TypeYourBoard {
		return nil, fmt.Errorf("shellbot: expected Y, got %c", msg.Type)
	}
	y, err := decodeYourBoard(msg)
	if err != nil {
		return nil, err
	}

	board := model.NewBoard(cfg, p.name, -1)
	if !board.UpdateDescriptor(y) {
		return nil, fmt.Errorf("shellbot: child returned an invalid descriptor")
	}
	return board, nil
}

// Target asks the child for its next shot against track by sending a
// board update line carrying everything learned so far, then reads
// back either an "S|target|x|y" shot or a "K" skip.
func (p *Process) Target(track *model.Board, _ *rand.Rand) (model.Coordinate, error) {
	line, err := wire.EncodeBoardUpdate(wire.BoardUpdate{
		Name: track.Name, Status: track.Status, Descriptor: track.MaskedDescriptor(),
		Score: track.Score, Skips: track.Skips,
	})
	if err != nil {
		return model.Invalid, err
	}
	if _, err := io.WriteString(p.stdin, line); err != nil {
		return model.Invalid, fmt.Errorf("shellbot: write board update: %w", err)
	}

	msg, err := p.reader.ReadMessage()
	if err != nil {
		return model.Invalid, fmt.Errorf("shellbot: read decision: %w", err)
	}
	switch msg.Type {
	case wire.TypeSkip:
		return model.Invalid, fmt.Errorf("shellbot: child chose to skip")
	case wire.TypeShoot:
		req, err := wire.DecodeShootRequest(msg)
		if err != nil {
			return model.Invalid, err
		}
		return model.Coordinate{X: req.X, Y: req.Y}, nil
	default:
		return model.Invalid, fmt.Errorf("shellbot: unexpected reply type %c", msg.Type)
	}
}

// Close closes the child's stdin (signaling EOF) and waits for it to
// exit.
func (p *Process) Close() error {
	_ = p.stdin.Close()
	if p.cmd.Process == nil {
		return nil
	}
	return p.cmd.Wait()
}

func decodeYourBoard(m wire.Message) (string, error) {
	if len(m.Fields) < 1 {
		return "", fmt.Errorf("shellbot: Y message missing descriptor")
	}
	return m.Field(0), nil
}
