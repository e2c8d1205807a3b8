package shellbot

import (
	"io"
	"math/rand"
	"time"

	"github.com/sawtelle/boatsinker/internal/model"
	"github.com/sawtelle/boatsinker/internal/wire"
)

// Strategy is the subset of targeting.Strategy a child process needs.
type Strategy interface {
	Name() string
	Target(track *model.Board, rng *rand.Rand) (model.Coordinate, error)
}

// Serve runs the child side of the ShellBot transport (spec §4.6):
// it answers the parent's identification handshake, lays out a fleet
// on request, and answers targeting requests with the wrapped
// Strategy until stdin closes. name is the identity reported in the
// handshake reply; msaPercent controls ship spread the same way
// Board.AddRandomShips does.
func Serve(stdin io.Reader, stdout io.Writer, name string, strat Strategy, msaPercent float64) error {
	reader := wire.NewReader(stdin)
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	var cfg *model.Configuration
	var track *model.Board

	for {
		msg, err := reader.ReadMessage()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}

		switch msg.Type {
		case wire.TypeIdentify:
			line, encErr := wire.EncodeIdentify(wire.Identify{Name: name, Version: "1", Player: strat.Name()})
			if err := writeLine(stdout, line, encErr); err != nil {
				return err
			}

		case wire.TypeGameInfo:
			info, err := wire.DecodeGameInfo(msg)
			if err != nil {
				return err
			}
			ships := make([]model.Ship, 0, len(info.BoatDescriptors))
			for _, s := range info.BoatDescriptors {
				ship, err := model.ParseShip(s)
				if err != nil {
					return err
				}
				ships = append(ships, ship)
			}
			cfg, err = model.NewConfiguration(info.Title, info.MinPlayers, info.MaxPlayers, info.Width, info.Height, ships, true)
			if err != nil {
				return err
			}
			board := model.NewBoard(cfg, name, -1)
			if err := board.AddRandomShips(msaPercent, rng); err != nil {
				return err
			}
			line, encErr := wire.EncodeYourBoard(wire.YourBoard{Descriptor: board.Descriptor()})
			if err := writeLine(stdout, line, encErr); err != nil {
				return err
			}

		case wire.TypeBoard:
			update, err := decodeBoardUpdate(msg)
			if err != nil {
				return err
			}
			if track == nil || track.Name != update.Name {
				track = model.NewBoard(cfg, update.Name, 0)
			}
			track.AddHitsAndMisses(update.Descriptor)

			coord, err := strat.Target(track, rng)
			if err != nil {
				line, encErr := wire.EncodeSkipRequest(wire.SkipRequest{Name: name})
				if err := writeLine(stdout, line, encErr); err != nil {
					return err
				}
				continue
			}
			line, encErr := wire.EncodeShootRequest(wire.ShootRequest{Target: update.Name, X: coord.X, Y: coord.Y})
			if err := writeLine(stdout, line, encErr); err != nil {
				return err
			}
		}
	}
}

func writeLine(w io.Writer, line string, err error) error {
	if err != nil {
		return err
	}
	_, writeErr := io.WriteString(w, line)
	return writeErr
}

func decodeBoardUpdate(m wire.Message) (wire.BoardUpdate, error) {
	if len(m.Fields) < 3 {
		return wire.BoardUpdate{}, io.ErrUnexpectedEOF
	}
	return wire.BoardUpdate{Name: m.Field(0), Status: m.Field(1), Descriptor: m.Field(2)}, nil
}
