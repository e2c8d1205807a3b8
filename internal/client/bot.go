// Package client implements the client-side protocol driver (spec
// §4.5): it connects to a game server, joins with a board a Bot
// supplies, and runs the read loop that dispatches server broadcasts
// to the bot until the game ends. Interactive terminal rendering and
// human keystroke handling are external collaborators the spec places
// out of scope (§1); this package only drives non-interactive bots.
package client

import (
	"math/rand"

	"github.com/sawtelle/boatsinker/internal/model"
)

// Bot is the pluggable decision-maker a Driver feeds: it places its
// own fleet once at join time, then picks a target cell on every turn
// given everything it has learned about one opponent so far.
type Bot interface {
	Name() string
	PlaceShips(cfg *model.Configuration, rng *rand.Rand) (*model.Board, error)
	Target(track *model.Board, rng *rand.Rand) (model.Coordinate, error)
}

// StrategyBot adapts a targeting.Strategy into a Bot by placing ships
// uniformly at random and delegating targeting decisions to the
// wrapped strategy.
type StrategyBot struct {
	BotName  string
	Strategy interface {
		Name() string
		Target(track *model.Board, rng *rand.Rand) (model.Coordinate, error)
	}
	MinSurfaceAreaPercent float64
}

func (b StrategyBot) Name() string { return b.BotName }

func (b StrategyBot) PlaceShips(cfg *model.Configuration, rng *rand.Rand) (*model.Board, error) {
	board := model.NewBoard(cfg, b.BotName, -1)
	if err := board.AddRandomShips(b.MinSurfaceAreaPercent, rng); err != nil {
		return nil, err
	}
	return board, nil
}

func (b StrategyBot) Target(track *model.Board, rng *rand.Rand) (model.Coordinate, error) {
	return b.Strategy.Target(track, rng)
}
