package targeting

import (
	"math/rand"

	"github.com/sawtelle/boatsinker/internal/model"
)

// Random picks uniformly among all unshot cells, the baseline
// conformance bot ("RandomRufus" in the original source).
type Random struct{}

func (Random) Name() string { return "random" }

func (Random) Target(track *model.Board, rng *rand.Rand) (model.Coordinate, error) {
	cells := candidates(track)
	if len(cells) == 0 {
		return model.Invalid, ErrNoCandidates
	}
	return cells[rng.Intn(len(cells))], nil
}
