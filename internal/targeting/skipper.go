package targeting

import (
	"math/rand"

	"github.com/sawtelle/boatsinker/internal/model"
)

// Skipper never shoots; it always returns ErrSkip. It exists to drive
// conformance tests of the server's skip path (spec §4.4 "K" handler),
// grounded on original_source/src/bots/Skipper.h, whose getBestShot
// always returns an empty coordinate.
type Skipper struct{}

func (Skipper) Name() string { return "skipper" }

func (Skipper) Target(*model.Board, *rand.Rand) (model.Coordinate, error) {
	return model.Invalid, ErrSkip
}
