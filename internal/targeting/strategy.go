// Package targeting implements the scoring-framework bots use to pick
// their next shot (spec §4.7): given a private tracking board (the
// bot's own record of what it has learned about an opponent, kept in
// sync via model.Board.AddHitsAndMisses), a Strategy returns the next
// coordinate to fire at.
//
// Every strategy works off the same two-phase split the original
// source uses: "search" when no unresolved hit is adjacent to an
// unshot cell (no lead to follow), and "frenzy" once a hit has exposed
// a live ship that isn't sunk yet.
package targeting

import (
	"errors"
	"math/rand"

	"github.com/sawtelle/boatsinker/internal/model"
)

// ErrNoCandidates is returned when every cell has already been shot.
var ErrNoCandidates = errors.New("targeting: no unshot cells remain")

// ErrSkip is returned by strategies that intentionally decline to
// shoot (Skipper), signaling the caller to send K instead of S.
var ErrSkip = errors.New("targeting: skip this turn")

// Strategy picks the next cell to shoot at, given a tracking board
// that reflects everything the bot has learned about one opponent.
type Strategy interface {
	Name() string
	Target(track *model.Board, rng *rand.Rand) (model.Coordinate, error)
}

// candidates returns every unshot cell on track.
func candidates(track *model.Board) []model.Coordinate {
	var out []model.Coordinate
	for _, c := range track.Cells() {
		if track.IsUnshot(c) {
			out = append(out, c)
		}
	}
	return out
}

// inFrenzy reports whether any unshot cell is adjacent to an
// unresolved hit, i.e. there is a live lead to follow up on.
func inFrenzy(track *model.Board) bool {
	return len(frenzyCandidates(track)) > 0
}

// frenzyCandidates returns unshot cells adjacent to at least one
// unresolved hit, in board order and unranked; callers that rank them
// score each cell themselves (frenzyScore, preferenceScore).
func frenzyCandidates(track *model.Board) []model.Coordinate {
	var out []model.Coordinate
	for _, c := range track.Cells() {
		if track.IsUnshot(c) && track.AdjacentHits(c) > 0 {
			out = append(out, c)
		}
	}
	return out
}

// preferenceScore is PlacementSearch's lightweight frenzy tie-break
// (used only before its placement-weight sweep kicks in): cells
// extending a longer existing inline hit run score higher, and ties
// favor cells with more open space behind them (room for the rest of
// a long ship). This is not the spec §4.7 frenzy preference table —
// see heuristic.go's frenzyScore for that.
func preferenceScore(track *model.Board, c model.Coordinate) int {
	inline := track.MaxInlineHits(c)
	score := inline * 10
	for _, d := range model.Directions {
		score += track.FreeCount(c, d, 8)
	}
	return score
}

func pickHighestScore(track *model.Board, cells []model.Coordinate, score func(model.Coordinate) int) model.Coordinate {
	best := cells[0]
	bestScore := score(best)
	for _, c := range cells[1:] {
		if sc := score(c); sc > bestScore {
			best, bestScore = c, sc
		}
	}
	return best
}
