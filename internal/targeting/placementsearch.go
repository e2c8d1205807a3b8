package targeting

import (
	"math/rand"

	"github.com/sawtelle/boatsinker/internal/model"
)

// improbabilityLimit bounds how many full-roster placement attempts
// PlacementSearch runs per search-phase decision, mirroring the
// original source's Placement.cpp backtracking cutoff.
const improbabilityLimit = 15

// placementAttemptsPerShip bounds retries placing one ship within a
// single full-roster attempt before that attempt is abandoned.
const placementAttemptsPerShip = 200

// PlacementSearch estimates, for every unshot cell, how many
// internally-consistent full fleet placements would cover it, then
// shoots the highest-weighted cell ("Jane" in the original source).
// A placement is consistent when it avoids every known miss and fully
// explains every confirmed hit.
//
// Exhaustively enumerating every placement is exponential in board
// size; PlacementSearch instead samples improbabilityLimit random
// placements per decision (the "improbability limit" from the
// original source) and weights cells by how often a feasible sample
// covered them. Results are cached per distinct board state so
// repeated calls between a player's own turns don't redo the sweep.
type PlacementSearch struct {
	memo *memoCache
}

// NewPlacementSearch constructs a PlacementSearch with a bounded memo
// cache.
func NewPlacementSearch() *PlacementSearch {
	return &PlacementSearch{memo: newMemoCache(64)}
}

func (ps *PlacementSearch) Name() string { return "placement-search" }

func (ps *PlacementSearch) Target(track *model.Board, rng *rand.Rand) (model.Coordinate, error) {
	if inFrenzy(track) {
		cells := frenzyCandidates(track)
		return pickHighestScore(track, cells, func(c model.Coordinate) int {
			return preferenceScore(track, c)
		}), nil
	}

	cells := candidates(track)
	if len(cells) == 0 {
		return model.Invalid, ErrNoCandidates
	}

	key := fingerprint(track)
	weights, ok := ps.memo.get(key)
	if !ok {
		weights = ps.computeWeights(track, rng)
		ps.memo.put(key, weights)
	}

	best := cells[0]
	bestWeight := weights[best]
	for _, c := range cells[1:] {
		if w := weights[c]; w > bestWeight {
			best, bestWeight = c, w
		}
	}
	if bestWeight == 0 {
		return cells[rng.Intn(len(cells))], nil
	}
	return best, nil
}

func (ps *PlacementSearch) computeWeights(track *model.Board, rng *rand.Rand) map[model.Coordinate]int {
	weights := make(map[model.Coordinate]int)
	lengths := track.ShipLengths()

	for attempt := 0; attempt < improbabilityLimit; attempt++ {
		covered, ok := tryPlaceAll(track, lengths, rng)
		if !ok {
			continue
		}
		for _, c := range covered {
			weights[c]++
		}
	}
	return weights
}

// tryPlaceAll attempts one random consistent placement of every ship
// in lengths onto track, returning the full set of covered cells (one
// contiguous run per ship) if every hit cell on the board ends up
// explained by some ship and no ship crosses a known miss.
func tryPlaceAll(track *model.Board, lengths []uint, rng *rand.Rand) ([]model.Coordinate, bool) {
	used := make(map[model.Coordinate]bool)
	var covered []model.Coordinate

	order := make([]uint, len(lengths))
	copy(order, lengths)
	rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })

	for _, length := range order {
		run, ok := placeOne(track, used, length, rng)
		if !ok {
			return nil, false
		}
		for _, c := range run {
			used[c] = true
		}
		covered = append(covered, run...)
	}

	for _, c := range track.Cells() {
		if track.IsHit(c) && !used[c] {
			return nil, false
		}
	}
	return covered, true
}

func placeOne(track *model.Board, used map[model.Coordinate]bool, length uint, rng *rand.Rand) ([]model.Coordinate, bool) {
	cells := track.Cells()
	if len(cells) == 0 {
		return nil, false
	}

	for attempt := 0; attempt < placementAttemptsPerShip; attempt++ {
		start := cells[rng.Intn(len(cells))]
		dir := model.East
		if rng.Intn(2) == 0 {
			dir = model.South
		}

		run := make([]model.Coordinate, length)
		cur := start
		ok := true
		for i := range run {
			if i > 0 {
				cur = cur.Shift(dir)
			}
			if !cur.IsValid() || used[cur] {
				ok = false
				break
			}
			if cell, inBounds := track.CellAt(cur); !inBounds || !(track.IsUnshot(cur) || track.IsHit(cur)) {
				_ = cell
				ok = false
				break
			}
			run[i] = cur
		}
		if ok {
			return run, true
		}
	}
	return nil, false
}

// fingerprint summarizes a tracking board's resolved state (everything
// but cell order doesn't matter since it's positional) into a cache
// key: the raw descriptor already captures hits/misses/unshot shape.
func fingerprint(track *model.Board) string {
	return track.Descriptor()
}
