package targeting

import (
	"math"
	"math/rand"

	"github.com/sawtelle/boatsinker/internal/model"
)

// Heuristic implements the spec's base scoring framework (spec §4.7),
// grounded on original_source/src/bots/Edgar.cpp's frenzyScore/
// searchScore: in frenzy it ranks candidates via the fixed preference
// table below (in-line extension, lone-hit proximity, elbow/parallel-
// line detection); in search it scores every unshot cell by how much
// open room in each of the four directions could still hide a
// remaining ship, weighted by how many points remain to be scored.
//
// EdgeWeight tunes the one variant the spec calls out by name: a
// per-cell bonus proportional to distance from the board's edge
// (grounded on original_source/src/Sal9000.cpp's edgeWeight term),
// read from the EDGE_WEIGHT environment variable by env.LoadBotConfig.
// Zero (the default) leaves search scoring unchanged.
type Heuristic struct {
	EdgeWeight float64
}

func (Heuristic) Name() string { return "heuristic" }

func (h Heuristic) Target(track *model.Board, rng *rand.Rand) (model.Coordinate, error) {
	lengths := remainingShipLengths(track)
	if len(lengths) == 0 {
		return randomCandidate(track, rng)
	}

	remain := int(track.PointGoal()) - track.HitCount()
	if remain <= 0 {
		return randomCandidate(track, rng)
	}
	longest := longestLength(lengths)
	weight := 100 * math.Log(float64(remain)+1)

	if inFrenzy(track) {
		cells := frenzyCandidates(track)
		return pickHighestScore(track, cells, func(c model.Coordinate) int {
			return frenzyScore(track, c, longest, weight)
		}), nil
	}

	cells := candidates(track)
	if len(cells) == 0 {
		return model.Invalid, ErrNoCandidates
	}
	return pickHighestScore(track, cells, func(c model.Coordinate) int {
		base := searchScoreAt(track, c, longest, weight)
		if h.EdgeWeight == 0 {
			return base
		}
		return base + int(h.EdgeWeight*float64(edgeDistance(track, c)))
	}), nil
}

func randomCandidate(track *model.Board, rng *rand.Rand) (model.Coordinate, error) {
	cells := candidates(track)
	if len(cells) == 0 {
		return model.Invalid, ErrNoCandidates
	}
	return cells[rng.Intn(len(cells))], nil
}

// edgeDistance is the distance from c to the nearest board edge on
// either axis: 0 on the border (coordinates are 1-based), larger
// toward the center.
func edgeDistance(track *model.Board, c model.Coordinate) int {
	w, h := int(track.Width()), int(track.Height())
	x, y := int(c.X), int(c.Y)
	left, right := x-1, w-x
	top, bottom := y-1, h-y
	d := left
	for _, v := range []int{right, top, bottom} {
		if v < d {
			d = v
		}
	}
	return d
}

// remainingShipLengths returns the full configured roster. The
// protocol never tells a shooter which specific ship a hit belonged
// to, so this does not subtract already-sunk ships by identity; it is
// a scoring weight, not a claim about which ships remain, and a sunk
// ship's cells are already excluded from candidates because they're
// no longer unshot.
func remainingShipLengths(track *model.Board) []uint {
	return track.ShipLengths()
}

func longestLength(lengths []uint) uint {
	var max uint
	for _, l := range lengths {
		if l > max {
			max = l
		}
	}
	return max
}

// searchScoreAt is the base spatial-prior scorer (spec §4.7 "search"):
// floor(weight * avgFreeSpanInFourDirections / maxLen), where
// avgFreeSpan sums the consecutive unshot run in each of the four
// directions, each capped at longest so a long open stretch still only
// fits a ship up to the longest configured length.
func searchScoreAt(track *model.Board, c model.Coordinate, longest uint, weight float64) int {
	if longest == 0 {
		return 0
	}
	var sum int
	for _, d := range model.Directions {
		sum += track.FreeCount(c, d, int(longest))
	}
	avg := float64(sum) / (4 * float64(longest))
	return int(math.Floor(weight * avg))
}

// frenzyScore implements the spec §4.7 frenzy preference table,
// grounded on Edgar.cpp's frenzyScore: a candidate already in line
// with an established 2+ run is scored directly off that run's
// length; otherwise the single adjacent-hit pattern is classified
// (lone hit, elbow, parallel line, or side/end of an existing line)
// and scored per the table, falling back to a weighted searchScoreAt
// for every perpendicular-line pattern.
func frenzyScore(track *model.Board, c model.Coordinate, longest uint, weight float64) int {
	if lineLen := track.MaxInlineHits(c); lineLen >= 2 {
		capped := lineLen
		if uint(capped) > longest {
			capped = int(longest)
		}
		score := 2 + (int(longest) - capped)
		return int(weight) * score
	}

	type neighbor struct {
		dir model.Direction
		at  model.Coordinate
		hit bool
	}
	neighbors := [4]neighbor{
		{model.North, c.Shift(model.North), false},
		{model.South, c.Shift(model.South), false},
		{model.East, c.Shift(model.East), false},
		{model.West, c.Shift(model.West), false},
	}
	nHits := 0
	for i := range neighbors {
		neighbors[i].hit = track.IsHit(neighbors[i].at)
		if neighbors[i].hit {
			nHits++
		}
	}

	switch nHits {
	case 0:
		// defensive: frenzyScore is only called on cells adjacent to a
		// hit, so this should be unreachable.
		return searchScoreAt(track, c, longest, weight)

	case 1:
		var lone neighbor
		for _, n := range neighbors {
			if n.hit {
				lone = n
			}
		}
		if track.MaxInlineHits(lone.at) <= 1 {
			// isolated hit: rank by how boxed-in it already is.
			switch track.AdjacentFree(lone.at) {
			case 1:
				return int(99 * weight)
			case 2:
				return int(2.0 * weight)
			case 3:
				return int(1.8 * weight)
			default:
				return int(1.5 * weight)
			}
		}
		// lone's own line runs through it but not through c: c sits
		// off one end of an established line.
		var flankA, flankB model.Coordinate
		if lone.dir == model.North || lone.dir == model.South {
			flankA, flankB = lone.at.Shift(model.East), lone.at.Shift(model.West)
		} else {
			flankA, flankB = lone.at.Shift(model.North), lone.at.Shift(model.South)
		}
		if track.IsHit(flankA) && track.IsHit(flankB) {
			return searchScoreAt(track, c, longest, weight*1.1) // probable side of a ship
		}
		return searchScoreAt(track, c, longest, weight*1.8) // end of line, possible elbow

	case 2:
		opposed := (neighbors[0].hit && neighbors[1].hit) || (neighbors[2].hit && neighbors[3].hit)
		if opposed && diagonalsAllHit(track, c) {
			return searchScoreAt(track, c, longest, weight*1.3) // between parallel lines
		}
		return int(1.5 * weight) // elbow

	case 3:
		return searchScoreAt(track, c, longest, weight*1.5)

	default: // 4
		return searchScoreAt(track, c, longest, weight*1.4)
	}
}

// diagonalsAllHit reports whether all four diagonal neighbors of c are
// resolved hits (the "boxed in by two parallel lines" pattern).
func diagonalsAllHit(track *model.Board, c model.Coordinate) bool {
	ne := c.Shift(model.North).Shift(model.East)
	nw := c.Shift(model.North).Shift(model.West)
	se := c.Shift(model.South).Shift(model.East)
	sw := c.Shift(model.South).Shift(model.West)
	return track.IsHit(ne) && track.IsHit(nw) && track.IsHit(se) && track.IsHit(sw)
}
