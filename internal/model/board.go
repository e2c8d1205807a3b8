package model

import (
	"fmt"
	"math/rand"
)

// ShotResult is the outcome of resolving a shot against a board.
type ShotResult int

// Possible ShotResult values.
const (
	ResultIllegal ShotResult = iota
	ResultMiss
	ResultHit
)

// PlacementResult is the outcome of attempting to place a ship.
type PlacementResult int

// Possible PlacementResult values.
const (
	Placed PlacementResult = iota
	OutOfBounds
	Overlap
)

// Board owns one player's private grid plus the bookkeeping the
// server broadcasts about them: identity, connection handle, score,
// skips, turns and taunts (spec §3).
type Board struct {
	Name    string
	Handle  int // negative => disconnected
	Status  string
	Score   uint
	Skips   uint
	Turns   uint
	ToMove  bool
	descriptor []byte

	HitTaunts  []string
	MissTaunts []string

	cfg *Configuration
}

// NewBoard allocates an all-water board for the given configuration.
func NewBoard(cfg *Configuration, name string, handle int) *Board {
	d := make([]byte, cfg.CellCount())
	for i := range d {
		d[i] = unshot
	}
	return &Board{
		Name:       name,
		Handle:     handle,
		Status:     "placing",
		descriptor: d,
		cfg:        cfg,
	}
}

// Descriptor returns a copy of the raw, unmasked descriptor bytes.
func (b *Board) Descriptor() string {
	return string(b.descriptor)
}

// MaskedDescriptor applies mask to every cell, hiding ship identity.
// Idempotent: masking an already-masked descriptor is a no-op.
func (b *Board) MaskedDescriptor() string {
	out := make([]byte, len(b.descriptor))
	for i, c := range b.descriptor {
		out[i] = mask(c)
	}
	return string(out)
}

func (b *Board) index(c Coordinate) (int, bool) {
	if !b.cfg.ShipArea.Contains(c) {
		return 0, false
	}
	return b.cfg.ShipArea.Index(c), true
}

// PlaceShip marks Length(ship) cells starting at start heading in
// direction dir. No adjacency restriction applies unless the
// configuration has AllowAdjacent=false.
func (b *Board) PlaceShip(ship Ship, start Coordinate, dir Direction) (PlacementResult, error) {
	cells := make([]Coordinate, ship.Length)
	cur := start
	for i := range cells {
		if i > 0 {
			cur = cur.Shift(dir)
		}
		cells[i] = cur
	}

	for _, c := range cells {
		idx, ok := b.index(c)
		if !ok {
			return OutOfBounds, fmt.Errorf("%w: %v", ErrOutOfBounds, c)
		}
		if b.descriptor[idx] != unshot {
			return Overlap, fmt.Errorf("%w: %v", ErrOverlap, c)
		}
	}

	if !b.cfg.AllowAdjacent {
		for _, c := range cells {
			if b.hasAdjacentShip(c, cells) {
				return Overlap, fmt.Errorf("%w: %v", ErrAdjacent, c)
			}
		}
	}

	for _, c := range cells {
		idx, _ := b.index(c)
		b.descriptor[idx] = ship.ID
	}

	return Placed, nil
}

func (b *Board) hasAdjacentShip(c Coordinate, own []Coordinate) bool {
	isOwn := func(n Coordinate) bool {
		for _, o := range own {
			if o == n {
				return true
			}
		}
		return false
	}
	for _, d := range Directions {
		n := c.Shift(d)
		if !n.IsValid() {
			continue
		}
		idx, ok := b.index(n)
		if !ok || isOwn(n) {
			continue
		}
		if IsValidID(b.descriptor[idx]) || isHitLetter(b.descriptor[idx]) {
			return true
		}
	}
	return false
}

// minPlacementAttempts bounds retries per-ship during random placement.
const minPlacementAttempts = 1000

// maxBoardRetries bounds total board-level retries when the exposed
// surface-area ratio filter rejects a layout.
const maxBoardRetries = 10000

// AddRandomShips fills the board with cfg.Ships at uniform random
// positions, retrying until the exposed-perimeter/maxSurfaceArea ratio
// is at least msaPercent (0..100). It bounds total work at
// maxBoardRetries and returns ErrUnsatisfiable if it cannot converge.
func (b *Board) AddRandomShips(msaPercent float64, rng *rand.Rand) error {
	for attempt := 0; attempt < maxBoardRetries; attempt++ {
		b.reset()

		ships := make([]Ship, len(b.cfg.Ships))
		copy(ships, b.cfg.Ships)
		sortShipsByLengthDesc(ships)

		ok := true
		for _, ship := range ships {
			if !b.placeOneRandomly(ship, rng) {
				ok = false
				break
			}
		}
		if !ok {
			continue
		}

		if b.exposedSurfaceRatio()*100 >= msaPercent {
			return nil
		}
	}

	return ErrUnsatisfiable
}

func sortShipsByLengthDesc(ships []Ship) {
	for i := 1; i < len(ships); i++ {
		for j := i; j > 0 && ships[j].Length > ships[j-1].Length; j-- {
			ships[j], ships[j-1] = ships[j-1], ships[j]
		}
	}
}

func (b *Board) placeOneRandomly(ship Ship, rng *rand.Rand) bool {
	w, h := b.cfg.Width, b.cfg.Height
	for attempt := 0; attempt < minPlacementAttempts; attempt++ {
		start := Coordinate{
			X: b.cfg.ShipArea.TopLeft.X + uint(rng.Intn(int(w))),
			Y: b.cfg.ShipArea.TopLeft.Y + uint(rng.Intn(int(h))),
		}
		dir := South
		if rng.Intn(2) == 0 {
			dir = East
		}

		if res, _ := b.PlaceShip(ship, start, dir); res == Placed {
			return true
		}
	}
	return false
}

func (b *Board) reset() {
	for i := range b.descriptor {
		b.descriptor[i] = unshot
	}
}

// exposedSurfaceRatio computes the count of ship cells with at least
// one non-ship neighbor-or-border, divided by MaxSurfaceArea.
func (b *Board) exposedSurfaceRatio() float64 {
	if b.cfg.MaxSurfaceArea == 0 {
		return 1
	}
	exposed := 0
	for _, c := range b.cfg.ShipArea.Cells() {
		idx, _ := b.index(c)
		if !IsValidID(b.descriptor[idx]) {
			continue
		}
		if b.isExposed(c) {
			exposed++
		}
	}
	return float64(exposed) / float64(b.cfg.MaxSurfaceArea)
}

func (b *Board) isExposed(c Coordinate) bool {
	for _, d := range Directions {
		n := c.Shift(d)
		idx, ok := b.index(n)
		if !ok {
			return true // border counts as exposed
		}
		if !IsValidID(b.descriptor[idx]) {
			return true
		}
	}
	return false
}

// Shoot resolves a shot at c. Returns the result and the previous cell
// value (for callers needing to know which ship identity was hit).
func (b *Board) Shoot(c Coordinate) (ShotResult, byte, error) {
	idx, ok := b.index(c)
	if !ok {
		return ResultIllegal, 0, fmt.Errorf("%w: %v", ErrOutOfBounds, c)
	}

	prev := b.descriptor[idx]
	if !isUnshot(prev) {
		return ResultIllegal, prev, fmt.Errorf("%w: %v", ErrAlreadyShot, c)
	}

	if prev == unshot {
		b.descriptor[idx] = missChar
		return ResultMiss, prev, nil
	}

	b.descriptor[idx] = hit(prev)
	return ResultHit, prev, nil
}

// UpdateDescriptor atomically replaces the whole descriptor, used when
// a reconnecting client resends its authoritative private board.
func (b *Board) UpdateDescriptor(desc string) bool {
	if !b.cfg.validDescriptorShape(desc) {
		return false
	}
	b.descriptor = []byte(desc)
	return true
}

// AddHitsAndMisses merges the misses and hit-marks of desc into this
// board, leaving unshot ship cells untouched. Only '0' and 'X' cells in
// desc are relevant; it is used to apply an opponent's masked view back
// onto a reconnecting owner's private descriptor as a verification
// no-op, and by bots that track their own shot history.
func (b *Board) AddHitsAndMisses(desc string) bool {
	if !b.cfg.validDescriptorShape(desc) {
		return false
	}
	raw := []byte(desc)
	for i, c := range raw {
		switch {
		case isMiss(c):
			b.descriptor[i] = missChar
		case c == maskedHit:
			if b.descriptor[i] == unshot {
				b.descriptor[i] = maskedHit
			} else {
				b.descriptor[i] = hit(b.descriptor[i])
			}
		}
	}
	return true
}

func (c *Configuration) validDescriptorShape(desc string) bool {
	if uint(len(desc)) != c.CellCount() {
		return false
	}
	for i := 0; i < len(desc); i++ {
		if !isDescriptorChar(desc[i]) {
			return false
		}
	}
	return true
}

// HitCount returns the number of resolved hit cells (known or masked).
func (b *Board) HitCount() int {
	n := 0
	for _, c := range b.descriptor {
		if isHit(c) {
			n++
		}
	}
	return n
}

// MissCount returns the number of resolved miss cells.
func (b *Board) MissCount() int {
	n := 0
	for _, c := range b.descriptor {
		if isMiss(c) {
			n++
		}
	}
	return n
}

// ShipPointCount returns the total number of cells ever occupied by a
// ship (hit or not): count('A'..'W') + count('a'..'w') + count('X').
func (b *Board) ShipPointCount() int {
	n := 0
	for _, c := range b.descriptor {
		if isShip(c) || c == maskedHit {
			n++
		}
	}
	return n
}

// IsDead reports whether the board is out of the game: disconnected
// (negative handle) or every ship cell has been hit.
func (b *Board) IsDead() bool {
	return b.Handle < 0 || b.HitCount() >= b.ShipPointCount()
}

// AdjacentHits returns the number of the four neighbors of c that are
// resolved hits.
func (b *Board) AdjacentHits(c Coordinate) int {
	n := 0
	for _, d := range Directions {
		if idx, ok := b.index(c.Shift(d)); ok && isHit(b.descriptor[idx]) {
			n++
		}
	}
	return n
}

// AdjacentFree returns the number of the four neighbors of c that are
// untouched (water or unhit ship).
func (b *Board) AdjacentFree(c Coordinate) int {
	n := 0
	for _, d := range Directions {
		if idx, ok := b.index(c.Shift(d)); ok && isUnshot(b.descriptor[idx]) {
			n++
		}
	}
	return n
}

// HitsInDirection counts consecutive resolved hits starting one step
// from c in direction d.
func (b *Board) HitsInDirection(c Coordinate, d Direction) int {
	n := 0
	cur := c.Shift(d)
	for {
		idx, ok := b.index(cur)
		if !ok || !isHit(b.descriptor[idx]) {
			return n
		}
		n++
		cur = cur.Shift(d)
	}
}

// FreeCount counts consecutive untouched cells starting one step from
// c in direction d, capped at cap cells.
func (b *Board) FreeCount(c Coordinate, d Direction, cap int) int {
	n := 0
	cur := c.Shift(d)
	for n < cap {
		idx, ok := b.index(cur)
		if !ok || !isUnshot(b.descriptor[idx]) {
			return n
		}
		n++
		cur = cur.Shift(d)
	}
	return n
}

// DistToEdge returns the number of cells between c and the board edge
// in direction d (0 if c is already on that edge).
func (b *Board) DistToEdge(c Coordinate, d Direction) int {
	n := 0
	cur := c
	for {
		next := cur.Shift(d)
		if _, ok := b.index(next); !ok {
			return n
		}
		n++
		cur = next
	}
}

// MaxInlineHits returns the longest run of consecutive hits through c
// combining the two opposite-direction pairs (N/S and E/W), counting c
// itself as a hit if it is one.
func (b *Board) MaxInlineHits(c Coordinate) int {
	self := 0
	if idx, ok := b.index(c); ok && isHit(b.descriptor[idx]) {
		self = 1
	}
	ns := b.HitsInDirection(c, North) + b.HitsInDirection(c, South) + self
	ew := b.HitsInDirection(c, East) + b.HitsInDirection(c, West) + self
	if ns > ew {
		return ns
	}
	return ew
}

// HorizontalHits returns the combined East/West inline hit run through c.
func (b *Board) HorizontalHits(c Coordinate) int {
	return b.HitsInDirection(c, East) + b.HitsInDirection(c, West)
}

// VerticalHits returns the combined North/South inline hit run through c.
func (b *Board) VerticalHits(c Coordinate) int {
	return b.HitsInDirection(c, North) + b.HitsInDirection(c, South)
}

// CellAt returns the raw descriptor byte at c, and whether c is in
// bounds.
func (b *Board) CellAt(c Coordinate) (byte, bool) {
	idx, ok := b.index(c)
	if !ok {
		return 0, false
	}
	return b.descriptor[idx], true
}

// IsUnshot reports whether c is in bounds and has not yet been shot
// (water or an unhit ship). Out-of-bounds cells are not unshot.
func (b *Board) IsUnshot(c Coordinate) bool {
	cell, ok := b.CellAt(c)
	return ok && isUnshot(cell)
}

// IsHit reports whether c is in bounds and resolved as a hit (known or
// masked).
func (b *Board) IsHit(c Coordinate) bool {
	cell, ok := b.CellAt(c)
	return ok && isHit(cell)
}

// Width and Height expose the board's cell geometry for callers (e.g.
// targeting strategies) that enumerate candidate cells.
func (b *Board) Width() uint  { return b.cfg.Width }
func (b *Board) Height() uint { return b.cfg.Height }

// PointGoal returns the configured total (sum of ship lengths) a
// shooter must hit to win. Targeting strategies use this rather than
// ShipPointCount, which only reflects ship cells this particular
// tracking board has actually observed so far.
func (b *Board) PointGoal() uint { return b.cfg.PointGoal }

// Cells returns every coordinate on the board in row-major order.
func (b *Board) Cells() []Coordinate {
	return b.cfg.ShipArea.Cells()
}

// ShipLengths returns the configured roster's lengths, for targeting
// strategies that reason about which placements remain plausible.
func (b *Board) ShipLengths() []uint {
	out := make([]uint, len(b.cfg.Ships))
	for i, s := range b.cfg.Ships {
		out[i] = s.Length
	}
	return out
}

// SetTaunt replaces the taunt list for hit or miss events. An empty
// text clears the existing list (spec scenario 6).
func (b *Board) SetTaunt(isHitEvent bool, text string) {
	if isHitEvent {
		if text == "" {
			b.HitTaunts = nil
			return
		}
		b.HitTaunts = append(b.HitTaunts, text)
		return
	}
	if text == "" {
		b.MissTaunts = nil
		return
	}
	b.MissTaunts = append(b.MissTaunts, text)
}
