package model

import "fmt"

// Configuration is the immutable set of parameters for a match: board
// geometry, ship roster, player-count bounds and derived totals. It is
// constructed once via NewConfiguration and never mutated afterward,
// mirroring the teacher's StandardFleet()/immutable-after-join pattern
// generalized to N players and an arbitrary ship roster.
type Configuration struct {
	Name          string
	MinPlayers    uint
	MaxPlayers    uint
	Width, Height uint
	Ships         []Ship
	AllowAdjacent bool

	// Derived fields, computed once at construction.
	PointGoal      uint
	MaxSurfaceArea uint
	ShipArea       Rectangle
}

// maxGridDimension bounds W and H by the span of the ship-id alphabet,
// per spec §3: "W,H <= (MAX_ID - MIN_ID)".
const maxGridDimension = MaxShipID - MinShipID

// NewConfiguration validates inputs and returns an immutable Configuration.
func NewConfiguration(name string, minPlayers, maxPlayers, width, height uint, ships []Ship, allowAdjacent bool) (*Configuration, error) {
	switch {
	case minPlayers < 2:
		return nil, fmt.Errorf("%w: minPlayers must be >= 2", ErrInvalidConfig)
	case maxPlayers < minPlayers:
		return nil, fmt.Errorf("%w: maxPlayers must be >= minPlayers", ErrInvalidConfig)
	case width == 0 || width > uint(maxGridDimension):
		return nil, fmt.Errorf("%w: width out of range", ErrInvalidConfig)
	case height == 0 || height > uint(maxGridDimension):
		return nil, fmt.Errorf("%w: height out of range", ErrInvalidConfig)
	case len(ships) == 0:
		return nil, fmt.Errorf("%w: at least one ship is required", ErrInvalidConfig)
	}

	var pointGoal, maxSurfaceArea uint
	for _, s := range ships {
		pointGoal += s.Length
		maxSurfaceArea += 2*s.Length + 2
	}

	if pointGoal+maxSurfaceArea > width*height {
		return nil, fmt.Errorf("%w: ships do not fit with required surface area", ErrInvalidConfig)
	}

	shipArea := NewRectangle(Coordinate{X: 1, Y: 1}, Coordinate{X: width, Y: height})

	shipsCopy := make([]Ship, len(ships))
	copy(shipsCopy, ships)

	return &Configuration{
		Name:           name,
		MinPlayers:     minPlayers,
		MaxPlayers:     maxPlayers,
		Width:          width,
		Height:         height,
		Ships:          shipsCopy,
		AllowAdjacent:  allowAdjacent,
		PointGoal:      pointGoal,
		MaxSurfaceArea: maxSurfaceArea,
		ShipArea:       shipArea,
	}, nil
}

// CellCount returns W*H, the length every board descriptor must have.
func (c *Configuration) CellCount() uint {
	return c.Width * c.Height
}

// ValidateInitialDescriptor performs the structural validation spec §1
// allows for a client-supplied join descriptor (no cheat detection
// beyond this): correct length and alphabet, no hit/miss marks yet,
// and exactly one occurrence of each configured ship id, each
// appearing Length times. It does not check ship contiguity or
// adjacency; that would be placement legality, out of scope for a
// join-time structural check.
func (c *Configuration) ValidateInitialDescriptor(desc string) error {
	if !c.validDescriptorShape(desc) {
		return fmt.Errorf("%w: descriptor shape", ErrValidation)
	}

	counts := make(map[byte]uint)
	for i := 0; i < len(desc); i++ {
		ch := desc[i]
		if ch == unshot {
			continue
		}
		if !IsValidID(ch) {
			return fmt.Errorf("%w: descriptor may not contain hits or misses before the game starts", ErrValidation)
		}
		counts[ch]++
	}

	for _, ship := range c.Ships {
		if counts[ship.ID] != ship.Length {
			return fmt.Errorf("%w: ship %c expected %d cells, got %d", ErrValidation, ship.ID, ship.Length, counts[ship.ID])
		}
		delete(counts, ship.ID)
	}
	for id := range counts {
		return fmt.Errorf("%w: unexpected ship id %c", ErrValidation, id)
	}

	return nil
}

// StandardShips returns the classic five-ship Battleship roster used
// as the default configuration fleet.
func StandardShips() []Ship {
	return []Ship{
		{ID: 'A', Length: 5},
		{ID: 'B', Length: 4},
		{ID: 'C', Length: 3},
		{ID: 'D', Length: 3},
		{ID: 'E', Length: 2},
	}
}

// StandardConfiguration returns the canonical 10x10, 2-player
// configuration used by default servers and bot testers.
func StandardConfiguration() *Configuration {
	cfg, err := NewConfiguration("standard", 2, 2, 10, 10, StandardShips(), true)
	if err != nil {
		panic(err) // unreachable: constants are known-valid
	}
	return cfg
}
