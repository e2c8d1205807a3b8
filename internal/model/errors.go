package model

import "errors"

// Sentinel errors. Kind-level classification (spec §7: ProtocolError,
// ValidationError, TransientIo, PermanentIo, ConfigError, InvalidState)
// wraps these with errors.Is-compatible chains; see Kind in kind.go.
var (
	// ErrValidation marks a malformed name, descriptor or coordinate.
	ErrValidation = errors.New("validation error")

	// ErrOutOfBounds indicates a coordinate outside the ship area.
	ErrOutOfBounds = errors.New("out of bounds")
	// ErrOverlap indicates a ship placement overlapping another ship.
	ErrOverlap = errors.New("ship placement overlaps")
	// ErrAdjacent indicates a ship placement adjacent to another ship
	// when the configuration forbids it.
	ErrAdjacent = errors.New("ship placement adjacent to another ship")
	// ErrAlreadyShot indicates a shot at a cell already resolved.
	ErrAlreadyShot = errors.New("already shot")
	// ErrInvalidDescriptor indicates a descriptor of the wrong length
	// or containing characters outside the descriptor alphabet.
	ErrInvalidDescriptor = errors.New("invalid board descriptor")
	// ErrUnsatisfiable indicates random placement could not produce a
	// board meeting the minimum-surface-area ratio within the retry
	// budget.
	ErrUnsatisfiable = errors.New("unsatisfiable placement constraints")

	// ErrNotYourTurn indicates an action attempted by a player who is
	// not currently to move.
	ErrNotYourTurn = errors.New("not your turn")
	// ErrUnknownPlayer indicates an action referencing a board name
	// not present in the game.
	ErrUnknownPlayer = errors.New("unknown player")
	// ErrDuplicateName indicates a join using a name already in use.
	ErrDuplicateName = errors.New("duplicate player name")
	// ErrDeadTarget indicates a shot directed at a dead board.
	ErrDeadTarget = errors.New("target is dead")
	// ErrSelfTarget indicates a shot directed at the shooter's own board.
	ErrSelfTarget = errors.New("cannot shoot your own board")
	// ErrNotInLobby indicates a lobby-only action (join, start) attempted
	// outside the Lobby state.
	ErrNotInLobby = errors.New("game not in lobby state")
	// ErrNotRunning indicates a running-only action attempted outside
	// the Running state.
	ErrNotRunning = errors.New("game not running")
	// ErrPlayerCount indicates start was attempted with a board count
	// outside the configuration's min/max bounds.
	ErrPlayerCount = errors.New("player count out of configured bounds")

	// ErrInvalidConfig indicates a Configuration failed validation.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrInvalidState marks an internal invariant violation.
	ErrInvalidState = errors.New("invalid internal state")
)
