package model

import (
	"fmt"
	"math/rand"
	"time"
)

// State is the lifecycle phase of a Game.
type State int

// Possible State values.
const (
	Lobby State = iota
	Running
	Finished
	Aborted
)

// Game is the canonical match state: the configuration, the ordered
// set of boards, whose turn it is, and the lifecycle phase. Game
// exclusively owns its Boards (spec §3 Ownership); boards are
// referenced by index or name lookup, never by a back-pointer to Game.
type Game struct {
	Config *Configuration

	Title       string
	StartedAt   *time.Time
	FinishedAt  *time.Time
	AbortedAt   *time.Time
	TurnCount   uint
	BoardToMove int

	state  State
	boards []*Board
}

// NewGame creates an empty Lobby-state game for the given configuration.
func NewGame(cfg *Configuration, title string) *Game {
	return &Game{Config: cfg, Title: title, state: Lobby}
}

// State returns the current lifecycle phase.
func (g *Game) State() State { return g.state }

// Boards returns the live board slice; callers must not retain it
// across a turn boundary (spec §3 Ownership: bots never retain
// cross-turn mutable references).
func (g *Game) Boards() []*Board { return g.boards }

// BoardByName finds a board by player name, or nil.
func (g *Game) BoardByName(name string) *Board {
	for _, b := range g.boards {
		if b.Name == name {
			return b
		}
	}
	return nil
}

func (g *Game) indexByName(name string) int {
	for i, b := range g.boards {
		if b.Name == name {
			return i
		}
	}
	return -1
}

// AddBoard joins a new board to the game. Legal only in Lobby; rejects
// duplicate names.
func (g *Game) AddBoard(b *Board) error {
	if g.state != Lobby {
		return fmt.Errorf("%w: cannot join after lobby", ErrNotInLobby)
	}
	if g.BoardByName(b.Name) != nil {
		return fmt.Errorf("%w: %s", ErrDuplicateName, b.Name)
	}
	g.boards = append(g.boards, b)
	return nil
}

// Start transitions Lobby -> Running. It requires the board count to
// fall within the configured min/max bounds, optionally shuffles board
// order, then marks boards[0] to-move.
func (g *Game) Start(randomizeOrder bool, rng *rand.Rand) error {
	if g.state != Lobby {
		return fmt.Errorf("%w: cannot start twice", ErrNotInLobby)
	}
	n := uint(len(g.boards))
	if n < g.Config.MinPlayers || n > g.Config.MaxPlayers {
		return fmt.Errorf("%w: %d boards joined", ErrPlayerCount, n)
	}

	if randomizeOrder {
		rng.Shuffle(len(g.boards), func(i, j int) {
			g.boards[i], g.boards[j] = g.boards[j], g.boards[i]
		})
	}

	g.BoardToMove = 0
	for i, b := range g.boards {
		b.ToMove = i == 0
	}

	now := time.Now()
	g.StartedAt = &now
	g.state = Running

	return nil
}

// NextTurn advances BoardToMove modulo the board count, incrementing
// TurnCount whenever the index wraps back to 0.
func (g *Game) NextTurn() error {
	if g.state != Running {
		return fmt.Errorf("%w", ErrNotRunning)
	}
	if len(g.boards) == 0 {
		return fmt.Errorf("%w: no boards", ErrInvalidState)
	}

	g.boards[g.BoardToMove].ToMove = false
	g.BoardToMove = (g.BoardToMove + 1) % len(g.boards)
	if g.BoardToMove == 0 {
		g.TurnCount++
	}
	g.boards[g.BoardToMove].ToMove = true

	return nil
}

// SetNextTurn sets BoardToMove to the named board's index. If the
// named board is disconnected, the override still takes effect: the
// server loop's housekeeping skips the to-move board once its turn
// deadline passes (spec §9 open question, resolved here: setNextTurn
// never itself skips).
func (g *Game) SetNextTurn(name string) error {
	if g.state != Running {
		return fmt.Errorf("%w", ErrNotRunning)
	}
	idx := g.indexByName(name)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownPlayer, name)
	}

	g.boards[g.BoardToMove].ToMove = false
	g.BoardToMove = idx
	g.boards[g.BoardToMove].ToMove = true

	return nil
}

// ToMoveBoard returns the board currently to move.
func (g *Game) ToMoveBoard() *Board {
	if g.state != Running || len(g.boards) == 0 {
		return nil
	}
	return g.boards[g.BoardToMove]
}

// Disconnect marks handle's board disconnected. In Lobby the board is
// removed entirely; in Running it is kept but treated as dead.
func (g *Game) Disconnect(handle int) {
	for i, b := range g.boards {
		if b.Handle != handle {
			continue
		}
		if g.state == Lobby {
			g.boards = append(g.boards[:i], g.boards[i+1:]...)
			return
		}
		b.Handle = -1
		b.Status = "disconnected"
		return
	}
}

// Attack resolves a shot from shooterName at target's coordinate c.
// It validates turn order, target liveness and self-targeting, then
// delegates to Board.Shoot. On a hit the shooter's Score is
// incremented (spec §4.3 "on hit, increment shooter's score"). Callers
// (the server loop) are responsible for advancing the turn and
// checking IsFinished afterward.
func (g *Game) Attack(shooterName, targetName string, c Coordinate) (ShotResult, byte, error) {
	if g.state != Running {
		return ResultIllegal, 0, fmt.Errorf("%w", ErrNotRunning)
	}

	shooter := g.BoardByName(shooterName)
	if shooter == nil {
		return ResultIllegal, 0, fmt.Errorf("%w: %s", ErrUnknownPlayer, shooterName)
	}
	if !shooter.ToMove {
		return ResultIllegal, 0, fmt.Errorf("%w", ErrNotYourTurn)
	}
	if shooterName == targetName {
		return ResultIllegal, 0, fmt.Errorf("%w", ErrSelfTarget)
	}

	target := g.BoardByName(targetName)
	if target == nil {
		return ResultIllegal, 0, fmt.Errorf("%w: %s", ErrUnknownPlayer, targetName)
	}
	if target.IsDead() {
		return ResultIllegal, 0, fmt.Errorf("%w: %s", ErrDeadTarget, targetName)
	}

	result, cell, err := target.Shoot(c)
	if err != nil {
		return result, cell, err
	}
	shooter.Turns++
	if result == ResultHit {
		shooter.Score++
	}
	return result, cell, nil
}

// MaxScore returns the highest Score across all boards.
func (g *Game) MaxScore() uint {
	var max uint
	for _, b := range g.boards {
		if b.Score > max {
			max = b.Score
		}
	}
	return max
}

// IsFinished recomputes the termination predicate (spec §4.3):
// aborted, or all boards dead, or (maxScore >= pointGoal and every
// board has played the same number of turns).
func (g *Game) IsFinished() bool {
	if g.state == Aborted || g.state == Finished {
		return true
	}
	if len(g.boards) == 0 {
		return false
	}

	allDead := true
	minTurns, maxTurns := g.boards[0].Turns, g.boards[0].Turns
	for _, b := range g.boards {
		if !b.IsDead() {
			allDead = false
		}
		if b.Turns < minTurns {
			minTurns = b.Turns
		}
		if b.Turns > maxTurns {
			maxTurns = b.Turns
		}
	}

	if allDead {
		return true
	}

	return g.MaxScore() >= g.Config.PointGoal && minTurns == maxTurns
}

// Finish transitions the game to Finished.
func (g *Game) Finish() {
	now := time.Now()
	g.FinishedAt = &now
	g.state = Finished
}

// Abort transitions the game to Aborted.
func (g *Game) Abort() {
	now := time.Now()
	g.AbortedAt = &now
	g.state = Aborted
}

// Standings summarizes terminal per-board counters for persistence and
// the F/R broadcast (spec §4.1, §4.3): score, skips, turns, and
// first/last place flags. Ties are both marked.
type Standing struct {
	Name       string
	Score      uint
	Skips      uint
	Turns      uint
	FirstPlace bool
	LastPlace  bool
}

// FinalStandings computes the per-board Standing records. Valid once
// the game has finished.
func (g *Game) FinalStandings() []Standing {
	if len(g.boards) == 0 {
		return nil
	}

	minScore, maxScore := g.boards[0].Score, g.boards[0].Score
	for _, b := range g.boards {
		if b.Score < minScore {
			minScore = b.Score
		}
		if b.Score > maxScore {
			maxScore = b.Score
		}
	}

	out := make([]Standing, len(g.boards))
	for i, b := range g.boards {
		out[i] = Standing{
			Name:       b.Name,
			Score:      b.Score,
			Skips:      b.Skips,
			Turns:      b.Turns,
			FirstPlace: b.Score == maxScore,
			LastPlace:  b.Score == minScore,
		}
	}
	return out
}
