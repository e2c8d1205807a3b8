// Package bottester implements the client CLI's "--test" bot tester
// (spec §6): it plays a configured number of headless two-player
// matches between a named targeting strategy and itself, with no
// network or terminal involved, and records each match's result to the
// key=value store under the "test.<W>x<H>.<bot>-<version>" record id
// spec §6 names.
package bottester

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/sawtelle/boatsinker/internal/model"
	"github.com/sawtelle/boatsinker/internal/store"
	"github.com/sawtelle/boatsinker/internal/targeting"
)

// BotVersion is the version tag embedded in the test record id; bumped
// whenever a strategy's scoring changes in a way that would make old
// results non-comparable.
const BotVersion = "1"

// Options configures one tester run.
type Options struct {
	Strategy      targeting.Strategy
	Width, Height uint
	Count         int
	MSA           float64 // min-surface-area percentage for random boards
	Watch         func(result Result)
	Rng           *rand.Rand
}

// Result is the outcome of a single headless match.
type Result struct {
	Winner string // board name, or "" for a draw
	Turns  uint
}

// Run plays Options.Count matches and, if st is non-nil, records
// per-match outcomes into the "test.<W>x<H>.<name>-<version>" record.
func Run(opts Options, st store.Store) ([]Result, error) {
	if opts.Count <= 0 {
		opts.Count = 1
	}
	rng := opts.Rng
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	results := make([]Result, 0, opts.Count)
	for i := 0; i < opts.Count; i++ {
		res, err := playOne(opts, rng)
		if err != nil {
			return results, err
		}
		results = append(results, res)
		if opts.Watch != nil {
			opts.Watch(res)
		}
		if st != nil {
			recordResult(st, opts, res)
		}
	}

	if st != nil {
		_ = st.Sync(recordID(opts))
	}
	return results, nil
}

func recordID(opts Options) string {
	return fmt.Sprintf("test.%dx%d.%s-%s", opts.Width, opts.Height, opts.Strategy.Name(), BotVersion)
}

func recordResult(st store.Store, opts Options, res Result) {
	id := recordID(opts)
	winner := res.Winner
	if winner == "" {
		winner = "draw"
	}
	_ = st.Add(id, "winner", winner)
	_ = st.Add(id, "turns", fmt.Sprintf("%d", res.Turns))
}

func playOne(opts Options, rng *rand.Rand) (Result, error) {
	cfg, err := model.NewConfiguration("test", 2, 2, opts.Width, opts.Height, model.StandardShips(), true)
	if err != nil {
		return Result{}, err
	}

	alice := model.NewBoard(cfg, "alice", -1)
	bob := model.NewBoard(cfg, "bob", -1)
	if err := alice.AddRandomShips(opts.MSA, rng); err != nil {
		return Result{}, err
	}
	if err := bob.AddRandomShips(opts.MSA, rng); err != nil {
		return Result{}, err
	}

	game := model.NewGame(cfg, "test-match")
	if err := game.AddBoard(alice); err != nil {
		return Result{}, err
	}
	if err := game.AddBoard(bob); err != nil {
		return Result{}, err
	}
	if err := game.Start(false, rng); err != nil {
		return Result{}, err
	}

	tracks := map[string]*model.Board{
		alice.Name: model.NewBoard(cfg, bob.Name, 0),
		bob.Name:   model.NewBoard(cfg, alice.Name, 0),
	}
	opponent := map[string]*model.Board{alice.Name: bob, bob.Name: alice}

	for !game.IsFinished() {
		shooter := game.ToMoveBoard()
		track := tracks[shooter.Name]
		target := opponent[shooter.Name]

		coord, err := opts.Strategy.Target(track, rng)
		if err == nil {
			if _, _, attackErr := game.Attack(shooter.Name, target.Name, coord); attackErr == nil {
				track.AddHitsAndMisses(target.MaskedDescriptor())
			}
		}

		if err := game.NextTurn(); err != nil {
			break
		}
	}
	game.Finish()

	standings := game.FinalStandings()
	result := Result{Turns: game.TurnCount}
	firstCount := 0
	for _, st := range standings {
		if st.FirstPlace {
			firstCount++
			result.Winner = st.Name
		}
	}
	if firstCount != 1 {
		result.Winner = ""
	}
	return result, nil
}
