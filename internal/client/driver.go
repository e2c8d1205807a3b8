package client

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"net"
	"time"

	"github.com/sawtelle/boatsinker/internal/model"
	"github.com/sawtelle/boatsinker/internal/netio"
	"github.com/sawtelle/boatsinker/internal/wire"
)

// SupportedVersion is the protocol version this driver speaks (spec
// §4.1/§6); Run rejects a server advertising an incompatible version.
const SupportedVersion = "1"

// Driver owns one client connection: it joins a game with a board its
// Bot supplies, then runs the read loop translating server broadcasts
// into Bot.Target calls and S/K replies.
type Driver struct {
	Bot    Bot
	Logger *log.Logger
	Rng    *rand.Rand

	// HitTaunts/MissTaunts, if set, are sent as T requests once the
	// board is joined (spec §6 "-t|--taunt-file"); the server replays
	// one at random to the shooter on a matching shot (spec §4.1).
	HitTaunts  []string
	MissTaunts []string

	session *netio.Session
	cfg     *model.Configuration
	own     *model.Board
	tracks  map[string]*model.Board
	done    bool
}

// NewDriver constructs a Driver over an already-connected socket.
func NewDriver(conn net.Conn, bot Bot, logger *log.Logger, rng *rand.Rand) *Driver {
	if logger == nil {
		logger = log.Default()
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Driver{
		Bot:     bot,
		Logger:  logger,
		Rng:     rng,
		session: netio.NewSession(0, conn, 1000, 1000),
		tracks:  make(map[string]*model.Board),
	}
}

// Run blocks, driving the connection until the game ends, ctx is
// cancelled, or an unrecoverable protocol error occurs.
func (d *Driver) Run(ctx context.Context) error {
	go d.session.RunWriter()

	inbound := make(chan netio.Inbound, 64)
	go d.session.RunReader(ctx, inbound)

	if err := d.awaitGameInfoAndJoin(inbound); err != nil {
		return err
	}
	d.sendTaunts()

	for !d.done {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case in := <-inbound:
			if in.Err != nil {
				return fmt.Errorf("client: connection closed: %w", in.Err)
			}
			if err := d.handle(in.Msg); err != nil {
				d.Logger.Printf("client: %v", err)
			}
		}
	}
	return nil
}

func (d *Driver) awaitGameInfoAndJoin(inbound <-chan netio.Inbound) error {
	in := <-inbound
	if in.Err != nil {
		return fmt.Errorf("client: connection closed before game info: %w", in.Err)
	}
	if in.Msg.Type != wire.TypeGameInfo {
		return fmt.Errorf("client: expected G, got %c", in.Msg.Type)
	}

	info, err := wire.DecodeGameInfo(in.Msg)
	if err != nil {
		return fmt.Errorf("client: decode game info: %w", err)
	}
	if info.Version != SupportedVersion {
		return fmt.Errorf("client: unsupported protocol version %q", info.Version)
	}

	ships := make([]model.Ship, 0, len(info.BoatDescriptors))
	for _, s := range info.BoatDescriptors {
		ship, err := model.ParseShip(s)
		if err != nil {
			return fmt.Errorf("client: parse boat descriptor %q: %w", s, err)
		}
		ships = append(ships, ship)
	}
	cfg, err := model.NewConfiguration(info.Title, info.MinPlayers, info.MaxPlayers, info.Width, info.Height, ships, true)
	if err != nil {
		return fmt.Errorf("client: build configuration: %w", err)
	}
	d.cfg = cfg

	board, err := d.Bot.PlaceShips(cfg, d.Rng)
	if err != nil {
		return fmt.Errorf("client: place ships: %w", err)
	}
	d.own = board

	return d.session.Send(wire.TypeJoin, d.Bot.Name(), board.Descriptor())
}

func (d *Driver) sendTaunts() {
	for _, text := range d.HitTaunts {
		_ = d.session.Send(wire.TypeTaunt, "hit", text)
	}
	for _, text := range d.MissTaunts {
		_ = d.session.Send(wire.TypeTaunt, "miss", text)
	}
}

func (d *Driver) handle(msg wire.Message) error {
	switch msg.Type {
	case wire.TypeJoin:
		name := msg.Field(0)
		if name != d.Bot.Name() {
			d.trackFor(name)
		}
	case wire.TypeYourBoard:
		d.own.UpdateDescriptor(msg.Field(0))
	case wire.TypeLeft:
		if t, ok := d.tracks[msg.Field(0)]; ok {
			t.Handle = -1
		}
	case wire.TypeBoard:
		return d.handleBoardUpdate(msg)
	case wire.TypeNext:
		if msg.Field(0) == d.Bot.Name() {
			return d.takeTurn()
		}
	case wire.TypeFinish, wire.TypeRecord:
		d.done = true
	case wire.TypePing:
		return d.session.Send(wire.TypePing)
	case wire.TypeError:
		d.Logger.Printf("server error: %s", msg.Field(0))
	}
	return nil
}

func (d *Driver) handleBoardUpdate(msg wire.Message) error {
	name := msg.Field(0)
	if name == d.Bot.Name() {
		return nil
	}
	track := d.trackFor(name)
	desc := msg.Field(2)
	if desc != "" {
		track.AddHitsAndMisses(desc)
	}
	return nil
}

func (d *Driver) trackFor(name string) *model.Board {
	t, ok := d.tracks[name]
	if !ok {
		t = model.NewBoard(d.cfg, name, 0)
		d.tracks[name] = t
	}
	return t
}

// takeTurn picks a live opponent to shoot at -- the one with the
// fewest unshot cells remaining, favoring finishing off an opponent
// already close to sunk over spreading damage thin -- then asks the
// Bot for a coordinate against that opponent's track.
func (d *Driver) takeTurn() error {
	target := d.pickTarget()
	if target == nil {
		return d.session.Send(wire.TypeSkip, d.Bot.Name())
	}

	coord, err := d.Bot.Target(target, d.Rng)
	if err != nil {
		return d.session.Send(wire.TypeSkip, d.Bot.Name())
	}

	line, err := wire.EncodeShootRequest(wire.ShootRequest{Target: target.Name, X: coord.X, Y: coord.Y})
	if err != nil {
		return err
	}
	return d.session.SendLine(line)
}

func (d *Driver) pickTarget() *model.Board {
	var best *model.Board
	bestRemaining := -1
	for _, t := range d.tracks {
		if t.Handle < 0 || t.HitCount() >= int(t.PointGoal()) {
			continue
		}
		remaining := len(t.Cells()) - t.HitCount() - t.MissCount()
		if best == nil || remaining < bestRemaining {
			best, bestRemaining = t, remaining
		}
	}
	return best
}
