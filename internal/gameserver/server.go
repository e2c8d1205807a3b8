// Package gameserver implements the authoritative game server loop
// (spec §4.4): it accepts client connections, dispatches inbound wire
// messages to the Game state machine, and broadcasts consequences to
// every session.
//
// The spec describes a single-threaded cooperative event loop
// multiplexing readiness with select/poll. Go's networking stack
// doesn't expose raw readiness multiplexing idiomatically; the
// translation used here is a single hub goroutine that owns the Game
// exclusively (so it needs no locks, per spec §5) and drains a fan-in
// channel fed by one reader goroutine per connection — the standard Go
// analog of a reactor loop.
package gameserver

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"net"
	"time"

	"github.com/google/uuid"

	"github.com/sawtelle/boatsinker/internal/model"
	"github.com/sawtelle/boatsinker/internal/netio"
	"github.com/sawtelle/boatsinker/internal/store"
	"github.com/sawtelle/boatsinker/internal/wire"
)

// Options configures a Server. Zero-value fields fall back to the
// spec's documented defaults (§5, §6).
type Options struct {
	BindAddress string
	Port        int

	AutoStart      bool
	RandomizeOrder bool
	Repeat         bool

	TurnTimeout     time.Duration // default 30s
	IdleTimeout     time.Duration // default 30s
	HousekeepingTick time.Duration // default 1s

	RatePerSecond float64 // per-session flood control, default 20
	RateBurst     int     // default 40

	Blacklist map[string]bool
}

func (o *Options) withDefaults() {
	if o.Port == 0 {
		o.Port = 7948
	}
	if o.BindAddress == "" {
		o.BindAddress = "0.0.0.0"
	}
	if o.TurnTimeout == 0 {
		o.TurnTimeout = 30 * time.Second
	}
	if o.IdleTimeout == 0 {
		o.IdleTimeout = 30 * time.Second
	}
	if o.HousekeepingTick == 0 {
		o.HousekeepingTick = time.Second
	}
	if o.RatePerSecond == 0 {
		o.RatePerSecond = 20
	}
	if o.RateBurst == 0 {
		o.RateBurst = 40
	}
}

type sessionMeta struct {
	session      *netio.Session
	lastActivity time.Time
	pinged       bool
}

// Server is the authoritative game server: the listening socket, the
// set of active sessions, and the exclusively-owned Game (spec §3
// Ownership).
type Server struct {
	opts   Options
	cfg    *model.Configuration
	logger *log.Logger
	store  store.Store
	rng    *rand.Rand

	game *model.Game

	listener   net.Listener
	sessions   map[int]*sessionMeta
	nextHandle int

	inbound  chan netio.Inbound
	accepted chan net.Conn

	turnDeadline time.Time
}

// New constructs a Server for cfg. A nil logger defaults to
// log.Default(); a nil st disables result persistence.
func New(cfg *model.Configuration, logger *log.Logger, st store.Store, opts Options) *Server {
	opts.withDefaults()
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		opts:     opts,
		cfg:      cfg,
		logger:   logger,
		store:    st,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		game:     model.NewGame(cfg, uuid.NewString()),
		sessions: make(map[int]*sessionMeta),
		inbound:  make(chan netio.Inbound, 256),
		accepted: make(chan net.Conn, 16),
	}
}

// ListenAndServe binds the configured address and runs the event loop
// until ctx is cancelled or an unrecoverable listener error occurs.
func (s *Server) ListenAndServe(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.opts.BindAddress, s.opts.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("gameserver: listen %s: %w", addr, err)
	}
	s.listener = ln
	s.logger.Printf("listening on %s", addr)

	go s.acceptLoop(ctx)

	return s.run(ctx)
}

func (s *Server) acceptLoop(ctx context.Context) {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			return
		}
		select {
		case s.accepted <- conn:
		case <-ctx.Done():
			conn.Close()
			return
		}
	}
}

func (s *Server) run(ctx context.Context) error {
	ticker := time.NewTicker(s.opts.HousekeepingTick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.shutdown()
			return nil

		case conn := <-s.accepted:
			s.registerSession(ctx, conn)

		case in := <-s.inbound:
			s.handleInbound(in)

		case <-ticker.C:
			s.housekeeping()
		}
	}
}

func (s *Server) registerSession(ctx context.Context, conn net.Conn) {
	handle := s.nextHandle
	s.nextHandle++

	sess := netio.NewSession(handle, conn, s.opts.RatePerSecond, s.opts.RateBurst)
	s.sessions[handle] = &sessionMeta{session: sess, lastActivity: time.Now()}

	go sess.RunWriter()
	go sess.RunReader(ctx, s.inbound)

	s.sendGameInfo(sess)
	s.logger.Printf("accepted connection handle=%d", handle)
}

func (s *Server) sendGameInfo(sess *netio.Session) {
	boats := make([]string, len(s.cfg.Ships))
	for i, sh := range s.cfg.Ships {
		boats[i] = sh.String()
	}
	info := wire.GameInfo{
		Version:         "1",
		Title:           s.game.Title,
		MinPlayers:      s.cfg.MinPlayers,
		MaxPlayers:      s.cfg.MaxPlayers,
		Joined:          uint(len(s.game.Boards())),
		Goal:            s.cfg.PointGoal,
		Width:           s.cfg.Width,
		Height:          s.cfg.Height,
		Boats:           uint(len(s.cfg.Ships)),
		BoatDescriptors: boats,
		Started:         s.game.State() != model.Lobby,
	}
	line, err := wire.EncodeGameInfo(info)
	if err != nil {
		s.logger.Printf("encode game info: %v", err)
		return
	}
	_ = sess.SendLine(line)
}

func (s *Server) shutdown() {
	for _, m := range s.sessions {
		m.session.Close()
	}
	if s.listener != nil {
		s.listener.Close()
	}
}
