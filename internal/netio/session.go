// Package netio owns the per-connection socket plumbing: buffered
// line I/O, a bounded send queue, and flood control. Spec §5 describes
// a single-threaded event loop multiplexing readiness with
// select/poll; the idiomatic Go translation used throughout this
// module is a goroutine-per-connection pumping into and out of
// channels that a single-goroutine hub (internal/gameserver) drains,
// so the Game state itself is still touched by exactly one goroutine
// and needs no locking (spec §5 "no locks").
package netio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync/atomic"
	"syscall"
	"time"

	"golang.org/x/time/rate"

	"github.com/sawtelle/boatsinker/internal/wire"
)

// ErrSendQueueFull is returned by Send and SendLine when a session's
// outbound queue is full; the line is not queued, so the event loop
// never blocks on one slow peer (spec §5). The hub's send paths discard
// this error: the session stays connected and simply misses that line.
var ErrSendQueueFull = errors.New("netio: send queue full")

// outboxCapacity bounds the number of not-yet-written lines queued per
// session; further sends fail with ErrSendQueueFull until it drains.
const outboxCapacity = 256

// Inbound is one decoded message tagged with the session it arrived on.
type Inbound struct {
	Handle int
	Msg    wire.Message
	Err    error // set, with Msg zero, when the session's read loop ended
}

// Session owns exactly one client connection: its socket, buffered
// reader/writer, outbound queue and flood-control limiter.
type Session struct {
	Handle int

	conn   net.Conn
	reader *wire.Reader

	outbox chan string
	done   chan struct{}
	closed atomic.Bool

	limiter *rate.Limiter

	// PlayerName is set once the session has joined a game with a
	// name; empty for a provisional (not-yet-a-player) connection.
	PlayerName string
}

// NewSession wraps conn. handle is a small opaque integer unique among
// live sessions on this server (the spec's "provisional handle... the
// file descriptor"); ratePerSecond/burst configure the per-connection
// flood-control token bucket (§5 resource discipline).
func NewSession(handle int, conn net.Conn, ratePerSecond float64, burst int) *Session {
	return &Session{
		Handle:  handle,
		conn:    conn,
		reader:  wire.NewReader(conn),
		outbox:  make(chan string, outboxCapacity),
		done:    make(chan struct{}),
		limiter: rate.NewLimiter(rate.Limit(ratePerSecond), burst),
	}
}

// Send encodes and enqueues a message for asynchronous delivery. It
// never blocks: a full queue returns ErrSendQueueFull immediately.
func (s *Session) Send(msgType byte, fields ...string) error {
	line, err := wire.Encode(msgType, fields...)
	if err != nil {
		return err
	}
	return s.SendLine(line)
}

// SendLine enqueues an already-encoded wire line (including its
// trailing '\n') for asynchronous delivery. Never blocks.
func (s *Session) SendLine(line string) error {
	select {
	case s.outbox <- line:
		return nil
	default:
		return ErrSendQueueFull
	}
}

// RunWriter drains the outbox to the connection until Close is called
// or a write fails. It is meant to run in its own goroutine for the
// lifetime of the session.
func (s *Session) RunWriter() {
	for {
		select {
		case line, ok := <-s.outbox:
			if !ok {
				return
			}
			if _, err := io.WriteString(s.conn, line); err != nil {
				s.Close()
				return
			}
		case <-s.done:
			return
		}
	}
}

// RunReader reads wire messages until EOF or error and posts each to
// inbound. It applies the flood-control limiter per line: a line
// arriving over the configured rate is silently dropped (nothing is
// posted to inbound for it), rather than disconnecting the peer
// outright. A malformed line (wire.IsProtocolError) is reported
// to the hub and the connection stays open so the peer can be told
// ProtocolError and keep playing (spec §7); only a real transport
// failure ends the session. The parser runs over untrusted,
// attacker-controlled input, so a recover() guards against any panic
// that slips past wire.Decode's own validation rather than taking the
// whole process down with it.
func (s *Session) RunReader(ctx context.Context, inbound chan<- Inbound) {
	defer func() {
		if r := recover(); r != nil {
			inbound <- Inbound{Handle: s.Handle, Err: fmt.Errorf("netio: reader panic: %v", r)}
			return
		}
		inbound <- Inbound{Handle: s.Handle, Err: io.EOF}
	}()

	for {
		msg, err := s.reader.ReadMessage()
		if err != nil {
			if isTransient(err) {
				continue
			}
			if wire.IsProtocolError(err) {
				select {
				case inbound <- Inbound{Handle: s.Handle, Err: err}:
					continue
				case <-ctx.Done():
					return
				case <-s.done:
					return
				}
			}
			return
		}

		if !s.limiter.Allow() {
			continue // flood control: silently drop, peer will retry
		}

		select {
		case inbound <- Inbound{Handle: s.Handle, Msg: msg}:
		case <-ctx.Done():
			return
		case <-s.done:
			return
		}
	}
}

// isTransient reports whether err is the spec's TransientIo kind
// (spec §7: "would-block, interrupted syscall; retried") rather than
// PermanentIo, which ends the session. Go's net package already
// retries EAGAIN/EINTR internally for blocking reads in almost every
// case, so this mostly guards a raw net.Conn wrapping a file
// descriptor shared with non-blocking code elsewhere in the process.
func isTransient(err error) bool {
	return errors.Is(err, syscall.EAGAIN) || errors.Is(err, syscall.EINTR)
}

// Close closes the underlying connection exactly once and stops the
// writer goroutine. Safe to call multiple times.
func (s *Session) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	close(s.done)
	return s.conn.Close()
}

// SetDeadline propagates an idle-timeout deadline to the socket (spec
// §5: a session idle beyond the read window is pinged, then dropped).
func (s *Session) SetDeadline(d time.Duration) error {
	return s.conn.SetDeadline(time.Now().Add(d))
}

func (s *Session) String() string {
	return fmt.Sprintf("session#%d(%s)", s.Handle, s.PlayerName)
}
