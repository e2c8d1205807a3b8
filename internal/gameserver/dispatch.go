package gameserver

import (
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/sawtelle/boatsinker/internal/model"
	"github.com/sawtelle/boatsinker/internal/netio"
	"github.com/sawtelle/boatsinker/internal/wire"
)

// handleInbound dispatches one decoded message, or a session
// termination (Err set), from the fan-in channel. This runs on the hub
// goroutine only; it is the sole mutator of Game state (spec §5 "no
// locks").
func (s *Server) handleInbound(in netio.Inbound) {
	meta, ok := s.sessions[in.Handle]
	if !ok {
		return
	}

	if in.Err != nil {
		if wire.IsProtocolError(in.Err) {
			s.sendError(meta.session, in.Err.Error())
			return
		}
		s.disconnectSession(in.Handle)
		return
	}

	meta.lastActivity = time.Now()
	meta.pinged = false

	sess := meta.session
	switch in.Msg.Type {
	case wire.TypeJoin:
		s.handleJoin(sess, in.Msg)
	case wire.TypeShoot:
		s.handleShoot(sess, in.Msg)
	case wire.TypeSkip:
		s.handleSkip(sess, in.Msg)
	case wire.TypeTaunt:
		s.handleTaunt(sess, in.Msg)
	case wire.TypeChat:
		s.handleChat(sess, in.Msg)
	case wire.TypePing:
		// keepalive only; lastActivity already refreshed above.
	default:
		s.sendError(sess, "unrecognized message type")
	}
}

func (s *Server) sendError(sess *netio.Session, text string) {
	line, err := wire.EncodeErrorReply(wire.ErrorReply{Text: text})
	if err != nil {
		return
	}
	_ = sess.SendLine(line)
}

func (s *Server) handleJoin(sess *netio.Session, msg wire.Message) {
	req, err := wire.DecodeJoinRequest(msg)
	if err != nil {
		s.sendError(sess, err.Error())
		return
	}
	if req.Name == "" {
		s.sendError(sess, "name required")
		return
	}
	if s.opts.Blacklist[req.Name] {
		s.sendError(sess, "name not allowed")
		return
	}

	if existing := s.game.BoardByName(req.Name); existing != nil {
		if existing.Handle >= 0 {
			s.sendError(sess, "name already in use")
			return
		}
		s.reattach(sess, existing)
		return
	}

	if s.game.State() != model.Lobby {
		s.sendError(sess, "game already started")
		return
	}
	if req.Descriptor == "" {
		s.sendError(sess, "board descriptor required to join")
		return
	}
	if err := s.cfg.ValidateInitialDescriptor(req.Descriptor); err != nil {
		s.sendError(sess, err.Error())
		return
	}

	board := model.NewBoard(s.cfg, req.Name, sess.Handle)
	board.UpdateDescriptor(req.Descriptor)
	board.Status = "waiting"

	if err := s.game.AddBoard(board); err != nil {
		s.sendError(sess, err.Error())
		return
	}
	sess.PlayerName = req.Name
	s.logger.Printf("%s joined (%d/%d)", req.Name, len(s.game.Boards()), s.cfg.MaxPlayers)

	s.broadcastAll(wire.TypeJoin, req.Name)

	if s.opts.AutoStart && uint(len(s.game.Boards())) == s.cfg.MaxPlayers {
		s.startGame()
	}
}

func (s *Server) reattach(sess *netio.Session, board *model.Board) {
	board.Handle = sess.Handle
	board.Status = "connected"
	sess.PlayerName = board.Name

	if line, err := wire.EncodeYourBoard(wire.YourBoard{Descriptor: board.Descriptor()}); err == nil {
		_ = sess.SendLine(line)
	}
	s.broadcastAllExcept(sess.Handle, wire.TypeJoin, board.Name)
	s.logger.Printf("%s rejoined", board.Name)
}

func (s *Server) startGame() error {
	if err := s.game.Start(s.opts.RandomizeOrder, s.rng); err != nil {
		return err
	}
	names := make([]string, len(s.game.Boards()))
	for i, b := range s.game.Boards() {
		names[i] = b.Name
		b.Status = "playing"
	}
	s.broadcastAll(wire.TypeShoot, names...)
	for _, b := range s.game.Boards() {
		s.broadcastBoard(b)
	}
	s.armTurnDeadline()
	s.broadcastAll(wire.TypeNext, s.game.ToMoveBoard().Name)
	s.logger.Printf("game %s started with %d players", s.game.Title, len(names))
	return nil
}

func (s *Server) handleShoot(sess *netio.Session, msg wire.Message) {
	if sess.PlayerName == "" {
		s.sendError(sess, "join before shooting")
		return
	}
	req, err := wire.DecodeShootRequest(msg)
	if err != nil {
		s.sendError(sess, err.Error())
		return
	}
	coord := model.Coordinate{X: req.X, Y: req.Y}

	result, _, err := s.game.Attack(sess.PlayerName, req.Target, coord)
	if err != nil {
		s.sendError(sess, err.Error())
		return
	}

	target := s.game.BoardByName(req.Target)
	shooter := s.game.BoardByName(sess.PlayerName)

	s.broadcastBoard(target)
	s.broadcastBoard(shooter)

	if result == model.ResultHit {
		s.broadcastAll(wire.TypeHit, sess.PlayerName, req.Target, coord.String())
		s.deliverAutoTaunt(target, sess, true)
	} else {
		s.deliverAutoTaunt(target, sess, false)
	}

	s.advanceTurnAndMaybeFinish()
}

func (s *Server) deliverAutoTaunt(target *model.Board, shooter *netio.Session, hit bool) {
	list := target.MissTaunts
	if hit {
		list = target.HitTaunts
	}
	if len(list) == 0 {
		return
	}
	msg := model.Message{From: target.Name, To: shooter.PlayerName, Text: list[s.rng.Intn(len(list))]}
	if line, err := wire.EncodeChatBroadcast(wire.ChatBroadcast{From: msg.From, Text: msg.Text, To: msg.To}); err == nil {
		_ = shooter.SendLine(line)
	}
}

func (s *Server) handleSkip(sess *netio.Session, msg wire.Message) {
	if sess.PlayerName == "" {
		s.sendError(sess, "join before skipping")
		return
	}
	board := s.game.ToMoveBoard()
	if board == nil || board.Name != sess.PlayerName {
		s.sendError(sess, "not your turn")
		return
	}
	board.Skips++
	board.Turns++
	s.broadcastAll(wire.TypeSkip, sess.PlayerName, "voluntary")
	s.advanceTurnAndMaybeFinish()
}

func (s *Server) handleTaunt(sess *netio.Session, msg wire.Message) {
	if sess.PlayerName == "" {
		s.sendError(sess, "join before setting taunts")
		return
	}
	req, err := wire.DecodeTauntRequest(msg)
	if err != nil {
		s.sendError(sess, err.Error())
		return
	}
	board := s.game.BoardByName(sess.PlayerName)
	if board == nil {
		return
	}
	board.SetTaunt(req.IsHit, req.Text)
}

func (s *Server) handleChat(sess *netio.Session, msg wire.Message) {
	if sess.PlayerName == "" {
		s.sendError(sess, "join before chatting")
		return
	}
	req, err := wire.DecodeChatRequest(msg)
	if err != nil {
		s.sendError(sess, err.Error())
		return
	}

	chat := model.Message{From: sess.PlayerName, To: req.To, Text: req.Text}
	line, err := wire.EncodeChatBroadcast(wire.ChatBroadcast{From: chat.From, Text: chat.Text, To: chat.To})
	if err != nil {
		return
	}
	if chat.IsBroadcast() {
		s.broadcastAllExceptLine(sess.Handle, line, nil)
		return
	}
	target := s.findSessionByName(chat.To)
	if target == nil {
		s.sendError(sess, "unknown recipient")
		return
	}
	_ = target.SendLine(line)
}

func (s *Server) findSessionByName(name string) *netio.Session {
	for _, m := range s.sessions {
		if m.session.PlayerName == name {
			return m.session
		}
	}
	return nil
}

// advanceTurnAndMaybeFinish moves to the next board, auto-skipping any
// dead (disconnected or sunk) board that comes up so the game cannot
// live-lock on a departed player (spec §9), then checks the
// termination predicate.
func (s *Server) advanceTurnAndMaybeFinish() {
	if s.maybeFinish() {
		return
	}

	if err := s.game.NextTurn(); err != nil {
		return
	}
	for s.game.State() == model.Running && s.game.ToMoveBoard().IsDead() {
		dead := s.game.ToMoveBoard()
		dead.Skips++
		dead.Turns++
		s.broadcastAll(wire.TypeSkip, dead.Name, "timeout")
		if s.maybeFinish() {
			return
		}
		if err := s.game.NextTurn(); err != nil {
			return
		}
	}

	if s.game.State() != model.Running {
		return
	}
	s.armTurnDeadline()
	s.broadcastAll(wire.TypeNext, s.game.ToMoveBoard().Name)
}

func (s *Server) maybeFinish() bool {
	if !s.game.IsFinished() {
		return false
	}
	if s.game.State() == model.Running {
		s.game.Finish()
	}
	s.announceFinish()
	return true
}

func (s *Server) announceFinish() {
	standings := s.game.FinalStandings()
	s.broadcastAll(wire.TypeFinish, "finished", itoa(s.game.TurnCount), itoa(uint(len(standings))))
	for _, st := range standings {
		status := "alive"
		if board := s.game.BoardByName(st.Name); board != nil && board.IsDead() {
			status = "sunk"
		}
		s.broadcastAll(wire.TypeRecord, st.Name, itoa(st.Score), itoa(st.Skips), itoa(st.Turns), status)
	}
	s.persistResults(standings)
	s.logger.Printf("game %s finished after %d turns", s.game.Title, s.game.TurnCount)

	if s.opts.Repeat {
		s.restartGame()
	}
}

// restartGame replaces the finished Game with a fresh Lobby-state one
// (spec §6 "-r|--repeat": run another match after each finish) and
// invites every still-connected session to rejoin with a new board.
func (s *Server) restartGame() {
	s.game = model.NewGame(s.cfg, uuid.NewString())
	s.turnDeadline = time.Time{}
	for _, m := range s.sessions {
		m.session.PlayerName = ""
		s.sendGameInfo(m.session)
	}
	s.logger.Printf("starting a new match (title=%s)", s.game.Title)
}

func (s *Server) persistResults(standings []model.Standing) {
	if s.store == nil {
		return
	}
	gameID := "game." + s.game.Title
	for _, st := range standings {
		_ = s.store.Add(gameID, "player", st.Name)
		_ = s.store.Set(gameID, "score."+st.Name, itoa(st.Score))
	}
	_ = s.store.Sync(gameID)

	for _, st := range standings {
		playerID := "player." + st.Name
		_ = s.store.Add(playerID, "games", s.game.Title)
		_ = s.store.Sync(playerID)
	}
}

func (s *Server) armTurnDeadline() {
	s.turnDeadline = time.Now().Add(s.opts.TurnTimeout)
}

func (s *Server) broadcastBoard(b *model.Board) {
	status := b.Status
	if b.IsDead() {
		status = "sunk"
	}
	s.broadcastAll(wire.TypeBoard, b.Name, status, b.MaskedDescriptor(), itoa(b.Score), itoa(b.Skips))
}

func (s *Server) broadcastAll(msgType byte, fields ...string) {
	line, err := wire.Encode(msgType, fields...)
	if err != nil {
		return
	}
	for _, m := range s.sessions {
		_ = m.session.SendLine(line)
	}
}

func (s *Server) broadcastAllExcept(exclude int, msgType byte, fields ...string) {
	line, err := wire.Encode(msgType, fields...)
	if err != nil {
		return
	}
	s.broadcastAllExceptLine(exclude, line, nil)
}

func (s *Server) broadcastAllExceptLine(exclude int, line string, err error) {
	if err != nil {
		return
	}
	for handle, m := range s.sessions {
		if handle == exclude {
			continue
		}
		_ = m.session.SendLine(line)
	}
}

func itoa(v uint) string {
	return strconv.FormatUint(uint64(v), 10)
}

func (s *Server) disconnectSession(handle int) {
	meta, ok := s.sessions[handle]
	if !ok {
		return
	}
	delete(s.sessions, handle)
	meta.session.Close()

	name := meta.session.PlayerName
	s.game.Disconnect(handle)
	if name == "" {
		return
	}

	s.broadcastAll(wire.TypeLeft, name)
	s.logger.Printf("%s disconnected", name)

	if s.game.State() == model.Running {
		board := s.game.ToMoveBoard()
		if board != nil && board.Name == name {
			s.advanceTurnAndMaybeFinish()
		} else {
			s.maybeFinish()
		}
	}
}

func (s *Server) housekeeping() {
	now := time.Now()

	for handle, m := range s.sessions {
		idle := now.Sub(m.lastActivity)
		switch {
		case idle > 2*s.opts.IdleTimeout:
			s.disconnectSession(handle)
		case idle > s.opts.IdleTimeout && !m.pinged:
			_ = m.session.Send(wire.TypePing)
			m.pinged = true
		}
	}

	if s.game.State() == model.Running && !s.turnDeadline.IsZero() && now.After(s.turnDeadline) {
		board := s.game.ToMoveBoard()
		if board != nil {
			s.broadcastAll(wire.TypeSkip, board.Name, "timeout")
			board.Skips++
			board.Turns++
			s.advanceTurnAndMaybeFinish()
		}
	}
}
