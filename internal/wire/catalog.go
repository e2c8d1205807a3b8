package wire

import (
	"fmt"
	"strconv"
	"strings"
)

// Message type letters (spec §4.1). The same letter is reused in both
// directions where the source protocol does (J, S, K, M); field shape
// and direction are what disambiguate a decoded Message.
const (
	TypeJoin       = 'J' // C->S join / S->C player joined
	TypeShoot      = 'S' // C->S shoot / S->C game started (arg list)
	TypeSkip       = 'K' // C->S voluntary skip / S->C player skipped
	TypeTaunt      = 'T' // C->S taunt update
	TypeChat       = 'M' // C->S / S->C chat
	TypePing       = 'P' // C->S keepalive / S->C idle ping
	TypeGameInfo   = 'G' // S->C game info
	TypeYourBoard  = 'Y' // S->C authoritative private board (rejoin only)
	TypeLeft       = 'L' // S->C player disconnected/left
	TypeBoard      = 'B' // S->C board update
	TypeNext       = 'N' // S->C whose turn
	TypeHit        = 'H' // S->C informational hit
	TypeFinish     = 'F' // S->C end of game summary
	TypeRecord     = 'R' // S->C per-player F summary line
	TypeError      = 'E' // S->C error reply
	TypeIdentify   = 'I' // ShellBot identification line
)

// --- Client -> Server ---

// JoinRequest is "J|name[|desc]".
type JoinRequest struct {
	Name       string
	Descriptor string // "" if omitted (rejoin without a board)
}

func EncodeJoinRequest(r JoinRequest) (string, error) {
	if r.Descriptor == "" {
		return Encode(TypeJoin, r.Name)
	}
	return Encode(TypeJoin, r.Name, r.Descriptor)
}

func DecodeJoinRequest(m Message) (JoinRequest, error) {
	if len(m.Fields) < 1 {
		return JoinRequest{}, fmt.Errorf("J: missing name")
	}
	return JoinRequest{Name: m.Field(0), Descriptor: m.Field(1)}, nil
}

// ShootRequest is "S|target|x|y".
type ShootRequest struct {
	Target string
	X, Y   uint
}

func EncodeShootRequest(r ShootRequest) (string, error) {
	return Encode(TypeShoot, r.Target, strconv.FormatUint(uint64(r.X), 10), strconv.FormatUint(uint64(r.Y), 10))
}

func DecodeShootRequest(m Message) (ShootRequest, error) {
	if len(m.Fields) < 3 {
		return ShootRequest{}, fmt.Errorf("S: expected target|x|y")
	}
	x, err := strconv.ParseUint(m.Field(1), 10, 64)
	if err != nil {
		return ShootRequest{}, fmt.Errorf("S: bad x: %w", err)
	}
	y, err := strconv.ParseUint(m.Field(2), 10, 64)
	if err != nil {
		return ShootRequest{}, fmt.Errorf("S: bad y: %w", err)
	}
	return ShootRequest{Target: m.Field(0), X: uint(x), Y: uint(y)}, nil
}

// SkipRequest is "K|name".
type SkipRequest struct{ Name string }

func EncodeSkipRequest(r SkipRequest) (string, error) { return Encode(TypeSkip, r.Name) }

func DecodeSkipRequest(m Message) (SkipRequest, error) {
	return SkipRequest{Name: m.Field(0)}, nil
}

// TauntRequest is "T|hit|text" or "T|miss|text".
type TauntRequest struct {
	IsHit bool
	Text  string
}

func EncodeTauntRequest(r TauntRequest) (string, error) {
	kind := "miss"
	if r.IsHit {
		kind = "hit"
	}
	return Encode(TypeTaunt, kind, r.Text)
}

func DecodeTauntRequest(m Message) (TauntRequest, error) {
	kind := m.Field(0)
	if kind != "hit" && kind != "miss" {
		return TauntRequest{}, fmt.Errorf("T: expected hit|miss, got %q", kind)
	}
	return TauntRequest{IsHit: kind == "hit", Text: m.Field(1)}, nil
}

// ChatRequest is "M|to|text".
type ChatRequest struct {
	To   string
	Text string
}

func EncodeChatRequest(r ChatRequest) (string, error) { return Encode(TypeChat, r.To, r.Text) }

func DecodeChatRequest(m Message) (ChatRequest, error) {
	return ChatRequest{To: m.Field(0), Text: m.Field(1)}, nil
}

// --- Server -> Client ---

// GameInfo is "G|version|title|key=value...".
type GameInfo struct {
	Version                             string
	Title                               string
	MinPlayers, MaxPlayers, Joined      uint
	Goal, Width, Height, Boats          uint
	BoatDescriptors                     []string // "boat=<ID><len>" values
	Started                             bool
}

func EncodeGameInfo(info GameInfo) (string, error) {
	fields := []string{
		info.Version,
		info.Title,
		kv("min", info.MinPlayers),
		kv("max", info.MaxPlayers),
		kv("joined", info.Joined),
		kv("goal", info.Goal),
		kv("width", info.Width),
		kv("height", info.Height),
		kv("boats", info.Boats),
	}
	for _, boat := range info.BoatDescriptors {
		fields = append(fields, "boat="+boat)
	}
	if info.Started {
		fields = append(fields, "started")
	}
	return Encode(TypeGameInfo, fields...)
}

func kv(key string, v uint) string {
	return fmt.Sprintf("%s=%d", key, v)
}

// DecodeGameInfo parses a "G" message back into a GameInfo.
func DecodeGameInfo(m Message) (GameInfo, error) {
	if len(m.Fields) < 2 {
		return GameInfo{}, fmt.Errorf("G: missing version/title")
	}
	info := GameInfo{Version: m.Field(0), Title: m.Field(1)}

	kvs := make(map[string]uint)
	for _, f := range m.Fields[2:] {
		if f == "started" {
			info.Started = true
			continue
		}
		key, val, found := strings.Cut(f, "=")
		if !found {
			continue
		}
		if key == "boat" {
			info.BoatDescriptors = append(info.BoatDescriptors, val)
			continue
		}
		n, err := strconv.ParseUint(val, 10, 64)
		if err != nil {
			continue
		}
		kvs[key] = uint(n)
	}

	info.MinPlayers = kvs["min"]
	info.MaxPlayers = kvs["max"]
	info.Joined = kvs["joined"]
	info.Goal = kvs["goal"]
	info.Width = kvs["width"]
	info.Height = kvs["height"]
	info.Boats = kvs["boats"]

	return info, nil
}

// PlayerJoined is "J|name".
type PlayerJoined struct{ Name string }

func EncodePlayerJoined(p PlayerJoined) (string, error) { return Encode(TypeJoin, p.Name) }

// YourBoard is "Y|desc".
type YourBoard struct{ Descriptor string }

func EncodeYourBoard(y YourBoard) (string, error) { return Encode(TypeYourBoard, y.Descriptor) }

// PlayerLeft is "L|name".
type PlayerLeft struct{ Name string }

func EncodePlayerLeft(p PlayerLeft) (string, error) { return Encode(TypeLeft, p.Name) }

// BoardUpdate is "B|name|status|desc|score|skips".
type BoardUpdate struct {
	Name             string
	Status           string
	Descriptor       string
	Score, Skips     uint
}

func EncodeBoardUpdate(b BoardUpdate) (string, error) {
	return Encode(TypeBoard, b.Name, b.Status, b.Descriptor,
		strconv.FormatUint(uint64(b.Score), 10), strconv.FormatUint(uint64(b.Skips), 10))
}

// GameStarted is "S|name1|name2|...".
type GameStarted struct{ Order []string }

func EncodeGameStarted(s GameStarted) (string, error) { return Encode(TypeShoot, s.Order...) }

// NextTurn is "N|name".
type NextTurn struct{ Name string }

func EncodeNextTurn(n NextTurn) (string, error) { return Encode(TypeNext, n.Name) }

// PlayerSkipped is "K|name[|reason]".
type PlayerSkipped struct {
	Name   string
	Reason string // "voluntary", "timeout", or ""
}

func EncodePlayerSkipped(s PlayerSkipped) (string, error) {
	if s.Reason == "" {
		return Encode(TypeSkip, s.Name)
	}
	return Encode(TypeSkip, s.Name, s.Reason)
}

// HitInfo is "H|shooter|target|square".
type HitInfo struct {
	Shooter, Target, Square string
}

func EncodeHitInfo(h HitInfo) (string, error) {
	return Encode(TypeHit, h.Shooter, h.Target, h.Square)
}

// ChatBroadcast is "M|from|text|to".
type ChatBroadcast struct {
	From, Text, To string
}

func EncodeChatBroadcast(c ChatBroadcast) (string, error) {
	return Encode(TypeChat, c.From, c.Text, c.To)
}

// Finish is "F|status|turns|players".
type Finish struct {
	Status  string
	Turns   uint
	Players uint
}

func EncodeFinish(f Finish) (string, error) {
	return Encode(TypeFinish, f.Status, strconv.FormatUint(uint64(f.Turns), 10), strconv.FormatUint(uint64(f.Players), 10))
}

// Record is "R|name|score|skips|turns|status".
type Record struct {
	Name                     string
	Score, Skips, Turns      uint
	Status                   string
}

func EncodeRecord(r Record) (string, error) {
	return Encode(TypeRecord, r.Name,
		strconv.FormatUint(uint64(r.Score), 10),
		strconv.FormatUint(uint64(r.Skips), 10),
		strconv.FormatUint(uint64(r.Turns), 10),
		r.Status)
}

// ErrorReply is "E|text".
type ErrorReply struct{ Text string }

func EncodeErrorReply(e ErrorReply) (string, error) {
	// '|' and '\n' cannot appear in a field; sanitize defensively so an
	// error string derived from user input never breaks framing.
	text := strings.NewReplacer("|", "/", "\n", " ").Replace(e.Text)
	return Encode(TypeError, text)
}

// Identify is "I|name|version|player" (ShellBot handshake, spec §4.6).
type Identify struct {
	Name, Version, Player string
}

func EncodeIdentify(i Identify) (string, error) {
	return Encode(TypeIdentify, i.Name, i.Version, i.Player)
}

func DecodeIdentify(m Message) (Identify, error) {
	if len(m.Fields) < 3 {
		return Identify{}, fmt.Errorf("I: expected name|version|player")
	}
	return Identify{Name: m.Field(0), Version: m.Field(1), Player: m.Field(2)}, nil
}
