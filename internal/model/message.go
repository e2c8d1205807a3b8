package model

// Message is a chat line exchanged between players. An empty To
// broadcasts to every player. Wrapping to a terminal width is a
// rendering concern handled by the (external) UI layer.
type Message struct {
	From string
	To   string
	Text string
}

// IsBroadcast reports whether the message targets every player.
func (m Message) IsBroadcast() bool {
	return m.To == ""
}
