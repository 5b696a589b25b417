package domain

// Reaction is one emoji reaction aggregated on a message.
type Reaction struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// MessageSnapshot is a point-in-time copy of a chat message, captured either
// from a live reaction event or a reconciliation history fetch.
type MessageSnapshot struct {
	ChannelID   string     `json:"channel_id"`
	Timestamp   string     `json:"timestamp"`
	ClientMsgID string     `json:"client_msg_id,omitempty"`
	AuthorID    string     `json:"author_id"`
	AuthorIsBot bool       `json:"author_is_bot"`
	Text        string     `json:"text"`
	ThreadTS    string     `json:"thread_ts,omitempty"`
	Reactions   []Reaction `json:"reactions,omitempty"`
}

// MessageID returns the stable identifier used for idempotency. Falls back
// to the timestamp when the platform assigned no client message ID.
func (m *MessageSnapshot) MessageID() string {
	if m.ClientMsgID != "" {
		return m.ClientMsgID
	}
	return m.Timestamp
}

// TotalReactions sums reaction counts across all emoji.
func (m *MessageSnapshot) TotalReactions() int {
	total := 0
	for _, r := range m.Reactions {
		total += r.Count
	}
	return total
}

// HasReaction reports whether the message carries the named reaction.
func (m *MessageSnapshot) HasReaction(name string) bool {
	for _, r := range m.Reactions {
		if r.Name == name {
			return true
		}
	}
	return false
}

// Author is resolved display metadata for a message author.
type Author struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	IsBot bool   `json:"is_bot"`
}

// Channel is resolved display metadata for a chat channel.
type Channel struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
