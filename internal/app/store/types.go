package store

import "time"

// Contact is a user as shown in another user's contact list.
type Contact struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Conversation is the durable record binding an unordered pair of users.
// The pair is stored normalized: UserLow < UserHigh.
type Conversation struct {
	ID        int64     `json:"id"`
	UserLow   int64     `json:"user_low"`
	UserHigh  int64     `json:"user_high"`
	CreatedAt time.Time `json:"created_at"`
}

// Peer returns the other participant of the conversation, and whether the
// given user is a participant at all.
func (c Conversation) Peer(userID int64) (int64, bool) {
	switch userID {
	case c.UserLow:
		return c.UserHigh, true
	case c.UserHigh:
		return c.UserLow, true
	default:
		return 0, false
	}
}

// Message is a persisted chat message hydrated with the sender's display name.
// Field names match the wire format consumed by the browser client.
type Message struct {
	ID             int64     `json:"id"`
	ConversationID int64     `json:"conversation_id"`
	SenderID       int64     `json:"sender_id"`
	Text           string    `json:"text"`
	CreatedAt      time.Time `json:"created_at"`
	SenderName     string    `json:"sender_name"`
}
