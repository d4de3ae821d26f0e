package domain

import (
	"time"

	"github.com/google/uuid"
)

// Message is a transient chat payload. It lives only on the wire,
// never in storage.
type Message struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Sender    string    `json:"sender"`
	SenderKey string    `json:"senderKey"`
	Avatar    Avatar    `json:"avatar"`
	Timestamp time.Time `json:"timestamp"`
}

// NewMessage snapshots the sender's identity at send time; a later
// rename or reconnect does not rewrite messages already delivered.
// SenderKey carries the durable deviceKey so clients can style their
// own messages across reconnects.
func NewMessage(from *Session, text string) Message {
	return Message{
		ID:        uuid.NewString(),
		Text:      text,
		Sender:    from.Name,
		SenderKey: from.DeviceKey,
		Avatar:    from.Avatar,
		Timestamp: time.Now().UTC(),
	}
}
