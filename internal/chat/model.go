package chat

import (
	"time"

	"github.com/google/uuid"
)

// Message is one direct message between two users.
type Message struct {
	ID            uuid.UUID `db:"id" json:"id"`
	SenderID      string    `db:"sender_id" json:"sender_id"`
	ReceiverID    string    `db:"receiver_id" json:"receiver_id"`
	Content       string    `db:"content" json:"content"`
	AttachmentURL *string   `db:"attachment_url" json:"attachment_url,omitempty"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// Envelope wraps payloads pushed to chat sessions so clients can tell chat
// messages apart from notification popups on the same socket.
type Envelope struct {
	Kind    string   `json:"kind"`
	Message *Message `json:"message,omitempty"`
}
