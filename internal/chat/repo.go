package chat

import (
	"context"
)

type MessageRepository interface {
	Create(ctx context.Context, m *Message) error
	Conversation(ctx context.Context, userA, userB string, limit, offset int) ([]*Message, int, error)
}
