package chat

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Publisher fans a payload out to a user's active sessions.
type Publisher interface {
	Push(ctx context.Context, userID string, payload interface{}) error
}

type Service struct {
	repo   MessageRepository
	pub    Publisher
	logger zerolog.Logger
}

func NewService(repo MessageRepository, pub Publisher, logger zerolog.Logger) *Service {
	return &Service{repo: repo, pub: pub, logger: logger}
}

// Send persists one direct message and fans it out to the receiver's active
// sessions. Persistence failures are returned; fan-out is best-effort and
// only logged, so a receiver with no sessions (or a broken socket) never
// fails the send.
func (s *Service) Send(ctx context.Context, senderID, receiverID, content string, attachmentURL *string) (*Message, error) {
	if senderID == "" {
		return nil, fmt.Errorf("sender is required")
	}
	if receiverID == "" {
		return nil, fmt.Errorf("receiver_id is required")
	}
	if content == "" && attachmentURL == nil {
		return nil, fmt.Errorf("content or attachment_url is required")
	}

	m := &Message{
		ID:            uuid.New(),
		SenderID:      senderID,
		ReceiverID:    receiverID,
		Content:       content,
		AttachmentURL: attachmentURL,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, m); err != nil {
		return nil, fmt.Errorf("persist message: %w", err)
	}

	if err := s.pub.Push(ctx, receiverID, Envelope{Kind: "chat_message", Message: m}); err != nil {
		s.logger.Warn().Err(err).
			Str("message_id", m.ID.String()).
			Str("receiver_id", receiverID).
			Msg("chat fan-out failed")
	}
	return m, nil
}

// Conversation returns the message history between two users, newest first.
func (s *Service) Conversation(ctx context.Context, userA, userB string, limit, offset int) ([]*Message, int, error) {
	if userA == "" || userB == "" {
		return nil, 0, fmt.Errorf("both participants are required")
	}
	return s.repo.Conversation(ctx, userA, userB, limit, offset)
}
