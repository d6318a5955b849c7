package chat

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type RepoPG struct {
	pool *pgxpool.Pool
}

func NewRepoPG(pool *pgxpool.Pool) *RepoPG {
	return &RepoPG{pool: pool}
}

const messageCols = `id, sender_id, receiver_id, content, attachment_url, created_at`

func scanMessage(row pgx.Row) (*Message, error) {
	var m Message
	err := row.Scan(&m.ID, &m.SenderID, &m.ReceiverID, &m.Content, &m.AttachmentURL, &m.CreatedAt)
	return &m, err
}

func (r *RepoPG) Create(ctx context.Context, m *Message) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO chat_message
		(id, sender_id, receiver_id, content, attachment_url, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		m.ID, m.SenderID, m.ReceiverID, m.Content, m.AttachmentURL, m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert chat message: %w", err)
	}
	return nil
}

func (r *RepoPG) Conversation(ctx context.Context, userA, userB string, limit, offset int) ([]*Message, int, error) {
	const whereClause = `WHERE (sender_id = $1 AND receiver_id = $2)
		OR (sender_id = $2 AND receiver_id = $1)`

	var total int
	countQ := fmt.Sprintf("SELECT COUNT(*) FROM chat_message %s", whereClause)
	if err := r.pool.QueryRow(ctx, countQ, userA, userB).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count conversation: %w", err)
	}

	q := fmt.Sprintf(`SELECT %s FROM chat_message %s
		ORDER BY created_at DESC LIMIT $3 OFFSET $4`, messageCols, whereClause)
	rows, err := r.pool.Query(ctx, q, userA, userB, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("query conversation: %w", err)
	}
	defer rows.Close()

	var items []*Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan chat message: %w", err)
		}
		items = append(items, m)
	}
	return items, total, rows.Err()
}
