package message

import (
	"context"

	"carrental/model"
	"carrental/util/database"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo interface {
	InsertMessage(ctx context.Context, tx pgx.Tx, m *model.Message) error
	ListReceived(ctx context.Context, userID int64) ([]model.Message, error)
	ListSent(ctx context.Context, userID int64) ([]model.Message, error)
}

type repo struct{ db *pgxpool.Pool }

func New(db *database.DB) Repo { return &repo{db: db.Pool} }

func (r *repo) InsertMessage(ctx context.Context, tx pgx.Tx, m *model.Message) error {
	const q = `
		INSERT INTO messages (sender_id, receiver_id, content)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`
	return tx.QueryRow(ctx, q, m.SenderID, m.ReceiverID, model.TruncateContent(m.Content)).
		Scan(&m.ID, &m.CreatedAt)
}

func (r *repo) ListReceived(ctx context.Context, userID int64) ([]model.Message, error) {
	const q = `
		SELECT m.id, m.sender_id, m.receiver_id, u.email, m.content, m.created_at
		FROM messages m
		JOIN users u ON u.id = m.sender_id
		WHERE m.receiver_id = $1
		ORDER BY m.created_at DESC, m.id DESC`
	return r.list(ctx, q, userID)
}

func (r *repo) ListSent(ctx context.Context, userID int64) ([]model.Message, error) {
	const q = `
		SELECT m.id, m.sender_id, m.receiver_id, u.email, m.content, m.created_at
		FROM messages m
		JOIN users u ON u.id = m.sender_id
		WHERE m.sender_id = $1
		ORDER BY m.created_at DESC, m.id DESC`
	return r.list(ctx, q, userID)
}

func (r *repo) list(ctx context.Context, q string, userID int64) ([]model.Message, error) {
	rows, err := r.db.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Message{}
	for rows.Next() {
		var m model.Message
		if err := rows.Scan(&m.ID, &m.SenderID, &m.ReceiverID, &m.SenderEmail, &m.Content, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
