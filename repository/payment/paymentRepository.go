package payment

import (
	"context"

	"carrental/model"
	"carrental/util/database"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo interface {
	InsertPayment(ctx context.Context, tx pgx.Tx, p *model.Payment) error
	ListPayments(ctx context.Context, userID int64) ([]model.Payment, error)
}

type repo struct{ db *pgxpool.Pool }

func New(db *database.DB) Repo { return &repo{db: db.Pool} }

func (r *repo) InsertPayment(ctx context.Context, tx pgx.Tx, p *model.Payment) error {
	const q = `
		INSERT INTO payments (sender_id, receiver_id, amount, booking_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`
	return tx.QueryRow(ctx, q, p.SenderID, p.ReceiverID, p.Amount, p.BookingID).Scan(&p.ID, &p.CreatedAt)
}

// ListPayments returns payments sent or received by userID, newest first.
func (r *repo) ListPayments(ctx context.Context, userID int64) ([]model.Payment, error) {
	const q = `
		SELECT id, sender_id, receiver_id, amount, booking_id, created_at
		FROM payments
		WHERE sender_id = $1 OR receiver_id = $1
		ORDER BY created_at DESC, id DESC`
	rows, err := r.db.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Payment{}
	for rows.Next() {
		var p model.Payment
		if err := rows.Scan(&p.ID, &p.SenderID, &p.ReceiverID, &p.Amount, &p.BookingID, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
