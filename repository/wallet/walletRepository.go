package walletrepo

import (
	"context"
	"fmt"

	"carrental/util/database"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type Repo interface {
	LockBalances(ctx context.Context, tx pgx.Tx, userIDs ...int64) (map[int64]decimal.Decimal, error)
	UpdateBalance(ctx context.Context, tx pgx.Tx, userID int64, delta decimal.Decimal) (decimal.Decimal, error)
	Balance(ctx context.Context, userID int64) (decimal.Decimal, error)
}

type repo struct{ db *pgxpool.Pool }

func New(db *database.DB) Repo { return &repo{db: db.Pool} }

// LockBalances locks the given accounts in ascending id order. Ids that do
// not exist are absent from the result.
func (r *repo) LockBalances(ctx context.Context, tx pgx.Tx, userIDs ...int64) (map[int64]decimal.Decimal, error) {
	const q = `
		SELECT id, balance
		FROM users
		WHERE id = ANY($1)
		ORDER BY id
		FOR UPDATE`
	rows, err := tx.Query(ctx, q, userIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[int64]decimal.Decimal, len(userIDs))
	for rows.Next() {
		var id int64
		var bal decimal.Decimal
		if err := rows.Scan(&id, &bal); err != nil {
			return nil, err
		}
		out[id] = bal
	}
	return out, rows.Err()
}

// UpdateBalance applies delta (negative for a debit) and returns the new balance.
func (r *repo) UpdateBalance(ctx context.Context, tx pgx.Tx, userID int64, delta decimal.Decimal) (decimal.Decimal, error) {
	const q = `
		UPDATE users
		SET balance = balance + $2
		WHERE id = $1
		RETURNING balance`
	var bal decimal.Decimal
	if err := tx.QueryRow(ctx, q, userID, delta).Scan(&bal); err != nil {
		return decimal.Zero, fmt.Errorf("update balance of user %d: %w", userID, err)
	}
	return bal, nil
}

func (r *repo) Balance(ctx context.Context, userID int64) (decimal.Decimal, error) {
	var bal decimal.Decimal
	err := r.db.QueryRow(ctx, `SELECT balance FROM users WHERE id = $1`, userID).Scan(&bal)
	return bal, err
}
