package auth

import (
	"context"

	"carrental/model"
	"carrental/util/database"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo interface {
	Create(ctx context.Context, u *model.User) error
	ByEmail(ctx context.Context, email string) (*model.User, error)
	ByID(ctx context.Context, id int64) (*model.User, error)
	UpdateProfile(ctx context.Context, id int64, email, username string) error
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
}

type repo struct{ db *pgxpool.Pool }

func New(db *database.DB) Repo { return &repo{db: db.Pool} }

const userColumns = `
	id, username, email, password_hash,
	security_question_1, security_answer_1,
	security_question_2, security_answer_2,
	security_question_3, security_answer_3,
	balance, created_at`

func scanUser(row pgx.Row) (*model.User, error) {
	u := &model.User{}
	s := &u.Security
	err := row.Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash,
		&s.Questions[0], &s.Hashes[0],
		&s.Questions[1], &s.Hashes[1],
		&s.Questions[2], &s.Hashes[2],
		&u.Balance, &u.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (r *repo) Create(ctx context.Context, u *model.User) error {
	s := u.Security
	return r.db.QueryRow(ctx, `
		INSERT INTO users(
			username, email, password_hash,
			security_question_1, security_answer_1,
			security_question_2, security_answer_2,
			security_question_3, security_answer_3)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING id, balance, created_at`,
		u.Username, u.Email, u.PasswordHash,
		s.Questions[0], s.Hashes[0],
		s.Questions[1], s.Hashes[1],
		s.Questions[2], s.Hashes[2],
	).Scan(&u.ID, &u.Balance, &u.CreatedAt)
}

func (r *repo) ByEmail(ctx context.Context, email string) (*model.User, error) {
	return scanUser(r.db.QueryRow(ctx, `
		SELECT`+userColumns+`
		FROM users
		WHERE lower(email) = lower($1)`, email))
}

func (r *repo) ByID(ctx context.Context, id int64) (*model.User, error) {
	return scanUser(r.db.QueryRow(ctx, `
		SELECT`+userColumns+`
		FROM users
		WHERE id = $1`, id))
}

func (r *repo) UpdateProfile(ctx context.Context, id int64, email, username string) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE users
		SET email = $2, username = $3
		WHERE id = $1`, id, email, username)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *repo) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE users
		SET password_hash = $2
		WHERE id = $1`, id, passwordHash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
