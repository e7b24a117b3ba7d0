package database

import (
	"context"
	"fmt"
)

var schema = []string{
	`CREATE EXTENSION IF NOT EXISTS btree_gist`,
	`CREATE TABLE IF NOT EXISTS users (
		id                  BIGSERIAL PRIMARY KEY,
		username            TEXT NOT NULL,
		email               TEXT NOT NULL,
		password_hash       TEXT NOT NULL,
		security_question_1 TEXT NOT NULL DEFAULT '',
		security_answer_1   TEXT NOT NULL DEFAULT '',
		security_question_2 TEXT NOT NULL DEFAULT '',
		security_answer_2   TEXT NOT NULL DEFAULT '',
		security_question_3 TEXT NOT NULL DEFAULT '',
		security_answer_3   TEXT NOT NULL DEFAULT '',
		balance             NUMERIC(12,2) NOT NULL DEFAULT 0 CHECK (balance >= 0),
		created_at          TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS users_email_key ON users (lower(email))`,
	`CREATE TABLE IF NOT EXISTS cars (
		id            BIGSERIAL PRIMARY KEY,
		make          TEXT NOT NULL,
		model         TEXT NOT NULL,
		year          INT NOT NULL,
		price_per_day NUMERIC(12,2) NOT NULL CHECK (price_per_day >= 0),
		location      TEXT NOT NULL,
		available     BOOLEAN NOT NULL DEFAULT TRUE,
		owner_id      BIGINT NOT NULL REFERENCES users(id),
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS bookings (
		id         BIGSERIAL PRIMARY KEY,
		car_id     BIGINT NOT NULL REFERENCES cars(id),
		user_id    BIGINT NOT NULL REFERENCES users(id),
		start_date DATE NOT NULL,
		end_date   DATE NOT NULL,
		status     TEXT NOT NULL DEFAULT 'pending',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT bookings_range_check CHECK (start_date < end_date),
		CONSTRAINT bookings_no_overlap EXCLUDE USING gist (
			car_id WITH =,
			daterange(start_date, end_date, '[)') WITH &&
		) WHERE (status IN ('pending', 'confirmed'))
	)`,
	`CREATE INDEX IF NOT EXISTS bookings_user_idx ON bookings (user_id, id)`,
	`CREATE TABLE IF NOT EXISTS payments (
		id          BIGSERIAL PRIMARY KEY,
		sender_id   BIGINT NOT NULL REFERENCES users(id),
		receiver_id BIGINT NOT NULL REFERENCES users(id),
		amount      NUMERIC(12,2) NOT NULL CHECK (amount >= 0),
		booking_id  BIGINT NOT NULL REFERENCES bookings(id),
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS messages (
		id          BIGSERIAL PRIMARY KEY,
		sender_id   BIGINT NOT NULL REFERENCES users(id),
		receiver_id BIGINT NOT NULL REFERENCES users(id),
		content     VARCHAR(256) NOT NULL,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS messages_receiver_idx ON messages (receiver_id, id)`,
	`CREATE INDEX IF NOT EXISTS messages_sender_idx ON messages (sender_id, id)`,
}

// Migrate creates the schema if it does not exist. Statements are idempotent.
func (d *DB) Migrate(ctx context.Context) error {
	for i, stmt := range schema {
		if _, err := d.Pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate step %d: %w", i+1, err)
		}
	}
	return nil
}
