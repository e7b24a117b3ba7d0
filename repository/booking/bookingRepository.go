// repository/booking/bookingRepository.go
package booking

import (
	"context"
	"time"

	"carrental/model"
	"carrental/util/database"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// CarRef is the slice of a car row a booking needs.
type CarRef struct {
	ID          int64
	OwnerID     int64
	Make        string
	PricePerDay decimal.Decimal
}

// BookingRef is a locked booking joined with its car.
type BookingRef struct {
	Booking model.Booking
	Car     CarRef
}

type Repo interface {
	CountOverlapping(ctx context.Context, carID int64, start, end time.Time) (int64, error)
	CountOverlappingTx(ctx context.Context, tx pgx.Tx, carID int64, start, end time.Time) (int64, error)
	LockCar(ctx context.Context, tx pgx.Tx, carID int64) (*CarRef, error)
	InsertBooking(ctx context.Context, tx pgx.Tx, b *model.Booking) error
	ListBookingsByUser(ctx context.Context, userID int64) ([]model.Booking, error)
	BookingForUpdate(ctx context.Context, tx pgx.Tx, bookingID int64) (*BookingRef, error)
	SetBookingStatus(ctx context.Context, tx pgx.Tx, bookingID int64, status model.BookingStatus) error
}

type repo struct{ db *pgxpool.Pool }

func New(db *database.DB) Repo { return &repo{db: db.Pool} }

func liveStatuses() []string {
	out := make([]string, 0, len(model.LiveStatuses))
	for _, s := range model.LiveStatuses {
		out = append(out, string(s))
	}
	return out
}

// half-open: an existing booking ending on the new start day does not overlap.
const countOverlapQ = `
	SELECT COUNT(*)
	FROM bookings
	WHERE car_id = $1
	AND status = ANY($4)
	AND start_date < $3
	AND end_date > $2`

func (r *repo) CountOverlapping(ctx context.Context, carID int64, start, end time.Time) (int64, error) {
	var n int64
	err := r.db.QueryRow(ctx, countOverlapQ, carID, start, end, liveStatuses()).Scan(&n)
	return n, err
}

func (r *repo) CountOverlappingTx(ctx context.Context, tx pgx.Tx, carID int64, start, end time.Time) (int64, error) {
	var n int64
	err := tx.QueryRow(ctx, countOverlapQ, carID, start, end, liveStatuses()).Scan(&n)
	return n, err
}

// LockCar serialises bookings of one car until the transaction ends.
func (r *repo) LockCar(ctx context.Context, tx pgx.Tx, carID int64) (*CarRef, error) {
	const q = `
		SELECT id, owner_id, make, price_per_day
		FROM cars
		WHERE id = $1
		FOR UPDATE`
	var c CarRef
	if err := tx.QueryRow(ctx, q, carID).Scan(&c.ID, &c.OwnerID, &c.Make, &c.PricePerDay); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *repo) InsertBooking(ctx context.Context, tx pgx.Tx, b *model.Booking) error {
	const q = `
		INSERT INTO bookings (car_id, user_id, start_date, end_date, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`
	return tx.QueryRow(ctx, q, b.CarID, b.UserID, b.StartDate, b.EndDate, string(b.Status)).
		Scan(&b.ID, &b.CreatedAt)
}

func (r *repo) ListBookingsByUser(ctx context.Context, userID int64) ([]model.Booking, error) {
	const q = `
		SELECT id, car_id, user_id, start_date, end_date, status, created_at
		FROM bookings
		WHERE user_id = $1
		ORDER BY id`
	rows, err := r.db.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Booking{}
	for rows.Next() {
		var b model.Booking
		var status string
		if err := rows.Scan(&b.ID, &b.CarID, &b.UserID, &b.StartDate, &b.EndDate, &status, &b.CreatedAt); err != nil {
			return nil, err
		}
		b.Status = model.BookingStatus(status)
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *repo) BookingForUpdate(ctx context.Context, tx pgx.Tx, bookingID int64) (*BookingRef, error) {
	const q = `
		SELECT b.id, b.car_id, b.user_id, b.start_date, b.end_date, b.status, b.created_at,
		       c.id, c.owner_id, c.make, c.price_per_day
		FROM bookings b
		JOIN cars c ON c.id = b.car_id
		WHERE b.id = $1
		FOR UPDATE OF b`
	var ref BookingRef
	var status string
	b := &ref.Booking
	err := tx.QueryRow(ctx, q, bookingID).Scan(
		&b.ID, &b.CarID, &b.UserID, &b.StartDate, &b.EndDate, &status, &b.CreatedAt,
		&ref.Car.ID, &ref.Car.OwnerID, &ref.Car.Make, &ref.Car.PricePerDay,
	)
	if err != nil {
		return nil, err
	}
	b.Status = model.BookingStatus(status)
	return &ref, nil
}

func (r *repo) SetBookingStatus(ctx context.Context, tx pgx.Tx, bookingID int64, status model.BookingStatus) error {
	tag, err := tx.Exec(ctx, `UPDATE bookings SET status = $2 WHERE id = $1`, bookingID, string(status))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
