package booking

import (
	"context"
	"errors"
	"time"

	"carrental/model"
	bookingrepo "carrental/repository/booking"
	"carrental/service/notify"
	"carrental/util/database"

	"github.com/jackc/pgx/v5"
)

type CarRef = bookingrepo.CarRef
type BookingRef = bookingrepo.BookingRef

type Repo interface {
	CountOverlapping(ctx context.Context, carID int64, start, end time.Time) (int64, error)
	CountOverlappingTx(ctx context.Context, tx pgx.Tx, carID int64, start, end time.Time) (int64, error)
	LockCar(ctx context.Context, tx pgx.Tx, carID int64) (*CarRef, error)
	InsertBooking(ctx context.Context, tx pgx.Tx, b *model.Booking) error
	ListBookingsByUser(ctx context.Context, userID int64) ([]model.Booking, error)
	BookingForUpdate(ctx context.Context, tx pgx.Tx, bookingID int64) (*BookingRef, error)
	SetBookingStatus(ctx context.Context, tx pgx.Tx, bookingID int64, status model.BookingStatus) error
}

type Service interface {
	// IsAvailable reports whether no live booking of carID overlaps [start, end).
	IsAvailable(ctx context.Context, carID int64, start, end time.Time) (bool, error)

	// Create books a car as pending and notifies the owner.
	Create(ctx context.Context, userID, carID int64, start, end time.Time) (*model.Booking, error)

	// MyBookings lists the requester's bookings in insertion order.
	MyBookings(ctx context.Context, userID int64) ([]model.Booking, error)

	// Confirm lets the car owner accept a pending booking.
	Confirm(ctx context.Context, ownerID, bookingID int64) (*model.Booking, error)
}

type service struct {
	db  database.TxBeginner
	r   Repo
	pub *notify.Publisher
}

func New(db database.TxBeginner, r Repo, pub *notify.Publisher) Service {
	return &service{db: db, r: r, pub: pub}
}

// DateOnly drops the time of day so ranges compare as calendar dates.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func (s *service) IsAvailable(ctx context.Context, carID int64, start, end time.Time) (bool, error) {
	start, end = DateOnly(start), DateOnly(end)
	if !start.Before(end) {
		return false, makeErr(ErrInvalidRange)
	}
	n, err := s.r.CountOverlapping(ctx, carID, start, end)
	if err != nil {
		return false, opFailed(err)
	}
	return n == 0, nil
}

// Create holds the car row lock from the overlap check through commit, so
// concurrent requests for the same car are serialised.
func (s *service) Create(ctx context.Context, userID, carID int64, start, end time.Time) (_ *model.Booking, err error) {
	start, end = DateOnly(start), DateOnly(end)
	if !start.Before(end) {
		return nil, makeErr(ErrInvalidRange)
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, opFailed(err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	car, err := s.r.LockCar(ctx, tx, carID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, makeErr(ErrCarNotFound)
		}
		return nil, opFailed(err)
	}

	n, err := s.r.CountOverlappingTx(ctx, tx, carID, start, end)
	if err != nil {
		return nil, opFailed(err)
	}
	if n > 0 {
		return nil, makeErr(ErrConflictingBooking)
	}

	b := &model.Booking{
		CarID:     carID,
		UserID:    userID,
		StartDate: start,
		EndDate:   end,
		Status:    model.BookingPending,
	}
	if err = s.r.InsertBooking(ctx, tx, b); err != nil {
		return nil, opFailed(err)
	}

	if err = s.pub.Publish(ctx, tx, notify.Event{
		Kind:      notify.BookingCreated,
		BookingID: b.ID,
		CarMake:   car.Make,
		From:      userID,
		To:        car.OwnerID,
	}); err != nil {
		return nil, opFailed(err)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, opFailed(err)
	}
	return b, nil
}

func (s *service) MyBookings(ctx context.Context, userID int64) ([]model.Booking, error) {
	out, err := s.r.ListBookingsByUser(ctx, userID)
	if err != nil {
		return nil, opFailed(err)
	}
	return out, nil
}

func (s *service) Confirm(ctx context.Context, ownerID, bookingID int64) (_ *model.Booking, err error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, opFailed(err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	ref, err := s.r.BookingForUpdate(ctx, tx, bookingID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, makeErr(ErrBookingNotFound)
		}
		return nil, opFailed(err)
	}
	if ref.Car.OwnerID != ownerID {
		return nil, makeErr(ErrUnauthorized)
	}
	if ref.Booking.Status != model.BookingPending {
		return nil, makeErr(ErrInvalidTransition)
	}

	if err = s.r.SetBookingStatus(ctx, tx, bookingID, model.BookingConfirmed); err != nil {
		return nil, opFailed(err)
	}
	if err = s.pub.Publish(ctx, tx, notify.Event{
		Kind:      notify.BookingConfirmed,
		BookingID: bookingID,
		CarMake:   ref.Car.Make,
		From:      ownerID,
		To:        ref.Booking.UserID,
	}); err != nil {
		return nil, opFailed(err)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, opFailed(err)
	}
	b := ref.Booking
	b.Status = model.BookingConfirmed
	return &b, nil
}
