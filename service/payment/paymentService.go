package paymentsvc

import (
	"context"
	"errors"

	"carrental/model"
	bookingrepo "carrental/repository/booking"
	"carrental/service/notify"
	"carrental/util/database"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type BookingLocker interface {
	BookingForUpdate(ctx context.Context, tx pgx.Tx, bookingID int64) (*bookingrepo.BookingRef, error)
}

type Ledger interface {
	LockBalances(ctx context.Context, tx pgx.Tx, userIDs ...int64) (map[int64]decimal.Decimal, error)
	UpdateBalance(ctx context.Context, tx pgx.Tx, userID int64, delta decimal.Decimal) (decimal.Decimal, error)
}

type PaymentWriter interface {
	InsertPayment(ctx context.Context, tx pgx.Tx, p *model.Payment) error
}

type Service interface {
	// PayForBooking moves the booking's cost from the renter to the car
	// owner and returns the renter's new balance.
	PayForBooking(ctx context.Context, payerID, bookingID int64) (decimal.Decimal, error)
}

type service struct {
	db       database.TxBeginner
	bookings BookingLocker
	ledger   Ledger
	payments PaymentWriter
	pub      *notify.Publisher
}

func New(db database.TxBeginner, b BookingLocker, l Ledger, p PaymentWriter, pub *notify.Publisher) Service {
	return &service{db: db, bookings: b, ledger: l, payments: p, pub: pub}
}

// Amount is whole days times the daily price.
func Amount(ref *bookingrepo.BookingRef) decimal.Decimal {
	return ref.Car.PricePerDay.Mul(decimal.NewFromInt(ref.Booking.Days()))
}

func (s *service) PayForBooking(ctx context.Context, payerID, bookingID int64) (_ decimal.Decimal, err error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return decimal.Zero, opFailed(err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	ref, err := s.bookings.BookingForUpdate(ctx, tx, bookingID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, makeErr(ErrBookingNotFound)
		}
		return decimal.Zero, opFailed(err)
	}
	if ref.Booking.UserID != payerID {
		return decimal.Zero, makeErr(ErrUnauthorized)
	}
	payeeID := ref.Car.OwnerID
	amount := Amount(ref)

	// Ordered locking keeps concurrent opposite transfers deadlock-free.
	balances, err := s.ledger.LockBalances(ctx, tx, orderedPair(payerID, payeeID)...)
	if err != nil {
		return decimal.Zero, opFailed(err)
	}
	payerBal, okPayer := balances[payerID]
	_, okPayee := balances[payeeID]
	if !okPayer || !okPayee {
		return decimal.Zero, makeErr(ErrInvalidParticipants)
	}
	if payerBal.LessThan(amount) {
		return decimal.Zero, makeErr(ErrInsufficientFunds)
	}

	newBal, err := s.ledger.UpdateBalance(ctx, tx, payerID, amount.Neg())
	if err != nil {
		return decimal.Zero, opFailed(err)
	}
	credited, err := s.ledger.UpdateBalance(ctx, tx, payeeID, amount)
	if err != nil {
		return decimal.Zero, opFailed(err)
	}
	// an owner renting their own car pays themselves
	if payeeID == payerID {
		newBal = credited
	}

	p := &model.Payment{
		SenderID:   payerID,
		ReceiverID: payeeID,
		Amount:     amount,
		BookingID:  bookingID,
	}
	if err = s.payments.InsertPayment(ctx, tx, p); err != nil {
		return decimal.Zero, opFailed(err)
	}

	for _, ev := range []notify.Event{
		{Kind: notify.PaymentReceived, BookingID: bookingID, From: payerID, To: payeeID, Amount: amount},
		{Kind: notify.PaymentSent, BookingID: bookingID, From: payeeID, To: payerID, Amount: amount},
	} {
		if err = s.pub.Publish(ctx, tx, ev); err != nil {
			return decimal.Zero, opFailed(err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return decimal.Zero, opFailed(err)
	}
	return newBal, nil
}

func orderedPair(a, b int64) []int64 {
	if a < b {
		return []int64{a, b}
	}
	return []int64{b, a}
}
