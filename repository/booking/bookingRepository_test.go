package booking_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"carrental/model"
	authrepo "carrental/repository/auth"
	bookingrepo "carrental/repository/booking"
	carrepo "carrental/repository/car"
	messagerepo "carrental/repository/message"
	paymentrepo "carrental/repository/payment"
	walletrepo "carrental/repository/wallet"
	bookingsvc "carrental/service/booking"
	"carrental/service/notify"
	paymentsvc "carrental/service/payment"
	"carrental/util/database"
	"carrental/util/database/dbtest"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	t, err := time.Parse(model.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

type seeded struct {
	owner, renter *model.User
	car           *model.Car
}

func seed(t *testing.T, db *database.DB, renterBalance int64) seeded {
	t.Helper()
	ctx := context.Background()
	users := authrepo.New(db)

	owner := &model.User{Username: "owner", Email: "owner@example.com", PasswordHash: "x"}
	require.NoError(t, users.Create(ctx, owner))
	renter := &model.User{Username: "renter", Email: "renter@example.com", PasswordHash: "x"}
	require.NoError(t, users.Create(ctx, renter))

	if renterBalance > 0 {
		tx, err := db.Pool.Begin(ctx)
		require.NoError(t, err)
		_, err = walletrepo.New(db).UpdateBalance(ctx, tx, renter.ID, decimal.NewFromInt(renterBalance))
		require.NoError(t, err)
		require.NoError(t, tx.Commit(ctx))
	}

	car := &model.Car{Make: "Toyota", Model: "Corolla", Year: 2020, PricePerDay: decimal.NewFromInt(50), Location: "Tbilisi", OwnerID: owner.ID}
	require.NoError(t, carrepo.New(db).Create(ctx, car))
	return seeded{owner: owner, renter: renter, car: car}
}

func TestCountOverlapping_HalfOpen(t *testing.T) {
	db := dbtest.Open(t)
	s := seed(t, db, 0)
	ctx := context.Background()
	r := bookingrepo.New(db)

	tx, err := db.Pool.Begin(ctx)
	require.NoError(t, err)
	b := &model.Booking{CarID: s.car.ID, UserID: s.renter.ID, StartDate: day("2025-01-01"), EndDate: day("2025-01-04"), Status: model.BookingPending}
	require.NoError(t, r.InsertBooking(ctx, tx, b))
	require.NoError(t, tx.Commit(ctx))

	n, err := r.CountOverlapping(ctx, s.car.ID, day("2025-01-03"), day("2025-01-05"))
	require.NoError(t, err)
	require.Equal(t, int64(1), n)

	n, err = r.CountOverlapping(ctx, s.car.ID, day("2025-01-04"), day("2025-01-05"))
	require.NoError(t, err)
	require.Equal(t, int64(0), n)

	got, err := r.ListBookingsByUser(ctx, s.renter.ID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.True(t, got[0].StartDate.Equal(day("2025-01-01")))
	require.Equal(t, model.BookingPending, got[0].Status)
}

func TestExclusionConstraint(t *testing.T) {
	db := dbtest.Open(t)
	s := seed(t, db, 0)
	ctx := context.Background()
	r := bookingrepo.New(db)

	insert := func(start, end string) error {
		tx, err := db.Pool.Begin(ctx)
		require.NoError(t, err)
		defer tx.Rollback(ctx)
		b := &model.Booking{CarID: s.car.ID, UserID: s.renter.ID, StartDate: day(start), EndDate: day(end), Status: model.BookingPending}
		if err := r.InsertBooking(ctx, tx, b); err != nil {
			return err
		}
		return tx.Commit(ctx)
	}

	require.NoError(t, insert("2025-01-01", "2025-01-04"))
	err := insert("2025-01-02", "2025-01-03")
	var pgErr *pgconn.PgError
	require.ErrorAs(t, err, &pgErr)
	require.Equal(t, pgerrcode.ExclusionViolation, pgErr.Code)

	err = insert("2025-01-05", "2025-01-05")
	require.ErrorAs(t, err, &pgErr)
	require.Equal(t, pgerrcode.CheckViolation, pgErr.Code)
}

func TestCreate_ConcurrentPostgres(t *testing.T) {
	db := dbtest.Open(t)
	s := seed(t, db, 0)
	ctx := context.Background()
	pub := notify.New(notify.MessageHandler(messagerepo.New(db)))
	svc := bookingsvc.New(db.Pool, bookingrepo.New(db), pub)

	const n = 10
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Create(ctx, s.renter.ID, s.car.ID, day("2025-06-01"), day("2025-06-05"))
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	ok := 0
	for err := range errs {
		if err == nil {
			ok++
			continue
		}
		require.Equal(t, bookingsvc.ErrConflictingBooking, bookingsvc.Code(err), err)
	}
	require.Equal(t, 1, ok)

	inbox, err := messagerepo.New(db).ListReceived(ctx, s.owner.ID)
	require.NoError(t, err)
	require.Len(t, inbox, 1)
	require.Equal(t, "renter@example.com", inbox[0].SenderEmail)
}

func TestPayForBooking_Postgres(t *testing.T) {
	db := dbtest.Open(t)
	s := seed(t, db, 200)
	ctx := context.Background()
	br := bookingrepo.New(db)
	wr := walletrepo.New(db)
	pr := paymentrepo.New(db)
	pub := notify.New(notify.MessageHandler(messagerepo.New(db)))

	b, err := bookingsvc.New(db.Pool, br, pub).Create(ctx, s.renter.ID, s.car.ID, day("2025-01-01"), day("2025-01-04"))
	require.NoError(t, err)

	pay := paymentsvc.New(db.Pool, br, wr, pr, pub)
	bal, err := pay.PayForBooking(ctx, s.renter.ID, b.ID)
	require.NoError(t, err)
	require.Equal(t, "50.00", bal.StringFixed(2))

	ownerBal, err := wr.Balance(ctx, s.owner.ID)
	require.NoError(t, err)
	require.Equal(t, "150.00", ownerBal.StringFixed(2))

	_, err = pay.PayForBooking(ctx, s.renter.ID, b.ID)
	require.Equal(t, paymentsvc.ErrInsufficientFunds, paymentsvc.Code(err))

	ps, err := pr.ListPayments(ctx, s.renter.ID)
	require.NoError(t, err)
	require.Len(t, ps, 1)
	require.Equal(t, "150.00", ps[0].Amount.StringFixed(2))

	sent, err := messagerepo.New(db).ListReceived(ctx, s.renter.ID)
	require.NoError(t, err)
	require.Len(t, sent, 1)
	require.Contains(t, sent[0].Content, "sent")
}
