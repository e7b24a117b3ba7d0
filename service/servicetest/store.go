// Package servicetest provides an in-memory store that behaves like the
// PostgreSQL repositories closely enough to test service transactions:
// writes are journalled and undone on rollback, and row locks are held until
// the transaction ends.
package servicetest

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"carrental/model"
	bookingrepo "carrental/repository/booking"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

type Store struct {
	mu       sync.Mutex
	nextID   int64
	users    map[int64]*model.User
	cars     map[int64]*model.Car
	bookings []*model.Booking
	payments []model.Payment
	messages []model.Message
	rowLocks map[string]*sync.Mutex

	// BeginErr, when set, is returned by Begin.
	BeginErr error
}

func NewStore() *Store {
	return &Store{
		users:    map[int64]*model.User{},
		cars:     map[int64]*model.Car{},
		rowLocks: map[string]*sync.Mutex{},
	}
}

// Tx is a fake pgx.Tx. Only Commit and Rollback are implemented; any other
// pgx.Tx method panics through the nil embedded interface.
type Tx struct {
	pgx.Tx
	s      *Store
	undo   []func()
	held   map[string]*sync.Mutex
	closed bool
}

func (s *Store) Begin(context.Context) (pgx.Tx, error) {
	if s.BeginErr != nil {
		return nil, s.BeginErr
	}
	return &Tx{s: s, held: map[string]*sync.Mutex{}}, nil
}

func (t *Tx) Commit(context.Context) error {
	if t.closed {
		return pgx.ErrTxClosed
	}
	t.finish()
	return nil
}

func (t *Tx) Rollback(context.Context) error {
	if t.closed {
		return pgx.ErrTxClosed
	}
	t.s.mu.Lock()
	for i := len(t.undo) - 1; i >= 0; i-- {
		t.undo[i]()
	}
	t.s.mu.Unlock()
	t.finish()
	return nil
}

func (t *Tx) finish() {
	t.closed = true
	t.undo = nil
	for _, m := range t.held {
		m.Unlock()
	}
	t.held = nil
}

func asTx(tx pgx.Tx) *Tx {
	t, ok := tx.(*Tx)
	if !ok || t.closed {
		panic("servicetest: expected an open *servicetest.Tx")
	}
	return t
}

// lock blocks until the row is free, then holds it until t ends.
func (t *Tx) lock(table string, id int64) {
	key := fmt.Sprintf("%s:%d", table, id)
	if _, ok := t.held[key]; ok {
		return
	}
	t.s.mu.Lock()
	m, ok := t.s.rowLocks[key]
	if !ok {
		m = &sync.Mutex{}
		t.s.rowLocks[key] = m
	}
	t.s.mu.Unlock()
	m.Lock()
	t.held[key] = m
}

func (t *Tx) journal(f func()) { t.undo = append(t.undo, f) }

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

// Seeding

func (s *Store) AddUser(username, email string, balance decimal.Decimal) *model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := &model.User{ID: s.id(), Username: username, Email: email, Balance: balance, CreatedAt: time.Now()}
	s.users[u.ID] = u
	cp := *u
	return &cp
}

func (s *Store) AddCar(ownerID int64, carMake string, price decimal.Decimal) *model.Car {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := &model.Car{ID: s.id(), Make: carMake, Model: "Model", Year: 2020, PricePerDay: price,
		Location: "Tbilisi", Available: true, OwnerID: ownerID, CreatedAt: time.Now()}
	s.cars[c.ID] = c
	cp := *c
	return &cp
}

// Inspection

func (s *Store) BalanceOf(userID int64) decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.users[userID].Balance
}

func (s *Store) Bookings() []model.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Booking, 0, len(s.bookings))
	for _, b := range s.bookings {
		out = append(out, *b)
	}
	return out
}

func (s *Store) Payments() []model.Payment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Payment(nil), s.payments...)
}

func (s *Store) Messages() []model.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Message(nil), s.messages...)
}

// Bookings

func (s *Store) countOverlapping(carID int64, start, end time.Time) int64 {
	var n int64
	for _, b := range s.bookings {
		if b.CarID == carID && b.Status.IsLive() && b.Overlaps(start, end) {
			n++
		}
	}
	return n
}

func (s *Store) CountOverlapping(_ context.Context, carID int64, start, end time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.countOverlapping(carID, start, end), nil
}

func (s *Store) CountOverlappingTx(ctx context.Context, tx pgx.Tx, carID int64, start, end time.Time) (int64, error) {
	asTx(tx)
	return s.CountOverlapping(ctx, carID, start, end)
}

func (s *Store) LockCar(_ context.Context, tx pgx.Tx, carID int64) (*bookingrepo.CarRef, error) {
	t := asTx(tx)
	s.mu.Lock()
	_, ok := s.cars[carID]
	s.mu.Unlock()
	if !ok {
		return nil, pgx.ErrNoRows
	}
	t.lock("cars", carID)

	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.cars[carID]
	return &bookingrepo.CarRef{ID: c.ID, OwnerID: c.OwnerID, Make: c.Make, PricePerDay: c.PricePerDay}, nil
}

// InsertBooking enforces the same range check and exclusion constraint as
// the bookings table.
func (s *Store) InsertBooking(_ context.Context, tx pgx.Tx, b *model.Booking) error {
	t := asTx(tx)
	s.mu.Lock()
	defer s.mu.Unlock()
	if !b.StartDate.Before(b.EndDate) {
		return &pgconn.PgError{Code: pgerrcode.CheckViolation, ConstraintName: "bookings_range_check"}
	}
	if b.Status.IsLive() && s.countOverlapping(b.CarID, b.StartDate, b.EndDate) > 0 {
		return &pgconn.PgError{Code: pgerrcode.ExclusionViolation, ConstraintName: "bookings_no_overlap"}
	}
	b.ID = s.id()
	b.CreatedAt = time.Now()
	cp := *b
	s.bookings = append(s.bookings, &cp)
	t.journal(func() { s.bookings = removeBooking(s.bookings, cp.ID) })
	return nil
}

func removeBooking(bs []*model.Booking, id int64) []*model.Booking {
	out := bs[:0]
	for _, b := range bs {
		if b.ID != id {
			out = append(out, b)
		}
	}
	return out
}

func (s *Store) ListBookingsByUser(_ context.Context, userID int64) ([]model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.Booking{}
	for _, b := range s.bookings {
		if b.UserID == userID {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (s *Store) findBooking(id int64) *model.Booking {
	for _, b := range s.bookings {
		if b.ID == id {
			return b
		}
	}
	return nil
}

func (s *Store) BookingForUpdate(_ context.Context, tx pgx.Tx, bookingID int64) (*bookingrepo.BookingRef, error) {
	t := asTx(tx)
	s.mu.Lock()
	found := s.findBooking(bookingID) != nil
	s.mu.Unlock()
	if !found {
		return nil, pgx.ErrNoRows
	}
	t.lock("bookings", bookingID)

	s.mu.Lock()
	defer s.mu.Unlock()
	b := s.findBooking(bookingID)
	c := s.cars[b.CarID]
	return &bookingrepo.BookingRef{
		Booking: *b,
		Car:     bookingrepo.CarRef{ID: c.ID, OwnerID: c.OwnerID, Make: c.Make, PricePerDay: c.PricePerDay},
	}, nil
}

func (s *Store) SetBookingStatus(_ context.Context, tx pgx.Tx, bookingID int64, status model.BookingStatus) error {
	t := asTx(tx)
	s.mu.Lock()
	defer s.mu.Unlock()
	b := s.findBooking(bookingID)
	if b == nil {
		return pgx.ErrNoRows
	}
	prev := b.Status
	b.Status = status
	t.journal(func() { b.Status = prev })
	return nil
}

// Ledger

func (s *Store) LockBalances(_ context.Context, tx pgx.Tx, userIDs ...int64) (map[int64]decimal.Decimal, error) {
	t := asTx(tx)
	ids := append([]int64(nil), userIDs...)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make(map[int64]decimal.Decimal, len(ids))
	for _, id := range ids {
		s.mu.Lock()
		_, ok := s.users[id]
		s.mu.Unlock()
		if !ok {
			continue
		}
		t.lock("users", id)
		s.mu.Lock()
		out[id] = s.users[id].Balance
		s.mu.Unlock()
	}
	return out, nil
}

func (s *Store) UpdateBalance(_ context.Context, tx pgx.Tx, userID int64, delta decimal.Decimal) (decimal.Decimal, error) {
	t := asTx(tx)
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return decimal.Zero, pgx.ErrNoRows
	}
	next := u.Balance.Add(delta)
	if next.IsNegative() {
		return decimal.Zero, &pgconn.PgError{Code: pgerrcode.CheckViolation, ConstraintName: "users_balance_check"}
	}
	prev := u.Balance
	u.Balance = next
	t.journal(func() { u.Balance = prev })
	return next, nil
}

func (s *Store) Balance(_ context.Context, userID int64) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return decimal.Zero, pgx.ErrNoRows
	}
	return u.Balance, nil
}

// Payments

func (s *Store) InsertPayment(_ context.Context, tx pgx.Tx, p *model.Payment) error {
	t := asTx(tx)
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = s.id()
	p.CreatedAt = time.Now()
	s.payments = append(s.payments, *p)
	id := p.ID
	t.journal(func() {
		for i := range s.payments {
			if s.payments[i].ID == id {
				s.payments = append(s.payments[:i], s.payments[i+1:]...)
				return
			}
		}
	})
	return nil
}

func (s *Store) ListPayments(_ context.Context, userID int64) ([]model.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.Payment{}
	for i := len(s.payments) - 1; i >= 0; i-- {
		p := s.payments[i]
		if p.SenderID == userID || p.ReceiverID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

// Messages

func (s *Store) InsertMessage(_ context.Context, tx pgx.Tx, m *model.Message) error {
	t := asTx(tx)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[m.SenderID]; !ok {
		return &pgconn.PgError{Code: pgerrcode.ForeignKeyViolation, ConstraintName: "messages_sender_id_fkey"}
	}
	if _, ok := s.users[m.ReceiverID]; !ok {
		return &pgconn.PgError{Code: pgerrcode.ForeignKeyViolation, ConstraintName: "messages_receiver_id_fkey"}
	}
	m.ID = s.id()
	m.CreatedAt = time.Now()
	m.Content = model.TruncateContent(m.Content)
	s.messages = append(s.messages, *m)
	id := m.ID
	t.journal(func() {
		for i := range s.messages {
			if s.messages[i].ID == id {
				s.messages = append(s.messages[:i], s.messages[i+1:]...)
				return
			}
		}
	})
	return nil
}

func (s *Store) listMessages(match func(model.Message) bool) []model.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.Message{}
	for i := len(s.messages) - 1; i >= 0; i-- {
		m := s.messages[i]
		if match(m) {
			m.SenderEmail = s.users[m.SenderID].Email
			out = append(out, m)
		}
	}
	return out
}

func (s *Store) ListReceived(_ context.Context, userID int64) ([]model.Message, error) {
	return s.listMessages(func(m model.Message) bool { return m.ReceiverID == userID }), nil
}

func (s *Store) ListSent(_ context.Context, userID int64) ([]model.Message, error) {
	return s.listMessages(func(m model.Message) bool { return m.SenderID == userID }), nil
}

// Users

func (s *Store) ByEmail(_ context.Context, email string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}
