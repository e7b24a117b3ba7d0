package booking

import (
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

type ErrCode string

const (
	ErrInvalidRange       ErrCode = "INVALID_RANGE"
	ErrCarNotFound        ErrCode = "CAR_NOT_FOUND"
	ErrBookingNotFound    ErrCode = "BOOKING_NOT_FOUND"
	ErrConflictingBooking ErrCode = "CONFLICTING_BOOKING"
	ErrUnauthorized       ErrCode = "UNAUTHORIZED"
	ErrInvalidTransition  ErrCode = "INVALID_TRANSITION"
	ErrOperationFailed    ErrCode = "OPERATION_FAILED"
)

type codedError struct {
	code ErrCode
	err  error
}

func (e codedError) Error() string {
	if e.err != nil {
		return string(e.code) + ": " + e.err.Error()
	}
	return string(e.code)
}
func (e codedError) Code() ErrCode { return e.code }
func (e codedError) Unwrap() error { return e.err }

func makeErr(c ErrCode) error { return codedError{code: c} }

// opFailed wraps a persistence error, turning an exclusion violation on the
// bookings table into a booking conflict.
func opFailed(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ExclusionViolation {
		return codedError{code: ErrConflictingBooking, err: err}
	}
	return codedError{code: ErrOperationFailed, err: err}
}

// Code extracts error code
func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}
