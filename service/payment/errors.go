package paymentsvc

import "errors"

type ErrCode string

const (
	ErrBookingNotFound     ErrCode = "BOOKING_NOT_FOUND"
	ErrUnauthorized        ErrCode = "UNAUTHORIZED"
	ErrInsufficientFunds   ErrCode = "INSUFFICIENT_FUNDS"
	ErrInvalidParticipants ErrCode = "INVALID_PARTICIPANTS"
	ErrOperationFailed     ErrCode = "OPERATION_FAILED"
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

func makeErr(c ErrCode) error  { return codedError{code: c} }
func opFailed(err error) error { return codedError{code: ErrOperationFailed, err: err} }

// Code extracts error code
func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}
