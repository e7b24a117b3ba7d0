package auth

import (
	"errors"
	"fmt"
)

type ErrCode string

const (
	ErrBadInput     ErrCode = "BAD_INPUT"
	ErrEmailTaken   ErrCode = "EMAIL_TAKEN"
	ErrInvalidCreds ErrCode = "INVALID_CREDENTIALS"
	ErrNotFound     ErrCode = "USER_NOT_FOUND"
	ErrWrongAnswer  ErrCode = "WRONG_SECURITY_ANSWER"
)

type codedError struct {
	code ErrCode
	msg  string
}

func (e codedError) Error() string {
	if e.msg != "" {
		return string(e.code) + ": " + e.msg
	}
	return string(e.code)
}
func (e codedError) Code() ErrCode { return e.code }

func makeErr(c ErrCode) error          { return codedError{code: c} }
func wrap(c ErrCode, msg string) error { return codedError{code: c, msg: msg} }

// WrongAnswerError names the first security question answered wrongly (1-based).
type WrongAnswerError struct{ Question int }

func (e WrongAnswerError) Error() string {
	return fmt.Sprintf("security answer %d is incorrect", e.Question)
}
func (e WrongAnswerError) Code() ErrCode { return ErrWrongAnswer }

// Code extracts error code
func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}
