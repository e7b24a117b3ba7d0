package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type User struct {
	ID           int64           `json:"id"`
	Username     string          `json:"username"`
	Email        string          `json:"email"`
	PasswordHash string          `json:"-"`
	Security     SecurityAnswers `json:"-"`
	Balance      decimal.Decimal `json:"balance"`
	CreatedAt    time.Time       `json:"created_at"`
}

// SecurityAnswers holds the recovery questions and the hashed answers.
type SecurityAnswers struct {
	Questions [3]string
	Hashes    [3]string
}

// model/user.go

// RegisterReq represents user registration payload
// swagger:model RegisterReq
type RegisterReq struct {
	Username          string `json:"username" validate:"required,max=100"`
	Email             string `json:"email" validate:"required,email,max=120"`
	Password          string `json:"password" validate:"required,min=6,max=72"`
	SecurityQuestion1 string `json:"security_question_1" validate:"required,max=100"`
	SecurityAnswer1   string `json:"security_answer_1" validate:"required,max=100"`
	SecurityQuestion2 string `json:"security_question_2" validate:"required,max=100"`
	SecurityAnswer2   string `json:"security_answer_2" validate:"required,max=100"`
	SecurityQuestion3 string `json:"security_question_3" validate:"required,max=100"`
	SecurityAnswer3   string `json:"security_answer_3" validate:"required,max=100"`
}

// LoginReq represents login payload
// swagger:model LoginReq
type LoginReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UpdateProfileReq represents a partial profile update
// swagger:model UpdateProfileReq
type UpdateProfileReq struct {
	Email    *string `json:"email,omitempty" validate:"omitempty,email,max=120"`
	Username *string `json:"username,omitempty" validate:"omitempty,min=1,max=100"`
}

// RecoverReq represents a password reset by security answers
// swagger:model RecoverReq
type RecoverReq struct {
	Email       string    `json:"email" validate:"required,email"`
	Answers     [3]string `json:"answers" validate:"required,dive,required"`
	NewPassword string    `json:"new_password" validate:"required,min=6,max=72"`
}
