package wallet

import (
	"context"
	"errors"

	"carrental/model"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

var ErrUserNotFound = errors.New("user not found")

type Repo interface {
	Balance(ctx context.Context, userID int64) (decimal.Decimal, error)
	ListPayments(ctx context.Context, userID int64) ([]model.Payment, error)
}

type Service interface {
	// Wallet returns the balance with every payment sent or received.
	Wallet(ctx context.Context, userID int64) (*model.Wallet, error)
}

type service struct{ r Repo }

func New(r Repo) Service { return &service{r: r} }

func (s *service) Wallet(ctx context.Context, userID int64) (*model.Wallet, error) {
	bal, err := s.r.Balance(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	ps, err := s.r.ListPayments(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &model.Wallet{UserID: userID, Balance: bal, Payments: ps}, nil
}
