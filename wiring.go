package main

import (
	"context"

	"carrental/model"
	authrepo "carrental/repository/auth"
	messagerepo "carrental/repository/message"
	paymentrepo "carrental/repository/payment"
	walletrepo "carrental/repository/wallet"

	"github.com/shopspring/decimal"
)

// walletStore joins the two repositories the wallet view reads from.
type walletStore struct {
	balances walletrepo.Repo
	payments paymentrepo.Repo
}

func (s walletStore) Balance(ctx context.Context, userID int64) (decimal.Decimal, error) {
	return s.balances.Balance(ctx, userID)
}

func (s walletStore) ListPayments(ctx context.Context, userID int64) ([]model.Payment, error) {
	return s.payments.ListPayments(ctx, userID)
}

// mailbox adds receiver lookup to the message repository.
type mailbox struct {
	messagerepo.Repo
	users authrepo.Repo
}

func (m mailbox) ByEmail(ctx context.Context, email string) (*model.User, error) {
	return m.users.ByEmail(ctx, email)
}
