// model/paymentModel.go
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Payment struct {
	ID         int64           `json:"id"`
	SenderID   int64           `json:"sender_id"`
	ReceiverID int64           `json:"receiver_id"`
	Amount     decimal.Decimal `json:"amount"`
	BookingID  int64           `json:"booking_id"`
	CreatedAt  time.Time       `json:"created_at"`
}

// Wallet is a user's ledger account with the transfers touching it.
type Wallet struct {
	UserID   int64           `json:"user_id"`
	Balance  decimal.Decimal `json:"balance"`
	Payments []Payment       `json:"payments"`
}
