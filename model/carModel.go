// model/carModel.go
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Car struct {
	ID          int64           `json:"id"`
	Make        string          `json:"make"`
	Model       string          `json:"model"`
	Year        int             `json:"year"`
	PricePerDay decimal.Decimal `json:"price_per_day"`
	Location    string          `json:"location"`
	Available   bool            `json:"available"`
	OwnerID     int64           `json:"owner_id"`
	CreatedAt   time.Time       `json:"created_at"`
}
