package car

import "github.com/shopspring/decimal"

type CreateCarReq struct {
	Make        string          `json:"make" validate:"required,max=100"`
	Model       string          `json:"model" validate:"required,max=100"`
	Year        int             `json:"year" validate:"required"`
	PricePerDay decimal.Decimal `json:"price_per_day"`
	Location    string          `json:"location" validate:"required,max=200"`
}

type AvailabilityQuery struct {
	Start string `query:"start" validate:"required,datetime=2006-01-02"`
	End   string `query:"end" validate:"required,datetime=2006-01-02"`
}
