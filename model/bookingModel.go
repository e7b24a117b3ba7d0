// model/bookingModel.go
package model

import (
	"fmt"
	"time"
)

// DateLayout is the wire and query format of booking dates.
const DateLayout = "2006-01-02"

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
)

// LiveStatuses are the statuses that hold a car for their date range.
var LiveStatuses = []BookingStatus{BookingPending, BookingConfirmed}

// IsLive reports whether s counts toward overlap conflicts.
func (s BookingStatus) IsLive() bool {
	for _, l := range LiveStatuses {
		if s == l {
			return true
		}
	}
	return false
}

type Booking struct {
	ID        int64         `json:"id"`
	CarID     int64         `json:"car_id"`
	UserID    int64         `json:"user_id"`
	StartDate time.Time     `json:"start_date"`
	EndDate   time.Time     `json:"end_date"`
	Status    BookingStatus `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
}

// Days is the number of whole days between start and end.
func (b Booking) Days() int64 {
	return DaysBetween(b.StartDate, b.EndDate)
}

const secondsPerDay = 24 * 60 * 60

// DaysBetween counts calendar days from start to end, ignoring time of day.
// time.Duration overflows past ~292 years, so the count works on Unix seconds.
func DaysBetween(start, end time.Time) int64 {
	s := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	e := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
	return (e.Unix() - s.Unix()) / secondsPerDay
}

// ParseDateRange parses two DateLayout dates.
func ParseDateRange(start, end string) (time.Time, time.Time, error) {
	s, err := time.Parse(DateLayout, start)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("start date: %w", err)
	}
	e, err := time.Parse(DateLayout, end)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("end date: %w", err)
	}
	return s, e, nil
}

// Overlaps applies the half-open interval test [a.start, a.end) ∩ [start, end).
func (b Booking) Overlaps(start, end time.Time) bool {
	return b.StartDate.Before(end) && b.EndDate.After(start)
}
