package carsvc

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"carrental/model"
	carrepo "carrental/repository/car"

	"github.com/jackc/pgx/v5"
)

// FirstCarYear bounds a listed car's model year from below.
const FirstCarYear = 1886

var ErrNotFound = errors.New("car not found")

// ValidationError describes an invalid car listing.
type ValidationError struct{ Field, Reason string }

func (e ValidationError) Error() string { return e.Field + ": " + e.Reason }

type Repo = carrepo.Repo

type Service interface {
	Create(ctx context.Context, ownerID int64, c model.Car) (*model.Car, error)
	List(ctx context.Context, location string) ([]model.Car, error)
	Detail(ctx context.Context, id int64) (*model.Car, error)
}

type service struct {
	r   Repo
	now func() time.Time
}

func New(r Repo) Service { return &service{r: r, now: time.Now} }

func (s *service) validate(c *model.Car) error {
	c.Make = strings.TrimSpace(c.Make)
	c.Model = strings.TrimSpace(c.Model)
	c.Location = strings.TrimSpace(c.Location)
	switch {
	case c.Make == "":
		return ValidationError{"make", "required"}
	case c.Model == "":
		return ValidationError{"model", "required"}
	case c.Location == "":
		return ValidationError{"location", "required"}
	case c.PricePerDay.IsNegative():
		return ValidationError{"price_per_day", "must not be negative"}
	}
	maxYear := s.now().Year() + 1
	if c.Year < FirstCarYear || c.Year > maxYear {
		return ValidationError{"year", fmt.Sprintf("must be between %d and %d", FirstCarYear, maxYear)}
	}
	return nil
}

func (s *service) Create(ctx context.Context, ownerID int64, c model.Car) (*model.Car, error) {
	if err := s.validate(&c); err != nil {
		return nil, err
	}
	c.OwnerID = ownerID
	c.PricePerDay = c.PricePerDay.Round(2)
	if err := s.r.Create(ctx, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *service) List(ctx context.Context, location string) ([]model.Car, error) {
	return s.r.ListAvailable(ctx, strings.TrimSpace(location))
}

func (s *service) Detail(ctx context.Context, id int64) (*model.Car, error) {
	c, err := s.r.ByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return c, err
}
