// repository/car/carRepository.go
package car

import (
	"context"

	"carrental/model"
	"carrental/util/database"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo interface {
	Create(ctx context.Context, c *model.Car) error
	ListAvailable(ctx context.Context, location string) ([]model.Car, error)
	ByID(ctx context.Context, id int64) (*model.Car, error)
}

type repo struct{ db *pgxpool.Pool }

func New(db *database.DB) Repo { return &repo{db: db.Pool} }

const carColumns = `id, make, model, year, price_per_day, location, available, owner_id, created_at`

func scanCar(row pgx.Row, c *model.Car) error {
	return row.Scan(&c.ID, &c.Make, &c.Model, &c.Year, &c.PricePerDay,
		&c.Location, &c.Available, &c.OwnerID, &c.CreatedAt)
}

func (r *repo) Create(ctx context.Context, c *model.Car) error {
	const q = `
		INSERT INTO cars (make, model, year, price_per_day, location, available, owner_id)
		VALUES ($1, $2, $3, $4, $5, TRUE, $6)
		RETURNING id, available, created_at`
	return r.db.QueryRow(ctx, q, c.Make, c.Model, c.Year, c.PricePerDay, c.Location, c.OwnerID).
		Scan(&c.ID, &c.Available, &c.CreatedAt)
}

// ListAvailable filters by a case-insensitive location substring when location is set.
func (r *repo) ListAvailable(ctx context.Context, location string) ([]model.Car, error) {
	const q = `
		SELECT ` + carColumns + `
		FROM cars
		WHERE available
		AND ($1 = '' OR location ILIKE '%' || $1 || '%')
		ORDER BY id`
	rows, err := r.db.Query(ctx, q, location)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Car{}
	for rows.Next() {
		var c model.Car
		if err := scanCar(rows, &c); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *repo) ByID(ctx context.Context, id int64) (*model.Car, error) {
	const q = `
		SELECT ` + carColumns + `
		FROM cars
		WHERE id = $1`
	var c model.Car
	if err := scanCar(r.db.QueryRow(ctx, q, id), &c); err != nil {
		return nil, err
	}
	return &c, nil
}
