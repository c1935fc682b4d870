// Package sakila holds report queries against the Sakila sample database.
package sakila

import (
	"context"
	"time"

	"github.com/bjaus/rectab/sqlrows"
)

// FilmInStock is one row of the films-in-stock report.
type FilmInStock struct {
	FilmID     int
	Title      string
	NumInStock int
}

func (f FilmInStock) GetFilmID() int     { return f.FilmID }
func (f FilmInStock) GetTitle() string   { return f.Title }
func (f FilmInStock) GetNumInStock() int { return f.NumInStock }

// Columns fixes the report's column order.
func (FilmInStock) Columns() []string { return []string{"filmID", "title", "numInStock"} }

// An inventory item is in stock unless a rental of it started at or before
// the reference time and was not returned by then.
const filmsInStockQuery = `
WITH
instock_inventory AS (
SELECT DISTINCT ia.inventory_id
  FROM inventory AS ia
  LEFT JOIN (SELECT inventory_id
               FROM rental
              WHERE rental_date <= ?
                AND (return_date IS NULL OR return_date > ?)
                AND store_id = ?) AS ir
    ON ia.inventory_id = ir.inventory_id
 WHERE ia.store_id = ? AND ir.inventory_id IS NULL
)

SELECT f.film_id, f.title, COUNT(*)
  FROM inventory AS i
  JOIN instock_inventory AS ii
    ON i.inventory_id = ii.inventory_id
  JOIN film AS f
    ON i.film_id = f.film_id
 GROUP BY f.film_id, f.title
 ORDER BY f.film_id
`

func scanFilmInStock(s sqlrows.Scanner) (FilmInStock, error) {
	var f FilmInStock
	err := s.Scan(&f.FilmID, &f.Title, &f.NumInStock)
	return f, err
}

// FilmsInStock returns the films with at least one copy in stock at store
// storeID at time at, ordered by film ID.
func FilmsInStock(ctx context.Context, q sqlrows.Querier, storeID int, at time.Time, opts ...sqlrows.Option) ([]FilmInStock, error) {
	args := []any{at, at, storeID, storeID}
	return sqlrows.Run(ctx, q, filmsInStockQuery, scanFilmInStock, args, opts...)
}
