package warehouse

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
)

// AggregateView names one of the pre-aggregated materialized views.
type AggregateView string

const (
	ViewPerStore   AggregateView = "per_store"
	ViewPerProduct AggregateView = "per_product"
	ViewPerDay     AggregateView = "per_day"
)

// AggregateSpec parameterizes a materialized-view read.
type AggregateSpec struct {
	View  AggregateView
	Days  int
	Limit int
}

// AggregateRow is one row of a pre-aggregated view. Dimension is the
// store, product, or ISO date depending on the view.
type AggregateRow struct {
	Dimension string  `json:"dimension"`
	Revenue   float64 `json:"revenue"`
	Profit    float64 `json:"profit"`
	Quantity  int64   `json:"quantity"`
}

var aggregateQueries = map[AggregateView]string{
	ViewPerStore: `
		SELECT store, SUM(revenue), SUM(profit), SUM(quantity_sold)
		FROM sales_by_store_mv
		WHERE date >= CURRENT_DATE - $1::int
		GROUP BY store
		ORDER BY SUM(revenue) DESC
		LIMIT $2`,
	ViewPerProduct: `
		SELECT product, SUM(revenue), SUM(profit), SUM(quantity_sold)
		FROM sales_by_product_mv
		WHERE date >= CURRENT_DATE - $1::int
		GROUP BY product
		ORDER BY SUM(revenue) DESC
		LIMIT $2`,
	ViewPerDay: `
		SELECT date, SUM(revenue), SUM(profit), SUM(quantity_sold)
		FROM sales_daily_mv
		WHERE date >= CURRENT_DATE - $1::int
		GROUP BY date
		ORDER BY date
		LIMIT $2`,
}

// RunAggregate reads one materialized view per the spec. Invalid specs
// yield an empty slice and a warning.
func (s *Store) RunAggregate(ctx context.Context, spec AggregateSpec) []AggregateRow {
	q, ok := aggregateQueries[spec.View]
	if !ok {
		s.logger.Warn("unknown aggregate view, returning empty result", "view", spec.View)
		return nil
	}
	if spec.Days < MinDays || spec.Days > MaxDays {
		s.logger.Warn("aggregate window out of range, returning empty result", "days", spec.Days)
		return nil
	}
	if spec.Limit < MinLimit || spec.Limit > MaxLimit {
		s.logger.Warn("aggregate limit out of range, returning empty result", "limit", spec.Limit)
		return nil
	}

	var out []AggregateRow
	s.query(ctx, "aggregate_"+string(spec.View), q, func(rows pgx.Rows) error {
		out = out[:0]
		for rows.Next() {
			var row AggregateRow
			if spec.View == ViewPerDay {
				var date time.Time
				if err := rows.Scan(&date, &row.Revenue, &row.Profit, &row.Quantity); err != nil {
					return err
				}
				row.Dimension = date.Format(dateLayout)
			} else {
				if err := rows.Scan(&row.Dimension, &row.Revenue, &row.Profit, &row.Quantity); err != nil {
					return err
				}
			}
			out = append(out, row)
		}
		return rows.Err()
	}, spec.Days, spec.Limit)

	return out
}
