package warehouse

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"golang.org/x/sync/errgroup"

	"github.com/getlens/lens/pkg/bi"
)

const dateLayout = "2006-01-02"

// Sales returns per-transaction sales records for the last days days.
// Out-of-range inputs yield an empty slice and a warning.
func (s *Store) Sales(ctx context.Context, days int) []bi.SalesRecord {
	if days < MinDays || days > MaxDays {
		s.logger.Warn("sales window out of range, returning empty result", "days", days)
		return nil
	}

	const q = `
		SELECT date, product, category, store, quantity_sold, revenue, cost, profit, region
		FROM sales_data
		WHERE date >= CURRENT_DATE - $1::int
		ORDER BY date, store, product`

	var records []bi.SalesRecord
	s.query(ctx, "sales", q, func(rows pgx.Rows) error {
		records = records[:0]
		for rows.Next() {
			var r bi.SalesRecord
			var date time.Time
			if err := rows.Scan(&date, &r.Product, &r.Category, &r.Store,
				&r.Quantity, &r.Revenue, &r.Cost, &r.Profit, &r.Region); err != nil {
				return err
			}
			r.Date = date.Format(dateLayout)
			records = append(records, r)
		}
		return rows.Err()
	}, days)

	return records
}

// Inventory returns the current stock position for every (store, product).
func (s *Store) Inventory(ctx context.Context) []bi.InventoryItem {
	const q = `
		SELECT store, product, current_stock, reorder_level, max_stock, last_restocked, supplier, status
		FROM inventory_data
		ORDER BY store, product`

	var items []bi.InventoryItem
	s.query(ctx, "inventory", q, func(rows pgx.Rows) error {
		items = items[:0]
		for rows.Next() {
			var it bi.InventoryItem
			var restocked time.Time
			if err := rows.Scan(&it.Store, &it.Product, &it.CurrentStock,
				&it.ReorderLevel, &it.MaxStock, &restocked, &it.Supplier, &it.Status); err != nil {
				return err
			}
			it.LastRestocked = restocked.Format(dateLayout)
			items = append(items, it)
		}
		return rows.Err()
	})

	return items
}

// Customers returns up to limit customer profiles, highest spend first.
// Out-of-range inputs yield an empty slice and a warning.
func (s *Store) Customers(ctx context.Context, limit int) []bi.CustomerRecord {
	if limit < MinLimit || limit > MaxLimit {
		s.logger.Warn("customer limit out of range, returning empty result", "limit", limit)
		return nil
	}

	const q = `
		SELECT customer_id, name, email, region, age_group, total_purchases, total_spent,
		       last_purchase, preferred_store, preferred_category
		FROM customer_data
		ORDER BY total_spent DESC
		LIMIT $1`

	var customers []bi.CustomerRecord
	s.query(ctx, "customers", q, func(rows pgx.Rows) error {
		customers = customers[:0]
		for rows.Next() {
			var c bi.CustomerRecord
			var last time.Time
			if err := rows.Scan(&c.CustomerID, &c.Name, &c.Email, &c.Region, &c.AgeGroup,
				&c.TotalPurchases, &c.TotalSpent, &last, &c.PreferredStore, &c.PreferredCategory); err != nil {
				return err
			}
			c.LastPurchase = last.Format(dateLayout)
			customers = append(customers, c)
		}
		return rows.Err()
	})

	return customers
}

// Metrics computes business-wide KPIs. The three aggregate queries run in
// parallel; a partial failure degrades that figure to zero, and when every
// query fails Metrics returns nil so callers can tell a dead warehouse
// from a genuinely zero-valued snapshot.
func (s *Store) Metrics(ctx context.Context) *bi.MetricsContext {
	m := &bi.MetricsContext{}

	var (
		revenue, profit float64
		txCount         int64
		customerCount   int64
		unitsSold       int64
		stockOnHand     int64

		salesOK, customersOK, inventoryOK bool
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		const q = `
			SELECT COALESCE(SUM(revenue), 0), COALESCE(SUM(profit), 0),
			       COUNT(*), COALESCE(SUM(quantity_sold), 0)
			FROM sales_data`
		salesOK = s.query(gctx, "metrics_sales", q, func(rows pgx.Rows) error {
			if rows.Next() {
				return rows.Scan(&revenue, &profit, &txCount, &unitsSold)
			}
			return rows.Err()
		})
		return nil
	})

	g.Go(func() error {
		const q = `SELECT COUNT(*) FROM customer_data`
		customersOK = s.query(gctx, "metrics_customers", q, func(rows pgx.Rows) error {
			if rows.Next() {
				return rows.Scan(&customerCount)
			}
			return rows.Err()
		})
		return nil
	})

	g.Go(func() error {
		const q = `SELECT COALESCE(SUM(current_stock), 0) FROM inventory_data`
		inventoryOK = s.query(gctx, "metrics_inventory", q, func(rows pgx.Rows) error {
			if rows.Next() {
				return rows.Scan(&stockOnHand)
			}
			return rows.Err()
		})
		return nil
	})

	g.Wait()

	if !salesOK && !customersOK && !inventoryOK {
		return nil
	}

	m.TotalRevenue = revenue
	m.TotalProfit = profit
	m.CustomerCount = int(customerCount)
	if revenue > 0 {
		m.Margin = profit / revenue * 100
	}
	if txCount > 0 {
		m.AverageOrderValue = revenue / float64(txCount)
	}
	if stockOnHand > 0 {
		m.InventoryTurnover = float64(unitsSold) / float64(stockOnHand)
	}

	return m
}
