package warehouse

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRows implements pgx.Rows over an in-memory result set.
type fakeRows struct {
	data [][]any
	pos  int
}

func (r *fakeRows) Close()                                       {}
func (r *fakeRows) Err() error                                   { return nil }
func (r *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *fakeRows) Values() ([]any, error)                       { return nil, nil }
func (r *fakeRows) RawValues() [][]byte                          { return nil }
func (r *fakeRows) Conn() *pgx.Conn                              { return nil }

func (r *fakeRows) Next() bool {
	if r.pos >= len(r.data) {
		return false
	}
	r.pos++
	return true
}

func (r *fakeRows) Scan(dest ...any) error {
	row := r.data[r.pos-1]
	if len(dest) != len(row) {
		return fmt.Errorf("scan: want %d columns, got %d", len(row), len(dest))
	}
	for i, d := range dest {
		switch p := d.(type) {
		case *string:
			*p = row[i].(string)
		case *int:
			*p = row[i].(int)
		case *int64:
			*p = int64(row[i].(int))
		case *float64:
			*p = row[i].(float64)
		case *time.Time:
			*p = row[i].(time.Time)
		default:
			return fmt.Errorf("scan: unsupported dest %T", d)
		}
	}
	return nil
}

// fakeQuerier answers queries by substring match against registered result
// sets and counts attempts per query.
type fakeQuerier struct {
	mu       sync.Mutex
	results  map[string][][]any
	failures map[string]int
	attempts map[string]int
}

func newFakeQuerier() *fakeQuerier {
	return &fakeQuerier{
		results:  map[string][][]any{},
		failures: map[string]int{},
		attempts: map[string]int{},
	}
}

func (q *fakeQuerier) Query(_ context.Context, sql string, _ ...any) (pgx.Rows, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for key, data := range q.results {
		if strings.Contains(sql, key) {
			q.attempts[key]++
			if q.failures[key] > 0 {
				q.failures[key]--
				return nil, errors.New("connection reset")
			}
			return &fakeRows{data: data}, nil
		}
	}
	return nil, errors.New("no result registered")
}

func (q *fakeQuerier) QueryRow(_ context.Context, _ string, _ ...any) pgx.Row {
	return nil
}

func newTestStore(q querier) *Store {
	return NewWithQuerier(q, time.Second)
}

func date(s string) time.Time {
	t, _ := time.Parse(dateLayout, s)
	return t
}

func TestSales(t *testing.T) {
	q := newFakeQuerier()
	q.results["FROM sales_data"] = [][]any{
		{date("2026-08-01"), "Widget", "Tools", "North", 3, 120.0, 60.0, 60.0, "West"},
		{date("2026-08-02"), "Gadget", "Tools", "South", 1, 45.0, 30.0, 15.0, "East"},
	}

	records := newTestStore(q).Sales(context.Background(), 30)
	require.Len(t, records, 2)
	assert.Equal(t, "2026-08-01", records[0].Date)
	assert.Equal(t, "Widget", records[0].Product)
	assert.Equal(t, 3, records[0].Quantity)
	assert.Equal(t, 120.0, records[0].Revenue)
}

func TestSalesWindowOutOfRange(t *testing.T) {
	q := newFakeQuerier()
	store := newTestStore(q)

	assert.Nil(t, store.Sales(context.Background(), 0))
	assert.Nil(t, store.Sales(context.Background(), 366))
	assert.Empty(t, q.attempts)
}

func TestSalesRetriesOnce(t *testing.T) {
	q := newFakeQuerier()
	q.results["FROM sales_data"] = [][]any{
		{date("2026-08-01"), "Widget", "Tools", "North", 3, 120.0, 60.0, 60.0, "West"},
	}
	q.failures["FROM sales_data"] = 1

	records := newTestStore(q).Sales(context.Background(), 30)
	require.Len(t, records, 1)
	assert.Equal(t, 2, q.attempts["FROM sales_data"])
}

func TestSalesDegradesOnPersistentFailure(t *testing.T) {
	q := newFakeQuerier()
	q.results["FROM sales_data"] = [][]any{}
	q.failures["FROM sales_data"] = 2

	records := newTestStore(q).Sales(context.Background(), 30)
	assert.Empty(t, records)
	assert.Equal(t, 2, q.attempts["FROM sales_data"])
}

func TestInventory(t *testing.T) {
	q := newFakeQuerier()
	q.results["FROM inventory_data"] = [][]any{
		{"North", "Widget", 4, 10, 100, date("2026-07-15"), "Acme", "low"},
	}

	items := newTestStore(q).Inventory(context.Background())
	require.Len(t, items, 1)
	assert.Equal(t, "2026-07-15", items[0].LastRestocked)
	assert.Equal(t, 4, items[0].CurrentStock)
}

func TestCustomersLimitOutOfRange(t *testing.T) {
	q := newFakeQuerier()
	store := newTestStore(q)

	assert.Nil(t, store.Customers(context.Background(), 0))
	assert.Nil(t, store.Customers(context.Background(), 10001))
	assert.Empty(t, q.attempts)
}

func TestMetrics(t *testing.T) {
	q := newFakeQuerier()
	q.results["FROM sales_data"] = [][]any{{1000.0, 400.0, 8, 50}}
	q.results["FROM customer_data"] = [][]any{{12}}
	q.results["FROM inventory_data"] = [][]any{{25}}

	m := newTestStore(q).Metrics(context.Background())
	assert.Equal(t, 1000.0, m.TotalRevenue)
	assert.Equal(t, 400.0, m.TotalProfit)
	assert.Equal(t, 12, m.CustomerCount)
	assert.InDelta(t, 40.0, m.Margin, 0.001)
	assert.InDelta(t, 125.0, m.AverageOrderValue, 0.001)
	assert.InDelta(t, 2.0, m.InventoryTurnover, 0.001)
}

func TestMetricsNilWhenAllQueriesFail(t *testing.T) {
	q := newFakeQuerier()
	q.results["FROM sales_data"] = [][]any{}
	q.results["FROM customer_data"] = [][]any{}
	q.results["FROM inventory_data"] = [][]any{}
	q.failures["FROM sales_data"] = 2
	q.failures["FROM customer_data"] = 2
	q.failures["FROM inventory_data"] = 2

	assert.Nil(t, newTestStore(q).Metrics(context.Background()))
}

func TestMetricsPartialFailure(t *testing.T) {
	q := newFakeQuerier()
	q.results["FROM sales_data"] = [][]any{}
	q.results["FROM customer_data"] = [][]any{{12}}
	q.results["FROM inventory_data"] = [][]any{{25}}
	q.failures["FROM sales_data"] = 2

	m := newTestStore(q).Metrics(context.Background())
	require.NotNil(t, m)
	assert.Zero(t, m.TotalRevenue)
	assert.Equal(t, 12, m.CustomerCount)
}

func TestMetricsZeroGuards(t *testing.T) {
	q := newFakeQuerier()
	q.results["FROM sales_data"] = [][]any{{0.0, 0.0, 0, 0}}
	q.results["FROM customer_data"] = [][]any{{0}}
	q.results["FROM inventory_data"] = [][]any{{0}}

	m := newTestStore(q).Metrics(context.Background())
	assert.Zero(t, m.Margin)
	assert.Zero(t, m.AverageOrderValue)
	assert.Zero(t, m.InventoryTurnover)
}

func TestRunAggregate(t *testing.T) {
	q := newFakeQuerier()
	q.results["sales_by_store_mv"] = [][]any{
		{"North", 500.0, 200.0, 20},
		{"South", 300.0, 90.0, 12},
	}

	rows := newTestStore(q).RunAggregate(context.Background(), AggregateSpec{
		View: ViewPerStore, Days: 30, Limit: 10,
	})
	require.Len(t, rows, 2)
	assert.Equal(t, "North", rows[0].Dimension)
	assert.Equal(t, int64(20), rows[0].Quantity)
}

func TestRunAggregatePerDayFormatsDates(t *testing.T) {
	q := newFakeQuerier()
	q.results["sales_daily_mv"] = [][]any{
		{date("2026-08-03"), 100.0, 40.0, 5},
	}

	rows := newTestStore(q).RunAggregate(context.Background(), AggregateSpec{
		View: ViewPerDay, Days: 7, Limit: 30,
	})
	require.Len(t, rows, 1)
	assert.Equal(t, "2026-08-03", rows[0].Dimension)
}

func TestRunAggregateInvalidSpec(t *testing.T) {
	q := newFakeQuerier()
	store := newTestStore(q)

	assert.Nil(t, store.RunAggregate(context.Background(), AggregateSpec{View: "nope", Days: 30, Limit: 10}))
	assert.Nil(t, store.RunAggregate(context.Background(), AggregateSpec{View: ViewPerStore, Days: 0, Limit: 10}))
	assert.Nil(t, store.RunAggregate(context.Background(), AggregateSpec{View: ViewPerStore, Days: 30, Limit: 0}))
	assert.Empty(t, q.attempts)
}
