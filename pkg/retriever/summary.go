package retriever

import (
	"fmt"
	"strings"

	"github.com/getlens/lens/pkg/bi"
)

// MaxSummaryLen caps the rendered context summary.
const MaxSummaryLen = 4000

// FormatSummary renders a bounded, deterministic text summary of a data
// context for prompting.
func FormatSummary(ctx bi.DataContext) string {
	var b strings.Builder

	switch c := ctx.(type) {
	case *bi.SalesContext:
		formatSales(&b, c)
	case *bi.InventoryContext:
		formatInventory(&b, c)
	case *bi.CustomerContext:
		formatCustomers(&b, c)
	case *bi.MetricsContext:
		formatMetrics(&b, c)
	case *bi.DynamicContext:
		formatDynamic(&b, c)
	default:
		b.WriteString("no data context available")
	}

	return truncate(b.String(), MaxSummaryLen)
}

func formatSales(b *strings.Builder, c *bi.SalesContext) {
	fmt.Fprintf(b, "Sales data: %d records, total revenue $%s, total profit $%s, margin %.2f%%\n",
		len(c.Records), money(c.TotalRevenue), money(c.TotalProfit), c.Margin)

	if len(c.TopProducts) > 0 {
		b.WriteString("Top products by revenue:\n")
		for _, p := range c.TopProducts {
			fmt.Fprintf(b, "  %s: $%s\n", p.Label, money(p.Value))
		}
	}
	if len(c.TopStores) > 0 {
		b.WriteString("Top stores by revenue:\n")
		for _, s := range c.TopStores {
			fmt.Fprintf(b, "  %s: $%s\n", s.Label, money(s.Value))
		}
	}

	if len(c.Records) > 0 {
		b.WriteString("Sample transactions:\n")
		for i, r := range c.Records {
			if i == 5 {
				break
			}
			fmt.Fprintf(b, "  %s: %s at %s - Qty: %d, Revenue: $%s, Profit: $%s\n",
				r.Date, r.Product, r.Store, r.Quantity, money(r.Revenue), money(r.Profit))
		}
	}
}

func formatInventory(b *strings.Builder, c *bi.InventoryContext) {
	fmt.Fprintf(b, "Inventory data: %d items, total stock %s units, %d low-stock alerts\n",
		len(c.Items), groupInt(int64(c.TotalStock)), len(c.LowStock))

	for i, it := range c.LowStock {
		if i == 5 {
			break
		}
		fmt.Fprintf(b, "  %s at %s: %d units (reorder level: %d)\n",
			it.Product, it.Store, it.CurrentStock, it.ReorderLevel)
	}
}

func formatCustomers(b *strings.Builder, c *bi.CustomerContext) {
	fmt.Fprintf(b, "Customer data: %d customers, total purchases %s, average purchases per customer %.2f\n",
		len(c.Customers), money(c.TotalPurchases), c.AveragePurchases)

	for i, cust := range c.Customers {
		if i == 3 {
			break
		}
		fmt.Fprintf(b, "  %s (%s, %s): %.0f purchases, $%s spent, prefers %s\n",
			cust.Name, cust.Region, cust.AgeGroup, cust.TotalPurchases,
			money(cust.TotalSpent), cust.PreferredCategory)
	}
}

func formatMetrics(b *strings.Builder, c *bi.MetricsContext) {
	fmt.Fprintf(b, "total_revenue: $%s\n", money(c.TotalRevenue))
	fmt.Fprintf(b, "total_profit: $%s\n", money(c.TotalProfit))
	fmt.Fprintf(b, "margin: %.2f%%\n", c.Margin)
	fmt.Fprintf(b, "customer_count: %s\n", groupInt(int64(c.CustomerCount)))
	fmt.Fprintf(b, "average_order_value: $%s\n", money(c.AverageOrderValue))
	fmt.Fprintf(b, "inventory_turnover: %.2f\n", c.InventoryTurnover)
}

func formatDynamic(b *strings.Builder, c *bi.DynamicContext) {
	if c.Note != "" {
		b.WriteString(c.Note)
		b.WriteByte('\n')
	}
	if len(c.Cols) > 0 {
		fmt.Fprintf(b, "columns: %s\n", strings.Join(c.Cols, ", "))
	}
	for i, row := range c.Rows {
		if i == 10 {
			break
		}
		for j, col := range c.Cols {
			if j >= len(row) {
				break
			}
			fmt.Fprintf(b, "  %s: %s\n", col, formatCell(row[j]))
		}
	}
}

func formatCell(v any) string {
	switch n := v.(type) {
	case float64:
		return money(n)
	case float32:
		return money(float64(n))
	case int:
		return groupInt(int64(n))
	case int64:
		return groupInt(n)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// money formats a value with thousand separators and two decimals.
func money(v float64) string {
	s := fmt.Sprintf("%.2f", v)

	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}

	dot := strings.IndexByte(s, '.')
	whole, frac := s[:dot], s[dot:]

	grouped := groupDigits(whole)
	if neg {
		return "-" + grouped + frac
	}
	return grouped + frac
}

func groupInt(v int64) string {
	if v < 0 {
		return "-" + groupDigits(fmt.Sprintf("%d", -v))
	}
	return groupDigits(fmt.Sprintf("%d", v))
}

func groupDigits(digits string) string {
	n := len(digits)
	if n <= 3 {
		return digits
	}

	var b strings.Builder
	lead := n % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < n; i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
