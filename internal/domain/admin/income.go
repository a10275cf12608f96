// internal/domain/admin/income.go
package admin

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/your-org/cafe-frontend/internal/domain/order"
)

// DailyIncome is the income of one calendar day
type DailyIncome struct {
	Date   string          `json:"date"`
	Orders int             `json:"orders"`
	Income decimal.Decimal `json:"income"`
}

// IncomeReport is the per-day income of a month
type IncomeReport struct {
	Month string          `json:"month"`
	Days  []DailyIncome   `json:"days"`
	Total decimal.Decimal `json:"total"`
}

// ParseMonth reads "YYYY-MM"
func ParseMonth(month string) (int, time.Month, error) {
	t, err := time.Parse("2006-01", month)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidMonth, month)
	}
	return t.Year(), t.Month(), nil
}

// BuildIncomeReport sums the totals of done orders per day of the month.
// Days are calendar days in loc; every day of the month is listed.
func BuildIncomeReport(orders []order.Order, year int, month time.Month, loc *time.Location) *IncomeReport {
	start := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	end := start.AddDate(0, 1, 0)
	days := end.AddDate(0, 0, -1).Day()

	report := &IncomeReport{
		Month: start.Format("2006-01"),
		Days:  make([]DailyIncome, days),
		Total: decimal.Zero,
	}
	for i := range report.Days {
		report.Days[i] = DailyIncome{
			Date:   start.AddDate(0, 0, i).Format("2006-01-02"),
			Income: decimal.Zero,
		}
	}

	for i := range orders {
		o := &orders[i]
		if o.Status != order.StatusDone || o.CreatedAt.IsZero() {
			continue
		}

		created := o.CreatedAt.In(loc)
		if created.Before(start) || !created.Before(end) {
			continue
		}

		day := &report.Days[created.Day()-1]
		day.Orders++
		day.Income = day.Income.Add(o.Total)
		report.Total = report.Total.Add(o.Total)
	}

	return report
}
